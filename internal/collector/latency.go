package collector

import (
	"context"
	"fmt"
	"net"
	"sync"
	"time"

	"golang.org/x/net/icmp"
	"golang.org/x/net/ipv4"
)

const (
	probeAttempts    = 3
	probeAttemptWait = 50 * time.Millisecond
	probeDialTimeout = 2 * time.Second
)

// LatencyResult is one target's round-trip measurement.
type LatencyResult struct {
	Target     string
	IP         string
	MinRTT     time.Duration
	AvgRTT     time.Duration
	MaxRTT     time.Duration
	PacketLoss float64
	CheckedAt  time.Time
}

// LatencyProber measures round-trip time to a fixed target set. It is
// a display collaborator: it runs on its own cadence and never sits on
// the polling loop's critical path.
type LatencyProber struct {
	mu      sync.RWMutex
	targets []string
}

func NewLatencyProber(targets []string) *LatencyProber {
	return &LatencyProber{targets: targets}
}

func (p *LatencyProber) SetTargets(targets []string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.targets = append([]string(nil), targets...)
}

// Probe measures all targets concurrently within the context deadline.
func (p *LatencyProber) Probe(ctx context.Context) []LatencyResult {
	p.mu.RLock()
	targets := append([]string(nil), p.targets...)
	p.mu.RUnlock()

	results := make(chan LatencyResult, len(targets))
	var wg sync.WaitGroup
	for _, target := range targets {
		wg.Add(1)
		go func(target string) {
			defer wg.Done()
			results <- p.probeTarget(ctx, target)
		}(target)
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	out := make([]LatencyResult, 0, len(targets))
	for r := range results {
		out = append(out, r)
	}
	return out
}

func (p *LatencyProber) probeTarget(ctx context.Context, target string) LatencyResult {
	result := LatencyResult{
		Target:    target,
		CheckedAt: time.Now(),
	}

	resolver := &net.Resolver{}
	ips, err := resolver.LookupIPAddr(ctx, target)
	if err != nil || len(ips) == 0 {
		result.PacketLoss = 100
		return result
	}
	result.IP = ips[0].IP.String()

	var rtts []time.Duration
	for i := 0; i < probeAttempts; i++ {
		if ctx.Err() != nil {
			break
		}
		if rtt, err := dialRTT(result.IP, probeDialTimeout); err == nil {
			rtts = append(rtts, rtt)
		}
		if i < probeAttempts-1 {
			select {
			case <-ctx.Done():
			case <-time.After(probeAttemptWait):
			}
		}
	}

	if len(rtts) == 0 {
		result.PacketLoss = 100
		return result
	}

	result.PacketLoss = float64(probeAttempts-len(rtts)) / float64(probeAttempts) * 100
	result.MinRTT, result.MaxRTT = rtts[0], rtts[0]
	var total time.Duration
	for _, rtt := range rtts {
		total += rtt
		if rtt < result.MinRTT {
			result.MinRTT = rtt
		}
		if rtt > result.MaxRTT {
			result.MaxRTT = rtt
		}
	}
	result.AvgRTT = total / time.Duration(len(rtts))
	return result
}

// dialRTT approximates RTT with a TCP handshake. ICMP echo needs
// elevated privileges on most systems; see icmpRTT for the raw-socket
// variant.
func dialRTT(addr string, timeout time.Duration) (time.Duration, error) {
	start := time.Now()
	conn, err := net.DialTimeout("tcp", net.JoinHostPort(addr, "443"), timeout)
	if err != nil {
		conn, err = net.DialTimeout("tcp", net.JoinHostPort(addr, "80"), timeout)
		if err != nil {
			return 0, err
		}
	}
	defer conn.Close()
	return time.Since(start), nil
}

// icmpRTT sends a single echo request. Requires permission to open a
// raw ICMP socket.
func icmpRTT(addr string, timeout time.Duration) (time.Duration, error) {
	dst, err := net.ResolveIPAddr("ip4", addr)
	if err != nil {
		return 0, err
	}

	conn, err := icmp.ListenPacket("ip4:icmp", "0.0.0.0")
	if err != nil {
		return 0, err
	}
	defer conn.Close()

	msg := &icmp.Message{
		Type: ipv4.ICMPTypeEcho,
		Code: 0,
		Body: &icmp.Echo{ID: 1, Seq: 1, Data: []byte("nbmon")},
	}
	data, err := msg.Marshal(nil)
	if err != nil {
		return 0, err
	}

	start := time.Now()
	if _, err := conn.WriteTo(data, dst); err != nil {
		return 0, err
	}

	if err := conn.SetReadDeadline(time.Now().Add(timeout)); err != nil {
		return 0, err
	}
	reply := make([]byte, 1500)
	n, _, err := conn.ReadFrom(reply)
	if err != nil {
		return 0, err
	}
	rtt := time.Since(start)

	parsed, err := icmp.ParseMessage(ipv4.ICMPTypeEchoReply.Protocol(), reply[:n])
	if err != nil {
		return 0, err
	}
	if parsed.Type != ipv4.ICMPTypeEchoReply {
		return 0, fmt.Errorf("expected echo reply, got %v", parsed.Type)
	}
	return rtt, nil
}

package collector

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/nozo-moto/nbmon/pkg/types"
)

const (
	defaultProcNetDev  = "/proc/net/dev"
	defaultSysClassNet = "/sys/class/net"

	// ARPHRD_LOOPBACK in /sys/class/net/<if>/type.
	sysTypeLoopback = "772"
)

// Procfs reads counters from /proc/net/dev and interface metadata
// from /sys/class/net. This is the native source on Linux.
type Procfs struct {
	procNetDev  string
	sysClassNet string
}

func NewProcfs() *Procfs {
	return &Procfs{
		procNetDev:  defaultProcNetDev,
		sysClassNet: defaultSysClassNet,
	}
}

// newProcfsAt points the reader at an alternate filesystem root.
// Used by tests.
func newProcfsAt(procNetDev, sysClassNet string) *Procfs {
	return &Procfs{procNetDev: procNetDev, sysClassNet: sysClassNet}
}

func (p *Procfs) Enumerate(ctx context.Context) ([]types.InterfaceDescriptor, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(p.sysClassNet)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", p.sysClassNet, err)
	}

	descs := make([]types.InterfaceDescriptor, 0, len(entries))
	for _, entry := range entries {
		name := entry.Name()
		dir := filepath.Join(p.sysClassNet, name)

		desc := types.InterfaceDescriptor{
			ID:          types.InterfaceID(name),
			DisplayName: name,
		}

		loopback := readSysFile(dir, "type") == sysTypeLoopback
		desc.Kind = Classify(name, "", loopback)
		desc.IsUp = readSysFile(dir, "operstate") == "up"

		if mac := readSysFile(dir, "address"); mac != "" && mac != "00:00:00:00:00:00" {
			desc.MACAddress = strings.ToUpper(mac)
		}

		// speed is reported in Mbps and is unreadable for interfaces
		// without a negotiated link; assume gigabit then.
		if mbps, err := strconv.ParseUint(readSysFile(dir, "speed"), 10, 64); err == nil {
			desc.SpeedBps = mbps * 1_000_000
		} else {
			desc.SpeedBps = 1_000_000_000
		}

		descs = append(descs, desc)
	}

	return descs, nil
}

func (p *Procfs) Sample(ctx context.Context, id types.InterfaceID) (types.RawCounterSample, error) {
	if err := ctx.Err(); err != nil {
		return types.RawCounterSample{}, err
	}

	data, err := os.ReadFile(p.procNetDev)
	if err != nil {
		return types.RawCounterSample{}, fmt.Errorf("failed to read %s: %w", p.procNetDev, err)
	}

	sample, err := parseProcNetDev(string(data), id)
	if err != nil {
		return types.RawCounterSample{}, err
	}
	sample.Timestamp = time.Now()
	return sample, nil
}

// parseProcNetDev extracts one interface's counters from the
// /proc/net/dev table. Layout after the two header lines:
//
//	iface: rx_bytes rx_packets rx_errs rx_drop fifo frame compressed
//	       multicast tx_bytes tx_packets tx_errs ...
func parseProcNetDev(content string, id types.InterfaceID) (types.RawCounterSample, error) {
	lines := strings.Split(content, "\n")
	for i, line := range lines {
		if i < 2 {
			continue
		}
		line = strings.TrimSpace(line)
		colon := strings.IndexByte(line, ':')
		if colon < 0 {
			continue
		}
		name := strings.TrimSpace(line[:colon])
		if name != string(id) {
			continue
		}

		fields := strings.Fields(line[colon+1:])
		if len(fields) < 16 {
			return types.RawCounterSample{}, fmt.Errorf("malformed /proc/net/dev line for %s: %d fields", id, len(fields))
		}

		return types.RawCounterSample{
			ID:          id,
			BytesRecv:   parseCounter(fields[0]),
			PacketsRecv: parseCounter(fields[1]),
			BytesSent:   parseCounter(fields[8]),
			PacketsSent: parseCounter(fields[9]),
		}, nil
	}

	return types.RawCounterSample{}, fmt.Errorf("interface %s not found in /proc/net/dev", id)
}

func parseCounter(s string) uint64 {
	v, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0
	}
	return v
}

func readSysFile(dir, name string) string {
	data, err := os.ReadFile(filepath.Join(dir, name))
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}

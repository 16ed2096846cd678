// Package netinfo looks up the machine's public address. Display
// garnish only: nothing in the engine depends on it.
package netinfo

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"
)

const (
	cacheTTL     = 5 * time.Minute
	fetchTimeout = 3 * time.Second
)

// Services answering a GET with the caller's address in plain text,
// tried in order until one works.
var defaultServices = []string{
	"https://api.ipify.org",
	"https://checkip.amazonaws.com",
	"https://ipinfo.io/ip",
	"https://ifconfig.me/ip",
}

// PublicIP resolves and caches the public address. Lookups hit
// external services, so results are cached for a few minutes and
// callers are expected to query off the polling loop.
type PublicIP struct {
	client   *http.Client
	services []string

	mu        sync.Mutex
	cached    string
	fetchedAt time.Time
}

func NewPublicIP() *PublicIP {
	return &PublicIP{
		client:   &http.Client{Timeout: fetchTimeout},
		services: defaultServices,
	}
}

// newPublicIPWith overrides the service list. Used by tests.
func newPublicIPWith(client *http.Client, services []string) *PublicIP {
	return &PublicIP{client: client, services: services}
}

// Get returns the cached address while fresh, otherwise walks the
// service list until one responds with a parseable IP.
func (p *PublicIP) Get(ctx context.Context) (string, error) {
	p.mu.Lock()
	if p.cached != "" && time.Since(p.fetchedAt) < cacheTTL {
		ip := p.cached
		p.mu.Unlock()
		return ip, nil
	}
	p.mu.Unlock()

	ip, err := p.fetch(ctx)
	if err != nil {
		return "", err
	}

	p.mu.Lock()
	p.cached = ip
	p.fetchedAt = time.Now()
	p.mu.Unlock()
	return ip, nil
}

// Invalidate drops the cache so the next Get refetches.
func (p *PublicIP) Invalidate() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.cached = ""
	p.fetchedAt = time.Time{}
}

func (p *PublicIP) fetch(ctx context.Context) (string, error) {
	var lastErr error
	for _, service := range p.services {
		ip, err := p.fetchFrom(ctx, service)
		if err != nil {
			lastErr = err
			continue
		}
		if net.ParseIP(ip) != nil {
			return ip, nil
		}
		lastErr = fmt.Errorf("%s returned a non-address response", service)
	}
	if lastErr == nil {
		lastErr = fmt.Errorf("no public IP services configured")
	}
	return "", fmt.Errorf("public IP lookup failed: %w", lastErr)
}

func (p *PublicIP) fetchFrom(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", err
	}
	resp, err := p.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%s responded %s", url, resp.Status)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 256))
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(body)), nil
}

// IsPrivate reports whether ip sits in a private, loopback or
// link-local range.
func IsPrivate(ip net.IP) bool {
	return ip.IsPrivate() || ip.IsLoopback() || ip.IsLinkLocalUnicast() || ip.IsUnspecified()
}

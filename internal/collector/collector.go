// Package collector reads per-interface counters from the operating
// system. Two sources exist behind one contract: a /proc reader on
// Linux and a gopsutil-backed reader that reaches the native counter
// API elsewhere (GetIfEntry2 and friends on Windows).
package collector

import (
	"context"
	"runtime"

	"github.com/nozo-moto/nbmon/pkg/types"
)

// Collector is the capability the engine consumes. Sample must be
// safe to call concurrently for different interface ids, and must
// honor the context deadline rather than blocking the caller.
type Collector interface {
	Enumerate(ctx context.Context) ([]types.InterfaceDescriptor, error)
	Sample(ctx context.Context, id types.InterfaceID) (types.RawCounterSample, error)
}

// NewPlatform selects the counter source for the current platform.
// The engine never branches on platform itself.
func NewPlatform() Collector {
	if runtime.GOOS == "linux" {
		return NewProcfs()
	}
	return NewGopsutil()
}

package engine

import (
	"context"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/sirupsen/logrus"

	"github.com/nozo-moto/nbmon/internal/collector"
	"github.com/nozo-moto/nbmon/pkg/types"
)

// Options configure a Monitor. The zero value is unusable; use
// DefaultOptions as the base.
type Options struct {
	// HistoryCapacity is the per-interface sample window.
	HistoryCapacity int
	// CycleBudget bounds one cycle's wall-clock time.
	CycleBudget time.Duration
	// Parallel enables concurrent per-interface collection.
	Parallel bool
	// EnumerateEvery re-lists interfaces every N cycles.
	EnumerateEvery int
	// SmoothingAlpha is the EWMA factor; 0 disables smoothing.
	SmoothingAlpha float64
	// Clock is swappable for tests. Nil means the real clock.
	Clock clock.Clock
	// Logger receives per-interface failures and cycle timing. Nil
	// means the standard logrus logger.
	Logger *logrus.Logger
}

func DefaultOptions() Options {
	return Options{
		HistoryCapacity: 60,
		CycleBudget:     2 * time.Second,
		Parallel:        true,
		EnumerateEvery:  1,
	}
}

// Monitor is the engine facade: it drives discrete collection cycles
// and exposes read-only snapshots of rates, history and peaks. The
// polling loop is the only writer; cycles are strictly sequential.
type Monitor struct {
	mu sync.RWMutex

	source    collector.Collector
	registry  *Registry
	rates     *RateEngine
	scheduler *Scheduler
	histories map[types.InterfaceID]*HistoryBuffer

	opts       Options
	clk        clock.Clock
	log        *logrus.Entry
	cycleCount int
}

func NewMonitor(source collector.Collector, opts Options) *Monitor {
	if opts.HistoryCapacity < 1 {
		opts.HistoryCapacity = 1
	}
	if opts.EnumerateEvery < 1 {
		opts.EnumerateEvery = 1
	}
	clk := opts.Clock
	if clk == nil {
		clk = clock.New()
	}
	logger := opts.Logger
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	return &Monitor{
		source:    source,
		registry:  NewRegistry(),
		rates:     NewRateEngine(opts.SmoothingAlpha),
		scheduler: NewScheduler(source, opts.Parallel),
		histories: make(map[types.InterfaceID]*HistoryBuffer),
		opts:      opts,
		clk:       clk,
		log:       logger.WithField("component", "engine"),
	}
}

// Poll runs one collection cycle: reconcile the interface set, fan
// out counter reads, derive rates, append history. Per-interface
// failures are isolated; only enumeration failure degrades the whole
// cycle, and even then the last known set is reused.
func (m *Monitor) Poll(ctx context.Context) types.CycleResult {
	m.mu.Lock()
	defer m.mu.Unlock()

	start := m.clk.Now()
	result := types.CycleResult{
		Timestamp: start,
		Rates:     make(map[types.InterfaceID]types.RateSample),
		Errors:    make(map[types.InterfaceID]*types.CollectionError),
	}

	budgetCtx, cancel := context.WithTimeout(ctx, m.opts.CycleBudget)
	defer cancel()

	if m.cycleCount%m.opts.EnumerateEvery == 0 {
		if err := m.reconcile(budgetCtx); err != nil {
			result.EnumerationErr = err
			m.log.WithError(err).Warn("interface enumeration failed, reusing last known set")
		}
	}
	m.cycleCount++

	ids := m.registry.IDs()
	outcomes := m.scheduler.Collect(budgetCtx, ids)

	for _, id := range ids {
		outcome := outcomes[id]
		if outcome.err != nil {
			result.Errors[id] = outcome.err
			m.log.WithField("interface", id).WithError(outcome.err).Debug("sample failed")
			continue
		}

		rate, ok, cerr := m.rates.Update(outcome.sample)
		if cerr != nil {
			result.Errors[id] = cerr
			continue
		}
		if !ok {
			// First sample for this interface; it only seeded.
			continue
		}
		if rate.Reset {
			m.log.WithField("interface", id).Info("counter reset detected")
		}
		result.Rates[id] = rate
		m.history(id).Push(rate)
	}

	result.Duration = m.clk.Now().Sub(start)
	m.log.WithFields(logrus.Fields{
		"interfaces": len(ids),
		"errors":     len(result.Errors),
		"duration":   result.Duration,
	}).Debug("cycle complete")
	return result
}

// reconcile refreshes the registry and drops engine state for
// interfaces whose grace round expired.
func (m *Monitor) reconcile(ctx context.Context) error {
	descs, err := m.source.Enumerate(ctx)
	if err != nil {
		return types.NewCollectionError(types.ErrEnumeration, "", err)
	}

	appeared, vanished, dropped := m.registry.Reconcile(descs)
	for _, id := range dropped {
		delete(m.histories, id)
	}
	for _, id := range vanished {
		// Rate state goes immediately: if the platform hands the id
		// back later it is a fresh series, never a bridge across the
		// gap.
		m.rates.Forget(id)
		delete(m.histories, id)
	}
	if len(appeared) > 0 || len(vanished) > 0 {
		m.log.WithFields(logrus.Fields{
			"appeared": appeared,
			"vanished": vanished,
		}).Info("interface set changed")
	}
	return nil
}

func (m *Monitor) history(id types.InterfaceID) *HistoryBuffer {
	h, ok := m.histories[id]
	if !ok {
		h = NewHistoryBuffer(m.opts.HistoryCapacity)
		m.histories[id] = h
	}
	return h
}

// SetParallel switches the collection strategy for subsequent cycles.
func (m *Monitor) SetParallel(parallel bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.scheduler.SetParallel(parallel)
}

// Interfaces returns the current descriptor set.
func (m *Monitor) Interfaces() []types.InterfaceDescriptor {
	return m.registry.Snapshot()
}

// Removed returns interfaces in their post-vanish grace round.
func (m *Monitor) Removed() []types.InterfaceDescriptor {
	return m.registry.Removed()
}

// History returns the rate samples for one interface, oldest first.
func (m *Monitor) History(id types.InterfaceID) []types.RateSample {
	m.mu.RLock()
	defer m.mu.RUnlock()
	h, ok := m.histories[id]
	if !ok {
		return nil
	}
	return h.Snapshot()
}

// Peak returns the maximum rx/tx rates observed since the last reset.
func (m *Monitor) Peak(id types.InterfaceID) (rx, tx float64) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	h, ok := m.histories[id]
	if !ok {
		return 0, 0
	}
	return h.Peak()
}

// Reset clears one interface's history and peaks without touching the
// others. Applied between cycles; it never interrupts an in-flight
// platform call.
func (m *Monitor) Reset(id types.InterfaceID) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if h, ok := m.histories[id]; ok {
		h.Reset()
	}
}

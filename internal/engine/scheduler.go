package engine

import (
	"context"
	"errors"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/nozo-moto/nbmon/internal/collector"
	"github.com/nozo-moto/nbmon/pkg/types"
)

// sampleOutcome is one interface's result within a cycle: either a
// raw sample or the error that replaced it.
type sampleOutcome struct {
	sample types.RawCounterSample
	err    *types.CollectionError
}

// Scheduler fans one collection cycle out over the interface set.
// Sequential and parallel strategies produce identical outcomes for
// identical inputs; only latency differs. A failing interface is
// recorded and never aborts or delays the rest of the cycle.
type Scheduler struct {
	source   collector.Collector
	parallel bool
	limit    int
}

func NewScheduler(source collector.Collector, parallel bool) *Scheduler {
	return &Scheduler{
		source:   source,
		parallel: parallel,
		limit:    2 * runtime.GOMAXPROCS(0),
	}
}

// SetParallel switches the strategy between cycles.
func (s *Scheduler) SetParallel(parallel bool) { s.parallel = parallel }

// Collect samples every id within the context deadline. The returned
// map has one entry per id, sample or error.
func (s *Scheduler) Collect(ctx context.Context, ids []types.InterfaceID) map[types.InterfaceID]sampleOutcome {
	if s.parallel && len(ids) > 1 {
		return s.collectParallel(ctx, ids)
	}
	return s.collectSequential(ctx, ids)
}

func (s *Scheduler) collectSequential(ctx context.Context, ids []types.InterfaceID) map[types.InterfaceID]sampleOutcome {
	out := make(map[types.InterfaceID]sampleOutcome, len(ids))
	for _, id := range ids {
		out[id] = s.sampleOne(ctx, id)
	}
	return out
}

func (s *Scheduler) collectParallel(ctx context.Context, ids []types.InterfaceID) map[types.InterfaceID]sampleOutcome {
	outcomes := make([]sampleOutcome, len(ids))

	// Structured fan-out: every task finishes or times out before the
	// cycle completes, so the cycle has a clear completion point.
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.limit)
	for i, id := range ids {
		i, id := i, id
		g.Go(func() error {
			outcomes[i] = s.sampleOne(gctx, id)
			return nil
		})
	}
	// Tasks never return errors; they record them per interface.
	_ = g.Wait()

	out := make(map[types.InterfaceID]sampleOutcome, len(ids))
	for i, id := range ids {
		out[id] = outcomes[i]
	}
	return out
}

func (s *Scheduler) sampleOne(ctx context.Context, id types.InterfaceID) sampleOutcome {
	sample, err := s.source.Sample(ctx, id)
	if err != nil {
		kind := types.ErrCollection
		if errors.Is(err, context.DeadlineExceeded) || ctx.Err() != nil {
			kind = types.ErrTimeout
		}
		return sampleOutcome{err: types.NewCollectionError(kind, id, err)}
	}
	return sampleOutcome{sample: sample}
}

package engine

import (
	"fmt"

	"github.com/nozo-moto/nbmon/pkg/types"
)

// RateEngine pairs each raw sample with its predecessor and derives
// bits-per-second rates. A counter that went backward is a reset
// event, not corruption: the engine emits a zero-valued boundary
// sample and reseeds, so history never bridges the discontinuity and
// never shows a negative rate.
type RateEngine struct {
	prev     map[types.InterfaceID]types.RawCounterSample
	alpha    float64
	smoothed map[types.InterfaceID]types.RateSample
}

// NewRateEngine creates an engine with EWMA factor alpha. alpha 0
// disables smoothing.
func NewRateEngine(alpha float64) *RateEngine {
	return &RateEngine{
		prev:     make(map[types.InterfaceID]types.RawCounterSample),
		alpha:    alpha,
		smoothed: make(map[types.InterfaceID]types.RateSample),
	}
}

// Update feeds one raw sample. ok is false when the sample only
// seeded a new interface and no rate could be derived. A non-nil
// error means the pair was discarded without touching state.
func (e *RateEngine) Update(sample types.RawCounterSample) (rate types.RateSample, ok bool, err *types.CollectionError) {
	previous, seeded := e.prev[sample.ID]
	if !seeded {
		e.prev[sample.ID] = sample
		return types.RateSample{}, false, nil
	}

	elapsed := sample.Timestamp.Sub(previous.Timestamp)
	if elapsed <= 0 {
		return types.RateSample{}, false, types.NewCollectionError(
			types.ErrInvalidSample, sample.ID,
			fmt.Errorf("timestamp did not advance (elapsed %s)", elapsed))
	}

	if sample.BytesRecv < previous.BytesRecv || sample.BytesSent < previous.BytesSent {
		// Counter reset. Seed from the current reading and emit a
		// zero-rate boundary sample for history.
		e.prev[sample.ID] = sample
		delete(e.smoothed, sample.ID)
		return types.RateSample{
			ID:        sample.ID,
			Timestamp: sample.Timestamp,
			Elapsed:   elapsed,
			Reset:     true,
		}, true, nil
	}

	seconds := elapsed.Seconds()
	rate = types.RateSample{
		ID:        sample.ID,
		Timestamp: sample.Timestamp,
		RxBps:     float64(sample.BytesRecv-previous.BytesRecv) * 8 / seconds,
		TxBps:     float64(sample.BytesSent-previous.BytesSent) * 8 / seconds,
		Elapsed:   elapsed,
	}
	e.prev[sample.ID] = sample

	if e.alpha > 0 && e.alpha < 1 {
		if last, exists := e.smoothed[sample.ID]; exists {
			rate.RxBps = e.alpha*rate.RxBps + (1-e.alpha)*last.RxBps
			rate.TxBps = e.alpha*rate.TxBps + (1-e.alpha)*last.TxBps
		}
		e.smoothed[sample.ID] = rate
	}

	return rate, true, nil
}

// Forget drops the stored state for an interface that left the
// registry. A later reappearance starts a fresh series.
func (e *RateEngine) Forget(id types.InterfaceID) {
	delete(e.prev, id)
	delete(e.smoothed, id)
}

package engine

import "github.com/nozo-moto/nbmon/pkg/types"

// HistoryBuffer holds the last N rate samples for one interface plus
// the running peaks observed since the last reset. Fixed capacity,
// append-with-eviction.
type HistoryBuffer struct {
	samples []types.RateSample
	head    int
	count   int
	peakRx  float64
	peakTx  float64
}

func NewHistoryBuffer(capacity int) *HistoryBuffer {
	if capacity < 1 {
		capacity = 1
	}
	return &HistoryBuffer{samples: make([]types.RateSample, capacity)}
}

// Push appends a sample, evicting the oldest once at capacity, and
// advances the peaks.
func (h *HistoryBuffer) Push(sample types.RateSample) {
	idx := (h.head + h.count) % len(h.samples)
	h.samples[idx] = sample
	if h.count < len(h.samples) {
		h.count++
	} else {
		h.head = (h.head + 1) % len(h.samples)
	}

	if sample.RxBps > h.peakRx {
		h.peakRx = sample.RxBps
	}
	if sample.TxBps > h.peakTx {
		h.peakTx = sample.TxBps
	}
}

func (h *HistoryBuffer) Len() int { return h.count }

func (h *HistoryBuffer) Cap() int { return len(h.samples) }

// Snapshot returns the samples oldest first. The slice is a copy; the
// caller cannot mutate engine state through it.
func (h *HistoryBuffer) Snapshot() []types.RateSample {
	out := make([]types.RateSample, h.count)
	for i := 0; i < h.count; i++ {
		out[i] = h.samples[(h.head+i)%len(h.samples)]
	}
	return out
}

// Peak returns the maximum rx/tx rates seen since the last reset.
func (h *HistoryBuffer) Peak() (rx, tx float64) {
	return h.peakRx, h.peakTx
}

// Reset clears samples and peaks.
func (h *HistoryBuffer) Reset() {
	h.head = 0
	h.count = 0
	h.peakRx = 0
	h.peakTx = 0
}

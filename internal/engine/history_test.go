package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nozo-moto/nbmon/pkg/types"
)

func rateAt(seq int, rx, tx float64) types.RateSample {
	return types.RateSample{
		ID:        "eth0",
		Timestamp: time.Unix(int64(seq), 0),
		RxBps:     rx,
		TxBps:     tx,
	}
}

func TestHistoryBufferLenNeverExceedsCapacity(t *testing.T) {
	h := NewHistoryBuffer(5)
	for i := 0; i < 12; i++ {
		h.Push(rateAt(i, float64(i), 0))
		want := i + 1
		if want > 5 {
			want = 5
		}
		assert.Equal(t, want, h.Len())
	}
}

func TestHistoryBufferFIFOEviction(t *testing.T) {
	h := NewHistoryBuffer(3)
	for i := 0; i < 5; i++ {
		h.Push(rateAt(i, float64(i*100), 0))
	}

	snap := h.Snapshot()
	require.Len(t, snap, 3)
	// Oldest first; samples 0 and 1 were evicted.
	assert.InDelta(t, 200, snap[0].RxBps, 1e-9)
	assert.InDelta(t, 300, snap[1].RxBps, 1e-9)
	assert.InDelta(t, 400, snap[2].RxBps, 1e-9)
}

func TestHistoryBufferPeak(t *testing.T) {
	h := NewHistoryBuffer(4)
	h.Push(rateAt(0, 100, 900))
	h.Push(rateAt(1, 700, 200))
	h.Push(rateAt(2, 300, 400))

	rx, tx := h.Peak()
	assert.InDelta(t, 700, rx, 1e-9)
	assert.InDelta(t, 900, tx, 1e-9)
}

// Peaks survive eviction: the peak is since last reset, not over the
// current window.
func TestHistoryBufferPeakOutlivesEviction(t *testing.T) {
	h := NewHistoryBuffer(2)
	h.Push(rateAt(0, 9999, 0))
	h.Push(rateAt(1, 1, 0))
	h.Push(rateAt(2, 2, 0))
	h.Push(rateAt(3, 3, 0))

	rx, _ := h.Peak()
	assert.InDelta(t, 9999, rx, 1e-9)
}

func TestHistoryBufferReset(t *testing.T) {
	h := NewHistoryBuffer(4)
	h.Push(rateAt(0, 500, 600))
	h.Push(rateAt(1, 700, 800))
	h.Reset()

	assert.Zero(t, h.Len())
	assert.Empty(t, h.Snapshot())
	rx, tx := h.Peak()
	assert.Zero(t, rx)
	assert.Zero(t, tx)

	// Usable again after reset.
	h.Push(rateAt(2, 50, 60))
	assert.Equal(t, 1, h.Len())
	rx, tx = h.Peak()
	assert.InDelta(t, 50, rx, 1e-9)
	assert.InDelta(t, 60, tx, 1e-9)
}

func TestHistoryBufferSnapshotIsCopy(t *testing.T) {
	h := NewHistoryBuffer(2)
	h.Push(rateAt(0, 1, 1))
	snap := h.Snapshot()
	snap[0].RxBps = 42

	assert.InDelta(t, 1, h.Snapshot()[0].RxBps, 1e-9)
}

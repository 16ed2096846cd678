package ui

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSparklineScales(t *testing.T) {
	out := sparkline([]float64{0, 50, 100}, 100, 3)
	runes := []rune(out)
	assert.Len(t, runes, 3)
	assert.Equal(t, '▁', runes[0])
	assert.Equal(t, '█', runes[2])
}

func TestSparklinePadsShortSeries(t *testing.T) {
	out := sparkline([]float64{100}, 100, 4)
	runes := []rune(out)
	assert.Len(t, runes, 4)
	assert.Equal(t, ' ', runes[0])
	assert.Equal(t, '█', runes[3])
}

func TestSparklineTruncatesLongSeries(t *testing.T) {
	values := make([]float64, 10)
	values[9] = 100
	out := sparkline(values, 100, 5)
	runes := []rune(out)
	assert.Len(t, runes, 5)
	assert.Equal(t, '█', runes[4])
}

func TestSparklineClipsAboveMax(t *testing.T) {
	out := sparkline([]float64{500}, 100, 1)
	assert.Equal(t, "█", out)
}

func TestSparklineZeroMax(t *testing.T) {
	out := sparkline([]float64{1, 2}, 0, 2)
	assert.Equal(t, "▁▁", out)
}

package ui

import "strings"

var sparkRunes = []rune("▁▂▃▄▅▆▇█")

// sparkline renders values as a fixed-width bar strip scaled against
// max. Values beyond max clip to the tallest bar; the most recent
// value is rightmost. Shorter series are left-padded so the strip
// grows from the right edge, like a chart scrolling leftward.
func sparkline(values []float64, max float64, width int) string {
	if width <= 0 {
		return ""
	}
	if len(values) > width {
		values = values[len(values)-width:]
	}

	var b strings.Builder
	for i := len(values); i < width; i++ {
		b.WriteByte(' ')
	}
	for _, v := range values {
		b.WriteRune(sparkRune(v, max))
	}
	return b.String()
}

func sparkRune(v, max float64) rune {
	if max <= 0 || v <= 0 {
		return sparkRunes[0]
	}
	idx := int(v / max * float64(len(sparkRunes)))
	if idx >= len(sparkRunes) {
		idx = len(sparkRunes) - 1
	}
	return sparkRunes[idx]
}

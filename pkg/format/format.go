// Package format renders byte counts and rates for display.
package format

import "fmt"

// Bytes formats a cumulative byte count using binary units.
func Bytes(bytes uint64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := uint64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}

// BytesPerSec formats a byte rate using binary units.
func BytesPerSec(bps float64) string {
	switch {
	case bps < 1024:
		return fmt.Sprintf("%.1f B/s", bps)
	case bps < 1024*1024:
		return fmt.Sprintf("%.1f KB/s", bps/1024)
	case bps < 1024*1024*1024:
		return fmt.Sprintf("%.1f MB/s", bps/(1024*1024))
	default:
		return fmt.Sprintf("%.1f GB/s", bps/(1024*1024*1024))
	}
}

// BitsPerSec formats a bit rate. Decimal units, as usual for link
// speeds and network rates.
func BitsPerSec(bps float64) string {
	switch {
	case bps < 1000:
		return fmt.Sprintf("%.0f bps", bps)
	case bps < 1e6:
		return fmt.Sprintf("%.1f Kbps", bps/1e3)
	case bps < 1e9:
		return fmt.Sprintf("%.1f Mbps", bps/1e6)
	default:
		return fmt.Sprintf("%.1f Gbps", bps/1e9)
	}
}

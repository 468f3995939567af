// Package display provides human-readable formatting for the per-file
// status lines and the batch summary.
package display

import "fmt"

// FormatBytes returns a human-readable size (B, KiB, MiB, GiB, TiB, PiB).
func FormatBytes(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	suffixes := []string{"KiB", "MiB", "GiB", "TiB", "PiB", "EiB"}
	if exp >= len(suffixes) {
		exp = len(suffixes) - 1
		div = 1
		for i := 0; i <= exp; i++ {
			div *= unit
		}
	}
	return fmt.Sprintf("%.1f %s", float64(bytes)/float64(div), suffixes[exp])
}

// FormatBitrate returns a short label for a bitrate in bits per second
// (e.g. "820 kb/s", "16.4 Mb/s").
func FormatBitrate(bps int64) string {
	switch {
	case bps < 1000:
		return fmt.Sprintf("%d b/s", bps)
	case bps < 1_000_000:
		return fmt.Sprintf("%d kb/s", bps/1000)
	default:
		return fmt.Sprintf("%.1f Mb/s", float64(bps)/1_000_000)
	}
}

// FormatDuration returns "Hh MMm SSs" for a whole-second duration.
func FormatDuration(seconds int64) string {
	h := seconds / 3600
	m := (seconds % 3600) / 60
	s := seconds % 60
	if h > 0 {
		return fmt.Sprintf("%dh %02dm %02ds", h, m, s)
	}
	if m > 0 {
		return fmt.Sprintf("%dm %02ds", m, s)
	}
	return fmt.Sprintf("%ds", s)
}

package planner

import (
	"errors"
	"fmt"
)

// ErrBudgetExhausted means the non-video streams alone meet or exceed the
// container size budget; there is no positive bitrate left for video and
// the file must be skipped rather than encoded with a clamped value.
var ErrBudgetExhausted = errors.New("non-video streams exceed the size budget")

// Budget is the resolved video bitrate budget for one file.
type Budget struct {
	VideoBitrate int64 // bits per second, always > 0
	UsedFallback bool  // audio+subtitle bitrate was undetected; fallback substituted
}

// VideoBitrate computes the target video bitrate that fits
// targetSizeBytes over durationSeconds once the non-video streams are paid
// for. All arithmetic is integer bits-per-second; the division floors,
// matching the rest of the pipeline's math.
//
// A summed audio+subtitle bitrate of exactly 0 signals "undetected" (many
// containers omit per-stream bitrates), not "absent": fallbackOtherBitrate
// is substituted and the result flagged low-confidence.
//
// durationSeconds must be positive; the probe layer rejects durationless
// files before any budget is computed, but a direct caller gets an error
// rather than a divide-by-zero.
func VideoBitrate(targetSizeBytes, durationSeconds, audioBitrate, subtitleBitrate, fallbackOtherBitrate int64) (Budget, error) {
	if durationSeconds <= 0 {
		return Budget{}, fmt.Errorf("non-positive duration %d", durationSeconds)
	}

	other := audioBitrate + subtitleBitrate
	usedFallback := false
	if other == 0 {
		other = fallbackOtherBitrate
		usedFallback = true
	}

	targetBits := targetSizeBytes * 8
	remaining := targetBits - other*durationSeconds
	if remaining <= 0 {
		return Budget{}, ErrBudgetExhausted
	}

	rate := remaining / durationSeconds
	if rate <= 0 {
		return Budget{}, ErrBudgetExhausted
	}

	return Budget{VideoBitrate: rate, UsedFallback: usedFallback}, nil
}

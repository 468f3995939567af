package probe

import (
	"errors"
	"fmt"
	"math"
)

// StreamMetadata is the normalized probe result the planner works from.
// Immutable once built; one per candidate file.
//
// AudioBitrate and SubtitleBitrate of 0 mean "not reported by the
// container", not "silent" — the budget calculator substitutes a
// configured fallback in that case.
type StreamMetadata struct {
	DurationSeconds int64
	AudioBitrate    int64
	SubtitleBitrate int64
	SourceHeight    int
	ColorTransfer   ColorTransfer
}

var (
	errNoVideoStream = errors.New("no video stream")
	errNoDuration    = errors.New("container reports no duration")
)

// Metadata validates the probe result and builds StreamMetadata.
//
// The float duration is rounded half-up to a whole second here, once, so
// every later consumer (both encode passes included) shares the same
// integer figure and the bitrate math stays reproducible.
func (r *Result) Metadata() (StreamMetadata, error) {
	v := r.PrimaryVideo
	if v == nil {
		return StreamMetadata{}, errNoVideoStream
	}
	if v.Height <= 0 {
		return StreamMetadata{}, fmt.Errorf("video stream has invalid height %d", v.Height)
	}

	dur := int64(math.Round(r.Format.Duration))
	if dur <= 0 {
		return StreamMetadata{}, errNoDuration
	}

	return StreamMetadata{
		DurationSeconds: dur,
		AudioBitrate:    r.AudioBitrate(),
		SubtitleBitrate: r.SubtitleBitrate(),
		SourceHeight:    v.Height,
		ColorTransfer:   r.Transfer(),
	}, nil
}

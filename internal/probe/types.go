package probe

import "fmt"

// ColorTransfer is the normalized transfer function of the primary video
// stream. Anything the probe cannot classify is Unknown; the planner treats
// Unknown as SDR so a probe gap on this one field never blocks a file.
type ColorTransfer int

const (
	TransferSDR ColorTransfer = iota
	TransferPQ                // smpte2084 (HDR10)
	TransferHLG               // arib-std-b67
	TransferUnknown
)

// IsHDR reports whether the transfer function requires tonemapping.
func (t ColorTransfer) IsHDR() bool {
	return t == TransferPQ || t == TransferHLG
}

func (t ColorTransfer) String() string {
	switch t {
	case TransferSDR:
		return "sdr"
	case TransferPQ:
		return "pq"
	case TransferHLG:
		return "hlg"
	default:
		return "unknown"
	}
}

// FormatInfo holds container-level metadata from ffprobe's format section.
type FormatInfo struct {
	Filename   string
	NbStreams  int
	FormatName string
	Duration   float64
	Size       int64
	BitRate    int64
}

// VideoStream holds the parsed properties of a single video stream.
type VideoStream struct {
	Index         int
	Codec         string
	Width         int
	Height        int
	BitRate       int64
	ColorTransfer string
	IsAttachedPic bool
}

// AudioStream holds the parsed properties of a single audio stream.
type AudioStream struct {
	Index    int
	Codec    string
	Channels int
	BitRate  int64
	Language string
}

// SubtitleStream holds the parsed properties of a single subtitle stream.
type SubtitleStream struct {
	Index    int
	Codec    string
	BitRate  int64
	Language string
}

// Result is the fully parsed output of a single ffprobe JSON call.
// PrimaryVideo is the first non-attached-pic video stream (nil if none).
type Result struct {
	Format          FormatInfo
	PrimaryVideo    *VideoStream
	AudioStreams    []AudioStream
	SubtitleStreams []SubtitleStream
}

// AudioBitrate returns the summed bitrate of all audio streams in bits/sec.
// 0 means ffprobe did not report per-stream bitrates, not that the file is
// silent.
func (r *Result) AudioBitrate() int64 {
	var sum int64
	for _, a := range r.AudioStreams {
		sum += a.BitRate
	}
	return sum
}

// SubtitleBitrate returns the summed bitrate of all subtitle streams in
// bits/sec (commonly 0: containers rarely report subtitle bitrates).
func (r *Result) SubtitleBitrate() int64 {
	var sum int64
	for _, s := range r.SubtitleStreams {
		sum += s.BitRate
	}
	return sum
}

// Transfer normalizes the primary video stream's color_transfer string.
// Detection of the HDR transfers mirrors the usual ffprobe vocabulary:
// smpte2084 is PQ/HDR10, arib-std-b67 is HLG.
func (r *Result) Transfer() ColorTransfer {
	if r.PrimaryVideo == nil {
		return TransferUnknown
	}
	switch r.PrimaryVideo.ColorTransfer {
	case "smpte2084":
		return TransferPQ
	case "arib-std-b67":
		return TransferHLG
	case "bt709", "bt601", "smpte170m", "smpte240m", "bt470m", "bt470bg",
		"gamma22", "gamma28", "iec61966-2-1", "iec61966-2-4", "linear":
		return TransferSDR
	default:
		return TransferUnknown
	}
}

// Resolution returns "WxH" for the primary video stream, or "unknown".
func (r *Result) Resolution() string {
	v := r.PrimaryVideo
	if v == nil || v.Width <= 0 || v.Height <= 0 {
		return "unknown"
	}
	return fmt.Sprintf("%dx%d", v.Width, v.Height)
}

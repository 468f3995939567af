// Package encoder builds and runs the ffmpeg commands for the two encode
// passes. The argument list is assembled from the job's typed plan; nothing
// here makes decisions beyond rendering them.
package encoder

import (
	"os"
	"strconv"

	"github.com/grefstad/shrinkfit/internal/planner"
)

// Pass numbers for the two-pass encode.
const (
	PassAnalysis     = 1 // measures per-frame cost, output discarded
	PassDistribution = 2 // reads the statistics log, writes the real output
)

// BuildArgs constructs the complete ffmpeg argument slice for one pass of a
// job, argv[0] included. Both passes share decode flags, filter chain,
// codec, preset, bitrate, and log-file base; they differ only in the pass
// number and the output target (null muxer vs the real file).
func BuildArgs(job *planner.EncodeJob, pass int) []string {
	args := make([]string, 0, 32)

	// --- Preamble ---
	args = append(args, "ffmpeg", "-hide_banner", "-nostdin", "-y", "-loglevel", "error", "-stats")

	// --- Hardware decode flags ---
	args = append(args, job.DecodeFlags...)

	// --- Input ---
	args = append(args, "-i", job.SourcePath)

	// --- Filter chain ---
	if graph := job.FilterGraph(); graph != "" {
		args = append(args, "-vf", graph)
	}

	// --- Video codec, bitrate, pass ---
	args = append(args,
		"-map", "0:v:0",
		"-c:v", job.Codec,
		"-b:v", strconv.FormatInt(job.TargetVideoBitrate, 10),
		"-preset", job.Preset,
		"-pass", strconv.Itoa(pass),
		"-passlogfile", job.LogFileBase,
	)

	// --- Output target ---
	if pass == PassAnalysis {
		// Analysis pass produces no playable output; drop the non-video
		// streams and discard the muxed result.
		args = append(args, "-an", "-sn", "-f", "null", os.DevNull)
	} else {
		args = append(args,
			"-map", "0:a?",
			"-map", "0:s?",
			"-c:a", "copy",
			"-c:s", "copy",
			job.OutputPath,
		)
	}

	return args
}

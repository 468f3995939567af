package planner

import (
	"strings"

	"github.com/grefstad/shrinkfit/internal/config"
)

// StageKind tags the role of a filter stage within the chain.
type StageKind int

const (
	StageTonemap  StageKind = iota // HDR → SDR conversion.
	StageScale                     // Downscale to 1080 height, aspect preserved.
	StageDownload                  // Accelerator surface → system memory + 8-bit normalize.
)

func (k StageKind) String() string {
	switch k {
	case StageTonemap:
		return "tonemap"
	case StageScale:
		return "scale"
	case StageDownload:
		return "download"
	default:
		return "unknown"
	}
}

// FilterStage is one typed stage of the video filter chain. Expr is the
// ffmpeg filtergraph fragment for the stage.
type FilterStage struct {
	Kind StageKind
	Expr string
}

// AccelPlan is the ordered decode/filter plan produced by BuildAccelPlan.
type AccelPlan struct {
	DecodeFlags []string
	Filters     []FilterStage
}

// EncodeJob is the complete, backend-specific encode plan for one
// two-pass encode. Created by BuildJob, consumed (never mutated) by the
// orchestrator. Invariant: TargetVideoBitrate > 0 — a job violating this
// must never reach the orchestrator.
type EncodeJob struct {
	SourcePath  string
	OutputPath  string // Sibling of source: base + suffix + original extension.
	LogFileBase string // Deterministic per source path; unique per concurrent job.

	TargetVideoBitrate int64 // bits per second
	LowConfidence      bool  // Budget computed from the fallback other-bitrate.

	Accel       config.AcceleratorClass
	DecodeFlags []string
	Filters     []FilterStage

	Codec  string
	Preset string
}

// FilterGraph renders the filter chain as a comma-joined ffmpeg -vf value.
// Empty when the chain has no stages.
func (j *EncodeJob) FilterGraph() string {
	if len(j.Filters) == 0 {
		return ""
	}
	exprs := make([]string, len(j.Filters))
	for i, f := range j.Filters {
		exprs[i] = f.Expr
	}
	return strings.Join(exprs, ",")
}

package planner

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/grefstad/shrinkfit/internal/config"
	"github.com/grefstad/shrinkfit/internal/probe"
)

// BuildJob composes the bitrate budget and the acceleration plan into a
// complete EncodeJob for one source file. Pure composition, no side
// effects; fails by propagation when the budget cannot be met.
func BuildJob(cfg *config.Config, md probe.StreamMetadata, sourcePath string) (*EncodeJob, error) {
	budget, err := VideoBitrate(
		cfg.TargetSizeBytes,
		md.DurationSeconds,
		md.AudioBitrate,
		md.SubtitleBitrate,
		cfg.FallbackOtherBitrate,
	)
	if err != nil {
		return nil, fmt.Errorf("budget for %q: %w", sourcePath, err)
	}

	accel := BuildAccelPlan(cfg.Accel, cfg.VaapiDevice, md.SourceHeight, md.ColorTransfer)

	return &EncodeJob{
		SourcePath:         sourcePath,
		OutputPath:         OutputPath(sourcePath, cfg.OutputSuffix),
		LogFileBase:        LogFileBase(sourcePath),
		TargetVideoBitrate: budget.VideoBitrate,
		LowConfidence:      budget.UsedFallback,
		Accel:              cfg.Accel,
		DecodeFlags:        accel.DecodeFlags,
		Filters:            accel.Filters,
		Codec:              cfg.VideoCodec,
		Preset:             cfg.Preset,
	}, nil
}

// OutputPath derives the sibling output path: directory + base name +
// suffix + original extension. A base name without an extension simply gets
// the suffix appended.
func OutputPath(sourcePath, suffix string) string {
	dir := filepath.Dir(sourcePath)
	ext := filepath.Ext(sourcePath)
	base := strings.TrimSuffix(filepath.Base(sourcePath), ext)
	return filepath.Join(dir, base+suffix+ext)
}

// LogFileBase derives the two-pass statistics log base for a source path.
// It is a deterministic function of the path (a dot-prefixed sibling), so a
// rerun on the same file reuses — and cleans — the same log namespace, and
// concurrent jobs on distinct files never collide.
func LogFileBase(sourcePath string) string {
	dir := filepath.Dir(sourcePath)
	ext := filepath.Ext(sourcePath)
	base := strings.TrimSuffix(filepath.Base(sourcePath), ext)
	return filepath.Join(dir, "."+base+".2pass")
}

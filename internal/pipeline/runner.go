package pipeline

import (
	"context"
	"errors"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/grefstad/shrinkfit/internal/config"
	"github.com/grefstad/shrinkfit/internal/display"
	"github.com/grefstad/shrinkfit/internal/encoder"
	"github.com/grefstad/shrinkfit/internal/planner"
	"github.com/grefstad/shrinkfit/internal/probe"
)

// Prober turns a file path into probed metadata. Satisfied by probe.Probe;
// replaced by a fake in tests.
type Prober func(ctx context.Context, path string) (*probe.Result, error)

// Driver runs the batch: scan snapshot, per-file orchestration through a
// bounded worker pool, aggregate stats.
type Driver struct {
	Cfg   *config.Config
	Probe Prober
	Orch  *Orchestrator
	Log   zerolog.Logger
}

// NewDriver wires the default collaborators: the real ffprobe call, the
// ffmpeg runner, and the filesystem disposer.
func NewDriver(cfg *config.Config, log zerolog.Logger) *Driver {
	return &Driver{
		Cfg:   cfg,
		Probe: probe.Probe,
		Orch: &Orchestrator{
			Cfg:  cfg,
			Enc:  &encoder.Runner{},
			Disp: FileDisposer{},
			Log:  log,
		},
		Log: log,
	}
}

// Run discovers candidate files and processes each one. Files are
// independent: a bounded pool (Cfg.Jobs) fans them out, every failure stays
// local to its file, and the batch always continues to the next one.
// Context cancellation stops new work and terminates in-flight encoder
// processes, whose failure-path cleanup then runs as usual.
func (d *Driver) Run(ctx context.Context) *RunStats {
	stats := &RunStats{}

	files, err := Discover(d.Cfg.Root, d.Cfg.SizeThresholdBytes, d.Cfg.OutputSuffix)
	if err != nil {
		d.Log.Error().Err(err).Msg("file discovery failed")
		return stats
	}
	stats.Total = len(files)

	d.Log.Info().
		Int("files", len(files)).
		Str("target", display.FormatBytes(d.Cfg.TargetSizeBytes)).
		Str("threshold", display.FormatBytes(d.Cfg.SizeThresholdBytes)).
		Str("accel", string(d.Cfg.Accel)).
		Str("action", string(d.Cfg.Action)).
		Msg("starting batch")

	g := new(errgroup.Group)
	g.SetLimit(d.Cfg.Jobs)
	for _, path := range files {
		path := path
		g.Go(func() error {
			if ctx.Err() != nil {
				return nil
			}
			d.processFile(ctx, path, stats)
			return nil
		})
	}
	_ = g.Wait()

	d.logSummary(stats)
	return stats
}

// processFile handles one candidate: probe → plan → orchestrate, recording
// exactly one outcome.
func (d *Driver) processFile(ctx context.Context, path string, stats *RunStats) {
	log := d.Log.With().Str("file", filepath.Base(path)).Logger()

	fi, err := os.Stat(path)
	if err != nil {
		log.Error().Err(err).Msg("file vanished between scan and processing")
		stats.Record(failed(StageScan, err.Error()), 0, 0)
		return
	}
	inputBytes := fi.Size()

	// --- Probe ---
	pr, err := d.Probe(ctx, path)
	if err != nil {
		log.Warn().Err(err).Msg("skip: probe failed")
		stats.Record(skipped(StageProbe, err.Error()), 0, 0)
		return
	}
	md, err := pr.Metadata()
	if err != nil {
		log.Warn().Err(err).Msg("skip: unusable metadata")
		stats.Record(skipped(StageProbe, err.Error()), 0, 0)
		return
	}

	// --- Plan ---
	job, err := planner.BuildJob(d.Cfg, md, path)
	if err != nil {
		if errors.Is(err, planner.ErrBudgetExhausted) {
			log.Warn().
				Str("other", display.FormatBitrate(md.AudioBitrate+md.SubtitleBitrate)).
				Str("duration", display.FormatDuration(md.DurationSeconds)).
				Msg("skip: non-video streams exceed the size budget")
			stats.Record(skipped(StageBudget, err.Error()), 0, 0)
			return
		}
		log.Error().Err(err).Msg("planning failed")
		stats.Record(failed(StageBudget, err.Error()), 0, 0)
		return
	}

	if job.LowConfidence {
		log.Warn().
			Str("fallback", display.FormatBitrate(d.Cfg.FallbackOtherBitrate)).
			Msg("audio/subtitle bitrate undetected, budget is low-confidence")
	}

	log.Info().
		Str("size", display.FormatBytes(inputBytes)).
		Str("resolution", pr.Resolution()).
		Str("transfer", md.ColorTransfer.String()).
		Str("duration", display.FormatDuration(md.DurationSeconds)).
		Str("video_bitrate", display.FormatBitrate(job.TargetVideoBitrate)).
		Msg("planned")

	// --- Dry run short-circuits right after the bitrate calculation; the
	// orchestrator never leaves Planned and no encoder runs. ---
	if d.Cfg.Action == config.ActionDryRun {
		log.Info().
			Str("output", filepath.Base(job.OutputPath)).
			Msg("dry run: would encode")
		stats.Record(skipped(StageBudget, "dry run"), 0, 0)
		return
	}

	if d.Cfg.SkipExisting {
		if _, err := os.Stat(job.OutputPath); err == nil {
			log.Warn().Str("output", filepath.Base(job.OutputPath)).Msg("skip: output exists")
			stats.Record(skipped(StageScan, "output exists"), 0, 0)
			return
		}
	}

	// --- Orchestrate ---
	outcome := d.Orch.Process(ctx, job)

	var outputBytes int64
	if outcome.Kind == OutcomeConverted {
		if outInfo, err := os.Stat(job.OutputPath); err == nil {
			outputBytes = outInfo.Size()
		}
	}
	stats.Record(outcome, inputBytes, outputBytes)
}

func (d *Driver) logSummary(stats *RunStats) {
	ev := d.Log.Info().
		Int("total", stats.Total).
		Int("converted", stats.Converted).
		Int("skipped", stats.Skipped).
		Int("failed", stats.Failed)
	if stats.Converted > 0 {
		ev = ev.Str("space_saved", display.FormatBytes(stats.SpaceSaved()))
	}
	ev.Msg("batch finished")
}

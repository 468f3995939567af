package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/grefstad/shrinkfit/internal/config"
	"github.com/grefstad/shrinkfit/internal/display"
	"github.com/grefstad/shrinkfit/internal/planner"
)

// minOutputSize is the verification sanity floor. Any real two-pass output
// is orders of magnitude larger; this only catches a zero-exit encoder run
// that produced an empty or truncated file.
const minOutputSize = 64 * 1024

// Encoder runs one pass of an encode job to completion.
type Encoder interface {
	Run(ctx context.Context, job *planner.EncodeJob, pass int) error
}

// Orchestrator drives the two-pass state machine for a single file. It owns
// no cross-file state; one instance is safe for concurrent Process calls on
// distinct jobs.
type Orchestrator struct {
	Cfg  *config.Config
	Enc  Encoder
	Disp Disposer
	Log  zerolog.Logger
}

// Process runs Planned → Pass1 → Pass2 → Verify → Dispose for one job and
// returns its outcome. Every terminal transition — success or failure —
// removes the job's two-pass log artifacts so nothing leaks into a rerun
// that derives the same log base.
//
// Failures are local to the job: the original file is preserved on every
// failure path, a partial output is deleted after a pass-2 failure, and a
// suspect output is deliberately kept after a verify failure so a human can
// inspect it.
func (o *Orchestrator) Process(ctx context.Context, job *planner.EncodeJob) Outcome {
	if job.TargetVideoBitrate <= 0 {
		// The planner never emits such a job; refuse rather than encode at
		// a nonsense bitrate.
		return failed(StageBudget, "job has non-positive video bitrate")
	}

	state := StatePlanned
	log := o.Log.With().Str("file", filepath.Base(job.SourcePath)).Logger()

	// --- Analysis pass ---
	state = StatePass1Running
	log.Info().
		Str("bitrate", display.FormatBitrate(job.TargetVideoBitrate)).
		Msg("pass 1: analysis")
	if err := o.Enc.Run(ctx, job, 1); err != nil {
		state = StatePass1Failed
		o.removeLogs(job)
		log.Error().Err(err).Str("state", state.String()).Msg("analysis pass failed, file abandoned")
		return failed(StagePass1, err.Error())
	}
	state = StatePass1Done

	// --- Distribution pass ---
	state = StatePass2Running
	log.Info().Msg("pass 2: distribution")
	if err := o.Enc.Run(ctx, job, 2); err != nil {
		state = StatePass2Failed
		if rmErr := os.Remove(job.OutputPath); rmErr != nil && !os.IsNotExist(rmErr) {
			log.Warn().Err(rmErr).Msg("could not remove partial output")
		}
		o.removeLogs(job)
		log.Error().Err(err).Str("state", state.String()).Msg("distribution pass failed, file abandoned")
		return failed(StagePass2, err.Error())
	}
	state = StatePass2Done

	// --- Verification ---
	state = StateVerifying
	if err := verifyOutput(job.OutputPath); err != nil {
		state = StateVerifyFailed
		// The suspect output stays on disk for inspection; the original is
		// untouched.
		o.removeLogs(job)
		log.Error().Err(err).Str("state", state.String()).Msg("output failed verification, file abandoned")
		return failed(StageVerify, err.Error())
	}
	state = StateVerified

	// --- Disposition ---
	state = StateDisposing
	if err := o.Disp.Dispose(o.Cfg.Action, job.SourcePath, o.Cfg.BackupDir); err != nil {
		state = StateDisposeFailed
		o.removeLogs(job)
		// Loud: the verified output now coexists with an un-disposed
		// original, which needs operator attention.
		log.Error().Err(err).Str("state", state.String()).Msg("disposition of original failed")
		return failed(StageDispose, err.Error())
	}

	state = StateComplete
	o.removeLogs(job)
	log.Info().Str("state", state.String()).Str("output", filepath.Base(job.OutputPath)).Msg("converted")
	return Outcome{Kind: OutcomeConverted}
}

// verifyOutput checks that the distribution pass produced a plausible file:
// it must exist and exceed the sanity floor.
func verifyOutput(path string) error {
	fi, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("output missing: %w", err)
	}
	if fi.Size() <= minOutputSize {
		return fmt.Errorf("output implausibly small (%d bytes)", fi.Size())
	}
	return nil
}

// removeLogs deletes the two-pass statistics artifacts (<base>-0.log,
// <base>-0.log.mbtree, and any backend equivalents matching <base>-*).
// Called on every terminal transition.
func (o *Orchestrator) removeLogs(job *planner.EncodeJob) {
	matches, err := filepath.Glob(job.LogFileBase + "-*")
	if err != nil {
		return
	}
	for _, m := range matches {
		if rmErr := os.Remove(m); rmErr != nil && !os.IsNotExist(rmErr) {
			o.Log.Warn().Err(rmErr).Str("artifact", m).Msg("could not remove log artifact")
		}
	}
}

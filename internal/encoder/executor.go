package encoder

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"

	"github.com/grefstad/shrinkfit/internal/planner"
)

// Runner executes ffmpeg for the pipeline. ffmpeg's own diagnostics stream
// straight to Stderr for the operator; the pipeline never parses them.
type Runner struct {
	Stderr io.Writer // defaults to os.Stderr
}

// Run builds and executes one pass of a job, blocking until the encoder
// process exits. Encode duration is proportional to source length and may
// be hours; the only deadline is the caller's context, whose cancellation
// terminates the process.
func (r *Runner) Run(ctx context.Context, job *planner.EncodeJob, pass int) error {
	args := BuildArgs(job, pass)

	cmd := exec.CommandContext(ctx, args[0], args[1:]...)
	cmd.Stderr = r.Stderr
	if cmd.Stderr == nil {
		cmd.Stderr = os.Stderr
	}

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("ffmpeg pass %d for %q: %w", pass, job.SourcePath, err)
	}
	return nil
}

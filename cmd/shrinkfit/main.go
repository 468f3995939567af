// Command shrinkfit batch-transcodes oversized video files down to a
// target container size using a two-pass ffmpeg encode.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/grefstad/shrinkfit/internal/check"
	"github.com/grefstad/shrinkfit/internal/config"
	"github.com/grefstad/shrinkfit/internal/log"
	"github.com/grefstad/shrinkfit/internal/pipeline"
)

// version is set at build time via -ldflags.
var version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "shrinkfit: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	cfg := config.Default()
	var accelStr, actionStr string

	cmd := &cobra.Command{
		Use:          "shrinkfit [flags] <root_dir>",
		Short:        "Batch-transcode oversized videos to fit a target container size",
		Version:      version,
		Args:         cobra.MaximumNArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			var err error
			if cfg.Accel, err = config.ParseAccel(accelStr); err != nil {
				return err
			}
			if cfg.Action, err = config.ParseAction(actionStr); err != nil {
				return err
			}
			if len(args) == 1 {
				cfg.Root = config.NormalizeDirArg(args[0])
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			return run(&cfg)
		},
	}

	fs := cmd.Flags()
	fs.Int64Var(&cfg.TargetSizeBytes, "target-size", cfg.TargetSizeBytes, "target container size in bytes")
	fs.Int64Var(&cfg.SizeThresholdBytes, "threshold", 0, "only process files at or above this size (default: target size)")
	fs.StringVar(&cfg.VideoCodec, "codec", cfg.VideoCodec, "ffmpeg video codec id")
	fs.StringVar(&cfg.Preset, "preset", cfg.Preset, "encoder preset")
	fs.Int64Var(&cfg.FallbackOtherBitrate, "fallback-other-bitrate", cfg.FallbackOtherBitrate, "assumed audio+subtitle bitrate (b/s) when the probe reports none")
	fs.StringVar(&accelStr, "accel", string(cfg.Accel), "accelerator class: none | intel | amd | nvidia")
	fs.StringVar(&cfg.VaapiDevice, "vaapi-device", cfg.VaapiDevice, "render node for the amd backend")
	fs.StringVar(&actionStr, "action", string(cfg.Action), "disposition of the original: dryrun | delete | move")
	fs.StringVar(&cfg.BackupDir, "backup-dir", "", "destination root for --action move")
	fs.StringVar(&cfg.OutputSuffix, "suffix", cfg.OutputSuffix, "suffix inserted before the output extension")
	fs.IntVar(&cfg.Jobs, "jobs", cfg.Jobs, "number of files to process concurrently")
	fs.BoolVar(&cfg.SkipExisting, "skip-existing", cfg.SkipExisting, "skip files whose output already exists")
	fs.BoolVar(&cfg.CheckOnly, "check", false, "verify external dependencies and exit")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "log level (trace, debug, info, warn, error)")

	return cmd
}

func run(cfg *config.Config) error {
	log.Configure(log.Config{Level: cfg.LogLevel})
	logger := log.Base()

	if err := check.CheckDeps(cfg); err != nil {
		return err
	}
	if cfg.CheckOnly {
		logger.Info().Str("version", version).Msg("all external dependencies present")
		return nil
	}

	// SIGINT/SIGTERM cancel the context; in-flight encoder processes are
	// terminated and their partial artifacts cleaned up on the way out.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info().Str("version", version).Str("root", cfg.Root).Msg("shrinkfit")
	if cfg.Action == config.ActionDryRun {
		logger.Warn().Msg("dry run: no files will be encoded or disposed")
	}

	stats := pipeline.NewDriver(cfg, log.WithComponent("pipeline")).Run(ctx)
	if ctx.Err() != nil {
		return fmt.Errorf("interrupted after %d of %d files", stats.Converted+stats.Skipped+stats.Failed, stats.Total)
	}
	return nil
}

// Package config holds the immutable run configuration: defaults, enum
// types, and validation. Values are bound from CLI flags in cmd/shrinkfit
// and passed (by pointer, never mutated afterwards) into the planner and
// pipeline.
package config

import (
	"errors"
	"fmt"
	"strings"
)

// --- Enum types for validated string fields ---

// AcceleratorClass selects the hardware decode/filter backend. The final
// encode always runs on the CPU; the class only controls where decode and
// the filter chain execute.
type AcceleratorClass string

const (
	AccelNone   AcceleratorClass = "none"   // Software decode and filters (default).
	AccelIntel  AcceleratorClass = "intel"  // Intel QSV decode surface.
	AccelAMD    AcceleratorClass = "amd"    // AMD VAAPI decode surface.
	AccelNvidia AcceleratorClass = "nvidia" // NVIDIA CUDA decode surface.
)

// Action is the post-conversion disposition of the original file.
type Action string

const (
	ActionDryRun Action = "dryrun" // Report the plan, touch nothing (default).
	ActionDelete Action = "delete" // Remove the original after verification.
	ActionMove   Action = "move"   // Relocate the original into BackupDir.
)

// Config holds all runtime settings. Populated by [Default] and then bound
// to CLI flags before being validated.
type Config struct {
	// Scan root (positional arg).
	Root string

	// Size budget.
	TargetSizeBytes    int64 // Target container size. Default: 16106127360 (15 GiB).
	SizeThresholdBytes int64 // Scanner floor; 0 means "same as TargetSizeBytes".

	// Encoder settings.
	VideoCodec           string           // Default: "libx264".
	Preset               string           // Default: "slow".
	FallbackOtherBitrate int64            // Substitute when audio+subtitle bitrate is undetected. Default: 8 Mb/s.
	Accel                AcceleratorClass // Default: "none".
	VaapiDevice          string           // Render node for the amd backend. Default: "/dev/dri/renderD128".

	// Disposition.
	Action    Action // Default: "dryrun".
	BackupDir string // Required when Action is "move".

	// Output naming.
	OutputSuffix string // Inserted before the extension. Default: "-shrunk".

	// Behavior.
	Jobs         int  // Concurrent files. Default: 1 (sequential, reference behavior).
	SkipExisting bool // Default: true. Skip files whose output already exists.
	CheckOnly    bool // Run dependency diagnostics and exit.

	// Logging.
	LogLevel string // zerolog level name. Default: "info".
}

// Default returns a Config with all defaults. Used as the base before CLI
// flags are bound on top.
func Default() Config {
	return Config{
		TargetSizeBytes:      16_106_127_360,
		VideoCodec:           "libx264",
		Preset:               "slow",
		FallbackOtherBitrate: 8_000_000,
		Accel:                AccelNone,
		VaapiDevice:          "/dev/dri/renderD128",
		Action:               ActionDryRun,
		OutputSuffix:         "-shrunk",
		Jobs:                 1,
		SkipExisting:         true,
		LogLevel:             "info",
	}
}

// Validate checks enum fields and numeric invariants, and resolves the
// size threshold default. Returns a user-facing error on the first problem.
func (c *Config) Validate() error {
	switch c.Accel {
	case AccelNone, AccelIntel, AccelAMD, AccelNvidia:
		// valid
	default:
		return fmt.Errorf("invalid accelerator %q (use none, intel, amd, or nvidia)", c.Accel)
	}

	switch c.Action {
	case ActionDryRun, ActionDelete, ActionMove:
		// valid
	default:
		return fmt.Errorf("invalid action %q (use dryrun, delete, or move)", c.Action)
	}

	if c.Action == ActionMove && c.BackupDir == "" {
		return errors.New("action 'move' requires --backup-dir")
	}
	if c.TargetSizeBytes <= 0 {
		return errors.New("target size must be positive")
	}
	if c.FallbackOtherBitrate <= 0 {
		return errors.New("fallback bitrate must be positive")
	}
	if c.Jobs < 1 {
		return errors.New("jobs must be at least 1")
	}
	if c.OutputSuffix == "" {
		return errors.New("output suffix must not be empty")
	}
	if c.SizeThresholdBytes == 0 {
		c.SizeThresholdBytes = c.TargetSizeBytes
	}
	if c.SizeThresholdBytes < 0 {
		return errors.New("size threshold must not be negative")
	}

	if c.CheckOnly {
		return nil
	}
	if c.Root == "" {
		return errors.New("need a scan root directory")
	}
	return nil
}

// ParseAccel converts a CLI string into an AcceleratorClass.
func ParseAccel(s string) (AcceleratorClass, error) {
	a := AcceleratorClass(strings.ToLower(strings.TrimSpace(s)))
	switch a {
	case AccelNone, AccelIntel, AccelAMD, AccelNvidia:
		return a, nil
	}
	return "", fmt.Errorf("invalid accelerator %q (use none, intel, amd, or nvidia)", s)
}

// ParseAction converts a CLI string into an Action.
func ParseAction(s string) (Action, error) {
	a := Action(strings.ToLower(strings.TrimSpace(s)))
	switch a {
	case ActionDryRun, ActionDelete, ActionMove:
		return a, nil
	}
	return "", fmt.Errorf("invalid action %q (use dryrun, delete, or move)", s)
}

// NormalizeDirArg strips trailing slashes from a directory path. The
// filesystem root "/" is returned unchanged so we don't produce an empty
// string.
func NormalizeDirArg(path string) string {
	if path == "/" {
		return "/"
	}
	return strings.TrimRight(path, "/")
}

// Package check validates external prerequisites before the pipeline
// starts: ffmpeg, ffprobe, the configured video codec, and the selected
// accelerator's device. A failure here is the only process-wide fatal;
// everything after startup is per-file.
package check

import (
	"errors"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/grefstad/shrinkfit/internal/config"
)

// Sentinel errors returned by CheckDeps when a required tool or device is missing.
var (
	ErrFfmpegNotFound   = errors.New("ffmpeg not found on PATH")
	ErrFfprobeNotFound  = errors.New("ffprobe not found on PATH")
	ErrCodecUnavailable = errors.New("configured video codec failed a test encode")
	ErrNoRenderDevice   = errors.New("no render device found in /dev/dri/")
	ErrNoNvidiaTools    = errors.New("nvidia accelerator selected but nvidia-smi not found")
)

// CheckDeps verifies that ffmpeg and ffprobe are on PATH, that the
// configured codec can actually encode, and that the selected accelerator
// class has a usable device. Returns a sentinel error on the first failure.
func CheckDeps(cfg *config.Config) error {
	if _, err := exec.LookPath("ffmpeg"); err != nil {
		return ErrFfmpegNotFound
	}
	if _, err := exec.LookPath("ffprobe"); err != nil {
		return ErrFfprobeNotFound
	}

	if !testCodec(cfg.VideoCodec) {
		return ErrCodecUnavailable
	}

	switch cfg.Accel {
	case config.AccelIntel, config.AccelAMD:
		if firstRenderDevice() == "" {
			return ErrNoRenderDevice
		}
	case config.AccelNvidia:
		if _, err := exec.LookPath("nvidia-smi"); err != nil {
			return ErrNoNvidiaTools
		}
	}
	return nil
}

// testCodec runs a minimal encode of a synthetic source to verify the
// codec is compiled into the local ffmpeg.
func testCodec(codec string) bool {
	return runSilent("ffmpeg",
		"-hide_banner", "-nostdin", "-loglevel", "error",
		"-f", "lavfi", "-i", "color=black:s=256x256:d=0.1",
		"-c:v", codec,
		"-f", "null", "-",
	)
}

// firstRenderDevice returns the first available /dev/dri/renderD* path, or
// empty string if none exist.
func firstRenderDevice() string {
	matches, _ := filepath.Glob("/dev/dri/renderD*")
	for _, m := range matches {
		if _, err := os.Stat(m); err == nil {
			return m
		}
	}
	return ""
}

// runSilent runs a command and returns true if it exits with status 0.
// Both stdout and stderr are discarded.
func runSilent(name string, args ...string) bool {
	cmd := exec.Command(name, args...)
	cmd.Stdout = nil
	cmd.Stderr = nil
	return cmd.Run() == nil
}

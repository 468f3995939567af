package pipeline

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/grefstad/shrinkfit/internal/config"
)

// Disposer applies the post-conversion action to the original file.
type Disposer interface {
	Dispose(action config.Action, path, backupRoot string) error
}

// FileDisposer performs the real filesystem effects. Disposal only runs
// after the batch's scan snapshot was taken, so removing or moving an
// original never races directory enumeration.
type FileDisposer struct{}

// Dispose deletes the original, moves it into backupRoot (filename
// preserved), or — for dryrun — does nothing by contract.
func (FileDisposer) Dispose(action config.Action, path, backupRoot string) error {
	switch action {
	case config.ActionDelete:
		if err := os.Remove(path); err != nil {
			return fmt.Errorf("delete original: %w", err)
		}
		return nil
	case config.ActionMove:
		if err := os.MkdirAll(backupRoot, 0o755); err != nil {
			return fmt.Errorf("create backup root: %w", err)
		}
		dest := filepath.Join(backupRoot, filepath.Base(path))
		if err := os.Rename(path, dest); err != nil {
			return fmt.Errorf("move original to backup: %w", err)
		}
		return nil
	case config.ActionDryRun:
		return nil
	default:
		return fmt.Errorf("unknown disposition action %q", action)
	}
}

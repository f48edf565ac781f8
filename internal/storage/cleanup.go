package storage

import (
	"log/slog"
	"os"
	"path/filepath"
	"time"
)

// Cleaner removes expired files from sandboxed directories. It backs both
// the startup sweep (orphaned uploads from a previous run) and the scheduled
// retention sweep over converted output.
type Cleaner struct {
	logger *slog.Logger
}

// NewCleaner creates a Cleaner.
func NewCleaner(logger *slog.Logger) *Cleaner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Cleaner{logger: logger}
}

// SweepAll removes every regular file under the sandbox. Used at startup to
// drop uploads orphaned by an unclean shutdown. Returns the number of files
// removed.
func (c *Cleaner) SweepAll(sb *Sandbox) (int, error) {
	return c.sweep(sb, 0)
}

// SweepOlderThan removes regular files under the sandbox whose modification
// time is older than maxAge. Returns the number of files removed.
func (c *Cleaner) SweepOlderThan(sb *Sandbox, maxAge time.Duration) (int, error) {
	return c.sweep(sb, maxAge)
}

func (c *Cleaner) sweep(sb *Sandbox, maxAge time.Duration) (int, error) {
	names, err := sb.List()
	if err != nil {
		return 0, err
	}

	cutoff := time.Now().Add(-maxAge)
	removed := 0
	for _, name := range names {
		path := filepath.Join(sb.BaseDir(), name)

		if maxAge > 0 {
			info, err := os.Stat(path)
			if err != nil {
				continue
			}
			if info.ModTime().After(cutoff) {
				continue
			}
		}

		if err := os.Remove(path); err != nil {
			c.logger.Warn("failed to remove expired file",
				slog.String("path", path),
				slog.String("error", err.Error()),
			)
			continue
		}
		removed++
	}

	if removed > 0 {
		c.logger.Info("cleanup sweep removed files",
			slog.String("dir", sb.BaseDir()),
			slog.Int("removed", removed),
		)
	}

	return removed, nil
}

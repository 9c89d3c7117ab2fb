package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/rentbot/backend/internal/application/rentbot"
	"go.uber.org/zap"
)

var _ rentbot.ReceiptArchive = (*FileReceiptArchive)(nil)

// DefaultCleanupInterval is how often RunRetention sweeps the archive
const DefaultCleanupInterval = 24 * time.Hour

// FileReceiptArchive stores receipt PDFs under a base directory
type FileReceiptArchive struct {
	dir    string
	logger *zap.Logger
	now    func() time.Time
}

// NewFileReceiptArchive creates the base directory if needed
func NewFileReceiptArchive(dir string, logger *zap.Logger) (*FileReceiptArchive, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, errors.New("archive directory is required")
	}
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("failed to create archive directory %s: %w", dir, err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FileReceiptArchive{dir: dir, logger: logger, now: time.Now}, nil
}

// Dir returns the base directory
func (a *FileReceiptArchive) Dir() string {
	return a.dir
}

// Archive writes pdf to {dir}/{key} and returns the file path. Keys must be
// relative and may not climb out of the base directory.
func (a *FileReceiptArchive) Archive(ctx context.Context, key string, pdf []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if key == "" {
		return "", errors.New("archive key is required")
	}
	if len(pdf) == 0 {
		return "", errors.New("refusing to archive an empty document")
	}

	full, err := a.resolve(key)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(full), 0o750); err != nil {
		return "", fmt.Errorf("failed to create directory for %s: %w", key, err)
	}

	// renamed into place so readers never see a partial file
	tmp := full + ".part"
	if err := os.WriteFile(tmp, pdf, 0o640); err != nil {
		return "", fmt.Errorf("failed to write receipt %s: %w", key, err)
	}
	if err := os.Rename(tmp, full); err != nil {
		_ = os.Remove(tmp)
		return "", fmt.Errorf("failed to move receipt %s into place: %w", key, err)
	}

	a.logger.Debug("Receipt archived", zap.String("path", full), zap.Int("bytes", len(pdf)))
	return full, nil
}

func (a *FileReceiptArchive) resolve(key string) (string, error) {
	clean := filepath.Clean(filepath.FromSlash(key))
	if filepath.IsAbs(clean) || containsDotDot(key) {
		a.logger.Warn("Blocked archive key", zap.String("key", key))
		return "", fmt.Errorf("invalid archive key %q", key)
	}

	absBase, err := filepath.Abs(a.dir)
	if err != nil {
		return "", fmt.Errorf("failed to resolve archive directory: %w", err)
	}
	full := filepath.Join(absBase, clean)
	if !strings.HasPrefix(full, absBase+string(filepath.Separator)) {
		return "", fmt.Errorf("invalid archive key %q", key)
	}
	return full, nil
}

// CleanupOlderThan removes archived PDFs last modified more than age ago
func (a *FileReceiptArchive) CleanupOlderThan(ctx context.Context, age time.Duration) (int, error) {
	cutoff := a.now().Add(-age)
	deleted := 0

	err := filepath.WalkDir(a.dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if d.IsDir() || filepath.Ext(path) != ".pdf" {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return nil
		}
		if info.ModTime().Before(cutoff) {
			if err := os.Remove(path); err == nil {
				deleted++
				a.logger.Debug("Deleted expired receipt", zap.String("path", path))
			}
		}
		return nil
	})
	if err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded) {
		return deleted, fmt.Errorf("archive cleanup failed: %w", err)
	}

	a.logger.Info("Archive cleanup completed", zap.Int("deleted", deleted), zap.Duration("age", age))
	return deleted, nil
}

// RunRetention sweeps once immediately, then every interval until ctx ends
func (a *FileReceiptArchive) RunRetention(ctx context.Context, age, interval time.Duration) {
	if interval <= 0 {
		interval = DefaultCleanupInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		if _, err := a.CleanupOlderThan(ctx, age); err != nil {
			a.logger.Warn("Archive cleanup failed", zap.Error(err))
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// containsDotDot reports whether any component of path is ".."
func containsDotDot(path string) bool {
	parts := strings.FieldsFunc(path, func(r rune) bool {
		return r == '/' || r == filepath.Separator
	})
	return slices.Contains(parts, "..")
}

package fs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"sync/atomic"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/aretw0/jsonpit/pkg/core"
)

// Config holds the configuration for the disk adapter.
type Config struct {
	Logger   *slog.Logger
	FileMode os.FileMode
	DirMode  os.FileMode
}

// Disk implements core.Storage on the local filesystem.
type Disk struct {
	logger   *slog.Logger
	fileMode os.FileMode
	dirMode  os.FileMode
	watchers atomic.Int32
}

// NewDisk creates a disk adapter. Zero modes default to 0644 and 0755.
func NewDisk(config Config) *Disk {
	d := &Disk{
		logger:   config.Logger,
		fileMode: config.FileMode,
		dirMode:  config.DirMode,
	}
	if d.logger == nil {
		d.logger = slog.New(slog.DiscardHandler)
	}
	if d.fileMode == 0 {
		d.fileMode = 0644
	}
	if d.dirMode == 0 {
		d.dirMode = 0755
	}
	return d
}

var (
	_ core.Storage   = (*Disk)(nil)
	_ core.Watchable = (*Disk)(nil)
)

func (d *Disk) Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func (d *Disk) ReadFile(path string) ([]byte, error) {
	return os.ReadFile(path)
}

// WriteFile replaces path atomically, creating parent directories.
func (d *Disk) WriteFile(path string, data []byte) error {
	return writeFileAtomic(path, data, d.fileMode)
}

// Copy copies src to dst, replacing dst atomically.
func (d *Disk) Copy(dst, src string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", src, err)
	}
	defer in.Close()

	data, err := io.ReadAll(in)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", src, err)
	}
	return writeFileAtomic(dst, data, d.fileMode)
}

// Move renames src to dst. An existing dst is a conflict unless
// opts.Replace is set, in which case it is kept as its .bak sibling when
// opts.KeepBackup is set. Without KeepBackup a stale .bak is removed.
func (d *Disk) Move(dst, src string, opts core.MoveOptions) error {
	if !d.Exists(src) {
		return fmt.Errorf("failed to move %s: %w", src, os.ErrNotExist)
	}

	bak := BackupName(dst)
	if bak == dst || bak == src {
		bak = ""
	}

	if d.Exists(dst) {
		if !opts.Replace {
			return fmt.Errorf("%w: %s already exists", core.ErrConflict, dst)
		}
		if opts.KeepBackup && bak != "" {
			if err := os.Remove(bak); err != nil && !errors.Is(err, os.ErrNotExist) {
				return fmt.Errorf("failed to remove old backup %s: %w", bak, err)
			}
			if err := os.Rename(dst, bak); err != nil {
				return fmt.Errorf("failed to back up %s: %w", dst, err)
			}
			if err := d.rename(dst, src); err != nil {
				if restoreErr := os.Rename(bak, dst); restoreErr != nil {
					d.logger.Error("failed to restore backup", "path", dst, "error", restoreErr)
				}
				return err
			}
			return nil
		}
	}

	if !opts.KeepBackup && bak != "" {
		if err := os.Remove(bak); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("failed to remove stale backup %s: %w", bak, err)
		}
	}
	return d.rename(dst, src)
}

func (d *Disk) rename(dst, src string) error {
	if err := os.MkdirAll(filepath.Dir(dst), d.dirMode); err != nil {
		return fmt.Errorf("failed to create parent of %s: %w", dst, err)
	}
	if err := os.Rename(src, dst); err != nil {
		return fmt.Errorf("failed to move %s to %s: %w", src, dst, err)
	}
	return nil
}

// Remove deletes a file. A missing file is not an error.
func (d *Disk) Remove(path string) error {
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove %s: %w", path, err)
	}
	return nil
}

func (d *Disk) MkdirAll(path string) error {
	if err := os.MkdirAll(path, d.dirMode); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", path, err)
	}
	return nil
}

// RemoveDir removes path and its empty subdirectories. Files are removed
// only with opts.DeleteFiles; otherwise their presence is a conflict, as
// is anything left below the depth bound.
func (d *Disk) RemoveDir(path string, opts core.RemoveDirOptions) error {
	info, err := os.Stat(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to stat %s: %w", path, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", path)
	}
	return d.removeDir(path, opts, 0)
}

func (d *Disk) removeDir(path string, opts core.RemoveDirOptions, level int) error {
	entries, err := os.ReadDir(path)
	if err != nil {
		return fmt.Errorf("failed to read directory %s: %w", path, err)
	}

	for _, e := range entries {
		child := filepath.Join(path, e.Name())
		if e.IsDir() {
			if opts.Depth > 0 && level >= opts.Depth {
				return fmt.Errorf("%w: %s exceeds depth %d", core.ErrConflict, child, opts.Depth)
			}
			if err := d.removeDir(child, opts, level+1); err != nil {
				return err
			}
			continue
		}
		if !opts.DeleteFiles {
			return fmt.Errorf("%w: directory %s is not empty", core.ErrConflict, path)
		}
		if err := os.Remove(child); err != nil {
			return fmt.Errorf("failed to remove %s: %w", child, err)
		}
	}

	if err := os.Remove(path); err != nil {
		return fmt.Errorf("failed to remove directory %s: %w", path, err)
	}
	return nil
}

// Glob returns the regular files below dir matching pattern, sorted.
// A missing dir yields no matches.
func (d *Disk) Glob(dir, pattern string) ([]string, error) {
	if !d.Exists(dir) {
		return nil, nil
	}
	matches, err := doublestar.Glob(os.DirFS(dir), pattern, doublestar.WithFilesOnly())
	if err != nil {
		return nil, fmt.Errorf("invalid pattern %q: %w", pattern, err)
	}
	out := make([]string, len(matches))
	for i, m := range matches {
		out[i] = filepath.Join(dir, filepath.FromSlash(m))
	}
	sort.Strings(out)
	return out, nil
}

// Watch reports paths created, written, renamed or removed in dir and its
// immediate subdirectories until ctx is done.
func (d *Disk) Watch(ctx context.Context, dir string) (<-chan string, error) {
	w, err := newDirWatcher(d, dir)
	if err != nil {
		return nil, err
	}
	return w.start(ctx), nil
}

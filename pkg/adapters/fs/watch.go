package fs

import (
	"context"
	"fmt"
	"os"

	"github.com/aretw0/lifecycle"
	"github.com/fsnotify/fsnotify"
)

type dirWatcher struct {
	disk    *Disk
	dir     string
	watcher *fsnotify.Watcher
	out     chan string
}

func newDirWatcher(disk *Disk, dir string) (*dirWatcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}
	if err := watcher.Add(dir); err != nil {
		_ = watcher.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", dir, err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		_ = watcher.Close()
		return nil, fmt.Errorf("failed to read directory %s: %w", dir, err)
	}
	for _, e := range entries {
		if e.IsDir() {
			_ = watcher.Add(dir + string(os.PathSeparator) + e.Name())
		}
	}

	return &dirWatcher{
		disk:    disk,
		dir:     dir,
		watcher: watcher,
		out:     make(chan string, 16),
	}, nil
}

func (w *dirWatcher) start(ctx context.Context) <-chan string {
	w.disk.watchers.Add(1)
	lifecycle.Go(ctx, func(ctx context.Context) error {
		defer w.disk.watchers.Add(-1)
		defer close(w.out)
		defer w.watcher.Close()
		return w.run(ctx)
	}, lifecycle.WithErrorHandler(func(err error) {
		w.disk.logger.Error("watcher stopped", "dir", w.dir, "error", err)
	}))
	return w.out
}

func (w *dirWatcher) run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.watcher.Events:
			if !ok {
				if ctx.Err() != nil {
					return nil
				}
				return fmt.Errorf("watcher events channel closed")
			}
			w.disk.logger.Debug("event received", "name", event.Name, "op", event.Op.String())

			if event.Has(fsnotify.Create) {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					_ = w.watcher.Add(event.Name)
				}
			}
			if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) &&
				!event.Has(fsnotify.Rename) && !event.Has(fsnotify.Remove) {
				continue
			}

			select {
			case w.out <- event.Name:
			case <-ctx.Done():
				return nil
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				if ctx.Err() != nil {
					return nil
				}
				return fmt.Errorf("watcher errors channel closed")
			}
			w.disk.logger.Error("fsnotify error", "dir", w.dir, "error", err)
		}
	}
}

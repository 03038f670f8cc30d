package pit

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/aretw0/lifecycle"

	"github.com/aretw0/jsonpit/pkg/core"
)

var errNoWatch = errors.New("storage does not support watching")

// Watch reloads the pit whenever its files change on disk and reports one
// EventReload per name whose history grew. Bursts of file activity are
// coalesced. The returned channel is closed when ctx is done or the pit is
// closed.
func (p *Pit) Watch(ctx context.Context) (<-chan core.Event, error) {
	if p.isClosed() {
		return nil, core.ErrClosed
	}
	w, ok := p.opts.storage.(core.Watchable)
	if !ok {
		return nil, errNoWatch
	}
	if !p.opts.storage.Exists(p.dir) {
		return nil, fmt.Errorf("watch %s: %w", p.dir, core.ErrNotFound)
	}
	if !p.opts.readOnly {
		// Watch the changes directory from the start so the first change
		// file is not missed.
		if err := p.opts.storage.MkdirAll(p.changesDir); err != nil {
			return nil, err
		}
	}

	wctx, cancel := context.WithCancel(ctx)
	paths, err := w.Watch(wctx, p.dir)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("failed to watch %s: %w", p.dir, err)
	}

	p.watchMu.Lock()
	id := p.watchSeq
	p.watchSeq++
	p.watchers[id] = cancel
	p.watchMu.Unlock()

	out := make(chan core.Event, p.opts.eventBuffer)
	lifecycle.Go(wctx, func(ctx context.Context) error {
		defer close(out)
		defer func() {
			p.watchMu.Lock()
			delete(p.watchers, id)
			p.watchMu.Unlock()
			cancel()
		}()
		return p.watchLoop(ctx, paths, out)
	}, lifecycle.WithErrorHandler(func(err error) {
		p.logger.Error("watch stopped", "error", err)
	}))

	p.logger.Debug("watching", "dir", p.dir)
	return out, nil
}

func (p *Pit) watchLoop(ctx context.Context, paths <-chan string, out chan<- core.Event) error {
	timer := time.NewTimer(p.opts.debounce)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case path, ok := <-paths:
			if !ok {
				return nil
			}
			if !p.relevant(path) {
				continue
			}
			timer.Reset(p.opts.debounce)

		case <-timer.C:
			names, err := p.Reload(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return nil
				}
				p.logger.Warn("reload failed", "error", err)
				continue
			}
			now := time.Now().UTC()
			for _, name := range names {
				e := core.Event{Type: core.EventReload, Name: name, Modified: now}
				if latest, ok := p.latest(name); ok {
					e.Modified = latest.Modified()
				}
				select {
				case out <- e:
				case <-ctx.Done():
					return nil
				}
			}
		}
	}
}

// relevant filters out temporary files and backups.
func (p *Pit) relevant(path string) bool {
	return filepath.Ext(path) == p.opts.codec.Ext()
}

func (p *Pit) latest(name string) (*core.Item, bool) {
	h, ok := p.History(name)
	if !ok {
		return nil, false
	}
	return h.Latest()
}

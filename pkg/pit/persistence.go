package pit

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"time"

	"github.com/aretw0/jsonpit/pkg/core"
)

// Save persists the pit. Without force a clean pit is left alone.
//
// In the default mode the whole state is written to a temporary sibling and
// moved over the consolidated file, keeping the previous one as .bak when
// backups are enabled; change files already folded in are then removed.
// In change-log mode only the versions accepted since the last save are
// appended as a new change file.
func (p *Pit) Save(ctx context.Context, force bool) error {
	if p.opts.readOnly {
		return core.ErrReadOnly
	}
	if p.isClosed() {
		return core.ErrClosed
	}
	return p.save(ctx, force)
}

func (p *Pit) save(ctx context.Context, force bool) error {
	p.saveMu.Lock()
	defer p.saveMu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	target := p.version.Load()
	pinned := p.pinned.Load()
	if !force && target == p.saved.Load() {
		saveTotal.WithLabelValues("skipped").Inc()
		return nil
	}

	start := time.Now()
	var err error
	if p.opts.changeLog {
		err = p.appendChanges()
	} else {
		err = p.consolidate()
	}
	saveDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		saveTotal.WithLabelValues("error").Inc()
		p.logger.Error("save failed", "error", err)
		return err
	}

	p.saved.Store(target)
	p.pinnedSaved.Store(pinned)
	saveTotal.WithLabelValues("written").Inc()
	now := time.Now()
	p.stateMu.Lock()
	p.lastSave = &now
	p.stateMu.Unlock()
	p.logger.Debug("pit saved", "duration", time.Since(start), "change_log", p.opts.changeLog)
	return nil
}

func (p *Pit) consolidate() error {
	data, err := p.opts.codec.Marshal(p.snapshot())
	if err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}

	tmp := p.file + ".tmp"
	if err := p.opts.storage.WriteFile(tmp, data); err != nil {
		return fmt.Errorf("failed to write snapshot: %w", err)
	}
	opts := core.MoveOptions{Replace: true, KeepBackup: p.opts.keepBackup}
	if err := p.opts.storage.Move(p.file, tmp, opts); err != nil {
		_ = p.opts.storage.Remove(tmp)
		return fmt.Errorf("failed to replace %s: %w", p.file, err)
	}

	// The snapshot now contains everything the merged change files held.
	for path := range p.merged {
		if err := p.opts.storage.Remove(path); err != nil {
			p.logger.Warn("failed to remove merged change file", "path", path, "error", err)
			continue
		}
		delete(p.merged, path)
	}
	return nil
}

func (p *Pit) snapshot() Snapshot {
	snap := Snapshot{
		Version: SnapshotVersion,
		Saved:   formatTime(time.Now()),
	}
	p.histories.Range(func(k, v any) bool {
		h := v.(*core.History)
		items := h.Items()
		rec := HistoryRecord{
			Name:     k.(string),
			MaxCount: h.MaxCount(),
			Items:    make([]core.Record, len(items)),
		}
		for i, it := range items {
			rec.Items[i] = it.Record()
		}
		snap.Histories = append(snap.Histories, rec)
		return true
	})
	sort.Slice(snap.Histories, func(i, j int) bool {
		return snap.Histories[i].Name < snap.Histories[j].Name
	})
	return snap
}

// load folds the consolidated file and every change file into memory and
// returns the names whose history grew. Callers hold saveMu.
func (p *Pit) load(ctx context.Context) ([]string, error) {
	grown := make(map[string]struct{})

	if p.opts.storage.Exists(p.file) {
		data, err := p.opts.storage.ReadFile(p.file)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", p.file, err)
		}
		var snap Snapshot
		if err := p.opts.codec.Unmarshal(data, &snap); err != nil {
			return nil, fmt.Errorf("%w: %s: %v", core.ErrCorrupt, p.file, err)
		}
		for _, hr := range snap.Histories {
			h := p.ensureHistory(hr.Name, hr.MaxCount)
			for _, r := range hr.Items {
				it, err := core.FromRecord(r)
				if err != nil {
					return nil, fmt.Errorf("%s: %w", p.file, err)
				}
				if it.Name() != hr.Name {
					return nil, fmt.Errorf("%w: %s: item %q filed under %q", core.ErrCorrupt, p.file, it.Name(), hr.Name)
				}
				if h.Merge(it) {
					grown[hr.Name] = struct{}{}
				}
				p.observe(it.Modified())
			}
		}
	}

	changes, err := p.readChanges(ctx)
	if err != nil {
		return nil, err
	}
	for _, c := range changes.items {
		if p.EnsureHistory(c.Name()).Merge(c) {
			grown[c.Name()] = struct{}{}
		}
		p.observe(c.Modified())
	}
	newFiles := 0
	for _, path := range changes.paths {
		if _, ok := p.merged[path]; !ok {
			newFiles++
		}
		p.merged[path] = struct{}{}
	}

	// Change files still need to be consolidated by a primary writer.
	if newFiles > 0 && !p.opts.readOnly && !p.opts.changeLog {
		p.version.Add(1)
	}

	names := make([]string, 0, len(grown))
	for name := range grown {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// Reload re-reads persisted state, merges versions written by other
// processes and returns the names whose history grew. It is allowed on
// read-only pits.
func (p *Pit) Reload(ctx context.Context) ([]string, error) {
	if p.isClosed() {
		return nil, core.ErrClosed
	}

	p.saveMu.Lock()
	names, err := p.load(ctx)
	p.saveMu.Unlock()
	if err != nil {
		return nil, err
	}

	reloadTotal.Inc()
	now := time.Now()
	p.stateMu.Lock()
	p.lastReload = &now
	p.stateMu.Unlock()
	if len(names) > 0 {
		p.logger.Debug("reloaded", "grown", len(names))
	}
	return names, nil
}

func (p *Pit) changeFileName(at time.Time) string {
	return filepath.Join(p.changesDir, fmt.Sprintf("%d-%s%s", at.UnixNano(), p.opts.writerID, p.opts.codec.Ext()))
}

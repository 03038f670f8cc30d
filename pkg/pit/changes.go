package pit

import (
	"context"
	"fmt"
	"slices"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/aretw0/jsonpit/pkg/core"
)

type changeSet struct {
	paths []string
	items []*core.Item // ordered by Modified
}

// readChanges decodes every change file concurrently.
func (p *Pit) readChanges(ctx context.Context) (changeSet, error) {
	paths, err := p.opts.storage.Glob(p.changesDir, "*"+p.opts.codec.Ext())
	if err != nil {
		return changeSet{}, fmt.Errorf("failed to list change files: %w", err)
	}
	if len(paths) == 0 {
		return changeSet{}, nil
	}

	records := make([]ChangeRecord, len(paths))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(8)
	for i, path := range paths {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			data, err := p.opts.storage.ReadFile(path)
			if err != nil {
				return fmt.Errorf("failed to read %s: %w", path, err)
			}
			if err := p.opts.codec.Unmarshal(data, &records[i]); err != nil {
				return fmt.Errorf("%w: %s: %v", core.ErrCorrupt, path, err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return changeSet{}, err
	}

	set := changeSet{paths: paths}
	for i, rec := range records {
		for _, r := range rec.Items {
			it, err := core.FromRecord(r)
			if err != nil {
				return changeSet{}, fmt.Errorf("%s: %w", paths[i], err)
			}
			set.items = append(set.items, it)
		}
	}
	slices.SortStableFunc(set.items, func(a, b *core.Item) int {
		return a.Modified().Compare(b.Modified())
	})
	return set, nil
}

// appendChanges writes the pending versions to a new change file. On
// failure they stay pending for the next save.
func (p *Pit) appendChanges() error {
	p.pendingMu.Lock()
	batch := p.pending
	p.pending = nil
	p.pendingMu.Unlock()

	if len(batch) == 0 {
		return nil
	}

	now := time.Now()
	rec := ChangeRecord{
		Version: SnapshotVersion,
		Writer:  p.opts.writerID,
		Written: formatTime(now),
		Items:   make([]core.Record, len(batch)),
	}
	for i, it := range batch {
		rec.Items[i] = it.Record()
	}

	err := p.writeChange(now, rec)
	if err != nil {
		p.pendingMu.Lock()
		p.pending = append(batch, p.pending...)
		p.pendingMu.Unlock()
	}
	return err
}

func (p *Pit) writeChange(at time.Time, rec ChangeRecord) error {
	data, err := p.opts.codec.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to encode change record: %w", err)
	}
	path := p.changeFileName(at)
	if err := p.opts.storage.WriteFile(path, data); err != nil {
		return fmt.Errorf("failed to write change file: %w", err)
	}
	p.logger.Debug("change file written", "path", path, "items", len(rec.Items))
	return nil
}

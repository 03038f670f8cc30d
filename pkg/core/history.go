package core

import (
	"slices"
	"sort"
	"sync"
	"time"
)

// History is the ordered list of versions accepted for one name, oldest
// first. Entries with equal Modified keep insertion order and the later one
// counts as newer.
//
// History is safe for concurrent use. It keeps private copies of pushed
// items and returns copies from every read.
type History struct {
	mu       sync.RWMutex
	items    []*Item
	maxCount int
}

// NewHistory returns an empty history retaining at most maxCount entries.
// Zero means unlimited.
func NewHistory(maxCount int) *History {
	if maxCount < 0 {
		maxCount = 0
	}
	return &History{maxCount: maxCount}
}

// Push inserts it in Modified order and trims the oldest entries beyond
// MaxCount.
func (h *History) Push(it *Item) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.push(it)
}

// AddIfChanged pushes it unless the latest entry is content-equal.
// The comparison and the push happen under one lock. It reports whether the
// pushed copy is retained: an item older than everything in a full history
// is trimmed right away and reports false.
func (h *History) AddIfChanged(it *Item) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	if n := len(h.items); n > 0 && h.items[n-1].ContentEqual(it) {
		return false
	}
	return h.push(it)
}

// Merge pushes it unless an entry with the same Modified and content is
// already present, or the history is full and it is older than everything
// retained. Used when folding persisted records into memory.
func (h *History) Merge(it *Item) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, e := range h.items {
		if e.modified.Equal(it.modified) && e.ContentEqual(it) {
			return false
		}
	}
	if h.maxCount > 0 && len(h.items) >= h.maxCount && it.modified.Before(h.items[0].modified) {
		return false
	}
	return h.push(it)
}

// push reports whether the inserted copy survived the trim.
func (h *History) push(it *Item) bool {
	cp := it.Clone()
	n := len(h.items)
	h.items = append(h.items, cp)
	if n > 0 && cp.modified.Before(h.items[n-1].modified) {
		slices.SortStableFunc(h.items, func(a, b *Item) int {
			return a.modified.Compare(b.modified)
		})
	}
	h.trim()
	return slices.Contains(h.items, cp)
}

func (h *History) trim() {
	if h.maxCount <= 0 || len(h.items) <= h.maxCount {
		return
	}
	h.items = slices.Clone(h.items[len(h.items)-h.maxCount:])
}

// Len returns the number of retained entries.
func (h *History) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.items)
}

// Latest returns the entry with the greatest Modified.
func (h *History) Latest() (*Item, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if len(h.items) == 0 {
		return nil, false
	}
	return h.items[len(h.items)-1].Clone(), true
}

// At returns the newest entry with Modified not after ts. A tombstone found
// there is reported only when withDeleted is set.
func (h *History) At(ts time.Time, withDeleted bool) (*Item, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	i := sort.Search(len(h.items), func(i int) bool {
		return h.items[i].modified.After(ts)
	})
	if i == 0 {
		return nil, false
	}
	e := h.items[i-1]
	if e.deleted && !withDeleted {
		return nil, false
	}
	return e.Clone(), true
}

// Items returns a copy of all entries, oldest first.
func (h *History) Items() []*Item {
	h.mu.RLock()
	defer h.mu.RUnlock()
	out := make([]*Item, len(h.items))
	for i, e := range h.items {
		out[i] = e.Clone()
	}
	return out
}

// MaxCount returns the retention bound.
func (h *History) MaxCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.maxCount
}

// SetMaxCount changes the retention bound and trims immediately.
func (h *History) SetMaxCount(n int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if n < 0 {
		n = 0
	}
	h.maxCount = n
	h.trim()
}

package pit

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/google/uuid"

	"github.com/aretw0/jsonpit/pkg/adapters/fs"
	"github.com/aretw0/jsonpit/pkg/core"
)

// ChangesDir is the subdirectory holding change files.
const ChangesDir = "changes"

// Pit is a collection of named histories with deduplicated writes,
// point-in-time reads and file persistence.
//
// All methods are safe for concurrent use. Writers to different names never
// contend; writers to the same name serialize on that name's history only.
type Pit struct {
	dir        string
	file       string
	changesDir string
	opts       options
	logger     *slog.Logger

	histories sync.Map // name -> *core.History
	count     atomic.Int64

	// dirty is version != saved.
	version atomic.Uint64
	saved   atomic.Uint64

	// pinned counts fixed-timestamp writes; Close forces a save while
	// pinned != pinnedSaved.
	pinned      atomic.Uint64
	pinnedSaved atomic.Uint64

	saveMu sync.Mutex
	merged map[string]struct{} // change files folded into memory, guarded by saveMu

	pendingMu sync.Mutex
	pending   []*core.Item // accepted since the last change-log save

	evMu   sync.RWMutex
	events chan core.Event
	closed bool // guarded by evMu

	watchMu  sync.Mutex
	watchers map[int]context.CancelFunc
	watchSeq int

	stateMu    sync.RWMutex
	lastSave   *time.Time
	lastReload *time.Time
}

// Open loads the pit stored in dir. A missing location yields an empty pit,
// created on disk unless the pit is read-only.
func Open(dir string, opts ...Option) (*Pit, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = slog.New(slog.DiscardHandler)
	}
	if o.storage == nil {
		o.storage = fs.NewDisk(fs.Config{Logger: o.logger})
	}
	if o.writerID == "" {
		o.writerID = uuid.Must(uuid.NewV7()).String()
	}
	if dir == "" {
		return nil, fmt.Errorf("pit location must not be empty")
	}

	dir = filepath.Clean(dir)
	p := &Pit{
		dir:        dir,
		file:       filepath.Join(dir, filepath.Base(dir)+o.codec.Ext()),
		changesDir: filepath.Join(dir, ChangesDir),
		opts:       o,
		logger:     o.logger.With("pit", dir),
		merged:     make(map[string]struct{}),
		events:     make(chan core.Event, o.eventBuffer),
		watchers:   make(map[int]context.CancelFunc),
	}

	if !o.storage.Exists(dir) {
		if o.mustExist {
			return nil, fmt.Errorf("open %s: %w", dir, core.ErrNotFound)
		}
		if !o.readOnly {
			if err := o.storage.MkdirAll(dir); err != nil {
				return nil, fmt.Errorf("failed to create pit directory: %w", err)
			}
		}
		p.logger.Debug("starting empty pit")
		return p, nil
	}

	p.saveMu.Lock()
	_, err := p.load(context.Background())
	p.saveMu.Unlock()
	if err != nil {
		return nil, err
	}
	p.logger.Debug("pit opened", "names", p.Len(), "change_files", len(p.merged))
	return p, nil
}

// Dir returns the pit location.
func (p *Pit) Dir() string { return p.dir }

// File returns the path of the consolidated file.
func (p *Pit) File() string { return p.file }

// ReadOnly reports whether the pit rejects mutations.
func (p *Pit) ReadOnly() bool { return p.opts.readOnly }

// Dirty reports whether accepted writes have not been saved yet.
func (p *Pit) Dirty() bool { return p.version.Load() != p.saved.Load() }

// Len returns the number of names with a history, deleted or not.
func (p *Pit) Len() int { return int(p.count.Load()) }

// History returns the history of name.
func (p *Pit) History(name string) (*core.History, bool) {
	h, ok := p.histories.Load(name)
	if !ok {
		return nil, false
	}
	return h.(*core.History), true
}

// EnsureHistory returns the history of name, creating it when absent.
// Concurrent callers for the same name get the same history.
func (p *Pit) EnsureHistory(name string) *core.History {
	return p.ensureHistory(name, p.opts.maxCount)
}

func (p *Pit) ensureHistory(name string, maxCount int) *core.History {
	if h, ok := p.histories.Load(name); ok {
		return h.(*core.History)
	}
	h, loaded := p.histories.LoadOrStore(name, core.NewHistory(maxCount))
	if !loaded {
		p.count.Add(1)
	}
	return h.(*core.History)
}

// Add stores it as a version of its name unless the latest version already
// has the same content, or it is older than everything a full history
// retains. It reports whether it was stored.
// The pit keeps its own copy; later changes to it are not seen.
func (p *Pit) Add(it *core.Item) (bool, error) {
	if it == nil {
		addTotal.WithLabelValues("rejected").Inc()
		return false, core.ErrNilItem
	}
	if p.opts.readOnly {
		addTotal.WithLabelValues("rejected").Inc()
		return false, core.ErrReadOnly
	}
	if p.isClosed() {
		addTotal.WithLabelValues("rejected").Inc()
		return false, core.ErrClosed
	}
	if it.Name() == "" {
		addTotal.WithLabelValues("rejected").Inc()
		return false, core.ErrEmptyName
	}

	h := p.EnsureHistory(it.Name())
	if !h.AddIfChanged(it) {
		addTotal.WithLabelValues("ignored").Inc()
		p.logger.Debug("item not retained", "name", it.Name(), "modified", it.Modified())
		return false, nil
	}
	addTotal.WithLabelValues("added").Inc()

	if p.opts.changeLog {
		p.pendingMu.Lock()
		p.pending = append(p.pending, it.Clone())
		p.pendingMu.Unlock()
	}
	switch {
	case p.opts.unflagged:
	case it.Pinned():
		p.pinned.Add(1)
	default:
		p.version.Add(1)
	}

	evType := core.EventAdd
	if it.Deleted() {
		evType = core.EventDelete
	}
	p.emit(core.Event{Type: evType, Name: it.Name(), Modified: it.Modified()})
	p.logger.Debug("item added", "name", it.Name(), "modified", it.Modified(), "deleted", it.Deleted())
	return true, nil
}

// Get returns the current value of name. A name whose latest version is
// a tombstone is reported absent.
func (p *Pit) Get(name string) (*core.Item, bool) {
	h, ok := p.History(name)
	if !ok {
		return nil, false
	}
	it, ok := h.Latest()
	if !ok || it.Deleted() {
		return nil, false
	}
	return it, true
}

// GetAt returns the value of name as of ts. Tombstones are returned only
// with withDeleted.
func (p *Pit) GetAt(name string, ts time.Time, withDeleted bool) (*core.Item, bool) {
	h, ok := p.History(name)
	if !ok {
		return nil, false
	}
	return h.At(ts, withDeleted)
}

// Delete records a tombstone for name carrying its latest properties.
// Unknown or already deleted names are left alone and report false.
func (p *Pit) Delete(name string) (bool, error) {
	if p.opts.readOnly {
		return false, core.ErrReadOnly
	}
	h, ok := p.History(name)
	if !ok {
		return false, nil
	}
	latest, ok := h.Latest()
	if !ok || latest.Deleted() {
		return false, nil
	}

	modified := p.opts.clock.Now()
	if !modified.After(latest.Modified()) {
		modified = latest.Modified().Add(time.Nanosecond)
	}
	tomb, err := core.NewTombstone(name, latest.Properties(), modified)
	if err != nil {
		return false, err
	}
	return p.Add(tomb)
}

// Names returns the sorted names whose latest version is not a tombstone
// and that match the doublestar pattern. An empty pattern matches all.
func (p *Pit) Names(pattern string) ([]string, error) {
	if pattern != "" && !doublestar.ValidatePattern(pattern) {
		return nil, fmt.Errorf("invalid pattern %q: %w", pattern, doublestar.ErrBadPattern)
	}

	var names []string
	p.histories.Range(func(k, v any) bool {
		name := k.(string)
		if pattern != "" {
			if ok, _ := doublestar.Match(pattern, name); !ok {
				return true
			}
		}
		if latest, ok := v.(*core.History).Latest(); ok && !latest.Deleted() {
			names = append(names, name)
		}
		return true
	})
	sort.Strings(names)
	return names, nil
}

// Events returns the channel of accepted writes. Events are dropped when
// the buffer is full. The channel is closed by Close.
func (p *Pit) Events() <-chan core.Event {
	return p.events
}

func (p *Pit) emit(e core.Event) {
	p.evMu.RLock()
	defer p.evMu.RUnlock()
	if p.closed {
		return
	}
	select {
	case p.events <- e:
	default:
		p.logger.Debug("event dropped", "name", e.Name, "type", string(e.Type))
	}
}

func (p *Pit) isClosed() bool {
	p.evMu.RLock()
	defer p.evMu.RUnlock()
	return p.closed
}

// Close flushes unsaved writes, fixed-timestamp ones included, stops
// watchers and closes the events channel. Closing twice is a no-op.
func (p *Pit) Close(ctx context.Context) error {
	if p.isClosed() {
		return nil
	}

	var err error
	if !p.opts.readOnly && (p.Dirty() || p.pinned.Load() != p.pinnedSaved.Load()) {
		err = p.save(ctx, true)
	}

	p.watchMu.Lock()
	for id, cancel := range p.watchers {
		cancel()
		delete(p.watchers, id)
	}
	p.watchMu.Unlock()

	p.evMu.Lock()
	if !p.closed {
		p.closed = true
		close(p.events)
	}
	p.evMu.Unlock()

	if err != nil {
		return fmt.Errorf("failed to flush on close: %w", err)
	}
	return nil
}

func (p *Pit) observe(t time.Time) {
	if o, ok := p.opts.clock.(interface{ Observe(time.Time) }); ok {
		o.Observe(t)
	}
}

package typed

import (
	"fmt"
	"time"

	"github.com/aretw0/jsonpit/pkg/core"
)

// Store is the subset of pit.Pit used by the typed wrapper.
type Store interface {
	Add(it *core.Item) (bool, error)
	Get(name string) (*core.Item, bool)
	GetAt(name string, ts time.Time, withDeleted bool) (*core.Item, bool)
	History(name string) (*core.History, bool)
	Delete(name string) (bool, error)
}

// Version is a typed view of one item version.
type Version[T any] struct {
	Name     string
	Modified time.Time
	Deleted  bool
	Note     string
	Data     T
	Saver    Saver[T]
}

// Saver avoids coupling versions to a concrete store.
type Saver[T any] interface {
	Put(v *Version[T]) (bool, error)
}

// Save writes the version through its attached saver.
func (v *Version[T]) Save() (bool, error) {
	if v.Saver == nil {
		return false, fmt.Errorf("version %q is detached (missing Saver)", v.Name)
	}
	return v.Saver.Put(v)
}

// Pit wraps a Store to give type-safe access. T is converted through its
// JSON form, so any type encoding/json handles as an object works.
type Pit[T any] struct {
	store Store
}

// New creates a typed wrapper around store.
func New[T any](store Store) *Pit[T] {
	return &Pit[T]{store: store}
}

// Put stores v.Data as a new version of v.Name unless it equals the
// current one. On success v receives the stored timestamp.
func (p *Pit[T]) Put(v *Version[T]) (bool, error) {
	it, err := core.NewItemFrom(v.Name, v.Data, core.WithNote(v.Note))
	if err != nil {
		return false, fmt.Errorf("failed to convert typed data: %w", err)
	}
	if v.Saver == nil {
		v.Saver = p
	}
	added, err := p.store.Add(it)
	if err != nil || !added {
		return added, err
	}
	v.Modified = it.Modified()
	v.Deleted = false
	return true, nil
}

// Get returns the current version of name.
func (p *Pit[T]) Get(name string) (*Version[T], bool, error) {
	it, ok := p.store.Get(name)
	if !ok {
		return nil, false, nil
	}
	v, err := p.fromItem(it)
	return v, err == nil, err
}

// GetAt returns the version of name as of ts.
func (p *Pit[T]) GetAt(name string, ts time.Time, withDeleted bool) (*Version[T], bool, error) {
	it, ok := p.store.GetAt(name, ts, withDeleted)
	if !ok {
		return nil, false, nil
	}
	v, err := p.fromItem(it)
	return v, err == nil, err
}

// History returns every retained version of name, oldest first.
func (p *Pit[T]) History(name string) ([]*Version[T], error) {
	h, ok := p.store.History(name)
	if !ok {
		return nil, nil
	}
	items := h.Items()
	out := make([]*Version[T], 0, len(items))
	for _, it := range items {
		v, err := p.fromItem(it)
		if err != nil {
			return nil, fmt.Errorf("failed to process version %s: %w", it, err)
		}
		out = append(out, v)
	}
	return out, nil
}

// Delete records a tombstone for name.
func (p *Pit[T]) Delete(name string) (bool, error) {
	return p.store.Delete(name)
}

func (p *Pit[T]) fromItem(it *core.Item) (*Version[T], error) {
	var data T
	if err := it.Decode(&data); err != nil {
		return nil, fmt.Errorf("unmarshal to target type failed: %w", err)
	}
	return &Version[T]{
		Name:     it.Name(),
		Modified: it.Modified(),
		Deleted:  it.Deleted(),
		Note:     it.Note(),
		Data:     data,
		Saver:    p,
	}, nil
}

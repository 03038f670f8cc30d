package core

import (
	"encoding/json"
	"fmt"
	"time"
)

// RawKey is the property holding the last non-object value seen by Extend.
const RawKey = "_"

// Item is one versioned snapshot of a named record.
//
// An Item is a plain value owned by whoever holds it. It is not safe for
// concurrent mutation; a pit stores its own copy on Add and hands out
// copies on reads.
type Item struct {
	name     string
	props    *Object
	modified time.Time
	deleted  bool
	note     string
	// pinned items were built with a fixed timestamp; mutations do not
	// advance Modified until Touch is called.
	pinned bool
	clock  Clock
}

type itemOptions struct {
	timestamp *time.Time
	note      string
	clock     Clock
}

// ItemOption configures item construction.
type ItemOption func(*itemOptions)

// WithTimestamp fixes Modified to t. Property changes will not advance it.
func WithTimestamp(t time.Time) ItemOption {
	return func(o *itemOptions) {
		t = t.UTC()
		o.timestamp = &t
	}
}

// WithNote attaches a provenance note.
func WithNote(note string) ItemOption {
	return func(o *itemOptions) {
		o.note = note
	}
}

// WithClock sets the clock used to stamp the item. Defaults to SystemClock.
func WithClock(c Clock) ItemOption {
	return func(o *itemOptions) {
		o.clock = c
	}
}

// NewItem creates an item without properties.
func NewItem(name string, opts ...ItemOption) (*Item, error) {
	if name == "" {
		return nil, ErrEmptyName
	}
	o := itemOptions{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.clock == nil {
		o.clock = SystemClock()
	}

	it := &Item{
		name:  name,
		props: NewObject(),
		note:  o.note,
		clock: o.clock,
	}
	if o.timestamp != nil {
		it.modified = *o.timestamp
		it.pinned = true
	} else {
		it.modified = o.clock.Now().UTC()
	}
	return it, nil
}

// MustItem is like NewItem but panics on error.
func MustItem(name string, opts ...ItemOption) *Item {
	it, err := NewItem(name, opts...)
	if err != nil {
		panic(err)
	}
	return it
}

// NewItemFrom creates an item populated from partial, which may be anything
// SetProperty accepts.
func NewItemFrom(name string, partial any, opts ...ItemOption) (*Item, error) {
	it, err := NewItem(name, opts...)
	if err != nil {
		return nil, err
	}
	obj, err := toObject(partial)
	if err != nil {
		return nil, err
	}
	it.merge(obj)
	return it, nil
}

// ParseItem creates an item populated from JSON text with Extend rules.
func ParseItem(name string, data []byte, opts ...ItemOption) (*Item, error) {
	it, err := NewItem(name, opts...)
	if err != nil {
		return nil, err
	}
	folded, err := foldJSON(data)
	if err != nil {
		return nil, err
	}
	it.merge(folded)
	return it, nil
}

// NewTombstone returns a deleted item carrying props at the given time.
func NewTombstone(name string, props *Object, modified time.Time) (*Item, error) {
	if name == "" {
		return nil, ErrEmptyName
	}
	if props == nil {
		props = NewObject()
	}
	return &Item{
		name:     name,
		props:    props.Clone(),
		modified: modified.UTC(),
		deleted:  true,
		clock:    SystemClock(),
	}, nil
}

// Name returns the item's name.
func (it *Item) Name() string { return it.name }

// Modified returns the time of the last content change, in UTC.
func (it *Item) Modified() time.Time { return it.modified }

// Deleted reports whether the item is a tombstone.
func (it *Item) Deleted() bool { return it.deleted }

// Note returns the provenance note.
func (it *Item) Note() string { return it.note }

// Pinned reports whether Modified was fixed by the caller rather than
// taken from the clock.
func (it *Item) Pinned() bool { return it.pinned }

// SetNote replaces the provenance note. Notes do not take part in equality
// and do not advance Modified.
func (it *Item) SetNote(note string) { it.note = note }

// SetProperty merges partial into the item's properties. partial may be a
// map, a struct, an *Object, an object Value, or JSON object text as string
// or []byte. Modified advances only when at least one value changed.
func (it *Item) SetProperty(partial any) (bool, error) {
	obj, err := toObject(partial)
	if err != nil {
		return false, err
	}
	return it.apply(obj), nil
}

// Extend merges external JSON into the item. An object merges like
// SetProperty. An array is folded in order: object elements contribute
// their keys with later elements winning, any other element replaces the
// raw slot. A lone scalar counts as a one-element array.
func (it *Item) Extend(data []byte) (bool, error) {
	folded, err := foldJSON(data)
	if err != nil {
		return false, err
	}
	return it.apply(folded), nil
}

// Set writes a single property with SetProperty semantics.
func (it *Item) Set(key string, v any) (bool, error) {
	val, err := ValueOf(v)
	if err != nil {
		return false, fmt.Errorf("property %q: %w", key, err)
	}
	obj := NewObject()
	obj.Set(key, val)
	return it.apply(obj), nil
}

// Get returns the value of key. "Name" falls back to the item name when
// no such property exists.
func (it *Item) Get(key string) (Value, bool) {
	if v, ok := it.props.Get(key); ok {
		return v.Clone(), true
	}
	if key == "Name" {
		return StringValue(it.name), true
	}
	return Value{}, false
}

// Raw returns the raw slot.
func (it *Item) Raw() (Value, bool) {
	v, ok := it.props.Get(RawKey)
	return v.Clone(), ok
}

// Properties returns a copy of the properties.
func (it *Item) Properties() *Object { return it.props.Clone() }

// Keys returns the property names in insertion order.
func (it *Item) Keys() []string { return it.props.Keys() }

// Decode unmarshals the properties into target using encoding/json rules.
func (it *Item) Decode(target any) error {
	return ObjectValue(it.props).Decode(target)
}

// Clone returns an identical copy. Modified is not re-stamped.
func (it *Item) Clone() *Item {
	cp := *it
	cp.props = it.props.Clone()
	return &cp
}

// Touch advances Modified and releases a fixed timestamp.
func (it *Item) Touch() {
	it.pinned = false
	it.advance()
}

// ContentEqual reports whether both items carry the same properties and
// deletion state. Modified and Note are ignored.
func (it *Item) ContentEqual(other *Item) bool {
	if it == nil || other == nil {
		return it == other
	}
	return it.deleted == other.deleted && it.props.Equal(other.props)
}

func (it *Item) String() string {
	state := ""
	if it.deleted {
		state = " (deleted)"
	}
	return fmt.Sprintf("%s@%s%s", it.name, it.modified.Format(time.RFC3339Nano), state)
}

// apply writes every key of obj whose value differs and advances Modified
// if anything was written.
func (it *Item) apply(obj *Object) bool {
	if !it.merge(obj) {
		return false
	}
	it.advance()
	return true
}

func (it *Item) merge(obj *Object) bool {
	changed := false
	obj.Range(func(k string, v Value) bool {
		if cur, ok := it.props.Get(k); ok && Equal(cur, v) {
			return true
		}
		it.props.Set(k, v.Clone())
		changed = true
		return true
	})
	return changed
}

func (it *Item) advance() {
	if it.pinned {
		return
	}
	clock := it.clock
	if clock == nil {
		clock = SystemClock()
	}
	next := clock.Now().UTC()
	if !next.After(it.modified) {
		next = it.modified.Add(time.Nanosecond)
	}
	it.modified = next
}

func toObject(partial any) (*Object, error) {
	var (
		v   Value
		err error
	)
	switch p := partial.(type) {
	case string:
		v, err = ParseJSON([]byte(p))
	case []byte:
		v, err = ParseJSON(p)
	default:
		v, err = ValueOf(partial)
	}
	if err != nil {
		return nil, err
	}
	obj, ok := v.Object()
	if !ok {
		return nil, fmt.Errorf("%w: got %s", ErrNotObject, v.Kind())
	}
	return obj, nil
}

func foldJSON(data []byte) (*Object, error) {
	v, err := ParseJSON(data)
	if err != nil {
		return nil, err
	}
	if obj, ok := v.Object(); ok {
		return obj, nil
	}

	elems := []Value{v}
	if arr, ok := v.Array(); ok {
		elems = arr
	}
	folded := NewObject()
	for _, e := range elems {
		if obj, ok := e.Object(); ok {
			obj.Range(func(k string, val Value) bool {
				folded.Set(k, val)
				return true
			})
			continue
		}
		folded.Set(RawKey, e)
	}
	return folded, nil
}

// Record is the serialized form of an item.
type Record struct {
	Name       string  `json:"name" yaml:"name" msgpack:"name"`
	Modified   string  `json:"modified" yaml:"modified" msgpack:"modified"`
	Deleted    bool    `json:"deleted,omitempty" yaml:"deleted,omitempty" msgpack:"deleted,omitempty"`
	Note       string  `json:"note,omitempty" yaml:"note,omitempty" msgpack:"note,omitempty"`
	Properties *Object `json:"properties" yaml:"properties" msgpack:"properties"`
}

// Record returns the serialized form of the item.
func (it *Item) Record() Record {
	return Record{
		Name:       it.name,
		Modified:   it.modified.UTC().Format(time.RFC3339Nano),
		Deleted:    it.deleted,
		Note:       it.note,
		Properties: it.props.Clone(),
	}
}

// FromRecord rebuilds an item. The result is not pinned.
func FromRecord(r Record) (*Item, error) {
	if r.Name == "" {
		return nil, fmt.Errorf("%w: record without name", ErrCorrupt)
	}
	modified, err := time.Parse(time.RFC3339Nano, r.Modified)
	if err != nil {
		return nil, fmt.Errorf("%w: record %q: %v", ErrCorrupt, r.Name, err)
	}
	props := r.Properties
	if props == nil {
		props = NewObject()
	}
	return &Item{
		name:     r.Name,
		props:    props.Clone(),
		modified: modified.UTC(),
		deleted:  r.Deleted,
		note:     r.Note,
		clock:    SystemClock(),
	}, nil
}

// MarshalJSON encodes the item as its Record.
func (it *Item) MarshalJSON() ([]byte, error) {
	return json.Marshal(it.Record())
}

// UnmarshalJSON decodes a Record.
func (it *Item) UnmarshalJSON(data []byte) error {
	var r Record
	if err := json.Unmarshal(data, &r); err != nil {
		return err
	}
	parsed, err := FromRecord(r)
	if err != nil {
		return err
	}
	*it = *parsed
	return nil
}

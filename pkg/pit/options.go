package pit

import (
	"log/slog"
	"time"

	"github.com/aretw0/jsonpit/pkg/core"
)

// Option configures a Pit.
type Option func(*options)

type options struct {
	readOnly    bool
	unflagged   bool
	maxCount    int
	logger      *slog.Logger
	storage     core.Storage
	codec       Codec
	clock       core.Clock
	keepBackup  bool
	changeLog   bool
	mustExist   bool
	writerID    string
	eventBuffer int
	debounce    time.Duration
}

func defaultOptions() options {
	return options{
		keepBackup:  true,
		codec:       JSONCodec{},
		clock:       core.SystemClock(),
		eventBuffer: 100,
		debounce:    50 * time.Millisecond,
	}
}

// WithReadOnly rejects every mutation and never writes to storage.
func WithReadOnly() Option {
	return func(o *options) {
		o.readOnly = true
	}
}

// WithUnflagged stops accepted writes from marking the pit dirty. Saves
// then require force, and Close does not flush.
func WithUnflagged() Option {
	return func(o *options) {
		o.unflagged = true
	}
}

// WithMaxCount sets the retention bound of newly created histories.
// Zero keeps every version.
func WithMaxCount(n int) Option {
	return func(o *options) {
		o.maxCount = n
	}
}

// WithLogger sets the logger. Nil discards.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithStorage sets the file capability. Defaults to the local disk.
func WithStorage(s core.Storage) Option {
	return func(o *options) {
		o.storage = s
	}
}

// WithCodec sets the persistence format. Defaults to JSONCodec.
func WithCodec(c Codec) Option {
	return func(o *options) {
		if c != nil {
			o.codec = c
		}
	}
}

// WithClock sets the clock used for tombstones.
func WithClock(c core.Clock) Option {
	return func(o *options) {
		if c != nil {
			o.clock = c
		}
	}
}

// WithKeepBackup controls whether Save keeps the previous consolidated
// file as a .bak sibling. Enabled by default.
func WithKeepBackup(keep bool) Option {
	return func(o *options) {
		o.keepBackup = keep
	}
}

// WithChangeLog makes Save append change files instead of rewriting the
// consolidated file, so several processes can write to one location.
func WithChangeLog(enabled bool) Option {
	return func(o *options) {
		o.changeLog = enabled
	}
}

// WithMustExist makes Open fail with core.ErrNotFound when the location
// does not exist.
func WithMustExist(must bool) Option {
	return func(o *options) {
		o.mustExist = must
	}
}

// WithWriterID names this writer in change files. Defaults to a UUIDv7.
func WithWriterID(id string) Option {
	return func(o *options) {
		o.writerID = id
	}
}

// WithEventBuffer sets the capacity of the Events channel.
func WithEventBuffer(n int) Option {
	return func(o *options) {
		if n >= 0 {
			o.eventBuffer = n
		}
	}
}

// WithDebounce sets how long Watch waits for file activity to settle
// before reloading.
func WithDebounce(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.debounce = d
		}
	}
}

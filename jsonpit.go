package jsonpit

import (
	"log/slog"
	"time"

	"github.com/aretw0/jsonpit/internal/platform"
	"github.com/aretw0/jsonpit/pkg/core"
	"github.com/aretw0/jsonpit/pkg/pit"
)

// Version exposes the version of the library.
// See version.go for the implementation using go:embed.

// --- Types ---

// Pit is a public alias for the store.
type Pit = pit.Pit

// Item is a public alias for a document version.
type Item = core.Item

// Config is a public alias for the jsonpit.yaml configuration.
type Config = platform.Config

// --- Configuration ---

// Option defines a functional option for opening a pit.
type Option = platform.Option

// WithLogger sets the logger for the pit.
func WithLogger(logger *slog.Logger) Option {
	return platform.WithLogger(logger)
}

// WithReadOnly opens the pit read-only. Saves and writes return
// core.ErrReadOnly and the location is never created.
func WithReadOnly(enabled bool) Option {
	return platform.WithReadOnly(enabled)
}

// WithForceTemp forces the use of a temporary directory (useful for testing).
func WithForceTemp(force bool) Option {
	return platform.WithForceTemp(force)
}

// WithDevSafety controls the sandbox used under `go run` and `go test`.
func WithDevSafety(enabled bool) Option {
	return platform.WithDevSafety(enabled)
}

// WithMustExist makes Open fail with core.ErrNotFound when the location is missing.
func WithMustExist(must bool) Option {
	return platform.WithPitOptions(pit.WithMustExist(must))
}

// WithMaxCount sets the default retention for new histories. Zero keeps
// every version.
func WithMaxCount(n int) Option {
	return platform.WithPitOptions(pit.WithMaxCount(n))
}

// WithUnflagged stops writes from marking the pit dirty.
func WithUnflagged() Option {
	return platform.WithPitOptions(pit.WithUnflagged())
}

// WithCodec selects the on-disk format.
func WithCodec(c pit.Codec) Option {
	return platform.WithPitOptions(pit.WithCodec(c))
}

// WithStorage replaces the default disk storage.
func WithStorage(s core.Storage) Option {
	return platform.WithPitOptions(pit.WithStorage(s))
}

// WithClock replaces the process-wide monotonic clock.
func WithClock(c core.Clock) Option {
	return platform.WithPitOptions(pit.WithClock(c))
}

// WithKeepBackup controls whether saves keep the previous file as .bak.
func WithKeepBackup(keep bool) Option {
	return platform.WithPitOptions(pit.WithKeepBackup(keep))
}

// WithChangeLog makes saves append change files instead of rewriting the
// consolidated file. Use it for secondary writers.
func WithChangeLog(enabled bool) Option {
	return platform.WithPitOptions(pit.WithChangeLog(enabled))
}

// WithWriterID names this writer in change files.
func WithWriterID(id string) Option {
	return platform.WithPitOptions(pit.WithWriterID(id))
}

// WithEventBuffer sets the size of the events channel.
func WithEventBuffer(size int) Option {
	return platform.WithPitOptions(pit.WithEventBuffer(size))
}

// WithDebounce sets how long Watch waits for file events to settle.
func WithDebounce(d time.Duration) Option {
	return platform.WithPitOptions(pit.WithDebounce(d))
}

// --- Factory ---

// Open opens the pit stored in dir.
func Open(dir string, opts ...Option) (*Pit, error) {
	return platform.Open(dir, opts...)
}

// LoadConfig reads and validates a jsonpit.yaml file.
func LoadConfig(path string) (*Config, error) {
	return platform.LoadConfig(path)
}

// OpenConfig opens the pit described by cfg.
func OpenConfig(cfg *Config, opts ...Option) (*Pit, error) {
	return platform.OpenConfig(cfg, opts...)
}

// --- Items ---

// NewItem creates an empty item named name.
func NewItem(name string, opts ...core.ItemOption) (*Item, error) {
	return core.NewItem(name, opts...)
}

// NewItemFrom creates an item from a map, struct or JSON-like value.
func NewItemFrom(name string, partial any, opts ...core.ItemOption) (*Item, error) {
	return core.NewItemFrom(name, partial, opts...)
}

// ParseItem creates an item from a JSON document.
func ParseItem(name string, data []byte, opts ...core.ItemOption) (*Item, error) {
	return core.ParseItem(name, data, opts...)
}

// --- Safety & Utils ---

// ResolvePitPath determines the actual location for a pit based on safety rules.
func ResolvePitPath(userPath string, forceTemp bool) string {
	return platform.ResolvePitPath(userPath, forceTemp)
}

// IsDevRun checks if the current process is running via `go run` or `go test`.
func IsDevRun() bool {
	return platform.IsDevRun()
}

// FindConfig looks upwards from startDir for a jsonpit.yaml file.
func FindConfig(startDir string) (string, error) {
	return platform.FindConfig(startDir)
}

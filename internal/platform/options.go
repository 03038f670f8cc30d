package platform

import (
	"log/slog"

	"github.com/aretw0/jsonpit/pkg/adapters/fs"
	"github.com/aretw0/jsonpit/pkg/pit"
)

// options holds the configuration for opening a pit through the platform.
type options struct {
	pit       []pit.Option
	logger    *slog.Logger
	env       *fs.Env
	readOnly  bool
	forceTemp bool
	devSafety bool
}

// Option defines a functional option for opening a pit.
type Option func(*options)

func defaultOptions() *options {
	return &options{
		devSafety: true,
	}
}

// WithPitOptions forwards options to pit.Open unchanged.
func WithPitOptions(opts ...pit.Option) Option {
	return func(o *options) {
		o.pit = append(o.pit, opts...)
	}
}

// WithLogger sets the logger used by the platform and the pit.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithEnv replaces the detected OS environment, used for home expansion.
func WithEnv(env fs.Env) Option {
	return func(o *options) {
		o.env = &env
	}
}

// WithReadOnly opens the pit read-only.
// Read-only pits never write, so the dev sandbox is bypassed and the real
// location is used.
func WithReadOnly(enabled bool) Option {
	return func(o *options) {
		o.readOnly = enabled
	}
}

// WithForceTemp forces the pit into the dev sandbox under the system temp
// directory.
func WithForceTemp(force bool) Option {
	return func(o *options) {
		o.forceTemp = force
	}
}

// WithDevSafety controls the sandbox used when running via `go run` or
// `go test`. By default (true) writable pits opened from such binaries are
// re-rooted into a temporary directory.
//
// CAUTION: Only disable this if you are sure your code is safe.
func WithDevSafety(enabled bool) Option {
	return func(o *options) {
		o.devSafety = enabled
	}
}

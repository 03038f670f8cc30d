package platform

import (
	"log/slog"
	"path/filepath"

	"github.com/aretw0/jsonpit/pkg/adapters/fs"
	"github.com/aretw0/jsonpit/pkg/pit"
)

// Open resolves path and opens the pit stored there.
//
//	p, err := platform.Open("~/pits/ObjectPit", platform.WithReadOnly(true))
//
// A leading "~" is expanded with the OS environment. Writable pits opened
// from `go run` or `go test` binaries are sandboxed unless WithDevSafety(false)
// is given.
func Open(path string, opts ...Option) (*pit.Pit, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}
	logger := o.logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	env := fs.DetectEnv()
	if o.env != nil {
		env = *o.env
	}
	path = env.ExpandHome(path)

	dev := IsDevRun()
	bypass := o.readOnly || !o.devSafety
	useTemp := o.forceTemp || (dev && !bypass)
	resolved := ResolvePitPath(path, useTemp)

	switch {
	case useTemp && resolved != filepath.Clean(path):
		logger.Warn("running in SAFE MODE (dev sandbox)", "original_path", path, "resolved_path", resolved)
	case dev && !o.readOnly && !o.devSafety:
		logger.Warn("running in UNSAFE mode (bypassing dev sandbox)", "path", resolved)
	}

	popts := append([]pit.Option{pit.WithLogger(logger)}, o.pit...)
	if o.readOnly {
		popts = append(popts, pit.WithReadOnly())
	}
	return pit.Open(resolved, popts...)
}

// OpenConfig opens the pit described by cfg. Extra options are applied
// after the config's own.
func OpenConfig(cfg *Config, opts ...Option) (*pit.Pit, error) {
	return Open(cfg.Location(), append(cfg.Options(), opts...)...)
}

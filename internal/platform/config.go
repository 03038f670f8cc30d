package platform

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/aretw0/jsonpit/pkg/pit"
)

// EnvDir overrides the configured pit location when set.
const EnvDir = "JSONPIT_DIR"

var configValidate *validator.Validate

func init() {
	configValidate = validator.New()
	_ = configValidate.RegisterValidation("codec", func(fl validator.FieldLevel) bool {
		_, err := pit.CodecByName(fl.Field().String())
		return err == nil
	})
}

// Config is the on-disk configuration read from jsonpit.yaml.
type Config struct {
	Dir         string        `yaml:"dir" validate:"required"`
	Codec       string        `yaml:"codec,omitempty" validate:"omitempty,codec"`
	MaxCount    int           `yaml:"max_count,omitempty" validate:"gte=0"`
	ReadOnly    bool          `yaml:"read_only,omitempty"`
	ChangeLog   bool          `yaml:"change_log,omitempty"`
	WriterID    string        `yaml:"writer_id,omitempty" validate:"omitempty,max=64,excludesall=/\\"`
	KeepBackup  *bool         `yaml:"keep_backup,omitempty"`
	EventBuffer int           `yaml:"event_buffer,omitempty" validate:"gte=0"`
	Debounce    time.Duration `yaml:"debounce,omitempty" validate:"gte=0"`

	// path is the file the config was read from. Relative dirs resolve
	// against its directory.
	path string
}

// LoadConfig reads and validates the config at path. JSONPIT_DIR, when
// set, replaces the configured dir.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	cfg, err := ParseConfig(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	cfg.path = path
	return cfg, nil
}

// ParseConfig decodes and validates a YAML config document. Unknown keys
// are rejected.
func ParseConfig(data []byte) (*Config, error) {
	var cfg Config
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if dir := os.Getenv(EnvDir); dir != "" {
		cfg.Dir = dir
	}
	if err := configValidate.Struct(&cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}

// Location returns the pit dir, resolved against the config file's
// directory when relative. "~" is left for Open to expand.
func (c *Config) Location() string {
	if c.path == "" || filepath.IsAbs(c.Dir) || strings.HasPrefix(c.Dir, "~") {
		return c.Dir
	}
	return filepath.Join(filepath.Dir(c.path), c.Dir)
}

// Options converts the config into platform options.
func (c *Config) Options() []Option {
	var popts []pit.Option
	if c.Codec != "" {
		// Validated above.
		codec, _ := pit.CodecByName(c.Codec)
		popts = append(popts, pit.WithCodec(codec))
	}
	if c.MaxCount > 0 {
		popts = append(popts, pit.WithMaxCount(c.MaxCount))
	}
	if c.ChangeLog {
		popts = append(popts, pit.WithChangeLog(true))
	}
	if c.WriterID != "" {
		popts = append(popts, pit.WithWriterID(c.WriterID))
	}
	if c.KeepBackup != nil {
		popts = append(popts, pit.WithKeepBackup(*c.KeepBackup))
	}
	if c.EventBuffer > 0 {
		popts = append(popts, pit.WithEventBuffer(c.EventBuffer))
	}
	if c.Debounce > 0 {
		popts = append(popts, pit.WithDebounce(c.Debounce))
	}

	opts := []Option{WithPitOptions(popts...)}
	if c.ReadOnly {
		opts = append(opts, WithReadOnly(true))
	}
	return opts
}

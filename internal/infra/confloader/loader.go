package confloader

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// DefaultEnvPrefix is the default environment variable prefix.
const DefaultEnvPrefix = "TASKDECK_"

// Loader loads configuration from multiple sources.
type Loader struct {
	k            *koanf.Koanf
	envPrefix    string
	filePath     string
	fileOptional bool
	defaults     map[string]any
	overrides    map[string]any
	loaded       bool
}

// Option is a function that configures the Loader.
type Option func(*Loader)

// WithEnvPrefix sets the environment variable prefix.
func WithEnvPrefix(prefix string) Option {
	return func(l *Loader) {
		l.envPrefix = prefix
	}
}

// WithConfigFile sets the configuration file path. A missing file is an error.
func WithConfigFile(path string) Option {
	return func(l *Loader) {
		l.filePath = path
		l.fileOptional = false
	}
}

// WithOptionalConfigFile sets a configuration file path that may not exist.
func WithOptionalConfigFile(path string) Option {
	return func(l *Loader) {
		l.filePath = path
		l.fileOptional = true
	}
}

// WithDefaults sets the lowest-priority values.
func WithDefaults(defaults map[string]any) Option {
	return func(l *Loader) {
		l.defaults = defaults
	}
}

// WithOverrides sets the highest-priority values, typically from flags.
func WithOverrides(overrides map[string]any) Option {
	return func(l *Loader) {
		l.overrides = overrides
	}
}

// NewLoader creates a new configuration loader.
func NewLoader(opts ...Option) *Loader {
	l := &Loader{
		k:         koanf.New("."),
		envPrefix: DefaultEnvPrefix,
	}

	for _, opt := range opts {
		opt(l)
	}

	return l
}

// Load loads every source in priority order and unmarshals into target.
func (l *Loader) Load(target any) error {
	if len(l.defaults) > 0 {
		if err := l.LoadMap(l.defaults); err != nil {
			return fmt.Errorf("load defaults: %w", err)
		}
	}

	if l.filePath != "" {
		_, statErr := os.Stat(l.filePath)
		switch {
		case statErr == nil:
			if err := l.LoadFile(l.filePath); err != nil {
				return fmt.Errorf("load config file: %w", err)
			}
		case errors.Is(statErr, os.ErrNotExist) && l.fileOptional:
		default:
			return fmt.Errorf("load config file: %w", statErr)
		}
	}

	if err := l.LoadEnv(); err != nil {
		return fmt.Errorf("load env: %w", err)
	}

	if len(l.overrides) > 0 {
		if err := l.LoadMap(l.overrides); err != nil {
			return fmt.Errorf("load overrides: %w", err)
		}
	}

	if err := l.Unmarshal(target); err != nil {
		return fmt.Errorf("unmarshal config: %w", err)
	}

	l.loaded = true
	return nil
}

// LoadFile loads configuration from a YAML file.
func (l *Loader) LoadFile(path string) error {
	if path == "" {
		return nil
	}

	if err := l.k.Load(file.Provider(path), yaml.Parser()); err != nil {
		return fmt.Errorf("load file %s: %w", path, err)
	}

	return nil
}

// LoadEnv loads configuration from environment variables.
// TASKDECK_RETRY_MAX=5 sets retry.max.
func (l *Loader) LoadEnv() error {
	envTransformer := func(s string) string {
		s = strings.TrimPrefix(s, l.envPrefix)
		s = strings.ToLower(s)
		return strings.ReplaceAll(s, "_", ".")
	}

	if err := l.k.Load(env.Provider(l.envPrefix, ".", envTransformer), nil); err != nil {
		return fmt.Errorf("load env: %w", err)
	}

	return nil
}

// LoadMap loads configuration from a map with dotted or nested keys.
func (l *Loader) LoadMap(data map[string]any) error {
	if err := l.k.Load(mapProvider(data), nil); err != nil {
		return fmt.Errorf("load map: %w", err)
	}
	return nil
}

// Unmarshal unmarshals the loaded configuration into the target struct.
// Uses koanf tags for struct field mapping.
func (l *Loader) Unmarshal(target any) error {
	return l.k.Unmarshal("", target)
}

// GetString returns a string value from the configuration.
func (l *Loader) GetString(key string) string {
	return l.k.String(key)
}

// GetInt returns an int value from the configuration.
func (l *Loader) GetInt(key string) int {
	return l.k.Int(key)
}

// IsLoaded returns true if configuration has been loaded.
func (l *Loader) IsLoaded() bool {
	return l.loaded
}

// Keys returns all configuration keys.
func (l *Loader) Keys() []string {
	return l.k.Keys()
}

package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/yndnr/taskdeck-go/internal/telemetry/logger"
)

// Fixed keys under which the tokens are persisted.
const (
	KeyAccessToken  = "access_token"
	KeyRefreshToken = "refresh_token"
)

// Supported drivers.
const (
	DriverMemory = "memory"
	DriverFile   = "file"
	DriverBadger = "badger"
)

// ErrUnknownDriver is returned by Open for an unsupported driver name.
var ErrUnknownDriver = errors.New("storage: unknown driver")

// TokenStore persists the access/refresh token pair.
//
// Reads never fail: a storage failure is logged and reads as absent ("").
// SetTokens replaces both tokens at once; no reader observes a mixed pair.
type TokenStore interface {
	AccessToken() string
	RefreshToken() string
	SetTokens(access, refresh string) error
	ClearTokens() error
}

// Config selects and configures a TokenStore backend.
type Config struct {
	Driver     string `koanf:"driver" yaml:"driver"`
	Path       string `koanf:"path" yaml:"path"`
	Passphrase string `koanf:"passphrase" yaml:"passphrase,omitempty"`
}

// DefaultPath returns the default store location for driver under the user's home.
func DefaultPath(driver string) string {
	home, _ := os.UserHomeDir()
	if driver == DriverBadger {
		return filepath.Join(home, ".taskdeck", "tokens.db")
	}
	return filepath.Join(home, ".taskdeck", "tokens.json")
}

// Open creates the TokenStore described by cfg. The returned close function
// releases the backend and is never nil.
func Open(cfg Config, log logger.Logger) (TokenStore, func() error, error) {
	if log == nil {
		log = logger.Nop()
	}
	path := cfg.Path
	if path == "" {
		path = DefaultPath(cfg.Driver)
	}
	noop := func() error { return nil }

	switch cfg.Driver {
	case DriverMemory:
		return NewMemoryStore(), noop, nil
	case DriverFile, "":
		var opts []FileOption
		if cfg.Passphrase != "" {
			opts = append(opts, WithPassphrase(cfg.Passphrase))
		}
		s, err := NewFileStore(path, log, opts...)
		if err != nil {
			return nil, noop, err
		}
		return s, noop, nil
	case DriverBadger:
		s, err := NewBadgerStore(path, log)
		if err != nil {
			return nil, noop, err
		}
		return s, s.Close, nil
	default:
		return nil, noop, fmt.Errorf("%w: %q", ErrUnknownDriver, cfg.Driver)
	}
}

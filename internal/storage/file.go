package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/yndnr/taskdeck-go/internal/core/domain"
	"github.com/yndnr/taskdeck-go/internal/telemetry/logger"
	"github.com/yndnr/taskdeck-go/pkg/crypto/seal"
)

// sealContext binds sealed token files to their purpose.
var sealContext = []byte("taskdeck-tokens")

// FileStore persists the token pair as one JSON document.
//
// Writes go to a temporary file in the same directory that is renamed over
// the target, so both tokens change in a single filesystem operation.
type FileStore struct {
	path   string
	sealer *seal.Sealer
	log    logger.Logger

	mu     sync.Mutex
	cached *domain.TokenPair
}

// FileOption configures a FileStore.
type FileOption func(*FileStore) error

// WithPassphrase seals the token file with a passphrase-derived key.
func WithPassphrase(passphrase string) FileOption {
	return func(s *FileStore) error {
		sealer, err := seal.New(passphrase)
		if err != nil {
			return err
		}
		s.sealer = sealer
		return nil
	}
}

// WithSealer seals the token file with an existing Sealer.
func WithSealer(sealer *seal.Sealer) FileOption {
	return func(s *FileStore) error {
		s.sealer = sealer
		return nil
	}
}

// NewFileStore creates a FileStore at path, creating its directory (0700).
func NewFileStore(path string, log logger.Logger, opts ...FileOption) (*FileStore, error) {
	if path == "" {
		return nil, fmt.Errorf("storage: file path is required")
	}
	if log == nil {
		log = logger.Nop()
	}
	s := &FileStore{
		path: filepath.Clean(path),
		log:  log.With("store", "file"),
	}
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, fmt.Errorf("storage: %w", err)
		}
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0700); err != nil {
		return nil, fmt.Errorf("storage: create dir: %w", err)
	}
	return s, nil
}

// Path returns the token file location.
func (s *FileStore) Path() string {
	return s.path
}

// AccessToken returns the stored access token or "".
func (s *FileStore) AccessToken() string {
	return s.load().AccessToken
}

// RefreshToken returns the stored refresh token or "".
func (s *FileStore) RefreshToken() string {
	return s.load().RefreshToken
}

// SetTokens atomically replaces the token file.
func (s *FileStore) SetTokens(access, refresh string) error {
	pair := domain.TokenPair{AccessToken: access, RefreshToken: refresh}
	data, err := json.Marshal(pair)
	if err != nil {
		return domain.ErrTokenStore.WithCause(err)
	}
	if s.sealer != nil {
		if data, err = s.sealer.Seal(data, sealContext); err != nil {
			return domain.ErrTokenStore.WithCause(err)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := writeFileAtomic(s.path, data); err != nil {
		s.cached = nil
		return domain.ErrTokenStore.WithCause(err)
	}
	s.cached = &pair
	return nil
}

// ClearTokens removes the token file. Clearing an absent file succeeds.
func (s *FileStore) ClearTokens() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		s.cached = nil
		return domain.ErrTokenStore.WithCause(err)
	}
	s.cached = &domain.TokenPair{}
	return nil
}

// Invalidate drops the read cache; the next read goes to disk.
func (s *FileStore) Invalidate() {
	s.mu.Lock()
	s.cached = nil
	s.mu.Unlock()
}

func (s *FileStore) load() domain.TokenPair {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cached != nil {
		return *s.cached
	}

	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		s.cached = &domain.TokenPair{}
		return *s.cached
	}
	if err != nil {
		s.log.Warn("read token file failed", "path", s.path, "error", err)
		return domain.TokenPair{}
	}

	if seal.IsSealed(data) {
		if s.sealer == nil {
			s.log.Warn("token file is sealed but no passphrase is configured", "path", s.path)
			return domain.TokenPair{}
		}
		if data, err = s.sealer.Open(data, sealContext); err != nil {
			s.log.Warn("open sealed token file failed", "path", s.path, "error", err)
			return domain.TokenPair{}
		}
	}

	var pair domain.TokenPair
	if err := json.Unmarshal(data, &pair); err != nil {
		s.log.Warn("decode token file failed", "path", s.path, "error", err)
		return domain.TokenPair{}
	}
	if !pair.Valid() {
		pair = domain.TokenPair{}
	}
	s.cached = &pair
	return pair
}

func writeFileAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".tokens-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if err := tmp.Chmod(0600); err != nil {
		tmp.Close()
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("rename temp file: %w", err)
	}
	return nil
}

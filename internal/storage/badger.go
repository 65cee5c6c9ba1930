package storage

import (
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v3"

	"github.com/yndnr/taskdeck-go/internal/core/domain"
	"github.com/yndnr/taskdeck-go/internal/telemetry/logger"
)

// BadgerStore persists the token pair in an embedded Badger database.
// Both keys are written and deleted in a single transaction.
type BadgerStore struct {
	db  *badger.DB
	log logger.Logger
}

// NewBadgerStore opens (or creates) a Badger database in dir.
func NewBadgerStore(dir string, log logger.Logger) (*BadgerStore, error) {
	if dir == "" {
		return nil, fmt.Errorf("badger: dir is required")
	}
	return openBadger(badger.DefaultOptions(dir), log)
}

// NewInMemoryBadgerStore opens a Badger database that never touches disk.
func NewInMemoryBadgerStore(log logger.Logger) (*BadgerStore, error) {
	return openBadger(badger.DefaultOptions("").WithInMemory(true), log)
}

func openBadger(opts badger.Options, log logger.Logger) (*BadgerStore, error) {
	if log == nil {
		log = logger.Nop()
	}
	log = log.With("store", "badger")
	opts.Logger = &badgerLogger{logger: log}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("badger: open db: %w", err)
	}
	return &BadgerStore{db: db, log: log}, nil
}

// AccessToken returns the stored access token or "".
func (s *BadgerStore) AccessToken() string {
	return s.get(KeyAccessToken)
}

// RefreshToken returns the stored refresh token or "".
func (s *BadgerStore) RefreshToken() string {
	return s.get(KeyRefreshToken)
}

// SetTokens writes both tokens in one transaction.
func (s *BadgerStore) SetTokens(access, refresh string) error {
	err := s.db.Update(func(txn *badger.Txn) error {
		if err := txn.Set([]byte(KeyAccessToken), []byte(access)); err != nil {
			return err
		}
		return txn.Set([]byte(KeyRefreshToken), []byte(refresh))
	})
	if err != nil {
		return domain.ErrTokenStore.WithCause(err)
	}
	return nil
}

// ClearTokens deletes both tokens in one transaction.
func (s *BadgerStore) ClearTokens() error {
	err := s.db.Update(func(txn *badger.Txn) error {
		if err := txn.Delete([]byte(KeyAccessToken)); err != nil {
			return err
		}
		return txn.Delete([]byte(KeyRefreshToken))
	})
	if err != nil {
		return domain.ErrTokenStore.WithCause(err)
	}
	return nil
}

// Close closes the database.
func (s *BadgerStore) Close() error {
	return s.db.Close()
}

func (s *BadgerStore) get(key string) string {
	var value []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		value, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return ""
	}
	if err != nil {
		s.log.Warn("read token failed", "key", key, "error", err)
		return ""
	}
	return string(value)
}

// badgerLogger adapts Logger to Badger's Logger interface.
// Badger is chatty at info level, so info is demoted to debug.
type badgerLogger struct {
	logger logger.Logger
}

func (l *badgerLogger) Errorf(format string, args ...interface{}) {
	l.logger.Error(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Warningf(format string, args ...interface{}) {
	l.logger.Warn(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Infof(format string, args ...interface{}) {
	l.logger.Debug(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Debugf(format string, args ...interface{}) {
	l.logger.Debug(fmt.Sprintf(format, args...))
}

package storage

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yndnr/taskdeck-go/internal/telemetry/logger"
	"github.com/yndnr/taskdeck-go/pkg/crypto/seal"
)

var testSealParams = seal.Params{Time: 1, Memory: 8 * 1024, Threads: 1}

// storeContract runs the behaviour every TokenStore must share.
func storeContract(t *testing.T, newStore func(t *testing.T) TokenStore) {
	t.Run("empty store reads absent", func(t *testing.T) {
		s := newStore(t)
		assert.Empty(t, s.AccessToken())
		assert.Empty(t, s.RefreshToken())
	})

	t.Run("set then read", func(t *testing.T) {
		s := newStore(t)
		require.NoError(t, s.SetTokens("A1", "R1"))
		assert.Equal(t, "A1", s.AccessToken())
		assert.Equal(t, "R1", s.RefreshToken())
	})

	t.Run("set replaces both", func(t *testing.T) {
		s := newStore(t)
		require.NoError(t, s.SetTokens("A1", "R1"))
		require.NoError(t, s.SetTokens("A2", "R2"))
		assert.Equal(t, "A2", s.AccessToken())
		assert.Equal(t, "R2", s.RefreshToken())
	})

	t.Run("clear removes both", func(t *testing.T) {
		s := newStore(t)
		require.NoError(t, s.SetTokens("A1", "R1"))
		require.NoError(t, s.ClearTokens())
		assert.Empty(t, s.AccessToken())
		assert.Empty(t, s.RefreshToken())
	})

	t.Run("clear on empty store", func(t *testing.T) {
		s := newStore(t)
		assert.NoError(t, s.ClearTokens())
	})

	t.Run("concurrent readers see whole pairs", func(t *testing.T) {
		s := newStore(t)
		require.NoError(t, s.SetTokens("A0", "R0"))

		pairs := map[string]string{"A0": "R0", "A1": "R1", "A2": "R2"}
		var wg sync.WaitGroup
		for i := 1; i <= 2; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				a := []string{"A1", "A2"}[i-1]
				for j := 0; j < 20; j++ {
					_ = s.SetTokens(a, pairs[a])
				}
			}(i)
		}
		wg.Wait()

		access := s.AccessToken()
		assert.Equal(t, pairs[access], s.RefreshToken())
	})
}

func TestMemoryStore(t *testing.T) {
	storeContract(t, func(t *testing.T) TokenStore { return NewMemoryStore() })
}

func TestFileStore(t *testing.T) {
	storeContract(t, func(t *testing.T) TokenStore {
		s, err := NewFileStore(filepath.Join(t.TempDir(), "tokens.json"), logger.Nop())
		require.NoError(t, err)
		return s
	})
}

func TestSealedFileStore(t *testing.T) {
	storeContract(t, func(t *testing.T) TokenStore {
		sealer, err := seal.New("hunter2", seal.WithParams(testSealParams))
		require.NoError(t, err)
		s, err := NewFileStore(filepath.Join(t.TempDir(), "tokens.json"), logger.Nop(), WithSealer(sealer))
		require.NoError(t, err)
		return s
	})
}

func TestBadgerStore(t *testing.T) {
	storeContract(t, func(t *testing.T) TokenStore {
		s, err := NewInMemoryBadgerStore(logger.Nop())
		require.NoError(t, err)
		t.Cleanup(func() { s.Close() })
		return s
	})
}

func TestFileStore_PersistsAcrossInstances(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "tokens.json")

	s1, err := NewFileStore(path, logger.Nop())
	require.NoError(t, err)
	require.NoError(t, s1.SetTokens("A1", "R1"))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	dirInfo, err := os.Stat(filepath.Dir(path))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0700), dirInfo.Mode().Perm())

	s2, err := NewFileStore(path, logger.Nop())
	require.NoError(t, err)
	assert.Equal(t, "A1", s2.AccessToken())
	assert.Equal(t, "R1", s2.RefreshToken())
}

func TestFileStore_NoTempFilesLeft(t *testing.T) {
	dir := t.TempDir()
	s, err := NewFileStore(filepath.Join(dir, "tokens.json"), logger.Nop())
	require.NoError(t, err)
	require.NoError(t, s.SetTokens("A1", "R1"))
	require.NoError(t, s.SetTokens("A2", "R2"))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "tokens.json", entries[0].Name())
}

func TestFileStore_CorruptFileReadsAbsent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tokens.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0600))

	s, err := NewFileStore(path, logger.Nop())
	require.NoError(t, err)
	assert.Empty(t, s.AccessToken())
	assert.Empty(t, s.RefreshToken())

	// A later write recovers the file.
	require.NoError(t, s.SetTokens("A1", "R1"))
	assert.Equal(t, "A1", s.AccessToken())
}

func TestFileStore_HalfPairReadsAbsent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tokens.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"access_token":"A1"}`), 0600))

	s, err := NewFileStore(path, logger.Nop())
	require.NoError(t, err)
	assert.Empty(t, s.AccessToken())
	assert.Empty(t, s.RefreshToken())
}

func TestFileStore_SealedContentIsOpaque(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tokens.json")
	sealer, err := seal.New("hunter2", seal.WithParams(testSealParams))
	require.NoError(t, err)

	s, err := NewFileStore(path, logger.Nop(), WithSealer(sealer))
	require.NoError(t, err)
	require.NoError(t, s.SetTokens("secret-access", "secret-refresh"))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, seal.IsSealed(raw))
	assert.NotContains(t, string(raw), "secret-access")

	// Without the passphrase the file reads as absent.
	plain, err := NewFileStore(path, logger.Nop())
	require.NoError(t, err)
	assert.Empty(t, plain.AccessToken())

	// With the wrong passphrase too.
	wrong, err := seal.New("wrong", seal.WithParams(testSealParams))
	require.NoError(t, err)
	other, err := NewFileStore(path, logger.Nop(), WithSealer(wrong))
	require.NoError(t, err)
	assert.Empty(t, other.AccessToken())
}

func TestFileStore_Invalidate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tokens.json")
	s, err := NewFileStore(path, logger.Nop())
	require.NoError(t, err)
	require.NoError(t, s.SetTokens("A1", "R1"))

	other, err := NewFileStore(path, logger.Nop())
	require.NoError(t, err)
	require.NoError(t, other.SetTokens("A2", "R2"))

	assert.Equal(t, "A1", s.AccessToken(), "cached value until invalidated")
	s.Invalidate()
	assert.Equal(t, "A2", s.AccessToken())
}

func TestFileStore_Watch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tokens.json")
	s, err := NewFileStore(path, logger.Nop())
	require.NoError(t, err)
	require.NoError(t, s.SetTokens("A1", "R1"))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, s.Watch(ctx))

	other, err := NewFileStore(path, logger.Nop())
	require.NoError(t, err)
	require.NoError(t, other.SetTokens("A2", "R2"))

	assert.Eventually(t, func() bool {
		return s.AccessToken() == "A2"
	}, 2*time.Second, 20*time.Millisecond)
}

func TestOpen(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name   string
		cfg    Config
		assert func(t *testing.T, s TokenStore)
	}{
		{
			name: "memory",
			cfg:  Config{Driver: DriverMemory},
			assert: func(t *testing.T, s TokenStore) {
				assert.IsType(t, &MemoryStore{}, s)
			},
		},
		{
			name: "file by default",
			cfg:  Config{Path: filepath.Join(dir, "default.json")},
			assert: func(t *testing.T, s TokenStore) {
				assert.IsType(t, &FileStore{}, s)
			},
		},
		{
			name: "badger",
			cfg:  Config{Driver: DriverBadger, Path: filepath.Join(dir, "tokens.db")},
			assert: func(t *testing.T, s TokenStore) {
				assert.IsType(t, &BadgerStore{}, s)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, closeFn, err := Open(tt.cfg, nil)
			require.NoError(t, err)
			require.NotNil(t, closeFn)
			defer closeFn()
			tt.assert(t, s)
			require.NoError(t, s.SetTokens("A", "R"))
			assert.Equal(t, "R", s.RefreshToken())
		})
	}
}

func TestOpen_UnknownDriver(t *testing.T) {
	_, closeFn, err := Open(Config{Driver: "etcd"}, nil)
	assert.True(t, errors.Is(err, ErrUnknownDriver))
	assert.NotNil(t, closeFn)
}

func TestDefaultPath(t *testing.T) {
	assert.Equal(t, "tokens.json", filepath.Base(DefaultPath(DriverFile)))
	assert.Equal(t, "tokens.db", filepath.Base(DefaultPath(DriverBadger)))
}

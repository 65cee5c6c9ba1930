package storage

import "sync"

// MemoryStore keeps the token pair in process memory.
type MemoryStore struct {
	mu      sync.RWMutex
	access  string
	refresh string
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// AccessToken returns the stored access token or "".
func (s *MemoryStore) AccessToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.access
}

// RefreshToken returns the stored refresh token or "".
func (s *MemoryStore) RefreshToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.refresh
}

// SetTokens replaces both tokens.
func (s *MemoryStore) SetTokens(access, refresh string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.access, s.refresh = access, refresh
	return nil
}

// ClearTokens removes both tokens.
func (s *MemoryStore) ClearTokens() error {
	return s.SetTokens("", "")
}

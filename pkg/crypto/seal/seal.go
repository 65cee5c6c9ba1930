// Package seal encrypts small secrets at rest with a passphrase.
//
// The key is derived with Argon2id from the passphrase and a random salt;
// the payload is sealed with XChaCha20-Poly1305. The KDF parameters, salt
// and nonce travel in a fixed header so a blob can be opened without any
// side-channel configuration:
//
//	magic(4) | time(4) | memory(4) | threads(1) | salt(16) | nonce(24) | ciphertext
package seal

import (
	"bytes"
	"crypto/rand"
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/chacha20poly1305"
)

const (
	saltSize   = 16
	headerSize = 4 + 4 + 4 + 1 + saltSize + chacha20poly1305.NonceSizeX
)

var magic = []byte("TDS1")

var (
	// ErrInvalidFormat is returned when a blob was not produced by Seal.
	ErrInvalidFormat = errors.New("seal: invalid sealed data")

	// ErrDecrypt is returned when authentication fails (wrong passphrase or tampered data).
	ErrDecrypt = errors.New("seal: decryption failed")

	// ErrEmptyPassphrase is returned by New for an empty passphrase.
	ErrEmptyPassphrase = errors.New("seal: empty passphrase")
)

// Params are the Argon2id cost parameters.
type Params struct {
	Time    uint32
	Memory  uint32 // KiB
	Threads uint8
}

// DefaultParams follow the RFC 9106 second recommended option.
var DefaultParams = Params{Time: 3, Memory: 64 * 1024, Threads: 4}

// Sealer seals and opens blobs with one passphrase.
type Sealer struct {
	passphrase []byte
	params     Params
}

// Option configures a Sealer.
type Option func(*Sealer)

// WithParams overrides the KDF cost used for new blobs.
func WithParams(p Params) Option {
	return func(s *Sealer) {
		s.params = p
	}
}

// New creates a Sealer for passphrase.
func New(passphrase string, opts ...Option) (*Sealer, error) {
	if passphrase == "" {
		return nil, ErrEmptyPassphrase
	}
	s := &Sealer{
		passphrase: []byte(passphrase),
		params:     DefaultParams,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Seal encrypts plaintext. additionalData is authenticated but not stored.
func (s *Sealer) Seal(plaintext, additionalData []byte) ([]byte, error) {
	header := make([]byte, headerSize)
	copy(header, magic)
	binary.BigEndian.PutUint32(header[4:], s.params.Time)
	binary.BigEndian.PutUint32(header[8:], s.params.Memory)
	header[12] = s.params.Threads

	salt := header[13 : 13+saltSize]
	nonce := header[13+saltSize:]
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return nil, fmt.Errorf("seal: read salt: %w", err)
	}
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, fmt.Errorf("seal: read nonce: %w", err)
	}

	aead, err := chacha20poly1305.NewX(s.key(salt, s.params))
	if err != nil {
		return nil, fmt.Errorf("seal: init cipher: %w", err)
	}
	return aead.Seal(header, nonce, plaintext, additionalData), nil
}

// Open decrypts a blob produced by Seal.
func (s *Sealer) Open(sealed, additionalData []byte) ([]byte, error) {
	if !IsSealed(sealed) {
		return nil, ErrInvalidFormat
	}

	p := Params{
		Time:    binary.BigEndian.Uint32(sealed[4:]),
		Memory:  binary.BigEndian.Uint32(sealed[8:]),
		Threads: sealed[12],
	}
	if p.Time == 0 || p.Threads == 0 {
		return nil, ErrInvalidFormat
	}
	salt := sealed[13 : 13+saltSize]
	nonce := sealed[13+saltSize : headerSize]

	aead, err := chacha20poly1305.NewX(s.key(salt, p))
	if err != nil {
		return nil, fmt.Errorf("seal: init cipher: %w", err)
	}
	plaintext, err := aead.Open(nil, nonce, sealed[headerSize:], additionalData)
	if err != nil {
		return nil, ErrDecrypt
	}
	return plaintext, nil
}

// IsSealed reports whether data starts with a seal header.
func IsSealed(data []byte) bool {
	return len(data) >= headerSize+chacha20poly1305.Overhead && bytes.HasPrefix(data, magic)
}

func (s *Sealer) key(salt []byte, p Params) []byte {
	return argon2.IDKey(s.passphrase, salt, p.Time, p.Memory, p.Threads, chacha20poly1305.KeySize)
}

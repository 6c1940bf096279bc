// Package protect seals the persisted profile blob at rest.
package protect

import (
	"crypto/rand"
	"crypto/sha256"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/hkdf"
)

// ErrUnprotect is returned when a blob cannot be opened, e.g. it was sealed
// with a different secret or was truncated.
var ErrUnprotect = errors.New("failed to unprotect data")

const keyInfo = "scs-profile-manager/profiles"

// Protector encrypts and decrypts opaque blobs.
type Protector interface {
	Protect(plaintext []byte) ([]byte, error)
	Unprotect(ciphertext []byte) ([]byte, error)
}

// SecretBoxProtector seals blobs with XChaCha20-Poly1305 under a key derived
// from a per-user secret. Output layout is nonce || ciphertext.
type SecretBoxProtector struct {
	key []byte
}

var _ Protector = (*SecretBoxProtector)(nil)

// NewSecretBoxProtector derives the sealing key from secret with HKDF-SHA256.
func NewSecretBoxProtector(secret []byte) (*SecretBoxProtector, error) {
	if len(secret) == 0 {
		return nil, errors.New("protector secret cannot be empty")
	}
	key := make([]byte, chacha20poly1305.KeySize)
	if _, err := io.ReadFull(hkdf.New(sha256.New, secret, nil, []byte(keyInfo)), key); err != nil {
		return nil, fmt.Errorf("failed to derive protector key: %w", err)
	}
	return &SecretBoxProtector{key: key}, nil
}

// Protect seals plaintext with a fresh random nonce.
func (p *SecretBoxProtector) Protect(plaintext []byte) ([]byte, error) {
	aead, err := chacha20poly1305.NewX(p.key)
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}

	nonce := make([]byte, aead.NonceSize(), aead.NonceSize()+len(plaintext)+aead.Overhead())
	if _, err := rand.Read(nonce); err != nil {
		return nil, fmt.Errorf("failed to generate nonce: %w", err)
	}
	return aead.Seal(nonce, nonce, plaintext, nil), nil
}

// Unprotect opens a blob produced by Protect.
func (p *SecretBoxProtector) Unprotect(ciphertext []byte) ([]byte, error) {
	aead, err := chacha20poly1305.NewX(p.key)
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}
	if len(ciphertext) < aead.NonceSize()+aead.Overhead() {
		return nil, fmt.Errorf("%w: blob too short", ErrUnprotect)
	}

	nonce, sealed := ciphertext[:aead.NonceSize()], ciphertext[aead.NonceSize():]
	plaintext, err := aead.Open(nil, nonce, sealed, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnprotect, err)
	}
	return plaintext, nil
}

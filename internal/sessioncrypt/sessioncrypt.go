// Package sessioncrypt seals and opens login-session cookie payloads.
package sessioncrypt

import (
	"crypto/rand"
	"encoding/json"
	"fmt"

	"golang.org/x/crypto/chacha20poly1305"

	"expertminer/internal/models"
)

// Algorithm tag stored on LoginSession records so payloads remain readable
// across key-rotation tooling.
const Algorithm = "xchacha20poly1305"

// Box encrypts and decrypts cookie payloads with a fixed 32-byte key.
type Box struct {
	key []byte
}

// NewBox creates a Box. The key must be 32 bytes.
func NewBox(key []byte) (*Box, error) {
	if len(key) != chacha20poly1305.KeySize {
		return nil, fmt.Errorf("session key must be %d bytes, got %d", chacha20poly1305.KeySize, len(key))
	}
	return &Box{key: key}, nil
}

// SealCookies serializes and encrypts cookies. The random nonce is prepended
// to the ciphertext.
func (b *Box) SealCookies(cookies []models.Cookie) ([]byte, error) {
	plain, err := json.Marshal(cookies)
	if err != nil {
		return nil, fmt.Errorf("marshal cookies: %w", err)
	}

	aead, err := chacha20poly1305.NewX(b.key)
	if err != nil {
		return nil, fmt.Errorf("init cipher: %w", err)
	}

	nonce := make([]byte, aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return nil, fmt.Errorf("generate nonce: %w", err)
	}

	return aead.Seal(nonce, nonce, plain, nil), nil
}

// OpenCookies decrypts and deserializes a sealed payload.
func (b *Box) OpenCookies(sealed []byte) ([]models.Cookie, error) {
	aead, err := chacha20poly1305.NewX(b.key)
	if err != nil {
		return nil, fmt.Errorf("init cipher: %w", err)
	}

	if len(sealed) < aead.NonceSize() {
		return nil, fmt.Errorf("payload too short: %d bytes", len(sealed))
	}
	nonce, ciphertext := sealed[:aead.NonceSize()], sealed[aead.NonceSize():]

	plain, err := aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, fmt.Errorf("decrypt payload: %w", err)
	}

	var cookies []models.Cookie
	if err := json.Unmarshal(plain, &cookies); err != nil {
		return nil, fmt.Errorf("unmarshal cookies: %w", err)
	}
	return cookies, nil
}

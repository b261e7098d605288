// Package secrets seals tenant integration credentials with AES-256-GCM.
//
// The key comes from GYN_ENCRYPTION_KEY (64 hex chars). Without it a
// deterministic development key is used, which must never reach production.
package secrets

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
)

// devKey is used only when no key is configured.
const devKey = "0123456789abcdef0123456789abcdef0123456789abcdef0123456789abcdef"

var (
	ErrCiphertextTooShort = errors.New("secrets: ciphertext too short")
	ErrInvalidKey         = errors.New("secrets: key must be 32 bytes (64 hex chars)")
)

// Box encrypts and decrypts values with one key.
type Box struct {
	aead cipher.AEAD
	dev  bool
}

// New returns a Box for the hex encoded key. An empty key selects the
// development key.
func New(hexKey string) (*Box, error) {
	dev := hexKey == ""
	if dev {
		hexKey = devKey
	}
	k, err := hex.DecodeString(hexKey)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidKey, err)
	}
	if len(k) != 32 {
		return nil, fmt.Errorf("%w: got %d bytes", ErrInvalidKey, len(k))
	}

	block, err := aes.NewCipher(k)
	if err != nil {
		return nil, fmt.Errorf("secrets: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("secrets: %w", err)
	}
	return &Box{aead: gcm, dev: dev}, nil
}

// Dev reports whether the box uses the development key.
func (b *Box) Dev() bool { return b.dev }

// Encrypt returns hex(nonce || ciphertext || tag).
func (b *Box) Encrypt(plaintext string) (string, error) {
	nonce := make([]byte, b.aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", fmt.Errorf("secrets: %w", err)
	}
	sealed := b.aead.Seal(nonce, nonce, []byte(plaintext), nil)
	return hex.EncodeToString(sealed), nil
}

// Decrypt reverses Encrypt.
func (b *Box) Decrypt(ciphertextHex string) (string, error) {
	data, err := hex.DecodeString(ciphertextHex)
	if err != nil {
		return "", fmt.Errorf("secrets: invalid hex ciphertext: %w", err)
	}

	nonceSize := b.aead.NonceSize()
	if len(data) < nonceSize {
		return "", ErrCiphertextTooShort
	}

	nonce, ciphertext := data[:nonceSize], data[nonceSize:]
	plaintext, err := b.aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return "", fmt.Errorf("secrets: decryption failed: %w", err)
	}
	return string(plaintext), nil
}

package secrets_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/growyourneed/platform/internal/secrets"
)

func mustBox(t *testing.T, key string) *secrets.Box {
	t.Helper()
	b, err := secrets.New(key)
	if err != nil {
		t.Fatal(err)
	}
	return b
}

func TestEncryptDecryptRoundTrip(t *testing.T) {
	box := mustBox(t, "")
	if !box.Dev() {
		t.Error("empty key should select the development key")
	}

	for _, plaintext := range []string{
		"",
		"sk_live_123",
		`{"apiKey":"abc","secret":"def"}`,
		strings.Repeat("x", 10000),
	} {
		encrypted, err := box.Encrypt(plaintext)
		if err != nil {
			t.Fatalf("Encrypt(%q) error: %v", plaintext, err)
		}
		if encrypted == "" || encrypted == plaintext {
			t.Fatalf("unexpected ciphertext %q", encrypted)
		}
		decrypted, err := box.Decrypt(encrypted)
		if err != nil {
			t.Fatalf("Decrypt error: %v", err)
		}
		if decrypted != plaintext {
			t.Errorf("roundtrip mismatch: got %q, want %q", decrypted, plaintext)
		}
	}
}

func TestEncryptProducesDifferentCiphertexts(t *testing.T) {
	box := mustBox(t, "")
	a, _ := box.Encrypt("same-value")
	b, _ := box.Encrypt("same-value")
	if a == b {
		t.Error("two encryptions of the same value should differ (random nonce)")
	}
}

func TestDecryptWithOtherKeyFails(t *testing.T) {
	a := mustBox(t, "")
	b := mustBox(t, strings.Repeat("ab", 32))
	if b.Dev() {
		t.Error("explicit key should not be the development key")
	}

	ct, err := a.Encrypt("secret")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := b.Decrypt(ct); err == nil {
		t.Error("decrypting with another key should fail")
	}
}

func TestDecryptInvalidInput(t *testing.T) {
	box := mustBox(t, "")
	if _, err := box.Decrypt("not-hex!"); err == nil {
		t.Error("expected error for invalid hex")
	}
	if _, err := box.Decrypt("abcd"); !errors.Is(err, secrets.ErrCiphertextTooShort) {
		t.Errorf("expected ErrCiphertextTooShort, got %v", err)
	}
}

func TestInvalidKey(t *testing.T) {
	for _, key := range []string{"zz", "abcd"} {
		if _, err := secrets.New(key); !errors.Is(err, secrets.ErrInvalidKey) {
			t.Errorf("New(%q): expected ErrInvalidKey, got %v", key, err)
		}
	}
}

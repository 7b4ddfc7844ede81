package kdf

import (
	"bytes"
	"testing"
)

func TestPbkdf2DeriveKeyDeterministic(t *testing.T) {
	salt := []byte("0123456789abcdef")
	k := NewPbkdf2(Sha1, 4096, salt)

	password := []byte("test-password")
	key1, err := k.DeriveKey(password, 16)
	if err != nil {
		t.Fatalf("DeriveKey: %v", err)
	}
	key2, err := k.DeriveKey(password, 16)
	if err != nil {
		t.Fatalf("DeriveKey: %v", err)
	}
	if !bytes.Equal(key1, key2) {
		t.Error("same password/salt/iterations must derive the same key")
	}

	key3, err := k.DeriveKey([]byte("different-password"), 16)
	if err != nil {
		t.Fatalf("DeriveKey: %v", err)
	}
	if bytes.Equal(key1, key3) {
		t.Error("different passwords must derive different keys")
	}
}

func TestPbkdf2RejectsEmptyInput(t *testing.T) {
	k := NewPbkdf2(Sha1, 4096, nil)
	if _, err := k.DeriveKey([]byte("pw"), 16); err != ErrEmptyInput {
		t.Errorf("expected ErrEmptyInput for empty salt, got %v", err)
	}

	k = NewPbkdf2(Sha1, 4096, []byte("salt"))
	if _, err := k.DeriveKey(nil, 16); err != ErrEmptyInput {
		t.Errorf("expected ErrEmptyInput for empty password, got %v", err)
	}
}

func TestNoneKdf(t *testing.T) {
	k := NewNone()
	key, err := k.DeriveKey([]byte("pw"), 0)
	if err != nil {
		t.Fatalf("DeriveKey: %v", err)
	}
	if len(key) != 0 {
		t.Errorf("None kdf must derive an empty key, got %d bytes", len(key))
	}
	if _, err := k.DeriveKey([]byte("pw"), 16); err == nil {
		t.Error("expected error deriving a non-empty key from None")
	}
}

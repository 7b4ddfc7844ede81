package security

import (
	"bytes"
	"testing"

	"github.com/drobin/nuts/container"
)

// A container's PasswordStore must not leave the plaintext password
// readable in its own buffer once Close has run.
func TestPasswordStoreWipesOnClose(t *testing.T) {
	store := container.NewPasswordStore()
	store.Set([]byte("hunter2"))

	pw, ok := store.Get()
	if !ok || !bytes.Equal(pw, []byte("hunter2")) {
		t.Fatalf("Get() = %q, %v, want %q, true", pw, ok, "hunter2")
	}

	store.Close()

	pw, ok = store.Get()
	if ok {
		t.Fatal("Get() reported the password as still set after Close")
	}
	if len(pw) != 0 {
		t.Fatalf("Get() after Close returned %d bytes, want none", len(pw))
	}
}

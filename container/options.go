package container

import (
	"github.com/drobin/nuts/internal/cryptocore"
	"github.com/drobin/nuts/internal/kdf"
	"github.com/drobin/nuts/internal/memprotect"
)

// PasswordCallback supplies the container's password on demand. It's
// called at most once per Create/Open; the result is cached by
// PasswordStore for the container's lifetime.
type PasswordCallback func() ([]byte, error)

// Migrator recovers a top id from a revision-0 header's opaque userdata
// bytes, letting a caller upgrade a legacy container without writing its
// own top-id bootstrap logic.
type Migrator func(userdata []byte) ([]byte, error)

// CreateOptions configures Create. When Kdf is kdf.None, PasswordCb is
// never called and the master key/secret-wrapping key are both empty
// (only legal when Cipher.KeyLen() == 0, i.e. Cipher == cryptocore.None).
type CreateOptions struct {
	Cipher     cryptocore.Cipher
	Kdf        kdf.Kind
	Digest     kdf.Digest
	Iterations uint32
	PasswordCb PasswordCallback
	Overwrite  bool
	BlockSize  uint32

	// Harden asks the container to apply OS-level process hardening
	// (disabling core dumps, marking the process non-dumpable) right
	// after the password is in memory.
	Harden bool
}

// OpenOptions configures Open.
type OpenOptions struct {
	PasswordCb  PasswordCallback
	Migrator    Migrator
	NoMigration bool // open a Rev0 header without a migrator, leaving no top id
	Harden      bool
}

// PasswordStore caches a container's password for its lifetime and wipes
// it from memory when Close is called, using memprotect's SecureZero
// primitive.
type PasswordStore struct {
	mp       *memprotect.MemoryProtection
	password []byte
	set      bool
}

// NewPasswordStore returns an empty store.
func NewPasswordStore() *PasswordStore {
	return &PasswordStore{mp: memprotect.New()}
}

// Set caches password. The caller's slice is copied; the store's own copy
// is what gets wiped on Close.
func (p *PasswordStore) Set(password []byte) {
	p.password = append([]byte(nil), password...)
	p.set = true
}

// Get returns the cached password and whether one was ever set.
func (p *PasswordStore) Get() ([]byte, bool) {
	return p.password, p.set
}

// Close zeroes the cached password. Safe to call multiple times.
func (p *PasswordStore) Close() {
	if p.password != nil {
		p.mp.SecureZero(p.password)
	}
	p.password = nil
	p.set = false
}

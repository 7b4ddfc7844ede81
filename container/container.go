package container

import (
	"fmt"

	"github.com/drobin/nuts/backend"
	"github.com/drobin/nuts/internal/cryptocore"
	"github.com/drobin/nuts/internal/kdf"
	"github.com/drobin/nuts/internal/processhardening"
	"github.com/drobin/nuts/internal/tlog"
)

// Container is an open, password-unwrapped nuts container: a header plus
// the per-block cipher pipeline layered over a backend.Backend. A
// Container is single-threaded and holds no internal synchronization, per
// spec §5.
type Container struct {
	be backend.Backend
	hdr header

	cipher cryptocore.Cipher
	kdf    kdf.Kdf

	wrappingKey []byte
	masterKey   []byte
	masterIV    []byte
	magic       uint32

	topID    *backend.ID
	sid      *uint64
	settings backend.Settings

	pwStore *PasswordStore
}

// Info mirrors backend.Info plus the container's own cipher/kdf
// selection, for diagnostics and the S2 reopen-reports-identical-info
// testable property.
type Info struct {
	Cipher cryptocore.Cipher
	Kdf    kdf.Kdf
	Block  backend.Info
}

// Create initializes a fresh container on be, deriving fresh key material
// and writing the header slot.
func Create(be backend.Backend, opts CreateOptions) (*Container, error) {
	cipher := opts.Cipher
	keyLen := cipher.KeyLen()

	masterKey := cryptocore.RandBytes(keyLen)
	masterIV := cryptocore.RandBytes(cipher.IvLen())

	k, wrappingKey, pwStore, err := buildKdf(opts.Kdf, opts.Digest, opts.Iterations, keyLen, opts.PasswordCb)
	if err != nil {
		return nil, err
	}

	if opts.Harden {
		processhardening.New().HardenProcess()
	}

	settings, err := be.Settings()
	if err != nil {
		return nil, &backend.BackendError{Op: "settings", Err: err}
	}

	magic := cryptocore.RandUint32()
	secret := plainSecret{
		Magics:   [2]uint32{magic, magic},
		Key:      masterKey,
		IV:       masterIV,
		Settings: settings,
	}
	secretBytes, err := encodeSecret(LatestRevision, secret)
	if err != nil {
		return nil, err
	}

	wrappingIV := cryptocore.RandBytes(cipher.IvLen())
	encryptedSecret, err := cipher.Encrypt(wrappingKey, wrappingIV, secretBytes)
	if err != nil {
		return nil, err
	}

	hdr := header{
		Revision:        LatestRevision,
		Cipher:          cipher,
		WrappingIV:      wrappingIV,
		Kdf:             k,
		EncryptedSecret: encryptedSecret,
	}
	hdrBytes, err := encodeHeader(hdr)
	if err != nil {
		return nil, err
	}
	if err := be.HeaderPut(hdrBytes); err != nil {
		return nil, err
	}

	tlog.Info.Printf("container: created (cipher=%s kdf-kind=%d block-size=%d)",
		cipher, k.Kind, be.BlockSize())

	return &Container{
		be:          be,
		hdr:         hdr,
		cipher:      cipher,
		kdf:         k,
		wrappingKey: wrappingKey,
		masterKey:   masterKey,
		masterIV:    masterIV,
		magic:       magic,
		settings:    settings,
		pwStore:     pwStore,
	}, nil
}

// Open reads and unwraps an existing container's header from be.
func Open(be backend.Backend, opts OpenOptions) (*Container, error) {
	slot, err := be.HeaderGet()
	if err != nil {
		return nil, &backend.BackendError{Op: "header-get", Err: err}
	}
	hdr, err := decodeHeader(slot)
	if err != nil {
		return nil, err
	}

	keyLen := hdr.Cipher.KeyLen()
	wrappingKey, pwStore, err := unwrapKdf(hdr.Kdf, keyLen, opts.PasswordCb)
	if err != nil {
		return nil, err
	}

	if opts.Harden {
		processhardening.New().HardenProcess()
	}

	secretBytes, err := hdr.Cipher.Decrypt(wrappingKey, hdr.WrappingIV, hdr.EncryptedSecret)
	if err != nil {
		return nil, ErrWrongPassword
	}

	s, err := decodeSecret(hdr.Revision, secretBytes, keyLen, hdr.Cipher.IvLen())
	if err != nil {
		return nil, ErrWrongPassword
	}
	if s.Magics[0] != s.Magics[1] {
		return nil, ErrWrongPassword
	}

	if err := be.Open(s.Settings); err != nil {
		return nil, ErrInvalidSettings
	}

	topID := s.TopID
	migrated := false

	if hdr.Revision == Rev0 {
		switch {
		case opts.Migrator != nil:
			newTopIDBytes, err := opts.Migrator(s.UserData)
			if err != nil {
				return nil, fmt.Errorf("container: migration failed: %w", err)
			}
			id, err := backend.IDFromBytes(newTopIDBytes)
			if err != nil {
				return nil, err
			}
			topID = &id
			migrated = true
		case opts.NoMigration:
			// caller explicitly accepts no top id; proceed without one.
		default:
			return nil, ErrMigrationRequired
		}
	}

	c := &Container{
		be:          be,
		hdr:         hdr,
		cipher:      hdr.Cipher,
		kdf:         hdr.Kdf,
		wrappingKey: wrappingKey,
		masterKey:   s.Key,
		masterIV:    s.IV,
		magic:       s.Magics[0],
		topID:       topID,
		sid:         s.SID,
		settings:    s.Settings,
		pwStore:     pwStore,
	}

	if migrated || hdr.Revision != LatestRevision {
		if err := c.rewriteHeader(); err != nil {
			return nil, err
		}
	}

	tlog.Info.Printf("container: opened (cipher=%s rev=%s block-size=%d)", c.cipher, hdr.Revision, be.BlockSize())
	return c, nil
}

func buildKdf(kind kdf.Kind, digest kdf.Digest, iterations uint32, keyLen int, cb PasswordCallback) (kdf.Kdf, []byte, *PasswordStore, error) {
	switch kind {
	case kdf.None:
		if keyLen != 0 {
			return kdf.Kdf{}, nil, nil, fmt.Errorf("container: kdf.None requires a zero-length key cipher")
		}
		return kdf.NewNone(), nil, NewPasswordStore(), nil
	case kdf.Pbkdf2Kind:
		if cb == nil {
			return kdf.Kdf{}, nil, nil, &NoPasswordError{}
		}
		pw, err := cb()
		if err != nil {
			return kdf.Kdf{}, nil, nil, &NoPasswordError{Err: err}
		}
		salt := cryptocore.RandBytes(16)
		k := kdf.NewPbkdf2(digest, iterations, salt)
		key, err := k.DeriveKey(pw, keyLen)
		if err != nil {
			return kdf.Kdf{}, nil, nil, err
		}
		store := NewPasswordStore()
		store.Set(pw)
		return k, key, store, nil
	default:
		return kdf.Kdf{}, nil, nil, fmt.Errorf("container: unknown kdf kind %d", kind)
	}
}

func unwrapKdf(k kdf.Kdf, keyLen int, cb PasswordCallback) ([]byte, *PasswordStore, error) {
	switch k.Kind {
	case kdf.None:
		return nil, NewPasswordStore(), nil
	case kdf.Pbkdf2Kind:
		if cb == nil {
			return nil, nil, &NoPasswordError{}
		}
		pw, err := cb()
		if err != nil {
			return nil, nil, &NoPasswordError{Err: err}
		}
		key, err := k.DeriveKey(pw, keyLen)
		if err != nil {
			return nil, nil, err
		}
		store := NewPasswordStore()
		store.Set(pw)
		return key, store, nil
	default:
		return nil, nil, fmt.Errorf("container: unknown kdf kind %d", k.Kind)
	}
}

// Close wipes the cached password. It does not touch the backend.
func (c *Container) Close() {
	if c.pwStore != nil {
		c.pwStore.Close()
	}
}

// Info returns read-only introspection data, used by the S2
// reopen-reports-identical-info testable property.
func (c *Container) Info() Info {
	return Info{Cipher: c.cipher, Kdf: c.kdf, Block: c.be.Info()}
}

// Backend returns the underlying backend, for callers (e.g. the archive
// package) that need to aquire/release/read/write raw blocks alongside
// the container's own header-managed state.
func (c *Container) Backend() backend.Backend {
	return c.be
}

// TopID returns the container's current top-level pointer, if any.
func (c *Container) TopID() (backend.ID, bool) {
	if c.topID == nil {
		return backend.ID{}, false
	}
	return *c.topID, true
}

// BlockSizeNet is the plaintext-visible payload size of one block: the
// backend's gross block size minus the cipher's authentication tag
// overhead.
func (c *Container) BlockSizeNet() int {
	return c.cipher.BlockSize(int(c.be.BlockSize()))
}

func (c *Container) deriveBlockKeyIV(id backend.ID) (key, iv []byte) {
	key = xorFold(c.masterKey, id)
	iv = xorFold(c.masterIV, id)
	return
}

// xorFold XORs id's bytes cyclically into a copy of base, the per-block
// key/IV derivation spec §4.4 describes.
func xorFold(base []byte, id backend.ID) []byte {
	if len(base) == 0 {
		return nil
	}
	out := append([]byte(nil), base...)
	idb := id.Bytes()
	for i := range out {
		out[i] ^= idb[i%len(idb)]
	}
	return out
}

// ReadBlock reads block id's ciphertext, decrypts it, and copies up to
// len(buf) plaintext bytes into buf, returning the count copied. A tag
// failure (corrupt/foreign block) surfaces as a *cryptocore.CipherError.
func (c *Container) ReadBlock(id backend.ID, buf []byte) (int, error) {
	gross := make([]byte, c.be.BlockSize())
	n, err := c.be.Read(id, gross)
	if err != nil {
		return 0, err
	}
	key, iv := c.deriveBlockKeyIV(id)
	plain, err := c.cipher.Decrypt(key, iv, gross[:n])
	if err != nil {
		return 0, err
	}
	m := len(buf)
	if m > len(plain) {
		m = len(plain)
	}
	copy(buf[:m], plain[:m])
	return m, nil
}

// WriteBlock encrypts up to BlockSizeNet() bytes of buf (zero-padding the
// remainder) and writes the resulting gross block to the backend,
// returning the unpadded, caller-visible length written.
func (c *Container) WriteBlock(id backend.ID, buf []byte) (int, error) {
	net := c.BlockSizeNet()
	n := len(buf)
	if n > net {
		n = net
	}
	padded := make([]byte, net)
	copy(padded, buf[:n])

	key, iv := c.deriveBlockKeyIV(id)
	ct, err := c.cipher.Encrypt(key, iv, padded)
	if err != nil {
		return 0, err
	}
	if _, err := c.be.Write(id, ct); err != nil {
		return 0, err
	}
	return n, nil
}

// Aquire allocates a fresh block and ensures it reads back as all zeros
// under this container's per-block cipher pipeline. The backend is asked
// for a fresh id with a throwaway placeholder payload (its content is
// immediately overwritten with a properly id-derived-key encryption of
// the all-zero plaintext), since the per-block key/IV can only be derived
// once the id is known.
func (c *Container) Aquire() (backend.ID, error) {
	placeholder := make([]byte, c.be.BlockSize())
	id, err := c.be.Aquire(placeholder)
	if err != nil {
		return backend.ID{}, err
	}
	zero := make([]byte, c.BlockSizeNet())
	if _, err := c.WriteBlock(id, zero); err != nil {
		return backend.ID{}, err
	}
	return id, nil
}

// Release destroys the block addressed by id.
func (c *Container) Release(id backend.ID) error {
	return c.be.Release(id)
}

// rewriteHeader re-serializes the in-memory header state (master key/IV,
// top id, service id, settings) with a fresh secret-wrapping IV and
// writes it back through the backend's header slot, per the header
// update protocol in spec §4.4.
func (c *Container) rewriteHeader() error {
	secret := plainSecret{
		Magics:   [2]uint32{c.magic, c.magic},
		Key:      c.masterKey,
		IV:       c.masterIV,
		SID:      c.sid,
		TopID:    c.topID,
		Settings: c.settings,
	}
	secretBytes, err := encodeSecret(LatestRevision, secret)
	if err != nil {
		return err
	}

	wrappingIV := cryptocore.RandBytes(c.cipher.IvLen())
	encryptedSecret, err := c.cipher.Encrypt(c.wrappingKey, wrappingIV, secretBytes)
	if err != nil {
		return err
	}

	c.hdr.Revision = LatestRevision
	c.hdr.WrappingIV = wrappingIV
	c.hdr.EncryptedSecret = encryptedSecret

	hdrBytes, err := encodeHeader(c.hdr)
	if err != nil {
		return err
	}
	return c.be.HeaderPut(hdrBytes)
}

// Service is a handle granting exclusive ownership of the container's
// top-level pointer and service id to one layered protocol (e.g. the
// archive engine).
type Service struct {
	c  *Container
	id uint64
}

// ID returns this service's assigned identifier.
func (s *Service) ID() uint64 { return s.id }

// TopID returns the container's current top id, if one has been set.
func (s *Service) TopID() (backend.ID, bool) {
	return s.c.TopID()
}

// SetTopID assigns (or replaces) the container's top id and rewrites the
// header.
func (s *Service) SetTopID(id backend.ID) error {
	s.c.topID = &id
	return s.c.rewriteHeader()
}

// Container exposes the underlying container for block I/O.
func (s *Service) Container() *Container { return s.c }

// CreateService assigns a fresh service id to a freshly created
// container, requiring it to be at the latest revision (true of every
// container Create produces). Fails if a service id is already assigned.
func (c *Container) CreateService() (*Service, error) {
	if c.hdr.Revision != LatestRevision {
		return nil, &UnknownRevisionError{Revision: uint32(c.hdr.Revision)}
	}
	if c.sid != nil {
		return nil, ErrServiceAlreadyAssigned
	}
	sid := cryptocore.RandUint32()
	sid64 := uint64(sid)<<32 | uint64(cryptocore.RandUint32())
	c.sid = &sid64
	if err := c.rewriteHeader(); err != nil {
		return nil, err
	}
	return &Service{c: c, id: sid64}, nil
}

// OpenService reconstructs a Service handle for a container that already
// carries a service id, refusing a mismatch against expected.
func (c *Container) OpenService(expected uint64) (*Service, error) {
	if c.sid == nil || *c.sid != expected {
		return nil, ErrServiceMismatch
	}
	return &Service{c: c, id: *c.sid}, nil
}

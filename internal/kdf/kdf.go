// Package kdf implements the key-derivation side of the container header:
// a small tagged union of KDF parameter structs, specialized down to the
// one variant the wire format defines (PBKDF2 over SHA-1), plus the no-op
// None variant used when the container has no password.
package kdf

import (
	"crypto/sha1"
	"fmt"
	"hash"

	"golang.org/x/crypto/pbkdf2"
)

// Digest identifies the hash PBKDF2 runs on.
type Digest uint32

const (
	Sha1 Digest = iota
)

// OutputLen returns the digest's native output length in bytes.
func (d Digest) OutputLen() int {
	switch d {
	case Sha1:
		return sha1.Size
	default:
		return 0
	}
}

// ErrUnknownDigest is returned for an unrecognized digest discriminant.
var ErrUnknownDigest = fmt.Errorf("kdf: unknown digest")

// ErrEmptyInput is returned when Pbkdf2 is selected with an empty salt or
// password; spec requires both to be non-empty in that case.
var ErrEmptyInput = fmt.Errorf("kdf: salt and password must be non-empty for pbkdf2")

// Kind distinguishes the two Kdf variants.
type Kind uint32

const (
	None Kind = iota
	Pbkdf2Kind
)

// Kdf is the tagged union of key-derivation functions a container header
// can select. The zero value is None.
type Kdf struct {
	Kind       Kind
	Digest     Digest
	Iterations uint32
	Salt       []byte
}

// NewNone returns the no-op Kdf, valid only when the paired cipher has a
// zero-length key.
func NewNone() Kdf {
	return Kdf{Kind: None}
}

// NewPbkdf2 returns a Pbkdf2 Kdf with the given digest, iteration count and
// salt. The salt is not copied; callers should pass freshly generated
// random bytes.
func NewPbkdf2(digest Digest, iterations uint32, salt []byte) Kdf {
	return Kdf{Kind: Pbkdf2Kind, Digest: digest, Iterations: iterations, Salt: salt}
}

// DeriveKey produces a keyLen-byte key from password. For None it returns
// an empty key, valid only when keyLen == 0.
func (k Kdf) DeriveKey(password []byte, keyLen int) ([]byte, error) {
	switch k.Kind {
	case None:
		if keyLen != 0 {
			return nil, fmt.Errorf("kdf: none kdf cannot produce a %d-byte key", keyLen)
		}
		return nil, nil
	case Pbkdf2Kind:
		if len(k.Salt) == 0 || len(password) == 0 {
			return nil, ErrEmptyInput
		}
		h, err := hashFunc(k.Digest)
		if err != nil {
			return nil, err
		}
		return pbkdf2.Key(password, k.Salt, int(k.Iterations), keyLen, h), nil
	default:
		return nil, fmt.Errorf("kdf: unknown kind %d", k.Kind)
	}
}

func hashFunc(d Digest) (func() hash.Hash, error) {
	switch d {
	case Sha1:
		return sha1.New, nil
	default:
		return nil, ErrUnknownDigest
	}
}

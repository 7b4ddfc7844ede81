// Package cryptocore implements the block cipher surface nuts containers
// and archives are built on: a small tagged union of ciphers, each
// exposing key/iv/block/tag sizes plus encrypt/decrypt, scoped to exactly
// the ciphers the wire format defines. Detected CPU features are logged
// once at package init; they do not change which implementation runs.
package cryptocore

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"fmt"
	"io"

	"github.com/drobin/nuts/internal/cpudetection"
	"github.com/drobin/nuts/internal/tlog"
)

// Cipher identifies one of the ciphers the wire format knows about. The
// zero value is None.
type Cipher uint32

const (
	None Cipher = iota
	Aes128Ctr
	Aes128Gcm
)

// ErrUnknownCipher is returned when a header names a cipher discriminant
// this build doesn't recognize.
var ErrUnknownCipher = fmt.Errorf("cryptocore: unknown cipher")

// CipherError wraps any failure from an underlying cipher operation,
// including AEAD tag verification failures.
type CipherError struct {
	Op  string
	Err error
}

func (e *CipherError) Error() string { return fmt.Sprintf("cryptocore: %s: %v", e.Op, e.Err) }
func (e *CipherError) Unwrap() error { return e.Err }

func (c Cipher) String() string {
	switch c {
	case None:
		return "none"
	case Aes128Ctr:
		return "aes128-ctr"
	case Aes128Gcm:
		return "aes128-gcm"
	default:
		return "unknown"
	}
}

// KeyLen returns the key length in bytes this cipher requires.
func (c Cipher) KeyLen() int {
	switch c {
	case None:
		return 0
	case Aes128Ctr, Aes128Gcm:
		return 16
	default:
		return 0
	}
}

// IvLen returns the IV/nonce length in bytes this cipher requires.
func (c Cipher) IvLen() int {
	switch c {
	case None:
		return 0
	case Aes128Ctr:
		return aes.BlockSize // 16
	case Aes128Gcm:
		return 12
	default:
		return 0
	}
}

// TagSize returns the authentication tag size appended to ciphertext by
// this cipher; 0 for unauthenticated/None ciphers.
func (c Cipher) TagSize() int {
	switch c {
	case Aes128Gcm:
		return 16
	default:
		return 0
	}
}

// BlockSize returns the net payload size a backend block of the given
// gross size can carry once this cipher's tag overhead is subtracted.
func (c Cipher) BlockSize(grossBlockSize int) int {
	return grossBlockSize - c.TagSize()
}

// Encrypt seals plaintext under key/iv, appending an authentication tag
// for AEAD ciphers. For None, key and iv must both be empty and the
// plaintext is returned unchanged.
func (c Cipher) Encrypt(key, iv, plaintext []byte) ([]byte, error) {
	switch c {
	case None:
		if len(key) != 0 || len(iv) != 0 {
			return nil, &CipherError{Op: "encrypt", Err: fmt.Errorf("none cipher requires empty key/iv")}
		}
		out := make([]byte, len(plaintext))
		copy(out, plaintext)
		return out, nil
	case Aes128Ctr:
		block, err := aesBlock(key)
		if err != nil {
			return nil, &CipherError{Op: "encrypt", Err: err}
		}
		if len(iv) != c.IvLen() {
			return nil, &CipherError{Op: "encrypt", Err: fmt.Errorf("bad iv length %d", len(iv))}
		}
		stream := cipher.NewCTR(block, iv)
		out := make([]byte, len(plaintext))
		stream.XORKeyStream(out, plaintext)
		return out, nil
	case Aes128Gcm:
		aead, err := aesGCM(key)
		if err != nil {
			return nil, &CipherError{Op: "encrypt", Err: err}
		}
		if len(iv) != c.IvLen() {
			return nil, &CipherError{Op: "encrypt", Err: fmt.Errorf("bad iv length %d", len(iv))}
		}
		return aead.Seal(nil, iv, plaintext, nil), nil
	default:
		return nil, ErrUnknownCipher
	}
}

// Decrypt is the inverse of Encrypt. input is ciphertext for streaming
// ciphers, ciphertext‖tag for AEAD ciphers. A forged/corrupt AEAD tag
// surfaces as a *CipherError.
func (c Cipher) Decrypt(key, iv, input []byte) ([]byte, error) {
	switch c {
	case None:
		if len(key) != 0 || len(iv) != 0 {
			return nil, &CipherError{Op: "decrypt", Err: fmt.Errorf("none cipher requires empty key/iv")}
		}
		out := make([]byte, len(input))
		copy(out, input)
		return out, nil
	case Aes128Ctr:
		block, err := aesBlock(key)
		if err != nil {
			return nil, &CipherError{Op: "decrypt", Err: err}
		}
		if len(iv) != c.IvLen() {
			return nil, &CipherError{Op: "decrypt", Err: fmt.Errorf("bad iv length %d", len(iv))}
		}
		stream := cipher.NewCTR(block, iv)
		out := make([]byte, len(input))
		stream.XORKeyStream(out, input)
		return out, nil
	case Aes128Gcm:
		aead, err := aesGCM(key)
		if err != nil {
			return nil, &CipherError{Op: "decrypt", Err: err}
		}
		if len(iv) != c.IvLen() {
			return nil, &CipherError{Op: "decrypt", Err: fmt.Errorf("bad iv length %d", len(iv))}
		}
		out, err := aead.Open(nil, iv, input, nil)
		if err != nil {
			return nil, &CipherError{Op: "decrypt", Err: err}
		}
		return out, nil
	default:
		return nil, ErrUnknownCipher
	}
}

func aesBlock(key []byte) (cipher.Block, error) {
	if len(key) != 16 {
		return nil, fmt.Errorf("bad key length %d", len(key))
	}
	return aes.NewCipher(key)
}

func aesGCM(key []byte) (cipher.AEAD, error) {
	block, err := aesBlock(key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}

// KeyLen is the byte length of an AES-128 key, kept as a package constant
// for callers (KDFs, tests) that need it without a Cipher value at hand.
const KeyLen = 16

// RandBytes returns n cryptographically random bytes. It backs both key
// material generation and the secret's double-magic values.
func RandBytes(n int) []byte {
	b := make([]byte, n)
	if _, err := io.ReadFull(rand.Reader, b); err != nil {
		tlog.Fatal.Printf("RandBytes: %v", err)
		panic(err)
	}
	return b
}

// RandUint32 returns a random u32, used for the header secret's magic
// values.
func RandUint32() uint32 {
	b := RandBytes(4)
	return uint32(b[0])<<24 | uint32(b[1])<<16 | uint32(b[2])<<8 | uint32(b[3])
}

func init() {
	tlog.Debug.Printf("cryptocore: cpu features: %s", cpudetection.New().String())
}

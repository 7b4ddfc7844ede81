// Package security holds integration-level security tests that cross
// package boundaries (container+backend+kdf), the kind the unit tests
// living alongside each package aren't well placed to express.
package security

import (
	"bytes"
	"testing"

	"github.com/drobin/nuts/backend/memory"
	"github.com/drobin/nuts/container"
	"github.com/drobin/nuts/internal/cryptocore"
	"github.com/drobin/nuts/internal/kdf"
)

func pwCallback(pw string) container.PasswordCallback {
	return func() ([]byte, error) { return []byte(pw), nil }
}

// A wrong password on an AEAD-protected container must fail with
// ErrWrongPassword, never with a silently-wrong-but-open container.
func TestWrongPasswordRejectedUnderGcm(t *testing.T) {
	be := memory.New(512)
	c, err := container.Create(be, container.CreateOptions{
		Cipher: cryptocore.Aes128Gcm, Kdf: kdf.Pbkdf2Kind, Digest: kdf.Sha1,
		Iterations: 1000, PasswordCb: pwCallback("correct-horse"),
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	c.Close()

	if _, err := container.Open(be, container.OpenOptions{
		PasswordCb: pwCallback("wrong-password"), NoMigration: true,
	}); err != container.ErrWrongPassword {
		t.Fatalf("Open with wrong password = %v, want ErrWrongPassword", err)
	}
}

// Flipping a single ciphertext byte in a GCM-protected block must be
// caught by the authentication tag rather than silently decrypting to
// corrupted plaintext.
func TestTamperedGcmBlockDetected(t *testing.T) {
	be := memory.New(512)
	c, err := container.Create(be, container.CreateOptions{
		Cipher: cryptocore.Aes128Gcm, Kdf: kdf.None,
	})
	if err == nil {
		t.Fatalf("expected kdf.None + Aes128Gcm (non-zero key) to be rejected")
	}

	c, err = container.Create(be, container.CreateOptions{
		Cipher: cryptocore.Aes128Gcm, Kdf: kdf.Pbkdf2Kind, Digest: kdf.Sha1,
		Iterations: 1000, PasswordCb: pwCallback("s3cr3t"),
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	id, err := c.Aquire()
	if err != nil {
		t.Fatalf("Aquire: %v", err)
	}
	if _, err := c.WriteBlock(id, []byte("top secret payload")); err != nil {
		t.Fatalf("WriteBlock: %v", err)
	}

	raw := make([]byte, be.BlockSize())
	if _, err := be.Read(id, raw); err != nil {
		t.Fatalf("Read: %v", err)
	}
	raw[0] ^= 0xff
	if _, err := be.Write(id, raw); err != nil {
		t.Fatalf("Write (tamper): %v", err)
	}

	buf := make([]byte, c.BlockSizeNet())
	if _, err := c.ReadBlock(id, buf); err == nil {
		t.Fatal("expected tamper detection error reading a flipped GCM block")
	}
}

// Under a non-AEAD cipher (no authentication tag at all), tampering
// can't be detected at the block level; this documents that property
// instead of asserting a detection the cipher can't provide.
func TestNonAeadCipherHasNoTamperDetection(t *testing.T) {
	be := memory.New(512)
	c, err := container.Create(be, container.CreateOptions{
		Cipher: cryptocore.Aes128Ctr, Kdf: kdf.Pbkdf2Kind, Digest: kdf.Sha1,
		Iterations: 1000, PasswordCb: pwCallback("s3cr3t"),
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	id, err := c.Aquire()
	if err != nil {
		t.Fatalf("Aquire: %v", err)
	}
	original := bytes.Repeat([]byte{0x42}, 32)
	if _, err := c.WriteBlock(id, original); err != nil {
		t.Fatalf("WriteBlock: %v", err)
	}

	raw := make([]byte, be.BlockSize())
	if _, err := be.Read(id, raw); err != nil {
		t.Fatalf("Read: %v", err)
	}
	raw[0] ^= 0xff
	if _, err := be.Write(id, raw); err != nil {
		t.Fatalf("Write (tamper): %v", err)
	}

	buf := make([]byte, c.BlockSizeNet())
	if _, err := c.ReadBlock(id, buf); err != nil {
		t.Fatalf("ReadBlock unexpectedly failed under CTR: %v", err)
	}
	if bytes.Equal(buf[:len(original)], original) {
		t.Fatal("expected the flipped byte to have corrupted the decrypted plaintext")
	}
}

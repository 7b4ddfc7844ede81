package container

import (
	"bytes"
	"testing"

	"github.com/drobin/nuts/backend/memory"
	"github.com/drobin/nuts/internal/cryptocore"
	"github.com/drobin/nuts/internal/kdf"
)

func pwCallback(pw string) PasswordCallback {
	return func() ([]byte, error) { return []byte(pw), nil }
}

// S1: Cipher::None container, block round-trip with full-block and
// partial reads.
func TestNoneCipherBlockRoundTrip(t *testing.T) {
	be := memory.New(512)
	c, err := Create(be, CreateOptions{Cipher: cryptocore.None, Kdf: kdf.None})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	id, err := c.Aquire()
	if err != nil {
		t.Fatalf("Aquire: %v", err)
	}

	payload := bytes.Repeat([]byte{0xAA}, 400)
	n, err := c.WriteBlock(id, payload)
	if err != nil || n != 400 {
		t.Fatalf("WriteBlock = %d, %v", n, err)
	}

	full := make([]byte, 512)
	if _, err := c.ReadBlock(id, full); err != nil {
		t.Fatalf("ReadBlock: %v", err)
	}
	want := append(bytes.Repeat([]byte{0xAA}, 400), make([]byte, 112)...)
	if !bytes.Equal(full, want) {
		t.Fatalf("ReadBlock(512) mismatch")
	}

	exact := make([]byte, 400)
	if _, err := c.ReadBlock(id, exact); err != nil {
		t.Fatalf("ReadBlock: %v", err)
	}
	if !bytes.Equal(exact, bytes.Repeat([]byte{0xAA}, 400)) {
		t.Fatalf("ReadBlock(400) mismatch")
	}
}

// S2: Aes128Ctr + Pbkdf2, reopen with correct/incorrect password.
func TestReopenWithPasswordAndWrongPassword(t *testing.T) {
	be := memory.New(512)
	c, err := Create(be, CreateOptions{
		Cipher:     cryptocore.Aes128Ctr,
		Kdf:        kdf.Pbkdf2Kind,
		Digest:     kdf.Sha1,
		Iterations: 4096,
		PasswordCb: pwCallback("abc"),
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	wantInfo := c.Info()
	c.Close()

	c2, err := Open(be, OpenOptions{PasswordCb: pwCallback("abc"), NoMigration: true})
	if err != nil {
		t.Fatalf("Open with correct password: %v", err)
	}
	gotInfo := c2.Info()
	if gotInfo.Cipher != wantInfo.Cipher || gotInfo.Kdf.Kind != wantInfo.Kdf.Kind {
		t.Fatalf("Info mismatch after reopen: got %+v, want %+v", gotInfo, wantInfo)
	}
	c2.Close()

	if _, err := Open(be, OpenOptions{PasswordCb: pwCallback("xyz"), NoMigration: true}); err != ErrWrongPassword {
		t.Fatalf("expected ErrWrongPassword, got %v", err)
	}
}

func TestAquireZeroesAndPerBlockKeyIsolation(t *testing.T) {
	be := memory.New(512)
	c, err := Create(be, CreateOptions{
		Cipher:     cryptocore.Aes128Gcm,
		Kdf:        kdf.Pbkdf2Kind,
		Digest:     kdf.Sha1,
		Iterations: 4096,
		PasswordCb: pwCallback("s3cr3t"),
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	a, err := c.Aquire()
	if err != nil {
		t.Fatalf("Aquire: %v", err)
	}
	b, err := c.Aquire()
	if err != nil {
		t.Fatalf("Aquire: %v", err)
	}

	net := c.BlockSizeNet()
	zero := make([]byte, net)
	bufA := make([]byte, net)
	if _, err := c.ReadBlock(a, bufA); err != nil {
		t.Fatalf("ReadBlock: %v", err)
	}
	if !bytes.Equal(bufA, zero) {
		t.Fatal("freshly aquired block must read as all zeros")
	}

	plain := bytes.Repeat([]byte{0x5a}, net)
	if _, err := c.WriteBlock(a, plain); err != nil {
		t.Fatalf("WriteBlock: %v", err)
	}
	if _, err := c.WriteBlock(b, plain); err != nil {
		t.Fatalf("WriteBlock: %v", err)
	}

	ctA := make([]byte, be.BlockSize())
	ctB := make([]byte, be.BlockSize())
	memBE := be
	if _, err := memBE.Read(a, ctA); err != nil {
		t.Fatalf("Read: %v", err)
	}
	if _, err := memBE.Read(b, ctB); err != nil {
		t.Fatalf("Read: %v", err)
	}
	if bytes.Equal(ctA, ctB) {
		t.Fatal("identical plaintext under distinct ids must produce distinct ciphertexts")
	}
}

func TestWriteBlockPadsWithZeros(t *testing.T) {
	be := memory.New(256)
	c, err := Create(be, CreateOptions{Cipher: cryptocore.Aes128Gcm, Kdf: kdf.None, PasswordCb: nil})
	if err == nil {
		t.Fatalf("expected error creating Aes128Gcm with kdf.None (non-zero key len)")
	}

	c, err = Create(be, CreateOptions{Cipher: cryptocore.None, Kdf: kdf.None})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	id, err := c.Aquire()
	if err != nil {
		t.Fatalf("Aquire: %v", err)
	}
	if _, err := c.WriteBlock(id, []byte{1, 2, 3}); err != nil {
		t.Fatalf("WriteBlock: %v", err)
	}
	out := make([]byte, c.BlockSizeNet())
	if _, err := c.ReadBlock(id, out); err != nil {
		t.Fatalf("ReadBlock: %v", err)
	}
	want := append([]byte{1, 2, 3}, make([]byte, len(out)-3)...)
	if !bytes.Equal(out, want) {
		t.Fatalf("expected zero-padded tail, got %x", out)
	}
}

func TestServiceLifecycle(t *testing.T) {
	be := memory.New(512)
	c, err := Create(be, CreateOptions{Cipher: cryptocore.None, Kdf: kdf.None})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	svc, err := c.CreateService()
	if err != nil {
		t.Fatalf("CreateService: %v", err)
	}
	if _, err := c.CreateService(); err != ErrServiceAlreadyAssigned {
		t.Fatalf("expected ErrServiceAlreadyAssigned, got %v", err)
	}

	id, err := c.Aquire()
	if err != nil {
		t.Fatalf("Aquire: %v", err)
	}
	if err := svc.SetTopID(id); err != nil {
		t.Fatalf("SetTopID: %v", err)
	}

	c2, err := Open(be, OpenOptions{NoMigration: true})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	got, ok := c2.TopID()
	if !ok || got != id {
		t.Fatalf("TopID after reopen = %v, %v, want %v", got, ok, id)
	}
}

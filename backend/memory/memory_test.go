package memory

import (
	"bytes"
	"testing"

	"github.com/drobin/nuts/backend"
)

func TestAquireZeroesAndRoundTrips(t *testing.T) {
	b := New(64)

	id, err := b.Aquire(nil)
	if err != nil {
		t.Fatalf("Aquire: %v", err)
	}

	buf := make([]byte, 64)
	n, err := b.Read(id, buf)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if n != 64 || !bytes.Equal(buf, make([]byte, 64)) {
		t.Fatalf("fresh block must read all zeros, got %x (n=%d)", buf, n)
	}

	payload := bytes.Repeat([]byte{0xaa}, 64)
	if n, err := b.Write(id, payload); err != nil || n != 64 {
		t.Fatalf("Write = %d, %v", n, err)
	}

	buf2 := make([]byte, 64)
	if _, err := b.Read(id, buf2); err != nil {
		t.Fatalf("Read: %v", err)
	}
	if !bytes.Equal(buf2, payload) {
		t.Fatalf("read-after-write mismatch: got %x", buf2)
	}
}

func TestWriteRejectsShortBuffer(t *testing.T) {
	b := New(64)
	id, _ := b.Aquire(nil)
	if _, err := b.Write(id, make([]byte, 10)); err != backend.ErrBlockTooSmall {
		t.Fatalf("expected ErrBlockTooSmall, got %v", err)
	}
}

func TestReleaseMakesIDUnusable(t *testing.T) {
	b := New(64)
	id, _ := b.Aquire(nil)
	if err := b.Release(id); err != nil {
		t.Fatalf("Release: %v", err)
	}
	if _, err := b.Read(id, make([]byte, 64)); err != backend.ErrNoSuchBlock {
		t.Fatalf("expected ErrNoSuchBlock after release, got %v", err)
	}
}

func TestHeaderSlotSurvivesIndependently(t *testing.T) {
	b := New(64)
	header := bytes.Repeat([]byte{0x5a}, 40)
	if err := b.HeaderPut(header); err != nil {
		t.Fatalf("HeaderPut: %v", err)
	}
	got, err := b.HeaderGet()
	if err != nil {
		t.Fatalf("HeaderGet: %v", err)
	}
	if !bytes.Equal(got[:len(header)], header) {
		t.Fatalf("header mismatch: got %x", got[:len(header)])
	}
	for _, v := range got[len(header):] {
		if v != 0 {
			t.Fatal("header slot remainder must be zero-padded")
		}
	}
}

func TestDistinctIDsProduceDistinctBlocks(t *testing.T) {
	b := New(64)
	a, _ := b.Aquire([]byte("same"))
	c, _ := b.Aquire([]byte("same"))
	if a == c {
		t.Fatal("Aquire must return distinct ids")
	}
}

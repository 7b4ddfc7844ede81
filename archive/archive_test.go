package archive

import (
	"bytes"
	"testing"

	"github.com/drobin/nuts/backend/memory"
	"github.com/drobin/nuts/container"
	"github.com/drobin/nuts/internal/cryptocore"
	"github.com/drobin/nuts/internal/kdf"
)

func newTestContainer(t *testing.T, blockSize uint32) *container.Container {
	t.Helper()
	be := memory.New(blockSize)
	c, err := container.Create(be, container.CreateOptions{Cipher: cryptocore.None, Kdf: kdf.None})
	if err != nil {
		t.Fatalf("container.Create: %v", err)
	}
	return c
}

var t0 = Timestamp{Seconds: 1700000000}

// S3/property 6: nfiles increases monotonically with every append.
func TestAppendIncreasesNFiles(t *testing.T) {
	c := newTestContainer(t, 512)
	a, err := Create(c, t0)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	for i, name := range []string{"a.txt", "b.txt", "c.txt"} {
		e, payload, err := NewFileBuilder(name, []byte("hello")).At(t0).Entry()
		if err != nil {
			t.Fatalf("Entry: %v", err)
		}
		if _, err := a.Append(e, payload, t0); err != nil {
			t.Fatalf("Append: %v", err)
		}
		if a.NFiles() != uint64(i+1) {
			t.Fatalf("NFiles = %d, want %d", a.NFiles(), i+1)
		}
	}
}

// S4: a file's payload round-trips byte for byte, including across
// multiple payload blocks.
func TestFileRoundTripMultiBlock(t *testing.T) {
	c := newTestContainer(t, 128) // small net size forces several payload blocks
	a, err := Create(c, t0)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	payload := bytes.Repeat([]byte("0123456789abcdef"), 20) // 320 bytes: two full blocks and a half one
	e, pb, err := NewFileBuilder("big.bin", payload).At(t0).Entry()
	if err != nil {
		t.Fatalf("Entry: %v", err)
	}
	if _, err := a.Append(e, pb, t0); err != nil {
		t.Fatalf("Append: %v", err)
	}

	var got []byte
	err = a.Iter(func(ie IterEntry) error {
		var rerr error
		got, rerr = a.ReadFile(ie.Entry)
		return rerr
	})
	if err != nil {
		t.Fatalf("Iter/ReadFile: %v", err)
	}
	if !bytes.Equal(got, payload) {
		t.Fatalf("round-trip mismatch: got %d bytes, want %d bytes", len(got), len(payload))
	}
}

// Scan faithfulness: Iter visits exactly the appended entries, in order,
// with byte-identical EntryInner fields.
func TestIterFaithfulness(t *testing.T) {
	c := newTestContainer(t, 512)
	a, err := Create(c, t0)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	names := []string{"dir", "dir/file.txt", "link"}
	for _, n := range names {
		var e EntryInner
		var payload []byte
		var berr error
		switch n {
		case "dir":
			e, payload, berr = NewDirectoryBuilder(n).At(t0).Entry()
		case "link":
			e, payload, berr = NewSymlinkBuilder(n, "dir/file.txt").At(t0).Entry()
		default:
			e, payload, berr = NewFileBuilder(n, []byte("x")).At(t0).Entry()
		}
		if berr != nil {
			t.Fatalf("Entry: %v", berr)
		}
		if _, err := a.Append(e, payload, t0); err != nil {
			t.Fatalf("Append: %v", err)
		}
	}

	var seen []string
	if err := a.Iter(func(ie IterEntry) error {
		seen = append(seen, ie.Entry.Name)
		return nil
	}); err != nil {
		t.Fatalf("Iter: %v", err)
	}
	if len(seen) != len(names) {
		t.Fatalf("Iter visited %d entries, want %d", len(seen), len(names))
	}
	for i, n := range names {
		if seen[i] != n {
			t.Fatalf("entry[%d] = %q, want %q", i, seen[i], n)
		}
	}
}

// S5: reopening the archive through the container's service protocol
// reproduces the header's file count, and a file shorter than one block
// reads back at exactly its own length.
func TestReopenPreservesState(t *testing.T) {
	be := memory.New(128)
	c, err := container.Create(be, container.CreateOptions{Cipher: cryptocore.None, Kdf: kdf.None})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	a, err := Create(c, t0)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	e, payload, _ := NewFileBuilder("f", []byte("short")).At(t0).Entry()
	if _, err := a.Append(e, payload, t0); err != nil {
		t.Fatalf("Append: %v", err)
	}
	sid := a.svc.ID()
	c.Close()

	c2, err := container.Open(be, container.OpenOptions{NoMigration: true})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	a2, err := Open(c2, sid)
	if err != nil {
		t.Fatalf("archive.Open: %v", err)
	}
	if a2.NFiles() != 1 {
		t.Fatalf("NFiles after reopen = %d, want 1", a2.NFiles())
	}

	var got []byte
	err = a2.Iter(func(ie IterEntry) error {
		var rerr error
		got, rerr = a2.ReadFile(ie.Entry)
		return rerr
	})
	if err != nil {
		t.Fatalf("Iter/ReadFile: %v", err)
	}
	if !bytes.Equal(got, []byte("short")) {
		t.Fatalf("round-trip after reopen mismatch: %q", got)
	}
}

// S6: the tree grows past the header's inline root capacity and keeps
// scanning correctly once a second level is introduced.
func TestTreeGrowsPastInlineCapacity(t *testing.T) {
	c := newTestContainer(t, 256)
	a, err := Create(c, t0)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	const n = 50 // comfortably exceeds the inline root's small capacity at this block size
	for i := 0; i < n; i++ {
		e, payload, _ := NewFileBuilder("f"+string(rune('a'+i%26)), nil).At(t0).Entry()
		if _, err := a.Append(e, payload, t0); err != nil {
			t.Fatalf("Append #%d: %v", i, err)
		}
	}
	if a.root.Height == 0 {
		t.Fatal("expected tree to have grown past height 0")
	}

	count := 0
	if err := a.Iter(func(ie IterEntry) error { count++; return nil }); err != nil {
		t.Fatalf("Iter: %v", err)
	}
	if count != n {
		t.Fatalf("Iter visited %d entries, want %d", count, n)
	}
}

func TestCreateRejectsExistingTopID(t *testing.T) {
	c := newTestContainer(t, 512)
	if _, err := Create(c, t0); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := Create(c, t0); err != container.ErrServiceAlreadyAssigned && err != ErrOverwriteUserdata {
		t.Fatalf("second Create = %v, want ErrServiceAlreadyAssigned or ErrOverwriteUserdata", err)
	}
}

func TestDirectoryHasNoChildrenButSymlinkDoes(t *testing.T) {
	c := newTestContainer(t, 512)
	a, err := Create(c, t0)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	de, _, _ := NewDirectoryBuilder("d").At(t0).Entry()
	dirID, err := a.Append(de, nil, t0)
	if err != nil {
		t.Fatalf("Append(dir): %v", err)
	}
	raw, err := a.p.ReadFull(dirID)
	if err != nil {
		t.Fatalf("ReadFull: %v", err)
	}
	gotDir, err := decodeEntry(raw)
	if err != nil {
		t.Fatalf("decodeEntry: %v", err)
	}
	if !gotDir.Children.IsNull() {
		t.Fatalf("directory entry must carry a null Children id")
	}
	if !gotDir.Mode.IsDir() {
		t.Fatalf("expected directory mode, got %s", gotDir.Mode)
	}

	se, payload, berr := NewSymlinkBuilder("link", "dir/file.txt").At(t0).Entry()
	if berr != nil {
		t.Fatalf("Entry: %v", berr)
	}
	linkID, err := a.Append(se, payload, t0)
	if err != nil {
		t.Fatalf("Append(symlink): %v", err)
	}
	raw, err = a.p.ReadFull(linkID)
	if err != nil {
		t.Fatalf("ReadFull: %v", err)
	}
	gotLink, err := decodeEntry(raw)
	if err != nil {
		t.Fatalf("decodeEntry: %v", err)
	}
	if gotLink.Children.IsNull() {
		t.Fatalf("symlink entry must carry its target as payload, got a null Children id")
	}
	if gotLink.Size != uint64(len("dir/file.txt")) {
		t.Fatalf("symlink Size = %d, want %d", gotLink.Size, len("dir/file.txt"))
	}

	target, err := a.ReadFile(gotLink)
	if err != nil {
		t.Fatalf("ReadFile(symlink): %v", err)
	}
	if string(target) != "dir/file.txt" {
		t.Fatalf("symlink target round-trip = %q, want %q", target, "dir/file.txt")
	}
}

// Package memory implements the in-memory reference backend used by the
// container and archive test suites: a bare map-backed fake for cases
// where a real storage medium isn't the point of the test.
package memory

import (
	"github.com/drobin/nuts/backend"
)

// Backend is a map-backed backend.Backend. It has no persistence and no
// concurrency safety, matching the single-threaded, cooperative resource
// model spec §5 mandates for the whole stack.
type Backend struct {
	blockSize uint32
	blocks    map[backend.ID][]byte
	header    []byte
	settings  backend.Settings
}

// New returns a Backend whose blocks are blockSize bytes gross (this is
// the on-disk, pre-decryption size the container's cipher pipeline
// subtracts its tag overhead from).
func New(blockSize uint32) *Backend {
	headerSize := blockSize
	if headerSize < backend.HeaderMaxSize {
		headerSize = backend.HeaderMaxSize
	}
	return &Backend{
		blockSize: blockSize,
		blocks:    make(map[backend.ID][]byte),
		header:    make([]byte, headerSize),
	}
}

func (b *Backend) BlockSize() uint32 {
	return b.blockSize
}

func (b *Backend) Aquire(initial []byte) (backend.ID, error) {
	if len(initial) > int(b.blockSize) {
		return backend.ID{}, &backend.BackendError{Op: "aquire", Err: backend.ErrBlockTooSmall}
	}
	buf := make([]byte, b.blockSize)
	copy(buf, initial)

	for attempts := 0; attempts < 8; attempts++ {
		id := backend.NewID()
		if id.IsNull() {
			continue
		}
		if _, exists := b.blocks[id]; exists {
			continue
		}
		b.blocks[id] = buf
		return id, nil
	}
	return backend.ID{}, backend.ErrUniqueID
}

func (b *Backend) Release(id backend.ID) error {
	if _, ok := b.blocks[id]; !ok {
		return backend.ErrNoSuchBlock
	}
	delete(b.blocks, id)
	return nil
}

func (b *Backend) Read(id backend.ID, buf []byte) (int, error) {
	block, ok := b.blocks[id]
	if !ok {
		return 0, backend.ErrNoSuchBlock
	}
	n := len(buf)
	if n > len(block) {
		n = len(block)
	}
	copy(buf[:n], block[:n])
	return n, nil
}

func (b *Backend) Write(id backend.ID, buf []byte) (int, error) {
	if _, ok := b.blocks[id]; !ok {
		return 0, backend.ErrNoSuchBlock
	}
	if len(buf) < int(b.blockSize) {
		return 0, backend.ErrBlockTooSmall
	}
	stored := make([]byte, b.blockSize)
	copy(stored, buf[:b.blockSize])
	b.blocks[id] = stored
	return int(b.blockSize), nil
}

func (b *Backend) HeaderGet() ([]byte, error) {
	out := make([]byte, backend.HeaderMaxSize)
	copy(out, b.header[:backend.HeaderMaxSize])
	return out, nil
}

func (b *Backend) HeaderPut(header []byte) error {
	if len(header) > backend.HeaderMaxSize {
		return backend.ErrBlockTooSmall
	}
	for i := range b.header {
		b.header[i] = 0
	}
	copy(b.header, header)
	return nil
}

func (b *Backend) Settings() (backend.Settings, error) {
	return b.settings, nil
}

func (b *Backend) Open(settings backend.Settings) error {
	b.settings = settings
	return nil
}

func (b *Backend) Delete() error {
	b.blocks = make(map[backend.ID][]byte)
	for i := range b.header {
		b.header[i] = 0
	}
	return nil
}

func (b *Backend) Info() backend.Info {
	return backend.Info{BlockSize: b.blockSize, Name: "memory"}
}

// Len returns the number of live blocks, excluding the header slot. It's
// a test-only convenience, not part of backend.Backend.
func (b *Backend) Len() int {
	return len(b.blocks)
}

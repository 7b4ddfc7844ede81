// Package directory implements the reference disk backend: one file per
// block, sharded by the hex id into a two-level directory fan-out
// (aa/bb/ccccccc...), with crash-safe replacement of the header slot and
// every block write via github.com/natefinch/atomic.
package directory

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/natefinch/atomic"

	"github.com/drobin/nuts/backend"
)

const headerFileName = "header"

// Backend is a backend.Backend backed by one regular file per
// block underneath root, plus a dedicated header file.
type Backend struct {
	root      string
	blockSize uint32
	settings  backend.Settings
}

// New creates (if necessary) root and returns a Backend whose blocks are
// blockSize bytes gross.
func New(root string, blockSize uint32) (*Backend, error) {
	if err := os.MkdirAll(root, 0o700); err != nil {
		return nil, &backend.BackendError{Op: "mkdir", Err: err}
	}
	return &Backend{root: root, blockSize: blockSize}, nil
}

// Open re-opens an existing directory backend. It is the same as New:
// blockSize is taken as given and is not read back from the blocks
// already on disk.
func Open(root string, blockSize uint32) (*Backend, error) {
	return New(root, blockSize)
}

func (b *Backend) BlockSize() uint32 {
	return b.blockSize
}

// path derives the sharded on-disk path for id: root/aa/bb/cccc...
func (b *Backend) path(id backend.ID) string {
	hex := id.String()
	return filepath.Join(b.root, hex[0:2], hex[2:4], hex[4:])
}

func (b *Backend) headerPath() string {
	return filepath.Join(b.root, headerFileName)
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
		p := b.path(id)
		if _, err := os.Stat(p); err == nil {
			continue // collision, retry
		}
		if err := os.MkdirAll(filepath.Dir(p), 0o700); err != nil {
			return backend.ID{}, &backend.BackendError{Op: "aquire", Err: err}
		}
		if err := atomic.WriteFile(p, bytes.NewReader(buf)); err != nil {
			return backend.ID{}, &backend.BackendError{Op: "aquire", Err: err}
		}
		return id, nil
	}
	return backend.ID{}, backend.ErrUniqueID
}

func (b *Backend) Release(id backend.ID) error {
	p := b.path(id)
	if err := os.Remove(p); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return backend.ErrNoSuchBlock
		}
		return &backend.BackendError{Op: "release", Err: err}
	}
	return nil
}

func (b *Backend) Read(id backend.ID, buf []byte) (int, error) {
	f, err := os.Open(b.path(id))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return 0, backend.ErrNoSuchBlock
		}
		return 0, &backend.BackendError{Op: "read", Err: err}
	}
	defer f.Close()

	n, err := io.ReadFull(f, buf)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return n, &backend.BackendError{Op: "read", Err: err}
	}
	return n, nil
}

func (b *Backend) Write(id backend.ID, buf []byte) (int, error) {
	if len(buf) < int(b.blockSize) {
		return 0, backend.ErrBlockTooSmall
	}
	p := b.path(id)
	if _, err := os.Stat(p); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return 0, backend.ErrNoSuchBlock
		}
		return 0, &backend.BackendError{Op: "write", Err: err}
	}
	if err := atomic.WriteFile(p, bytes.NewReader(buf[:b.blockSize])); err != nil {
		return 0, &backend.BackendError{Op: "write", Err: err}
	}
	return int(b.blockSize), nil
}

func (b *Backend) HeaderGet() ([]byte, error) {
	out := make([]byte, backend.HeaderMaxSize)
	f, err := os.Open(b.headerPath())
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return out, nil
		}
		return nil, &backend.BackendError{Op: "header-get", Err: err}
	}
	defer f.Close()

	if _, err := io.ReadFull(f, out); err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return nil, &backend.BackendError{Op: "header-get", Err: err}
	}
	return out, nil
}

func (b *Backend) HeaderPut(header []byte) error {
	if len(header) > backend.HeaderMaxSize {
		return backend.ErrBlockTooSmall
	}
	buf := make([]byte, b.blockSize)
	if b.blockSize < backend.HeaderMaxSize {
		buf = make([]byte, backend.HeaderMaxSize)
	}
	copy(buf, header)
	if err := atomic.WriteFile(b.headerPath(), bytes.NewReader(buf)); err != nil {
		return &backend.BackendError{Op: "header-put", Err: err}
	}
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
	if err := os.RemoveAll(b.root); err != nil {
		return &backend.BackendError{Op: "delete", Err: err}
	}
	return nil
}

func (b *Backend) Info() backend.Info {
	return backend.Info{BlockSize: b.blockSize, Name: fmt.Sprintf("directory(%s)", b.root)}
}

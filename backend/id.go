// Package backend defines the block-addressed storage contract containers
// are built on, plus the errors and small value types every concrete
// backend (backend/memory, backend/directory, ...) shares.
package backend

import (
	"encoding/hex"
	"fmt"

	"github.com/google/uuid"
)

// IDSize is the fixed byte width of a block id. It doubles as the archive
// tree's per-entry id size when computing node fan-out.
const IDSize = 16

// ID is an opaque, fixed-width, comparable block identifier. The
// reference backend generates ids as random UUIDs; other backends are
// free to pick any 16-byte scheme, since the container and archive only
// ever compare, serialize and round-trip ids, never interpret them.
type ID [IDSize]byte

// NullID is the distinguished "no block" value, all-ones by convention of
// the reference backend.
var NullID = func() ID {
	var id ID
	for i := range id {
		id[i] = 0xff
	}
	return id
}()

// NewID generates a fresh random id. Backends that need monotonic or
// content-addressed ids are free to construct ID values directly instead.
func NewID() ID {
	return ID(uuid.New())
}

// IsNull reports whether id is the distinguished null value.
func (id ID) IsNull() bool {
	return id == NullID
}

// Bytes returns id's raw byte representation.
func (id ID) Bytes() []byte {
	b := make([]byte, IDSize)
	copy(b, id[:])
	return b
}

// String renders id in its canonical hex text form.
func (id ID) String() string {
	return hex.EncodeToString(id[:])
}

// IDFromBytes reconstructs an ID from its raw byte representation.
func IDFromBytes(b []byte) (ID, error) {
	var id ID
	if len(b) != IDSize {
		return id, fmt.Errorf("backend: invalid id length %d, want %d", len(b), IDSize)
	}
	copy(id[:], b)
	return id, nil
}

// ParseID parses id's canonical hex text form, as produced by String.
func ParseID(text string) (ID, error) {
	var id ID
	b, err := hex.DecodeString(text)
	if err != nil {
		return id, &InvalidIDError{Text: text}
	}
	if len(b) != IDSize {
		return id, &InvalidIDError{Text: text}
	}
	copy(id[:], b)
	return id, nil
}

// InvalidIDError is returned when text isn't a valid canonical id.
type InvalidIDError struct {
	Text string
}

func (e *InvalidIDError) Error() string {
	return fmt.Sprintf("backend: invalid id %q", e.Text)
}

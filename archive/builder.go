package archive

import (
	"path"
	"strings"
)

// Builder incrementally assembles an EntryInner, validating as it goes
// rather than deferring every check to Append. Its three constructors
// (NewFileBuilder, NewDirectoryBuilder, NewSymlinkBuilder) pin the entry
// type up front; the chained setters (Perm/At) are shared across all
// three, mirroring the small validate-as-you-build constructors the
// rest of this codebase uses for KDF/cipher parameters.
type Builder struct {
	name    string
	typ     EntryType
	perm    uint32
	payload []byte
	created Timestamp
	err     error
}

func newBuilder(t EntryType, name string) *Builder {
	b := &Builder{typ: t, perm: 0o644, created: Timestamp{}}
	clean, err := CleanPath(name)
	if err != nil {
		b.err = err
		return b
	}
	b.name = clean
	return b
}

// NewFileBuilder starts building a regular-file entry with payload as
// its content.
func NewFileBuilder(name string, payload []byte) *Builder {
	b := newBuilder(TypeFile, name)
	b.payload = payload
	b.perm = 0o644
	return b
}

// NewDirectoryBuilder starts building a directory entry.
func NewDirectoryBuilder(name string) *Builder {
	b := newBuilder(TypeDirectory, name)
	b.perm = 0o755
	return b
}

// NewSymlinkBuilder starts building a symlink entry pointing at target.
// target is stored as the entry's payload (its UTF-8 bytes), read back
// through the same payload tree and Size accounting as a regular file.
func NewSymlinkBuilder(name, target string) *Builder {
	b := newBuilder(TypeSymlink, name)
	b.payload = []byte(target)
	b.perm = 0o777
	return b
}

// Perm overrides the Unix permission triple (masked to 0o777).
func (b *Builder) Perm(perm uint32) *Builder {
	b.perm = perm & permBits
	return b
}

// At overrides all four lifecycle timestamps with the same instant,
// matching how a freshly-created entry's accessed/created/changed/
// modified times all start out equal.
func (b *Builder) At(ts Timestamp) *Builder {
	b.created = ts
	return b
}

// Entry finalizes the builder, returning the assembled EntryInner and
// its payload (nil for directories). Append stamps Accessed with the
// actual append instant and fills in Size/Children from the payload it
// writes, so the Created/Changed/Modified set here is what survives.
func (b *Builder) Entry() (EntryInner, []byte, error) {
	if b.err != nil {
		return EntryInner{}, nil, &BuilderError{Err: b.err}
	}
	e := EntryInner{
		Name:     b.name,
		Mode:     NewMode(b.typ, b.perm),
		Accessed: b.created,
		Created:  b.created,
		Changed:  b.created,
		Modified: b.created,
	}
	return e, b.payload, nil
}

// CleanPath validates and normalizes a slash-separated entry name: no
// leading slash, no empty segments, no "." or ".." components. It's used
// by every Builder constructor and is exported for callers building
// entry names (e.g. a directory walker) outside the Builder API.
func CleanPath(name string) (string, error) {
	if name == "" {
		return "", &InvalidNameError{Name: name}
	}
	cleaned := path.Clean(strings.TrimLeft(name, "/"))
	if cleaned == "." || cleaned == ".." || strings.HasPrefix(cleaned, "../") {
		return "", &InvalidNameError{Name: name}
	}
	return cleaned, nil
}

package archive

import (
	"github.com/drobin/nuts/backend"
	"github.com/drobin/nuts/internal/binary"
)

// EntryInner is the record stored in one entry-record block: a name, a
// packed type+permission Mode, the four lifecycle timestamps, the entry's
// logical size in bytes, and the id of its payload tree (Children). The
// payload blocks themselves are addressed through that tree (see tree.go
// and archive.go).
type EntryInner struct {
	Name     string
	Mode     Mode
	Accessed Timestamp
	Created  Timestamp
	Changed  Timestamp
	Modified Timestamp
	Size     uint64

	// Children is the id of this entry's own indirect-block tree: the
	// payload-block chain for TypeFile and TypeSymlink (whose payload is
	// its target path encoded as UTF-8). NullID for an empty file/symlink
	// and always for TypeDirectory, which has no payload tree.
	Children backend.ID
}

func encodeEntry(buf []byte, e EntryInner) ([]byte, error) {
	w := binary.NewWriter(buf)
	if err := w.WriteString(e.Name); err != nil {
		return nil, err
	}
	if err := w.WriteUint16(uint16(e.Mode)); err != nil {
		return nil, err
	}
	for _, ts := range []Timestamp{e.Accessed, e.Created, e.Changed, e.Modified} {
		if err := encodeTimestamp(w, ts); err != nil {
			return nil, err
		}
	}
	if err := w.WriteUint64(e.Size); err != nil {
		return nil, err
	}
	if err := w.Put(e.Children.Bytes()); err != nil {
		return nil, err
	}
	return w.Bytes(), nil
}

func decodeEntry(data []byte) (EntryInner, error) {
	var e EntryInner
	r := binary.NewReader(data)

	name, err := r.ReadString()
	if err != nil {
		return e, err
	}
	e.Name = name

	modeV, err := r.ReadUint16()
	if err != nil {
		return e, err
	}
	e.Mode = Mode(modeV)

	tss := make([]*Timestamp, 0, 4)
	tss = append(tss, &e.Accessed, &e.Created, &e.Changed, &e.Modified)
	for _, dst := range tss {
		ts, err := decodeTimestamp(r)
		if err != nil {
			return e, err
		}
		*dst = ts
	}

	size, err := r.ReadUint64()
	if err != nil {
		return e, err
	}
	e.Size = size

	idBytes, err := r.Take(backend.IDSize)
	if err != nil {
		return e, err
	}
	id, err := backend.IDFromBytes(idBytes)
	if err != nil {
		return e, err
	}
	e.Children = id

	return e, nil
}

package archive

import (
	"bytes"

	"github.com/drobin/nuts/backend"
	"github.com/drobin/nuts/internal/binary"
)

// lastReadableRevision names the newest release that could still read
// the archive revision this build refuses (see UnsupportedRevisionError).
const lastReadableRevision = "0.4.3"

// currentRevision is the only archive-header revision this build writes
// or accepts.
const currentRevision uint16 = 2

var userdataMagic = [12]byte{'n', 'u', 't', 's', '-', 'u', 's', 'e', 'r', 'd', 'a', 't'}
var headerMagic = [12]byte{'n', 'u', 't', 's', '-', 'a', 'r', 'c', 'h', 'i', 'v', 'e'}

// userdata is the small, fixed record stored at the container's top id:
// a magic literal and the id of the archive's own header block. Keeping
// this indirection (instead of pointing the container's top id directly
// at the header block) lets a future on-disk format change the header's
// own layout without touching the container's top-id contract.
type userdata struct {
	HeaderID backend.ID
}

func encodeUserdata(buf []byte, u userdata) ([]byte, error) {
	w := binary.NewWriter(buf)
	if err := w.Put(userdataMagic[:]); err != nil {
		return nil, err
	}
	if err := w.Put(u.HeaderID.Bytes()); err != nil {
		return nil, err
	}
	return w.Bytes(), nil
}

func decodeUserdata(data []byte) (userdata, error) {
	r := binary.NewReader(data)
	m, err := r.Take(12)
	if err != nil {
		return userdata{}, err
	}
	if !bytes.Equal(m, userdataMagic[:]) {
		return userdata{}, &InvalidUserdataError{}
	}
	idb, err := r.Take(backend.IDSize)
	if err != nil {
		return userdata{}, &InvalidUserdataError{Inner: err}
	}
	id, err := backend.IDFromBytes(idb)
	if err != nil {
		return userdata{}, &InvalidUserdataError{Inner: err}
	}
	return userdata{HeaderID: id}, nil
}

// archiveHeader is the fixed-field prefix of the archive's header block;
// the remainder of that same block holds the embedded tree root (see
// tree.go).
type archiveHeader struct {
	Revision uint16
	Created  Timestamp
	Modified Timestamp
	NFiles   uint64
}

// headerFixedSize is the byte length of archiveHeader's own fields (magic
// + revision + two timestamps + nfiles), used to compute how much of the
// block is left over for the embedded tree root.
const headerFixedSize = 12 + 2 + (8+4)*2 + 8

func encodeArchiveHeaderAndRoot(buf []byte, h archiveHeader, root treeRoot) ([]byte, error) {
	w := binary.NewWriter(buf)
	if err := w.Put(headerMagic[:]); err != nil {
		return nil, err
	}
	if err := w.WriteUint16(h.Revision); err != nil {
		return nil, err
	}
	if err := encodeTimestamp(w, h.Created); err != nil {
		return nil, err
	}
	if err := encodeTimestamp(w, h.Modified); err != nil {
		return nil, err
	}
	if err := w.WriteUint64(h.NFiles); err != nil {
		return nil, err
	}
	if err := encodeTreeRoot(w, root); err != nil {
		return nil, err
	}
	return w.Bytes(), nil
}

func decodeArchiveHeaderAndRoot(data []byte) (archiveHeader, treeRoot, error) {
	r := binary.NewReader(data)
	m, err := r.Take(12)
	if err != nil {
		return archiveHeader{}, treeRoot{}, err
	}
	if !bytes.Equal(m, headerMagic[:]) {
		return archiveHeader{}, treeRoot{}, ErrInvalidHeader
	}
	rev, err := r.ReadUint16()
	if err != nil {
		return archiveHeader{}, treeRoot{}, err
	}
	if rev != currentRevision {
		return archiveHeader{}, treeRoot{}, &UnsupportedRevisionError{Revision: rev, LastSupporting: lastReadableRevision}
	}
	created, err := decodeTimestamp(r)
	if err != nil {
		return archiveHeader{}, treeRoot{}, err
	}
	modified, err := decodeTimestamp(r)
	if err != nil {
		return archiveHeader{}, treeRoot{}, err
	}
	nfiles, err := r.ReadUint64()
	if err != nil {
		return archiveHeader{}, treeRoot{}, err
	}
	root, err := decodeTreeRoot(r)
	if err != nil {
		return archiveHeader{}, treeRoot{}, err
	}
	h := archiveHeader{Revision: rev, Created: created, Modified: modified, NFiles: nfiles}
	return h, root, nil
}

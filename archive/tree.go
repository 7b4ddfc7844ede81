package archive

import (
	"github.com/drobin/nuts/backend"
	"github.com/drobin/nuts/internal/binary"
)

// leafNode is a dedicated, standalone indirect block: a flat list of
// child ids. Its fan-out is bounded by how many 16-byte ids fit in one
// block's net payload alongside the 4-byte count prefix.
type leafNode struct {
	Ids []backend.ID
}

func leafArity(blockSizeNet int) int {
	n := (blockSizeNet - 4) / backend.IDSize
	if n < 0 {
		return 0
	}
	return n
}

func encodeLeafNode(buf []byte, n leafNode) ([]byte, error) {
	w := binary.NewWriter(buf)
	if err := w.WriteUint32(uint32(len(n.Ids))); err != nil {
		return nil, err
	}
	for _, id := range n.Ids {
		if err := w.Put(id.Bytes()); err != nil {
			return nil, err
		}
	}
	return w.Bytes(), nil
}

func decodeLeafNode(data []byte) (leafNode, error) {
	r := binary.NewReader(data)
	count, err := r.ReadUint32()
	if err != nil {
		return leafNode{}, err
	}
	ids := make([]backend.ID, 0, count)
	for i := uint32(0); i < count; i++ {
		b, err := r.Take(backend.IDSize)
		if err != nil {
			return leafNode{}, err
		}
		id, err := backend.IDFromBytes(b)
		if err != nil {
			return leafNode{}, err
		}
		ids = append(ids, id)
	}
	return leafNode{Ids: ids}, nil
}

// treeRoot is embedded inline in the archive header block, immediately
// after its fixed fields (see header.go): spec §4.5 describes the tree's
// root id as "derivable from the archive header", which this
// implementation realizes by storing the root node's own content
// directly alongside the header rather than through a separate pointer.
//
// Height 0: Ids are leaf entry-record ids directly, up to the root's own
// (smaller) inline capacity. Height 1: Ids addresses a sequence of
// leafNode blocks, the last of which still has spare capacity for
// appends; this implementation caps out at height 1 (see ErrTreeFull),
// matching the two-level description in spec §4.5.
type treeRoot struct {
	Height uint32
	Ids    []backend.ID
}

func rootArity(inlineCapacity int) int {
	n := (inlineCapacity - 8) / backend.IDSize
	if n < 0 {
		return 0
	}
	return n
}

func encodeTreeRoot(w *binary.Writer, t treeRoot) error {
	if err := w.WriteUint32(t.Height); err != nil {
		return err
	}
	if err := w.WriteUint32(uint32(len(t.Ids))); err != nil {
		return err
	}
	for _, id := range t.Ids {
		if err := w.Put(id.Bytes()); err != nil {
			return err
		}
	}
	return nil
}

func decodeTreeRoot(r *binary.Reader) (treeRoot, error) {
	height, err := r.ReadUint32()
	if err != nil {
		return treeRoot{}, err
	}
	count, err := r.ReadUint32()
	if err != nil {
		return treeRoot{}, err
	}
	ids := make([]backend.ID, 0, count)
	for i := uint32(0); i < count; i++ {
		b, err := r.Take(backend.IDSize)
		if err != nil {
			return treeRoot{}, err
		}
		id, err := backend.IDFromBytes(b)
		if err != nil {
			return treeRoot{}, err
		}
		ids = append(ids, id)
	}
	return treeRoot{Height: height, Ids: ids}, nil
}

// appendID grows the tree by one entry id, reading/writing leafNode
// blocks through rw as needed. innerArity bounds the root's own inline
// id list; outerArity bounds a dedicated leafNode block.
func appendID(root *treeRoot, rw blockReadWriter, innerArity, outerArity int, id backend.ID) error {
	if root.Height == 0 {
		if len(root.Ids) < innerArity {
			root.Ids = append(root.Ids, id)
			return nil
		}
		// Promote: move the current inline ids into a dedicated leaf
		// block and switch to height 1.
		leafID, err := rw.NewBlock()
		if err != nil {
			return err
		}
		if err := writeLeafNode(rw, leafID, leafNode{Ids: root.Ids}); err != nil {
			return err
		}
		root.Height = 1
		root.Ids = []backend.ID{leafID}
	}

	if root.Height != 1 {
		return ErrTreeFull
	}

	lastLeafID := root.Ids[len(root.Ids)-1]
	leaf, err := readLeafNode(rw, lastLeafID)
	if err != nil {
		return err
	}
	if len(leaf.Ids) < outerArity {
		leaf.Ids = append(leaf.Ids, id)
		return writeLeafNode(rw, lastLeafID, leaf)
	}

	if len(root.Ids) >= innerArity {
		return ErrTreeFull
	}
	newLeafID, err := rw.NewBlock()
	if err != nil {
		return err
	}
	if err := writeLeafNode(rw, newLeafID, leafNode{Ids: []backend.ID{id}}); err != nil {
		return err
	}
	root.Ids = append(root.Ids, newLeafID)
	return nil
}

// walk calls visit for every leaf entry id addressed by root, in append
// order.
func walk(root treeRoot, rw blockReadWriter, visit func(backend.ID) error) error {
	if root.Height == 0 {
		for _, id := range root.Ids {
			if err := visit(id); err != nil {
				return err
			}
		}
		return nil
	}
	for _, leafID := range root.Ids {
		leaf, err := readLeafNode(rw, leafID)
		if err != nil {
			return err
		}
		for _, id := range leaf.Ids {
			if err := visit(id); err != nil {
				return err
			}
		}
	}
	return nil
}

// blockReadWriter is the minimal block-storage surface the tree needs:
// allocate a fresh block and read/write its plaintext payload. It's
// satisfied by *container.Container (via pager.go's thin adapter).
type blockReadWriter interface {
	NewBlock() (backend.ID, error)
	ReadFull(id backend.ID) ([]byte, error)
	WriteFull(id backend.ID, data []byte) error
}

func writeLeafNode(rw blockReadWriter, id backend.ID, n leafNode) error {
	data, err := encodeLeafNode(make([]byte, netCapacityOf(rw)), n)
	if err != nil {
		return err
	}
	return rw.WriteFull(id, data)
}

func readLeafNode(rw blockReadWriter, id backend.ID) (leafNode, error) {
	data, err := rw.ReadFull(id)
	if err != nil {
		return leafNode{}, err
	}
	return decodeLeafNode(data)
}

// netCapacityOf lets writeLeafNode size its scratch buffer without
// widening blockReadWriter's interface for every caller; pager.go's
// implementation satisfies this too.
func netCapacityOf(rw blockReadWriter) int {
	if p, ok := rw.(interface{ NetSize() int }); ok {
		return p.NetSize()
	}
	return 4096
}

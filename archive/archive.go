package archive

import (
	"fmt"

	"github.com/drobin/nuts/backend"
	"github.com/drobin/nuts/container"
	"github.com/drobin/nuts/internal/binary"
	"github.com/drobin/nuts/internal/tlog"
	"github.com/drobin/nuts/internal/writecoalescing"
)

// Archive is an open, append-only file archive layered on one
// container.Container's service protocol. Like Container, it's
// single-threaded and holds no internal synchronization.
type Archive struct {
	c    *container.Container
	svc  *container.Service
	p    *pager
	hdr  archiveHeader
	root treeRoot

	headerID backend.ID

	innerArity int // root's own inline capacity
	outerArity int // a dedicated leafNode block's capacity
}

// Create bootstraps a fresh, empty archive on c, claiming its service
// protocol and top id. Fails with ErrOverwriteUserdata if the container
// already has a top id assigned.
func Create(c *container.Container, now Timestamp) (*Archive, error) {
	if _, ok := c.TopID(); ok {
		return nil, ErrOverwriteUserdata
	}

	svc, err := c.CreateService()
	if err != nil {
		return nil, err
	}

	p := newPager(c)

	headerID, err := p.NewBlock()
	if err != nil {
		return nil, err
	}

	hdr := archiveHeader{Revision: currentRevision, Created: now, Modified: now, NFiles: 0}
	root := treeRoot{}

	a := &Archive{
		c: c, svc: svc, p: p, hdr: hdr, root: root, headerID: headerID,
		innerArity: rootArity(p.NetSize() - headerFixedSize),
		outerArity: leafArity(p.NetSize()),
	}
	if err := a.writeHeader(); err != nil {
		return nil, err
	}

	udID, err := p.NewBlock()
	if err != nil {
		return nil, err
	}
	udBytes, err := encodeUserdata(make([]byte, p.NetSize()), userdata{HeaderID: headerID})
	if err != nil {
		return nil, err
	}
	if err := p.WriteFull(udID, udBytes); err != nil {
		return nil, err
	}
	if err := svc.SetTopID(udID); err != nil {
		return nil, err
	}

	tlog.Info.Printf("archive: created (service=%d)", svc.ID())
	return a, nil
}

// Open reopens an existing archive, verifying it was created by the
// service protocol identified by expectedSID.
func Open(c *container.Container, expectedSID uint64) (*Archive, error) {
	svc, err := c.OpenService(expectedSID)
	if err != nil {
		return nil, err
	}
	topID, ok := c.TopID()
	if !ok {
		return nil, ErrNoTopID
	}

	p := newPager(c)

	udBytes, err := p.ReadFull(topID)
	if err != nil {
		return nil, err
	}
	ud, err := decodeUserdata(udBytes)
	if err != nil {
		return nil, err
	}

	hdrBytes, err := p.ReadFull(ud.HeaderID)
	if err != nil {
		return nil, err
	}
	hdr, root, err := decodeArchiveHeaderAndRoot(hdrBytes)
	if err != nil {
		return nil, err
	}

	a := &Archive{
		c: c, svc: svc, p: p, hdr: hdr, root: root, headerID: ud.HeaderID,
		innerArity: rootArity(p.NetSize() - headerFixedSize),
		outerArity: leafArity(p.NetSize()),
	}
	tlog.Info.Printf("archive: opened (service=%d nfiles=%d)", svc.ID(), hdr.NFiles)
	return a, nil
}

func (a *Archive) writeHeader() error {
	data, err := encodeArchiveHeaderAndRoot(make([]byte, a.p.NetSize()), a.hdr, a.root)
	if err != nil {
		return err
	}
	return a.p.WriteFull(a.headerID, data)
}

// NFiles returns the number of entries appended so far.
func (a *Archive) NFiles() uint64 { return a.hdr.NFiles }

// Created returns the archive's creation timestamp.
func (a *Archive) Created() Timestamp { return a.hdr.Created }

// Modified returns the timestamp of the most recent append.
func (a *Archive) Modified() Timestamp { return a.hdr.Modified }

// Container exposes the underlying container, e.g. for Close.
func (a *Archive) Container() *container.Container { return a.c }

// Append writes one entry (file, directory or symlink) and its payload
// (a file's content, a symlink's target bytes; ignored for directories)
// to the archive, returning the entry record's block id. Accessed is
// stamped with now, NFiles is incremented and Modified is updated to
// now; the archive header is rewritten in place.
func (a *Archive) Append(entry EntryInner, payload []byte, now Timestamp) (backend.ID, error) {
	entry.Accessed = now

	switch entry.Mode.Type() {
	case TypeFile, TypeSymlink:
		childrenID, err := a.writePayload(payload)
		if err != nil {
			return backend.ID{}, err
		}
		entry.Children = childrenID
		entry.Size = uint64(len(payload))
	case TypeDirectory:
		entry.Children = backend.NullID
	default:
		return backend.ID{}, fmt.Errorf("archive: unknown entry type %d", entry.Mode.Type())
	}

	entryBytes, err := encodeEntry(make([]byte, a.p.NetSize()), entry)
	if err != nil {
		return backend.ID{}, err
	}
	entryID, err := a.p.NewBlock()
	if err != nil {
		return backend.ID{}, err
	}
	if err := a.p.WriteFull(entryID, entryBytes); err != nil {
		return backend.ID{}, err
	}

	if err := appendID(&a.root, a.p, a.innerArity, a.outerArity, entryID); err != nil {
		return backend.ID{}, err
	}

	a.hdr.NFiles++
	a.hdr.Modified = now
	if err := a.writeHeader(); err != nil {
		return backend.ID{}, err
	}

	tlog.Debug.Printf("archive: appended %q (%s, %d bytes)", entry.Name, entry.Mode.Type(), entry.Size)
	return entryID, nil
}

// writePayload chunks payload into NetSize()-sized blocks, threading them
// through a dedicated payload tree, and returns that tree's root block
// id (backend.NullID for an empty file).
func (a *Archive) writePayload(payload []byte) (backend.ID, error) {
	if len(payload) == 0 {
		return backend.NullID, nil
	}

	net := a.p.NetSize()
	payloadInner := rootArity(net)
	payloadOuter := leafArity(net)

	var root treeRoot
	coalescer := writecoalescing.NewBuffer(net, func(chunk []byte) error {
		blkID, err := a.p.NewBlock()
		if err != nil {
			return err
		}
		if err := a.p.WriteFull(blkID, chunk); err != nil {
			return err
		}
		return appendID(&root, a.p, payloadInner, payloadOuter, blkID)
	})
	if _, err := coalescer.Write(payload); err != nil {
		return backend.ID{}, err
	}
	if _, err := coalescer.Close(); err != nil {
		return backend.ID{}, err
	}

	rootID, err := a.p.NewBlock()
	if err != nil {
		return backend.ID{}, err
	}
	rootBytes := make([]byte, net)
	w := binary.NewWriter(rootBytes)
	if err := encodeTreeRoot(w, root); err != nil {
		return backend.ID{}, err
	}
	if err := a.p.WriteFull(rootID, w.Bytes()); err != nil {
		return backend.ID{}, err
	}
	return rootID, nil
}

// ReadFile reads entry's full payload back from its payload tree. Valid
// for TypeFile (file content) and TypeSymlink (the UTF-8 target path);
// TypeDirectory has no payload of its own.
func (a *Archive) ReadFile(entry EntryInner) ([]byte, error) {
	if entry.Mode.IsDir() {
		return nil, fmt.Errorf("archive: %q is a directory", entry.Name)
	}
	if entry.Size == 0 || entry.Children.IsNull() {
		return nil, nil
	}

	rootBytes, err := a.p.ReadFull(entry.Children)
	if err != nil {
		return nil, err
	}
	root, err := decodeTreeRoot(binary.NewReader(rootBytes))
	if err != nil {
		return nil, err
	}

	out := make([]byte, 0, entry.Size)
	err = walk(root, a.p, func(id backend.ID) error {
		if uint64(len(out)) >= entry.Size {
			return nil
		}
		chunk, err := a.p.ReadFull(id)
		if err != nil {
			return err
		}
		remaining := int(entry.Size) - len(out)
		if remaining < len(chunk) {
			chunk = chunk[:remaining]
		}
		out = append(out, chunk...)
		return nil
	})
	return out, err
}

// IterEntry pairs a decoded entry with its own entry-record block id.
type IterEntry struct {
	ID    backend.ID
	Entry EntryInner
}

// Iter calls visit once per archived entry, in append order, stopping
// (and returning) on the first error visit or a tree read returns.
//
// The entry-record block one step ahead of the one being visited is
// always already read by the time visit runs, so a slow visit callback
// (writing to a file, say) never stalls the next block.Read.
func (a *Archive) Iter(visit func(IterEntry) error) error {
	var ids []backend.ID
	if err := walk(a.root, a.p, func(id backend.ID) error {
		ids = append(ids, id)
		return nil
	}); err != nil {
		return err
	}
	if len(ids) == 0 {
		return nil
	}

	next, err := a.p.ReadFull(ids[0])
	if err != nil {
		return err
	}
	for i, id := range ids {
		data := next
		if i+1 < len(ids) {
			if next, err = a.p.ReadFull(ids[i+1]); err != nil {
				return err
			}
		}
		e, err := decodeEntry(data)
		if err != nil {
			return err
		}
		if err := visit(IterEntry{ID: id, Entry: e}); err != nil {
			return err
		}
	}
	return nil
}

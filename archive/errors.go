// Package archive implements the content-addressed, append-only file
// archive layered on top of one container.Container: a bootstrap
// "userdata" pointer, a typed archive header, an indirect-block tree of
// entry ids, and an append/scan API over typed file, directory and
// symlink entries.
package archive

import "fmt"

// ErrInvalidHeader is returned when the archive-header block's magic
// doesn't match or its fields are otherwise malformed.
var ErrInvalidHeader = fmt.Errorf("archive: invalid header")

// InvalidUserdataError is returned when the container's top-id block
// doesn't decode as valid Userdata. Inner, if non-nil, names the
// underlying decode failure.
type InvalidUserdataError struct {
	Inner error
}

func (e *InvalidUserdataError) Error() string {
	if e.Inner != nil {
		return fmt.Sprintf("archive: invalid userdata: %v", e.Inner)
	}
	return "archive: invalid userdata"
}
func (e *InvalidUserdataError) Unwrap() error { return e.Inner }

// ErrOverwriteUserdata is returned by Create when the container's top id
// is already assigned to something, refusing to clobber it.
var ErrOverwriteUserdata = fmt.Errorf("archive: refusing to overwrite existing userdata")

// ErrNoTopID is returned by Open when the container has no top id at
// all.
var ErrNoTopID = fmt.Errorf("archive: container has no top id")

// UnsupportedRevisionError is returned when the archive header names a
// revision this build explicitly refuses to read.
type UnsupportedRevisionError struct {
	Revision       uint16
	LastSupporting string
}

func (e *UnsupportedRevisionError) Error() string {
	return fmt.Sprintf("archive: unsupported revision %d (last release that could read it: %s)",
		e.Revision, e.LastSupporting)
}

// ErrUnexpectedEOF names a read-all destination buffer shorter than the
// entry's declared size. No function in this package returns it:
// ReadFile sizes its own result from the entry.
var ErrUnexpectedEOF = fmt.Errorf("archive: unexpected eof")

// ErrBufferOverflow is the over-long counterpart of ErrUnexpectedEOF;
// like it, no function in this package returns it.
var ErrBufferOverflow = fmt.Errorf("archive: buffer longer than entry size")

// BuilderError is returned by Builder.Entry and wraps the error that made
// the builder invalid (an entry name rejected by CleanPath).
type BuilderError struct {
	Err error
}

func (e *BuilderError) Error() string { return fmt.Sprintf("archive: builder: %v", e.Err) }
func (e *BuilderError) Unwrap() error { return e.Err }

// InvalidIDError describes a textual block id that can't be parsed. No
// function in this package returns it; backend.ParseID returns
// backend.InvalidIDError.
type InvalidIDError struct {
	Text string
}

func (e *InvalidIDError) Error() string { return fmt.Sprintf("archive: invalid id %q", e.Text) }

// InvalidNameError is returned when an entry name fails CleanPath's
// validation (empty, cleaning to "." or "..", or escaping via "..").
// Leading slashes are stripped rather than rejected.
type InvalidNameError struct {
	Name string
}

func (e *InvalidNameError) Error() string { return fmt.Sprintf("archive: invalid entry name %q", e.Name) }

// ErrInvalidNanos is returned when a decoded Timestamp's nanosecond field
// is >= 1e9.
var ErrInvalidNanos = fmt.Errorf("archive: timestamp nanoseconds out of range")

// ErrTreeFull is returned when the archive's entry-id tree has exhausted
// the two levels of fan-out this implementation supports (spec §4.5
// describes the tree as "a flat list ... sufficient up to the fan-out of
// one node, after which a second level is introduced"; a third level
// isn't part of that description and isn't implemented here).
var ErrTreeFull = fmt.Errorf("archive: entry id tree is full")

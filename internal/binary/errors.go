// Package binary implements the fixed-width, big-endian wire encoding used
// for all on-disk structures (block payloads, header fields, archive
// records), plus a compact varint mode used only by the container header's
// inner secret.
package binary

import "fmt"

// ErrEof is returned when a read runs past the end of the source.
var ErrEof = fmt.Errorf("binary: unexpected end of input")

// ErrNoSpace is returned when a write runs past the end of a fixed-size
// target.
var ErrNoSpace = fmt.Errorf("binary: no space left in target")

// ErrTrailingBytes is returned by Reader.Finish when the source has bytes
// left after the value has been fully read.
var ErrTrailingBytes = fmt.Errorf("binary: trailing bytes after value")

// InvalidCharError is returned when a decoded u32 is not a valid Unicode
// scalar value.
type InvalidCharError struct {
	Value uint32
}

func (e *InvalidCharError) Error() string {
	return fmt.Sprintf("binary: invalid char value %#x", e.Value)
}

// InvalidStringError is returned when a decoded byte sequence is not valid
// UTF-8.
type InvalidStringError struct {
	Pos int
}

func (e *InvalidStringError) Error() string {
	return fmt.Sprintf("binary: invalid utf-8 at byte %d", e.Pos)
}

// InvalidIntegerError is returned by the varint reader when the encoded
// value needs more bits than the target integer type can hold.
type InvalidIntegerError struct {
	Expected int // bit width of the requested target type
	Found    int // bit width implied by the tag that was read
}

func (e *InvalidIntegerError) Error() string {
	return fmt.Sprintf("binary: varint too wide: expected <=%d bits, found %d bits", e.Expected, e.Found)
}

package binary

import (
	"encoding/binary"
	"unicode/utf8"
)

// GrowWriter is the growable counterpart to Writer: it appends to an
// internal buffer instead of failing on overflow. The header's inner
// secret — whose encoded size depends on the revision and the cipher in
// use — is built with a GrowWriter before being sealed.
type GrowWriter struct {
	buf []byte
}

// NewGrowWriter returns an empty GrowWriter.
func NewGrowWriter() *GrowWriter {
	return &GrowWriter{}
}

// Bytes returns the bytes written so far.
func (w *GrowWriter) Bytes() []byte {
	return w.buf
}

func (w *GrowWriter) Put(b []byte) error {
	w.buf = append(w.buf, b...)
	return nil
}

func (w *GrowWriter) WriteUint8(v uint8) error {
	w.buf = append(w.buf, v)
	return nil
}

func (w *GrowWriter) WriteInt8(v int8) error {
	return w.WriteUint8(uint8(v))
}

func (w *GrowWriter) WriteUint16(v uint16) error {
	var tmp [2]byte
	binary.BigEndian.PutUint16(tmp[:], v)
	return w.Put(tmp[:])
}

func (w *GrowWriter) WriteInt16(v int16) error {
	return w.WriteUint16(uint16(v))
}

func (w *GrowWriter) WriteUint32(v uint32) error {
	var tmp [4]byte
	binary.BigEndian.PutUint32(tmp[:], v)
	return w.Put(tmp[:])
}

func (w *GrowWriter) WriteInt32(v int32) error {
	return w.WriteUint32(uint32(v))
}

func (w *GrowWriter) WriteUint64(v uint64) error {
	var tmp [8]byte
	binary.BigEndian.PutUint64(tmp[:], v)
	return w.Put(tmp[:])
}

func (w *GrowWriter) WriteInt64(v int64) error {
	return w.WriteUint64(uint64(v))
}

func (w *GrowWriter) WriteBool(b bool) error {
	if b {
		return w.WriteUint8(1)
	}
	return w.WriteUint8(0)
}

func (w *GrowWriter) WriteChar(r rune) error {
	if r < 0 || r > utf8.MaxRune {
		return &InvalidCharError{Value: uint32(r)}
	}
	return w.WriteUint32(uint32(r))
}

func (w *GrowWriter) WriteBytes(b []byte) error {
	if err := w.WriteUint64(uint64(len(b))); err != nil {
		return err
	}
	return w.Put(b)
}

func (w *GrowWriter) WriteString(s string) error {
	return w.WriteBytes([]byte(s))
}

func (w *GrowWriter) WriteLen(n int) error {
	return w.WriteUint64(uint64(n))
}

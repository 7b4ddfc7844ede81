package binary

import (
	"errors"
	"testing"
)

func TestWriterReaderRoundTrip(t *testing.T) {
	buf := make([]byte, 64)
	w := NewWriter(buf)

	if err := w.WriteUint32(0xdeadbeef); err != nil {
		t.Fatalf("WriteUint32: %v", err)
	}
	if err := w.WriteBool(true); err != nil {
		t.Fatalf("WriteBool: %v", err)
	}
	if err := w.WriteString("nuts"); err != nil {
		t.Fatalf("WriteString: %v", err)
	}

	r := NewReader(w.Bytes())

	n, err := r.ReadUint32()
	if err != nil || n != 0xdeadbeef {
		t.Fatalf("ReadUint32 = %#x, %v", n, err)
	}
	b, err := r.ReadBool()
	if err != nil || !b {
		t.Fatalf("ReadBool = %v, %v", b, err)
	}
	s, err := r.ReadString()
	if err != nil || s != "nuts" {
		t.Fatalf("ReadString = %q, %v", s, err)
	}
	if err := r.Finish(); err != nil {
		t.Fatalf("Finish: %v", err)
	}
}

func TestWriterNoSpace(t *testing.T) {
	w := NewWriter(make([]byte, 3))
	if err := w.WriteUint32(1); !errors.Is(err, ErrNoSpace) {
		t.Fatalf("expected ErrNoSpace, got %v", err)
	}
}

func TestReaderEof(t *testing.T) {
	r := NewReader([]byte{1, 2})
	if _, err := r.ReadUint32(); !errors.Is(err, ErrEof) {
		t.Fatalf("expected ErrEof, got %v", err)
	}
}

func TestReaderTrailingBytes(t *testing.T) {
	r := NewReader([]byte{1, 2, 3})
	if _, err := r.ReadUint8(); err != nil {
		t.Fatalf("ReadUint8: %v", err)
	}
	if err := r.Finish(); !errors.Is(err, ErrTrailingBytes) {
		t.Fatalf("expected ErrTrailingBytes, got %v", err)
	}
}

func TestReaderInvalidString(t *testing.T) {
	buf := make([]byte, 16)
	w := NewWriter(buf)
	if err := w.WriteBytes([]byte{0xff, 0xfe}); err != nil {
		t.Fatalf("WriteBytes: %v", err)
	}
	r := NewReader(w.Bytes())
	if _, err := r.ReadString(); err == nil {
		t.Fatal("expected InvalidStringError, got nil")
	} else if _, ok := err.(*InvalidStringError); !ok {
		t.Fatalf("expected *InvalidStringError, got %T", err)
	}
}

func TestReaderInvalidChar(t *testing.T) {
	buf := make([]byte, 4)
	w := NewWriter(buf)
	if err := w.WriteUint32(0xD800); err != nil {
		t.Fatalf("WriteUint32: %v", err)
	}
	r := NewReader(w.Bytes())
	if _, err := r.ReadChar(); err == nil {
		t.Fatal("expected InvalidCharError, got nil")
	} else if _, ok := err.(*InvalidCharError); !ok {
		t.Fatalf("expected *InvalidCharError, got %T", err)
	}
}

func TestGrowWriterVarintRoundTrip(t *testing.T) {
	cases := []uint64{0, 1, 250, 251, 65535, 65536, 1 << 32, 1<<32 - 1, 1<<64 - 1}

	gw := NewGrowWriter()
	for _, c := range cases {
		if err := WriteVarintUint64(gw, c); err != nil {
			t.Fatalf("WriteVarintUint64(%d): %v", c, err)
		}
	}

	r := NewReader(gw.Bytes())
	for _, want := range cases {
		got, err := ReadVarintUint64(r)
		if err != nil {
			t.Fatalf("ReadVarintUint64: %v", err)
		}
		if got != want {
			t.Fatalf("ReadVarintUint64 = %d, want %d", got, want)
		}
	}
	if err := r.Finish(); err != nil {
		t.Fatalf("Finish: %v", err)
	}
}

func TestVarintLiteralEncoding(t *testing.T) {
	gw := NewGrowWriter()
	if err := WriteVarintUint64(gw, 42); err != nil {
		t.Fatalf("WriteVarintUint64: %v", err)
	}
	if b := gw.Bytes(); len(b) != 1 || b[0] != 42 {
		t.Fatalf("expected single literal byte 42, got %v", b)
	}
}

func TestVarintTooWideForTarget(t *testing.T) {
	gw := NewGrowWriter()
	if err := WriteVarintUint64(gw, 1<<40); err != nil {
		t.Fatalf("WriteVarintUint64: %v", err)
	}
	r := NewReader(gw.Bytes())
	if _, err := ReadVarintUint32(r); err == nil {
		t.Fatal("expected InvalidIntegerError, got nil")
	} else if ie, ok := err.(*InvalidIntegerError); !ok {
		t.Fatalf("expected *InvalidIntegerError, got %T", err)
	} else if ie.Expected != 32 || ie.Found != 64 {
		t.Fatalf("unexpected InvalidIntegerError: %+v", ie)
	}
}

func TestVarintUint128(t *testing.T) {
	gw := NewGrowWriter()
	v := Uint128{Hi: 0x0102030405060708, Lo: 0x090a0b0c0d0e0f10}
	if err := WriteVarintUint128(gw, v); err != nil {
		t.Fatalf("WriteVarintUint128: %v", err)
	}
	r := NewReader(gw.Bytes())
	got, err := ReadVarintUint128(r)
	if err != nil {
		t.Fatalf("ReadVarintUint128: %v", err)
	}
	if got != v {
		t.Fatalf("ReadVarintUint128 = %+v, want %+v", got, v)
	}
}

package binary

import "encoding/binary"

// tag bytes for the varint integer encoding used by the header's inner
// secret (see spec §4.1). Values 0..250 and 0xFF are literal; 0xFB..0xFE
// mark a following fixed-width payload.
const (
	tagU16 byte = 0xFB
	tagU32 byte = 0xFC
	tagU64 byte = 0xFD
	tagU128 byte = 0xFE
)

// Uint128 is a 128-bit unsigned integer split into high/low 64-bit halves,
// used only by the varint codec's widest tag.
type Uint128 struct {
	Hi, Lo uint64
}

// byteSink is the subset of Writer/GrowWriter the varint encoder needs.
// Both fixed and growable writers satisfy it.
type byteSink interface {
	WriteUint8(uint8) error
	Put([]byte) error
}

// decodeVarint reads one tagged value, returning its bits (the width
// implied by the tag: 8, 16, 32, 64 or 128) alongside the value itself
// split into high/low 64-bit halves (high is always 0 below 128 bits).
func decodeVarint(r *Reader) (lo, hi uint64, bits int, err error) {
	tag, err := r.ReadUint8()
	if err != nil {
		return 0, 0, 0, err
	}

	switch tag {
	case tagU16:
		b, err := r.Take(2)
		if err != nil {
			return 0, 0, 0, err
		}
		return uint64(binary.BigEndian.Uint16(b)), 0, 16, nil
	case tagU32:
		b, err := r.Take(4)
		if err != nil {
			return 0, 0, 0, err
		}
		return uint64(binary.BigEndian.Uint32(b)), 0, 32, nil
	case tagU64:
		b, err := r.Take(8)
		if err != nil {
			return 0, 0, 0, err
		}
		return binary.BigEndian.Uint64(b), 0, 64, nil
	case tagU128:
		b, err := r.Take(16)
		if err != nil {
			return 0, 0, 0, err
		}
		return binary.BigEndian.Uint64(b[8:]), binary.BigEndian.Uint64(b[:8]), 128, nil
	default:
		return uint64(tag), 0, 8, nil
	}
}

func checkWidth(expected, found int) error {
	if found > expected {
		return &InvalidIntegerError{Expected: expected, Found: found}
	}
	return nil
}

func ReadVarintUint8(r *Reader) (uint8, error) {
	lo, _, bits, err := decodeVarint(r)
	if err != nil {
		return 0, err
	}
	if err := checkWidth(8, bits); err != nil {
		return 0, err
	}
	return uint8(lo), nil
}

func ReadVarintUint16(r *Reader) (uint16, error) {
	lo, _, bits, err := decodeVarint(r)
	if err != nil {
		return 0, err
	}
	if err := checkWidth(16, bits); err != nil {
		return 0, err
	}
	return uint16(lo), nil
}

func ReadVarintUint32(r *Reader) (uint32, error) {
	lo, _, bits, err := decodeVarint(r)
	if err != nil {
		return 0, err
	}
	if err := checkWidth(32, bits); err != nil {
		return 0, err
	}
	return uint32(lo), nil
}

func ReadVarintUint64(r *Reader) (uint64, error) {
	lo, _, bits, err := decodeVarint(r)
	if err != nil {
		return 0, err
	}
	if err := checkWidth(64, bits); err != nil {
		return 0, err
	}
	return lo, nil
}

// ReadVarintUint128 accepts any tag, since 128 bits is the widest the
// format defines.
func ReadVarintUint128(r *Reader) (Uint128, error) {
	lo, hi, _, err := decodeVarint(r)
	if err != nil {
		return Uint128{}, err
	}
	return Uint128{Hi: hi, Lo: lo}, nil
}

// writeVarintRaw picks the narrowest tag that can hold v and writes it.
func writeVarintRaw(w byteSink, v uint64) error {
	switch {
	case v < uint64(tagU16):
		return w.WriteUint8(uint8(v))
	case v < 1<<16:
		var tmp [2]byte
		binary.BigEndian.PutUint16(tmp[:], uint16(v))
		if err := w.WriteUint8(tagU16); err != nil {
			return err
		}
		return w.Put(tmp[:])
	case v < 1<<32:
		var tmp [4]byte
		binary.BigEndian.PutUint32(tmp[:], uint32(v))
		if err := w.WriteUint8(tagU32); err != nil {
			return err
		}
		return w.Put(tmp[:])
	default:
		var tmp [8]byte
		binary.BigEndian.PutUint64(tmp[:], v)
		if err := w.WriteUint8(tagU64); err != nil {
			return err
		}
		return w.Put(tmp[:])
	}
}

func WriteVarintUint8(w byteSink, v uint8) error   { return writeVarintRaw(w, uint64(v)) }
func WriteVarintUint16(w byteSink, v uint16) error { return writeVarintRaw(w, uint64(v)) }
func WriteVarintUint32(w byteSink, v uint32) error { return writeVarintRaw(w, uint64(v)) }
func WriteVarintUint64(w byteSink, v uint64) error { return writeVarintRaw(w, v) }

// WriteVarintUint128 uses the widest tag when the high half is non-zero;
// otherwise it writes the low half with the narrowest tag that fits.
func WriteVarintUint128(w byteSink, v Uint128) error {
	if v.Hi == 0 {
		return writeVarintRaw(w, v.Lo)
	}
	var tmp [16]byte
	binary.BigEndian.PutUint64(tmp[:8], v.Hi)
	binary.BigEndian.PutUint64(tmp[8:], v.Lo)
	if err := w.WriteUint8(tagU128); err != nil {
		return err
	}
	return w.Put(tmp[:])
}

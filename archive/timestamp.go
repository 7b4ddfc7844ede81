package archive

import "github.com/drobin/nuts/internal/binary"

// Timestamp is a wall-clock instant with nanosecond resolution, the unit
// every EntryInner/ArchiveHeader timestamp field is expressed in.
type Timestamp struct {
	Seconds int64
	Nanos   uint32
}

func encodeTimestamp(w *binary.Writer, t Timestamp) error {
	if err := w.WriteInt64(t.Seconds); err != nil {
		return err
	}
	return w.WriteUint32(t.Nanos)
}

func decodeTimestamp(r *binary.Reader) (Timestamp, error) {
	sec, err := r.ReadInt64()
	if err != nil {
		return Timestamp{}, err
	}
	nanos, err := r.ReadUint32()
	if err != nil {
		return Timestamp{}, err
	}
	if nanos >= 1_000_000_000 {
		return Timestamp{}, ErrInvalidNanos
	}
	return Timestamp{Seconds: sec, Nanos: nanos}, nil
}

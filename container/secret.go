package container

import (
	"github.com/drobin/nuts/backend"
	"github.com/drobin/nuts/internal/binary"
)

// plainSecret is the decrypted contents of the header's secret blob. Its
// field set depends on the header's revision: Rev0 carries UserData
// instead of TopID; Rev1 adds TopID; Rev2 adds SID. The wire encoding
// uses binary's varint integer mode throughout (spec §4.1/§9), except for
// the raw key/iv/id bytes, which are fixed-width by construction.
type plainSecret struct {
	Magics   [2]uint32
	Key      []byte
	IV       []byte
	UserData []byte      // Rev0 only
	TopID    *backend.ID // Rev1+
	SID      *uint64     // Rev2+
	Settings []byte
}

func encodeSecret(rev Revision, s plainSecret) ([]byte, error) {
	w := binary.NewGrowWriter()

	if err := binary.WriteVarintUint32(w, s.Magics[0]); err != nil {
		return nil, err
	}
	if err := binary.WriteVarintUint32(w, s.Magics[1]); err != nil {
		return nil, err
	}
	if err := w.Put(s.Key); err != nil {
		return nil, err
	}
	if err := w.Put(s.IV); err != nil {
		return nil, err
	}

	switch rev {
	case Rev0:
		if err := binary.WriteVarintUint64(w, uint64(len(s.UserData))); err != nil {
			return nil, err
		}
		if err := w.Put(s.UserData); err != nil {
			return nil, err
		}
	case Rev1:
		if err := writeOptionID(w, s.TopID); err != nil {
			return nil, err
		}
	case Rev2:
		if err := writeOptionUint64(w, s.SID); err != nil {
			return nil, err
		}
		if err := writeOptionID(w, s.TopID); err != nil {
			return nil, err
		}
	default:
		return nil, &UnknownRevisionError{Revision: uint32(rev)}
	}

	if err := binary.WriteVarintUint64(w, uint64(len(s.Settings))); err != nil {
		return nil, err
	}
	if err := w.Put(s.Settings); err != nil {
		return nil, err
	}

	return w.Bytes(), nil
}

func decodeSecret(rev Revision, data []byte, keyLen, ivLen int) (plainSecret, error) {
	var s plainSecret
	r := binary.NewReader(data)

	m0, err := binary.ReadVarintUint32(r)
	if err != nil {
		return s, err
	}
	m1, err := binary.ReadVarintUint32(r)
	if err != nil {
		return s, err
	}
	s.Magics = [2]uint32{m0, m1}

	key, err := r.Take(keyLen)
	if err != nil {
		return s, err
	}
	s.Key = append([]byte(nil), key...)

	iv, err := r.Take(ivLen)
	if err != nil {
		return s, err
	}
	s.IV = append([]byte(nil), iv...)

	switch rev {
	case Rev0:
		n, err := binary.ReadVarintUint64(r)
		if err != nil {
			return s, err
		}
		ud, err := r.Take(int(n))
		if err != nil {
			return s, err
		}
		s.UserData = append([]byte(nil), ud...)
	case Rev1:
		id, err := readOptionID(r)
		if err != nil {
			return s, err
		}
		s.TopID = id
	case Rev2:
		sid, err := readOptionUint64(r)
		if err != nil {
			return s, err
		}
		s.SID = sid
		id, err := readOptionID(r)
		if err != nil {
			return s, err
		}
		s.TopID = id
	default:
		return s, &UnknownRevisionError{Revision: uint32(rev)}
	}

	n, err := binary.ReadVarintUint64(r)
	if err != nil {
		return s, err
	}
	settings, err := r.Take(int(n))
	if err != nil {
		return s, err
	}
	s.Settings = append([]byte(nil), settings...)

	if err := r.Finish(); err != nil {
		return s, err
	}
	return s, nil
}

func writeOptionID(w *binary.GrowWriter, id *backend.ID) error {
	if id == nil {
		return w.WriteBool(false)
	}
	if err := w.WriteBool(true); err != nil {
		return err
	}
	return w.Put(id.Bytes())
}

func readOptionID(r *binary.Reader) (*backend.ID, error) {
	present, err := r.ReadBool()
	if err != nil {
		return nil, err
	}
	if !present {
		return nil, nil
	}
	b, err := r.Take(backend.IDSize)
	if err != nil {
		return nil, err
	}
	id, err := backend.IDFromBytes(b)
	if err != nil {
		return nil, err
	}
	return &id, nil
}

func writeOptionUint64(w *binary.GrowWriter, v *uint64) error {
	if v == nil {
		return w.WriteBool(false)
	}
	if err := w.WriteBool(true); err != nil {
		return err
	}
	return binary.WriteVarintUint64(w, *v)
}

func readOptionUint64(r *binary.Reader) (*uint64, error) {
	present, err := r.ReadBool()
	if err != nil {
		return nil, err
	}
	if !present {
		return nil, nil
	}
	v, err := binary.ReadVarintUint64(r)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

package container

import (
	"bytes"

	"github.com/drobin/nuts/backend"
	"github.com/drobin/nuts/internal/binary"
	"github.com/drobin/nuts/internal/cryptocore"
	"github.com/drobin/nuts/internal/kdf"
)

// magic is the 7-byte literal every valid header slot starts with.
var magic = [7]byte{'n', 'u', 't', 's', '-', 'i', 'o'}

const cipherTagNone = uint32(cryptocore.None)
const cipherTagAes128Ctr = uint32(cryptocore.Aes128Ctr)
const cipherTagAes128Gcm = uint32(cryptocore.Aes128Gcm)

const kdfTagNone = uint32(kdf.None)
const kdfTagPbkdf2 = uint32(kdf.Pbkdf2Kind)

const digestTagSha1 = uint32(kdf.Sha1)

// header is the outer, fixed-mode-encoded structure stored in the
// backend's header slot: magic, revision, cipher selector, the secret's
// wrapping IV, the KDF selector/parameters, and the encrypted secret
// itself. Everything the container needs beyond this (master key/IV,
// top id, settings, ...) lives inside the decrypted secret.
type header struct {
	Revision        Revision
	Cipher          cryptocore.Cipher
	WrappingIV      []byte
	Kdf             kdf.Kdf
	EncryptedSecret []byte
}

func encodeHeader(h header) ([]byte, error) {
	buf := make([]byte, backend.HeaderMaxSize)
	w := binary.NewWriter(buf)

	if err := w.Put(magic[:]); err != nil {
		return nil, err
	}
	if err := w.WriteUint32(uint32(h.Revision)); err != nil {
		return nil, err
	}
	if err := w.WriteUint32(uint32(h.Cipher)); err != nil {
		return nil, err
	}
	if err := w.WriteBytes(h.WrappingIV); err != nil {
		return nil, err
	}
	if err := encodeKdf(w, h.Kdf); err != nil {
		return nil, err
	}
	if err := w.WriteBytes(h.EncryptedSecret); err != nil {
		return nil, err
	}

	return w.Bytes(), nil
}

func decodeHeader(slot []byte) (header, error) {
	var h header
	r := binary.NewReader(slot)

	m, err := r.Take(7)
	if err != nil {
		return h, err
	}
	if !bytes.Equal(m, magic[:]) {
		return h, ErrInvalidHeader
	}

	rev, err := r.ReadUint32()
	if err != nil {
		return h, err
	}
	h.Revision = Revision(rev)
	if !h.Revision.Valid() {
		return h, &UnknownRevisionError{Revision: rev}
	}

	cipherTag, err := r.ReadUint32()
	if err != nil {
		return h, err
	}
	h.Cipher = cryptocore.Cipher(cipherTag)

	iv, err := r.ReadBytes()
	if err != nil {
		return h, err
	}
	h.WrappingIV = append([]byte(nil), iv...)

	k, err := decodeKdf(r)
	if err != nil {
		return h, err
	}
	h.Kdf = k

	secret, err := r.ReadBytes()
	if err != nil {
		return h, err
	}
	h.EncryptedSecret = append([]byte(nil), secret...)

	return h, nil
}

func encodeKdf(w *binary.Writer, k kdf.Kdf) error {
	switch k.Kind {
	case kdf.None:
		return w.WriteUint32(kdfTagNone)
	case kdf.Pbkdf2Kind:
		if err := w.WriteUint32(kdfTagPbkdf2); err != nil {
			return err
		}
		if err := w.WriteUint32(uint32(k.Digest)); err != nil {
			return err
		}
		if err := w.WriteUint32(k.Iterations); err != nil {
			return err
		}
		return w.WriteBytes(k.Salt)
	default:
		return ErrInvalidHeader
	}
}

func decodeKdf(r *binary.Reader) (kdf.Kdf, error) {
	tag, err := r.ReadUint32()
	if err != nil {
		return kdf.Kdf{}, err
	}
	switch tag {
	case kdfTagNone:
		return kdf.NewNone(), nil
	case kdfTagPbkdf2:
		digest, err := r.ReadUint32()
		if err != nil {
			return kdf.Kdf{}, err
		}
		iterations, err := r.ReadUint32()
		if err != nil {
			return kdf.Kdf{}, err
		}
		salt, err := r.ReadBytes()
		if err != nil {
			return kdf.Kdf{}, err
		}
		return kdf.NewPbkdf2(kdf.Digest(digest), iterations, append([]byte(nil), salt...)), nil
	default:
		return kdf.Kdf{}, ErrInvalidHeader
	}
}

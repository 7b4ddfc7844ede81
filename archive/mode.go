package archive

import "fmt"

// EntryType is the 4-bit discriminant packed into the top nibble of a
// Mode, naming what kind of filesystem object an entry represents.
type EntryType uint8

const (
	TypeFile EntryType = iota
	TypeDirectory
	TypeSymlink
)

func (t EntryType) String() string {
	switch t {
	case TypeFile:
		return "file"
	case TypeDirectory:
		return "directory"
	case TypeSymlink:
		return "symlink"
	default:
		return fmt.Sprintf("type(%d)", uint8(t))
	}
}

// Mode packs an EntryType (top 4 bits) and a Unix rwx permission triple
// for user/group/other (bottom 9 bits) into one u16, the on-disk
// representation an EntryInner's Mode field carries.
type Mode uint16

const (
	permBits  = 0o777
	typeShift = 12
)

// NewMode builds a Mode from a type and a 0o777-masked Unix permission
// value.
func NewMode(t EntryType, perm uint32) Mode {
	return Mode(uint16(t)<<typeShift | uint16(perm&permBits))
}

// Type returns the entry's kind.
func (m Mode) Type() EntryType { return EntryType(m >> typeShift) }

// Perm returns the 0o777-masked Unix permission bits.
func (m Mode) Perm() uint32 { return uint32(m) & permBits }

func (m Mode) IsDir() bool     { return m.Type() == TypeDirectory }
func (m Mode) IsFile() bool    { return m.Type() == TypeFile }
func (m Mode) IsSymlink() bool { return m.Type() == TypeSymlink }

func (m Mode) String() string {
	return fmt.Sprintf("%s:%04o", m.Type(), m.Perm())
}

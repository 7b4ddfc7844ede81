package container

// Revision identifies the on-disk shape of the header's decrypted
// secret. Rev0 is the original layout (opaque userdata instead of a top
// id); Rev1 adds top_id; Rev2 (latest) adds an optional service id.
type Revision uint32

const (
	Rev0 Revision = iota
	Rev1
	Rev2

	LatestRevision = Rev2
)

// Valid reports whether r is one of the three revisions this build
// understands.
func (r Revision) Valid() bool {
	return r <= LatestRevision
}

func (r Revision) String() string {
	switch r {
	case Rev0:
		return "0"
	case Rev1:
		return "1"
	case Rev2:
		return "2"
	default:
		return "unknown"
	}
}

package archive

import (
	"github.com/drobin/nuts/backend"
	"github.com/drobin/nuts/container"
)

// pager adapts a *container.Container to the tree's blockReadWriter
// surface, and is also the unit other archive code uses to read/write
// whole blocks of plaintext.
type pager struct {
	c *container.Container
}

func newPager(c *container.Container) *pager { return &pager{c: c} }

// NetSize is the plaintext payload capacity of one block under this
// pager's container.
func (p *pager) NetSize() int { return p.c.BlockSizeNet() }

// NewBlock aquires a fresh, zeroed block.
func (p *pager) NewBlock() (backend.ID, error) { return p.c.Aquire() }

// ReadFull reads a whole block's plaintext payload.
func (p *pager) ReadFull(id backend.ID) ([]byte, error) {
	buf := make([]byte, p.NetSize())
	if _, err := p.c.ReadBlock(id, buf); err != nil {
		return nil, err
	}
	return buf, nil
}

// WriteFull writes data as one block's plaintext payload, zero-padded to
// NetSize by the container.
func (p *pager) WriteFull(id backend.ID, data []byte) error {
	_, err := p.c.WriteBlock(id, data)
	return err
}

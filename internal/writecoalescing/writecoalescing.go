// Package writecoalescing buffers a sequence of small writes into
// full-block-sized chunks before they're handed off for encryption,
// avoiding a separate encrypt+write round trip per caller write.
//
// Unlike the package this is adapted from, this version holds no mutex
// and spawns no goroutine: a nuts Container/Archive is single-threaded
// with no internal synchronization, so the original's lock-protected,
// timeout-flushing buffer is replaced by a plain synchronous one keyed
// purely on size.
package writecoalescing

import "github.com/drobin/nuts/internal/tlog"

// FlushFunc receives one full-sized (or final, possibly short) chunk
// ready to be encrypted and written out.
type FlushFunc func(chunk []byte) error

// Buffer accumulates Write calls and calls Flush once it holds a full
// ChunkSize's worth of data, so the caller only ever sees full-sized
// chunks (plus a possibly-short final one at Close).
type Buffer struct {
	chunkSize int
	pending   []byte
	flush     FlushFunc
	flushes   int
}

// NewBuffer returns a Buffer that accumulates writes and emits
// chunkSize-sized chunks to flush. chunkSize is normally a Container's
// BlockSizeNet().
func NewBuffer(chunkSize int, flush FlushFunc) *Buffer {
	return &Buffer{
		chunkSize: chunkSize,
		pending:   make([]byte, 0, chunkSize),
		flush:     flush,
	}
}

// Write appends data to the buffer, flushing as many full chunks as it
// now contains. It never partially flushes a chunk.
func (b *Buffer) Write(data []byte) (int, error) {
	b.pending = append(b.pending, data...)
	for len(b.pending) >= b.chunkSize {
		if err := b.flushChunk(b.pending[:b.chunkSize]); err != nil {
			return 0, err
		}
		b.pending = b.pending[b.chunkSize:]
	}
	return len(data), nil
}

func (b *Buffer) flushChunk(chunk []byte) error {
	cp := append([]byte(nil), chunk...)
	if err := b.flush(cp); err != nil {
		return err
	}
	b.flushes++
	return nil
}

// Close flushes whatever partial chunk remains (possibly nothing) and
// reports how many chunks were flushed over the buffer's lifetime,
// counting that final short chunk if there was one.
func (b *Buffer) Close() (flushedChunks int, err error) {
	if len(b.pending) > 0 {
		if err := b.flushChunk(b.pending); err != nil {
			return b.flushes, err
		}
		b.pending = nil
	}
	tlog.Debug.Printf("writecoalescing: closed after %d chunk(s)", b.flushes)
	return b.flushes, nil
}

// Pending returns the number of bytes buffered but not yet flushed.
func (b *Buffer) Pending() int { return len(b.pending) }

package xmlcharset

import (
	"bufio"
	"io"
)

// Rewinder is the capability set shared by the stream decorators in this
// package: sequential reads plus mark/reset with a caller specified
// read-ahead limit. Decorators that implement it compose uniformly, so a
// BOM layer can stack on a guessing layer which stacks on a MarkReader.
type Rewinder interface {
	io.Reader
	// Mark remembers the current position. A later Reset rewinds to it,
	// as long as no more than limit bytes were read in between.
	Mark(limit int)
	// Reset rewinds to the most recent mark.
	Reset() error
}

// MarkReader adds mark/reset support to an arbitrary io.Reader by caching
// the bytes read after a mark and replaying them on reset.
type MarkReader struct {
	src    *bufio.Reader
	buf    []byte
	pos    int
	limit  int
	marked bool
}

func NewMarkReader(r io.Reader) *MarkReader {
	return &MarkReader{src: bufio.NewReader(r)}
}

func (mr *MarkReader) Read(p []byte) (int, error) {
	if mr.pos < len(mr.buf) {
		n := copy(p, mr.buf[mr.pos:])
		mr.pos += n
		return n, nil
	}

	n, err := mr.src.Read(p)
	if n > 0 && mr.marked {
		if len(mr.buf)+n > mr.limit {
			// read past the read-ahead limit, the mark no longer holds
			mr.marked = false
			mr.buf = nil
			mr.pos = 0
		} else {
			mr.buf = append(mr.buf, p[:n]...)
			mr.pos = len(mr.buf)
		}
	}
	return n, err
}

// Mark remembers the current position. Bytes cached for an earlier mark
// but not yet re-read stay replayable.
func (mr *MarkReader) Mark(limit int) {
	mr.buf = append([]byte(nil), mr.buf[mr.pos:]...)
	mr.pos = 0
	mr.limit = limit
	mr.marked = true
}

func (mr *MarkReader) Reset() error {
	if !mr.marked {
		return ErrMarkInvalid
	}
	mr.pos = 0
	return nil
}

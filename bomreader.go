package xmlcharset

import (
	"io"
	"sort"

	"github.com/lestrrat-go/pdebug"

	"github.com/lestrrat-go/xmlcharset/internal/debug"
)

// BOMReader wraps a byte stream and matches its leading bytes against a
// set of candidate byte order marks. With include set to false a matched
// mark is stripped from the bytes seen by Read; with include set to true
// the stream passes through untouched and the match is only reported.
//
// Detection is lazy: the first Read (or an explicit BOM call) pulls as
// many bytes as the longest candidate needs, decides, and memoizes the
// result. The pulled bytes are buffered and replayed, so the wrapped
// source is never observed out of order.
type BOMReader struct {
	in      io.Reader
	include bool
	boms    []ByteOrderMark

	buf       []byte
	bufPos    int
	markPos   int
	detected  *ByteOrderMark
	detectErr error
	done      bool
	closed    bool
}

// NewBOMReader creates a BOMReader over r matching against the given
// candidates. At least one candidate is required. Candidates are matched
// longest first, so a UTF-32LE mark wins over the UTF-16LE mark that is
// its two-byte prefix.
func NewBOMReader(r io.Reader, include bool, boms ...ByteOrderMark) *BOMReader {
	if len(boms) == 0 {
		panic("xmlcharset: NewBOMReader requires at least one candidate byte order mark")
	}
	sorted := make([]ByteOrderMark, len(boms))
	copy(sorted, boms)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Len() > sorted[j].Len()
	})
	return &BOMReader{in: r, include: include, boms: sorted, markPos: -1}
}

// BOM returns the byte order mark found at the head of the stream, or nil
// if no candidate matched. The first call reads ahead and decides;
// subsequent calls return the memoized result. A read failure during
// detection is memoized too and detection is not retried.
func (br *BOMReader) BOM() (*ByteOrderMark, error) {
	if br.done {
		return br.detected, br.detectErr
	}
	br.done = true

	if pdebug.Enabled {
		g := pdebug.Marker("BOMReader.BOM")
		defer g.End()
	}

	full := make([]byte, br.boms[0].Len())
	n, err := io.ReadFull(br.in, full)
	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		br.detectErr = err
		return nil, err
	}
	br.buf = full[:n]

	for _, bom := range br.boms {
		if bom.Matches(br.buf) {
			if debug.Enabled {
				debug.Printf("matched %s byte order mark", bom.Charset())
			}
			b := bom
			br.detected = &b
			break
		}
	}
	if br.detected != nil && !br.include {
		br.bufPos = br.detected.Len()
	}
	return br.detected, nil
}

// HasBOM reports whether any candidate matched.
func (br *BOMReader) HasBOM() (bool, error) {
	bom, err := br.BOM()
	return bom != nil, err
}

func (br *BOMReader) Read(p []byte) (int, error) {
	if _, err := br.BOM(); err != nil {
		return 0, err
	}
	if br.bufPos < len(br.buf) {
		n := copy(p, br.buf[br.bufPos:])
		br.bufPos += n
		return n, nil
	}
	return br.in.Read(p)
}

// Mark remembers the current position. Detection runs first if it has not
// yet, so a later Reset replays the detection buffer instead of pulling
// the head bytes from the source a second time. The mark is forwarded to
// the wrapped stream when it is itself a Rewinder.
func (br *BOMReader) Mark(limit int) {
	br.BOM() //nolint:errcheck // memoized, resurfaces on the next Read
	br.markPos = br.bufPos
	if rw, ok := br.in.(Rewinder); ok {
		rw.Mark(limit)
	}
}

func (br *BOMReader) Reset() error {
	if br.markPos < 0 {
		return ErrMarkInvalid
	}
	if rw, ok := br.in.(Rewinder); ok {
		if err := rw.Reset(); err != nil {
			return err
		}
	}
	br.bufPos = br.markPos
	return nil
}

// Close closes the wrapped stream, once.
func (br *BOMReader) Close() error {
	if br.closed {
		return nil
	}
	br.closed = true
	if c, ok := br.in.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

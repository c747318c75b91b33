// Package xmlcharset determines the charset an XML byte stream is encoded
// in, from its byte order mark, the characteristic "<?xml" signature
// bytes, the declaration's encoding pseudo-attribute and, for streams
// obtained over HTTP, the Content-Type header, then decodes the stream
// accordingly. The rules follow the XML recommendation and RFC 3023.
package xmlcharset

import (
	"bytes"
	"io"

	"github.com/lestrrat-go/pdebug"
	"golang.org/x/text/transform"

	"github.com/lestrrat-go/xmlcharset/encoding"
)

// Reader decodes an XML byte stream into UTF-8 text using the charset
// resolved at construction time. Construction is atomic: it either
// resolves a charset and returns a usable reader, or fails.
type Reader struct {
	decoded io.Reader
	src     io.Reader
	charset string
	closed  bool
}

type Option func(*readerConfig)

// WithLenient controls whether contradictory charset declarations fail
// construction or fall back through the precedence chain. Lenient is the
// default.
func WithLenient(v bool) Option {
	return func(c *readerConfig) { c.lenient = v }
}

// WithDefaultEncoding sets the charset used when no signal resolves one.
func WithDefaultEncoding(name string) Option {
	return func(c *readerConfig) { c.defaultEncoding = name }
}

// WithByteOrderMarks replaces the default candidate byte order marks.
func WithByteOrderMarks(boms ...ByteOrderMark) Option {
	return func(c *readerConfig) { c.boms = boms }
}

// NewReader wraps an XML byte stream of unknown charset.
func NewReader(r io.Reader, options ...Option) (*Reader, error) {
	return newReader(r, "", false, options)
}

// NewHTTPReader is NewReader for a stream obtained over HTTP, with the
// entity's Content-Type header value as additional input.
func NewHTTPReader(r io.Reader, contentType string, options ...Option) (*Reader, error) {
	return newReader(r, contentType, true, options)
}

func newReader(r io.Reader, contentType string, http bool, options []Option) (*Reader, error) {
	cfg := readerConfig{lenient: true, boms: defaultBOMs}
	for _, o := range options {
		o(&cfg)
	}

	if pdebug.Enabled {
		g := pdebug.Marker("xmlcharset.newReader")
		defer g.End()
	}

	// two stacked peek layers over one rewindable source: the outer one
	// strips an encoding BOM, the inner one matches (but keeps) the
	// "<?xml" signature bytes on whatever remains
	bomr := NewBOMReader(NewMarkReader(r), false, cfg.boms...)
	guessr := NewBOMReader(bomr, true, xmlGuessMarks...)

	var sig signals
	sig.mimeType, sig.ctEnc = splitContentType(contentType)

	bom, err := bomr.BOM()
	if err != nil {
		return nil, err
	}
	if bom != nil {
		sig.bomEnc = bom.Charset()
	}

	guess, err := guessr.BOM()
	if err != nil {
		return nil, err
	}
	if guess != nil {
		sig.guessEnc = guess.Charset()
	}

	sig.xmlEnc, err = sniffProlog(guessr, sig.guessEnc)
	if err != nil {
		return nil, err
	}

	cs, err := resolve(cfg, sig, http)
	if err != nil {
		return nil, err
	}

	enc := encoding.Load(cs)
	if enc == nil {
		return nil, ErrUnsupportedCharset{Charset: cs}
	}

	if pdebug.Enabled {
		pdebug.Printf("resolved charset %s", cs)
	}

	return &Reader{
		decoded: transform.NewReader(guessr, enc.NewDecoder()),
		src:     r,
		charset: cs,
	}, nil
}

// Charset returns the name of the charset the stream was resolved to.
func (r *Reader) Charset() string {
	return r.charset
}

func (r *Reader) Read(p []byte) (int, error) {
	return r.decoded.Read(p)
}

// Close closes the wrapped source, once, when it is an io.Closer.
func (r *Reader) Close() error {
	if r.closed {
		return nil
	}
	r.closed = true
	if c, ok := r.src.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

// Detect reports the charset of the XML document in b.
func Detect(b []byte, options ...Option) (string, error) {
	r, err := NewReader(bytes.NewReader(b), options...)
	if err != nil {
		return "", err
	}
	return r.Charset(), nil
}

package xmlcharset

import "bytes"

// ByteOrderMark is an immutable leading byte sequence that identifies the
// charset (and, for the multi-byte encodings, the byte order) of an
// encoded text stream.
type ByteOrderMark struct {
	charset string
	bytes   []byte
}

func NewByteOrderMark(charset string, b ...byte) ByteOrderMark {
	if charset == "" {
		panic("xmlcharset: byte order mark requires a charset name")
	}
	if len(b) == 0 {
		panic("xmlcharset: byte order mark requires at least one byte")
	}
	buf := make([]byte, len(b))
	copy(buf, b)
	return ByteOrderMark{charset: charset, bytes: buf}
}

// Charset returns the IANA style name of the charset this mark stands for.
func (bom ByteOrderMark) Charset() string {
	return bom.charset
}

// Bytes returns a copy of the mark's byte sequence.
func (bom ByteOrderMark) Bytes() []byte {
	buf := make([]byte, len(bom.bytes))
	copy(buf, bom.bytes)
	return buf
}

func (bom ByteOrderMark) Len() int {
	return len(bom.bytes)
}

// Matches reports whether the mark's byte sequence is a prefix of b.
func (bom ByteOrderMark) Matches(b []byte) bool {
	return bytes.HasPrefix(b, bom.bytes)
}

// The byte order marks recognized by default.
var (
	UTF8BOM    = NewByteOrderMark("UTF-8", 0xEF, 0xBB, 0xBF)
	UTF16BEBOM = NewByteOrderMark("UTF-16BE", 0xFE, 0xFF)
	UTF16LEBOM = NewByteOrderMark("UTF-16LE", 0xFF, 0xFE)
	UTF32BEBOM = NewByteOrderMark("UTF-32BE", 0x00, 0x00, 0xFE, 0xFF)
	UTF32LEBOM = NewByteOrderMark("UTF-32LE", 0xFF, 0xFE, 0x00, 0x00)
)

var defaultBOMs = []ByteOrderMark{
	UTF8BOM,
	UTF16BEBOM,
	UTF16LEBOM,
	UTF32BEBOM,
	UTF32LEBOM,
}

// The characteristic "<?xml" signature rendered in each encoding. These
// are not byte order marks, but they pattern-match the same way, so the
// guessing layer reuses the type. EBCDIC is the CP1047 rendition.
var xmlGuessMarks = []ByteOrderMark{
	NewByteOrderMark("UTF-8", 0x3C, 0x3F, 0x78, 0x6D),
	NewByteOrderMark("UTF-16BE", 0x00, 0x3C, 0x00, 0x3F),
	NewByteOrderMark("UTF-16LE", 0x3C, 0x00, 0x3F, 0x00),
	NewByteOrderMark("UTF-32BE", 0x00, 0x00, 0x00, 0x3C, 0x00, 0x00, 0x00, 0x3F),
	NewByteOrderMark("UTF-32LE", 0x3C, 0x00, 0x00, 0x00, 0x3F, 0x00, 0x00, 0x00),
	NewByteOrderMark("CP1047", 0x4C, 0x6F, 0xA7, 0x94),
}

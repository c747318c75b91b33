package xmlcharset

import "errors"

const Version = "0.1.0"

var (
	ErrMarkInvalid    = errors.New("mark invalidated or never set")
	ErrPrologNotFound = errors.New("xml prolog not terminated within the sniff limit")
)

// ErrInconsistentDeclaration is returned in strict mode when the charset
// signals found in and around the document contradict each other. It
// carries every signal for diagnostics; absent signals are empty.
type ErrInconsistentDeclaration struct {
	Reason              string
	BOMEncoding         string
	XMLGuessEncoding    string
	XMLEncoding         string
	MimeType            string
	ContentTypeEncoding string
}

// ErrIllegalMIMEType is returned in strict mode when an HTTP entity's
// mime type is not one of the XML family types.
type ErrIllegalMIMEType struct {
	MimeType            string
	ContentTypeEncoding string
	XMLEncoding         string
}

// ErrUnsupportedCharset is returned when resolution succeeds but no
// decoder is available for the resolved charset.
type ErrUnsupportedCharset struct {
	Charset string
}

// readerConfig is the resolved form of the Options passed to NewReader.
type readerConfig struct {
	lenient         bool
	defaultEncoding string
	boms            []ByteOrderMark
}

package xmlcharset

import (
	"bytes"
	"io"
	"strings"
	"testing"
	"testing/iotest"

	"github.com/stretchr/testify/require"
)

func TestReaderUTF8BOM(t *testing.T) {
	// UTF-8 BOM followed by <?xml version="1.0"?>
	in := []byte{
		0xEF, 0xBB, 0xBF,
		0x3C, 0x3F, 0x78, 0x6D, 0x6C, 0x20, 0x76, 0x65, 0x72, 0x73,
		0x69, 0x6F, 0x6E, 0x3D, 0x22, 0x31, 0x2E, 0x30, 0x22, 0x3F, 0x3E,
	}

	r, err := NewReader(bytes.NewReader(in))
	require.NoError(t, err, "NewReader should succeed")
	require.Equal(t, "UTF-8", r.Charset(), "resolves to UTF-8")

	got, err := io.ReadAll(r)
	require.NoError(t, err, "read should succeed")
	require.Equal(t, `<?xml version="1.0"?>`, string(got), "BOM is consumed, document starts at '<'")
}

func TestReaderPrologDeclaration(t *testing.T) {
	// 0xE9 is 'é' in ISO-8859-1
	in := `<?xml version="1.0" encoding="ISO-8859-1"?><caf` + "\xe9" + `/>`

	r, err := NewReader(strings.NewReader(in))
	require.NoError(t, err, "NewReader should succeed")
	require.Equal(t, "ISO-8859-1", r.Charset(), "resolves to the declared encoding")

	got, err := io.ReadAll(r)
	require.NoError(t, err, "read should succeed")
	require.Equal(t, `<?xml version="1.0" encoding="ISO-8859-1"?><café/>`, string(got), "the declared charset drives decoding")
}

func TestReaderNoSignals(t *testing.T) {
	r, err := NewReader(strings.NewReader(`<root/>`))
	require.NoError(t, err, "NewReader should succeed")
	require.Equal(t, "UTF-8", r.Charset(), "defaults to UTF-8")

	got, err := io.ReadAll(r)
	require.NoError(t, err, "read should succeed")
	require.Equal(t, `<root/>`, string(got), "content passes through")
}

func TestReaderDefaultEncoding(t *testing.T) {
	r, err := NewReader(strings.NewReader(`<root/>`), WithDefaultEncoding("ISO-8859-1"))
	require.NoError(t, err, "NewReader should succeed")
	require.Equal(t, "ISO-8859-1", r.Charset(), "the configured default applies")
}

func TestReaderUTF16LE(t *testing.T) {
	doc := `<?xml version="1.0"?><root/>`
	in := []byte{0xFF, 0xFE}
	for _, c := range []byte(doc) {
		in = append(in, c, 0x00)
	}

	r, err := NewReader(bytes.NewReader(in))
	require.NoError(t, err, "NewReader should succeed")
	require.Equal(t, "UTF-16LE", r.Charset(), "BOM and guess agree on UTF-16LE")

	got, err := io.ReadAll(r)
	require.NoError(t, err, "read should succeed")
	require.Equal(t, doc, string(got), "document decodes to UTF-8 text")
}

func TestReaderStrictInconsistency(t *testing.T) {
	in := append([]byte{0xEF, 0xBB, 0xBF}, []byte(`<?xml version="1.0" encoding="UTF-16"?><root/>`)...)

	_, err := NewReader(bytes.NewReader(in), WithLenient(false))
	var ice ErrInconsistentDeclaration
	require.ErrorAs(t, err, &ice, "UTF-8 BOM with a UTF-16 declaration is inconsistent")
	require.Equal(t, "UTF-8", ice.BOMEncoding, "the error carries the BOM signal")
	require.Equal(t, "UTF-16", ice.XMLEncoding, "the error carries the declared signal")

	r, err := NewReader(bytes.NewReader(in))
	require.NoError(t, err, "lenient mode must not surface the inconsistency")
	require.Equal(t, "UTF-16", r.Charset(), "lenient mode prefers the declaration")
}

func TestHTTPReaderContentTypeCharset(t *testing.T) {
	r, err := NewHTTPReader(strings.NewReader(`<root/>`), "text/xml; charset=ISO-8859-1")
	require.NoError(t, err, "NewHTTPReader should succeed")
	require.Equal(t, "ISO-8859-1", r.Charset(), "content type charset applies")
}

func TestHTTPReaderAppXMLFallsBackToProlog(t *testing.T) {
	r, err := NewHTTPReader(
		strings.NewReader(`<?xml version="1.0" encoding="UTF-8"?><root/>`),
		"application/xml",
		WithLenient(false),
	)
	require.NoError(t, err, "NewHTTPReader should succeed")
	require.Equal(t, "UTF-8", r.Charset(), "application/xml with no charset uses the raw rules")
}

func TestHTTPReaderTextHTMLLenient(t *testing.T) {
	in := `<?xml version="1.0"?><root/>`

	r, err := NewHTTPReader(strings.NewReader(in), "text/html; charset=utf-8")
	require.NoError(t, err, "lenient mode retries text/html as text/xml")
	require.Equal(t, "UTF-8", r.Charset(), "the rewritten content type resolves")

	_, err = NewHTTPReader(strings.NewReader(in), "text/html; charset=utf-8", WithLenient(false))
	var ill ErrIllegalMIMEType
	require.ErrorAs(t, err, &ill, "strict mode refuses text/html")
}

func TestHTTPReaderIllegalMIME(t *testing.T) {
	_, err := NewHTTPReader(strings.NewReader(`<root/>`), "image/png", WithLenient(false))
	var ill ErrIllegalMIMEType
	require.ErrorAs(t, err, &ill, "image/png is not an XML type")
	require.Equal(t, "image/png", ill.MimeType, "the error names the offending type")
}

func TestReaderMalformedProlog(t *testing.T) {
	// looks like XML but never closes the declaration
	in := "<?xml " + strings.Repeat("a", sniffLimit)

	_, err := NewReader(strings.NewReader(in))
	require.ErrorIs(t, err, ErrPrologNotFound, "an unterminated prolog fails even in lenient mode")
}

func TestReaderShortReads(t *testing.T) {
	// sources that dribble out one byte at a time must not confuse the
	// detection buffers or the prolog scan
	in := `<?xml version="1.0" encoding="ISO-8859-1"?><caf` + "\xe9" + `/>`

	r, err := NewReader(iotest.OneByteReader(strings.NewReader(in)))
	require.NoError(t, err, "NewReader should succeed")
	require.Equal(t, "ISO-8859-1", r.Charset(), "resolves to the declared encoding")

	got, err := io.ReadAll(r)
	require.NoError(t, err, "read should succeed")
	require.Equal(t, `<?xml version="1.0" encoding="ISO-8859-1"?><café/>`, string(got), "document decodes intact")
}

func TestReaderLargeDocumentReplay(t *testing.T) {
	var sb strings.Builder
	sb.WriteString(`<?xml version="1.0" encoding="UTF-8"?><root>`)
	for i := 0; i < 1500; i++ {
		sb.WriteString("<item>payload</item>")
	}
	sb.WriteString(`</root>`)
	in := sb.String()

	r, err := NewReader(strings.NewReader(in))
	require.NoError(t, err, "NewReader should succeed")
	require.Equal(t, "UTF-8", r.Charset(), "resolves to UTF-8")

	got, err := io.ReadAll(r)
	require.NoError(t, err, "read should succeed")
	require.Equal(t, in, string(got), "no bytes lost or duplicated around the sniff reset")
}

func TestReaderUnsupportedCharset(t *testing.T) {
	in := `<?xml version="1.0" encoding="KLINGON-8"?><root/>`

	_, err := NewReader(strings.NewReader(in))
	var uce ErrUnsupportedCharset
	require.ErrorAs(t, err, &uce, "a declared charset with no decoder fails construction")
	require.Equal(t, "KLINGON-8", uce.Charset, "the error names the charset")
}

func TestReaderCloseOnce(t *testing.T) {
	cc := &docCloser{r: strings.NewReader(`<root/>`)}
	r, err := NewReader(cc)
	require.NoError(t, err, "NewReader should succeed")
	require.NoError(t, r.Close(), "first close should succeed")
	require.NoError(t, r.Close(), "second close should be a no-op")
	require.Equal(t, 1, cc.closes, "the source is closed exactly once")
}

func TestDetect(t *testing.T) {
	inputs := map[string]string{
		`<?xml version="1.0" encoding="ISO-8859-1"?><root/>`: "ISO-8859-1",
		`<?xml version="1.0"?><root/>`:                       "UTF-8",
		`<root/>`:                                            "UTF-8",
	}
	for input, expected := range inputs {
		cs, err := Detect([]byte(input))
		require.NoError(t, err, "Detect should succeed for '%s'", input)
		require.Equal(t, expected, cs, "charset matches for '%s'", input)
	}
}

type docCloser struct {
	r      io.Reader
	closes int
}

func (c *docCloser) Read(p []byte) (int, error) {
	return c.r.Read(p)
}

func (c *docCloser) Close() error {
	c.closes++
	return nil
}

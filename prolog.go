package xmlcharset

import (
	"bytes"
	"io"
	"regexp"
	"strings"

	"github.com/lestrrat-go/pdebug"
	"github.com/lestrrat-go/strcursor"

	"github.com/lestrrat-go/xmlcharset/encoding"
)

// sniffLimit bounds how far ahead the prolog scan may look. One default
// buffer's worth, same as bufio.
const sniffLimit = 8192

// [23] XMLDecl ::= '<?xml' VersionInfo EncodingDecl? SDDecl? S? '?>'
var encodingDeclRx = regexp.MustCompile(
	`(?is)(?:<\?xml\s+)?(?:version\s*=\s*(?:"[^"]*"|'[^']*')\s*)?encoding\s*=\s*("[^"]*"|'[^']*')`,
)

// sniffProlog scans the head of the stream for an XML declaration and
// returns the value of its encoding pseudo-attribute, upper cased. The
// stream is reset to where it was before the scan, so the declaration
// bytes stay available for the real decoder. guess names the encoding the
// head bytes themselves appear to be written in; with no guess there is
// nothing to decode the prolog with and the scan is skipped.
//
// Not finding a '>' within sniffLimit bytes means the document cannot be
// usefully sniffed at all and is an error.
func sniffProlog(r Rewinder, guess string) (string, error) {
	if guess == "" {
		return "", nil
	}
	enc := encoding.Load(guess)
	if enc == nil {
		return "", nil
	}

	if pdebug.Enabled {
		g := pdebug.Marker("sniffProlog %s", guess)
		defer g.End()
	}

	r.Mark(sniffLimit)

	raw := make([]byte, 0, sniffLimit)
	chunk := make([]byte, 512)
	var prolog string
	for prolog == "" && len(raw) < sniffLimit {
		max := len(chunk)
		if rest := sniffLimit - len(raw); rest < max {
			max = rest
		}
		n, err := r.Read(chunk[:max])
		raw = append(raw, chunk[:n]...)

		// decode what we have so far; a trailing partial code unit only
		// shortens the result, and the next chunk completes it
		decoded, _ := enc.NewDecoder().Bytes(raw)
		if s, ok := scanToGT(decoded); ok {
			prolog = s
		}

		if err == io.EOF {
			break
		}
		if err != nil {
			return "", err
		}
	}
	if prolog == "" {
		return "", ErrPrologNotFound
	}
	if err := r.Reset(); err != nil {
		return "", err
	}

	m := encodingDeclRx.FindStringSubmatch(prolog)
	if m == nil {
		return "", nil
	}
	quoted := m[1]
	return strings.ToUpper(quoted[1 : len(quoted)-1]), nil
}

// scanToGT walks decoded text up to and including the first '>'.
func scanToGT(decoded []byte) (string, bool) {
	cur := strcursor.NewRuneCursor(bytes.NewReader(decoded))
	var sb strings.Builder
	for !cur.Done() {
		c := cur.Peek()
		sb.WriteRune(c)
		if c == '>' {
			return sb.String(), true
		}
		if err := cur.Advance(1); err != nil {
			break
		}
	}
	return "", false
}

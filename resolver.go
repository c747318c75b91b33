package xmlcharset

import (
	"mime"
	"regexp"
	"strings"

	"github.com/lestrrat-go/pdebug"
)

// Charset names the resolver traffics in. IANA style, upper case.
const (
	csUTF8    = "UTF-8"
	csUTF16   = "UTF-16"
	csUTF16BE = "UTF-16BE"
	csUTF16LE = "UTF-16LE"
	csUTF32   = "UTF-32"
	csUTF32BE = "UTF-32BE"
	csUTF32LE = "UTF-32LE"
	csASCII   = "US-ASCII"
)

// signals are the inputs to charset resolution, gathered once from the
// head of the stream and, for HTTP entities, from the Content-Type
// header. An empty string means the signal is absent.
type signals struct {
	bomEnc   string
	guessEnc string
	xmlEnc   string
	mimeType string
	ctEnc    string
}

// resolve runs the strict algorithm and, in lenient mode, converts any
// inconsistency into a concrete charset via the fallback chain. In
// lenient mode it never fails.
func resolve(cfg readerConfig, sig signals, http bool) (string, error) {
	var cs string
	var err error
	if http {
		// the declaration the document itself carries wins when we are
		// allowed to be forgiving
		if cfg.lenient && sig.xmlEnc != "" {
			return sig.xmlEnc, nil
		}
		cs, err = resolveHTTP(cfg.defaultEncoding, sig)
	} else {
		cs, err = resolveRaw(cfg.defaultEncoding, sig)
	}
	if err == nil || !cfg.lenient {
		return cs, err
	}
	return lenientFallback(cfg.defaultEncoding, sig, err), nil
}

func lenientFallback(def string, sig signals, cause error) string {
	if pdebug.Enabled {
		pdebug.Printf("falling back leniently from: %s", cause)
	}
	if sig.mimeType == "text/html" {
		retry := sig
		retry.mimeType = "text/xml"
		if cs, err := resolveHTTP(def, retry); err == nil {
			return cs
		}
	}
	if sig.xmlEnc != "" {
		return sig.xmlEnc
	}
	if sig.ctEnc != "" {
		return sig.ctEnc
	}
	return defaultOr(def, csUTF8)
}

// resolveRaw picks the charset for a stream with no HTTP context, from
// the BOM, the "<?xml" signature guess and the declared encoding.
func resolveRaw(def string, sig signals) (string, error) {
	bom, guess, xml := sig.bomEnc, sig.guessEnc, sig.xmlEnc

	if bom == "" {
		if guess == "" && xml == "" {
			return defaultOr(def, csUTF8), nil
		}
		// a declared UTF-16/32 carries no byte order; the guess does
		if xml == csUTF16 && (guess == csUTF16BE || guess == csUTF16LE) {
			return guess, nil
		}
		if xml == csUTF32 && (guess == csUTF32BE || guess == csUTF32LE) {
			return guess, nil
		}
		if xml != "" {
			return xml, nil
		}
		return guess, nil
	}

	switch bom {
	case csUTF8:
		if guess != "" && guess != csUTF8 {
			return "", inconsistent("BOM "+bom+" contradicts XML guess "+guess, sig)
		}
		if xml != "" && xml != csUTF8 {
			return "", inconsistent("BOM "+bom+" contradicts XML declaration "+xml, sig)
		}
		return bom, nil
	case csUTF16BE, csUTF16LE:
		if guess != "" && guess != bom {
			return "", inconsistent("BOM "+bom+" contradicts XML guess "+guess, sig)
		}
		if xml != "" && xml != csUTF16 && xml != bom {
			return "", inconsistent("BOM "+bom+" contradicts XML declaration "+xml, sig)
		}
		return bom, nil
	case csUTF32BE, csUTF32LE:
		if guess != "" && guess != bom {
			return "", inconsistent("BOM "+bom+" contradicts XML guess "+guess, sig)
		}
		if xml != "" && xml != csUTF32 && xml != bom {
			return "", inconsistent("BOM "+bom+" contradicts XML declaration "+xml, sig)
		}
		return bom, nil
	}
	return "", inconsistent("unknown BOM "+bom, sig)
}

// resolveHTTP picks the charset for a stream obtained over HTTP,
// per the rules of RFC 3023.
func resolveHTTP(def string, sig signals) (string, error) {
	appXML := isAppXML(sig.mimeType)
	textXML := isTextXML(sig.mimeType)
	if !appXML && !textXML {
		return "", ErrIllegalMIMEType{
			MimeType:            sig.mimeType,
			ContentTypeEncoding: sig.ctEnc,
			XMLEncoding:         sig.xmlEnc,
		}
	}

	ct := sig.ctEnc
	if ct == "" {
		if appXML {
			return resolveRaw(def, sig)
		}
		// text/xml with no charset parameter defaults to US-ASCII
		return defaultOr(def, csASCII), nil
	}

	switch ct {
	case csUTF16BE, csUTF16LE, csUTF32BE, csUTF32LE:
		if sig.bomEnc != "" {
			return "", inconsistent("content type charset "+ct+" does not allow a BOM", sig)
		}
		return ct, nil
	case csUTF16, csUTF32:
		if strings.HasPrefix(sig.bomEnc, ct) && sig.bomEnc != ct {
			return sig.bomEnc, nil
		}
		return "", inconsistent("content type charset "+ct+" requires a BOM naming the byte order", sig)
	}
	return ct, nil
}

func inconsistent(reason string, sig signals) ErrInconsistentDeclaration {
	return ErrInconsistentDeclaration{
		Reason:              reason,
		BOMEncoding:         sig.bomEnc,
		XMLGuessEncoding:    sig.guessEnc,
		XMLEncoding:         sig.xmlEnc,
		MimeType:            sig.mimeType,
		ContentTypeEncoding: sig.ctEnc,
	}
}

func defaultOr(def, fallback string) string {
	if def != "" {
		return def
	}
	return fallback
}

func isAppXML(mt string) bool {
	switch mt {
	case "application/xml", "application/xml-dtd", "application/xml-external-parsed-entity":
		return true
	}
	return strings.HasPrefix(mt, "application/") && strings.HasSuffix(mt, "+xml")
}

func isTextXML(mt string) bool {
	switch mt {
	case "text/xml", "text/xml-external-parsed-entity":
		return true
	}
	return strings.HasPrefix(mt, "text/") && strings.HasSuffix(mt, "+xml")
}

var charsetParamRx = regexp.MustCompile(`(?i)charset\s*=\s*["']?([^;"'\s]+)["']?`)

// splitContentType breaks a Content-Type header into its lower-cased mime
// type and upper-cased charset parameter. The charset value may be quoted
// with double or single quotes.
func splitContentType(value string) (mimeType, charset string) {
	if value == "" {
		return "", ""
	}
	mt, params, err := mime.ParseMediaType(value)
	if err == nil {
		mimeType = mt
		charset = params["charset"]
	} else {
		// tolerate headers the stricter parser rejects
		mimeType = strings.TrimSpace(strings.SplitN(value, ";", 2)[0])
		if m := charsetParamRx.FindStringSubmatch(value); m != nil {
			charset = m[1]
		}
	}
	return strings.ToLower(mimeType), strings.ToUpper(strings.Trim(charset, `"'`))
}

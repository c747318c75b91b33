package xmlcharset

import "fmt"

func (e ErrInconsistentDeclaration) Error() string {
	return fmt.Sprintf(
		"inconsistent charset declarations: %s (BOM=%q, XML guess=%q, XML declaration=%q, mime type=%q, content type charset=%q)",
		e.Reason,
		e.BOMEncoding,
		e.XMLGuessEncoding,
		e.XMLEncoding,
		e.MimeType,
		e.ContentTypeEncoding,
	)
}

func (e ErrIllegalMIMEType) Error() string {
	return "mime type '" + e.MimeType + "' is not an XML type"
}

func (e ErrUnsupportedCharset) Error() string {
	return "no decoder available for charset '" + e.Charset + "'"
}

package mime

import "strings"

type MIME = string

const (
	Plain          MIME = "text/plain"
	JSON           MIME = "application/json"
	FormUrlencoded MIME = "application/x-www-form-urlencoded"
)

// WithCharset appends the charset parameter.
func WithCharset(mime MIME, charset string) string {
	return mime + "; charset=" + charset
}

// Complies returns whether the content type denotes the MIME, parameters aside. Empty content
// type is considered compatible with any MIME.
func Complies(mime MIME, contentType string) bool {
	contentType, _, _ = strings.Cut(contentType, ";")
	contentType = strings.TrimSpace(contentType)

	return len(contentType) == 0 || strings.EqualFold(contentType, mime)
}

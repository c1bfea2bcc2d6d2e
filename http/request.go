package http

import (
	"bytes"
	"io"
	"strings"

	"github.com/indigo-web/utils/strcomp"
	"github.com/indigo-web/webserve/http/mime"
	"github.com/indigo-web/webserve/kv"
)

// Request is an immutable view of a received request. Header, query and form lookups are
// case-insensitive and keep duplicates in the order they arrived.
type Request struct {
	method     string
	target     string
	path       string
	version    string
	hasVersion bool
	headers    *kv.Storage
	query      *kv.Storage
	form       *kv.Storage
	body       []byte
}

// Method returns the request method as is, e.g. GET.
func (r *Request) Method() string {
	return r.method
}

// Target returns the raw request target, including the query string.
func (r *Request) Target() string {
	return r.target
}

// Path returns the request target without the query string.
func (r *Request) Path() string {
	return r.path
}

// Version returns the protocol version token of the request line, if present.
func (r *Request) Version() (string, bool) {
	return r.version, r.hasVersion
}

// Header returns the first value of the header.
func (r *Request) Header(key string) (string, bool) {
	return r.headers.Get(key)
}

func (r *Request) Headers() kv.View {
	return r.headers
}

// Query returns parameters of the query string. Parameters without the equality sign, like
// `b` in `?a=1&b`, are stored as null entries.
func (r *Request) Query() kv.View {
	return r.query
}

// Form returns fields of the url-encoded form body. Fields are separated by semicolon, the ones
// without the equality sign are dropped.
func (r *Request) Form() kv.View {
	return r.form
}

// Body returns the body bytes. It is nil if the request declared no Content-Length.
func (r *Request) Body() []byte {
	return r.body
}

// BodyReader returns a fresh reader over the body.
func (r *Request) BodyReader() io.Reader {
	return bytes.NewReader(r.body)
}

// ContentLength returns the length of the collected body, or -1 if there's none.
func (r *Request) ContentLength() int {
	if r.body == nil {
		return -1
	}

	return len(r.body)
}

// IsKeepAlive reports whether the client asked to keep the connection alive.
func (r *Request) IsKeepAlive() bool {
	return strcomp.EqualFold(r.headers.Value("Connection"), "keep-alive")
}

// IsWebSocketUpgrade reports whether Connection lists the upgrade token and Upgrade lists
// websocket. Both tokens are matched case-insensitively.
func (r *Request) IsWebSocketUpgrade() bool {
	return hasToken(r.headers.Values("Connection"), "upgrade") &&
		hasToken(r.headers.Values("Upgrade"), "websocket")
}

// HasFormBody reports whether the body is an url-encoded form.
func (r *Request) HasFormBody() bool {
	return strcomp.EqualFold(r.headers.Value("Content-Type"), mime.FormUrlencoded)
}

// IsHTTP10 reports whether the request must be treated as HTTP/1.0. That's also the case when
// the request line carries no version at all.
func (r *Request) IsHTTP10() bool {
	if !r.hasVersion {
		return true
	}

	switch {
	case len(r.version) == 0,
		strcomp.EqualFold(r.version, "HTTP/1.0"),
		strcomp.EqualFold(r.version, "HTTP/1"):
		return true
	default:
		return false
	}
}

func hasToken(values []string, token string) bool {
	for _, value := range values {
		for value != "" {
			var elem string
			elem, value, _ = strings.Cut(value, ",")
			if strcomp.EqualFold(strings.TrimSpace(elem), token) {
				return true
			}
		}
	}

	return false
}

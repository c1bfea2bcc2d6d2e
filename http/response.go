package http

import (
	"errors"
	"strconv"
	"time"

	"github.com/indigo-web/utils/uf"
	"github.com/indigo-web/webserve/http/mime"
	"github.com/indigo-web/webserve/http/status"
	"github.com/indigo-web/webserve/kv"
)

const (
	// DateLayout is RFC 1123 with the zone fixed to GMT, as HTTP requires.
	DateLayout         = "Mon, 02 Jan 2006 15:04:05 GMT"
	DefaultContentType = mime.Plain + "; charset=utf-8"
	// the connection is never reused, so every response tells so
	connectionHeader = "Connection: Closed\r\n"
)

// Response is a builder for a complete serialized response. The zero value isn't usable, use
// NewResponse instead.
type Response struct {
	code        status.Code
	contentType string
	headers     []kv.Pair
	body        []byte
}

// NewResponse returns a new instance of the Response object with status code set to 200 OK and
// plain text content-type.
func NewResponse() *Response {
	return &Response{
		code:        status.OK,
		contentType: DefaultContentType,
	}
}

// Code sets the status code. The status text is picked automatically.
func (r *Response) Code(code status.Code) *Response {
	r.code = code
	return r
}

func (r *Response) ContentType(value string) *Response {
	r.contentType = value
	return r
}

// Header adds a header. Date, Content-Type, Content-Length and Connection are always written
// and mustn't be set this way.
func (r *Response) Header(key, value string) *Response {
	r.headers = append(r.headers, kv.Pair{Key: key, Value: value})
	return r
}

func (r *Response) String(body string) *Response {
	return r.Bytes(uf.S2B(body))
}

func (r *Response) Bytes(body []byte) *Response {
	r.body = body
	return r
}

// Render serializes the response. The header block is ASCII, the body is copied as is.
func (r *Response) Render(now time.Time) []byte {
	return r.AppendTo(make([]byte, 0, 128+len(r.body)), now)
}

// AppendTo appends the serialized response to the buffer.
func (r *Response) AppendTo(buff []byte, now time.Time) []byte {
	buff = append(buff, "HTTP/1.1 "...)
	buff = strconv.AppendUint(buff, uint64(r.code), 10)
	buff = append(buff, ' ')
	buff = append(buff, status.Text(r.code)...)
	buff = append(buff, "\r\nDate: "...)
	buff = now.UTC().AppendFormat(buff, DateLayout)
	buff = append(buff, "\r\nContent-Type: "...)
	buff = append(buff, r.contentType...)
	buff = append(buff, "\r\nContent-Length: "...)
	buff = strconv.AppendInt(buff, int64(len(r.body)), 10)
	buff = append(buff, "\r\n"...)

	for _, header := range r.headers {
		buff = append(buff, header.Key...)
		buff = append(buff, ": "...)
		buff = append(buff, header.Value...)
		buff = append(buff, "\r\n"...)
	}

	buff = append(buff, connectionHeader...)
	buff = append(buff, "\r\n"...)

	return append(buff, r.body...)
}

// Error renders a response for the error. The status code is taken from status.HTTPError, any
// other error results in 500 Internal Server Error without disclosing the error text.
func Error(err error, now time.Time) []byte {
	code := status.CodeOf(err)
	message := string(status.Text(code))
	var httpErr status.HTTPError
	if errors.As(err, &httpErr) {
		message = httpErr.Message
	}

	return NewResponse().
		Code(code).
		String(message).
		Render(now)
}

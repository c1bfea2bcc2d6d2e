package http

import (
	"strings"

	"github.com/indigo-web/webserve/http/status"
	"github.com/indigo-web/webserve/kv"
)

const (
	querySeparator = "&"
	formSeparator  = ";"
)

// Parse builds a request out of the header text (the request line followed by header lines,
// both CRLF and bare LF line endings are accepted) and an optional body.
//
// The request line must consist of either two or three space-separated tokens: method, target
// and an optional version. Header lines without a colon are ignored, values are trimmed.
func Parse(header string, body []byte) (*Request, error) {
	line, rest := nextLine(header)
	tokens := strings.Split(line, " ")
	if len(tokens) != 2 && len(tokens) != 3 {
		return nil, status.ErrInvalidRequest
	}

	request := &Request{
		method:  tokens[0],
		target:  tokens[1],
		path:    tokens[1],
		headers: kv.NewPrealloc(strings.Count(rest, "\n")),
		query:   kv.New(),
		form:    kv.New(),
		body:    body,
	}

	if len(tokens) == 3 {
		request.version, request.hasVersion = tokens[2], true
	}

	if path, query, found := strings.Cut(request.target, "?"); found {
		request.path = path
		parseParams(request.query, query, querySeparator, true)
	}

	for len(rest) > 0 {
		line, rest = nextLine(rest)
		key, value, found := strings.Cut(line, ":")
		if !found {
			continue
		}

		request.headers.Add(key, strings.TrimSpace(value))
	}

	if len(body) > 0 && request.HasFormBody() {
		// copied, as the body itself stays mutable for its consumers
		parseParams(request.form, string(body), formSeparator, false)
	}

	return request, nil
}

// parseParams splits the pieces by the first equality sign. Pieces without one become null
// entries if keepNulls is set, otherwise they're dropped.
func parseParams(into *kv.Storage, data, sep string, keepNulls bool) {
	if len(data) == 0 {
		return
	}

	for _, piece := range strings.Split(data, sep) {
		key, value, found := strings.Cut(piece, "=")
		switch {
		case found:
			into.Add(key, value)
		case keepNulls:
			into.AddNull(key)
		}
	}
}

func nextLine(text string) (line, rest string) {
	line, rest, _ = strings.Cut(text, "\n")
	return strings.TrimSuffix(line, "\r"), rest
}

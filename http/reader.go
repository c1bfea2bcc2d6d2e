package http

import (
	"bytes"
	"context"
	"math"
	"time"

	"github.com/indigo-web/utils/strcomp"
	"github.com/indigo-web/utils/uf"
	"github.com/indigo-web/webserve/config"
	"github.com/indigo-web/webserve/http/status"
)

// Receiver is the source of request bytes. An empty chunk means the peer has nothing to send
// (anymore).
type Receiver interface {
	Receive(ctx context.Context) ([]byte, error)
}

// BodyHandler takes the body over chunk by chunk, in the order they arrived. The chunk must
// not be retained after the call returns. An error aborts reading.
type BodyHandler func(header string, chunk []byte) error

const contentLengthKey = "content-length:"

var headerTerminator = []byte("\r\n\r\n")

// ReadRequest reads a single request from the client. It waits for the first bytes for a
// limited number of attempts, accumulates the header block up to the blank line and then
// collects exactly Content-Length bytes of the body, if the header declares one. With a
// non-nil onBody the body is passed to it instead of being collected.
//
// A nil request with no error means the peer sent nothing at all. Errors are either
// status.HTTPError, describing what's wrong with the request, or failures of the client.
func ReadRequest(
	ctx context.Context, client Receiver, cfg *config.Config, onBody BodyHandler,
) (*Request, error) {
	data, err := receiveFirst(ctx, client, cfg.NET)
	if err != nil || len(data) == 0 {
		return nil, err
	}

	head := append(make([]byte, 0, len(data)), data...)
	end := bytes.Index(head, headerTerminator)

	for end == -1 {
		if len(head) > cfg.Headers.MaxSize {
			return nil, status.ErrHeaderFieldsTooLarge
		}

		data, err = receiveMore(ctx, client, cfg.NET.InitialReadBackoff)
		if err != nil {
			return nil, err
		}

		// the terminator might be split between the chunks
		from := max(len(head)-len(headerTerminator)+1, 0)
		head = append(head, data...)
		if end = bytes.Index(head[from:], headerTerminator); end != -1 {
			end += from
		}
	}

	if end+len(headerTerminator) > cfg.Headers.MaxSize {
		return nil, status.ErrHeaderFieldsTooLarge
	}

	header := head[:end+len(headerTerminator)]
	excess := head[len(header):]

	length, declared, err := contentLength(header)
	if err != nil {
		return nil, err
	}

	var body []byte

	if declared {
		if length > cfg.Body.MaxSize {
			return nil, status.ErrBodyTooLarge
		}

		body, err = readBody(ctx, client, cfg, uf.B2S(header), excess, length, onBody)
		if err != nil {
			return nil, err
		}
	}

	// the blank line is not a part of the header text
	return Parse(string(header[:end+2]), body)
}

func readBody(
	ctx context.Context,
	client Receiver,
	cfg *config.Config,
	header string,
	excess []byte,
	length uint64,
	onBody BodyHandler,
) (body []byte, err error) {
	if onBody == nil {
		body = make([]byte, 0, length)
	}

	remaining := length
	take := func(chunk []byte) error {
		// whatever comes after the declared length is dropped
		if uint64(len(chunk)) > remaining {
			chunk = chunk[:remaining]
		}

		remaining -= uint64(len(chunk))
		if onBody != nil {
			return onBody(header, chunk)
		}

		body = append(body, chunk...)
		return nil
	}

	if len(excess) > 0 {
		if err = take(excess); err != nil {
			return nil, err
		}
	}

	for remaining > 0 {
		data, err := receiveMore(ctx, client, cfg.NET.InitialReadBackoff)
		if err != nil {
			return nil, err
		}

		if err = take(data); err != nil {
			return nil, err
		}
	}

	return body, nil
}

// receiveFirst waits for the first bytes of the request. An empty result means the client
// stayed silent during all the attempts.
func receiveFirst(ctx context.Context, client Receiver, cfg config.NET) ([]byte, error) {
	for range cfg.InitialReadAttempts {
		data, err := client.Receive(ctx)
		if err != nil || len(data) > 0 {
			return data, err
		}

		if err = pause(ctx, cfg.InitialReadBackoff); err != nil {
			return nil, err
		}
	}

	return nil, nil
}

// receiveMore tolerates a single empty read in the middle of a request. The second one in
// a row means the peer is gone, leaving the request incomplete.
func receiveMore(ctx context.Context, client Receiver, backoff time.Duration) ([]byte, error) {
	for attempt := range 2 {
		data, err := client.Receive(ctx)
		if err != nil || len(data) > 0 {
			return data, err
		}

		if attempt == 0 {
			if err = pause(ctx, backoff); err != nil {
				return nil, err
			}
		}
	}

	return nil, status.ErrBadRequest
}

// contentLength looks up the Content-Length header in the raw header block. The value must
// consist of decimal digits, optionally preceded by spaces, and be directly followed by the
// end of the line.
func contentLength(header []byte) (length uint64, found bool, err error) {
	i := indexContentLength(header)
	if i == -1 {
		return 0, false, nil
	}

	for i < len(header) && (header[i] == ' ' || header[i] == '\t') {
		i++
	}

	for ; i < len(header) && header[i] >= '0' && header[i] <= '9'; i++ {
		if length > (math.MaxUint64-9)/10 {
			return 0, true, status.ErrBodyTooLarge
		}

		length = length*10 + uint64(header[i]-'0')
	}

	if i >= len(header) || (header[i] != '\r' && header[i] != '\n') {
		return 0, true, status.ErrInvalidRequest
	}

	return length, true, nil
}

// indexContentLength returns the position right after the colon of the first Content-Length
// header, or -1 if there's none. The request line is never considered.
func indexContentLength(header []byte) int {
	offset := 0

	for {
		newline := bytes.IndexByte(header[offset:], '\n')
		if newline == -1 {
			return -1
		}

		offset += newline + 1
		line := header[offset:]
		if len(line) >= len(contentLengthKey) &&
			strcomp.EqualFold(uf.B2S(line[:len(contentLengthKey)]), contentLengthKey) {
			return offset + len(contentLengthKey)
		}
	}
}

func pause(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

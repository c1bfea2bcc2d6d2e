package producer

import (
	"bytes"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/indigo-web/utils/strcomp"
	"github.com/indigo-web/webserve/http"
	"github.com/indigo-web/webserve/http/mime"
	"github.com/indigo-web/webserve/http/status"
	"github.com/indigo-web/webserve/internal/timer"
	json "github.com/json-iterator/go"
	"github.com/klauspost/compress/gzip"
)

// payloads shorter than this are not worth compressing
const minGzipSize = 256

// ErrNotFound may be returned by a source to answer with 404.
var ErrNotFound = status.NewError(status.NotFound, "not found")

// Source supplies the value to be served for the request.
type Source func(request *http.Request) (any, error)

// JSON serves values of the source serialized to JSON. Sources failing with status.HTTPError
// are answered with the error's status, any other failure is returned to the caller.
type JSON struct {
	source   Source
	now      func() time.Time
	gzippers sync.Pool
}

func NewJSON(source Source) *JSON {
	return &JSON{
		source: source,
		now:    timer.Now,
		gzippers: sync.Pool{
			New: func() any {
				writer, _ := gzip.NewWriterLevel(nil, gzip.BestSpeed)
				return writer
			},
		},
	}
}

func (j *JSON) Produce(request *http.Request) ([]byte, error) {
	value, err := j.source(request)
	if err != nil {
		var httpErr status.HTTPError
		if errors.As(err, &httpErr) {
			return http.Error(httpErr, j.now()), nil
		}

		return nil, err
	}

	payload, err := json.ConfigCompatibleWithStandardLibrary.Marshal(value)
	if err != nil {
		return nil, err
	}

	response := http.NewResponse().ContentType(mime.JSON)

	if len(payload) >= minGzipSize && acceptsGzip(request) {
		if payload, err = j.compress(payload); err != nil {
			return nil, err
		}

		response.Header("Content-Encoding", "gzip")
	}

	return response.Bytes(payload).Render(j.now()), nil
}

func (j *JSON) compress(payload []byte) ([]byte, error) {
	buff := bytes.NewBuffer(make([]byte, 0, len(payload)/2))
	writer := j.gzippers.Get().(*gzip.Writer)
	defer j.gzippers.Put(writer)

	writer.Reset(buff)
	if _, err := writer.Write(payload); err != nil {
		return nil, err
	}

	if err := writer.Close(); err != nil {
		return nil, err
	}

	return buff.Bytes(), nil
}

// acceptsGzip looks for the gzip token in Accept-Encoding. Quality values are ignored, except
// the explicit refusal q=0.
func acceptsGzip(request *http.Request) bool {
	for _, value := range request.Headers().Values("Accept-Encoding") {
		for _, token := range strings.Split(value, ",") {
			coding, params, _ := strings.Cut(token, ";")
			if !strcomp.EqualFold(strings.TrimSpace(coding), "gzip") {
				continue
			}

			q := strings.ReplaceAll(strings.TrimSpace(params), " ", "")
			return q != "q=0" && q != "q=0.0" && q != "q=0.00" && q != "q=0.000"
		}
	}

	return false
}

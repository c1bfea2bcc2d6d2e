package server

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/indigo-web/webserve/config"
	"github.com/indigo-web/webserve/http"
	"github.com/indigo-web/webserve/http/status"
	"github.com/indigo-web/webserve/internal/timer"
	"github.com/indigo-web/webserve/transport"
	"github.com/indigo-web/webserve/websocket"
)

// Producer turns a request into the complete serialized response, status line included.
type Producer interface {
	Produce(request *http.Request) ([]byte, error)
}

type ProducerFunc func(request *http.Request) ([]byte, error)

func (p ProducerFunc) Produce(request *http.Request) ([]byte, error) {
	return p(request)
}

type Logger interface {
	Printf(format string, v ...any)
}

// Server serves exactly one request per connection: it reads the request, answers it either
// with the producer's payload or with the WebSocket handshake, and closes the connection.
type Server struct {
	cfg      *config.Config
	producer Producer
	logger   Logger
	now      func() time.Time
}

func New(cfg *config.Config, producer Producer, logger Logger) *Server {
	return &Server{
		cfg:      cfg,
		producer: producer,
		logger:   logger,
		now:      timer.Now,
	}
}

// Serve processes the connection. Whatever happens, the connection is closed exactly once
// before return.
func (s *Server) Serve(ctx context.Context, id string, client transport.Client) {
	defer s.release(client)

	request, err := http.ReadRequest(ctx, client, s.cfg, nil)
	switch {
	case err != nil:
		s.fail(ctx, id, client, err)
		return
	case request == nil:
		// connected, but never said a word
		return
	}

	if request.IsWebSocketUpgrade() {
		err = s.upgrade(ctx, client, request)
	} else {
		err = s.respond(ctx, id, client, request)
	}

	if err != nil {
		s.logger.Printf("%s: %s %s: %s", id, request.Method(), request.Target(), err)
	}
}

func (s *Server) respond(ctx context.Context, id string, client transport.Client, request *http.Request) error {
	payload, err := s.produce(request)
	if err != nil {
		s.logger.Printf("%s: %s %s: producer: %s", id, request.Method(), request.Target(), err)
		payload = http.Error(err, s.now())
	}

	return client.Send(ctx, payload)
}

func (s *Server) produce(request *http.Request) (payload []byte, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: panic: %v", status.ErrInternalServerError, r)
		}
	}()

	return s.producer.Produce(request)
}

func (s *Server) upgrade(ctx context.Context, client transport.Client, request *http.Request) error {
	response, err := websocket.Handshake(request)
	if err != nil {
		return errors.Join(err, client.Send(ctx, http.Error(err, s.now())))
	}

	if greeting := s.cfg.WebSocket.GreetingFrame; len(greeting) > 0 {
		response = append(response, websocket.TextFrame(greeting)...)
	}

	response = append(response, websocket.CloseFrame(websocket.CloseNormal, "")...)

	return client.Send(ctx, response)
}

// fail answers malformed requests with the corresponding status. Failures of the socket itself
// leave nothing to answer to.
func (s *Server) fail(ctx context.Context, id string, client transport.Client, err error) {
	s.logger.Printf("%s: %s", id, err)

	var httpErr status.HTTPError
	if !errors.As(err, &httpErr) {
		return
	}

	if err = client.Send(ctx, http.Error(httpErr, s.now())); err != nil {
		s.logger.Printf("%s: %s", id, err)
	}
}

func (s *Server) release(client transport.Client) {
	_ = client.Disconnect(context.Background())
	_ = client.Close()
}

package config

import (
	"time"
)

type (
	NET struct {
		// ReadBufferSize is a size of buffer in bytes which will be used to read from
		// socket. Every receive yields at most this many bytes.
		ReadBufferSize int
		// Backlog is the length of the kernel's accept queue for the listening socket.
		Backlog int
		// AcceptLoopInterruptPeriod controls how often will the Accept() call be interrupted
		// in order to check whether it's time to stop.
		AcceptLoopInterruptPeriod time.Duration
		// InitialReadAttempts limits how many times an empty read is retried while waiting for
		// the very first bytes of a request. A client that connected but sent nothing during
		// all the attempts is considered gone.
		InitialReadAttempts int
		// InitialReadBackoff is the pause between two initial read attempts.
		InitialReadBackoff time.Duration
		// MaxConnections is the ceiling of concurrently processed connections.
		MaxConnections int
		// PendingConnections is how many accepted connections may wait for a free worker. When
		// the queue is full, the accept loop stops accepting until a seat frees up.
		PendingConnections int
	}

	Headers struct {
		// MaxSize limits the whole header block, including the request line.
		MaxSize int
	}

	Body struct {
		// MaxSize describes the maximal Content-Length, that can be processed. Requests declaring
		// more are rejected with status.ErrBodyTooLarge before reading the body.
		MaxSize uint64
	}

	WebSocket struct {
		// GreetingFrame is sent as a single text frame right after a successful upgrade. Empty
		// string disables it.
		GreetingFrame string `test:"nullable"`
	}
)

// Config holds settings used across various parts of the server, mainly restrictions and
// limitations.
//
// You must ALWAYS modify defaults (returned via Default()) and NEVER try to initialize the
// config manually, because most likely this will result in ambiguous errors.
type Config struct {
	NET       NET
	Headers   Headers
	Body      Body
	WebSocket WebSocket
}

// Default returns default config.
func Default() *Config {
	return &Config{
		NET: NET{
			ReadBufferSize:            1024,
			Backlog:                   16,
			AcceptLoopInterruptPeriod: 1 * time.Second,
			InitialReadAttempts:       5,
			InitialReadBackoff:        50 * time.Millisecond,
			MaxConnections:            512,
			PendingConnections:        64,
		},
		Headers: Headers{
			MaxSize: 64 * 1024,
		},
		Body: Body{
			MaxSize: 16 * 1024 * 1024, // 16 megabytes
		},
		WebSocket: WebSocket{
			GreetingFrame: "ready",
		},
	}
}

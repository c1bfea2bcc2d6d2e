package dummy

import (
	"io"
	"net"
	"sync"
	"sync/atomic"
	"time"
)

var _ net.Conn = new(Conn)

// Conn is a net.Conn serving pre-defined chunks, one per read. When they are over, the reads
// report io.EOF, unless the connection is stalled: then they block until it is closed, just
// like a silent peer does. Everything written is journaled.
type Conn struct {
	mu         sync.Mutex
	chunks     [][]byte
	written    []byte
	stall      bool
	writeErr   error
	closes     atomic.Int32
	halfClosed atomic.Bool
	closed     chan struct{}
	closeOnce  sync.Once
}

func NewConn(chunks ...[]byte) *Conn {
	return &Conn{
		chunks: chunks,
		closed: make(chan struct{}),
	}
}

// Stall makes reads block after the chunks are over.
func (c *Conn) Stall() *Conn {
	c.stall = true
	return c
}

// FailWrites makes every write fail with the error.
func (c *Conn) FailWrites(err error) *Conn {
	c.writeErr = err
	return c
}

func (c *Conn) Read(b []byte) (n int, err error) {
	select {
	case <-c.closed:
		return 0, net.ErrClosed
	default:
	}

	c.mu.Lock()
	if len(c.chunks) == 0 {
		c.mu.Unlock()
		if !c.stall {
			return 0, io.EOF
		}

		<-c.closed
		return 0, net.ErrClosed
	}

	chunk := c.chunks[0]
	n = copy(b, chunk)
	if n < len(chunk) {
		c.chunks[0] = chunk[n:]
	} else {
		c.chunks = c.chunks[1:]
	}
	c.mu.Unlock()

	return n, nil
}

func (c *Conn) Write(b []byte) (n int, err error) {
	if c.writeErr != nil {
		return 0, c.writeErr
	}

	c.mu.Lock()
	c.written = append(c.written, b...)
	c.mu.Unlock()

	return len(b), nil
}

// CloseWrite mimics *net.TCPConn.
func (c *Conn) CloseWrite() error {
	c.halfClosed.Store(true)
	return nil
}

func (c *Conn) Close() error {
	c.closes.Add(1)
	c.closeOnce.Do(func() {
		close(c.closed)
	})

	return nil
}

// Written returns everything written so far.
func (c *Conn) Written() string {
	c.mu.Lock()
	defer c.mu.Unlock()

	return string(c.written)
}

// Closes returns how many times Close was called.
func (c *Conn) Closes() int {
	return int(c.closes.Load())
}

// HalfClosed reports whether the sending side was shut down.
func (c *Conn) HalfClosed() bool {
	return c.halfClosed.Load()
}

func (c *Conn) LocalAddr() net.Addr {
	return &net.TCPAddr{IP: net.IPv4(127, 0, 0, 1), Port: 3000}
}

func (c *Conn) RemoteAddr() net.Addr {
	return &net.TCPAddr{IP: net.IPv4(127, 0, 0, 1), Port: 54321}
}

func (c *Conn) SetDeadline(time.Time) error {
	return nil
}

func (c *Conn) SetReadDeadline(time.Time) error {
	return nil
}

func (c *Conn) SetWriteDeadline(time.Time) error {
	return nil
}

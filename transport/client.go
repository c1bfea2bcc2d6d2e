package transport

import (
	"context"
	"errors"
	"io"
	"net"
	"sync"

	"github.com/indigo-web/webserve/internal/awaitable"
)

type Client interface {
	// Receive returns a chunk of at most len(buffer) bytes. A peer that closed its end
	// is reported as an empty chunk, not as an error.
	Receive(ctx context.Context) ([]byte, error)
	// Pushback preserves a chunk of data from previous receive for the next one.
	Pushback([]byte)
	Send(ctx context.Context, b []byte) error
	// Disconnect shuts down the sending side of the connection.
	Disconnect(ctx context.Context) error
	Conn() net.Conn
	Remote() net.Addr
	// Close releases the connection. Only the first call has effect.
	Close() error
}

type client struct {
	conn      net.Conn
	recv      *awaitable.Operation[int]
	send      *awaitable.Operation[int]
	shutdown  *awaitable.Operation[struct{}]
	pending   []byte
	closeOnce sync.Once
	closeErr  error
}

func NewClient(conn net.Conn, buff []byte) Client {
	return &client{
		conn:     conn,
		recv:     awaitable.New[int]("receive", buff),
		send:     awaitable.New[int]("send", nil),
		shutdown: awaitable.New[struct{}]("disconnect", nil),
	}
}

func (c *client) Receive(ctx context.Context) ([]byte, error) {
	if len(c.pending) > 0 {
		n := copy(c.recv.Buffer(), c.pending)
		c.pending = c.pending[n:]
		c.recv.Resolve(n, nil)
	} else {
		c.recv.Begin(func(buff []byte) (int, error) {
			n, err := c.conn.Read(buff)
			if errors.Is(err, io.EOF) {
				err = nil
			}

			return n, err
		})
	}

	n, err := await(ctx, c, c.recv)
	if err != nil {
		return nil, err
	}

	return c.recv.Buffer()[:n], nil
}

func (c *client) Pushback(b []byte) {
	c.pending = b
}

func (c *client) Send(ctx context.Context, b []byte) error {
	for len(b) > 0 {
		data := b
		c.send.Begin(func([]byte) (int, error) {
			return c.conn.Write(data)
		})

		n, err := await(ctx, c, c.send)
		if err != nil {
			return err
		}

		b = b[n:]
	}

	return nil
}

func (c *client) Disconnect(ctx context.Context) error {
	conn, ok := c.conn.(interface{ CloseWrite() error })
	if !ok {
		return nil
	}

	c.shutdown.Begin(func([]byte) (struct{}, error) {
		return struct{}{}, conn.CloseWrite()
	})

	_, err := await(ctx, c, c.shutdown)
	return err
}

func (c *client) Conn() net.Conn {
	return c.conn
}

func (c *client) Remote() net.Addr {
	return c.conn.RemoteAddr()
}

func (c *client) Close() error {
	c.closeOnce.Do(func() {
		c.closeErr = c.conn.Close()
	})

	return c.closeErr
}

// await suspends until the operation completes. If the context is done earlier, the connection
// is closed, as this is the only way to bring the blocked socket call to an end.
func await[T any](ctx context.Context, c *client, op *awaitable.Operation[T]) (T, error) {
	result, err := op.Await(ctx)
	if cerr := ctx.Err(); cerr != nil && errors.Is(err, cerr) {
		_ = c.Close()
		_, _ = op.Await(context.Background())
	}

	return result, err
}

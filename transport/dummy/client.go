package dummy

import (
	"context"
	"net"

	"github.com/indigo-web/webserve/transport"
)

var _ transport.Client = new(Client)

// Client returns the data it was initialised with, one chunk per receive, and empty chunks
// once they are over. It also tracks all the written data, making it thereby a universal mock
// suitable for most of the tests. It is not safe for concurrent use.
type Client struct {
	pointer int
	tmp     []byte
	data    [][]byte
	written []byte
	closes  int
	recvErr error
	sendErr error
}

func NewMockClient(data ...[]byte) *Client {
	return &Client{
		data: data,
	}
}

// FailReceives makes every receive after the chunks are over fail with the error.
func (c *Client) FailReceives(err error) *Client {
	c.recvErr = err
	return c
}

// FailSends makes every send fail with the error.
func (c *Client) FailSends(err error) *Client {
	c.sendErr = err
	return c
}

func (c *Client) Receive(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if len(c.tmp) > 0 {
		data := c.tmp
		c.tmp = nil

		return data, nil
	}

	if c.pointer >= len(c.data) {
		return nil, c.recvErr
	}

	piece := c.data[c.pointer]
	c.pointer++

	return piece, nil
}

func (c *Client) Pushback(takeback []byte) {
	c.tmp = takeback
}

func (c *Client) Send(_ context.Context, b []byte) error {
	if c.sendErr != nil {
		return c.sendErr
	}

	c.written = append(c.written, b...)
	return nil
}

func (c *Client) Disconnect(context.Context) error {
	return nil
}

func (c *Client) Conn() net.Conn {
	return NewConn()
}

func (*Client) Remote() net.Addr {
	return nil
}

func (c *Client) Close() error {
	c.closes++
	return nil
}

// Written returns the journal of everything sent.
func (c *Client) Written() string {
	return string(c.written)
}

// Closes returns how many times Close was called.
func (c *Client) Closes() int {
	return c.closes
}

package transport

import (
	"context"
	"errors"
	"net"
	"os"
	"time"

	"github.com/indigo-web/webserve/config"
	"github.com/indigo-web/webserve/internal/awaitable"
)

type listener interface {
	net.Listener
	SetDeadline(t time.Time) error
}

// Logger receives accept errors, which are otherwise swallowed.
type Logger interface {
	Printf(format string, v ...any)
}

type TCP struct {
	cfg    config.NET
	l      listener
	accept *awaitable.Operation[net.Conn]
	pool   *Pool
	logger Logger
}

func NewTCP(cfg config.NET, logger Logger) *TCP {
	return &TCP{
		cfg:    cfg,
		accept: awaitable.New[net.Conn]("accept", nil),
		pool:   NewPool(cfg.MaxConnections, cfg.PendingConnections),
		logger: logger,
	}
}

func (t *TCP) Bind(addr string) error {
	l, err := listen(addr, t.cfg.Backlog)
	if err != nil {
		return err
	}

	tl, ok := l.(listener)
	if !ok {
		_ = l.Close()
		return errors.New("listener doesn't support deadlines")
	}

	t.l = tl
	return nil
}

// Addr returns the bound address. Useful when bound to the port 0.
func (t *TCP) Addr() net.Addr {
	return t.l.Addr()
}

// Listen accepts connections until the context is done or the listener is closed. Every
// connection is handed to the callback on a worker of the pool, the callback owns it from
// then on. Accept failures don't stop the loop.
func (t *TCP) Listen(ctx context.Context, cb func(conn net.Conn)) error {
	defer t.pool.Close()
	// a saturated pool blocks Submit, so the stop must be able to reach it there too
	unregister := context.AfterFunc(ctx, t.pool.Close)
	defer unregister()

	var delay time.Duration

	for ctx.Err() == nil {
		err := t.l.SetDeadline(time.Now().Add(t.cfg.AcceptLoopInterruptPeriod))
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				return nil
			}

			return err
		}

		t.accept.Begin(func([]byte) (net.Conn, error) {
			return t.l.Accept()
		})

		conn, err := t.accept.Await(context.Background())
		if err != nil {
			switch {
			case errors.Is(err, os.ErrDeadlineExceeded):
				continue
			case errors.Is(err, net.ErrClosed):
				return nil
			}

			delay = backoff(delay)
			t.logger.Printf("transport: accept: %s, retrying in %s", err, delay)
			if pause(ctx, delay) != nil {
				return nil
			}

			continue
		}

		delay = 0

		if ctx.Err() != nil {
			// accepted right before the stop was requested
			_ = conn.Close()
			break
		}

		if err = t.pool.Submit(func() { cb(conn) }); err != nil {
			_ = conn.Close()
			return nil
		}
	}

	return nil
}

// Close closes the listening socket.
func (t *TCP) Close() {
	_ = t.l.Close()
}

// Pending returns the number of connections waiting for a worker.
func (t *TCP) Pending() int {
	return t.pool.Pending()
}

// Wait blocks until every dispatched connection is handled.
func (t *TCP) Wait() {
	t.pool.Wait()
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

func backoff(prev time.Duration) time.Duration {
	const (
		minDelay = 5 * time.Millisecond
		maxDelay = time.Second
	)

	if prev == 0 {
		return minDelay
	}

	return min(prev*2, maxDelay)
}

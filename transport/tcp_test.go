package transport

import (
	"context"
	"io"
	"log"
	"net"
	"testing"
	"time"

	"github.com/indigo-web/webserve/config"
	"github.com/stretchr/testify/require"
)

func newTestTCP(t *testing.T) *TCP {
	cfg := config.Default().NET
	cfg.AcceptLoopInterruptPeriod = 20 * time.Millisecond
	tcp := NewTCP(cfg, log.New(io.Discard, "", 0))
	require.NoError(t, tcp.Bind("127.0.0.1:0"))

	return tcp
}

func TestTCP(t *testing.T) {
	t.Run("accept and stop", func(t *testing.T) {
		tcp := newTestTCP(t)
		ctx, cancel := context.WithCancel(context.Background())
		accepted := make(chan net.Conn, 1)
		done := make(chan error)

		go func() {
			done <- tcp.Listen(ctx, func(conn net.Conn) {
				accepted <- conn
			})
		}()

		client, err := net.Dial("tcp", tcp.Addr().String())
		require.NoError(t, err)
		defer client.Close()

		conn := <-accepted
		_, err = client.Write([]byte("ping"))
		require.NoError(t, err)

		buff := make([]byte, 4)
		_, err = io.ReadFull(conn, buff)
		require.NoError(t, err)
		require.Equal(t, "ping", string(buff))
		require.NoError(t, conn.Close())

		cancel()
		require.NoError(t, <-done)
		tcp.Close()
		tcp.Wait()
	})

	t.Run("closed listener ends the loop", func(t *testing.T) {
		tcp := newTestTCP(t)
		done := make(chan error)

		go func() {
			done <- tcp.Listen(context.Background(), func(net.Conn) {})
		}()

		tcp.Close()
		require.NoError(t, <-done)
	})

	t.Run("stop with saturated pool", func(t *testing.T) {
		cfg := config.Default().NET
		cfg.AcceptLoopInterruptPeriod = 20 * time.Millisecond
		cfg.MaxConnections, cfg.PendingConnections = 1, 1
		tcp := NewTCP(cfg, log.New(io.Discard, "", 0))
		require.NoError(t, tcp.Bind("127.0.0.1:0"))
		defer tcp.Close()

		ctx, cancel := context.WithCancel(context.Background())
		release := make(chan struct{})
		done := make(chan error)

		go func() {
			done <- tcp.Listen(ctx, func(conn net.Conn) {
				<-release
				_ = conn.Close()
			})
		}()

		for i := 0; i < 3; i++ {
			client, err := net.Dial("tcp", tcp.Addr().String())
			require.NoError(t, err)
			defer client.Close()
		}

		require.Eventually(t, func() bool {
			return tcp.Pending() == 1
		}, time.Second, 5*time.Millisecond)
		// let the third connection get stuck on submitting
		time.Sleep(50 * time.Millisecond)

		cancel()
		select {
		case err := <-done:
			require.NoError(t, err)
		case <-time.After(time.Second):
			require.Fail(t, "accept loop didn't end")
		}

		close(release)
		tcp.Wait()
	})

	t.Run("address in use", func(t *testing.T) {
		tcp := newTestTCP(t)
		defer tcp.Close()

		other := NewTCP(config.Default().NET, log.New(io.Discard, "", 0))
		require.Error(t, other.Bind(tcp.Addr().String()))
	})
}

func TestPause(t *testing.T) {
	require.NoError(t, pause(context.Background(), time.Millisecond))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	start := time.Now()
	require.ErrorIs(t, pause(ctx, time.Minute), context.Canceled)
	require.Less(t, time.Since(start), time.Second)
}

func TestBackoff(t *testing.T) {
	require.Equal(t, 5*time.Millisecond, backoff(0))
	require.Equal(t, 10*time.Millisecond, backoff(5*time.Millisecond))
	require.Equal(t, time.Second, backoff(800*time.Millisecond))
}

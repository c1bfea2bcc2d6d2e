package transport_test

import (
	"context"
	"errors"
	"net"
	"testing"
	"time"

	"github.com/indigo-web/webserve/internal/awaitable"
	"github.com/indigo-web/webserve/transport"
	"github.com/indigo-web/webserve/transport/dummy"
	"github.com/stretchr/testify/require"
)

func TestClient(t *testing.T) {
	t.Run("receive", func(t *testing.T) {
		conn := dummy.NewConn([]byte("Hello, "), []byte("world!"))
		client := transport.NewClient(conn, make([]byte, 4))

		var got []byte
		for {
			data, err := client.Receive(context.Background())
			require.NoError(t, err)
			if len(data) == 0 {
				break
			}

			require.LessOrEqual(t, len(data), 4)
			got = append(got, data...)
		}

		require.Equal(t, "Hello, world!", string(got))
	})

	t.Run("pushback", func(t *testing.T) {
		conn := dummy.NewConn([]byte("Hello"), []byte("world"))
		client := transport.NewClient(conn, make([]byte, 16))

		data, err := client.Receive(context.Background())
		require.NoError(t, err)
		client.Pushback(data[1:])

		data, err = client.Receive(context.Background())
		require.NoError(t, err)
		require.Equal(t, "ello", string(data))

		data, err = client.Receive(context.Background())
		require.NoError(t, err)
		require.Equal(t, "world", string(data))
	})

	t.Run("pushback larger than the buffer", func(t *testing.T) {
		client := transport.NewClient(dummy.NewConn(), make([]byte, 2))
		client.Pushback([]byte("abcde"))

		var got []byte
		for range 3 {
			data, err := client.Receive(context.Background())
			require.NoError(t, err)
			got = append(got, data...)
		}

		require.Equal(t, "abcde", string(got))
	})

	t.Run("send", func(t *testing.T) {
		conn := dummy.NewConn()
		client := transport.NewClient(conn, nil)
		require.NoError(t, client.Send(context.Background(), []byte("Hello, ")))
		require.NoError(t, client.Send(context.Background(), []byte("world!")))
		require.Equal(t, "Hello, world!", conn.Written())
	})

	t.Run("send failure", func(t *testing.T) {
		fail := errors.New("connection reset by peer")
		client := transport.NewClient(dummy.NewConn().FailWrites(fail), nil)
		err := client.Send(context.Background(), []byte("Hello"))
		require.ErrorIs(t, err, fail)

		var sockErr *awaitable.SocketError
		require.ErrorAs(t, err, &sockErr)
		require.Equal(t, "send", sockErr.Op)
	})

	t.Run("disconnect and close", func(t *testing.T) {
		conn := dummy.NewConn()
		client := transport.NewClient(conn, nil)
		require.NoError(t, client.Disconnect(context.Background()))
		require.True(t, conn.HalfClosed())

		require.NoError(t, client.Close())
		require.NoError(t, client.Close())
		require.Equal(t, 1, conn.Closes())
	})

	t.Run("cancelled receive closes the connection", func(t *testing.T) {
		conn := dummy.NewConn().Stall()
		client := transport.NewClient(conn, make([]byte, 16))

		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
		defer cancel()

		_, err := client.Receive(ctx)
		require.ErrorIs(t, err, context.DeadlineExceeded)
		require.Equal(t, 1, conn.Closes())

		_, err = client.Receive(context.Background())
		require.ErrorIs(t, err, net.ErrClosed)
	})
}

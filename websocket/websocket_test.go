package websocket

import (
	"encoding/binary"
	"strings"
	"testing"

	"github.com/indigo-web/webserve/http"
	"github.com/indigo-web/webserve/http/status"
	"github.com/stretchr/testify/require"
)

func TestAcceptKey(t *testing.T) {
	// the sample from RFC 6455, 1.3
	require.Equal(t, "s3pPLMBiTxaQ9kYGzzhZRbK+xOo=", AcceptKey("dGhlIHNhbXBsZSBub25jZQ=="))
}

func TestHandshake(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		request, err := http.Parse(
			"GET /chat HTTP/1.1\r\n"+
				"Upgrade: websocket\r\n"+
				"Connection: Upgrade\r\n"+
				"Sec-WebSocket-Key: dGhlIHNhbXBsZSBub25jZQ==\r\n", nil,
		)
		require.NoError(t, err)

		response, err := Handshake(request)
		require.NoError(t, err)
		require.Equal(t,
			"HTTP/1.1 101 Switching Protocols\r\n"+
				"Upgrade: websocket\r\n"+
				"Connection: Upgrade\r\n"+
				"Sec-WebSocket-Accept: s3pPLMBiTxaQ9kYGzzhZRbK+xOo=\r\n\r\n",
			string(response),
		)
	})

	t.Run("missing key", func(t *testing.T) {
		request, err := http.Parse("GET /chat HTTP/1.1\r\nUpgrade: websocket\r\nConnection: Upgrade\r\n", nil)
		require.NoError(t, err)

		_, err = Handshake(request)
		require.ErrorIs(t, err, status.ErrMissingWebSocketKey)
	})
}

func TestFrame(t *testing.T) {
	t.Run("short", func(t *testing.T) {
		frame := TextFrame("gooooo")
		require.Equal(t, []byte{0x81, 6}, frame[:2])
		require.Equal(t, "gooooo", string(frame[2:]))
	})

	t.Run("16 bit length", func(t *testing.T) {
		payload := strings.Repeat("a", 126)
		frame := TextFrame(payload)
		require.Equal(t, byte(0x81), frame[0])
		require.Equal(t, byte(126), frame[1])
		require.Equal(t, uint16(126), binary.BigEndian.Uint16(frame[2:4]))
		require.Equal(t, payload, string(frame[4:]))
	})

	t.Run("64 bit length", func(t *testing.T) {
		payload := make([]byte, 0x10000)
		frame := AppendFrame(nil, OpBinary, payload)
		require.Equal(t, byte(0x82), frame[0])
		require.Equal(t, byte(127), frame[1])
		require.Equal(t, uint64(0x10000), binary.BigEndian.Uint64(frame[2:10]))
		require.Len(t, frame, 10+len(payload))
	})

	t.Run("close", func(t *testing.T) {
		frame := CloseFrame(CloseNormal, "bye")
		require.Equal(t, []byte{0x88, 5, 0x03, 0xE8, 'b', 'y', 'e'}, frame)

		frame = CloseFrame(CloseGoingAway, strings.Repeat("x", 200))
		require.Equal(t, byte(125), frame[1])
		require.Len(t, frame, 127)
	})
}

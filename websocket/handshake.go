package websocket

import (
	"crypto/sha1"
	"encoding/base64"

	"github.com/indigo-web/utils/uf"
	"github.com/indigo-web/webserve/http"
	"github.com/indigo-web/webserve/http/status"
)

// GUID is concatenated with the client's key to form the accept key (RFC 6455, 1.3).
const GUID = "258EAFA5-E914-47DA-95CA-C5AB0DC85B11"

// AcceptKey derives the Sec-WebSocket-Accept value from the Sec-WebSocket-Key.
func AcceptKey(key string) string {
	hash := sha1.New()
	hash.Write(uf.S2B(key))
	hash.Write(uf.S2B(GUID))

	return base64.StdEncoding.EncodeToString(hash.Sum(nil))
}

// UpgradeResponse renders the 101 Switching Protocols response for the key.
func UpgradeResponse(key string) []byte {
	return []byte(
		"HTTP/1.1 101 Switching Protocols\r\n" +
			"Upgrade: websocket\r\n" +
			"Connection: Upgrade\r\n" +
			"Sec-WebSocket-Accept: " + AcceptKey(key) + "\r\n" +
			"\r\n",
	)
}

// Handshake validates the upgrade request and renders the response to it.
func Handshake(request *http.Request) ([]byte, error) {
	key, found := request.Header("Sec-WebSocket-Key")
	if !found || len(key) == 0 {
		return nil, status.ErrMissingWebSocketKey
	}

	return UpgradeResponse(key), nil
}

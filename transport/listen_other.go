//go:build !(linux || darwin || freebsd || netbsd || openbsd)

package transport

import (
	"context"
	"net"
)

// listen falls back to the runtime's own listener. The backlog is then chosen by the runtime.
func listen(addr string, _ int) (net.Listener, error) {
	return new(net.ListenConfig).Listen(context.Background(), "tcp", addr)
}

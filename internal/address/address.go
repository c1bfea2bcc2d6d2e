package address

import (
	"errors"
	"net"
	"strconv"
	"strings"
)

// DefaultHost is used when only the port is given. The server is meant for local use,
// so it binds to the loopback unless asked otherwise.
const DefaultHost = "127.0.0.1"

var errNoPort = errors.New("no port given")

type Address struct {
	Host string
	Port uint16
}

func Parse(addr string) (Address, error) {
	host, port, err := net.SplitHostPort(addr)
	if err != nil {
		if strings.Contains(err.Error(), "missing port") {
			return Address{}, errNoPort
		}

		return Address{}, err
	}

	if len(port) == 0 {
		return Address{}, errNoPort
	}

	num, err := strconv.ParseUint(port, 10, 16)
	if err != nil {
		return Address{}, errors.New("invalid port: " + port)
	}

	if len(host) == 0 {
		host = DefaultHost
	}

	return Address{
		Host: host,
		Port: uint16(num),
	}, nil
}

// String returns the address in a form accepted by net.Dial and net.Listen.
func (a Address) String() string {
	return net.JoinHostPort(a.Host, strconv.Itoa(int(a.Port)))
}

func (a Address) IsLocalhost() bool {
	if strings.EqualFold(a.Host, "localhost") {
		return true
	}

	ip := net.ParseIP(a.Host)
	return ip != nil && ip.IsLoopback()
}

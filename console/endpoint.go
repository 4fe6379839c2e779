package console

import (
	"net"
	"strconv"
)

// Endpoint identifies where a device's raw terminal byte stream is exposed.
// It is obtained once per device from the lab platform and is immutable for
// the lifetime of a session.
type Endpoint struct {
	Host string
	Port int
}

func (e Endpoint) Addr() string {
	return net.JoinHostPort(e.Host, strconv.Itoa(e.Port))
}

func (e Endpoint) String() string {
	return e.Addr()
}

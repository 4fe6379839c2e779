package console

import (
	"net"
	"strings"
	"sync"
	"testing"
	"time"
)

// testDialOptions keep unit tests snappy.
var testDialOptions = DialOptions{
	ConnectTimeout: 2 * time.Second,
	SettleWait:     10 * time.Millisecond,
	PollSlice:      50 * time.Millisecond,
}

// mockDevice is an in-process TCP peer standing in for a device console. The
// handler gets the accepted connection and scripts the device side.
type mockDevice struct {
	ln net.Listener

	mu   sync.Mutex
	sent []string // every chunk the "device" received
}

func startMockDevice(t *testing.T, handler func(d *mockDevice, conn net.Conn)) (*mockDevice, Endpoint) {
	t.Helper()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	d := &mockDevice{ln: ln}
	t.Cleanup(func() { _ = ln.Close() })

	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()
		handler(d, conn)
	}()

	port := ln.Addr().(*net.TCPAddr).Port
	return d, Endpoint{Host: "127.0.0.1", Port: port}
}

func (d *mockDevice) record(chunk string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.sent = append(d.sent, chunk)
}

// received returns everything the device read so far.
func (d *mockDevice) received() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return strings.Join(d.sent, "")
}

// silentHandler never sends anything.
func silentHandler(_ *mockDevice, conn net.Conn) {
	buf := make([]byte, 256)
	for {
		if _, err := conn.Read(buf); err != nil {
			return
		}
	}
}

// reactive builds a handler that accumulates input and calls react on every
// read, letting scenario tests express the device as a tiny state machine.
func reactive(react func(acc *string, conn net.Conn)) func(*mockDevice, net.Conn) {
	return func(d *mockDevice, conn net.Conn) {
		buf := make([]byte, 256)
		acc := ""
		for {
			n, err := conn.Read(buf)
			if err != nil {
				return
			}
			d.record(string(buf[:n]))
			acc += string(buf[:n])
			react(&acc, conn)
		}
	}
}

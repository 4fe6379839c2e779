package console

import (
	"net"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWaitForPromptSilentPeerReturnsWithinBudget(t *testing.T) {
	_, ep := startMockDevice(t, silentHandler)

	sess, err := Dial(ep, testDialOptions)
	require.NoError(t, err)
	defer sess.Close()

	start := time.Now()
	out, err := sess.WaitForPrompt(2 * time.Second)
	elapsed := time.Since(start)

	require.NoError(t, err, "an idle peer is not an error")
	assert.Empty(t, out)
	assert.Less(t, elapsed, 3*time.Second, "wait must end within max_wait plus one polling slice")
	assert.GreaterOrEqual(t, elapsed, 1900*time.Millisecond)
}

func TestRunCommandDrainsStaleOutput(t *testing.T) {
	stale := "LEFTOVER-TAIL Router#"
	_, ep := startMockDevice(t, reactive(func(acc *string, conn net.Conn) {
		if strings.Contains(*acc, "trigger\r") {
			_, _ = conn.Write([]byte(stale))
			*acc = ""
			return
		}
		if strings.Contains(*acc, "show version\r") {
			_, _ = conn.Write([]byte("show version\r\nCisco IOS Software, vios\nRouter#"))
			*acc = ""
		}
	}))

	sess, err := Dial(ep, testDialOptions)
	require.NoError(t, err)
	defer sess.Close()

	// provoke stale output and give it time to land in the socket buffer
	require.NoError(t, sess.SendLine("trigger"))
	time.Sleep(300 * time.Millisecond)

	out, err := sess.RunCommand("show version", 2*time.Second)
	require.NoError(t, err)
	assert.Contains(t, out, "Cisco IOS Software")
	assert.NotContains(t, out, "LEFTOVER-TAIL",
		"stale output must be drained before the new command is sent")
}

func TestSendAndCollect(t *testing.T) {
	_, ep := startMockDevice(t, reactive(func(acc *string, conn net.Conn) {
		if strings.Contains(*acc, "hello\r") {
			_, _ = conn.Write([]byte("hello yourself\r\n"))
			*acc = ""
		}
	}))

	sess, err := Dial(ep, testDialOptions)
	require.NoError(t, err)
	defer sess.Close()

	out, err := sess.SendAndCollect("hello\r", 500*time.Millisecond)
	require.NoError(t, err)
	assert.Contains(t, out, "hello yourself")
}

func TestWaitForAnyReturnsOnMatchBeforeBudget(t *testing.T) {
	_, ep := startMockDevice(t, reactive(func(acc *string, conn net.Conn) {
		if strings.Contains(*acc, "\r") {
			_, _ = conn.Write([]byte("Router>"))
			*acc = ""
		}
	}))

	sess, err := Dial(ep, testDialOptions)
	require.NoError(t, err)
	defer sess.Close()

	require.NoError(t, sess.Send("\r"))

	start := time.Now()
	out, label, err := sess.WaitForAny(ShellPrompts, 10*time.Second)
	require.NoError(t, err)
	assert.Equal(t, "unprivileged", label)
	assert.Contains(t, out, "Router>")
	assert.Less(t, time.Since(start), 2*time.Second, "match must end the wait early")
}

func TestCloseIsIdempotent(t *testing.T) {
	_, ep := startMockDevice(t, silentHandler)

	sess, err := Dial(ep, testDialOptions)
	require.NoError(t, err)

	require.NoError(t, sess.Close())
	assert.NoError(t, sess.Close(), "second close must be a no-op")
	assert.NoError(t, sess.Close())
}

func TestDialRefusedIsError(t *testing.T) {
	// grab a port and close it so nothing listens there
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := ln.Addr().(*net.TCPAddr).Port
	require.NoError(t, ln.Close())

	_, err = Dial(Endpoint{Host: "127.0.0.1", Port: port}, testDialOptions)
	assert.Error(t, err)
}

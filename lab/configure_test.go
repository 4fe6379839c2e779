package lab

import (
	"context"
	"net"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/evelabs/evectl/console"
)

// startFakeConsole runs a minimal ready-to-configure device on a loopback
// port: it answers every command with the appropriate vIOS prompt.
func startFakeConsole(t *testing.T) int {
	t.Helper()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { _ = ln.Close() })

	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()

		buf := make([]byte, 256)
		acc := ""
		reply := func(s string) {
			_, _ = conn.Write([]byte(s))
			acc = ""
		}
		for {
			n, err := conn.Read(buf)
			if err != nil {
				return
			}
			acc += string(buf[:n])
			switch {
			case strings.Contains(acc, "show ip interface brief\r"):
				reply("Interface              IP-Address      OK?\nGigabitEthernet0/0     10.0.0.1        YES\nR1#")
			case strings.Contains(acc, "configure terminal\r"):
				reply("Enter configuration commands, one per line.\nR1(config)#")
			case strings.Contains(acc, "terminal length 0\r"):
				reply("R1#")
			case strings.Contains(acc, "write memory\r"):
				reply("Building configuration...\n[OK]\nR1#")
			case strings.Contains(acc, "end\r"):
				reply("R1#")
			case strings.Contains(acc, "hostname R1\r"):
				reply("R1(config)#")
			case strings.Contains(acc, "\r"):
				reply("R1#")
			}
		}
	}()

	return ln.Addr().(*net.TCPAddr).Port
}

func TestConfigurerEndToEnd(t *testing.T) {
	f := &fakeEve{consolePort: startFakeConsole(t)}
	srv := f.server(t)
	client := loggedInClient(t, srv)

	cfgPath := filepath.Join(t.TempDir(), "r1.cfg")
	require.NoError(t, os.WriteFile(cfgPath, []byte("hostname R1\n"), 0o644))

	topo := testTopology()
	topo.Routers[0].Config = cfgPath
	topo.Routers[0].Verify = []string{"show ip interface brief"}

	cfg := NewConfigurer(client, topo)
	cfg.Dial = console.DialOptions{
		ConnectTimeout: 2 * time.Second,
		SettleWait:     10 * time.Millisecond,
		PollSlice:      50 * time.Millisecond,
	}
	cfg.BootBudget = 10 * time.Second
	cfg.VerifyWait = 2 * time.Second

	reports := cfg.Configure(context.Background())
	require.Len(t, reports, 1)

	rep := reports[0]
	require.NoError(t, rep.Err)
	assert.Equal(t, "R1", rep.Node)
	assert.NotEmpty(t, rep.RunID)

	require.NotNil(t, rep.Boot)
	assert.True(t, rep.Boot.Ready(), "boot state: %s, transcript: %s", rep.Boot.State, rep.Boot.Transcript)

	require.NotEmpty(t, rep.Config)
	assert.Equal(t, "configure terminal", rep.Config[0].Stage)
	assert.Equal(t, "hostname R1", rep.Config[1].Stage)
	assert.Contains(t, rep.Config.String(), "(config)#")

	require.Len(t, rep.Verify, 1)
	assert.Contains(t, rep.Verify[0].Output, "GigabitEthernet0/0")
}

func TestConfigurerReportsConnectFailure(t *testing.T) {
	// point the console at a port nothing listens on
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	deadPort := ln.Addr().(*net.TCPAddr).Port
	require.NoError(t, ln.Close())

	f := &fakeEve{consolePort: deadPort}
	srv := f.server(t)
	client := loggedInClient(t, srv)

	cfg := NewConfigurer(client, testTopology())
	cfg.DialRetries = 1
	cfg.Dial = console.DialOptions{
		ConnectTimeout: time.Second,
		SettleWait:     time.Millisecond,
		PollSlice:      50 * time.Millisecond,
	}

	reports := cfg.Configure(context.Background())
	require.Len(t, reports, 1)
	require.Error(t, reports[0].Err)
	assert.Contains(t, reports[0].Err.Error(), "connecting console")
}

package console

import (
	"fmt"
	"net"
	"strings"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	cerr "github.com/evelabs/evectl/errors"
)

const (
	defaultConnectTimeout = 10 * time.Second
	defaultSettleWait     = 1 * time.Second
	defaultPollSlice      = 500 * time.Millisecond

	// drainWait bounds the pre-command drain of stale output.
	drainWait = 200 * time.Millisecond
)

// DialOptions tune session establishment. Zero values take defaults.
type DialOptions struct {
	ConnectTimeout time.Duration
	// SettleWait is a fixed grace period after connect, letting the peer's
	// telnet negotiation (if any) run its course. This driver does not
	// participate in option negotiation; it is raw passthrough.
	SettleWait time.Duration
	// PollSlice is the receive granularity used inside bounded waits.
	PollSlice time.Duration
}

// Session owns exactly one console socket. It is not safe for concurrent use:
// reads are strictly sequential and received bytes are attributed to the most
// recently issued command.
type Session struct {
	Endpoint Endpoint

	conn      net.Conn
	rdr       *streamReader
	pollSlice time.Duration

	closeOnce sync.Once
	closeErr  error
}

// Dial connects to a console endpoint. The returned session must be closed on
// every exit path.
func Dial(ep Endpoint, opts DialOptions) (*Session, error) {
	if opts.ConnectTimeout == 0 {
		opts.ConnectTimeout = defaultConnectTimeout
	}
	if opts.SettleWait == 0 {
		opts.SettleWait = defaultSettleWait
	}
	if opts.PollSlice == 0 {
		opts.PollSlice = defaultPollSlice
	}

	conn, err := net.DialTimeout("tcp", ep.Addr(), opts.ConnectTimeout)
	if err != nil {
		return nil, fmt.Errorf("console connect %s: %w", ep.Addr(), err)
	}
	log.Debugf("console connected to %s", ep.Addr())

	time.Sleep(opts.SettleWait)

	return &Session{
		Endpoint:  ep,
		conn:      conn,
		rdr:       newStreamReader(conn),
		pollSlice: opts.PollSlice,
	}, nil
}

// Send writes raw bytes. No newline is appended; line termination is the
// caller's responsibility and is carriage return, not linefeed, on device
// consoles.
func (s *Session) Send(text string) error {
	if _, err := s.conn.Write([]byte(text)); err != nil {
		return fmt.Errorf("%w: send to %s: %v", cerr.ErrSessionBroken, s.Endpoint.Addr(), err)
	}
	return nil
}

// SendLine sends text terminated with a carriage return.
func (s *Session) SendLine(text string) error {
	return s.Send(text + "\r")
}

// SendAndCollect sends text and performs one bounded receive.
func (s *Session) SendAndCollect(text string, wait time.Duration) (string, error) {
	if err := s.Send(text); err != nil {
		return "", err
	}
	data, _, err := s.rdr.collect(wait)
	return string(data), err
}

// WaitForAny receives in short slices, re-testing the prompt set after each,
// until a pattern matches or maxWait elapses. The accumulated buffer is
// returned in either case: a timeout is a normal, reportable outcome, not an
// error, and the partial transcript is often the most useful diagnostic.
// label is empty when no pattern matched.
func (s *Session) WaitForAny(set PromptSet, maxWait time.Duration) (text, label string, err error) {
	var buf strings.Builder
	deadline := time.Now().Add(maxWait)

	for {
		slice := s.pollSlice
		if rem := time.Until(deadline); rem < slice {
			slice = rem
		}
		if slice <= 0 {
			return buf.String(), "", nil
		}

		data, closed, rerr := s.rdr.collect(slice)
		buf.Write(data)
		if rerr != nil {
			return buf.String(), "", fmt.Errorf("%w: recv from %s: %v",
				cerr.ErrSessionBroken, s.Endpoint.Addr(), rerr)
		}
		if l, ok := Match(buf.String(), set); ok {
			return buf.String(), l, nil
		}
		if closed {
			// nothing more will arrive; hand back what we have
			log.Debugf("console %s closed by peer during wait", s.Endpoint.Addr())
			return buf.String(), "", nil
		}
	}
}

// WaitForPrompt waits for the default shell prompt family.
func (s *Session) WaitForPrompt(maxWait time.Duration) (string, error) {
	text, _, err := s.WaitForAny(ShellPrompts, maxWait)
	return text, err
}

// drain discards stale pending output so that the next wait observes only
// output belonging to the next command.
func (s *Session) drain() {
	data, _, _ := s.rdr.collect(drainWait)
	if len(data) > 0 {
		log.Debugf("console %s drained %d stale bytes", s.Endpoint.Addr(), len(data))
	}
}

// RunCommandExpect drains stale output, sends cmd terminated with a carriage
// return and waits for any pattern in set.
func (s *Session) RunCommandExpect(cmd string, set PromptSet, maxWait time.Duration) (text, label string, err error) {
	s.drain()
	if err := s.SendLine(cmd); err != nil {
		return "", "", err
	}
	return s.WaitForAny(set, maxWait)
}

// RunCommand executes cmd and waits for a shell prompt. The returned text
// corresponds to the command just issued, never to leftovers of a previous
// one.
func (s *Session) RunCommand(cmd string, maxWait time.Duration) (string, error) {
	text, _, err := s.RunCommandExpect(cmd, ShellPrompts, maxWait)
	return text, err
}

// Close releases the socket. It is idempotent.
func (s *Session) Close() error {
	s.closeOnce.Do(func() {
		if s.conn != nil {
			s.closeErr = s.conn.Close()
			log.Debugf("console %s closed", s.Endpoint.Addr())
		}
	})
	return s.closeErr
}

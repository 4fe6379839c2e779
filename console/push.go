package console

import (
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
)

const (
	defaultLineDelay   = 100 * time.Millisecond
	defaultCommandWait = 10 * time.Second
	defaultPersistWait = 60 * time.Second

	// DefaultSaveCommand persists the running configuration.
	DefaultSaveCommand = "write memory"
)

// TranscriptEntry is one captured stage of a configuration push.
type TranscriptEntry struct {
	Stage  string
	Output string
}

// Transcript is the ordered capture of a whole push. It is returned to the
// caller for audit and never parsed back.
type Transcript []TranscriptEntry

func (t Transcript) String() string {
	var b strings.Builder
	for _, e := range t {
		b.WriteString(e.Output)
	}
	return b.String()
}

// Pusher feeds configuration lines through a session. It is a blind line
// feeder: lines go out in caller order, unvalidated, and the device's verdict
// on each line is left in the transcript for the caller to inspect.
type Pusher struct {
	Session *Session

	// LineDelay paces consecutive config lines for line-buffered device input.
	LineDelay time.Duration
	// CommandWait bounds the prompt wait for mode changes.
	CommandWait time.Duration
	// PersistWait bounds the save step, which can be much slower than
	// interactive commands.
	PersistWait time.Duration
	// SaveCommand persists the result; default "write memory".
	SaveCommand string
}

// Push enters configuration mode, sends lines in order, leaves configuration
// mode and persists. The returned transcript always covers every stage
// reached, including when a prompt wait expired.
func (p *Pusher) Push(lines []string) (Transcript, error) {
	if p.LineDelay == 0 {
		p.LineDelay = defaultLineDelay
	}
	if p.CommandWait == 0 {
		p.CommandWait = defaultCommandWait
	}
	if p.PersistWait == 0 {
		p.PersistWait = defaultPersistWait
	}
	if p.SaveCommand == "" {
		p.SaveCommand = DefaultSaveCommand
	}

	var tr Transcript

	out, label, err := p.Session.RunCommandExpect("configure terminal", ConfigPrompt, p.CommandWait)
	tr = append(tr, TranscriptEntry{Stage: "configure terminal", Output: out})
	if err != nil {
		return tr, err
	}
	if label == "" {
		log.Warnf("config mode prompt not seen on %s, pushing anyway", p.Session.Endpoint.Addr())
	}

	for _, line := range lines {
		echo, serr := p.Session.SendAndCollect(line+"\r", p.LineDelay)
		tr = append(tr, TranscriptEntry{Stage: line, Output: echo})
		if serr != nil {
			return tr, serr
		}
	}

	out, err = p.Session.RunCommand("end", p.CommandWait)
	tr = append(tr, TranscriptEntry{Stage: "end", Output: out})
	if err != nil {
		return tr, err
	}

	out, err = p.Session.RunCommand(p.SaveCommand, p.PersistWait)
	tr = append(tr, TranscriptEntry{Stage: p.SaveCommand, Output: out})
	if err != nil {
		return tr, err
	}

	log.Debugf("pushed %d config lines to %s", len(lines), p.Session.Endpoint.Addr())
	return tr, nil
}

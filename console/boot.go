package console

import (
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
)

// BootState names a stage of the first-boot dialog. States are transient:
// they exist only within one Bootstrap call and are never persisted.
type BootState int

const (
	StateAwaitingBanner BootState = iota
	StateAwaitingReturn
	StateAwaitingConfigDialog
	StateAwaitingReprompt
	StateAwaitingAutoinstall
	StateAwaitingPrivilege
	StateReady
)

func (s BootState) String() string {
	switch s {
	case StateAwaitingBanner:
		return "awaiting-banner"
	case StateAwaitingReturn:
		return "awaiting-return"
	case StateAwaitingConfigDialog:
		return "awaiting-config-dialog"
	case StateAwaitingReprompt:
		return "awaiting-reprompt"
	case StateAwaitingAutoinstall:
		return "awaiting-autoinstall"
	case StateAwaitingPrivilege:
		return "awaiting-privilege"
	case StateReady:
		return "ready"
	}
	return "unknown"
}

const (
	// DefaultRepromptLimit caps how many times the yes/no question is
	// re-answered. Firmware may re-ask a nondeterministic number of times;
	// the cap guarantees termination. Undocumented upstream behavior, so it
	// stays configurable.
	DefaultRepromptLimit = 8

	DefaultBootBudget = 4 * time.Minute
	defaultScanWait   = 15 * time.Second
	defaultReadyWait  = 10 * time.Second
)

// Boot-dialog markers, most specific first. A bare prompt is checked last so
// that banner text containing '>' or '#' does not shadow an unanswered
// question.
var bootPrompts = PromptSet{
	MustPattern("press-return", `press return to get started`),
	MustPattern("config-dialog", `enter the initial configuration dialog\?\s*\[yes/no\]`),
	MustPattern("reprompt", `please answer ['"]?yes['"]? or ['"]?no['"]?`),
	MustPattern("autoinstall", `auto.?install|autoconfig`),
	MustPattern("privileged", `#\s*$`),
	MustPattern("unprivileged", `>\s*$`),
}

// BootResult is what a Bootstrap call observed. Transcript is always
// populated, including on budget exhaustion, so the caller can inspect how
// far negotiation got.
type BootResult struct {
	Transcript string
	State      BootState
	Reprompts  int
}

func (r *BootResult) Ready() bool {
	return r.State == StateReady
}

// Negotiator drives a device through its uncertain first-boot dialog until a
// stable privileged prompt is reached. Prompts may or may not appear, may
// repeat, and arrive after variable delay, so after every action the freshly
// accumulated buffer is re-scanned rather than assuming a fixed next state.
type Negotiator struct {
	Session *Session

	// RepromptLimit bounds repeated yes/no answers; default DefaultRepromptLimit.
	RepromptLimit int
	// Budget bounds the whole negotiation; default DefaultBootBudget.
	Budget time.Duration
	// ScanWait bounds each individual scan; default 15s.
	ScanWait time.Duration
}

// Bootstrap runs the boot dialog to completion or budget exhaustion. A
// never-ready device is an advisory outcome carried in the result, not an
// error; only transport failures return a non-nil error, and even then the
// partial transcript is returned alongside.
func (n *Negotiator) Bootstrap() (*BootResult, error) {
	if n.RepromptLimit == 0 {
		n.RepromptLimit = DefaultRepromptLimit
	}
	if n.Budget == 0 {
		n.Budget = DefaultBootBudget
	}
	if n.ScanWait == 0 {
		n.ScanWait = defaultScanWait
	}

	res := &BootResult{State: StateAwaitingBanner}
	var transcript strings.Builder
	deadline := time.Now().Add(n.Budget)

	finish := func(err error) (*BootResult, error) {
		res.Transcript = transcript.String()
		return res, err
	}

	// wake the line
	if err := n.Session.Send("\r\r"); err != nil {
		return finish(err)
	}

	for res.State != StateReady && time.Now().Before(deadline) {
		scan := n.ScanWait
		if rem := time.Until(deadline); rem < scan {
			scan = rem
		}

		buf, label, err := n.Session.WaitForAny(bootPrompts, scan)
		transcript.WriteString(buf)
		if err != nil {
			return finish(err)
		}
		log.Debugf("boot scan on %s: state=%s matched=%q",
			n.Session.Endpoint.Addr(), res.State, label)

		switch label {
		case "press-return":
			res.State = StateAwaitingConfigDialog
			err = n.Session.Send("\r")

		case "config-dialog", "reprompt":
			// The dialog question reappearing counts against the same bound
			// as an explicit re-prompt.
			if res.State == StateAwaitingReprompt {
				if res.Reprompts >= n.RepromptLimit {
					log.Warnf("boot on %s: device still re-asking after %d answers, giving up the dialog",
						n.Session.Endpoint.Addr(), res.Reprompts)
					return finish(nil)
				}
				res.Reprompts++
			}
			res.State = StateAwaitingReprompt
			if err = n.Session.SendLine("no"); err == nil {
				err = n.Session.Send("\r")
			}

		case "autoinstall":
			res.State = StateAwaitingPrivilege
			if err = n.Session.SendLine("no"); err == nil {
				err = n.Session.Send("\r")
			}

		case "unprivileged":
			res.State = StateAwaitingPrivilege
			// blank enable password: the extra carriage return answers an
			// empty Password: prompt if one shows up
			if err = n.Session.SendLine("enable"); err == nil {
				err = n.Session.Send("\r")
			}

		case "privileged":
			out, rerr := n.Session.RunCommand("terminal length 0", n.readyWait(deadline))
			transcript.WriteString(out)
			if rerr != nil {
				return finish(rerr)
			}
			res.State = StateReady

		default:
			// nothing recognizable yet; nudge the line and re-scan
			err = n.Session.Send("\r")
		}
		if err != nil {
			return finish(err)
		}
	}

	if res.State != StateReady {
		log.Warnf("boot on %s: budget exhausted in state %s",
			n.Session.Endpoint.Addr(), res.State)
	}
	return finish(nil)
}

func (n *Negotiator) readyWait(deadline time.Time) time.Duration {
	w := defaultReadyWait
	if rem := time.Until(deadline); rem < w {
		w = rem
	}
	return w
}

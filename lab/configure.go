package lab

import (
	"context"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/evelabs/evectl/console"
	"github.com/evelabs/evectl/eve"
	"github.com/evelabs/evectl/utils"
)

const (
	defaultDialRetries = 5
	defaultVerifyWait  = 20 * time.Second
)

// Report is the per-device outcome of a configure run. Transcripts are
// always populated as far as the workflow got, so a failure can be diagnosed
// without re-running.
type Report struct {
	RunID    string
	Node     string
	Endpoint console.Endpoint

	Boot   *console.BootResult
	Config console.Transcript
	Verify console.Transcript

	// Err is fatal only: connect failures and broken sessions. Advisory
	// timeouts live inside the transcripts.
	Err error
}

// Configurer drives the console of every router in a deployed topology: boot
// negotiation, config push, verification. Devices are independent; each one
// is handled by its own goroutine with its own exclusively-owned session.
type Configurer struct {
	Client *eve.Client
	Topo   *Topology

	// DialRetries bounds console connect attempts per device. Retrying lives
	// here, in the caller, not in the console core.
	DialRetries uint64
	Dial        console.DialOptions
	BootBudget  time.Duration
	VerifyWait  time.Duration
}

func NewConfigurer(client *eve.Client, topo *Topology) *Configurer {
	return &Configurer{Client: client, Topo: topo}
}

// Configure runs all routers concurrently and returns one report per router,
// in topology order.
func (c *Configurer) Configure(ctx context.Context) []*Report {
	if c.DialRetries == 0 {
		c.DialRetries = defaultDialRetries
	}
	if c.VerifyWait == 0 {
		c.VerifyWait = defaultVerifyWait
	}

	runID := uuid.New().String()
	reports := make([]*Report, len(c.Topo.Routers))

	var wg sync.WaitGroup
	for i, r := range c.Topo.Routers {
		wg.Add(1)
		go func(i int, r RouterSpec) {
			defer wg.Done()
			reports[i] = c.configureNode(ctx, runID, r)
		}(i, r)
	}
	wg.Wait()

	return reports
}

func (c *Configurer) configureNode(ctx context.Context, runID string, r RouterSpec) *Report {
	rep := &Report{RunID: runID, Node: r.Name}

	info, err := c.Client.ConsoleEndpoint(ctx, c.Topo.Name, c.Topo.Folder, r.Name)
	if err != nil {
		rep.Err = errors.Wrapf(err, "resolving console for %s", r.Name)
		return rep
	}
	rep.Endpoint = info.Endpoint

	var lines []string
	if r.Config != "" {
		lines, err = utils.ReadLines(r.Config)
		if err != nil {
			rep.Err = errors.Wrapf(err, "reading config for %s", r.Name)
			return rep
		}
	}

	var sess *console.Session
	dial := func() error {
		var derr error
		sess, derr = console.Dial(info.Endpoint, c.Dial)
		return derr
	}
	bo := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewExponentialBackOff(), c.DialRetries), ctx)
	if err := backoff.RetryNotify(dial, bo, func(err error, next time.Duration) {
		log.Debugf("console dial %s failed (%v), retrying in %s", info.Endpoint, err, next)
	}); err != nil {
		rep.Err = errors.Wrapf(err, "connecting console of %s", r.Name)
		return rep
	}
	defer sess.Close()

	neg := &console.Negotiator{Session: sess, Budget: c.BootBudget}
	rep.Boot, err = neg.Bootstrap()
	if err != nil {
		rep.Err = errors.Wrapf(err, "boot negotiation on %s", r.Name)
		return rep
	}
	if !rep.Boot.Ready() {
		log.Warnf("%s: boot did not reach a ready prompt (state %s), transcript tail: %s",
			r.Name, rep.Boot.State, utils.Tail(rep.Boot.Transcript, 200))
	}

	if len(lines) > 0 {
		pusher := &console.Pusher{Session: sess}
		rep.Config, err = pusher.Push(lines)
		if err != nil {
			rep.Err = errors.Wrapf(err, "config push to %s", r.Name)
			return rep
		}
		log.Infof("%s: pushed %d config lines", r.Name, len(lines))
	}

	for _, cmd := range r.Verify {
		out, err := sess.RunCommand(cmd, c.VerifyWait)
		rep.Verify = append(rep.Verify, console.TranscriptEntry{Stage: cmd, Output: out})
		if err != nil {
			rep.Err = errors.Wrapf(err, "running %q on %s", cmd, r.Name)
			return rep
		}
	}

	return rep
}

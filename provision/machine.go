package provision

import (
	"context"
	"time"
)

const (
	// ConnectedWait is how long to wait before checking a connected interface again.
	ConnectedWait = 5 * time.Minute

	// RetryWait is how long to wait after an attempt to connect.
	RetryWait = 1 * time.Minute
)

type State int

const (
	StateCheck State = iota
	StateScanAndConnect
	StateWaitLong
	StateWaitShort
)

func (s State) String() string {
	switch s {
	case StateCheck:
		return "CHECK"
	case StateScanAndConnect:
		return "SCAN_AND_CONNECT"
	case StateWaitLong:
		return "WAIT_LONG"
	case StateWaitShort:
		return "WAIT_SHORT"
	default:
		return "INVALID STATE"
	}
}

// Run drives the provisioning loop until ctx is cancelled. Cancellation is
// only looked at before each check: a scan or connection attempt in progress
// runs to completion, while a pending wait ends early.
func (p *Provisioner) Run(ctx context.Context) error {
	p.log.Debugf("Starting...")

	// work in flight is not interrupted by a stop
	work := context.WithoutCancel(ctx)

	state := StateCheck

	for {
		if state == StateCheck && ctx.Err() != nil {
			p.log.Infof("Stopped provisioning %v", p.iface)
			return nil
		}

		state = p.step(ctx, work, state)
	}
}

func (p *Provisioner) step(ctx context.Context, work context.Context, state State) State {
	switch state {
	case StateCheck:
		if p.prober.Connected(work, p.iface) {
			p.log.Debugf("Already connected. Waiting %v before checking again.", ConnectedWait)
			return StateWaitLong
		}

		p.log.Debugf("Not connected. Looking for new WiFi credentials...")

		return StateScanAndConnect
	case StateScanAndConnect:
		p.AcquireAndConnect(work)

		return StateWaitShort
	case StateWaitLong:
		p.sleep(ctx, ConnectedWait)

		return StateCheck
	case StateWaitShort:
		p.log.Debugf("Waiting %v before trying again", RetryWait)
		p.sleep(ctx, RetryWait)

		return StateCheck
	default:
		p.log.Errorf("Unknown state %v, checking again", state)

		return StateCheck
	}
}

func (p *Provisioner) sleep(ctx context.Context, d time.Duration) {
	select {
	case <-p.clock.After(d):
	case <-ctx.Done():
	}
}

package radio

import (
	"context"
	"strconv"
	"sync"
)

const iwconfig = "iwconfig"

type Mode string

const (
	ModeMonitor Mode = "monitor"
	ModeManaged Mode = "Managed"
)

type Config struct {
	Interface string
	Runner    Runner
	Logger    Logger
}

// Monitor holds an interface in monitor mode until Close is called.
// Radio commands are best effort: failures are logged and never abort the
// scope, so that the managed mode is always restored.
type Monitor struct {
	iface     string
	runner    Runner
	log       Logger
	closeOnce sync.Once
}

// Enter switches the interface into monitor mode. The returned Monitor must be
// closed, which puts the interface back into managed mode.
func Enter(ctx context.Context, config *Config) *Monitor {
	m := &Monitor{
		iface:  config.Interface,
		runner: config.Runner,
	}

	if m.runner == nil {
		m.runner = ExecRunner{}
	}

	if config.Logger != nil {
		m.log = config.Logger
	} else {
		m.log = noopLogger{}
	}

	m.log.Debugf("Entering monitor mode on %v", m.iface)
	m.setMode(ctx, ModeMonitor)

	return m
}

// WithMonitorMode runs fn while the interface is in monitor mode. Managed mode
// is restored on every way out of fn, including a panic.
func WithMonitorMode(ctx context.Context, config *Config, fn func(m *Monitor) error) error {
	m := Enter(ctx, config)
	defer m.Close()

	return fn(m)
}

// SetChannel tunes the radio and waits for the command to complete.
func (m *Monitor) SetChannel(ctx context.Context, channel int) {
	m.run(ctx, iwconfig, m.iface, "channel", strconv.Itoa(channel))
}

// Close restores managed mode. It is safe to call more than once; only the
// first call issues the command. Cancellation of the caller's context does not
// prevent the restore.
func (m *Monitor) Close() {
	m.closeOnce.Do(func() {
		m.log.Debugf("Exiting monitor mode on %v", m.iface)
		m.setMode(context.Background(), ModeManaged)
	})
}

func (m *Monitor) setMode(ctx context.Context, mode Mode) {
	m.run(ctx, iwconfig, m.iface, "mode", string(mode))
}

func (m *Monitor) run(ctx context.Context, name string, args ...string) {
	stdout, stderr, err := m.runner.Run(ctx, name, args...)

	m.log.Debugf("%v %v stdout: %q", name, args, stdout)
	m.log.Debugf("%v %v stderr: %q", name, args, stderr)

	if err != nil {
		m.log.Warnf("Radio command %v %v failed: %v", name, args, err)
	}
}

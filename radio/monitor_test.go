package radio

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/go-errors/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingRunner struct {
	mu       sync.Mutex
	commands []string
	fail     bool
}

func (r *recordingRunner) Run(ctx context.Context, name string, args ...string) ([]byte, []byte, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.commands = append(r.commands, name+" "+strings.Join(args, " "))

	if r.fail {
		return nil, []byte("Operation not supported"), errors.New("exit status 1")
	}

	return nil, nil, nil
}

func (r *recordingRunner) count(command string) int {
	n := 0
	for _, c := range r.commands {
		if c == command {
			n++
		}
	}
	return n
}

func TestWithMonitorModeOrder(t *testing.T) {
	runner := &recordingRunner{}

	err := WithMonitorMode(context.Background(), &Config{Interface: "wlan0", Runner: runner}, func(m *Monitor) error {
		m.SetChannel(context.Background(), 1)
		m.SetChannel(context.Background(), 2)
		return nil
	})
	require.NoError(t, err)

	assert.Equal(t, []string{
		"iwconfig wlan0 mode monitor",
		"iwconfig wlan0 channel 1",
		"iwconfig wlan0 channel 2",
		"iwconfig wlan0 mode Managed",
	}, runner.commands)
}

func TestWithMonitorModeRestoresOnError(t *testing.T) {
	runner := &recordingRunner{}
	bodyErr := errors.New("body failed")

	err := WithMonitorMode(context.Background(), &Config{Interface: "wlan0", Runner: runner}, func(m *Monitor) error {
		m.SetChannel(context.Background(), 3)
		return bodyErr
	})

	assert.Equal(t, bodyErr, err)
	assert.Equal(t, 1, runner.count("iwconfig wlan0 mode Managed"))
	assert.Equal(t, "iwconfig wlan0 mode Managed", runner.commands[len(runner.commands)-1])
}

func TestWithMonitorModeRestoresOnPanic(t *testing.T) {
	runner := &recordingRunner{}

	assert.Panics(t, func() {
		_ = WithMonitorMode(context.Background(), &Config{Interface: "wlan0", Runner: runner}, func(m *Monitor) error {
			m.SetChannel(context.Background(), 4)
			panic("mid-iteration")
		})
	})

	assert.Equal(t, 1, runner.count("iwconfig wlan0 mode Managed"))
}

func TestMonitorCloseIsIdempotent(t *testing.T) {
	runner := &recordingRunner{}

	m := Enter(context.Background(), &Config{Interface: "wlan1", Runner: runner})
	m.Close()
	m.Close()

	assert.Equal(t, 1, runner.count("iwconfig wlan1 mode Managed"))
}

func TestMonitorRestoresAfterCancel(t *testing.T) {
	runner := &recordingRunner{}
	ctx, cancel := context.WithCancel(context.Background())

	m := Enter(ctx, &Config{Interface: "wlan0", Runner: runner})
	cancel()
	m.Close()

	assert.Equal(t, 1, runner.count("iwconfig wlan0 mode Managed"))
}

func TestMonitorIgnoresCommandFailures(t *testing.T) {
	runner := &recordingRunner{fail: true}
	called := false

	err := WithMonitorMode(context.Background(), &Config{Interface: "wlan0", Runner: runner}, func(m *Monitor) error {
		called = true
		m.SetChannel(context.Background(), 6)
		return nil
	})

	require.NoError(t, err)
	assert.True(t, called)
	assert.Len(t, runner.commands, 3)
}

func TestExecRunner(t *testing.T) {
	stdout, _, err := ExecRunner{}.Run(context.Background(), "/bin/sh", "-c", "echo hello")
	require.NoError(t, err)
	assert.Equal(t, "hello\n", string(stdout))

	_, stderr, err := ExecRunner{}.Run(context.Background(), "/bin/sh", "-c", "echo oops >&2; exit 3")
	assert.Error(t, err)
	assert.Equal(t, "oops\n", string(stderr))
}

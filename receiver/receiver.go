package receiver

import (
	"bytes"
	"context"
	"os/exec"
	"strings"
	"time"

	"github.com/go-errors/errors"
)

const (
	DefaultPath        = "/root/unassociated_transfer/receive_wifi.py"
	DefaultInterpreter = "/usr/bin/python"
)

var (
	// ErrTimeout is returned when the helper did not finish in time.
	ErrTimeout = errors.New("timed out receiving credentials")

	// ErrMalformed is returned when the helper printed something that is not
	// a single name:passphrase line.
	ErrMalformed = errors.New("malformed credentials")
)

// Credentials received out of band. They are handed on once and not kept.
type Credentials struct {
	Name       string
	Passphrase string
}

func (c *Credentials) String() string {
	return c.Name + ":" + strings.Repeat("*", len(c.Passphrase))
}

type Config struct {
	// Path of the helper. It receives the interface name as its only argument.
	Path string

	// Interpreter runs the helper when set, e.g. a python binary.
	Interpreter string

	// KillOnTimeout kills the helper when the wait times out. Without it the
	// helper is left running on its own.
	KillOnTimeout bool

	Logger Logger
}

type Receiver struct {
	path          string
	interpreter   string
	killOnTimeout bool
	log           Logger
}

func New(config *Config) *Receiver {
	r := &Receiver{
		path:          config.Path,
		interpreter:   config.Interpreter,
		killOnTimeout: config.KillOnTimeout,
	}

	if r.path == "" {
		r.path = DefaultPath
	}

	if config.Logger != nil {
		r.log = config.Logger
	} else {
		r.log = noopLogger{}
	}

	return r
}

func (r *Receiver) command(iface string) (string, []string) {
	if r.interpreter == "" {
		return r.path, []string{iface}
	}

	return r.interpreter, []string{r.path, iface}
}

// Receive runs the helper for iface and waits at most timeout for it to exit.
// It returns nil credentials when the helper printed nothing.
func (r *Receiver) Receive(ctx context.Context, iface string, timeout time.Duration) (*Credentials, error) {
	r.log.Debugf("Receiving WiFi info on %v", iface)

	var stdout, stderr bytes.Buffer

	name, args := r.command(iface)
	cmd := exec.Command(name, args...)
	cmd.Stdout, cmd.Stderr = &stdout, &stderr

	if err := cmd.Start(); err != nil {
		return nil, errors.Errorf("could not start %v: %v", name, err)
	}

	// buffered so the waiter can finish even when nobody listens anymore
	exited := make(chan error, 1)
	go func() {
		exited <- cmd.Wait()
	}()

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case err := <-exited:
		r.log.Debugf("Helper wrote %d bytes to stdout", stdout.Len())
		r.log.Debugf("Helper stderr: %q", stderr.String())

		if err != nil {
			r.log.Warnf("Helper exited with %v", err)
		}

		if strings.TrimSpace(stdout.String()) == "" {
			return nil, nil
		}

		return ParseCredentials(stdout.String())
	case <-timer.C:
		r.log.Debugf("Timing out receiving WiFi info after %v", timeout)
		r.abandon(cmd)
		return nil, ErrTimeout
	case <-ctx.Done():
		r.abandon(cmd)
		return nil, ctx.Err()
	}
}

func (r *Receiver) abandon(cmd *exec.Cmd) {
	if !r.killOnTimeout {
		r.log.Debugf("Leaving helper %v running", cmd.Process.Pid)
		return
	}

	if err := cmd.Process.Kill(); err != nil {
		r.log.Warnf("Could not kill helper %v: %v", cmd.Process.Pid, err)
	}
}

// ParseCredentials parses a name:passphrase line. The name ends at the first
// colon, so passphrases may contain colons while names may not.
func ParseCredentials(out string) (*Credentials, error) {
	line := strings.TrimSpace(out)

	if strings.ContainsAny(line, "\r\n") {
		return nil, ErrMalformed
	}

	name, passphrase, found := strings.Cut(line, ":")
	if !found || name == "" {
		return nil, ErrMalformed
	}

	return &Credentials{
		Name:       name,
		Passphrase: passphrase,
	}, nil
}

package service

import (
	"context"
	"time"

	sd "github.com/coreos/go-systemd/v22/dbus"
)

const (
	DefaultUnit    = "sensor.service"
	restartTimeout = 90 * time.Second
)

type SystemdConfig struct {
	Unit   string
	Logger Logger
}

// SystemdRestarter restarts a systemd unit over the system bus.
type SystemdRestarter struct {
	unit string
	log  Logger
}

var _ Restarter = (*SystemdRestarter)(nil)

func NewSystemdRestarter(config *SystemdConfig) *SystemdRestarter {
	r := &SystemdRestarter{
		unit: config.Unit,
	}

	if r.unit == "" {
		r.unit = DefaultUnit
	}

	if config.Logger != nil {
		r.log = config.Logger
	} else {
		r.log = noopLogger{}
	}

	return r
}

func (r *SystemdRestarter) Restart(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, restartTimeout)
	defer cancel()

	conn, err := sd.NewSystemConnectionContext(ctx)
	if err != nil {
		r.log.Errorf("Could not connect to systemd: %v", err)
		return false
	}

	defer conn.Close()

	r.log.Infof("Restarting %v", r.unit)

	result := make(chan string, 1)

	_, err = conn.RestartUnitContext(ctx, r.unit, "replace", result)
	if err != nil {
		r.log.Errorf("Could not restart %v: %v", r.unit, err)
		return false
	}

	select {
	case res := <-result:
		if res != "done" {
			r.log.Errorf("Restarting %v finished with %v", r.unit, res)
			return false
		}

		r.log.Infof("Restarted %v", r.unit)

		return true
	case <-ctx.Done():
		r.log.Errorf("Restarting %v did not finish: %v", r.unit, ctx.Err())
		return false
	}
}

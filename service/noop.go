package service

import "context"

type NoopRestarter struct {
	log Logger
}

// Compile time check for protocol compatibility
var _ Restarter = (*NoopRestarter)(nil)

func NewNoopRestarter(logger Logger) *NoopRestarter {
	if logger == nil {
		logger = noopLogger{}
	}

	return &NoopRestarter{log: logger}
}

func (n *NoopRestarter) Restart(ctx context.Context) bool {
	n.log.Infof("No service to restart")

	return true
}

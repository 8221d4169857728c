package service

import "context"

// Restarter restarts the service that depends on the network connection.
type Restarter interface {
	// Restart reports whether the service came back up.
	Restart(ctx context.Context) bool
}

package provision

import (
	"context"
	"net"

	"github.com/juju/clock"
	"github.com/the-lightning-land/wificonnect/receiver"
	"github.com/the-lightning-land/wificonnect/wifi"
)

// Prober tells whether the interface is connected. It does not fail.
type Prober interface {
	Connected(ctx context.Context, iface string) bool
}

// Listener looks for credentials broadcast out of band.
type Listener interface {
	Listen(ctx context.Context) *receiver.Credentials
}

// Notifier announces a successful connection to the coordinator.
type Notifier interface {
	Notify(ctx context.Context) error
}

// Restarter restarts the service depending on the connection.
type Restarter interface {
	Restart(ctx context.Context) bool
}

// Control is the part of wifi.Control needed to store and join a network.
type Control interface {
	Configured(ctx context.Context, iface string) (bool, error)
	Replace(ctx context.Context, iface string, network wifi.Network, passphrase string) error
	Connect(ctx context.Context, iface string) (net.IP, error)
}

type Config struct {
	Interface string
	Control   Control
	Prober    Prober
	Listener  Listener
	Notifier  Notifier
	Restarter Restarter
	Clock     clock.Clock
	Logger    Logger
}

// Provisioner keeps a headless device connected: whenever the interface is
// offline it listens for credentials, stores them, connects and reports back.
type Provisioner struct {
	iface     string
	control   Control
	prober    Prober
	listener  Listener
	notifier  Notifier
	restarter Restarter
	clock     clock.Clock
	log       Logger
}

func New(config *Config) *Provisioner {
	p := &Provisioner{
		iface:     config.Interface,
		control:   config.Control,
		prober:    config.Prober,
		listener:  config.Listener,
		notifier:  config.Notifier,
		restarter: config.Restarter,
		clock:     config.Clock,
	}

	if p.clock == nil {
		p.clock = clock.WallClock
	}

	if config.Logger != nil {
		p.log = config.Logger
	} else {
		p.log = noopLogger{}
	}

	return p
}

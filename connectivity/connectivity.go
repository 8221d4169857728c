package connectivity

import (
	"context"
	"net"
)

type State int

const (
	Offline State = iota
	Online
)

func (s State) String() string {
	switch s {
	case Offline:
		return "OFFLINE"
	case Online:
		return "ONLINE"
	default:
		return "INVALID STATE"
	}
}

// AddressQuerier reports the address currently assigned to an interface,
// or a nil address if there is none.
type AddressQuerier interface {
	IPAddress(ctx context.Context, iface string) (net.IP, error)
}

type Config struct {
	Querier AddressQuerier
	Logger  Logger
}

// Prober answers whether an interface is connected. It never fails: any
// problem while querying the interface is logged and reported as Offline.
type Prober struct {
	querier AddressQuerier
	log     Logger
}

func NewProber(config *Config) *Prober {
	prober := &Prober{
		querier: config.Querier,
	}

	if config.Logger != nil {
		prober.log = config.Logger
	} else {
		prober.log = noopLogger{}
	}

	return prober
}

// State queries the interface afresh on every call.
func (p *Prober) State(ctx context.Context, iface string) (state State) {
	defer func() {
		if r := recover(); r != nil {
			p.log.Errorf("Unable to determine if %v is connected: %v", iface, r)
			state = Offline
		}
	}()

	ip, err := p.querier.IPAddress(ctx, iface)
	if err != nil {
		p.log.Errorf("Unable to determine if %v is connected: %v", iface, err)
		return Offline
	}

	if ip == nil {
		return Offline
	}

	p.log.Debugf("Interface %v has address %v", iface, ip)

	return Online
}

func (p *Prober) Connected(ctx context.Context, iface string) bool {
	return p.State(ctx, iface) == Online
}

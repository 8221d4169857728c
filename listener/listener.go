package listener

import (
	"context"
	"time"

	"github.com/go-errors/errors"
	"github.com/the-lightning-land/wificonnect/radio"
	"github.com/the-lightning-land/wificonnect/receiver"
)

// ReceiveTimeout bounds the wait for credentials on a single channel.
const ReceiveTimeout = 15 * time.Second

// Channels are visited in this order. The transmitting side cycles through
// the same set, so neither the set nor the order may change.
var Channels = [...]int{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11}

// Receiver obtains credentials while the radio listens on the current channel.
type Receiver interface {
	Receive(ctx context.Context, iface string, timeout time.Duration) (*receiver.Credentials, error)
}

type Config struct {
	Interface string
	Runner    radio.Runner
	Receiver  Receiver
	Logger    Logger
}

type Listener struct {
	iface    string
	runner   radio.Runner
	receiver Receiver
	log      Logger
}

func New(config *Config) *Listener {
	l := &Listener{
		iface:    config.Interface,
		runner:   config.Runner,
		receiver: config.Receiver,
	}

	if config.Logger != nil {
		l.log = config.Logger
	} else {
		l.log = noopLogger{}
	}

	return l
}

// Listen hops through all channels in monitor mode and returns the first
// credentials received, or nil when every channel came up empty. The
// interface is back in managed mode when Listen returns.
func (l *Listener) Listen(ctx context.Context) *receiver.Credentials {
	var credentials *receiver.Credentials

	_ = radio.WithMonitorMode(ctx, &radio.Config{
		Interface: l.iface,
		Runner:    l.runner,
		Logger:    l.log,
	}, func(m *radio.Monitor) error {
		for _, channel := range Channels {
			l.log.Debugf("Setting channel to %v", channel)
			m.SetChannel(ctx, channel)

			c, err := l.receiver.Receive(ctx, l.iface, ReceiveTimeout)
			switch {
			case err == nil && c != nil:
				l.log.Infof("Received WiFi info for %v on channel %v", c.Name, channel)
				credentials = c
				return nil
			case err == nil:
				l.log.Debugf("No WiFi info on channel %v", channel)
			case errors.Is(err, receiver.ErrTimeout):
				l.log.Debugf("No WiFi info on channel %v within %v", channel, ReceiveTimeout)
			case errors.Is(err, receiver.ErrMalformed):
				l.log.Warnf("Ignoring malformed WiFi info on channel %v", channel)
			default:
				l.log.Errorf("Could not receive WiFi info on channel %v: %v", channel, err)
			}
		}

		return nil
	})

	return credentials
}

package provision

import (
	"context"

	"github.com/go-errors/errors"
	"github.com/google/uuid"
	"github.com/the-lightning-land/wificonnect/wifi"
)

// credentialEncryption is the only scheme received credentials are stored as.
const credentialEncryption = "wpa"

// AcquireAndConnect runs one cycle: listen for credentials, store them,
// connect, then notify the coordinator and restart the dependent service.
// Every failure is logged and ends the cycle; it reports whether the
// interface got connected.
func (p *Provisioner) AcquireAndConnect(ctx context.Context) bool {
	cycle := uuid.New().String()[:8]

	p.log.Debugf("[%v] Looking for new WiFi credentials on %v", cycle, p.iface)

	credentials := p.listener.Listen(ctx)
	if credentials == nil {
		p.log.Infof("[%v] No WiFi credentials received", cycle)
		return false
	}

	p.log.Debugf("[%v] Saving WiFi credentials %v", cycle, credentials)

	network := wifi.Network{
		Ssid:       credentials.Name,
		Encryption: credentialEncryption,
	}

	err := p.control.Replace(ctx, p.iface, network, credentials.Passphrase)
	switch {
	case err == nil:
	case errors.Is(err, wifi.ErrUnsupportedSecurity):
		p.log.Errorf("[%v] Unknown security protocol for %v", cycle, network.Ssid)
		return false
	default:
		p.log.Errorf("[%v] Could not save WiFi credentials: %v", cycle, err)
		return false
	}

	configured, err := p.control.Configured(ctx, p.iface)
	if err != nil {
		p.log.Errorf("[%v] Could not check for WiFi credentials: %v", cycle, err)
		return false
	}

	if !configured {
		p.log.Warnf("[%v] No WiFi credentials configured after saving", cycle)
		return false
	}

	p.log.Debugf("[%v] We have WiFi credentials, so we are trying to connect", cycle)

	ip, err := p.control.Connect(ctx, p.iface)
	switch {
	case errors.Is(err, wifi.ErrNotConfigured):
		p.log.Warnf("[%v] Could not connect, no network configured", cycle)
		return false
	case err != nil:
		p.log.Errorf("[%v] Could not connect: %v", cycle, err)
		return false
	case ip == nil:
		p.log.Infof("[%v] Not connected!", cycle)
		return false
	}

	p.log.Infof("[%v] Connected to %v (%v)!", cycle, network.Ssid, ip)

	p.announce(ctx, cycle)

	return true
}

// announce pings the coordinator, then restarts the dependent service.
// Neither failure affects the connection that was just made.
func (p *Provisioner) announce(ctx context.Context, cycle string) {
	p.log.Debugf("[%v] Pinging coordinator", cycle)

	err := p.notifier.Notify(ctx)
	if err != nil {
		p.log.Errorf("[%v] Could not ping coordinator: %v", cycle, err)
	}

	p.log.Debugf("[%v] Restarting service", cycle)

	if !p.restarter.Restart(ctx) {
		p.log.Errorf("[%v] Could not restart service", cycle)
	}
}

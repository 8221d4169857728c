package wifi

import (
	"context"
	"net"
	"sync"
	"time"

	"github.com/go-errors/errors"
	"github.com/the-lightning-land/wificonnect/wifi/wpa"
)

const (
	associateTimeout = 30 * time.Second
	dhcpTimeout      = 30 * time.Second
	scanTimeout      = 15 * time.Second
	pollInterval     = 500 * time.Millisecond
)

// check WpaControl compliance to its interface during compile time
var _ Control = (*WpaControl)(nil)

type WpaConfig struct {
	Logger Logger
}

// WpaControl implements Control on top of a running wpa_supplicant. Profiles
// added here live as long as wpa_supplicant does; wrap it in a
// PersistentControl to keep them across restarts.
type WpaControl struct {
	log    Logger
	wpa    *wpa.Wpa
	mu     sync.Mutex
	ifaces map[string]*wpa.Interface
}

func NewWpaControl(config *WpaConfig) *WpaControl {
	c := &WpaControl{
		wpa:    wpa.New(),
		ifaces: make(map[string]*wpa.Interface),
	}

	if config.Logger != nil {
		c.log = config.Logger
	} else {
		c.log = noopLogger{}
	}

	return c
}

func (c *WpaControl) Start() error {
	err := c.wpa.Start()
	if err != nil {
		return errors.Errorf("could not start wpa: %v", err)
	}

	return nil
}

func (c *WpaControl) Stop() error {
	err := c.wpa.Stop()
	if err != nil {
		return errors.Errorf("could not stop wpa: %v", err)
	}

	return nil
}

func (c *WpaControl) iface(ifname string) (*wpa.Interface, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if iface, ok := c.ifaces[ifname]; ok {
		return iface, nil
	}

	iface, err := c.wpa.GetInterface(ifname)
	if err != nil {
		return nil, errors.Errorf("could not find interface %v: %v", ifname, err)
	}

	c.ifaces[ifname] = iface

	return iface, nil
}

func (c *WpaControl) IPAddress(ctx context.Context, ifname string) (net.IP, error) {
	return ipv4Address(ifname)
}

func (c *WpaControl) Configured(ctx context.Context, ifname string) (bool, error) {
	iface, err := c.iface(ifname)
	if err != nil {
		return false, err
	}

	networks, err := iface.Networks()
	if err != nil {
		return false, err
	}

	return len(networks) > 0, nil
}

func (c *WpaControl) Replace(ctx context.Context, ifname string, network Network, passphrase string) error {
	if !network.IsWpa() {
		return ErrUnsupportedSecurity
	}

	iface, err := c.iface(ifname)
	if err != nil {
		return err
	}

	err = iface.RemoveAllNetworks()
	if err != nil {
		return err
	}

	_, err = iface.AddNetwork(network.Ssid, passphrase)
	if err != nil {
		return err
	}

	c.log.Infof("Configured %v for network %v", ifname, network.Ssid)

	return nil
}

func (c *WpaControl) Connect(ctx context.Context, ifname string) (net.IP, error) {
	iface, err := c.iface(ifname)
	if err != nil {
		return nil, err
	}

	networks, err := iface.Networks()
	if err != nil {
		return nil, err
	}

	if len(networks) == 0 {
		return nil, ErrNotConfigured
	}

	err = iface.SelectNetwork(networks[0])
	if err != nil {
		return nil, err
	}

	if !c.waitAssociated(ctx, iface) {
		c.log.Warnf("Could not associate %v within %v", ifname, associateTimeout)
		return nil, nil
	}

	err = requestLease(ctx, ifname, dhcpTimeout)
	if err != nil {
		c.log.Warnf("Could not obtain an address on %v: %v", ifname, err)
		return nil, nil
	}

	return ipv4Address(ifname)
}

func (c *WpaControl) waitAssociated(ctx context.Context, iface *wpa.Interface) bool {
	ctx, cancel := context.WithTimeout(ctx, associateTimeout)
	defer cancel()

	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		state, err := iface.State()
		if err != nil {
			c.log.Warnf("Could not read interface state: %v", err)
		} else if state == wpa.StateCompleted {
			return true
		}

		select {
		case <-ctx.Done():
			return false
		case <-ticker.C:
		}
	}
}

func (c *WpaControl) Scan(ctx context.Context, ifname string) ([]Network, error) {
	iface, err := c.iface(ifname)
	if err != nil {
		return nil, err
	}

	doneClient, err := iface.ScanDone()
	if err != nil {
		return nil, errors.Errorf("unable to listen to scan completion: %v", err)
	}

	defer doneClient.Cancel()

	err = iface.Scan()
	if err != nil {
		return nil, errors.Errorf("unable to scan: %v", err)
	}

	ctx, cancel := context.WithTimeout(ctx, scanTimeout)
	defer cancel()

	select {
	case success := <-doneClient.ScanDone:
		if !success {
			c.log.Warnf("Scan on %v did not succeed, listing cached results", ifname)
		}
	case <-ctx.Done():
		c.log.Warnf("Scan on %v did not finish in time, listing cached results", ifname)
	}

	bsss, err := iface.BSSs()
	if err != nil {
		return nil, errors.Errorf("unable to get BSSs: %v", err)
	}

	var networks []Network

	for _, bss := range bsss {
		b, err := bss.GetAll()
		if err != nil {
			c.log.Debugf("Skipping %v: %v", bss, err)
			continue
		}

		networks = append(networks, Network{
			Ssid:       b.Ssid,
			Encryption: b.Encryption,
		})
	}

	return networks, nil
}

func (c *WpaControl) Ssid(ctx context.Context, ifname string) (string, error) {
	iface, err := c.iface(ifname)
	if err != nil {
		return "", err
	}

	bss, err := iface.CurrentBSS()
	if err != nil {
		return "", err
	}

	if bss == nil {
		return "", nil
	}

	b, err := bss.GetAll()
	if err != nil {
		return "", err
	}

	return b.Ssid, nil
}

package wifi

import (
	"context"
	"net"
	"time"

	"github.com/go-errors/errors"
	"github.com/the-lightning-land/wificonnect/wifidb"
)

// PersistentControl stores every replaced profile in the database so it can
// be restored after a restart.
type PersistentControl struct {
	Control
	db  *wifidb.DB
	log Logger
}

var _ Control = (*PersistentControl)(nil)

type PersistentConfig struct {
	Control Control
	DB      *wifidb.DB
	Logger  Logger
}

func NewPersistentControl(config *PersistentConfig) *PersistentControl {
	c := &PersistentControl{
		Control: config.Control,
		db:      config.DB,
	}

	if config.Logger != nil {
		c.log = config.Logger
	} else {
		c.log = noopLogger{}
	}

	return c
}

func (c *PersistentControl) Replace(ctx context.Context, iface string, network Network, passphrase string) error {
	err := c.Control.Replace(ctx, iface, network, passphrase)
	if err != nil {
		return err
	}

	err = c.db.SetProfile(iface, &wifidb.Profile{
		Ssid:       network.Ssid,
		Encryption: network.Encryption,
		Psk:        passphrase,
		Updated:    time.Now(),
	})
	if err != nil {
		return errors.Errorf("could not save profile of %v: %v", iface, err)
	}

	return nil
}

// Restore configures the interface with its saved profile and connects it.
// It returns a nil address when there is no saved profile.
func (c *PersistentControl) Restore(ctx context.Context, iface string) (net.IP, error) {
	profile, err := c.db.GetProfile(iface)
	if err != nil {
		return nil, errors.Errorf("could not read saved profile: %v", err)
	}

	if profile == nil {
		c.log.Debugf("No saved wifi profile for %v", iface)
		return nil, nil
	}

	c.log.Infof("Will attempt connecting %v to saved wifi %v", iface, profile.Ssid)

	err = c.Control.Replace(ctx, iface, Network{
		Ssid:       profile.Ssid,
		Encryption: profile.Encryption,
	}, profile.Psk)
	if err != nil {
		return nil, errors.Errorf("could not configure saved wifi: %v", err)
	}

	return c.Control.Connect(ctx, iface)
}

package wifi

import (
	"context"
	"net"
	"strings"

	"github.com/go-errors/errors"
)

var (
	ErrUnsupportedSecurity = errors.New("only WPA or WPA2 secured networks are supported")
	ErrNotConfigured       = errors.New("no network configured")
)

// Network is a wireless network by name and security scheme. An empty
// Encryption means an open network.
type Network struct {
	Ssid       string
	Encryption string
}

func (n Network) IsWpa() bool {
	return strings.HasPrefix(n.Encryption, "wpa")
}

// Control manages the network profiles and connection of wireless interfaces.
type Control interface {
	// IPAddress returns the IPv4 address of the interface, nil if it has none.
	IPAddress(ctx context.Context, iface string) (net.IP, error)

	// Configured reports whether a network profile exists for the interface.
	Configured(ctx context.Context, iface string) (bool, error)

	// Replace drops all profiles of the interface in favour of the given one.
	Replace(ctx context.Context, iface string, network Network, passphrase string) error

	// Connect joins the configured network and returns the obtained address,
	// or nil if none could be obtained.
	Connect(ctx context.Context, iface string) (net.IP, error)

	// Scan lists the networks in range.
	Scan(ctx context.Context, iface string) ([]Network, error)

	// Ssid returns the name of the network the interface is associated with.
	Ssid(ctx context.Context, iface string) (string, error)
}

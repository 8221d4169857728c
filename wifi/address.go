package wifi

import (
	"context"
	"net"
	"time"

	"github.com/go-errors/errors"
	"github.com/u-root/u-root/pkg/dhclient"
	"github.com/vishvananda/netlink"
	"golang.org/x/sys/unix"
)

// ipv4Address returns the first global IPv4 address of the link, nil if none.
func ipv4Address(ifname string) (net.IP, error) {
	link, err := netlink.LinkByName(ifname)
	if err != nil {
		return nil, errors.Errorf("could not find link %v: %v", ifname, err)
	}

	addrs, err := netlink.AddrList(link, unix.AF_INET)
	if err != nil {
		return nil, errors.Errorf("could not list addresses of %v: %v", ifname, err)
	}

	for _, addr := range addrs {
		if addr.IPNet != nil && addr.IPNet.IP.IsGlobalUnicast() {
			return addr.IPNet.IP, nil
		}
	}

	return nil, nil
}

// requestLease obtains and applies a DHCPv4 lease for the link.
func requestLease(ctx context.Context, ifname string, timeout time.Duration) error {
	link, err := netlink.LinkByName(ifname)
	if err != nil {
		return errors.Errorf("could not find link %v: %v", ifname, err)
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	results := dhclient.SendRequests(ctx, []netlink.Link{link}, true, false, dhclient.Config{
		Timeout: 5 * time.Second,
		Retries: 3,
	}, 10*time.Second)

	lastErr := errors.Errorf("no lease received for %v", ifname)

	for {
		select {
		case <-ctx.Done():
			return errors.Errorf("dhcp on %v: %v", ifname, ctx.Err())
		case result, ok := <-results:
			if !ok {
				return lastErr
			}

			if result.Err != nil {
				lastErr = errors.Errorf("could not get lease for %v: %v", ifname, result.Err)
				continue
			}

			if err := result.Lease.Configure(); err != nil {
				lastErr = errors.Errorf("could not configure lease for %v: %v", ifname, err)
				continue
			}

			return nil
		}
	}
}

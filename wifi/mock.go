package wifi

import (
	"context"
	"net"
	"sync"
)

var _ Control = (*MockControl)(nil)

// MockControl is an in-memory Control for running without a radio.
type MockControl struct {
	mu        sync.Mutex
	address   net.IP
	networks  []Network
	profiles  map[string]Network
	connected map[string]bool
}

// NewMockControl creates a control that hands out address on every connect
// and reports networks on scans.
func NewMockControl(address net.IP, networks ...Network) *MockControl {
	return &MockControl{
		address:   address,
		networks:  networks,
		profiles:  make(map[string]Network),
		connected: make(map[string]bool),
	}
}

func (m *MockControl) IPAddress(ctx context.Context, iface string) (net.IP, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.connected[iface] {
		return nil, nil
	}

	return m.address, nil
}

func (m *MockControl) Configured(ctx context.Context, iface string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	_, ok := m.profiles[iface]

	return ok, nil
}

func (m *MockControl) Replace(ctx context.Context, iface string, network Network, passphrase string) error {
	if !network.IsWpa() {
		return ErrUnsupportedSecurity
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.profiles[iface] = network
	m.connected[iface] = false

	return nil
}

func (m *MockControl) Connect(ctx context.Context, iface string) (net.IP, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.profiles[iface]; !ok {
		return nil, ErrNotConfigured
	}

	if m.address == nil {
		return nil, nil
	}

	m.connected[iface] = true

	return m.address, nil
}

func (m *MockControl) Scan(ctx context.Context, iface string) ([]Network, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	return append([]Network(nil), m.networks...), nil
}

func (m *MockControl) Ssid(ctx context.Context, iface string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.connected[iface] {
		return "", nil
	}

	return m.profiles[iface].Ssid, nil
}

package wpa

import (
	"sync"

	"github.com/go-errors/errors"
	"github.com/godbus/dbus/v5"
)

// States reported by wpa_supplicant for an interface.
const (
	StateCompleted    = "completed"
	StateDisconnected = "disconnected"
	StateScanning     = "scanning"
)

type Interface struct {
	wpa *Wpa
	obj dbus.BusObject
}

func (i *Interface) Scan() error {
	call := i.obj.Call(interfaceIface+".Scan", 0, map[string]interface{}{
		"Type": "active",
	})
	if call.Err != nil {
		return errors.Errorf("could not scan: %v", call.Err)
	}

	return nil
}

type ScanDoneClient struct {
	ScanDone <-chan bool
	Cancel   func()
}

// ScanDone subscribes to scan completions. The channel delivers whether the
// scan succeeded and is closed after Cancel.
func (i *Interface) ScanDone() (*ScanDoneClient, error) {
	changeChan := make(chan bool, 1)
	signalChan := make(chan *dbus.Signal, 16)
	done := make(chan struct{})

	match := []dbus.MatchOption{
		dbus.WithMatchObjectPath(i.obj.Path()),
		dbus.WithMatchInterface(interfaceIface),
		dbus.WithMatchMember("ScanDone"),
	}

	err := i.wpa.conn.AddMatchSignal(match...)
	if err != nil {
		return nil, errors.Errorf("could not add signal: %v", err)
	}

	i.wpa.conn.Signal(signalChan)

	var once sync.Once

	client := &ScanDoneClient{
		ScanDone: changeChan,
		Cancel: func() {
			once.Do(func() {
				i.wpa.conn.RemoveSignal(signalChan)
				_ = i.wpa.conn.RemoveMatchSignal(match...)
				close(done)
			})
		},
	}

	go func() {
		defer close(changeChan)

		for {
			select {
			case <-done:
				return
			case signal, ok := <-signalChan:
				if !ok {
					return
				}

				if signal.Name != interfaceIface+".ScanDone" || signal.Path != i.obj.Path() || len(signal.Body) == 0 {
					continue
				}

				success, ok := signal.Body[0].(bool)
				if !ok {
					continue
				}

				select {
				case changeChan <- success:
				case <-done:
					return
				}
			}
		}
	}()

	return client, nil
}

func (i *Interface) BSSs() ([]*BSS, error) {
	v, err := i.obj.GetProperty(interfaceIface + ".BSSs")
	if err != nil {
		return nil, errors.Errorf("could not get bsss: %v", err)
	}

	objectPaths, ok := v.Value().([]dbus.ObjectPath)
	if !ok {
		return nil, errors.Errorf("could not convert bsss: %v", v)
	}

	var bsss []*BSS

	for _, objectPath := range objectPaths {
		bsss = append(bsss, &BSS{
			obj: i.wpa.conn.Object(service, objectPath),
		})
	}

	return bsss, nil
}

// CurrentBSS returns the BSS the interface is associated with, nil if none.
func (i *Interface) CurrentBSS() (*BSS, error) {
	v, err := i.obj.GetProperty(interfaceIface + ".CurrentBSS")
	if err != nil {
		return nil, errors.Errorf("could not get current bss: %v", err)
	}

	objectPath, ok := v.Value().(dbus.ObjectPath)
	if !ok {
		return nil, errors.Errorf("could not convert current bss: %v", v)
	}

	if objectPath == "/" || !objectPath.IsValid() {
		return nil, nil
	}

	return &BSS{
		obj: i.wpa.conn.Object(service, objectPath),
	}, nil
}

func (i *Interface) State() (string, error) {
	v, err := i.obj.GetProperty(interfaceIface + ".State")
	if err != nil {
		return "", errors.Errorf("could not get state: %v", err)
	}

	state, ok := v.Value().(string)
	if !ok {
		return "", errors.Errorf("could not convert state: %v", v)
	}

	return state, nil
}

func (i *Interface) Networks() ([]*Network, error) {
	v, err := i.obj.GetProperty(interfaceIface + ".Networks")
	if err != nil {
		return nil, errors.Errorf("could not get networks: %v", err)
	}

	objectPaths, ok := v.Value().([]dbus.ObjectPath)
	if !ok {
		return nil, errors.Errorf("could not convert networks: %v", v)
	}

	var networks []*Network

	for _, objectPath := range objectPaths {
		networks = append(networks, &Network{
			wpa: i.wpa,
			obj: i.wpa.conn.Object(service, objectPath),
		})
	}

	return networks, nil
}

func (i *Interface) AddNetwork(ssid string, psk string) (*Network, error) {
	args := map[string]interface{}{}

	if psk != "" {
		args["ssid"] = ssid
		args["psk"] = psk
	} else {
		args["ssid"] = ssid
		args["key_mgmt"] = "NONE"
	}

	call := i.obj.Call(interfaceIface+".AddNetwork", 0, args)
	if call.Err != nil {
		return nil, errors.Errorf("could not add network: %v", call.Err)
	}

	var objPath dbus.ObjectPath
	err := call.Store(&objPath)
	if err != nil {
		return nil, errors.Errorf("could not store value: %v", err)
	}

	return &Network{
		wpa: i.wpa,
		obj: i.wpa.conn.Object(service, objPath),
	}, nil
}

func (i *Interface) SelectNetwork(net *Network) error {
	call := i.obj.Call(interfaceIface+".SelectNetwork", 0, net.obj.Path())
	if call.Err != nil {
		return errors.Errorf("could not select network: %v", call.Err)
	}

	return nil
}

func (i *Interface) RemoveAllNetworks() error {
	call := i.obj.Call(interfaceIface+".RemoveAllNetworks", 0)
	if call.Err != nil {
		return errors.Errorf("could not remove all networks: %v", call.Err)
	}

	return nil
}

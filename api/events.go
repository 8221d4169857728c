package api

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/go-errors/errors"
	"github.com/the-lightning-land/wificonnect/wifi"
)

const (
	eventStatus = "wifi-status"
	eventGet    = "wifi-get"
	eventScan   = "wifi-scan"
	eventUpdate = "wifi-update"
)

type messageData struct {
	Message string `json:"message"`
}

type ssidData struct {
	Ssid string `json:"ssid"`
}

type updateRequest struct {
	Ssid     string `json:"ssid"`
	Password string `json:"password"`
}

func (a *Api) dispatch(ctx context.Context, in *incoming) {
	switch in.Event {
	case eventStatus:
		a.handleWifiStatus(ctx)
	case eventGet:
		a.handleWifiGet(ctx)
	case eventScan:
		a.handleWifiScan(ctx)
	case eventUpdate:
		req := updateRequest{}
		if len(in.Data) > 0 {
			if err := json.Unmarshal(in.Data, &req); err != nil {
				a.log.Warnf("Could not decode %v request: %v", eventUpdate, err)
			}
		}
		a.handleWifiUpdate(ctx, &req)
	default:
		a.log.Warnf("Ignoring unknown event %q", in.Event)
	}
}

func (a *Api) emit(event string, data interface{}) {
	if dropped := a.hub.broadcast(&message{Event: event, Data: data}); dropped > 0 {
		a.log.Warnf("Dropped %v event for %v slow clients", event, dropped)
	}
}

func (a *Api) emitMessage(event string, msg string) {
	a.emit(event, &messageData{Message: msg})
}

func (a *Api) handleWifiStatus(ctx context.Context) {
	ip, err := a.control.IPAddress(ctx, a.iface)
	if err != nil {
		a.log.Errorf("Could not get WiFi status: %v", err)
		a.emitMessage(eventStatus, "Error occurred")
		return
	}

	if ip == nil {
		a.emitMessage(eventStatus, "Not Connected")
		return
	}

	a.emitMessage(eventStatus, "Connected")
}

func (a *Api) handleWifiGet(ctx context.Context) {
	ssid, err := a.control.Ssid(ctx, a.iface)
	if err != nil {
		a.log.Errorf("Could not get SSID: %v", err)
		ssid = ""
	}

	a.emit(eventGet, &ssidData{Ssid: ssid})
}

// scanList returns [ssid, encryption] pairs sorted by name, ignoring case.
func scanList(networks []wifi.Network) [][2]string {
	list := make([][2]string, 0, len(networks))

	for _, n := range networks {
		list = append(list, [2]string{n.Ssid, n.Encryption})
	}

	sort.SliceStable(list, func(i, j int) bool {
		return strings.ToLower(list[i][0]) < strings.ToLower(list[j][0])
	})

	return list
}

func (a *Api) handleWifiScan(ctx context.Context) {
	a.scanMtx.Lock()
	defer a.scanMtx.Unlock()

	if !a.scanLimiter.Allow() && a.lastScan != nil {
		a.log.Debugf("Scanned recently, sending previous results")
		a.emit(eventScan, a.lastScan)
		return
	}

	networks, err := a.control.Scan(ctx, a.iface)
	if err != nil {
		a.log.Errorf("Could not scan: %v", err)
		a.emit(eventScan, [][2]string{{"Error occurred while scanning.", ""}})
		return
	}

	a.lastScan = scanList(networks)

	a.emit(eventScan, a.lastScan)
}

func (a *Api) handleWifiUpdate(ctx context.Context, req *updateRequest) {
	a.updateMtx.Lock()
	defer a.updateMtx.Unlock()

	if req.Ssid == "" {
		a.emitMessage(eventUpdate, "Network name must be provided")
		return
	}

	if req.Password == "" {
		a.emitMessage(eventUpdate, "Password must be provided")
		return
	}

	a.emitMessage(eventUpdate, "Looking for network...")

	networks, err := a.control.Scan(ctx, a.iface)
	if err != nil {
		a.log.Errorf("Could not scan: %v", err)
		a.emitMessage(eventUpdate, "Error occurred while scanning.")
		return
	}

	var matching []wifi.Network
	for _, n := range networks {
		if n.Ssid == req.Ssid {
			matching = append(matching, n)
		}
	}

	a.pause()

	if len(matching) == 0 {
		a.emitMessage(eventUpdate, fmt.Sprintf("No network named %v", req.Ssid))
		return
	}

	var secured []wifi.Network
	for _, n := range matching {
		if n.IsWpa() {
			secured = append(secured, n)
		}
	}

	if len(secured) == 0 {
		a.log.Warnf("No networks that have correct encryption")
		a.emitMessage(eventUpdate, "Select network with WPA or WPA2 security")
		return
	}

	a.emitMessage(eventUpdate, "Saving network name and password...")

	err = a.control.Replace(ctx, a.iface, secured[0], req.Password)
	switch {
	case err == nil:
	case errors.Is(err, wifi.ErrUnsupportedSecurity):
		a.log.Errorf("Unknown security protocol was used")
		a.emitMessage(eventUpdate, "Only select WPA or WPA2 security")
		return
	default:
		a.log.Errorf("Could not set new SSID and password: %v", err)
		a.emitMessage(eventUpdate, "Error occurred while setting new SSID and password.")
		return
	}

	a.pause()

	a.emitMessage(eventStatus, "Not Connected")
	a.emitMessage(eventUpdate, "Connecting...")

	a.pause()

	ip, err := a.control.Connect(ctx, a.iface)
	if err != nil {
		a.log.Errorf("Could not connect: %v", err)
		a.emitMessage(eventUpdate, "Error occurred while connecting.")
		a.handleWifiStatus(ctx)
		return
	}

	if ip == nil {
		a.emitMessage(eventUpdate, "Not connected! Make sure to check the password.")
	} else {
		a.emitMessage(eventUpdate, "Connected!")
	}

	a.handleWifiStatus(ctx)

	if !a.restarter.Restart(ctx) {
		a.emitMessage(eventUpdate, "Connected! An error occurred while restarting sensor service. Please restart device.")
	}
}

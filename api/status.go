package api

import (
	"net/http"
)

type getStatusResponse struct {
	Interface string `json:"interface"`
	Connected bool   `json:"connected"`
	Ip        string `json:"ip,omitempty"`
	Ssid      string `json:"ssid,omitempty"`
}

func (a *Api) handleGetStatus() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ip, err := a.control.IPAddress(r.Context(), a.iface)
		if err != nil {
			a.log.Errorf("Could not get address of %v: %v", a.iface, err)
			a.jsonError(w, "Could not get WiFi status", http.StatusInternalServerError)
			return
		}

		res := &getStatusResponse{
			Interface: a.iface,
			Connected: ip != nil,
		}

		if ip != nil {
			res.Ip = ip.String()
		}

		ssid, err := a.control.Ssid(r.Context(), a.iface)
		if err != nil {
			a.log.Warnf("Could not get SSID of %v: %v", a.iface, err)
		} else {
			res.Ssid = ssid
		}

		a.jsonResponse(w, res, http.StatusOK)
	}
}

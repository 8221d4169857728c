package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 54 * time.Second
	readLimit  = 4096
)

type incoming struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

func (a *Api) handleSocket() http.HandlerFunc {
	upgrader := &websocket.Upgrader{}

	return func(w http.ResponseWriter, r *http.Request) {
		c, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			a.log.Errorf("Could not upgrade connection: %v", err)
			return
		}

		client := a.hub.subscribe()

		a.log.Debugf("Client %v connected", client.id)

		// write pump
		go func() {
			ticker := time.NewTicker(pingPeriod)

			defer func() {
				ticker.Stop()
				_ = c.Close()
			}()

			for {
				select {
				case m, ok := <-client.send:
					_ = c.SetWriteDeadline(time.Now().Add(writeWait))

					if !ok {
						_ = c.WriteMessage(websocket.CloseMessage, []byte{})
						return
					}

					if err := c.WriteJSON(m); err != nil {
						return
					}
				case <-ticker.C:
					_ = c.SetWriteDeadline(time.Now().Add(writeWait))
					if err := c.WriteMessage(websocket.PingMessage, nil); err != nil {
						return
					}
				}
			}
		}()

		// read pump, handling one event at a time
		defer func() {
			a.hub.unsubscribe(client)
			a.log.Debugf("Client %v disconnected", client.id)
		}()

		c.SetReadLimit(readLimit)
		_ = c.SetReadDeadline(time.Now().Add(pongWait))
		c.SetPongHandler(func(string) error {
			return c.SetReadDeadline(time.Now().Add(pongWait))
		})

		for {
			var in incoming

			err := c.ReadJSON(&in)
			switch err.(type) {
			case nil:
			case *json.SyntaxError, *json.UnmarshalTypeError:
				a.log.Warnf("Ignoring malformed message from client %v: %v", client.id, err)
				continue
			default:
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
					a.log.Errorf("unexpected websocket closure: %v", err)
				}
				return
			}

			_ = c.SetReadDeadline(time.Now().Add(pongWait))

			a.dispatch(r.Context(), &in)
		}
	}
}

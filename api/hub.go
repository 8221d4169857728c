package api

import (
	"sync"
)

// message is what travels over the websocket in both directions.
type message struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data"`
}

type client struct {
	id   uint32
	send chan *message
}

// hub fans every emitted message out to all connected clients.
type hub struct {
	mtx     sync.Mutex
	clients map[uint32]*client
	nextID  uint32
}

func newHub() *hub {
	return &hub{
		clients: make(map[uint32]*client),
	}
}

func (h *hub) subscribe() *client {
	h.mtx.Lock()
	defer h.mtx.Unlock()

	c := &client{
		id:   h.nextID,
		send: make(chan *message, 32),
	}

	h.nextID++
	h.clients[c.id] = c

	return c
}

func (h *hub) unsubscribe(c *client) {
	h.mtx.Lock()
	defer h.mtx.Unlock()

	if _, ok := h.clients[c.id]; ok {
		delete(h.clients, c.id)
		close(c.send)
	}
}

// broadcast never blocks; a client that does not keep up misses messages.
func (h *hub) broadcast(m *message) int {
	h.mtx.Lock()
	defer h.mtx.Unlock()

	dropped := 0

	for _, c := range h.clients {
		select {
		case c.send <- m:
		default:
			dropped++
		}
	}

	return dropped
}

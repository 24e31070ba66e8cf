package bridge

import (
	"net/http"
	"strings"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/deskdial/deskdial/internal/logging"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// Loopback bridge: only local pages and no-origin clients.
		origin := r.Header.Get("Origin")
		return origin == "" ||
			strings.Contains(origin, "://localhost") ||
			strings.Contains(origin, "://127.0.0.1")
	},
}

type eventClient struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func (c *eventClient) send(e Event) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.WriteJSON(e)
}

// EventHub fans Events out to every connected /events websocket client.
// Slow or dead clients are dropped on the first failed write.
type EventHub struct {
	mu      sync.Mutex
	clients map[*eventClient]bool
}

// NewEventHub returns an empty hub.
func NewEventHub() *EventHub {
	return &EventHub{clients: make(map[*eventClient]bool)}
}

// Broadcast sends an event to all clients.
func (h *EventHub) Broadcast(e Event) {
	h.mu.Lock()
	clients := make([]*eventClient, 0, len(h.clients))
	for c := range h.clients {
		clients = append(clients, c)
	}
	h.mu.Unlock()

	for _, c := range clients {
		if err := c.send(e); err != nil {
			h.drop(c)
		}
	}
}

// ClientCount returns the number of connected clients.
func (h *EventHub) ClientCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

func (h *EventHub) drop(c *eventClient) {
	h.mu.Lock()
	delete(h.clients, c)
	h.mu.Unlock()
	c.conn.Close()
}

// Handler upgrades the connection and registers the client. The stream is
// write-only from the bridge's side; inbound frames are read and discarded
// to service pings and detect closure.
func (h *EventHub) Handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			logging.Warnf("events upgrade failed: %v", err)
			return
		}
		c := &eventClient{conn: conn}

		h.mu.Lock()
		h.clients[c] = true
		h.mu.Unlock()

		if err := c.send(ConnectedEvent()); err != nil {
			h.drop(c)
			return
		}

		go func() {
			for {
				if _, _, err := conn.ReadMessage(); err != nil {
					h.drop(c)
					return
				}
			}
		}()
	}
}

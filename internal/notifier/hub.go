package notifier

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/kal997/file-interest-server/internal/models"
)

const (
	// Frames queued per connection before it is considered too slow and dropped
	sendBuffer = 32

	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
)

// Hub pushes notification events to WebSocket clients.
// A client may restrict itself to some filenames with repeated
// ?filename= query parameters; without any it receives every event.
// Delivery is a broadcast: events are not addressed to the client that
// registered the interest, and one frame is sent per fulfilled subscription.
type Hub struct {
	upgrader websocket.Upgrader
	log      logrus.FieldLogger

	mu      sync.RWMutex
	clients map[*hubClient]struct{}
	closed  bool
}

type hubClient struct {
	conn   *websocket.Conn
	filter map[string]struct{}
	send   chan []byte
	done   chan struct{}
	once   sync.Once
}

// wants reports whether the client asked for events about filename
func (c *hubClient) wants(filename string) bool {
	if len(c.filter) == 0 {
		return true
	}
	_, ok := c.filter[filename]
	return ok
}

func (c *hubClient) close() {
	c.once.Do(func() {
		close(c.done)
		_ = c.conn.Close()
	})
}

// NewHub creates an empty hub
func NewHub(log logrus.FieldLogger) *Hub {
	return &Hub{
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
		log:     log,
		clients: make(map[*hubClient]struct{}),
	}
}

// ServeHTTP upgrades the request and keeps the connection registered until the client goes away
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote the error response
		h.log.WithError(err).Warn("failed to upgrade WebSocket connection")
		return
	}

	client := &hubClient{
		conn:   conn,
		filter: make(map[string]struct{}),
		send:   make(chan []byte, sendBuffer),
		done:   make(chan struct{}),
	}
	for _, name := range r.URL.Query()["filename"] {
		if name != "" {
			client.filter[name] = struct{}{}
		}
	}

	if !h.add(client) {
		_ = conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"))
		client.close()
		return
	}

	h.log.WithFields(logrus.Fields{
		"remote":  r.RemoteAddr,
		"filters": len(client.filter),
	}).Debug("notification client connected")

	go h.writeLoop(client)
	h.readLoop(client)
}

// readLoop discards client frames and returns once the connection fails
func (h *Hub) readLoop(c *hubClient) {
	defer h.remove(c)

	c.conn.SetReadLimit(512)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.log.WithError(err).Debug("notification client read failed")
			}
			return
		}
	}
}

// writeLoop is the only writer of data frames on c
func (h *Hub) writeLoop(c *hubClient) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-c.done:
			return
		case payload := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				h.remove(c)
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				h.remove(c)
				return
			}
		}
	}
}

// Deliver queues each event for every interested client.
// Clients whose queue is full are disconnected.
func (h *Hub) Deliver(ctx context.Context, events []models.NotificationEvent) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	var slow []*hubClient
	for _, event := range events {
		payload, err := json.Marshal(event)
		if err != nil {
			return fmt.Errorf("failed to encode notification for %s: %w", event.Filename, err)
		}

		h.mu.RLock()
		for c := range h.clients {
			if !c.wants(event.Filename) {
				continue
			}
			select {
			case c.send <- payload:
			default:
				slow = append(slow, c)
			}
		}
		h.mu.RUnlock()
	}

	for _, c := range slow {
		h.log.WithField("remote", c.conn.RemoteAddr().String()).Warn("dropping slow notification client")
		h.remove(c)
	}
	return nil
}

// Clients returns the number of connected clients
func (h *Hub) Clients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Close disconnects every client and rejects new ones
func (h *Hub) Close() error {
	h.mu.Lock()
	h.closed = true
	clients := h.clients
	h.clients = make(map[*hubClient]struct{})
	h.mu.Unlock()

	for c := range clients {
		_ = c.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"),
			time.Now().Add(time.Second))
		c.close()
	}
	return nil
}

func (h *Hub) add(c *hubClient) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return false
	}
	h.clients[c] = struct{}{}
	return true
}

func (h *Hub) remove(c *hubClient) {
	h.mu.Lock()
	delete(h.clients, c)
	h.mu.Unlock()
	c.close()
}

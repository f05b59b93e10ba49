// ABOUTME: WebSocket hub streaming dispatch events to live subscribers
// ABOUTME: New subscribers first receive the most recent events, then everything as it happens

package websocket

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/harper/netcmd/internal/event"
	"github.com/harper/netcmd/internal/logger"
)

var log = logger.Tagged("ws")

const (
	DefaultHistory = 32
	sendBuffer     = 64
	writeWait      = 5 * time.Second
)

var upgrader = websocket.Upgrader{
	// the management API is bound to a local address
	CheckOrigin: func(r *http.Request) bool { return true },
}

type client struct {
	conn *websocket.Conn
	send chan []byte
	once sync.Once
}

func (c *client) close() {
	c.once.Do(func() { close(c.send) })
}

// Hub implements event.Observer and http.Handler.
type Hub struct {
	mu      sync.Mutex
	clients map[*client]struct{}
	history [][]byte
	limit   int
	closed  bool
}

// NewHub keeps the last history events for replay. history <= 0 uses DefaultHistory.
func NewHub(history int) *Hub {
	if history <= 0 {
		history = DefaultHistory
	}
	return &Hub{
		clients: make(map[*client]struct{}),
		limit:   history,
	}
}

// Observe broadcasts e. A subscriber whose buffer is full is disconnected
// rather than stalling the dispatcher.
func (h *Hub) Observe(e event.Event) {
	msg, err := json.Marshal(e)
	if err != nil {
		log.Warn("[%s] encode event: %v", e.ShortID(), err)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	h.history = append(h.history, msg)
	if len(h.history) > h.limit {
		h.history = h.history[len(h.history)-h.limit:]
	}

	for c := range h.clients {
		select {
		case c.send <- msg:
		default:
			log.Warn("subscriber %s too slow, disconnecting", c.conn.RemoteAddr())
			delete(h.clients, c)
			c.close()
		}
	}
}

// Clients is the number of connected subscribers.
func (h *Hub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn("websocket upgrade failed: %v", err)
		return
	}

	c := &client{conn: conn, send: make(chan []byte, sendBuffer+h.limit)}
	if !h.register(c) {
		_ = conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "shutting down"))
		_ = conn.Close()
		return
	}
	log.Debug("subscriber connected from %s", conn.RemoteAddr())

	go h.writeLoop(c)
	h.readLoop(c)
}

func (h *Hub) register(c *client) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return false
	}
	// the buffer is sized to take the whole replay
	for _, msg := range h.history {
		c.send <- msg
	}
	h.clients[c] = struct{}{}
	return true
}

func (h *Hub) unregister(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		c.close()
	}
}

// readLoop only watches for the peer going away; subscribers send nothing.
func (h *Hub) readLoop(c *client) {
	defer h.unregister(c)
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Debug("subscriber read error: %v", err)
			}
			return
		}
	}
}

func (h *Hub) writeLoop(c *client) {
	defer c.conn.Close()
	for msg := range c.send {
		_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			log.Debug("subscriber write error: %v", err)
			h.unregister(c)
			// drain so Observe never blocks on a dead client
			for range c.send {
			}
			return
		}
	}
	_ = c.conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
}

// Close disconnects every subscriber and refuses new ones.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closed = true
	for c := range h.clients {
		delete(h.clients, c)
		c.close()
	}
}

package ws

import (
	"encoding/json"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait  = 20 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 30 * time.Second
)

// Logger defines minimal logging interface required by the hub.
type Logger interface {
	Infof(string, ...interface{})
	Errorf(string, ...interface{})
}

// Observer is notified when connections open or close.
type Observer interface {
	WSConnected()
	WSDisconnected()
}

type client struct {
	userID int64
	admin  bool
	conn   *websocket.Conn
	mu     sync.Mutex
}

// Hub keeps the open websocket connections of signed in users. A user may
// hold several connections, one per device.
type Hub struct {
	logger   Logger
	observer Observer
	upgrader websocket.Upgrader

	mu      sync.RWMutex
	clients map[int64]map[*client]struct{}
}

func NewHub(logger Logger, observer Observer, allowedOrigins []string) *Hub {
	return &Hub{
		logger:   logger,
		observer: observer,
		upgrader: websocket.Upgrader{CheckOrigin: originChecker(allowedOrigins)},
		clients:  make(map[int64]map[*client]struct{}),
	}
}

func originChecker(allowed []string) func(*http.Request) bool {
	if len(allowed) == 0 {
		return func(*http.Request) bool { return true }
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		for _, o := range allowed {
			if o == "*" || strings.EqualFold(o, origin) {
				return true
			}
		}
		return false
	}
}

// Serve upgrades the request for an authenticated user.
func (h *Hub) Serve(w http.ResponseWriter, r *http.Request, userID int64, admin bool) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Errorf("ws upgrade failed for user %d: %v", userID, err)
		return
	}

	c := &client{userID: userID, admin: admin, conn: conn}
	h.mu.Lock()
	set, ok := h.clients[userID]
	if !ok {
		set = make(map[*client]struct{})
		h.clients[userID] = set
	}
	set[c] = struct{}{}
	h.mu.Unlock()

	if h.observer != nil {
		h.observer.WSConnected()
	}
	h.logger.Infof("ws user %d connected (admin=%t)", userID, admin)

	go h.pingLoop(c)
	go h.readLoop(c)
}

func (h *Hub) pingLoop(c *client) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()
	for range ticker.C {
		if !h.alive(c) {
			return
		}
		h.write(c, func(conn *websocket.Conn) error {
			return conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait))
		})
	}
}

func (h *Hub) readLoop(c *client) {
	defer h.remove(c)

	c.conn.SetReadLimit(16 << 10)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		mt, message, err := c.conn.ReadMessage()
		if err != nil {
			return
		}
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		if mt == websocket.TextMessage && strings.EqualFold(strings.TrimSpace(string(message)), "ping") {
			h.write(c, func(conn *websocket.Conn) error {
				return conn.WriteMessage(websocket.TextMessage, []byte("pong"))
			})
		}
	}
}

func (h *Hub) alive(c *client) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	_, ok := h.clients[c.userID][c]
	return ok
}

func (h *Hub) remove(c *client) {
	_ = c.conn.Close()
	h.mu.Lock()
	set, ok := h.clients[c.userID]
	_, present := set[c]
	if ok && present {
		delete(set, c)
		if len(set) == 0 {
			delete(h.clients, c.userID)
		}
	}
	h.mu.Unlock()

	if present {
		if h.observer != nil {
			h.observer.WSDisconnected()
		}
		h.logger.Infof("ws user %d disconnected", c.userID)
	}
}

func (h *Hub) write(c *client, fn func(*websocket.Conn) error) {
	c.mu.Lock()
	c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	err := fn(c.conn)
	c.mu.Unlock()
	if err != nil {
		h.logger.Errorf("ws user %d write failed: %v", c.userID, err)
		h.remove(c)
	}
}

func (h *Hub) snapshot(match func(*client) bool) []*client {
	h.mu.RLock()
	defer h.mu.RUnlock()
	var out []*client
	for _, set := range h.clients {
		for c := range set {
			if match(c) {
				out = append(out, c)
			}
		}
	}
	return out
}

func (h *Hub) send(targets []*client, payload interface{}) {
	if len(targets) == 0 {
		return
	}
	data, err := json.Marshal(payload)
	if err != nil {
		h.logger.Errorf("ws marshal failed: %v", err)
		return
	}
	for _, c := range targets {
		h.write(c, func(conn *websocket.Conn) error {
			return conn.WriteMessage(websocket.TextMessage, data)
		})
	}
}

// Push sends payload to every connection of userID.
func (h *Hub) Push(userID int64, payload interface{}) {
	h.send(h.snapshot(func(c *client) bool { return c.userID == userID }), payload)
}

// BroadcastAdmins sends payload to the admin live feed.
func (h *Hub) BroadcastAdmins(payload interface{}) {
	h.send(h.snapshot(func(c *client) bool { return c.admin }), payload)
}

// Connections returns the number of open connections.
func (h *Hub) Connections() int {
	return len(h.snapshot(func(*client) bool { return true }))
}

// Close drops every open connection.
func (h *Hub) Close() {
	for _, c := range h.snapshot(func(*client) bool { return true }) {
		h.remove(c)
	}
}

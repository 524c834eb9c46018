package websocket

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"parcel-hub/internal/earnings/domain"
	"parcel-hub/pkg/auth"
	"parcel-hub/pkg/logger"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period (must be less than pongWait)
	pingPeriod = (pongWait * 9) / 10

	// Send buffer size
	sendBufferSize = 32
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// The dashboards are served from several origins behind the gateway.
		return true
	},
}

// Hub pushes refreshed earnings summaries to connected driver dashboards
// so they stay current between 30-60s poll ticks. One connection per
// driver; a new connection replaces the old one.
type Hub struct {
	mu      sync.RWMutex
	clients map[string]*client // driver_id -> connection
	jwt     *auth.JWTManager
	log     logger.Logger
}

type client struct {
	id       string // connection id, for log correlation
	driverID string
	conn     *websocket.Conn
	send     chan []byte
	hub      *Hub
}

func NewHub(jwt *auth.JWTManager, log logger.Logger) *Hub {
	return &Hub{
		clients: make(map[string]*client),
		jwt:     jwt,
		log:     log,
	}
}

// RegisterRoutes mounts the dashboard socket endpoint.
func (h *Hub) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /ws/drivers/{driver_id}", h.handleConnect)
}

// handleConnect authenticates the dashboard (token in query, browsers
// cannot set headers on WebSocket upgrades) and registers the connection.
func (h *Hub) handleConnect(w http.ResponseWriter, r *http.Request) {
	driverID := r.PathValue("driver_id")
	token := r.URL.Query().Get("token")

	claims, err := h.jwt.ParseToken(token)
	if err != nil {
		http.Error(w, "invalid token", http.StatusUnauthorized)
		return
	}
	if !claims.CanAccessDriver(driverID) {
		http.Error(w, "not allowed", http.StatusForbidden)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Error("ws_upgrade_failed", err)
		return
	}

	c := &client{
		id:       uuid.NewString(),
		driverID: driverID,
		conn:     conn,
		send:     make(chan []byte, sendBufferSize),
		hub:      h,
	}
	h.register(c)

	go c.writePump()
	go c.readPump()
}

func (h *Hub) register(c *client) {
	h.mu.Lock()
	if existing, ok := h.clients[c.driverID]; ok {
		close(existing.send)
		existing.conn.Close()
	}
	h.clients[c.driverID] = c
	total := len(h.clients)
	h.mu.Unlock()

	h.log.WithFields(logger.LogFields{
		"driver_id":     c.driverID,
		"connection_id": c.id,
		"total":         total,
	}).Info("ws_connected", "Dashboard connected")
}

func (h *Hub) unregister(c *client) {
	h.mu.Lock()
	if current, ok := h.clients[c.driverID]; ok && current == c {
		delete(h.clients, c.driverID)
		close(c.send)
	}
	h.mu.Unlock()
	c.conn.Close()
}

// SendToDriver delivers a message to one driver's dashboard, if connected.
func (h *Hub) SendToDriver(driverID string, message interface{}) error {
	h.mu.RLock()
	c, ok := h.clients[driverID]
	h.mu.RUnlock()
	if !ok {
		return fmt.Errorf("driver %s is not connected", driverID)
	}

	payload, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	select {
	case c.send <- payload:
		return nil
	default:
		// Slow consumer; drop the connection rather than block the push path.
		h.unregister(c)
		return fmt.Errorf("driver %s send buffer full, connection dropped", driverID)
	}
}

// IsDriverConnected reports whether the driver has a live dashboard socket.
func (h *Hub) IsDriverConnected(driverID string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	_, ok := h.clients[driverID]
	return ok
}

var _ domain.DashboardPusher = (*Hub)(nil)

// readPump drains inbound frames. Dashboards send nothing meaningful; the
// pump exists to process pongs and detect closure.
func (c *client) readPump() {
	defer c.hub.unregister(c)

	c.conn.SetReadLimit(4096)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

// writePump serializes all writes to the connection and keeps it alive
// with periodic pings.
func (c *client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case payload, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

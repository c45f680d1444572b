package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/mverac/rover-core/internal/infrastructure/config"
	"github.com/mverac/rover-core/internal/infrastructure/logging"
)

// WebSocket message types. Inbound messages carry a device subscription
// request; outbound messages are either acks or domain events whose
// type names the event kind.
const (
	WSTypeSubscribe      = "subscribe_device"
	WSTypeUnsubscribe    = "unsubscribe_device"
	WSTypeConnected      = "connection_response"
	WSTypeSubscribeAck   = "subscription_response"
	WSTypeUnsubscribeAck = "unsubscription_response"
	WSTypeError          = "error"

	// defaultDeviceID fills in when a subscription request or mutating
	// body omits the device id. Device 1 is the factory-seeded rover,
	// so legacy dashboards that never send an ID keep working.
	defaultDeviceID = 1

	// wsSendBufferSize is the per-client outbound message buffer size.
	wsSendBufferSize = 256
)

// WSMessage is the envelope for every WebSocket frame in both
// directions: a type and an optional data payload.
type WSMessage struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

// Hub manages WebSocket connections and per-device topic membership,
// and fans domain events out to topic subscribers.
type Hub struct {
	cfg    config.WebSocketConfig
	logger *logging.Logger

	mu      sync.RWMutex
	clients map[*WSClient]struct{}
	topics  map[int64]map[*WSClient]struct{}
}

// WSClient represents one connected WebSocket client.
type WSClient struct {
	id   string
	hub  *Hub
	conn *websocket.Conn
	send chan []byte
}

// upgrader configures the WebSocket upgrader.
var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(_ *http.Request) bool {
		// Origin checking is handled by CORS middleware
		return true
	},
}

// NewHub creates a new WebSocket hub.
func NewHub(cfg config.WebSocketConfig, logger *logging.Logger) *Hub {
	return &Hub{
		cfg:     cfg,
		logger:  logger,
		clients: make(map[*WSClient]struct{}),
		topics:  make(map[int64]map[*WSClient]struct{}),
	}
}

// Run blocks until the context is cancelled, then disconnects all clients.
func (h *Hub) Run(ctx context.Context) {
	<-ctx.Done()
	h.closeAll()
}

// Register adds a client to the hub.
func (h *Hub) Register(client *WSClient) {
	h.mu.Lock()
	h.clients[client] = struct{}{}
	h.mu.Unlock()
	h.logger.Debug("websocket client connected", "client_id", client.id, "clients", h.ClientCount())
}

// Unregister removes a client, drops all its topic memberships, and
// closes its send channel. Only the goroutine that removes the client
// from the map closes the channel, preventing double-close panics
// during shutdown.
func (h *Hub) Unregister(client *WSClient) {
	h.mu.Lock()
	_, existed := h.clients[client]
	delete(h.clients, client)
	h.leaveAllLocked(client)
	h.mu.Unlock()

	if existed {
		close(client.send)
	}
	h.logger.Debug("websocket client disconnected", "client_id", client.id, "clients", h.ClientCount())
}

// Join adds a client to a device topic. Joining the same topic twice is
// a no-op.
func (h *Hub) Join(deviceID int64, client *WSClient) {
	h.mu.Lock()
	members, ok := h.topics[deviceID]
	if !ok {
		members = make(map[*WSClient]struct{})
		h.topics[deviceID] = members
	}
	members[client] = struct{}{}
	h.mu.Unlock()
}

// Leave removes a client from a device topic. Leaving a topic the
// client never joined is a no-op.
func (h *Hub) Leave(deviceID int64, client *WSClient) {
	h.mu.Lock()
	if members, ok := h.topics[deviceID]; ok {
		delete(members, client)
		if len(members) == 0 {
			delete(h.topics, deviceID)
		}
	}
	h.mu.Unlock()
}

// leaveAllLocked drops every topic membership for a client.
// Caller must hold h.mu.
func (h *Hub) leaveAllLocked(client *WSClient) {
	for deviceID, members := range h.topics {
		delete(members, client)
		if len(members) == 0 {
			delete(h.topics, deviceID)
		}
	}
}

// Publish fans an event out to every subscriber of the device's topic.
//
// Delivery is best-effort: the payload is serialized once, the member
// set is snapshotted under the lock, and sends go through each client's
// buffered channel without blocking. Clients that joined a different
// topic, or none, see nothing. Implements the domain services'
// EventPublisher.
func (h *Hub) Publish(deviceID int64, event string, data any) {
	msg := WSMessage{Type: event}
	payload, err := json.Marshal(data)
	if err != nil {
		h.logger.Error("failed to marshal event payload", "event", event, "error", err)
		return
	}
	msg.Data = payload

	frame, err := json.Marshal(msg)
	if err != nil {
		h.logger.Error("failed to marshal event frame", "event", event, "error", err)
		return
	}

	h.mu.RLock()
	members := make([]*WSClient, 0, len(h.topics[deviceID]))
	for client := range h.topics[deviceID] {
		members = append(members, client)
	}
	h.mu.RUnlock()

	for _, client := range members {
		client.trySend(frame)
	}
	if len(members) > 0 {
		h.logger.Debug("event published", "event", event, "device_id", deviceID, "recipients", len(members))
	}
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// TopicMembers returns the number of subscribers on a device topic.
func (h *Hub) TopicMembers(deviceID int64) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.topics[deviceID])
}

// closeAll disconnects all clients and closes their send channels so
// writePump goroutines can exit cleanly.
func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for client := range h.clients {
		close(client.send)
		if client.conn != nil {
			client.conn.Close()
		}
		delete(h.clients, client)
	}
	h.topics = make(map[int64]map[*WSClient]struct{})
}

// handleWebSocket upgrades the HTTP connection and starts the client's
// read/write pumps. Every new connection gets a greeting frame with its
// assigned client ID.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error("websocket upgrade failed", "error", err)
		return
	}

	client := &WSClient{
		id:   uuid.NewString(),
		hub:  s.hub,
		conn: conn,
		send: make(chan []byte, wsSendBufferSize),
	}

	s.hub.Register(client)

	go client.writePump(s.wsCfg)
	go client.readPump(s.wsCfg)

	client.sendMessage(WSTypeConnected, map[string]any{
		"status":    "success",
		"client_id": client.id,
		"message":   "connected to rover core",
	})
}

// readPump reads messages from the WebSocket connection.
func (c *WSClient) readPump(cfg config.WebSocketConfig) {
	defer func() {
		c.hub.Unregister(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(int64(cfg.MaxMessageSize))
	pingInterval := time.Duration(cfg.PingInterval) * time.Second
	pongWait := time.Duration(cfg.PongTimeout) * time.Second
	//nolint:errcheck // Best-effort deadline on connection setup
	c.conn.SetReadDeadline(time.Now().Add(pingInterval + pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pingInterval + pongWait))
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.hub.logger.Warn("websocket read error", "error", err)
			} else {
				c.hub.logger.Debug("websocket closed", "error", err)
			}
			return
		}
		// Any client message resets the read deadline, keeping the
		// connection alive even if the client ignores protocol pings.
		//nolint:errcheck // Best-effort deadline reset
		c.conn.SetReadDeadline(time.Now().Add(pingInterval + pongWait))
		c.handleMessage(message)
	}
}

// writePump writes messages to the WebSocket connection.
func (c *WSClient) writePump(cfg config.WebSocketConfig) {
	pingInterval := time.Duration(cfg.PingInterval) * time.Second
	ticker := time.NewTicker(pingInterval)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	pongWait := time.Duration(cfg.PongTimeout) * time.Second

	for {
		select {
		case message, ok := <-c.send:
			if !ok {
				// Hub closed the channel
				//nolint:errcheck // Best-effort close message
				c.conn.WriteMessage(websocket.CloseMessage, nil)
				return
			}
			//nolint:errcheck // Best-effort deadline; write error caught below
			c.conn.SetWriteDeadline(time.Now().Add(pongWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			//nolint:errcheck // Best-effort deadline; ping error caught below
			c.conn.SetWriteDeadline(time.Now().Add(pongWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// handleMessage processes one incoming WebSocket frame.
func (c *WSClient) handleMessage(data []byte) {
	var msg WSMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		c.sendError("invalid JSON message")
		return
	}

	switch msg.Type {
	case WSTypeSubscribe:
		deviceID := parseDeviceID(msg.Data)
		c.hub.Join(deviceID, c)
		c.hub.logger.Info("client subscribed to device",
			"client_id", c.id, "device_id", deviceID)
		c.sendMessage(WSTypeSubscribeAck, map[string]any{
			"status":    "success",
			"device_id": deviceID,
			"message":   "subscribed to device events",
		})
	case WSTypeUnsubscribe:
		deviceID := parseDeviceID(msg.Data)
		c.hub.Leave(deviceID, c)
		c.sendMessage(WSTypeUnsubscribeAck, map[string]any{
			"status":    "success",
			"device_id": deviceID,
			"message":   "unsubscribed from device events",
		})
	default:
		c.sendError("unknown message type: " + msg.Type)
	}
}

// parseDeviceID extracts a positive device_id from a subscription
// payload. Missing, malformed or non-positive values fall back to the
// default device rather than rejecting the request.
func parseDeviceID(data json.RawMessage) int64 {
	if len(data) == 0 {
		return defaultDeviceID
	}

	var payload struct {
		DeviceID any `json:"device_id"`
	}
	if err := json.Unmarshal(data, &payload); err != nil {
		return defaultDeviceID
	}

	switch v := payload.DeviceID.(type) {
	case float64:
		if v > 0 && v == float64(int64(v)) {
			return int64(v)
		}
	case string:
		if id, err := strconv.ParseInt(v, 10, 64); err == nil && id > 0 {
			return id
		}
	}
	return defaultDeviceID
}

// trySend attempts to deliver a frame to the client's send channel.
// It silently absorbs closed channels (client disconnected mid-publish)
// and full buffers (slow client).
func (c *WSClient) trySend(data []byte) {
	defer func() {
		recover() //nolint:errcheck // Absorb send-on-closed-channel panic
	}()

	select {
	case c.send <- data:
	default:
		// Client buffer full, skip
	}
}

// sendMessage sends a typed frame to this client only.
// Routes through trySend to safely handle closed channels during shutdown.
func (c *WSClient) sendMessage(msgType string, data any) {
	payload, err := json.Marshal(data)
	if err != nil {
		return
	}
	frame, err := json.Marshal(WSMessage{Type: msgType, Data: payload})
	if err != nil {
		return
	}
	c.trySend(frame)
}

// sendError sends an error frame to the client.
func (c *WSClient) sendError(message string) {
	c.sendMessage(WSTypeError, map[string]string{"status": "error", "message": message})
}

package api

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/nerrad567/lumen-core/internal/auth"
	"github.com/nerrad567/lumen-core/internal/event"
	"github.com/nerrad567/lumen-core/internal/infrastructure/config"
	"github.com/nerrad567/lumen-core/internal/infrastructure/logging"
)

// WebSocket message types.
const (
	WSTypeSubscribe   = "subscribe"
	WSTypeUnsubscribe = "unsubscribe"
	WSTypePing        = "ping"
	WSTypePong        = "pong"
	WSTypeEvent       = "event"
	WSTypeResponse    = "response"
	WSTypeError       = "error"
)

const (
	// ChannelAll subscribes a client to every channel.
	ChannelAll = "*"

	// channelPrefix prefixes device event channels: device.effect,
	// device.brightness, device.battery and device.state.
	channelPrefix = "device."

	wsSendBufferSize = 256
)

// WSMessage is a frame sent to a WebSocket client.
type WSMessage struct {
	Type      string `json:"type"`
	ID        string `json:"id,omitempty"`
	EventType string `json:"event_type,omitempty"`
	Timestamp string `json:"timestamp,omitempty"`
	Payload   any    `json:"payload,omitempty"`
}

// wsRequest is a frame received from a client. The payload is decoded
// once the type is known.
type wsRequest struct {
	Type    string          `json:"type"`
	ID      string          `json:"id,omitempty"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// WSSubscribePayload is the payload of subscribe and unsubscribe frames.
// Devices optionally narrows delivery to the given serials; an empty
// list means every device.
type WSSubscribePayload struct {
	Channels []string `json:"channels"`
	Devices  []string `json:"devices,omitempty"`
}

// ChannelFor returns the channel a device event is broadcast on.
func ChannelFor(k event.Kind) string {
	return channelPrefix + string(k)
}

// keepalive holds the ping and deadline timings of one connection.
type keepalive struct {
	maxMessage int64
	ping       time.Duration
	pongWait   time.Duration
}

func keepaliveFrom(cfg config.WebSocketConfig) keepalive {
	return keepalive{
		maxMessage: int64(cfg.MaxMessageSize),
		ping:       time.Duration(cfg.PingInterval) * time.Second,
		pongWait:   time.Duration(cfg.PongTimeout) * time.Second,
	}
}

func (k keepalive) readDeadline() time.Time {
	return time.Now().Add(k.ping + k.pongWait)
}

// Hub tracks WebSocket clients and relays device events to them.
// It implements event.Subscriber so the daemon can register it as a sink.
type Hub struct {
	cfg     config.WebSocketConfig
	logger  *logging.Logger
	mu      sync.RWMutex
	clients map[*WSClient]struct{}
}

// WSClient is one connected WebSocket client.
type WSClient struct {
	hub  *Hub
	conn *websocket.Conn
	send chan []byte
	done chan struct{}
	once sync.Once

	mu            sync.RWMutex
	subscriptions map[string]struct{}
	serials       map[string]struct{}

	// Identity from the redeemed ticket.
	subject string
	role    auth.Role
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Origins are checked by the CORS middleware.
	CheckOrigin: func(_ *http.Request) bool { return true },
}

// NewHub creates an empty hub.
func NewHub(cfg config.WebSocketConfig, logger *logging.Logger) *Hub {
	return &Hub{
		cfg:     cfg,
		logger:  logger,
		clients: make(map[*WSClient]struct{}),
	}
}

// Run blocks until ctx is cancelled, then disconnects every client.
func (h *Hub) Run(ctx context.Context) {
	<-ctx.Done()

	h.mu.Lock()
	clients := h.clients
	h.clients = make(map[*WSClient]struct{})
	h.mu.Unlock()

	for c := range clients {
		c.close()
	}
}

func (h *Hub) add(c *WSClient) {
	h.mu.Lock()
	h.clients[c] = struct{}{}
	n := len(h.clients)
	h.mu.Unlock()
	h.logger.Debug("websocket client connected", "subject", c.subject, "clients", n)
}

func (h *Hub) remove(c *WSClient) {
	h.mu.Lock()
	delete(h.clients, c)
	n := len(h.clients)
	h.mu.Unlock()
	c.close()
	h.logger.Debug("websocket client disconnected", "subject", c.subject, "clients", n)
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Notify implements event.Subscriber.
func (h *Hub) Notify(e event.Event) {
	channel := ChannelFor(e.Kind)
	data, err := json.Marshal(WSMessage{
		Type:      WSTypeEvent,
		ID:        e.ID,
		EventType: channel,
		Timestamp: e.Time.UTC().Format(time.RFC3339Nano),
		Payload:   e,
	})
	if err != nil {
		h.logger.Error("encoding websocket event", "kind", e.Kind, "error", err)
		return
	}

	h.mu.RLock()
	targets := make([]*WSClient, 0, len(h.clients))
	for c := range h.clients {
		targets = append(targets, c)
	}
	h.mu.RUnlock()

	sent := 0
	for _, c := range targets {
		if c.wants(channel, e.Source) && c.trySend(data) {
			sent++
		}
	}
	if sent > 0 {
		h.logger.Debug("device event relayed", "channel", channel, "device", e.Source, "recipients", sent)
	}
}

// handleWebSocket upgrades the request after redeeming the ticket given
// in the query string (issued by POST /auth/ws-ticket).
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	ticket := r.URL.Query().Get("ticket")
	if ticket == "" {
		writeUnauthorized(w, "ticket query parameter is required")
		return
	}
	entry, ok := s.tickets.redeem(ticket)
	if !ok {
		writeUnauthorized(w, "invalid or expired ticket")
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error("websocket upgrade failed", "error", err)
		return
	}

	c := &WSClient{
		hub:           s.hub,
		conn:          conn,
		send:          make(chan []byte, wsSendBufferSize),
		done:          make(chan struct{}),
		subscriptions: make(map[string]struct{}),
		serials:       make(map[string]struct{}),
		subject:       entry.subject,
		role:          entry.role,
	}
	s.hub.add(c)

	ka := keepaliveFrom(s.wsCfg)
	go c.writeLoop(ka)
	go c.readLoop(ka)
}

func (c *WSClient) close() {
	c.once.Do(func() {
		close(c.done)
		if c.conn != nil {
			c.conn.Close()
		}
	})
}

func (c *WSClient) readLoop(ka keepalive) {
	defer c.hub.remove(c)

	c.conn.SetReadLimit(ka.maxMessage)
	//nolint:errcheck // a failed deadline surfaces as a read error
	c.conn.SetReadDeadline(ka.readDeadline())
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(ka.readDeadline())
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.hub.logger.Warn("websocket read error", "subject", c.subject, "error", err)
			}
			return
		}
		// Browsers may not answer protocol pings; any frame counts as alive.
		//nolint:errcheck // a failed deadline surfaces as a read error
		c.conn.SetReadDeadline(ka.readDeadline())
		c.handle(data)
	}
}

func (c *WSClient) writeLoop(ka keepalive) {
	ticker := time.NewTicker(ka.ping)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	write := func(kind int, data []byte) error {
		//nolint:errcheck // a failed deadline surfaces as a write error
		c.conn.SetWriteDeadline(time.Now().Add(ka.pongWait))
		return c.conn.WriteMessage(kind, data)
	}

	for {
		select {
		case data := <-c.send:
			if err := write(websocket.TextMessage, data); err != nil {
				return
			}
		case <-ticker.C:
			if err := write(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-c.done:
			//nolint:errcheck // connection is going away
			write(websocket.CloseMessage, nil)
			return
		}
	}
}

// handle dispatches one client frame.
func (c *WSClient) handle(data []byte) {
	var req wsRequest
	if err := json.Unmarshal(data, &req); err != nil {
		c.reply("", WSTypeError, errorPayload("invalid JSON message"))
		return
	}

	switch req.Type {
	case WSTypeSubscribe, WSTypeUnsubscribe:
		c.updateSubscriptions(req)
	case WSTypePing:
		c.reply(req.ID, WSTypePong, nil)
	default:
		c.reply(req.ID, WSTypeError, errorPayload("unknown message type: "+req.Type))
	}
}

func (c *WSClient) updateSubscriptions(req wsRequest) {
	if !auth.HasPermission(c.role, auth.PermDeviceRead) {
		c.reply(req.ID, WSTypeError, errorPayload("insufficient permissions"))
		return
	}
	var p WSSubscribePayload
	if err := json.Unmarshal(req.Payload, &p); err != nil {
		c.reply(req.ID, WSTypeError, errorPayload("invalid "+req.Type+" payload"))
		return
	}

	subscribe := req.Type == WSTypeSubscribe
	c.mu.Lock()
	for _, ch := range p.Channels {
		if subscribe {
			c.subscriptions[ch] = struct{}{}
		} else {
			delete(c.subscriptions, ch)
		}
	}
	for _, serial := range p.Devices {
		if subscribe {
			c.serials[serial] = struct{}{}
		} else {
			delete(c.serials, serial)
		}
	}
	c.mu.Unlock()

	key := "unsubscribed"
	if subscribe {
		key = "subscribed"
		c.hub.logger.Info("websocket client subscribed",
			"subject", c.subject,
			"channels", p.Channels,
			"devices", p.Devices,
		)
	}
	c.reply(req.ID, WSTypeResponse, map[string]any{key: p.Channels, "devices": p.Devices})
}

// isSubscribed reports whether the client listens on channel.
func (c *WSClient) isSubscribed(channel string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if _, ok := c.subscriptions[ChannelAll]; ok {
		return true
	}
	_, ok := c.subscriptions[channel]
	return ok
}

// wants reports whether an event from serial on channel should reach the client.
func (c *WSClient) wants(channel, serial string) bool {
	if !c.isSubscribed(channel) {
		return false
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	if len(c.serials) == 0 {
		return true
	}
	_, ok := c.serials[serial]
	return ok
}

// trySend queues data unless the client is gone or its buffer is full.
func (c *WSClient) trySend(data []byte) bool {
	select {
	case <-c.done:
		return false
	default:
	}
	select {
	case c.send <- data:
		return true
	default:
		c.hub.logger.Warn("websocket client too slow, dropping frame", "subject", c.subject)
		return false
	}
}

func (c *WSClient) reply(id, msgType string, payload any) {
	data, err := json.Marshal(WSMessage{
		Type:      msgType,
		ID:        id,
		Timestamp: time.Now().UTC().Format(time.RFC3339Nano),
		Payload:   payload,
	})
	if err != nil {
		return
	}
	c.trySend(data)
}

func errorPayload(message string) map[string]string {
	return map[string]string{"message": message}
}

package websocket

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"fuelpulse/internal/infrastructure"
	"fuelpulse/pkg/contracts/events"
)

// Wire message types the hub emits. Canonical definitions live in
// pkg/contracts/events; these are untyped strings so they drop straight
// into JSON maps.
const (
	TypeConnection = string(events.MessageTypeConnection)
	TypeDataUpdate = string(events.MessageTypeDataUpdate)
	TypeError      = string(events.MessageTypeError)

	SubtypeAll    = "all"
	ActionRefresh = "refresh"
)

// Hub owns the set of connected clients and fans broadcast frames out to
// them. All client membership changes go through the register/unregister
// channels so the loop in Run is the only writer of the clients map.
type Hub struct {
	clients    map[*Client]bool
	broadcast  chan []byte
	register   chan *Client
	unregister chan *Client

	mu      sync.RWMutex
	running bool
	quit    chan struct{}

	framesSent   int64
	framesQueued int64

	logger *slog.Logger
}

// NewHub creates a hub. Call Start to begin serving clients.
func NewHub(logger *slog.Logger) *Hub {
	if logger == nil {
		logger = infrastructure.GetLogger()
	}
	return &Hub{
		clients:    make(map[*Client]bool),
		broadcast:  make(chan []byte, 16),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		quit:       make(chan struct{}),
		logger:     logger.With(slog.String("component", "websocket.hub")),
	}
}

// Start launches the hub loop and the periodic stats log. Calling Start
// on a running hub is a no-op.
func (h *Hub) Start() {
	h.mu.Lock()
	if h.running {
		h.mu.Unlock()
		return
	}
	h.running = true
	h.mu.Unlock()

	go h.Run()
	go h.logStats()
}

// Run is the hub loop. It exits when Stop closes the quit channel.
func (h *Hub) Run() {
	for {
		select {
		case <-h.quit:
			h.logger.Info("hub shutting down")
			return
		case client := <-h.register:
			h.addClient(client)
		case client := <-h.unregister:
			h.removeClient(client)
		case frame := <-h.broadcast:
			h.fanOut(frame)
		}
	}
}

func (h *Hub) addClient(client *Client) {
	h.mu.Lock()
	h.clients[client] = true
	count := len(h.clients)
	h.mu.Unlock()

	ctx := client.traceContext()
	h.logger.InfoContext(ctx, "client registered",
		slog.Int("clients", count),
		slog.String("client_id", client.id),
		slog.String("remote_addr", client.remoteAddr))

	HubStats().SessionOpened()
	if m := GetOTelMetrics(); m != nil {
		m.RecordConnection(ctx, client.id, client.remoteAddr)
		m.RecordClientCount(ctx, int64(count))
	}

	// Acknowledge the connection so the frontend can show its client id
	// and switch out of the "connecting" state.
	ack, err := json.Marshal(events.WebSocketMessage{
		BaseMessage: events.BaseMessage{
			Type:      events.MessageTypeConnection,
			Timestamp: time.Now(),
			TraceID:   client.traceID,
		},
		Data: map[string]interface{}{
			"status":    "connected",
			"message":   "Connected to FuelPulse",
			"client_id": client.id,
		},
	})
	if err != nil {
		return
	}
	select {
	case client.send <- ack:
	default:
		h.logger.WarnContext(ctx, "connection ack dropped, client buffer full",
			slog.String("client_id", client.id))
	}
}

func (h *Hub) removeClient(client *Client) {
	h.mu.Lock()
	if _, ok := h.clients[client]; !ok {
		h.mu.Unlock()
		return
	}
	delete(h.clients, client)
	close(client.send)
	count := len(h.clients)
	h.mu.Unlock()

	lifetime := time.Since(client.connectedAt)
	ctx := client.traceContext()
	h.logger.InfoContext(ctx, "client unregistered",
		slog.Int("clients", count),
		slog.String("client_id", client.id),
		slog.Duration("connection_duration", lifetime))

	HubStats().SessionClosed(lifetime)
	if m := GetOTelMetrics(); m != nil {
		m.RecordDisconnection(ctx, client.id, lifetime, "normal")
		m.RecordClientCount(ctx, int64(count))
	}
}

// fanOut delivers one frame to every connected client. A client whose
// send buffer is full is dropped rather than allowed to stall the loop.
func (h *Hub) fanOut(frame []byte) {
	h.mu.RLock()
	targets := make([]*Client, 0, len(h.clients))
	for client := range h.clients {
		targets = append(targets, client)
	}
	h.mu.RUnlock()

	delivered, dropped := 0, 0
	for _, client := range targets {
		select {
		case client.send <- frame:
			delivered++
			h.mu.Lock()
			h.framesSent++
			h.mu.Unlock()
		default:
			dropped++
			h.mu.Lock()
			close(client.send)
			delete(h.clients, client)
			h.mu.Unlock()
			h.logger.WarnContext(client.traceContext(), "send buffer full, disconnecting client",
				slog.String("client_id", client.id))
		}
	}

	if dropped > 0 {
		h.logger.Warn("broadcast missed clients",
			slog.Int("delivered", delivered),
			slog.Int("dropped", dropped))
	}
	if m := GetOTelMetrics(); m != nil {
		m.RecordBroadcast(context.Background(), "broadcast",
			int64(len(targets)), int64(delivered), int64(dropped))
	}
}

// BroadcastUpdate sends an event to all clients. Operation snapshots
// carry their full state in data; every other event keeps the
// subtype/action envelope the dashboard filters on.
func (h *Hub) BroadcastUpdate(eventType, subtype, action string, data interface{}) {
	msg := events.WebSocketMessage{
		BaseMessage: events.BaseMessage{
			Type:      events.MessageType(eventType),
			Timestamp: time.Now(),
		},
		Data: data,
	}
	if eventType != string(events.MessageTypeOperationSnapshot) && eventType != "" {
		msg.Subtype = subtype
		msg.Action = action
	}
	h.enqueue(msg)
}

// BroadcastRefresh tells clients the named components are stale and
// should be re-fetched.
func (h *Hub) BroadcastRefresh(source string, components []string) {
	h.BroadcastUpdate(TypeDataUpdate, SubtypeAll, ActionRefresh, events.DatasetRefresh{
		Source:     source,
		Components: components,
	})
}

// BroadcastError sends a structured error event.
func (h *Hub) BroadcastError(code, message, details, step string, recoverable bool) {
	h.enqueue(events.WebSocketMessage{
		BaseMessage: events.BaseMessage{
			Type:      events.MessageTypeError,
			Timestamp: time.Now(),
		},
		Data: map[string]interface{}{
			"code":        code,
			"message":     message,
			"details":     details,
			"step":        step,
			"recoverable": recoverable,
		},
	})
}

func (h *Hub) enqueue(msg events.WebSocketMessage) {
	frame, err := json.Marshal(msg)
	if err != nil {
		h.logger.Error("marshal broadcast message",
			slog.String("error", err.Error()),
			slog.String("message_type", string(msg.Type)))
		return
	}

	h.broadcast <- frame

	h.mu.Lock()
	h.framesQueued++
	h.mu.Unlock()
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Register hands a client to the hub loop.
func (h *Hub) Register(client *Client) {
	h.register <- client
}

// Stop shuts the hub down and closes every client's send channel.
func (h *Hub) Stop() {
	h.mu.Lock()
	if !h.running {
		h.mu.Unlock()
		return
	}
	h.running = false
	h.mu.Unlock()

	close(h.quit)

	h.mu.Lock()
	defer h.mu.Unlock()
	for client := range h.clients {
		close(client.send)
		delete(h.clients, client)
	}
}

// logStats records the broadcast queue depth and logs a summary every
// 30 seconds until the hub stops.
func (h *Hub) logStats() {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-h.quit:
			return
		case <-ticker.C:
			HubStats().ObserveQueueDepth(int64(len(h.broadcast)))
			h.logger.Info("hub stats", slog.Any("stats", h.GetHubMetrics()))
		}
	}
}

// GetHubMetrics returns a point-in-time view of hub activity.
func (h *Hub) GetHubMetrics() map[string]interface{} {
	h.mu.RLock()
	defer h.mu.RUnlock()

	stats := HubStats().Snapshot()
	return map[string]interface{}{
		"active_clients":       len(h.clients),
		"total_connections":    stats.TotalSessions,
		"peak_clients":         stats.PeakSessions,
		"frames_queued":        h.framesQueued,
		"frames_sent":          h.framesSent,
		"broadcast_queue":      len(h.broadcast),
		"avg_session_duration": stats.AvgSessionDuration.String(),
	}
}

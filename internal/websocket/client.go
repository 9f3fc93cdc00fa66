package websocket

import (
	"bytes"
	"context"
	"log/slog"
	"time"

	"fuelpulse/internal/infrastructure"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	// Time allowed to write a frame to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong from the peer
	pongWait = 60 * time.Second

	// Ping interval. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum frame size accepted from the peer
	maxMessageSize = 512
)

var (
	newline = []byte{'\n'}
	space   = []byte{' '}
)

// Client sits between one websocket connection and the hub. The hub
// pushes outbound frames into send; WritePump drains them onto the wire
// and ReadPump watches the connection for heartbeats and closure.
type Client struct {
	hub  *Hub
	conn Connection
	send chan []byte

	id          string
	traceID     string
	remoteAddr  string
	connectedAt time.Time

	logger *slog.Logger

	framesSent    int64
	framesRead    int64
	bytesSent     int64
	bytesReceived int64
}

// NewClientWithConnection builds a client over any Connection. Tests use
// this with a scripted fake; production code goes through
// NewClientWithTrace.
func NewClientWithConnection(hub *Hub, conn Connection, logger *slog.Logger) *Client {
	if logger == nil {
		logger = infrastructure.GetLogger()
	}

	id := uuid.New().String()
	return &Client{
		hub:         hub,
		conn:        conn,
		send:        make(chan []byte, 256),
		id:          id,
		remoteAddr:  conn.RemoteAddr(),
		connectedAt: time.Now(),
		logger: logger.With(
			slog.String("component", "websocket.client"),
			slog.String("client_id", id),
		),
	}
}

// NewClientWithTrace wraps an upgraded gorilla connection and stamps the
// request's trace id on the client's log records and events.
func NewClientWithTrace(hub *Hub, conn *websocket.Conn, traceID string, logger *slog.Logger) *Client {
	client := NewClientWithConnection(hub, wrapGorilla(conn), logger)
	if traceID != "" {
		client.traceID = traceID
		client.logger = client.logger.With(slog.String("trace_id", traceID))
	}
	return client
}

// traceContext returns a context carrying the client's trace id, so log
// records and metrics emitted for this client correlate with the upgrade
// request.
func (c *Client) traceContext() context.Context {
	if c.traceID == "" {
		return context.Background()
	}
	return infrastructure.WithTraceID(context.Background(), c.traceID)
}

// ReadPump consumes inbound frames until the connection errors or
// closes, then unregisters the client. The peer only ever sends
// heartbeats; anything else is read and dropped to keep the connection's
// control frames flowing.
func (c *Client) ReadPump() {
	defer func() {
		c.logger.InfoContext(c.traceContext(), "read pump stopped",
			slog.Duration("connection_duration", time.Since(c.connectedAt)),
			slog.Int64("frames_read", c.framesRead),
			slog.Int64("bytes_received", c.bytesReceived))
		c.hub.unregister <- c
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.logger.ErrorContext(c.traceContext(), "unexpected close",
					slog.String("error", err.Error()))
			}
			return
		}
		message = bytes.TrimSpace(bytes.Replace(message, newline, space, -1))

		c.framesRead++
		c.bytesReceived += int64(len(message))
		if m := GetOTelMetrics(); m != nil {
			m.RecordMessageReceived(c.traceContext(), "client_message", c.id, int64(len(message)))
		}

		if string(message) == `{"type":"heartbeat"}` {
			// The pong handler already pushed the read deadline out.
			c.logger.Debug("heartbeat received")
		}
	}
}

// WritePump drains the send channel onto the wire as individual text
// frames and pings on a timer. It exits when the hub closes the send
// channel or a write fails.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
		c.logger.InfoContext(c.traceContext(), "write pump stopped",
			slog.Int64("frames_sent", c.framesSent),
			slog.Int64("bytes_sent", c.bytesSent))
	}()

	for {
		select {
		case frame, ok := <-c.send:
			if !ok {
				c.conn.SetWriteDeadline(time.Now().Add(writeWait))
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if !c.writeFrame(frame, "server_message") {
				return
			}

			// Drain whatever else is queued before going back to sleep.
			for n := len(c.send); n > 0; n-- {
				frame, ok := <-c.send
				if !ok {
					c.conn.SetWriteDeadline(time.Now().Add(writeWait))
					c.conn.WriteMessage(websocket.CloseMessage, []byte{})
					return
				}
				if !c.writeFrame(frame, "server_message_queued") {
					return
				}
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.logger.DebugContext(c.traceContext(), "ping failed",
					slog.String("error", err.Error()))
				return
			}
		}
	}
}

// writeFrame sends one text frame and records the send. A false return
// means the connection is unusable and the pump should stop.
func (c *Client) writeFrame(frame []byte, kind string) bool {
	c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := c.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
		c.logger.ErrorContext(c.traceContext(), "write failed",
			slog.String("error", err.Error()))
		return false
	}

	c.framesSent++
	c.bytesSent += int64(len(frame))
	if m := GetOTelMetrics(); m != nil {
		m.RecordMessageSent(c.traceContext(), kind, c.id, int64(len(frame)))
	}
	return true
}

package websocket

import (
	"time"

	"github.com/gorilla/websocket"
)

// gorillaConn adapts *websocket.Conn to the Connection interface.
type gorillaConn struct {
	c *websocket.Conn
}

func wrapGorilla(c *websocket.Conn) Connection {
	return &gorillaConn{c: c}
}

func (g *gorillaConn) WriteMessage(messageType int, data []byte) error {
	return g.c.WriteMessage(messageType, data)
}

func (g *gorillaConn) ReadMessage() (int, []byte, error) {
	return g.c.ReadMessage()
}

func (g *gorillaConn) Close() error { return g.c.Close() }

func (g *gorillaConn) SetReadDeadline(t time.Time) error  { return g.c.SetReadDeadline(t) }
func (g *gorillaConn) SetWriteDeadline(t time.Time) error { return g.c.SetWriteDeadline(t) }
func (g *gorillaConn) SetReadLimit(limit int64)           { g.c.SetReadLimit(limit) }

func (g *gorillaConn) SetPongHandler(h func(string) error) { g.c.SetPongHandler(h) }
func (g *gorillaConn) SetPingHandler(h func(string) error) { g.c.SetPingHandler(h) }
func (g *gorillaConn) SetCloseHandler(h func(code int, text string) error) {
	g.c.SetCloseHandler(h)
}

func (g *gorillaConn) RemoteAddr() string { return g.c.RemoteAddr().String() }

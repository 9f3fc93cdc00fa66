package websocket

import (
	"errors"
	"sync"
	"time"
)

// errConnClosed is returned by a fakeConn once Close has been called.
var errConnClosed = errors.New("connection closed")

// fakeConn is a scripted Connection for hub and client tests. Reads block
// until a frame is queued with QueueRead or the connection is closed;
// writes are recorded for later inspection.
type fakeConn struct {
	mu       sync.Mutex
	reads    chan fakeFrame
	done     chan struct{}
	closed   bool
	written  []fakeFrame
	writeErr error
	addr     string

	readLimit    int64
	pongHandler  func(string) error
	pingHandler  func(string) error
	closeHandler func(code int, text string) error
}

type fakeFrame struct {
	Type int
	Data []byte
}

// newFakeConn builds a fakeConn with a small read queue.
func newFakeConn() *fakeConn {
	return &fakeConn{
		reads: make(chan fakeFrame, 16),
		done:  make(chan struct{}),
		addr:  "127.0.0.1:54321",
	}
}

// QueueRead schedules a frame for the next ReadMessage call.
func (f *fakeConn) QueueRead(messageType int, data []byte) {
	f.reads <- fakeFrame{Type: messageType, Data: data}
}

// FailWrites makes every subsequent WriteMessage return err.
func (f *fakeConn) FailWrites(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.writeErr = err
}

// Written returns a copy of every frame written so far.
func (f *fakeConn) Written() []fakeFrame {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]fakeFrame, len(f.written))
	copy(out, f.written)
	return out
}

func (f *fakeConn) WriteMessage(messageType int, data []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return errConnClosed
	}
	if f.writeErr != nil {
		return f.writeErr
	}
	f.written = append(f.written, fakeFrame{Type: messageType, Data: data})
	return nil
}

func (f *fakeConn) ReadMessage() (int, []byte, error) {
	select {
	case frame := <-f.reads:
		return frame.Type, frame.Data, nil
	case <-f.done:
		return 0, nil, errConnClosed
	}
}

func (f *fakeConn) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.closed {
		f.closed = true
		close(f.done)
	}
	return nil
}

func (f *fakeConn) SetReadDeadline(time.Time) error  { return nil }
func (f *fakeConn) SetWriteDeadline(time.Time) error { return nil }

func (f *fakeConn) SetReadLimit(limit int64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.readLimit = limit
}

func (f *fakeConn) SetPongHandler(h func(string) error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pongHandler = h
}

func (f *fakeConn) SetPingHandler(h func(string) error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pingHandler = h
}

func (f *fakeConn) SetCloseHandler(h func(code int, text string) error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closeHandler = h
}

func (f *fakeConn) RemoteAddr() string { return f.addr }

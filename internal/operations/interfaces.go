package operations

// WebSocketHub interface for sending WebSocket messages
type WebSocketHub interface {
	BroadcastUpdate(eventType, step, status string, metadata interface{})
}

// StepOptions contains optional dependencies for steps
type StepOptions struct {
	WebSocketHub      WebSocketHub
	EnableProgress    bool
	StatusBroadcaster *StatusBroadcaster
}

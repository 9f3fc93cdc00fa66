// Package events contains the WebSocket message contract shared between
// the fuel analytics server and its dashboard clients.
package events

import (
	"time"
)

// MessageType defines the type of WebSocket message
type MessageType string

const (
	// MessageTypeOperationSnapshot carries the full state of a refresh
	// operation. It is the only message type used for pipeline progress.
	MessageTypeOperationSnapshot MessageType = "operation:snapshot"

	// MessageTypeConnection acknowledges a new connection.
	MessageTypeConnection MessageType = "connection"

	// MessageTypeError is a structured server-side error event.
	MessageTypeError MessageType = "error"

	// MessageTypeDataUpdate announces that server-side data changed and
	// the named components should re-fetch.
	MessageTypeDataUpdate MessageType = "data_update"
)

// BaseMessage represents the base structure for all WebSocket messages
type BaseMessage struct {
	ID        string      `json:"id,omitempty"`
	Type      MessageType `json:"type"`
	Timestamp time.Time   `json:"timestamp"`
	TraceID   string      `json:"trace_id,omitempty"`
}

// WebSocketMessage represents a complete WebSocket message
type WebSocketMessage struct {
	BaseMessage
	Data    interface{} `json:"data,omitempty"`
	Subtype string      `json:"subtype,omitempty"`
	Action  string      `json:"action,omitempty"`
}

// OperationSnapshot is the payload of an operation:snapshot message: the
// complete state of a refresh operation at one point in time. Clients
// replace their local state with it rather than merging partial events.
type OperationSnapshot struct {
	OperationID string         `json:"operation_id"`
	Status      string         `json:"status"`       // pending|running|completed|failed|cancelled
	Progress    int            `json:"progress"`     // 0-100
	CurrentStep string         `json:"current_step"` // current active step name
	Steps       []StepSnapshot `json:"steps"`
	StartedAt   time.Time      `json:"started_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	CompletedAt *time.Time     `json:"completed_at,omitempty"`
	Error       string         `json:"error,omitempty"`
	Message     string         `json:"message,omitempty"`
}

// StepSnapshot represents the state of a single pipeline step
type StepSnapshot struct {
	ID       string                 `json:"id"`
	Name     string                 `json:"name"`
	Status   string                 `json:"status"`   // pending|running|completed|failed|skipped
	Progress int                    `json:"progress"` // 0-100
	Message  string                 `json:"message,omitempty"`
	Error    string                 `json:"error,omitempty"`
	Metadata map[string]interface{} `json:"metadata,omitempty"`
}

// DatasetRefresh is the payload of a data_update message announcing that
// the in-memory dataset was replaced and dependent views should reload.
type DatasetRefresh struct {
	Source     string   `json:"source"`
	Components []string `json:"components"`
}

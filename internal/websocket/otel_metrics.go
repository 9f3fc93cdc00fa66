package websocket

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const meterName = "fuelpulse.websocket"

// OTelMetrics exports hub and client activity through OpenTelemetry.
type OTelMetrics struct {
	connectionsTotal   metric.Int64Counter
	connectionsActive  metric.Int64UpDownCounter
	connectionDuration metric.Float64Histogram

	messagesTotal metric.Int64Counter
	messageBytes  metric.Int64Counter

	broadcastsTotal metric.Int64Counter
	clientCount     metric.Int64Gauge
}

// NewOTelMetrics registers the websocket instruments on the global meter.
func NewOTelMetrics() (*OTelMetrics, error) {
	meter := otel.Meter(meterName)
	m := &OTelMetrics{}

	var err error
	m.connectionsTotal, err = meter.Int64Counter(
		"websocket_connections_total",
		metric.WithDescription("WebSocket connections accepted"),
	)
	if err != nil {
		return nil, err
	}

	m.connectionsActive, err = meter.Int64UpDownCounter(
		"websocket_connections_active",
		metric.WithDescription("Currently open WebSocket connections"),
	)
	if err != nil {
		return nil, err
	}

	m.connectionDuration, err = meter.Float64Histogram(
		"websocket_connection_duration_seconds",
		metric.WithDescription("Session length at disconnect"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	m.messagesTotal, err = meter.Int64Counter(
		"websocket_messages_total",
		metric.WithDescription("Messages exchanged with clients"),
	)
	if err != nil {
		return nil, err
	}

	m.messageBytes, err = meter.Int64Counter(
		"websocket_message_bytes_total",
		metric.WithDescription("Payload bytes exchanged with clients"),
	)
	if err != nil {
		return nil, err
	}

	m.broadcastsTotal, err = meter.Int64Counter(
		"websocket_broadcasts_total",
		metric.WithDescription("Hub broadcast fan-outs"),
	)
	if err != nil {
		return nil, err
	}

	m.clientCount, err = meter.Int64Gauge(
		"websocket_client_count",
		metric.WithDescription("Connected clients"),
	)
	if err != nil {
		return nil, err
	}

	return m, nil
}

// RecordConnection counts an accepted connection.
func (m *OTelMetrics) RecordConnection(ctx context.Context, clientID, remoteAddr string) {
	attrs := metric.WithAttributes(
		attribute.String("client_id", clientID),
		attribute.String("remote_addr", remoteAddr),
	)
	m.connectionsTotal.Add(ctx, 1, attrs)
	m.connectionsActive.Add(ctx, 1, attrs)
}

// RecordDisconnection counts a disconnect and observes the session length.
func (m *OTelMetrics) RecordDisconnection(ctx context.Context, clientID string, duration time.Duration, reason string) {
	attrs := metric.WithAttributes(
		attribute.String("client_id", clientID),
		attribute.String("disconnect_reason", reason),
	)
	m.connectionsActive.Add(ctx, -1, attrs)
	m.connectionDuration.Record(ctx, duration.Seconds(), attrs)
}

// RecordMessageSent counts an outbound message.
func (m *OTelMetrics) RecordMessageSent(ctx context.Context, messageType, clientID string, size int64) {
	m.recordMessage(ctx, "outbound", messageType, clientID, size)
}

// RecordMessageReceived counts an inbound message.
func (m *OTelMetrics) RecordMessageReceived(ctx context.Context, messageType, clientID string, size int64) {
	m.recordMessage(ctx, "inbound", messageType, clientID, size)
}

func (m *OTelMetrics) recordMessage(ctx context.Context, direction, messageType, clientID string, size int64) {
	attrs := metric.WithAttributes(
		attribute.String("direction", direction),
		attribute.String("message_type", messageType),
		attribute.String("client_id", clientID),
	)
	m.messagesTotal.Add(ctx, 1, attrs)
	m.messageBytes.Add(ctx, size, attrs)
}

// RecordBroadcast counts one hub fan-out with its delivery outcome.
func (m *OTelMetrics) RecordBroadcast(ctx context.Context, messageType string, clientCount, successCount, failCount int64) {
	m.broadcastsTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("message_type", messageType),
		attribute.Int64("client_count", clientCount),
		attribute.Int64("success_count", successCount),
		attribute.Int64("fail_count", failCount),
	))
}

// RecordClientCount gauges the current client total.
func (m *OTelMetrics) RecordClientCount(ctx context.Context, count int64) {
	m.clientCount.Record(ctx, count)
}

var globalOTelMetrics *OTelMetrics

// InitOTelMetrics wires the package-level instance used by the hub and
// clients. Called once at startup, after the meter provider exists.
func InitOTelMetrics() error {
	m, err := NewOTelMetrics()
	if err != nil {
		return err
	}
	globalOTelMetrics = m
	return nil
}

// GetOTelMetrics returns the package-level instance, nil before Init.
func GetOTelMetrics() *OTelMetrics {
	return globalOTelMetrics
}

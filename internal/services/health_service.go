package services

import (
	"context"
	"log/slog"
	"os"
	"runtime"
	"time"
)

// DatasetStatusProvider reports dataset availability for health checks
type DatasetStatusProvider interface {
	Loaded() bool
	Snapshot() (*Snapshot, error)
}

// ClientCounter reports connected WebSocket clients
type ClientCounter interface {
	ClientCount() int
}

// RefreshStatusProvider reports whether a refresh is in flight
type RefreshStatusProvider interface {
	Running() bool
}

// HealthService provides health check functionality
type HealthService struct {
	version   string
	buildTime string
	dataset   DatasetStatusProvider
	refresh   RefreshStatusProvider
	clients   ClientCounter
	startTime time.Time
	logger    *slog.Logger
}

// HealthStatus represents the health status response
type HealthStatus struct {
	Status    string                 `json:"status"`
	Timestamp time.Time              `json:"timestamp"`
	Version   string                 `json:"version"`
	Runtime   map[string]interface{} `json:"runtime,omitempty"`
	Services  map[string]interface{} `json:"services,omitempty"`
}

// ServiceHealth represents individual service health
type ServiceHealth struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// NewHealthService creates a health service. Any dependency may be nil,
// in which case its section is omitted from the report.
func NewHealthService(version, buildTime string, dataset DatasetStatusProvider, refresh RefreshStatusProvider, clients ClientCounter, logger *slog.Logger) *HealthService {
	if logger == nil {
		logger = slog.Default()
	}

	return &HealthService{
		version:   version,
		buildTime: buildTime,
		dataset:   dataset,
		refresh:   refresh,
		clients:   clients,
		startTime: time.Now(),
		logger:    logger.With(slog.String("component", "health_service")),
	}
}

// Check returns the overall health status. The server is degraded, not
// down, when the dataset has not been loaded yet.
func (s *HealthService) Check(ctx context.Context) HealthStatus {
	status := HealthStatus{
		Status:    "healthy",
		Timestamp: time.Now().UTC(),
		Version:   s.version,
		Runtime:   s.runtimeStats(),
		Services:  make(map[string]interface{}),
	}

	if s.dataset != nil {
		if s.dataset.Loaded() {
			detail := ServiceHealth{Status: "healthy"}
			if snap, err := s.dataset.Snapshot(); err == nil {
				detail.Message = snap.SourceFile
			}
			status.Services["dataset"] = detail
		} else {
			status.Status = "degraded"
			status.Services["dataset"] = ServiceHealth{
				Status:  "degraded",
				Message: "dataset not loaded",
			}
		}
	}

	if s.refresh != nil {
		refreshStatus := "idle"
		if s.refresh.Running() {
			refreshStatus = "running"
		}
		status.Services["refresh"] = ServiceHealth{Status: refreshStatus}
	}

	if s.clients != nil {
		status.Services["websocket"] = map[string]interface{}{
			"status":  "healthy",
			"clients": s.clients.ClientCount(),
		}
	}

	return status
}

// Ready reports whether the server can answer analytics queries
func (s *HealthService) Ready(ctx context.Context) bool {
	return s.dataset == nil || s.dataset.Loaded()
}

// Uptime returns time since service start
func (s *HealthService) Uptime() time.Duration {
	return time.Since(s.startTime)
}

func (s *HealthService) runtimeStats() map[string]interface{} {
	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)

	hostname, _ := os.Hostname()

	return map[string]interface{}{
		"go_version":     runtime.Version(),
		"os":             runtime.GOOS,
		"arch":           runtime.GOARCH,
		"goroutines":     runtime.NumGoroutine(),
		"alloc_mb":       mem.Alloc / 1024 / 1024,
		"uptime_seconds": time.Since(s.startTime).Seconds(),
		"hostname":       hostname,
	}
}

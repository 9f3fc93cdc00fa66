package infrastructure

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"go.opentelemetry.io/otel/metric"
)

// SystemMetricsCollector periodically samples the Go runtime and records
// the readings as OpenTelemetry gauges. It runs for the lifetime of the
// server process.
type SystemMetricsCollector struct {
	startTime time.Time
	interval  time.Duration
	stopCh    chan struct{}

	goroutines metric.Int64Gauge
	heapInUse  metric.Int64Gauge
	heapTotal  metric.Int64Gauge
	sysMemory  metric.Int64Gauge
	gcPause    metric.Float64Histogram
	uptime     metric.Float64Gauge
}

// NewSystemMetricsCollector registers the runtime instruments on meter.
func NewSystemMetricsCollector(meter metric.Meter, interval time.Duration) (*SystemMetricsCollector, error) {
	c := &SystemMetricsCollector{
		startTime: time.Now(),
		interval:  interval,
		stopCh:    make(chan struct{}),
	}

	var err error
	if c.goroutines, err = meter.Int64Gauge(
		"system_goroutines",
		metric.WithDescription("Active goroutines"),
	); err != nil {
		return nil, fmt.Errorf("register runtime instruments: %w", err)
	}
	if c.heapInUse, err = meter.Int64Gauge(
		"system_heap_inuse_bytes",
		metric.WithDescription("Heap bytes currently allocated"),
		metric.WithUnit("By"),
	); err != nil {
		return nil, fmt.Errorf("register runtime instruments: %w", err)
	}
	if c.heapTotal, err = meter.Int64Gauge(
		"system_heap_total_bytes",
		metric.WithDescription("Cumulative heap bytes allocated"),
		metric.WithUnit("By"),
	); err != nil {
		return nil, fmt.Errorf("register runtime instruments: %w", err)
	}
	if c.sysMemory, err = meter.Int64Gauge(
		"system_memory_bytes",
		metric.WithDescription("Memory obtained from the OS"),
		metric.WithUnit("By"),
	); err != nil {
		return nil, fmt.Errorf("register runtime instruments: %w", err)
	}
	if c.gcPause, err = meter.Float64Histogram(
		"system_gc_pause_seconds",
		metric.WithDescription("Most recent GC pause"),
		metric.WithUnit("s"),
	); err != nil {
		return nil, fmt.Errorf("register runtime instruments: %w", err)
	}
	if c.uptime, err = meter.Float64Gauge(
		"system_uptime_seconds",
		metric.WithDescription("Process uptime"),
		metric.WithUnit("s"),
	); err != nil {
		return nil, fmt.Errorf("register runtime instruments: %w", err)
	}

	return c, nil
}

// Start samples immediately and then on every interval tick until Stop is
// called or ctx is cancelled. Run it on its own goroutine.
func (c *SystemMetricsCollector) Start(ctx context.Context) {
	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	c.sample(ctx)
	for {
		select {
		case <-ticker.C:
			c.sample(ctx)
		case <-c.stopCh:
			return
		case <-ctx.Done():
			return
		}
	}
}

// Stop ends the sampling loop.
func (c *SystemMetricsCollector) Stop() {
	close(c.stopCh)
}

func (c *SystemMetricsCollector) sample(ctx context.Context) {
	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)

	c.goroutines.Record(ctx, int64(runtime.NumGoroutine()))
	c.heapInUse.Record(ctx, int64(mem.Alloc))
	c.heapTotal.Record(ctx, int64(mem.TotalAlloc))
	c.sysMemory.Record(ctx, int64(mem.Sys))
	c.uptime.Record(ctx, time.Since(c.startTime).Seconds())

	// PauseNs is a circular buffer indexed by GC cycle
	if mem.NumGC > 0 {
		pause := time.Duration(mem.PauseNs[(mem.NumGC+255)%256])
		c.gcPause.Record(ctx, pause.Seconds())
	}
}

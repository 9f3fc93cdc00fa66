package websocket

import (
	"sync"
	"time"
)

// sessionWindow is how many recent session durations feed the average.
const sessionWindow = 100

// Stats tracks process-wide session counters for the hub. Per-message
// counters live on the Hub itself; this covers session lifecycle and
// broadcast queue pressure, and survives hub restarts.
type Stats struct {
	mu sync.Mutex

	totalSessions  int64
	activeSessions int64
	peakSessions   int64

	peakQueueDepth     int64
	smoothedQueueDepth int64

	durations [sessionWindow]time.Duration
	durCount  int
	durNext   int
}

// StatsSnapshot is a point-in-time copy of the counters.
type StatsSnapshot struct {
	TotalSessions      int64         `json:"total_sessions"`
	ActiveSessions     int64         `json:"active_sessions"`
	PeakSessions       int64         `json:"peak_sessions"`
	AvgSessionDuration time.Duration `json:"avg_session_duration"`
	PeakQueueDepth     int64         `json:"peak_queue_depth"`
	SmoothedQueueDepth int64         `json:"smoothed_queue_depth"`
}

// SessionOpened records a client registration.
func (s *Stats) SessionOpened() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.totalSessions++
	s.activeSessions++
	if s.activeSessions > s.peakSessions {
		s.peakSessions = s.activeSessions
	}
}

// SessionClosed records a client disconnect and its session duration.
func (s *Stats) SessionClosed(d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.activeSessions--
	s.durations[s.durNext] = d
	s.durNext = (s.durNext + 1) % sessionWindow
	if s.durCount < sessionWindow {
		s.durCount++
	}
}

// ObserveQueueDepth samples the broadcast channel backlog.
func (s *Stats) ObserveQueueDepth(depth int64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if depth > s.peakQueueDepth {
		s.peakQueueDepth = depth
	}
	// Exponential smoothing, heavily weighted toward history
	if s.smoothedQueueDepth == 0 {
		s.smoothedQueueDepth = depth
	} else {
		s.smoothedQueueDepth = (s.smoothedQueueDepth*9 + depth) / 10
	}
}

// Snapshot copies the current counters.
func (s *Stats) Snapshot() StatsSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	var avg time.Duration
	if s.durCount > 0 {
		var total time.Duration
		for i := 0; i < s.durCount; i++ {
			total += s.durations[i]
		}
		avg = total / time.Duration(s.durCount)
	}

	return StatsSnapshot{
		TotalSessions:      s.totalSessions,
		ActiveSessions:     s.activeSessions,
		PeakSessions:       s.peakSessions,
		AvgSessionDuration: avg,
		PeakQueueDepth:     s.peakQueueDepth,
		SmoothedQueueDepth: s.smoothedQueueDepth,
	}
}

var hubStats Stats

// HubStats returns the process-wide session counters.
func HubStats() *Stats {
	return &hubStats
}

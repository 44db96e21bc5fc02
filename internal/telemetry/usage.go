package telemetry

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// maxTrackedEvents bounds the event buffer so long sessions don't grow
// without limit.
const maxTrackedEvents = 1000

// Event is one tracked usage event.
type Event struct {
	ID        string            `json:"id"`
	Timestamp time.Time         `json:"timestamp"`
	Type      string            `json:"type"`
	Metadata  map[string]string `json:"metadata,omitempty"`
}

// UsageTracker records usage events for session statistics. It keeps at most
// maxTrackedEvents recent events, dropping the oldest. Safe for concurrent
// use.
type UsageTracker struct {
	mu           sync.Mutex
	sessionStart time.Time
	events       []Event
	maxEvents    int
}

// NewUsageTracker creates a tracker with the default event cap.
func NewUsageTracker() *UsageTracker {
	return NewUsageTrackerWithCap(maxTrackedEvents)
}

// NewUsageTrackerWithCap creates a tracker keeping at most maxEvents events.
func NewUsageTrackerWithCap(maxEvents int) *UsageTracker {
	if maxEvents <= 0 {
		maxEvents = maxTrackedEvents
	}
	return &UsageTracker{
		sessionStart: time.Now(),
		maxEvents:    maxEvents,
	}
}

// Track records an event and returns its generated ID.
func (u *UsageTracker) Track(eventType string, metadata map[string]string) string {
	u.mu.Lock()
	defer u.mu.Unlock()

	ev := Event{
		ID:        uuid.New().String(),
		Timestamp: time.Now(),
		Type:      eventType,
		Metadata:  metadata,
	}
	u.events = append(u.events, ev)
	if len(u.events) > u.maxEvents {
		u.events = u.events[len(u.events)-u.maxEvents:]
	}
	return ev.ID
}

// SessionStats summarizes the current session.
type SessionStats struct {
	SessionDuration time.Duration  `json:"session_duration"`
	TotalEvents     int            `json:"total_events"`
	EventBreakdown  map[string]int `json:"event_breakdown"`
}

// Stats returns counts per event type for the current session.
func (u *UsageTracker) Stats() SessionStats {
	u.mu.Lock()
	defer u.mu.Unlock()

	breakdown := make(map[string]int)
	for _, ev := range u.events {
		breakdown[ev.Type]++
	}
	return SessionStats{
		SessionDuration: time.Since(u.sessionStart),
		TotalEvents:     len(u.events),
		EventBreakdown:  breakdown,
	}
}

// Export renders session stats and the most recent events as JSON.
func (u *UsageTracker) Export() (string, error) {
	stats := u.Stats()

	u.mu.Lock()
	recent := u.events
	if len(recent) > 100 {
		recent = recent[len(recent)-100:]
	}
	events := make([]Event, len(recent))
	copy(events, recent)
	u.mu.Unlock()

	out, err := json.MarshalIndent(struct {
		ExportedAt time.Time    `json:"exported_at"`
		Stats      SessionStats `json:"session_stats"`
		Events     []Event      `json:"events"`
	}{
		ExportedAt: time.Now(),
		Stats:      stats,
		Events:     events,
	}, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to export usage data: %w", err)
	}
	return string(out), nil
}

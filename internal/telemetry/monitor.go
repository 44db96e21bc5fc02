package telemetry

import (
	"fmt"
	"sync"
	"time"
)

// Monitor accumulates performance counters for AI calls. Safe for concurrent
// use.
type Monitor struct {
	mu          sync.Mutex
	aiCalls     int
	aiTotalTime time.Duration
	aiTotalSize int
}

// NewMonitor creates an empty performance monitor.
func NewMonitor() *Monitor {
	return &Monitor{}
}

// RecordAICall tracks one completed generation: its wall time and the size
// of the returned text in bytes.
func (m *Monitor) RecordAICall(elapsed time.Duration, resultSize int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.aiCalls++
	m.aiTotalTime += elapsed
	m.aiTotalSize += resultSize
}

// Stats is a snapshot of the monitor's counters.
type Stats struct {
	AICalls     int
	AvgCallTime time.Duration
	TotalOutput int
}

// Snapshot returns the current counters. Averages are zero when no calls
// have been recorded.
func (m *Monitor) Snapshot() Stats {
	m.mu.Lock()
	defer m.mu.Unlock()

	s := Stats{
		AICalls:     m.aiCalls,
		TotalOutput: m.aiTotalSize,
	}
	if m.aiCalls > 0 {
		s.AvgCallTime = m.aiTotalTime / time.Duration(m.aiCalls)
	}
	return s
}

// String renders the stats for status output.
func (s Stats) String() string {
	return fmt.Sprintf("ai_calls=%d avg_time=%s total_output=%dB", s.AICalls, s.AvgCallTime.Round(time.Millisecond), s.TotalOutput)
}

package timing

import (
	"sync"
	"time"
)

// Monitor records elapsed time between named checkpoints for one run. Safe
// for concurrent checkpointing.
type Monitor struct {
	mu          sync.Mutex
	now         func() time.Time
	start       time.Time
	names       []string
	elapsed     map[string]time.Duration
	started     bool
}

// MonitorOption overrides the monitor clock, used by tests.
type MonitorOption func(*Monitor)

func WithMonitorClock(now func() time.Time) MonitorOption {
	return func(m *Monitor) { m.now = now }
}

func NewMonitor(opts ...MonitorOption) *Monitor {
	m := &Monitor{
		now:     time.Now,
		elapsed: make(map[string]time.Duration),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Start resets the monitor and marks time zero.
func (m *Monitor) Start() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.start = m.now()
	m.names = nil
	m.elapsed = make(map[string]time.Duration)
	m.started = true
}

// Checkpoint records the time elapsed since Start under name and returns it.
// A checkpoint before Start implicitly starts the monitor.
func (m *Monitor) Checkpoint(name string) time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.started {
		m.start = m.now()
		m.started = true
	}
	d := m.now().Sub(m.start)
	if _, seen := m.elapsed[name]; !seen {
		m.names = append(m.names, name)
	}
	m.elapsed[name] = d
	return d
}

// Summary returns the duration of each checkpoint interval, keyed
// "<name>_duration", plus "total_duration" for the whole run.
func (m *Monitor) Summary() map[string]time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()

	summary := make(map[string]time.Duration, len(m.names)+1)
	var prev, total time.Duration
	for _, name := range m.names {
		d := m.elapsed[name]
		summary[name+"_duration"] = d - prev
		prev = d
		if d > total {
			total = d
		}
	}
	summary["total_duration"] = total
	return summary
}

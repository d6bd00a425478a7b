package logger

import (
	"sync"
	"time"
)

// Counters tracks in-process counters and timings. All operations are safe
// for concurrent use. These are run-scoped diagnostics; the metrics package
// exports the Prometheus view.
type Counters struct {
	mu       sync.Mutex
	counters map[string]int64
	timings  map[string][]time.Duration
}

var defaultCounters = NewCounters()

// NewCounters creates an empty tracker.
func NewCounters() *Counters {
	return &Counters{
		counters: make(map[string]int64),
		timings:  make(map[string][]time.Duration),
	}
}

// Incr increments a named counter by one.
func (c *Counters) Incr(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.counters[name]++
}

// Add increments a named counter by n.
func (c *Counters) Add(name string, n int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.counters[name] += n
}

// RecordTiming appends a duration sample.
func (c *Counters) RecordTiming(name string, d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.timings[name] = append(c.timings[name], d)
}

// Snapshot returns a copy of the counter values.
func (c *Counters) Snapshot() map[string]int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make(map[string]int64, len(c.counters))
	for k, v := range c.counters {
		out[k] = v
	}
	return out
}

// TimingStats returns min, max and average for a timing series. ok is false
// when no samples were recorded.
func (c *Counters) TimingStats(name string) (min, max, avg time.Duration, ok bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	samples := c.timings[name]
	if len(samples) == 0 {
		return 0, 0, 0, false
	}
	min, max = samples[0], samples[0]
	var total time.Duration
	for _, d := range samples {
		if d < min {
			min = d
		}
		if d > max {
			max = d
		}
		total += d
	}
	return min, max, total / time.Duration(len(samples)), true
}

// IncrCounter increments a counter on the default tracker.
func IncrCounter(name string) { defaultCounters.Incr(name) }

// RecordTiming records a duration on the default tracker.
func RecordTiming(name string, d time.Duration) { defaultCounters.RecordTiming(name, d) }

// CountersSnapshot returns the default tracker's counter values.
func CountersSnapshot() map[string]int64 { return defaultCounters.Snapshot() }

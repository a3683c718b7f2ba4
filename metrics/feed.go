// Package metrics provides in-process collectors for the streaming and REST clients.
package metrics

import (
	"sync"
	"sync/atomic"
	"time"
)

// FeedCollector collects streaming feed metrics. All methods are safe for
// concurrent use.
type FeedCollector struct {
	messagesReceived atomic.Int64
	bytesReceived    atomic.Int64
	ticksApplied     atomic.Int64
	errors           atomic.Int64

	activeConnections atomic.Int32
	totalConnections  atomic.Int64
	reconnections     atomic.Int64

	mu              sync.RWMutex
	latencies       []time.Duration
	maxLatencyCount int
}

// NewFeedCollector creates a new feed metrics collector
func NewFeedCollector() *FeedCollector {
	return &FeedCollector{
		maxLatencyCount: 1000, // keep the last 1000 handling-latency samples
		latencies:       make([]time.Duration, 0, 1000),
	}
}

// RecordMessageReceived records one socket delivery and its handling latency
func (f *FeedCollector) RecordMessageReceived(bytes int, latency time.Duration) {
	f.messagesReceived.Add(1)
	f.bytesReceived.Add(int64(bytes))
	f.recordLatency(latency)
}

// RecordTick records one tick applied to the cache
func (f *FeedCollector) RecordTick() {
	f.ticksApplied.Add(1)
}

// RecordError records a dropped or failed message
func (f *FeedCollector) RecordError() {
	f.errors.Add(1)
}

// RecordConnection records a connection state change
func (f *FeedCollector) RecordConnection(connected bool) {
	if connected {
		f.activeConnections.Add(1)
		f.totalConnections.Add(1)
	} else {
		f.activeConnections.Add(-1)
	}
}

// RecordReconnection records a reconnection attempt
func (f *FeedCollector) RecordReconnection() {
	f.reconnections.Add(1)
}

func (f *FeedCollector) recordLatency(latency time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if len(f.latencies) >= f.maxLatencyCount {
		f.latencies = f.latencies[1:]
	}
	f.latencies = append(f.latencies, latency)
}

// GetMetrics returns current metrics as a map
func (f *FeedCollector) GetMetrics() map[string]interface{} {
	f.mu.RLock()
	defer f.mu.RUnlock()

	m := map[string]interface{}{
		"messages_received":  f.messagesReceived.Load(),
		"bytes_received":     f.bytesReceived.Load(),
		"ticks_applied":      f.ticksApplied.Load(),
		"errors":             f.errors.Load(),
		"active_connections": f.activeConnections.Load(),
		"total_connections":  f.totalConnections.Load(),
		"reconnections":      f.reconnections.Load(),
	}

	if len(f.latencies) > 0 {
		var sum time.Duration
		min, max := f.latencies[0], f.latencies[0]
		for _, lat := range f.latencies {
			sum += lat
			if lat < min {
				min = lat
			}
			if lat > max {
				max = lat
			}
		}
		m["avg_latency_ms"] = float64(sum.Milliseconds()) / float64(len(f.latencies))
		m["min_latency_ms"] = min.Milliseconds()
		m["max_latency_ms"] = max.Milliseconds()
		m["latency_samples"] = len(f.latencies)
	}

	return m
}

// Reset resets all metrics to zero
func (f *FeedCollector) Reset() {
	f.messagesReceived.Store(0)
	f.bytesReceived.Store(0)
	f.ticksApplied.Store(0)
	f.errors.Store(0)
	f.totalConnections.Store(0)
	f.reconnections.Store(0)

	f.mu.Lock()
	f.latencies = make([]time.Duration, 0, f.maxLatencyCount)
	f.mu.Unlock()
}

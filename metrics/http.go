package metrics

import (
	"fmt"
	"sync"
	"time"
)

// HTTPCollector collects REST request metrics keyed by "METHOD /path"
type HTTPCollector struct {
	mu               sync.RWMutex
	requestCounts    map[string]int64
	requestDurations map[string]int64 // milliseconds, summed
	errorCounts      map[string]int64
	statusCodes      map[int]int64
}

// NewHTTPCollector creates a new HTTP metrics collector
func NewHTTPCollector() *HTTPCollector {
	return &HTTPCollector{
		requestCounts:    make(map[string]int64),
		requestDurations: make(map[string]int64),
		errorCounts:      make(map[string]int64),
		statusCodes:      make(map[int]int64),
	}
}

// RecordRequest records one request outcome
func (h *HTTPCollector) RecordRequest(method, path string, statusCode int, duration time.Duration, err error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	endpoint := fmt.Sprintf("%s %s", method, path)
	h.requestCounts[endpoint]++
	h.requestDurations[endpoint] += duration.Milliseconds()

	if err != nil {
		h.errorCounts[endpoint]++
	}
	if statusCode > 0 {
		h.statusCodes[statusCode]++
	}
}

// GetMetrics returns current metrics as a map
func (h *HTTPCollector) GetMetrics() map[string]interface{} {
	h.mu.RLock()
	defer h.mu.RUnlock()

	var totalRequests, totalErrors int64
	counts := make(map[string]int64, len(h.requestCounts))
	for k, v := range h.requestCounts {
		counts[k] = v
		totalRequests += v
	}
	durations := make(map[string]int64, len(h.requestDurations))
	for k, v := range h.requestDurations {
		durations[k] = v
	}
	errs := make(map[string]int64, len(h.errorCounts))
	for k, v := range h.errorCounts {
		errs[k] = v
		totalErrors += v
	}
	statuses := make(map[int]int64, len(h.statusCodes))
	for k, v := range h.statusCodes {
		statuses[k] = v
	}

	return map[string]interface{}{
		"request_counts":       counts,
		"request_durations_ms": durations,
		"error_counts":         errs,
		"status_codes":         statuses,
		"total_requests":       totalRequests,
		"total_errors":         totalErrors,
	}
}

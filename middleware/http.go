package middleware

import (
	"net/http"
	"time"

	"github.com/rs/zerolog"
)

// RoundTripperFunc adapts a function to http.RoundTripper
type RoundTripperFunc func(*http.Request) (*http.Response, error)

func (f RoundTripperFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

// ChainRoundTrippers composes RoundTripper wrappers around a base transport.
// Wrappers are applied in order: first wrapper is outermost.
func ChainRoundTrippers(transport http.RoundTripper, wrappers ...func(http.RoundTripper) http.RoundTripper) http.RoundTripper {
	result := transport
	for i := len(wrappers) - 1; i >= 0; i-- {
		result = wrappers[i](result)
	}
	return result
}

// HTTPMetricsCollector defines the interface for collecting HTTP request metrics
type HTTPMetricsCollector interface {
	RecordRequest(method, path string, statusCode int, duration time.Duration, err error)
}

// LoggingRoundTripper logs each request with method, path, status and duration
func LoggingRoundTripper(logger zerolog.Logger) func(http.RoundTripper) http.RoundTripper {
	return func(next http.RoundTripper) http.RoundTripper {
		return RoundTripperFunc(func(req *http.Request) (*http.Response, error) {
			start := time.Now()
			resp, err := next.RoundTrip(req)
			evt := logger.Debug().
				Str("method", req.Method).
				Str("path", req.URL.Path).
				Dur("took", time.Since(start))
			if err != nil {
				logger.Warn().Err(err).
					Str("method", req.Method).
					Str("path", req.URL.Path).
					Dur("took", time.Since(start)).
					Msg("request failed")
				return resp, err
			}
			evt.Int("status", resp.StatusCode).Msg("request")
			return resp, nil
		})
	}
}

// MetricsRoundTripper records request counts, durations and errors
func MetricsRoundTripper(collector HTTPMetricsCollector) func(http.RoundTripper) http.RoundTripper {
	return func(next http.RoundTripper) http.RoundTripper {
		return RoundTripperFunc(func(req *http.Request) (*http.Response, error) {
			start := time.Now()
			resp, err := next.RoundTrip(req)

			statusCode := 0
			if resp != nil {
				statusCode = resp.StatusCode
			}
			collector.RecordRequest(req.Method, req.URL.Path, statusCode, time.Since(start), err)

			return resp, err
		})
	}
}

// HeaderRoundTripper sets a fixed header on every outgoing request
func HeaderRoundTripper(key, value string) func(http.RoundTripper) http.RoundTripper {
	return func(next http.RoundTripper) http.RoundTripper {
		return RoundTripperFunc(func(req *http.Request) (*http.Response, error) {
			req.Header.Set(key, value)
			return next.RoundTrip(req)
		})
	}
}

// Package middleware provides composable wrappers for HTTP requests and
// WebSocket message handling.
package middleware

import (
	"context"
	"fmt"
	"runtime/debug"
	"time"

	"github.com/rs/zerolog"
)

// WSMessageHandler handles a WebSocket message
type WSMessageHandler func(ctx context.Context, msg []byte) error

// WSMiddleware wraps a WebSocket message handler
type WSMiddleware func(WSMessageHandler) WSMessageHandler

// WSMetricsCollector defines the interface for collecting WebSocket metrics
type WSMetricsCollector interface {
	RecordMessageReceived(bytes int, latency time.Duration)
	RecordError()
}

// ChainWSMiddleware composes multiple middleware functions.
// Middleware is applied in order: first middleware is outermost.
func ChainWSMiddleware(middlewares ...WSMiddleware) WSMiddleware {
	return func(handler WSMessageHandler) WSMessageHandler {
		for i := len(middlewares) - 1; i >= 0; i-- {
			handler = middlewares[i](handler)
		}
		return handler
	}
}

// WSLoggingMiddleware logs each message delivery at debug level and handler
// failures at warn level
func WSLoggingMiddleware(logger zerolog.Logger) WSMiddleware {
	return func(next WSMessageHandler) WSMessageHandler {
		return func(ctx context.Context, msg []byte) error {
			start := time.Now()
			err := next(ctx, msg)
			if err != nil {
				logger.Warn().Err(err).Int("bytes", len(msg)).
					Dur("took", time.Since(start)).Msg("message dropped")
				return err
			}
			logger.Debug().Int("bytes", len(msg)).
				Dur("took", time.Since(start)).Msg("message processed")
			return nil
		}
	}
}

// WSMetricsMiddleware records message size, latency and errors
func WSMetricsMiddleware(collector WSMetricsCollector) WSMiddleware {
	if collector == nil {
		return func(next WSMessageHandler) WSMessageHandler {
			return next
		}
	}

	return func(next WSMessageHandler) WSMessageHandler {
		return func(ctx context.Context, msg []byte) error {
			start := time.Now()
			err := next(ctx, msg)
			collector.RecordMessageReceived(len(msg), time.Since(start))
			if err != nil {
				collector.RecordError()
			}
			return err
		}
	}
}

// WSRecoveryMiddleware converts a panic in message handling into an error so
// one poisoned message cannot take down the ingestion loop
func WSRecoveryMiddleware(logger zerolog.Logger) WSMiddleware {
	return func(next WSMessageHandler) WSMessageHandler {
		return func(ctx context.Context, msg []byte) (err error) {
			defer func() {
				if r := recover(); r != nil {
					logger.Error().Interface("panic", r).
						Bytes("stack", debug.Stack()).Msg("recovered in message handler")
					err = fmt.Errorf("panic recovered: %v", r)
				}
			}()
			return next(ctx, msg)
		}
	}
}

// WSTimeoutMiddleware bounds how long one message may spend in the handler
func WSTimeoutMiddleware(timeout time.Duration) WSMiddleware {
	return func(next WSMessageHandler) WSMessageHandler {
		return func(ctx context.Context, msg []byte) error {
			ctx, cancel := context.WithTimeout(ctx, timeout)
			defer cancel()

			done := make(chan error, 1)
			go func() {
				done <- next(ctx, msg)
			}()

			select {
			case err := <-done:
				return err
			case <-ctx.Done():
				return fmt.Errorf("message processing timeout: %w", ctx.Err())
			}
		}
	}
}

package orderupdate

import (
	"github.com/rs/zerolog"

	"github.com/thetatiger/fyers-go/metrics"
	"github.com/thetatiger/fyers-go/middleware"
)

// Option configures an order update Client
type Option func(*Client)

// WithConfig sets custom WebSocket tunables
func WithConfig(cfg *Config) Option {
	return func(c *Client) {
		c.config = cfg
	}
}

// WithLogger sets the logger used by the client
func WithLogger(logger zerolog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithMiddleware appends user middleware to the inbound message chain
func WithMiddleware(mw middleware.WSMiddleware) Option {
	return func(c *Client) {
		c.middleware = mw
	}
}

// WithMetrics enables metrics collection for the order socket
func WithMetrics(collector *metrics.FeedCollector) Option {
	return func(c *Client) {
		c.collector = collector
	}
}

// WithOrderUpdateCallback registers a callback invoked for every order update
func WithOrderUpdateCallback(cb OrderUpdateCallback) Option {
	return func(c *Client) {
		c.updateCallbacks = append(c.updateCallbacks, cb)
	}
}

// WithErrorCallback registers a callback invoked for parse and socket errors
func WithErrorCallback(cb ErrorCallback) Option {
	return func(c *Client) {
		c.errorCallbacks = append(c.errorCallbacks, cb)
	}
}

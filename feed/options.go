package feed

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/thetatiger/fyers-go/metrics"
	"github.com/thetatiger/fyers-go/middleware"
	"github.com/thetatiger/fyers-go/ticks"
)

// Option is a functional option for configuring the feed client
type Option func(*Client)

// WithConfig sets custom WebSocket tunables
func WithConfig(config *Config) Option {
	return func(c *Client) {
		c.config = config
	}
}

// WithLogger sets a zerolog logger
func WithLogger(logger zerolog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithMiddleware appends custom WebSocket middleware after the built-in chain
func WithMiddleware(mw middleware.WSMiddleware) Option {
	return func(c *Client) {
		c.middleware = mw
	}
}

// WithMetrics enables the in-process feed metrics collector
func WithMetrics(collector *metrics.FeedCollector) Option {
	return func(c *Client) {
		c.collector = collector
	}
}

// WithCache shares an externally-owned tick cache instead of the client's own
func WithCache(cache *ticks.Cache) Option {
	return func(c *Client) {
		c.cache = cache
	}
}

// WithPollInterval bounds the reconcile loop's sleep between passes
func WithPollInterval(interval time.Duration) Option {
	return func(c *Client) {
		if interval > 0 {
			c.pollInterval = interval
		}
	}
}

// WithInitialSymbols overrides the symbols subscribed on connect. The feed
// closes a connection with no active subscription, so an empty list means the
// caller must subscribe something promptly after connecting.
func WithInitialSymbols(symbols ...string) Option {
	return func(c *Client) {
		c.initialSymbols = symbols
	}
}

// WithTickCallback registers a tick data callback
func WithTickCallback(cb TickCallback) Option {
	return func(c *Client) {
		c.tickCallbacks = append(c.tickCallbacks, cb)
	}
}

// WithErrorCallback registers an error callback
func WithErrorCallback(cb ErrorCallback) Option {
	return func(c *Client) {
		c.errorCallbacks = append(c.errorCallbacks, cb)
	}
}

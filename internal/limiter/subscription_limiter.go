package limiter

import (
	"fmt"
	"sync/atomic"
)

// Fyers data socket limits
const (
	MaxSymbolsPerConnection = 200 // Max symbols subscribed on one socket
	MaxSymbolsPerMessage    = 50  // Max symbols in one subscription frame
)

// SubscriptionLimiter enforces Fyers' per-connection subscription limits
type SubscriptionLimiter struct {
	maxSymbolsPerConn    int
	maxSymbolsPerMessage int

	subscribed atomic.Int32
}

// NewSubscriptionLimiter creates a limiter with Fyers' default limits
func NewSubscriptionLimiter() *SubscriptionLimiter {
	return &SubscriptionLimiter{
		maxSymbolsPerConn:    MaxSymbolsPerConnection,
		maxSymbolsPerMessage: MaxSymbolsPerMessage,
	}
}

// NewSubscriptionLimiterWithLimits creates a limiter with custom limits
func NewSubscriptionLimiterWithLimits(maxPerConn, maxPerMessage int) *SubscriptionLimiter {
	return &SubscriptionLimiter{
		maxSymbolsPerConn:    maxPerConn,
		maxSymbolsPerMessage: maxPerMessage,
	}
}

// CanSubscribe checks whether adding symbolCount symbols would exceed limits
func (sl *SubscriptionLimiter) CanSubscribe(symbolCount int) error {
	if symbolCount > sl.maxSymbolsPerMessage {
		return fmt.Errorf("too many symbols in single message (%d/%d)",
			symbolCount, sl.maxSymbolsPerMessage)
	}

	current := sl.subscribed.Load()
	if current+int32(symbolCount) > int32(sl.maxSymbolsPerConn) {
		return fmt.Errorf("would exceed max symbols per connection (%d + %d > %d)",
			current, symbolCount, sl.maxSymbolsPerConn)
	}

	return nil
}

// RecordSubscribe accounts for symbols added to the connection
func (sl *SubscriptionLimiter) RecordSubscribe(symbolCount int) {
	sl.subscribed.Add(int32(symbolCount))
}

// RecordUnsubscribe accounts for symbols removed from the connection
func (sl *SubscriptionLimiter) RecordUnsubscribe(symbolCount int) {
	current := sl.subscribed.Add(int32(-symbolCount))
	if current < 0 {
		sl.subscribed.Store(0)
	}
}

// Subscribed returns the current accounted symbol count
func (sl *SubscriptionLimiter) Subscribed() int {
	return int(sl.subscribed.Load())
}

// Reset clears the accounting (useful for reconnects)
func (sl *SubscriptionLimiter) Reset() {
	sl.subscribed.Store(0)
}

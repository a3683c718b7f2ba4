package feed

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/rs/zerolog"
)

// Channel identifies what a streaming subscription delivers
type Channel string

const (
	// ChannelSymbolData delivers per-symbol market ticks
	ChannelSymbolData Channel = "SUB_DATA"
	// ChannelOrderUpdate delivers order lifecycle events
	ChannelOrderUpdate Channel = "SUB_ORD"
)

// Subscription actions on the wire
const (
	subActionSubscribe   = 1
	subActionUnsubscribe = 0
)

// subscriptionRequest is the JSON frame sent to the data socket
type subscriptionRequest struct {
	Type    string   `json:"T"`
	Symbols []string `json:"SLIST,omitempty"`
	Action  int      `json:"SUB_T"`
}

func marshalSubscription(channel Channel, symbols []string, action int) ([]byte, error) {
	return json.Marshal(subscriptionRequest{
		Type:    string(channel),
		Symbols: symbols,
		Action:  action,
	})
}

// Conn is the streaming-connection surface the subscription state is
// reconciled against
type Conn interface {
	SendSubscribe(ctx context.Context, symbols []string, channel Channel) error
	SendUnsubscribe(ctx context.Context, symbols []string, channel Channel) error
}

// Subscriptions tracks desired versus actual subscription state: symbols
// currently active on the connection and the pending subscribe/unsubscribe
// requests that have not been reconciled yet. All methods are safe for
// concurrent use; enqueuing never blocks on the reconcile loop.
//
// The remote feed closes the connection when nothing is subscribed, so owners
// must keep at least one symbol active for the connection to stay open.
type Subscriptions struct {
	channel Channel
	logger  zerolog.Logger

	mu           sync.Mutex
	active       map[string]struct{}
	pendingSub   map[string]struct{}
	pendingUnsub map[string]struct{}

	wakeCh chan struct{}
}

// NewSubscriptions creates empty subscription state for the given channel
func NewSubscriptions(channel Channel, logger zerolog.Logger) *Subscriptions {
	return &Subscriptions{
		channel:      channel,
		logger:       logger,
		active:       make(map[string]struct{}),
		pendingSub:   make(map[string]struct{}),
		pendingUnsub: make(map[string]struct{}),
		wakeCh:       make(chan struct{}, 1),
	}
}

// Subscribe enqueues symbols for subscription on the next reconcile pass.
// Already-active symbols are dropped at reconcile time, not here: a request
// enqueued while an unsubscribe for the same symbol is in flight must survive
// until the next pass so the symbol gets re-subscribed.
func (s *Subscriptions) Subscribe(symbols ...string) {
	s.mu.Lock()
	for _, symbol := range symbols {
		s.pendingSub[symbol] = struct{}{}
	}
	s.mu.Unlock()
	s.wake()
}

// Unsubscribe enqueues symbols for removal on the next reconcile pass
func (s *Subscriptions) Unsubscribe(symbols ...string) {
	s.mu.Lock()
	for _, symbol := range symbols {
		s.pendingUnsub[symbol] = struct{}{}
	}
	s.mu.Unlock()
	s.wake()
}

// Wake returns a channel that receives a signal whenever requests are
// enqueued, so the owning loop can reconcile immediately instead of spinning
func (s *Subscriptions) Wake() <-chan struct{} {
	return s.wakeCh
}

func (s *Subscriptions) wake() {
	select {
	case s.wakeCh <- struct{}{}:
	default:
	}
}

// Reconcile drains the pending sets and issues at most one batched subscribe
// and one batched unsubscribe call. Pending sets are cleared even when no
// symbol was actionable, so they never grow across passes. A failed call is
// logged and its batch re-queued for the next pass; reconcile runs in a loop
// with no caller waiting on its result, so nothing is returned synchronously.
func (s *Subscriptions) Reconcile(ctx context.Context, conn Conn) {
	s.mu.Lock()
	toSub := make([]string, 0, len(s.pendingSub))
	for symbol := range s.pendingSub {
		if _, ok := s.active[symbol]; !ok {
			toSub = append(toSub, symbol)
		}
	}
	s.pendingSub = make(map[string]struct{})

	toUnsub := make([]string, 0, len(s.pendingUnsub))
	for symbol := range s.pendingUnsub {
		if _, ok := s.active[symbol]; ok {
			toUnsub = append(toUnsub, symbol)
		}
	}
	s.pendingUnsub = make(map[string]struct{})
	s.mu.Unlock()

	if len(toSub) > 0 {
		if err := conn.SendSubscribe(ctx, toSub, s.channel); err != nil {
			s.logger.Warn().Err(err).Strs("symbols", toSub).Msg("subscribe failed, retrying next pass")
			s.requeueSubscribe(toSub)
		} else {
			s.logger.Info().Strs("symbols", toSub).Msg("subscribed for live data")
			s.markActive(toSub)
		}
	}

	if len(toUnsub) > 0 {
		if err := conn.SendUnsubscribe(ctx, toUnsub, s.channel); err != nil {
			s.logger.Warn().Err(err).Strs("symbols", toUnsub).Msg("unsubscribe failed, retrying next pass")
			s.requeueUnsubscribe(toUnsub)
		} else {
			s.logger.Info().Strs("symbols", toUnsub).Msg("unsubscribed from live data")
			s.markInactive(toUnsub)
		}
	}
}

func (s *Subscriptions) markActive(symbols []string) {
	s.mu.Lock()
	for _, symbol := range symbols {
		s.active[symbol] = struct{}{}
		// A reconcile-time enqueue may have raced the subscribe call
		delete(s.pendingSub, symbol)
	}
	s.mu.Unlock()
}

func (s *Subscriptions) markInactive(symbols []string) {
	s.mu.Lock()
	for _, symbol := range symbols {
		delete(s.active, symbol)
	}
	s.mu.Unlock()
}

func (s *Subscriptions) requeueSubscribe(symbols []string) {
	s.mu.Lock()
	for _, symbol := range symbols {
		if _, ok := s.active[symbol]; !ok {
			s.pendingSub[symbol] = struct{}{}
		}
	}
	s.mu.Unlock()
	s.wake()
}

func (s *Subscriptions) requeueUnsubscribe(symbols []string) {
	s.mu.Lock()
	for _, symbol := range symbols {
		s.pendingUnsub[symbol] = struct{}{}
	}
	s.mu.Unlock()
	s.wake()
}

// Active returns the currently subscribed symbols
func (s *Subscriptions) Active() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.active))
	for symbol := range s.active {
		out = append(out, symbol)
	}
	return out
}

// IsActive reports whether a symbol is currently subscribed
func (s *Subscriptions) IsActive(symbol string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.active[symbol]
	return ok
}

// PendingCounts returns the sizes of the pending sets, mainly for tests and
// introspection
func (s *Subscriptions) PendingCounts() (subscribe, unsubscribe int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pendingSub), len(s.pendingUnsub)
}

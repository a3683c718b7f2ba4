// Package limiter enforces Fyers API rate limits.
package limiter

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// API category rate limits (per Fyers API documentation)
const (
	// Data APIs (quotes, depth): 10/sec, 200/min, 100k/day
	DataAPIsPerSecond = 10
	DataAPIsPerMinute = 200
	DataAPIsPerDay    = 100000

	// Transactional APIs (orderbook, positions, tradebook): 10/sec, 200/min, 10k/day
	TransactionalAPIsPerSecond = 10
	TransactionalAPIsPerMinute = 200
	TransactionalAPIsPerDay    = 10000

	// Everything else: 10/sec
	GeneralAPIsPerSecond = 10
)

// EndpointCategory represents the rate-limit category of an API endpoint
type EndpointCategory int

const (
	CategoryData EndpointCategory = iota
	CategoryTransactional
	CategoryGeneral
)

// String returns the string representation of the category
func (c EndpointCategory) String() string {
	switch c {
	case CategoryData:
		return "Data"
	case CategoryTransactional:
		return "Transactional"
	case CategoryGeneral:
		return "General"
	default:
		return "Unknown"
	}
}

// HTTPRateLimiter enforces Fyers' REST API rate limits
type HTTPRateLimiter struct {
	dataLimiters          *multiWindowLimiter
	transactionalLimiters *multiWindowLimiter
	generalLimiter        *rate.Limiter

	endpointCategories map[string]EndpointCategory
	mu                 sync.RWMutex
}

// multiWindowLimiter handles rate limiting across multiple time windows
type multiWindowLimiter struct {
	perSecond *rate.Limiter
	perMinute *slidingWindowCounter
	perDay    *slidingWindowCounter
}

// slidingWindowCounter implements a sliding window counter for rate limiting
type slidingWindowCounter struct {
	limit    int
	window   time.Duration
	requests []time.Time
	mu       sync.Mutex
}

// NewHTTPRateLimiter creates a new HTTP rate limiter with Fyers' default limits
func NewHTTPRateLimiter() *HTTPRateLimiter {
	rl := &HTTPRateLimiter{
		dataLimiters: &multiWindowLimiter{
			perSecond: rate.NewLimiter(rate.Limit(DataAPIsPerSecond), DataAPIsPerSecond),
			perMinute: newSlidingWindowCounter(DataAPIsPerMinute, time.Minute),
			perDay:    newSlidingWindowCounter(DataAPIsPerDay, 24*time.Hour),
		},
		transactionalLimiters: &multiWindowLimiter{
			perSecond: rate.NewLimiter(rate.Limit(TransactionalAPIsPerSecond), TransactionalAPIsPerSecond),
			perMinute: newSlidingWindowCounter(TransactionalAPIsPerMinute, time.Minute),
			perDay:    newSlidingWindowCounter(TransactionalAPIsPerDay, 24*time.Hour),
		},
		generalLimiter: rate.NewLimiter(rate.Limit(GeneralAPIsPerSecond), GeneralAPIsPerSecond),

		endpointCategories: make(map[string]EndpointCategory),
	}

	rl.initializeEndpointCategories()

	return rl
}

// initializeEndpointCategories sets up the default endpoint-to-category mappings
func (rl *HTTPRateLimiter) initializeEndpointCategories() {
	dataEndpoints := []string{
		"/data-rest/v2/quotes",
		"/data-rest/v2/depth",
	}
	for _, ep := range dataEndpoints {
		rl.endpointCategories[ep] = CategoryData
	}

	transactionalEndpoints := []string{
		"/api/v2/orders",
		"/api/v2/positions",
		"/api/v2/tradebook",
		"/api/v2/funds",
		"/api/v2/holdings",
	}
	for _, ep := range transactionalEndpoints {
		rl.endpointCategories[ep] = CategoryTransactional
	}
}

// SetEndpointCategory allows customizing the category for an endpoint
func (rl *HTTPRateLimiter) SetEndpointCategory(endpoint string, category EndpointCategory) {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	rl.endpointCategories[endpoint] = category
}

// Wait blocks until the request is allowed under rate limits.
// Returns error if context is cancelled.
func (rl *HTTPRateLimiter) Wait(ctx context.Context, endpoint string) error {
	switch rl.categorizeEndpoint(endpoint) {
	case CategoryData:
		return rl.dataLimiters.wait(ctx)
	case CategoryTransactional:
		return rl.transactionalLimiters.wait(ctx)
	default:
		return waitRate(ctx, rl.generalLimiter)
	}
}

// waitRate adapts rate.Limiter.Wait so callers can match the failure with
// errors.Is: the limiter refuses an unmeetable deadline with its own
// unwrapped error before ctx itself expires.
func waitRate(ctx context.Context, l *rate.Limiter) error {
	err := l.Wait(ctx)
	if err == nil {
		return nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	if _, ok := ctx.Deadline(); ok {
		return fmt.Errorf("%w: %v", context.DeadlineExceeded, err)
	}
	return err
}

// Allow checks if a request is allowed without blocking
func (rl *HTTPRateLimiter) Allow(endpoint string) error {
	switch rl.categorizeEndpoint(endpoint) {
	case CategoryData:
		return rl.dataLimiters.allow("data")
	case CategoryTransactional:
		return rl.transactionalLimiters.allow("transactional")
	default:
		if !rl.generalLimiter.Allow() {
			return fmt.Errorf("general API rate limit exceeded (%d req/sec)", GeneralAPIsPerSecond)
		}
		return nil
	}
}

func (rl *HTTPRateLimiter) categorizeEndpoint(endpoint string) EndpointCategory {
	rl.mu.RLock()
	defer rl.mu.RUnlock()

	if category, ok := rl.endpointCategories[endpoint]; ok {
		return category
	}
	return CategoryGeneral
}

func (m *multiWindowLimiter) wait(ctx context.Context) error {
	if err := waitRate(ctx, m.perSecond); err != nil {
		return err
	}
	if m.perMinute != nil {
		if err := m.perMinute.wait(ctx); err != nil {
			return err
		}
	}
	if m.perDay != nil {
		if err := m.perDay.wait(ctx); err != nil {
			return err
		}
	}
	return nil
}

func (m *multiWindowLimiter) allow(name string) error {
	if !m.perSecond.Allow() {
		return fmt.Errorf("%s API per-second rate limit exceeded", name)
	}
	if m.perMinute != nil && !m.perMinute.allow() {
		return fmt.Errorf("%s API per-minute rate limit exceeded", name)
	}
	if m.perDay != nil && !m.perDay.allow() {
		return fmt.Errorf("%s API per-day rate limit exceeded", name)
	}
	return nil
}

func newSlidingWindowCounter(limit int, window time.Duration) *slidingWindowCounter {
	return &slidingWindowCounter{
		limit:  limit,
		window: window,
	}
}

// allow records the request if it fits inside the window
func (s *slidingWindowCounter) allow() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	s.prune(now)

	if len(s.requests) >= s.limit {
		return false
	}

	s.requests = append(s.requests, now)
	return true
}

// wait blocks until the window has room or the context is cancelled
func (s *slidingWindowCounter) wait(ctx context.Context) error {
	for {
		s.mu.Lock()
		now := time.Now()
		s.prune(now)

		if len(s.requests) < s.limit {
			s.requests = append(s.requests, now)
			s.mu.Unlock()
			return nil
		}

		// Oldest request leaving the window frees a slot
		wakeAt := s.requests[0].Add(s.window)
		s.mu.Unlock()

		timer := time.NewTimer(time.Until(wakeAt))
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}

func (s *slidingWindowCounter) prune(now time.Time) {
	cutoff := now.Add(-s.window)
	idx := 0
	for idx < len(s.requests) && s.requests[idx].Before(cutoff) {
		idx++
	}
	if idx > 0 {
		s.requests = s.requests[idx:]
	}
}

// Package feed provides a client for the Fyers market data WebSocket API.
package feed

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	fyers "github.com/thetatiger/fyers-go"
	"github.com/thetatiger/fyers-go/internal/limiter"
	"github.com/thetatiger/fyers-go/internal/wsconn"
	"github.com/thetatiger/fyers-go/metrics"
	"github.com/thetatiger/fyers-go/middleware"
	"github.com/thetatiger/fyers-go/ticks"
)

const (
	// DataSocketURL is the WebSocket URL for the market data feed
	DataSocketURL = "wss://api.fyers.in/socket/v2/dataSock"

	// DefaultPollInterval bounds how long the reconcile loop sleeps between
	// passes when no enqueue wakes it earlier
	DefaultPollInterval = 500 * time.Millisecond
)

// DefaultSymbols are seeded on connect so the feed always has at least one
// active subscription. The remote side closes a connection with none.
var DefaultSymbols = []string{"NSE:NIFTY50-INDEX", "NSE:NIFTYBANK-INDEX"}

// TickCallback is the function signature for tick handlers.
// The snapshot passed in is never mutated afterwards and safe to retain.
type TickCallback func(*ticks.Snapshot)

// ErrorCallback is the function signature for error handlers
type ErrorCallback func(error)

// Config holds WebSocket tunables for the feed client
type Config struct {
	ConnectTimeout  time.Duration
	WriteTimeout    time.Duration
	PingInterval    time.Duration
	PongWait        time.Duration
	ReadBufferSize  int
	WriteBufferSize int
	SendQueueSize   int
}

// Client streams live market data over a single WebSocket connection.
// One goroutine owns the connection and runs the receive/reconcile loop;
// Subscribe, Unsubscribe and cache reads may be called from any goroutine
// without blocking on it.
type Client struct {
	accessToken string
	config      *Config

	conn    *wsconn.Connection
	subs    *Subscriptions
	cache   *ticks.Cache
	limiter *limiter.SubscriptionLimiter

	logger     zerolog.Logger
	middleware middleware.WSMiddleware
	collector  *metrics.FeedCollector

	pollInterval   time.Duration
	initialSymbols []string

	mu             sync.RWMutex
	tickCallbacks  []TickCallback
	errorCallbacks []ErrorCallback
	connected      bool

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewClient creates a market data feed client. The access token is the
// composite "clientID:accessToken" credential required by the data socket;
// obtaining and refreshing it is the caller's concern.
func NewClient(accessToken string, opts ...Option) (*Client, error) {
	if !strings.Contains(accessToken, ":") {
		return nil, fmt.Errorf("access token must be clientID:token: %w", fyers.ErrInvalidAccessToken)
	}

	ctx, cancel := context.WithCancel(context.Background())

	client := &Client{
		accessToken:    accessToken,
		cache:          ticks.NewCache(),
		limiter:        limiter.NewSubscriptionLimiter(),
		logger:         zerolog.Nop(),
		pollInterval:   DefaultPollInterval,
		initialSymbols: DefaultSymbols,
		ctx:            ctx,
		cancel:         cancel,
	}

	for _, opt := range opts {
		opt(client)
	}

	client.subs = NewSubscriptions(ChannelSymbolData, client.logger)
	return client, nil
}

// Connect dials the data socket, seeds the initial subscriptions and starts
// the reconcile loop. It returns once the connection is established.
func (c *Client) Connect(ctx context.Context) error {
	c.mu.Lock()
	if c.connected {
		c.mu.Unlock()
		return fyers.ErrAlreadyConnected
	}
	c.connected = true
	c.mu.Unlock()

	socketURL := fmt.Sprintf("%s?access_token=%s", DataSocketURL, url.QueryEscape(c.accessToken))

	chain := []middleware.WSMiddleware{
		middleware.WSRecoveryMiddleware(c.logger),
	}
	if c.collector != nil {
		chain = append(chain, middleware.WSMetricsMiddleware(c.collector))
	}
	if c.middleware != nil {
		chain = append(chain, c.middleware)
	}

	c.conn = wsconn.NewConnection(wsconn.ConnectionConfig{
		URL:        socketURL,
		Config:     toWsconnConfig(c.config),
		Handler:    c.handleMessage,
		Middleware: middleware.ChainWSMiddleware(chain...),
	})

	if err := c.conn.Connect(ctx); err != nil {
		c.mu.Lock()
		c.connected = false
		c.mu.Unlock()
		return fmt.Errorf("failed to connect data socket: %w", err)
	}

	if c.collector != nil {
		c.collector.RecordConnection(true)
	}

	if len(c.initialSymbols) > 0 {
		c.subs.Subscribe(c.initialSymbols...)
	}

	c.wg.Add(1)
	go c.run()

	return nil
}

// run reconciles pending subscription state against the live connection until
// the client is closed. It sleeps on the wake channel with a bounded poll
// fallback instead of spinning.
func (c *Client) run() {
	defer c.wg.Done()

	ticker := time.NewTicker(c.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-c.ctx.Done():
			return
		case <-c.subs.Wake():
		case <-ticker.C:
		}
		c.subs.Reconcile(c.ctx, c)
	}
}

// Subscribe enqueues symbols for live tick data. Safe to call from any
// goroutine; the reconcile loop issues the actual subscribe call.
func (c *Client) Subscribe(symbols ...string) {
	c.subs.Subscribe(symbols...)
}

// Unsubscribe enqueues symbols for removal from the live feed
func (c *Client) Unsubscribe(symbols ...string) {
	c.subs.Unsubscribe(symbols...)
}

// Active returns the currently subscribed symbols
func (c *Client) Active() []string {
	return c.subs.Active()
}

// LastPrice returns the last traded price for a symbol, or false if no tick
// has been observed for it
func (c *Client) LastPrice(symbol string) (float64, bool) {
	return c.cache.LastPrice(symbol)
}

// Snapshot returns the latest full tick snapshot for a symbol
func (c *Client) Snapshot(symbol string) (ticks.Snapshot, bool) {
	return c.cache.Get(symbol)
}

// Cache exposes the underlying tick cache for direct reads
func (c *Client) Cache() *ticks.Cache {
	return c.cache
}

// SendSubscribe issues subscribe frames on the connection, chunked to the
// socket's per-message symbol limit
func (c *Client) SendSubscribe(ctx context.Context, symbols []string, channel Channel) error {
	if c.conn == nil {
		return fyers.ErrNotConnected
	}
	for _, chunk := range chunkSymbols(symbols, limiter.MaxSymbolsPerMessage) {
		if err := c.limiter.CanSubscribe(len(chunk)); err != nil {
			return fmt.Errorf("subscription limit: %w", err)
		}
		data, err := marshalSubscription(channel, chunk, subActionSubscribe)
		if err != nil {
			return fmt.Errorf("failed to marshal subscribe request: %w", err)
		}
		if err := c.conn.Send(data); err != nil {
			return err
		}
		c.limiter.RecordSubscribe(len(chunk))
	}
	return nil
}

// SendUnsubscribe issues unsubscribe frames on the connection, chunked to the
// socket's per-message symbol limit
func (c *Client) SendUnsubscribe(ctx context.Context, symbols []string, channel Channel) error {
	if c.conn == nil {
		return fyers.ErrNotConnected
	}
	for _, chunk := range chunkSymbols(symbols, limiter.MaxSymbolsPerMessage) {
		data, err := marshalSubscription(channel, chunk, subActionUnsubscribe)
		if err != nil {
			return fmt.Errorf("failed to marshal unsubscribe request: %w", err)
		}
		if err := c.conn.Send(data); err != nil {
			return err
		}
		c.limiter.RecordUnsubscribe(len(chunk))
	}
	return nil
}

func chunkSymbols(symbols []string, size int) [][]string {
	if size <= 0 || len(symbols) <= size {
		return [][]string{symbols}
	}
	chunks := make([][]string, 0, (len(symbols)+size-1)/size)
	for len(symbols) > size {
		chunks = append(chunks, symbols[:size])
		symbols = symbols[size:]
	}
	return append(chunks, symbols)
}

// handleMessage ingests one socket delivery: a JSON array of decoded tick
// messages. Malformed entries are logged and dropped so one bad message never
// interrupts the live feed.
func (c *Client) handleMessage(ctx context.Context, data []byte) error {
	batch, err := ticks.SplitBatch(data)
	if err != nil {
		c.notifyError(err)
		return err
	}

	var firstErr error
	for _, raw := range batch {
		snap, err := c.cache.ApplyMessage(raw)
		if err != nil {
			c.logger.Warn().Err(err).Msg("dropping malformed tick")
			c.notifyError(err)
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		if c.collector != nil {
			c.collector.RecordTick()
		}
		c.notifyTick(snap)
	}
	return firstErr
}

func (c *Client) notifyTick(snap *ticks.Snapshot) {
	c.mu.RLock()
	callbacks := c.tickCallbacks
	c.mu.RUnlock()

	for _, cb := range callbacks {
		go cb(snap)
	}
}

func (c *Client) notifyError(err error) {
	c.mu.RLock()
	callbacks := c.errorCallbacks
	c.mu.RUnlock()

	for _, cb := range callbacks {
		go cb(err)
	}
}

// Close stops the reconcile loop and closes the connection
func (c *Client) Close() error {
	c.mu.Lock()
	if !c.connected {
		c.mu.Unlock()
		return nil
	}
	c.connected = false
	c.mu.Unlock()

	c.cancel()
	c.wg.Wait()

	if c.collector != nil {
		c.collector.RecordConnection(false)
	}
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}

// IsConnected reports whether the data socket is currently connected
func (c *Client) IsConnected() bool {
	c.mu.RLock()
	connected := c.connected
	c.mu.RUnlock()
	return connected && c.conn != nil && c.conn.IsConnected()
}

// Health returns the connection's ping/pong health snapshot
func (c *Client) Health() wsconn.HealthStatus {
	if c.conn == nil {
		return wsconn.HealthStatus{}
	}
	return c.conn.HealthStatus()
}

// toWsconnConfig converts the public Config to the internal connection config
func toWsconnConfig(cfg *Config) *wsconn.Config {
	if cfg == nil {
		return nil
	}
	return &wsconn.Config{
		ConnectTimeout:  cfg.ConnectTimeout,
		WriteTimeout:    cfg.WriteTimeout,
		PingInterval:    cfg.PingInterval,
		PongWait:        cfg.PongWait,
		ReadBufferSize:  cfg.ReadBufferSize,
		WriteBufferSize: cfg.WriteBufferSize,
		SendQueueSize:   cfg.SendQueueSize,
	}
}

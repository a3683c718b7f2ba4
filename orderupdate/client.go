package orderupdate

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	fyers "github.com/thetatiger/fyers-go"
	"github.com/thetatiger/fyers-go/internal/wsconn"
	"github.com/thetatiger/fyers-go/metrics"
	"github.com/thetatiger/fyers-go/middleware"
)

const (
	// OrderSocketURL is the WebSocket URL for order updates
	OrderSocketURL = "wss://api.fyers.in/socket/v2/orderSock"
)

// Config holds WebSocket tunables for the order update client
// (local copy to keep internal/wsconn out of the public surface)
type Config struct {
	ConnectTimeout  time.Duration
	WriteTimeout    time.Duration
	PingInterval    time.Duration
	PongWait        time.Duration
	ReadBufferSize  int
	WriteBufferSize int
	SendQueueSize   int
}

// subscribeRequest is the frame that opts this connection into order events.
// Unlike the data socket there is no symbol list, the channel covers the
// whole account.
type subscribeRequest struct {
	Type   string `json:"T"`
	Action int    `json:"SUB_T"`
}

// Client streams order lifecycle events over a single WebSocket connection
// and tracks the latest state per order ID.
type Client struct {
	accessToken string
	config      *Config

	conn  *wsconn.Connection
	store *Store

	logger     zerolog.Logger
	middleware middleware.WSMiddleware
	collector  *metrics.FeedCollector

	mu              sync.RWMutex
	updateCallbacks []OrderUpdateCallback
	errorCallbacks  []ErrorCallback
	connected       bool
}

// NewClient creates an order update client. The access token is the composite
// "clientID:accessToken" credential.
func NewClient(accessToken string, opts ...Option) (*Client, error) {
	if !strings.Contains(accessToken, ":") {
		return nil, fmt.Errorf("access token must be clientID:token: %w", fyers.ErrInvalidAccessToken)
	}

	client := &Client{
		accessToken: accessToken,
		store:       NewStore(),
		logger:      zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// Connect dials the order socket and subscribes the order-update channel
func (c *Client) Connect(ctx context.Context) error {
	c.mu.Lock()
	if c.connected {
		c.mu.Unlock()
		return fyers.ErrAlreadyConnected
	}
	c.connected = true
	c.mu.Unlock()

	socketURL := fmt.Sprintf("%s?access_token=%s", OrderSocketURL, url.QueryEscape(c.accessToken))

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
		return fmt.Errorf("failed to connect order socket: %w", err)
	}

	if c.collector != nil {
		c.collector.RecordConnection(true)
	}

	if err := c.subscribe(); err != nil {
		c.conn.Close()
		c.mu.Lock()
		c.connected = false
		c.mu.Unlock()
		return err
	}

	c.logger.Info().Msg("subscribed for order updates")
	return nil
}

// subscribe opts into the order-update channel, once per connection
func (c *Client) subscribe() error {
	data, err := json.Marshal(subscribeRequest{Type: "SUB_ORD", Action: 1})
	if err != nil {
		return fmt.Errorf("failed to marshal order subscription: %w", err)
	}
	if err := c.conn.Send(data); err != nil {
		return fmt.Errorf("failed to subscribe order updates: %w", err)
	}
	return nil
}

// handleMessage ingests one socket delivery: a JSON array of order update
// messages. Malformed entries are logged and dropped.
func (c *Client) handleMessage(ctx context.Context, data []byte) error {
	batch, err := SplitBatch(data)
	if err != nil {
		c.notifyError(err)
		return err
	}

	var firstErr error
	for _, raw := range batch {
		update, err := ParseUpdate(raw)
		if err != nil {
			c.logger.Warn().Err(err).Msg("dropping malformed order update")
			c.notifyError(err)
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		c.store.Apply(update)
		c.notifyUpdate(update)
	}
	return firstErr
}

// Order returns the latest known state for an order ID
func (c *Client) Order(orderID string) (OrderUpdate, bool) {
	return c.store.Get(orderID)
}

// Orders returns the latest state of every order seen on this connection
func (c *Client) Orders() []OrderUpdate {
	return c.store.Orders()
}

// Store exposes the underlying order store for direct reads
func (c *Client) Store() *Store {
	return c.store
}

func (c *Client) notifyUpdate(update *OrderUpdate) {
	c.mu.RLock()
	callbacks := c.updateCallbacks
	c.mu.RUnlock()

	for _, cb := range callbacks {
		go cb(update)
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

// Close closes the connection
func (c *Client) Close() error {
	c.mu.Lock()
	if !c.connected {
		c.mu.Unlock()
		return nil
	}
	c.connected = false
	c.mu.Unlock()

	if c.collector != nil {
		c.collector.RecordConnection(false)
	}
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}

// IsConnected reports whether the order socket is currently connected
func (c *Client) IsConnected() bool {
	c.mu.RLock()
	connected := c.connected
	c.mu.RUnlock()
	return connected && c.conn != nil && c.conn.IsConnected()
}

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

// Package wsconn manages the WebSocket connection underneath the streaming clients.
package wsconn

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/thetatiger/fyers-go/middleware"
)

// Config holds tunables for a WebSocket connection
type Config struct {
	ConnectTimeout  time.Duration
	WriteTimeout    time.Duration
	PingInterval    time.Duration
	PongWait        time.Duration
	ReadBufferSize  int
	WriteBufferSize int
	SendQueueSize   int
}

// DefaultConfig returns the default connection tunables
func DefaultConfig() *Config {
	return &Config{
		ConnectTimeout:  30 * time.Second,
		WriteTimeout:    10 * time.Second,
		PingInterval:    10 * time.Second,
		PongWait:        40 * time.Second,
		ReadBufferSize:  4096,
		WriteBufferSize: 4096,
		SendQueueSize:   256,
	}
}

// Connection is a single WebSocket connection with dedicated read, write and
// health goroutines. The read loop feeds every inbound payload through the
// configured middleware chain into the message handler; handler errors are
// reported by the chain but never stop the loop.
type Connection struct {
	url    string
	config *Config

	connMu sync.RWMutex
	conn   *websocket.Conn

	sendCh    chan []byte
	stopCh    chan struct{}
	doneCh    chan struct{}
	closeOnce sync.Once

	handler    middleware.WSMessageHandler
	middleware middleware.WSMiddleware

	lastPingMu sync.RWMutex
	lastPing   time.Time
	lastPong   time.Time

	stateMu   sync.RWMutex
	connected bool
	ctx       context.Context
	cancel    context.CancelFunc
}

// ConnectionConfig holds everything needed to build a Connection
type ConnectionConfig struct {
	URL        string
	Config     *Config
	Handler    middleware.WSMessageHandler
	Middleware middleware.WSMiddleware
}

// NewConnection creates a connection that is not yet dialed
func NewConnection(cfg ConnectionConfig) *Connection {
	if cfg.Config == nil {
		cfg.Config = DefaultConfig()
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Connection{
		url:        cfg.URL,
		config:     cfg.Config,
		handler:    cfg.Handler,
		middleware: cfg.Middleware,
		sendCh:     make(chan []byte, cfg.Config.SendQueueSize),
		stopCh:     make(chan struct{}),
		// Buffered: the read loop must be able to exit on a spontaneous
		// disconnect even when nobody is waiting in Close.
		doneCh: make(chan struct{}, 1),
		ctx:    ctx,
		cancel: cancel,
	}
}

// Connect dials the socket and starts the read, write and health goroutines
func (c *Connection) Connect(ctx context.Context) error {
	c.stateMu.Lock()
	if c.connected {
		c.stateMu.Unlock()
		return fmt.Errorf("already connected to %s", c.url)
	}
	c.stateMu.Unlock()

	connectCtx, cancel := context.WithTimeout(ctx, c.config.ConnectTimeout)
	defer cancel()

	dialer := websocket.Dialer{
		HandshakeTimeout: c.config.ConnectTimeout,
		ReadBufferSize:   c.config.ReadBufferSize,
		WriteBufferSize:  c.config.WriteBufferSize,
	}

	conn, _, err := dialer.DialContext(connectCtx, c.url, nil)
	if err != nil {
		return fmt.Errorf("failed to dial WebSocket: %w", err)
	}

	c.connMu.Lock()
	c.conn = conn
	c.connMu.Unlock()

	c.stateMu.Lock()
	c.connected = true
	c.stateMu.Unlock()

	go c.readLoop()
	go c.writeLoop()
	go c.healthLoop()

	return nil
}

func (c *Connection) readLoop() {
	defer func() {
		c.disconnect()
		c.doneCh <- struct{}{}
	}()

	c.connMu.RLock()
	conn := c.conn
	c.connMu.RUnlock()

	if conn == nil {
		return
	}

	if c.config.PongWait > 0 {
		conn.SetReadDeadline(time.Now().Add(c.config.PongWait))
	}

	conn.SetPongHandler(func(string) error {
		c.lastPingMu.Lock()
		c.lastPong = time.Now()
		c.lastPingMu.Unlock()

		if c.config.PongWait > 0 {
			conn.SetReadDeadline(time.Now().Add(c.config.PongWait))
		}
		return nil
	})

	handler := c.handler
	if handler != nil && c.middleware != nil {
		handler = c.middleware(handler)
	}

	for {
		select {
		case <-c.stopCh:
			return
		case <-c.ctx.Done():
			return
		default:
		}

		_, message, err := conn.ReadMessage()
		if err != nil {
			return
		}

		if handler != nil {
			// One bad message must not interrupt the feed; error
			// reporting belongs to the handler and its middleware.
			_ = handler(c.ctx, message)
		}
	}
}

func (c *Connection) writeLoop() {
	ticker := time.NewTicker(c.config.PingInterval)
	defer ticker.Stop()

	c.connMu.RLock()
	conn := c.conn
	c.connMu.RUnlock()

	if conn == nil {
		return
	}

	for {
		select {
		case <-c.stopCh:
			return
		case <-c.ctx.Done():
			return
		case message := <-c.sendCh:
			if c.config.WriteTimeout > 0 {
				conn.SetWriteDeadline(time.Now().Add(c.config.WriteTimeout))
			}
			if err := conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			if c.config.WriteTimeout > 0 {
				conn.SetWriteDeadline(time.Now().Add(c.config.WriteTimeout))
			}
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
			c.lastPingMu.Lock()
			c.lastPing = time.Now()
			c.lastPingMu.Unlock()
		}
	}
}

func (c *Connection) healthLoop() {
	if c.config.PongWait == 0 {
		return
	}

	ticker := time.NewTicker(c.config.PingInterval * 2)
	defer ticker.Stop()

	for {
		select {
		case <-c.stopCh:
			return
		case <-c.ctx.Done():
			return
		case <-ticker.C:
			c.lastPingMu.RLock()
			lastPing := c.lastPing
			lastPong := c.lastPong
			c.lastPingMu.RUnlock()

			if !lastPing.IsZero() && lastPong.Before(lastPing) {
				if time.Since(lastPing) > c.config.PongWait {
					c.disconnect()
					return
				}
			}
		}
	}
}

// Send queues a message for the write loop
func (c *Connection) Send(message []byte) error {
	c.stateMu.RLock()
	connected := c.connected
	c.stateMu.RUnlock()

	if !connected {
		return fmt.Errorf("connection to %s not established", c.url)
	}

	select {
	case c.sendCh <- message:
		return nil
	case <-c.ctx.Done():
		return fmt.Errorf("connection to %s closed", c.url)
	default:
		return fmt.Errorf("send queue full for %s", c.url)
	}
}

func (c *Connection) disconnect() {
	c.stateMu.Lock()
	if !c.connected {
		c.stateMu.Unlock()
		return
	}
	c.connected = false
	c.stateMu.Unlock()

	c.connMu.Lock()
	if c.conn != nil {
		c.conn.Close()
		c.conn = nil
	}
	c.connMu.Unlock()
}

// Close shuts the connection down and waits for the read loop to exit.
// Safe to call more than once; later calls wait for the first to finish.
func (c *Connection) Close() error {
	c.closeOnce.Do(func() {
		c.stateMu.RLock()
		wasConnected := c.connected
		c.stateMu.RUnlock()

		close(c.stopCh)
		c.cancel()
		// Closing the socket unblocks a read loop parked in ReadMessage
		c.disconnect()

		if wasConnected {
			select {
			case <-c.doneCh:
			case <-time.After(5 * time.Second):
			}
		}
	})
	return nil
}

// IsConnected reports whether the connection is currently established
func (c *Connection) IsConnected() bool {
	c.stateMu.RLock()
	defer c.stateMu.RUnlock()
	return c.connected
}

// HealthStatus contains ping/pong health information about a connection
type HealthStatus struct {
	Connected bool
	LastPing  time.Time
	LastPong  time.Time
}

// HealthStatus returns the connection's current health snapshot
func (c *Connection) HealthStatus() HealthStatus {
	c.lastPingMu.RLock()
	defer c.lastPingMu.RUnlock()

	c.stateMu.RLock()
	connected := c.connected
	c.stateMu.RUnlock()

	return HealthStatus{
		Connected: connected,
		LastPing:  c.lastPing,
		LastPong:  c.lastPong,
	}
}

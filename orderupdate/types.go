// Package orderupdate provides a client for the Fyers order update WebSocket API.
package orderupdate

import (
	"time"
)

// Order status codes pushed on the socket
const (
	StatusCancelled = 1
	StatusTraded    = 2
	StatusTransit   = 4
	StatusRejected  = 5
	StatusPending   = 6
)

// Order sides
const (
	SideBuy  = 1
	SideSell = -1
)

// OrderUpdate is one decoded order lifecycle event. Field names follow the
// decoded attribute names pushed by the socket. Updates are keyed by order ID
// and replace the prior state wholesale; no per-order history is retained.
type OrderUpdate struct {
	ID              string  `json:"id"`
	ExchangeOrderID string  `json:"exchOrdId"`
	Symbol          string  `json:"symbol"`
	FyToken         string  `json:"fyToken"`
	Status          int     `json:"status"`
	StatusMessage   string  `json:"message"`
	OrderNumStatus  string  `json:"orderNumStatus"`
	Type            int     `json:"type"`
	Side            int     `json:"side"`
	ProductType     string  `json:"productType"`
	Instrument      string  `json:"instrument"`
	Segment         string  `json:"segment"`
	Validity        string  `json:"orderValidity"`
	OfflineOrder    bool    `json:"offlineOrder"`
	SerialNumber    int     `json:"slNo"`
	Quantity        int     `json:"qty"`
	FilledQuantity  int     `json:"filledQty"`
	RemainingQty    int     `json:"remainingQuantity"`
	DisclosedQty    int     `json:"discloseQty"`
	DisclosedRem    int     `json:"dqQtyRem"`
	LimitPrice      float64 `json:"limitPrice"`
	StopPrice       float64 `json:"stopPrice"`
	TradedPrice     float64 `json:"tradedPrice"`
	OrderDateTime   int64   `json:"orderDateTime"`
}

// Action returns the order side as "BUY" or "SELL"
func (o *OrderUpdate) Action() string {
	if o.Side == SideBuy {
		return "BUY"
	}
	return "SELL"
}

// IsFilled reports whether the order traded completely
func (o *OrderUpdate) IsFilled() bool {
	return o.Status == StatusTraded && o.RemainingQty == 0
}

// IsPartiallyFilled reports whether the order traded partially
func (o *OrderUpdate) IsPartiallyFilled() bool {
	return o.FilledQuantity > 0 && o.RemainingQty > 0
}

// IsRejected reports whether the order was rejected
func (o *OrderUpdate) IsRejected() bool {
	return o.Status == StatusRejected
}

// IsCancelled reports whether the order was cancelled
func (o *OrderUpdate) IsCancelled() bool {
	return o.Status == StatusCancelled
}

// GetOrderTime returns the order timestamp as wall time
func (o *OrderUpdate) GetOrderTime() time.Time {
	return time.Unix(o.OrderDateTime, 0)
}

// OrderUpdateCallback is the function signature for order update handlers
type OrderUpdateCallback func(*OrderUpdate)

// ErrorCallback is the function signature for error handlers
type ErrorCallback func(error)

// Package ticks maintains the latest decoded market tick per symbol.
package ticks

import (
	"encoding/json"
	"fmt"
	"time"
)

// Snapshot is the latest decoded market tick for one symbol. Field names
// follow the decoded attribute names pushed by the Fyers data socket. A
// snapshot is replaced wholesale on every tick; no history is retained.
type Snapshot struct {
	Symbol       string `json:"symbol"`
	Timestamp    int64  `json:"timestamp"`
	FyCode       int    `json:"fyCode"`
	FyFlag       int    `json:"fyFlag"`
	PacketLength int    `json:"pktLen"`

	LastTradedPrice float64 `json:"ltp"`
	LastTradedQty   int64   `json:"last_traded_qty"`
	LastTradedTime  int64   `json:"last_traded_time"`
	AvgTradePrice   float64 `json:"avg_trade_price"`

	// Session-level OHLC
	DayOpen  float64 `json:"open_price"`
	DayHigh  float64 `json:"high_price"`
	DayLow   float64 `json:"low_price"`
	DayClose float64 `json:"close_price"`

	// Current-minute OHLCV
	MinuteOpen   float64 `json:"min_open_price"`
	MinuteHigh   float64 `json:"min_high_price"`
	MinuteLow    float64 `json:"min_low_price"`
	MinuteClose  float64 `json:"min_close_price"`
	MinuteVolume int64   `json:"min_volume"`

	Volume       int64 `json:"vol_traded_today"`
	TotalBuyQty  int64 `json:"tot_buy_qty"`
	TotalSellQty int64 `json:"tot_sell_qty"`
}

// GetTime returns the snapshot timestamp as wall time
func (s *Snapshot) GetTime() time.Time {
	return time.Unix(s.Timestamp, 0)
}

// GetLastTradeTime returns the last trade time as wall time
func (s *Snapshot) GetLastTradeTime() time.Time {
	return time.Unix(s.LastTradedTime, 0)
}

// snapshotFields is the accepted wire shape. market_pic is a thumbnail blob
// present only in the streaming schema; it carries no market data and is
// dropped before validation.
var snapshotFields = map[string]bool{
	"symbol":           true,
	"timestamp":        true,
	"fyCode":           true,
	"fyFlag":           true,
	"pktLen":           true,
	"ltp":              true,
	"last_traded_qty":  true,
	"last_traded_time": true,
	"avg_trade_price":  true,
	"open_price":       true,
	"high_price":       true,
	"low_price":        true,
	"close_price":      true,
	"min_open_price":   true,
	"min_high_price":   true,
	"min_low_price":    true,
	"min_close_price":  true,
	"min_volume":       true,
	"vol_traded_today": true,
	"tot_buy_qty":      true,
	"tot_sell_qty":     true,
}

var requiredFields = []string{"symbol", "ltp", "timestamp"}

// ParseSnapshot decodes a single tick message. The message shape is validated
// explicitly: unknown fields and missing required fields reject the message
// instead of surfacing as a mismatch deep in the ingestion path.
func ParseSnapshot(data []byte) (*Snapshot, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, fmt.Errorf("failed to decode tick message: %w", err)
	}

	delete(fields, "market_pic")

	for name := range fields {
		if !snapshotFields[name] {
			return nil, fmt.Errorf("tick message has unknown field %q", name)
		}
	}
	for _, name := range requiredFields {
		if _, ok := fields[name]; !ok {
			return nil, fmt.Errorf("tick message missing required field %q", name)
		}
	}

	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("failed to decode tick message: %w", err)
	}
	if snap.Symbol == "" {
		return nil, fmt.Errorf("tick message has empty symbol")
	}
	return &snap, nil
}

// SplitBatch splits one socket delivery, a JSON array of tick messages, into
// its elements so callers can drop malformed entries individually
func SplitBatch(data []byte) ([]json.RawMessage, error) {
	var batch []json.RawMessage
	if err := json.Unmarshal(data, &batch); err != nil {
		return nil, fmt.Errorf("failed to decode tick batch: %w", err)
	}
	return batch, nil
}

package ticks

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validTick = `{
	"symbol": "NSE:SBIN-EQ",
	"timestamp": 1652337000,
	"fyCode": 7208,
	"fyFlag": 0,
	"pktLen": 0,
	"ltp": 430.5,
	"last_traded_qty": 10,
	"last_traded_time": 1652336998,
	"avg_trade_price": 429.8,
	"open_price": 425.0,
	"high_price": 432.0,
	"low_price": 424.5,
	"close_price": 426.1,
	"min_open_price": 430.0,
	"min_high_price": 430.6,
	"min_low_price": 429.9,
	"min_close_price": 430.5,
	"min_volume": 1500,
	"vol_traded_today": 1234567,
	"tot_buy_qty": 50000,
	"tot_sell_qty": 48000
}`

func TestParseSnapshot(t *testing.T) {
	snap, err := ParseSnapshot([]byte(validTick))
	require.NoError(t, err)

	assert.Equal(t, "NSE:SBIN-EQ", snap.Symbol)
	assert.Equal(t, 430.5, snap.LastTradedPrice)
	assert.Equal(t, int64(1652337000), snap.Timestamp)
	assert.Equal(t, int64(1234567), snap.Volume)
	assert.Equal(t, 432.0, snap.DayHigh)
	assert.Equal(t, int64(1500), snap.MinuteVolume)
}

func TestParseSnapshotDiscardsMarketPic(t *testing.T) {
	// market_pic is a thumbnail blob in the streaming schema, dropped on ingest
	tick := `{"symbol":"NSE:SBIN-EQ","timestamp":1652337000,"ltp":430.5,"market_pic":"AAAA"}`

	snap, err := ParseSnapshot([]byte(tick))
	require.NoError(t, err)
	assert.Equal(t, "NSE:SBIN-EQ", snap.Symbol)
}

func TestParseSnapshotRejectsUnknownField(t *testing.T) {
	tick := `{"symbol":"NSE:SBIN-EQ","timestamp":1652337000,"ltp":430.5,"surprise":1}`

	_, err := ParseSnapshot([]byte(tick))
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown field "surprise"`)
}

func TestParseSnapshotRejectsMissingRequiredField(t *testing.T) {
	for _, tick := range []string{
		`{"timestamp":1652337000,"ltp":430.5}`,
		`{"symbol":"NSE:SBIN-EQ","ltp":430.5}`,
		`{"symbol":"NSE:SBIN-EQ","timestamp":1652337000}`,
	} {
		_, err := ParseSnapshot([]byte(tick))
		assert.Error(t, err, "tick %s", tick)
	}
}

func TestParseSnapshotRejectsEmptySymbol(t *testing.T) {
	tick := `{"symbol":"","timestamp":1652337000,"ltp":430.5}`

	_, err := ParseSnapshot([]byte(tick))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "empty symbol")
}

func TestParseSnapshotRejectsNonObject(t *testing.T) {
	_, err := ParseSnapshot([]byte(`"just a string"`))
	require.Error(t, err)
}

func TestSplitBatch(t *testing.T) {
	batch, err := SplitBatch([]byte(`[{"a":1},{"b":2}]`))
	require.NoError(t, err)
	assert.Len(t, batch, 2)
	assert.JSONEq(t, `{"a":1}`, string(batch[0]))
}

func TestSplitBatchRejectsNonArray(t *testing.T) {
	_, err := SplitBatch([]byte(`{"symbol":"NSE:SBIN-EQ"}`))
	require.Error(t, err)
}

package orderupdate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validUpdate = `{
	"s": "ok",
	"d": {
		"id": "22051200001",
		"exchOrdId": "1100000000001",
		"symbol": "NSE:NIFTY2251217000CE",
		"fyToken": "101122051217000",
		"status": 2,
		"side": 1,
		"type": 1,
		"productType": "INTRADAY",
		"qty": 50,
		"filledQty": 50,
		"remainingQuantity": 0,
		"limitPrice": 120.5,
		"tradedPrice": 120.45,
		"orderValidity": "DAY",
		"orderDateTime": 1652330700
	}
}`

func TestParseUpdate(t *testing.T) {
	update, err := ParseUpdate([]byte(validUpdate))
	require.NoError(t, err)

	assert.Equal(t, "22051200001", update.ID)
	assert.Equal(t, "NSE:NIFTY2251217000CE", update.Symbol)
	assert.Equal(t, StatusTraded, update.Status)
	assert.Equal(t, "BUY", update.Action())
	assert.True(t, update.IsFilled())
	assert.False(t, update.IsPartiallyFilled())
	assert.Equal(t, 120.45, update.TradedPrice)
}

func TestParseUpdatePartialFill(t *testing.T) {
	raw := `{"s":"ok","d":{"id":"22051200002","symbol":"NSE:SBIN-EQ","status":6,"side":-1,"qty":100,"filledQty":40,"remainingQuantity":60}}`

	update, err := ParseUpdate([]byte(raw))
	require.NoError(t, err)
	assert.Equal(t, "SELL", update.Action())
	assert.True(t, update.IsPartiallyFilled())
	assert.False(t, update.IsFilled())
}

func TestParseUpdateRejectsMissingPayload(t *testing.T) {
	_, err := ParseUpdate([]byte(`{"s":"ok"}`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no payload")
}

func TestParseUpdateRejectsEmptyOrderID(t *testing.T) {
	_, err := ParseUpdate([]byte(`{"s":"ok","d":{"symbol":"NSE:SBIN-EQ","status":2}}`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "empty order id")
}

func TestParseUpdateRejectsMalformedJSON(t *testing.T) {
	_, err := ParseUpdate([]byte(`{"s":`))
	require.Error(t, err)
}

func TestSplitBatch(t *testing.T) {
	batch, err := SplitBatch([]byte(`[{"s":"ok"},{"s":"ok"}]`))
	require.NoError(t, err)
	assert.Len(t, batch, 2)

	_, err = SplitBatch([]byte(`{"s":"ok"}`))
	require.Error(t, err)
}

package feed

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	fyers "github.com/thetatiger/fyers-go"
	"github.com/thetatiger/fyers-go/metrics"
	"github.com/thetatiger/fyers-go/ticks"
)

func TestNewClientRejectsBareToken(t *testing.T) {
	_, err := NewClient("token-without-client-id")
	require.Error(t, err)
	assert.True(t, errors.Is(err, fyers.ErrInvalidAccessToken))
}

func TestNewClientAcceptsCompositeToken(t *testing.T) {
	client, err := NewClient("AB1234:token")
	require.NoError(t, err)
	assert.False(t, client.IsConnected())
	assert.Empty(t, client.Active())
}

func TestHandleMessageAppliesBatch(t *testing.T) {
	client, err := NewClient("AB1234:token")
	require.NoError(t, err)

	batch := `[
		{"symbol":"NSE:SBIN-EQ","timestamp":1652337000,"ltp":430.5},
		{"symbol":"NSE:NIFTY50-INDEX","timestamp":1652337001,"ltp":16200.25}
	]`
	err = client.handleMessage(context.Background(), []byte(batch))
	require.NoError(t, err)

	ltp, ok := client.LastPrice("NSE:SBIN-EQ")
	require.True(t, ok)
	assert.Equal(t, 430.5, ltp)

	snap, ok := client.Snapshot("NSE:NIFTY50-INDEX")
	require.True(t, ok)
	assert.Equal(t, 16200.25, snap.LastTradedPrice)
}

func TestHandleMessageDropsMalformedEntry(t *testing.T) {
	client, err := NewClient("AB1234:token")
	require.NoError(t, err)

	// Second entry is malformed; the first must still land in the cache
	batch := `[
		{"symbol":"NSE:SBIN-EQ","timestamp":1652337000,"ltp":430.5},
		{"symbol":"NSE:BAD-EQ","bogus":1}
	]`
	err = client.handleMessage(context.Background(), []byte(batch))
	require.Error(t, err)

	_, ok := client.LastPrice("NSE:SBIN-EQ")
	assert.True(t, ok)
	_, ok = client.LastPrice("NSE:BAD-EQ")
	assert.False(t, ok)
}

func TestHandleMessageRejectsNonArray(t *testing.T) {
	client, err := NewClient("AB1234:token")
	require.NoError(t, err)

	err = client.handleMessage(context.Background(), []byte(`{"symbol":"NSE:SBIN-EQ"}`))
	require.Error(t, err)
	assert.Zero(t, client.Cache().Len())
}

func TestHandleMessageNotifiesCallbacks(t *testing.T) {
	tickCh := make(chan *ticks.Snapshot, 1)
	client, err := NewClient("AB1234:token",
		WithTickCallback(func(snap *ticks.Snapshot) { tickCh <- snap }),
	)
	require.NoError(t, err)

	err = client.handleMessage(context.Background(),
		[]byte(`[{"symbol":"NSE:SBIN-EQ","timestamp":1652337000,"ltp":430.5}]`))
	require.NoError(t, err)

	select {
	case snap := <-tickCh:
		assert.Equal(t, "NSE:SBIN-EQ", snap.Symbol)
	case <-time.After(2 * time.Second):
		t.Fatal("tick callback not invoked")
	}
}

func TestHandleMessageRecordsMetrics(t *testing.T) {
	collector := metrics.NewFeedCollector()
	client, err := NewClient("AB1234:token", WithMetrics(collector))
	require.NoError(t, err)

	err = client.handleMessage(context.Background(),
		[]byte(`[{"symbol":"NSE:SBIN-EQ","timestamp":1652337000,"ltp":430.5}]`))
	require.NoError(t, err)

	stats := collector.GetMetrics()
	assert.Equal(t, int64(1), stats["ticks_applied"])
}

func TestChunkSymbols(t *testing.T) {
	symbols := []string{"a", "b", "c", "d", "e"}

	chunks := chunkSymbols(symbols, 2)
	require.Len(t, chunks, 3)
	assert.Equal(t, []string{"a", "b"}, chunks[0])
	assert.Equal(t, []string{"c", "d"}, chunks[1])
	assert.Equal(t, []string{"e"}, chunks[2])

	chunks = chunkSymbols(symbols, 10)
	require.Len(t, chunks, 1)
	assert.Equal(t, symbols, chunks[0])
}

func TestWithOptions(t *testing.T) {
	cache := ticks.NewCache()
	client, err := NewClient("AB1234:token",
		WithCache(cache),
		WithPollInterval(50*time.Millisecond),
		WithInitialSymbols("NSE:SBIN-EQ"),
	)
	require.NoError(t, err)
	assert.Same(t, cache, client.Cache())
	assert.Equal(t, 50*time.Millisecond, client.pollInterval)
	assert.Equal(t, []string{"NSE:SBIN-EQ"}, client.initialSymbols)
}

package symbols

import (
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	fyers "github.com/thetatiger/fyers-go"
)

func testInstruments() []Instrument {
	return []Instrument{
		{
			Underlying: "NIFTY", Symbol: "NSE:NIFTY2251217000CE", SymbolCode: "NIFTY2251217000CE",
			NumericCode: 1, Strike: 17000, Expiry: NewDate(2022, time.May, 12), Option: OptionTypeCall,
		},
		{
			Underlying: "NIFTY", Symbol: "NSE:NIFTY2251217000PE", SymbolCode: "NIFTY2251217000PE",
			NumericCode: 2, Strike: 17000, Expiry: NewDate(2022, time.May, 12), Option: OptionTypePut,
		},
		{
			Underlying: "NIFTY", Symbol: "NSE:NIFTY2251917000CE", SymbolCode: "NIFTY2251917000CE",
			NumericCode: 3, Strike: 17000, Expiry: NewDate(2022, time.May, 19), Option: OptionTypeCall,
		},
		{
			Underlying: "BANKNIFTY", Symbol: "NSE:BANKNIFTY2251236000CE", SymbolCode: "BANKNIFTY2251236000CE",
			NumericCode: 4, Strike: 36000, Expiry: NewDate(2022, time.May, 12), Option: OptionTypeCall,
		},
	}
}

func TestResolveExactMatch(t *testing.T) {
	idx := NewIndex(testInstruments(), zerolog.Nop())

	inst, err := idx.Resolve("NIFTY", 17000, NewDate(2022, time.May, 12), OptionTypeCall)
	require.NoError(t, err)
	assert.Equal(t, "NSE:NIFTY2251217000CE", inst.Symbol)

	inst, err = idx.Resolve("NIFTY", 17000, NewDate(2022, time.May, 12), OptionTypePut)
	require.NoError(t, err)
	assert.Equal(t, "NSE:NIFTY2251217000PE", inst.Symbol)
}

func TestResolveNotFound(t *testing.T) {
	idx := NewIndex(testInstruments(), zerolog.Nop())

	_, err := idx.Resolve("NIFTY", 18000, NewDate(2022, time.May, 12), OptionTypeCall)
	require.Error(t, err)
	assert.True(t, errors.Is(err, fyers.ErrNotFound))

	_, err = idx.Resolve("FINNIFTY", 17000, NewDate(2022, time.May, 12), OptionTypeCall)
	require.Error(t, err)
	assert.True(t, errors.Is(err, fyers.ErrNotFound))
}

func TestResolveAmbiguousRows(t *testing.T) {
	instruments := testInstruments()
	// Duplicate row: same contract tuple, different symbol text
	instruments = append(instruments, Instrument{
		Underlying: "NIFTY", Symbol: "NSE:NIFTY2251217000CE-DUP", SymbolCode: "DUP",
		NumericCode: 99, Strike: 17000, Expiry: NewDate(2022, time.May, 12), Option: OptionTypeCall,
	})
	idx := NewIndex(instruments, zerolog.Nop())

	_, err := idx.Resolve("NIFTY", 17000, NewDate(2022, time.May, 12), OptionTypeCall)
	require.Error(t, err)

	var ambErr *AmbiguityError
	require.True(t, errors.As(err, &ambErr))
	assert.Equal(t, 2, ambErr.Count)
	assert.Equal(t, "NIFTY", ambErr.Underlying)
	assert.False(t, errors.Is(err, fyers.ErrNotFound))
}

func TestIndexCalendarPerUnderlying(t *testing.T) {
	idx := NewIndex(testInstruments(), zerolog.Nop())

	cal, err := idx.Calendar("NIFTY")
	require.NoError(t, err)
	assert.Equal(t, []Date{
		NewDate(2022, time.May, 12),
		NewDate(2022, time.May, 19),
	}, cal.Dates())

	cal, err = idx.Calendar("BANKNIFTY")
	require.NoError(t, err)
	assert.Equal(t, 1, cal.Len())
}

func TestNextExpiryOnOrAfter(t *testing.T) {
	idx := NewIndex(testInstruments(), zerolog.Nop())

	next, err := idx.NextExpiryOnOrAfter("NIFTY", NewDate(2022, time.May, 15))
	require.NoError(t, err)
	assert.Equal(t, NewDate(2022, time.May, 19), next)

	_, err = idx.NextExpiryOnOrAfter("NIFTY", NewDate(2022, time.June, 1))
	require.Error(t, err)
	assert.True(t, errors.Is(err, fyers.ErrNotFound))
}

func TestIndexLenAndUnderlyings(t *testing.T) {
	idx := NewIndex(testInstruments(), zerolog.Nop())

	assert.Equal(t, 4, idx.Len())
	assert.ElementsMatch(t, []string{"NIFTY", "BANKNIFTY"}, idx.Underlyings())
}

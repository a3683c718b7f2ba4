package symbols

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// masterLine renders one positional CSV line of the master file
func masterLine(symbol string, expiryEpoch int64, symbolCode, underlying string, numericCode int64, strike, optionType string) string {
	return strings.Join(masterRecord(symbol, expiryEpoch, symbolCode, underlying, numericCode, strike, optionType), ",")
}

func masterFixture(t *testing.T) string {
	t.Helper()
	may12 := time.Date(2022, time.May, 12, 15, 30, 0, 0, ExchangeLocation()).Unix()
	may19 := time.Date(2022, time.May, 19, 15, 30, 0, 0, ExchangeLocation()).Unix()

	return strings.Join([]string{
		masterLine("NSE:NIFTY2251217000CE", may12, "NIFTY2251217000CE", "NIFTY", 1, "17000.0", "CE"),
		masterLine("NSE:NIFTY2251217000PE", may12, "NIFTY2251217000PE", "NIFTY", 2, "17000.0", "PE"),
		masterLine("NSE:NIFTY2251917000CE", may19, "NIFTY2251917000CE", "NIFTY", 3, "17000.0", "CE"),
	}, "\n") + "\n"
}

func TestParseMaster(t *testing.T) {
	instruments, err := ParseMaster(strings.NewReader(masterFixture(t)))
	require.NoError(t, err)
	require.Len(t, instruments, 3)

	assert.Equal(t, "NSE:NIFTY2251217000CE", instruments[0].Symbol)
	assert.Equal(t, 17000, instruments[0].Strike)
	assert.Equal(t, NewDate(2022, time.May, 12), instruments[0].Expiry)
}

func TestParseMasterEmptyInput(t *testing.T) {
	_, err := ParseMaster(strings.NewReader(""))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "empty")
}

func TestParseMasterBadRowAborts(t *testing.T) {
	fixture := masterFixture(t) + "bad,row\n"

	_, err := ParseMaster(strings.NewReader(fixture))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "line 4")
}

func TestSourceLoad(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, masterFixture(t))
	}))
	defer server.Close()

	source := NewSource(WithURL(server.URL), WithHTTPClient(server.Client()))
	idx, err := source.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, idx.Len())

	inst, err := idx.Resolve("NIFTY", 17000, NewDate(2022, time.May, 19), OptionTypeCall)
	require.NoError(t, err)
	assert.Equal(t, "NSE:NIFTY2251917000CE", inst.Symbol)
}

func TestSourceLoadBadStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer server.Close()

	source := NewSource(WithURL(server.URL), WithHTTPClient(server.Client()))
	_, err := source.Load(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 404")
}

func TestSourceLoadParseErrorAborts(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, masterFixture(t)+"short,row\n")
	}))
	defer server.Close()

	source := NewSource(WithURL(server.URL), WithHTTPClient(server.Client()))
	idx, err := source.Load(context.Background())
	require.Error(t, err)
	assert.Nil(t, idx)
}

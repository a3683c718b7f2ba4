// Package symbols resolves Fyers option-contract symbols from the published
// NSE F&O instrument master file.
package symbols

import (
	"fmt"
	"math"
	"strconv"
	"sync"
	"time"
)

// Well-known underlyings. The index itself accepts arbitrary underlying keys.
const (
	UnderlyingNifty     = "NIFTY"
	UnderlyingBankNifty = "BANKNIFTY"
)

// OptionType is the option designation of a derivative contract
type OptionType string

const (
	OptionTypeCall OptionType = "CE"
	OptionTypePut  OptionType = "PE"
	// OptionTypeNone marks non-option rows (futures) in the master file
	OptionTypeNone OptionType = "XX"
)

// Date is a calendar date in the exchange's trading calendar.
// It is comparable and safe to use as a map key, unlike time.Time.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// DateOf returns the calendar date of t in t's location
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Year: y, Month: m, Day: d}
}

// NewDate builds a Date from its components
func NewDate(year int, month time.Month, day int) Date {
	return Date{Year: year, Month: month, Day: day}
}

// Before reports whether d is strictly earlier than other
func (d Date) Before(other Date) bool {
	if d.Year != other.Year {
		return d.Year < other.Year
	}
	if d.Month != other.Month {
		return d.Month < other.Month
	}
	return d.Day < other.Day
}

// After reports whether d is strictly later than other
func (d Date) After(other Date) bool {
	return other.Before(d)
}

// Time returns midnight of d in the given location
func (d Date) Time(loc *time.Location) time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, loc)
}

func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Day)
}

// exchangeLocation returns the NSE trading-calendar time zone. Expiry epochs in
// the master file decode to different dates depending on the zone, so it is
// pinned here instead of inheriting the ambient system zone.
var exchangeLocation = sync.OnceValue(func() *time.Location {
	loc, err := time.LoadLocation("Asia/Kolkata")
	if err != nil {
		// No tzdata on the host. IST has no DST, a fixed offset is equivalent.
		return time.FixedZone("IST", 5*3600+30*60)
	}
	return loc
})

// ExchangeLocation returns the time zone used to decode expiry epochs (IST)
func ExchangeLocation() *time.Location {
	return exchangeLocation()
}

// Instrument is one parsed row of the instrument master file.
// Immutable once parsed.
type Instrument struct {
	Underlying  string     // underlying name, e.g. "NIFTY"
	Symbol      string     // broker symbol, e.g. "NSE:NIFTY2251217000CE"
	SymbolCode  string     // internal symbol code
	NumericCode int64      // internal numeric code
	Strike      int        // strike price in rupees
	Expiry      Date       // contract expiry, exchange-local
	Option      OptionType // CE, PE, or XX for futures
}

// Positional column roles of the NSE F&O master file. The file has no header
// row; this layout must be revalidated against the live source when it changes.
const (
	colSymbol      = 1
	colExpiryEpoch = 8
	colSymbolCode  = 9
	colUnderlying  = 13
	colNumericCode = 14
	colStrike      = 15
	colOptionType  = 16

	minColumns = 17
)

// parseInstrument decodes one positional CSV record into an Instrument
func parseInstrument(record []string) (Instrument, error) {
	if len(record) < minColumns {
		return Instrument{}, fmt.Errorf("short record: got %d columns, need %d", len(record), minColumns)
	}

	// Strikes are floats in the raw source but always represent whole rupees.
	// Truncation must be exact, an off-by-one here resolves the wrong contract.
	rawStrike, err := strconv.ParseFloat(record[colStrike], 64)
	if err != nil {
		return Instrument{}, fmt.Errorf("invalid strike %q: %w", record[colStrike], err)
	}
	if rawStrike != math.Trunc(rawStrike) {
		return Instrument{}, fmt.Errorf("non-integral strike %v for %s", rawStrike, record[colSymbol])
	}

	epoch, err := strconv.ParseInt(record[colExpiryEpoch], 10, 64)
	if err != nil {
		return Instrument{}, fmt.Errorf("invalid expiry epoch %q: %w", record[colExpiryEpoch], err)
	}

	numericCode, err := strconv.ParseInt(record[colNumericCode], 10, 64)
	if err != nil {
		return Instrument{}, fmt.Errorf("invalid numeric code %q: %w", record[colNumericCode], err)
	}

	return Instrument{
		Underlying:  record[colUnderlying],
		Symbol:      record[colSymbol],
		SymbolCode:  record[colSymbolCode],
		NumericCode: numericCode,
		Strike:      int(rawStrike),
		Expiry:      DateOf(time.Unix(epoch, 0).In(exchangeLocation())),
		Option:      OptionType(record[colOptionType]),
	}, nil
}

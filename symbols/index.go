package symbols

import (
	"fmt"

	"github.com/rs/zerolog"

	fyers "github.com/thetatiger/fyers-go"
)

// contractKey is the exact-match filter tuple for a derivative contract
type contractKey struct {
	Strike int
	Expiry Date
	Option OptionType
}

// AmbiguityError reports a data-integrity problem in the master file: more
// than one instrument row matched an exact filter tuple. It is deliberately a
// different kind from ErrNotFound, because ambiguity and absence call for
// different remediation.
type AmbiguityError struct {
	Underlying string
	Strike     int
	Expiry     Date
	Option     OptionType
	Count      int
}

func (e *AmbiguityError) Error() string {
	return fmt.Sprintf("ambiguous instrument: %d rows match %s %d %s %s",
		e.Count, e.Underlying, e.Strike, e.Option, e.Expiry)
}

// partition holds all instruments of one underlying
type partition struct {
	rows     map[contractKey][]*Instrument
	calendar *Calendar
}

// Index is an in-memory symbol-resolution index over the instrument master.
// It is populated once by NewIndex and read-only afterward; concurrent readers
// need no synchronization.
type Index struct {
	partitions map[string]*partition
	logger     zerolog.Logger
}

// NewIndex partitions instruments by underlying and builds the per-underlying
// expiry calendars
func NewIndex(instruments []Instrument, logger zerolog.Logger) *Index {
	idx := &Index{
		partitions: make(map[string]*partition),
		logger:     logger,
	}

	for i := range instruments {
		inst := &instruments[i]
		part, ok := idx.partitions[inst.Underlying]
		if !ok {
			part = &partition{rows: make(map[contractKey][]*Instrument)}
			idx.partitions[inst.Underlying] = part
		}
		key := contractKey{Strike: inst.Strike, Expiry: inst.Expiry, Option: inst.Option}
		part.rows[key] = append(part.rows[key], inst)
	}

	for underlying, part := range idx.partitions {
		dates := make([]Date, 0, len(part.rows))
		for key := range part.rows {
			dates = append(dates, key.Expiry)
		}
		part.calendar = NewCalendar(dates)
		logger.Debug().
			Str("underlying", underlying).
			Int("contracts", len(part.rows)).
			Int("expiries", part.calendar.Len()).
			Msg("indexed underlying")
	}

	return idx
}

// Resolve performs an exact match over (underlying, strike, expiry, option
// type). Zero matches return an error wrapping fyers.ErrNotFound; more than
// one match is a data-integrity condition and returns an *AmbiguityError
// after logging a warning.
func (idx *Index) Resolve(underlying string, strike int, expiry Date, option OptionType) (*Instrument, error) {
	part, ok := idx.partitions[underlying]
	if !ok {
		return nil, fmt.Errorf("underlying %s: %w", underlying, fyers.ErrNotFound)
	}

	rows := part.rows[contractKey{Strike: strike, Expiry: expiry, Option: option}]
	switch len(rows) {
	case 0:
		return nil, fmt.Errorf("no instrument for %s %d %s expiring %s: %w",
			underlying, strike, option, expiry, fyers.ErrNotFound)
	case 1:
		return rows[0], nil
	default:
		idx.logger.Warn().
			Str("underlying", underlying).
			Int("strike", strike).
			Str("option", string(option)).
			Stringer("expiry", expiry).
			Int("rows", len(rows)).
			Msg("more than one row in master file for contract")
		return nil, &AmbiguityError{
			Underlying: underlying,
			Strike:     strike,
			Expiry:     expiry,
			Option:     option,
			Count:      len(rows),
		}
	}
}

// Calendar returns the expiry calendar of an underlying
func (idx *Index) Calendar(underlying string) (*Calendar, error) {
	part, ok := idx.partitions[underlying]
	if !ok {
		return nil, fmt.Errorf("underlying %s: %w", underlying, fyers.ErrNotFound)
	}
	return part.calendar, nil
}

// NextExpiryOnOrAfter returns the first expiry of the underlying on or after d
func (idx *Index) NextExpiryOnOrAfter(underlying string, d Date) (Date, error) {
	cal, err := idx.Calendar(underlying)
	if err != nil {
		return Date{}, err
	}
	return cal.NextOnOrAfter(d)
}

// Underlyings returns the underlying names present in the index
func (idx *Index) Underlyings() []string {
	names := make([]string, 0, len(idx.partitions))
	for name := range idx.partitions {
		names = append(names, name)
	}
	return names
}

// Len returns the total number of indexed instruments
func (idx *Index) Len() int {
	n := 0
	for _, part := range idx.partitions {
		for _, rows := range part.rows {
			n += len(rows)
		}
	}
	return n
}

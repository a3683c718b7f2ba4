package symbols

import (
	"fmt"
	"sort"

	fyers "github.com/thetatiger/fyers-go"
)

// Calendar is an ordered set of distinct expiry dates, ascending.
// It is built once from the symbol index and immutable afterward; rebuilding
// requires reloading the whole index.
type Calendar struct {
	dates []Date
}

// NewCalendar sorts the given dates and removes duplicates
func NewCalendar(dates []Date) *Calendar {
	sorted := make([]Date, len(dates))
	copy(sorted, dates)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Before(sorted[j]) })

	unique := sorted[:0]
	for _, d := range sorted {
		if len(unique) == 0 || unique[len(unique)-1] != d {
			unique = append(unique, d)
		}
	}
	return &Calendar{dates: unique}
}

// NextOnOrAfter returns the first expiry on or after d. A query past the last
// loaded expiry returns an error wrapping fyers.ErrNotFound.
func (c *Calendar) NextOnOrAfter(d Date) (Date, error) {
	i := sort.Search(len(c.dates), func(i int) bool { return !c.dates[i].Before(d) })
	if i == len(c.dates) {
		return Date{}, fmt.Errorf("no expiry on or after %s: %w", d, fyers.ErrNotFound)
	}
	return c.dates[i], nil
}

// Dates returns a copy of the calendar entries, ascending
func (c *Calendar) Dates() []Date {
	out := make([]Date, len(c.dates))
	copy(out, c.dates)
	return out
}

// Len returns the number of distinct expiries
func (c *Calendar) Len() int {
	return len(c.dates)
}

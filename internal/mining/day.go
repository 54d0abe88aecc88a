// Package mining implements periodic pattern discovery over a transaction log:
// day-basket aggregation, frequency filtering, the periodicity check and the
// flat and depth-bounded pattern-growth engines.
package mining

import (
	"fmt"
	"time"
)

// Day is a calendar date as it appears in the transaction log.
type Day struct {
	Year  int
	Month int
	Day   int
}

// DayOf returns the calendar day of t in t's location.
func DayOf(t time.Time) Day {
	y, m, d := t.Date()
	return Day{Year: y, Month: int(m), Day: d}
}

// Ordinal returns the day ordinal used for gap arithmetic.
func (d Day) Ordinal() int {
	return DayOrdinal(d.Year, d.Month, d.Day)
}

func (d Day) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, d.Month, d.Day)
}

// DayOrdinal maps a calendar date to a monotonic integer.
//
// Months are treated as fixed 30-day units. The result is not calendar
// accurate; pattern sets depend on this exact formula, so it must not be
// replaced with real day differences.
func DayOrdinal(year, month, day int) int {
	return year*365 + month*30 + day
}

// Observation is a single cleaned transaction: one item seen on one day.
type Observation struct {
	Item string
	Day  Day
}

package terms

import (
	"fmt"
	"time"
)

// =============================================================================
// MONTH - Calendar month normalized to first-of-month
// =============================================================================

// Month identifies a calendar month. Projected payments land in months, not
// on days, so all date arithmetic in the engine normalizes through Month.
type Month struct {
	year int
	mon  time.Month
}

func NewMonth(year int, mon time.Month) Month {
	return MonthOf(time.Date(year, mon, 1, 0, 0, 0, 0, time.UTC))
}

// MonthOf returns the month containing t.
func MonthOf(t time.Time) Month {
	return Month{year: t.Year(), mon: t.Month()}
}

// ParseMonthKey parses a canonical "YYYY-MM" key.
func ParseMonthKey(s string) (Month, error) {
	t, err := time.Parse("2006-01", s)
	if err != nil {
		return Month{}, fmt.Errorf("invalid month key %q: %w", s, err)
	}
	return MonthOf(t), nil
}

// index maps a month onto a continuous scale so Add and Compare are plain
// integer arithmetic, immune to day-of-month overflow.
func (m Month) index() int { return m.year*12 + int(m.mon) - 1 }

func monthFromIndex(i int) Month {
	y, rem := i/12, i%12
	if rem < 0 {
		y--
		rem += 12
	}
	return Month{year: y, mon: time.Month(rem + 1)}
}

// Add returns the month n months later (earlier for negative n).
func (m Month) Add(n int) Month { return monthFromIndex(m.index() + n) }

func (m Month) Year() int        { return m.year }
func (m Month) Mon() time.Month  { return m.mon }
func (m Month) IsZero() bool     { return m.year == 0 && m.mon == 0 }

// Time returns the first day of the month at midnight UTC.
func (m Month) Time() time.Time {
	return time.Date(m.year, m.mon, 1, 0, 0, 0, 0, time.UTC)
}

func (m Month) Before(other Month) bool { return m.index() < other.index() }
func (m Month) After(other Month) bool  { return m.index() > other.index() }
func (m Month) Equal(other Month) bool  { return m.index() == other.index() }

// Compare returns -1, 0 or +1 ordering m against other.
func (m Month) Compare(other Month) int {
	switch {
	case m.index() < other.index():
		return -1
	case m.index() > other.index():
		return 1
	default:
		return 0
	}
}

// Key returns the canonical "YYYY-MM" representation used for ordering and
// aggregation lookups.
func (m Month) Key() string { return m.Time().Format("2006-01") }

// String renders a human-readable "Jan 2006" label.
func (m Month) String() string { return m.Time().Format("Jan 2006") }

// =============================================================================
// WHOLE-MONTH DIFFERENCES
// =============================================================================

// WholeMonthsBetween returns the number of complete months from earlier to
// later. The calendar-month difference is reduced by one when the final
// partial month is incomplete, so Jan 15 -> Jun 1 is 4 months while
// Jan 15 -> Jun 15 is 5. Negative when later precedes earlier.
func WholeMonthsBetween(later, earlier time.Time) int {
	d := MonthOf(later).index() - MonthOf(earlier).index()
	anchor := addMonthsClamped(earlier, d)
	if d > 0 && anchor.After(later) {
		d--
	} else if d < 0 && anchor.Before(later) {
		d++
	}
	return d
}

// addMonthsClamped shifts t by n months, clamping the day to the end of the
// target month (Jan 31 + 1 month = Feb 28, not Mar 3). time.AddDate would
// overflow instead, which overstates whole-month differences.
func addMonthsClamped(t time.Time, n int) time.Time {
	target := MonthOf(t).Add(n)
	day := t.Day()
	if last := daysIn(target); day > last {
		day = last
	}
	return time.Date(target.Year(), target.Mon(), day,
		t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
}

func daysIn(m Month) int {
	return m.Add(1).Time().AddDate(0, 0, -1).Day()
}

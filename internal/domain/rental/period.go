package rental

import (
	"fmt"
	"time"
)

const periodLayout = "2006-01"

// Period identifies the calendar month a payment applies to, as "YYYY-MM"
type Period string

// PeriodOf returns the period containing t (in t's location)
func PeriodOf(t time.Time) Period {
	return Period(t.Format(periodLayout))
}

// ParsePeriod validates a "YYYY-MM" string
func ParsePeriod(s string) (Period, error) {
	p := Period(s)
	if !p.IsValid() {
		return "", fmt.Errorf("invalid period %q: expected YYYY-MM", s)
	}
	return p, nil
}

// IsValid reports whether the period is a well-formed year-month
func (p Period) IsValid() bool {
	if len(p) != len(periodLayout) {
		return false
	}
	_, err := time.Parse(periodLayout, string(p))
	return err == nil
}

// String returns the string representation of Period
func (p Period) String() string {
	return string(p)
}

// Start returns the first instant of the period in loc
func (p Period) Start(loc *time.Location) (time.Time, error) {
	return time.ParseInLocation(periodLayout, string(p), loc)
}

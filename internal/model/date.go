package model

import (
	"fmt"
	"strings"
	"time"
)

// dateLayout is the canonical wire format for calendar days.
const dateLayout = "2006-01-02"

// Date is a calendar day with no time-of-day semantics. Balance math and
// cash-flow windows compare whole days only.
type Date struct {
	t time.Time
}

// NewDate creates a Date for the given calendar day.
func NewDate(year int, month time.Month, day int) Date {
	return Date{t: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// DateOf truncates a time.Time to its calendar day.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return NewDate(y, m, d)
}

// ParseDate parses a wire-format date. It accepts both plain calendar days
// ("2024-01-15") and full timestamps ("2024-01-15T10:30:00Z"), since older
// backups recorded whichever the entry form produced.
func ParseDate(s string) (Date, error) {
	s = strings.TrimSpace(s)
	if d, err := time.Parse(dateLayout, s); err == nil {
		return DateOf(d), nil
	}
	if d, err := time.Parse(time.RFC3339, s); err == nil {
		return DateOf(d), nil
	}
	return Date{}, fmt.Errorf("invalid date %q", s)
}

// Time returns the day as a UTC midnight timestamp.
func (d Date) Time() time.Time {
	return d.t
}

// IsZero reports whether the date is unset.
func (d Date) IsZero() bool {
	return d.t.IsZero()
}

// Before reports whether d is strictly before other.
func (d Date) Before(other Date) bool {
	return d.t.Before(other.t)
}

// After reports whether d is strictly after other.
func (d Date) After(other Date) bool {
	return d.t.After(other.t)
}

// In reports whether d falls within [start, end], both boundaries inclusive.
func (d Date) In(start, end Date) bool {
	return !d.Before(start) && !d.After(end)
}

// SameMonth reports whether d falls in the same calendar month as t.
func (d Date) SameMonth(t time.Time) bool {
	return d.t.Year() == t.Year() && d.t.Month() == t.Month()
}

func (d Date) String() string {
	return d.t.Format(dateLayout)
}

// MarshalJSON encodes the date as a plain calendar day.
func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.t.Format(dateLayout) + `"`), nil
}

// UnmarshalJSON decodes either wire form of a date.
func (d *Date) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// Package ledger is the money-correctness core: immutable balance-affecting
// entries, month-scoped timelines with carry-over, balance projection, and
// the funds/budget checks every write path goes through. Everything here is
// a pure transformation over already-fetched data; persistence and transport
// live in the service layer.
package ledger

import (
	"encoding/json"
	"fmt"
	"time"
)

// MonthKey identifies one calendar month. Every timeline is scoped to
// exactly one MonthKey; carry-over bridges adjacent keys.
type MonthKey struct {
	Year  int
	Month time.Month
}

// MonthOf returns the key of the month containing t.
func MonthOf(t time.Time) MonthKey {
	return MonthKey{Year: t.Year(), Month: t.Month()}
}

// ParseMonthKey parses a "2006-01" formatted key.
func ParseMonthKey(s string) (MonthKey, error) {
	t, err := time.Parse("2006-01", s)
	if err != nil {
		return MonthKey{}, fmt.Errorf("invalid month key %q: %w", s, err)
	}
	return MonthOf(t), nil
}

func (k MonthKey) String() string {
	return fmt.Sprintf("%04d-%02d", k.Year, int(k.Month))
}

// MarshalJSON renders the key in its "2006-01" wire form.
func (k MonthKey) MarshalJSON() ([]byte, error) {
	return []byte(fmt.Sprintf("%q", k.String())), nil
}

func (k *MonthKey) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseMonthKey(s)
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// Prev returns the preceding month.
func (k MonthKey) Prev() MonthKey {
	return MonthOf(k.Start().AddDate(0, -1, 0))
}

// Next returns the following month.
func (k MonthKey) Next() MonthKey {
	return MonthOf(k.Start().AddDate(0, 1, 0))
}

// Start returns midnight UTC on the first day of the month.
func (k MonthKey) Start() time.Time {
	return time.Date(k.Year, k.Month, 1, 0, 0, 0, 0, time.UTC)
}

// Contains reports whether t falls in this month, at day granularity.
func (k MonthKey) Contains(t time.Time) bool {
	return t.Year() == k.Year && t.Month() == k.Month
}

// onOrBefore compares two instants at day granularity, ignoring time of day.
func onOrBefore(t, cutoff time.Time) bool {
	ty, tm, td := t.Date()
	cy, cm, cd := cutoff.Date()
	if ty != cy {
		return ty < cy
	}
	if tm != cm {
		return tm < cm
	}
	return td <= cd
}

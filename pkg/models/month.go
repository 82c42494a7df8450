package models

import (
	"fmt"
	"time"

	"cloud.google.com/go/civil"
)

// Month is a calendar month, serialized as YYYY-MM.
type Month struct {
	Year  int
	Month time.Month
}

// ParseMonth accepts YYYY-MM, or a full YYYY-MM-DD date whose day is ignored.
func ParseMonth(s string) (Month, error) {
	if t, err := time.Parse("2006-01", s); err == nil {
		return Month{Year: t.Year(), Month: t.Month()}, nil
	}
	d, err := civil.ParseDate(s)
	if err != nil {
		return Month{}, fmt.Errorf("invalid month %q (use YYYY-MM)", s)
	}
	return MonthOf(d), nil
}

// MonthOf returns the month containing d.
func MonthOf(d civil.Date) Month {
	return Month{Year: d.Year, Month: d.Month}
}

// FirstDay is the date the month is stored as.
func (m Month) FirstDay() civil.Date {
	return civil.Date{Year: m.Year, Month: m.Month, Day: 1}
}

// IsValid reports whether m names a real month.
func (m Month) IsValid() bool {
	return m.Year >= 1 && m.Year <= 9999 && m.Month >= time.January && m.Month <= time.December
}

func (m Month) String() string {
	return fmt.Sprintf("%04d-%02d", m.Year, int(m.Month))
}

// MarshalText implements encoding.TextMarshaler.
func (m Month) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (m *Month) UnmarshalText(data []byte) error {
	parsed, err := ParseMonth(string(data))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

package database

import (
	"fmt"
	"strings"
	"time"

	"cloud.google.com/go/civil"
	"github.com/Membrive92/TrackingFinance/pkg/models"
)

// timestampLayout is how timestamps are written. Both engines accept it and it
// sorts lexically in SQLite.
const timestampLayout = "2006-01-02 15:04:05.000000"

func timestampArg(t time.Time) string {
	return t.UTC().Format(timestampLayout)
}

func dateArg(d civil.Date) string {
	return d.String()
}

func monthArg(m models.Month) string {
	return m.FirstDay().String()
}

// timestampScanner reads a timestamp column whatever the driver hands back:
// time.Time from MySQL with parseTime, text from SQLite.
type timestampScanner struct {
	dst *time.Time
}

func (s timestampScanner) Scan(src interface{}) error {
	switch v := src.(type) {
	case time.Time:
		*s.dst = v.UTC()
		return nil
	case string:
		return s.parse(v)
	case []byte:
		return s.parse(string(v))
	case nil:
		*s.dst = time.Time{}
		return nil
	}
	return fmt.Errorf("cannot scan %T into a timestamp", src)
}

func (s timestampScanner) parse(v string) error {
	for _, layout := range []string{timestampLayout, time.RFC3339Nano, "2006-01-02 15:04:05"} {
		if t, err := time.Parse(layout, v); err == nil {
			*s.dst = t.UTC()
			return nil
		}
	}
	return fmt.Errorf("invalid timestamp %q", v)
}

// dateScanner reads a DATE column into a civil.Date.
type dateScanner struct {
	dst *civil.Date
}

func (s dateScanner) Scan(src interface{}) error {
	switch v := src.(type) {
	case time.Time:
		*s.dst = civil.DateOf(v)
		return nil
	case string:
		return s.parse(v)
	case []byte:
		return s.parse(string(v))
	}
	return fmt.Errorf("cannot scan %T into a date", src)
}

func (s dateScanner) parse(v string) error {
	if len(v) > 10 {
		v = v[:10]
	}
	d, err := civil.ParseDate(v)
	if err != nil {
		return fmt.Errorf("invalid date %q: %w", v, err)
	}
	*s.dst = d
	return nil
}

// monthScanner reads a first-of-month DATE column into a models.Month.
type monthScanner struct {
	dst *models.Month
}

func (s monthScanner) Scan(src interface{}) error {
	var d civil.Date
	if err := (dateScanner{dst: &d}).Scan(src); err != nil {
		return err
	}
	*s.dst = models.MonthOf(d)
	return nil
}

// compact collapses whitespace so multi-line queries log on one line.
func compact(query string) string {
	return strings.Join(strings.Fields(query), " ")
}

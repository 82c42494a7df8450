package models

import (
	"time"

	"cloud.google.com/go/civil"
)

// ExchangeRate is a historical FX snapshot: one unit of FromCurrency is worth
// Rate units of ToCurrency on RateDate. Rates are stored, never applied.
type ExchangeRate struct {
	ID           int64
	FromCurrency string
	ToCurrency   string
	RateDate     civil.Date
	Rate         float64
	RecordedAt   time.Time
}

func (e *ExchangeRate) Validate() error {
	v := &ValidationError{}
	e.validateInto(v, true)
	return v.Err()
}

func (e *ExchangeRate) validateInto(v *ValidationError, checkRate bool) {
	validateCurrencyCode(v, "from_currency", e.FromCurrency)
	validateCurrencyCode(v, "to_currency", e.ToCurrency)
	if e.FromCurrency != "" && normalizeCode(e.FromCurrency) == normalizeCode(e.ToCurrency) {
		v.Add("to_currency", "must differ from from_currency")
	}
	if !e.RateDate.IsValid() {
		v.Add("rate_date", "must be a valid date (YYYY-MM-DD)")
	}
	if checkRate && !positive(e.Rate) {
		v.Add("rate", "must be greater than 0")
	}
}

func (e *ExchangeRate) Read() ExchangeRateRead {
	return ExchangeRateRead{
		ID:           e.ID,
		FromCurrency: e.FromCurrency,
		ToCurrency:   e.ToCurrency,
		RateDate:     e.RateDate,
		Rate:         e.Rate,
		RecordedAt:   e.RecordedAt,
	}
}

type ExchangeRateRead struct {
	ID           int64      `json:"id"`
	FromCurrency string     `json:"from_currency"`
	ToCurrency   string     `json:"to_currency"`
	RateDate     civil.Date `json:"rate_date"`
	Rate         float64    `json:"rate"`
	RecordedAt   time.Time  `json:"recorded_at"`
}

type ExchangeRateCreate struct {
	FromCurrency string     `json:"from_currency"`
	ToCurrency   string     `json:"to_currency"`
	RateDate     civil.Date `json:"rate_date"`
	Rate         *float64   `json:"rate"`
}

func (c ExchangeRateCreate) Validate() error {
	v := &ValidationError{}
	c.New(time.Time{}).validateInto(v, c.Rate != nil)
	if c.Rate == nil {
		v.Add("rate", "field required")
	}
	return v.Err()
}

func (c ExchangeRateCreate) New(recordedAt time.Time) *ExchangeRate {
	e := &ExchangeRate{
		FromCurrency: normalizeCode(c.FromCurrency),
		ToCurrency:   normalizeCode(c.ToCurrency),
		RateDate:     c.RateDate,
		RecordedAt:   recordedAt.UTC(),
	}
	if c.Rate != nil {
		e.Rate = *c.Rate
	}
	return e
}

type ExchangeRateUpdate struct {
	FromCurrency *string     `json:"from_currency,omitempty"`
	ToCurrency   *string     `json:"to_currency,omitempty"`
	RateDate     *civil.Date `json:"rate_date,omitempty"`
	Rate         *float64    `json:"rate,omitempty"`
}

func (u ExchangeRateUpdate) Validate() error {
	v := &ValidationError{}
	if u.FromCurrency != nil {
		validateCurrencyCode(v, "from_currency", *u.FromCurrency)
	}
	if u.ToCurrency != nil {
		validateCurrencyCode(v, "to_currency", *u.ToCurrency)
	}
	if u.RateDate != nil && !u.RateDate.IsValid() {
		v.Add("rate_date", "must be a valid date (YYYY-MM-DD)")
	}
	if u.Rate != nil && !positive(*u.Rate) {
		v.Add("rate", "must be greater than 0")
	}
	return v.Err()
}

func (u ExchangeRateUpdate) ApplyTo(e *ExchangeRate) {
	if u.FromCurrency != nil {
		e.FromCurrency = normalizeCode(*u.FromCurrency)
	}
	if u.ToCurrency != nil {
		e.ToCurrency = normalizeCode(*u.ToCurrency)
	}
	if u.RateDate != nil {
		e.RateDate = *u.RateDate
	}
	if u.Rate != nil {
		e.Rate = *u.Rate
	}
}

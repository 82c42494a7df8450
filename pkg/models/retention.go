package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// retentionTolerance is how far a stored amount may drift from the amount
// derived from the other columns, after rounding both to cents.
var retentionTolerance = decimal.New(1, -2)

// Retention is a withholding-tax snapshot tied to a transaction.
type Retention struct {
	ID              int64
	TransactionID   int64
	Month           Month
	GrossAmount     float64
	RetentionPct    float64
	OriginRetention float64
	NetAmount       float64
	RecordedAt      time.Time
}

// Validate checks the field invariants and the arithmetic relation between the
// amounts:
//
//	origin_retention = gross_amount * retention_pct
//	net_amount       = gross_amount - origin_retention
func (r *Retention) Validate() error {
	v := &ValidationError{}
	if r.TransactionID <= 0 {
		v.Add("transaction_id", "must be a positive transaction id")
	}
	if !r.Month.IsValid() {
		v.Add("month", "must be a valid month (YYYY-MM)")
	}
	if !nonNegative(r.GrossAmount) {
		v.Add("gross_amount", "must be greater than or equal to 0")
	}
	if !finite(r.RetentionPct) || r.RetentionPct < 0 || r.RetentionPct > 1 {
		v.Add("retention_pct", "must be between 0 and 1")
	}
	if !nonNegative(r.OriginRetention) {
		v.Add("origin_retention", "must be greater than or equal to 0")
	}
	if !finite(r.NetAmount) {
		v.Add("net_amount", "must be a finite number")
	}
	if len(v.Fields) == 0 {
		checkRetentionArithmetic(v, r)
	}
	return v.Err()
}

func checkRetentionArithmetic(v *ValidationError, r *Retention) {
	gross := decimal.NewFromFloat(r.GrossAmount)
	origin := decimal.NewFromFloat(r.OriginRetention).Round(2)
	net := decimal.NewFromFloat(r.NetAmount).Round(2)

	expectedOrigin := gross.Mul(decimal.NewFromFloat(r.RetentionPct)).Round(2)
	if expectedOrigin.Sub(origin).Abs().GreaterThan(retentionTolerance) {
		v.Add("origin_retention", "must equal gross_amount * retention_pct (expected %s)", expectedOrigin.StringFixed(2))
	}
	expectedNet := gross.Sub(decimal.NewFromFloat(r.OriginRetention)).Round(2)
	if expectedNet.Sub(net).Abs().GreaterThan(retentionTolerance) {
		v.Add("net_amount", "must equal gross_amount - origin_retention (expected %s)", expectedNet.StringFixed(2))
	}
}

// Read projects r into its public shape.
func (r *Retention) Read() RetentionRead {
	return RetentionRead{
		ID:              r.ID,
		TransactionID:   r.TransactionID,
		Month:           r.Month,
		GrossAmount:     r.GrossAmount,
		RetentionPct:    r.RetentionPct,
		OriginRetention: r.OriginRetention,
		NetAmount:       r.NetAmount,
		RecordedAt:      r.RecordedAt,
	}
}

// RetentionRead is the public projection of a retention.
type RetentionRead struct {
	ID              int64     `json:"id"`
	TransactionID   int64     `json:"transaction_id"`
	Month           Month     `json:"month"`
	GrossAmount     float64   `json:"gross_amount"`
	RetentionPct    float64   `json:"retention_pct"`
	OriginRetention float64   `json:"origin_retention"`
	NetAmount       float64   `json:"net_amount"`
	RecordedAt      time.Time `json:"recorded_at"`
}

// RetentionCreate is what a client sends to record a retention.
type RetentionCreate struct {
	TransactionID   int64    `json:"transaction_id"`
	Month           Month    `json:"month"`
	GrossAmount     *float64 `json:"gross_amount"`
	RetentionPct    *float64 `json:"retention_pct"`
	OriginRetention *float64 `json:"origin_retention"`
	NetAmount       *float64 `json:"net_amount"`
}

// Validate rejects the payload before it reaches the store, including
// inconsistent amounts.
func (c RetentionCreate) Validate() error {
	v := &ValidationError{}
	if c.TransactionID <= 0 {
		v.Add("transaction_id", "field required")
	}
	for _, f := range []struct {
		name  string
		value *float64
	}{
		{"gross_amount", c.GrossAmount},
		{"retention_pct", c.RetentionPct},
		{"origin_retention", c.OriginRetention},
		{"net_amount", c.NetAmount},
	} {
		if f.value == nil {
			v.Add(f.name, "field required")
		}
	}
	if len(v.Fields) > 0 {
		return v
	}
	return c.New(time.Time{}).Validate()
}

// New builds the retention to insert.
func (c RetentionCreate) New(recordedAt time.Time) *Retention {
	r := &Retention{
		TransactionID: c.TransactionID,
		Month:         c.Month,
		RecordedAt:    recordedAt.UTC(),
	}
	if c.GrossAmount != nil {
		r.GrossAmount = *c.GrossAmount
	}
	if c.RetentionPct != nil {
		r.RetentionPct = *c.RetentionPct
	}
	if c.OriginRetention != nil {
		r.OriginRetention = *c.OriginRetention
	}
	if c.NetAmount != nil {
		r.NetAmount = *c.NetAmount
	}
	return r
}

// RetentionUpdate carries a partial update; nil fields are left untouched.
// The merged row is validated as a whole, so changing gross_amount usually
// means sending the derived amounts too.
type RetentionUpdate struct {
	TransactionID   *int64   `json:"transaction_id,omitempty"`
	Month           *Month   `json:"month,omitempty"`
	GrossAmount     *float64 `json:"gross_amount,omitempty"`
	RetentionPct    *float64 `json:"retention_pct,omitempty"`
	OriginRetention *float64 `json:"origin_retention,omitempty"`
	NetAmount       *float64 `json:"net_amount,omitempty"`
}

// Validate checks only the fields that are present.
func (u RetentionUpdate) Validate() error {
	v := &ValidationError{}
	if u.TransactionID != nil && *u.TransactionID <= 0 {
		v.Add("transaction_id", "must be a positive transaction id")
	}
	if u.Month != nil && !u.Month.IsValid() {
		v.Add("month", "must be a valid month (YYYY-MM)")
	}
	if u.GrossAmount != nil && !nonNegative(*u.GrossAmount) {
		v.Add("gross_amount", "must be greater than or equal to 0")
	}
	if u.RetentionPct != nil && (!finite(*u.RetentionPct) || *u.RetentionPct < 0 || *u.RetentionPct > 1) {
		v.Add("retention_pct", "must be between 0 and 1")
	}
	if u.OriginRetention != nil && !nonNegative(*u.OriginRetention) {
		v.Add("origin_retention", "must be greater than or equal to 0")
	}
	if u.NetAmount != nil && !finite(*u.NetAmount) {
		v.Add("net_amount", "must be a finite number")
	}
	return v.Err()
}

// ApplyTo overwrites the fields of r that are present in u.
func (u RetentionUpdate) ApplyTo(r *Retention) {
	if u.TransactionID != nil {
		r.TransactionID = *u.TransactionID
	}
	if u.Month != nil {
		r.Month = *u.Month
	}
	if u.GrossAmount != nil {
		r.GrossAmount = *u.GrossAmount
	}
	if u.RetentionPct != nil {
		r.RetentionPct = *u.RetentionPct
	}
	if u.OriginRetention != nil {
		r.OriginRetention = *u.OriginRetention
	}
	if u.NetAmount != nil {
		r.NetAmount = *u.NetAmount
	}
}

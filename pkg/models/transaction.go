package models

import (
	"time"

	"cloud.google.com/go/civil"
)

// Transaction is a buy, sell or dividend event recorded against an asset.
type Transaction struct {
	ID              int64
	AssetID         int64
	Date            civil.Date
	TransactionType TransactionType
	Quantity        float64
	UnitPrice       float64
	Currency        string
	RecordedAt      time.Time
}

// Validate checks the field invariants. Whether AssetID references an existing
// asset is checked by the service inside the unit of work.
func (t *Transaction) Validate() error {
	v := &ValidationError{}
	if t.AssetID <= 0 {
		v.Add("asset_id", "must be a positive asset id")
	}
	if !t.Date.IsValid() {
		v.Add("date", "must be a valid date (YYYY-MM-DD)")
	}
	if !t.TransactionType.Valid() {
		v.Add("transaction_type", "must be one of %s", transactionTypeList())
	}
	if !nonNegative(t.Quantity) {
		v.Add("quantity", "must be greater than or equal to 0")
	}
	if !nonNegative(t.UnitPrice) {
		v.Add("unit_price", "must be greater than or equal to 0")
	}
	validateCurrencyCode(v, "currency", t.Currency)
	return v.Err()
}

// Read projects t into its public shape.
func (t *Transaction) Read() TransactionRead {
	return TransactionRead{
		ID:              t.ID,
		AssetID:         t.AssetID,
		Date:            t.Date,
		TransactionType: t.TransactionType,
		Quantity:        t.Quantity,
		UnitPrice:       t.UnitPrice,
		Currency:        t.Currency,
		RecordedAt:      t.RecordedAt,
	}
}

// TransactionRead is the public projection of a transaction.
type TransactionRead struct {
	ID              int64           `json:"id"`
	AssetID         int64           `json:"asset_id"`
	Date            civil.Date      `json:"date"`
	TransactionType TransactionType `json:"transaction_type"`
	Quantity        float64         `json:"quantity"`
	UnitPrice       float64         `json:"unit_price"`
	Currency        string          `json:"currency"`
	RecordedAt      time.Time       `json:"recorded_at"`
}

// TransactionCreate is what a client sends to record a transaction.
type TransactionCreate struct {
	AssetID         int64           `json:"asset_id"`
	Date            civil.Date      `json:"date"`
	TransactionType TransactionType `json:"transaction_type"`
	Quantity        *float64        `json:"quantity"`
	UnitPrice       *float64        `json:"unit_price"`
	Currency        string          `json:"currency"`
}

// Validate rejects the payload before it reaches the store.
func (c TransactionCreate) Validate() error {
	v := &ValidationError{}
	if c.AssetID <= 0 {
		v.Add("asset_id", "field required")
	}
	if !c.Date.IsValid() {
		v.Add("date", "must be a valid date (YYYY-MM-DD)")
	}
	if c.TransactionType == "" {
		v.Add("transaction_type", "field required")
	} else if !c.TransactionType.Valid() {
		v.Add("transaction_type", "must be one of %s", transactionTypeList())
	}
	requiredNonNegative(v, "quantity", c.Quantity)
	requiredNonNegative(v, "unit_price", c.UnitPrice)
	validateCurrencyCode(v, "currency", c.Currency)
	return v.Err()
}

// New builds the transaction to insert.
func (c TransactionCreate) New(recordedAt time.Time) *Transaction {
	t := &Transaction{
		AssetID:         c.AssetID,
		Date:            c.Date,
		TransactionType: c.TransactionType,
		Currency:        normalizeCode(c.Currency),
		RecordedAt:      recordedAt.UTC(),
	}
	if c.Quantity != nil {
		t.Quantity = *c.Quantity
	}
	if c.UnitPrice != nil {
		t.UnitPrice = *c.UnitPrice
	}
	return t
}

// TransactionUpdate carries a partial update; nil fields are left untouched.
type TransactionUpdate struct {
	AssetID         *int64           `json:"asset_id,omitempty"`
	Date            *civil.Date      `json:"date,omitempty"`
	TransactionType *TransactionType `json:"transaction_type,omitempty"`
	Quantity        *float64         `json:"quantity,omitempty"`
	UnitPrice       *float64         `json:"unit_price,omitempty"`
	Currency        *string          `json:"currency,omitempty"`
}

// Validate checks only the fields that are present.
func (u TransactionUpdate) Validate() error {
	v := &ValidationError{}
	if u.AssetID != nil && *u.AssetID <= 0 {
		v.Add("asset_id", "must be a positive asset id")
	}
	if u.Date != nil && !u.Date.IsValid() {
		v.Add("date", "must be a valid date (YYYY-MM-DD)")
	}
	if u.TransactionType != nil && !u.TransactionType.Valid() {
		v.Add("transaction_type", "must be one of %s", transactionTypeList())
	}
	if u.Quantity != nil && !nonNegative(*u.Quantity) {
		v.Add("quantity", "must be greater than or equal to 0")
	}
	if u.UnitPrice != nil && !nonNegative(*u.UnitPrice) {
		v.Add("unit_price", "must be greater than or equal to 0")
	}
	if u.Currency != nil {
		validateCurrencyCode(v, "currency", *u.Currency)
	}
	return v.Err()
}

// ApplyTo overwrites the fields of t that are present in u.
func (u TransactionUpdate) ApplyTo(t *Transaction) {
	if u.AssetID != nil {
		t.AssetID = *u.AssetID
	}
	if u.Date != nil {
		t.Date = *u.Date
	}
	if u.TransactionType != nil {
		t.TransactionType = *u.TransactionType
	}
	if u.Quantity != nil {
		t.Quantity = *u.Quantity
	}
	if u.UnitPrice != nil {
		t.UnitPrice = *u.UnitPrice
	}
	if u.Currency != nil {
		t.Currency = normalizeCode(*u.Currency)
	}
}

func requiredNonNegative(v *ValidationError, field string, f *float64) {
	if f == nil {
		v.Add(field, "field required")
		return
	}
	if !nonNegative(*f) {
		v.Add(field, "must be greater than or equal to 0")
	}
}

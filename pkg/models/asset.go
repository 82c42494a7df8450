package models

import (
	"strings"
	"time"
	"unicode/utf8"
)

// MaxTickerLength bounds Asset.Ticker.
const MaxTickerLength = 20

// Asset is a trackable financial instrument.
type Asset struct {
	ID           int64
	Ticker       string
	AssetType    AssetType
	CurrentPrice float64
	Currency     Currency
	CreatedAt    time.Time
}

// Validate checks every field invariant of a persisted or about-to-be
// persisted asset.
func (a *Asset) Validate() error {
	v := &ValidationError{}
	validateTicker(v, a.Ticker)
	if !a.AssetType.Valid() {
		v.Add("asset_type", "must be one of %s", assetTypeList())
	}
	if !nonNegative(a.CurrentPrice) {
		v.Add("current_price", "must be greater than or equal to 0")
	}
	if !a.Currency.Valid() {
		v.Add("currency", "must be one of %s", currencyList())
	}
	return v.Err()
}

// Read projects a into its public shape.
func (a *Asset) Read() AssetRead {
	return AssetRead{
		ID:           a.ID,
		Ticker:       a.Ticker,
		AssetType:    a.AssetType,
		CurrentPrice: a.CurrentPrice,
		Currency:     a.Currency,
		CreatedAt:    a.CreatedAt,
	}
}

// AssetRead is returned by every non-deleting asset endpoint.
type AssetRead struct {
	ID           int64     `json:"id"`
	Ticker       string    `json:"ticker"`
	AssetType    AssetType `json:"asset_type"`
	CurrentPrice float64   `json:"current_price"`
	Currency     Currency  `json:"currency"`
	CreatedAt    time.Time `json:"created_at"`
}

// AssetCreate is what a client sends to create an asset.
type AssetCreate struct {
	Ticker       string    `json:"ticker"`
	AssetType    AssetType `json:"asset_type"`
	CurrentPrice *float64  `json:"current_price"`
	Currency     Currency  `json:"currency,omitempty"`
}

// Validate rejects the payload before it reaches the store.
func (c AssetCreate) Validate() error {
	v := &ValidationError{}
	validateTicker(v, c.Ticker)
	if c.AssetType == "" {
		v.Add("asset_type", "field required")
	} else if !c.AssetType.Valid() {
		v.Add("asset_type", "must be one of %s", assetTypeList())
	}
	if c.CurrentPrice == nil {
		v.Add("current_price", "field required")
	} else if !nonNegative(*c.CurrentPrice) {
		v.Add("current_price", "must be greater than or equal to 0")
	}
	if c.Currency != "" && !c.Currency.Valid() {
		v.Add("currency", "must be one of %s", currencyList())
	}
	return v.Err()
}

// New builds the asset to insert, applying defaults. createdAt is stored in UTC.
func (c AssetCreate) New(createdAt time.Time) *Asset {
	a := &Asset{
		Ticker:    strings.TrimSpace(c.Ticker),
		AssetType: c.AssetType,
		Currency:  c.Currency,
		CreatedAt: createdAt.UTC(),
	}
	if c.CurrentPrice != nil {
		a.CurrentPrice = *c.CurrentPrice
	}
	if a.Currency == "" {
		a.Currency = DefaultCurrency
	}
	return a
}

// AssetUpdate carries a partial update; nil fields are left untouched.
type AssetUpdate struct {
	Ticker       *string    `json:"ticker,omitempty"`
	AssetType    *AssetType `json:"asset_type,omitempty"`
	CurrentPrice *float64   `json:"current_price,omitempty"`
	Currency     *Currency  `json:"currency,omitempty"`
}

// Validate checks only the fields that are present.
func (u AssetUpdate) Validate() error {
	v := &ValidationError{}
	if u.Ticker != nil {
		validateTicker(v, *u.Ticker)
	}
	if u.AssetType != nil && !u.AssetType.Valid() {
		v.Add("asset_type", "must be one of %s", assetTypeList())
	}
	if u.CurrentPrice != nil && !nonNegative(*u.CurrentPrice) {
		v.Add("current_price", "must be greater than or equal to 0")
	}
	if u.Currency != nil && !u.Currency.Valid() {
		v.Add("currency", "must be one of %s", currencyList())
	}
	return v.Err()
}

// ApplyTo overwrites the fields of a that are present in u.
func (u AssetUpdate) ApplyTo(a *Asset) {
	if u.Ticker != nil {
		a.Ticker = strings.TrimSpace(*u.Ticker)
	}
	if u.AssetType != nil {
		a.AssetType = *u.AssetType
	}
	if u.CurrentPrice != nil {
		a.CurrentPrice = *u.CurrentPrice
	}
	if u.Currency != nil {
		a.Currency = *u.Currency
	}
}

func validateTicker(v *ValidationError, ticker string) {
	n := utf8.RuneCountInString(strings.TrimSpace(ticker))
	switch {
	case n == 0:
		v.Add("ticker", "field required")
	case n > MaxTickerLength:
		v.Add("ticker", "must be at most %d characters", MaxTickerLength)
	}
}

package models

import (
	"strings"

	"github.com/Rhymond/go-money"
)

// AssetType is the closed set of instrument kinds an asset can be.
type AssetType string

const (
	AssetTypeETF    AssetType = "ETF"
	AssetTypeStock  AssetType = "STOCK"
	AssetTypeCrypto AssetType = "CRYPTO"
)

// AssetTypes returns every accepted asset type.
func AssetTypes() []AssetType {
	return []AssetType{AssetTypeETF, AssetTypeStock, AssetTypeCrypto}
}

// Valid reports whether t is one of the accepted asset types.
func (t AssetType) Valid() bool {
	switch t {
	case AssetTypeETF, AssetTypeStock, AssetTypeCrypto:
		return true
	}
	return false
}

// Currency is the closed set of quote currencies for assets.
type Currency string

const (
	CurrencyUSD Currency = "USD"
	CurrencyEUR Currency = "EUR"
)

// DefaultCurrency is applied when an asset is created without a currency.
const DefaultCurrency = CurrencyEUR

// Currencies returns every accepted asset currency.
func Currencies() []Currency {
	return []Currency{CurrencyUSD, CurrencyEUR}
}

// Valid reports whether c is one of the accepted asset currencies.
func (c Currency) Valid() bool {
	return c == CurrencyUSD || c == CurrencyEUR
}

// TransactionType is the kind of event recorded against an asset.
type TransactionType string

const (
	TransactionBuy      TransactionType = "buy"
	TransactionSell     TransactionType = "sell"
	TransactionDividend TransactionType = "dividend"
)

// TransactionTypes returns every accepted transaction type.
func TransactionTypes() []TransactionType {
	return []TransactionType{TransactionBuy, TransactionSell, TransactionDividend}
}

// Valid reports whether t is one of the accepted transaction types.
func (t TransactionType) Valid() bool {
	switch t {
	case TransactionBuy, TransactionSell, TransactionDividend:
		return true
	}
	return false
}

// NormalizeCurrencyCode upper-cases code and reports whether it is a known
// ISO-4217 currency.
func NormalizeCurrencyCode(code string) (string, bool) {
	c := strings.ToUpper(strings.TrimSpace(code))
	if len(c) != 3 {
		return c, false
	}
	return c, money.GetCurrency(c) != nil
}

func assetTypeList() string {
	names := make([]string, 0, 3)
	for _, t := range AssetTypes() {
		names = append(names, string(t))
	}
	return strings.Join(names, ", ")
}

func currencyList() string {
	names := make([]string, 0, 2)
	for _, c := range Currencies() {
		names = append(names, string(c))
	}
	return strings.Join(names, ", ")
}

func transactionTypeList() string {
	names := make([]string, 0, 3)
	for _, t := range TransactionTypes() {
		names = append(names, string(t))
	}
	return strings.Join(names, ", ")
}

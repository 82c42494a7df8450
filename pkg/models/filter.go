package models

// TransactionFilter narrows a transaction listing. Zero values match everything.
type TransactionFilter struct {
	AssetID int64
}

// RetentionFilter narrows a retention listing. Zero values match everything.
type RetentionFilter struct {
	TransactionID int64
}

// ExchangeRateFilter narrows an exchange-rate listing. Empty values match
// everything; codes are compared upper-case.
type ExchangeRateFilter struct {
	From string
	To   string
}

package database

import (
	"context"

	"github.com/Membrive92/TrackingFinance/pkg/models"
)

const exchangeRateColumns = `id, from_currency, to_currency, rate_date, rate, recorded_at`

func scanExchangeRate(row rowScanner) (*models.ExchangeRate, error) {
	e := &models.ExchangeRate{}
	err := row.Scan(
		&e.ID,
		&e.FromCurrency,
		&e.ToCurrency,
		dateScanner{&e.RateDate},
		&e.Rate,
		timestampScanner{&e.RecordedAt},
	)
	return e, err
}

// GetExchangeRate retrieves a single exchange rate by id
func (t *Tx) GetExchangeRate(ctx context.Context, id int64) (*models.ExchangeRate, error) {
	query := `SELECT ` + exchangeRateColumns + ` FROM exchange_rates WHERE id = ?`

	e, err := scanExchangeRate(t.queryRow(ctx, query, id))
	if err != nil {
		return nil, notFoundOr(models.EntityExchangeRate, id, "get exchange rate", err)
	}
	return e, nil
}

// ListExchangeRates retrieves exchange rates ordered by id
func (t *Tx) ListExchangeRates(ctx context.Context, filter models.ExchangeRateFilter) ([]*models.ExchangeRate, error) {
	var w where
	if filter.From != "" {
		w.add("from_currency = ?", filter.From)
	}
	if filter.To != "" {
		w.add("to_currency = ?", filter.To)
	}
	query := `SELECT ` + exchangeRateColumns + ` FROM exchange_rates` + w.String() + ` ORDER BY id`

	rows, err := t.query(ctx, query, w.args...)
	if err != nil {
		return nil, classify(models.EntityExchangeRate, "list exchange rates", err)
	}
	defer rows.Close()

	rates := make([]*models.ExchangeRate, 0)
	for rows.Next() {
		e, err := scanExchangeRate(rows)
		if err != nil {
			return nil, classify(models.EntityExchangeRate, "scan exchange rate", err)
		}
		rates = append(rates, e)
	}
	if err := rows.Err(); err != nil {
		return nil, classify(models.EntityExchangeRate, "list exchange rates", err)
	}
	return rates, nil
}

// InsertExchangeRate inserts e and sets its id
func (t *Tx) InsertExchangeRate(ctx context.Context, e *models.ExchangeRate) error {
	query := `
		INSERT INTO exchange_rates (from_currency, to_currency, rate_date, rate, recorded_at)
		VALUES (?, ?, ?, ?, ?)
	`

	result, err := t.exec(ctx, query,
		e.FromCurrency,
		e.ToCurrency,
		dateArg(e.RateDate),
		e.Rate,
		timestampArg(e.RecordedAt),
	)
	if err != nil {
		return classify(models.EntityExchangeRate, "insert exchange rate", err)
	}
	return setID(result, &e.ID, models.EntityExchangeRate)
}

// UpdateExchangeRate writes every mutable column of e
func (t *Tx) UpdateExchangeRate(ctx context.Context, e *models.ExchangeRate) error {
	query := `
		UPDATE exchange_rates SET
			from_currency = ?,
			to_currency = ?,
			rate_date = ?,
			rate = ?
		WHERE id = ?
	`

	_, err := t.exec(ctx, query,
		e.FromCurrency,
		e.ToCurrency,
		dateArg(e.RateDate),
		e.Rate,
		e.ID,
	)
	if err != nil {
		return classify(models.EntityExchangeRate, "update exchange rate", err)
	}
	return nil
}

// DeleteExchangeRate removes the exchange rate with id
func (t *Tx) DeleteExchangeRate(ctx context.Context, id int64) error {
	result, err := t.exec(ctx, `DELETE FROM exchange_rates WHERE id = ?`, id)
	if err != nil {
		return classifyDelete(models.EntityExchangeRate, "delete exchange rate", err)
	}
	return requireAffected(result, models.EntityExchangeRate, id)
}

package database

import (
	"context"
	"strings"

	"github.com/Membrive92/TrackingFinance/pkg/models"
)

const transactionColumns = `id, asset_id, date, transaction_type, quantity, unit_price, currency, recorded_at`

func scanTransaction(row rowScanner) (*models.Transaction, error) {
	tr := &models.Transaction{}
	err := row.Scan(
		&tr.ID,
		&tr.AssetID,
		dateScanner{&tr.Date},
		&tr.TransactionType,
		&tr.Quantity,
		&tr.UnitPrice,
		&tr.Currency,
		timestampScanner{&tr.RecordedAt},
	)
	return tr, err
}

// GetTransaction retrieves a single transaction by id
func (t *Tx) GetTransaction(ctx context.Context, id int64) (*models.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE id = ?`

	tr, err := scanTransaction(t.queryRow(ctx, query, id))
	if err != nil {
		return nil, notFoundOr(models.EntityTransaction, id, "get transaction", err)
	}
	return tr, nil
}

// ListTransactions retrieves transactions ordered by id
func (t *Tx) ListTransactions(ctx context.Context, filter models.TransactionFilter) ([]*models.Transaction, error) {
	var w where
	if filter.AssetID != 0 {
		w.add("asset_id = ?", filter.AssetID)
	}
	query := `SELECT ` + transactionColumns + ` FROM transactions` + w.String() + ` ORDER BY id`

	rows, err := t.query(ctx, query, w.args...)
	if err != nil {
		return nil, classify(models.EntityTransaction, "list transactions", err)
	}
	defer rows.Close()

	transactions := make([]*models.Transaction, 0)
	for rows.Next() {
		tr, err := scanTransaction(rows)
		if err != nil {
			return nil, classify(models.EntityTransaction, "scan transaction", err)
		}
		transactions = append(transactions, tr)
	}
	if err := rows.Err(); err != nil {
		return nil, classify(models.EntityTransaction, "list transactions", err)
	}
	return transactions, nil
}

// InsertTransaction inserts tr and sets its id
func (t *Tx) InsertTransaction(ctx context.Context, tr *models.Transaction) error {
	query := `
		INSERT INTO transactions (
			asset_id, date, transaction_type, quantity, unit_price, currency, recorded_at
		) VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	result, err := t.exec(ctx, query,
		tr.AssetID,
		dateArg(tr.Date),
		string(tr.TransactionType),
		tr.Quantity,
		tr.UnitPrice,
		tr.Currency,
		timestampArg(tr.RecordedAt),
	)
	if err != nil {
		return classify(models.EntityTransaction, "insert transaction", err)
	}
	return setID(result, &tr.ID, models.EntityTransaction)
}

// UpdateTransaction writes every mutable column of tr
func (t *Tx) UpdateTransaction(ctx context.Context, tr *models.Transaction) error {
	query := `
		UPDATE transactions SET
			asset_id = ?,
			date = ?,
			transaction_type = ?,
			quantity = ?,
			unit_price = ?,
			currency = ?
		WHERE id = ?
	`

	_, err := t.exec(ctx, query,
		tr.AssetID,
		dateArg(tr.Date),
		string(tr.TransactionType),
		tr.Quantity,
		tr.UnitPrice,
		tr.Currency,
		tr.ID,
	)
	if err != nil {
		return classify(models.EntityTransaction, "update transaction", err)
	}
	return nil
}

// DeleteTransaction removes the transaction with id
func (t *Tx) DeleteTransaction(ctx context.Context, id int64) error {
	result, err := t.exec(ctx, `DELETE FROM transactions WHERE id = ?`, id)
	if err != nil {
		return classifyDelete(models.EntityTransaction, "delete transaction", err)
	}
	return requireAffected(result, models.EntityTransaction, id)
}

// CountRetentionsForTransaction counts the retentions referencing transaction id
func (t *Tx) CountRetentionsForTransaction(ctx context.Context, id int64) (int64, error) {
	return t.count(ctx, "count retentions", `SELECT COUNT(*) FROM retentions WHERE transaction_id = ?`, id)
}

// where accumulates AND-ed filter clauses.
type where struct {
	clauses []string
	args    []interface{}
}

func (w *where) add(clause string, arg interface{}) {
	w.clauses = append(w.clauses, clause)
	w.args = append(w.args, arg)
}

func (w *where) String() string {
	if len(w.clauses) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(w.clauses, " AND ")
}

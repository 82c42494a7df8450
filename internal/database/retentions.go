package database

import (
	"context"

	"github.com/Membrive92/TrackingFinance/pkg/models"
)

const retentionColumns = `id, transaction_id, month, gross_amount, retention_pct, origin_retention, net_amount, recorded_at`

func scanRetention(row rowScanner) (*models.Retention, error) {
	r := &models.Retention{}
	err := row.Scan(
		&r.ID,
		&r.TransactionID,
		monthScanner{&r.Month},
		&r.GrossAmount,
		&r.RetentionPct,
		&r.OriginRetention,
		&r.NetAmount,
		timestampScanner{&r.RecordedAt},
	)
	return r, err
}

// GetRetention retrieves a single retention by id
func (t *Tx) GetRetention(ctx context.Context, id int64) (*models.Retention, error) {
	query := `SELECT ` + retentionColumns + ` FROM retentions WHERE id = ?`

	r, err := scanRetention(t.queryRow(ctx, query, id))
	if err != nil {
		return nil, notFoundOr(models.EntityRetention, id, "get retention", err)
	}
	return r, nil
}

// ListRetentions retrieves retentions ordered by id
func (t *Tx) ListRetentions(ctx context.Context, filter models.RetentionFilter) ([]*models.Retention, error) {
	var w where
	if filter.TransactionID != 0 {
		w.add("transaction_id = ?", filter.TransactionID)
	}
	query := `SELECT ` + retentionColumns + ` FROM retentions` + w.String() + ` ORDER BY id`

	rows, err := t.query(ctx, query, w.args...)
	if err != nil {
		return nil, classify(models.EntityRetention, "list retentions", err)
	}
	defer rows.Close()

	retentions := make([]*models.Retention, 0)
	for rows.Next() {
		r, err := scanRetention(rows)
		if err != nil {
			return nil, classify(models.EntityRetention, "scan retention", err)
		}
		retentions = append(retentions, r)
	}
	if err := rows.Err(); err != nil {
		return nil, classify(models.EntityRetention, "list retentions", err)
	}
	return retentions, nil
}

// InsertRetention inserts r and sets its id
func (t *Tx) InsertRetention(ctx context.Context, r *models.Retention) error {
	query := `
		INSERT INTO retentions (
			transaction_id, month, gross_amount, retention_pct,
			origin_retention, net_amount, recorded_at
		) VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	result, err := t.exec(ctx, query,
		r.TransactionID,
		monthArg(r.Month),
		r.GrossAmount,
		r.RetentionPct,
		r.OriginRetention,
		r.NetAmount,
		timestampArg(r.RecordedAt),
	)
	if err != nil {
		return classify(models.EntityRetention, "insert retention", err)
	}
	return setID(result, &r.ID, models.EntityRetention)
}

// UpdateRetention writes every mutable column of r
func (t *Tx) UpdateRetention(ctx context.Context, r *models.Retention) error {
	query := `
		UPDATE retentions SET
			transaction_id = ?,
			month = ?,
			gross_amount = ?,
			retention_pct = ?,
			origin_retention = ?,
			net_amount = ?
		WHERE id = ?
	`

	_, err := t.exec(ctx, query,
		r.TransactionID,
		monthArg(r.Month),
		r.GrossAmount,
		r.RetentionPct,
		r.OriginRetention,
		r.NetAmount,
		r.ID,
	)
	if err != nil {
		return classify(models.EntityRetention, "update retention", err)
	}
	return nil
}

// DeleteRetention removes the retention with id
func (t *Tx) DeleteRetention(ctx context.Context, id int64) error {
	result, err := t.exec(ctx, `DELETE FROM retentions WHERE id = ?`, id)
	if err != nil {
		return classifyDelete(models.EntityRetention, "delete retention", err)
	}
	return requireAffected(result, models.EntityRetention, id)
}

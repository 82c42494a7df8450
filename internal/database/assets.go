package database

import (
	"context"
	"database/sql"

	"github.com/Membrive92/TrackingFinance/pkg/models"
)

const assetColumns = `id, ticker, asset_type, current_price, currency, created_at`

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanAsset(row rowScanner) (*models.Asset, error) {
	a := &models.Asset{}
	err := row.Scan(
		&a.ID,
		&a.Ticker,
		&a.AssetType,
		&a.CurrentPrice,
		&a.Currency,
		timestampScanner{&a.CreatedAt},
	)
	return a, err
}

// GetAsset retrieves a single asset by id
func (t *Tx) GetAsset(ctx context.Context, id int64) (*models.Asset, error) {
	query := `SELECT ` + assetColumns + ` FROM assets WHERE id = ?`

	a, err := scanAsset(t.queryRow(ctx, query, id))
	if err != nil {
		return nil, notFoundOr(models.EntityAsset, id, "get asset", err)
	}
	return a, nil
}

// ListAssets retrieves every asset ordered by id
func (t *Tx) ListAssets(ctx context.Context) ([]*models.Asset, error) {
	query := `SELECT ` + assetColumns + ` FROM assets ORDER BY id`

	rows, err := t.query(ctx, query)
	if err != nil {
		return nil, classify(models.EntityAsset, "list assets", err)
	}
	defer rows.Close()

	assets := make([]*models.Asset, 0)
	for rows.Next() {
		a, err := scanAsset(rows)
		if err != nil {
			return nil, classify(models.EntityAsset, "scan asset", err)
		}
		assets = append(assets, a)
	}
	if err := rows.Err(); err != nil {
		return nil, classify(models.EntityAsset, "list assets", err)
	}
	return assets, nil
}

// InsertAsset inserts a and sets its id
func (t *Tx) InsertAsset(ctx context.Context, a *models.Asset) error {
	query := `
		INSERT INTO assets (ticker, asset_type, current_price, currency, created_at)
		VALUES (?, ?, ?, ?, ?)
	`

	result, err := t.exec(ctx, query,
		a.Ticker,
		string(a.AssetType),
		a.CurrentPrice,
		string(a.Currency),
		timestampArg(a.CreatedAt),
	)
	if err != nil {
		return classify(models.EntityAsset, "insert asset", err)
	}
	return setID(result, &a.ID, models.EntityAsset)
}

// UpdateAsset writes every mutable column of a. created_at is never touched.
func (t *Tx) UpdateAsset(ctx context.Context, a *models.Asset) error {
	query := `
		UPDATE assets SET
			ticker = ?,
			asset_type = ?,
			current_price = ?,
			currency = ?
		WHERE id = ?
	`

	_, err := t.exec(ctx, query,
		a.Ticker,
		string(a.AssetType),
		a.CurrentPrice,
		string(a.Currency),
		a.ID,
	)
	if err != nil {
		return classify(models.EntityAsset, "update asset", err)
	}
	return nil
}

// DeleteAsset removes the asset with id
func (t *Tx) DeleteAsset(ctx context.Context, id int64) error {
	result, err := t.exec(ctx, `DELETE FROM assets WHERE id = ?`, id)
	if err != nil {
		return classifyDelete(models.EntityAsset, "delete asset", err)
	}
	return requireAffected(result, models.EntityAsset, id)
}

// CountTransactionsForAsset counts the transactions referencing asset id
func (t *Tx) CountTransactionsForAsset(ctx context.Context, id int64) (int64, error) {
	return t.count(ctx, "count transactions", `SELECT COUNT(*) FROM transactions WHERE asset_id = ?`, id)
}

func setID(result sql.Result, dst *int64, entity string) error {
	id, err := result.LastInsertId()
	if err != nil {
		return classify(entity, "last insert id", err)
	}
	*dst = id
	return nil
}

func requireAffected(result sql.Result, entity string, key interface{}) error {
	n, err := result.RowsAffected()
	if err != nil {
		return classify(entity, "rows affected", err)
	}
	if n == 0 {
		return models.NewNotFound(entity, key)
	}
	return nil
}

package database

import (
	"context"

	"github.com/Membrive92/TrackingFinance/pkg/models"
)

func scanConfiguration(row rowScanner) (*models.Configuration, error) {
	c := &models.Configuration{}
	err := row.Scan(&c.Key, &c.Value)
	return c, err
}

// GetConfiguration retrieves a setting by key
func (t *Tx) GetConfiguration(ctx context.Context, key string) (*models.Configuration, error) {
	query := "SELECT `key`, `value` FROM configurations WHERE `key` = ?"

	c, err := scanConfiguration(t.queryRow(ctx, query, key))
	if err != nil {
		return nil, notFoundOr(models.EntityConfiguration, key, "get configuration", err)
	}
	return c, nil
}

// ListConfigurations retrieves every setting ordered by key
func (t *Tx) ListConfigurations(ctx context.Context) ([]*models.Configuration, error) {
	rows, err := t.query(ctx, "SELECT `key`, `value` FROM configurations ORDER BY `key`")
	if err != nil {
		return nil, classify(models.EntityConfiguration, "list configurations", err)
	}
	defer rows.Close()

	configs := make([]*models.Configuration, 0)
	for rows.Next() {
		c, err := scanConfiguration(rows)
		if err != nil {
			return nil, classify(models.EntityConfiguration, "scan configuration", err)
		}
		configs = append(configs, c)
	}
	if err := rows.Err(); err != nil {
		return nil, classify(models.EntityConfiguration, "list configurations", err)
	}
	return configs, nil
}

// InsertConfiguration inserts c. A taken key is a ConflictError.
func (t *Tx) InsertConfiguration(ctx context.Context, c *models.Configuration) error {
	_, err := t.exec(ctx, "INSERT INTO configurations (`key`, `value`) VALUES (?, ?)", c.Key, c.Value)
	if err != nil {
		return classify(models.EntityConfiguration, "insert configuration", err)
	}
	return nil
}

// UpdateConfiguration overwrites the value of c.Key
func (t *Tx) UpdateConfiguration(ctx context.Context, c *models.Configuration) error {
	_, err := t.exec(ctx, "UPDATE configurations SET `value` = ? WHERE `key` = ?", c.Value, c.Key)
	if err != nil {
		return classify(models.EntityConfiguration, "update configuration", err)
	}
	return nil
}

// DeleteConfiguration removes the setting with key
func (t *Tx) DeleteConfiguration(ctx context.Context, key string) error {
	result, err := t.exec(ctx, "DELETE FROM configurations WHERE `key` = ?", key)
	if err != nil {
		return classifyDelete(models.EntityConfiguration, "delete configuration", err)
	}
	return requireAffected(result, models.EntityConfiguration, key)
}

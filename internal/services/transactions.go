package services

import (
	"context"

	"github.com/Membrive92/TrackingFinance/internal/cache"
	"github.com/Membrive92/TrackingFinance/internal/database"
	"github.com/Membrive92/TrackingFinance/pkg/models"
)

// TransactionService implements the transaction operations.
type TransactionService struct {
	base
}

// List returns the transactions matching filter ordered by id.
func (s *TransactionService) List(ctx context.Context, filter models.TransactionFilter) ([]models.TransactionRead, error) {
	var out []models.TransactionRead
	err := s.store.InTx(ctx, func(tx *database.Tx) error {
		transactions, err := tx.ListTransactions(ctx, filter)
		if err != nil {
			return err
		}
		out = make([]models.TransactionRead, 0, len(transactions))
		for _, t := range transactions {
			out = append(out, t.Read())
		}
		return nil
	})
	return out, err
}

// Get returns one transaction.
func (s *TransactionService) Get(ctx context.Context, id int64) (models.TransactionRead, error) {
	key := cache.Key(models.EntityTransaction, id)

	var out models.TransactionRead
	gen, hit := s.cached(ctx, key, &out)
	if hit {
		return out, nil
	}

	err := s.store.InTx(ctx, func(tx *database.Tx) error {
		t, err := tx.GetTransaction(ctx, id)
		if err != nil {
			return err
		}
		out = t.Read()
		return nil
	})
	if err != nil {
		return models.TransactionRead{}, err
	}

	s.remember(ctx, key, out, gen)
	return out, nil
}

// Create validates in, checks the asset exists, inserts and returns the row.
func (s *TransactionService) Create(ctx context.Context, in models.TransactionCreate) (models.TransactionRead, error) {
	if err := in.Validate(); err != nil {
		return models.TransactionRead{}, err
	}
	t := in.New(s.now())
	if err := t.Validate(); err != nil {
		return models.TransactionRead{}, err
	}

	var out models.TransactionRead
	err := s.store.InTx(ctx, func(tx *database.Tx) error {
		if _, err := tx.GetAsset(ctx, t.AssetID); err != nil {
			return missingReference(err, "asset_id", models.EntityAsset, t.AssetID)
		}
		if err := tx.InsertTransaction(ctx, t); err != nil {
			return missingReference(err, "asset_id", models.EntityAsset, t.AssetID)
		}
		stored, err := tx.GetTransaction(ctx, t.ID)
		if err != nil {
			return err
		}
		out = stored.Read()
		return nil
	})
	if err != nil {
		return models.TransactionRead{}, err
	}

	s.committed(ctx, models.EntityTransaction, models.ActionCreated, out.ID, out)
	return out, nil
}

// Update merges in onto the transaction with id.
func (s *TransactionService) Update(ctx context.Context, id int64, in models.TransactionUpdate) (models.TransactionRead, error) {
	var out models.TransactionRead
	err := s.store.InTx(ctx, func(tx *database.Tx) error {
		t, err := tx.GetTransaction(ctx, id)
		if err != nil {
			return err
		}
		if err := in.Validate(); err != nil {
			return err
		}
		previousAsset := t.AssetID
		in.ApplyTo(t)
		if err := t.Validate(); err != nil {
			return err
		}
		if t.AssetID != previousAsset {
			if _, err := tx.GetAsset(ctx, t.AssetID); err != nil {
				return missingReference(err, "asset_id", models.EntityAsset, t.AssetID)
			}
		}
		if err := tx.UpdateTransaction(ctx, t); err != nil {
			return missingReference(err, "asset_id", models.EntityAsset, t.AssetID)
		}
		stored, err := tx.GetTransaction(ctx, id)
		if err != nil {
			return err
		}
		out = stored.Read()
		return nil
	})
	if err != nil {
		return models.TransactionRead{}, err
	}

	s.committed(ctx, models.EntityTransaction, models.ActionUpdated, id, out)
	return out, nil
}

// Delete removes the transaction with id. Transactions with retentions are kept.
func (s *TransactionService) Delete(ctx context.Context, id int64) error {
	err := s.store.InTx(ctx, func(tx *database.Tx) error {
		if _, err := tx.GetTransaction(ctx, id); err != nil {
			return err
		}
		n, err := tx.CountRetentionsForTransaction(ctx, id)
		if err != nil {
			return err
		}
		if n > 0 {
			return inUse(models.EntityTransaction, "retentions", n)
		}
		return tx.DeleteTransaction(ctx, id)
	})
	if err != nil {
		return err
	}

	s.committed(ctx, models.EntityTransaction, models.ActionDeleted, id, nil)
	return nil
}

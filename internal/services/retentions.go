package services

import (
	"context"

	"github.com/Membrive92/TrackingFinance/internal/cache"
	"github.com/Membrive92/TrackingFinance/internal/database"
	"github.com/Membrive92/TrackingFinance/pkg/models"
)

// RetentionService implements the retention operations.
type RetentionService struct {
	base
}

// List returns the retentions matching filter ordered by id.
func (s *RetentionService) List(ctx context.Context, filter models.RetentionFilter) ([]models.RetentionRead, error) {
	var out []models.RetentionRead
	err := s.store.InTx(ctx, func(tx *database.Tx) error {
		retentions, err := tx.ListRetentions(ctx, filter)
		if err != nil {
			return err
		}
		out = make([]models.RetentionRead, 0, len(retentions))
		for _, r := range retentions {
			out = append(out, r.Read())
		}
		return nil
	})
	return out, err
}

// Get returns one retention.
func (s *RetentionService) Get(ctx context.Context, id int64) (models.RetentionRead, error) {
	key := cache.Key(models.EntityRetention, id)

	var out models.RetentionRead
	gen, hit := s.cached(ctx, key, &out)
	if hit {
		return out, nil
	}

	err := s.store.InTx(ctx, func(tx *database.Tx) error {
		r, err := tx.GetRetention(ctx, id)
		if err != nil {
			return err
		}
		out = r.Read()
		return nil
	})
	if err != nil {
		return models.RetentionRead{}, err
	}

	s.remember(ctx, key, out, gen)
	return out, nil
}

// Create validates in, including the amount arithmetic, and inserts it.
func (s *RetentionService) Create(ctx context.Context, in models.RetentionCreate) (models.RetentionRead, error) {
	if err := in.Validate(); err != nil {
		return models.RetentionRead{}, err
	}
	r := in.New(s.now())

	var out models.RetentionRead
	err := s.store.InTx(ctx, func(tx *database.Tx) error {
		if _, err := tx.GetTransaction(ctx, r.TransactionID); err != nil {
			return missingReference(err, "transaction_id", models.EntityTransaction, r.TransactionID)
		}
		if err := tx.InsertRetention(ctx, r); err != nil {
			return missingReference(err, "transaction_id", models.EntityTransaction, r.TransactionID)
		}
		stored, err := tx.GetRetention(ctx, r.ID)
		if err != nil {
			return err
		}
		out = stored.Read()
		return nil
	})
	if err != nil {
		return models.RetentionRead{}, err
	}

	s.committed(ctx, models.EntityRetention, models.ActionCreated, out.ID, out)
	return out, nil
}

// Update merges in onto the retention with id. The merged row must still
// satisfy the amount arithmetic.
func (s *RetentionService) Update(ctx context.Context, id int64, in models.RetentionUpdate) (models.RetentionRead, error) {
	var out models.RetentionRead
	err := s.store.InTx(ctx, func(tx *database.Tx) error {
		r, err := tx.GetRetention(ctx, id)
		if err != nil {
			return err
		}
		if err := in.Validate(); err != nil {
			return err
		}
		previousTransaction := r.TransactionID
		in.ApplyTo(r)
		if err := r.Validate(); err != nil {
			return err
		}
		if r.TransactionID != previousTransaction {
			if _, err := tx.GetTransaction(ctx, r.TransactionID); err != nil {
				return missingReference(err, "transaction_id", models.EntityTransaction, r.TransactionID)
			}
		}
		if err := tx.UpdateRetention(ctx, r); err != nil {
			return missingReference(err, "transaction_id", models.EntityTransaction, r.TransactionID)
		}
		stored, err := tx.GetRetention(ctx, id)
		if err != nil {
			return err
		}
		out = stored.Read()
		return nil
	})
	if err != nil {
		return models.RetentionRead{}, err
	}

	s.committed(ctx, models.EntityRetention, models.ActionUpdated, id, out)
	return out, nil
}

// Delete removes the retention with id.
func (s *RetentionService) Delete(ctx context.Context, id int64) error {
	err := s.store.InTx(ctx, func(tx *database.Tx) error {
		return tx.DeleteRetention(ctx, id)
	})
	if err != nil {
		return err
	}

	s.committed(ctx, models.EntityRetention, models.ActionDeleted, id, nil)
	return nil
}

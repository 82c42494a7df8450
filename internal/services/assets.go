package services

import (
	"context"

	"github.com/Membrive92/TrackingFinance/internal/cache"
	"github.com/Membrive92/TrackingFinance/internal/database"
	"github.com/Membrive92/TrackingFinance/pkg/models"
)

// AssetService implements the asset operations.
type AssetService struct {
	base
}

// List returns every asset ordered by id.
func (s *AssetService) List(ctx context.Context) ([]models.AssetRead, error) {
	var out []models.AssetRead
	err := s.store.InTx(ctx, func(tx *database.Tx) error {
		assets, err := tx.ListAssets(ctx)
		if err != nil {
			return err
		}
		out = make([]models.AssetRead, 0, len(assets))
		for _, a := range assets {
			out = append(out, a.Read())
		}
		return nil
	})
	return out, err
}

// Get returns one asset.
func (s *AssetService) Get(ctx context.Context, id int64) (models.AssetRead, error) {
	key := cache.Key(models.EntityAsset, id)

	var out models.AssetRead
	gen, hit := s.cached(ctx, key, &out)
	if hit {
		return out, nil
	}

	err := s.store.InTx(ctx, func(tx *database.Tx) error {
		a, err := tx.GetAsset(ctx, id)
		if err != nil {
			return err
		}
		out = a.Read()
		return nil
	})
	if err != nil {
		return models.AssetRead{}, err
	}

	s.remember(ctx, key, out, gen)
	return out, nil
}

// Create validates in, inserts it and returns the stored row.
func (s *AssetService) Create(ctx context.Context, in models.AssetCreate) (models.AssetRead, error) {
	if err := in.Validate(); err != nil {
		return models.AssetRead{}, err
	}
	a := in.New(s.now())
	if err := a.Validate(); err != nil {
		return models.AssetRead{}, err
	}

	var out models.AssetRead
	err := s.store.InTx(ctx, func(tx *database.Tx) error {
		if err := tx.InsertAsset(ctx, a); err != nil {
			return err
		}
		stored, err := tx.GetAsset(ctx, a.ID)
		if err != nil {
			return err
		}
		out = stored.Read()
		return nil
	})
	if err != nil {
		return models.AssetRead{}, err
	}

	s.logger.WithField("id", out.ID).Info("Asset created")
	s.committed(ctx, models.EntityAsset, models.ActionCreated, out.ID, out)
	return out, nil
}

// Update merges in onto the asset with id.
func (s *AssetService) Update(ctx context.Context, id int64, in models.AssetUpdate) (models.AssetRead, error) {
	var out models.AssetRead
	err := s.store.InTx(ctx, func(tx *database.Tx) error {
		a, err := tx.GetAsset(ctx, id)
		if err != nil {
			return err
		}
		if err := in.Validate(); err != nil {
			return err
		}
		in.ApplyTo(a)
		if err := a.Validate(); err != nil {
			return err
		}
		if err := tx.UpdateAsset(ctx, a); err != nil {
			return err
		}
		stored, err := tx.GetAsset(ctx, id)
		if err != nil {
			return err
		}
		out = stored.Read()
		return nil
	})
	if err != nil {
		return models.AssetRead{}, err
	}

	s.committed(ctx, models.EntityAsset, models.ActionUpdated, id, out)
	return out, nil
}

// Delete removes the asset with id. Assets with transactions are kept.
func (s *AssetService) Delete(ctx context.Context, id int64) error {
	err := s.store.InTx(ctx, func(tx *database.Tx) error {
		if _, err := tx.GetAsset(ctx, id); err != nil {
			return err
		}
		n, err := tx.CountTransactionsForAsset(ctx, id)
		if err != nil {
			return err
		}
		if n > 0 {
			return inUse(models.EntityAsset, "transactions", n)
		}
		return tx.DeleteAsset(ctx, id)
	})
	if err != nil {
		return err
	}

	s.logger.WithField("id", id).Info("Asset deleted")
	s.committed(ctx, models.EntityAsset, models.ActionDeleted, id, nil)
	return nil
}

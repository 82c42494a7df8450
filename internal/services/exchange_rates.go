package services

import (
	"context"
	"strings"

	"github.com/Membrive92/TrackingFinance/internal/cache"
	"github.com/Membrive92/TrackingFinance/internal/database"
	"github.com/Membrive92/TrackingFinance/pkg/models"
)

// ExchangeRateService implements the exchange-rate operations. Rates are
// recorded as given; nothing converts amounts with them.
type ExchangeRateService struct {
	base
}

// List returns the rates matching filter ordered by id.
func (s *ExchangeRateService) List(ctx context.Context, filter models.ExchangeRateFilter) ([]models.ExchangeRateRead, error) {
	filter.From = strings.ToUpper(strings.TrimSpace(filter.From))
	filter.To = strings.ToUpper(strings.TrimSpace(filter.To))

	var out []models.ExchangeRateRead
	err := s.store.InTx(ctx, func(tx *database.Tx) error {
		rates, err := tx.ListExchangeRates(ctx, filter)
		if err != nil {
			return err
		}
		out = make([]models.ExchangeRateRead, 0, len(rates))
		for _, e := range rates {
			out = append(out, e.Read())
		}
		return nil
	})
	return out, err
}

// Get returns one rate.
func (s *ExchangeRateService) Get(ctx context.Context, id int64) (models.ExchangeRateRead, error) {
	key := cache.Key(models.EntityExchangeRate, id)

	var out models.ExchangeRateRead
	gen, hit := s.cached(ctx, key, &out)
	if hit {
		return out, nil
	}

	err := s.store.InTx(ctx, func(tx *database.Tx) error {
		e, err := tx.GetExchangeRate(ctx, id)
		if err != nil {
			return err
		}
		out = e.Read()
		return nil
	})
	if err != nil {
		return models.ExchangeRateRead{}, err
	}

	s.remember(ctx, key, out, gen)
	return out, nil
}

// Create validates in and inserts it. A second rate for the same pair and
// date is a ConflictError.
func (s *ExchangeRateService) Create(ctx context.Context, in models.ExchangeRateCreate) (models.ExchangeRateRead, error) {
	if err := in.Validate(); err != nil {
		return models.ExchangeRateRead{}, err
	}
	e := in.New(s.now())

	var out models.ExchangeRateRead
	err := s.store.InTx(ctx, func(tx *database.Tx) error {
		if err := tx.InsertExchangeRate(ctx, e); err != nil {
			return err
		}
		stored, err := tx.GetExchangeRate(ctx, e.ID)
		if err != nil {
			return err
		}
		out = stored.Read()
		return nil
	})
	if err != nil {
		return models.ExchangeRateRead{}, err
	}

	s.committed(ctx, models.EntityExchangeRate, models.ActionCreated, out.ID, out)
	return out, nil
}

// Update merges in onto the rate with id.
func (s *ExchangeRateService) Update(ctx context.Context, id int64, in models.ExchangeRateUpdate) (models.ExchangeRateRead, error) {
	var out models.ExchangeRateRead
	err := s.store.InTx(ctx, func(tx *database.Tx) error {
		e, err := tx.GetExchangeRate(ctx, id)
		if err != nil {
			return err
		}
		if err := in.Validate(); err != nil {
			return err
		}
		in.ApplyTo(e)
		if err := e.Validate(); err != nil {
			return err
		}
		if err := tx.UpdateExchangeRate(ctx, e); err != nil {
			return err
		}
		stored, err := tx.GetExchangeRate(ctx, id)
		if err != nil {
			return err
		}
		out = stored.Read()
		return nil
	})
	if err != nil {
		return models.ExchangeRateRead{}, err
	}

	s.committed(ctx, models.EntityExchangeRate, models.ActionUpdated, id, out)
	return out, nil
}

// Delete removes the rate with id.
func (s *ExchangeRateService) Delete(ctx context.Context, id int64) error {
	err := s.store.InTx(ctx, func(tx *database.Tx) error {
		return tx.DeleteExchangeRate(ctx, id)
	})
	if err != nil {
		return err
	}

	s.committed(ctx, models.EntityExchangeRate, models.ActionDeleted, id, nil)
	return nil
}

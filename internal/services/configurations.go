package services

import (
	"context"
	"strings"

	"github.com/Membrive92/TrackingFinance/internal/cache"
	"github.com/Membrive92/TrackingFinance/internal/database"
	"github.com/Membrive92/TrackingFinance/pkg/models"
)

// ConfigurationService implements the key/value settings operations.
type ConfigurationService struct {
	base
}

// List returns every setting ordered by key.
func (s *ConfigurationService) List(ctx context.Context) ([]models.ConfigurationRead, error) {
	var out []models.ConfigurationRead
	err := s.store.InTx(ctx, func(tx *database.Tx) error {
		configs, err := tx.ListConfigurations(ctx)
		if err != nil {
			return err
		}
		out = make([]models.ConfigurationRead, 0, len(configs))
		for _, c := range configs {
			out = append(out, c.Read())
		}
		return nil
	})
	return out, err
}

// Get returns the setting stored under key.
func (s *ConfigurationService) Get(ctx context.Context, key string) (models.ConfigurationRead, error) {
	key = strings.TrimSpace(key)
	cacheKey := cache.Key(models.EntityConfiguration, key)

	var out models.ConfigurationRead
	gen, hit := s.cached(ctx, cacheKey, &out)
	if hit {
		return out, nil
	}

	err := s.store.InTx(ctx, func(tx *database.Tx) error {
		c, err := tx.GetConfiguration(ctx, key)
		if err != nil {
			return err
		}
		out = c.Read()
		return nil
	})
	if err != nil {
		return models.ConfigurationRead{}, err
	}

	s.remember(ctx, cacheKey, out, gen)
	return out, nil
}

// Create stores a new setting. A taken key is a ConflictError.
func (s *ConfigurationService) Create(ctx context.Context, in models.ConfigurationCreate) (models.ConfigurationRead, error) {
	if err := in.Validate(); err != nil {
		return models.ConfigurationRead{}, err
	}
	c := in.New()

	var out models.ConfigurationRead
	err := s.store.InTx(ctx, func(tx *database.Tx) error {
		if err := tx.InsertConfiguration(ctx, c); err != nil {
			return err
		}
		stored, err := tx.GetConfiguration(ctx, c.Key)
		if err != nil {
			return err
		}
		out = stored.Read()
		return nil
	})
	if err != nil {
		return models.ConfigurationRead{}, err
	}

	s.committed(ctx, models.EntityConfiguration, models.ActionCreated, out.Key, out)
	return out, nil
}

// Update changes the value stored under key.
func (s *ConfigurationService) Update(ctx context.Context, key string, in models.ConfigurationUpdate) (models.ConfigurationRead, error) {
	key = strings.TrimSpace(key)

	var out models.ConfigurationRead
	err := s.store.InTx(ctx, func(tx *database.Tx) error {
		c, err := tx.GetConfiguration(ctx, key)
		if err != nil {
			return err
		}
		if err := in.Validate(); err != nil {
			return err
		}
		in.ApplyTo(c)
		if err := tx.UpdateConfiguration(ctx, c); err != nil {
			return err
		}
		stored, err := tx.GetConfiguration(ctx, key)
		if err != nil {
			return err
		}
		out = stored.Read()
		return nil
	})
	if err != nil {
		return models.ConfigurationRead{}, err
	}

	s.committed(ctx, models.EntityConfiguration, models.ActionUpdated, key, out)
	return out, nil
}

// Set creates the setting or overwrites its value.
func (s *ConfigurationService) Set(ctx context.Context, key, value string) (models.ConfigurationRead, error) {
	in := models.ConfigurationCreate{Key: key, Value: value}
	if err := in.Validate(); err != nil {
		return models.ConfigurationRead{}, err
	}
	c := in.New()

	action := models.ActionUpdated
	var out models.ConfigurationRead
	err := s.store.InTx(ctx, func(tx *database.Tx) error {
		_, err := tx.GetConfiguration(ctx, c.Key)
		switch {
		case models.IsNotFound(err):
			action = models.ActionCreated
			err = tx.InsertConfiguration(ctx, c)
		case err == nil:
			err = tx.UpdateConfiguration(ctx, c)
		}
		if err != nil {
			return err
		}
		out = c.Read()
		return nil
	})
	if err != nil {
		return models.ConfigurationRead{}, err
	}

	s.committed(ctx, models.EntityConfiguration, action, c.Key, out)
	return out, nil
}

// Delete removes the setting stored under key.
func (s *ConfigurationService) Delete(ctx context.Context, key string) error {
	key = strings.TrimSpace(key)

	err := s.store.InTx(ctx, func(tx *database.Tx) error {
		return tx.DeleteConfiguration(ctx, key)
	})
	if err != nil {
		return err
	}

	s.committed(ctx, models.EntityConfiguration, models.ActionDeleted, key, nil)
	return nil
}

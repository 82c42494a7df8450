package services

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/Membrive92/TrackingFinance/internal/cache"
	"github.com/Membrive92/TrackingFinance/internal/database"
	"github.com/Membrive92/TrackingFinance/internal/messaging"
	"github.com/Membrive92/TrackingFinance/pkg/models"
	"github.com/sirupsen/logrus"
)

// Deps are the collaborators shared by every service.
type Deps struct {
	Store     *database.Store
	Cache     cache.Cache
	Publisher messaging.Publisher
	Logger    *logrus.Logger

	// Now defaults to time.Now.
	Now func() time.Time
}

// Services bundles the CRUD service of every entity.
type Services struct {
	Assets         *AssetService
	Transactions   *TransactionService
	Retentions     *RetentionService
	ExchangeRates  *ExchangeRateService
	Configurations *ConfigurationService
}

// New wires every service to deps.
func New(deps Deps) *Services {
	writes := new(atomic.Uint64)
	return &Services{
		Assets:         &AssetService{base: newBase(deps, writes, "assets")},
		Transactions:   &TransactionService{base: newBase(deps, writes, "transactions")},
		Retentions:     &RetentionService{base: newBase(deps, writes, "retentions")},
		ExchangeRates:  &ExchangeRateService{base: newBase(deps, writes, "exchange_rates")},
		Configurations: &ConfigurationService{base: newBase(deps, writes, "configurations")},
	}
}

type base struct {
	store  *database.Store
	cache  cache.Cache
	events messaging.Publisher
	logger *logrus.Entry
	now    func() time.Time

	// writes counts committed writes across all services. A Get only fills
	// the cache when no write committed while it was reading.
	writes *atomic.Uint64
}

func newBase(deps Deps, writes *atomic.Uint64, component string) base {
	b := base{
		store:  deps.Store,
		cache:  deps.Cache,
		events: deps.Publisher,
		logger: deps.Logger.WithField("component", "service."+component),
		now:    deps.Now,
		writes: writes,
	}
	if b.cache == nil {
		b.cache = cache.NopCache{}
	}
	if b.events == nil {
		b.events = messaging.NopPublisher{}
	}
	if b.now == nil {
		b.now = time.Now
	}
	return b
}

// cached loads a snapshot from the cache. Failures count as misses. gen is
// the write generation observed before the lookup; pass it to remember.
func (b *base) cached(ctx context.Context, key string, dest interface{}) (gen uint64, hit bool) {
	gen = b.writes.Load()
	found, err := b.cache.GetJSON(ctx, key, dest)
	if err != nil {
		b.logger.WithError(err).WithField("key", key).Warn("Cache read failed")
		return gen, false
	}
	return gen, found
}

// remember stores a snapshot read at generation gen. A write that committed
// since then may already have invalidated the key, so the fill is skipped,
// or undone when the write lands between the check and the set.
func (b *base) remember(ctx context.Context, key string, value interface{}, gen uint64) {
	if b.writes.Load() != gen {
		return
	}
	if err := b.cache.SetJSON(ctx, key, value); err != nil {
		b.logger.WithError(err).WithField("key", key).Warn("Cache write failed")
		return
	}
	if b.writes.Load() != gen {
		b.forget(ctx, key)
	}
}

func (b *base) forget(ctx context.Context, key string) {
	if err := b.cache.Delete(ctx, key); err != nil {
		b.logger.WithError(err).WithField("key", key).Warn("Cache invalidation failed")
	}
}

// committed runs the side effects of a write that has already been committed:
// the cached snapshot is dropped and a change event is published. Neither can
// fail the request.
func (b *base) committed(ctx context.Context, entity, action string, key interface{}, data interface{}) {
	ctx = context.WithoutCancel(ctx)

	b.writes.Add(1)
	b.forget(ctx, cache.Key(entity, key))

	event := &models.ChangeEvent{
		Entity:     entity,
		Action:     action,
		Key:        fmt.Sprint(key),
		Data:       data,
		OccurredAt: b.now().UTC(),
	}
	if err := b.events.Publish(ctx, event); err != nil {
		b.logger.WithError(err).WithFields(logrus.Fields{
			"entity": entity,
			"action": action,
			"key":    event.Key,
		}).Warn("Failed to publish change event")
	}
}

// missingReference turns a lookup of a referenced row into the validation
// error reported to the client. Other errors pass through.
func missingReference(err error, field, entity string, id int64) error {
	if models.IsNotFound(err) {
		return models.NewValidationError(field, "%s %d does not exist", entity, id)
	}
	var ce *models.ConflictError
	if errors.As(err, &ce) && ce.Reason == models.ConflictMissingParent {
		return models.NewValidationError(field, "%s %d does not exist", entity, id)
	}
	return err
}

func inUse(entity, dependents string, n int64) error {
	return &models.ConflictError{
		Entity: entity,
		Reason: fmt.Sprintf("%s (%d %s)", models.ConflictInUse, n, dependents),
	}
}

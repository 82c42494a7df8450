package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"cloud.google.com/go/civil"
	"github.com/Membrive92/TrackingFinance/internal/cache"
	"github.com/Membrive92/TrackingFinance/internal/database/dbtest"
	"github.com/Membrive92/TrackingFinance/pkg/models"
)

var fixedNow = time.Date(2024, 5, 1, 10, 30, 0, 0, time.UTC)

type recordingPublisher struct {
	mu     sync.Mutex
	events []models.ChangeEvent
}

func (p *recordingPublisher) Publish(_ context.Context, event *models.ChangeEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, *event)
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

func (p *recordingPublisher) actions() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.Entity+"."+e.Action)
	}
	return out
}

type fixture struct {
	svc    *Services
	cache  *cache.MemoryCache
	events *recordingPublisher
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		cache:  cache.NewMemoryCache(time.Minute),
		events: &recordingPublisher{},
	}
	f.svc = New(Deps{
		Store:     dbtest.NewStore(t),
		Cache:     f.cache,
		Publisher: f.events,
		Logger:    dbtest.Logger(),
		Now:       func() time.Time { return fixedNow },
	})
	return f
}

func ptr[T any](v T) *T { return &v }

func (f *fixture) asset(t *testing.T, ticker string) models.AssetRead {
	t.Helper()
	a, err := f.svc.Assets.Create(context.Background(), models.AssetCreate{
		Ticker:       ticker,
		AssetType:    models.AssetTypeETF,
		CurrentPrice: ptr(12.5),
		Currency:     models.CurrencyUSD,
	})
	if err != nil {
		t.Fatalf("create asset: %v", err)
	}
	return a
}

func (f *fixture) transaction(t *testing.T, assetID int64) models.TransactionRead {
	t.Helper()
	tr, err := f.svc.Transactions.Create(context.Background(), models.TransactionCreate{
		AssetID:         assetID,
		Date:            civil.Date{Year: 2024, Month: time.March, Day: 15},
		TransactionType: models.TransactionDividend,
		Quantity:        ptr(10.0),
		UnitPrice:       ptr(0.5),
		Currency:        "usd",
	})
	if err != nil {
		t.Fatalf("create transaction: %v", err)
	}
	return tr
}

func TestAssetLifecycle(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	created := f.asset(t, "MSTY")
	if created.ID == 0 {
		t.Fatal("expected an assigned id")
	}
	if created.Currency != models.CurrencyUSD || !created.CreatedAt.Equal(fixedNow) {
		t.Fatalf("unexpected asset %+v", created)
	}

	got, err := f.svc.Assets.Get(ctx, created.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.ID != created.ID || got.Ticker != created.Ticker || got.AssetType != created.AssetType ||
		got.CurrentPrice != created.CurrentPrice || got.Currency != created.Currency || !got.CreatedAt.Equal(created.CreatedAt) {
		t.Fatalf("round trip mismatch:\n got %+v\nwant %+v", got, created)
	}

	updated, err := f.svc.Assets.Update(ctx, created.ID, models.AssetUpdate{CurrentPrice: ptr(13.0)})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.CurrentPrice != 13.0 || updated.Ticker != "MSTY" || updated.AssetType != models.AssetTypeETF {
		t.Fatalf("subset update changed the wrong fields: %+v", updated)
	}

	// The cached snapshot must not survive the update.
	got, err = f.svc.Assets.Get(ctx, created.ID)
	if err != nil {
		t.Fatalf("get after update: %v", err)
	}
	if got.CurrentPrice != 13.0 {
		t.Fatalf("stale read after update: %+v", got)
	}

	if err := f.svc.Assets.Delete(ctx, created.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := f.svc.Assets.Delete(ctx, created.ID); !models.IsNotFound(err) {
		t.Fatalf("second delete: expected NotFound, got %v", err)
	}
	if _, err := f.svc.Assets.Get(ctx, created.ID); !models.IsNotFound(err) {
		t.Fatalf("get after delete: expected NotFound, got %v", err)
	}

	want := []string{"Asset.created", "Asset.updated", "Asset.deleted"}
	got2 := f.events.actions()
	if len(got2) != len(want) {
		t.Fatalf("events = %v, want %v", got2, want)
	}
	for i := range want {
		if got2[i] != want[i] {
			t.Fatalf("events = %v, want %v", got2, want)
		}
	}
}

func TestAssetCreateDefaultsCurrency(t *testing.T) {
	f := newFixture(t)

	a, err := f.svc.Assets.Create(context.Background(), models.AssetCreate{
		Ticker:       "VWCE",
		AssetType:    models.AssetTypeETF,
		CurrentPrice: ptr(100.0),
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if a.Currency != models.DefaultCurrency {
		t.Fatalf("currency = %s, want %s", a.Currency, models.DefaultCurrency)
	}
}

func TestAssetCreateValidation(t *testing.T) {
	tests := []struct {
		name  string
		in    models.AssetCreate
		field string
	}{
		{"bad type", models.AssetCreate{Ticker: "X", AssetType: "BOND", CurrentPrice: ptr(1.0)}, "asset_type"},
		{"bad currency", models.AssetCreate{Ticker: "X", AssetType: models.AssetTypeStock, CurrentPrice: ptr(1.0), Currency: "GBP"}, "currency"},
		{"negative price", models.AssetCreate{Ticker: "X", AssetType: models.AssetTypeStock, CurrentPrice: ptr(-1.0)}, "current_price"},
		{"missing ticker", models.AssetCreate{AssetType: models.AssetTypeStock, CurrentPrice: ptr(1.0)}, "ticker"},
	}

	f := newFixture(t)
	ctx := context.Background()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.Assets.Create(ctx, tt.in)
			var ve *models.ValidationError
			if !errors.As(err, &ve) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			if ve.Fields[0].Field != tt.field {
				t.Fatalf("field = %s, want %s", ve.Fields[0].Field, tt.field)
			}
		})
	}

	list, err := f.svc.Assets.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 0 {
		t.Fatalf("rejected payloads reached the store: %+v", list)
	}
	if len(f.events.actions()) != 0 {
		t.Fatalf("rejected payloads published events: %v", f.events.actions())
	}
}

func TestMissingKeyIsNotFound(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	// An invalid payload on a missing row still reports NotFound.
	badType := models.AssetType("BOND")

	checks := map[string]error{
		"asset get":      second(f.svc.Assets.Get(ctx, 99)),
		"asset update":   second(f.svc.Assets.Update(ctx, 99, models.AssetUpdate{AssetType: &badType})),
		"asset delete":   f.svc.Assets.Delete(ctx, 99),
		"tx get":         second(f.svc.Transactions.Get(ctx, 99)),
		"tx update":      second(f.svc.Transactions.Update(ctx, 99, models.TransactionUpdate{})),
		"tx delete":      f.svc.Transactions.Delete(ctx, 99),
		"retention get":  second(f.svc.Retentions.Get(ctx, 99)),
		"retention del":  f.svc.Retentions.Delete(ctx, 99),
		"rate get":       second(f.svc.ExchangeRates.Get(ctx, 99)),
		"rate update":    second(f.svc.ExchangeRates.Update(ctx, 99, models.ExchangeRateUpdate{})),
		"rate delete":    f.svc.ExchangeRates.Delete(ctx, 99),
		"setting get":    second(f.svc.Configurations.Get(ctx, "missing")),
		"setting update": second(f.svc.Configurations.Update(ctx, "missing", models.ConfigurationUpdate{Value: ptr("x")})),
		"setting delete": f.svc.Configurations.Delete(ctx, "missing"),
	}
	for name, err := range checks {
		if !models.IsNotFound(err) {
			t.Errorf("%s: expected NotFound, got %v", name, err)
		}
	}
}

func second[T any](_ T, err error) error { return err }

func TestTransactionReferences(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Transactions.Create(ctx, models.TransactionCreate{
		AssetID:         42,
		Date:            civil.Date{Year: 2024, Month: time.January, Day: 2},
		TransactionType: models.TransactionBuy,
		Quantity:        ptr(1.0),
		UnitPrice:       ptr(1.0),
		Currency:        "EUR",
	})
	var ve *models.ValidationError
	if !errors.As(err, &ve) || ve.Fields[0].Field != "asset_id" {
		t.Fatalf("unknown asset: expected asset_id ValidationError, got %v", err)
	}

	asset := f.asset(t, "MSTY")
	tr := f.transaction(t, asset.ID)
	if tr.Currency != "USD" {
		t.Fatalf("currency not normalized: %q", tr.Currency)
	}

	_, err = f.svc.Transactions.Update(ctx, tr.ID, models.TransactionUpdate{AssetID: ptr(int64(777))})
	if !errors.As(err, &ve) || ve.Fields[0].Field != "asset_id" {
		t.Fatalf("move to unknown asset: expected asset_id ValidationError, got %v", err)
	}

	err = f.svc.Assets.Delete(ctx, asset.ID)
	var ce *models.ConflictError
	if !errors.As(err, &ce) {
		t.Fatalf("delete referenced asset: expected ConflictError, got %v", err)
	}

	if err := f.svc.Transactions.Delete(ctx, tr.ID); err != nil {
		t.Fatalf("delete transaction: %v", err)
	}
	if err := f.svc.Assets.Delete(ctx, asset.ID); err != nil {
		t.Fatalf("delete asset after its transactions: %v", err)
	}
}

func TestTransactionListFilter(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	a := f.asset(t, "AAA")
	b := f.asset(t, "BBB")
	f.transaction(t, a.ID)
	f.transaction(t, b.ID)
	f.transaction(t, a.ID)

	all, err := f.svc.Transactions.List(ctx, models.TransactionFilter{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("len(all) = %d, want 3", len(all))
	}

	onlyA, err := f.svc.Transactions.List(ctx, models.TransactionFilter{AssetID: a.ID})
	if err != nil {
		t.Fatalf("filtered list: %v", err)
	}
	if len(onlyA) != 2 || onlyA[0].ID >= onlyA[1].ID {
		t.Fatalf("filtered list = %+v", onlyA)
	}
}

func TestRetentionArithmetic(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	tr := f.transaction(t, f.asset(t, "MSTY").ID)

	month := models.Month{Year: 2024, Month: time.March}

	_, err := f.svc.Retentions.Create(ctx, models.RetentionCreate{
		TransactionID:   tr.ID,
		Month:           month,
		GrossAmount:     ptr(100.0),
		RetentionPct:    ptr(0.15),
		OriginRetention: ptr(20.0),
		NetAmount:       ptr(80.0),
	})
	if !models.IsValidation(err) {
		t.Fatalf("inconsistent amounts: expected ValidationError, got %v", err)
	}

	r, err := f.svc.Retentions.Create(ctx, models.RetentionCreate{
		TransactionID:   tr.ID,
		Month:           month,
		GrossAmount:     ptr(100.0),
		RetentionPct:    ptr(0.15),
		OriginRetention: ptr(15.0),
		NetAmount:       ptr(85.0),
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if r.Month != month {
		t.Fatalf("month = %v, want %v", r.Month, month)
	}

	// Changing gross alone breaks the relation with the stored amounts.
	if _, err := f.svc.Retentions.Update(ctx, r.ID, models.RetentionUpdate{GrossAmount: ptr(200.0)}); !models.IsValidation(err) {
		t.Fatalf("partial gross update: expected ValidationError, got %v", err)
	}

	updated, err := f.svc.Retentions.Update(ctx, r.ID, models.RetentionUpdate{
		GrossAmount:     ptr(200.0),
		OriginRetention: ptr(30.0),
		NetAmount:       ptr(170.0),
	})
	if err != nil {
		t.Fatalf("consistent update: %v", err)
	}
	if updated.GrossAmount != 200.0 || updated.RetentionPct != 0.15 {
		t.Fatalf("unexpected retention %+v", updated)
	}

	if err := f.svc.Transactions.Delete(ctx, tr.ID); !models.IsConflict(err) {
		t.Fatalf("delete transaction with retentions: expected ConflictError, got %v", err)
	}

	list, err := f.svc.Retentions.List(ctx, models.RetentionFilter{TransactionID: tr.ID})
	if err != nil || len(list) != 1 {
		t.Fatalf("list = %+v, %v", list, err)
	}
}

func TestRetentionUnknownTransaction(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Retentions.Create(context.Background(), models.RetentionCreate{
		TransactionID:   5,
		Month:           models.Month{Year: 2024, Month: time.April},
		GrossAmount:     ptr(10.0),
		RetentionPct:    ptr(0.0),
		OriginRetention: ptr(0.0),
		NetAmount:       ptr(10.0),
	})
	var ve *models.ValidationError
	if !errors.As(err, &ve) || ve.Fields[0].Field != "transaction_id" {
		t.Fatalf("expected transaction_id ValidationError, got %v", err)
	}
}

func TestExchangeRates(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	day := civil.Date{Year: 2024, Month: time.May, Day: 2}

	in := models.ExchangeRateCreate{FromCurrency: "usd", ToCurrency: "EUR", RateDate: day, Rate: ptr(0.93)}
	rate, err := f.svc.ExchangeRates.Create(ctx, in)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if rate.FromCurrency != "USD" || rate.RateDate != day {
		t.Fatalf("unexpected rate %+v", rate)
	}

	if _, err := f.svc.ExchangeRates.Create(ctx, in); !models.IsConflict(err) {
		t.Fatalf("duplicate pair and date: expected ConflictError, got %v", err)
	}

	same := models.ExchangeRateCreate{FromCurrency: "EUR", ToCurrency: "eur", RateDate: day, Rate: ptr(1.0)}
	if _, err := f.svc.ExchangeRates.Create(ctx, same); !models.IsValidation(err) {
		t.Fatalf("same currencies: expected ValidationError, got %v", err)
	}

	list, err := f.svc.ExchangeRates.List(ctx, models.ExchangeRateFilter{From: " usd "})
	if err != nil || len(list) != 1 {
		t.Fatalf("filtered list = %+v, %v", list, err)
	}
	list, err = f.svc.ExchangeRates.List(ctx, models.ExchangeRateFilter{To: "JPY"})
	if err != nil || len(list) != 0 {
		t.Fatalf("empty filter list = %+v, %v", list, err)
	}

	updated, err := f.svc.ExchangeRates.Update(ctx, rate.ID, models.ExchangeRateUpdate{Rate: ptr(0.95)})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Rate != 0.95 || updated.ToCurrency != "EUR" {
		t.Fatalf("unexpected update %+v", updated)
	}
}

func TestConfigurations(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	c, err := f.svc.Configurations.Create(ctx, models.ConfigurationCreate{Key: "base_currency", Value: "EUR"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := f.svc.Configurations.Create(ctx, models.ConfigurationCreate{Key: c.Key, Value: "USD"}); !models.IsConflict(err) {
		t.Fatalf("duplicate key: expected ConflictError, got %v", err)
	}

	if _, err := f.svc.Configurations.Get(ctx, c.Key); err != nil {
		t.Fatalf("get: %v", err)
	}
	updated, err := f.svc.Configurations.Update(ctx, c.Key, models.ConfigurationUpdate{Value: ptr("USD")})
	if err != nil || updated.Value != "USD" {
		t.Fatalf("update = %+v, %v", updated, err)
	}
	got, err := f.svc.Configurations.Get(ctx, c.Key)
	if err != nil || got.Value != "USD" {
		t.Fatalf("get after update = %+v, %v", got, err)
	}

	if _, err := f.svc.Configurations.Set(ctx, "theme", "dark"); err != nil {
		t.Fatalf("set new: %v", err)
	}
	if _, err := f.svc.Configurations.Set(ctx, "theme", "light"); err != nil {
		t.Fatalf("set existing: %v", err)
	}

	list, err := f.svc.Configurations.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 2 || list[0].Key != "base_currency" || list[1].Value != "light" {
		t.Fatalf("list = %+v", list)
	}

	if _, err := f.svc.Configurations.Create(ctx, models.ConfigurationCreate{Key: "  "}); !models.IsValidation(err) {
		t.Fatalf("blank key: expected ValidationError, got %v", err)
	}
}

func TestNilCollaboratorsDefault(t *testing.T) {
	svc := New(Deps{Store: dbtest.NewStore(t), Logger: dbtest.Logger()})

	a, err := svc.Assets.Create(context.Background(), models.AssetCreate{
		Ticker:       "BTC",
		AssetType:    models.AssetTypeCrypto,
		CurrentPrice: ptr(60000.0),
	})
	if err != nil {
		t.Fatalf("create without cache or publisher: %v", err)
	}
	if a.CreatedAt.IsZero() {
		t.Fatal("expected created_at from the default clock")
	}
}

// interleavingCache runs beforeSet once, between a Get's read and its cache
// fill, the way a concurrent write would.
type interleavingCache struct {
	*cache.MemoryCache
	beforeSet func()
}

func (c *interleavingCache) SetJSON(ctx context.Context, key string, value interface{}) error {
	if fn := c.beforeSet; fn != nil {
		c.beforeSet = nil
		fn()
	}
	return c.MemoryCache.SetJSON(ctx, key, value)
}

func TestGetDoesNotCacheSnapshotOverwrittenByUpdate(t *testing.T) {
	ctx := context.Background()
	mem := cache.NewMemoryCache(0)
	interleaved := &interleavingCache{MemoryCache: mem}
	svc := New(Deps{
		Store:  dbtest.NewStore(t),
		Cache:  interleaved,
		Logger: dbtest.Logger(),
		Now:    func() time.Time { return fixedNow },
	})

	a, err := svc.Assets.Create(ctx, models.AssetCreate{
		Ticker:       "MSTY",
		AssetType:    models.AssetTypeETF,
		CurrentPrice: ptr(12.5),
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	interleaved.beforeSet = func() {
		if _, err := svc.Assets.Update(ctx, a.ID, models.AssetUpdate{CurrentPrice: ptr(13.0)}); err != nil {
			t.Errorf("update: %v", err)
		}
	}

	got, err := svc.Assets.Get(ctx, a.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.CurrentPrice != 12.5 {
		t.Fatalf("first get read %v, want the value before the update", got.CurrentPrice)
	}

	var cached models.AssetRead
	if found, _ := mem.GetJSON(ctx, cache.Key(models.EntityAsset, a.ID), &cached); found {
		t.Fatalf("snapshot from before the update left in cache: %+v", cached)
	}

	got, err = svc.Assets.Get(ctx, a.ID)
	if err != nil {
		t.Fatalf("second get: %v", err)
	}
	if got.CurrentPrice != 13.0 {
		t.Fatalf("second get = %v, want committed 13.0", got.CurrentPrice)
	}

	// With no write in between the fill goes through.
	if found, _ := mem.GetJSON(ctx, cache.Key(models.EntityAsset, a.ID), &cached); !found || cached.CurrentPrice != 13.0 {
		t.Fatalf("expected cached 13.0 after quiet get, got %+v (found=%v)", cached, found)
	}
}

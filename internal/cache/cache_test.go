package cache

import (
	"context"
	"testing"
	"time"

	"github.com/Membrive92/TrackingFinance/pkg/config"
	"github.com/Membrive92/TrackingFinance/pkg/models"
	"github.com/sirupsen/logrus"
)

func TestKey(t *testing.T) {
	if got := Key(models.EntityExchangeRate, 42); got != "tracking:exchangerate:42" {
		t.Errorf("Key = %q", got)
	}
	if got := Key(models.EntityConfiguration, "theme"); got != "tracking:configuration:theme" {
		t.Errorf("Key = %q", got)
	}
}

func TestMemoryCache(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache(time.Minute)

	in := models.AssetRead{ID: 1, Ticker: "MSTY", AssetType: models.AssetTypeETF, CurrentPrice: 12.5, Currency: models.CurrencyUSD}
	key := Key(models.EntityAsset, in.ID)

	var out models.AssetRead
	if found, err := c.GetJSON(ctx, key, &out); err != nil || found {
		t.Fatalf("miss: found=%v err=%v", found, err)
	}

	if err := c.SetJSON(ctx, key, in); err != nil {
		t.Fatal(err)
	}
	found, err := c.GetJSON(ctx, key, &out)
	if err != nil || !found {
		t.Fatalf("hit: found=%v err=%v", found, err)
	}
	if out != in {
		t.Errorf("got %+v, want %+v", out, in)
	}

	if err := c.Delete(ctx, key); err != nil {
		t.Fatal(err)
	}
	if found, _ := c.GetJSON(ctx, key, &out); found {
		t.Error("entry survived Delete")
	}
}

func TestMemoryCacheExpires(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache(20 * time.Millisecond)

	if err := c.SetJSON(ctx, "k", "v"); err != nil {
		t.Fatal(err)
	}
	time.Sleep(50 * time.Millisecond)

	var out string
	if found, _ := c.GetJSON(ctx, "k", &out); found {
		t.Error("entry outlived its TTL")
	}
}

func TestNewSelectsDriver(t *testing.T) {
	log := logrus.New()

	c, err := New(&config.Config{Cache: config.CacheConfig{Driver: config.CacheNone}}, log)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := c.(NopCache); !ok {
		t.Errorf("none -> %T", c)
	}

	c, err = New(&config.Config{Cache: config.CacheConfig{Driver: config.CacheMemory, TTL: time.Minute}}, log)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := c.(*MemoryCache); !ok {
		t.Errorf("memory -> %T", c)
	}

	if _, err := New(&config.Config{Cache: config.CacheConfig{Driver: "memcached"}}, log); err == nil {
		t.Error("expected an error for an unknown driver")
	}
}

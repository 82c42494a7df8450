package app

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Membrive92/TrackingFinance/internal/database/dbtest"
	"github.com/Membrive92/TrackingFinance/pkg/config"
)

func testConfig(t *testing.T) *config.Config {
	cfg := dbtest.Config(t)
	cfg.Database.AutoMigrate = true
	cfg.Cache.Driver = config.CacheMemory
	cfg.Cache.TTL = time.Minute
	cfg.Server.Host = "127.0.0.1"
	cfg.Server.Port = 18000
	cfg.Server.RequestTimeout = 5 * time.Second
	return cfg
}

func TestInitializeMigratesAndServes(t *testing.T) {
	a := New(testConfig(t), dbtest.Logger())
	if err := a.Initialize(); err != nil {
		t.Fatalf("initialize: %v", err)
	}
	defer a.Stop()

	req := httptest.NewRequest(http.MethodPost, "/v1/configurations", strings.NewReader(`{"key":"theme","value":"dark"}`))
	rec := httptest.NewRecorder()
	a.Handler().ServeHTTP(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}

	got, err := a.Services().Configurations.Get(context.Background(), "theme")
	if err != nil || got.Value != "dark" {
		t.Fatalf("get = %+v, %v", got, err)
	}

	rec = httptest.NewRecorder()
	a.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/health/ready", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("ready = %d: %s", rec.Code, rec.Body.String())
	}
}

func TestStartBeforeInitialize(t *testing.T) {
	a := New(testConfig(t), dbtest.Logger())
	if err := a.Start(); err == nil {
		t.Fatal("expected an error when starting an uninitialized app")
	}
}

func TestStartStop(t *testing.T) {
	a := New(testConfig(t), dbtest.Logger())
	if err := a.Initialize(); err != nil {
		t.Fatalf("initialize: %v", err)
	}
	if err := a.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}
	if err := a.Stop(); err != nil {
		t.Fatalf("stop: %v", err)
	}
	select {
	case err := <-a.Err():
		t.Fatalf("unexpected serve error: %v", err)
	default:
	}
}

func TestInitializeFailureClosesStore(t *testing.T) {
	cfg := testConfig(t)
	cfg.Cache.Driver = config.CacheRedis
	cfg.Redis.Host = "127.0.0.1"
	cfg.Redis.Port = 1
	cfg.Redis.DialTimeout = 200 * time.Millisecond

	a := New(cfg, dbtest.Logger())
	if err := a.Initialize(); err == nil {
		t.Fatal("expected initialize to fail without a reachable redis")
	}
	if a.store == nil {
		t.Fatal("store should have been opened before the cache")
	}
	if err := a.store.Health(context.Background()); err == nil {
		t.Fatal("store left open after a failed initialize")
	}
}

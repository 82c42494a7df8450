package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Membrive92/TrackingFinance/internal/cache"
	"github.com/Membrive92/TrackingFinance/internal/database/dbtest"
	"github.com/Membrive92/TrackingFinance/internal/services"
	"github.com/Membrive92/TrackingFinance/pkg/config"
	"github.com/Membrive92/TrackingFinance/pkg/models"
)

func newTestServer(t *testing.T, mutate func(*config.Config)) http.Handler {
	t.Helper()

	cfg := dbtest.Config(t)
	cfg.Server.RequestTimeout = 5 * time.Second
	cfg.CORS = config.CORSConfig{
		Enabled: true,
		Origins: config.OriginList{"http://localhost:4200"},
		Methods: []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		Headers: []string{"Content-Type", RequestIDHeader},
	}
	if mutate != nil {
		mutate(cfg)
	}

	store := dbtest.NewStore(t)
	log := dbtest.Logger()
	svc := services.New(services.Deps{
		Store:  store,
		Cache:  cache.NewMemoryCache(time.Minute),
		Logger: log,
	})
	return NewServer(cfg, log, svc, map[string]HealthChecker{"database": store}).Handler()
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != "" {
		reader = bytes.NewReader([]byte(body))
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, dest interface{}) {
	t.Helper()
	if err := json.NewDecoder(rec.Body).Decode(dest); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
}

func TestHealth(t *testing.T) {
	h := newTestServer(t, nil)

	rec := do(t, h, http.MethodGet, "/v1/health", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var body models.HealthStatus
	decodeBody(t, rec, &body)
	if body.Status != "ok" {
		t.Fatalf("status body = %+v", body)
	}
	if rec.Header().Get(RequestIDHeader) == "" {
		t.Fatal("expected a generated request id")
	}

	rec = do(t, h, http.MethodGet, "/v1/health/ready", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("ready status = %d: %s", rec.Code, rec.Body.String())
	}
}

type failingCheck struct{}

func (failingCheck) Health(context.Context) error { return errors.New("down") }

func TestReadyReportsFailingDependency(t *testing.T) {
	cfg := dbtest.Config(t)
	cfg.Server.RequestTimeout = time.Second
	log := dbtest.Logger()
	svc := services.New(services.Deps{Store: dbtest.NewStore(t), Logger: log})
	h := NewServer(cfg, log, svc, map[string]HealthChecker{"cache": failingCheck{}}).Handler()

	rec := do(t, h, http.MethodGet, "/v1/health/ready", "")
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestAssetScenario(t *testing.T) {
	h := newTestServer(t, nil)

	rec := do(t, h, http.MethodPost, "/v1/assets",
		`{"ticker":"MSTY","asset_type":"ETF","current_price":12.5,"currency":"USD"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create status = %d: %s", rec.Code, rec.Body.String())
	}
	var created models.AssetRead
	decodeBody(t, rec, &created)
	if created.ID == 0 || created.Currency != models.CurrencyUSD {
		t.Fatalf("created = %+v", created)
	}

	path := "/v1/assets/" + itoa(created.ID)

	rec = do(t, h, http.MethodPatch, path, `{"current_price":13.0}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("patch status = %d: %s", rec.Code, rec.Body.String())
	}
	var patched models.AssetRead
	decodeBody(t, rec, &patched)
	if patched.CurrentPrice != 13.0 || patched.Ticker != "MSTY" {
		t.Fatalf("patched = %+v", patched)
	}

	rec = do(t, h, http.MethodDelete, path, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("delete status = %d: %s", rec.Code, rec.Body.String())
	}
	var ack models.DeleteResponse
	decodeBody(t, rec, &ack)
	if !ack.OK {
		t.Fatal("expected ok:true")
	}

	rec = do(t, h, http.MethodGet, path, "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("get after delete status = %d", rec.Code)
	}
	var notFound models.ErrorResponse
	decodeBody(t, rec, &notFound)
	if notFound.Error != "Asset not found" {
		t.Fatalf("error = %q", notFound.Error)
	}
}

func TestErrorStatuses(t *testing.T) {
	h := newTestServer(t, nil)

	rec := do(t, h, http.MethodPost, "/v1/assets", `{"ticker":"A","asset_type":"ETF","current_price":1}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("seed asset: %d %s", rec.Code, rec.Body.String())
	}
	rec = do(t, h, http.MethodPost, "/v1/transactions",
		`{"asset_id":1,"date":"2024-03-15","transaction_type":"buy","quantity":2,"unit_price":10,"currency":"EUR"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("seed transaction: %d %s", rec.Code, rec.Body.String())
	}
	rec = do(t, h, http.MethodPost, "/v1/exchange-rates",
		`{"from_currency":"USD","to_currency":"EUR","rate_date":"2024-03-15","rate":0.92}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("seed rate: %d %s", rec.Code, rec.Body.String())
	}

	tests := []struct {
		name   string
		method string
		path   string
		body   string
		status int
		field  string
	}{
		{"bad asset type", http.MethodPost, "/v1/assets", `{"ticker":"X","asset_type":"BOND","current_price":1}`, http.StatusUnprocessableEntity, "asset_type"},
		{"negative price", http.MethodPost, "/v1/assets", `{"ticker":"X","asset_type":"ETF","current_price":-1}`, http.StatusUnprocessableEntity, "current_price"},
		{"wrong json type", http.MethodPost, "/v1/assets", `{"ticker":"X","asset_type":"ETF","current_price":"cheap"}`, http.StatusUnprocessableEntity, "current_price"},
		{"malformed json", http.MethodPost, "/v1/assets", `{"ticker":`, http.StatusUnprocessableEntity, "body"},
		{"empty body", http.MethodPost, "/v1/assets", ``, http.StatusUnprocessableEntity, "body"},
		{"bad id", http.MethodGet, "/v1/assets/abc", ``, http.StatusUnprocessableEntity, "id"},
		{"missing asset", http.MethodGet, "/v1/assets/404", ``, http.StatusNotFound, ""},
		{"patch missing asset", http.MethodPatch, "/v1/assets/404", `{"asset_type":"BOND"}`, http.StatusNotFound, ""},
		{"asset in use", http.MethodDelete, "/v1/assets/1", ``, http.StatusConflict, ""},
		{"unknown asset", http.MethodPost, "/v1/transactions",
			`{"asset_id":99,"date":"2024-03-15","transaction_type":"buy","quantity":1,"unit_price":1,"currency":"EUR"}`,
			http.StatusUnprocessableEntity, "asset_id"},
		{"bad filter", http.MethodGet, "/v1/transactions?asset_id=x", ``, http.StatusUnprocessableEntity, "asset_id"},
		{"duplicate rate", http.MethodPost, "/v1/exchange-rates",
			`{"from_currency":"USD","to_currency":"EUR","rate_date":"2024-03-15","rate":0.93}`, http.StatusConflict, ""},
		{"inconsistent retention", http.MethodPost, "/v1/retentions",
			`{"transaction_id":1,"month":"2024-03","gross_amount":100,"retention_pct":0.15,"origin_retention":10,"net_amount":90}`,
			http.StatusUnprocessableEntity, "origin_retention"},
		{"missing setting", http.MethodGet, "/v1/configurations/nope", ``, http.StatusNotFound, ""},
		{"unknown route", http.MethodGet, "/v1/portfolios", ``, http.StatusNotFound, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, h, tt.method, tt.path, tt.body)
			if rec.Code != tt.status {
				t.Fatalf("status = %d, want %d: %s", rec.Code, tt.status, rec.Body.String())
			}
			var body models.ErrorResponse
			decodeBody(t, rec, &body)
			if body.Error == "" {
				t.Fatal("expected an error message")
			}
			if tt.field == "" {
				return
			}
			if len(body.Fields) == 0 || body.Fields[0].Field != tt.field {
				t.Fatalf("fields = %+v, want %s first", body.Fields, tt.field)
			}
		})
	}
}

func TestRetentionAndConfigurationRoutes(t *testing.T) {
	h := newTestServer(t, nil)

	do(t, h, http.MethodPost, "/v1/assets", `{"ticker":"MSTY","asset_type":"ETF","current_price":12.5}`)
	do(t, h, http.MethodPost, "/v1/transactions",
		`{"asset_id":1,"date":"2024-03-15","transaction_type":"dividend","quantity":100,"unit_price":1.2,"currency":"USD"}`)

	rec := do(t, h, http.MethodPost, "/v1/retentions",
		`{"transaction_id":1,"month":"2024-03","gross_amount":120,"retention_pct":0.15,"origin_retention":18,"net_amount":102}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create retention: %d %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), `"month":"2024-03"`) {
		t.Fatalf("month not echoed: %s", rec.Body.String())
	}

	rec = do(t, h, http.MethodGet, "/v1/retentions?transaction_id=1", "")
	var list []models.RetentionRead
	decodeBody(t, rec, &list)
	if len(list) != 1 {
		t.Fatalf("retentions = %+v", list)
	}

	rec = do(t, h, http.MethodPost, "/v1/configurations", `{"key":"base_currency","value":"EUR"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create setting: %d %s", rec.Code, rec.Body.String())
	}
	rec = do(t, h, http.MethodPost, "/v1/configurations", `{"key":"base_currency","value":"USD"}`)
	if rec.Code != http.StatusConflict {
		t.Fatalf("duplicate setting: %d", rec.Code)
	}
	rec = do(t, h, http.MethodPatch, "/v1/configurations/base_currency", `{"value":"USD"}`)
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"value":"USD"`) {
		t.Fatalf("patch setting: %d %s", rec.Code, rec.Body.String())
	}
	rec = do(t, h, http.MethodDelete, "/v1/configurations/base_currency", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("delete setting: %d", rec.Code)
	}
}

func TestListEmptyIsArray(t *testing.T) {
	h := newTestServer(t, nil)

	for _, path := range []string{"/v1/assets", "/v1/transactions", "/v1/retentions", "/v1/exchange-rates", "/v1/configurations"} {
		rec := do(t, h, http.MethodGet, path, "")
		if rec.Code != http.StatusOK {
			t.Fatalf("%s: status %d", path, rec.Code)
		}
		if got := strings.TrimSpace(rec.Body.String()); got != "[]" {
			t.Fatalf("%s: body %q, want []", path, got)
		}
	}
}

func TestCORSPreflight(t *testing.T) {
	h := newTestServer(t, nil)

	req := httptest.NewRequest(http.MethodOptions, "/v1/assets", nil)
	req.Header.Set("Origin", "http://localhost:4200")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:4200" {
		t.Fatalf("allow origin = %q", got)
	}
}

func TestRequestIDIsEchoed(t *testing.T) {
	h := newTestServer(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/v1/health", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if got := rec.Header().Get(RequestIDHeader); got != "abc-123" {
		t.Fatalf("request id = %q", got)
	}
}

func TestUnmatchedRoutesGetRequestID(t *testing.T) {
	h := newTestServer(t, nil)

	tests := []struct {
		name   string
		method string
		path   string
		want   int
	}{
		{"unknown path", http.MethodGet, "/v1/portfolios", http.StatusNotFound},
		{"wrong method", http.MethodPut, "/v1/assets", http.StatusMethodNotAllowed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, h, tt.method, tt.path, "")
			if rec.Code != tt.want {
				t.Fatalf("status = %d, want %d", rec.Code, tt.want)
			}
			if rec.Header().Get(RequestIDHeader) == "" {
				t.Fatal("expected a request id on an unmatched route")
			}
		})
	}
}

func TestRateLimit(t *testing.T) {
	h := newTestServer(t, func(cfg *config.Config) {
		cfg.RateLimit = config.RateLimitConfig{Enabled: true, Requests: 2, Window: time.Hour}
	})

	for i := 0; i < 2; i++ {
		if rec := do(t, h, http.MethodGet, "/v1/health", ""); rec.Code != http.StatusOK {
			t.Fatalf("request %d: status %d", i, rec.Code)
		}
	}
	if rec := do(t, h, http.MethodGet, "/v1/health", ""); rec.Code != http.StatusTooManyRequests {
		t.Fatalf("third request: status %d", rec.Code)
	}
}

func itoa(id int64) string {
	b, _ := json.Marshal(id)
	return string(b)
}

package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"supermarket/backend/internal/config"
	domain "supermarket/backend/internal/domain/product"
	"supermarket/backend/internal/infrastructure/memory"
	"supermarket/backend/internal/telemetry"
	productusecase "supermarket/backend/internal/usecase/product"
)

type productJSON struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	SKU         *string `json:"sku"`
	Description *string `json:"description"`
	Price       string  `json:"price"`
	Quantity    int     `json:"quantity"`
}

type rejectionJSON struct {
	Message string `json:"message"`
	Kind    string `json:"kind"`
	Errors  map[string]struct {
		Reason  string `json:"reason"`
		Message string `json:"message"`
	} `json:"errors"`
}

func newTestHandler(t *testing.T, repo domain.Repository) http.Handler {
	t.Helper()
	metrics := telemetry.NewMetrics(prometheus.NewRegistry())
	svc := productusecase.NewService(repo, metrics)
	cfg := config.Config{HTTPPort: "0", AllowedOrigins: []string{"*"}}
	return NewServer(cfg, svc, metrics).Handler()
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func TestCreateThenDuplicateName(t *testing.T) {
	h := newTestHandler(t, memory.NewProductRepository())

	rec := do(t, h, http.MethodPost, "/api/products", `{"name":"Widget","price":10.50,"quantity":5}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	created := decode[productJSON](t, rec)
	assert.Equal(t, "10.50", created.Price)
	assert.NotEmpty(t, created.ID)
	assert.Nil(t, created.SKU)

	rec = do(t, h, http.MethodPost, "/api/products", `{"name":"widget ","price":"3","quantity":1}`)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	rej := decode[rejectionJSON](t, rec)
	assert.Equal(t, "duplicate_name", rej.Kind)
	assert.Equal(t, "duplicate", rej.Errors["name"].Reason)
}

func TestCreatePriceOutOfRange(t *testing.T) {
	h := newTestHandler(t, memory.NewProductRepository())

	rec := do(t, h, http.MethodPost, "/api/products", `{"name":"Widget","price":1000000.00,"quantity":1}`)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	rej := decode[rejectionJSON](t, rec)
	assert.Equal(t, "validation_failed", rej.Kind)
	assert.Equal(t, "out_of_range", rej.Errors["price"].Reason)

	rec = do(t, h, http.MethodGet, "/api/products", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func TestCreatePriceValidationCases(t *testing.T) {
	tests := []struct {
		price  string
		status int
		reason string
	}{
		{`0`, http.StatusUnprocessableEntity, "not_positive"},
		{`"invalid"`, http.StatusUnprocessableEntity, "not_numeric"},
		{`10.999`, http.StatusUnprocessableEntity, "too_many_decimals"},
		{`10`, http.StatusCreated, ""},
		{`10.5`, http.StatusCreated, ""},
	}
	for _, tt := range tests {
		t.Run(tt.price, func(t *testing.T) {
			h := newTestHandler(t, memory.NewProductRepository())
			rec := do(t, h, http.MethodPost, "/api/products", `{"name":"Test Product","price":`+tt.price+`,"quantity":10}`)
			require.Equal(t, tt.status, rec.Code, rec.Body.String())
			if tt.reason != "" {
				assert.Equal(t, tt.reason, decode[rejectionJSON](t, rec).Errors["price"].Reason)
			}
		})
	}
}

func TestCreateDuplicateSKUAttachesToSKU(t *testing.T) {
	h := newTestHandler(t, memory.NewProductRepository())

	rec := do(t, h, http.MethodPost, "/api/products", `{"name":"Milk","sku":"M-1","price":1,"quantity":1}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	rec = do(t, h, http.MethodPost, "/api/products", `{"name":"Bread","sku":"M-1","price":1,"quantity":1}`)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	rej := decode[rejectionJSON](t, rec)
	assert.Equal(t, "duplicate_sku", rej.Kind)
	assert.Contains(t, rej.Errors, "sku")
	assert.NotContains(t, rej.Errors, "name")
}

func TestProductLifecycle(t *testing.T) {
	h := newTestHandler(t, memory.NewProductRepository())

	rec := do(t, h, http.MethodPost, "/api/products", `{"name":"Milk","price":"1.20","quantity":3,"description":"Semi skimmed"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	id := decode[productJSON](t, rec).ID

	rec = do(t, h, http.MethodGet, "/api/products/"+id, "")
	require.Equal(t, http.StatusOK, rec.Code)
	got := decode[productJSON](t, rec)
	require.NotNil(t, got.Description)
	assert.Equal(t, "Semi skimmed", *got.Description)

	rec = do(t, h, http.MethodPut, "/api/products/"+id, `{"name":"Milk","price":1.25,"quantity":4}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	updated := decode[productJSON](t, rec)
	assert.Equal(t, "1.25", updated.Price)
	assert.Nil(t, updated.Description)

	rec = do(t, h, http.MethodDelete, "/api/products/"+id, "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, rec.Body.String())

	rec = do(t, h, http.MethodGet, "/api/products/"+id, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestNotFoundAndBadRequest(t *testing.T) {
	h := newTestHandler(t, memory.NewProductRepository())

	rec := do(t, h, http.MethodDelete, "/api/products/missing", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"error":"product not found"}`, rec.Body.String())

	rec = do(t, h, http.MethodPut, "/api/products/missing", `{"name":"X","price":1,"quantity":1}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, h, http.MethodPost, "/api/products", `{"name":`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, h, http.MethodPost, "/api/products", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestTrailingDataAfterPayloadIsRejected(t *testing.T) {
	h := newTestHandler(t, memory.NewProductRepository())

	bodies := []string{
		`{"name":"Milk","price":1,"quantity":1}garbage`,
		`{"name":"Milk","price":1,"quantity":1}{"name":"Bread","price":1,"quantity":1}`,
		`{"name":"Milk","price":1,"quantity":1} 42`,
	}
	for _, body := range bodies {
		rec := do(t, h, http.MethodPost, "/api/products", body)
		assert.Equal(t, http.StatusBadRequest, rec.Code, body)
	}

	rec := do(t, h, http.MethodPost, "/api/products", "{\"name\":\"Milk\",\"price\":1,\"quantity\":1}\n  ")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = do(t, h, http.MethodGet, "/api/products", "")
	assert.Len(t, decode[[]productJSON](t, rec), 1)
}

func TestCheckEndpoint(t *testing.T) {
	h := newTestHandler(t, memory.NewProductRepository())

	rec := do(t, h, http.MethodPost, "/api/products", `{"name":"Milk","price":1,"quantity":1}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	id := decode[productJSON](t, rec).ID

	rec = do(t, h, http.MethodPost, "/api/products/check", `{"name":"MILK","price":1,"quantity":1}`)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "duplicate_name", decode[rejectionJSON](t, rec).Kind)

	rec = do(t, h, http.MethodPost, "/api/products/check?exclude="+id, `{"name":"MILK","price":1,"quantity":1}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"valid":true}`, rec.Body.String())

	rec = do(t, h, http.MethodGet, "/api/products", "")
	assert.Len(t, decode[[]productJSON](t, rec), 1)
}

func TestRulesAndSummary(t *testing.T) {
	h := newTestHandler(t, memory.NewProductRepository())

	rec := do(t, h, http.MethodGet, "/api/products/rules", "")
	require.Equal(t, http.StatusOK, rec.Code)
	rules := decode[domain.RuleSet](t, rec)
	assert.Equal(t, domain.NameMinLength, rules.NameMinLength)
	assert.Equal(t, "999999.99", rules.PriceMax)

	do(t, h, http.MethodPost, "/api/products", `{"name":"Milk","price":2.50,"quantity":2}`)
	rec = do(t, h, http.MethodGet, "/api/products/summary", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"totalProducts":1,"totalValue":"5.00","averagePrice":"2.50","lowStock":1,"outOfStock":0,"inStockRatio":"100.0"}`, rec.Body.String())
}

func TestHealthMetricsAndCORS(t *testing.T) {
	h := newTestHandler(t, memory.NewProductRepository())

	rec := do(t, h, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("Access-Control-Allow-Origin"))

	req := httptest.NewRequest(http.MethodOptions, "/api/products", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "http://localhost:5173", rec.Header().Get("Access-Control-Allow-Origin"))

	rec = do(t, h, http.MethodGet, "/metrics", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "catalog_http_requests_total")
}

type failingRepo struct{ domain.Repository }

func (*failingRepo) List(context.Context) ([]*domain.Product, error) {
	return nil, errors.New("disk on fire")
}

func TestInternalErrorsAreNotLeaked(t *testing.T) {
	h := newTestHandler(t, &failingRepo{Repository: memory.NewProductRepository()})

	rec := do(t, h, http.MethodGet, "/api/products", "")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "disk on fire")
}

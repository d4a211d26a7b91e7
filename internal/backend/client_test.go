package backend

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/iliyamo/pos-quick-sale/internal/model"
)

func testItems() []model.CatalogItem {
	return []model.CatalogItem{
		{ID: "1", Name: "Espresso", UnitPrice: decimal.RequireFromString("2.50"), Stock: 10, ScanCode: "111"},
		{ID: "2", Name: "Green Tea", UnitPrice: decimal.RequireFromString("2.00"), Stock: 4, CustomCode: "TEA-01"},
	}
}

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	c := New(srv.URL, 5*time.Second, zaptest.NewLogger(t))
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func TestFetchCatalog(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/tenants/t1/catalog", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(testItems())
	})

	items, err := c.FetchCatalog(context.Background(), "t1")
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "Espresso", items[0].Name)
	assert.True(t, items[0].UnitPrice.Equal(decimal.RequireFromString("2.50")))
	assert.Equal(t, 4, items[1].Stock)
}

func TestLookupByScanCode(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/tenants/t1/items", r.URL.Path)
		assert.Equal(t, "111", r.URL.Query().Get("scan_code"))
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(testItems()[:1])
	})

	items, err := c.LookupByScanCode(context.Background(), "t1", "111")
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "1", items[0].ID)
}

func TestLookupByCustomCodeEmptyResult(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "TEA-99", r.URL.Query().Get("custom_code"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte("[]"))
	})

	items, err := c.LookupByCustomCode(context.Background(), "t1", "TEA-99")
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestSubmitSaleCommitted(t *testing.T) {
	var got model.SaleRequest
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/tenants/t1/sales", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"confirmation_id":"conf-7"}`))
	})

	req := model.SaleRequest{
		ReferenceID: "ref-1",
		TenantID:    "t1",
		RegisterID:  "r1",
		Method:      model.TenderCard,
		Total:       decimal.RequireFromString("23.50"),
	}
	id, err := c.SubmitSale(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, "conf-7", id)
	assert.Equal(t, "ref-1", got.ReferenceID)
	assert.True(t, got.Total.Equal(decimal.RequireFromString("23.50")))
}

func TestSubmitSaleRejected(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusConflict)
		_, _ = w.Write([]byte(`{"error":"stock changed","retryable":false}`))
	})

	_, err := c.SubmitSale(context.Background(), model.SaleRequest{TenantID: "t1"})
	var be *Error
	require.ErrorAs(t, err, &be)
	assert.Equal(t, "stock changed", be.Reason)
	assert.False(t, be.Retryable)
	assert.Equal(t, http.StatusConflict, be.Status)
}

func TestSubmitSaleRetryableFlag(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte(`{"error":"try again","retryable":true}`))
	})

	_, err := c.SubmitSale(context.Background(), model.SaleRequest{TenantID: "t1"})
	var be *Error
	require.ErrorAs(t, err, &be)
	assert.True(t, be.Retryable)
}

func TestSubmitSaleUnstructured5xxIsRetryable(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	_, err := c.SubmitSale(context.Background(), model.SaleRequest{TenantID: "t1"})
	var be *Error
	require.ErrorAs(t, err, &be)
	assert.True(t, be.Retryable, "a bare 5xx may never have processed the sale")
}

func TestSubmitSaleTransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // connection refused from here on
	c := New(srv.URL, time.Second, zaptest.NewLogger(t))
	t.Cleanup(func() { _ = c.Close() })

	_, err := c.SubmitSale(context.Background(), model.SaleRequest{TenantID: "t1"})
	var be *Error
	require.ErrorAs(t, err, &be)
	assert.True(t, be.Retryable)
}

func TestSubmitSaleMissingConfirmation(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{}`))
	})

	_, err := c.SubmitSale(context.Background(), model.SaleRequest{TenantID: "t1"})
	var be *Error
	require.ErrorAs(t, err, &be)
	assert.True(t, be.Retryable)
}

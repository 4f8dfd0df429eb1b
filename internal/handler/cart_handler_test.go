package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vasiliy-maslov/storefront/internal/cart"
	"github.com/vasiliy-maslov/storefront/internal/catalog"
	"github.com/vasiliy-maslov/storefront/internal/kv"
)

type staticCatalog struct {
	snap *catalog.Snapshot
}

func (c *staticCatalog) Snapshot() *catalog.Snapshot {
	return c.snap
}

func newCartRouter(t *testing.T) (*chi.Mux, *cart.Store) {
	t.Helper()

	store := cart.NewStore(kv.NewMemory())
	require.NoError(t, store.Load(context.Background(), cart.GuestKey))

	snap := catalog.NewSnapshot([]catalog.Product{
		{ID: 5, Name: "Coffee", Price: "15.00"},
		{ID: 7, Name: "Tea", Price: "9,90"},
	}, nil)

	r := chi.NewRouter()
	NewCartHandler(store, &staticCatalog{snap: snap}).RegisterRoutes(r)

	return r, store
}

func decodeCart(t *testing.T, body *bytes.Buffer) CartResponse {
	t.Helper()

	var resp CartResponse
	require.NoError(t, json.NewDecoder(body).Decode(&resp))

	return resp
}

func TestCartHandler_IncQty(t *testing.T) {
	tests := []struct {
		name           string
		body           string
		expectedStatus int
		expectedRows   []cart.Row
	}{
		{
			name:           "default delta is one",
			body:           `{"productId": 5}`,
			expectedStatus: http.StatusOK,
			expectedRows:   []cart.Row{{ProductID: 5, Qty: 1}},
		},
		{
			name:           "explicit delta",
			body:           `{"productId": 5, "delta": 3}`,
			expectedStatus: http.StatusOK,
			expectedRows:   []cart.Row{{ProductID: 5, Qty: 3}},
		},
		{
			name:           "missing product id",
			body:           `{"delta": 2}`,
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "invalid json",
			body:           `{invalid}`,
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, _ := newCartRouter(t)

			req := httptest.NewRequest(http.MethodPost, "/cart/items", bytes.NewBufferString(tt.body))
			w := httptest.NewRecorder()

			r.ServeHTTP(w, req)

			require.Equal(t, tt.expectedStatus, w.Code)
			if tt.expectedStatus != http.StatusOK {
				return
			}

			resp := decodeCart(t, w.Body)
			assert.Equal(t, tt.expectedRows, resp.Rows)
		})
	}
}

func TestCartHandler_SetQty(t *testing.T) {
	r, store := newCartRouter(t)
	require.NoError(t, store.SetQty(context.Background(), 5, 3))
	require.NoError(t, store.SetQty(context.Background(), 7, 2))

	// 3*15.00 + 2*9,90 — цена с запятой парсится так же, как с точкой.
	req := httptest.NewRequest(http.MethodGet, "/cart", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	resp := decodeCart(t, w.Body)
	assert.Equal(t, 5, resp.Count)
	assert.Equal(t, "64.80", resp.Total)

	// Нулевое количество удаляет строку.
	req = httptest.NewRequest(http.MethodPut, "/cart/items/5", bytes.NewBufferString(`{"qty": 0}`))
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	resp = decodeCart(t, w.Body)
	assert.Equal(t, []cart.Row{{ProductID: 7, Qty: 2}}, resp.Rows)

	req = httptest.NewRequest(http.MethodPut, "/cart/items/abc", bytes.NewBufferString(`{"qty": 1}`))
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCartHandler_Clear(t *testing.T) {
	r, store := newCartRouter(t)
	require.NoError(t, store.SetQty(context.Background(), 5, 3))

	req := httptest.NewRequest(http.MethodDelete, "/cart", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	resp := decodeCart(t, w.Body)
	assert.Empty(t, resp.Rows)
	assert.Zero(t, resp.Count)
	assert.Equal(t, "0.00", resp.Total)
}

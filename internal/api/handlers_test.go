package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/shop-checkout/internal/cart"
	"github.com/example/shop-checkout/internal/catalog"
	"github.com/example/shop-checkout/internal/checkout"
	"github.com/example/shop-checkout/internal/gateway"
	"github.com/example/shop-checkout/internal/identity"
	"github.com/example/shop-checkout/internal/order"
)

func testProduct(id, title, price string) catalog.Product {
	return catalog.Product{
		ID:    id,
		Title: title,
		Price: decimal.RequireFromString(price),
		Images: []catalog.ImageRef{
			{AssetID: "img-" + id, URL: "https://cdn.example.com/img-" + id},
		},
	}
}

func newTestServer(t *testing.T, products ...catalog.Product) (http.Handler, *cart.Store, *mockGateway) {
	t.Helper()

	store := cart.NewStore("cart-test")
	gw := newMockGateway()
	handlers := NewHandlers(Config{
		Store:         store,
		Catalog:       newMockCatalog(products...),
		Builder:       checkout.NewBuilder("usd"),
		Gateway:       gw,
		Reconstructor: order.NewReconstructor(gw, 2000),
		Identity:      identity.NewResolver("test-secret-key-for-api-tests"),
		SuccessURL:    "https://shop.example.com/success?session_id={CHECKOUT_SESSION_ID}",
		CancelURL:     "https://shop.example.com/checkout",
	})
	return NewRouter(handlers), store, gw
}

// ============================================
// Cart Endpoint Tests
// ============================================

func TestAddToCart(t *testing.T) {
	router, store, _ := newTestServer(t, testProduct("prod-1", "AirPods Pro", "249.00"))

	req := httptest.NewRequest(http.MethodPost, "/cart/items", strings.NewReader(`{"product_id":"prod-1"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, store.Items(), 1)
	assert.Equal(t, "prod-1", store.Items()[0].Product.ID)
}

func TestAddToCart_UnknownProduct(t *testing.T) {
	router, store, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/cart/items", strings.NewReader(`{"product_id":"prod-missing"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Empty(t, store.Items())
}

func TestRemoveFromCart(t *testing.T) {
	router, store, _ := newTestServer(t, testProduct("prod-1", "AirPods Pro", "249.00"))
	store.Add(testProduct("prod-1", "AirPods Pro", "249.00"))

	req := httptest.NewRequest(http.MethodDelete, "/cart/items/prod-1", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, store.Items())
}

func TestRemoveFromCart_AbsentProduct(t *testing.T) {
	router, _, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodDelete, "/cart/items/prod-unknown", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	// Removal is a no-op, not an error
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestGetCart(t *testing.T) {
	router, store, _ := newTestServer(t)
	p := testProduct("prod-1", "AirPods Pro", "249.00")
	store.Add(p)
	store.Add(p)

	req := httptest.NewRequest(http.MethodGet, "/cart", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Items []struct {
			ProductID string `json:"product_id"`
			Quantity  int    `json:"quantity"`
			UnitPrice string `json:"unit_price"`
		} `json:"items"`
		Total string `json:"total"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Items, 1)
	assert.Equal(t, "prod-1", resp.Items[0].ProductID)
	assert.Equal(t, 2, resp.Items[0].Quantity)
	assert.Equal(t, "249.00", resp.Items[0].UnitPrice)
	assert.Equal(t, "498.00", resp.Total)
}

func TestClearCart(t *testing.T) {
	router, store, _ := newTestServer(t)
	store.Add(testProduct("prod-1", "AirPods Pro", "249.00"))

	req := httptest.NewRequest(http.MethodDelete, "/cart", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, store.Items())
}

// ============================================
// Checkout Endpoint Tests
// ============================================

func TestCreateCheckoutSession(t *testing.T) {
	router, store, gw := newTestServer(t)
	store.Add(testProduct("prod-1", "AirPods Pro", "249.00"))

	req := httptest.NewRequest(http.MethodPost, "/checkout/session", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)

	var session gateway.Session
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &session))
	assert.NotEmpty(t, session.ID)
	assert.NotEmpty(t, session.RedirectURL)
	assert.Contains(t, gw.sessions, session.ID)
}

func TestCreateCheckoutSession_EmptyCart(t *testing.T) {
	router, _, gw := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/checkout/session", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Empty(t, gw.sessions, "an empty cart must never reach the gateway")
}

func TestCreateCheckoutSession_GatewayUnavailable(t *testing.T) {
	router, store, gw := newTestServer(t)
	store.Add(testProduct("prod-1", "AirPods Pro", "249.00"))
	gw.createErr = gateway.ErrGatewayUnavailable

	req := httptest.NewRequest(http.MethodPost, "/checkout/session", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestCreateCheckoutSession_GatewayRejected(t *testing.T) {
	router, store, gw := newTestServer(t)
	store.Add(testProduct("prod-1", "AirPods Pro", "249.00"))
	gw.createErr = gateway.ErrGatewayRejected

	req := httptest.NewRequest(http.MethodPost, "/checkout/session", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

// ============================================
// Order Summary Endpoint Tests
// ============================================

func TestGetOrderSummary(t *testing.T) {
	router, store, _ := newTestServer(t)
	store.Add(testProduct("prod-1", "AirPods Pro", "10.00"))
	store.Add(testProduct("prod-1", "AirPods Pro", "10.00"))
	store.Add(testProduct("prod-1", "AirPods Pro", "10.00"))

	// Create the session, then clear the cart: the summary must come from
	// the provider's record, not local state.
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/checkout/session", nil))
	require.Equal(t, http.StatusCreated, rec.Code)
	var session gateway.Session
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &session))

	store.Clear()

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/orders/summary?session_id="+session.ID, nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Greeting string `json:"greeting"`
		Subtotal string `json:"subtotal"`
		Shipping string `json:"shipping"`
		Total    string `json:"total"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Guest", resp.Greeting)
	assert.Equal(t, "30.00", resp.Subtotal)
	assert.Equal(t, "20.00", resp.Shipping)
	assert.Equal(t, "50.00", resp.Total)
}

func TestGetOrderSummary_MissingSessionID(t *testing.T) {
	router, _, _ := newTestServer(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/orders/summary", nil))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetOrderSummary_UnknownSession(t *testing.T) {
	router, _, _ := newTestServer(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/orders/summary?session_id=cs_unknown", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetOrderSummary_GatewayUnavailable(t *testing.T) {
	router, _, gw := newTestServer(t)
	gw.fetchErr = gateway.ErrGatewayUnavailable

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/orders/summary?session_id=cs_any", nil))

	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestGetOrderSummary_MalformedRecord(t *testing.T) {
	router, _, gw := newTestServer(t)
	gw.sessions["cs_bad"] = []gateway.SessionLineItem{
		{Description: "A", Quantity: 1, UnitAmountMinorUnit: -1},
	}

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/orders/summary?session_id=cs_bad", nil))

	// A fabricated order summary must never render
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

// ============================================
// Router Tests
// ============================================

func TestRouter_MethodNotAllowed(t *testing.T) {
	router, _, _ := newTestServer(t)

	tests := []struct {
		method string
		path   string
	}{
		{http.MethodPut, "/cart"},
		{http.MethodGet, "/cart/items"},
		{http.MethodGet, "/checkout/session"},
		{http.MethodPost, "/orders/summary"},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, httptest.NewRequest(tt.method, tt.path, nil))
			assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
		})
	}
}

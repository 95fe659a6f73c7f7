package api

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/example/shop-checkout/internal/cart"
	"github.com/example/shop-checkout/internal/catalog"
	"github.com/example/shop-checkout/internal/checkout"
	"github.com/example/shop-checkout/internal/gateway"
	"github.com/example/shop-checkout/internal/identity"
	"github.com/example/shop-checkout/internal/money"
	"github.com/example/shop-checkout/internal/order"
)

// Catalog is the read-only product lookup collaborator.
type Catalog interface {
	GetProduct(ctx context.Context, id string) (catalog.Product, error)
}

type Handlers struct {
	store          *cart.Store
	catalog        Catalog
	builder        *checkout.Builder
	gateway        gateway.Gateway
	reconstructor  *order.Reconstructor
	identity       *identity.Resolver
	successURL     string
	cancelURL      string
	gatewayTimeout time.Duration
}

type Config struct {
	Store         *cart.Store
	Catalog       Catalog
	Builder       *checkout.Builder
	Gateway       gateway.Gateway
	Reconstructor *order.Reconstructor
	Identity      *identity.Resolver
	SuccessURL    string
	CancelURL     string
	// GatewayTimeout bounds the only network call in the flow; a timeout
	// surfaces as gateway unavailable.
	GatewayTimeout time.Duration
}

func NewHandlers(cfg Config) *Handlers {
	timeout := cfg.GatewayTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Handlers{
		store:          cfg.Store,
		catalog:        cfg.Catalog,
		builder:        cfg.Builder,
		gateway:        cfg.Gateway,
		reconstructor:  cfg.Reconstructor,
		identity:       cfg.Identity,
		successURL:     cfg.SuccessURL,
		cancelURL:      cfg.CancelURL,
		gatewayTimeout: timeout,
	}
}

// Cart Handlers

func (h *Handlers) AddToCart(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ProductID string `json:"product_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	product, err := h.catalog.GetProduct(r.Context(), req.ProductID)
	if err != nil {
		if errors.Is(err, catalog.ErrProductUnavailable) {
			http.Error(w, "Product unavailable", http.StatusNotFound)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	h.store.Add(product)
	w.WriteHeader(http.StatusOK)
}

func (h *Handlers) RemoveFromCart(w http.ResponseWriter, r *http.Request) {
	productID := strings.TrimPrefix(r.URL.Path, "/cart/items/")
	h.store.Remove(productID)
	w.WriteHeader(http.StatusOK)
}

func (h *Handlers) GetCart(w http.ResponseWriter, r *http.Request) {
	items, total := h.store.Snapshot()

	type cartItem struct {
		ProductID string `json:"product_id"`
		Title     string `json:"title"`
		UnitPrice string `json:"unit_price"`
		Quantity  int    `json:"quantity"`
		Image     string `json:"image,omitempty"`
	}

	resp := struct {
		Items []cartItem `json:"items"`
		Total string     `json:"total"`
	}{Items: make([]cartItem, len(items)), Total: total.StringFixed(2)}

	for i, item := range items {
		image := ""
		if urls := item.Product.ImageURLs(); len(urls) > 0 {
			image = urls[0]
		}
		resp.Items[i] = cartItem{
			ProductID: item.Product.ID,
			Title:     item.Product.Title,
			UnitPrice: item.Product.Price.StringFixed(2),
			Quantity:  item.Quantity,
			Image:     image,
		}
	}

	respondJSON(w, http.StatusOK, resp)
}

func (h *Handlers) ClearCart(w http.ResponseWriter, r *http.Request) {
	h.store.Clear()
	w.WriteHeader(http.StatusOK)
}

// Checkout Handlers

func (h *Handlers) CreateCheckoutSession(w http.ResponseWriter, r *http.Request) {
	items := h.store.Items()

	req, err := h.builder.Build(items, h.successURL, h.cancelURL)
	if err != nil {
		if errors.Is(err, checkout.ErrEmptyCart) {
			http.Error(w, "Cart is empty", http.StatusConflict)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	attemptID := uuid.New().String()
	log.Printf("[API] Checkout attempt %s: %d line items", attemptID, len(req.LineItems))

	ctx, cancel := context.WithTimeout(r.Context(), h.gatewayTimeout)
	defer cancel()

	session, err := h.gateway.CreateSession(ctx, req)
	if err != nil {
		switch {
		case errors.Is(err, gateway.ErrGatewayRejected):
			http.Error(w, "Checkout request rejected", http.StatusUnprocessableEntity)
		case errors.Is(err, gateway.ErrGatewayUnavailable):
			http.Error(w, "Unable to start checkout, try again", http.StatusBadGateway)
		default:
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
		return
	}

	log.Printf("[API] Checkout attempt %s: session %s created", attemptID, session.ID)
	respondJSON(w, http.StatusCreated, session)
}

// Order Handlers

func (h *Handlers) GetOrderSummary(w http.ResponseWriter, r *http.Request) {
	sessionID := r.URL.Query().Get("session_id")
	if sessionID == "" {
		http.Error(w, "session_id is required", http.StatusBadRequest)
		return
	}

	summary, err := h.reconstructor.Reconstruct(r.Context(), sessionID)
	if err != nil {
		switch {
		case errors.Is(err, gateway.ErrSessionNotFound):
			http.Error(w, "Order not found", http.StatusNotFound)
		case errors.Is(err, gateway.ErrGatewayUnavailable):
			http.Error(w, "Order summary temporarily unavailable", http.StatusBadGateway)
		case errors.Is(err, order.ErrMalformedLineItems):
			http.Error(w, "Order summary unavailable", http.StatusInternalServerError)
		default:
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
		return
	}

	resp := struct {
		Greeting string         `json:"greeting"`
		Subtotal string         `json:"subtotal"`
		Shipping string         `json:"shipping"`
		Total    string         `json:"total"`
		Order    *order.Summary `json:"order"`
	}{
		Greeting: h.identity.DisplayName(r),
		Subtotal: money.Format(summary.SubtotalMinorUnits),
		Shipping: money.Format(summary.ShippingMinorUnits),
		Total:    money.Format(summary.TotalMinorUnits),
		Order:    summary,
	}

	respondJSON(w, http.StatusOK, resp)
}

// Helper functions

func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

package api

import (
	"context"
	"fmt"

	"github.com/example/shop-checkout/internal/catalog"
	"github.com/example/shop-checkout/internal/checkout"
	"github.com/example/shop-checkout/internal/gateway"
)

type mockCatalog struct {
	products map[string]catalog.Product
}

func newMockCatalog(products ...catalog.Product) *mockCatalog {
	m := &mockCatalog{products: make(map[string]catalog.Product)}
	for _, p := range products {
		m.products[p.ID] = p
	}
	return m
}

func (m *mockCatalog) GetProduct(ctx context.Context, id string) (catalog.Product, error) {
	p, ok := m.products[id]
	if !ok {
		return catalog.Product{}, fmt.Errorf("%w: %s", catalog.ErrProductUnavailable, id)
	}
	return p, nil
}

type mockGateway struct {
	sessions  map[string][]gateway.SessionLineItem
	createErr error
	fetchErr  error
	nextID    int
}

func newMockGateway() *mockGateway {
	return &mockGateway{sessions: make(map[string][]gateway.SessionLineItem)}
}

func (m *mockGateway) CreateSession(ctx context.Context, req checkout.Request) (gateway.Session, error) {
	if m.createErr != nil {
		return gateway.Session{}, m.createErr
	}

	m.nextID++
	id := fmt.Sprintf("cs_test_%d", m.nextID)

	items := make([]gateway.SessionLineItem, len(req.LineItems))
	for i, li := range req.LineItems {
		items[i] = gateway.SessionLineItem{
			Description:         li.ProductName,
			Quantity:            li.Quantity,
			UnitAmountMinorUnit: li.UnitAmountMinorUnit,
		}
	}
	m.sessions[id] = items

	return gateway.Session{ID: id, RedirectURL: "https://pay.example.com/" + id}, nil
}

func (m *mockGateway) FetchSessionLineItems(ctx context.Context, sessionID string) ([]gateway.SessionLineItem, error) {
	if m.fetchErr != nil {
		return nil, m.fetchErr
	}
	items, ok := m.sessions[sessionID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", gateway.ErrSessionNotFound, sessionID)
	}
	return items, nil
}

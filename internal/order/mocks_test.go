package order

import (
	"context"
	"fmt"

	"github.com/example/shop-checkout/internal/checkout"
	"github.com/example/shop-checkout/internal/gateway"
)

// MockGateway is an in-memory gateway for tests. Sessions are "settled" the
// moment they are created.
type MockGateway struct {
	Sessions    map[string][]gateway.SessionLineItem
	CreateCalls []checkout.Request
	FetchCalls  []string
	CreateErr   error
	FetchErr    error
	nextID      int
}

func NewMockGateway() *MockGateway {
	return &MockGateway{Sessions: make(map[string][]gateway.SessionLineItem)}
}

func (m *MockGateway) CreateSession(ctx context.Context, req checkout.Request) (gateway.Session, error) {
	m.CreateCalls = append(m.CreateCalls, req)
	if m.CreateErr != nil {
		return gateway.Session{}, m.CreateErr
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
	m.Sessions[id] = items

	return gateway.Session{ID: id, RedirectURL: "https://pay.example.com/" + id}, nil
}

func (m *MockGateway) FetchSessionLineItems(ctx context.Context, sessionID string) ([]gateway.SessionLineItem, error) {
	m.FetchCalls = append(m.FetchCalls, sessionID)
	if m.FetchErr != nil {
		return nil, m.FetchErr
	}

	items, ok := m.Sessions[sessionID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", gateway.ErrSessionNotFound, sessionID)
	}
	return items, nil
}

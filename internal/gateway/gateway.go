package gateway

import (
	"context"
	"errors"

	"github.com/example/shop-checkout/internal/checkout"
	"github.com/example/shop-checkout/internal/money"
)

var (
	// ErrGatewayUnavailable is a transport-level failure (including timeout).
	// The caller may retry with the same deterministic request, but must not
	// assume the provider saw nothing: the session may or may not exist.
	ErrGatewayUnavailable = errors.New("payment gateway unavailable")

	// ErrGatewayRejected means the provider refused the request itself.
	// Terminal; retrying the same request cannot succeed.
	ErrGatewayRejected = errors.New("payment gateway rejected the request")

	// ErrSessionNotFound means the session id is unknown or not yet settled.
	ErrSessionNotFound = errors.New("checkout session not found")
)

// Session is the provider's opaque handle for one checkout attempt. It is
// created by the provider, held only long enough to redirect, and never
// mutated locally.
type Session struct {
	ID          string `json:"id"`
	RedirectURL string `json:"url"`
}

// SessionLineItem is one settled line item from the provider's record.
// A line item the provider returned without a price carries a negative
// amount, which reconstruction rejects rather than defaulting to zero.
type SessionLineItem struct {
	Description         string
	Quantity            int64
	UnitAmountMinorUnit money.MinorUnits
}

// Gateway is the payment provider boundary. The core depends only on these
// two operations; the provider's internals are out of scope.
type Gateway interface {
	CreateSession(ctx context.Context, req checkout.Request) (Session, error)
	FetchSessionLineItems(ctx context.Context, sessionID string) ([]SessionLineItem, error)
}

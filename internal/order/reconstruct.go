package order

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/example/shop-checkout/internal/gateway"
	"github.com/example/shop-checkout/internal/money"
)

// ErrMalformedLineItems means the provider's record could not be priced.
// The whole reconstruction fails; a summary with silently zeroed amounts is
// worse than no summary.
var ErrMalformedLineItems = errors.New("provider line items malformed")

// LineItem is one display-ready order line, copied unchanged from the
// provider's settled record.
type LineItem struct {
	Description         string           `json:"description"`
	Quantity            int64            `json:"quantity"`
	UnitAmountMinorUnit money.MinorUnits `json:"unit_amount_minor_units"`
}

// Summary is the post-payment order breakdown. It is built only from the
// provider's record for the session id: the local cart may have been
// cleared, mutated, or never materialized by the time this is computed.
type Summary struct {
	SessionID          string           `json:"session_id"`
	LineItems          []LineItem       `json:"line_items"`
	SubtotalMinorUnits money.MinorUnits `json:"subtotal_minor_units"`
	ShippingMinorUnits money.MinorUnits `json:"shipping_minor_units"`
	TotalMinorUnits    money.MinorUnits `json:"total_minor_units"`
}

// Reconstructor rebuilds order summaries from the payment provider's
// authoritative session records.
type Reconstructor struct {
	gateway  gateway.Gateway
	shipping money.MinorUnits // flat fee per deployment configuration
}

func NewReconstructor(gw gateway.Gateway, shipping money.MinorUnits) *Reconstructor {
	return &Reconstructor{gateway: gw, shipping: shipping}
}

// Reconstruct fetches the session's settled line items and recomputes the
// display-ready summary. Idempotent: the provider's record is immutable
// after settlement, so repeated calls return the same summary.
func (r *Reconstructor) Reconstruct(ctx context.Context, sessionID string) (*Summary, error) {
	items, err := r.gateway.FetchSessionLineItems(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	summary := &Summary{
		SessionID:          sessionID,
		LineItems:          make([]LineItem, len(items)),
		ShippingMinorUnits: r.shipping,
	}

	for i, item := range items {
		if item.Description == "" {
			return nil, fmt.Errorf("%w: line item %d has no description", ErrMalformedLineItems, i)
		}
		if item.Quantity < 1 {
			return nil, fmt.Errorf("%w: line item %q has quantity %d", ErrMalformedLineItems, item.Description, item.Quantity)
		}
		if item.UnitAmountMinorUnit < 0 {
			return nil, fmt.Errorf("%w: line item %q has no price", ErrMalformedLineItems, item.Description)
		}

		summary.LineItems[i] = LineItem{
			Description:         item.Description,
			Quantity:            item.Quantity,
			UnitAmountMinorUnit: item.UnitAmountMinorUnit,
		}
		summary.SubtotalMinorUnits += item.UnitAmountMinorUnit * money.MinorUnits(item.Quantity)
	}

	summary.TotalMinorUnits = summary.SubtotalMinorUnits + summary.ShippingMinorUnits

	log.Printf("[Order] Reconstructed session %s: %d items, subtotal %d, total %d",
		sessionID, len(summary.LineItems), summary.SubtotalMinorUnits, summary.TotalMinorUnits)

	return summary, nil
}

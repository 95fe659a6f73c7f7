package gateway

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/client"

	"github.com/example/shop-checkout/internal/checkout"
	"github.com/example/shop-checkout/internal/money"
)

// StripeGateway implements Gateway against the Stripe Checkout API.
type StripeGateway struct {
	api *client.API
}

func NewStripeGateway(secretKey string) *StripeGateway {
	api := &client.API{}
	api.Init(secretKey, nil)
	return &StripeGateway{api: api}
}

// CreateSession creates a hosted checkout session in payment mode. The
// success URL is passed through verbatim, so it may carry the provider's
// {CHECKOUT_SESSION_ID} placeholder for the post-payment redirect.
func (g *StripeGateway) CreateSession(ctx context.Context, req checkout.Request) (Session, error) {
	lineItems := make([]*stripe.CheckoutSessionLineItemParams, len(req.LineItems))
	for i, item := range req.LineItems {
		lineItems[i] = &stripe.CheckoutSessionLineItemParams{
			Quantity: stripe.Int64(item.Quantity),
			PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
				Currency:   stripe.String(item.Currency),
				UnitAmount: stripe.Int64(int64(item.UnitAmountMinorUnit)),
				ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
					Name:   stripe.String(item.ProductName),
					Images: stripe.StringSlice(item.ProductImages),
				},
			},
		}
	}

	params := &stripe.CheckoutSessionParams{
		Mode:               stripe.String(string(stripe.CheckoutSessionModePayment)),
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
		LineItems:          lineItems,
		SuccessURL:         stripe.String(req.SuccessURL),
		CancelURL:          stripe.String(req.CancelURL),
	}
	params.Context = ctx
	for key, value := range req.Metadata {
		params.AddMetadata(key, value)
	}

	session, err := g.api.CheckoutSessions.New(params)
	if err != nil {
		mapped := mapStripeError(err)
		log.Printf("[Gateway] Create session failed: %v", mapped)
		return Session{}, mapped
	}

	return Session{ID: session.ID, RedirectURL: session.URL}, nil
}

// FetchSessionLineItems returns the provider's authoritative line items for
// a settled session.
func (g *StripeGateway) FetchSessionLineItems(ctx context.Context, sessionID string) ([]SessionLineItem, error) {
	if sessionID == "" {
		return nil, fmt.Errorf("%w: empty session id", ErrSessionNotFound)
	}

	params := &stripe.CheckoutSessionListLineItemsParams{
		Session: stripe.String(sessionID),
	}
	params.Context = ctx

	var items []SessionLineItem
	iter := g.api.CheckoutSessions.ListLineItems(params)
	for iter.Next() {
		li := iter.LineItem()
		unit := money.MinorUnits(-1)
		if li.Price != nil {
			unit = money.MinorUnits(li.Price.UnitAmount)
		}
		items = append(items, SessionLineItem{
			Description:         li.Description,
			Quantity:            li.Quantity,
			UnitAmountMinorUnit: unit,
		})
	}
	if err := iter.Err(); err != nil {
		mapped := mapStripeError(err)
		log.Printf("[Gateway] Fetch line items for %s failed: %v", sessionID, mapped)
		return nil, mapped
	}

	return items, nil
}

// mapStripeError translates provider errors into the gateway taxonomy.
// resource_missing is checked before the type: Stripe reports it as an
// invalid_request_error, but for the caller it is a bad id, not a bad request.
func mapStripeError(err error) error {
	var stripeErr *stripe.Error
	if errors.As(err, &stripeErr) {
		switch {
		case stripeErr.Code == stripe.ErrorCodeResourceMissing:
			return fmt.Errorf("%w: %s", ErrSessionNotFound, stripeErr.Msg)
		case stripeErr.Type == stripe.ErrorTypeInvalidRequest || stripeErr.Type == stripe.ErrorTypeCard:
			return fmt.Errorf("%w: %s", ErrGatewayRejected, stripeErr.Msg)
		default:
			return fmt.Errorf("%w: %s", ErrGatewayUnavailable, stripeErr.Msg)
		}
	}
	// Transport failure, timeout, or cancellation before a response arrived.
	return fmt.Errorf("%w: %v", ErrGatewayUnavailable, err)
}

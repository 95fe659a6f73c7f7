package checkout

import (
	"encoding/json"
	"errors"

	"github.com/example/shop-checkout/internal/cart"
	"github.com/example/shop-checkout/internal/money"
)

var ErrEmptyCart = errors.New("cart is empty")

// MetadataImagesKey holds a JSON array of per-item image URLs in the request
// metadata, so a later stateless reconstruction can render thumbnails without
// re-querying the catalog.
const MetadataImagesKey = "images"

// LineItem is the provider-facing projection of one cart item. Money is
// already converted to integer minor units; no decimal leaves this package.
type LineItem struct {
	Currency            string
	UnitAmountMinorUnit money.MinorUnits
	ProductName         string
	ProductImages       []string
	Quantity            int64
}

// Request is a provider-agnostic checkout request. It is built once per
// checkout attempt and never mutated.
type Request struct {
	LineItems  []LineItem
	SuccessURL string
	CancelURL  string
	Metadata   map[string]string
}

// Builder projects cart items into checkout requests.
type Builder struct {
	currency string
}

func NewBuilder(currency string) *Builder {
	return &Builder{currency: currency}
}

// Build converts a cart snapshot into a checkout request.
//
// It is a pure function: equal items always yield an equivalent request, so
// the caller may retry a transport failure with the same request. A request
// with zero line items must never reach the gateway; Build fails with
// ErrEmptyCart instead.
func (b *Builder) Build(items []cart.Item, successURL, cancelURL string) (Request, error) {
	if len(items) == 0 {
		return Request{}, ErrEmptyCart
	}

	lineItems := make([]LineItem, len(items))
	metaImages := make([]string, len(items))
	for i, item := range items {
		images := item.Product.ImageURLs()
		lineItems[i] = LineItem{
			Currency:            b.currency,
			UnitAmountMinorUnit: money.ToMinorUnits(item.Product.Price),
			ProductName:         item.Product.Title,
			ProductImages:       images,
			Quantity:            int64(item.Quantity),
		}
		if len(images) > 0 {
			metaImages[i] = images[0]
		}
	}

	// Marshaling a []string is deterministic, so metadata is byte-for-byte
	// stable across retries.
	imagesJSON, err := json.Marshal(metaImages)
	if err != nil {
		return Request{}, err
	}

	return Request{
		LineItems:  lineItems,
		SuccessURL: successURL,
		CancelURL:  cancelURL,
		Metadata:   map[string]string{MetadataImagesKey: string(imagesJSON)},
	}, nil
}

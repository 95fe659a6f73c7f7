package cart

import "context"

// ItemRecord is the persisted shape of one cart line. The catalog owns
// everything else about the product, so only the id and quantity survive a
// restart; products are re-fetched on load.
type ItemRecord struct {
	ProductID string
	Quantity  int
}

// Repository persists cart contents across restarts. Optional: an in-memory
// cart is valid for the lifetime of a shopping session without one.
type Repository interface {
	Save(ctx context.Context, cartID string, items []ItemRecord) error
	Load(ctx context.Context, cartID string) ([]ItemRecord, error)
}

package cart

const (
	EventItemAdded   = "cart.item_added"
	EventItemRemoved = "cart.item_removed"
	EventCartCleared = "cart.cleared"
)

// Event describes a cart mutation for observers (e.g. UI notifications).
// It is emitted after the mutation is applied.
type Event struct {
	Type      string `json:"type"`
	CartID    string `json:"cart_id"`
	ProductID string `json:"product_id,omitempty"`
}

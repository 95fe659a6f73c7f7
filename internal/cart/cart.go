package cart

import (
	"context"
	"log"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/example/shop-checkout/internal/catalog"
)

// Item is one cart line: a product and how many of it the shopper wants.
// Quantity is always >= 1; removing a product deletes its entry outright.
type Item struct {
	Product  catalog.Product `json:"product"`
	Quantity int             `json:"quantity"`
}

// Store holds the shopper's in-progress selection. It is an explicitly owned
// instance injected into whatever needs it, not ambient global state.
//
// Items keep insertion order for display. Reads take a consistent snapshot:
// Items and Total never observe a half-applied mutation.
type Store struct {
	mu       sync.RWMutex
	id       string
	items    []Item
	index    map[string]int // product id -> position in items
	repo     Repository     // optional durability, may be nil
	observer func(Event)    // optional mutation hook, may be nil
}

type Option func(*Store)

// WithRepository enables best-effort persistence of the cart's
// {product id, quantity} shape. Persistence failures are logged and never
// fail the mutation.
func WithRepository(repo Repository) Option {
	return func(s *Store) { s.repo = repo }
}

// WithObserver registers a callback invoked after each mutation. The hook is
// notification only; cart correctness does not depend on it.
func WithObserver(observer func(Event)) Option {
	return func(s *Store) { s.observer = observer }
}

func NewStore(cartID string, opts ...Option) *Store {
	s := &Store{
		id:    cartID,
		index: make(map[string]int),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ID returns the cart's identifier.
func (s *Store) ID() string {
	return s.id
}

// Add inserts the product with quantity 1, or increments the existing
// entry's quantity by 1. It never fails for a well-formed product.
func (s *Store) Add(product catalog.Product) {
	s.mu.Lock()
	if pos, ok := s.index[product.ID]; ok {
		s.items[pos].Quantity++
	} else {
		s.index[product.ID] = len(s.items)
		s.items = append(s.items, Item{Product: product, Quantity: 1})
	}
	s.persistLocked()
	s.mu.Unlock()

	s.notify(Event{Type: EventItemAdded, CartID: s.id, ProductID: product.ID})
}

// Remove deletes the entry for the product id. Removing an absent product is
// a no-op, not an error.
func (s *Store) Remove(productID string) {
	s.mu.Lock()
	pos, ok := s.index[productID]
	if ok {
		s.items = append(s.items[:pos], s.items[pos+1:]...)
		delete(s.index, productID)
		for i := pos; i < len(s.items); i++ {
			s.index[s.items[i].Product.ID] = i
		}
		s.persistLocked()
	}
	s.mu.Unlock()

	if ok {
		s.notify(Event{Type: EventItemRemoved, CartID: s.id, ProductID: productID})
	}
}

// Clear empties the cart, e.g. after a completed checkout redirect.
func (s *Store) Clear() {
	s.mu.Lock()
	s.items = nil
	s.index = make(map[string]int)
	s.persistLocked()
	s.mu.Unlock()

	s.notify(Event{Type: EventCartCleared, CartID: s.id})
}

// Restore replaces the cart's contents with previously persisted items,
// e.g. at startup. It does not notify observers and does not write back to
// the repository.
func (s *Store) Restore(items []Item) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = make([]Item, 0, len(items))
	s.index = make(map[string]int)
	for _, item := range items {
		if item.Quantity < 1 {
			continue
		}
		if _, ok := s.index[item.Product.ID]; ok {
			continue
		}
		s.index[item.Product.ID] = len(s.items)
		s.items = append(s.items, item)
	}
}

// Items returns a snapshot of the cart in insertion order. Later mutations
// do not leak into a previously obtained snapshot.
func (s *Store) Items() []Item {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshotLocked()
}

// Total returns the derived sum of price x quantity over the current items.
// It is recomputed on every call, never cached.
func (s *Store) Total() decimal.Decimal {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return sumLocked(s.items)
}

// Snapshot returns items and total read from one consistent state.
func (s *Store) Snapshot() ([]Item, decimal.Decimal) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshotLocked(), sumLocked(s.items)
}

func (s *Store) snapshotLocked() []Item {
	items := make([]Item, len(s.items))
	copy(items, s.items)
	return items
}

func sumLocked(items []Item) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.Product.Price.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	return total
}

func (s *Store) persistLocked() {
	if s.repo == nil {
		return
	}
	records := make([]ItemRecord, len(s.items))
	for i, item := range s.items {
		records[i] = ItemRecord{ProductID: item.Product.ID, Quantity: item.Quantity}
	}
	if err := s.repo.Save(context.Background(), s.id, records); err != nil {
		log.Printf("[Cart] Failed to persist cart %s: %v", s.id, err)
	}
}

func (s *Store) notify(event Event) {
	if s.observer != nil {
		s.observer(event)
	}
}

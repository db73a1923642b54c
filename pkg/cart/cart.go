// Package cart maintains the authoritative in-memory shopping cart,
// synchronized to durable local storage. Mutations never fail loudly:
// invalid input is clamped into range or dropped with a diagnostic, and
// persistence problems are logged while the in-memory cart stays
// authoritative.
package cart

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/storekit/storefront_sdk_go/internal/validate"
	"github.com/storekit/storefront_sdk_go/pkg/localstore"
)

const (
	// MaxQuantity is the per-line quantity ceiling; overflow is capped.
	MaxQuantity = 99
	// MaxDistinctItems is the hard cap on distinct product lines.
	MaxDistinctItems = 50
	// MaxNameLen bounds the stored product name.
	MaxNameLen = 255
	// DefaultKey is the storage key holding the cart snapshot.
	DefaultKey = "cart"
)

// Item is one cart line. The JSON tags define the persisted snapshot format.
type Item struct {
	ProductID string  `json:"productId"`
	Quantity  int     `json:"quantity"`
	Price     float64 `json:"price"`
	Name      string  `json:"name"`
	Image     string  `json:"image,omitempty"`
}

// Option configures a Store.
type Option func(*Store)

// WithLogger assigns the diagnostics logger (default: no-op).
func WithLogger(log *zap.Logger) Option {
	return func(s *Store) {
		if log != nil {
			s.log = log
		}
	}
}

// WithKey overrides the snapshot storage key.
func WithKey(key string) Option {
	return func(s *Store) {
		if strings.TrimSpace(key) != "" {
			s.key = key
		}
	}
}

// Store owns the cart state and the lifecycle of its persisted snapshot.
// Order of items is first-add order.
type Store struct {
	storage localstore.Store
	key     string
	log     *zap.Logger

	mu          sync.Mutex
	items       []Item
	initialized bool
}

// New constructs a Store. Call Init before mutating: writes to storage only
// begin once the snapshot has been restored, so a not-yet-loaded snapshot is
// never overwritten by an empty cart.
func New(storage localstore.Store, opts ...Option) (*Store, error) {
	if storage == nil {
		return nil, errors.New("cart: storage is required")
	}
	s := &Store{
		storage: storage,
		key:     DefaultKey,
		log:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Init restores the persisted snapshot. A missing snapshot starts an empty
// cart; a corrupt one is discarded and deleted from storage (self-healing,
// not an error). Only context cancellation is propagated.
func (s *Store) Init(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.initialized {
		return nil
	}

	data, err := s.storage.Get(ctx, s.key)
	if err != nil {
		s.log.Warn("cart snapshot read failed, starting empty", zap.Error(err))
		s.initialized = true
		return nil
	}
	if data == nil {
		s.initialized = true
		return nil
	}

	items, ok := decodeSnapshot(data)
	if !ok {
		s.log.Warn("corrupt cart snapshot discarded", zap.String("key", s.key))
		if err := s.storage.Delete(ctx, s.key); err != nil {
			s.log.Warn("corrupt cart snapshot delete failed", zap.Error(err))
		}
		s.initialized = true
		return nil
	}

	for i := range items {
		items[i] = sanitize(items[i])
	}
	s.items = items
	s.initialized = true
	return nil
}

// Add merges the item into the cart. With an existing productId the
// quantities accumulate, capped at MaxQuantity; a new productId appends at
// the end unless the distinct-item cap is reached. Returns whether the cart
// changed.
func (s *Store) Add(ctx context.Context, item Item) bool {
	if strings.TrimSpace(item.ProductID) == "" {
		s.log.Debug("cart add ignored: empty productId")
		return false
	}
	item = sanitize(item)

	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.items {
		if s.items[i].ProductID == item.ProductID {
			q := s.items[i].Quantity + item.Quantity
			if q > MaxQuantity {
				q = MaxQuantity
			}
			s.items[i].Quantity = q
			s.persistLocked(ctx)
			return true
		}
	}

	if len(s.items) >= MaxDistinctItems {
		s.log.Debug("cart add rejected: distinct item cap reached",
			zap.String("productId", item.ProductID))
		return false
	}

	s.items = append(s.items, item)
	s.persistLocked(ctx)
	return true
}

// Remove deletes the line with the given productId. No-op when absent.
func (s *Store) Remove(ctx context.Context, productID string) bool {
	productID = strings.TrimSpace(productID)
	if productID == "" {
		s.log.Debug("cart remove ignored: empty productId")
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.removeLocked(ctx, productID)
}

// UpdateQuantity sets the quantity for a line. Quantities at or below zero
// remove the line; values above MaxQuantity are capped.
func (s *Store) UpdateQuantity(ctx context.Context, productID string, quantity int) bool {
	productID = strings.TrimSpace(productID)
	if productID == "" {
		s.log.Debug("cart update ignored: empty productId")
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if quantity <= 0 {
		return s.removeLocked(ctx, productID)
	}
	if quantity > MaxQuantity {
		quantity = MaxQuantity
	}
	for i := range s.items {
		if s.items[i].ProductID == productID {
			s.items[i].Quantity = quantity
			s.persistLocked(ctx)
			return true
		}
	}
	return false
}

// Clear empties the cart and deletes the persisted snapshot.
func (s *Store) Clear(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = nil
	if err := s.storage.Delete(ctx, s.key); err != nil {
		s.log.Warn("cart snapshot delete failed", zap.Error(err))
	}
}

// Items returns a copy of the cart lines in first-add order.
func (s *Store) Items() []Item {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Item, len(s.items))
	copy(out, s.items)
	return out
}

// Total is the sum of price*quantity over all lines, rounded to 2 decimals.
// Recomputed on every call; never cached.
func (s *Store) Total() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	var total float64
	for _, it := range s.items {
		total += it.Price * float64(it.Quantity)
	}
	return math.Round(total*100) / 100
}

// ItemCount is the sum of quantities over all lines.
func (s *Store) ItemCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int
	for _, it := range s.items {
		n += it.Quantity
	}
	return n
}

// Len reports the number of distinct product lines.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

func (s *Store) removeLocked(ctx context.Context, productID string) bool {
	for i := range s.items {
		if s.items[i].ProductID == productID {
			s.items = append(s.items[:i], s.items[i+1:]...)
			s.persistLocked(ctx)
			return true
		}
	}
	return false
}

// persistLocked writes the full cart through to storage. Runs only after
// Init; failures are logged, never surfaced.
func (s *Store) persistLocked(ctx context.Context) {
	if !s.initialized {
		return
	}
	items := s.items
	if items == nil {
		items = []Item{}
	}
	data, err := json.Marshal(items)
	if err != nil {
		s.log.Warn("cart snapshot encode failed", zap.Error(err))
		return
	}
	if err := s.storage.Set(ctx, s.key, data); err != nil {
		s.log.Warn("cart snapshot write failed", zap.Error(err))
	}
}

// sanitize coerces an incoming item into the valid range: trimmed productId,
// quantity clamped to [1, MaxQuantity], price floored at 0 (NaN treated as
// 0), name trimmed and truncated, image trimmed.
func sanitize(item Item) Item {
	item.ProductID = strings.TrimSpace(item.ProductID)
	item.Quantity = validate.Clamp(item.Quantity, 1, MaxQuantity)
	if math.IsNaN(item.Price) || item.Price < 0 {
		item.Price = 0
	}
	item.Name = validate.Truncate(strings.TrimSpace(item.Name), MaxNameLen)
	item.Image = strings.TrimSpace(item.Image)
	return item
}

// decodeSnapshot applies the structural validity predicate: the snapshot must
// be a JSON array of items whose productId is a non-empty string, quantity a
// positive number and price non-negative. Any violation rejects the whole
// snapshot.
func decodeSnapshot(data []byte) ([]Item, bool) {
	var items []Item
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, false
	}
	for _, it := range items {
		if strings.TrimSpace(it.ProductID) == "" || it.Quantity <= 0 || it.Price < 0 {
			return nil, false
		}
	}
	return items, true
}

package cart

import (
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/arjan001/tezzaz-hair-kenya-glow-sub000/internal/entity"
)

// Storage keys.
const (
	CartKey     = "cart"
	WishlistKey = "wishlist"
)

// Catalog resolves product IDs read back from storage.
type Catalog interface {
	Product(id string) (entity.Product, bool)
}

// ProductIndex is a Catalog over a fixed product list.
type ProductIndex map[string]entity.Product

// NewProductIndex indexes products by ID.
func NewProductIndex(products []entity.Product) ProductIndex {
	idx := make(ProductIndex, len(products))
	for _, p := range products {
		idx[p.ID] = p
	}
	return idx
}

func (idx ProductIndex) Product(id string) (entity.Product, bool) {
	p, ok := idx[id]
	return p, ok
}

// storedLine is the persisted form of a cart line.
type storedLine struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

// Store holds one session's cart lines and wishlist.
type Store struct {
	mu       sync.Mutex
	storage  Storage
	lines    []entity.CartLine
	wishlist []string

	onAdded        func(entity.CartLine)
	onPersistError func(key string, err error)
	logger         *slog.Logger
}

// Option customises a Store.
type Option func(*Store)

// WithOnAdded registers a callback fired after AddToCart, with the
// resulting line. Views use it to open the cart drawer.
func WithOnAdded(fn func(entity.CartLine)) Option {
	return func(s *Store) { s.onAdded = fn }
}

// WithOnPersistError registers a callback fired when a write to storage fails.
// It runs with the store locked and must not call back into the store.
func WithOnPersistError(fn func(key string, err error)) Option {
	return func(s *Store) { s.onPersistError = fn }
}

func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) { s.logger = logger }
}

// NewStore loads the cart and wishlist from storage. Anything unreadable
// comes back empty.
func NewStore(storage Storage, catalog Catalog, opts ...Option) *Store {
	s := &Store{
		storage: storage,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.lines = s.loadLines(catalog)
	s.wishlist = s.loadWishlist()
	return s
}

func (s *Store) loadLines(catalog Catalog) []entity.CartLine {
	var stored []storedLine
	if !s.read(CartKey, &stored) {
		return nil
	}

	var lines []entity.CartLine
	for _, sl := range stored {
		if sl.Quantity <= 0 {
			continue
		}
		product, ok := catalog.Product(sl.ProductID)
		if !ok {
			s.logger.Debug("Dropping cart line for unknown product", "product_id", sl.ProductID)
			continue
		}
		if i := indexOfLine(lines, sl.ProductID); i >= 0 {
			lines[i].Quantity += sl.Quantity
			continue
		}
		lines = append(lines, entity.CartLine{Product: product, Quantity: sl.Quantity})
	}
	return lines
}

func (s *Store) loadWishlist() []string {
	var stored []string
	if !s.read(WishlistKey, &stored) {
		return nil
	}

	var ids []string
	for _, id := range stored {
		if id == "" || indexOf(ids, id) >= 0 {
			continue
		}
		ids = append(ids, id)
	}
	return ids
}

func (s *Store) read(key string, dst any) bool {
	raw, ok, err := s.storage.Get(key)
	if err != nil {
		s.logger.Warn("Failed to read from storage, starting empty", "key", key, "err", err)
		return false
	}
	if !ok || raw == "" {
		return false
	}
	if err := json.Unmarshal([]byte(raw), dst); err != nil {
		s.logger.Debug("Corrupt value in storage, starting empty", "key", key, "err", err)
		return false
	}
	return true
}

// AddToCart increments the product's line or inserts a new one.
// Non-positive quantities are ignored.
func (s *Store) AddToCart(product entity.Product, quantity int) {
	if quantity <= 0 {
		return
	}

	s.mu.Lock()
	var line entity.CartLine
	if i := indexOfLine(s.lines, product.ID); i >= 0 {
		s.lines[i].Quantity += quantity
		line = s.lines[i]
	} else {
		line = entity.CartLine{Product: product, Quantity: quantity}
		s.lines = append(s.lines, line)
	}
	s.persistLines()
	onAdded := s.onAdded
	s.mu.Unlock()

	if onAdded != nil {
		onAdded(line)
	}
}

// RemoveFromCart deletes the product's line if present.
func (s *Store) RemoveFromCart(productID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := indexOfLine(s.lines, productID)
	if i < 0 {
		return
	}
	s.lines = append(s.lines[:i], s.lines[i+1:]...)
	s.persistLines()
}

// UpdateQuantity sets the absolute quantity of a line. Zero or less removes it.
func (s *Store) UpdateQuantity(productID string, quantity int) {
	if quantity <= 0 {
		s.RemoveFromCart(productID)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	i := indexOfLine(s.lines, productID)
	if i < 0 {
		return
	}
	s.lines[i].Quantity = quantity
	s.persistLines()
}

// ClearCart empties all lines. The wishlist is untouched.
func (s *Store) ClearCart() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.lines = nil
	s.persistLines()
}

// Lines returns a copy of the cart lines in insertion order.
func (s *Store) Lines() []entity.CartLine {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]entity.CartLine, len(s.lines))
	copy(out, s.lines)
	return out
}

// CartTotal returns Σ price × quantity.
func (s *Store) CartTotal() decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()

	total := decimal.Zero
	for _, l := range s.lines {
		total = total.Add(l.Subtotal())
	}
	return total
}

// CartCount returns Σ quantity.
func (s *Store) CartCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	count := 0
	for _, l := range s.lines {
		count += l.Quantity
	}
	return count
}

// ToggleWishlist adds the product if absent and removes it if present.
// It reports whether the product is wishlisted afterwards.
func (s *Store) ToggleWishlist(productID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	var added bool
	if i := indexOf(s.wishlist, productID); i >= 0 {
		s.wishlist = append(s.wishlist[:i], s.wishlist[i+1:]...)
	} else {
		s.wishlist = append(s.wishlist, productID)
		added = true
	}
	s.persist(WishlistKey, s.wishlist)
	return added
}

func (s *Store) IsInWishlist(productID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return indexOf(s.wishlist, productID) >= 0
}

// Wishlist returns a copy of the wishlisted product IDs.
func (s *Store) Wishlist() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]string, len(s.wishlist))
	copy(out, s.wishlist)
	return out
}

// persistLines must be called with s.mu held.
func (s *Store) persistLines() {
	stored := make([]storedLine, 0, len(s.lines))
	for _, l := range s.lines {
		stored = append(stored, storedLine{ProductID: l.Product.ID, Quantity: l.Quantity})
	}
	s.persist(CartKey, stored)
}

// persist writes through to storage. A failed write keeps the in-memory
// state; the session carries on without durability until the next write.
func (s *Store) persist(key string, v any) {
	payload, err := json.Marshal(v)
	if err == nil {
		err = s.storage.Set(key, string(payload))
	}
	if err != nil {
		s.logger.Error("Failed to persist", "key", key, "err", err)
		if s.onPersistError != nil {
			s.onPersistError(key, err)
		}
	}
}

func indexOfLine(lines []entity.CartLine, productID string) int {
	for i, l := range lines {
		if l.Product.ID == productID {
			return i
		}
	}
	return -1
}

func indexOf(ids []string, id string) int {
	for i, v := range ids {
		if v == id {
			return i
		}
	}
	return -1
}

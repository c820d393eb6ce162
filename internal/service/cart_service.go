package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/arjan001/tezzaz-hair-kenya-glow-sub000/internal/cart"
	"github.com/arjan001/tezzaz-hair-kenya-glow-sub000/internal/entity"
)

// StorageFactory returns the cart storage for one browsing session.
type StorageFactory func(ctx context.Context, sessionID string) cart.Storage

// RedisSessions scopes a RedisStorage per session.
func RedisSessions(storage *cart.RedisStorage) StorageFactory {
	return func(ctx context.Context, sessionID string) cart.Storage {
		return storage.Session(ctx, sessionID)
	}
}

// MemorySessions scopes a MemoryStorage per session.
func MemorySessions(sessions *cart.MemorySessions) StorageFactory {
	return func(_ context.Context, sessionID string) cart.Storage {
		return sessions.Session(sessionID)
	}
}

// CartService opens session carts and validates client input before it
// reaches the store.
type CartService struct {
	catalog *CatalogService
	storage StorageFactory
	onAdded func(sessionID string, line entity.CartLine)
}

func NewCartService(catalog *CatalogService, storage StorageFactory) *CartService {
	return &CartService{
		catalog: catalog,
		storage: storage,
		onAdded: func(sessionID string, line entity.CartLine) {
			slog.Debug("Service: Cart line added", "session_id", sessionID, "product_id", line.Product.ID, "quantity", line.Quantity)
		},
	}
}

// Open loads the session's cart and wishlist.
func (s *CartService) Open(ctx context.Context, sessionID string) (*cart.Store, error) {
	idx, err := s.catalog.Catalog(ctx)
	if err != nil {
		return nil, err
	}
	return s.open(ctx, sessionID, idx), nil
}

func (s *CartService) open(ctx context.Context, sessionID string, idx cart.ProductIndex) *cart.Store {
	return cart.NewStore(s.storage(ctx, sessionID), idx,
		cart.WithOnAdded(func(line entity.CartLine) {
			s.onAdded(sessionID, line)
		}),
	)
}

// AddItem adds quantity of productID to the session's cart.
func (s *CartService) AddItem(ctx context.Context, sessionID, productID string, quantity int) (*cart.Store, error) {
	if quantity <= 0 {
		return nil, ErrInvalidQuantity
	}

	idx, err := s.catalog.Catalog(ctx)
	if err != nil {
		return nil, err
	}
	product, ok := idx.Product(productID)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownProduct, productID)
	}

	slog.Info("Service: Adding item to cart", "session_id", sessionID, "product_id", productID, "quantity", quantity)
	store := s.open(ctx, sessionID, idx)
	store.AddToCart(product, quantity)
	return store, nil
}

// UpdateQuantity sets the absolute quantity of a line; zero removes it.
func (s *CartService) UpdateQuantity(ctx context.Context, sessionID, productID string, quantity int) (*cart.Store, error) {
	if quantity < 0 {
		return nil, ErrInvalidQuantity
	}
	store, err := s.Open(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	store.UpdateQuantity(productID, quantity)
	return store, nil
}

// RemoveItem deletes the product's line from the session's cart.
func (s *CartService) RemoveItem(ctx context.Context, sessionID, productID string) (*cart.Store, error) {
	store, err := s.Open(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	store.RemoveFromCart(productID)
	return store, nil
}

// Clear empties the session's cart and leaves the wishlist alone.
func (s *CartService) Clear(ctx context.Context, sessionID string) (*cart.Store, error) {
	store, err := s.Open(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	store.ClearCart()
	return store, nil
}

// ToggleWishlist flips productID in the session's wishlist and reports
// whether it is wishlisted afterwards.
func (s *CartService) ToggleWishlist(ctx context.Context, sessionID, productID string) (*cart.Store, bool, error) {
	store, err := s.Open(ctx, sessionID)
	if err != nil {
		return nil, false, err
	}
	if !store.IsInWishlist(productID) {
		idx, err := s.catalog.Catalog(ctx)
		if err != nil {
			return nil, false, err
		}
		if _, ok := idx.Product(productID); !ok {
			return nil, false, fmt.Errorf("%w: %s", ErrUnknownProduct, productID)
		}
	}
	return store, store.ToggleWishlist(productID), nil
}

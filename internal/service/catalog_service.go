package service

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/arjan001/tezzaz-hair-kenya-glow-sub000/internal/cart"
	"github.com/arjan001/tezzaz-hair-kenya-glow-sub000/internal/entity"
	"github.com/arjan001/tezzaz-hair-kenya-glow-sub000/internal/repository"
)

// CatalogService serves products and categories from a short-lived in-memory cache.
type CatalogService struct {
	productRepo  repository.ProductRepository
	categoryRepo repository.CategoryRepository
	readTimeout  time.Duration
	ttl          time.Duration
	now          func() time.Time

	mu       sync.Mutex
	products []entity.Product
	loadedAt time.Time
}

func NewCatalogService(
	productRepo repository.ProductRepository,
	categoryRepo repository.CategoryRepository,
	readTimeout time.Duration,
	ttl time.Duration,
) *CatalogService {
	return &CatalogService{
		productRepo:  productRepo,
		categoryRepo: categoryRepo,
		readTimeout:  readTimeout,
		ttl:          ttl,
		now:          time.Now,
	}
}

// ListProducts returns the catalog. A failed read is logged and yields an
// empty list so the shop page still renders.
func (s *CatalogService) ListProducts(ctx context.Context, activeOnly bool) []entity.Product {
	products, err := s.load(ctx)
	if err != nil {
		slog.Warn("Service: Catalog unavailable, serving empty list", "err", err)
		return []entity.Product{}
	}

	out := make([]entity.Product, 0, len(products))
	for _, p := range products {
		if activeOnly && !p.Active {
			continue
		}
		out = append(out, p)
	}
	return out
}

// ListCategories returns the shop categories, or an empty list on failure.
func (s *CatalogService) ListCategories(ctx context.Context) []entity.Category {
	categories, err := readWithRetry(ctx, s.readTimeout, s.categoryRepo.ListCategories)
	if err != nil {
		slog.Warn("Service: Categories unavailable, serving empty list", "err", err)
		return []entity.Category{}
	}
	if categories == nil {
		categories = []entity.Category{}
	}
	return categories
}

// Catalog indexes the active products for resolving cart contents.
func (s *CatalogService) Catalog(ctx context.Context) (cart.ProductIndex, error) {
	products, err := s.load(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCatalogUnavailable, err)
	}

	active := make([]entity.Product, 0, len(products))
	for _, p := range products {
		if p.Active {
			active = append(active, p)
		}
	}
	return cart.NewProductIndex(active), nil
}

func (s *CatalogService) load(ctx context.Context) ([]entity.Product, error) {
	s.mu.Lock()
	if s.products != nil && s.now().Sub(s.loadedAt) < s.ttl {
		products := s.products
		s.mu.Unlock()
		return products, nil
	}
	s.mu.Unlock()

	products, err := readWithRetry(ctx, s.readTimeout, func(ctx context.Context) ([]entity.Product, error) {
		return s.productRepo.ListProducts(ctx, false)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load products: %w", err)
	}
	if products == nil {
		products = []entity.Product{}
	}

	s.mu.Lock()
	s.products = products
	s.loadedAt = s.now()
	s.mu.Unlock()
	return products, nil
}

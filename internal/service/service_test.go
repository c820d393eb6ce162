package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/arjan001/tezzaz-hair-kenya-glow-sub000/internal/cart"
	"github.com/arjan001/tezzaz-hair-kenya-glow-sub000/internal/checkout"
	"github.com/arjan001/tezzaz-hair-kenya-glow-sub000/internal/entity"
	"github.com/arjan001/tezzaz-hair-kenya-glow-sub000/internal/repository"
	"github.com/arjan001/tezzaz-hair-kenya-glow-sub000/internal/repository/memory"
)

type published struct {
	topic string
	key   string
	event any
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []published
	err    error
}

func (p *recordingPublisher) PublishEvent(_ context.Context, topic string, key string, event any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, published{topic: topic, key: key, event: event})
	return nil
}

func (p *recordingPublisher) topics() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.topic)
	}
	return out
}

// stubOrderRepo overrides CreateOrder and delegates everything else.
type stubOrderRepo struct {
	repository.OrderRepository
	create func(ctx context.Context, draft entity.OrderDraft, code string) (*entity.Order, error)
}

func (r *stubOrderRepo) CreateOrder(ctx context.Context, draft entity.OrderDraft, code string) (*entity.Order, error) {
	return r.create(ctx, draft, code)
}

type fixture struct {
	products  *memory.ProductRepository
	orders    *memory.OrderRepository
	events    *memory.EventStore
	publisher *recordingPublisher

	catalog  *CatalogService
	carts    *CartService
	checkout *CheckoutService
	tracking *TrackingService
	admin    *OrderService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()

	products := memory.NewProductRepository()
	require.NoError(t, products.Seed(ctx, repository.SeedProducts()))
	categories := memory.NewCategoryRepository()
	require.NoError(t, categories.Seed(ctx, repository.SeedCategories()))

	events := memory.NewEventStore()
	orders := memory.NewOrderRepository(events)
	publisher := &recordingPublisher{}

	catalog := NewCatalogService(products, categories, time.Second, time.Minute)
	return &fixture{
		products:  products,
		orders:    orders,
		events:    events,
		publisher: publisher,
		catalog:   catalog,
		carts:     NewCartService(catalog, MemorySessions(cart.NewMemorySessions())),
		checkout: NewCheckoutService(orders, publisher,
			checkout.ThresholdPolicy{
				FreeThreshold: checkout.DefaultFreeThreshold,
				BaseFee:       checkout.DefaultBaseFee,
				ZoneFees:      checkout.DefaultZoneFees(),
			},
			checkout.Merchant{Paybill: "247247", AccountName: "Tezzaz Hair & Beauty"},
		),
		tracking: NewTrackingService(orders, time.Second),
		admin:    NewOrderService(orders, events, publisher),
	}
}

func validForm() checkout.DeliveryForm {
	return checkout.DeliveryForm{
		FullName: "Wanjiru Kamau",
		Phone:    "0712 345 678",
		Address:  "Moi Avenue, Nairobi",
		Zone:     checkout.ZoneNairobiCBD,
	}
}

// placeOrder checks out one Gel Nail Polish Set for the session.
func (f *fixture) placeOrder(t *testing.T, sessionID string) *entity.Order {
	t.Helper()
	ctx := context.Background()

	store, err := f.carts.AddItem(ctx, sessionID, "prod-001", 1)
	require.NoError(t, err)
	order, err := f.checkout.PlaceOrder(ctx, store, PlaceOrderRequest{
		SubmissionKey: sessionID,
		Form:          validForm(),
		Confirmation:  "QFT4XYZ Confirmed. Ksh1,050.00 sent to Tezzaz",
	})
	require.NoError(t, err)
	return order
}

var errBoom = errors.New("boom")

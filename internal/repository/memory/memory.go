// Package memory implements the repository ports in process memory. It backs
// the test suites and DATABASE_URL=memory runs.
package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/arjan001/tezzaz-hair-kenya-glow-sub000/internal/entity"
	"github.com/arjan001/tezzaz-hair-kenya-glow-sub000/internal/repository"
)

// ProductRepository keeps the catalog in memory.
type ProductRepository struct {
	mu       sync.RWMutex
	products []entity.Product
}

func NewProductRepository() *ProductRepository {
	return &ProductRepository{}
}

func (r *ProductRepository) ListProducts(_ context.Context, activeOnly bool) ([]entity.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []entity.Product
	for _, p := range r.products {
		if activeOnly && !p.Active {
			continue
		}
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *ProductRepository) Seed(_ context.Context, products []entity.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.products) > 0 {
		return nil
	}
	r.products = append(r.products, products...)
	return nil
}

// CategoryRepository keeps shop categories in memory.
type CategoryRepository struct {
	mu         sync.RWMutex
	categories map[string]entity.Category
}

func NewCategoryRepository() *CategoryRepository {
	return &CategoryRepository{categories: make(map[string]entity.Category)}
}

func (r *CategoryRepository) ListCategories(_ context.Context) ([]entity.Category, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]entity.Category, 0, len(r.categories))
	for _, c := range r.categories {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].SortOrder != out[j].SortOrder {
			return out[i].SortOrder < out[j].SortOrder
		}
		return out[i].Name < out[j].Name
	})
	return out, nil
}

func (r *CategoryRepository) Seed(_ context.Context, categories []entity.Category) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, c := range categories {
		if _, ok := r.categories[c.ID]; !ok {
			r.categories[c.ID] = c
		}
	}
	return nil
}

// EventStore keeps event streams in memory.
type EventStore struct {
	mu      sync.Mutex
	streams map[string][]entity.EventStoreRecord
}

func NewEventStore() *EventStore {
	return &EventStore{streams: make(map[string][]entity.EventStoreRecord)}
}

func (s *EventStore) SaveEvents(_ context.Context, streamID string, streamType string, expectedVersion int, events []entity.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.appendLocked(streamID, streamType, expectedVersion, events)
}

func (s *EventStore) appendLocked(streamID, streamType string, expectedVersion int, events []entity.Event) error {
	current := len(s.streams[streamID])
	if expectedVersion >= 0 && current != expectedVersion {
		return fmt.Errorf("%w: expected version %d, got %d", repository.ErrConcurrency, expectedVersion, current)
	}

	now := time.Now().UTC()
	records := make([]entity.EventStoreRecord, 0, len(events))
	for i, event := range events {
		payload, err := json.Marshal(event)
		if err != nil {
			return fmt.Errorf("failed to marshal event %s: %w", event.EventType(), err)
		}
		records = append(records, entity.EventStoreRecord{
			ID:         uuid.NewString(),
			StreamID:   streamID,
			StreamType: streamType,
			Version:    current + i + 1,
			EventType:  event.EventType(),
			Payload:    payload,
			CreatedAt:  now,
		})
	}
	s.streams[streamID] = append(s.streams[streamID], records...)
	return nil
}

func (s *EventStore) LoadEvents(_ context.Context, streamID string) ([]entity.EventStoreRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]entity.EventStoreRecord, len(s.streams[streamID]))
	copy(out, s.streams[streamID])
	return out, nil
}

// OrderRepository keeps orders in memory and writes their OrderPlaced event
// into the shared EventStore.
type OrderRepository struct {
	mu      sync.RWMutex
	events  *EventStore
	byID    map[string]*entity.Order
	byCode  map[string]string
	newCode func() string
}

func NewOrderRepository(events *EventStore) *OrderRepository {
	return &OrderRepository{
		events:  events,
		byID:    make(map[string]*entity.Order),
		byCode:  make(map[string]string),
		newCode: entity.NewOrderCode,
	}
}

func (r *OrderRepository) CreateOrder(_ context.Context, draft entity.OrderDraft, proposedCode string) (*entity.Order, error) {
	if err := repository.ValidateDraft(draft); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	reference := entity.NormalizeOrderCode(proposedCode)
	code := reference
	for attempts := 0; code == "" || r.byCode[code] != ""; attempts++ {
		if attempts >= 5 {
			return nil, fmt.Errorf("failed to allocate a unique order code")
		}
		code = r.newCode()
	}
	if reference == "" {
		reference = code
	}

	now := time.Now().UTC()
	order := &entity.Order{
		ID:                  uuid.NewString(),
		Code:                code,
		Lines:               append([]entity.OrderLine(nil), draft.Lines...),
		Subtotal:            draft.Subtotal,
		DeliveryFee:         draft.DeliveryFee,
		Total:               draft.Total,
		Customer:            draft.Customer,
		DeliveryZone:        draft.DeliveryZone,
		PaymentMethod:       draft.PaymentMethod,
		PaymentReference:    reference,
		PaymentConfirmation: draft.PaymentConfirmation,
		Status:              entity.OrderStatusPending,
		CreatedAt:           now,
		UpdatedAt:           now,
	}

	r.events.mu.Lock()
	err := r.events.appendLocked(order.ID, entity.StreamTypeOrder, 0, []entity.Event{repository.PlacedEvent(order)})
	r.events.mu.Unlock()
	if err != nil {
		return nil, err
	}

	r.byID[order.ID] = order
	r.byCode[order.Code] = order.ID
	return cloneOrder(order), nil
}

func (r *OrderRepository) GetOrderByCode(_ context.Context, code string) (*entity.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byCode[entity.NormalizeOrderCode(code)]
	if !ok {
		return nil, nil
	}
	return cloneOrder(r.byID[id]), nil
}

func (r *OrderRepository) GetOrderByID(_ context.Context, id string) (*entity.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	o, ok := r.byID[id]
	if !ok {
		return nil, nil
	}
	return cloneOrder(o), nil
}

func (r *OrderRepository) UpdateOrderStatus(_ context.Context, id string, expectedVersion int, change entity.OrderStatusChanged) (*entity.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	o, ok := r.byID[id]
	if !ok {
		return nil, fmt.Errorf("order %s: %w", id, repository.ErrNotFound)
	}

	r.events.mu.Lock()
	err := r.events.appendLocked(id, entity.StreamTypeOrder, expectedVersion, []entity.Event{change})
	r.events.mu.Unlock()
	if err != nil {
		return nil, err
	}

	o.Status = change.To
	o.UpdatedAt = time.Now().UTC()
	return cloneOrder(o), nil
}

func (r *OrderRepository) FindRecent(_ context.Context, limit int) ([]entity.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]entity.Order, 0, len(r.byID))
	for _, o := range r.byID {
		out = append(out, *cloneOrder(o))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func cloneOrder(o *entity.Order) *entity.Order {
	cp := *o
	cp.Lines = append([]entity.OrderLine(nil), o.Lines...)
	return &cp
}

// NewsletterRepository keeps newsletter signups in memory.
type NewsletterRepository struct {
	mu   sync.Mutex
	subs map[string]entity.NewsletterSubscriber
}

func NewNewsletterRepository() *NewsletterRepository {
	return &NewsletterRepository{subs: make(map[string]entity.NewsletterSubscriber)}
}

func (r *NewsletterRepository) Subscribe(_ context.Context, email string) (*entity.NewsletterSubscriber, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := strings.ToLower(email)
	if sub, ok := r.subs[key]; ok {
		return &sub, false, nil
	}
	sub := entity.NewsletterSubscriber{Email: key, SubscribedAt: time.Now().UTC()}
	r.subs[key] = sub
	return &sub, true, nil
}

var (
	_ repository.ProductRepository    = (*ProductRepository)(nil)
	_ repository.CategoryRepository   = (*CategoryRepository)(nil)
	_ repository.EventStore           = (*EventStore)(nil)
	_ repository.OrderRepository      = (*OrderRepository)(nil)
	_ repository.NewsletterRepository = (*NewsletterRepository)(nil)
)

package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/arjan001/tezzaz-hair-kenya-glow-sub000/internal/entity"
)

var (
	// ErrNotFound is returned by writes that target a record that does not exist.
	// Lookups report a miss with a nil result instead.
	ErrNotFound = errors.New("not found")
	// ErrInvalidOrder is returned when an order draft lacks required fields.
	ErrInvalidOrder = errors.New("invalid order draft")
	// ErrConcurrency is returned when an event stream moved past the expected version.
	ErrConcurrency = errors.New("concurrency exception")
)

// ProductRepository handles persistence for Products.
type ProductRepository interface {
	ListProducts(ctx context.Context, activeOnly bool) ([]entity.Product, error)
	// Seed inserts initial products if none exist.
	Seed(ctx context.Context, products []entity.Product) error
}

// CategoryRepository handles persistence for shop categories.
type CategoryRepository interface {
	ListCategories(ctx context.Context) ([]entity.Category, error)
	Seed(ctx context.Context, categories []entity.Category) error
}

// OrderRepository handles persistence for Orders.
type OrderRepository interface {
	// CreateOrder stores the draft together with its OrderPlaced event and
	// assigns a unique code. A proposed code is kept when it is free.
	CreateOrder(ctx context.Context, draft entity.OrderDraft, proposedCode string) (*entity.Order, error)
	// GetOrderByCode returns nil, nil when no order has the code.
	GetOrderByCode(ctx context.Context, code string) (*entity.Order, error)
	// GetOrderByID returns nil, nil when no order has the ID.
	GetOrderByID(ctx context.Context, id string) (*entity.Order, error)
	// UpdateOrderStatus appends change to the order's stream at expectedVersion
	// and sets the order's status to change.To, both or neither.
	// ErrNotFound for unknown IDs, ErrConcurrency when the stream moved on.
	UpdateOrderStatus(ctx context.Context, id string, expectedVersion int, change entity.OrderStatusChanged) (*entity.Order, error)
	FindRecent(ctx context.Context, limit int) ([]entity.Order, error)
}

// EventStore handles appending and loading events for an aggregate stream.
type EventStore interface {
	SaveEvents(ctx context.Context, streamID string, streamType string, expectedVersion int, events []entity.Event) error
	LoadEvents(ctx context.Context, streamID string) ([]entity.EventStoreRecord, error)
}

// NewsletterRepository stores newsletter signups.
type NewsletterRepository interface {
	// Subscribe is idempotent; created is false when the email was already subscribed.
	Subscribe(ctx context.Context, email string) (sub *entity.NewsletterSubscriber, created bool, err error)
}

// ValidateDraft checks the fields every stored order must carry.
func ValidateDraft(d entity.OrderDraft) error {
	var missing []string
	if len(d.Lines) == 0 {
		missing = append(missing, "lines")
	}
	if strings.TrimSpace(d.Customer.FullName) == "" {
		missing = append(missing, "full_name")
	}
	if strings.TrimSpace(d.Customer.Phone) == "" {
		missing = append(missing, "phone")
	}
	if strings.TrimSpace(d.Customer.Address) == "" {
		missing = append(missing, "address")
	}
	if d.PaymentMethod == "" {
		missing = append(missing, "payment_method")
	}
	for _, l := range d.Lines {
		if l.Quantity <= 0 || l.UnitPrice.IsNegative() {
			missing = append(missing, "line "+l.ProductID)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing or invalid %s", ErrInvalidOrder, strings.Join(missing, ", "))
	}
	return nil
}

// PlacedEvent is the first event of every order stream.
func PlacedEvent(o *entity.Order) entity.OrderPlaced {
	return entity.OrderPlaced{
		OrderID:  o.ID,
		Code:     o.Code,
		Lines:    o.Lines,
		Total:    o.Total,
		Phone:    o.Customer.Phone,
		PlacedAt: o.CreatedAt,
	}
}

package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/arjan001/tezzaz-hair-kenya-glow-sub000/internal/entity"
	"github.com/arjan001/tezzaz-hair-kenya-glow-sub000/internal/messaging"
	"github.com/arjan001/tezzaz-hair-kenya-glow-sub000/internal/repository"
)

// TrackingService answers the public order tracking page.
type TrackingService struct {
	orderRepo   repository.OrderRepository
	readTimeout time.Duration
}

func NewTrackingService(orderRepo repository.OrderRepository, readTimeout time.Duration) *TrackingService {
	return &TrackingService{
		orderRepo:   orderRepo,
		readTimeout: readTimeout,
	}
}

// LookupOrder finds an order by its code, ignoring case and surrounding
// whitespace. A miss is (nil, false, nil).
func (s *TrackingService) LookupOrder(ctx context.Context, code string) (*entity.Order, bool, error) {
	code = entity.NormalizeOrderCode(code)
	if code == "" {
		return nil, false, nil
	}

	order, err := readWithRetry(ctx, s.readTimeout, func(ctx context.Context) (*entity.Order, error) {
		return s.orderRepo.GetOrderByCode(ctx, code)
	})
	if err != nil {
		return nil, false, fmt.Errorf("failed to look up order %s: %w", code, err)
	}
	if order == nil {
		return nil, false, nil
	}
	return order, true, nil
}

// OrderService is the operator side of orders: listing them and moving
// them through their lifecycle.
type OrderService struct {
	orderRepo  repository.OrderRepository
	eventStore repository.EventStore
	publisher  messaging.Publisher
	now        func() time.Time
}

func NewOrderService(
	orderRepo repository.OrderRepository,
	eventStore repository.EventStore,
	publisher messaging.Publisher,
) *OrderService {
	return &OrderService{
		orderRepo:  orderRepo,
		eventStore: eventStore,
		publisher:  publisher,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// GetRecentOrders returns the latest orders.
func (s *OrderService) GetRecentOrders(ctx context.Context, limit int) ([]entity.Order, error) {
	if limit <= 0 {
		limit = 50
	}
	return s.orderRepo.FindRecent(ctx, limit)
}

// UpdateOrderStatus moves an order to status. The transition is validated
// against the order's event history; the OrderStatusChanged event and the
// orders row are written together with optimistic versioning.
func (s *OrderService) UpdateOrderStatus(ctx context.Context, orderID string, status entity.OrderStatus) (*entity.Order, error) {
	slog.Info("Service: Updating order status", "order_id", orderID, "status", status)

	if !status.Valid() {
		return nil, fmt.Errorf("%w: %q", entity.ErrUnknownStatus, status)
	}

	records, err := s.eventStore.LoadEvents(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to load order history: %w", err)
	}

	aggregate := entity.NewOrderAggregate(orderID)
	if err := aggregate.Rehydrate(records); err != nil {
		return nil, fmt.Errorf("failed to rehydrate order aggregate: %w", err)
	}
	if !aggregate.Exists() {
		return nil, fmt.Errorf("order %s: %w", orderID, repository.ErrNotFound)
	}

	changed, err := aggregate.ChangeStatus(status, s.now())
	if err != nil {
		return nil, err
	}

	order, err := s.orderRepo.UpdateOrderStatus(ctx, orderID, aggregate.GetVersion(), changed)
	if err != nil {
		return nil, fmt.Errorf("failed to record status change: %w", err)
	}

	if err := s.publisher.PublishEvent(ctx, messaging.TopicOrderStatusChanged, orderID, changed); err != nil {
		slog.Error("Failed to publish OrderStatusChanged", "order_id", orderID, "err", err)
	}

	slog.Info("Order status changed", "order_id", orderID, "code", changed.Code, "from", changed.From, "to", changed.To)
	return order, nil
}

// HandleOrderPlaced is triggered by the message broker when an order is
// placed. Orders wait for an operator to check the pasted M-Pesa message.
func (s *OrderService) HandleOrderPlaced(ctx context.Context, payload []byte) error {
	var event entity.OrderPlaced
	if err := json.Unmarshal(payload, &event); err != nil {
		return fmt.Errorf("failed to decode OrderPlaced: %w", err)
	}

	order, err := s.orderRepo.GetOrderByID(ctx, event.OrderID)
	if err != nil {
		return fmt.Errorf("failed to load order %s: %w", event.OrderID, err)
	}
	if order == nil {
		slog.Warn("OrderPlaced for unknown order", "order_id", event.OrderID, "code", event.Code)
		return nil
	}

	slog.Info("New order awaiting payment verification",
		"order_id", order.ID,
		"code", order.Code,
		"total", order.Total.String(),
		"phone", order.Customer.Phone,
		"payment_reference", order.PaymentReference,
	)
	return nil
}

// HandleOrderStatusChanged logs transitions coming off the broker.
func (s *OrderService) HandleOrderStatusChanged(_ context.Context, payload []byte) error {
	var event entity.OrderStatusChanged
	if err := json.Unmarshal(payload, &event); err != nil {
		return fmt.Errorf("failed to decode OrderStatusChanged: %w", err)
	}
	slog.Info("Projection: Order status changed", "order_id", event.OrderID, "code", event.Code, "from", event.From, "to", event.To)
	return nil
}

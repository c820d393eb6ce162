package entity

import (
	"encoding/json"
	"fmt"
	"time"
)

// OrderAggregate tracks an order's status history by replaying its events.
type OrderAggregate struct {
	AggregateBase
	Code      string
	Status    OrderStatus
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewOrderAggregate creates an empty aggregate for the given order ID.
func NewOrderAggregate(id string) *OrderAggregate {
	return &OrderAggregate{
		AggregateBase: AggregateBase{ID: id, Version: 0},
	}
}

// Exists reports whether the OrderPlaced event has been applied.
func (a *OrderAggregate) Exists() bool {
	return a.Status != ""
}

// ChangeStatus validates a transition and returns the event to append.
func (a *OrderAggregate) ChangeStatus(to OrderStatus, now time.Time) (OrderStatusChanged, error) {
	if !a.Exists() {
		return OrderStatusChanged{}, fmt.Errorf("order %s has no history", a.ID)
	}
	if err := a.Status.Transition(to); err != nil {
		return OrderStatusChanged{}, err
	}
	return OrderStatusChanged{
		OrderID:   a.ID,
		Code:      a.Code,
		From:      a.Status,
		To:        to,
		ChangedAt: now,
	}, nil
}

// ApplyEvent mutates the aggregate state based on the event.
func (a *OrderAggregate) ApplyEvent(e Event) error {
	switch e := e.(type) {
	case OrderPlaced:
		a.Code = e.Code
		a.Status = OrderStatusPending
		a.CreatedAt = e.PlacedAt
		a.UpdatedAt = e.PlacedAt
	case OrderStatusChanged:
		if err := a.Status.Transition(e.To); err != nil {
			return fmt.Errorf("corrupt order stream %s: %w", a.ID, err)
		}
		a.Status = e.To
		a.UpdatedAt = e.ChangedAt
	default:
		return fmt.Errorf("unknown event type for OrderAggregate: %s", e.EventType())
	}
	a.Version++
	return nil
}

// Rehydrate rebuilds the aggregate from a list of records.
func (a *OrderAggregate) Rehydrate(records []EventStoreRecord) error {
	for _, rec := range records {
		var err error
		switch rec.EventType {
		case "OrderPlaced":
			var e OrderPlaced
			if err = json.Unmarshal(rec.Payload, &e); err == nil {
				err = a.ApplyEvent(e)
			}
		case "OrderStatusChanged":
			var e OrderStatusChanged
			if err = json.Unmarshal(rec.Payload, &e); err == nil {
				err = a.ApplyEvent(e)
			}
		default:
			return fmt.Errorf("unknown event type in order stream: %s", rec.EventType)
		}
		if err != nil {
			return fmt.Errorf("failed to apply event from stream: %w", err)
		}
	}
	return nil
}

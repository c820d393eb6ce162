package entity

import (
	"errors"
	"fmt"
)

// OrderStatus is the lifecycle state of an order.
type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusConfirmed  OrderStatus = "confirmed"
	OrderStatusDispatched OrderStatus = "dispatched"
	OrderStatusDelivered  OrderStatus = "delivered"
	OrderStatusCancelled  OrderStatus = "cancelled"
)

var (
	ErrUnknownStatus     = errors.New("unknown order status")
	ErrTerminalStatus    = errors.New("order is in a terminal status")
	ErrInvalidTransition = errors.New("invalid order status transition")
)

// trackingStages is the four-stage progress bar. Cancelled is not on it.
var trackingStages = []OrderStatus{
	OrderStatusPending,
	OrderStatusConfirmed,
	OrderStatusDispatched,
	OrderStatusDelivered,
}

func (s OrderStatus) String() string {
	return string(s)
}

// Valid reports whether s is one of the known statuses.
func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusPending, OrderStatusConfirmed, OrderStatusDispatched,
		OrderStatusDelivered, OrderStatusCancelled:
		return true
	}
	return false
}

// IsTerminal reports whether no further transitions are allowed.
func (s OrderStatus) IsTerminal() bool {
	return s == OrderStatusDelivered || s == OrderStatusCancelled
}

// ParseOrderStatus converts operator input into an OrderStatus.
func ParseOrderStatus(raw string) (OrderStatus, error) {
	s := OrderStatus(raw)
	if !s.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownStatus, raw)
	}
	return s, nil
}

// CanTransition reports whether from → to is an allowed edge.
func CanTransition(from, to OrderStatus) bool {
	return from.Transition(to) == nil
}

// Transition validates the move from s to next.
func (s OrderStatus) Transition(next OrderStatus) error {
	if !s.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownStatus, s)
	}
	if !next.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownStatus, next)
	}
	if s.IsTerminal() {
		return fmt.Errorf("%w: %s", ErrTerminalStatus, s)
	}
	if next == OrderStatusCancelled {
		return nil
	}
	if stageIndex(next) == stageIndex(s)+1 {
		return nil
	}
	return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, s, next)
}

func stageIndex(s OrderStatus) int {
	for i, stage := range trackingStages {
		if stage == s {
			return i
		}
	}
	return -1
}

// TrackingProgress is what the order tracking page renders.
type TrackingProgress struct {
	Stages    []OrderStatus `json:"stages"`
	Stage     int           `json:"stage"`
	Cancelled bool          `json:"cancelled"`
}

// Progress maps a status onto the tracking bar. A cancelled order is a
// separate branch with Stage -1.
func Progress(s OrderStatus) TrackingProgress {
	stages := make([]OrderStatus, len(trackingStages))
	copy(stages, trackingStages)
	return TrackingProgress{
		Stages:    stages,
		Stage:     stageIndex(s),
		Cancelled: s == OrderStatusCancelled,
	}
}

package entity

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransition_ForwardEdges(t *testing.T) {
	assert.True(t, CanTransition(OrderStatusPending, OrderStatusConfirmed))
	assert.True(t, CanTransition(OrderStatusConfirmed, OrderStatusDispatched))
	assert.True(t, CanTransition(OrderStatusDispatched, OrderStatusDelivered))

	assert.False(t, CanTransition(OrderStatusPending, OrderStatusDispatched))
	assert.False(t, CanTransition(OrderStatusDispatched, OrderStatusConfirmed))
	assert.False(t, CanTransition(OrderStatusPending, OrderStatusPending))
}

func TestTransition_CancelFromNonTerminal(t *testing.T) {
	for _, s := range []OrderStatus{OrderStatusPending, OrderStatusConfirmed, OrderStatusDispatched} {
		assert.NoError(t, s.Transition(OrderStatusCancelled), s)
	}
}

func TestTransition_TerminalRejects(t *testing.T) {
	for _, from := range []OrderStatus{OrderStatusDelivered, OrderStatusCancelled} {
		for _, to := range []OrderStatus{OrderStatusPending, OrderStatusConfirmed, OrderStatusDispatched, OrderStatusDelivered, OrderStatusCancelled} {
			err := from.Transition(to)
			assert.ErrorIs(t, err, ErrTerminalStatus, "%s -> %s", from, to)
		}
	}
}

func TestTransition_UnknownStatus(t *testing.T) {
	assert.ErrorIs(t, OrderStatusPending.Transition("shipped"), ErrUnknownStatus)
	assert.ErrorIs(t, OrderStatus("placed").Transition(OrderStatusConfirmed), ErrUnknownStatus)
	assert.ErrorIs(t, OrderStatusPending.Transition(OrderStatusDelivered), ErrInvalidTransition)
}

func TestParseOrderStatus(t *testing.T) {
	s, err := ParseOrderStatus("dispatched")
	require.NoError(t, err)
	assert.Equal(t, OrderStatusDispatched, s)

	_, err = ParseOrderStatus("Dispatched")
	assert.ErrorIs(t, err, ErrUnknownStatus)
}

func TestProgress(t *testing.T) {
	p := Progress(OrderStatusDispatched)
	assert.Equal(t, 2, p.Stage)
	assert.False(t, p.Cancelled)
	assert.Len(t, p.Stages, 4)

	assert.Equal(t, 0, Progress(OrderStatusPending).Stage)
	assert.Equal(t, 3, Progress(OrderStatusDelivered).Stage)

	c := Progress(OrderStatusCancelled)
	assert.Equal(t, -1, c.Stage)
	assert.True(t, c.Cancelled)
	assert.NotContains(t, c.Stages, OrderStatusCancelled)
}

func record(t *testing.T, e Event, version int) EventStoreRecord {
	t.Helper()
	payload, err := json.Marshal(e)
	require.NoError(t, err)
	return EventStoreRecord{StreamID: "o-1", StreamType: StreamTypeOrder, Version: version, EventType: e.EventType(), Payload: payload}
}

func TestOrderAggregate_Rehydrate(t *testing.T) {
	placedAt := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	records := []EventStoreRecord{
		record(t, OrderPlaced{OrderID: "o-1", Code: "TZ8A3BX2C", PlacedAt: placedAt}, 1),
		record(t, OrderStatusChanged{OrderID: "o-1", From: OrderStatusPending, To: OrderStatusConfirmed, ChangedAt: placedAt.Add(time.Hour)}, 2),
		record(t, OrderStatusChanged{OrderID: "o-1", From: OrderStatusConfirmed, To: OrderStatusDispatched, ChangedAt: placedAt.Add(2 * time.Hour)}, 3),
	}

	agg := NewOrderAggregate("o-1")
	require.NoError(t, agg.Rehydrate(records))

	assert.Equal(t, OrderStatusDispatched, agg.Status)
	assert.Equal(t, "TZ8A3BX2C", agg.Code)
	assert.Equal(t, 3, agg.GetVersion())
	assert.Equal(t, placedAt.Add(2*time.Hour), agg.UpdatedAt.UTC())
}

func TestOrderAggregate_ChangeStatus(t *testing.T) {
	agg := NewOrderAggregate("o-1")
	require.NoError(t, agg.ApplyEvent(OrderPlaced{OrderID: "o-1", Code: "TZ1"}))
	require.NoError(t, agg.ApplyEvent(OrderStatusChanged{From: OrderStatusPending, To: OrderStatusConfirmed}))
	require.NoError(t, agg.ApplyEvent(OrderStatusChanged{From: OrderStatusConfirmed, To: OrderStatusDispatched}))
	assert.Error(t, agg.ApplyEvent(OrderStatusChanged{From: OrderStatusDispatched, To: OrderStatusPending}))

	now := time.Now()
	ev, err := agg.ChangeStatus(OrderStatusCancelled, now)
	require.NoError(t, err)
	assert.Equal(t, OrderStatusDispatched, ev.From)
	assert.Equal(t, OrderStatusCancelled, ev.To)

	require.NoError(t, agg.ApplyEvent(ev))
	_, err = agg.ChangeStatus(OrderStatusDelivered, now)
	assert.ErrorIs(t, err, ErrTerminalStatus)
}

func TestOrderAggregate_UnknownEventType(t *testing.T) {
	agg := NewOrderAggregate("o-1")
	err := agg.Rehydrate([]EventStoreRecord{{EventType: "OrderShipped"}})
	assert.Error(t, err)
}

func TestOrderAggregate_ChangeStatusWithoutHistory(t *testing.T) {
	_, err := NewOrderAggregate("o-1").ChangeStatus(OrderStatusConfirmed, time.Now())
	assert.Error(t, err)
}

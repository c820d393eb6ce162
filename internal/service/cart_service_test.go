package service

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arjan001/tezzaz-hair-kenya-glow-sub000/internal/entity"
)

func TestCartService_AddItemPersistsPerSession(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.carts.AddItem(ctx, "sess-a", "prod-002", 2)
	require.NoError(t, err)
	_, err = f.carts.AddItem(ctx, "sess-a", "prod-002", 1)
	require.NoError(t, err)

	store, err := f.carts.Open(ctx, "sess-a")
	require.NoError(t, err)
	assert.Equal(t, 3, store.CartCount())
	assert.True(t, decimal.NewFromInt(3600).Equal(store.CartTotal()))

	other, err := f.carts.Open(ctx, "sess-b")
	require.NoError(t, err)
	assert.Zero(t, other.CartCount())
}

func TestCartService_AddItemNotifiesAddedLine(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	var added []entity.CartLine
	f.carts.onAdded = func(sessionID string, line entity.CartLine) {
		assert.Equal(t, "sess", sessionID)
		added = append(added, line)
	}

	_, err := f.carts.AddItem(ctx, "sess", "prod-002", 2)
	require.NoError(t, err)
	_, err = f.carts.AddItem(ctx, "sess", "prod-002", 1)
	require.NoError(t, err)

	require.Len(t, added, 2)
	assert.Equal(t, "prod-002", added[1].Product.ID)
	assert.Equal(t, 3, added[1].Quantity)

	_, err = f.carts.AddItem(ctx, "sess", "prod-404", 1)
	require.Error(t, err)
	assert.Len(t, added, 2)
}

func TestCartService_AddItemRejectsBadInput(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.carts.AddItem(ctx, "sess", "prod-404", 1)
	assert.True(t, errors.Is(err, ErrUnknownProduct))

	_, err = f.carts.AddItem(ctx, "sess", "prod-007", 1)
	assert.True(t, errors.Is(err, ErrUnknownProduct))

	_, err = f.carts.AddItem(ctx, "sess", "prod-001", 0)
	assert.True(t, errors.Is(err, ErrInvalidQuantity))
}

func TestCartService_UpdateRemoveClear(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.carts.AddItem(ctx, "sess", "prod-001", 2)
	require.NoError(t, err)
	_, err = f.carts.AddItem(ctx, "sess", "prod-003", 1)
	require.NoError(t, err)

	store, err := f.carts.UpdateQuantity(ctx, "sess", "prod-001", 0)
	require.NoError(t, err)
	assert.Equal(t, 1, store.CartCount())

	_, err = f.carts.UpdateQuantity(ctx, "sess", "prod-001", -1)
	assert.True(t, errors.Is(err, ErrInvalidQuantity))

	store, err = f.carts.RemoveItem(ctx, "sess", "prod-003")
	require.NoError(t, err)
	assert.Empty(t, store.Lines())

	_, err = f.carts.AddItem(ctx, "sess", "prod-004", 1)
	require.NoError(t, err)
	_, _, err = f.carts.ToggleWishlist(ctx, "sess", "prod-005")
	require.NoError(t, err)

	store, err = f.carts.Clear(ctx, "sess")
	require.NoError(t, err)
	assert.Empty(t, store.Lines())
	assert.Equal(t, []string{"prod-005"}, store.Wishlist())
}

func TestCartService_ToggleWishlist(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, on, err := f.carts.ToggleWishlist(ctx, "sess", "prod-006")
	require.NoError(t, err)
	assert.True(t, on)

	_, on, err = f.carts.ToggleWishlist(ctx, "sess", "prod-006")
	require.NoError(t, err)
	assert.False(t, on)

	_, _, err = f.carts.ToggleWishlist(ctx, "sess", "prod-404")
	assert.True(t, errors.Is(err, ErrUnknownProduct))
}

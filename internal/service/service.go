package service

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v5"
)

var (
	// ErrEmptyCart is returned when checkout is attempted with nothing in the cart.
	ErrEmptyCart = errors.New("nothing to check out")
	// ErrSubmissionInFlight is returned when the same checkout is submitted twice
	// before the first attempt finished.
	ErrSubmissionInFlight = errors.New("order submission already in progress")
	// ErrUnknownProduct is returned when a cart operation names a product the
	// shop does not sell.
	ErrUnknownProduct = errors.New("unknown product")
	// ErrInvalidQuantity is returned for non-positive quantities from clients.
	ErrInvalidQuantity = errors.New("quantity must be positive")
	// ErrCatalogUnavailable is returned when the catalog cannot be loaded for a
	// cart operation.
	ErrCatalogUnavailable = errors.New("catalog unavailable")
	// ErrInvalidEmail is returned by newsletter signups with a malformed address.
	ErrInvalidEmail = errors.New("invalid email address")
)

const (
	defaultReadTimeout = 5 * time.Second
	retryDelay         = 200 * time.Millisecond
)

// readWithRetry runs an idempotent read under a per-attempt timeout and
// retries it once.
func readWithRetry[T any](ctx context.Context, timeout time.Duration, read func(ctx context.Context) (T, error)) (T, error) {
	if timeout <= 0 {
		timeout = defaultReadTimeout
	}
	return backoff.Retry(ctx, func() (T, error) {
		callCtx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()
		return read(callCtx)
	},
		backoff.WithBackOff(backoff.NewConstantBackOff(retryDelay)),
		backoff.WithMaxTries(2),
	)
}

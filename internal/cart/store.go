package cart

import (
	"context"
	"errors"
)

// ErrCheckoutLocked is returned by AcquireCheckout when another submission
// for the same session holds the guard.
var ErrCheckoutLocked = errors.New("checkout already in progress")

// Store keeps cart snapshots per session between requests.
type Store interface {
	// Get returns the session's cart, or an empty cart if none is stored.
	Get(ctx context.Context, sessionID string) (Cart, error)

	// Update applies fn to the session's cart and saves the result.
	// Updates to the same session are serialised; if fn returns an error
	// nothing is saved and that error is returned unchanged.
	Update(ctx context.Context, sessionID string, fn func(*Cart) error) (Cart, error)

	// Delete removes the session's cart.
	Delete(ctx context.Context, sessionID string) error

	// AcquireCheckout takes the session's in-flight submission guard.
	// It returns ErrCheckoutLocked if the guard is already held. The returned
	// release function gives the guard back.
	AcquireCheckout(ctx context.Context, sessionID string) (release func(context.Context) error, err error)
}

package cart

import (
	"context"
	"fmt"

	"mini-eats/internal/model"

	"github.com/google/uuid"
)

// Session scopes cart operations to one browsing/checkout session. All
// mutations go through the store, so they are visible to the next query on
// the same session.
type Session struct {
	id    string
	store Store
}

// NewSession creates a session handle over store.
func NewSession(id string, store Store) *Session {
	return &Session{id: id, store: store}
}

// ID returns the session identifier.
func (s *Session) ID() string {
	return s.id
}

// AddItem adds one unit of product to the cart.
func (s *Session) AddItem(ctx context.Context, product model.Product) (Cart, error) {
	return s.store.Update(ctx, s.id, func(c *Cart) error {
		return c.Add(product)
	})
}

// RemoveItem removes one unit of the product from the cart.
func (s *Session) RemoveItem(ctx context.Context, productID uuid.UUID) (Cart, error) {
	return s.store.Update(ctx, s.id, func(c *Cart) error {
		return c.Remove(productID)
	})
}

// QuantityOf returns the quantity of productID in the cart.
func (s *Session) QuantityOf(ctx context.Context, productID uuid.UUID) (int, error) {
	c, err := s.store.Get(ctx, s.id)
	if err != nil {
		return 0, err
	}
	return c.QuantityOf(productID), nil
}

// Subtotal returns the cart subtotal.
func (s *Session) Subtotal(ctx context.Context) (int64, error) {
	c, err := s.store.Get(ctx, s.id)
	if err != nil {
		return 0, err
	}
	return c.Subtotal(), nil
}

// Snapshot returns a copy of the current cart.
func (s *Session) Snapshot(ctx context.Context) (Cart, error) {
	return s.store.Get(ctx, s.id)
}

// Clear empties the cart.
func (s *Session) Clear(ctx context.Context) error {
	if err := s.store.Delete(ctx, s.id); err != nil {
		return fmt.Errorf("failed to clear cart: %w", err)
	}
	return nil
}

// BeginCheckout takes the session's submission guard.
func (s *Session) BeginCheckout(ctx context.Context) (func(context.Context) error, error) {
	return s.store.AcquireCheckout(ctx, s.id)
}

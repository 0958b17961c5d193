package service

import (
	"context"

	"mini-eats/internal/model"

	"github.com/google/uuid"
)

// CatalogService defines read operations over restaurants and menus.
type CatalogService interface {
	// ListRestaurants returns active restaurants matching filter.
	ListRestaurants(ctx context.Context, filter model.RestaurantFilter) ([]model.Restaurant, error)

	// GetRestaurant retrieves an active restaurant by slug.
	GetRestaurant(ctx context.Context, slug string) (*model.Restaurant, error)

	// Menu returns the available products of the restaurant with the given slug.
	Menu(ctx context.Context, slug string) ([]model.Product, error)
}

// CartService defines operations on a session's cart.
type CartService interface {
	// View returns the session's cart.
	View(ctx context.Context, sessionID string) (*CartView, error)

	// AddItem adds one unit of a product to the session's cart.
	AddItem(ctx context.Context, sessionID string, productID uuid.UUID) (*CartView, error)

	// RemoveItem removes one unit of a product from the session's cart.
	RemoveItem(ctx context.Context, sessionID string, productID uuid.UUID) (*CartView, error)

	// Clear empties the session's cart.
	Clear(ctx context.Context, sessionID string) error
}

// CheckoutService turns a session's cart into a persisted order.
type CheckoutService interface {
	// Submit validates the cart and customer details, initiates payment and
	// stores the order. userID is nil for guest checkout.
	Submit(ctx context.Context, sessionID string, userID *uuid.UUID, req *model.CheckoutRequest) (*model.Order, error)
}

// OrderService defines operations on submitted orders.
type OrderService interface {
	// GetByID retrieves an order visible to the given user.
	GetByID(ctx context.Context, userID *uuid.UUID, id uuid.UUID) (*model.Order, error)

	// ListForUser returns the user's orders split into active and history.
	ListForUser(ctx context.Context, userID uuid.UUID) (*model.OrderHistory, error)

	// UpdateStatus advances an order of the user's restaurant to status.
	UpdateStatus(ctx context.Context, userID uuid.UUID, id uuid.UUID, status model.OrderStatus) (*model.Order, error)

	// Cancel cancels an order on behalf of its customer or its restaurant.
	Cancel(ctx context.Context, userID uuid.UUID, id uuid.UUID) (*model.Order, error)

	// Review rates a completed order.
	Review(ctx context.Context, userID uuid.UUID, id uuid.UUID, req *model.ReviewRequest) (*model.Review, error)
}

// DashboardService builds the restaurant owner's dashboard.
type DashboardService interface {
	Get(ctx context.Context, ownerID uuid.UUID) (*model.Dashboard, error)
}

// ProfileService exposes the authenticated user's profile.
type ProfileService interface {
	Current(ctx context.Context, userID uuid.UUID) (*model.Profile, error)

	// Register creates the profile of a newly signed-up user and, for
	// restaurant operators who name one, their restaurant.
	Register(ctx context.Context, userID uuid.UUID, req *model.RegisterRequest) (*model.Profile, error)
}

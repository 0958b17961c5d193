package repository

import (
	"context"

	"mini-eats/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// Lookups that find nothing return (nil, nil); services turn that into the
// matching domain error.

// RestaurantRepository defines the interface for restaurant data access operations.
type RestaurantRepository interface {
	// Query returns active restaurants matching filter, best rated first.
	Query(ctx context.Context, filter model.RestaurantFilter) ([]model.Restaurant, error)

	// GetBySlug retrieves a restaurant by its unique slug.
	GetBySlug(ctx context.Context, slug string) (*model.Restaurant, error)

	// GetByID retrieves a restaurant by its ID, active or not.
	GetByID(ctx context.Context, id uuid.UUID) (*model.Restaurant, error)

	// GetByOwner retrieves the restaurant operated by the given user.
	GetByOwner(ctx context.Context, ownerID uuid.UUID) (*model.Restaurant, error)

	// Stats computes dashboard aggregates for a restaurant.
	Stats(ctx context.Context, restaurantID uuid.UUID) (*model.RestaurantStats, error)

	// Import upserts a restaurant by slug together with its menu in one
	// transaction. The restaurant's ID is set to the stored row's ID.
	Import(ctx context.Context, restaurant *model.Restaurant, menu []model.Product) error
}

// ProductRepository defines the interface for product data access operations.
type ProductRepository interface {
	// GetByID retrieves a single product by its ID.
	GetByID(ctx context.Context, id uuid.UUID) (*model.Product, error)

	// MenuItems returns a restaurant's available products in menu order.
	MenuItems(ctx context.Context, restaurantID uuid.UUID) ([]model.Product, error)
}

// OrderRepository defines the interface for order data access operations.
type OrderRepository interface {
	// BeginTx starts a new database transaction.
	BeginTx(ctx context.Context) (pgx.Tx, error)

	// CreateOrder inserts a new order within the provided transaction.
	// A duplicate order number yields model.ErrOrderNumberConflict.
	CreateOrder(ctx context.Context, tx pgx.Tx, order *model.Order) error

	// CreateOrderItems inserts multiple order items within the provided transaction.
	CreateOrderItems(ctx context.Context, tx pgx.Tx, items []model.OrderItem) error

	// GetByID retrieves an order by its ID along with its items and restaurant summary.
	GetByID(ctx context.Context, id uuid.UUID) (*model.Order, error)

	// ListForUser returns a user's orders, newest first.
	ListForUser(ctx context.Context, userID uuid.UUID) ([]model.Order, error)

	// ListForRestaurant returns up to limit of a restaurant's orders, newest first.
	ListForRestaurant(ctx context.Context, restaurantID uuid.UUID, limit int) ([]model.Order, error)

	// UpdateStatus moves an order from expected to next. It reports false
	// when the stored status no longer equals expected.
	UpdateStatus(ctx context.Context, id uuid.UUID, expected, next model.OrderStatus) (bool, error)
}

// ReviewRepository defines the interface for review data access operations.
type ReviewRepository interface {
	// Create stores a review and refreshes the restaurant's rating in one
	// transaction. A second review for the same order yields
	// model.ErrAlreadyReviewed.
	Create(ctx context.Context, review *model.Review) error

	// GetByOrder retrieves the review left for an order.
	GetByOrder(ctx context.Context, orderID uuid.UUID) (*model.Review, error)
}

// ProfileRepository defines the interface for profile data access operations.
type ProfileRepository interface {
	// GetByID retrieves a profile by the user's ID.
	GetByID(ctx context.Context, id uuid.UUID) (*model.Profile, error)

	// Create stores a new profile and, when restaurant is not nil, the
	// restaurant it owns, in one transaction. A taken id or email yields
	// model.ErrProfileExists.
	Create(ctx context.Context, profile *model.Profile, restaurant *model.Restaurant) error
}

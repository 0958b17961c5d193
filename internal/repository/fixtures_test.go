package repository

import (
	"context"
	"testing"
	"time"

	"mini-eats/internal/database"
	"mini-eats/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// setupTestDB starts a PostgreSQL container with the application schema.
func setupTestDB(t *testing.T) (*pgxpool.Pool, func()) {
	if testing.Short() {
		t.Skip("skipping container-backed test in short mode")
	}

	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("postgres"),
		postgres.WithPassword("postgres"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	require.NoError(t, err)

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	pool, err := pgxpool.New(ctx, connStr)
	require.NoError(t, err)

	_, err = pool.Exec(ctx, database.Schema())
	require.NoError(t, err)

	cleanup := func() {
		pool.Close()
		_ = pgContainer.Terminate(ctx)
	}

	return pool, cleanup
}

func seedProfile(t *testing.T, pool *pgxpool.Pool, role model.Role) uuid.UUID {
	id := uuid.New()
	_, err := pool.Exec(context.Background(),
		`INSERT INTO profiles (id, email, full_name, role) VALUES ($1, $2, $3, $4)`,
		id, id.String()+"@example.com", "Awa Koné", role,
	)
	require.NoError(t, err)
	return id
}

func seedRestaurant(t *testing.T, pool *pgxpool.Pool, r model.Restaurant) model.Restaurant {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	if r.Slug == "" {
		r.Slug = r.ID.String()
	}

	_, err := pool.Exec(context.Background(), `
		INSERT INTO restaurants (id, user_id, name, slug, address, city, phone, category,
			rating, total_reviews, delivery_fee, minimum_order, image_url, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`,
		r.ID, r.OwnerID, r.Name, r.Slug, r.Address, r.City, r.Phone, r.Category,
		r.Rating, r.TotalReviews, r.DeliveryFee, r.MinimumOrder, r.ImageURL, r.IsActive,
	)
	require.NoError(t, err)
	return r
}

func seedProduct(t *testing.T, pool *pgxpool.Pool, p model.Product) model.Product {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}

	_, err := pool.Exec(context.Background(), `
		INSERT INTO products (id, restaurant_id, name, category, price, is_available, sort_order)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		p.ID, p.RestaurantID, p.Name, p.Category, p.Price, p.IsAvailable, p.SortOrder,
	)
	require.NoError(t, err)
	return p
}

func newTestOrder(restaurantID uuid.UUID, userID *uuid.UUID, number string, status model.OrderStatus) *model.Order {
	now := time.Now().UTC().Truncate(time.Microsecond)
	return &model.Order{
		ID:              uuid.New(),
		OrderNumber:     number,
		UserID:          userID,
		RestaurantID:    restaurantID,
		Status:          status,
		ServiceType:     model.ServiceDelivery,
		CustomerName:    "Awa Koné",
		CustomerPhone:   "+225 07 00 00 00",
		DeliveryAddress: "Cocody, Abidjan",
		ItemsTotal:      10500,
		DeliveryFee:     1000,
		TotalAmount:     11500,
		PaymentMethod:   model.PaymentCash,
		PaymentStatus:   model.PaymentStatusPending,
		TransactionID:   "txn_1700000000000_abcdefghi",
		CreatedAt:       now,
		UpdatedAt:       now,
	}
}

// insertOrder stores order and items through the repository in one transaction.
func insertOrder(t *testing.T, repo OrderRepository, order *model.Order, items []model.OrderItem) {
	ctx := context.Background()

	tx, err := repo.BeginTx(ctx)
	require.NoError(t, err)
	defer tx.Rollback(ctx)

	require.NoError(t, repo.CreateOrder(ctx, tx, order))
	require.NoError(t, repo.CreateOrderItems(ctx, tx, items))
	require.NoError(t, tx.Commit(ctx))
}

package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"mini-eats/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

const restaurantColumns = `id, user_id, name, slug, description, address, city, phone, email,
	category, rating, total_reviews, delivery_time, delivery_fee, minimum_order,
	image_url, is_active, created_at`

// topProductsLimit is how many best sellers the dashboard shows.
const topProductsLimit = 3

// restaurantRepository implements the RestaurantRepository interface using PostgreSQL.
type restaurantRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewRestaurantRepository creates a new PostgreSQL-backed restaurant repository.
func NewRestaurantRepository(pool *pgxpool.Pool, logger zerolog.Logger) RestaurantRepository {
	return &restaurantRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "restaurant").Logger(),
	}
}

// Query returns active restaurants matching filter, best rated first.
func (r *restaurantRepository) Query(ctx context.Context, filter model.RestaurantFilter) ([]model.Restaurant, error) {
	conditions := []string{"is_active = TRUE"}
	var args []any

	if filter.Category != "" {
		args = append(args, filter.Category)
		conditions = append(conditions, fmt.Sprintf("category = $%d", len(args)))
	}
	if filter.City != "" {
		args = append(args, filter.City)
		conditions = append(conditions, fmt.Sprintf("city = $%d", len(args)))
	}
	if filter.Search != "" {
		args = append(args, "%"+escapeLike(filter.Search)+"%")
		conditions = append(conditions, fmt.Sprintf("name ILIKE $%d", len(args)))
	}

	query := `SELECT ` + restaurantColumns + `
		FROM restaurants
		WHERE ` + strings.Join(conditions, " AND ") + `
		ORDER BY rating DESC, name`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		r.logger.Error().Err(err).
			Str("category", filter.Category).
			Str("city", filter.City).
			Str("search", filter.Search).
			Msg("failed to query restaurants")
		return nil, fmt.Errorf("failed to query restaurants: %w", err)
	}
	defer rows.Close()

	restaurants := []model.Restaurant{}
	for rows.Next() {
		restaurant, err := scanRestaurant(rows)
		if err != nil {
			r.logger.Error().Err(err).Msg("failed to scan restaurant row")
			return nil, fmt.Errorf("failed to scan restaurant: %w", err)
		}
		restaurants = append(restaurants, *restaurant)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating restaurant rows")
		return nil, fmt.Errorf("error iterating restaurants: %w", err)
	}

	return restaurants, nil
}

// GetBySlug retrieves a restaurant by its unique slug.
func (r *restaurantRepository) GetBySlug(ctx context.Context, slug string) (*model.Restaurant, error) {
	return r.getOne(ctx, "slug = $1", slug)
}

// GetByID retrieves a restaurant by its ID.
func (r *restaurantRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Restaurant, error) {
	return r.getOne(ctx, "id = $1", id)
}

// GetByOwner retrieves the restaurant operated by the given user.
func (r *restaurantRepository) GetByOwner(ctx context.Context, ownerID uuid.UUID) (*model.Restaurant, error) {
	return r.getOne(ctx, "user_id = $1", ownerID)
}

func (r *restaurantRepository) getOne(ctx context.Context, where string, arg any) (*model.Restaurant, error) {
	query := `SELECT ` + restaurantColumns + ` FROM restaurants WHERE ` + where + ` LIMIT 1`

	restaurant, err := scanRestaurant(r.pool.QueryRow(ctx, query, arg))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.Debug().Str("where", where).Any("value", arg).Msg("restaurant not found")
			return nil, nil
		}
		r.logger.Error().Err(err).Str("where", where).Msg("failed to query restaurant")
		return nil, fmt.Errorf("failed to query restaurant: %w", err)
	}

	return restaurant, nil
}

// Stats computes dashboard aggregates for a restaurant. Cancelled orders
// count towards the order total but not towards revenue.
func (r *restaurantRepository) Stats(ctx context.Context, restaurantID uuid.UUID) (*model.RestaurantStats, error) {
	query := `
		SELECT
			(SELECT COUNT(*) FROM orders WHERE restaurant_id = r.id),
			(SELECT COUNT(*) FROM orders WHERE restaurant_id = r.id AND status = 'pending'),
			(SELECT COALESCE(SUM(total_amount), 0)::BIGINT FROM orders
				WHERE restaurant_id = r.id AND status <> 'cancelled'),
			(SELECT COUNT(*) FROM products WHERE restaurant_id = r.id AND is_available),
			r.rating,
			r.total_reviews
		FROM restaurants r
		WHERE r.id = $1
	`

	var stats model.RestaurantStats
	err := r.pool.QueryRow(ctx, query, restaurantID).Scan(
		&stats.TotalOrders,
		&stats.PendingOrders,
		&stats.TotalRevenue,
		&stats.ActiveProducts,
		&stats.AverageRating,
		&stats.TotalReviews,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		r.logger.Error().Err(err).Str("restaurant_id", restaurantID.String()).Msg("failed to query restaurant stats")
		return nil, fmt.Errorf("failed to query restaurant stats: %w", err)
	}

	topQuery := `
		SELECT oi.product_id, oi.name,
			COUNT(DISTINCT oi.order_id),
			SUM(oi.quantity)::INTEGER,
			SUM(oi.unit_price * oi.quantity)::BIGINT AS revenue
		FROM order_items oi
		JOIN orders o ON o.id = oi.order_id
		WHERE o.restaurant_id = $1 AND o.status <> 'cancelled'
		GROUP BY oi.product_id, oi.name
		ORDER BY revenue DESC, oi.name
		LIMIT $2
	`

	rows, err := r.pool.Query(ctx, topQuery, restaurantID, topProductsLimit)
	if err != nil {
		r.logger.Error().Err(err).Str("restaurant_id", restaurantID.String()).Msg("failed to query top products")
		return nil, fmt.Errorf("failed to query top products: %w", err)
	}
	defer rows.Close()

	stats.TopProducts = []model.ProductSales{}
	for rows.Next() {
		var s model.ProductSales
		if err := rows.Scan(&s.ProductID, &s.Name, &s.Orders, &s.Quantity, &s.Revenue); err != nil {
			return nil, fmt.Errorf("failed to scan top product: %w", err)
		}
		stats.TopProducts = append(stats.TopProducts, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating top products: %w", err)
	}

	return &stats, nil
}

// Import upserts a restaurant by slug together with its menu. Rating and
// review counts are left untouched on update. Products missing from menu
// are marked unavailable rather than deleted, since past orders reference them.
func (r *restaurantRepository) Import(ctx context.Context, restaurant *model.Restaurant, menu []model.Product) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to begin transaction")
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	if restaurant.ID == uuid.Nil {
		restaurant.ID = uuid.New()
	}

	upsert := `
		INSERT INTO restaurants (id, user_id, name, slug, description, address, city, phone, email,
			category, delivery_time, delivery_fee, minimum_order, image_url, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		ON CONFLICT (slug) DO UPDATE SET
			user_id = COALESCE(EXCLUDED.user_id, restaurants.user_id),
			name = EXCLUDED.name,
			description = EXCLUDED.description,
			address = EXCLUDED.address,
			city = EXCLUDED.city,
			phone = EXCLUDED.phone,
			email = EXCLUDED.email,
			category = EXCLUDED.category,
			delivery_time = EXCLUDED.delivery_time,
			delivery_fee = EXCLUDED.delivery_fee,
			minimum_order = EXCLUDED.minimum_order,
			image_url = EXCLUDED.image_url,
			is_active = EXCLUDED.is_active
		RETURNING id
	`

	err = tx.QueryRow(ctx, upsert,
		restaurant.ID, restaurant.OwnerID, restaurant.Name, restaurant.Slug, restaurant.Description,
		restaurant.Address, restaurant.City, restaurant.Phone, restaurant.Email, restaurant.Category,
		restaurant.DeliveryTime, restaurant.DeliveryFee, restaurant.MinimumOrder, restaurant.ImageURL,
		restaurant.IsActive,
	).Scan(&restaurant.ID)
	if err != nil {
		r.logger.Error().Err(err).Str("slug", restaurant.Slug).Msg("failed to upsert restaurant")
		return fmt.Errorf("failed to upsert restaurant %s: %w", restaurant.Slug, err)
	}

	productUpsert := `
		INSERT INTO products (id, restaurant_id, name, description, category, price,
			is_available, preparation_time, sort_order, image_url)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (restaurant_id, name) DO UPDATE SET
			description = EXCLUDED.description,
			category = EXCLUDED.category,
			price = EXCLUDED.price,
			is_available = EXCLUDED.is_available,
			preparation_time = EXCLUDED.preparation_time,
			sort_order = EXCLUDED.sort_order,
			image_url = EXCLUDED.image_url
	`

	names := make([]string, 0, len(menu))
	batch := &pgx.Batch{}
	for i := range menu {
		p := &menu[i]
		if p.ID == uuid.Nil {
			p.ID = uuid.New()
		}
		p.RestaurantID = restaurant.ID
		names = append(names, p.Name)
		batch.Queue(productUpsert, p.ID, p.RestaurantID, p.Name, p.Description, p.Category,
			p.Price, p.IsAvailable, p.PreparationTime, p.SortOrder, p.ImageURL)
	}
	batch.Queue(`UPDATE products SET is_available = FALSE WHERE restaurant_id = $1 AND NOT (name = ANY($2))`,
		restaurant.ID, names)

	results := tx.SendBatch(ctx, batch)
	for i := 0; i < batch.Len(); i++ {
		if _, err := results.Exec(); err != nil {
			results.Close()
			r.logger.Error().Err(err).Str("slug", restaurant.Slug).Msg("failed to upsert menu")
			return fmt.Errorf("failed to upsert menu for %s: %w", restaurant.Slug, err)
		}
	}
	if err := results.Close(); err != nil {
		return fmt.Errorf("failed to upsert menu for %s: %w", restaurant.Slug, err)
	}

	if err := tx.Commit(ctx); err != nil {
		r.logger.Error().Err(err).Str("slug", restaurant.Slug).Msg("failed to commit import")
		return fmt.Errorf("failed to commit import: %w", err)
	}

	r.logger.Debug().
		Str("slug", restaurant.Slug).
		Int("products", len(menu)).
		Msg("restaurant imported")

	return nil
}

func scanRestaurant(row pgx.Row) (*model.Restaurant, error) {
	var rest model.Restaurant
	err := row.Scan(
		&rest.ID, &rest.OwnerID, &rest.Name, &rest.Slug, &rest.Description, &rest.Address,
		&rest.City, &rest.Phone, &rest.Email, &rest.Category, &rest.Rating, &rest.TotalReviews,
		&rest.DeliveryTime, &rest.DeliveryFee, &rest.MinimumOrder, &rest.ImageURL,
		&rest.IsActive, &rest.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &rest, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

package repository

import (
	"context"
	"errors"
	"fmt"

	"mini-eats/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// reviewRepository implements the ReviewRepository interface using PostgreSQL.
type reviewRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewReviewRepository creates a new PostgreSQL-backed review repository.
func NewReviewRepository(pool *pgxpool.Pool, logger zerolog.Logger) ReviewRepository {
	return &reviewRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "review").Logger(),
	}
}

// Create stores a review and recomputes the restaurant's average rating
// (rounded to one decimal) and review count.
func (r *reviewRepository) Create(ctx context.Context, review *model.Review) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to begin transaction")
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	insert := `
		INSERT INTO reviews (id, order_id, restaurant_id, user_id, rating, comment, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err = tx.Exec(ctx, insert,
		review.ID, review.OrderID, review.RestaurantID, review.UserID,
		review.Rating, review.Comment, review.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err, "reviews_order_id_key") {
			return model.ErrAlreadyReviewed
		}
		r.logger.Error().Err(err).Str("order_id", review.OrderID.String()).Msg("failed to create review")
		return fmt.Errorf("failed to create review: %w", err)
	}

	refresh := `
		UPDATE restaurants SET
			rating = agg.avg_rating,
			total_reviews = agg.review_count
		FROM (
			SELECT ROUND(AVG(rating)::NUMERIC, 1)::DOUBLE PRECISION AS avg_rating,
				COUNT(*)::INTEGER AS review_count
			FROM reviews
			WHERE restaurant_id = $1
		) agg
		WHERE restaurants.id = $1
	`
	if _, err := tx.Exec(ctx, refresh, review.RestaurantID); err != nil {
		r.logger.Error().Err(err).Str("restaurant_id", review.RestaurantID.String()).Msg("failed to refresh rating")
		return fmt.Errorf("failed to refresh restaurant rating: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		r.logger.Error().Err(err).Msg("failed to commit review")
		return fmt.Errorf("failed to commit review: %w", err)
	}

	r.logger.Debug().
		Str("order_id", review.OrderID.String()).
		Int("rating", review.Rating).
		Msg("review created successfully")

	return nil
}

// GetByOrder retrieves the review left for an order.
func (r *reviewRepository) GetByOrder(ctx context.Context, orderID uuid.UUID) (*model.Review, error) {
	query := `
		SELECT id, order_id, restaurant_id, user_id, rating, comment, created_at
		FROM reviews
		WHERE order_id = $1
	`

	var rv model.Review
	err := r.pool.QueryRow(ctx, query, orderID).Scan(
		&rv.ID, &rv.OrderID, &rv.RestaurantID, &rv.UserID, &rv.Rating, &rv.Comment, &rv.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		r.logger.Error().Err(err).Str("order_id", orderID.String()).Msg("failed to query review")
		return nil, fmt.Errorf("failed to query review: %w", err)
	}

	return &rv, nil
}

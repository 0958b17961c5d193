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

type profileRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewProfileRepository creates a new PostgreSQL-backed profile repository.
func NewProfileRepository(pool *pgxpool.Pool, logger zerolog.Logger) ProfileRepository {
	return &profileRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "profile").Logger(),
	}
}

func (r *profileRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Profile, error) {
	query := `
		SELECT id, email, full_name, role, phone, created_at
		FROM profiles
		WHERE id = $1
	`

	var p model.Profile
	err := r.pool.QueryRow(ctx, query, id).Scan(&p.ID, &p.Email, &p.FullName, &p.Role, &p.Phone, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.Debug().Str("user_id", id.String()).Msg("profile not found")
			return nil, nil
		}
		r.logger.Error().Err(err).Str("user_id", id.String()).Msg("failed to query profile")
		return nil, fmt.Errorf("failed to query profile: %w", err)
	}

	return &p, nil
}

func (r *profileRepository) Create(ctx context.Context, profile *model.Profile, restaurant *model.Restaurant) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to begin transaction")
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	insertProfile := `
		INSERT INTO profiles (id, email, full_name, role, phone)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at
	`
	err = tx.QueryRow(ctx, insertProfile,
		profile.ID, profile.Email, profile.FullName, profile.Role, profile.Phone,
	).Scan(&profile.CreatedAt)
	if err != nil {
		if isUniqueViolation(err, "profiles_pkey") || isUniqueViolation(err, "profiles_email_key") {
			r.logger.Debug().Str("user_id", profile.ID.String()).Msg("profile already exists")
			return model.ErrProfileExists
		}
		r.logger.Error().Err(err).Str("user_id", profile.ID.String()).Msg("failed to create profile")
		return fmt.Errorf("failed to create profile: %w", err)
	}

	if restaurant != nil {
		insertRestaurant := `
			INSERT INTO restaurants (id, user_id, name, slug, category, phone, email, is_active)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			RETURNING created_at
		`
		err = tx.QueryRow(ctx, insertRestaurant,
			restaurant.ID, profile.ID, restaurant.Name, restaurant.Slug, restaurant.Category,
			restaurant.Phone, restaurant.Email, restaurant.IsActive,
		).Scan(&restaurant.CreatedAt)
		if err != nil {
			r.logger.Error().Err(err).Str("slug", restaurant.Slug).Msg("failed to create restaurant")
			return fmt.Errorf("failed to create restaurant %s: %w", restaurant.Slug, err)
		}
		restaurant.OwnerID = &profile.ID
	}

	if err = tx.Commit(ctx); err != nil {
		r.logger.Error().Err(err).Msg("failed to commit transaction")
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	r.logger.Info().
		Str("user_id", profile.ID.String()).
		Str("role", string(profile.Role)).
		Bool("with_restaurant", restaurant != nil).
		Msg("profile created")

	return nil
}

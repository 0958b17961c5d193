package service

import (
	"context"
	"fmt"
	"strings"

	"mini-eats/internal/model"
	"mini-eats/internal/repository"

	"github.com/rs/zerolog"
)

// catalogService implements CatalogService.
type catalogService struct {
	restaurantRepo repository.RestaurantRepository
	productRepo    repository.ProductRepository
	logger         zerolog.Logger
}

// NewCatalogService creates a new catalog service.
func NewCatalogService(
	restaurantRepo repository.RestaurantRepository,
	productRepo repository.ProductRepository,
	logger zerolog.Logger,
) CatalogService {
	return &catalogService{
		restaurantRepo: restaurantRepo,
		productRepo:    productRepo,
		logger:         logger.With().Str("service", "catalog").Logger(),
	}
}

// ListRestaurants returns active restaurants matching filter.
func (s *catalogService) ListRestaurants(ctx context.Context, filter model.RestaurantFilter) ([]model.Restaurant, error) {
	filter.Category = strings.TrimSpace(filter.Category)
	filter.City = strings.TrimSpace(filter.City)
	filter.Search = strings.TrimSpace(filter.Search)

	restaurants, err := s.restaurantRepo.Query(ctx, filter)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to list restaurants")
		return nil, fmt.Errorf("failed to list restaurants: %w", err)
	}

	s.logger.Debug().
		Int("count", len(restaurants)).
		Str("category", filter.Category).
		Str("city", filter.City).
		Msg("restaurants listed")

	return restaurants, nil
}

// GetRestaurant retrieves an active restaurant by slug.
func (s *catalogService) GetRestaurant(ctx context.Context, slug string) (*model.Restaurant, error) {
	restaurant, err := s.restaurantRepo.GetBySlug(ctx, slug)
	if err != nil {
		s.logger.Error().Err(err).Str("slug", slug).Msg("failed to get restaurant")
		return nil, fmt.Errorf("failed to get restaurant: %w", err)
	}

	if restaurant == nil || !restaurant.IsActive {
		return nil, model.ErrRestaurantNotFound
	}

	return restaurant, nil
}

// Menu returns the available products of the restaurant with the given slug.
func (s *catalogService) Menu(ctx context.Context, slug string) ([]model.Product, error) {
	restaurant, err := s.GetRestaurant(ctx, slug)
	if err != nil {
		return nil, err
	}

	products, err := s.productRepo.MenuItems(ctx, restaurant.ID)
	if err != nil {
		s.logger.Error().Err(err).Str("slug", slug).Msg("failed to get menu")
		return nil, fmt.Errorf("failed to get menu: %w", err)
	}

	return products, nil
}

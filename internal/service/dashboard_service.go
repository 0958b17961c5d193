package service

import (
	"context"
	"fmt"

	"mini-eats/internal/model"
	"mini-eats/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// recentOrdersLimit is how many orders the dashboard lists.
const recentOrdersLimit = 5

type dashboardService struct {
	restaurantRepo repository.RestaurantRepository
	orderRepo      repository.OrderRepository
	logger         zerolog.Logger
}

// NewDashboardService creates a new dashboard service.
func NewDashboardService(
	restaurantRepo repository.RestaurantRepository,
	orderRepo repository.OrderRepository,
	logger zerolog.Logger,
) DashboardService {
	return &dashboardService{
		restaurantRepo: restaurantRepo,
		orderRepo:      orderRepo,
		logger:         logger.With().Str("service", "dashboard").Logger(),
	}
}

// Get returns the stats and latest orders of the restaurant owned by ownerID.
func (s *dashboardService) Get(ctx context.Context, ownerID uuid.UUID) (*model.Dashboard, error) {
	restaurant, err := s.restaurantRepo.GetByOwner(ctx, ownerID)
	if err != nil {
		s.logger.Error().Err(err).Str("user_id", ownerID.String()).Msg("failed to get owned restaurant")
		return nil, fmt.Errorf("failed to get restaurant: %w", err)
	}
	if restaurant == nil {
		return nil, model.ErrRestaurantNotFound
	}

	stats, err := s.restaurantRepo.Stats(ctx, restaurant.ID)
	if err != nil {
		s.logger.Error().Err(err).Str("restaurant_id", restaurant.ID.String()).Msg("failed to get stats")
		return nil, fmt.Errorf("failed to get restaurant stats: %w", err)
	}
	if stats == nil {
		return nil, model.ErrRestaurantNotFound
	}

	recent, err := s.orderRepo.ListForRestaurant(ctx, restaurant.ID, recentOrdersLimit)
	if err != nil {
		s.logger.Error().Err(err).Str("restaurant_id", restaurant.ID.String()).Msg("failed to get recent orders")
		return nil, fmt.Errorf("failed to get recent orders: %w", err)
	}

	return &model.Dashboard{
		Restaurant:   *restaurant,
		Stats:        *stats,
		RecentOrders: recent,
	}, nil
}

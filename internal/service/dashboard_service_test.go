package service

import (
	"context"
	"errors"
	"testing"

	"mini-eats/internal/model"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestDashboardService_Get(t *testing.T) {
	restaurantRepo := new(MockRestaurantRepository)
	orderRepo := new(MockOrderRepository)
	svc := NewDashboardService(restaurantRepo, orderRepo, zerolog.Nop())
	ctx := context.Background()

	ownerID := uuid.New()
	restaurant := &model.Restaurant{ID: uuid.New(), OwnerID: &ownerID, Name: "Chez Tantie"}
	stats := &model.RestaurantStats{
		TotalOrders:   12,
		PendingOrders: 2,
		TotalRevenue:  96000,
		TopProducts: []model.ProductSales{
			{ProductID: uuid.New(), Name: "Poulet Braisé", Orders: 9, Quantity: 14, Revenue: 63000},
		},
	}
	recent := []model.Order{{ID: uuid.New(), Status: model.StatusPending}}

	restaurantRepo.On("GetByOwner", ctx, ownerID).Return(restaurant, nil)
	restaurantRepo.On("Stats", ctx, restaurant.ID).Return(stats, nil)
	orderRepo.On("ListForRestaurant", ctx, restaurant.ID, recentOrdersLimit).Return(recent, nil)

	dashboard, err := svc.Get(ctx, ownerID)

	require.NoError(t, err)
	assert.Equal(t, restaurant.ID, dashboard.Restaurant.ID)
	assert.Equal(t, 12, dashboard.Stats.TotalOrders)
	assert.Equal(t, int64(96000), dashboard.Stats.TotalRevenue)
	assert.Len(t, dashboard.Stats.TopProducts, 1)
	assert.Equal(t, recent, dashboard.RecentOrders)
	restaurantRepo.AssertExpectations(t)
	orderRepo.AssertExpectations(t)
}

func TestDashboardService_Get_NoRestaurant(t *testing.T) {
	restaurantRepo := new(MockRestaurantRepository)
	orderRepo := new(MockOrderRepository)
	svc := NewDashboardService(restaurantRepo, orderRepo, zerolog.Nop())
	ctx := context.Background()

	userID := uuid.New()
	restaurantRepo.On("GetByOwner", ctx, userID).Return(nil, nil)

	dashboard, err := svc.Get(ctx, userID)

	assert.ErrorIs(t, err, model.ErrRestaurantNotFound)
	assert.Nil(t, dashboard)
	restaurantRepo.AssertNotCalled(t, "Stats", mock.Anything, mock.Anything)
}

func TestDashboardService_Get_StatsError(t *testing.T) {
	restaurantRepo := new(MockRestaurantRepository)
	orderRepo := new(MockOrderRepository)
	svc := NewDashboardService(restaurantRepo, orderRepo, zerolog.Nop())
	ctx := context.Background()

	ownerID := uuid.New()
	restaurant := &model.Restaurant{ID: uuid.New(), OwnerID: &ownerID}
	dbErr := errors.New("statement timeout")
	restaurantRepo.On("GetByOwner", ctx, ownerID).Return(restaurant, nil)
	restaurantRepo.On("Stats", ctx, restaurant.ID).Return(nil, dbErr)

	_, err := svc.Get(ctx, ownerID)

	assert.ErrorIs(t, err, dbErr)
}

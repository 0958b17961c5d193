package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"mini-eats/internal/events"
	"mini-eats/internal/lifecycle"
	"mini-eats/internal/model"
	"mini-eats/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// maxStatusAttempts bounds how often a transition is re-evaluated after
// losing a race with a concurrent update of the same order.
const maxStatusAttempts = 3

// orderService implements OrderService.
type orderService struct {
	orderRepo      repository.OrderRepository
	restaurantRepo repository.RestaurantRepository
	reviewRepo     repository.ReviewRepository
	publisher      events.Publisher
	logger         zerolog.Logger
	now            func() time.Time
}

// NewOrderService creates a new order service.
func NewOrderService(
	orderRepo repository.OrderRepository,
	restaurantRepo repository.RestaurantRepository,
	reviewRepo repository.ReviewRepository,
	publisher events.Publisher,
	logger zerolog.Logger,
) OrderService {
	return &orderService{
		orderRepo:      orderRepo,
		restaurantRepo: restaurantRepo,
		reviewRepo:     reviewRepo,
		publisher:      publisher,
		logger:         logger.With().Str("service", "order").Logger(),
		now:            time.Now,
	}
}

// GetByID retrieves an order. Orders placed by a signed-in customer are
// visible to that customer and to the restaurant's owner; guest orders are
// visible to anyone holding the order ID.
func (s *orderService) GetByID(ctx context.Context, userID *uuid.UUID, id uuid.UUID) (*model.Order, error) {
	order, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	if order.UserID == nil {
		return order, nil
	}
	if userID == nil {
		return nil, model.ErrOrderNotFound
	}
	if *order.UserID == *userID {
		return order, nil
	}

	owns, err := s.ownsRestaurant(ctx, *userID, order.RestaurantID)
	if err != nil {
		return nil, err
	}
	if !owns {
		// Do not reveal that the order exists.
		return nil, model.ErrOrderNotFound
	}

	return order, nil
}

// ListForUser returns the user's orders split into active and history,
// each newest first.
func (s *orderService) ListForUser(ctx context.Context, userID uuid.UUID) (*model.OrderHistory, error) {
	orders, err := s.orderRepo.ListForUser(ctx, userID)
	if err != nil {
		s.logger.Error().Err(err).Str("user_id", userID.String()).Msg("failed to list orders")
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}

	history := &model.OrderHistory{
		Active:  []model.Order{},
		History: []model.Order{},
	}
	for _, o := range orders {
		if lifecycle.IsActive(o.Status) {
			history.Active = append(history.Active, o)
		} else {
			history.History = append(history.History, o)
		}
	}

	return history, nil
}

// UpdateStatus advances an order one step. Only the owner of the order's
// restaurant may do so. Repeating a transition that already happened is a
// no-op that returns the current order.
func (s *orderService) UpdateStatus(ctx context.Context, userID uuid.UUID, id uuid.UUID, status model.OrderStatus) (*model.Order, error) {
	if status == model.StatusCancelled {
		return s.Cancel(ctx, userID, id)
	}

	return s.transition(ctx, id, func(order *model.Order) (bool, error) {
		owns, err := s.ownsRestaurant(ctx, userID, order.RestaurantID)
		if err != nil {
			return false, err
		}
		if !owns {
			return false, model.ErrForbidden
		}
		return lifecycle.Advance(order.Status, status)
	}, status)
}

// Cancel cancels an order while it is still pending or confirmed. The
// customer who placed it and the restaurant's owner may cancel.
func (s *orderService) Cancel(ctx context.Context, userID uuid.UUID, id uuid.UUID) (*model.Order, error) {
	return s.transition(ctx, id, func(order *model.Order) (bool, error) {
		if order.UserID == nil || *order.UserID != userID {
			owns, err := s.ownsRestaurant(ctx, userID, order.RestaurantID)
			if err != nil {
				return false, err
			}
			if !owns {
				return false, model.ErrForbidden
			}
		}
		return lifecycle.Cancel(order.Status)
	}, model.StatusCancelled)
}

// transition loads the order, lets decide check the move, and applies it
// with a compare-and-set on the current status. A lost race re-reads the
// order and decides again, so concurrent identical requests converge.
func (s *orderService) transition(
	ctx context.Context,
	id uuid.UUID,
	decide func(order *model.Order) (bool, error),
	target model.OrderStatus,
) (*model.Order, error) {
	for attempt := 1; attempt <= maxStatusAttempts; attempt++ {
		order, err := s.load(ctx, id)
		if err != nil {
			return nil, err
		}

		changed, err := decide(order)
		if err != nil {
			s.logger.Debug().Err(err).
				Str("order_id", id.String()).
				Str("from", string(order.Status)).
				Str("to", string(target)).
				Msg("status change rejected")
			return nil, err
		}
		if !changed {
			return order, nil
		}

		previous := order.Status
		updated, err := s.orderRepo.UpdateStatus(ctx, id, previous, target)
		if err != nil {
			s.logger.Error().Err(err).Str("order_id", id.String()).Msg("failed to update order status")
			return nil, fmt.Errorf("failed to update order status: %w", err)
		}
		if !updated {
			s.logger.Debug().
				Str("order_id", id.String()).
				Int("attempt", attempt).
				Msg("order changed concurrently, re-evaluating")
			continue
		}

		order.Status = target
		order.UpdatedAt = s.now().UTC()

		if err := s.publisher.Publish(ctx, events.StatusChanged(order, previous)); err != nil {
			s.logger.Warn().Err(err).Str("order_id", id.String()).Msg("failed to publish status change")
		}

		s.logger.Info().
			Str("order_id", id.String()).
			Str("from", string(previous)).
			Str("to", string(target)).
			Msg("order status updated")

		return order, nil
	}

	return nil, fmt.Errorf("failed to update order status: order %s kept changing", id)
}

// Review rates a completed order on behalf of its customer.
func (s *orderService) Review(ctx context.Context, userID uuid.UUID, id uuid.UUID, req *model.ReviewRequest) (*model.Review, error) {
	if req == nil || req.Rating < 1 || req.Rating > 5 {
		return nil, model.ErrInvalidRating
	}

	order, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	if order.UserID == nil || *order.UserID != userID || !lifecycle.CanReview(order.Status) {
		return nil, model.ErrReviewNotAllowed
	}

	review := &model.Review{
		ID:           uuid.New(),
		OrderID:      order.ID,
		RestaurantID: order.RestaurantID,
		UserID:       userID,
		Rating:       req.Rating,
		Comment:      strings.TrimSpace(req.Comment),
		CreatedAt:    s.now().UTC(),
	}

	if err := s.reviewRepo.Create(ctx, review); err != nil {
		if errors.Is(err, model.ErrAlreadyReviewed) {
			return nil, err
		}
		s.logger.Error().Err(err).Str("order_id", id.String()).Msg("failed to create review")
		return nil, fmt.Errorf("failed to create review: %w", err)
	}

	s.logger.Info().
		Str("order_id", id.String()).
		Int("rating", review.Rating).
		Msg("order reviewed")

	return review, nil
}

func (s *orderService) load(ctx context.Context, id uuid.UUID) (*model.Order, error) {
	order, err := s.orderRepo.GetByID(ctx, id)
	if err != nil {
		s.logger.Error().Err(err).Str("order_id", id.String()).Msg("failed to get order")
		return nil, fmt.Errorf("failed to get order: %w", err)
	}
	if order == nil {
		return nil, model.ErrOrderNotFound
	}
	return order, nil
}

func (s *orderService) ownsRestaurant(ctx context.Context, userID, restaurantID uuid.UUID) (bool, error) {
	restaurant, err := s.restaurantRepo.GetByOwner(ctx, userID)
	if err != nil {
		s.logger.Error().Err(err).Str("user_id", userID.String()).Msg("failed to get owned restaurant")
		return false, fmt.Errorf("failed to get owned restaurant: %w", err)
	}
	return restaurant != nil && restaurant.ID == restaurantID, nil
}

package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"mini-eats/internal/cart"
	"mini-eats/internal/events"
	"mini-eats/internal/model"
	"mini-eats/internal/payment"
	"mini-eats/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// CheckoutConfig holds the checkout time budgets and defaults.
type CheckoutConfig struct {
	// PaymentTimeout bounds the payment initiation call.
	PaymentTimeout time.Duration

	// PersistenceTimeout bounds the order insert transaction.
	PersistenceTimeout time.Duration

	// DefaultPaymentMethod is used when the request names none.
	DefaultPaymentMethod model.PaymentMethod
}

// checkoutService implements CheckoutService.
type checkoutService struct {
	store          cart.Store
	restaurantRepo repository.RestaurantRepository
	orderRepo      repository.OrderRepository
	profileRepo    repository.ProfileRepository
	gateway        payment.Gateway
	orderNumbers   payment.OrderNumberGenerator
	publisher      events.Publisher
	config         CheckoutConfig
	logger         zerolog.Logger
	now            func() time.Time
}

// NewCheckoutService creates a new checkout service.
func NewCheckoutService(
	store cart.Store,
	restaurantRepo repository.RestaurantRepository,
	orderRepo repository.OrderRepository,
	profileRepo repository.ProfileRepository,
	gateway payment.Gateway,
	orderNumbers payment.OrderNumberGenerator,
	publisher events.Publisher,
	config CheckoutConfig,
	logger zerolog.Logger,
) CheckoutService {
	if config.DefaultPaymentMethod == "" {
		config.DefaultPaymentMethod = model.PaymentCash
	}
	return &checkoutService{
		store:          store,
		restaurantRepo: restaurantRepo,
		orderRepo:      orderRepo,
		profileRepo:    profileRepo,
		gateway:        gateway,
		orderNumbers:   orderNumbers,
		publisher:      publisher,
		config:         config,
		logger:         logger.With().Str("service", "checkout").Logger(),
		now:            time.Now,
	}
}

// Submit turns the session's cart into an order. At most one submission
// per session runs at a time; a second concurrent call fails with
// model.ErrSubmissionInProgress and changes nothing. Any failure before
// the order is stored leaves the cart intact.
func (s *checkoutService) Submit(ctx context.Context, sessionID string, userID *uuid.UUID, req *model.CheckoutRequest) (*model.Order, error) {
	session := cart.NewSession(sessionID, s.store)

	release, err := session.BeginCheckout(ctx)
	if err != nil {
		if errors.Is(err, cart.ErrCheckoutLocked) {
			s.logger.Warn().Str("session_id", sessionID).Msg("submission already in progress")
			return nil, model.ErrSubmissionInProgress
		}
		return nil, fmt.Errorf("failed to start checkout: %w", err)
	}
	defer func() {
		if relErr := release(context.WithoutCancel(ctx)); relErr != nil {
			s.logger.Error().Err(relErr).Str("session_id", sessionID).Msg("failed to release checkout guard")
		}
	}()

	c, err := session.Snapshot(ctx)
	if err != nil {
		s.logger.Error().Err(err).Str("session_id", sessionID).Msg("failed to read cart")
		return nil, fmt.Errorf("failed to read cart: %w", err)
	}
	if c.IsEmpty() {
		return nil, model.ErrEmptyCart
	}

	customer, method, err := s.validateRequest(req)
	if err != nil {
		return nil, err
	}

	restaurant, err := s.restaurantRepo.GetByID(ctx, c.RestaurantID)
	if err != nil {
		s.logger.Error().Err(err).Str("restaurant_id", c.RestaurantID.String()).Msg("failed to get restaurant")
		return nil, fmt.Errorf("failed to get restaurant: %w", err)
	}
	if restaurant == nil {
		return nil, model.ErrRestaurantNotFound
	}
	if !restaurant.IsActive {
		return nil, model.ErrRestaurantUnavailable
	}

	itemsTotal := c.Subtotal()
	if itemsTotal < restaurant.MinimumOrder {
		s.logger.Debug().
			Int64("items_total", itemsTotal).
			Int64("minimum_order", restaurant.MinimumOrder).
			Msg("order below restaurant minimum")
		return nil, model.ErrBelowMinimumOrder
	}

	if userID != nil {
		// The order row references the profile, so a signed-in customer
		// without one is stopped before any payment starts.
		profile, err := s.profileRepo.GetByID(ctx, *userID)
		if err != nil {
			s.logger.Error().Err(err).Str("user_id", userID.String()).Msg("failed to get customer profile")
			return nil, fmt.Errorf("failed to get customer profile: %w", err)
		}
		if profile == nil {
			s.logger.Warn().Str("user_id", userID.String()).Msg("signed-in customer has no profile")
			return nil, model.ErrProfileNotFound
		}
		if customer.Email == "" {
			customer.Email = profile.Email
		}
	}

	now := s.now().UTC()
	order := &model.Order{
		ID:                  uuid.New(),
		OrderNumber:         s.orderNumbers.Next(),
		UserID:              userID,
		RestaurantID:        restaurant.ID,
		Status:              model.StatusPending,
		ServiceType:         model.ServiceDelivery,
		CustomerName:        customer.Name,
		CustomerPhone:       customer.Phone,
		CustomerEmail:       customer.Email,
		DeliveryAddress:     customer.Address,
		SpecialInstructions: customer.Instructions,
		ItemsTotal:          itemsTotal,
		DeliveryFee:         restaurant.DeliveryFee,
		TotalAmount:         itemsTotal + restaurant.DeliveryFee,
		PaymentMethod:       method,
		PaymentStatus:       model.PaymentStatusPending,
		CreatedAt:           now,
		UpdatedAt:           now,
	}
	order.Items = c.OrderItems(order.ID)
	order.Restaurant = &model.RestaurantSummary{
		Name:     restaurant.Name,
		Address:  restaurant.Address,
		ImageURL: restaurant.ImageURL,
		Phone:    restaurant.Phone,
	}

	result, err := s.initiatePayment(ctx, order)
	if err != nil {
		return nil, err
	}
	order.TransactionID = result.TransactionID
	if method.Prepaid() {
		order.PaymentStatus = model.PaymentStatusConfirmed
	}

	if err := s.persist(ctx, order); err != nil {
		return nil, err
	}

	if err := session.Clear(ctx); err != nil {
		s.logger.Warn().Err(err).
			Str("session_id", sessionID).
			Str("order_id", order.ID.String()).
			Msg("order stored but cart could not be cleared")
	}

	if err := s.publisher.Publish(ctx, events.OrderCreated(order)); err != nil {
		s.logger.Warn().Err(err).Str("order_id", order.ID.String()).Msg("failed to publish order created event")
	}

	s.logger.Info().
		Str("order_id", order.ID.String()).
		Str("order_number", order.OrderNumber).
		Str("restaurant_id", order.RestaurantID.String()).
		Int64("total_amount", order.TotalAmount).
		Int("item_count", len(order.Items)).
		Msg("order submitted successfully")

	return order, nil
}

// validateRequest trims the customer fields, checks the required ones and
// resolves the payment method.
func (s *checkoutService) validateRequest(req *model.CheckoutRequest) (model.CustomerInfo, model.PaymentMethod, error) {
	if req == nil {
		return model.CustomerInfo{}, "", &model.MissingFieldError{Field: "name"}
	}

	customer := model.CustomerInfo{
		Name:         strings.TrimSpace(req.Customer.Name),
		Phone:        strings.TrimSpace(req.Customer.Phone),
		Address:      strings.TrimSpace(req.Customer.Address),
		Email:        strings.TrimSpace(req.Customer.Email),
		Instructions: strings.TrimSpace(req.Customer.Instructions),
	}

	switch {
	case customer.Name == "":
		return customer, "", &model.MissingFieldError{Field: "name"}
	case customer.Phone == "":
		return customer, "", &model.MissingFieldError{Field: "phone"}
	case customer.Address == "":
		return customer, "", &model.MissingFieldError{Field: "address"}
	}

	method := req.PaymentMethod
	if method == "" {
		method = s.config.DefaultPaymentMethod
	}
	if !method.Valid() {
		return customer, "", model.ErrInvalidPaymentMethod
	}

	return customer, method, nil
}

func (s *checkoutService) initiatePayment(ctx context.Context, order *model.Order) (payment.Result, error) {
	payCtx, cancel := withOptionalTimeout(ctx, s.config.PaymentTimeout)
	defer cancel()

	result, err := s.gateway.InitiatePayment(payCtx, order)
	if err == nil && payCtx.Err() != nil {
		// An answer that arrives after the deadline is not trusted.
		err = payCtx.Err()
	}
	if err == nil && result.TransactionID == "" {
		err = errors.New("gateway returned no transaction id")
	}
	if err != nil {
		s.logger.Error().Err(err).
			Str("order_number", order.OrderNumber).
			Str("payment_method", string(order.PaymentMethod)).
			Msg("payment initiation failed")
		return payment.Result{}, &model.PaymentInitiationError{Err: err}
	}

	return result, nil
}

// persist stores the order and its items in one transaction.
func (s *checkoutService) persist(ctx context.Context, order *model.Order) (err error) {
	dbCtx, cancel := withOptionalTimeout(ctx, s.config.PersistenceTimeout)
	defer cancel()

	fail := func(cause error) error {
		s.logger.Error().Err(cause).
			Str("order_number", order.OrderNumber).
			Str("transaction_id", order.TransactionID).
			Msg("failed to persist order after payment initiation")
		return &model.PersistenceError{
			TransactionID: order.TransactionID,
			OrderNumber:   order.OrderNumber,
			Err:           cause,
		}
	}

	tx, err := s.orderRepo.BeginTx(dbCtx)
	if err != nil {
		return fail(err)
	}

	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(context.WithoutCancel(ctx)); rbErr != nil {
				s.logger.Error().Err(rbErr).Msg("failed to rollback transaction")
			}
		}
	}()

	if err = s.orderRepo.CreateOrder(dbCtx, tx, order); err != nil {
		return fail(err)
	}

	if err = s.orderRepo.CreateOrderItems(dbCtx, tx, order.Items); err != nil {
		return fail(err)
	}

	if err = tx.Commit(dbCtx); err != nil {
		return fail(err)
	}

	return nil
}

func withOptionalTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}

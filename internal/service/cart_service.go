package service

import (
	"context"
	"fmt"

	"mini-eats/internal/cart"
	"mini-eats/internal/model"
	"mini-eats/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// CartView is the cart representation returned to clients.
type CartView struct {
	RestaurantID *uuid.UUID `json:"restaurantId,omitempty"`
	Lines        []CartLine `json:"lines"`
	ItemCount    int        `json:"itemCount"`
	Subtotal     int64      `json:"subtotal"`
}

// CartLine is one line of a CartView.
type CartLine struct {
	Product   model.Product `json:"product"`
	Quantity  int           `json:"quantity"`
	LineTotal int64         `json:"lineTotal"`
}

func newCartView(c cart.Cart) *CartView {
	view := &CartView{
		Lines:    make([]CartLine, 0, len(c.Lines)),
		Subtotal: c.Subtotal(),
	}
	if !c.IsEmpty() {
		id := c.RestaurantID
		view.RestaurantID = &id
	}
	for _, l := range c.Lines {
		view.Lines = append(view.Lines, CartLine{
			Product:   l.Product,
			Quantity:  l.Quantity,
			LineTotal: l.LineTotal(),
		})
		view.ItemCount += l.Quantity
	}
	return view
}

// cartService implements CartService.
type cartService struct {
	store       cart.Store
	productRepo repository.ProductRepository
	logger      zerolog.Logger
}

// NewCartService creates a new cart service.
func NewCartService(store cart.Store, productRepo repository.ProductRepository, logger zerolog.Logger) CartService {
	return &cartService{
		store:       store,
		productRepo: productRepo,
		logger:      logger.With().Str("service", "cart").Logger(),
	}
}

// View returns the session's cart.
func (s *cartService) View(ctx context.Context, sessionID string) (*CartView, error) {
	c, err := cart.NewSession(sessionID, s.store).Snapshot(ctx)
	if err != nil {
		s.logger.Error().Err(err).Str("session_id", sessionID).Msg("failed to read cart")
		return nil, fmt.Errorf("failed to read cart: %w", err)
	}
	return newCartView(c), nil
}

// AddItem looks the product up and adds one unit of it to the cart.
func (s *cartService) AddItem(ctx context.Context, sessionID string, productID uuid.UUID) (*CartView, error) {
	product, err := s.productRepo.GetByID(ctx, productID)
	if err != nil {
		s.logger.Error().Err(err).Str("product_id", productID.String()).Msg("failed to get product")
		return nil, fmt.Errorf("failed to get product: %w", err)
	}
	if product == nil {
		return nil, model.ErrProductNotFound
	}

	c, err := cart.NewSession(sessionID, s.store).AddItem(ctx, *product)
	if err != nil {
		s.logger.Debug().Err(err).
			Str("session_id", sessionID).
			Str("product_id", productID.String()).
			Msg("add to cart rejected")
		return nil, err
	}

	return newCartView(c), nil
}

// RemoveItem removes one unit of a product from the cart.
func (s *cartService) RemoveItem(ctx context.Context, sessionID string, productID uuid.UUID) (*CartView, error) {
	c, err := cart.NewSession(sessionID, s.store).RemoveItem(ctx, productID)
	if err != nil {
		return nil, err
	}
	return newCartView(c), nil
}

// Clear empties the cart.
func (s *cartService) Clear(ctx context.Context, sessionID string) error {
	if err := cart.NewSession(sessionID, s.store).Clear(ctx); err != nil {
		s.logger.Error().Err(err).Str("session_id", sessionID).Msg("failed to clear cart")
		return err
	}
	return nil
}

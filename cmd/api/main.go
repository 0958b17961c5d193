package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"mini-eats/internal/cart"
	"mini-eats/internal/config"
	"mini-eats/internal/database"
	"mini-eats/internal/events"
	"mini-eats/internal/handler"
	"mini-eats/internal/model"
	"mini-eats/internal/payment"
	"mini-eats/internal/repository"
	"mini-eats/internal/router"
	"mini-eats/internal/service"

	"github.com/rs/zerolog"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logger := config.NewLogger(cfg.Logger)
	logger.Info().Msg("starting mini-eats API server")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pool, err := database.NewPool(ctx, cfg.Database, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer pool.Close()

	if cfg.Database.AutoMigrate {
		if err := database.Migrate(ctx, pool, logger); err != nil {
			return fmt.Errorf("failed to migrate database: %w", err)
		}
	}

	// Repositories
	restaurantRepo := repository.NewRestaurantRepository(pool, logger)
	productRepo := repository.NewProductRepository(pool, logger)
	orderRepo := repository.NewOrderRepository(pool, logger)
	profileRepo := repository.NewProfileRepository(pool, logger)
	reviewRepo := repository.NewReviewRepository(pool, logger)

	store, closeStore, err := newCartStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeStore()

	publisher, err := newPublisher(cfg.Kafka, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := publisher.Close(); err != nil {
			logger.Error().Err(err).Msg("failed to close event publisher")
		}
	}()

	gateway := payment.NewStubGateway(payment.StubConfig{SuccessURL: cfg.Checkout.PaymentSuccessURL}, logger)
	orderNumbers := payment.NewOrderNumberGenerator(cfg.Checkout.OrderNumberPrefix)

	// Services
	catalogService := service.NewCatalogService(restaurantRepo, productRepo, logger)
	cartService := service.NewCartService(store, productRepo, logger)
	checkoutService := service.NewCheckoutService(
		store, restaurantRepo, orderRepo, profileRepo, gateway, orderNumbers, publisher,
		service.CheckoutConfig{
			PaymentTimeout:       cfg.Checkout.PaymentTimeout,
			PersistenceTimeout:   cfg.Checkout.PersistenceTimeout,
			DefaultPaymentMethod: model.PaymentMethod(cfg.Checkout.DefaultPaymentMethod),
		},
		logger,
	)
	orderService := service.NewOrderService(orderRepo, restaurantRepo, reviewRepo, publisher, logger)
	profileService := service.NewProfileService(profileRepo, logger)
	dashboardService := service.NewDashboardService(restaurantRepo, orderRepo, logger)

	mux := router.New(router.Handlers{
		Catalog:  handler.NewCatalogHandler(catalogService, logger),
		Cart:     handler.NewCartHandler(cartService, logger),
		Checkout: handler.NewCheckoutHandler(checkoutService, logger),
		Payment:  handler.NewPaymentHandler(gateway, logger),
		Orders:   handler.NewOrderHandler(orderService, logger),
		Account:  handler.NewAccountHandler(profileService, dashboardService, logger),
	}, cfg.Auth.APIKey, logger)

	server := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serverErrors := make(chan error, 1)

	go func() {
		logger.Info().
			Str("address", cfg.Server.Address()).
			Msg("HTTP server started")
		serverErrors <- server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server error: %w", err)

	case sig := <-shutdown:
		logger.Info().
			Str("signal", sig.String()).
			Msg("shutdown signal received, starting graceful shutdown")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer shutdownCancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("failed to shutdown server gracefully")
			if closeErr := server.Close(); closeErr != nil {
				logger.Error().Err(closeErr).Msg("failed to close server")
			}
			return fmt.Errorf("server shutdown failed: %w", err)
		}

		logger.Info().Msg("server shutdown completed")
	}

	return nil
}

// newCartStore returns the Redis cart store when enabled, otherwise an
// in-process store. The returned func releases the store's resources.
func newCartStore(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (cart.Store, func(), error) {
	if !cfg.Redis.Enabled {
		logger.Info().Msg("using in-memory cart store (Redis disabled)")
		return cart.NewMemoryStore(cfg.Cart.TTL), func() {}, nil
	}

	client, err := cart.NewRedisClient(ctx, cfg.Redis.URL)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	logger.Info().Msg("using Redis cart store")
	store := cart.NewRedisStore(client, cart.RedisConfig{
		TTL:         cfg.Cart.TTL,
		CheckoutTTL: cfg.Cart.CheckoutTTL,
	}, logger)

	return store, func() {
		if err := client.Close(); err != nil {
			logger.Error().Err(err).Msg("failed to close Redis client")
		}
	}, nil
}

func newPublisher(cfg config.KafkaConfig, logger zerolog.Logger) (events.Publisher, error) {
	if !cfg.Enabled {
		logger.Info().Msg("order events disabled (Kafka disabled)")
		return events.NewNoopPublisher(), nil
	}

	producer, err := events.NewSyncProducer(events.KafkaConfig{
		Brokers:  cfg.Brokers,
		Topic:    cfg.Topic,
		ClientID: cfg.ClientID,
		Timeout:  cfg.Timeout,
	})
	if err != nil {
		return nil, err
	}

	logger.Info().Strs("brokers", cfg.Brokers).Str("topic", cfg.Topic).Msg("publishing order events to Kafka")
	return events.NewKafkaPublisher(producer, cfg.Topic, logger), nil
}

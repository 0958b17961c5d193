package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"mini-eats/internal/config"
	"mini-eats/internal/database"
	"mini-eats/internal/importer"
	"mini-eats/internal/repository"
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

	files := cfg.Import.Files
	if len(os.Args) > 1 {
		files = os.Args[1:]
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

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

	// Catalog files come from S3 when enabled, with the local file system as fallback.
	fileLoader := importer.NewFileLoader(logger)
	var s3Loader importer.Loader
	if cfg.S3.Enabled {
		s3Loader, err = importer.NewS3Loader(ctx, cfg.S3.Bucket, cfg.S3.Region, logger)
		if err != nil {
			logger.Warn().
				Err(err).
				Msg("failed to initialise S3 loader, falling back to local file system only")
		}
	}
	loader := importer.NewFallbackLoader(s3Loader, fileLoader, cfg.S3.Prefix, cfg.S3.Enabled, logger)

	im := importer.New(importer.Config{
		Files:   files,
		Workers: cfg.Import.Workers,
	}, loader, repository.NewRestaurantRepository(pool, logger), logger)

	summary, err := im.Run(ctx)
	if err != nil {
		return err
	}

	logger.Info().
		Int("files", summary.Files).
		Int("restaurants", summary.Restaurants).
		Int("products", summary.Products).
		Msg("import complete")
	return nil
}

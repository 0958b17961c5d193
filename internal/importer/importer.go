package importer

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"mini-eats/internal/model"

	"github.com/rs/zerolog"
)

// Loader reads one catalog file and returns its restaurant records.
type Loader interface {
	// Load reads a gzipped JSON-lines catalog file.
	Load(ctx context.Context, path string) ([]Record, error)
}

// Store persists an imported restaurant together with its menu.
type Store interface {
	Import(ctx context.Context, restaurant *model.Restaurant, menu []model.Product) error
}

// Config holds importer settings.
type Config struct {
	// Files is the list of catalog files to load, in precedence order:
	// when a slug appears in several files the last one wins.
	Files []string

	// Workers bounds how many files are loaded at once.
	// Default: 4
	Workers int
}

// Summary reports what an import run did.
type Summary struct {
	Files       int `json:"files"`
	Records     int `json:"records"`
	Duplicates  int `json:"duplicates"`
	Restaurants int `json:"restaurants"`
	Products    int `json:"products"`
}

// Importer loads catalog files and upserts their restaurants.
type Importer struct {
	config Config
	loader Loader
	store  Store
	logger zerolog.Logger
}

// New creates an importer.
func New(config Config, loader Loader, store Store, logger zerolog.Logger) *Importer {
	if config.Workers <= 0 {
		config.Workers = 4
	}
	return &Importer{
		config: config,
		loader: loader,
		store:  store,
		logger: logger.With().Str("component", "catalog-importer").Logger(),
	}
}

// Run loads every configured file, merges the records by slug and writes
// the result to the store. Nothing is written if any file fails to load.
func (im *Importer) Run(ctx context.Context) (*Summary, error) {
	if len(im.config.Files) == 0 {
		return nil, errors.New("no catalog files configured")
	}

	im.logger.Info().
		Int("file_count", len(im.config.Files)).
		Int("workers", im.config.Workers).
		Msg("starting catalog import")

	loaded, err := im.loadAll(ctx)
	if err != nil {
		return nil, err
	}

	catalog := NewCatalog()
	summary := &Summary{Files: len(loaded)}
	for _, records := range loaded {
		for _, rec := range records {
			summary.Records++
			if catalog.Add(rec) {
				summary.Duplicates++
			}
		}
	}

	for _, rec := range catalog.Records() {
		if err := ctx.Err(); err != nil {
			return summary, err
		}

		restaurant, menu := rec.toModel()
		if err := im.store.Import(ctx, restaurant, menu); err != nil {
			im.logger.Error().Err(err).Str("slug", rec.Slug).Msg("failed to import restaurant")
			return summary, fmt.Errorf("failed to import restaurant %s: %w", rec.Slug, err)
		}
		summary.Restaurants++
		summary.Products += len(menu)
	}

	im.logger.Info().
		Int("restaurants", summary.Restaurants).
		Int("products", summary.Products).
		Int("duplicates", summary.Duplicates).
		Msg("catalog import finished")

	return summary, nil
}

// loadAll loads the files concurrently and returns their records in file order.
func (im *Importer) loadAll(ctx context.Context) ([][]Record, error) {
	type loadResult struct {
		index   int
		records []Record
		err     error
	}

	files := im.config.Files
	jobs := make(chan int)
	resultChan := make(chan loadResult, len(files))

	var wg sync.WaitGroup
	for range min(im.config.Workers, len(files)) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				records, err := im.loader.Load(ctx, files[i])
				resultChan <- loadResult{index: i, records: records, err: err}
			}
		}()
	}

	for i := range files {
		jobs <- i
	}
	close(jobs)

	wg.Wait()
	close(resultChan)

	results := make([][]Record, len(files))
	var errs []error
	for result := range resultChan {
		if result.err != nil {
			im.logger.Error().
				Err(result.err).
				Str("file", files[result.index]).
				Msg("failed to load catalog file")
			errs = append(errs, fmt.Errorf("failed to load catalog file %s: %w", files[result.index], result.err))
			continue
		}
		results[result.index] = result.records
		im.logger.Info().
			Str("file", files[result.index]).
			Int("records", len(result.records)).
			Msg("catalog file loaded")
	}

	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return results, nil
}

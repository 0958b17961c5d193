//go:build ignore

package main

import (
	"compress/gzip"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
)

type menuItem struct {
	Name            string `json:"name"`
	Category        string `json:"category"`
	Price           int64  `json:"price"`
	PreparationTime int    `json:"preparationTime,omitempty"`
}

type record struct {
	Slug         string     `json:"slug"`
	Name         string     `json:"name"`
	Address      string     `json:"address"`
	City         string     `json:"city"`
	Category     string     `json:"category"`
	DeliveryTime string     `json:"deliveryTime,omitempty"`
	DeliveryFee  int64      `json:"deliveryFee"`
	MinimumOrder int64      `json:"minimumOrder"`
	Menu         []menuItem `json:"menu"`
}

// generateSampleCatalog writes two catalog files for local runs of cmd/importer.
// chez-tantie appears in both; the second file's version wins on import.
//
//	go run scripts/generate_sample_catalog.go
//	CATALOG_IMPORT_FILES=data/catalog/abidjan.jsonl.gz,data/catalog/updates.jsonl.gz go run ./cmd/importer
func main() {
	dataDir := "data/catalog"

	if err := os.MkdirAll(dataDir, 0755); err != nil {
		log.Fatalf("Failed to create directory: %v", err)
	}

	files := map[string][]record{
		"abidjan.jsonl.gz": {
			{
				Slug: "chez-tantie", Name: "Chez Tantie", Address: "Rue des Jardins, Cocody", City: "Abidjan",
				Category: "ivoirien", DeliveryTime: "30-45 min", DeliveryFee: 1000, MinimumOrder: 2000,
				Menu: []menuItem{
					{Name: "Poulet braisé", Category: "grillades", Price: 4500, PreparationTime: 25},
					{Name: "Attiéké poisson", Category: "plats", Price: 3500, PreparationTime: 20},
					{Name: "Alloco", Category: "accompagnements", Price: 1000, PreparationTime: 10},
				},
			},
			{
				Slug: "le-baobab", Name: "Le Baobab", Address: "Boulevard Latrille", City: "Abidjan",
				Category: "senegalais", DeliveryTime: "40-55 min", DeliveryFee: 1500, MinimumOrder: 3000,
				Menu: []menuItem{
					{Name: "Thiéboudienne", Category: "plats", Price: 5000, PreparationTime: 35},
					{Name: "Yassa poulet", Category: "plats", Price: 4000, PreparationTime: 30},
					{Name: "Bissap", Category: "boissons", Price: 800},
				},
			},
		},
		"updates.jsonl.gz": {
			{
				Slug: "chez-tantie", Name: "Chez Tantie", Address: "Rue des Jardins, Cocody", City: "Abidjan",
				Category: "ivoirien", DeliveryTime: "25-40 min", DeliveryFee: 800, MinimumOrder: 2000,
				Menu: []menuItem{
					{Name: "Poulet braisé", Category: "grillades", Price: 5000, PreparationTime: 25},
					{Name: "Attiéké poisson", Category: "plats", Price: 3500, PreparationTime: 20},
					{Name: "Garba", Category: "plats", Price: 1500, PreparationTime: 10},
				},
			},
		},
	}

	for filename, records := range files {
		filePath := filepath.Join(dataDir, filename)

		if err := createCatalogFile(filePath, records); err != nil {
			log.Fatalf("Failed to create %s: %v", filename, err)
		}

		fmt.Printf("Created %s with %d restaurants\n", filePath, len(records))
	}
}

func createCatalogFile(filePath string, records []record) error {
	file, err := os.Create(filePath)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	gzipWriter := gzip.NewWriter(file)
	defer gzipWriter.Close()

	encoder := json.NewEncoder(gzipWriter)
	for _, rec := range records {
		if err := encoder.Encode(rec); err != nil {
			return fmt.Errorf("failed to write record: %w", err)
		}
	}

	return nil
}

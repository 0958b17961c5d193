package importer

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"mini-eats/internal/model"

	"github.com/google/uuid"
)

// Record is one line of a catalog file: a restaurant and its menu.
type Record struct {
	Slug         string     `json:"slug"`
	Name         string     `json:"name"`
	OwnerID      *uuid.UUID `json:"ownerId,omitempty"`
	Description  string     `json:"description,omitempty"`
	Address      string     `json:"address"`
	City         string     `json:"city"`
	Phone        string     `json:"phone,omitempty"`
	Email        string     `json:"email,omitempty"`
	Category     string     `json:"category"`
	DeliveryTime string     `json:"deliveryTime,omitempty"`
	DeliveryFee  int64      `json:"deliveryFee"`
	MinimumOrder int64      `json:"minimumOrder"`
	ImageURL     string     `json:"imageUrl,omitempty"`

	// Active defaults to true when absent.
	Active *bool `json:"active,omitempty"`

	Menu []MenuItem `json:"menu"`
}

// MenuItem is a product entry of a Record.
type MenuItem struct {
	Name            string `json:"name"`
	Description     string `json:"description,omitempty"`
	Category        string `json:"category"`
	Price           int64  `json:"price"`
	PreparationTime int    `json:"preparationTime,omitempty"`
	ImageURL        string `json:"imageUrl,omitempty"`

	// Available defaults to true when absent.
	Available *bool `json:"available,omitempty"`
}

func (r *Record) validate() error {
	if r.Slug == "" {
		return errors.New("slug is required")
	}
	if r.Slug != strings.ToLower(r.Slug) || strings.ContainsAny(r.Slug, " /") {
		return fmt.Errorf("slug %q must be lowercase without spaces or slashes", r.Slug)
	}
	if r.Name == "" {
		return fmt.Errorf("restaurant %s: name is required", r.Slug)
	}
	if r.DeliveryFee < 0 || r.MinimumOrder < 0 {
		return fmt.Errorf("restaurant %s: fees must not be negative", r.Slug)
	}

	seen := make(map[string]struct{}, len(r.Menu))
	for i, item := range r.Menu {
		if item.Name == "" {
			return fmt.Errorf("restaurant %s: menu item %d has no name", r.Slug, i)
		}
		if item.Price < 0 {
			return fmt.Errorf("restaurant %s: %s has a negative price", r.Slug, item.Name)
		}
		if _, dup := seen[item.Name]; dup {
			return fmt.Errorf("restaurant %s: %s is listed twice", r.Slug, item.Name)
		}
		seen[item.Name] = struct{}{}
	}
	return nil
}

func (r *Record) toModel() (*model.Restaurant, []model.Product) {
	restaurant := &model.Restaurant{
		OwnerID:      r.OwnerID,
		Name:         r.Name,
		Slug:         r.Slug,
		Description:  r.Description,
		Address:      r.Address,
		City:         r.City,
		Phone:        r.Phone,
		Email:        r.Email,
		Category:     r.Category,
		DeliveryTime: r.DeliveryTime,
		DeliveryFee:  r.DeliveryFee,
		MinimumOrder: r.MinimumOrder,
		ImageURL:     r.ImageURL,
		IsActive:     r.Active == nil || *r.Active,
	}

	menu := make([]model.Product, 0, len(r.Menu))
	for i, item := range r.Menu {
		menu = append(menu, model.Product{
			Name:            item.Name,
			Description:     item.Description,
			Category:        item.Category,
			Price:           item.Price,
			IsAvailable:     item.Available == nil || *item.Available,
			PreparationTime: item.PreparationTime,
			SortOrder:       i,
			ImageURL:        item.ImageURL,
		})
	}
	return restaurant, menu
}

// Catalog holds records keyed by slug.
type Catalog struct {
	records map[string]Record
}

// NewCatalog creates an empty catalog.
func NewCatalog() *Catalog {
	return &Catalog{records: make(map[string]Record)}
}

// Add stores rec, replacing any record with the same slug.
// It reports whether a record was replaced.
func (c *Catalog) Add(rec Record) bool {
	_, exists := c.records[rec.Slug]
	c.records[rec.Slug] = rec
	return exists
}

// Contains reports whether a record with slug is present.
func (c *Catalog) Contains(slug string) bool {
	_, exists := c.records[slug]
	return exists
}

// Size returns the number of distinct restaurants.
func (c *Catalog) Size() int {
	return len(c.records)
}

// Records returns the records ordered by slug.
func (c *Catalog) Records() []Record {
	out := make([]Record, 0, len(c.records))
	for _, rec := range c.records {
		out = append(out, rec)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Slug < out[j].Slug })
	return out
}

package model

import (
	"time"

	"github.com/google/uuid"
)

// Product represents a menu item sold by a single restaurant.
// Prices are integer amounts in the currency's minor unit.
type Product struct {
	ID              uuid.UUID `json:"id" db:"id"`
	RestaurantID    uuid.UUID `json:"restaurantId" db:"restaurant_id"`
	Name            string    `json:"name" db:"name"`
	Description     string    `json:"description,omitempty" db:"description"`
	Category        string    `json:"category" db:"category"`
	Price           int64     `json:"price" db:"price"`
	IsAvailable     bool      `json:"isAvailable" db:"is_available"`
	PreparationTime int       `json:"preparationTime" db:"preparation_time"`
	SortOrder       int       `json:"sortOrder" db:"sort_order"`
	ImageURL        string    `json:"imageUrl,omitempty" db:"image_url"`
	CreatedAt       time.Time `json:"createdAt" db:"created_at"`
}

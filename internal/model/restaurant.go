package model

import (
	"time"

	"github.com/google/uuid"
)

// Restaurant represents a restaurant listed on the marketplace.
type Restaurant struct {
	ID           uuid.UUID  `json:"id" db:"id"`
	OwnerID      *uuid.UUID `json:"ownerId,omitempty" db:"user_id"`
	Name         string     `json:"name" db:"name"`
	Slug         string     `json:"slug" db:"slug"`
	Description  string     `json:"description,omitempty" db:"description"`
	Address      string     `json:"address" db:"address"`
	City         string     `json:"city" db:"city"`
	Phone        string     `json:"phone,omitempty" db:"phone"`
	Email        string     `json:"email,omitempty" db:"email"`
	Category     string     `json:"category" db:"category"`
	Rating       float64    `json:"rating" db:"rating"`
	TotalReviews int        `json:"totalReviews" db:"total_reviews"`
	DeliveryTime string     `json:"deliveryTime,omitempty" db:"delivery_time"`
	DeliveryFee  int64      `json:"deliveryFee" db:"delivery_fee"`
	MinimumOrder int64      `json:"minimumOrder" db:"minimum_order"`
	ImageURL     string     `json:"imageUrl,omitempty" db:"image_url"`
	IsActive     bool       `json:"isActive" db:"is_active"`
	CreatedAt    time.Time  `json:"createdAt" db:"created_at"`
}

// RestaurantSummary is the restaurant excerpt embedded in order listings.
type RestaurantSummary struct {
	Name     string `json:"name"`
	Address  string `json:"address"`
	ImageURL string `json:"imageUrl,omitempty"`
	Phone    string `json:"phone,omitempty"`
}

// RestaurantFilter enumerates the recognised catalog filters.
// Category and City are equality matches; Search is a case-insensitive
// substring match on the restaurant name. Empty fields are ignored.
type RestaurantFilter struct {
	Category string
	City     string
	Search   string
}

// RestaurantStats holds the aggregates shown on a restaurant owner's dashboard.
type RestaurantStats struct {
	TotalOrders    int            `json:"totalOrders"`
	PendingOrders  int            `json:"pendingOrders"`
	TotalRevenue   int64          `json:"totalRevenue"`
	ActiveProducts int            `json:"activeProducts"`
	AverageRating  float64        `json:"averageRating"`
	TotalReviews   int            `json:"totalReviews"`
	TopProducts    []ProductSales `json:"topProducts"`
}

// ProductSales aggregates how often a menu item was ordered.
type ProductSales struct {
	ProductID uuid.UUID `json:"productId"`
	Name      string    `json:"name"`
	Orders    int       `json:"orders"`
	Quantity  int       `json:"quantity"`
	Revenue   int64     `json:"revenue"`
}

// Dashboard is the response payload for a restaurant owner's dashboard.
type Dashboard struct {
	Restaurant   Restaurant      `json:"restaurant"`
	Stats        RestaurantStats `json:"stats"`
	RecentOrders []Order         `json:"recentOrders"`
}

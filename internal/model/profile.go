package model

import (
	"time"

	"github.com/google/uuid"
)

// Role distinguishes customers from restaurant operators.
type Role string

const (
	RoleClient     Role = "client"
	RoleRestaurant Role = "restaurant"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	return r == RoleClient || r == RoleRestaurant
}

// Profile is the application-side record of an authenticated user.
type Profile struct {
	ID        uuid.UUID `json:"id" db:"id"`
	Email     string    `json:"email" db:"email"`
	FullName  string    `json:"fullName" db:"full_name"`
	Role      Role      `json:"role" db:"role"`
	Phone     string    `json:"phone,omitempty" db:"phone"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}

// RegisterRequest creates the profile of a newly signed-up user. Restaurant
// operators may name their restaurant, which is created alongside.
type RegisterRequest struct {
	Email      string                  `json:"email"`
	FullName   string                  `json:"fullName"`
	Phone      string                  `json:"phone,omitempty"`
	Role       Role                    `json:"role,omitempty"`
	Restaurant *RestaurantRegistration `json:"restaurant,omitempty"`
}

// RestaurantRegistration is the restaurant part of a sign-up.
type RestaurantRegistration struct {
	Name     string `json:"name"`
	Category string `json:"category,omitempty"`
}

// Review is a customer's rating of a restaurant for one completed order.
type Review struct {
	ID           uuid.UUID `json:"id" db:"id"`
	OrderID      uuid.UUID `json:"orderId" db:"order_id"`
	RestaurantID uuid.UUID `json:"restaurantId" db:"restaurant_id"`
	UserID       uuid.UUID `json:"userId" db:"user_id"`
	Rating       int       `json:"rating" db:"rating"`
	Comment      string    `json:"comment,omitempty" db:"comment"`
	CreatedAt    time.Time `json:"createdAt" db:"created_at"`
}

// ReviewRequest represents the request payload for rating an order.
type ReviewRequest struct {
	Rating  int    `json:"rating"`
	Comment string `json:"comment,omitempty"`
}

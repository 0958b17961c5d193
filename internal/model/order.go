package model

import (
	"time"

	"github.com/google/uuid"
)

// OrderStatus is the lifecycle state of an order.
type OrderStatus string

const (
	StatusPending    OrderStatus = "pending"
	StatusConfirmed  OrderStatus = "confirmed"
	StatusPreparing  OrderStatus = "preparing"
	StatusReady      OrderStatus = "ready"
	StatusDelivering OrderStatus = "delivering"
	StatusCompleted  OrderStatus = "completed"
	StatusCancelled  OrderStatus = "cancelled"
)

// PaymentMethod identifies how the customer pays.
type PaymentMethod string

const (
	PaymentCash        PaymentMethod = "cash"
	PaymentCard        PaymentMethod = "card"
	PaymentMobileMoney PaymentMethod = "mobile_money"
)

// Prepaid reports whether the method settles before delivery.
func (m PaymentMethod) Prepaid() bool {
	return m == PaymentCard || m == PaymentMobileMoney
}

// Valid reports whether m is a recognised payment method.
func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentCash, PaymentCard, PaymentMobileMoney:
		return true
	}
	return false
}

// PaymentStatus tracks settlement of an order's payment.
type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "pending"
	PaymentStatusConfirmed PaymentStatus = "confirmed"
)

// ServiceDelivery is the only service type currently offered.
const ServiceDelivery = "delivery"

// Order represents a submitted customer order. ItemsTotal and DeliveryFee
// are frozen at submission time.
type Order struct {
	ID                  uuid.UUID          `json:"id" db:"id"`
	OrderNumber         string             `json:"orderNumber" db:"order_number"`
	UserID              *uuid.UUID         `json:"userId,omitempty" db:"user_id"`
	RestaurantID        uuid.UUID          `json:"restaurantId" db:"restaurant_id"`
	Status              OrderStatus        `json:"status" db:"status"`
	ServiceType         string             `json:"serviceType" db:"service_type"`
	CustomerName        string             `json:"customerName" db:"customer_name"`
	CustomerPhone       string             `json:"customerPhone" db:"customer_phone"`
	CustomerEmail       string             `json:"customerEmail,omitempty" db:"customer_email"`
	DeliveryAddress     string             `json:"deliveryAddress" db:"delivery_address"`
	SpecialInstructions string             `json:"specialInstructions,omitempty" db:"special_instructions"`
	ItemsTotal          int64              `json:"itemsTotal" db:"items_total"`
	DeliveryFee         int64              `json:"deliveryFee" db:"delivery_fee"`
	TotalAmount         int64              `json:"totalAmount" db:"total_amount"`
	PaymentMethod       PaymentMethod      `json:"paymentMethod" db:"payment_method"`
	PaymentStatus       PaymentStatus      `json:"paymentStatus" db:"payment_status"`
	TransactionID       string             `json:"transactionId,omitempty" db:"transaction_id"`
	Items               []OrderItem        `json:"items,omitempty"`
	Restaurant          *RestaurantSummary `json:"restaurant,omitempty"`
	CreatedAt           time.Time          `json:"createdAt" db:"created_at"`
	UpdatedAt           time.Time          `json:"updatedAt" db:"updated_at"`
}

// OrderItem is a line of an order with the product's price frozen at submission.
type OrderItem struct {
	ID        uuid.UUID `json:"-" db:"id"`
	OrderID   uuid.UUID `json:"-" db:"order_id"`
	ProductID uuid.UUID `json:"productId" db:"product_id"`
	Name      string    `json:"name" db:"name"`
	UnitPrice int64     `json:"unitPrice" db:"unit_price"`
	Quantity  int       `json:"quantity" db:"quantity"`
}

// LineTotal returns the item's unit price multiplied by its quantity.
func (i OrderItem) LineTotal() int64 {
	return i.UnitPrice * int64(i.Quantity)
}

// CustomerInfo holds the delivery details supplied at checkout.
type CustomerInfo struct {
	Name         string `json:"name"`
	Phone        string `json:"phone"`
	Address      string `json:"address"`
	Email        string `json:"email,omitempty"`
	Instructions string `json:"instructions,omitempty"`
}

// CheckoutRequest represents the request payload for submitting a cart.
type CheckoutRequest struct {
	Customer      CustomerInfo  `json:"customer"`
	PaymentMethod PaymentMethod `json:"paymentMethod,omitempty"`
}

// StatusUpdateRequest represents the request payload for advancing an order.
type StatusUpdateRequest struct {
	Status OrderStatus `json:"status"`
}

// OrderHistory splits a customer's orders into those still in progress and
// those that reached a terminal status.
type OrderHistory struct {
	Active  []Order `json:"active"`
	History []Order `json:"history"`
}

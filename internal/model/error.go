package model

import (
	"fmt"
)

// ErrorResponse represents a standardised error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`

	// TransactionID is set when a payment was initiated but the order was
	// not stored, so the client can quote it when contacting support.
	TransactionID string `json:"transactionId,omitempty"`
}

// Standard error codes for API responses
const (
	ErrCodeInvalidJSON              = "INVALID_JSON"
	ErrCodeMissingField             = "MISSING_FIELD"
	ErrCodeUnauthorised             = "UNAUTHORIZED"
	ErrCodeForbidden                = "FORBIDDEN"
	ErrCodeInternalError            = "INTERNAL_ERROR"
	ErrCodeEmptyCart                = "EMPTY_CART"
	ErrCodeProductUnavailable       = "PRODUCT_UNAVAILABLE"
	ErrCodeProductNotFound          = "PRODUCT_NOT_FOUND"
	ErrCodeLineNotFound             = "LINE_NOT_FOUND"
	ErrCodeCrossRestaurant          = "CROSS_RESTAURANT_CONFLICT"
	ErrCodeRestaurantNotFound       = "RESTAURANT_NOT_FOUND"
	ErrCodeRestaurantUnavailable    = "RESTAURANT_UNAVAILABLE"
	ErrCodeBelowMinimumOrder        = "BELOW_MINIMUM_ORDER"
	ErrCodeInvalidPaymentMethod     = "INVALID_PAYMENT_METHOD"
	ErrCodeSubmissionInProgress     = "SUBMISSION_IN_PROGRESS"
	ErrCodePaymentInitiation        = "PAYMENT_INITIATION_FAILED"
	ErrCodePersistence              = "PERSISTENCE_FAILED"
	ErrCodeOrderNumberConflict      = "ORDER_NUMBER_CONFLICT"
	ErrCodeOrderNotFound            = "ORDER_NOT_FOUND"
	ErrCodeInvalidTransition        = "INVALID_TRANSITION"
	ErrCodeCancellationWindowClosed = "CANCELLATION_WINDOW_CLOSED"
	ErrCodeReviewNotAllowed         = "REVIEW_NOT_ALLOWED"
	ErrCodeAlreadyReviewed          = "ALREADY_REVIEWED"
	ErrCodeInvalidRating            = "INVALID_RATING"
	ErrCodeProfileNotFound          = "PROFILE_NOT_FOUND"
	ErrCodeProfileExists            = "PROFILE_EXISTS"
	ErrCodeInvalidRole              = "INVALID_ROLE"
	ErrCodeTransactionNotFound      = "TRANSACTION_NOT_FOUND"
)

// Domain errors for business logic
type DomainError struct {
	Code    string
	Message string
}

func (e *DomainError) Error() string {
	return e.Message
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// Common domain errors
var (
	ErrEmptyCart                = NewDomainError(ErrCodeEmptyCart, "Cart is empty")
	ErrProductUnavailable       = NewDomainError(ErrCodeProductUnavailable, "Product is not available")
	ErrProductNotFound          = NewDomainError(ErrCodeProductNotFound, "Product not found")
	ErrLineNotFound             = NewDomainError(ErrCodeLineNotFound, "Product is not in the cart")
	ErrCrossRestaurantConflict  = NewDomainError(ErrCodeCrossRestaurant, "Cart already holds products from another restaurant")
	ErrRestaurantNotFound       = NewDomainError(ErrCodeRestaurantNotFound, "Restaurant not found")
	ErrRestaurantUnavailable    = NewDomainError(ErrCodeRestaurantUnavailable, "Restaurant is not accepting orders")
	ErrBelowMinimumOrder        = NewDomainError(ErrCodeBelowMinimumOrder, "Order total is below the restaurant's minimum order")
	ErrInvalidPaymentMethod     = NewDomainError(ErrCodeInvalidPaymentMethod, "Payment method must be cash, card or mobile_money")
	ErrSubmissionInProgress     = NewDomainError(ErrCodeSubmissionInProgress, "A submission for this cart is already in progress")
	ErrOrderNumberConflict      = NewDomainError(ErrCodeOrderNumberConflict, "Order number already exists")
	ErrOrderNotFound            = NewDomainError(ErrCodeOrderNotFound, "Order not found")
	ErrCancellationWindowClosed = NewDomainError(ErrCodeCancellationWindowClosed, "Order can no longer be cancelled")
	ErrReviewNotAllowed         = NewDomainError(ErrCodeReviewNotAllowed, "Only completed orders can be reviewed by their customer")
	ErrAlreadyReviewed          = NewDomainError(ErrCodeAlreadyReviewed, "Order has already been reviewed")
	ErrInvalidRating            = NewDomainError(ErrCodeInvalidRating, "Rating must be between 1 and 5")
	ErrProfileNotFound          = NewDomainError(ErrCodeProfileNotFound, "Profile not found")
	ErrProfileExists            = NewDomainError(ErrCodeProfileExists, "A profile already exists for this user or email")
	ErrInvalidRole              = NewDomainError(ErrCodeInvalidRole, "Role must be client or restaurant")
	ErrForbidden                = NewDomainError(ErrCodeForbidden, "Not allowed to act on this resource")
	ErrUnauthenticated          = NewDomainError(ErrCodeUnauthorised, "Authentication required")
)

// MissingFieldError reports a required checkout field left blank.
type MissingFieldError struct {
	Field string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("%s is required", e.Field)
}

// Code returns the API error code.
func (e *MissingFieldError) Code() string { return ErrCodeMissingField }

// InvalidTransitionError reports a status change the lifecycle does not allow.
type InvalidTransitionError struct {
	From OrderStatus
	To   OrderStatus
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid status transition from %s to %s", e.From, e.To)
}

// Code returns the API error code.
func (e *InvalidTransitionError) Code() string { return ErrCodeInvalidTransition }

// PaymentInitiationError reports that no payment handle could be obtained.
// No order exists when this is returned.
type PaymentInitiationError struct {
	Err error
}

func (e *PaymentInitiationError) Error() string {
	return fmt.Sprintf("payment initiation failed: %v", e.Err)
}

func (e *PaymentInitiationError) Unwrap() error { return e.Err }

// Code returns the API error code.
func (e *PaymentInitiationError) Code() string { return ErrCodePaymentInitiation }

// PersistenceError reports a failed order insert after payment was initiated.
// TransactionID identifies the payment to reconcile.
type PersistenceError struct {
	TransactionID string
	OrderNumber   string
	Err           error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("failed to persist order %s (transaction %s): %v", e.OrderNumber, e.TransactionID, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// Code returns the API error code.
func (e *PersistenceError) Code() string { return ErrCodePersistence }

package handler

import (
	"errors"
	"net/http"

	"mini-eats/internal/model"
	"mini-eats/internal/payment"
	"mini-eats/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

// CheckoutHandler turns the session's cart into an order.
type CheckoutHandler struct {
	service service.CheckoutService
	logger  zerolog.Logger
}

// NewCheckoutHandler creates a new checkout handler.
func NewCheckoutHandler(service service.CheckoutService, logger zerolog.Logger) *CheckoutHandler {
	return &CheckoutHandler{
		service: service,
		logger:  logger.With().Str("handler", "checkout").Logger(),
	}
}

// Submit handles POST /api/checkout requests.
func (h *CheckoutHandler) Submit(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := requireSession(w, r, h.logger)
	if !ok {
		return
	}

	var req model.CheckoutRequest
	if err := decodeJSON(r, &req); err != nil {
		writeInvalidJSON(w, err, h.logger)
		return
	}

	order, err := h.service.Submit(r.Context(), sessionID, optionalUser(r), &req)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusCreated, order)
}

// PaymentVerification is the response of GET /api/payments/{transactionId}.
type PaymentVerification struct {
	TransactionID string `json:"transactionId"`
	Verified      bool   `json:"verified"`
}

// PaymentHandler exposes payment verification for the payment return page.
type PaymentHandler struct {
	gateway payment.Gateway
	logger  zerolog.Logger
}

// NewPaymentHandler creates a new payment handler.
func NewPaymentHandler(gateway payment.Gateway, logger zerolog.Logger) *PaymentHandler {
	return &PaymentHandler{
		gateway: gateway,
		logger:  logger.With().Str("handler", "payment").Logger(),
	}
}

// Verify handles GET /api/payments/{transactionId} requests.
func (h *PaymentHandler) Verify(w http.ResponseWriter, r *http.Request) {
	transactionID := chi.URLParam(r, "transactionId")

	result, err := h.gateway.VerifyPayment(r.Context(), transactionID)
	if errors.Is(err, payment.ErrUnknownTransaction) {
		writeJSON(w, http.StatusNotFound, model.ErrorResponse{
			Error:   model.ErrCodeTransactionNotFound,
			Message: "transaction not found",
		})
		return
	}
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, PaymentVerification{
		TransactionID: result.TransactionID,
		Verified:      true,
	})
}

package handler

import (
	"net/http"

	"mini-eats/internal/middleware"
	"mini-eats/internal/model"
	"mini-eats/internal/service"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// AddToCartRequest is the payload of POST /api/cart/items.
type AddToCartRequest struct {
	ProductID uuid.UUID `json:"productId"`
}

// CartHandler serves the session's cart.
type CartHandler struct {
	service service.CartService
	logger  zerolog.Logger
}

// NewCartHandler creates a new cart handler.
func NewCartHandler(service service.CartService, logger zerolog.Logger) *CartHandler {
	return &CartHandler{
		service: service,
		logger:  logger.With().Str("handler", "cart").Logger(),
	}
}

// View handles GET /api/cart requests.
func (h *CartHandler) View(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := h.session(w, r)
	if !ok {
		return
	}

	view, err := h.service.View(r.Context(), sessionID)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, view)
}

// AddItem handles POST /api/cart/items requests.
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := h.session(w, r)
	if !ok {
		return
	}

	var req AddToCartRequest
	if err := decodeJSON(r, &req); err != nil {
		writeInvalidJSON(w, err, h.logger)
		return
	}
	if req.ProductID == uuid.Nil {
		writeError(w, &model.MissingFieldError{Field: "productId"}, h.logger)
		return
	}

	view, err := h.service.AddItem(r.Context(), sessionID, req.ProductID)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, view)
}

// RemoveItem handles DELETE /api/cart/items/{productId} requests.
func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := h.session(w, r)
	if !ok {
		return
	}

	productID, ok := uuidParam(w, r, "productId")
	if !ok {
		return
	}

	view, err := h.service.RemoveItem(r.Context(), sessionID, productID)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, view)
}

// Clear handles DELETE /api/cart requests.
func (h *CartHandler) Clear(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := h.session(w, r)
	if !ok {
		return
	}

	if err := h.service.Clear(r.Context(), sessionID); err != nil {
		writeError(w, err, h.logger)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *CartHandler) session(w http.ResponseWriter, r *http.Request) (string, bool) {
	return requireSession(w, r, h.logger)
}

// requireSession returns the request's cart session or writes a 400 response.
func requireSession(w http.ResponseWriter, r *http.Request, logger zerolog.Logger) (string, bool) {
	sessionID, ok := middleware.SessionID(r.Context())
	if !ok {
		writeError(w, &model.MissingFieldError{Field: "session"}, logger)
		return "", false
	}
	return sessionID, true
}

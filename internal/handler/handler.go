package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"mini-eats/internal/middleware"
	"mini-eats/internal/model"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// domainStatus maps domain error codes to HTTP status codes.
var domainStatus = map[string]int{
	model.ErrCodeEmptyCart:                http.StatusUnprocessableEntity,
	model.ErrCodeBelowMinimumOrder:        http.StatusUnprocessableEntity,
	model.ErrCodeProductUnavailable:       http.StatusConflict,
	model.ErrCodeCrossRestaurant:          http.StatusConflict,
	model.ErrCodeRestaurantUnavailable:    http.StatusConflict,
	model.ErrCodeSubmissionInProgress:     http.StatusConflict,
	model.ErrCodeCancellationWindowClosed: http.StatusConflict,
	model.ErrCodeAlreadyReviewed:          http.StatusConflict,
	model.ErrCodeProfileExists:            http.StatusConflict,
	model.ErrCodeProductNotFound:          http.StatusNotFound,
	model.ErrCodeLineNotFound:             http.StatusNotFound,
	model.ErrCodeRestaurantNotFound:       http.StatusNotFound,
	model.ErrCodeOrderNotFound:            http.StatusNotFound,
	model.ErrCodeProfileNotFound:          http.StatusNotFound,
	model.ErrCodeInvalidPaymentMethod:     http.StatusBadRequest,
	model.ErrCodeInvalidRating:            http.StatusBadRequest,
	model.ErrCodeInvalidRole:              http.StatusBadRequest,
	model.ErrCodeReviewNotAllowed:         http.StatusForbidden,
	model.ErrCodeForbidden:                http.StatusForbidden,
	model.ErrCodeUnauthorised:             http.StatusUnauthorized,
	model.ErrCodeOrderNumberConflict:      http.StatusInternalServerError,
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		// Headers are already sent; nothing useful left to tell the client.
		return
	}
}

// writeError translates err into a status code and error body.
func writeError(w http.ResponseWriter, err error, logger zerolog.Logger) {
	status, body := errorResponse(err)

	event := logger.Debug()
	if status >= http.StatusInternalServerError {
		event = logger.Error()
	}
	event.Err(err).Int("status", status).Str("code", body.Error).Msg("handler error")

	writeJSON(w, status, body)
}

func errorResponse(err error) (int, model.ErrorResponse) {
	var (
		missing    *model.MissingFieldError
		transition *model.InvalidTransitionError
		payErr     *model.PaymentInitiationError
		persistErr *model.PersistenceError
		domainErr  *model.DomainError
	)

	switch {
	case errors.As(err, &missing):
		return http.StatusBadRequest, model.ErrorResponse{
			Error:   missing.Code(),
			Message: missing.Error(),
			Field:   missing.Field,
		}
	case errors.As(err, &transition):
		return http.StatusConflict, model.ErrorResponse{
			Error:   transition.Code(),
			Message: transition.Error(),
		}
	case errors.As(err, &payErr):
		status := http.StatusBadGateway
		if errors.Is(err, context.DeadlineExceeded) {
			status = http.StatusGatewayTimeout
		}
		return status, model.ErrorResponse{
			Error:   payErr.Code(),
			Message: "payment could not be initiated, please try again",
		}
	case errors.As(err, &persistErr) && errors.Is(err, model.ErrOrderNumberConflict):
		return http.StatusInternalServerError, model.ErrorResponse{
			Error:         model.ErrCodeOrderNumberConflict,
			Message:       model.ErrOrderNumberConflict.Message,
			TransactionID: persistErr.TransactionID,
		}
	case errors.As(err, &persistErr):
		return http.StatusServiceUnavailable, model.ErrorResponse{
			Error:         persistErr.Code(),
			Message:       "payment was initiated but the order could not be saved",
			TransactionID: persistErr.TransactionID,
		}
	case errors.As(err, &domainErr):
		status, ok := domainStatus[domainErr.Code]
		if !ok {
			status = http.StatusBadRequest
		}
		return status, model.ErrorResponse{
			Error:   domainErr.Code,
			Message: domainErr.Message,
		}
	}

	return http.StatusInternalServerError, model.ErrorResponse{
		Error:   model.ErrCodeInternalError,
		Message: "internal server error",
	}
}

// decodeJSON reads the request body into dst.
func decodeJSON(r *http.Request, dst any) error {
	if r.Body == nil {
		return errors.New("request body is required")
	}
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return fmt.Errorf("invalid request body: %w", err)
	}
	return nil
}

func writeInvalidJSON(w http.ResponseWriter, err error, logger zerolog.Logger) {
	logger.Debug().Err(err).Msg("invalid request body")
	writeJSON(w, http.StatusBadRequest, model.ErrorResponse{
		Error:   model.ErrCodeInvalidJSON,
		Message: "invalid request body",
	})
}

// uuidParam parses the named chi URL parameter. On failure it writes a 400
// response and returns false.
func uuidParam(w http.ResponseWriter, r *http.Request, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, name))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, model.ErrorResponse{
			Error:   model.ErrCodeMissingField,
			Message: fmt.Sprintf("invalid %s", name),
			Field:   name,
		})
		return uuid.Nil, false
	}
	return id, true
}

// requireUser returns the authenticated user or writes a 401 response.
func requireUser(w http.ResponseWriter, r *http.Request, logger zerolog.Logger) (uuid.UUID, bool) {
	userID, ok := middleware.CurrentUser(r.Context())
	if !ok {
		writeError(w, model.ErrUnauthenticated, logger)
		return uuid.Nil, false
	}
	return userID, true
}

// optionalUser returns the authenticated user, or nil for guests.
func optionalUser(r *http.Request) *uuid.UUID {
	if userID, ok := middleware.CurrentUser(r.Context()); ok {
		return &userID
	}
	return nil
}

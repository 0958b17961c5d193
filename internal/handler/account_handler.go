package handler

import (
	"net/http"

	"mini-eats/internal/model"
	"mini-eats/internal/service"

	"github.com/rs/zerolog"
)

// AccountHandler serves the signed-in user's profile and, for restaurant
// owners, their dashboard.
type AccountHandler struct {
	profiles   service.ProfileService
	dashboards service.DashboardService
	logger     zerolog.Logger
}

// NewAccountHandler creates a new account handler.
func NewAccountHandler(profiles service.ProfileService, dashboards service.DashboardService, logger zerolog.Logger) *AccountHandler {
	return &AccountHandler{
		profiles:   profiles,
		dashboards: dashboards,
		logger:     logger.With().Str("handler", "account").Logger(),
	}
}

// Profile handles GET /api/profile requests.
func (h *AccountHandler) Profile(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r, h.logger)
	if !ok {
		return
	}

	profile, err := h.profiles.Current(r.Context(), userID)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, profile)
}

// Register handles POST /api/profile requests.
func (h *AccountHandler) Register(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r, h.logger)
	if !ok {
		return
	}

	var req model.RegisterRequest
	if err := decodeJSON(r, &req); err != nil {
		writeInvalidJSON(w, err, h.logger)
		return
	}

	profile, err := h.profiles.Register(r.Context(), userID, &req)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusCreated, profile)
}

// Dashboard handles GET /api/dashboard requests.
func (h *AccountHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r, h.logger)
	if !ok {
		return
	}

	dashboard, err := h.dashboards.Get(r.Context(), userID)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, dashboard)
}

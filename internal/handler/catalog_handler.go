package handler

import (
	"net/http"

	"mini-eats/internal/model"
	"mini-eats/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

// CatalogHandler serves restaurants and their menus.
type CatalogHandler struct {
	service service.CatalogService
	logger  zerolog.Logger
}

// NewCatalogHandler creates a new catalog handler.
func NewCatalogHandler(service service.CatalogService, logger zerolog.Logger) *CatalogHandler {
	return &CatalogHandler{
		service: service,
		logger:  logger.With().Str("handler", "catalog").Logger(),
	}
}

// List handles GET /api/restaurants?category=&city=&search= requests.
func (h *CatalogHandler) List(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	filter := model.RestaurantFilter{
		Category: query.Get("category"),
		City:     query.Get("city"),
		Search:   query.Get("search"),
	}

	restaurants, err := h.service.ListRestaurants(r.Context(), filter)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	if restaurants == nil {
		restaurants = []model.Restaurant{}
	}
	writeJSON(w, http.StatusOK, restaurants)
}

// Get handles GET /api/restaurants/{slug} requests.
func (h *CatalogHandler) Get(w http.ResponseWriter, r *http.Request) {
	restaurant, err := h.service.GetRestaurant(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, restaurant)
}

// Menu handles GET /api/restaurants/{slug}/menu requests.
func (h *CatalogHandler) Menu(w http.ResponseWriter, r *http.Request) {
	products, err := h.service.Menu(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	if products == nil {
		products = []model.Product{}
	}
	writeJSON(w, http.StatusOK, products)
}

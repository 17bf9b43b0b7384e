package handlers

import (
	"net/http"

	"github.com/unera/backend/internal/countries"
)

// CountryHandler serves the registration country picker and the marketplace catalog.
type CountryHandler struct {
	Countries CountryProvider
}

type catalogResponse struct {
	Countries  []countries.MarketplaceCountry `json:"countries"`
	Categories []countries.Category           `json:"categories"`
}

// List handles GET /api/v1/countries.
func (h CountryHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.Countries == nil {
		respondJSON(ctx, w, http.StatusOK, list(countries.Fallback()))
		return
	}
	items, err := h.Countries.List(ctx)
	if err != nil {
		respondJSON(ctx, w, http.StatusBadGateway, errorResponse{Error: "country list unavailable"})
		return
	}
	respondJSON(ctx, w, http.StatusOK, list(items))
}

// Catalog handles GET /api/v1/marketplace/catalog.
func (CountryHandler) Catalog(w http.ResponseWriter, r *http.Request) {
	respondJSON(r.Context(), w, http.StatusOK, catalogResponse{
		Countries:  countries.MarketplaceCountries(),
		Categories: countries.Categories(),
	})
}

package api

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"

	"github.com/grocery-pricer/internal/logging"
	"github.com/grocery-pricer/internal/models"
	"github.com/grocery-pricer/internal/pricing"
	"github.com/grocery-pricer/internal/types"
)

// handleGetOverview handles GET /api/v1/lists/{id}/overview
func (s *Server) handleGetOverview(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}

	overview, err := s.overviewService.GetOverview(r.Context(), mux.Vars(r)["id"], user)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, overview)
}

// handleGetHistory handles GET /api/v1/products/{ean}/history
func (s *Server) handleGetHistory(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireUser(w, r); !ok {
		return
	}

	days := 30
	if raw := r.URL.Query().Get("days"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			respondError(w, http.StatusBadRequest, "INVALID_PARAMETER", "days must be a positive integer", nil)
			return
		}
		days = parsed
	}

	points, err := s.historyFetcher.Fetch(r.Context(), mux.Vars(r)["ean"], time.Now().UTC(), days)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, pricing.BuildSeries(points))
}

// handleGetStorePrices handles GET /api/v1/products/{ean}/stores
//
// With pinned places set, only stores in a pinned city are returned.
// No pins means every store.
func (s *Server) handleGetStorePrices(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}

	prices, err := s.storePrices.StorePrices(r.Context(), mux.Vars(r)["ean"])
	if err != nil {
		respondServiceError(w, err)
		return
	}

	prefs, err := s.preferences.GetPreferences(r.Context(), user)
	if err != nil {
		logging.GetGlobalLogger().WithError(err).Warn("preferences unavailable, returning all stores")
		prefs = nil
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"stores": filterByPlaces(prices, prefs),
	})
}

func filterByPlaces(prices []types.StorePrice, prefs *models.UserPreferences) []types.StorePrice {
	if prefs == nil || len(prefs.PinnedPlaces) == 0 {
		return prices
	}

	filtered := make([]types.StorePrice, 0, len(prices))
	for _, p := range prices {
		city := strings.ToLower(p.Store.City)
		if city == "" {
			continue
		}
		for _, place := range prefs.PinnedPlaces {
			name := strings.ToLower(place.Name)
			if name == "" {
				continue
			}
			if strings.Contains(city, name) || strings.Contains(name, city) {
				filtered = append(filtered, p)
				break
			}
		}
	}
	return filtered
}

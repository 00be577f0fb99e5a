package api

import (
	"net/http"

	"github.com/grocery-pricer/internal/models"
	"github.com/grocery-pricer/internal/types"
)

// handleGetPreferences handles GET /api/v1/preferences
func (s *Server) handleGetPreferences(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}

	prefs, err := s.preferences.GetPreferences(r.Context(), user)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, prefs)
}

// handleReplacePinnedChains handles PUT /api/v1/preferences/chains
func (s *Server) handleReplacePinnedChains(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}

	var body struct {
		Chains []struct {
			Name string `json:"name"`
		} `json:"chains"`
	}
	if err := parseJSONBody(r, &body); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_INPUT", "invalid request body", nil)
		return
	}

	pins := make([]models.PinnedChain, 0, len(body.Chains))
	for i, chain := range body.Chains {
		if chain.Name == "" {
			respondError(w, http.StatusBadRequest, "INVALID_PARAMETER", "chain name must not be empty", nil)
			return
		}
		pins = append(pins, models.PinnedChain{
			UserID:   user,
			Code:     types.NormalizeChainName(chain.Name),
			Name:     chain.Name,
			Position: i,
		})
	}

	if err := s.preferences.ReplacePinnedChains(r.Context(), user, pins); err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusNoContent, nil)
}

// handleReplacePinnedPlaces handles PUT /api/v1/preferences/places
func (s *Server) handleReplacePinnedPlaces(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}

	var body struct {
		Places []struct {
			Name string `json:"name"`
		} `json:"places"`
	}
	if err := parseJSONBody(r, &body); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_INPUT", "invalid request body", nil)
		return
	}

	pins := make([]models.PinnedPlace, 0, len(body.Places))
	for i, place := range body.Places {
		if place.Name == "" {
			respondError(w, http.StatusBadRequest, "INVALID_PARAMETER", "place name must not be empty", nil)
			return
		}
		pins = append(pins, models.PinnedPlace{
			UserID:   user,
			Name:     place.Name,
			Position: i,
		})
	}

	if err := s.preferences.ReplacePinnedPlaces(r.Context(), user, pins); err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusNoContent, nil)
}

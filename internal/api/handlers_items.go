package api

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/grocery-pricer/internal/service"
)

// handleAddItem handles POST /api/v1/lists/{id}/items
func (s *Server) handleAddItem(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}

	var body service.AddItemInput
	if err := parseJSONBody(r, &body); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_INPUT", "invalid request body", nil)
		return
	}

	item, err := s.itemService.AddItem(r.Context(), mux.Vars(r)["id"], user, &body)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, item)
}

// handleUpdateItem handles PATCH /api/v1/lists/{id}/items/{itemId}
func (s *Server) handleUpdateItem(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}

	var body service.UpdateItemInput
	if err := parseJSONBody(r, &body); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_INPUT", "invalid request body", nil)
		return
	}

	vars := mux.Vars(r)
	item, err := s.itemService.UpdateItem(r.Context(), vars["id"], vars["itemId"], user, &body)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, item)
}

// handleRemoveItem handles DELETE /api/v1/lists/{id}/items/{itemId}
func (s *Server) handleRemoveItem(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}

	vars := mux.Vars(r)
	if err := s.itemService.RemoveItem(r.Context(), vars["id"], vars["itemId"], user); err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusNoContent, nil)
}

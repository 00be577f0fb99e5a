package api

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/grocery-pricer/internal/service"
)

// handleCreateList handles POST /api/v1/lists
func (s *Server) handleCreateList(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}

	var body struct {
		Title    string `json:"title"`
		IsPublic bool   `json:"isPublic"`
	}
	if err := parseJSONBody(r, &body); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_INPUT", "invalid request body", nil)
		return
	}

	list, err := s.listService.CreateList(r.Context(), &service.CreateListInput{
		OwnerID:  user,
		Title:    body.Title,
		IsPublic: body.IsPublic,
	})
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, list)
}

// handleGetLists handles GET /api/v1/lists
func (s *Server) handleGetLists(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}

	lists, err := s.listService.ListsForUser(r.Context(), user)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{"lists": lists})
}

// handleGetList handles GET /api/v1/lists/{id}
func (s *Server) handleGetList(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}

	list, err := s.listService.GetList(r.Context(), mux.Vars(r)["id"], user)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, list)
}

// handleUpdateList handles PATCH /api/v1/lists/{id}
func (s *Server) handleUpdateList(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}

	var body service.UpdateListInput
	if err := parseJSONBody(r, &body); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_INPUT", "invalid request body", nil)
		return
	}

	list, err := s.listService.UpdateList(r.Context(), mux.Vars(r)["id"], user, &body)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, list)
}

// handleDeleteList handles DELETE /api/v1/lists/{id}
func (s *Server) handleDeleteList(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}

	if err := s.listService.DeleteList(r.Context(), mux.Vars(r)["id"], user); err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusNoContent, nil)
}

// handleCopyList handles POST /api/v1/lists/{id}/copy
func (s *Server) handleCopyList(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}

	copied, err := s.listService.CopyList(r.Context(), mux.Vars(r)["id"], user)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, copied)
}

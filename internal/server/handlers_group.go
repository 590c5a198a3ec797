package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/akashg/potledger/internal/models"
)

type groupRequest struct {
	Name    string   `json:"name"`
	Members []string `json:"members"`
}

type groupResponse struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	Members   []string `json:"members"`
	CreatedAt int64    `json:"created_at"`
}

func toGroupResponse(g *models.Group) groupResponse {
	return groupResponse{ID: g.ID, Name: g.Name, Members: g.Members, CreatedAt: g.CreatedAt}
}

func (s *Server) handleCreateGroup(w http.ResponseWriter, r *http.Request) {
	var req groupRequest
	if !decode(w, r, &req) {
		return
	}
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}

	group, err := s.groups.CreateGroup(r.Context(), req.Name, req.Members)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toGroupResponse(group))
}

func (s *Server) handleListGroups(w http.ResponseWriter, r *http.Request) {
	groups, err := s.groups.ListGroups(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}

	out := make([]groupResponse, len(groups))
	for i, g := range groups {
		out[i] = toGroupResponse(g)
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleGetGroup(w http.ResponseWriter, r *http.Request) {
	group, err := s.groups.GetGroup(r.Context(), chi.URLParam(r, "groupID"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toGroupResponse(group))
}

func (s *Server) handleUpdateGroup(w http.ResponseWriter, r *http.Request) {
	var req groupRequest
	if !decode(w, r, &req) {
		return
	}

	group, err := s.groups.UpdateGroup(r.Context(), chi.URLParam(r, "groupID"), req.Name, req.Members)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toGroupResponse(group))
}

func (s *Server) handleDeleteGroup(w http.ResponseWriter, r *http.Request) {
	if err := s.groups.DeleteGroup(r.Context(), chi.URLParam(r, "groupID")); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

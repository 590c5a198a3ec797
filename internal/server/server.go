// Package server exposes the service layer as a JSON HTTP API.
package server

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/akashg/potledger/internal/auth"
	"github.com/akashg/potledger/internal/service"
	"github.com/akashg/potledger/internal/storage"
)

// Server holds the services the handlers dispatch to.
type Server struct {
	auth        *service.AuthService
	groups      *service.GroupService
	games       *service.GameService
	settlements *service.SettlementService
	jwtManager  *auth.JWTManager
}

// New creates a Server over the given services.
func New(authSvc *service.AuthService, groups *service.GroupService, games *service.GameService, settlements *service.SettlementService, jwtManager *auth.JWTManager) *Server {
	return &Server{
		auth:        authSvc,
		groups:      groups,
		games:       games,
		settlements: settlements,
		jwtManager:  jwtManager,
	}
}

type errorResponse struct {
	Error       string `json:"error"`
	Discrepancy string `json:"discrepancy,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

// writeServiceError maps service and storage errors onto HTTP statuses.
// Out-of-balance refusals carry the discrepancy so clients can display it.
func writeServiceError(w http.ResponseWriter, err error) {
	var oob *service.OutOfBalanceError
	switch {
	case errors.As(err, &oob):
		writeJSON(w, http.StatusConflict, errorResponse{
			Error:       oob.Error(),
			Discrepancy: oob.Discrepancy.String(),
		})
	case errors.Is(err, service.ErrGameCompleted):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, service.ErrTransferNotPlanned),
		errors.Is(err, storage.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrNotParticipant),
		errors.Is(err, service.ErrInvalidAmount),
		errors.Is(err, auth.ErrWeakPassword):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, auth.ErrEmailExists):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, auth.ErrInvalidCredentials):
		writeError(w, http.StatusUnauthorized, err.Error())
	default:
		slog.Error("Internal error", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}

package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/akashg/potledger/internal/middleware"
)

// Routes builds the HTTP router. Everything under the authenticated group
// requires a bearer token; health and metrics stay open.
func (s *Server) Routes() *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.Logging)
	r.Use(middleware.Metrics)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Post("/auth/register", s.handleRegister)
	r.Post("/auth/login", s.handleLogin)

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth(s.jwtManager))

		r.Post("/groups", s.handleCreateGroup)
		r.Get("/groups", s.handleListGroups)
		r.Get("/groups/{groupID}", s.handleGetGroup)
		r.Patch("/groups/{groupID}", s.handleUpdateGroup)
		r.Delete("/groups/{groupID}", s.handleDeleteGroup)

		r.Post("/groups/{groupID}/games", s.handleCreateGame)
		r.Get("/groups/{groupID}/games", s.handleListGames)
		r.Get("/games/{gameID}", s.handleGetGame)
		r.Post("/games/{gameID}/close", s.handleCloseGame)

		r.Post("/games/{gameID}/transactions", s.handleRecordTransaction)
		r.Patch("/transactions/{txnID}", s.handleUpdateTransaction)
		r.Delete("/transactions/{txnID}", s.handleDeleteTransaction)

		r.Get("/games/{gameID}/settlement", s.handleGetSettlement)
		r.Post("/games/{gameID}/settlement/mark", s.handleMarkSettled)
		r.Post("/games/{gameID}/settlement/reset", s.handleResetSettlement)
	})

	return r
}

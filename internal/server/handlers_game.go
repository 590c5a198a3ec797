package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/akashg/potledger/internal/engine"
	"github.com/akashg/potledger/internal/models"
)

type createGameRequest struct {
	Name         string   `json:"name"`
	Participants []string `json:"participants"`
}

type gameResponse struct {
	ID           string   `json:"id"`
	GroupID      string   `json:"group_id"`
	Name         string   `json:"name"`
	Participants []string `json:"participants"`
	Status       string   `json:"status"`
	CreatedAt    int64    `json:"created_at"`
	CompletedAt  int64    `json:"completed_at,omitempty"`
}

type transactionResponse struct {
	ID        string          `json:"id"`
	GameID    string          `json:"game_id"`
	UserID    string          `json:"user_id"`
	Type      string          `json:"type"`
	Amount    decimal.Decimal `json:"amount"`
	CreatedAt int64           `json:"created_at"`
	Notes     string          `json:"notes,omitempty"`
}

type balanceResponse struct {
	UserID       string                `json:"user_id"`
	TotalBuyIn   decimal.Decimal       `json:"total_buyin"`
	TotalCashOut decimal.Decimal       `json:"total_cashout"`
	Net          decimal.Decimal       `json:"net"`
	BuyIns       []transactionResponse `json:"buyins"`
	CashOuts     []transactionResponse `json:"cashouts"`
}

type gameDetailResponse struct {
	Game        gameResponse      `json:"game"`
	Balances    []balanceResponse `json:"balances"`
	Balanced    bool              `json:"balanced"`
	Discrepancy decimal.Decimal   `json:"discrepancy"`
}

type transactionRequest struct {
	UserID string          `json:"user_id"`
	Type   string          `json:"type"`
	Amount decimal.Decimal `json:"amount"`
	Notes  string          `json:"notes"`
}

func toGameResponse(g *models.Game) gameResponse {
	return gameResponse{
		ID:           g.ID,
		GroupID:      g.GroupID,
		Name:         g.Name,
		Participants: g.Participants,
		Status:       string(g.Status),
		CreatedAt:    g.CreatedAt,
		CompletedAt:  g.CompletedAt,
	}
}

func toTransactionResponse(t models.Transaction) transactionResponse {
	return transactionResponse{
		ID:        t.ID,
		GameID:    t.GameID,
		UserID:    t.UserID,
		Type:      string(t.Type),
		Amount:    t.Amount,
		CreatedAt: t.CreatedAt,
		Notes:     t.Notes,
	}
}

func toBalanceResponse(b *engine.PlayerBalance) balanceResponse {
	out := balanceResponse{
		UserID:       b.UserID,
		TotalBuyIn:   b.TotalBuyIn,
		TotalCashOut: b.TotalCashOut,
		Net:          b.Net,
		BuyIns:       make([]transactionResponse, len(b.BuyIns)),
		CashOuts:     make([]transactionResponse, len(b.CashOuts)),
	}
	for i, t := range b.BuyIns {
		out.BuyIns[i] = toTransactionResponse(t)
	}
	for i, t := range b.CashOuts {
		out.CashOuts[i] = toTransactionResponse(t)
	}
	return out
}

func parseTransactionType(raw string) (models.TransactionType, bool) {
	switch models.TransactionType(raw) {
	case models.BuyIn:
		return models.BuyIn, true
	case models.CashOut:
		return models.CashOut, true
	}
	return "", false
}

func (s *Server) handleCreateGame(w http.ResponseWriter, r *http.Request) {
	var req createGameRequest
	if !decode(w, r, &req) {
		return
	}

	game, err := s.games.CreateGame(r.Context(), chi.URLParam(r, "groupID"), req.Name, req.Participants)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toGameResponse(game))
}

func (s *Server) handleListGames(w http.ResponseWriter, r *http.Request) {
	games, err := s.games.ListGames(r.Context(), chi.URLParam(r, "groupID"))
	if err != nil {
		writeServiceError(w, err)
		return
	}

	out := make([]gameResponse, len(games))
	for i, g := range games {
		out[i] = toGameResponse(g)
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleGetGame(w http.ResponseWriter, r *http.Request) {
	detail, err := s.games.GetGame(r.Context(), chi.URLParam(r, "gameID"))
	if err != nil {
		writeServiceError(w, err)
		return
	}

	resp := gameDetailResponse{
		Game:        toGameResponse(detail.Game),
		Balances:    make([]balanceResponse, len(detail.Balances)),
		Balanced:    detail.Balanced,
		Discrepancy: detail.Discrepancy,
	}
	for i, b := range detail.Balances {
		resp.Balances[i] = toBalanceResponse(b)
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleCloseGame(w http.ResponseWriter, r *http.Request) {
	game, err := s.games.CloseGame(r.Context(), chi.URLParam(r, "gameID"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toGameResponse(game))
}

func (s *Server) handleRecordTransaction(w http.ResponseWriter, r *http.Request) {
	var req transactionRequest
	if !decode(w, r, &req) {
		return
	}
	typ, ok := parseTransactionType(req.Type)
	if !ok {
		writeError(w, http.StatusBadRequest, "type must be buyin or cashout")
		return
	}

	txn, err := s.games.RecordTransaction(r.Context(), chi.URLParam(r, "gameID"), req.UserID, typ, req.Amount, req.Notes)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toTransactionResponse(*txn))
}

func (s *Server) handleUpdateTransaction(w http.ResponseWriter, r *http.Request) {
	var req transactionRequest
	if !decode(w, r, &req) {
		return
	}
	typ, ok := parseTransactionType(req.Type)
	if !ok {
		writeError(w, http.StatusBadRequest, "type must be buyin or cashout")
		return
	}

	txn, err := s.games.UpdateTransaction(r.Context(), chi.URLParam(r, "txnID"), typ, req.Amount, req.Notes)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toTransactionResponse(*txn))
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	if err := s.games.DeleteTransaction(r.Context(), chi.URLParam(r, "txnID")); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

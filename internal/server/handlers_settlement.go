package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/akashg/potledger/internal/models"
)

type transferStatusResponse struct {
	FromUserID    string          `json:"from_user_id"`
	ToUserID      string          `json:"to_user_id"`
	Amount        decimal.Decimal `json:"amount"`
	Settled       bool            `json:"settled"`
	PaymentMethod string          `json:"payment_method,omitempty"`
	SettledAt     int64           `json:"settled_at,omitempty"`
}

type orphanResponse struct {
	FromUserID    string          `json:"from_user_id"`
	ToUserID      string          `json:"to_user_id"`
	Amount        decimal.Decimal `json:"amount"`
	PaymentMethod string          `json:"payment_method"`
	SettledAt     int64           `json:"settled_at"`
}

type settlementViewResponse struct {
	Transfers []transferStatusResponse `json:"transfers"`
	Orphans   []orphanResponse         `json:"orphans,omitempty"`
	Message   string                   `json:"message,omitempty"`
}

type markSettledRequest struct {
	FromUserID    string `json:"from_user_id"`
	ToUserID      string `json:"to_user_id"`
	PaymentMethod string `json:"payment_method"`
}

type resetSettlementRequest struct {
	FromUserID string `json:"from_user_id"`
	ToUserID   string `json:"to_user_id"`
}

type settlementRecordResponse struct {
	GameID        string          `json:"game_id"`
	FromUserID    string          `json:"from_user_id"`
	ToUserID      string          `json:"to_user_id"`
	Amount        decimal.Decimal `json:"amount"`
	PaymentMethod string          `json:"payment_method"`
	SettledAt     int64           `json:"settled_at"`
}

func toRecordResponse(r *models.SettlementRecord) settlementRecordResponse {
	return settlementRecordResponse{
		GameID:        r.GameID,
		FromUserID:    r.FromUserID,
		ToUserID:      r.ToUserID,
		Amount:        r.Amount,
		PaymentMethod: r.PaymentMethod,
		SettledAt:     r.SettledAt,
	}
}

func (s *Server) handleGetSettlement(w http.ResponseWriter, r *http.Request) {
	view, err := s.settlements.Plan(r.Context(), chi.URLParam(r, "gameID"))
	if err != nil {
		writeServiceError(w, err)
		return
	}

	resp := settlementViewResponse{
		Transfers: make([]transferStatusResponse, len(view.Transfers)),
	}
	for i, t := range view.Transfers {
		resp.Transfers[i] = transferStatusResponse{
			FromUserID:    t.FromUserID,
			ToUserID:      t.ToUserID,
			Amount:        t.Amount,
			Settled:       t.Settled,
			PaymentMethod: t.PaymentMethod,
			SettledAt:     t.SettledAt,
		}
	}
	for _, o := range view.Orphans {
		resp.Orphans = append(resp.Orphans, orphanResponse{
			FromUserID:    o.FromUserID,
			ToUserID:      o.ToUserID,
			Amount:        o.Amount,
			PaymentMethod: o.PaymentMethod,
			SettledAt:     o.SettledAt,
		})
	}
	if len(resp.Transfers) == 0 {
		resp.Message = "No settlements needed"
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleMarkSettled(w http.ResponseWriter, r *http.Request) {
	var req markSettledRequest
	if !decode(w, r, &req) {
		return
	}
	if req.FromUserID == "" || req.ToUserID == "" {
		writeError(w, http.StatusBadRequest, "from_user_id and to_user_id are required")
		return
	}

	record, err := s.settlements.MarkSettled(r.Context(), chi.URLParam(r, "gameID"), req.FromUserID, req.ToUserID, req.PaymentMethod)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toRecordResponse(record))
}

func (s *Server) handleResetSettlement(w http.ResponseWriter, r *http.Request) {
	var req resetSettlementRequest
	if !decode(w, r, &req) {
		return
	}
	if req.FromUserID == "" || req.ToUserID == "" {
		writeError(w, http.StatusBadRequest, "from_user_id and to_user_id are required")
		return
	}

	if err := s.settlements.Reset(r.Context(), chi.URLParam(r, "gameID"), req.FromUserID, req.ToUserID); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

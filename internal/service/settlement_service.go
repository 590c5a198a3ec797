package service

import (
	"context"
	"log/slog"

	"github.com/akashg/potledger/internal/engine"
	"github.com/akashg/potledger/internal/models"
	"github.com/akashg/potledger/internal/storage"
)

// SettlementService exposes the settlement plan with paid/unpaid status and
// the mark/reset mutations on that status.
type SettlementService struct {
	store storage.Store
}

// NewSettlementService creates a new SettlementService with the given storage backend.
func NewSettlementService(store storage.Store) *SettlementService {
	return &SettlementService{store: store}
}

// SettlementView is the current plan overlaid with persisted paid state.
// Orphans are records that no longer match any planned transfer; they are
// surfaced so callers never treat a stale record as a valid payment.
type SettlementView struct {
	Transfers []engine.TransferStatus
	Orphans   []models.SettlementRecord
}

// Plan recomputes the settlement plan from the game's current transactions
// and reconciles it with persisted settlement records.
func (s *SettlementService) Plan(ctx context.Context, gameID string) (*SettlementView, error) {
	plan, err := s.currentPlan(ctx, gameID)
	if err != nil {
		return nil, err
	}
	records, err := s.store.ListSettlementsByGame(ctx, gameID)
	if err != nil {
		return nil, err
	}

	statuses, orphans := engine.Reconcile(plan, records)
	if len(orphans) > 0 {
		slog.Warn("Settlement records inconsistent with current plan",
			"game_id", gameID, "orphans", len(orphans))
	}

	return &SettlementView{Transfers: statuses, Orphans: orphans}, nil
}

// MarkSettled marks a planned transfer as paid. The amount is taken from the
// current plan, not from the caller, so a stale client cannot write a wrong
// figure. Marking the same pair again overwrites method and timestamp.
func (s *SettlementService) MarkSettled(ctx context.Context, gameID, fromUserID, toUserID, method string) (*models.SettlementRecord, error) {
	plan, err := s.currentPlan(ctx, gameID)
	if err != nil {
		return nil, err
	}

	var planned *engine.Transfer
	for i := range plan {
		if plan[i].FromUserID == fromUserID && plan[i].ToUserID == toUserID {
			planned = &plan[i]
			break
		}
	}
	if planned == nil {
		return nil, ErrTransferNotPlanned
	}

	record := &models.SettlementRecord{
		GameID:        gameID,
		FromUserID:    fromUserID,
		ToUserID:      toUserID,
		Amount:        planned.Amount,
		PaymentMethod: method,
	}
	if err := s.store.UpsertSettlement(ctx, record); err != nil {
		return nil, err
	}

	slog.Info("Transfer marked settled",
		"game_id", gameID, "from", fromUserID, "to", toUserID,
		"amount", record.Amount.String(), "method", method)
	return record, nil
}

// Reset removes the paid marker for a transfer. Resetting a transfer that
// was never marked (or was already reset) is a no-op, not an error.
func (s *SettlementService) Reset(ctx context.Context, gameID, fromUserID, toUserID string) error {
	removed, err := s.store.DeleteSettlement(ctx, gameID, fromUserID, toUserID)
	if err != nil {
		return err
	}
	if !removed {
		slog.Debug("Reset of unmarked transfer ignored",
			"game_id", gameID, "from", fromUserID, "to", toUserID)
		return nil
	}

	slog.Info("Transfer reset to unsettled",
		"game_id", gameID, "from", fromUserID, "to", toUserID)
	return nil
}

func (s *SettlementService) currentPlan(ctx context.Context, gameID string) ([]engine.Transfer, error) {
	game, err := s.store.GetGame(ctx, gameID)
	if err != nil {
		return nil, err
	}
	txns, err := s.store.ListTransactionsByGame(ctx, gameID)
	if err != nil {
		return nil, err
	}
	return engine.PlanSettlement(engine.ComputeBalances(game.Participants, txns)), nil
}

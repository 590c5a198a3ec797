package service

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/akashg/potledger/internal/engine"
	"github.com/akashg/potledger/internal/models"
	"github.com/akashg/potledger/internal/storage"
)

// GameService owns the game lifecycle: creating games, recording and editing
// transactions, computing balances, and the close gate.
//
// The engine only computes over snapshots, so this layer serializes
// transaction mutations and closure per game with a keyed mutex: a close
// decision never observes a half-applied edit.
type GameService struct {
	store storage.Store

	locks sync.Map // gameID -> *sync.Mutex
}

// NewGameService creates a new GameService with the given storage backend.
func NewGameService(store storage.Store) *GameService {
	return &GameService{store: store}
}

// GameDetail is a game together with its computed financial state.
type GameDetail struct {
	Game        *models.Game
	Balances    []*engine.PlayerBalance
	Balanced    bool
	Discrepancy decimal.Decimal
}

func (s *GameService) lock(gameID string) func() {
	mu, _ := s.locks.LoadOrStore(gameID, &sync.Mutex{})
	m := mu.(*sync.Mutex)
	m.Lock()
	return m.Unlock
}

// isParticipant checks if the user is in the participants list.
func isParticipant(userID string, participants []string) bool {
	for _, p := range participants {
		if p == userID {
			return true
		}
	}
	return false
}

// validAmount accepts non-negative two-decimal currency amounts.
func validAmount(amount decimal.Decimal) bool {
	return !amount.IsNegative() && amount.Exponent() >= -2
}

// CreateGame creates a game under a group. Participants default to the
// group's full member list; participants not yet in the group are added to
// it, mirroring how ad-hoc players join a regular game.
func (s *GameService) CreateGame(ctx context.Context, groupID, name string, participants []string) (*models.Game, error) {
	group, err := s.store.GetGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}

	if len(participants) == 0 {
		participants = group.Members
	} else {
		var newMembers []string
		for _, p := range participants {
			if !isParticipant(p, group.Members) {
				newMembers = append(newMembers, p)
			}
		}
		if len(newMembers) > 0 {
			group.Members = append(group.Members, newMembers...)
			if err := s.store.UpdateGroup(ctx, group); err != nil {
				return nil, fmt.Errorf("failed to add participants to group: %w", err)
			}
			slog.Info("Added game participants to group", "group_id", groupID, "new_members", newMembers)
		}
	}

	game := &models.Game{
		GroupID:      groupID,
		Name:         name,
		Participants: participants,
	}
	if err := s.store.CreateGame(ctx, game); err != nil {
		return nil, err
	}

	slog.Info("Game created", "game_id", game.ID, "group_id", groupID, "participants", len(participants))
	return game, nil
}

// GetGame returns a game with balances and the balanced/discrepancy readout.
func (s *GameService) GetGame(ctx context.Context, gameID string) (*GameDetail, error) {
	game, err := s.store.GetGame(ctx, gameID)
	if err != nil {
		return nil, err
	}
	txns, err := s.store.ListTransactionsByGame(ctx, gameID)
	if err != nil {
		return nil, err
	}

	balances := engine.ComputeBalances(game.Participants, txns)
	balanced, discrepancy := engine.CheckBalanced(balances)

	return &GameDetail{
		Game:        game,
		Balances:    sortedBalances(balances),
		Balanced:    balanced,
		Discrepancy: discrepancy,
	}, nil
}

// ListGames returns a group's games, newest first.
func (s *GameService) ListGames(ctx context.Context, groupID string) ([]*models.Game, error) {
	if _, err := s.store.GetGroup(ctx, groupID); err != nil {
		return nil, err
	}
	return s.store.ListGamesByGroup(ctx, groupID)
}

// RecordTransaction records a buy-in or cash-out for a seated player.
// Settlement records invalidated by the new transaction are purged.
func (s *GameService) RecordTransaction(ctx context.Context, gameID, userID string, typ models.TransactionType, amount decimal.Decimal, notes string) (*models.Transaction, error) {
	unlock := s.lock(gameID)
	defer unlock()

	game, err := s.store.GetGame(ctx, gameID)
	if err != nil {
		return nil, err
	}
	if game.Status == models.GameCompleted {
		return nil, ErrGameCompleted
	}
	if !isParticipant(userID, game.Participants) {
		return nil, ErrNotParticipant
	}
	if !validAmount(amount) {
		return nil, ErrInvalidAmount
	}

	txn := &models.Transaction{
		GameID: gameID,
		UserID: userID,
		Type:   typ,
		Amount: amount,
		Notes:  notes,
	}
	if err := s.store.CreateTransaction(ctx, txn); err != nil {
		return nil, err
	}

	slog.Info("Transaction recorded",
		"game_id", gameID, "user_id", userID, "type", typ, "amount", amount.String())

	s.purgeStaleSettlements(ctx, game)
	return txn, nil
}

// UpdateTransaction replaces a transaction's type, amount, and notes.
// Rejected once the game is completed.
func (s *GameService) UpdateTransaction(ctx context.Context, txnID string, typ models.TransactionType, amount decimal.Decimal, notes string) (*models.Transaction, error) {
	existing, err := s.store.GetTransaction(ctx, txnID)
	if err != nil {
		return nil, err
	}

	unlock := s.lock(existing.GameID)
	defer unlock()

	game, err := s.store.GetGame(ctx, existing.GameID)
	if err != nil {
		return nil, err
	}
	if game.Status == models.GameCompleted {
		return nil, ErrGameCompleted
	}
	if !validAmount(amount) {
		return nil, ErrInvalidAmount
	}

	existing.Type = typ
	existing.Amount = amount
	existing.Notes = notes
	if err := s.store.UpdateTransaction(ctx, existing); err != nil {
		return nil, err
	}

	slog.Info("Transaction updated", "transaction_id", txnID, "game_id", game.ID)
	s.purgeStaleSettlements(ctx, game)
	return existing, nil
}

// DeleteTransaction removes a transaction. Rejected once the game is completed.
func (s *GameService) DeleteTransaction(ctx context.Context, txnID string) error {
	existing, err := s.store.GetTransaction(ctx, txnID)
	if err != nil {
		return err
	}

	unlock := s.lock(existing.GameID)
	defer unlock()

	game, err := s.store.GetGame(ctx, existing.GameID)
	if err != nil {
		return err
	}
	if game.Status == models.GameCompleted {
		return ErrGameCompleted
	}

	if err := s.store.DeleteTransaction(ctx, txnID); err != nil {
		return err
	}

	slog.Info("Transaction deleted", "transaction_id", txnID, "game_id", game.ID)
	s.purgeStaleSettlements(ctx, game)
	return nil
}

// CloseGame transitions a game to completed, gated on the books balancing.
// An out-of-balance game returns *OutOfBalanceError carrying the signed
// discrepancy so the caller can display it; the game stays open.
func (s *GameService) CloseGame(ctx context.Context, gameID string) (*models.Game, error) {
	unlock := s.lock(gameID)
	defer unlock()

	game, err := s.store.GetGame(ctx, gameID)
	if err != nil {
		return nil, err
	}
	if game.Status == models.GameCompleted {
		return nil, ErrGameCompleted
	}

	txns, err := s.store.ListTransactionsByGame(ctx, gameID)
	if err != nil {
		return nil, err
	}
	balances := engine.ComputeBalances(game.Participants, txns)
	balanced, discrepancy := engine.CheckBalanced(balances)
	if !balanced {
		slog.Warn("Close refused: books out of balance",
			"game_id", gameID, "discrepancy", discrepancy.String())
		return nil, &OutOfBalanceError{Discrepancy: discrepancy}
	}

	completedAt := time.Now().Unix()
	if err := s.store.CompleteGame(ctx, gameID, completedAt); err != nil {
		return nil, err
	}
	game.Status = models.GameCompleted
	game.CompletedAt = completedAt

	slog.Info("Game closed", "game_id", gameID)
	return game, nil
}

// purgeStaleSettlements re-plans after a transaction mutation and deletes
// settlement records whose pair or amount no longer matches the plan.
// Keeping them would misstate who has paid whom once balances move.
// Purge failures are logged, not returned: the transaction mutation itself
// already succeeded.
func (s *GameService) purgeStaleSettlements(ctx context.Context, game *models.Game) {
	records, err := s.store.ListSettlementsByGame(ctx, game.ID)
	if err != nil {
		slog.Error("purgeStaleSettlements: failed to list records", "game_id", game.ID, "error", err)
		return
	}
	if len(records) == 0 {
		return
	}

	txns, err := s.store.ListTransactionsByGame(ctx, game.ID)
	if err != nil {
		slog.Error("purgeStaleSettlements: failed to list transactions", "game_id", game.ID, "error", err)
		return
	}

	plan := engine.PlanSettlement(engine.ComputeBalances(game.Participants, txns))
	_, orphans := engine.Reconcile(plan, records)
	for _, orphan := range orphans {
		if _, err := s.store.DeleteSettlement(ctx, game.ID, orphan.FromUserID, orphan.ToUserID); err != nil {
			slog.Error("purgeStaleSettlements: failed to delete orphan",
				"game_id", game.ID, "from", orphan.FromUserID, "to", orphan.ToUserID, "error", err)
			continue
		}
		slog.Warn("Purged stale settlement record",
			"game_id", game.ID, "from", orphan.FromUserID, "to", orphan.ToUserID, "amount", orphan.Amount.String())
	}
}

func sortedBalances(balances map[string]*engine.PlayerBalance) []*engine.PlayerBalance {
	out := make([]*engine.PlayerBalance, 0, len(balances))
	for _, b := range balances {
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UserID < out[j].UserID })
	return out
}

package sqlite

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/akashg/potledger/internal/models"
	"github.com/akashg/potledger/internal/storage"
)

func TestSQLiteStore(t *testing.T) {
	tempDir, err := os.MkdirTemp("", "potledger-test-*")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(tempDir)

	dbPath := filepath.Join(tempDir, "test.db")
	store, err := New(dbPath)
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	defer store.Close()

	ctx := context.Background()

	group := &models.Group{Name: "Thursday Night", Members: []string{"alice", "bob", "carol"}}
	if err := store.CreateGroup(ctx, group); err != nil {
		t.Fatalf("CreateGroup failed: %v", err)
	}

	t.Run("CreateGroup generates ID and round-trips members", func(t *testing.T) {
		if group.ID == "" {
			t.Error("Expected group ID to be generated")
		}
		if group.CreatedAt == 0 {
			t.Error("Expected CreatedAt to be set")
		}

		retrieved, err := store.GetGroup(ctx, group.ID)
		if err != nil {
			t.Fatalf("GetGroup failed: %v", err)
		}
		if len(retrieved.Members) != 3 {
			t.Errorf("Members count = %d, want 3", len(retrieved.Members))
		}
	})

	t.Run("GetGroup wraps ErrNotFound for missing group", func(t *testing.T) {
		_, err := store.GetGroup(ctx, "nonexistent-id")
		if !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})

	game := &models.Game{GroupID: group.ID, Name: "Friday 3/14", Participants: []string{"alice", "bob"}}
	if err := store.CreateGame(ctx, game); err != nil {
		t.Fatalf("CreateGame failed: %v", err)
	}

	t.Run("CreateGame defaults status to active", func(t *testing.T) {
		retrieved, err := store.GetGame(ctx, game.ID)
		if err != nil {
			t.Fatalf("GetGame failed: %v", err)
		}
		if retrieved.Status != models.GameActive {
			t.Errorf("Status = %s, want %s", retrieved.Status, models.GameActive)
		}
		if len(retrieved.Participants) != 2 {
			t.Errorf("Participants count = %d, want 2", len(retrieved.Participants))
		}
	})

	t.Run("Transactions round-trip with decimal amounts intact", func(t *testing.T) {
		txn := &models.Transaction{
			GameID: game.ID,
			UserID: "alice",
			Type:   models.BuyIn,
			Amount: decimal.RequireFromString("50.00"),
			Notes:  "initial buy-in",
		}
		if err := store.CreateTransaction(ctx, txn); err != nil {
			t.Fatalf("CreateTransaction failed: %v", err)
		}

		retrieved, err := store.GetTransaction(ctx, txn.ID)
		if err != nil {
			t.Fatalf("GetTransaction failed: %v", err)
		}
		if !retrieved.Amount.Equal(decimal.RequireFromString("50.00")) {
			t.Errorf("Amount = %s, want 50.00", retrieved.Amount)
		}
		if retrieved.Type != models.BuyIn {
			t.Errorf("Type = %s, want buyin", retrieved.Type)
		}

		retrieved.Amount = decimal.RequireFromString("75.00")
		retrieved.Notes = "corrected"
		if err := store.UpdateTransaction(ctx, retrieved); err != nil {
			t.Fatalf("UpdateTransaction failed: %v", err)
		}
		updated, err := store.GetTransaction(ctx, txn.ID)
		if err != nil {
			t.Fatalf("GetTransaction after update failed: %v", err)
		}
		if !updated.Amount.Equal(decimal.RequireFromString("75.00")) {
			t.Errorf("Amount after update = %s, want 75.00", updated.Amount)
		}

		if err := store.DeleteTransaction(ctx, txn.ID); err != nil {
			t.Fatalf("DeleteTransaction failed: %v", err)
		}
		if _, err := store.GetTransaction(ctx, txn.ID); !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("expected ErrNotFound after delete, got %v", err)
		}
	})

	t.Run("ListTransactionsByGame orders by timestamp", func(t *testing.T) {
		for _, txn := range []*models.Transaction{
			{GameID: game.ID, UserID: "bob", Type: models.BuyIn, Amount: decimal.RequireFromString("30.00"), CreatedAt: 300},
			{GameID: game.ID, UserID: "alice", Type: models.BuyIn, Amount: decimal.RequireFromString("50.00"), CreatedAt: 100},
			{GameID: game.ID, UserID: "alice", Type: models.CashOut, Amount: decimal.RequireFromString("80.00"), CreatedAt: 200},
		} {
			if err := store.CreateTransaction(ctx, txn); err != nil {
				t.Fatalf("CreateTransaction failed: %v", err)
			}
		}

		txns, err := store.ListTransactionsByGame(ctx, game.ID)
		if err != nil {
			t.Fatalf("ListTransactionsByGame failed: %v", err)
		}
		if len(txns) != 3 {
			t.Fatalf("expected 3 transactions, got %d", len(txns))
		}
		for i := 1; i < len(txns); i++ {
			if txns[i].CreatedAt < txns[i-1].CreatedAt {
				t.Errorf("transactions out of order at index %d", i)
			}
		}
	})

	t.Run("UpsertSettlement is idempotent per ordered pair", func(t *testing.T) {
		record := &models.SettlementRecord{
			GameID:        game.ID,
			FromUserID:    "alice",
			ToUserID:      "carol",
			Amount:        decimal.RequireFromString("50.00"),
			PaymentMethod: "cash",
		}
		if err := store.UpsertSettlement(ctx, record); err != nil {
			t.Fatalf("UpsertSettlement failed: %v", err)
		}

		// Second mark for the same pair overwrites, does not duplicate.
		record2 := &models.SettlementRecord{
			GameID:        game.ID,
			FromUserID:    "alice",
			ToUserID:      "carol",
			Amount:        decimal.RequireFromString("50.00"),
			PaymentMethod: "venmo",
		}
		if err := store.UpsertSettlement(ctx, record2); err != nil {
			t.Fatalf("second UpsertSettlement failed: %v", err)
		}

		records, err := store.ListSettlementsByGame(ctx, game.ID)
		if err != nil {
			t.Fatalf("ListSettlementsByGame failed: %v", err)
		}
		if len(records) != 1 {
			t.Fatalf("expected exactly 1 record, got %d", len(records))
		}
		if records[0].PaymentMethod != "venmo" {
			t.Errorf("PaymentMethod = %s, want venmo (last write wins)", records[0].PaymentMethod)
		}

		// Reverse direction is a distinct ordered pair.
		reverse := &models.SettlementRecord{
			GameID:        game.ID,
			FromUserID:    "carol",
			ToUserID:      "alice",
			Amount:        decimal.RequireFromString("10.00"),
			PaymentMethod: "cash",
		}
		if err := store.UpsertSettlement(ctx, reverse); err != nil {
			t.Fatalf("UpsertSettlement reverse pair failed: %v", err)
		}
		records, err = store.ListSettlementsByGame(ctx, game.ID)
		if err != nil {
			t.Fatalf("ListSettlementsByGame failed: %v", err)
		}
		if len(records) != 2 {
			t.Errorf("expected 2 records for distinct ordered pairs, got %d", len(records))
		}
	})

	t.Run("DeleteSettlement reports removal and tolerates repeats", func(t *testing.T) {
		removed, err := store.DeleteSettlement(ctx, game.ID, "alice", "carol")
		if err != nil {
			t.Fatalf("DeleteSettlement failed: %v", err)
		}
		if !removed {
			t.Error("expected first delete to remove a record")
		}

		removed, err = store.DeleteSettlement(ctx, game.ID, "alice", "carol")
		if err != nil {
			t.Fatalf("repeat DeleteSettlement errored: %v", err)
		}
		if removed {
			t.Error("repeat delete should be a no-op")
		}
	})

	t.Run("CompleteGame transitions status", func(t *testing.T) {
		if err := store.CompleteGame(ctx, game.ID, 9999); err != nil {
			t.Fatalf("CompleteGame failed: %v", err)
		}
		retrieved, err := store.GetGame(ctx, game.ID)
		if err != nil {
			t.Fatalf("GetGame failed: %v", err)
		}
		if retrieved.Status != models.GameCompleted {
			t.Errorf("Status = %s, want completed", retrieved.Status)
		}
		if retrieved.CompletedAt != 9999 {
			t.Errorf("CompletedAt = %d, want 9999", retrieved.CompletedAt)
		}
	})

	t.Run("Users round-trip by email and id", func(t *testing.T) {
		user := models.NewUser("alice@example.com", "Alice", "hash")
		if err := store.CreateUser(ctx, user); err != nil {
			t.Fatalf("CreateUser failed: %v", err)
		}
		byEmail, err := store.GetUserByEmail(ctx, "alice@example.com")
		if err != nil {
			t.Fatalf("GetUserByEmail failed: %v", err)
		}
		if byEmail.ID != user.ID {
			t.Errorf("ID mismatch: got %s, want %s", byEmail.ID, user.ID)
		}
		if _, err := store.GetUserByID(ctx, user.ID); err != nil {
			t.Fatalf("GetUserByID failed: %v", err)
		}
	})
}

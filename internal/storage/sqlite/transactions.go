package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/akashg/potledger/internal/models"
	"github.com/akashg/potledger/internal/storage"
)

// CreateTransaction persists a buy-in or cash-out.
func (s *SQLiteStore) CreateTransaction(ctx context.Context, txn *models.Transaction) error {
	if txn.ID == "" {
		txn.ID = uuid.New().String()
	}
	if txn.CreatedAt == 0 {
		txn.CreatedAt = time.Now().Unix()
	}

	_, err := s.db.ExecContext(ctx,
		"INSERT INTO transactions (id, game_id, user_id, type, amount, created_at, notes) VALUES (?, ?, ?, ?, ?, ?, ?)",
		txn.ID, txn.GameID, txn.UserID, txn.Type, txn.Amount.String(), txn.CreatedAt, txn.Notes,
	)
	if err != nil {
		return fmt.Errorf("failed to insert transaction: %w", err)
	}
	return nil
}

// GetTransaction retrieves a transaction by ID.
func (s *SQLiteStore) GetTransaction(ctx context.Context, txnID string) (*models.Transaction, error) {
	txn := &models.Transaction{}
	var amount string
	err := s.db.QueryRowContext(ctx,
		"SELECT id, game_id, user_id, type, amount, created_at, notes FROM transactions WHERE id = ?",
		txnID,
	).Scan(&txn.ID, &txn.GameID, &txn.UserID, &txn.Type, &amount, &txn.CreatedAt, &txn.Notes)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("transaction %s: %w", txnID, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get transaction: %w", err)
	}

	txn.Amount, err = decimal.NewFromString(amount)
	if err != nil {
		return nil, fmt.Errorf("failed to parse transaction amount %q: %w", amount, err)
	}
	return txn, nil
}

// UpdateTransaction replaces a transaction's type, amount, and notes.
func (s *SQLiteStore) UpdateTransaction(ctx context.Context, txn *models.Transaction) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE transactions SET type = ?, amount = ?, notes = ? WHERE id = ?",
		txn.Type, txn.Amount.String(), txn.Notes, txn.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update transaction: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check update result: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("transaction %s: %w", txn.ID, storage.ErrNotFound)
	}
	return nil
}

// DeleteTransaction removes a transaction.
func (s *SQLiteStore) DeleteTransaction(ctx context.Context, txnID string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM transactions WHERE id = ?", txnID)
	if err != nil {
		return fmt.Errorf("failed to delete transaction: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check delete result: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("transaction %s: %w", txnID, storage.ErrNotFound)
	}
	return nil
}

// ListTransactionsByGame retrieves a game's transactions, timestamp ascending.
func (s *SQLiteStore) ListTransactionsByGame(ctx context.Context, gameID string) ([]models.Transaction, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, game_id, user_id, type, amount, created_at, notes FROM transactions WHERE game_id = ? ORDER BY created_at, id",
		gameID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions by game: %w", err)
	}
	defer rows.Close()

	var txns []models.Transaction
	for rows.Next() {
		var txn models.Transaction
		var amount string
		if err := rows.Scan(&txn.ID, &txn.GameID, &txn.UserID, &txn.Type, &amount, &txn.CreatedAt, &txn.Notes); err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		txn.Amount, err = decimal.NewFromString(amount)
		if err != nil {
			return nil, fmt.Errorf("failed to parse transaction amount %q: %w", amount, err)
		}
		txns = append(txns, txn)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate transactions: %w", err)
	}

	return txns, nil
}

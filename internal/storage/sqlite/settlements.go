package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/akashg/potledger/internal/models"
)

// UpsertSettlement writes a settlement record for the ordered
// (game, from, to) pair. A second mark for the same pair overwrites amount,
// method, and timestamp instead of duplicating; the primary key guarantees
// exactly one record per pair even under concurrent marks (last write wins).
func (s *SQLiteStore) UpsertSettlement(ctx context.Context, record *models.SettlementRecord) error {
	if record.SettledAt == 0 {
		record.SettledAt = time.Now().Unix()
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO settlements (game_id, from_user_id, to_user_id, amount, payment_method, settled_at)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(game_id, from_user_id, to_user_id)
		 DO UPDATE SET amount = excluded.amount, payment_method = excluded.payment_method, settled_at = excluded.settled_at`,
		record.GameID, record.FromUserID, record.ToUserID,
		record.Amount.String(), record.PaymentMethod, record.SettledAt,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert settlement: %w", err)
	}
	return nil
}

// DeleteSettlement removes the record for the pair. Returns false when no
// record existed; resetting an unmarked transfer is a no-op, not an error.
func (s *SQLiteStore) DeleteSettlement(ctx context.Context, gameID, fromUserID, toUserID string) (bool, error) {
	res, err := s.db.ExecContext(ctx,
		"DELETE FROM settlements WHERE game_id = ? AND from_user_id = ? AND to_user_id = ?",
		gameID, fromUserID, toUserID,
	)
	if err != nil {
		return false, fmt.Errorf("failed to delete settlement: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to check delete result: %w", err)
	}
	return affected > 0, nil
}

// ListSettlementsByGame retrieves all settlement records for a game.
func (s *SQLiteStore) ListSettlementsByGame(ctx context.Context, gameID string) ([]models.SettlementRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT game_id, from_user_id, to_user_id, amount, payment_method, settled_at
		 FROM settlements WHERE game_id = ? ORDER BY from_user_id, to_user_id`,
		gameID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list settlements by game: %w", err)
	}
	defer rows.Close()

	var records []models.SettlementRecord
	for rows.Next() {
		var record models.SettlementRecord
		var amount string
		if err := rows.Scan(&record.GameID, &record.FromUserID, &record.ToUserID,
			&amount, &record.PaymentMethod, &record.SettledAt); err != nil {
			return nil, fmt.Errorf("failed to scan settlement: %w", err)
		}
		record.Amount, err = decimal.NewFromString(amount)
		if err != nil {
			return nil, fmt.Errorf("failed to parse settlement amount %q: %w", amount, err)
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate settlements: %w", err)
	}

	return records, nil
}

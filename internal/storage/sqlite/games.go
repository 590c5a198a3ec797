package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/akashg/potledger/internal/models"
	"github.com/akashg/potledger/internal/storage"
)

// CreateGame persists a new game and its participant list.
func (s *SQLiteStore) CreateGame(ctx context.Context, game *models.Game) error {
	if game.ID == "" {
		game.ID = uuid.New().String()
	}
	if game.CreatedAt == 0 {
		game.CreatedAt = time.Now().Unix()
	}
	if game.Status == "" {
		game.Status = models.GameActive
	}
	if game.Name == "" {
		game.Name = fmt.Sprintf("Game - %s", time.Unix(game.CreatedAt, 0).Format("Jan 2, 2006"))
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		"INSERT INTO games (id, group_id, name, status, created_at, completed_at) VALUES (?, ?, ?, ?, ?, ?)",
		game.ID, game.GroupID, game.Name, game.Status, game.CreatedAt, game.CompletedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert game: %w", err)
	}

	for _, userID := range game.Participants {
		_, err = tx.ExecContext(ctx,
			"INSERT INTO game_participants (game_id, user_id) VALUES (?, ?)",
			game.ID, userID,
		)
		if err != nil {
			return fmt.Errorf("failed to insert game participant: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// GetGame retrieves a game by ID, including its participant list.
func (s *SQLiteStore) GetGame(ctx context.Context, gameID string) (*models.Game, error) {
	game := &models.Game{}
	err := s.db.QueryRowContext(ctx,
		"SELECT id, group_id, name, status, created_at, completed_at FROM games WHERE id = ?",
		gameID,
	).Scan(&game.ID, &game.GroupID, &game.Name, &game.Status, &game.CreatedAt, &game.CompletedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("game %s: %w", gameID, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get game: %w", err)
	}

	rows, err := s.db.QueryContext(ctx,
		"SELECT user_id FROM game_participants WHERE game_id = ? ORDER BY user_id",
		gameID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get game participants: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var userID string
		if err := rows.Scan(&userID); err != nil {
			return nil, fmt.Errorf("failed to scan game participant: %w", err)
		}
		game.Participants = append(game.Participants, userID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate game participants: %w", err)
	}

	return game, nil
}

// ListGamesByGroup retrieves all games for a group, newest first.
func (s *SQLiteStore) ListGamesByGroup(ctx context.Context, groupID string) ([]*models.Game, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, group_id, name, status, created_at, completed_at FROM games WHERE group_id = ? ORDER BY created_at DESC",
		groupID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list games by group: %w", err)
	}
	defer rows.Close()

	var games []*models.Game
	for rows.Next() {
		game := &models.Game{}
		if err := rows.Scan(&game.ID, &game.GroupID, &game.Name, &game.Status, &game.CreatedAt, &game.CompletedAt); err != nil {
			return nil, fmt.Errorf("failed to scan game: %w", err)
		}
		games = append(games, game)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate games: %w", err)
	}

	return games, nil
}

// CompleteGame transitions a game to completed.
func (s *SQLiteStore) CompleteGame(ctx context.Context, gameID string, completedAt int64) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE games SET status = ?, completed_at = ? WHERE id = ?",
		models.GameCompleted, completedAt, gameID,
	)
	if err != nil {
		return fmt.Errorf("failed to complete game: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check update result: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("game %s: %w", gameID, storage.ErrNotFound)
	}
	return nil
}

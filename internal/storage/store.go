// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"
	"errors"

	"github.com/akashg/potledger/internal/models"
)

// ErrNotFound is wrapped by store implementations when a requested entity
// does not exist, so callers can map it to a not-found response.
var ErrNotFound = errors.New("not found")

// Store defines the interface for persistence operations. This abstraction
// allows swapping storage backends (SQLite, PostgreSQL, etc.) without
// changing the service layer.
type Store interface {
	// CreateGroup persists a new group. Generates ID and CreatedAt when unset.
	CreateGroup(ctx context.Context, group *models.Group) error

	// GetGroup retrieves a group by ID, including its member list.
	GetGroup(ctx context.Context, groupID string) (*models.Group, error)

	// UpdateGroup replaces a group's name and member list.
	UpdateGroup(ctx context.Context, group *models.Group) error

	// DeleteGroup removes a group and, via cascade, its games.
	DeleteGroup(ctx context.Context, groupID string) error

	// ListGroups retrieves all groups.
	ListGroups(ctx context.Context) ([]*models.Group, error)

	// CreateGame persists a new game. Generates ID and CreatedAt when unset.
	CreateGame(ctx context.Context, game *models.Game) error

	// GetGame retrieves a game by ID, including its participant list.
	GetGame(ctx context.Context, gameID string) (*models.Game, error)

	// ListGamesByGroup retrieves all games for a group, newest first.
	ListGamesByGroup(ctx context.Context, groupID string) ([]*models.Game, error)

	// CompleteGame transitions a game to completed.
	CompleteGame(ctx context.Context, gameID string, completedAt int64) error

	// CreateTransaction persists a buy-in or cash-out.
	CreateTransaction(ctx context.Context, txn *models.Transaction) error

	// GetTransaction retrieves a transaction by ID.
	GetTransaction(ctx context.Context, txnID string) (*models.Transaction, error)

	// UpdateTransaction replaces a transaction's amount, type, and notes.
	UpdateTransaction(ctx context.Context, txn *models.Transaction) error

	// DeleteTransaction removes a transaction.
	DeleteTransaction(ctx context.Context, txnID string) error

	// ListTransactionsByGame retrieves a game's transactions ordered by
	// timestamp ascending.
	ListTransactionsByGame(ctx context.Context, gameID string) ([]models.Transaction, error)

	// UpsertSettlement writes a settlement record, overwriting any existing
	// record for the same (game, from, to) ordered pair. The uniqueness
	// invariant (one record per pair) is enforced here.
	UpsertSettlement(ctx context.Context, record *models.SettlementRecord) error

	// DeleteSettlement removes the record for the pair. Returns false with a
	// nil error when no record existed (reset is a no-op, not an error).
	DeleteSettlement(ctx context.Context, gameID, fromUserID, toUserID string) (bool, error)

	// ListSettlementsByGame retrieves all settlement records for a game.
	ListSettlementsByGame(ctx context.Context, gameID string) ([]models.SettlementRecord, error)

	// CreateUser persists a new user account.
	CreateUser(ctx context.Context, user *models.User) error

	// GetUserByEmail retrieves a user by email address.
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)

	// GetUserByID retrieves a user by ID.
	GetUserByID(ctx context.Context, id string) (*models.User, error)

	// Close releases any resources held by the store.
	Close() error
}

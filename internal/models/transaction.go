package models

import "github.com/shopspring/decimal"

// TransactionType distinguishes money entering the pot from money leaving it.
type TransactionType string

const (
	// BuyIn is a payment a player contributes to the game's pot.
	BuyIn TransactionType = "buyin"
	// CashOut is a payment a player withdraws from the game's pot.
	CashOut TransactionType = "cashout"
)

// Transaction represents one buy-in or cash-out recorded against a game.
type Transaction struct {
	// ID is the unique identifier for the transaction (UUID format).
	ID string

	// GameID is the game this transaction belongs to.
	GameID string

	// UserID is the player the transaction applies to.
	UserID string

	// Type is BuyIn or CashOut.
	Type TransactionType

	// Amount is the non-negative transaction amount (two-decimal currency).
	Amount decimal.Decimal

	// CreatedAt is the Unix timestamp when the transaction was recorded.
	CreatedAt int64

	// Notes is an optional free-form annotation (e.g., "rebuy", "left early").
	Notes string
}

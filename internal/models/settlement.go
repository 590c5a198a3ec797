package models

import "github.com/shopspring/decimal"

// SettlementRecord marks a planned transfer as paid. At most one record
// exists per (GameID, FromUserID, ToUserID); marking the same pair again
// overwrites amount and method instead of duplicating.
//
// Records are only meaningful while the current settlement plan still
// contains a transfer for the same pair and a comparable amount; the engine's
// reconciler flags records that have gone stale.
type SettlementRecord struct {
	// GameID is the game this record belongs to.
	GameID string

	// FromUserID is the debtor who paid.
	FromUserID string

	// ToUserID is the creditor who was paid.
	ToUserID string

	// Amount is the amount that was paid.
	Amount decimal.Decimal

	// PaymentMethod is how the transfer was made (e.g., "cash", "venmo").
	PaymentMethod string

	// SettledAt is the Unix timestamp when the transfer was marked paid.
	SettledAt int64
}

package service

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

var (
	// ErrGameCompleted rejects transaction mutations on a closed game.
	ErrGameCompleted = errors.New("game is completed; transactions are frozen")

	// ErrNotParticipant rejects transactions for users not seated at the game.
	ErrNotParticipant = errors.New("user is not a participant in this game")

	// ErrInvalidAmount rejects negative amounts or amounts with more than
	// two decimal places.
	ErrInvalidAmount = errors.New("amount must be non-negative with at most two decimal places")

	// ErrTransferNotPlanned rejects marking a transfer that the current
	// settlement plan does not contain.
	ErrTransferNotPlanned = errors.New("transfer is not part of the current settlement plan")
)

// OutOfBalanceError is returned when closing a game is refused because total
// buy-ins and total cash-outs disagree by more than the engine tolerance.
// This is a business-rule rejection the user recovers from by adjusting
// transactions, not a system fault.
type OutOfBalanceError struct {
	// Discrepancy is total buy-ins minus total cash-outs, signed.
	Discrepancy decimal.Decimal
}

func (e *OutOfBalanceError) Error() string {
	return fmt.Sprintf("books do not balance: buy-ins minus cash-outs = %s", e.Discrepancy)
}

// Package engine implements the settlement and ledger-reconciliation core:
// balance aggregation, the balance gate for closing a game, greedy debt
// simplification, and reconciliation of paid-transfer records against the
// current plan.
//
// Everything in this package is a pure function over already-fetched data.
// Callers fetch transactions and settlement records, hand them in, and get
// computed values back; the engine performs no I/O.
package engine

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/akashg/potledger/internal/models"
)

// Epsilon is the tolerance for all balance and settlement-remainder
// comparisons. Amounts within 0.01 of zero are treated as settled; books
// that disagree by at most 0.01 are considered balanced.
var Epsilon = decimal.New(1, -2)

// PlayerBalance is one player's aggregate position in a game.
type PlayerBalance struct {
	UserID       string
	TotalBuyIn   decimal.Decimal
	TotalCashOut decimal.Decimal

	// Net is TotalCashOut - TotalBuyIn. Negative means the player owes
	// money, positive means the player is owed money.
	Net decimal.Decimal

	// BuyIns and CashOuts are the underlying transactions ordered by
	// timestamp ascending (ID as tiebreak), kept for audit display.
	BuyIns   []models.Transaction
	CashOuts []models.Transaction
}

// ComputeBalances aggregates a game's transactions into one PlayerBalance per
// player. Every user in participants gets an entry even with no transactions
// yet (zero balance); users who appear only in transactions get one too.
// Input order does not matter: sums are commutative and the per-type
// sublists are sorted before returning.
func ComputeBalances(participants []string, transactions []models.Transaction) map[string]*PlayerBalance {
	balances := make(map[string]*PlayerBalance, len(participants))

	ensure := func(userID string) *PlayerBalance {
		if b, ok := balances[userID]; ok {
			return b
		}
		b := &PlayerBalance{
			UserID:       userID,
			TotalBuyIn:   decimal.Zero,
			TotalCashOut: decimal.Zero,
			Net:          decimal.Zero,
		}
		balances[userID] = b
		return b
	}

	for _, p := range participants {
		ensure(p)
	}

	for _, txn := range transactions {
		b := ensure(txn.UserID)
		switch txn.Type {
		case models.BuyIn:
			b.TotalBuyIn = b.TotalBuyIn.Add(txn.Amount)
			b.BuyIns = append(b.BuyIns, txn)
		case models.CashOut:
			b.TotalCashOut = b.TotalCashOut.Add(txn.Amount)
			b.CashOuts = append(b.CashOuts, txn)
		}
	}

	for _, b := range balances {
		sortByTime(b.BuyIns)
		sortByTime(b.CashOuts)
		b.Net = b.TotalCashOut.Sub(b.TotalBuyIn)
	}

	return balances
}

func sortByTime(txns []models.Transaction) {
	sort.SliceStable(txns, func(i, j int) bool {
		if txns[i].CreatedAt != txns[j].CreatedAt {
			return txns[i].CreatedAt < txns[j].CreatedAt
		}
		return txns[i].ID < txns[j].ID
	})
}

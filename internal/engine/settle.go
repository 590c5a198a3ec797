package engine

import (
	"sort"

	"github.com/shopspring/decimal"
)

// Transfer is a proposed payment from one net-debtor to one net-creditor.
type Transfer struct {
	FromUserID string
	ToUserID   string
	Amount     decimal.Decimal
}

type party struct {
	userID    string
	remaining decimal.Decimal
}

// PlanSettlement produces a list of transfers that zeroes every player's net
// balance using greedy debt simplification:
//
//  1. Players with |net| <= Epsilon are dropped. The rest split into debtors
//     (net < 0) and creditors (net > 0).
//  2. Debtors are sorted by remaining debt ascending, creditors by remaining
//     credit descending, ties broken by userID ascending. The sort is what
//     makes the plan deterministic and reproducible.
//  3. A two-pointer walk emits min(debt, credit) transfers and advances past
//     any party whose remainder drops below Epsilon.
//
// The result has at most len(debtors)+len(creditors)-1 transfers, every
// amount is strictly positive, and the amounts sum to the total outstanding
// debt (within epsilon accumulation). This is a heuristic, not a guaranteed
// global minimum transfer count; callers may rely on validity and the
// cardinality bound only.
//
// With no debtors or no creditors the plan is empty. The planner holds no
// state: re-run it whenever the transaction set changes.
func PlanSettlement(balances map[string]*PlayerBalance) []Transfer {
	var debtors, creditors []party
	for _, b := range balances {
		if b.Net.Abs().LessThanOrEqual(Epsilon) {
			continue
		}
		if b.Net.IsNegative() {
			debtors = append(debtors, party{userID: b.UserID, remaining: b.Net.Neg()})
		} else {
			creditors = append(creditors, party{userID: b.UserID, remaining: b.Net})
		}
	}
	if len(debtors) == 0 || len(creditors) == 0 {
		return nil
	}

	sort.Slice(debtors, func(i, j int) bool {
		if !debtors[i].remaining.Equal(debtors[j].remaining) {
			return debtors[i].remaining.LessThan(debtors[j].remaining)
		}
		return debtors[i].userID < debtors[j].userID
	})
	sort.Slice(creditors, func(i, j int) bool {
		if !creditors[i].remaining.Equal(creditors[j].remaining) {
			return creditors[i].remaining.GreaterThan(creditors[j].remaining)
		}
		return creditors[i].userID < creditors[j].userID
	})

	var transfers []Transfer
	i, j := 0, 0
	for i < len(debtors) && j < len(creditors) {
		debtor := &debtors[i]
		creditor := &creditors[j]

		amount := debtor.remaining
		if creditor.remaining.LessThan(amount) {
			amount = creditor.remaining
		}

		if amount.IsPositive() {
			transfers = append(transfers, Transfer{
				FromUserID: debtor.userID,
				ToUserID:   creditor.userID,
				Amount:     amount,
			})
		}

		debtor.remaining = debtor.remaining.Sub(amount)
		creditor.remaining = creditor.remaining.Sub(amount)

		if debtor.remaining.LessThan(Epsilon) {
			i++
		}
		if creditor.remaining.LessThan(Epsilon) {
			j++
		}
	}

	return transfers
}

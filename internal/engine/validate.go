package engine

import "github.com/shopspring/decimal"

// CheckBalanced reports whether a game's books balance: total buy-ins must
// equal total cash-outs within Epsilon. The returned discrepancy is signed
// (total buy-ins minus total cash-outs), so a positive value means money is
// missing from the cash-outs.
//
// An empty balance set is balanced (0 == 0). Closing a game must be refused
// while this returns false; that refusal is a business-rule rejection, not a
// fault.
func CheckBalanced(balances map[string]*PlayerBalance) (bool, decimal.Decimal) {
	totalBuyIn := decimal.Zero
	totalCashOut := decimal.Zero
	for _, b := range balances {
		totalBuyIn = totalBuyIn.Add(b.TotalBuyIn)
		totalCashOut = totalCashOut.Add(b.TotalCashOut)
	}

	discrepancy := totalBuyIn.Sub(totalCashOut)
	return discrepancy.Abs().LessThanOrEqual(Epsilon), discrepancy
}

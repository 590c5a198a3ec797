package engine

import (
	"reflect"
	"testing"

	"github.com/shopspring/decimal"
)

// balancesFromNets builds a balance map with the given net positions.
// Buy-in/cash-out totals are synthesized so that net = cashout - buyin holds.
func balancesFromNets(nets map[string]string) map[string]*PlayerBalance {
	balances := make(map[string]*PlayerBalance, len(nets))
	for userID, net := range nets {
		n := amt(net)
		b := &PlayerBalance{
			UserID:       userID,
			TotalBuyIn:   decimal.Zero,
			TotalCashOut: decimal.Zero,
			Net:          n,
		}
		if n.IsNegative() {
			b.TotalBuyIn = n.Neg()
		} else {
			b.TotalCashOut = n
		}
		balances[userID] = b
	}
	return balances
}

func TestPlanSettlement(t *testing.T) {
	tests := []struct {
		name         string
		nets         map[string]string
		validateFunc func(t *testing.T, transfers []Transfer)
	}{
		{
			name: "no settlements needed when all nets zero",
			nets: map[string]string{"alice": "0", "bob": "0"},
			validateFunc: func(t *testing.T, transfers []Transfer) {
				if len(transfers) != 0 {
					t.Errorf("expected empty plan, got %d transfers", len(transfers))
				}
			},
		},
		{
			name: "nets within epsilon are dropped",
			nets: map[string]string{"alice": "-0.01", "bob": "0.01"},
			validateFunc: func(t *testing.T, transfers []Transfer) {
				if len(transfers) != 0 {
					t.Errorf("expected empty plan, got %v", transfers)
				}
			},
		},
		{
			name: "two debtors one creditor",
			nets: map[string]string{"alice": "-50.00", "bob": "-30.00", "carol": "80.00"},
			validateFunc: func(t *testing.T, transfers []Transfer) {
				want := []Transfer{
					{FromUserID: "bob", ToUserID: "carol", Amount: amt("30.00")},
					{FromUserID: "alice", ToUserID: "carol", Amount: amt("50.00")},
				}
				assertTransfers(t, transfers, want)
			},
		},
		{
			name: "single pair",
			nets: map[string]string{"alice": "-25.50", "bob": "25.50"},
			validateFunc: func(t *testing.T, transfers []Transfer) {
				want := []Transfer{
					{FromUserID: "alice", ToUserID: "bob", Amount: amt("25.50")},
				}
				assertTransfers(t, transfers, want)
			},
		},
		{
			name: "debt split across creditors",
			nets: map[string]string{"alice": "-100.00", "bob": "60.00", "carol": "40.00"},
			validateFunc: func(t *testing.T, transfers []Transfer) {
				want := []Transfer{
					{FromUserID: "alice", ToUserID: "bob", Amount: amt("60.00")},
					{FromUserID: "alice", ToUserID: "carol", Amount: amt("40.00")},
				}
				assertTransfers(t, transfers, want)
			},
		},
		{
			name: "equal debts tie-broken by user id",
			nets: map[string]string{"bob": "-20.00", "alice": "-20.00", "carol": "40.00"},
			validateFunc: func(t *testing.T, transfers []Transfer) {
				want := []Transfer{
					{FromUserID: "alice", ToUserID: "carol", Amount: amt("20.00")},
					{FromUserID: "bob", ToUserID: "carol", Amount: amt("20.00")},
				}
				assertTransfers(t, transfers, want)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.validateFunc(t, PlanSettlement(balancesFromNets(tt.nets)))
		})
	}
}

func assertTransfers(t *testing.T, got, want []Transfer) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("got %d transfers %v, want %d", len(got), got, len(want))
	}
	for i := range want {
		if got[i].FromUserID != want[i].FromUserID || got[i].ToUserID != want[i].ToUserID {
			t.Errorf("transfer %d = %s->%s, want %s->%s",
				i, got[i].FromUserID, got[i].ToUserID, want[i].FromUserID, want[i].ToUserID)
		}
		if !got[i].Amount.Equal(want[i].Amount) {
			t.Errorf("transfer %d amount = %s, want %s", i, got[i].Amount, want[i].Amount)
		}
	}
}

func TestPlanSettlementProperties(t *testing.T) {
	cases := []map[string]string{
		{"a": "-50.00", "b": "-30.00", "c": "80.00"},
		{"a": "-10.00", "b": "-20.00", "c": "-30.00", "d": "25.00", "e": "35.00"},
		{"a": "-0.02", "b": "0.02"},
		{"a": "-99.99", "b": "33.33", "c": "33.33", "d": "33.33"},
		{"a": "-1.00", "b": "-1.00", "c": "-1.00", "d": "3.00"},
	}

	for _, nets := range cases {
		balances := balancesFromNets(nets)
		transfers := PlanSettlement(balances)

		// Cardinality bound: at most debtors + creditors - 1.
		debtors, creditors := 0, 0
		totalDebt := decimal.Zero
		for _, b := range balances {
			if b.Net.Abs().LessThanOrEqual(Epsilon) {
				continue
			}
			if b.Net.IsNegative() {
				debtors++
				totalDebt = totalDebt.Add(b.Net.Neg())
			} else {
				creditors++
			}
		}
		if max := debtors + creditors - 1; len(transfers) > max {
			t.Errorf("nets %v: %d transfers exceeds bound %d", nets, len(transfers), max)
		}

		// Every amount strictly positive; amounts sum to the total debt.
		sum := decimal.Zero
		for _, tr := range transfers {
			if !tr.Amount.IsPositive() {
				t.Errorf("nets %v: non-positive transfer %v", nets, tr)
			}
			sum = sum.Add(tr.Amount)
		}
		if sum.Sub(totalDebt).Abs().GreaterThan(Epsilon) {
			t.Errorf("nets %v: transfers sum to %s, want %s", nets, sum, totalDebt)
		}

		// Applying the plan zeroes every balance within epsilon.
		remaining := make(map[string]decimal.Decimal, len(balances))
		for userID, b := range balances {
			remaining[userID] = b.Net
		}
		for _, tr := range transfers {
			remaining[tr.FromUserID] = remaining[tr.FromUserID].Add(tr.Amount)
			remaining[tr.ToUserID] = remaining[tr.ToUserID].Sub(tr.Amount)
		}
		for userID, net := range remaining {
			if net.Abs().GreaterThan(Epsilon) {
				t.Errorf("nets %v: %s left with %s after applying plan", nets, userID, net)
			}
		}
	}
}

// The fixed sort rule makes repeated runs produce identical plans.
func TestPlanSettlementDeterministic(t *testing.T) {
	nets := map[string]string{
		"a": "-12.00", "b": "-12.00", "c": "-6.00",
		"d": "10.00", "e": "10.00", "f": "10.00",
	}

	first := PlanSettlement(balancesFromNets(nets))
	for i := 0; i < 10; i++ {
		if got := PlanSettlement(balancesFromNets(nets)); !reflect.DeepEqual(got, first) {
			t.Fatalf("run %d produced %v, first run produced %v", i, got, first)
		}
	}
}

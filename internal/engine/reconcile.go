package engine

import (
	"github.com/akashg/potledger/internal/models"
)

// TransferStatus is a planned transfer overlaid with its persisted paid
// state. Settled is false for transfers nobody has marked paid yet; when
// true, PaymentMethod and SettledAt come from the matching record.
type TransferStatus struct {
	Transfer
	Settled       bool
	PaymentMethod string
	SettledAt     int64
}

// Reconcile overlays persisted settlement records onto the current plan.
//
// A record matches a planned transfer when the ordered (from, to) pair is the
// same and the amounts agree within Epsilon. Records with no matching
// transfer are returned as orphans: they were written against an earlier plan
// that a transaction edit has since invalidated, and applying them silently
// would misstate who has paid. Callers surface orphans and purge them on the
// next transaction mutation.
func Reconcile(plan []Transfer, records []models.SettlementRecord) ([]TransferStatus, []models.SettlementRecord) {
	type pair struct{ from, to string }
	byPair := make(map[pair]models.SettlementRecord, len(records))
	for _, r := range records {
		// Uniqueness per ordered pair is enforced by the store.
		byPair[pair{r.FromUserID, r.ToUserID}] = r
	}

	statuses := make([]TransferStatus, 0, len(plan))
	var orphans []models.SettlementRecord
	for _, t := range plan {
		status := TransferStatus{Transfer: t}
		if r, ok := byPair[pair{t.FromUserID, t.ToUserID}]; ok {
			delete(byPair, pair{t.FromUserID, t.ToUserID})
			if r.Amount.Sub(t.Amount).Abs().LessThanOrEqual(Epsilon) {
				status.Settled = true
				status.PaymentMethod = r.PaymentMethod
				status.SettledAt = r.SettledAt
			} else {
				// Same pair but a different amount: the plan moved
				// under the record.
				orphans = append(orphans, r)
			}
		}
		statuses = append(statuses, status)
	}

	for _, r := range records {
		if _, ok := byPair[pair{r.FromUserID, r.ToUserID}]; ok {
			orphans = append(orphans, r)
		}
	}

	return statuses, orphans
}

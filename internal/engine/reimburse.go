package engine

import "budsjett/internal/core"

// NetAmounts maps transaction IDs to their effective amounts after
// reimbursement netting. It is computed once per transaction set and
// consulted by every downstream total, so "original vs. reimbursed"
// figures stay consistent across the whole report.
type NetAmounts map[string]int64

// Net builds the lookup: an expense linked from a reimbursing income
// transaction maps to its original amount minus the reimbursement;
// everything else maps to its raw amount. Hidden reimbursements still
// net — hiding a refund row removes it from income totals, not from the
// expense it repays.
func Net(txns []core.Transaction) NetAmounts {
	net := make(NetAmounts, len(txns))
	for _, t := range txns {
		net[t.ID] = t.Amount.Cents
	}
	for _, t := range txns {
		if t.Type != core.TxnIncome || t.ReimbursesID == "" {
			continue
		}
		if _, ok := net[t.ReimbursesID]; !ok {
			// Dangling link; the expense it refunded is gone.
			continue
		}
		net[t.ReimbursesID] -= t.Amount.Cents
	}
	return net
}

// Of returns the effective amount for a transaction, falling back to the
// raw amount for transactions outside the set the lookup was built from.
func (n NetAmounts) Of(t core.Transaction) int64 {
	if v, ok := n[t.ID]; ok {
		return v
	}
	return t.Amount.Cents
}

package engine

import (
	"testing"

	"budsjett/internal/core"
)

func TestNetReimbursedExpense(t *testing.T) {
	txns := []core.Transaction{
		{ID: "exp", Date: "2025-03-05", Amount: core.Money{Cents: 100000}, Type: core.TxnExpense, SubCategoryID: "sub-food"},
		{ID: "ref", Date: "2025-03-08", Amount: core.Money{Cents: 30000}, Type: core.TxnIncome, ReimbursesID: "exp"},
	}
	net := Net(txns)

	if got := net.Of(txns[0]); got != 70000 {
		t.Fatalf("net expense = %d, want 70000", got)
	}
	// The reimbursement itself keeps its raw amount.
	if got := net.Of(txns[1]); got != 30000 {
		t.Fatalf("net reimbursement = %d, want 30000", got)
	}
}

func TestNetUnlinkedIncomeLeavesExpenseAlone(t *testing.T) {
	txns := []core.Transaction{
		{ID: "exp", Date: "2025-03-05", Amount: core.Money{Cents: 100000}, Type: core.TxnExpense},
		{ID: "pay", Date: "2025-03-25", Amount: core.Money{Cents: 3000000}, Type: core.TxnIncome},
	}
	net := Net(txns)
	if got := net.Of(txns[0]); got != 100000 {
		t.Fatalf("net expense = %d, want the raw 100000", got)
	}
}

func TestNetDanglingLinkIgnored(t *testing.T) {
	txns := []core.Transaction{
		{ID: "exp", Date: "2025-03-05", Amount: core.Money{Cents: 100000}, Type: core.TxnExpense},
		{ID: "ref", Date: "2025-03-08", Amount: core.Money{Cents: 30000}, Type: core.TxnIncome, ReimbursesID: "gone"},
	}
	net := Net(txns)
	if got := net.Of(txns[0]); got != 100000 {
		t.Fatalf("a link to a missing transaction must not change anything, got %d", got)
	}
}

func TestNetMultipleReimbursements(t *testing.T) {
	txns := []core.Transaction{
		{ID: "exp", Date: "2025-03-05", Amount: core.Money{Cents: 100000}, Type: core.TxnExpense},
		{ID: "r1", Date: "2025-03-08", Amount: core.Money{Cents: 30000}, Type: core.TxnIncome, ReimbursesID: "exp"},
		{ID: "r2", Date: "2025-03-12", Amount: core.Money{Cents: 50000}, Type: core.TxnIncome, ReimbursesID: "exp"},
	}
	net := Net(txns)
	if got := net.Of(txns[0]); got != 20000 {
		t.Fatalf("net expense = %d, want 20000 after both reimbursements", got)
	}
}

func TestNetOfUnknownTransaction(t *testing.T) {
	net := Net(nil)
	stray := core.Transaction{ID: "stray", Amount: core.Money{Cents: 4200}, Type: core.TxnExpense}
	if got := net.Of(stray); got != 4200 {
		t.Fatalf("unknown transaction falls back to its raw amount, got %d", got)
	}
}

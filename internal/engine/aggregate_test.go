package engine

import (
	"reflect"
	"testing"

	"budsjett/internal/core"
)

// householdInput builds a realistic month snapshot: an operations group
// with a sub-category and a daily bucket, a savings group with a manual
// floor, a goal bucket mid-saving, and a catch-all group.
func householdInput() Input {
	return Input{
		Month:  "2025-03",
		Payday: 1,
		Groups: []core.BudgetGroup{
			{ID: "grp-ops", Name: "Hverdag", ForecastType: core.ForecastVariable},
			{ID: "grp-save", Name: "Sparing", ForecastType: core.ForecastSavings},
			{ID: "grp-dreams", Name: "Drømmer", ForecastType: core.ForecastVariable, LinkedBucketIDs: []string{"bkt-trip"}},
			{ID: "grp-misc", Name: "Annet", ForecastType: core.ForecastVariable, IsCatchAll: true},
		},
		SubCategories: []core.SubCategory{
			{ID: "sub-food", Name: "Mat", BudgetGroupID: "grp-ops"},
			{ID: "sub-stray", Name: "Gammel", BudgetGroupID: "grp-gone"},
		},
		Buckets: []core.Bucket{
			{ID: "bkt-lunch", Name: "Lunsj", Kind: core.BucketDaily, BudgetGroupID: "grp-ops"},
			{ID: "bkt-trip", Name: "Tur", Kind: core.BucketGoal, BudgetGroupID: "grp-dreams", Goal: &core.GoalSpec{
				TargetAmount:  core.Money{Cents: 60000},
				StartSaving:   "2025-01",
				Target:        "2025-06",
				PaymentSource: core.PaySourceIncome,
			}},
			{ID: "bkt-orphan", Name: "Løst", Kind: core.BucketFixed},
		},
		Transactions: []core.Transaction{
			{ID: "t-food", Date: "2025-03-04", Amount: core.Money{Cents: 35000}, Type: core.TxnExpense, SubCategoryID: "sub-food"},
			{ID: "t-refund", Date: "2025-03-06", Amount: core.Money{Cents: 5000}, Type: core.TxnIncome, ReimbursesID: "t-food"},
			{ID: "t-trip", Date: "2025-03-10", Amount: core.Money{Cents: 20000}, Type: core.TxnExpense, BucketID: "bkt-trip"},
			{ID: "t-stray", Date: "2025-03-12", Amount: core.Money{Cents: 9000}, Type: core.TxnExpense, SubCategoryID: "sub-stray"},
			{ID: "t-salary", Date: "2025-03-25", Amount: core.Money{Cents: 3000000}, Type: core.TxnIncome},
			{ID: "t-hidden", Date: "2025-03-15", Amount: core.Money{Cents: 50000}, Type: core.TxnExpense, SubCategoryID: "sub-food", IsHidden: true},
		},
		Templates: []core.BudgetTemplate{{
			ID:        "tpl-default",
			Name:      "Standard",
			IsDefault: true,
			SubCategoryAmounts: map[string]core.Money{
				"sub-food": {Cents: 400000},
			},
			BucketConfigs: map[string]core.BucketConfig{
				"bkt-lunch":  {DailyAmount: core.Money{Cents: 5000}, ActiveDays: []int{1, 2, 3, 4, 5}},
				"bkt-orphan": {Amount: core.Money{Cents: 7500}},
			},
		}},
		MonthConfigs: []core.MonthConfig{{
			Month: "2025-03",
			GroupOverrides: map[string]core.Override{
				"grp-save": {Amount: core.Money{Cents: 500000}},
			},
		}},
	}
}

func groupByName(t *testing.T, rep Report, name string) GroupReport {
	t.Helper()
	for _, g := range rep.Groups {
		if g.Name == name {
			return g
		}
	}
	t.Fatalf("no group named %q in report", name)
	return GroupReport{}
}

func TestAggregateBreakdownPartitionsTotalBudget(t *testing.T) {
	rep := Aggregate(householdInput())
	if rep.Breakdown.Total() != rep.TotalBudget {
		t.Fatalf("breakdown sums to %d, total budget is %d", rep.Breakdown.Total().Cents, rep.TotalBudget.Cents)
	}
	if rep.TotalBudget.Cents == 0 {
		t.Fatalf("fixture should produce a non-zero budget")
	}
}

func TestAggregateIsDeterministic(t *testing.T) {
	a := Aggregate(householdInput())
	b := Aggregate(householdInput())
	if !reflect.DeepEqual(a, b) {
		t.Fatalf("identical snapshots must yield identical reports")
	}
}

func TestAggregateGroupContents(t *testing.T) {
	rep := Aggregate(householdInput())

	ops := groupByName(t, rep, "Hverdag")
	if len(ops.SubCategories) != 1 || ops.SubCategories[0].SubCategoryID != "sub-food" {
		t.Fatalf("operations group sub-categories: %+v", ops.SubCategories)
	}
	food := ops.SubCategories[0]
	if food.Budget.Cents != 400000 {
		t.Fatalf("food budget = %d, want the template 400000", food.Budget.Cents)
	}
	// 35000 spent minus the 5000 reimbursement; the hidden one never counts.
	if food.Spent.Cents != 30000 {
		t.Fatalf("food spent = %d, want 30000", food.Spent.Cents)
	}

	// March 2025 has 21 weekdays.
	if len(ops.Buckets) != 1 || ops.Buckets[0].Cost.Cents != 21*5000 {
		t.Fatalf("lunch bucket rows: %+v", ops.Buckets)
	}

	if !ops.IsAuto {
		t.Fatalf("a group with children totals automatically")
	}
	if ops.TotalBudget.Cents != 400000+21*5000 {
		t.Fatalf("operations total = %d", ops.TotalBudget.Cents)
	}
}

func TestAggregateGoalBothPhases(t *testing.T) {
	rep := Aggregate(householdInput())
	dreams := groupByName(t, rep, "Drømmer")
	if len(dreams.Buckets) != 2 {
		t.Fatalf("trip goal with spend this month yields saving and spending rows, got %+v", dreams.Buckets)
	}
	saving, spending := dreams.Buckets[0], dreams.Buckets[1]
	if saving.Phase != PhaseSaving || saving.Cost.Cents != 12000 {
		t.Fatalf("saving row: %+v", saving)
	}
	// Nothing spent in earlier months, so the full project budget remains.
	if spending.Phase != PhaseSpending || spending.Cost.Cents != 60000 {
		t.Fatalf("spending row: %+v", spending)
	}
	if spending.Spent.Cents != 20000 {
		t.Fatalf("spending row spent = %d, want 20000", spending.Spent.Cents)
	}

	if rep.Breakdown.DreamSaving.Cents != 12000 {
		t.Fatalf("dream saving = %d", rep.Breakdown.DreamSaving.Cents)
	}
	if rep.Breakdown.DreamSpending.Cents != 60000 {
		t.Fatalf("dream spending = %d", rep.Breakdown.DreamSpending.Cents)
	}
}

func TestAggregateManualLimitIsFloor(t *testing.T) {
	rep := Aggregate(householdInput())
	save := groupByName(t, rep, "Sparing")
	// No children, so the manual limit is the total outright.
	if save.TotalBudget.Cents != 500000 {
		t.Fatalf("savings total = %d, want the manual limit", save.TotalBudget.Cents)
	}
	if rep.Breakdown.GeneralSaving.Cents != 500000 {
		t.Fatalf("general saving = %d", rep.Breakdown.GeneralSaving.Cents)
	}
}

func TestAggregateAutoFloorWithBuffer(t *testing.T) {
	in := Input{
		Month:  "2025-03",
		Payday: 1,
		Groups: []core.BudgetGroup{{ID: "grp-ops", Name: "Hverdag", ForecastType: core.ForecastVariable}},
		SubCategories: []core.SubCategory{
			{ID: "sub-food", Name: "Mat", BudgetGroupID: "grp-ops"},
		},
		Templates: []core.BudgetTemplate{{
			ID: "tpl-default", Name: "Standard", IsDefault: true,
			SubCategoryAmounts: map[string]core.Money{"sub-food": {Cents: 50000}},
		}},
		MonthConfigs: []core.MonthConfig{{
			Month:          "2025-03",
			GroupOverrides: map[string]core.Override{"grp-ops": {Amount: core.Money{Cents: 80000}}},
		}},
	}
	rep := Aggregate(in)
	g := rep.Groups[0]
	if !g.IsAuto {
		t.Fatalf("group with children stays auto even under a manual floor")
	}
	if g.TotalBudget.Cents != 80000 {
		t.Fatalf("total = %d, want the 80000 floor over the 50000 children", g.TotalBudget.Cents)
	}
	// The 30000 headroom lands in the group's own forecast class.
	if rep.Breakdown.VariableOps.Cents != 80000 {
		t.Fatalf("variable ops = %d, want 80000", rep.Breakdown.VariableOps.Cents)
	}
	if rep.Breakdown.Total() != rep.TotalBudget {
		t.Fatalf("partition broken: %d vs %d", rep.Breakdown.Total().Cents, rep.TotalBudget.Cents)
	}
}

func TestAggregateCatchAllAbsorbsStrays(t *testing.T) {
	rep := Aggregate(householdInput())
	misc := groupByName(t, rep, "Annet")

	// sub-stray points at a group that doesn't exist, so its spend lands here.
	if misc.ExtraSpent.Cents != 9000 {
		t.Fatalf("extra spent = %d, want 9000", misc.ExtraSpent.Cents)
	}
	if len(misc.CatchAll) != 1 || misc.CatchAll[0].ID != "t-stray" {
		t.Fatalf("catch-all transactions: %+v", misc.CatchAll)
	}

	// The orphan bucket has no group and no link, so the catch-all claims it.
	if len(misc.Buckets) != 1 || misc.Buckets[0].BucketID != "bkt-orphan" {
		t.Fatalf("catch-all buckets: %+v", misc.Buckets)
	}
}

func TestAggregateLinkedBucketNeverFallsThrough(t *testing.T) {
	in := householdInput()
	in.Groups = []core.BudgetGroup{
		{ID: "grp-ops", Name: "Hverdag", ForecastType: core.ForecastVariable},
		{ID: "grp-other", Name: "Andre", ForecastType: core.ForecastVariable, LinkedBucketIDs: []string{"bkt-trip"}},
		{ID: "grp-misc", Name: "Annet", ForecastType: core.ForecastVariable, IsCatchAll: true},
	}
	// Orphan the bucket; the link alone must still shield it.
	for i := range in.Buckets {
		if in.Buckets[i].ID == "bkt-trip" {
			in.Buckets[i].BudgetGroupID = ""
		}
	}
	rep := Aggregate(in)
	for _, g := range rep.Groups {
		for _, b := range g.Buckets {
			if b.BucketID == "bkt-trip" {
				t.Fatalf("linked orphan bucket claimed by %q; the link only blocks catch-all absorption", g.Name)
			}
		}
	}
}

func TestAggregateOwnershipBeatsLinkedList(t *testing.T) {
	// A stale linked list on an earlier group must not steal a bucket
	// from the group it actually belongs to.
	in := householdInput()
	in.Groups = []core.BudgetGroup{
		{ID: "grp-ops", Name: "Hverdag", ForecastType: core.ForecastVariable, LinkedBucketIDs: []string{"bkt-trip"}},
		{ID: "grp-dreams", Name: "Drømmer", ForecastType: core.ForecastVariable},
		{ID: "grp-misc", Name: "Annet", ForecastType: core.ForecastVariable, IsCatchAll: true},
	}
	rep := Aggregate(in)
	ops := groupByName(t, rep, "Hverdag")
	for _, b := range ops.Buckets {
		if b.BucketID == "bkt-trip" {
			t.Fatalf("linked list stole the trip bucket from its owning group")
		}
	}
	dreams := groupByName(t, rep, "Drømmer")
	found := false
	for _, b := range dreams.Buckets {
		if b.BucketID == "bkt-trip" {
			found = true
		}
	}
	if !found {
		t.Fatalf("owning group should carry the trip bucket")
	}
}

func TestAggregateRemovedBucketVanishes(t *testing.T) {
	in := householdInput()
	in.MonthConfigs[0].BucketOverrides = map[string]core.BucketConfigOverride{
		"bkt-lunch": {Removed: true},
		"bkt-trip":  {Removed: true},
	}
	rep := Aggregate(in)

	ops := groupByName(t, rep, "Hverdag")
	if len(ops.Buckets) != 0 {
		t.Fatalf("removed daily bucket still reported: %+v", ops.Buckets)
	}
	if ops.TotalBudget.Cents != 400000 {
		t.Fatalf("operations total = %d, want the 400000 sub-category alone", ops.TotalBudget.Cents)
	}

	// Removal works for goals too, which never read a bucket config.
	dreams := groupByName(t, rep, "Drømmer")
	if len(dreams.Buckets) != 0 {
		t.Fatalf("removed goal bucket still reported: %+v", dreams.Buckets)
	}
	if rep.Breakdown.DreamSaving.Cents != 0 || rep.Breakdown.DreamSpending.Cents != 0 {
		t.Fatalf("removed goal still in breakdown: %+v", rep.Breakdown)
	}
	if rep.Breakdown.Total() != rep.TotalBudget {
		t.Fatalf("partition broken: %d vs %d", rep.Breakdown.Total().Cents, rep.TotalBudget.Cents)
	}
}

func TestAggregateTotals(t *testing.T) {
	rep := Aggregate(householdInput())

	// Income is raw: salary plus the reimbursement.
	if rep.TotalIncome.Cents != 3000000+5000 {
		t.Fatalf("total income = %d", rep.TotalIncome.Cents)
	}

	// food 30000 net + trip 20000 + stray 9000; hidden excluded.
	if rep.TotalSpent.Cents != 59000 {
		t.Fatalf("total spent = %d, want 59000", rep.TotalSpent.Cents)
	}

	var groupSum int64
	for _, g := range rep.Groups {
		groupSum += g.TotalBudget.Cents
	}
	if groupSum != rep.TotalBudget.Cents {
		t.Fatalf("group totals sum to %d, report says %d", groupSum, rep.TotalBudget.Cents)
	}
}

func TestAggregateLockIsReadOnlyFlag(t *testing.T) {
	in := householdInput()
	in.MonthConfigs[0].IsLocked = true
	locked := Aggregate(in)
	if !locked.IsLocked {
		t.Fatalf("lock flag should surface on the report")
	}

	open := Aggregate(householdInput())
	locked.IsLocked = open.IsLocked
	if !reflect.DeepEqual(open, locked) {
		t.Fatalf("locking must not change any computed value")
	}
}

func TestAggregateEmptyInput(t *testing.T) {
	rep := Aggregate(Input{Month: "2025-03", Payday: 1})
	if rep.TotalBudget.Cents != 0 || rep.TotalSpent.Cents != 0 || len(rep.Groups) != 0 {
		t.Fatalf("empty snapshot yields an empty report, got %+v", rep)
	}
	if rep.Breakdown.Total().Cents != 0 {
		t.Fatalf("empty breakdown must sum to zero")
	}
}

package engine

import "budsjett/internal/core"

// Input is the full read-only snapshot the engine consumes. The report is
// a pure function of this struct: recomputing with an identical snapshot
// yields an identical report.
type Input struct {
	Month         core.MonthKey
	Payday        int
	Groups        []core.BudgetGroup
	SubCategories []core.SubCategory
	Buckets       []core.Bucket
	Transactions  []core.Transaction
	Templates     []core.BudgetTemplate
	MonthConfigs  []core.MonthConfig
}

// SubCategoryRow is the resolved view of one sub-category within a group.
type SubCategoryRow struct {
	SubCategoryID string
	Name          string
	Icon          string
	Budget        core.Money
	Spent         core.Money
	Average       core.Money
	Overridden    bool
	IsSavings     bool
	Transactions  []core.Transaction
}

// GroupReport is the per-group slice of the month report.
type GroupReport struct {
	GroupID       string
	Name          string
	Icon          string
	ForecastType  core.ForecastType
	TotalBudget   core.Money
	TotalSpent    core.Money
	IsAuto        bool
	TemplateName  string
	SubCategories []SubCategoryRow
	Buckets       []BucketRow
	// CatchAll and ExtraSpent carry the unclassified safety net; they are
	// only populated for the group flagged isCatchAll.
	CatchAll   []core.Transaction
	ExtraSpent core.Money
}

// Breakdown partitions the month's total budget by forecast class. The
// partition is exhaustive and non-overlapping: the five fields always sum
// to the report's TotalBudget.
type Breakdown struct {
	DreamSpending core.Money
	DreamSaving   core.Money
	GeneralSaving core.Money
	FixedOps      core.Money
	VariableOps   core.Money
}

// Total sums the five classes.
func (b Breakdown) Total() core.Money {
	return core.Money{Cents: b.DreamSpending.Cents + b.DreamSaving.Cents +
		b.GeneralSaving.Cents + b.FixedOps.Cents + b.VariableOps.Cents}
}

// Report is the consistent hierarchical summary for one accounting month.
type Report struct {
	Month        core.MonthKey
	Interval     core.BudgetInterval
	TemplateName string
	IsLocked     bool
	Groups       []GroupReport
	TotalBudget  core.Money
	TotalSpent   core.Money
	TotalIncome  core.Money
	Breakdown    Breakdown
}

// averageWindow is the number of trailing intervals a sub-category's
// average spend is taken over.
const averageWindow = 3

// Aggregate computes the month report: per-group sub-category and bucket
// rows, catch-all attribution, auto/manual group totals, the forecast
// breakdown and the process totals. It never mutates its input and never
// fails; malformed entities degrade locally per the resolution rules.
func Aggregate(in Input) Report {
	interval := core.ResolveInterval(in.Month, in.Payday)
	resolver := NewResolver(in.Month, in.Templates, in.MonthConfigs)
	net := Net(in.Transactions)

	ctx := costContext{
		month:    in.Month,
		interval: interval,
		resolver: resolver,
		txns:     in.Transactions,
		net:      net,
	}

	// Buckets explicitly claimed by some group's linked list can never
	// fall through to a catch-all group.
	linked := make(map[string]bool)
	for _, g := range in.Groups {
		for _, id := range g.LinkedBucketIDs {
			linked[id] = true
		}
	}

	groupByID := make(map[string]core.BudgetGroup, len(in.Groups))
	for _, g := range in.Groups {
		groupByID[g.ID] = g
	}
	subByID := make(map[string]core.SubCategory, len(in.SubCategories))
	for _, s := range in.SubCategories {
		subByID[s.ID] = s
	}

	rep := Report{
		Month:        in.Month,
		Interval:     interval,
		TemplateName: resolver.TemplateName(),
		IsLocked:     resolver.Locked(),
	}

	// A sub-category or bucket belongs to at most one group; processing
	// groups in definition order and remembering assignments keeps that
	// invariant even over inconsistent data.
	assignedBuckets := make(map[string]bool)

	for _, g := range in.Groups {
		gr := GroupReport{
			GroupID:      g.ID,
			Name:         g.Name,
			Icon:         g.Icon,
			ForecastType: g.ForecastType,
			TemplateName: resolver.TemplateName(),
		}

		for _, s := range in.SubCategories {
			if s.BudgetGroupID != g.ID {
				continue
			}
			gr.SubCategories = append(gr.SubCategories, subCategoryRow(s, in, ctx))
		}

		for _, b := range in.Buckets {
			if assignedBuckets[b.ID] || resolver.BucketRemoved(b.ID) {
				continue
			}
			// Ownership follows BudgetGroupID alone; a group's linked
			// list only shields buckets from catch-all absorption.
			claimed := b.BudgetGroupID == g.ID
			if !claimed && g.IsCatchAll && b.BudgetGroupID == "" && !linked[b.ID] {
				// Orphan bucket; the catch-all group absorbs it.
				claimed = true
			}
			if !claimed {
				continue
			}
			assignedBuckets[b.ID] = true
			gr.Buckets = append(gr.Buckets, bucketRows(b, ctx)...)
		}

		if g.IsCatchAll {
			gr.CatchAll, gr.ExtraSpent = catchAllSpend(in, ctx, groupByID, subByID)
		}

		finishGroup(&gr, g, resolver, &rep.Breakdown)

		rep.TotalBudget.Cents += gr.TotalBudget.Cents
		rep.TotalSpent.Cents += gr.TotalSpent.Cents
		rep.Groups = append(rep.Groups, gr)
	}

	for _, t := range in.Transactions {
		if t.IsHidden || t.Type != core.TxnIncome {
			continue
		}
		if interval.ContainsDate(t.Date) {
			// Income totals use raw amounts; netting only affects the
			// expenses reimbursements are linked to.
			rep.TotalIncome.Cents += t.Amount.Cents
		}
	}

	return rep
}

// subCategoryRow resolves one sub-category: net in-interval spend
// (excluding bucket-attributed transactions), the effective budget, and a
// trailing average over the preceding intervals.
func subCategoryRow(s core.SubCategory, in Input, ctx costContext) SubCategoryRow {
	budget, res := ctx.resolver.SubCategoryAmount(s.ID)

	spent, txns := subCategorySpend(s.ID, ctx.interval, in.Transactions, ctx.net)

	var past int64
	for k := 1; k <= averageWindow; k++ {
		iv := core.ResolveInterval(in.Month.Add(-k), in.Payday)
		m, _ := subCategorySpend(s.ID, iv, in.Transactions, ctx.net)
		past += m.Cents
	}

	return SubCategoryRow{
		SubCategoryID: s.ID,
		Name:          s.Name,
		Icon:          s.Icon,
		Budget:        budget,
		Spent:         spent,
		Average:       core.Money{Cents: past / averageWindow},
		Overridden:    res.Overridden(),
		IsSavings:     s.IsSavings,
		Transactions:  txns,
	}
}

// subCategorySpend sums net non-hidden expense spend for a sub-category
// within an interval. Transactions attributed to a bucket are counted by
// the bucket, never here.
func subCategorySpend(subID string, iv core.BudgetInterval, txns []core.Transaction, net NetAmounts) (core.Money, []core.Transaction) {
	var spent core.Money
	var matched []core.Transaction
	for _, t := range txns {
		if t.IsHidden || !t.IsExpense() || t.BucketID != "" || t.SubCategoryID != subID {
			continue
		}
		if !iv.ContainsDate(t.Date) {
			continue
		}
		spent.Cents += net.Of(t)
		matched = append(matched, t)
	}
	return spent, matched
}

// catchAllSpend collects the unclassified safety net: non-hidden expense
// transactions in the interval with no bucket link whose sub-category (if
// any) belongs to no group. Every krone of spend ends up attributed to
// exactly one place.
func catchAllSpend(in Input, ctx costContext, groups map[string]core.BudgetGroup, subs map[string]core.SubCategory) ([]core.Transaction, core.Money) {
	var txns []core.Transaction
	var spent core.Money
	for _, t := range in.Transactions {
		if t.IsHidden || !t.IsExpense() || t.BucketID != "" {
			continue
		}
		if !ctx.interval.ContainsDate(t.Date) {
			continue
		}
		if t.SubCategoryID != "" {
			s, ok := subs[t.SubCategoryID]
			if ok && s.BudgetGroupID != "" {
				if _, exists := groups[s.BudgetGroupID]; exists {
					// Already counted by its group's sub-category row.
					continue
				}
			}
		}
		txns = append(txns, t)
		spent.Cents += ctx.net.Of(t)
	}
	return txns, spent
}

// finishGroup computes the group totals and feeds every contributing
// amount into the forecast breakdown.
func finishGroup(gr *GroupReport, g core.BudgetGroup, resolver *Resolver, bd *Breakdown) {
	limit, _ := resolver.GroupLimit(g.ID)

	var childBudget int64
	for _, sc := range gr.SubCategories {
		childBudget += sc.Budget.Cents
		gr.TotalSpent.Cents += sc.Spent.Cents
		addToBreakdown(bd, sc.Budget.Cents, classOfSubCategory(sc, g))
	}
	for _, br := range gr.Buckets {
		childBudget += br.Cost.Cents
		gr.TotalSpent.Cents += br.Spent.Cents
		addToBreakdown(bd, br.Cost.Cents, classOfBucketRow(br, g))
	}
	gr.TotalSpent.Cents += gr.ExtraSpent.Cents

	hasChildren := len(gr.SubCategories) > 0 || len(gr.Buckets) > 0
	if hasChildren {
		gr.IsAuto = true
		gr.TotalBudget = core.Money{Cents: childBudget}
		if limit.Cents > childBudget {
			// Manual limit acts as a floor; the headroom is still real
			// budget and lands in the group's own forecast class.
			gr.TotalBudget = limit
			addToBreakdown(bd, limit.Cents-childBudget, classOfForecast(g.ForecastType))
		}
		return
	}

	gr.TotalBudget = limit
	addToBreakdown(bd, limit.Cents, classOfForecast(g.ForecastType))
}

// forecastClass names one slot of the breakdown partition.
type forecastClass int

const (
	classVariableOps forecastClass = iota
	classFixedOps
	classGeneralSaving
	classDreamSaving
	classDreamSpending
)

func classOfForecast(ft core.ForecastType) forecastClass {
	switch ft {
	case core.ForecastSavings:
		return classGeneralSaving
	case core.ForecastFixed:
		return classFixedOps
	default:
		return classVariableOps
	}
}

func classOfSubCategory(sc SubCategoryRow, g core.BudgetGroup) forecastClass {
	if sc.IsSavings || g.ForecastType == core.ForecastSavings {
		return classGeneralSaving
	}
	return classOfForecast(g.ForecastType)
}

func classOfBucketRow(br BucketRow, g core.BudgetGroup) forecastClass {
	switch br.Phase {
	case PhaseSaving:
		return classDreamSaving
	case PhaseSpending:
		return classDreamSpending
	default:
		return classOfForecast(g.ForecastType)
	}
}

func addToBreakdown(bd *Breakdown, cents int64, class forecastClass) {
	switch class {
	case classDreamSpending:
		bd.DreamSpending.Cents += cents
	case classDreamSaving:
		bd.DreamSaving.Cents += cents
	case classGeneralSaving:
		bd.GeneralSaving.Cents += cents
	case classFixedOps:
		bd.FixedOps.Cents += cents
	default:
		bd.VariableOps.Cents += cents
	}
}

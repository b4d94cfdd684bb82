// Bucket cost calculation uses the Strategy Pattern: each bucket kind
// (fixed, daily, goal) has its own calculator producing the display rows
// the aggregator consumes. A registry maps kinds to calculators.
package engine

import "budsjett/internal/core"

// Phase distinguishes the two goal-bucket rows; fixed and daily buckets
// always report PhaseNone.
type Phase string

const (
	PhaseNone     Phase = ""
	PhaseSaving   Phase = "saving"
	PhaseSpending Phase = "spending"
)

// BucketRow is one immutable display row for a bucket in a month. A GOAL
// bucket yields zero, one or two rows depending on which phases are
// active; other kinds yield exactly one.
type BucketRow struct {
	BucketID     string
	Name         string
	Kind         core.BucketKind
	Phase        Phase
	Cost         core.Money
	Spent        core.Money
	Overridden   bool
	TemplateName string
	Transactions []core.Transaction
}

// costContext bundles the per-month inputs every calculator needs.
type costContext struct {
	month    core.MonthKey
	interval core.BudgetInterval
	resolver *Resolver
	txns     []core.Transaction
	net      NetAmounts
}

// costCalculator prices one bucket kind for a month.
type costCalculator interface {
	rows(b core.Bucket, ctx costContext) []BucketRow
}

// costStrategies maps bucket kinds to their calculators.
var costStrategies = map[core.BucketKind]costCalculator{
	core.BucketFixed: fixedCalculator{},
	core.BucketDaily: dailyCalculator{},
	core.BucketGoal:  goalCalculator{},
}

// bucketRows prices a bucket for the month. Unknown kinds yield no rows;
// a malformed bucket must never abort the aggregation pass.
func bucketRows(b core.Bucket, ctx costContext) []BucketRow {
	calc, ok := costStrategies[b.Kind]
	if !ok {
		return nil
	}
	return calc.rows(b, ctx)
}

// bucketSpend collects the month's non-hidden expense transactions
// attributed to the bucket and their net total.
func bucketSpend(bucketID string, ctx costContext) (core.Money, []core.Transaction) {
	var spent core.Money
	var txns []core.Transaction
	for _, t := range ctx.txns {
		if t.IsHidden || !t.IsExpense() || t.BucketID != bucketID {
			continue
		}
		if !ctx.interval.ContainsDate(t.Date) {
			continue
		}
		spent.Cents += ctx.net.Of(t)
		txns = append(txns, t)
	}
	return spent, txns
}

// fixedCalculator prices FIXED buckets: the resolved flat monthly amount.
type fixedCalculator struct{}

func (fixedCalculator) rows(b core.Bucket, ctx costContext) []BucketRow {
	cfg, res := ctx.resolver.BucketConfig(b.ID)
	spent, txns := bucketSpend(b.ID, ctx)
	return []BucketRow{{
		BucketID:     b.ID,
		Name:         b.Name,
		Kind:         b.Kind,
		Cost:         cfg.Amount,
		Spent:        spent,
		Overridden:   res.Overridden(),
		TemplateName: res.TemplateName,
		Transactions: txns,
	}}
}

// dailyCalculator prices DAILY buckets: dailyAmount for every day of the
// interval whose weekday is active (0=Sunday..6=Saturday).
type dailyCalculator struct{}

func (dailyCalculator) rows(b core.Bucket, ctx costContext) []BucketRow {
	cfg, res := ctx.resolver.BucketConfig(b.ID)

	active := make(map[int]bool, len(cfg.ActiveDays))
	for _, d := range cfg.ActiveDays {
		active[d] = true
	}

	var cost core.Money
	for day := ctx.interval.Start; day.Before(ctx.interval.End); day = day.AddDate(0, 0, 1) {
		if active[int(day.Weekday())] {
			cost.Cents += cfg.DailyAmount.Cents
		}
	}

	spent, txns := bucketSpend(b.ID, ctx)
	return []BucketRow{{
		BucketID:     b.ID,
		Name:         b.Name,
		Kind:         b.Kind,
		Cost:         cost,
		Spent:        spent,
		Overridden:   res.Overridden(),
		TemplateName: res.TemplateName,
		Transactions: txns,
	}}
}

package engine

import "budsjett/internal/core"

// goalCalculator prices GOAL buckets. The two phases are independent and
// may both be active in the same month:
//
//   - saving: the bucket accrues toward its target out of income. Active
//     while the month lies in [startSaving, target) and the bucket is not
//     archived. The amount is the per-month override when present,
//     otherwise the default amortization rate.
//   - spending: the project budget is being drawn down. Active when money
//     was spent against the bucket this month, the target month arrived,
//     or the interval overlaps the event window. Its cost is the
//     remaining project budget, not a monthly figure.
//
// A goal with neither phase active is dormant and yields no rows.
// Unparseable dates deactivate the dependent phase instead of failing.
type goalCalculator struct{}

func (goalCalculator) rows(b core.Bucket, ctx costContext) []BucketRow {
	if b.Goal == nil {
		return nil
	}
	g := *b.Goal

	var rows []BucketRow

	if savingActive(g, ctx.month) {
		amount, overridden := savingAmount(g, ctx.month)
		rows = append(rows, BucketRow{
			BucketID:     b.ID,
			Name:         b.Name,
			Kind:         b.Kind,
			Phase:        PhaseSaving,
			Cost:         amount,
			Overridden:   overridden,
			TemplateName: ctx.resolver.TemplateName(),
		})
	}

	spent, txns := bucketSpend(b.ID, ctx)
	if spendingActive(g, ctx, spent) {
		remaining := g.TargetAmount.Cents - spentBefore(b.ID, ctx).Cents
		if remaining < 0 {
			remaining = 0
		}
		rows = append(rows, BucketRow{
			BucketID:     b.ID,
			Name:         b.Name,
			Kind:         b.Kind,
			Phase:        PhaseSpending,
			Cost:         core.Money{Cents: remaining},
			Spent:        spent,
			TemplateName: ctx.resolver.TemplateName(),
			Transactions: txns,
		})
	}

	return rows
}

// savingActive reports whether the saving phase applies this month: only
// income-funded goals save, the month must lie in [startSaving, target),
// and an archived goal stops saving after its archive month.
func savingActive(g core.GoalSpec, month core.MonthKey) bool {
	if g.PaymentSource != core.PaySourceIncome {
		return false
	}
	if !g.StartSaving.Valid() || !g.Target.Valid() {
		return false
	}
	if month.Before(g.StartSaving) || !month.Before(g.Target) {
		return false
	}
	if g.Archived.Valid() && month.After(g.Archived) {
		return false
	}
	return true
}

// savingAmount returns this month's saving contribution: the explicit
// per-month entry when present and not deleted, otherwise the default
// amortization rate.
func savingAmount(g core.GoalSpec, month core.MonthKey) (core.Money, bool) {
	if md, ok := g.MonthlyData[month]; ok && !md.Deleted {
		return md.Amount, true
	}
	return core.Money{Cents: defaultSavingRate(g, month)}, false
}

// defaultSavingRate amortizes the remaining target evenly across the
// remaining saving months. The walk from startSaving replays each earlier
// month's contribution (explicit entry, or that month's own default) as
// already-saved progress, so an override in one month redistributes what
// is left across the months after it. The final saving month takes the
// whole remainder, which also absorbs integer-division leftovers.
func defaultSavingRate(g core.GoalSpec, month core.MonthKey) int64 {
	var saved int64
	for m := g.StartSaving; !m.After(month); m = m.Add(1) {
		monthsLeft := m.MonthsUntil(g.Target)
		if monthsLeft <= 0 {
			return 0
		}

		var contribution int64
		if md, ok := g.MonthlyData[m]; ok && !md.Deleted {
			contribution = md.Amount.Cents
		} else {
			remaining := g.TargetAmount.Cents - saved
			if remaining > 0 {
				if monthsLeft == 1 {
					contribution = remaining
				} else {
					contribution = remaining / int64(monthsLeft)
				}
			}
		}

		if m == month {
			return contribution
		}
		saved += contribution
	}
	return 0
}

// spendingActive reports whether the spending phase applies: actual spend
// this month, the target month itself, or an interval overlapping the
// event window.
func spendingActive(g core.GoalSpec, ctx costContext, spent core.Money) bool {
	if spent.Cents > 0 {
		return true
	}
	if g.Target.Valid() && ctx.month == g.Target {
		return true
	}
	if g.EventStart != "" && g.EventEnd != "" {
		from, err1 := core.ParseDate(g.EventStart)
		to, err2 := core.ParseDate(g.EventEnd)
		if err1 == nil && err2 == nil && ctx.interval.Overlaps(from, to) {
			return true
		}
	}
	return false
}

// spentBefore sums the bucket's net spend across all periods prior to this
// interval, so the remaining project budget shrinks month over month.
func spentBefore(bucketID string, ctx costContext) core.Money {
	var total core.Money
	for _, t := range ctx.txns {
		if t.IsHidden || !t.IsExpense() || t.BucketID != bucketID {
			continue
		}
		d, err := core.ParseDate(t.Date)
		if err != nil {
			continue
		}
		if d.Before(ctx.interval.Start) {
			total.Cents += ctx.net.Of(t)
		}
	}
	return total
}

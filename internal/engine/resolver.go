// Package engine implements the budget resolution and aggregation engine:
// a pure, deterministic computation that layers template values, per-month
// overrides and explicit-deletion markers, prices recurring buckets,
// nets reimbursed expenses and rolls everything up into a month report.
//
// Nothing in this package performs I/O or mutates its inputs; identical
// inputs always produce identical reports.
package engine

import "budsjett/internal/core"

// ValueSource tags where an effective value came from.
type ValueSource string

const (
	// SourceNone means neither the month nor any template defines a value.
	SourceNone ValueSource = "none"
	// SourceTemplate means the governing template supplied the value.
	SourceTemplate ValueSource = "template"
	// SourceOverride means this month's config deliberately deviates.
	SourceOverride ValueSource = "override"
)

// Resolved describes the provenance of an effective value, so the same
// lookup serves both display ("is this overridden?") and cost calculation.
type Resolved struct {
	Source       ValueSource
	TemplateName string
}

// Overridden reports whether the value is a per-month deviation.
func (r Resolved) Overridden() bool { return r.Source == SourceOverride }

// Resolver answers "what value governs this entity this month" for
// sub-categories, buckets and groups, with one uniform precedence:
// non-deleted month override, then governing template, then zero.
type Resolver struct {
	month core.MonthKey
	cfg   *core.MonthConfig
	tpl   *core.BudgetTemplate
}

// NewResolver binds a resolver to a month. The governing template is the
// one the month's config names, falling back to the default template; with
// no template at all every lookup degrades to zero.
func NewResolver(month core.MonthKey, templates []core.BudgetTemplate, configs []core.MonthConfig) *Resolver {
	r := &Resolver{month: month}

	for i := range configs {
		if configs[i].Month == month {
			r.cfg = &configs[i]
			break
		}
	}

	if r.cfg != nil && r.cfg.TemplateID != "" {
		for i := range templates {
			if templates[i].ID == r.cfg.TemplateID {
				r.tpl = &templates[i]
				break
			}
		}
	}
	if r.tpl == nil {
		for i := range templates {
			if templates[i].IsDefault {
				r.tpl = &templates[i]
				break
			}
		}
	}
	return r
}

// TemplateName returns the governing template's name, or "" without one.
func (r *Resolver) TemplateName() string {
	if r.tpl == nil {
		return ""
	}
	return r.tpl.Name
}

// Locked reports whether budget mutation is frozen for the month. The
// engine itself never acts on this; it is surfaced for the write path.
func (r *Resolver) Locked() bool {
	return r.cfg != nil && r.cfg.IsLocked
}

// SubCategoryAmount resolves the effective budget for a sub-category.
func (r *Resolver) SubCategoryAmount(id string) (core.Money, Resolved) {
	if r.cfg != nil {
		if ov, ok := r.cfg.SubCategoryOverrides[id]; ok && !ov.Deleted {
			return ov.Amount, Resolved{Source: SourceOverride, TemplateName: r.TemplateName()}
		}
	}
	if r.tpl != nil {
		if amount, ok := r.tpl.SubCategoryAmounts[id]; ok {
			return amount, Resolved{Source: SourceTemplate, TemplateName: r.tpl.Name}
		}
	}
	return core.Money{}, Resolved{Source: SourceNone, TemplateName: r.TemplateName()}
}

// BucketConfig resolves the effective FIXED/DAILY configuration for a
// bucket, with the same precedence as amounts.
func (r *Resolver) BucketConfig(id string) (core.BucketConfig, Resolved) {
	if r.cfg != nil {
		if ov, ok := r.cfg.BucketOverrides[id]; ok && !ov.Deleted {
			return ov.Config, Resolved{Source: SourceOverride, TemplateName: r.TemplateName()}
		}
	}
	if r.tpl != nil {
		if cfg, ok := r.tpl.BucketConfigs[id]; ok {
			return cfg, Resolved{Source: SourceTemplate, TemplateName: r.tpl.Name}
		}
	}
	return core.BucketConfig{}, Resolved{Source: SourceNone, TemplateName: r.TemplateName()}
}

// BucketRemoved reports whether the bucket was taken out of this month.
// Removal is stronger than a deleted override: the bucket contributes no
// cost rows at all, whatever its kind.
func (r *Resolver) BucketRemoved(id string) bool {
	if r.cfg == nil {
		return false
	}
	ov, ok := r.cfg.BucketOverrides[id]
	return ok && ov.Removed
}

// GroupLimit resolves a group's manual spending limit. Limits live only in
// the month config; templates do not carry group-level values.
func (r *Resolver) GroupLimit(id string) (core.Money, Resolved) {
	if r.cfg != nil {
		if ov, ok := r.cfg.GroupOverrides[id]; ok && !ov.Deleted {
			return ov.Amount, Resolved{Source: SourceOverride, TemplateName: r.TemplateName()}
		}
	}
	return core.Money{}, Resolved{Source: SourceNone, TemplateName: r.TemplateName()}
}

package engine

import (
	"testing"

	"budsjett/internal/core"
)

func templates() []core.BudgetTemplate {
	return []core.BudgetTemplate{
		{
			ID:        "tpl-default",
			Name:      "Standard",
			IsDefault: true,
			SubCategoryAmounts: map[string]core.Money{
				"sub-food": {Cents: 400000},
			},
			BucketConfigs: map[string]core.BucketConfig{
				"bkt-rent": {Amount: core.Money{Cents: 1200000}},
			},
		},
		{
			ID:   "tpl-summer",
			Name: "Summer",
			SubCategoryAmounts: map[string]core.Money{
				"sub-food": {Cents: 550000},
			},
		},
	}
}

func TestResolverOverridePrecedence(t *testing.T) {
	configs := []core.MonthConfig{{
		Month: "2025-03",
		SubCategoryOverrides: map[string]core.Override{
			"sub-food": {Amount: core.Money{Cents: 480000}},
		},
	}}

	r := NewResolver("2025-03", templates(), configs)
	got, res := r.SubCategoryAmount("sub-food")
	if got.Cents != 480000 {
		t.Fatalf("effective = %d, want the override 480000", got.Cents)
	}
	if !res.Overridden() || res.Source != SourceOverride {
		t.Fatalf("expected override provenance, got %+v", res)
	}

	// Clearing the override reverts to the template value.
	r = NewResolver("2025-03", templates(), nil)
	got, res = r.SubCategoryAmount("sub-food")
	if got.Cents != 400000 {
		t.Fatalf("effective = %d, want the template 400000", got.Cents)
	}
	if res.Overridden() || res.Source != SourceTemplate {
		t.Fatalf("expected template provenance, got %+v", res)
	}
}

func TestResolverExplicitDeletionRevertsToTemplate(t *testing.T) {
	configs := []core.MonthConfig{{
		Month: "2025-03",
		SubCategoryOverrides: map[string]core.Override{
			"sub-food": {Amount: core.Money{Cents: 480000}, Deleted: true},
		},
	}}

	r := NewResolver("2025-03", templates(), configs)
	got, res := r.SubCategoryAmount("sub-food")
	if got.Cents != 400000 || res.Source != SourceTemplate {
		t.Fatalf("deleted override must fall back to template, got %d from %s", got.Cents, res.Source)
	}
}

func TestResolverMonthTemplateSelection(t *testing.T) {
	configs := []core.MonthConfig{{Month: "2025-07", TemplateID: "tpl-summer"}}

	r := NewResolver("2025-07", templates(), configs)
	if r.TemplateName() != "Summer" {
		t.Fatalf("governing template = %q, want Summer", r.TemplateName())
	}
	got, _ := r.SubCategoryAmount("sub-food")
	if got.Cents != 550000 {
		t.Fatalf("effective = %d, want 550000 from the assigned template", got.Cents)
	}

	// Other months keep the default template.
	r = NewResolver("2025-08", templates(), configs)
	if r.TemplateName() != "Standard" {
		t.Fatalf("governing template = %q, want Standard", r.TemplateName())
	}
}

func TestResolverNoTemplateDegradesToZero(t *testing.T) {
	r := NewResolver("2025-03", nil, nil)
	got, res := r.SubCategoryAmount("sub-food")
	if got.Cents != 0 || res.Source != SourceNone {
		t.Fatalf("without templates effective value must be 0/none, got %d/%s", got.Cents, res.Source)
	}
	cfg, res := r.BucketConfig("bkt-rent")
	if cfg.Amount.Cents != 0 || res.Source != SourceNone {
		t.Fatalf("without templates bucket config must be zero, got %+v", cfg)
	}
}

func TestResolverUndefinedEntityIsZeroTemplate(t *testing.T) {
	r := NewResolver("2025-03", templates(), nil)
	got, res := r.SubCategoryAmount("sub-unknown")
	if got.Cents != 0 || res.Source != SourceNone {
		t.Fatalf("undefined entity = %d/%s, want 0/none", got.Cents, res.Source)
	}
}

func TestResolverGroupLimitOnlyFromMonthConfig(t *testing.T) {
	r := NewResolver("2025-03", templates(), nil)
	if limit, res := r.GroupLimit("grp-housing"); limit.Cents != 0 || res.Source != SourceNone {
		t.Fatalf("group limit without override = %d/%s", limit.Cents, res.Source)
	}

	configs := []core.MonthConfig{{
		Month: "2025-03",
		GroupOverrides: map[string]core.Override{
			"grp-housing": {Amount: core.Money{Cents: 80000}},
		},
	}}
	r = NewResolver("2025-03", templates(), configs)
	limit, res := r.GroupLimit("grp-housing")
	if limit.Cents != 80000 || !res.Overridden() {
		t.Fatalf("group limit = %d/%s, want 80000/override", limit.Cents, res.Source)
	}
}

func TestResolverLocked(t *testing.T) {
	configs := []core.MonthConfig{{Month: "2025-03", IsLocked: true}}
	if !NewResolver("2025-03", templates(), configs).Locked() {
		t.Fatalf("expected locked month")
	}
	if NewResolver("2025-04", templates(), configs).Locked() {
		t.Fatalf("lock must not leak into other months")
	}
}

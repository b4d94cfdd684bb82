package core

import (
	"errors"
	"strings"
	"time"
)

const (
	BucketFixed BucketKind = "fixed"
	BucketDaily BucketKind = "daily"
	BucketGoal  BucketKind = "goal"

	ForecastVariable ForecastType = "variable"
	ForecastFixed    ForecastType = "fixed"
	ForecastSavings  ForecastType = "savings"

	TxnExpense  TransactionType = "expense"
	TxnIncome   TransactionType = "income"
	TxnTransfer TransactionType = "transfer"
	// TxnLegacy marks rows imported before transaction types existed.
	// Legacy rows are treated as expenses.
	TxnLegacy TransactionType = ""

	PaySourceIncome  GoalPaymentSource = "income"
	PaySourceBalance GoalPaymentSource = "balance"
)

type (
	BucketKind        string
	ForecastType      string
	TransactionType   string
	GoalPaymentSource string

	Money struct {
		Cents int64
	}

	// BudgetTemplate is a named, reusable set of per-entity defaults.
	// At most one template is flagged as the process-wide default.
	BudgetTemplate struct {
		ID                 string
		Name               string
		IsDefault          bool
		SubCategoryAmounts map[string]Money
		BucketConfigs      map[string]BucketConfig
	}

	// Override is a deliberate per-month deviation from the template.
	// Deleted reverts the entry back to the template value while keeping
	// a record that the user explicitly removed it.
	Override struct {
		Amount  Money
		Deleted bool
	}

	// BucketConfigOverride is the per-month counterpart of Override for
	// bucket configurations. Deleted reverts the configuration to the
	// template; Removed takes the bucket out of the month entirely, so it
	// is neither priced nor listed there.
	BucketConfigOverride struct {
		Config  BucketConfig
		Deleted bool
		Removed bool
	}

	// MonthConfig exists only for months the user customized. Absence of
	// the config, or of any entry inside it, means "inherit from template".
	MonthConfig struct {
		Month                MonthKey
		TemplateID           string
		IsLocked             bool
		SubCategoryOverrides map[string]Override
		BucketOverrides      map[string]BucketConfigOverride
		GroupOverrides       map[string]Override
	}

	// BudgetGroup is a logical grouping such as "Housing".
	BudgetGroup struct {
		ID               string
		Name             string
		Icon             string
		ForecastType     ForecastType
		DefaultAccountID string
		LinkedBucketIDs  []string
		IsCatchAll       bool
	}

	// SubCategory is a leaf spend category. An empty BudgetGroupID leaves
	// it out of every group rollup.
	SubCategory struct {
		ID             string
		Name           string
		Icon           string
		MainCategoryID string
		BudgetGroupID  string
		IsSavings      bool
		AccountID      string
	}

	// BucketConfig carries the FIXED and DAILY cost parameters. GOAL
	// buckets never read it.
	BucketConfig struct {
		Amount      Money
		DailyAmount Money
		// ActiveDays uses 0=Sunday..6=Saturday.
		ActiveDays []int
	}

	// GoalMonthData is a per-month saving-amount override for a GOAL bucket.
	GoalMonthData struct {
		Amount  Money
		Deleted bool
	}

	// GoalSpec describes the two-phase savings goal of a GOAL bucket.
	// StartSaving, Target and Archived are month keys; EventStart and
	// EventEnd are calendar dates bounding the spending event.
	GoalSpec struct {
		TargetAmount  Money
		StartSaving   MonthKey
		Target        MonthKey
		PaymentSource GoalPaymentSource
		EventStart    string
		EventEnd      string
		Archived      MonthKey
		MonthlyData   map[MonthKey]GoalMonthData
	}

	// Bucket is a recurring cost item: flat monthly, weekday-driven daily
	// accrual, or a two-phase savings goal. FIXED and DAILY cost parameters
	// live in templates and month overrides, never on the bucket itself.
	Bucket struct {
		ID            string
		Name          string
		Icon          string
		Kind          BucketKind
		BudgetGroupID string
		Goal          *GoalSpec
	}

	// Transaction amounts are positive magnitudes; Type carries the sign
	// semantics. ReimbursesID on an income transaction links it to the
	// expense transaction it refunds.
	Transaction struct {
		ID            string
		Date          string // YYYY-MM-DD
		Amount        Money
		Type          TransactionType
		SubCategoryID string
		BucketID      string
		AccountID     string
		Description   string
		IsHidden      bool
		ReimbursesID  string
	}

	Account struct {
		ID   string
		Name string
	}

	MainCategory struct {
		ID   string
		Name string
		Icon string
	}

	// Settings holds the process-wide options the engine reads.
	Settings struct {
		Payday int
	}
)

var (
	ErrInvalidAmount    = errors.New("invalid amount")
	ErrInvalidMonthKey  = errors.New("invalid month key")
	ErrInvalidPayday    = errors.New("invalid payday")
	ErrEmptyName        = errors.New("empty name")
	ErrInvalidBucket    = errors.New("invalid bucket")
	ErrInvalidForecast  = errors.New("invalid forecast type")
	ErrInvalidTxnType   = errors.New("invalid transaction type")
	ErrInvalidActiveDay = errors.New("invalid active day")
)

const dateLayout = "2006-01-02"

// ParseDate parses a YYYY-MM-DD transaction or event date.
func ParseDate(s string) (time.Time, error) {
	return time.Parse(dateLayout, strings.TrimSpace(s))
}

func (g BudgetGroup) Validate() error {
	if strings.TrimSpace(g.Name) == "" {
		return ErrEmptyName
	}
	switch g.ForecastType {
	case ForecastVariable, ForecastFixed, ForecastSavings:
	default:
		return ErrInvalidForecast
	}
	return nil
}

func (s SubCategory) Validate() error {
	if strings.TrimSpace(s.Name) == "" {
		return ErrEmptyName
	}
	if len(s.Name) > 200 {
		return errors.New("name too long (max 200 characters)")
	}
	return nil
}

func (c BucketConfig) Validate() error {
	if c.Amount.Cents < 0 || c.DailyAmount.Cents < 0 {
		return ErrInvalidAmount
	}
	for _, d := range c.ActiveDays {
		if d < 0 || d > 6 {
			return ErrInvalidActiveDay
		}
	}
	return nil
}

func (b Bucket) Validate() error {
	if strings.TrimSpace(b.Name) == "" {
		return ErrEmptyName
	}
	switch b.Kind {
	case BucketFixed, BucketDaily:
	case BucketGoal:
		if b.Goal == nil {
			return ErrInvalidBucket
		}
		if b.Goal.TargetAmount.Cents <= 0 {
			return ErrInvalidAmount
		}
	default:
		return ErrInvalidBucket
	}
	return nil
}

func (t Transaction) Validate() error {
	if _, err := ParseDate(t.Date); err != nil {
		return errors.New("invalid transaction date: " + err.Error())
	}
	if t.Amount.Cents < 0 {
		return ErrInvalidAmount
	}
	switch t.Type {
	case TxnExpense, TxnIncome, TxnTransfer, TxnLegacy:
	default:
		return ErrInvalidTxnType
	}
	return nil
}

// IsExpense reports whether the transaction counts as spend. Legacy rows
// without a type are treated as expenses.
func (t Transaction) IsExpense() bool {
	return t.Type == TxnExpense || t.Type == TxnLegacy
}

package model

import (
	"fmt"
	"strings"
	"time"
)

// BudgetPeriod is the recurrence of a budget.
type BudgetPeriod string

const (
	// PeriodWeekly budgets reset every week.
	PeriodWeekly BudgetPeriod = "WEEKLY"
	// PeriodMonthly budgets reset every month.
	PeriodMonthly BudgetPeriod = "MONTHLY"
	// PeriodYearly budgets reset every year.
	PeriodYearly BudgetPeriod = "YEARLY"
)

// Valid reports whether the period is a known value.
func (p BudgetPeriod) Valid() bool {
	return p == PeriodWeekly || p == PeriodMonthly || p == PeriodYearly
}

// Budget caps spending on a category for one period instance. Scope names
// the concrete instance, e.g. "2024-01" for a monthly budget. Health is
// derived by the ledger engine, never stored.
type Budget struct {
	CreatedAt  time.Time    `json:"createdAt"`
	UpdatedAt  time.Time    `json:"updatedAt"`
	ID         string       `json:"id"`
	CategoryID string       `json:"categoryId"`
	Period     BudgetPeriod `json:"period"`
	Scope      string       `json:"scope"`
	Limit      float64      `json:"limit"`
}

// NewBudget validates and builds a budget. The ID and timestamps are
// assigned by the store on creation.
func NewBudget(categoryID string, limit float64, period BudgetPeriod, scope string) (*Budget, error) {
	b := &Budget{
		CategoryID: categoryID,
		Limit:      limit,
		Period:     period,
		Scope:      scope,
	}
	if err := b.Validate(); err != nil {
		return nil, err
	}
	return b, nil
}

// Validate checks a fully populated budget, as found in backups.
func (b *Budget) Validate() error {
	if b == nil {
		return fmt.Errorf("%w: budget is nil", ErrValidation)
	}
	if strings.TrimSpace(b.CategoryID) == "" {
		return fmt.Errorf("%w: budget category is required", ErrValidation)
	}
	if b.Limit < 0 {
		return fmt.Errorf("%w: budget limit must not be negative", ErrValidation)
	}
	if !b.Period.Valid() {
		return fmt.Errorf("%w: unknown budget period %q", ErrValidation, b.Period)
	}
	return nil
}

package model

import (
	"fmt"
	"strings"
)

// CategoryType indicates whether a category classifies income or expenses.
type CategoryType string

const (
	// CategoryIncome marks categories for income transactions.
	CategoryIncome CategoryType = "INCOME"
	// CategoryExpense marks categories for expense transactions.
	CategoryExpense CategoryType = "EXPENSE"
)

// Valid reports whether the category type is a known value.
func (t CategoryType) Valid() bool {
	return t == CategoryIncome || t == CategoryExpense
}

// Category labels transactions for budgeting and reporting. System
// categories are seeded by the store and cannot be deleted. ParentID is a
// grouping hint only; the hierarchy is not enforced at runtime.
type Category struct {
	ID       string       `json:"id"`
	Name     string       `json:"name"`
	Type     CategoryType `json:"type"`
	Icon     string       `json:"icon"`
	Color    string       `json:"color"`
	ParentID string       `json:"parentId,omitempty"`
	IsSystem bool         `json:"isSystem,omitempty"`
}

// NewCategory validates and builds a category. The ID is assigned by the
// store on creation.
func NewCategory(name string, categoryType CategoryType, icon, color string) (*Category, error) {
	if strings.TrimSpace(name) == "" {
		return nil, fmt.Errorf("%w: category name is required", ErrValidation)
	}
	if !categoryType.Valid() {
		return nil, fmt.Errorf("%w: unknown category type %q", ErrValidation, categoryType)
	}
	return &Category{
		Name:  strings.TrimSpace(name),
		Type:  categoryType,
		Icon:  icon,
		Color: color,
	}, nil
}

// Validate checks a fully populated category, as found in backups.
func (c *Category) Validate() error {
	if c == nil {
		return fmt.Errorf("%w: category is nil", ErrValidation)
	}
	if strings.TrimSpace(c.Name) == "" {
		return fmt.Errorf("%w: category name is required", ErrValidation)
	}
	if !c.Type.Valid() {
		return fmt.Errorf("%w: unknown category type %q", ErrValidation, c.Type)
	}
	return nil
}

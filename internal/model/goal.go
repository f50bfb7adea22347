package model

import (
	"fmt"
	"strings"
	"time"
)

// Goal is a savings target. SavedAmount is tracked manually; it is not
// derived from transactions.
type Goal struct {
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Color        string    `json:"color"`
	Deadline     *Date     `json:"deadline,omitempty"`
	TargetAmount float64   `json:"targetAmount"`
	SavedAmount  float64   `json:"savedAmount"`
}

// NewGoal validates and builds a goal. The ID and timestamps are assigned
// by the store on creation.
func NewGoal(name string, targetAmount float64, deadline *Date, color string) (*Goal, error) {
	g := &Goal{
		Name:         strings.TrimSpace(name),
		TargetAmount: targetAmount,
		Deadline:     deadline,
		Color:        color,
	}
	if err := g.Validate(); err != nil {
		return nil, err
	}
	return g, nil
}

// Validate checks a fully populated goal, as found in backups.
func (g *Goal) Validate() error {
	if g == nil {
		return fmt.Errorf("%w: goal is nil", ErrValidation)
	}
	if strings.TrimSpace(g.Name) == "" {
		return fmt.Errorf("%w: goal name is required", ErrValidation)
	}
	if g.TargetAmount <= 0 {
		return fmt.Errorf("%w: goal target must be positive", ErrValidation)
	}
	if g.SavedAmount < 0 {
		return fmt.Errorf("%w: goal saved amount must not be negative", ErrValidation)
	}
	return nil
}

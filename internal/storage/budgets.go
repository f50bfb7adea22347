package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/finanza/finanza/internal/common"
	"github.com/finanza/finanza/internal/model"
)

// CreateBudget stores a new budget, assigning its ID and timestamps.
func (s *SQLiteStorage) CreateBudget(ctx context.Context, budget *model.Budget) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	return s.createBudgetTx(ctx, s.db, budget)
}

func (s *SQLiteStorage) createBudgetTx(ctx context.Context, q dbtx, budget *model.Budget) error {
	if err := validateBudget(budget); err != nil {
		return err
	}

	if budget.ID == "" {
		budget.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	budget.CreatedAt = now
	budget.UpdatedAt = now

	_, err := q.ExecContext(ctx, `
		INSERT INTO budgets (id, category_id, limit_amount, period, scope, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		budget.ID, budget.CategoryID, budget.Limit, string(budget.Period),
		budget.Scope, budget.CreatedAt, budget.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert budget: %w", err)
	}
	return nil
}

// GetBudget retrieves a budget by ID.
func (s *SQLiteStorage) GetBudget(ctx context.Context, id string) (*model.Budget, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(id, "id"); err != nil {
		return nil, err
	}
	return s.getBudgetTx(ctx, s.db, id)
}

func (s *SQLiteStorage) getBudgetTx(ctx context.Context, q dbtx, id string) (*model.Budget, error) {
	row := q.QueryRowContext(ctx, `
		SELECT id, category_id, limit_amount, period, scope, created_at, updated_at
		FROM budgets WHERE id = ?`, id)

	budget, err := scanBudget(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("budget %s: %w", id, common.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query budget: %w", err)
	}
	return budget, nil
}

// ListBudgets returns all budgets ordered by scope, newest first.
func (s *SQLiteStorage) ListBudgets(ctx context.Context) ([]model.Budget, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return s.listBudgetsTx(ctx, s.db)
}

func (s *SQLiteStorage) listBudgetsTx(ctx context.Context, q dbtx) ([]model.Budget, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT id, category_id, limit_amount, period, scope, created_at, updated_at
		FROM budgets
		ORDER BY scope DESC, created_at`)
	if err != nil {
		return nil, fmt.Errorf("failed to query budgets: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var budgets []model.Budget
	for rows.Next() {
		budget, err := scanBudget(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("failed to scan budget: %w", err)
		}
		budgets = append(budgets, *budget)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating budgets: %w", err)
	}
	return budgets, nil
}

// UpdateBudget rewrites a stored budget and refreshes its updated
// timestamp.
func (s *SQLiteStorage) UpdateBudget(ctx context.Context, budget *model.Budget) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	return s.updateBudgetTx(ctx, s.db, budget)
}

func (s *SQLiteStorage) updateBudgetTx(ctx context.Context, q dbtx, budget *model.Budget) error {
	if err := validateBudget(budget); err != nil {
		return err
	}
	if err := validateString(budget.ID, "budget.ID"); err != nil {
		return err
	}

	budget.UpdatedAt = time.Now().UTC()
	result, err := q.ExecContext(ctx, `
		UPDATE budgets
		SET category_id = ?, limit_amount = ?, period = ?, scope = ?, updated_at = ?
		WHERE id = ?`,
		budget.CategoryID, budget.Limit, string(budget.Period), budget.Scope,
		budget.UpdatedAt, budget.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update budget: %w", err)
	}
	return requireRowAffected(result, "budget", budget.ID)
}

// DeleteBudget removes a budget.
func (s *SQLiteStorage) DeleteBudget(ctx context.Context, id string) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(id, "id"); err != nil {
		return err
	}
	return s.deleteBudgetTx(ctx, s.db, id)
}

func (s *SQLiteStorage) deleteBudgetTx(ctx context.Context, q dbtx, id string) error {
	result, err := q.ExecContext(ctx, `DELETE FROM budgets WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete budget: %w", err)
	}
	return requireRowAffected(result, "budget", id)
}

func scanBudget(scan func(...any) error) (*model.Budget, error) {
	var budget model.Budget
	var period string
	if err := scan(
		&budget.ID, &budget.CategoryID, &budget.Limit, &period,
		&budget.Scope, &budget.CreatedAt, &budget.UpdatedAt,
	); err != nil {
		return nil, err
	}
	budget.Period = model.BudgetPeriod(period)
	return &budget, nil
}

package storage

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/finanza/finanza/internal/common"
	"github.com/finanza/finanza/internal/service"
)

// Export gathers the full contents of all five tables inside a single
// read transaction, so the snapshot is a consistent point-in-time view.
func (s *SQLiteStorage) Export(ctx context.Context) (*service.Snapshot, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrStorageUnavailable, err)
	}
	defer func() { _ = tx.Rollback() }()

	snapshot, err := s.exportTx(ctx, tx)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrStorageUnavailable, err)
	}
	return snapshot, nil
}

func (s *SQLiteStorage) exportTx(ctx context.Context, q dbtx) (*service.Snapshot, error) {
	var snapshot service.Snapshot
	var err error

	if snapshot.Accounts, err = s.listAccountsTx(ctx, q, true); err != nil {
		return nil, err
	}
	if snapshot.Transactions, err = s.listTransactionsTx(ctx, q, service.TransactionFilter{}); err != nil {
		return nil, err
	}
	if snapshot.Categories, err = s.listCategoriesTx(ctx, q); err != nil {
		return nil, err
	}
	if snapshot.Budgets, err = s.listBudgetsTx(ctx, q); err != nil {
		return nil, err
	}
	if snapshot.Goals, err = s.listGoalsTx(ctx, q); err != nil {
		return nil, err
	}

	slog.Debug("exported snapshot",
		"accounts", len(snapshot.Accounts),
		"transactions", len(snapshot.Transactions),
		"categories", len(snapshot.Categories),
		"budgets", len(snapshot.Budgets),
		"goals", len(snapshot.Goals))
	return &snapshot, nil
}

// ReplaceAll clears all five tables and bulk-inserts the snapshot inside
// one storage transaction. Entities keep the IDs and timestamps they
// carry; a failure anywhere rolls back to the prior state, and readers on
// other connections never observe the cleared intermediate state.
func (s *SQLiteStorage) ReplaceAll(ctx context.Context, snapshot *service.Snapshot) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if snapshot == nil {
		return fmt.Errorf("%w: snapshot", ErrNilParameter)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: %v", common.ErrStorageUnavailable, err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := s.replaceAllTx(ctx, tx, snapshot); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: %v", common.ErrStorageUnavailable, err)
	}

	slog.Info("restored snapshot",
		"accounts", len(snapshot.Accounts),
		"transactions", len(snapshot.Transactions),
		"categories", len(snapshot.Categories),
		"budgets", len(snapshot.Budgets),
		"goals", len(snapshot.Goals))
	return nil
}

func (s *SQLiteStorage) replaceAllTx(ctx context.Context, q dbtx, snapshot *service.Snapshot) error {
	for _, table := range []string{"accounts", "transactions", "categories", "budgets", "goals"} {
		if _, err := q.ExecContext(ctx, `DELETE FROM `+table); err != nil {
			return fmt.Errorf("failed to clear %s: %w", table, err)
		}
	}

	for i := range snapshot.Accounts {
		account := &snapshot.Accounts[i]
		if _, err := q.ExecContext(ctx, `
			INSERT INTO accounts (id, name, type, currency, initial_balance, color, archived, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			account.ID, account.Name, string(account.Type), account.Currency,
			account.InitialBalance, account.Color, account.Archived,
			account.CreatedAt, account.UpdatedAt,
		); err != nil {
			return fmt.Errorf("failed to restore account %s: %w", account.ID, err)
		}
	}

	for i := range snapshot.Transactions {
		if err := s.insertTransaction(ctx, q, &snapshot.Transactions[i]); err != nil {
			return fmt.Errorf("failed to restore transaction: %w", err)
		}
	}

	for i := range snapshot.Categories {
		category := &snapshot.Categories[i]
		if _, err := q.ExecContext(ctx, `
			INSERT INTO categories (id, name, type, icon, color, parent_id, is_system)
			VALUES (?, ?, ?, ?, ?, ?, ?)`,
			category.ID, category.Name, string(category.Type), category.Icon,
			category.Color, nullableString(category.ParentID), category.IsSystem,
		); err != nil {
			return fmt.Errorf("failed to restore category %s: %w", category.ID, err)
		}
	}

	for i := range snapshot.Budgets {
		budget := &snapshot.Budgets[i]
		if _, err := q.ExecContext(ctx, `
			INSERT INTO budgets (id, category_id, limit_amount, period, scope, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?)`,
			budget.ID, budget.CategoryID, budget.Limit, string(budget.Period),
			budget.Scope, budget.CreatedAt, budget.UpdatedAt,
		); err != nil {
			return fmt.Errorf("failed to restore budget %s: %w", budget.ID, err)
		}
	}

	for i := range snapshot.Goals {
		goal := &snapshot.Goals[i]
		if _, err := q.ExecContext(ctx, `
			INSERT INTO goals (id, name, target_amount, saved_amount, deadline, color, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			goal.ID, goal.Name, goal.TargetAmount, goal.SavedAmount,
			nullableDate(goal.Deadline), goal.Color, goal.CreatedAt, goal.UpdatedAt,
		); err != nil {
			return fmt.Errorf("failed to restore goal %s: %w", goal.ID, err)
		}
	}

	return nil
}

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

// CreateGoal stores a new goal, assigning its ID and timestamps.
func (s *SQLiteStorage) CreateGoal(ctx context.Context, goal *model.Goal) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	return s.createGoalTx(ctx, s.db, goal)
}

func (s *SQLiteStorage) createGoalTx(ctx context.Context, q dbtx, goal *model.Goal) error {
	if err := validateGoal(goal); err != nil {
		return err
	}

	if goal.ID == "" {
		goal.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	goal.CreatedAt = now
	goal.UpdatedAt = now

	_, err := q.ExecContext(ctx, `
		INSERT INTO goals (id, name, target_amount, saved_amount, deadline, color, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		goal.ID, goal.Name, goal.TargetAmount, goal.SavedAmount,
		nullableDate(goal.Deadline), goal.Color, goal.CreatedAt, goal.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert goal: %w", err)
	}
	return nil
}

// GetGoal retrieves a goal by ID.
func (s *SQLiteStorage) GetGoal(ctx context.Context, id string) (*model.Goal, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(id, "id"); err != nil {
		return nil, err
	}
	return s.getGoalTx(ctx, s.db, id)
}

func (s *SQLiteStorage) getGoalTx(ctx context.Context, q dbtx, id string) (*model.Goal, error) {
	row := q.QueryRowContext(ctx, `
		SELECT id, name, target_amount, saved_amount, deadline, color, created_at, updated_at
		FROM goals WHERE id = ?`, id)

	goal, err := scanGoal(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("goal %s: %w", id, common.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query goal: %w", err)
	}
	return goal, nil
}

// ListGoals returns all goals, earliest deadline first, undated last.
func (s *SQLiteStorage) ListGoals(ctx context.Context) ([]model.Goal, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return s.listGoalsTx(ctx, s.db)
}

func (s *SQLiteStorage) listGoalsTx(ctx context.Context, q dbtx) ([]model.Goal, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT id, name, target_amount, saved_amount, deadline, color, created_at, updated_at
		FROM goals
		ORDER BY deadline IS NULL, deadline, created_at`)
	if err != nil {
		return nil, fmt.Errorf("failed to query goals: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var goals []model.Goal
	for rows.Next() {
		goal, err := scanGoal(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("failed to scan goal: %w", err)
		}
		goals = append(goals, *goal)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating goals: %w", err)
	}
	return goals, nil
}

// UpdateGoal rewrites a stored goal and refreshes its updated timestamp.
// SavedAmount changes flow through here; goals are tracked manually, not
// derived from transactions.
func (s *SQLiteStorage) UpdateGoal(ctx context.Context, goal *model.Goal) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	return s.updateGoalTx(ctx, s.db, goal)
}

func (s *SQLiteStorage) updateGoalTx(ctx context.Context, q dbtx, goal *model.Goal) error {
	if err := validateGoal(goal); err != nil {
		return err
	}
	if err := validateString(goal.ID, "goal.ID"); err != nil {
		return err
	}

	goal.UpdatedAt = time.Now().UTC()
	result, err := q.ExecContext(ctx, `
		UPDATE goals
		SET name = ?, target_amount = ?, saved_amount = ?, deadline = ?, color = ?, updated_at = ?
		WHERE id = ?`,
		goal.Name, goal.TargetAmount, goal.SavedAmount, nullableDate(goal.Deadline),
		goal.Color, goal.UpdatedAt, goal.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update goal: %w", err)
	}
	return requireRowAffected(result, "goal", goal.ID)
}

// DeleteGoal removes a goal.
func (s *SQLiteStorage) DeleteGoal(ctx context.Context, id string) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(id, "id"); err != nil {
		return err
	}
	return s.deleteGoalTx(ctx, s.db, id)
}

func (s *SQLiteStorage) deleteGoalTx(ctx context.Context, q dbtx, id string) error {
	result, err := q.ExecContext(ctx, `DELETE FROM goals WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete goal: %w", err)
	}
	return requireRowAffected(result, "goal", id)
}

func scanGoal(scan func(...any) error) (*model.Goal, error) {
	var goal model.Goal
	var deadline sql.NullString
	if err := scan(
		&goal.ID, &goal.Name, &goal.TargetAmount, &goal.SavedAmount,
		&deadline, &goal.Color, &goal.CreatedAt, &goal.UpdatedAt,
	); err != nil {
		return nil, err
	}
	if deadline.Valid {
		parsed, err := model.ParseDate(deadline.String)
		if err != nil {
			return nil, fmt.Errorf("stored deadline: %w", err)
		}
		goal.Deadline = &parsed
	}
	return &goal, nil
}

func nullableDate(d *model.Date) any {
	if d == nil {
		return nil
	}
	return d.String()
}

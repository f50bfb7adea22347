package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/finanza/finanza/internal/common"
	"github.com/finanza/finanza/internal/model"
)

// CreateCategory stores a new category, assigning its ID.
func (s *SQLiteStorage) CreateCategory(ctx context.Context, category *model.Category) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	return s.createCategoryTx(ctx, s.db, category)
}

func (s *SQLiteStorage) createCategoryTx(ctx context.Context, q dbtx, category *model.Category) error {
	if err := validateCategory(category); err != nil {
		return err
	}

	if category.ID == "" {
		category.ID = uuid.NewString()
	}

	_, err := q.ExecContext(ctx, `
		INSERT INTO categories (id, name, type, icon, color, parent_id, is_system)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		category.ID, category.Name, string(category.Type), category.Icon,
		category.Color, nullableString(category.ParentID), category.IsSystem,
	)
	if err != nil {
		return fmt.Errorf("failed to insert category: %w", err)
	}
	return nil
}

// GetCategory retrieves a category by ID.
func (s *SQLiteStorage) GetCategory(ctx context.Context, id string) (*model.Category, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(id, "id"); err != nil {
		return nil, err
	}
	return s.getCategoryTx(ctx, s.db, id)
}

func (s *SQLiteStorage) getCategoryTx(ctx context.Context, q dbtx, id string) (*model.Category, error) {
	row := q.QueryRowContext(ctx, `
		SELECT id, name, type, icon, color, parent_id, is_system
		FROM categories WHERE id = ?`, id)

	category, err := scanCategory(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("category %s: %w", id, common.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query category: %w", err)
	}
	return category, nil
}

// ListCategories returns all categories, system entries first, then by
// name.
func (s *SQLiteStorage) ListCategories(ctx context.Context) ([]model.Category, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return s.listCategoriesTx(ctx, s.db)
}

func (s *SQLiteStorage) listCategoriesTx(ctx context.Context, q dbtx) ([]model.Category, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT id, name, type, icon, color, parent_id, is_system
		FROM categories
		ORDER BY is_system DESC, name`)
	if err != nil {
		return nil, fmt.Errorf("failed to query categories: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var categories []model.Category
	for rows.Next() {
		category, err := scanCategory(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		categories = append(categories, *category)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating categories: %w", err)
	}
	return categories, nil
}

// UpdateCategory rewrites a stored category.
func (s *SQLiteStorage) UpdateCategory(ctx context.Context, category *model.Category) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	return s.updateCategoryTx(ctx, s.db, category)
}

func (s *SQLiteStorage) updateCategoryTx(ctx context.Context, q dbtx, category *model.Category) error {
	if err := validateCategory(category); err != nil {
		return err
	}
	if err := validateString(category.ID, "category.ID"); err != nil {
		return err
	}

	result, err := q.ExecContext(ctx, `
		UPDATE categories
		SET name = ?, type = ?, icon = ?, color = ?, parent_id = ?
		WHERE id = ?`,
		category.Name, string(category.Type), category.Icon, category.Color,
		nullableString(category.ParentID), category.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update category: %w", err)
	}
	return requireRowAffected(result, "category", category.ID)
}

// DeleteCategory removes a category. System categories refuse deletion,
// and the delete never cascades: transactions keep their category ID and
// resolve to a display fallback at read time.
func (s *SQLiteStorage) DeleteCategory(ctx context.Context, id string) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(id, "id"); err != nil {
		return err
	}
	return s.deleteCategoryTx(ctx, s.db, id)
}

func (s *SQLiteStorage) deleteCategoryTx(ctx context.Context, q dbtx, id string) error {
	category, err := s.getCategoryTx(ctx, q, id)
	if err != nil {
		return err
	}
	if category.IsSystem {
		return fmt.Errorf("category %s: %w", category.Name, common.ErrSystemCategory)
	}

	result, err := q.ExecContext(ctx, `DELETE FROM categories WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete category: %w", err)
	}
	return requireRowAffected(result, "category", id)
}

func scanCategory(scan func(...any) error) (*model.Category, error) {
	var category model.Category
	var categoryType string
	var parentID sql.NullString
	if err := scan(
		&category.ID, &category.Name, &categoryType, &category.Icon,
		&category.Color, &parentID, &category.IsSystem,
	); err != nil {
		return nil, err
	}
	category.Type = model.CategoryType(categoryType)
	category.ParentID = parentID.String
	return &category, nil
}

func nullableString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

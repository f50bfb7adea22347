package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
)

// ExpectedSchemaVersion is the latest schema version that the application
// expects. If the database cannot be migrated to this version, it's a
// fatal error.
const ExpectedSchemaVersion = 2

// TransferCategoryID is the reserved sentinel category referenced by
// transfer transactions. It is seeded by migration and cannot be deleted.
const TransferCategoryID = "transfer"

// Migration represents a database schema migration.
type Migration struct {
	Up          func(*sql.Tx) error
	Description string
	Version     int
}

var migrations = []Migration{
	{
		Version:     1,
		Description: "Initial schema",
		Up: func(tx *sql.Tx) error {
			queries := []string{
				`CREATE TABLE IF NOT EXISTS accounts (
					id TEXT PRIMARY KEY,
					name TEXT NOT NULL,
					type TEXT NOT NULL,
					currency TEXT NOT NULL,
					initial_balance REAL NOT NULL DEFAULT 0,
					color TEXT NOT NULL DEFAULT '',
					archived BOOLEAN NOT NULL DEFAULT 0,
					created_at DATETIME NOT NULL,
					updated_at DATETIME NOT NULL
				)`,
				`CREATE INDEX idx_accounts_type ON accounts(type)`,
				`CREATE INDEX idx_accounts_archived ON accounts(archived)`,

				`CREATE TABLE IF NOT EXISTS categories (
					id TEXT PRIMARY KEY,
					name TEXT NOT NULL,
					type TEXT NOT NULL,
					icon TEXT NOT NULL DEFAULT '',
					color TEXT NOT NULL DEFAULT '',
					parent_id TEXT,
					is_system BOOLEAN NOT NULL DEFAULT 0
				)`,
				`CREATE INDEX idx_categories_type ON categories(type)`,
				`CREATE INDEX idx_categories_parent ON categories(parent_id)`,

				`CREATE TABLE IF NOT EXISTS transactions (
					id TEXT PRIMARY KEY,
					account_id TEXT NOT NULL,
					category_id TEXT NOT NULL,
					amount REAL NOT NULL CHECK (amount >= 0),
					type TEXT NOT NULL,
					date TEXT NOT NULL,
					note TEXT NOT NULL DEFAULT '',
					payee TEXT NOT NULL DEFAULT '',
					transfer_to_account_id TEXT,
					status TEXT NOT NULL DEFAULT 'CLEARED',
					created_at DATETIME NOT NULL,
					updated_at DATETIME NOT NULL
				)`,
				`CREATE INDEX idx_transactions_account ON transactions(account_id, date)`,
				`CREATE INDEX idx_transactions_category ON transactions(category_id, date)`,
				`CREATE INDEX idx_transactions_date ON transactions(date)`,
				`CREATE INDEX idx_transactions_transfer_to ON transactions(transfer_to_account_id)`,

				`CREATE TABLE IF NOT EXISTS budgets (
					id TEXT PRIMARY KEY,
					category_id TEXT NOT NULL,
					limit_amount REAL NOT NULL CHECK (limit_amount >= 0),
					period TEXT NOT NULL,
					scope TEXT NOT NULL,
					created_at DATETIME NOT NULL,
					updated_at DATETIME NOT NULL
				)`,
				`CREATE INDEX idx_budgets_category ON budgets(category_id)`,
				`CREATE INDEX idx_budgets_period_scope ON budgets(period, scope)`,

				`CREATE TABLE IF NOT EXISTS goals (
					id TEXT PRIMARY KEY,
					name TEXT NOT NULL,
					target_amount REAL NOT NULL,
					saved_amount REAL NOT NULL DEFAULT 0,
					deadline TEXT,
					color TEXT NOT NULL DEFAULT '',
					created_at DATETIME NOT NULL,
					updated_at DATETIME NOT NULL
				)`,
				`CREATE INDEX idx_goals_deadline ON goals(deadline)`,
			}

			for _, query := range queries {
				if _, err := tx.Exec(query); err != nil {
					return fmt.Errorf("failed to execute query: %w", err)
				}
			}
			return nil
		},
	},
	{
		Version:     2,
		Description: "Seed default categories",
		Up: func(tx *sql.Tx) error {
			// A restored backup brings its own categories; seed only a
			// fresh, empty table.
			var count int
			if err := tx.QueryRow(`SELECT COUNT(*) FROM categories`).Scan(&count); err != nil {
				return fmt.Errorf("failed to count categories: %w", err)
			}
			if count > 0 {
				return nil
			}

			defaults := []struct {
				id       string
				name     string
				ctype    string
				icon     string
				color    string
				isSystem bool
			}{
				{TransferCategoryID, "Transfer", "EXPENSE", "🔁", "#64748b", true},
				{uuid.NewString(), "General", "EXPENSE", "💸", "#94a3b8", true},
				{uuid.NewString(), "Comida", "EXPENSE", "🍔", "#ef4444", false},
				{uuid.NewString(), "Transporte", "EXPENSE", "🚗", "#f97316", false},
				{uuid.NewString(), "Vivienda", "EXPENSE", "🏠", "#3b82f6", false},
				{uuid.NewString(), "Salud", "EXPENSE", "💊", "#10b981", false},
				{uuid.NewString(), "Ocio", "EXPENSE", "🎉", "#8b5cf6", false},
				{uuid.NewString(), "Ingresos", "INCOME", "💰", "#22c55e", true},
			}

			stmt, err := tx.Prepare(`
				INSERT INTO categories (id, name, type, icon, color, is_system)
				VALUES (?, ?, ?, ?, ?, ?)
			`)
			if err != nil {
				return fmt.Errorf("failed to prepare seed statement: %w", err)
			}
			defer func() { _ = stmt.Close() }()

			for _, cat := range defaults {
				if _, err := stmt.Exec(cat.id, cat.name, cat.ctype, cat.icon, cat.color, cat.isSystem); err != nil {
					return fmt.Errorf("failed to seed category %s: %w", cat.name, err)
				}
			}

			slog.Info("Seeded default categories", "count", len(defaults))
			return nil
		},
	},
}

// Migrate applies all pending database migrations.
func (s *SQLiteStorage) Migrate(ctx context.Context) error {
	if err := validateContext(ctx); err != nil {
		return err
	}

	var currentVersion int
	err := s.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&currentVersion)
	if err != nil {
		return fmt.Errorf("failed to get schema version: %w", err)
	}

	for _, migration := range migrations {
		if migration.Version <= currentVersion {
			continue
		}

		tx, txErr := s.db.BeginTx(ctx, nil)
		if txErr != nil {
			return fmt.Errorf("failed to begin transaction: %w", txErr)
		}

		if upErr := migration.Up(tx); upErr != nil {
			_ = tx.Rollback()
			return fmt.Errorf("migration %d failed: %w", migration.Version, upErr)
		}

		if _, execErr := tx.Exec(fmt.Sprintf("PRAGMA user_version = %d", migration.Version)); execErr != nil {
			_ = tx.Rollback()
			return fmt.Errorf("failed to update schema version: %w", execErr)
		}

		if commitErr := tx.Commit(); commitErr != nil {
			return fmt.Errorf("failed to commit migration %d: %w", migration.Version, commitErr)
		}

		slog.Info("Applied migration",
			"version", migration.Version,
			"description", migration.Description)
	}

	var finalVersion int
	err = s.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&finalVersion)
	if err != nil {
		return fmt.Errorf("failed to verify final schema version: %w", err)
	}

	if finalVersion != ExpectedSchemaVersion {
		return fmt.Errorf("database schema version mismatch: expected %d, got %d", ExpectedSchemaVersion, finalVersion)
	}

	return nil
}

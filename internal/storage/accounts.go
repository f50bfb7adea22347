package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/finanza/finanza/internal/common"
	"github.com/finanza/finanza/internal/model"
)

// CreateAccount stores a new account, assigning its ID and timestamps.
func (s *SQLiteStorage) CreateAccount(ctx context.Context, account *model.Account) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	return s.createAccountTx(ctx, s.db, account)
}

func (s *SQLiteStorage) createAccountTx(ctx context.Context, q dbtx, account *model.Account) error {
	if err := validateAccount(account); err != nil {
		return err
	}

	if account.ID == "" {
		account.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	account.CreatedAt = now
	account.UpdatedAt = now

	_, err := q.ExecContext(ctx, `
		INSERT INTO accounts (id, name, type, currency, initial_balance, color, archived, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		account.ID, account.Name, string(account.Type), account.Currency,
		account.InitialBalance, account.Color, account.Archived,
		account.CreatedAt, account.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert account: %w", err)
	}

	slog.Debug("created account", "id", account.ID, "name", account.Name)
	return nil
}

// GetAccount retrieves an account by ID.
func (s *SQLiteStorage) GetAccount(ctx context.Context, id string) (*model.Account, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(id, "id"); err != nil {
		return nil, err
	}
	return s.getAccountTx(ctx, s.db, id)
}

func (s *SQLiteStorage) getAccountTx(ctx context.Context, q dbtx, id string) (*model.Account, error) {
	var account model.Account
	var accountType string
	err := q.QueryRowContext(ctx, `
		SELECT id, name, type, currency, initial_balance, color, archived, created_at, updated_at
		FROM accounts WHERE id = ?`, id,
	).Scan(
		&account.ID, &account.Name, &accountType, &account.Currency,
		&account.InitialBalance, &account.Color, &account.Archived,
		&account.CreatedAt, &account.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("account %s: %w", id, common.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query account: %w", err)
	}
	account.Type = model.AccountType(accountType)
	return &account, nil
}

// ListAccounts returns all accounts, hiding archived ones unless asked.
func (s *SQLiteStorage) ListAccounts(ctx context.Context, includeArchived bool) ([]model.Account, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return s.listAccountsTx(ctx, s.db, includeArchived)
}

func (s *SQLiteStorage) listAccountsTx(ctx context.Context, q dbtx, includeArchived bool) ([]model.Account, error) {
	query := `
		SELECT id, name, type, currency, initial_balance, color, archived, created_at, updated_at
		FROM accounts`
	if !includeArchived {
		query += ` WHERE archived = 0`
	}
	query += ` ORDER BY created_at, id`

	rows, err := q.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query accounts: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var accounts []model.Account
	for rows.Next() {
		var account model.Account
		var accountType string
		if err := rows.Scan(
			&account.ID, &account.Name, &accountType, &account.Currency,
			&account.InitialBalance, &account.Color, &account.Archived,
			&account.CreatedAt, &account.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan account: %w", err)
		}
		account.Type = model.AccountType(accountType)
		accounts = append(accounts, account)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating accounts: %w", err)
	}
	return accounts, nil
}

// UpdateAccount rewrites a stored account and refreshes its updated
// timestamp. The initial balance changes only through this explicit edit,
// never through postings.
func (s *SQLiteStorage) UpdateAccount(ctx context.Context, account *model.Account) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	return s.updateAccountTx(ctx, s.db, account)
}

func (s *SQLiteStorage) updateAccountTx(ctx context.Context, q dbtx, account *model.Account) error {
	if err := validateAccount(account); err != nil {
		return err
	}
	if err := validateString(account.ID, "account.ID"); err != nil {
		return err
	}

	account.UpdatedAt = time.Now().UTC()
	result, err := q.ExecContext(ctx, `
		UPDATE accounts
		SET name = ?, type = ?, currency = ?, initial_balance = ?, color = ?, archived = ?, updated_at = ?
		WHERE id = ?`,
		account.Name, string(account.Type), account.Currency, account.InitialBalance,
		account.Color, account.Archived, account.UpdatedAt, account.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update account: %w", err)
	}
	return requireRowAffected(result, "account", account.ID)
}

// ArchiveAccount soft-hides an account. Reversible via UpdateAccount.
func (s *SQLiteStorage) ArchiveAccount(ctx context.Context, id string) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(id, "id"); err != nil {
		return err
	}
	return s.archiveAccountTx(ctx, s.db, id)
}

func (s *SQLiteStorage) archiveAccountTx(ctx context.Context, q dbtx, id string) error {
	result, err := q.ExecContext(ctx, `
		UPDATE accounts SET archived = 1, updated_at = ? WHERE id = ?`,
		time.Now().UTC(), id,
	)
	if err != nil {
		return fmt.Errorf("failed to archive account: %w", err)
	}
	return requireRowAffected(result, "account", id)
}

// DeleteAccount hard-deletes an account together with every transaction
// it owns, in one storage transaction.
func (s *SQLiteStorage) DeleteAccount(ctx context.Context, id string) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(id, "id"); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := s.deleteAccountTx(ctx, tx, id); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *SQLiteStorage) deleteAccountTx(ctx context.Context, q dbtx, id string) error {
	result, err := q.ExecContext(ctx, `DELETE FROM transactions WHERE account_id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete account transactions: %w", err)
	}
	cascaded, _ := result.RowsAffected()

	result, err = q.ExecContext(ctx, `DELETE FROM accounts WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete account: %w", err)
	}
	if err := requireRowAffected(result, "account", id); err != nil {
		return err
	}

	slog.Info("deleted account", "id", id, "cascaded_transactions", cascaded)
	return nil
}

// requireRowAffected converts a zero-row write into ErrNotFound.
func requireRowAffected(result sql.Result, entity, id string) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%s %s: %w", entity, id, common.ErrNotFound)
	}
	return nil
}

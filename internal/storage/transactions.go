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
	"github.com/finanza/finanza/internal/service"
)

// CreateTransaction stores a new transaction, assigning its ID and
// timestamps.
func (s *SQLiteStorage) CreateTransaction(ctx context.Context, transaction *model.Transaction) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	return s.createTransactionTx(ctx, s.db, transaction)
}

func (s *SQLiteStorage) createTransactionTx(ctx context.Context, q dbtx, transaction *model.Transaction) error {
	if err := validateTransaction(transaction); err != nil {
		return err
	}

	if transaction.ID == "" {
		transaction.ID = uuid.NewString()
	}
	if transaction.Status == "" {
		transaction.Status = model.StatusCleared
	}
	now := time.Now().UTC()
	transaction.CreatedAt = now
	transaction.UpdatedAt = now

	return s.insertTransaction(ctx, q, transaction)
}

func (s *SQLiteStorage) insertTransaction(ctx context.Context, q dbtx, transaction *model.Transaction) error {
	_, err := q.ExecContext(ctx, `
		INSERT INTO transactions (
			id, account_id, category_id, amount, type, date,
			note, payee, transfer_to_account_id, status, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		transaction.ID, transaction.AccountID, transaction.CategoryID,
		transaction.Amount, string(transaction.Type), transaction.Date.String(),
		transaction.Note, transaction.Payee, nullableString(transaction.TransferToAccountID),
		string(transaction.Status), transaction.CreatedAt, transaction.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert transaction %s: %w", transaction.ID, err)
	}
	return nil
}

// SaveTransactions stores a batch of transactions in one storage
// transaction, assigning IDs and timestamps where missing. Used by bulk
// importers.
func (s *SQLiteStorage) SaveTransactions(ctx context.Context, transactions []model.Transaction) error {
	if err := validateContext(ctx); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := s.saveTransactionsTx(ctx, tx, transactions); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *SQLiteStorage) saveTransactionsTx(ctx context.Context, q dbtx, transactions []model.Transaction) error {
	for i := range transactions {
		if err := s.createTransactionTx(ctx, q, &transactions[i]); err != nil {
			return fmt.Errorf("transaction at index %d: %w", i, err)
		}
	}
	slog.Debug("saved transactions", "count", len(transactions))
	return nil
}

// GetTransaction retrieves a transaction by ID.
func (s *SQLiteStorage) GetTransaction(ctx context.Context, id string) (*model.Transaction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(id, "id"); err != nil {
		return nil, err
	}
	return s.getTransactionTx(ctx, s.db, id)
}

func (s *SQLiteStorage) getTransactionTx(ctx context.Context, q dbtx, id string) (*model.Transaction, error) {
	row := q.QueryRowContext(ctx, selectTransaction+` WHERE id = ?`, id)
	transaction, err := scanTransaction(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("transaction %s: %w", id, common.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query transaction: %w", err)
	}
	return transaction, nil
}

// ListTransactions returns transactions matching the filter, newest
// first. An AccountID filter matches both owned transactions and
// transfers into the account.
func (s *SQLiteStorage) ListTransactions(ctx context.Context, filter service.TransactionFilter) ([]model.Transaction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return s.listTransactionsTx(ctx, s.db, filter)
}

func (s *SQLiteStorage) listTransactionsTx(ctx context.Context, q dbtx, filter service.TransactionFilter) ([]model.Transaction, error) {
	query := selectTransaction + ` WHERE 1=1`
	args := []any{}

	if filter.AccountID != "" {
		query += ` AND (account_id = ? OR transfer_to_account_id = ?)`
		args = append(args, filter.AccountID, filter.AccountID)
	}
	if filter.CategoryID != "" {
		query += ` AND category_id = ?`
		args = append(args, filter.CategoryID)
	}
	if filter.StartDate != nil {
		query += ` AND date >= ?`
		args = append(args, filter.StartDate.String())
	}
	if filter.EndDate != nil {
		query += ` AND date <= ?`
		args = append(args, filter.EndDate.String())
	}

	query += ` ORDER BY date DESC, created_at DESC`
	if filter.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, filter.Limit)
	}

	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var transactions []model.Transaction
	for rows.Next() {
		transaction, err := scanTransaction(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		transactions = append(transactions, *transaction)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating transactions: %w", err)
	}
	return transactions, nil
}

// DeleteTransaction removes a single transaction.
func (s *SQLiteStorage) DeleteTransaction(ctx context.Context, id string) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(id, "id"); err != nil {
		return err
	}
	return s.deleteTransactionTx(ctx, s.db, id)
}

func (s *SQLiteStorage) deleteTransactionTx(ctx context.Context, q dbtx, id string) error {
	result, err := q.ExecContext(ctx, `DELETE FROM transactions WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete transaction: %w", err)
	}
	return requireRowAffected(result, "transaction", id)
}

const selectTransaction = `
	SELECT id, account_id, category_id, amount, type, date,
	       note, payee, transfer_to_account_id, status, created_at, updated_at
	FROM transactions`

func scanTransaction(scan func(...any) error) (*model.Transaction, error) {
	var transaction model.Transaction
	var transactionType, status, date string
	var transferTo sql.NullString
	if err := scan(
		&transaction.ID, &transaction.AccountID, &transaction.CategoryID,
		&transaction.Amount, &transactionType, &date,
		&transaction.Note, &transaction.Payee, &transferTo, &status,
		&transaction.CreatedAt, &transaction.UpdatedAt,
	); err != nil {
		return nil, err
	}

	parsed, err := model.ParseDate(date)
	if err != nil {
		return nil, fmt.Errorf("stored date: %w", err)
	}
	transaction.Date = parsed
	transaction.Type = model.TransactionType(transactionType)
	transaction.Status = model.TransactionStatus(status)
	transaction.TransferToAccountID = transferTo.String
	return &transaction, nil
}

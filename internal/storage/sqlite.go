package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"github.com/finanza/finanza/internal/model"
	"github.com/finanza/finanza/internal/service"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// dbtx abstracts *sql.DB and *sql.Tx so every operation can run either
// standalone or inside a storage transaction.
type dbtx interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// SQLiteStorage implements the service.Storage interface using SQLite.
type SQLiteStorage struct {
	db     *sql.DB
	dbPath string
}

// NewSQLiteStorage creates a new SQLite storage instance.
func NewSQLiteStorage(dbPath string) (*SQLiteStorage, error) {
	if err := validateString(dbPath, "dbPath"); err != nil {
		return nil, err
	}

	// Ensure directory exists
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite doesn't benefit from multiple connections
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &SQLiteStorage{
		db:     db,
		dbPath: dbPath,
	}, nil
}

// Close closes the database connection.
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}

// BeginTx starts a new database transaction.
func (s *SQLiteStorage) BeginTx(ctx context.Context) (service.Transaction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}

	return &sqliteTransaction{
		tx:      tx,
		storage: s,
	}, nil
}

// sqliteTransaction wraps sql.Tx to implement service.Transaction. All
// operations delegate to the storage helpers with the transaction handle.
type sqliteTransaction struct {
	tx      *sql.Tx
	storage *SQLiteStorage
}

func (t *sqliteTransaction) Commit() error {
	return t.tx.Commit()
}

func (t *sqliteTransaction) Rollback() error {
	return t.tx.Rollback()
}

func (t *sqliteTransaction) CreateAccount(ctx context.Context, account *model.Account) error {
	return t.storage.createAccountTx(ctx, t.tx, account)
}

func (t *sqliteTransaction) GetAccount(ctx context.Context, id string) (*model.Account, error) {
	return t.storage.getAccountTx(ctx, t.tx, id)
}

func (t *sqliteTransaction) ListAccounts(ctx context.Context, includeArchived bool) ([]model.Account, error) {
	return t.storage.listAccountsTx(ctx, t.tx, includeArchived)
}

func (t *sqliteTransaction) UpdateAccount(ctx context.Context, account *model.Account) error {
	return t.storage.updateAccountTx(ctx, t.tx, account)
}

func (t *sqliteTransaction) ArchiveAccount(ctx context.Context, id string) error {
	return t.storage.archiveAccountTx(ctx, t.tx, id)
}

func (t *sqliteTransaction) DeleteAccount(ctx context.Context, id string) error {
	return t.storage.deleteAccountTx(ctx, t.tx, id)
}

func (t *sqliteTransaction) CreateCategory(ctx context.Context, category *model.Category) error {
	return t.storage.createCategoryTx(ctx, t.tx, category)
}

func (t *sqliteTransaction) GetCategory(ctx context.Context, id string) (*model.Category, error) {
	return t.storage.getCategoryTx(ctx, t.tx, id)
}

func (t *sqliteTransaction) ListCategories(ctx context.Context) ([]model.Category, error) {
	return t.storage.listCategoriesTx(ctx, t.tx)
}

func (t *sqliteTransaction) UpdateCategory(ctx context.Context, category *model.Category) error {
	return t.storage.updateCategoryTx(ctx, t.tx, category)
}

func (t *sqliteTransaction) DeleteCategory(ctx context.Context, id string) error {
	return t.storage.deleteCategoryTx(ctx, t.tx, id)
}

func (t *sqliteTransaction) CreateTransaction(ctx context.Context, transaction *model.Transaction) error {
	return t.storage.createTransactionTx(ctx, t.tx, transaction)
}

func (t *sqliteTransaction) GetTransaction(ctx context.Context, id string) (*model.Transaction, error) {
	return t.storage.getTransactionTx(ctx, t.tx, id)
}

func (t *sqliteTransaction) ListTransactions(ctx context.Context, filter service.TransactionFilter) ([]model.Transaction, error) {
	return t.storage.listTransactionsTx(ctx, t.tx, filter)
}

func (t *sqliteTransaction) SaveTransactions(ctx context.Context, transactions []model.Transaction) error {
	return t.storage.saveTransactionsTx(ctx, t.tx, transactions)
}

func (t *sqliteTransaction) DeleteTransaction(ctx context.Context, id string) error {
	return t.storage.deleteTransactionTx(ctx, t.tx, id)
}

func (t *sqliteTransaction) CreateBudget(ctx context.Context, budget *model.Budget) error {
	return t.storage.createBudgetTx(ctx, t.tx, budget)
}

func (t *sqliteTransaction) GetBudget(ctx context.Context, id string) (*model.Budget, error) {
	return t.storage.getBudgetTx(ctx, t.tx, id)
}

func (t *sqliteTransaction) ListBudgets(ctx context.Context) ([]model.Budget, error) {
	return t.storage.listBudgetsTx(ctx, t.tx)
}

func (t *sqliteTransaction) UpdateBudget(ctx context.Context, budget *model.Budget) error {
	return t.storage.updateBudgetTx(ctx, t.tx, budget)
}

func (t *sqliteTransaction) DeleteBudget(ctx context.Context, id string) error {
	return t.storage.deleteBudgetTx(ctx, t.tx, id)
}

func (t *sqliteTransaction) CreateGoal(ctx context.Context, goal *model.Goal) error {
	return t.storage.createGoalTx(ctx, t.tx, goal)
}

func (t *sqliteTransaction) GetGoal(ctx context.Context, id string) (*model.Goal, error) {
	return t.storage.getGoalTx(ctx, t.tx, id)
}

func (t *sqliteTransaction) ListGoals(ctx context.Context) ([]model.Goal, error) {
	return t.storage.listGoalsTx(ctx, t.tx)
}

func (t *sqliteTransaction) UpdateGoal(ctx context.Context, goal *model.Goal) error {
	return t.storage.updateGoalTx(ctx, t.tx, goal)
}

func (t *sqliteTransaction) DeleteGoal(ctx context.Context, id string) error {
	return t.storage.deleteGoalTx(ctx, t.tx, id)
}

func (t *sqliteTransaction) Export(ctx context.Context) (*service.Snapshot, error) {
	return t.storage.exportTx(ctx, t.tx)
}

func (t *sqliteTransaction) ReplaceAll(ctx context.Context, snapshot *service.Snapshot) error {
	return t.storage.replaceAllTx(ctx, t.tx, snapshot)
}

func (t *sqliteTransaction) Migrate(_ context.Context) error {
	// Migrations should not be run within a transaction
	return fmt.Errorf("migrations cannot be run within a transaction")
}

func (t *sqliteTransaction) BeginTx(_ context.Context) (service.Transaction, error) {
	// Nested transactions not supported
	return nil, fmt.Errorf("nested transactions not supported")
}

func (t *sqliteTransaction) Close() error {
	// Transactions should be committed or rolled back, not closed
	return fmt.Errorf("transactions must be committed or rolled back, not closed")
}

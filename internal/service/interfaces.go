// Package service defines the interfaces between the application and its
// persistence layer. Callers construct a concrete store and pass it down
// explicitly; nothing in the repository holds a process-wide store handle.
package service

import (
	"context"

	"github.com/finanza/finanza/internal/model"
)

// TransactionFilter defines filtering options for transaction queries.
// AccountID matches transactions owning the account or transferring into
// it. Date bounds are inclusive.
type TransactionFilter struct {
	StartDate  *model.Date
	EndDate    *model.Date
	AccountID  string
	CategoryID string
	Limit      int
}

// Snapshot is the full contents of all five entity tables, as gathered
// for export and applied on restore.
type Snapshot struct {
	Accounts     []model.Account
	Transactions []model.Transaction
	Categories   []model.Category
	Budgets      []model.Budget
	Goals        []model.Goal
}

// Storage defines the contract for the record store. Create methods
// assign identity and timestamps; update methods refresh the updated
// timestamp.
type Storage interface {
	// Account operations.
	CreateAccount(ctx context.Context, account *model.Account) error
	GetAccount(ctx context.Context, id string) (*model.Account, error)
	ListAccounts(ctx context.Context, includeArchived bool) ([]model.Account, error)
	UpdateAccount(ctx context.Context, account *model.Account) error
	ArchiveAccount(ctx context.Context, id string) error
	// DeleteAccount removes the account and every transaction it owns in
	// one storage transaction. Distinct from ArchiveAccount, which is a
	// reversible hide.
	DeleteAccount(ctx context.Context, id string) error

	// Category operations. DeleteCategory never cascades; orphaned
	// transactions resolve to a display fallback at read time. System
	// categories refuse deletion.
	CreateCategory(ctx context.Context, category *model.Category) error
	GetCategory(ctx context.Context, id string) (*model.Category, error)
	ListCategories(ctx context.Context) ([]model.Category, error)
	UpdateCategory(ctx context.Context, category *model.Category) error
	DeleteCategory(ctx context.Context, id string) error

	// Transaction operations.
	CreateTransaction(ctx context.Context, transaction *model.Transaction) error
	GetTransaction(ctx context.Context, id string) (*model.Transaction, error)
	ListTransactions(ctx context.Context, filter TransactionFilter) ([]model.Transaction, error)
	SaveTransactions(ctx context.Context, transactions []model.Transaction) error
	DeleteTransaction(ctx context.Context, id string) error

	// Budget operations.
	CreateBudget(ctx context.Context, budget *model.Budget) error
	GetBudget(ctx context.Context, id string) (*model.Budget, error)
	ListBudgets(ctx context.Context) ([]model.Budget, error)
	UpdateBudget(ctx context.Context, budget *model.Budget) error
	DeleteBudget(ctx context.Context, id string) error

	// Goal operations.
	CreateGoal(ctx context.Context, goal *model.Goal) error
	GetGoal(ctx context.Context, id string) (*model.Goal, error)
	ListGoals(ctx context.Context) ([]model.Goal, error)
	UpdateGoal(ctx context.Context, goal *model.Goal) error
	DeleteGoal(ctx context.Context, id string) error

	// Export gathers the full contents of all five tables in one read
	// transaction.
	Export(ctx context.Context) (*Snapshot, error)
	// ReplaceAll clears all five tables and bulk-inserts the snapshot in
	// one storage transaction; a failure partway through leaves the prior
	// state intact, and concurrent readers never observe the cleared
	// intermediate state.
	ReplaceAll(ctx context.Context, snapshot *Snapshot) error

	// Database management.
	Migrate(ctx context.Context) error
	BeginTx(ctx context.Context) (Transaction, error)
	Close() error
}

// Transaction represents a storage transaction.
type Transaction interface {
	Commit() error
	Rollback() error
	// Include all Storage methods for use within the transaction.
	Storage
}

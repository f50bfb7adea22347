package storage

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finanza/finanza/internal/common"
	"github.com/finanza/finanza/internal/model"
	"github.com/finanza/finanza/internal/service"
)

// newTestStorage creates a migrated store backed by a temp file.
func newTestStorage(t *testing.T) *SQLiteStorage {
	t.Helper()

	store, err := NewSQLiteStorage(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	require.NoError(t, store.Migrate(context.Background()))
	return store
}

func mustAccount(t *testing.T, store *SQLiteStorage, name string, accountType model.AccountType, initialBalance float64) *model.Account {
	t.Helper()
	account, err := model.NewAccount(name, accountType, "USD", initialBalance, "#3b82f6")
	require.NoError(t, err)
	require.NoError(t, store.CreateAccount(context.Background(), account))
	return account
}

func TestSQLiteStorage_AccountLifecycle(t *testing.T) {
	store := newTestStorage(t)
	ctx := context.Background()

	account := mustAccount(t, store, "Checking", model.AccountBank, 1000)
	assert.NotEmpty(t, account.ID)
	assert.False(t, account.CreatedAt.IsZero())

	got, err := store.GetAccount(ctx, account.ID)
	require.NoError(t, err)
	assert.Equal(t, "Checking", got.Name)
	assert.Equal(t, model.AccountBank, got.Type)
	assert.InDelta(t, 1000, got.InitialBalance, 1e-9)

	got.Name = "Main Checking"
	require.NoError(t, store.UpdateAccount(ctx, got))
	updated, err := store.GetAccount(ctx, account.ID)
	require.NoError(t, err)
	assert.Equal(t, "Main Checking", updated.Name)
	assert.False(t, updated.UpdatedAt.Before(updated.CreatedAt))

	_, err = store.GetAccount(ctx, "missing")
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestSQLiteStorage_ArchiveHidesAccountFromDefaultList(t *testing.T) {
	store := newTestStorage(t)
	ctx := context.Background()

	keep := mustAccount(t, store, "Keep", model.AccountBank, 0)
	hide := mustAccount(t, store, "Hide", model.AccountCash, 0)

	require.NoError(t, store.ArchiveAccount(ctx, hide.ID))

	visible, err := store.ListAccounts(ctx, false)
	require.NoError(t, err)
	require.Len(t, visible, 1)
	assert.Equal(t, keep.ID, visible[0].ID)

	all, err := store.ListAccounts(ctx, true)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestSQLiteStorage_DeleteAccountCascadesToOwnedTransactions(t *testing.T) {
	store := newTestStorage(t)
	ctx := context.Background()

	doomed := mustAccount(t, store, "Doomed", model.AccountBank, 100)
	survivor := mustAccount(t, store, "Survivor", model.AccountBank, 100)

	owned, err := model.NewTransaction(doomed.ID, TransferCategoryID, 10, model.TypeExpense, model.NewDate(2024, 1, 1), "")
	require.NoError(t, err)
	require.NoError(t, store.CreateTransaction(ctx, owned))

	// A transfer INTO the doomed account is owned by the survivor and
	// must not be cascaded.
	incoming, err := model.NewTransfer(survivor.ID, doomed.ID, TransferCategoryID, 20, model.NewDate(2024, 1, 2), "")
	require.NoError(t, err)
	require.NoError(t, store.CreateTransaction(ctx, incoming))

	require.NoError(t, store.DeleteAccount(ctx, doomed.ID))

	_, err = store.GetAccount(ctx, doomed.ID)
	assert.ErrorIs(t, err, common.ErrNotFound)

	_, err = store.GetTransaction(ctx, owned.ID)
	assert.ErrorIs(t, err, common.ErrNotFound)

	kept, err := store.GetTransaction(ctx, incoming.ID)
	require.NoError(t, err)
	assert.Equal(t, survivor.ID, kept.AccountID)
}

func TestSQLiteStorage_SeedsDefaultCategories(t *testing.T) {
	store := newTestStorage(t)

	categories, err := store.ListCategories(context.Background())
	require.NoError(t, err)
	require.NotEmpty(t, categories)

	names := make(map[string]model.Category, len(categories))
	for _, cat := range categories {
		names[cat.Name] = cat
	}

	transfer, ok := names["Transfer"]
	require.True(t, ok, "transfer sentinel must be seeded")
	assert.Equal(t, TransferCategoryID, transfer.ID)
	assert.True(t, transfer.IsSystem)

	income, ok := names["Ingresos"]
	require.True(t, ok)
	assert.Equal(t, model.CategoryIncome, income.Type)
}

func TestSQLiteStorage_DeleteCategory(t *testing.T) {
	store := newTestStorage(t)
	ctx := context.Background()

	category, err := model.NewCategory("Suscripciones", model.CategoryExpense, "📺", "#a855f7")
	require.NoError(t, err)
	require.NoError(t, store.CreateCategory(ctx, category))

	// Deleting a category does not cascade to its transactions.
	account := mustAccount(t, store, "Checking", model.AccountBank, 0)
	tx, err := model.NewTransaction(account.ID, category.ID, 9.99, model.TypeExpense, model.NewDate(2024, 3, 1), "netflix")
	require.NoError(t, err)
	require.NoError(t, store.CreateTransaction(ctx, tx))

	require.NoError(t, store.DeleteCategory(ctx, category.ID))

	orphan, err := store.GetTransaction(ctx, tx.ID)
	require.NoError(t, err)
	assert.Equal(t, category.ID, orphan.CategoryID, "orphaned transaction keeps its category id")

	// System categories refuse deletion.
	err = store.DeleteCategory(ctx, TransferCategoryID)
	assert.ErrorIs(t, err, common.ErrSystemCategory)
}

func TestSQLiteStorage_TransactionValidationAtWrite(t *testing.T) {
	store := newTestStorage(t)
	ctx := context.Background()

	account := mustAccount(t, store, "Checking", model.AccountBank, 0)

	tests := []struct {
		name        string
		transaction *model.Transaction
	}{
		{
			name: "negative amount",
			transaction: &model.Transaction{
				AccountID: account.ID, CategoryID: "c", Amount: -5,
				Type: model.TypeExpense, Date: model.NewDate(2024, 1, 1),
			},
		},
		{
			name: "transfer without destination",
			transaction: &model.Transaction{
				AccountID: account.ID, CategoryID: "c", Amount: 5,
				Type: model.TypeTransfer, Date: model.NewDate(2024, 1, 1),
			},
		},
		{
			name: "transfer to itself",
			transaction: &model.Transaction{
				AccountID: account.ID, TransferToAccountID: account.ID,
				CategoryID: "c", Amount: 5,
				Type: model.TypeTransfer, Date: model.NewDate(2024, 1, 1),
			},
		},
		{
			name: "unknown type",
			transaction: &model.Transaction{
				AccountID: account.ID, CategoryID: "c", Amount: 5,
				Type: "REFUND", Date: model.NewDate(2024, 1, 1),
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := store.CreateTransaction(ctx, tt.transaction)
			assert.ErrorIs(t, err, model.ErrValidation)
		})
	}
}

func TestSQLiteStorage_ListTransactionsFilters(t *testing.T) {
	store := newTestStorage(t)
	ctx := context.Background()

	checking := mustAccount(t, store, "Checking", model.AccountBank, 1000)
	savings := mustAccount(t, store, "Savings", model.AccountBank, 0)

	expense, err := model.NewTransaction(checking.ID, TransferCategoryID, 50, model.TypeExpense, model.NewDate(2024, 1, 10), "")
	require.NoError(t, err)
	require.NoError(t, store.CreateTransaction(ctx, expense))

	transfer, err := model.NewTransfer(checking.ID, savings.ID, TransferCategoryID, 300, model.NewDate(2024, 1, 20), "")
	require.NoError(t, err)
	require.NoError(t, store.CreateTransaction(ctx, transfer))

	late, err := model.NewTransaction(checking.ID, TransferCategoryID, 75, model.TypeExpense, model.NewDate(2024, 2, 5), "")
	require.NoError(t, err)
	require.NoError(t, store.CreateTransaction(ctx, late))

	// Account filter sees transfers into the account too.
	forSavings, err := store.ListTransactions(ctx, service.TransactionFilter{AccountID: savings.ID})
	require.NoError(t, err)
	require.Len(t, forSavings, 1)
	assert.Equal(t, transfer.ID, forSavings[0].ID)

	// Date window is inclusive on both boundaries.
	start := model.NewDate(2024, 1, 10)
	end := model.NewDate(2024, 1, 20)
	january, err := store.ListTransactions(ctx, service.TransactionFilter{StartDate: &start, EndDate: &end})
	require.NoError(t, err)
	assert.Len(t, january, 2)

	// Limit returns the newest entries.
	recent, err := store.ListTransactions(ctx, service.TransactionFilter{Limit: 1})
	require.NoError(t, err)
	require.Len(t, recent, 1)
	assert.Equal(t, late.ID, recent[0].ID)
}

func TestSQLiteStorage_BudgetAndGoalLifecycle(t *testing.T) {
	store := newTestStorage(t)
	ctx := context.Background()

	budget, err := model.NewBudget("dining", 500, model.PeriodMonthly, "2024-01")
	require.NoError(t, err)
	require.NoError(t, store.CreateBudget(ctx, budget))

	budget.Limit = 650
	require.NoError(t, store.UpdateBudget(ctx, budget))
	gotBudget, err := store.GetBudget(ctx, budget.ID)
	require.NoError(t, err)
	assert.InDelta(t, 650, gotBudget.Limit, 1e-9)

	deadline := model.NewDate(2025, 12, 31)
	goal, err := model.NewGoal("Vacaciones", 3000, &deadline, "#22c55e")
	require.NoError(t, err)
	require.NoError(t, store.CreateGoal(ctx, goal))

	goal.SavedAmount = 450
	require.NoError(t, store.UpdateGoal(ctx, goal))
	gotGoal, err := store.GetGoal(ctx, goal.ID)
	require.NoError(t, err)
	assert.InDelta(t, 450, gotGoal.SavedAmount, 1e-9)
	require.NotNil(t, gotGoal.Deadline)
	assert.Equal(t, "2025-12-31", gotGoal.Deadline.String())

	require.NoError(t, store.DeleteBudget(ctx, budget.ID))
	require.NoError(t, store.DeleteGoal(ctx, goal.ID))
	_, err = store.GetBudget(ctx, budget.ID)
	assert.ErrorIs(t, err, common.ErrNotFound)
}

package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finanza/finanza/internal/model"
	"github.com/finanza/finanza/internal/service"
)

func populatedTestStorage(t *testing.T) (*SQLiteStorage, *service.Snapshot) {
	t.Helper()
	store := newTestStorage(t)
	ctx := context.Background()

	checking := mustAccount(t, store, "Checking", model.AccountBank, 1000)
	savings := mustAccount(t, store, "Savings", model.AccountBank, 0)

	expense, err := model.NewTransaction(checking.ID, TransferCategoryID, 200, model.TypeExpense, model.NewDate(2024, 1, 10), "groceries")
	require.NoError(t, err)
	require.NoError(t, store.CreateTransaction(ctx, expense))

	transfer, err := model.NewTransfer(checking.ID, savings.ID, TransferCategoryID, 300, model.NewDate(2024, 1, 15), "")
	require.NoError(t, err)
	require.NoError(t, store.CreateTransaction(ctx, transfer))

	budget, err := model.NewBudget(TransferCategoryID, 500, model.PeriodMonthly, "2024-01")
	require.NoError(t, err)
	require.NoError(t, store.CreateBudget(ctx, budget))

	goal, err := model.NewGoal("Emergency fund", 10000, nil, "#f59e0b")
	require.NoError(t, err)
	require.NoError(t, store.CreateGoal(ctx, goal))

	snapshot, err := store.Export(ctx)
	require.NoError(t, err)
	return store, snapshot
}

func TestSQLiteStorage_ExportReplaceAllRoundTrip(t *testing.T) {
	_, snapshot := populatedTestStorage(t)

	// Restore into a brand-new store and compare field for field.
	target := newTestStorage(t)
	ctx := context.Background()
	require.NoError(t, target.ReplaceAll(ctx, snapshot))

	restored, err := target.Export(ctx)
	require.NoError(t, err)

	assert.Equal(t, snapshot.Accounts, restored.Accounts)
	assert.Equal(t, snapshot.Transactions, restored.Transactions)
	assert.Equal(t, snapshot.Categories, restored.Categories)
	assert.Equal(t, snapshot.Budgets, restored.Budgets)
	assert.Equal(t, snapshot.Goals, restored.Goals)
}

func TestSQLiteStorage_ReplaceAllDropsPriorContents(t *testing.T) {
	store, snapshot := populatedTestStorage(t)
	ctx := context.Background()

	extra := mustAccount(t, store, "Post-snapshot", model.AccountCash, 42)
	require.NoError(t, store.ReplaceAll(ctx, snapshot))

	accounts, err := store.ListAccounts(ctx, true)
	require.NoError(t, err)
	for _, account := range accounts {
		assert.NotEqual(t, extra.ID, account.ID, "pre-restore rows must be gone")
	}
	assert.Len(t, accounts, len(snapshot.Accounts))
}

func TestSQLiteStorage_ReplaceAllRollsBackOnFailure(t *testing.T) {
	store, snapshot := populatedTestStorage(t)
	ctx := context.Background()

	before, err := store.Export(ctx)
	require.NoError(t, err)

	// Duplicate primary keys make the bulk insert fail partway through.
	bad := *snapshot
	bad.Accounts = append(append([]model.Account{}, snapshot.Accounts...), snapshot.Accounts[0])

	err = store.ReplaceAll(ctx, &bad)
	require.Error(t, err)

	after, err := store.Export(ctx)
	require.NoError(t, err)
	assert.Equal(t, before, after, "failed restore must leave the store untouched")
}

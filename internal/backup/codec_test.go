package backup_test

import (
	"context"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finanza/finanza/internal/backup"
	"github.com/finanza/finanza/internal/model"
	"github.com/finanza/finanza/internal/storage"
)

func newTestStore(t *testing.T) *storage.SQLiteStorage {
	t.Helper()
	store, err := storage.NewSQLiteStorage(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	require.NoError(t, store.Migrate(context.Background()))
	return store
}

func populate(t *testing.T, store *storage.SQLiteStorage) {
	t.Helper()
	ctx := context.Background()

	checking, err := model.NewAccount("Checking", model.AccountBank, "USD", 1000, "#3b82f6")
	require.NoError(t, err)
	require.NoError(t, store.CreateAccount(ctx, checking))

	savings, err := model.NewAccount("Savings", model.AccountBank, "USD", 0, "#22c55e")
	require.NoError(t, err)
	require.NoError(t, store.CreateAccount(ctx, savings))

	expense, err := model.NewTransaction(checking.ID, storage.TransferCategoryID, 200, model.TypeExpense, model.NewDate(2024, 1, 10), "groceries")
	require.NoError(t, err)
	require.NoError(t, store.CreateTransaction(ctx, expense))

	transfer, err := model.NewTransfer(checking.ID, savings.ID, storage.TransferCategoryID, 300, model.NewDate(2024, 1, 15), "monthly savings")
	require.NoError(t, err)
	require.NoError(t, store.CreateTransaction(ctx, transfer))

	budget, err := model.NewBudget(storage.TransferCategoryID, 500, model.PeriodMonthly, "2024-01")
	require.NoError(t, err)
	require.NoError(t, store.CreateBudget(ctx, budget))

	deadline := model.NewDate(2025, 6, 30)
	goal, err := model.NewGoal("Vacaciones", 3000, &deadline, "#f59e0b")
	require.NoError(t, err)
	require.NoError(t, store.CreateGoal(ctx, goal))
}

func TestCodec_RoundTripPlaintext(t *testing.T) {
	ctx := context.Background()
	source := newTestStore(t)
	populate(t, source)

	codec := backup.NewCodec(source, backup.NewCryptor())
	raw, err := codec.Export(ctx, "")
	require.NoError(t, err)

	// The plaintext document is self-describing.
	var document backup.Document
	require.NoError(t, json.Unmarshal(raw, &document))
	assert.Equal(t, backup.AppID, document.Meta.App)
	assert.Equal(t, backup.SchemaVersion, document.Meta.Version)

	target := newTestStore(t)
	targetCodec := backup.NewCodec(target, backup.NewCryptor())
	require.NoError(t, targetCodec.Restore(ctx, raw, ""))

	want, err := source.Export(ctx)
	require.NoError(t, err)
	got, err := target.Export(ctx)
	require.NoError(t, err)

	assert.Equal(t, want.Accounts, got.Accounts)
	assert.Equal(t, want.Transactions, got.Transactions)
	assert.Equal(t, want.Categories, got.Categories)
	assert.Equal(t, want.Budgets, got.Budgets)
	assert.Equal(t, want.Goals, got.Goals)
}

func TestCodec_RoundTripEncrypted(t *testing.T) {
	ctx := context.Background()
	source := newTestStore(t)
	populate(t, source)

	codec := backup.NewCodec(source, backup.NewCryptor())
	raw, err := codec.Export(ctx, "hunter2")
	require.NoError(t, err)

	// The artifact is an envelope, with no plaintext leaking through.
	var envelope backup.Envelope
	require.NoError(t, json.Unmarshal(raw, &envelope))
	assert.Equal(t, backup.AlgorithmID, envelope.Encryption)
	assert.NotEmpty(t, envelope.IV)
	assert.NotEmpty(t, envelope.Salt)
	assert.NotContains(t, string(raw), "Checking")

	target := newTestStore(t)
	targetCodec := backup.NewCodec(target, backup.NewCryptor())
	require.NoError(t, targetCodec.Restore(ctx, raw, "hunter2"))

	want, err := source.Export(ctx)
	require.NoError(t, err)
	got, err := target.Export(ctx)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestCodec_FreshSaltAndNoncePerExport(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	populate(t, store)
	codec := backup.NewCodec(store, backup.NewCryptor())

	first, err := codec.Export(ctx, "pw")
	require.NoError(t, err)
	second, err := codec.Export(ctx, "pw")
	require.NoError(t, err)

	var a, b backup.Envelope
	require.NoError(t, json.Unmarshal(first, &a))
	require.NoError(t, json.Unmarshal(second, &b))
	assert.NotEqual(t, a.IV, b.IV)
	assert.NotEqual(t, a.Salt, b.Salt)
}

func TestCodec_WrongPasswordLeavesStoreUntouched(t *testing.T) {
	ctx := context.Background()
	source := newTestStore(t)
	populate(t, source)
	raw, err := backup.NewCodec(source, backup.NewCryptor()).Export(ctx, "correct")
	require.NoError(t, err)

	target := newTestStore(t)
	populate(t, target)
	before, err := target.Export(ctx)
	require.NoError(t, err)

	err = backup.NewCodec(target, backup.NewCryptor()).Restore(ctx, raw, "incorrect")
	assert.ErrorIs(t, err, backup.ErrDecryptionFailed)

	after, err := target.Export(ctx)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestCodec_EncryptedWithoutPassword(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	populate(t, store)
	codec := backup.NewCodec(store, backup.NewCryptor())

	raw, err := codec.Export(ctx, "secret")
	require.NoError(t, err)

	err = codec.Restore(ctx, raw, "")
	assert.ErrorIs(t, err, backup.ErrPasswordRequired)

	// The caller may retry the same bytes once it has a password.
	require.NoError(t, codec.Restore(ctx, raw, "secret"))
}

func TestCodec_RejectsForeignDocuments(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	codec := backup.NewCodec(store, backup.NewCryptor())

	before, err := store.Export(ctx)
	require.NoError(t, err)

	tests := []struct {
		name string
		raw  string
	}{
		{
			name: "wrong app tag",
			raw:  `{"meta":{"version":1,"app":"OtherApp","timestamp":"2024-01-01T00:00:00Z"},"data":{}}`,
		},
		{
			name: "unsupported future version",
			raw:  `{"meta":{"version":99,"app":"Finanza","timestamp":"2024-01-01T00:00:00Z"},"data":{}}`,
		},
		{
			name: "missing meta",
			raw:  `{"data":{"accounts":[]}}`,
		},
		{
			name: "not json",
			raw:  `definitely not a backup`,
		},
		{
			name: "malformed entity",
			raw:  `{"meta":{"version":1,"app":"Finanza","timestamp":"2024-01-01T00:00:00Z"},"data":{"accounts":[{"id":"a1","name":"","type":"BANK"}]}}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := codec.Restore(ctx, []byte(tt.raw), "")
			assert.ErrorIs(t, err, backup.ErrBackupFormatInvalid)
		})
	}

	after, err := store.Export(ctx)
	require.NoError(t, err)
	assert.Equal(t, before, after, "rejected documents must not touch storage")
}

func TestFilename(t *testing.T) {
	at := time.Date(2024, 3, 5, 14, 30, 0, 0, time.UTC)
	assert.Equal(t, "finanza_backup_2024-03-05_14-30.json", backup.Filename(at, false))
	assert.Equal(t, "finanza_backup_2024-03-05_14-30.enc.json", backup.Filename(at, true))
}

func TestRestore_SniffsContentNotExtension(t *testing.T) {
	// An encrypted payload hidden behind a .json name must still be
	// detected as encrypted.
	ctx := context.Background()
	store := newTestStore(t)
	populate(t, store)
	codec := backup.NewCodec(store, backup.NewCryptor())

	raw, err := codec.Export(ctx, "pw")
	require.NoError(t, err)
	require.False(t, strings.Contains(string(raw), `"meta"`))

	err = codec.Restore(ctx, raw, "")
	assert.ErrorIs(t, err, backup.ErrPasswordRequired)
}

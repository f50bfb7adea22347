package model

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDate(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{name: "plain calendar day", input: "2024-01-15", want: "2024-01-15"},
		{name: "full timestamp from older backups", input: "2024-01-15T10:30:00Z", want: "2024-01-15"},
		{name: "timestamp with offset", input: "2024-01-15T23:30:00-05:00", want: "2024-01-15"},
		{name: "garbage", input: "15/01/2024", wantErr: true},
		{name: "empty", input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseDate(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.String())
		})
	}
}

func TestDate_In(t *testing.T) {
	start := NewDate(2024, 1, 1)
	end := NewDate(2024, 1, 31)

	assert.True(t, NewDate(2024, 1, 1).In(start, end), "start boundary is inclusive")
	assert.True(t, NewDate(2024, 1, 31).In(start, end), "end boundary is inclusive")
	assert.True(t, NewDate(2024, 1, 15).In(start, end))
	assert.False(t, NewDate(2023, 12, 31).In(start, end))
	assert.False(t, NewDate(2024, 2, 1).In(start, end))
}

func TestTransactionJSONWireFormat(t *testing.T) {
	// Field names are the backup wire format; existing backups depend on
	// them.
	tx := Transaction{
		ID:                  "t1",
		AccountID:           "a1",
		CategoryID:          "c1",
		Amount:              12.5,
		Type:                TypeTransfer,
		TransferToAccountID: "a2",
		Status:              StatusCleared,
		Date:                NewDate(2024, 1, 15),
		CreatedAt:           time.Date(2024, 1, 15, 9, 0, 0, 0, time.UTC),
		UpdatedAt:           time.Date(2024, 1, 15, 9, 0, 0, 0, time.UTC),
	}

	raw, err := json.Marshal(tx)
	require.NoError(t, err)

	var fields map[string]any
	require.NoError(t, json.Unmarshal(raw, &fields))
	for _, key := range []string{"id", "accountId", "categoryId", "amount", "type", "date", "transferToAccountId", "status", "createdAt", "updatedAt"} {
		assert.Contains(t, fields, key)
	}
	assert.Equal(t, "2024-01-15", fields["date"])

	var decoded Transaction
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, tx, decoded)
}

func TestNewTransfer_Validation(t *testing.T) {
	date := NewDate(2024, 1, 1)

	_, err := NewTransfer("a1", "a1", "transfer", 100, date, "")
	assert.ErrorIs(t, err, ErrValidation, "self-transfer rejected")

	_, err = NewTransfer("a1", "", "transfer", 100, date, "")
	assert.ErrorIs(t, err, ErrValidation, "missing destination rejected")

	transfer, err := NewTransfer("a1", "a2", "transfer", 100, date, "note")
	require.NoError(t, err)
	assert.Equal(t, TypeTransfer, transfer.Type)
	assert.Equal(t, StatusCleared, transfer.Status)
}

func TestNewTransaction_Validation(t *testing.T) {
	date := NewDate(2024, 1, 1)

	_, err := NewTransaction("a1", "c1", -1, TypeExpense, date, "")
	assert.ErrorIs(t, err, ErrValidation)

	_, err = NewTransaction("a1", "c1", 10, TypeTransfer, date, "")
	assert.ErrorIs(t, err, ErrValidation, "transfers go through NewTransfer")

	_, err = NewTransaction("", "c1", 10, TypeExpense, date, "")
	assert.ErrorIs(t, err, ErrValidation)

	tx, err := NewTransaction("a1", "c1", 0, TypeExpense, date, "zero amounts allowed")
	require.NoError(t, err)
	assert.Equal(t, StatusCleared, tx.Status)
}

func TestNewAccount_Validation(t *testing.T) {
	_, err := NewAccount("", AccountBank, "USD", 0, "")
	assert.ErrorIs(t, err, ErrValidation)

	_, err = NewAccount("Checking", "PIGGYBANK", "USD", 0, "")
	assert.ErrorIs(t, err, ErrValidation)

	account, err := NewAccount("Checking", AccountBank, "usd", -250, "#000")
	require.NoError(t, err)
	assert.Equal(t, "USD", account.Currency, "currency label normalized")
	assert.InDelta(t, -250, account.InitialBalance, 1e-9, "initial balance may be negative")
}

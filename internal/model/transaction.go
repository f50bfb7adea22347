package model

import (
	"fmt"
	"strings"
	"time"
)

// TransactionType distinguishes the three kinds of ledger posting.
type TransactionType string

const (
	// TypeIncome increases the owning account's balance.
	TypeIncome TransactionType = "INCOME"
	// TypeExpense decreases the owning account's balance.
	TypeExpense TransactionType = "EXPENSE"
	// TypeTransfer moves money between two accounts in a single record.
	TypeTransfer TransactionType = "TRANSFER"
)

// Valid reports whether the transaction type is a known value.
func (t TransactionType) Valid() bool {
	return t == TypeIncome || t == TypeExpense || t == TypeTransfer
}

// TransactionStatus records whether a posting has cleared. Status does not
// change balance math; see ledger.AccountBalance.
type TransactionStatus string

const (
	// StatusCleared marks a settled transaction.
	StatusCleared TransactionStatus = "CLEARED"
	// StatusPending marks a transaction not yet settled.
	StatusPending TransactionStatus = "PENDING"
)

// Valid reports whether the status is a known value.
func (s TransactionStatus) Valid() bool {
	return s == StatusCleared || s == StatusPending
}

// Transaction is a single monetary movement. Amount is an unsigned
// magnitude; direction comes from Type. A transfer is one record visible
// to two accounts: it decreases AccountID and increases
// TransferToAccountID.
type Transaction struct {
	CreatedAt           time.Time         `json:"createdAt"`
	UpdatedAt           time.Time         `json:"updatedAt"`
	ID                  string            `json:"id"`
	AccountID           string            `json:"accountId"`
	CategoryID          string            `json:"categoryId"`
	Type                TransactionType   `json:"type"`
	Note                string            `json:"note"`
	Payee               string            `json:"payee,omitempty"`
	TransferToAccountID string            `json:"transferToAccountId,omitempty"`
	Status              TransactionStatus `json:"status"`
	Date                Date              `json:"date"`
	Amount              float64           `json:"amount"`
}

// NewTransaction validates and builds an income or expense posting. The ID
// and timestamps are assigned by the store on creation.
func NewTransaction(accountID, categoryID string, amount float64, transactionType TransactionType, date Date, note string) (*Transaction, error) {
	if transactionType == TypeTransfer {
		return nil, fmt.Errorf("%w: use NewTransfer for transfer transactions", ErrValidation)
	}
	t := &Transaction{
		AccountID:  accountID,
		CategoryID: categoryID,
		Amount:     amount,
		Type:       transactionType,
		Date:       date,
		Note:       note,
		Status:     StatusCleared,
	}
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return t, nil
}

// NewTransfer validates and builds a transfer posting between two distinct
// accounts. categoryID should be the store's transfer sentinel category.
func NewTransfer(fromAccountID, toAccountID, categoryID string, amount float64, date Date, note string) (*Transaction, error) {
	t := &Transaction{
		AccountID:           fromAccountID,
		TransferToAccountID: toAccountID,
		CategoryID:          categoryID,
		Amount:              amount,
		Type:                TypeTransfer,
		Date:                date,
		Note:                note,
		Status:              StatusCleared,
	}
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return t, nil
}

// Validate checks a fully populated transaction, as found in backups.
func (t *Transaction) Validate() error {
	if t == nil {
		return fmt.Errorf("%w: transaction is nil", ErrValidation)
	}
	if strings.TrimSpace(t.AccountID) == "" {
		return fmt.Errorf("%w: transaction account is required", ErrValidation)
	}
	if strings.TrimSpace(t.CategoryID) == "" {
		return fmt.Errorf("%w: transaction category is required", ErrValidation)
	}
	if !t.Type.Valid() {
		return fmt.Errorf("%w: unknown transaction type %q", ErrValidation, t.Type)
	}
	if t.Amount < 0 {
		return fmt.Errorf("%w: transaction amount must not be negative", ErrValidation)
	}
	if t.Date.IsZero() {
		return fmt.Errorf("%w: transaction date is required", ErrValidation)
	}
	if t.Status != "" && !t.Status.Valid() {
		return fmt.Errorf("%w: unknown transaction status %q", ErrValidation, t.Status)
	}
	switch t.Type {
	case TypeTransfer:
		if strings.TrimSpace(t.TransferToAccountID) == "" {
			return fmt.Errorf("%w: transfer requires a destination account", ErrValidation)
		}
		if t.TransferToAccountID == t.AccountID {
			return fmt.Errorf("%w: transfer destination must differ from source", ErrValidation)
		}
	default:
		if t.TransferToAccountID != "" {
			return fmt.Errorf("%w: destination account is only valid on transfers", ErrValidation)
		}
	}
	return nil
}

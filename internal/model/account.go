// Package model defines the ledger's entity types and their validating
// constructors. JSON tags on these structs are the backup wire format and
// must stay compatible with existing backup files.
package model

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrValidation is the sentinel wrapped by every entity validation failure.
var ErrValidation = errors.New("invalid entity")

// AccountType classifies an account for display and filtering. The ledger
// engine performs no special-casing by type; balances come entirely from
// the initial balance plus postings.
type AccountType string

const (
	// AccountBank is a checking or savings bank account.
	AccountBank AccountType = "BANK"
	// AccountCash is physical cash on hand.
	AccountCash AccountType = "CASH"
	// AccountCredit is a credit card or line of credit.
	AccountCredit AccountType = "CREDIT"
	// AccountAsset is property, vehicles, or other owned value.
	AccountAsset AccountType = "ASSET"
	// AccountInvestment is a brokerage or retirement account.
	AccountInvestment AccountType = "INVESTMENT"
)

// Valid reports whether the account type is a known value.
func (t AccountType) Valid() bool {
	switch t {
	case AccountBank, AccountCash, AccountCredit, AccountAsset, AccountInvestment:
		return true
	}
	return false
}

// Account is a container for money. InitialBalance is signed and immutable
// except via explicit edit; all further movement comes from transactions
// referencing this account.
type Account struct {
	CreatedAt      time.Time   `json:"createdAt"`
	UpdatedAt      time.Time   `json:"updatedAt"`
	ID             string      `json:"id"`
	Name           string      `json:"name"`
	Type           AccountType `json:"type"`
	Currency       string      `json:"currency"`
	Color          string      `json:"color"`
	InitialBalance float64     `json:"initialBalance"`
	Archived       bool        `json:"archived"`
}

// NewAccount validates and builds an account. The ID and timestamps are
// assigned by the store on creation.
func NewAccount(name string, accountType AccountType, currency string, initialBalance float64, color string) (*Account, error) {
	if strings.TrimSpace(name) == "" {
		return nil, fmt.Errorf("%w: account name is required", ErrValidation)
	}
	if !accountType.Valid() {
		return nil, fmt.Errorf("%w: unknown account type %q", ErrValidation, accountType)
	}
	if strings.TrimSpace(currency) == "" {
		return nil, fmt.Errorf("%w: account currency is required", ErrValidation)
	}
	return &Account{
		Name:           strings.TrimSpace(name),
		Type:           accountType,
		Currency:       strings.ToUpper(strings.TrimSpace(currency)),
		InitialBalance: initialBalance,
		Color:          color,
	}, nil
}

// Validate checks a fully populated account, as found in backups.
func (a *Account) Validate() error {
	if a == nil {
		return fmt.Errorf("%w: account is nil", ErrValidation)
	}
	if strings.TrimSpace(a.Name) == "" {
		return fmt.Errorf("%w: account name is required", ErrValidation)
	}
	if !a.Type.Valid() {
		return fmt.Errorf("%w: unknown account type %q", ErrValidation, a.Type)
	}
	return nil
}

// Package ledger derives balances and reports from raw entity collections.
// Every function is pure: no I/O, no stored state, deterministic for a
// given multiset of inputs regardless of slice order. Functions never
// return errors; malformed foreign keys contribute nothing to the result
// and category lookups fall back to a display default.
package ledger

import (
	"sort"
	"time"

	"github.com/finanza/finanza/internal/model"
)

// Display fallbacks for transactions whose category no longer exists.
const (
	UncategorizedName  = "Uncategorized"
	UncategorizedColor = "#cbd5e1"
)

// AccountBalance folds transactions over the account's initial balance.
// Income owned by the account adds, expense subtracts, a transfer
// subtracts when the account is the source and adds when it is the
// destination. Transactions referencing other accounts are ignored, so
// callers may pass over-broad slices safely. PENDING postings are
// included: this is the current balance, not the available balance.
func AccountBalance(account model.Account, transactions []model.Transaction) float64 {
	balance := account.InitialBalance
	for _, tx := range transactions {
		switch tx.Type {
		case model.TypeIncome:
			if tx.AccountID == account.ID {
				balance += tx.Amount
			}
		case model.TypeExpense:
			if tx.AccountID == account.ID {
				balance -= tx.Amount
			}
		case model.TypeTransfer:
			if tx.AccountID == account.ID {
				balance -= tx.Amount
			} else if tx.TransferToAccountID == account.ID {
				balance += tx.Amount
			}
		}
	}
	return balance
}

// NetWorth sums AccountBalance across all accounts. Credit accounts are
// not sign-flipped: a credit account carrying debt already has a negative
// balance by construction of expense postings against an initial balance
// of zero, so plain summation yields assets minus liabilities.
func NetWorth(accounts []model.Account, transactions []model.Transaction) float64 {
	var total float64
	for _, account := range accounts {
		related := make([]model.Transaction, 0, len(transactions))
		for _, tx := range transactions {
			if tx.AccountID == account.ID || tx.TransferToAccountID == account.ID {
				related = append(related, tx)
			}
		}
		total += AccountBalance(account, related)
	}
	return total
}

// CashFlowReport aggregates income against expenses for a window.
type CashFlowReport struct {
	Income  float64
	Expense float64
	Net     float64
}

// CashFlow sums income and expense magnitudes for transactions dated
// within [start, end], both boundary days inclusive. Transfers move money
// between accounts without changing the total, so they count toward
// neither side.
func CashFlow(transactions []model.Transaction, start, end model.Date) CashFlowReport {
	var report CashFlowReport
	for _, tx := range transactions {
		if !tx.Date.In(start, end) {
			continue
		}
		switch tx.Type {
		case model.TypeIncome:
			report.Income += tx.Amount
		case model.TypeExpense:
			report.Expense += tx.Amount
		case model.TypeTransfer:
			// Internal movement only.
		}
	}
	report.Net = report.Income - report.Expense
	return report
}

// BudgetReport is the derived health of one budget.
type BudgetReport struct {
	Limit      float64
	Spent      float64
	Remaining  float64
	Percentage float64
	OverBudget bool
}

// BudgetHealth sums expense postings against the budget's category within
// the calendar month containing referenceMonth. A zero limit reports 100%
// used when anything was spent and 0% otherwise.
func BudgetHealth(budget model.Budget, transactions []model.Transaction, referenceMonth time.Time) BudgetReport {
	var spent float64
	for _, tx := range transactions {
		if tx.Type != model.TypeExpense || tx.CategoryID != budget.CategoryID {
			continue
		}
		if !tx.Date.SameMonth(referenceMonth) {
			continue
		}
		spent += tx.Amount
	}

	var percentage float64
	switch {
	case budget.Limit > 0:
		percentage = spent / budget.Limit * 100
		if percentage > 100 {
			percentage = 100
		}
	case spent > 0:
		percentage = 100
	}

	return BudgetReport{
		Limit:      budget.Limit,
		Spent:      spent,
		Remaining:  budget.Limit - spent,
		Percentage: percentage,
		OverBudget: spent > budget.Limit,
	}
}

// CategorySummary is one slice of the expense breakdown.
type CategorySummary struct {
	CategoryID   string
	CategoryName string
	Color        string
	Amount       float64
	Percentage   float64
}

// GroupExpensesByCategory sums expense magnitudes per category and
// resolves display names and colors from the category list, falling back
// to the Uncategorized defaults for unresolved IDs. The result is sorted
// descending by amount; ties keep the order in which categories first
// appear in the transaction list.
func GroupExpensesByCategory(transactions []model.Transaction, categories []model.Category) []CategorySummary {
	byID := make(map[string]model.Category, len(categories))
	for _, cat := range categories {
		byID[cat.ID] = cat
	}

	totals := make(map[string]float64)
	order := make([]string, 0)
	var totalExpense float64
	for _, tx := range transactions {
		if tx.Type != model.TypeExpense {
			continue
		}
		if _, seen := totals[tx.CategoryID]; !seen {
			order = append(order, tx.CategoryID)
		}
		totals[tx.CategoryID] += tx.Amount
		totalExpense += tx.Amount
	}

	summaries := make([]CategorySummary, 0, len(order))
	for _, id := range order {
		amount := totals[id]
		summary := CategorySummary{
			CategoryID:   id,
			CategoryName: UncategorizedName,
			Color:        UncategorizedColor,
			Amount:       amount,
		}
		if cat, ok := byID[id]; ok {
			summary.CategoryName = cat.Name
			summary.Color = cat.Color
		}
		if totalExpense > 0 {
			summary.Percentage = amount / totalExpense * 100
		}
		summaries = append(summaries, summary)
	}

	sort.SliceStable(summaries, func(i, j int) bool {
		return summaries[i].Amount > summaries[j].Amount
	})
	return summaries
}

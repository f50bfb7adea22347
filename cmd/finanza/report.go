package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/finanza/finanza/internal/cli"
	"github.com/finanza/finanza/internal/ledger"
	"github.com/finanza/finanza/internal/model"
	"github.com/finanza/finanza/internal/service"
)

func reportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Derive reports from the transaction history",
		Long:  `Net worth, cash flow, budget health, and spending breakdowns. All figures are computed from stored transactions on demand; nothing is cached.`,
	}

	cmd.AddCommand(netWorthCmd())
	cmd.AddCommand(cashFlowCmd())
	cmd.AddCommand(budgetReportCmd())
	cmd.AddCommand(categoryReportCmd())

	return cmd
}

func netWorthCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "networth",
		Short: "Total balance across all accounts",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			accounts, err := store.ListAccounts(ctx, true)
			if err != nil {
				return fmt.Errorf("failed to list accounts: %w", err)
			}
			transactions, err := store.ListTransactions(ctx, service.TransactionFilter{})
			if err != nil {
				return fmt.Errorf("failed to list transactions: %w", err)
			}

			rows := make([][]string, 0, len(accounts))
			for _, account := range accounts {
				rows = append(rows, []string{
					account.Name,
					string(account.Type),
					cli.Amount(ledger.AccountBalance(account, transactions), account.Currency),
				})
			}

			fmt.Println(cli.TitleStyle.Render("Net Worth"))
			fmt.Print(cli.RenderTable([]string{"Account", "Type", "Balance"}, rows))
			fmt.Printf("\nTotal: %s\n", cli.Amount(ledger.NetWorth(accounts, transactions), reportCurrency(accounts)))
			return nil
		},
	}
}

func cashFlowCmd() *cobra.Command {
	var (
		from string
		to   string
	)

	cmd := &cobra.Command{
		Use:   "cashflow",
		Short: "Income and expense totals for a date window",
		Long:  `Sum income and expenses for a window, both boundary days inclusive. Defaults to the current month. Transfers are excluded.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			now := time.Now()
			start := model.NewDate(now.Year(), now.Month(), 1)
			end := model.DateOf(start.Time().AddDate(0, 1, -1))
			if from != "" {
				parsed, err := model.ParseDate(from)
				if err != nil {
					return fmt.Errorf("invalid --from date: %w", err)
				}
				start = parsed
			}
			if to != "" {
				parsed, err := model.ParseDate(to)
				if err != nil {
					return fmt.Errorf("invalid --to date: %w", err)
				}
				end = parsed
			}

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			transactions, err := store.ListTransactions(ctx, service.TransactionFilter{StartDate: &start, EndDate: &end})
			if err != nil {
				return fmt.Errorf("failed to list transactions: %w", err)
			}

			report := ledger.CashFlow(transactions, start, end)
			currency := viper.GetString("currency")
			if currency == "" {
				currency = "EUR"
			}

			fmt.Println(cli.TitleStyle.Render(fmt.Sprintf("Cash Flow %s — %s", start, end)))
			fmt.Printf("  Income:  %s\n", cli.Amount(report.Income, currency))
			fmt.Printf("  Expense: %s\n", cli.Amount(-report.Expense, currency))
			fmt.Printf("  Net:     %s\n", cli.Amount(report.Net, currency))
			return nil
		},
	}

	cmd.Flags().StringVar(&from, "from", "", "start date, inclusive (YYYY-MM-DD)")
	cmd.Flags().StringVar(&to, "to", "", "end date, inclusive (YYYY-MM-DD)")

	return cmd
}

func budgetReportCmd() *cobra.Command {
	var month string

	cmd := &cobra.Command{
		Use:   "budgets",
		Short: "Budget health for a month",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			reference := time.Now()
			if month != "" {
				parsed, err := time.Parse("2006-01", month)
				if err != nil {
					return fmt.Errorf("invalid --month %q (want YYYY-MM): %w", month, err)
				}
				reference = parsed
			}

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			budgets, err := store.ListBudgets(ctx)
			if err != nil {
				return fmt.Errorf("failed to list budgets: %w", err)
			}
			if len(budgets) == 0 {
				fmt.Println(cli.SubtleStyle.Render("No budgets found."))
				return nil
			}

			categories, err := store.ListCategories(ctx)
			if err != nil {
				return fmt.Errorf("failed to list categories: %w", err)
			}
			names := make(map[string]string, len(categories))
			for _, category := range categories {
				names[category.ID] = category.Name
			}

			transactions, err := store.ListTransactions(ctx, service.TransactionFilter{})
			if err != nil {
				return fmt.Errorf("failed to list transactions: %w", err)
			}

			rows := make([][]string, 0, len(budgets))
			for _, budget := range budgets {
				health := ledger.BudgetHealth(budget, transactions, reference)
				status := cli.SuccessStyle.Render("on track")
				if health.OverBudget {
					status = cli.ErrorStyle.Render("over budget")
				} else if health.Percentage >= 80 {
					status = cli.WarningStyle.Render("close")
				}
				name := names[budget.CategoryID]
				if name == "" {
					name = ledger.UncategorizedName
				}
				rows = append(rows, []string{
					name,
					fmt.Sprintf("%.2f", health.Spent),
					fmt.Sprintf("%.2f", health.Limit),
					fmt.Sprintf("%.0f%%", health.Percentage),
					status,
				})
			}

			fmt.Println(cli.TitleStyle.Render(fmt.Sprintf("Budgets — %s", reference.Format("January 2006"))))
			fmt.Print(cli.RenderTable([]string{"Category", "Spent", "Limit", "Used", "Status"}, rows))
			return nil
		},
	}

	cmd.Flags().StringVarP(&month, "month", "m", "", "reference month (YYYY-MM, default current)")

	return cmd
}

func categoryReportCmd() *cobra.Command {
	var (
		from string
		to   string
	)

	cmd := &cobra.Command{
		Use:   "categories",
		Short: "Expense breakdown by category",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			filter := service.TransactionFilter{}
			if from != "" {
				start, err := model.ParseDate(from)
				if err != nil {
					return fmt.Errorf("invalid --from date: %w", err)
				}
				filter.StartDate = &start
			}
			if to != "" {
				end, err := model.ParseDate(to)
				if err != nil {
					return fmt.Errorf("invalid --to date: %w", err)
				}
				filter.EndDate = &end
			}

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			transactions, err := store.ListTransactions(ctx, filter)
			if err != nil {
				return fmt.Errorf("failed to list transactions: %w", err)
			}
			categories, err := store.ListCategories(ctx)
			if err != nil {
				return fmt.Errorf("failed to list categories: %w", err)
			}

			summaries := ledger.GroupExpensesByCategory(transactions, categories)
			if len(summaries) == 0 {
				fmt.Println(cli.SubtleStyle.Render("No expenses in the selected window."))
				return nil
			}

			rows := make([][]string, 0, len(summaries))
			for _, summary := range summaries {
				rows = append(rows, []string{
					summary.CategoryName,
					fmt.Sprintf("%.2f", summary.Amount),
					fmt.Sprintf("%.1f%%", summary.Percentage),
				})
			}

			fmt.Println(cli.TitleStyle.Render("Spending by Category"))
			fmt.Print(cli.RenderTable([]string{"Category", "Amount", "Share"}, rows))
			return nil
		},
	}

	cmd.Flags().StringVar(&from, "from", "", "start date, inclusive (YYYY-MM-DD)")
	cmd.Flags().StringVar(&to, "to", "", "end date, inclusive (YYYY-MM-DD)")

	return cmd
}

// reportCurrency picks a display currency for aggregate lines. Accounts
// may mix currencies; the first account's currency wins, with a config
// override.
func reportCurrency(accounts []model.Account) string {
	if c := viper.GetString("currency"); c != "" {
		return c
	}
	if len(accounts) > 0 {
		return accounts[0].Currency
	}
	return "EUR"
}

package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/finanza/finanza/internal/cli"
	"github.com/finanza/finanza/internal/model"
)

func budgetsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "budgets",
		Short: "Manage spending budgets",
		Long:  `Cap spending on a category per week, month, or year. Health is derived from transactions; see 'finanza report budgets'.`,
	}

	cmd.AddCommand(setBudgetCmd())
	cmd.AddCommand(listBudgetsCmd())
	cmd.AddCommand(deleteBudgetCmd())

	return cmd
}

func setBudgetCmd() *cobra.Command {
	var (
		period string
		scope  string
	)

	cmd := &cobra.Command{
		Use:   "set <category-id> <limit>",
		Short: "Create a budget for a category",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			limit, err := parseAmount(args[1])
			if err != nil {
				return err
			}

			budget, err := model.NewBudget(args[0], limit, model.BudgetPeriod(strings.ToUpper(period)), scope)
			if err != nil {
				return err
			}

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			// Fail early on a dangling category reference.
			category, err := store.GetCategory(ctx, budget.CategoryID)
			if err != nil {
				return fmt.Errorf("failed to resolve category: %w", err)
			}

			if err := store.CreateBudget(ctx, budget); err != nil {
				return fmt.Errorf("failed to create budget: %w", err)
			}

			fmt.Println(cli.SuccessStyle.Render(fmt.Sprintf("✓ Budget of %.2f set on %q (%s)", budget.Limit, category.Name, budget.ID)))
			return nil
		},
	}

	cmd.Flags().StringVarP(&period, "period", "p", "MONTHLY", "budget period (WEEKLY, MONTHLY, YEARLY)")
	cmd.Flags().StringVarP(&scope, "scope", "s", "", "period instance, e.g. 2026-08 for a monthly budget")

	return cmd
}

func listBudgetsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List budgets",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

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
				fmt.Println(cli.SubtleStyle.Render("No budgets found. Use 'finanza budgets set' to create one."))
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

			rows := make([][]string, 0, len(budgets))
			for _, budget := range budgets {
				name := names[budget.CategoryID]
				if name == "" {
					name = cli.SubtleStyle.Render("Uncategorized")
				}
				rows = append(rows, []string{
					budget.ID,
					name,
					fmt.Sprintf("%.2f", budget.Limit),
					string(budget.Period),
					budget.Scope,
				})
			}

			fmt.Print(cli.RenderTable([]string{"ID", "Category", "Limit", "Period", "Scope"}, rows))
			return nil
		},
	}
}

func deleteBudgetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a budget",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			if err := store.DeleteBudget(ctx, args[0]); err != nil {
				return fmt.Errorf("failed to delete budget: %w", err)
			}

			fmt.Println(cli.SuccessStyle.Render("✓ Budget deleted"))
			return nil
		},
	}
}

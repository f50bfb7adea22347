package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/finanza/finanza/internal/cli"
	"github.com/finanza/finanza/internal/ledger"
	"github.com/finanza/finanza/internal/model"
	"github.com/finanza/finanza/internal/service"
)

func accountsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "accounts",
		Short: "Manage accounts",
		Long:  `Add, list, archive, and delete the accounts money moves through.`,
	}

	cmd.AddCommand(addAccountCmd())
	cmd.AddCommand(listAccountsCmd())
	cmd.AddCommand(archiveAccountCmd())
	cmd.AddCommand(deleteAccountCmd())

	return cmd
}

func addAccountCmd() *cobra.Command {
	var (
		accountType    string
		currency       string
		color          string
		initialBalance float64
	)

	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Add a new account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			account, err := model.NewAccount(args[0], model.AccountType(strings.ToUpper(accountType)), currency, initialBalance, color)
			if err != nil {
				return err
			}

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			if err := store.CreateAccount(ctx, account); err != nil {
				return fmt.Errorf("failed to create account: %w", err)
			}

			fmt.Println(cli.SuccessStyle.Render(fmt.Sprintf("✓ Created account %q (%s)", account.Name, account.ID)))
			return nil
		},
	}

	cmd.Flags().StringVarP(&accountType, "type", "t", "BANK", "account type (BANK, CASH, CREDIT, ASSET, INVESTMENT)")
	cmd.Flags().StringVarP(&currency, "currency", "c", "EUR", "ISO currency code")
	cmd.Flags().Float64VarP(&initialBalance, "balance", "b", 0, "initial balance")
	cmd.Flags().StringVar(&color, "color", "", "display color (hex)")

	return cmd
}

func listAccountsCmd() *cobra.Command {
	var includeArchived bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List accounts with current balances",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			accounts, err := store.ListAccounts(ctx, includeArchived)
			if err != nil {
				return fmt.Errorf("failed to list accounts: %w", err)
			}
			if len(accounts) == 0 {
				fmt.Println(cli.SubtleStyle.Render("No accounts found. Use 'finanza accounts add' to create one."))
				return nil
			}

			// Balances derive from the full transaction history.
			transactions, err := store.ListTransactions(ctx, service.TransactionFilter{})
			if err != nil {
				return fmt.Errorf("failed to list transactions: %w", err)
			}

			rows := make([][]string, 0, len(accounts))
			for _, account := range accounts {
				name := account.Name
				if account.Archived {
					name = cli.SubtleStyle.Render(name + " (archived)")
				}
				rows = append(rows, []string{
					account.ID,
					name,
					string(account.Type),
					cli.Amount(ledger.AccountBalance(account, transactions), account.Currency),
				})
			}

			fmt.Print(cli.RenderTable([]string{"ID", "Name", "Type", "Balance"}, rows))
			return nil
		},
	}

	cmd.Flags().BoolVarP(&includeArchived, "all", "a", false, "include archived accounts")

	return cmd
}

func archiveAccountCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "archive <id>",
		Short: "Archive an account",
		Long:  `Hide an account from listings without touching its transactions.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			if err := store.ArchiveAccount(ctx, args[0]); err != nil {
				return fmt.Errorf("failed to archive account: %w", err)
			}

			fmt.Println(cli.SuccessStyle.Render("✓ Account archived"))
			return nil
		},
	}
}

func deleteAccountCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete an account and its transactions",
		Long: `Permanently remove an account together with every transaction it owns.
Transfers received from other accounts are kept. Prefer 'accounts archive'
unless you really want the history gone.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			if !force {
				return fmt.Errorf("deleting an account removes its transactions; re-run with --force to confirm")
			}

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			if err := store.DeleteAccount(ctx, args[0]); err != nil {
				return fmt.Errorf("failed to delete account: %w", err)
			}

			fmt.Println(cli.SuccessStyle.Render("✓ Account and its transactions deleted"))
			return nil
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "skip confirmation")

	return cmd
}

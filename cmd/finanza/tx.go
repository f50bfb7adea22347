package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/finanza/finanza/internal/cli"
	"github.com/finanza/finanza/internal/model"
	"github.com/finanza/finanza/internal/service"
	"github.com/finanza/finanza/internal/storage"
)

func txCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tx",
		Short: "Manage transactions",
		Long:  `Record income, expenses, and transfers, and browse the transaction history.`,
	}

	cmd.AddCommand(addTxCmd())
	cmd.AddCommand(listTxCmd())
	cmd.AddCommand(deleteTxCmd())

	return cmd
}

func addTxCmd() *cobra.Command {
	var (
		accountID    string
		categoryID   string
		txType       string
		date         string
		note         string
		payee        string
		transferTo   string
		markPending  bool
	)

	cmd := &cobra.Command{
		Use:   "add <amount>",
		Short: "Record a transaction",
		Long: `Record a transaction. Amounts are unsigned; direction comes from the
type. Pass --transfer-to to move money between two accounts in a single
record.

Examples:
  finanza tx add 42.50 --account acc1 --category comida --note "groceries"
  finanza tx add 2500 --account acc1 --category ingresos --type INCOME
  finanza tx add 300 --account acc1 --transfer-to acc2`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			amount, err := parseAmount(args[0])
			if err != nil {
				return err
			}
			txDate, err := parseDateFlag(date)
			if err != nil {
				return err
			}

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			var transaction *model.Transaction
			if transferTo != "" {
				if categoryID == "" {
					categoryID = storage.TransferCategoryID
				}
				transaction, err = model.NewTransfer(accountID, transferTo, categoryID, amount, txDate, note)
			} else {
				transaction, err = model.NewTransaction(accountID, categoryID, amount, model.TransactionType(strings.ToUpper(txType)), txDate, note)
			}
			if err != nil {
				return err
			}
			transaction.Payee = payee
			if markPending {
				transaction.Status = model.StatusPending
			}

			if err := store.CreateTransaction(ctx, transaction); err != nil {
				return fmt.Errorf("failed to create transaction: %w", err)
			}

			fmt.Println(cli.SuccessStyle.Render(fmt.Sprintf("✓ Recorded %s of %.2f (%s)", strings.ToLower(string(transaction.Type)), transaction.Amount, transaction.ID)))
			return nil
		},
	}

	cmd.Flags().StringVarP(&accountID, "account", "a", "", "account id (required)")
	cmd.Flags().StringVarP(&categoryID, "category", "c", "", "category id (defaults to the transfer category for transfers)")
	cmd.Flags().StringVarP(&txType, "type", "t", "EXPENSE", "transaction type (INCOME, EXPENSE)")
	cmd.Flags().StringVarP(&date, "date", "d", "", "date (YYYY-MM-DD, default today)")
	cmd.Flags().StringVarP(&note, "note", "n", "", "free-form note")
	cmd.Flags().StringVar(&payee, "payee", "", "counterparty name")
	cmd.Flags().StringVar(&transferTo, "transfer-to", "", "destination account id (makes this a transfer)")
	cmd.Flags().BoolVar(&markPending, "pending", false, "record as not yet settled")
	_ = cmd.MarkFlagRequired("account")

	return cmd
}

func listTxCmd() *cobra.Command {
	var (
		accountID  string
		categoryID string
		from       string
		to         string
		limit      int
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List transactions, newest first",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			filter := service.TransactionFilter{
				AccountID:  accountID,
				CategoryID: categoryID,
				Limit:      limit,
			}
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
			if len(transactions) == 0 {
				fmt.Println(cli.SubtleStyle.Render("No transactions found."))
				return nil
			}

			rows := make([][]string, 0, len(transactions))
			for _, tx := range transactions {
				description := tx.Note
				if tx.Payee != "" {
					description = tx.Payee
				}
				status := ""
				if tx.Status == model.StatusPending {
					status = cli.WarningStyle.Render("pending")
				}
				rows = append(rows, []string{
					tx.ID,
					tx.Date.String(),
					string(tx.Type),
					fmt.Sprintf("%.2f", tx.Amount),
					description,
					status,
				})
			}

			fmt.Print(cli.RenderTable([]string{"ID", "Date", "Type", "Amount", "Description", ""}, rows))
			return nil
		},
	}

	cmd.Flags().StringVarP(&accountID, "account", "a", "", "filter by account (owner or transfer destination)")
	cmd.Flags().StringVarP(&categoryID, "category", "c", "", "filter by category")
	cmd.Flags().StringVar(&from, "from", "", "start date, inclusive (YYYY-MM-DD)")
	cmd.Flags().StringVar(&to, "to", "", "end date, inclusive (YYYY-MM-DD)")
	cmd.Flags().IntVarP(&limit, "limit", "l", 0, "maximum rows (0 = no limit)")

	return cmd
}

func deleteTxCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a transaction",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			if err := store.DeleteTransaction(ctx, args[0]); err != nil {
				return fmt.Errorf("failed to delete transaction: %w", err)
			}

			fmt.Println(cli.SuccessStyle.Render("✓ Transaction deleted"))
			return nil
		},
	}
}

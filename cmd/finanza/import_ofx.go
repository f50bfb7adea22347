package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/finanza/finanza/internal/cli"
	"github.com/finanza/finanza/internal/model"
	"github.com/finanza/finanza/internal/ofx"
)

func importOFXCmd() *cobra.Command {
	var (
		accountID  string
		categoryID string
		dryRun     bool
	)

	cmd := &cobra.Command{
		Use:   "import-ofx [files...]",
		Short: "Import transactions from OFX/QFX statement files",
		Long: `Import bank statement exports into an account. Every imported
transaction is filed under the given category until you refile it.

Examples:
  # Import a single statement
  finanza import-ofx --account acc1 --category cat1 ~/Downloads/january.qfx

  # Import everything the bank exported
  finanza import-ofx --account acc1 --category cat1 ~/Downloads/*.ofx`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			// Expand globs and collect all files.
			var allFiles []string
			for _, pattern := range args {
				matches, err := filepath.Glob(pattern)
				if err != nil {
					return fmt.Errorf("invalid pattern %s: %w", pattern, err)
				}
				if len(matches) == 0 {
					if _, err := os.Stat(pattern); err == nil {
						allFiles = append(allFiles, pattern)
					} else {
						slog.Warn("No files found matching pattern", "pattern", pattern)
					}
				} else {
					allFiles = append(allFiles, matches...)
				}
			}
			if len(allFiles) == 0 {
				return fmt.Errorf("no files found to import")
			}

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			// Fail early on a bad account or category reference.
			if _, err := store.GetAccount(ctx, accountID); err != nil {
				return fmt.Errorf("failed to resolve account: %w", err)
			}
			if _, err := store.GetCategory(ctx, categoryID); err != nil {
				return fmt.Errorf("failed to resolve category: %w", err)
			}

			parser := ofx.NewParser()
			bar := progressbar.NewOptions(len(allFiles),
				progressbar.OptionSetDescription("Parsing statements"),
				progressbar.OptionSetWriter(os.Stderr),
				progressbar.OptionClearOnFinish(),
			)

			var allTransactions []model.Transaction
			for _, filePath := range allFiles {
				f, err := os.Open(filepath.Clean(filePath))
				if err != nil {
					slog.Error("Failed to open file", "file", filePath, "error", err)
					_ = bar.Add(1)
					continue
				}

				transactions, err := parser.ParseStatement(ctx, f, accountID, categoryID)
				_ = f.Close()
				if err != nil {
					slog.Error("Failed to parse OFX file", "file", filePath, "error", err)
					_ = bar.Add(1)
					continue
				}

				slog.Info("Parsed statement", "file", filepath.Base(filePath), "transactions", len(transactions))
				allTransactions = append(allTransactions, transactions...)
				_ = bar.Add(1)
			}
			_ = bar.Finish()

			if len(allTransactions) == 0 {
				slog.Warn("No transactions found in any file")
				return nil
			}

			if dryRun {
				fmt.Println(cli.TitleStyle.Render("Dry run — nothing saved"))
				rows := make([][]string, 0, len(allTransactions))
				for _, tx := range allTransactions {
					rows = append(rows, []string{tx.Date.String(), string(tx.Type), fmt.Sprintf("%.2f", tx.Amount), tx.Payee})
				}
				fmt.Print(cli.RenderTable([]string{"Date", "Type", "Amount", "Payee"}, rows))
				return nil
			}

			if err := store.SaveTransactions(ctx, allTransactions); err != nil {
				return fmt.Errorf("failed to save transactions: %w", err)
			}

			fmt.Println(cli.SuccessStyle.Render(fmt.Sprintf("✓ Imported %d transactions from %d files", len(allTransactions), len(allFiles))))
			return nil
		},
	}

	cmd.Flags().StringVarP(&accountID, "account", "a", "", "account to import into (required)")
	cmd.Flags().StringVarP(&categoryID, "category", "c", "", "category for imported transactions (required)")
	cmd.Flags().BoolVarP(&dryRun, "dry-run", "d", false, "preview import without saving")
	_ = cmd.MarkFlagRequired("account")
	_ = cmd.MarkFlagRequired("category")

	return cmd
}

package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/finanza/finanza/internal/backup"
	"github.com/finanza/finanza/internal/cli"
)

func backupCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "backup",
		Short: "Export and restore backups",
		Long: `Export the full database to a single JSON document, optionally encrypted
with a password, and restore from such a document. Restore replaces
everything currently stored.`,
	}

	cmd.AddCommand(exportBackupCmd())
	cmd.AddCommand(importBackupCmd())

	return cmd
}

func exportBackupCmd() *cobra.Command {
	var (
		password string
		outPath  string
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export all data to a backup file",
		Long: `Write every account, transaction, category, budget, and goal to a single
JSON document. With --password the document is encrypted; without it the
file is plaintext JSON.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			codec := backup.NewCodec(store, backup.NewCryptor())
			data, err := codec.Export(ctx, password)
			if err != nil {
				return fmt.Errorf("failed to export backup: %w", err)
			}

			if outPath == "" {
				outPath = backup.Filename(time.Now(), password != "")
			} else if info, statErr := os.Stat(outPath); statErr == nil && info.IsDir() {
				outPath = filepath.Join(outPath, backup.Filename(time.Now(), password != ""))
			}
			if err := os.WriteFile(outPath, data, 0o600); err != nil {
				return fmt.Errorf("failed to write backup file: %w", err)
			}

			slog.Info("Backup written", "file", outPath, "bytes", len(data), "encrypted", password != "")
			fmt.Println(cli.SuccessStyle.Render(fmt.Sprintf("✓ Backup saved to %s", outPath)))
			return nil
		},
	}

	cmd.Flags().StringVarP(&password, "password", "p", "", "encrypt the backup with this password")
	cmd.Flags().StringVarP(&outPath, "out", "o", "", "output file or directory (default: timestamped name in the current directory)")

	return cmd
}

func importBackupCmd() *cobra.Command {
	var (
		password string
		force    bool
	)

	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Restore from a backup file",
		Long: `Replace everything in the database with the contents of a backup file.
Encrypted backups are detected by content, not file extension; pass the
password used at export time. The restore is atomic: if anything in the
file fails validation, the database is left untouched.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			if !force {
				return fmt.Errorf("restoring replaces all current data; re-run with --force to confirm")
			}

			raw, err := os.ReadFile(filepath.Clean(args[0]))
			if err != nil {
				return fmt.Errorf("failed to read backup file: %w", err)
			}

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			codec := backup.NewCodec(store, backup.NewCryptor())
			if err := codec.Restore(ctx, raw, password); err != nil {
				switch {
				case errors.Is(err, backup.ErrPasswordRequired):
					return fmt.Errorf("this backup is encrypted; re-run with --password")
				case errors.Is(err, backup.ErrDecryptionFailed):
					return fmt.Errorf("could not decrypt backup: wrong password or corrupted file")
				case errors.Is(err, backup.ErrBackupFormatInvalid):
					return fmt.Errorf("not a recognizable backup file: %w", err)
				default:
					return fmt.Errorf("failed to restore backup: %w", err)
				}
			}

			fmt.Println(cli.SuccessStyle.Render("✓ Backup restored"))
			return nil
		},
	}

	cmd.Flags().StringVarP(&password, "password", "p", "", "password for encrypted backups")
	cmd.Flags().BoolVarP(&force, "force", "f", false, "skip confirmation")

	return cmd
}

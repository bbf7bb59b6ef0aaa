package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/Veraticus/bankpulse/internal/cli"
	"github.com/Veraticus/bankpulse/internal/common"
	"github.com/Veraticus/bankpulse/internal/ofx"
	"github.com/Veraticus/bankpulse/internal/service"
	"github.com/spf13/cobra"
)

func importOFXCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import-ofx [files...]",
		Short: "Import transactions from OFX/QFX files",
		Long: `Import transactions and ledger balances from OFX or QFX files exported from your bank.

Examples:
  # Import a single file
  pulse import-ofx ~/Downloads/checking_2024_05.qfx

  # Import every statement in a directory
  pulse import-ofx ~/Downloads/statements/*.ofx

  # Preview without saving
  pulse import-ofx --dry-run ~/Downloads/*.qfx`,
		Args: cobra.MinimumNArgs(1),
		RunE: runImportOFX,
	}

	cmd.Flags().BoolP("dry-run", "d", false, "Preview import without saving")
	cmd.Flags().BoolP("quiet", "q", false, "Hide the progress bar")

	return cmd
}

type fileResult struct {
	Err          error
	Name         string
	Transactions int
	Accounts     int
}

type importSummary struct {
	Files    []fileResult
	Unique   int
	Inserted int
	Accounts int
}

func runImportOFX(cmd *cobra.Command, args []string) error {
	dryRun, _ := cmd.Flags().GetBool("dry-run")
	quiet, _ := cmd.Flags().GetBool("quiet")

	files, err := expandFiles(args)
	if err != nil {
		return err
	}

	slog.Info("Importing OFX files", "file_count", len(files), "dry_run", dryRun)

	ctx := cmd.Context()
	var store service.Storage
	if !dryRun {
		s, err := initStorage(ctx)
		if err != nil {
			return err
		}
		defer func() { _ = s.Close() }()
		store = s
	}

	progress := cli.NewProgress(cmd.ErrOrStderr(), len(files), "Importing", quiet)
	summary, err := importFiles(ctx, ofx.NewParser(), store, files, progress)
	if err != nil {
		return err
	}
	return printImportSummary(cmd.OutOrStdout(), summary, dryRun)
}

// expandFiles resolves glob patterns, keeping literal paths that exist.
func expandFiles(patterns []string) ([]string, error) {
	var files []string
	for _, pattern := range patterns {
		matches, err := filepath.Glob(pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid pattern %s: %w", pattern, err)
		}
		if len(matches) > 0 {
			files = append(files, matches...)
			continue
		}
		if _, err := os.Stat(pattern); err == nil {
			files = append(files, pattern)
		} else {
			slog.Warn("No files found matching pattern", "pattern", pattern)
		}
	}

	if len(files) == 0 {
		return nil, common.NewUserError("no files found to import", common.ErrNotFound)
	}
	return files, nil
}

// importFiles parses each file and, when store is non-nil, saves it before
// moving on so an interrupt keeps everything already imported. Files that
// fail to parse are recorded and skipped.
func importFiles(ctx context.Context, parser *ofx.Parser, store service.Storage, files []string, progress *cli.Progress) (*importSummary, error) {
	summary := &importSummary{}
	seen := make(map[string]bool)
	defer progress.Done()

	for _, path := range files {
		if err := ctx.Err(); err != nil {
			return summary, err
		}

		name := filepath.Base(path)
		progress.Step(name)

		result, err := parseFile(ctx, parser, path)
		if err != nil {
			if !errors.Is(err, common.ErrEmptyStatement) {
				slog.Error("Failed to parse OFX file", "file", name, "error", err)
			} else {
				slog.Warn("No transactions found in file", "file", name)
			}
			summary.Files = append(summary.Files, fileResult{Name: name, Err: err})
			continue
		}

		txns := result.Transactions()
		accounts := result.Accounts()
		for _, txn := range txns {
			if !seen[txn.Hash] {
				seen[txn.Hash] = true
				summary.Unique++
			}
		}

		if store != nil {
			inserted, err := store.SaveTransactions(ctx, txns)
			if err != nil {
				return summary, fmt.Errorf("failed to save transactions from %s: %w", name, err)
			}
			if err := store.UpsertAccounts(ctx, accounts); err != nil {
				return summary, fmt.Errorf("failed to save balances from %s: %w", name, err)
			}
			summary.Inserted += inserted
		}
		summary.Accounts += len(accounts)

		slog.Debug("Processed file", "file", name, "transactions", len(txns), "accounts", len(accounts))
		summary.Files = append(summary.Files, fileResult{Name: name, Transactions: len(txns), Accounts: len(accounts)})
	}

	return summary, nil
}

func parseFile(ctx context.Context, parser *ofx.Parser, path string) (*ofx.Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer func() { _ = f.Close() }()

	return parser.Parse(ctx, f)
}

func printImportSummary(w io.Writer, s *importSummary, dryRun bool) error {
	lines := []string{cli.FormatTitle("📁", "File import summary")}
	for _, f := range s.Files {
		if f.Err != nil {
			lines = append(lines, cli.FormatWarning(fmt.Sprintf("%s: skipped (%v)", f.Name, f.Err)))
			continue
		}
		lines = append(lines, fmt.Sprintf("  - %s: %d transactions, %d balances", f.Name, f.Transactions, f.Accounts))
	}

	if dryRun {
		lines = append(lines, cli.FormatInfo(fmt.Sprintf("Dry run: %d unique transactions found, nothing saved", s.Unique)))
	} else {
		lines = append(lines, cli.FormatSuccess(fmt.Sprintf("Saved %d new transactions (%d already present), %d balances updated",
			s.Inserted, max(s.Unique-s.Inserted, 0), s.Accounts)))
	}

	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

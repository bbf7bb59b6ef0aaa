package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/Veraticus/bankpulse/internal/cli"
	"github.com/Veraticus/bankpulse/internal/common"
	"github.com/Veraticus/bankpulse/internal/config"
	"github.com/Veraticus/bankpulse/internal/storage"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const (
	outputTable = "table"
	outputJSON  = "json"
	dateFlagFmt = "2006-01-02"
)

// initStorage opens the configured database and brings its schema up to date.
func initStorage(ctx context.Context) (*storage.SQLiteStorage, error) {
	dbPath, err := config.DatabasePath(viper.GetViper())
	if err != nil {
		return nil, err
	}

	store, err := storage.NewSQLiteStorage(dbPath)
	if err != nil {
		return nil, err
	}

	if err := store.Migrate(ctx); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	return store, nil
}

func addOutputFlag(cmd *cobra.Command) {
	cmd.Flags().StringP("output", "o", outputTable, "output format (table, json)")
}

func outputFormat(cmd *cobra.Command) (string, error) {
	format, _ := cmd.Flags().GetString("output")
	switch format {
	case outputTable, outputJSON:
		return format, nil
	default:
		return "", common.NewUserError(fmt.Sprintf("unknown output format %q (use table or json)", format), common.ErrInvalidConfig)
	}
}

// render writes v as JSON or through the table renderer.
func render(w io.Writer, format string, v any, table func(io.Writer) error) error {
	if format == outputJSON {
		return cli.WriteJSON(w, v)
	}
	return table(w)
}

// parseDateFlag reads a YYYY-MM-DD flag, falling back to def when unset.
func parseDateFlag(cmd *cobra.Command, name string, def time.Time) (time.Time, error) {
	raw, _ := cmd.Flags().GetString(name)
	if raw == "" {
		return def, nil
	}
	t, err := time.Parse(dateFlagFmt, raw)
	if err != nil {
		return time.Time{}, common.NewUserError(fmt.Sprintf("--%s must be YYYY-MM-DD", name), err)
	}
	return t, nil
}

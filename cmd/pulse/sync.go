package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Veraticus/bankpulse/internal/cli"
	"github.com/Veraticus/bankpulse/internal/common"
	"github.com/Veraticus/bankpulse/internal/config"
	"github.com/Veraticus/bankpulse/internal/plaid"
	"github.com/Veraticus/bankpulse/internal/service"
	"github.com/Veraticus/bankpulse/internal/simplefin"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const defaultSyncWindow = 90 * 24 * time.Hour

func syncCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Fetch transactions and balances from Plaid or SimpleFIN",
		Long: `Fetch transactions and current account balances from a bank data source.

Plaid credentials come from plaid.client_id, plaid.secret and plaid.access_token
in the config file, PULSE_PLAID_* variables, or PLAID_CLIENT_ID, PLAID_SECRET and
PLAID_ACCESS_TOKEN. SimpleFIN needs simplefin.token (a setup token, claimed once)
or simplefin.access_url. The default window is the last 90 days.`,
		RunE: runSync,
	}

	cmd.Flags().String("start-date", "", "first day to fetch (YYYY-MM-DD)")
	cmd.Flags().String("end-date", "", "last day to fetch (YYYY-MM-DD, default today)")
	cmd.Flags().String("source", "", "data source (plaid, simplefin; default sync.source)")
	_ = viper.BindPFlag(config.KeySyncSource, cmd.Flags().Lookup("source"))

	return cmd
}

type syncResult struct {
	Fetched  int
	Inserted int
	Accounts int
}

func runSync(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	now := time.Now().UTC()
	end, err := parseDateFlag(cmd, "end-date", now)
	if err != nil {
		return err
	}
	start, err := parseDateFlag(cmd, "start-date", end.Add(-defaultSyncWindow))
	if err != nil {
		return err
	}

	fetcher, err := newFetcher(ctx, viper.GetString(config.KeySyncSource))
	if err != nil {
		return err
	}

	store, err := initStorage(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	result, err := syncTransactions(ctx, fetcher, store, start, end)
	if err != nil {
		return err
	}

	_, err = fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf(
		"Fetched %d transactions (%d new) and %d balances from %s to %s",
		result.Fetched, result.Inserted, result.Accounts,
		start.Format(dateFlagFmt), end.Format(dateFlagFmt))))
	return err
}

// newFetcher builds the client for the named source.
func newFetcher(ctx context.Context, source string) (service.TransactionFetcher, error) {
	v := viper.GetViper()
	switch source {
	case "plaid", "":
		cfg, err := config.LoadPlaidConfig(v)
		if err != nil {
			return nil, fmt.Errorf("plaid is not configured: %w", err)
		}
		return plaid.NewClient(cfg)
	case "simplefin":
		accessURL := v.GetString(config.KeySimpleFINAccessURL)
		if accessURL == "" {
			auth, err := simplefin.NewAuthenticator("", nil)
			if err != nil {
				return nil, err
			}
			if accessURL, err = auth.AccessURL(ctx, v.GetString(config.KeySimpleFINToken)); err != nil {
				return nil, err
			}
		}
		return simplefin.NewClient(accessURL, nil)
	default:
		return nil, common.NewUserError(fmt.Sprintf("unknown source %q (use plaid or simplefin)", source), common.ErrInvalidConfig)
	}
}

// syncTransactions pulls a date range and the current balances into store.
func syncTransactions(ctx context.Context, fetcher service.TransactionFetcher, store service.Storage, start, end time.Time) (*syncResult, error) {
	if end.Before(start) {
		return nil, fmt.Errorf("end date %s is before start date %s", end.Format(dateFlagFmt), start.Format(dateFlagFmt))
	}

	slog.Info("Syncing transactions", "start", start.Format(dateFlagFmt), "end", end.Format(dateFlagFmt))

	txns, err := fetcher.GetTransactions(ctx, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch transactions: %w", err)
	}
	inserted, err := store.SaveTransactions(ctx, txns)
	if err != nil {
		return nil, err
	}

	accounts, err := fetcher.GetAccounts(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch balances: %w", err)
	}
	if err := store.UpsertAccounts(ctx, accounts); err != nil {
		return nil, err
	}

	return &syncResult{Fetched: len(txns), Inserted: inserted, Accounts: len(accounts)}, nil
}

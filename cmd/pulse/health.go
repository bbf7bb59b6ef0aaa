package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/Veraticus/bankpulse/internal/cli"
	"github.com/Veraticus/bankpulse/internal/common"
	"github.com/Veraticus/bankpulse/internal/health"
	"github.com/Veraticus/bankpulse/internal/model"
	"github.com/Veraticus/bankpulse/internal/service"
	"github.com/spf13/cobra"
)

func healthCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "health",
		Short: "Score this month's financial health",
		Long: `Score the current month from 0 to 100 across savings rate, spending control,
emergency fund, debt management and consistency.

The balance defaults to the sum of stored account balances and the debt to the
sum of outstanding loan balances. Both can be overridden.`,
		RunE: runHealth,
	}

	cmd.Flags().Float64("balance", 0, "account balance to use instead of stored accounts")
	cmd.Flags().Float64("debt", 0, "total debt to use instead of stored loans")
	cmd.Flags().String("month", "", "score a past month instead (YYYY-MM)")
	addOutputFlag(cmd)

	return cmd
}

type healthInputs struct {
	Balance *float64
	Debt    *float64
	Now     time.Time
}

func runHealth(cmd *cobra.Command, _ []string) error {
	format, err := outputFormat(cmd)
	if err != nil {
		return err
	}

	in := healthInputs{Now: time.Now().UTC()}
	if raw, _ := cmd.Flags().GetString("month"); raw != "" {
		month, err := time.Parse("2006-01", raw)
		if err != nil {
			return common.NewUserError("--month must be YYYY-MM", err)
		}
		in.Now = month
	}
	if cmd.Flags().Changed("balance") {
		v, _ := cmd.Flags().GetFloat64("balance")
		in.Balance = &v
	}
	if cmd.Flags().Changed("debt") {
		v, _ := cmd.Flags().GetFloat64("debt")
		in.Debt = &v
	}

	ctx := cmd.Context()
	store, err := initStorage(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	result, err := scoreHealth(ctx, store, in)
	if err != nil {
		return err
	}
	return render(cmd.OutOrStdout(), format, result, func(w io.Writer) error {
		return cli.RenderHealth(w, result)
	})
}

// scoreHealth scores the month containing in.Now from stored data.
func scoreHealth(ctx context.Context, store service.Storage, in healthInputs) (health.Result, error) {
	now := in.Now.UTC()
	start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, 0)

	txns, err := store.GetTransactions(ctx, service.TransactionFilter{StartDate: &start, EndDate: &end})
	if err != nil {
		return health.Result{}, fmt.Errorf("failed to load transactions: %w", err)
	}

	balance, err := resolveBalance(ctx, store, in.Balance)
	if err != nil {
		return health.Result{}, err
	}
	debt, err := resolveDebt(ctx, store, in.Debt)
	if err != nil {
		return health.Result{}, err
	}

	scorer := &health.Scorer{Now: func() time.Time { return now }}
	return scorer.Score(txns, balance, debt), nil
}

func resolveBalance(ctx context.Context, store service.Storage, override *float64) (float64, error) {
	if override != nil {
		return *override, nil
	}
	accounts, err := store.GetAccounts(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to load accounts: %w", err)
	}
	return model.TotalBalance(accounts), nil
}

func resolveDebt(ctx context.Context, store service.Storage, override *float64) (float64, error) {
	if override != nil {
		return *override, nil
	}
	loans, err := store.GetLoans(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to load loans: %w", err)
	}
	return model.TotalDebt(loans), nil
}

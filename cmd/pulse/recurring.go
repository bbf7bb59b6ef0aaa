package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/Veraticus/bankpulse/internal/cli"
	"github.com/Veraticus/bankpulse/internal/common"
	"github.com/Veraticus/bankpulse/internal/config"
	"github.com/Veraticus/bankpulse/internal/model"
	"github.com/Veraticus/bankpulse/internal/recurring"
	"github.com/Veraticus/bankpulse/internal/service"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func recurringCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "recurring",
		Short: "Detect subscriptions and other recurring charges",
		Long: `Group completed purchases by merchant and report the ones that repeat at a
steady amount and interval, with their monthly and yearly cost.`,
		RunE: runRecurring,
	}

	cmd.Flags().Bool("merchant-case-fold", false, "group merchants ignoring case and surrounding spaces")
	cmd.Flags().Int("workers", 1, "merchant groups evaluated in parallel")
	cmd.Flags().Float64("tolerance", 0.10, "maximum relative deviation from the average amount")
	cmd.Flags().String("merchant", "", "only consider merchants matching this regular expression")
	cmd.Flags().String("since", "", "ignore transactions before this day (YYYY-MM-DD)")
	addOutputFlag(cmd)

	return cmd
}

type recurringQuery struct {
	Since    time.Time
	Merchant string
	Options  recurring.Options
}

func runRecurring(cmd *cobra.Command, _ []string) error {
	format, err := outputFormat(cmd)
	if err != nil {
		return err
	}

	opts, err := config.LoadRecurringOptions(viper.GetViper())
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("merchant-case-fold") {
		opts.FoldMerchantCase, _ = cmd.Flags().GetBool("merchant-case-fold")
	}
	if cmd.Flags().Changed("workers") {
		opts.Workers, _ = cmd.Flags().GetInt("workers")
	}
	if cmd.Flags().Changed("tolerance") {
		opts.AmountTolerance, _ = cmd.Flags().GetFloat64("tolerance")
	}
	if opts.AmountTolerance < 0 || opts.AmountTolerance >= 1 || opts.Workers < 1 {
		return common.NewUserError("--tolerance must be in [0, 1) and --workers at least 1", common.ErrInvalidConfig)
	}

	since, err := parseDateFlag(cmd, "since", time.Time{})
	if err != nil {
		return err
	}
	merchant, _ := cmd.Flags().GetString("merchant")

	ctx := cmd.Context()
	store, err := initStorage(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	charges, err := findRecurring(ctx, store, recurringQuery{Since: since, Merchant: merchant, Options: opts})
	if err != nil {
		return err
	}

	return render(cmd.OutOrStdout(), format, charges, func(w io.Writer) error {
		return cli.RenderCharges(w, charges)
	})
}

// findRecurring loads stored transactions and runs the detector over them.
func findRecurring(ctx context.Context, store service.Storage, q recurringQuery) ([]recurring.Charge, error) {
	match, err := common.MerchantMatcher(q.Merchant)
	if err != nil {
		return nil, common.NewUserError(fmt.Sprintf("invalid --merchant pattern %q", q.Merchant), err)
	}

	filter := service.TransactionFilter{}
	if !q.Since.IsZero() {
		filter.StartDate = &q.Since
	}
	txns, err := store.GetTransactions(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to load transactions: %w", err)
	}

	selected := make([]model.Transaction, 0, len(txns))
	for _, txn := range txns {
		if match(txn.MerchantName) {
			selected = append(selected, txn)
		}
	}

	charges := recurring.NewDetector(q.Options).Detect(selected)
	slog.Debug("Recurring detection complete", "transactions", len(selected), "charges", len(charges))
	return charges, nil
}

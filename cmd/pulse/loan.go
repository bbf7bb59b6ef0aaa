package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/Veraticus/bankpulse/internal/cli"
	"github.com/Veraticus/bankpulse/internal/common"
	"github.com/Veraticus/bankpulse/internal/loan"
	"github.com/Veraticus/bankpulse/internal/model"
	"github.com/Veraticus/bankpulse/internal/service"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

func loanCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "loan",
		Short: "Loan payment calculator and tracked loans",
		Long: `Compute fixed-rate loan payments and keep track of outstanding loans.

Examples:
  # What does a 12 month, 6% loan of $10,000 cost?
  pulse loan payment --principal 10000 --rate 6 --term 12 --schedule

  # Track a loan and see how the next payment splits
  pulse loan add --name "Car" --principal 18000 --rate 5.9 --term 60
  pulse loan breakdown Car`,
	}

	cmd.AddCommand(loanPaymentCmd())
	cmd.AddCommand(loanAddCmd())
	cmd.AddCommand(loanListCmd())
	cmd.AddCommand(loanBreakdownCmd())
	cmd.AddCommand(loanPayCmd())
	cmd.AddCommand(loanDeleteCmd())

	return cmd
}

func addTermsFlags(cmd *cobra.Command) {
	cmd.Flags().Float64("principal", 0, "amount borrowed")
	cmd.Flags().Float64("rate", 0, "annual interest rate in percent (6 means 6%)")
	cmd.Flags().Int("term", 0, "term in months")
	_ = cmd.MarkFlagRequired("principal")
	_ = cmd.MarkFlagRequired("term")
}

// loanFromFlags reads and validates loan terms. The amortization math relies on them.
func loanFromFlags(cmd *cobra.Command, name string) (*model.Loan, error) {
	principal, _ := cmd.Flags().GetFloat64("principal")
	rate, _ := cmd.Flags().GetFloat64("rate")
	term, _ := cmd.Flags().GetInt("term")

	l := &model.Loan{
		Name:              name,
		Principal:         principal,
		AnnualRatePercent: rate,
		TermMonths:        term,
		Balance:           principal,
	}
	if cmd.Flags().Changed("balance") {
		l.Balance, _ = cmd.Flags().GetFloat64("balance")
	}
	if err := l.Validate(); err != nil {
		return nil, common.NewUserError(err.Error(), err)
	}
	return l, nil
}

type paymentReport struct {
	loan.Summary
	Schedule []loan.Installment `json:"schedule,omitempty"`
}

func loanPaymentCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "payment",
		Short: "Compute the monthly payment for a loan",
		RunE: func(cmd *cobra.Command, _ []string) error {
			format, err := outputFormat(cmd)
			if err != nil {
				return err
			}
			l, err := loanFromFlags(cmd, "calculator")
			if err != nil {
				return err
			}
			withSchedule, _ := cmd.Flags().GetBool("schedule")

			report := paymentReport{Summary: loan.Summarize(l.Principal, l.AnnualRatePercent, l.TermMonths)}
			if withSchedule {
				report.Schedule = loan.Schedule(l.Principal, l.AnnualRatePercent, l.TermMonths)
			}

			return render(cmd.OutOrStdout(), format, report, func(w io.Writer) error {
				if err := cli.RenderLoanSummary(w, l.Principal, l.AnnualRatePercent, l.TermMonths, report.Summary); err != nil {
					return err
				}
				if withSchedule {
					return cli.RenderSchedule(w, report.Schedule)
				}
				return nil
			})
		},
	}

	addTermsFlags(cmd)
	cmd.Flags().Bool("schedule", false, "print the full amortization schedule")
	addOutputFlag(cmd)
	return cmd
}

func loanAddCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Track a loan",
		RunE: func(cmd *cobra.Command, _ []string) error {
			name, _ := cmd.Flags().GetString("name")
			l, err := loanFromFlags(cmd, name)
			if err != nil {
				return err
			}
			l.ID = uuid.NewString()
			l.CreatedAt = time.Now().UTC()

			ctx := cmd.Context()
			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			if err := store.SaveLoan(ctx, l); err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Added loan %q (%s)", l.Name, l.ID)))
			return err
		},
	}

	cmd.Flags().String("name", "", "loan name")
	addTermsFlags(cmd)
	cmd.Flags().Float64("balance", 0, "outstanding balance (default: principal)")
	_ = cmd.MarkFlagRequired("name")
	return cmd
}

func loanListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List tracked loans",
		RunE: func(cmd *cobra.Command, _ []string) error {
			format, err := outputFormat(cmd)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			loans, err := store.GetLoans(ctx)
			if err != nil {
				return err
			}
			return render(cmd.OutOrStdout(), format, loans, func(w io.Writer) error {
				return cli.RenderLoans(w, loans)
			})
		},
	}
	addOutputFlag(cmd)
	return cmd
}

type breakdownReport struct {
	Loan    model.Loan     `json:"loan"`
	Split   loan.Breakdown `json:"breakdown"`
	Payment float64        `json:"payment"`
}

// nextPayment splits the loan's scheduled payment against its current balance.
func nextPayment(ctx context.Context, store service.Storage, id string) (*breakdownReport, error) {
	l, err := store.GetLoan(ctx, id)
	if err != nil {
		return nil, err
	}
	payment := loan.MonthlyPayment(l.Principal, l.AnnualRatePercent, l.TermMonths)
	return &breakdownReport{
		Loan:    *l,
		Payment: payment,
		Split:   loan.PaymentBreakdown(l.Balance, payment, l.AnnualRatePercent),
	}, nil
}

func loanBreakdownCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "breakdown ID",
		Short: "Show how the next payment splits into principal and interest",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := outputFormat(cmd)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			report, err := nextPayment(ctx, store, args[0])
			if err != nil {
				return err
			}
			return render(cmd.OutOrStdout(), format, report, func(w io.Writer) error {
				return cli.RenderBreakdown(w, report.Loan, report.Payment, report.Split)
			})
		},
	}
	addOutputFlag(cmd)
	return cmd
}

// applyPayment records one scheduled payment and returns the new balance.
func applyPayment(ctx context.Context, store service.Storage, id string) (float64, error) {
	report, err := nextPayment(ctx, store, id)
	if err != nil {
		return 0, err
	}
	balance := decimal.NewFromFloat(max(report.Loan.Balance-report.Split.Principal, 0)).Round(2).InexactFloat64()
	if err := store.UpdateLoanBalance(ctx, report.Loan.ID, balance); err != nil {
		return 0, err
	}
	return balance, nil
}

func loanPayCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "pay ID",
		Short: "Record one scheduled payment against a loan",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			balance, err := applyPayment(ctx, store, args[0])
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess("Outstanding balance is now "+cli.Money(balance)))
			return err
		},
	}
}

func loanDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete ID",
		Short: "Stop tracking a loan",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			if err := store.DeleteLoan(ctx, args[0]); err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess("Deleted loan "+args[0]))
			return err
		},
	}
}

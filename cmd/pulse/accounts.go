package main

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/Veraticus/bankpulse/internal/cli"
	"github.com/Veraticus/bankpulse/internal/common"
	"github.com/Veraticus/bankpulse/internal/model"
	"github.com/spf13/cobra"
)

func accountsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "accounts",
		Short: "Show or set account balances",
		Long: `Account balances feed the emergency fund factor of the health score. They are
filled by import-ofx and sync, or set by hand for accounts neither can reach.`,
	}

	cmd.AddCommand(accountsListCmd())
	cmd.AddCommand(accountsSetCmd())
	return cmd
}

func accountsListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List account balances",
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

			accounts, err := store.GetAccounts(ctx)
			if err != nil {
				return err
			}
			return render(cmd.OutOrStdout(), format, accounts, func(w io.Writer) error {
				return cli.RenderAccounts(w, accounts)
			})
		},
	}
	addOutputFlag(cmd)
	return cmd
}

func accountsSetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "set ID",
		Short: "Set an account balance by hand",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			balance, _ := cmd.Flags().GetFloat64("balance")
			name, _ := cmd.Flags().GetString("name")

			ctx := cmd.Context()
			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			if name == "" {
				if _, err := store.GetAccount(ctx, args[0]); errors.Is(err, common.ErrNotFound) {
					name = args[0]
				} else if err != nil {
					return err
				}
			}

			account := model.Account{ID: args[0], Name: name, Balance: balance, UpdatedAt: time.Now().UTC()}
			if err := store.UpsertAccounts(ctx, []model.Account{account}); err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("%s balance set to %s", args[0], cli.Money(balance))))
			return err
		},
	}

	cmd.Flags().Float64("balance", 0, "current balance (negative for money owed)")
	cmd.Flags().String("name", "", "display name (kept when omitted)")
	_ = cmd.MarkFlagRequired("balance")
	return cmd
}

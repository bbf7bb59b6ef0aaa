// Package plaid syncs transactions and account balances from the Plaid API.
package plaid

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/Veraticus/bankpulse/internal/common"
	"github.com/Veraticus/bankpulse/internal/model"
	"github.com/Veraticus/bankpulse/internal/service"
	"github.com/plaid/plaid-go/v20/plaid"
)

const (
	dateLayout      = "2006-01-02"
	pageSize        = int32(500) // Plaid's max page size
	rateLimitedCode = "RATE_LIMIT_EXCEEDED"
)

// Config holds Plaid API configuration.
type Config struct {
	ClientID    string
	Secret      string
	Environment string // sandbox or production
	AccessToken string
}

// Validate ensures all required fields are present.
func (c *Config) Validate() error {
	switch {
	case c.ClientID == "":
		return fmt.Errorf("%w: plaid client ID is required", common.ErrMissingConfig)
	case c.Secret == "":
		return fmt.Errorf("%w: plaid secret is required", common.ErrMissingConfig)
	case c.AccessToken == "":
		return fmt.Errorf("%w: plaid access token is required", common.ErrMissingConfig)
	case c.Environment != "sandbox" && c.Environment != "production":
		return fmt.Errorf("%w: plaid environment must be sandbox or production, got %q", common.ErrInvalidConfig, c.Environment)
	}
	return nil
}

// Client fetches data for a single linked Item.
type Client struct {
	client      *plaid.APIClient
	logger      *slog.Logger
	retryOpts   service.RetryOptions
	accessToken string
}

var _ service.TransactionFetcher = (*Client)(nil)

// NewClient creates a Plaid client after validating cfg.
func NewClient(cfg Config) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	configuration := plaid.NewConfiguration()
	configuration.AddDefaultHeader("PLAID-CLIENT-ID", cfg.ClientID)
	configuration.AddDefaultHeader("PLAID-SECRET", cfg.Secret)
	if cfg.Environment == "production" {
		configuration.UseEnvironment(plaid.Production)
	} else {
		configuration.UseEnvironment(plaid.Sandbox)
	}

	return &Client{
		client:      plaid.NewAPIClient(configuration),
		accessToken: cfg.AccessToken,
		logger:      slog.Default().With("component", "plaid"),
		retryOpts: service.RetryOptions{
			MaxAttempts:  3,
			InitialDelay: time.Second,
			MaxDelay:     30 * time.Second,
			Multiplier:   2.0,
		},
	}, nil
}

// GetTransactions fetches every transaction between startDate and endDate, inclusive.
func (c *Client) GetTransactions(ctx context.Context, startDate, endDate time.Time) ([]model.Transaction, error) {
	if ctx == nil {
		return nil, fmt.Errorf("context cannot be nil")
	}
	if startDate.After(endDate) {
		return nil, fmt.Errorf("start date must be before end date")
	}

	c.logger.Info("Fetching transactions from Plaid",
		"start_date", startDate.Format(dateLayout),
		"end_date", endDate.Format(dateLayout))

	var all []plaid.Transaction
	for offset := int32(0); ; offset += pageSize {
		var page []plaid.Transaction
		var total int32

		err := common.WithRetry(ctx, func(ctx context.Context) error {
			request := plaid.NewTransactionsGetRequest(
				c.accessToken,
				startDate.Format(dateLayout),
				endDate.Format(dateLayout),
			)
			request.SetOptions(plaid.TransactionsGetRequestOptions{
				Count:  plaid.PtrInt32(pageSize),
				Offset: plaid.PtrInt32(offset),
			})

			resp, _, err := c.client.PlaidApi.TransactionsGet(ctx).TransactionsGetRequest(*request).Execute()
			if err != nil {
				return c.classifyError("fetch transactions", err)
			}
			page = resp.GetTransactions()
			total = resp.GetTotalTransactions()
			return nil
		}, c.retryOpts)
		if err != nil {
			return nil, err
		}

		all = append(all, page...)
		c.logger.Debug("Fetched transaction batch", "count", len(page), "offset", offset, "total", total)

		if len(page) < int(pageSize) || int32(len(all)) >= total {
			break
		}
	}

	transactions := make([]model.Transaction, 0, len(all))
	for _, pt := range all {
		txn, err := mapTransaction(pt)
		if err != nil {
			c.logger.Warn("Skipping transaction", "id", pt.GetTransactionId(), "error", err)
			continue
		}
		transactions = append(transactions, txn)
	}

	c.logger.Info("Fetched all transactions", "count", len(transactions))
	return transactions, nil
}

// GetAccounts fetches the Item's accounts with their current balances.
func (c *Client) GetAccounts(ctx context.Context) ([]model.Account, error) {
	if ctx == nil {
		return nil, fmt.Errorf("context cannot be nil")
	}

	var accounts []plaid.AccountBase
	err := common.WithRetry(ctx, func(ctx context.Context) error {
		request := plaid.NewAccountsGetRequest(c.accessToken)
		resp, _, err := c.client.PlaidApi.AccountsGet(ctx).AccountsGetRequest(*request).Execute()
		if err != nil {
			return c.classifyError("fetch accounts", err)
		}
		accounts = resp.GetAccounts()
		return nil
	}, c.retryOpts)
	if err != nil {
		return nil, err
	}

	c.logger.Info("Fetched accounts", "count", len(accounts))

	now := time.Now().UTC()
	out := make([]model.Account, 0, len(accounts))
	for _, a := range accounts {
		out = append(out, mapAccount(a, now))
	}
	return out, nil
}

// classifyError turns a Plaid API failure into a retryable or terminal error.
func (c *Client) classifyError(action string, err error) error {
	plaidErr, convErr := plaid.ToPlaidError(err)
	if convErr != nil {
		return fmt.Errorf("%w: plaid: failed to %s: %w", common.ErrSourceUnavailable, action, err)
	}
	if plaidErr.ErrorCode == rateLimitedCode {
		c.logger.Warn("Rate limit hit, will retry", "error", plaidErr.ErrorMessage)
		return &common.RetryableError{Err: fmt.Errorf("plaid: %w: %s", common.ErrRateLimit, plaidErr.ErrorMessage), Retryable: true}
	}
	return common.Permanentf("plaid API error: %s - %s", plaidErr.ErrorCode, plaidErr.ErrorMessage)
}

// mapTransaction converts a Plaid transaction. Plaid reports outflows as positive
// amounts; they are stored negative here.
func mapTransaction(pt plaid.Transaction) (model.Transaction, error) {
	date, err := time.Parse(dateLayout, pt.GetDate())
	if err != nil {
		return model.Transaction{}, fmt.Errorf("invalid date %q: %w", pt.GetDate(), err)
	}
	if pt.GetTransactionId() == "" {
		return model.Transaction{}, errors.New("missing transaction ID")
	}

	merchant := pt.GetMerchantName()
	if merchant == "" {
		merchant = pt.GetName()
	}

	status := model.StatusCompleted
	if pt.GetPending() {
		status = model.StatusPending
	}

	amount := -pt.GetAmount()

	txn := model.Transaction{
		Date:         date.UTC(),
		ID:           pt.GetTransactionId(),
		Name:         pt.GetName(),
		MerchantName: normalizeMerchant(merchant),
		AccountID:    pt.GetAccountId(),
		Type:         transactionType(amount, string(pt.GetPaymentChannel()), pt.GetCategory()),
		Status:       status,
		Amount:       amount,
	}
	txn.Hash = txn.GenerateHash()
	return txn, nil
}

func transactionType(amount float64, channel string, categories []string) model.TransactionType {
	if amount >= 0 {
		return model.TypeCredit
	}
	if len(categories) > 0 && categories[0] == "Payment" {
		return model.TypePayment
	}
	switch channel {
	case "online", "in store", "in_store":
		return model.TypePurchase
	default:
		return model.TypeDebit
	}
}

// mapAccount converts a Plaid account. Credit and loan balances are amounts owed
// and are stored negative.
func mapAccount(a plaid.AccountBase, now time.Time) model.Account {
	balances := a.GetBalances()
	balance := balances.GetCurrent()
	switch a.GetType() {
	case plaid.ACCOUNTTYPE_CREDIT, plaid.ACCOUNTTYPE_LOAN:
		balance = -balance
	}

	name := a.GetName()
	if official := a.GetOfficialName(); official != "" && name == "" {
		name = official
	}

	return model.Account{
		ID:        a.GetAccountId(),
		Name:      name,
		Balance:   balance,
		UpdatedAt: now,
	}
}

// normalizeMerchant collapses whitespace and drops a trailing processor reference
// number so repeat charges from the same merchant group together. Case is preserved.
func normalizeMerchant(name string) string {
	parts := strings.Fields(name)
	if n := len(parts); n > 1 && len(parts[n-1]) > 5 && strings.Trim(parts[n-1], "0123456789") == "" {
		parts = parts[:n-1]
	}
	return strings.Join(parts, " ")
}

// Package simplefin fetches transactions and balances from a SimpleFIN bridge.
package simplefin

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/Veraticus/bankpulse/internal/common"
	"github.com/Veraticus/bankpulse/internal/model"
	"github.com/Veraticus/bankpulse/internal/service"
	"github.com/shopspring/decimal"
)

// ErrAPI is returned for non-success responses from the bridge.
var ErrAPI = errors.New("simplefin API error")

// Client implements service.TransactionFetcher for SimpleFIN.
type Client struct {
	httpClient *http.Client
	logger     *slog.Logger
	accessURL  string
	retryOpts  service.RetryOptions
}

var _ service.TransactionFetcher = (*Client)(nil)

type accountSet struct {
	Errors   []string  `json:"errors"`
	Accounts []account `json:"accounts"`
}

type account struct {
	ID           string        `json:"id"`
	Name         string        `json:"name"`
	Currency     string        `json:"currency"`
	Balance      string        `json:"balance"`
	Transactions []transaction `json:"transactions"`
	BalanceDate  int64         `json:"balance-date"`
}

type transaction struct {
	ID          string `json:"id"`
	Amount      string `json:"amount"`
	Description string `json:"description"`
	Payee       string `json:"payee"`
	Posted      int64  `json:"posted"`
	Pending     bool   `json:"pending"`
}

// NewClient creates a client for an already claimed access URL.
func NewClient(accessURL string, httpClient *http.Client) (*Client, error) {
	if accessURL == "" {
		return nil, fmt.Errorf("%w: simplefin access URL", common.ErrMissingConfig)
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &Client{
		accessURL:  strings.TrimRight(accessURL, "/"),
		httpClient: httpClient,
		logger:     slog.Default().With("component", "simplefin"),
		retryOpts:  common.DefaultRetryOptions(),
	}, nil
}

// GetTransactions returns transactions posted in [startDate, endDate].
func (c *Client) GetTransactions(ctx context.Context, startDate, endDate time.Time) ([]model.Transaction, error) {
	q := url.Values{}
	q.Set("start-date", strconv.FormatInt(startDate.Unix(), 10))
	// end-date is exclusive on the bridge side.
	q.Set("end-date", strconv.FormatInt(endDate.AddDate(0, 0, 1).Unix(), 10))
	q.Set("pending", "1")

	set, err := c.fetch(ctx, q)
	if err != nil {
		return nil, err
	}

	transactions := []model.Transaction{}
	for _, acct := range set.Accounts {
		for _, tx := range acct.Transactions {
			txn, err := mapTransaction(acct.ID, tx)
			if err != nil {
				c.logger.Warn("Skipping transaction", "account", acct.ID, "id", tx.ID, "error", err)
				continue
			}
			if txn.Date.Before(startDate) || txn.Date.After(endDate) {
				continue
			}
			transactions = append(transactions, txn)
		}
	}

	c.logger.Info("Fetched transactions", "count", len(transactions), "accounts", len(set.Accounts))
	return transactions, nil
}

// GetAccounts returns current balances without transaction history.
func (c *Client) GetAccounts(ctx context.Context) ([]model.Account, error) {
	q := url.Values{}
	q.Set("balances-only", "1")

	set, err := c.fetch(ctx, q)
	if err != nil {
		return nil, err
	}

	accounts := make([]model.Account, 0, len(set.Accounts))
	for _, acct := range set.Accounts {
		balance, err := parseAmount(acct.Balance)
		if err != nil {
			c.logger.Warn("Skipping account with unreadable balance", "account", acct.ID, "error", err)
			continue
		}
		updated := time.Now().UTC()
		if acct.BalanceDate > 0 {
			updated = time.Unix(acct.BalanceDate, 0).UTC()
		}
		accounts = append(accounts, model.Account{
			ID:        acct.ID,
			Name:      acct.Name,
			Balance:   balance,
			UpdatedAt: updated,
		})
	}
	return accounts, nil
}

func (c *Client) fetch(ctx context.Context, q url.Values) (*accountSet, error) {
	u, err := url.Parse(c.accessURL + "/accounts")
	if err != nil {
		return nil, fmt.Errorf("failed to parse access URL: %w", err)
	}
	u.RawQuery = q.Encode()

	var set accountSet
	err = common.WithRetry(ctx, func(ctx context.Context) error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
		if err != nil {
			return common.Permanentf("failed to create request: %w", err)
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return &common.RetryableError{Err: fmt.Errorf("%w: failed to fetch accounts: %w", common.ErrSourceUnavailable, err), Retryable: true}
		}
		defer func() { _ = resp.Body.Close() }()

		switch {
		case resp.StatusCode == http.StatusTooManyRequests:
			return &common.RetryableError{Err: common.ErrRateLimit, RetryAfter: retryAfter(resp.Header), Retryable: true}
		case resp.StatusCode >= http.StatusInternalServerError:
			return &common.RetryableError{Err: fmt.Errorf("%w: status %d", ErrAPI, resp.StatusCode), Retryable: true}
		case resp.StatusCode != http.StatusOK:
			body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
			return common.Permanentf("%w: status %d: %s", ErrAPI, resp.StatusCode, strings.TrimSpace(string(body)))
		}

		if err := json.NewDecoder(resp.Body).Decode(&set); err != nil {
			return common.Permanentf("failed to decode response: %w", err)
		}
		return nil
	}, c.retryOpts)
	if err != nil {
		return nil, err
	}

	for _, msg := range set.Errors {
		c.logger.Warn("Bridge reported a problem", "message", msg)
	}
	return &set, nil
}

// retryAfter reads a Retry-After header given in seconds.
func retryAfter(h http.Header) time.Duration {
	secs, err := strconv.Atoi(h.Get("Retry-After"))
	if err != nil || secs <= 0 {
		return 0
	}
	return time.Duration(secs) * time.Second
}

func mapTransaction(accountID string, tx transaction) (model.Transaction, error) {
	amount, err := parseAmount(tx.Amount)
	if err != nil {
		return model.Transaction{}, err
	}

	merchant := strings.Join(strings.Fields(tx.Payee), " ")
	if merchant == "" {
		merchant = strings.Join(strings.Fields(tx.Description), " ")
	}

	status := model.StatusCompleted
	if tx.Pending {
		status = model.StatusPending
	}

	txn := model.Transaction{
		ID:           accountID + "_" + tx.ID,
		Date:         time.Unix(tx.Posted, 0).UTC(),
		Name:         tx.Description,
		MerchantName: merchant,
		Amount:       amount,
		AccountID:    accountID,
		Type:         transactionType(amount, tx.Payee),
		Status:       status,
	}
	txn.Hash = txn.GenerateHash()
	return txn, nil
}

// transactionType infers a type from the sign. The bridge carries no channel
// or category, so outflows to a named payee count as purchases.
func transactionType(amount float64, payee string) model.TransactionType {
	switch {
	case amount >= 0:
		return model.TypeCredit
	case strings.TrimSpace(payee) != "":
		return model.TypePurchase
	default:
		return model.TypeDebit
	}
}

// parseAmount reads a signed decimal string such as "-12.34".
func parseAmount(s string) (float64, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("invalid amount %q: %w", s, err)
	}
	return d.Round(2).InexactFloat64(), nil
}

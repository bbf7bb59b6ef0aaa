package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/Veraticus/bankpulse/internal/common"
	"github.com/Veraticus/bankpulse/internal/plaid"
	"github.com/Veraticus/bankpulse/internal/recurring"
	"github.com/spf13/viper"
)

// Configuration keys.
const (
	KeyDatabasePath            = "database.path"
	KeyRecurringTolerance      = "recurring.amount_tolerance"
	KeyRecurringMinOccurrences = "recurring.min_occurrences"
	KeyRecurringWorkers        = "recurring.workers"
	KeyRecurringFoldCase       = "recurring.fold_merchant_case"
	KeyPlaidClientID           = "plaid.client_id"
	KeyPlaidSecret             = "plaid.secret"
	KeyPlaidEnvironment        = "plaid.environment"
	KeyPlaidAccessToken        = "plaid.access_token"
	KeySimpleFINToken          = "simplefin.token"
	KeySimpleFINAccessURL      = "simplefin.access_url"
	KeySyncSource              = "sync.source"
)

// SetDefaults registers default values for every key this package reads.
func SetDefaults(v *viper.Viper) {
	v.SetDefault(KeyDatabasePath, "$HOME/.local/share/pulse/pulse.db")
	v.SetDefault(KeyRecurringTolerance, recurring.DefaultOptions().AmountTolerance)
	v.SetDefault(KeyRecurringMinOccurrences, recurring.DefaultOptions().MinOccurrences)
	v.SetDefault(KeyRecurringWorkers, 1)
	v.SetDefault(KeyRecurringFoldCase, false)
	v.SetDefault(KeySyncSource, "plaid")
}

// DatabasePath returns the expanded, absolute database location.
func DatabasePath(v *viper.Viper) (string, error) {
	raw := v.GetString(KeyDatabasePath)
	if raw == "" {
		return "", fmt.Errorf("%w: %s", common.ErrMissingConfig, KeyDatabasePath)
	}
	if raw == ":memory:" {
		return raw, nil
	}
	path, err := filepath.Abs(ExpandPath(raw))
	if err != nil {
		return "", fmt.Errorf("failed to resolve database path: %w", err)
	}
	return path, nil
}

// LoadRecurringOptions builds detector options from configuration.
func LoadRecurringOptions(v *viper.Viper) (recurring.Options, error) {
	opts := recurring.DefaultOptions()

	tolerance := v.GetFloat64(KeyRecurringTolerance)
	if tolerance < 0 || tolerance >= 1 {
		return opts, fmt.Errorf("%w: %s must be in [0, 1), got %v", common.ErrInvalidConfig, KeyRecurringTolerance, tolerance)
	}
	minOccurrences := v.GetInt(KeyRecurringMinOccurrences)
	if minOccurrences < 2 {
		return opts, fmt.Errorf("%w: %s must be at least 2, got %d", common.ErrInvalidConfig, KeyRecurringMinOccurrences, minOccurrences)
	}
	workers := v.GetInt(KeyRecurringWorkers)
	if workers < 1 {
		return opts, fmt.Errorf("%w: %s must be positive, got %d", common.ErrInvalidConfig, KeyRecurringWorkers, workers)
	}

	opts.AmountTolerance = tolerance
	opts.MinOccurrences = minOccurrences
	opts.Workers = workers
	opts.FoldMerchantCase = v.GetBool(KeyRecurringFoldCase)
	return opts, nil
}

// LoadPlaidConfig loads Plaid credentials. It follows this precedence:
// 1. Viper configuration (config file or PULSE_ env vars)
// 2. Direct environment variables (PLAID_*)
// 3. The sandbox environment
func LoadPlaidConfig(v *viper.Viper) (plaid.Config, error) {
	cfg := plaid.Config{
		ClientID:    firstNonEmpty(v.GetString(KeyPlaidClientID), os.Getenv("PLAID_CLIENT_ID")),
		Secret:      firstNonEmpty(v.GetString(KeyPlaidSecret), os.Getenv("PLAID_SECRET")),
		AccessToken: firstNonEmpty(v.GetString(KeyPlaidAccessToken), os.Getenv("PLAID_ACCESS_TOKEN")),
		Environment: firstNonEmpty(v.GetString(KeyPlaidEnvironment), os.Getenv("PLAID_ENV"), "sandbox"),
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

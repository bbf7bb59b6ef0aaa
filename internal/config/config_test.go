package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/Veraticus/bankpulse/internal/common"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newViper() *viper.Viper {
	v := viper.New()
	SetDefaults(v)
	return v
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)
	t.Setenv("PULSE_TEST_DIR", "/srv/pulse")

	tests := []struct {
		in   string
		want string
	}{
		{in: "", want: ""},
		{in: "~", want: home},
		{in: "~/data/pulse.db", want: filepath.Join(home, "data/pulse.db")},
		{in: "$PULSE_TEST_DIR/pulse.db", want: "/srv/pulse/pulse.db"},
		{in: "/abs/path.db", want: "/abs/path.db"},
		{in: "~other/path", want: "~other/path"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ExpandPath(tt.in))
		})
	}
}

func TestDatabasePath(t *testing.T) {
	v := newViper()
	home, err := os.UserHomeDir()
	require.NoError(t, err)
	t.Setenv("HOME", home)

	path, err := DatabasePath(v)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, ".local/share/pulse/pulse.db"), path)

	v.Set(KeyDatabasePath, ":memory:")
	path, err = DatabasePath(v)
	require.NoError(t, err)
	assert.Equal(t, ":memory:", path)

	_, err = DatabasePath(viper.New())
	assert.ErrorIs(t, err, common.ErrMissingConfig)
}

func TestLoadRecurringOptions(t *testing.T) {
	opts, err := LoadRecurringOptions(newViper())
	require.NoError(t, err)
	assert.InDelta(t, 0.10, opts.AmountTolerance, 1e-12)
	assert.Equal(t, 2, opts.MinOccurrences)
	assert.Equal(t, 1, opts.Workers)
	assert.False(t, opts.FoldMerchantCase)
	assert.Len(t, opts.Buckets, 4)

	v := newViper()
	v.Set(KeyRecurringTolerance, 0.2)
	v.Set(KeyRecurringWorkers, 4)
	v.Set(KeyRecurringFoldCase, true)
	opts, err = LoadRecurringOptions(v)
	require.NoError(t, err)
	assert.InDelta(t, 0.2, opts.AmountTolerance, 1e-12)
	assert.Equal(t, 4, opts.Workers)
	assert.True(t, opts.FoldMerchantCase)
}

func TestLoadRecurringOptions_Invalid(t *testing.T) {
	tests := []struct {
		key   string
		value any
	}{
		{key: KeyRecurringTolerance, value: -0.1},
		{key: KeyRecurringTolerance, value: 1.5},
		{key: KeyRecurringWorkers, value: 0},
		{key: KeyRecurringMinOccurrences, value: 1},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			v := newViper()
			v.Set(tt.key, tt.value)
			_, err := LoadRecurringOptions(v)
			assert.ErrorIs(t, err, common.ErrInvalidConfig)
		})
	}
}

func TestLoadPlaidConfig(t *testing.T) {
	t.Setenv("PLAID_CLIENT_ID", "env-client")
	t.Setenv("PLAID_SECRET", "env-secret")
	t.Setenv("PLAID_ACCESS_TOKEN", "env-token")
	t.Setenv("PLAID_ENV", "")

	v := newViper()
	v.Set(KeyPlaidClientID, "config-client")

	cfg, err := LoadPlaidConfig(v)
	require.NoError(t, err)
	assert.Equal(t, "config-client", cfg.ClientID)
	assert.Equal(t, "env-secret", cfg.Secret)
	assert.Equal(t, "env-token", cfg.AccessToken)
	assert.Equal(t, "sandbox", cfg.Environment)

	t.Setenv("PLAID_ENV", "production")
	cfg, err = LoadPlaidConfig(newViper())
	require.NoError(t, err)
	assert.Equal(t, "production", cfg.Environment)
}

func TestLoadPlaidConfig_Missing(t *testing.T) {
	for _, key := range []string{"PLAID_CLIENT_ID", "PLAID_SECRET", "PLAID_ACCESS_TOKEN", "PLAID_ENV"} {
		t.Setenv(key, "")
	}

	_, err := LoadPlaidConfig(newViper())
	assert.ErrorIs(t, err, common.ErrMissingConfig)
}

package storage

import (
	"context"
	"testing"
	"time"

	"github.com/Veraticus/bankpulse/internal/common"
	"github.com/Veraticus/bankpulse/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUpsertAccounts(t *testing.T) {
	ctx := context.Background()
	store := createTestStorage(t)
	stamp := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	require.NoError(t, store.UpsertAccounts(ctx, []model.Account{
		{ID: "checking", Name: "Everyday Checking", Balance: 1200.50, UpdatedAt: stamp},
		{ID: "savings", Name: "High Yield", Balance: 8000, UpdatedAt: stamp},
	}))

	accounts, err := store.GetAccounts(ctx)
	require.NoError(t, err)
	require.Len(t, accounts, 2)
	assert.Equal(t, "checking", accounts[0].ID)
	assert.Equal(t, 1200.50, accounts[0].Balance)
	assert.True(t, stamp.Equal(accounts[0].UpdatedAt))
	assert.Equal(t, 9200.50, model.TotalBalance(accounts))

	// A balance-only update keeps the existing name.
	later := stamp.Add(24 * time.Hour)
	require.NoError(t, store.UpsertAccounts(ctx, []model.Account{
		{ID: "checking", Balance: 900, UpdatedAt: later},
	}))

	checking, err := store.GetAccount(ctx, "checking")
	require.NoError(t, err)
	assert.Equal(t, "Everyday Checking", checking.Name)
	assert.Equal(t, 900.0, checking.Balance)
	assert.True(t, later.Equal(checking.UpdatedAt))
}

func TestUpsertAccounts_StampsMissingTime(t *testing.T) {
	ctx := context.Background()
	store := createTestStorage(t)

	before := time.Now().Add(-time.Second)
	require.NoError(t, store.UpsertAccounts(ctx, []model.Account{{ID: "card", Balance: -250}}))

	card, err := store.GetAccount(ctx, "card")
	require.NoError(t, err)
	assert.True(t, card.UpdatedAt.After(before))
	assert.Equal(t, -250.0, card.Balance)
}

func TestUpsertAccounts_Invalid(t *testing.T) {
	store := createTestStorage(t)

	err := store.UpsertAccounts(context.Background(), []model.Account{{Name: "no id"}})
	assert.ErrorIs(t, err, ErrInvalidAccount)
}

func TestGetAccount_NotFound(t *testing.T) {
	store := createTestStorage(t)

	_, err := store.GetAccount(context.Background(), "nope")
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestGetAccounts_Empty(t *testing.T) {
	store := createTestStorage(t)

	accounts, err := store.GetAccounts(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, accounts)
	assert.Empty(t, accounts)
}

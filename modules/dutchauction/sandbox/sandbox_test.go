package sandbox

import (
	"context"
	"testing"

	"github.com/gaze-network/uint128"
	"github.com/mintfall/auction-engine/modules/dutchauction/internal/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryCaps(t *testing.T) {
	registry := NewRegistry(Config{
		DefaultMaxInvocations: 2,
		Projects:              map[string]uint64{"core/7": 1},
	})
	ctx := context.Background()

	current, max, err := registry.Invocations(ctx, entity.NewProjectKey("", 7))
	require.NoError(t, err)
	assert.Equal(t, uint64(0), current)
	assert.Equal(t, uint64(1), max)

	_, max, err = registry.Invocations(ctx, entity.NewProjectKey("", 8))
	require.NoError(t, err)
	assert.Equal(t, uint64(2), max)
}

func TestRegistryRecordMint(t *testing.T) {
	registry := NewRegistry(Config{DefaultMaxInvocations: 2})
	ctx := context.Background()
	project := entity.NewProjectKey("", 7)

	tokenID, err := registry.RecordMint(ctx, project, "alice")
	require.NoError(t, err)
	assert.Equal(t, uint64(7_000_001), tokenID)

	tokenID, err = registry.RecordMint(ctx, project, "bob")
	require.NoError(t, err)
	assert.Equal(t, uint64(7_000_002), tokenID)

	_, err = registry.RecordMint(ctx, project, "carol")
	require.Error(t, err)

	current, _, err := registry.Invocations(ctx, project)
	require.NoError(t, err)
	assert.Equal(t, uint64(2), current)
}

func TestBankEscrowFlow(t *testing.T) {
	bank := NewBank()
	ctx := context.Background()

	bank.Deposit("alice", uint128.From64(100))
	require.NoError(t, bank.Collect(ctx, "alice", uint128.From64(60)))
	assert.Equal(t, uint128.From64(40), bank.BalanceOf("alice"))
	assert.Equal(t, uint128.From64(60), bank.Escrow())

	require.NoError(t, bank.Send(ctx, "artist", uint128.From64(50)))
	assert.Equal(t, uint128.From64(50), bank.BalanceOf("artist"))
	assert.Equal(t, uint128.From64(10), bank.Escrow())

	// overdrafts in either direction are rejected
	require.Error(t, bank.Collect(ctx, "alice", uint128.From64(41)))
	require.Error(t, bank.Send(ctx, "artist", uint128.From64(11)))
}

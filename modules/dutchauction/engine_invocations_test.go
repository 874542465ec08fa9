package dutchauction

import (
	"context"
	"testing"

	"github.com/gaze-network/uint128"
	"github.com/mintfall/auction-engine/modules/dutchauction/internal/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetMaxInvocationsLimitBounds(t *testing.T) {
	env := newTestEnv(t)
	env.registry.SetMax(testProject, 10)
	env.configureAndStart(t)
	env.buy(t, "alice", testStartPrice)
	env.buy(t, "bob", testStartPrice)
	ctx := context.Background()

	// below current invocation count
	err := env.engine.SetMaxInvocationsLimit(ctx, testProject, 1)
	require.ErrorIs(t, err, ErrInvalidMaxInvocations)

	// above the authoritative cap
	err = env.engine.SetMaxInvocationsLimit(ctx, testProject, 11)
	require.ErrorIs(t, err, ErrInvalidMaxInvocations)

	err = env.engine.SetMaxInvocationsLimit(ctx, testProject, 5)
	require.NoError(t, err)
}

func TestSetMaxInvocationsLimitTightensSales(t *testing.T) {
	env := newTestEnv(t)
	env.registry.SetMax(testProject, 10)
	env.configureAndStart(t)
	ctx := context.Background()

	require.NoError(t, env.engine.SetMaxInvocationsLimit(ctx, testProject, 2))

	env.buy(t, "alice", testStartPrice)
	env.buy(t, "bob", testStartPrice)

	// the registry would allow more, the local cap wins
	env.bank.Deposit("carol", uint128.From64(testStartPrice))
	_, err := env.engine.Purchase(ctx, testProject, "carol", uint128.From64(testStartPrice))
	require.ErrorIs(t, err, ErrMaximumInvocationsReached)
}

func TestSetMaxInvocationsLimitTerminalOnceReached(t *testing.T) {
	env := newTestEnv(t)
	env.registry.SetMax(testProject, 10)
	env.configureAndStart(t)
	ctx := context.Background()

	require.NoError(t, env.engine.SetMaxInvocationsLimit(ctx, testProject, 1))
	env.buy(t, "alice", testStartPrice)

	// even widening back towards the authoritative cap is rejected now
	err := env.engine.SetMaxInvocationsLimit(ctx, testProject, 5)
	require.ErrorIs(t, err, ErrMaximumInvocationsReached)
}

func TestSetMaxInvocationsLimitEqualToCurrentLatches(t *testing.T) {
	env := newTestEnv(t)
	env.registry.SetMax(testProject, 10)
	env.configureAndStart(t)
	ctx := context.Background()
	env.buy(t, "alice", testStartPrice)

	require.NoError(t, env.engine.SetMaxInvocationsLimit(ctx, testProject, 1))

	env.bank.Deposit("bob", uint128.From64(testStartPrice))
	_, err := env.engine.Purchase(ctx, testProject, "bob", uint128.From64(testStartPrice))
	require.ErrorIs(t, err, ErrMaximumInvocationsReached)
}

func TestReconcileClampsStaleCache(t *testing.T) {
	env := newTestEnv(t)
	env.registry.SetMax(testProject, 5)
	ctx := context.Background()

	// a stale cache above the authoritative cap must never win
	require.NoError(t, env.repo.SetInvocationCache(ctx, &entity.InvocationCache{
		Project:        testProject,
		MaxInvocations: 50,
	}))

	env.configureAndStart(t)

	cache, err := env.repo.GetInvocationCache(ctx, testProject)
	require.NoError(t, err)
	assert.Equal(t, uint64(5), cache.MaxInvocations)
	assert.False(t, cache.HasMaxBeenInvoked)
}

func TestCapRejectionStillRefreshesCache(t *testing.T) {
	env := newTestEnv(t)
	env.registry.SetMax(testProject, 1)
	env.configureAndStart(t)
	env.buy(t, "alice", testStartPrice)

	ctx := context.Background()

	// wipe the latch behind the engine's back to simulate a stale cache
	require.NoError(t, env.repo.SetInvocationCache(ctx, &entity.InvocationCache{
		Project:        testProject,
		MaxInvocations: 1,
	}))

	env.bank.Deposit("bob", uint128.From64(testStartPrice))
	_, err := env.engine.Purchase(ctx, testProject, "bob", uint128.From64(testStartPrice))
	require.ErrorIs(t, err, ErrMaximumInvocationsReached)

	// the rejected sale still persisted the refreshed latch
	cache, err := env.repo.GetInvocationCache(ctx, testProject)
	require.NoError(t, err)
	assert.True(t, cache.HasMaxBeenInvoked)
}

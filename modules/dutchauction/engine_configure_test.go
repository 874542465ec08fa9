package dutchauction

import (
	"context"
	"testing"
	"time"

	"github.com/gaze-network/uint128"
	"github.com/mintfall/auction-engine/common/errs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetAuctionDetailsValidation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	start := env.now.Add(time.Minute)
	startPrice := uint128.From64(testStartPrice)
	basePrice := uint128.From64(testBasePrice)

	err := env.engine.SetAuctionDetails(ctx, testProject, start, 10*time.Second, startPrice, basePrice)
	assert.ErrorIs(t, err, ErrInvalidHalfLife)

	err = env.engine.SetAuctionDetails(ctx, testProject, start, 2*time.Hour, startPrice, basePrice)
	assert.ErrorIs(t, err, ErrInvalidHalfLife)

	err = env.engine.SetAuctionDetails(ctx, testProject, start, testHalfLife, startPrice, uint128.Zero)
	assert.ErrorIs(t, err, ErrInvalidPriceRange)

	err = env.engine.SetAuctionDetails(ctx, testProject, start, testHalfLife, basePrice, basePrice)
	assert.ErrorIs(t, err, ErrInvalidPriceRange)

	err = env.engine.SetAuctionDetails(ctx, testProject, env.now, testHalfLife, startPrice, basePrice)
	assert.ErrorIs(t, err, ErrOnlyFutureStartTimes)

	// nothing was persisted
	_, err = env.engine.GetAuctionParams(ctx, testProject)
	assert.ErrorIs(t, err, errs.NotFound)
}

func TestSetAuctionDetailsReconfigureBeforeStart(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	err := env.engine.SetAuctionDetails(ctx, testProject, env.now.Add(time.Minute), testHalfLife, uint128.From64(testStartPrice), uint128.From64(testBasePrice))
	require.NoError(t, err)

	// still before start, re-configuration is allowed
	err = env.engine.SetAuctionDetails(ctx, testProject, env.now.Add(2*time.Minute), 2*testHalfLife, uint128.From64(2*testStartPrice), uint128.From64(testBasePrice))
	require.NoError(t, err)

	params, err := env.engine.GetAuctionParams(ctx, testProject)
	require.NoError(t, err)
	assert.Equal(t, 2*testHalfLife, params.PriceDecayHalfLife)
	assert.Equal(t, uint128.From64(2*testStartPrice), params.StartPrice)
}

func TestSetAuctionDetailsFrozenAfterStart(t *testing.T) {
	env := newTestEnv(t)
	env.configureAndStart(t)

	err := env.engine.SetAuctionDetails(context.Background(), testProject, env.now.Add(time.Minute), testHalfLife, uint128.From64(testStartPrice), uint128.From64(testBasePrice))
	require.ErrorIs(t, err, ErrAuctionAlreadyStarted)
}

func TestSetAuctionDetailsRejectsPriceAboveUnsettledLatest(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.configureAndStart(t)
	env.advance(testHalfLife)
	env.buy(t, "alice", testStartPrice/2)

	require.NoError(t, env.engine.ResetAuctionDetails(ctx, testProject))

	// prior epoch is unsettled, the new start price must not exceed what
	// buyers already paid
	err := env.engine.SetAuctionDetails(ctx, testProject, env.now.Add(time.Minute), testHalfLife, uint128.From64(testStartPrice), uint128.From64(testBasePrice))
	require.ErrorIs(t, err, ErrPriceAboveUnsettledLatest)

	err = env.engine.SetAuctionDetails(ctx, testProject, env.now.Add(time.Minute), testHalfLife, uint128.From64(testStartPrice/2), uint128.From64(testBasePrice))
	require.NoError(t, err)
}

func TestResetAuctionDetails(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	err := env.engine.ResetAuctionDetails(ctx, testProject)
	require.ErrorIs(t, err, ErrAuctionNotConfigured)

	env.configureAndStart(t)
	require.NoError(t, env.engine.ResetAuctionDetails(ctx, testProject))

	_, err = env.engine.GetAuctionParams(ctx, testProject)
	assert.ErrorIs(t, err, errs.NotFound)

	info, err := env.engine.GetPriceInfo(ctx, testProject)
	require.NoError(t, err)
	assert.False(t, info.Configured)
}

func TestResetAuctionDetailsAfterCollection(t *testing.T) {
	env := newTestEnv(t)
	env.registry.SetMax(testProject, 1)
	env.configureAndStart(t)
	env.buy(t, "alice", testStartPrice)

	_, err := env.engine.WithdrawRevenues(context.Background(), testProject)
	require.NoError(t, err)

	err = env.engine.ResetAuctionDetails(context.Background(), testProject)
	require.ErrorIs(t, err, ErrAlreadyCollected)
}

func TestResetPreservesSettlementState(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.configureAndStart(t)
	env.buy(t, "alice", testStartPrice)

	require.NoError(t, env.engine.ResetAuctionDetails(ctx, testProject))

	settlement, err := env.engine.GetProjectSettlement(ctx, testProject)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), settlement.NumSettleableInvocations)
	assert.Equal(t, uint128.From64(testStartPrice), settlement.LatestPurchasePrice)
}

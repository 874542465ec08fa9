package dutchauction

import (
	"context"
	"testing"
	"time"

	"github.com/gaze-network/uint128"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPurchaseAtCurrentPrice(t *testing.T) {
	env := newTestEnv(t)
	env.configureAndStart(t)

	result := env.buy(t, "alice", testStartPrice)
	assert.Equal(t, uint128.From64(testStartPrice), result.PricePaid)
	assert.Equal(t, uint128.From64(testStartPrice), result.AmountPosted)
	assert.NotZero(t, result.TokenID)

	// whole payment moved into escrow
	assert.True(t, env.bank.BalanceOf("alice").IsZero())
	assert.Equal(t, uint128.From64(testStartPrice), env.bank.Escrow())

	settlement, err := env.engine.GetProjectSettlement(context.Background(), testProject)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), settlement.NumSettleableInvocations)
	assert.Equal(t, uint128.From64(testStartPrice), settlement.LatestPurchasePrice)
}

func TestPurchaseOverpaymentIsTracked(t *testing.T) {
	env := newTestEnv(t)
	env.configureAndStart(t)
	env.advance(testHalfLife)

	result := env.buy(t, "alice", testStartPrice)
	assert.Equal(t, uint128.From64(testStartPrice/2), result.PricePaid)
	assert.Equal(t, uint128.From64(testStartPrice), result.AmountPosted)

	excess, err := env.engine.GetExcessSettlementFunds(context.Background(), testProject, "alice")
	require.NoError(t, err)
	assert.Equal(t, uint128.From64(testStartPrice/2), excess)
}

func TestPurchaseUnconfigured(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.engine.Purchase(context.Background(), testProject, "alice", uint128.From64(testStartPrice))
	require.ErrorIs(t, err, ErrOnlyConfiguredAuctions)
}

func TestPurchaseBeforeStart(t *testing.T) {
	env := newTestEnv(t)
	err := env.engine.SetAuctionDetails(context.Background(), testProject, env.now.Add(time.Minute), testHalfLife, uint128.From64(testStartPrice), uint128.From64(testBasePrice))
	require.NoError(t, err)

	_, err = env.engine.Purchase(context.Background(), testProject, "alice", uint128.From64(testStartPrice))
	require.ErrorIs(t, err, ErrOnlyConfiguredAuctions)
}

func TestPurchaseNeedMoreValue(t *testing.T) {
	env := newTestEnv(t)
	env.configureAndStart(t)

	env.bank.Deposit("alice", uint128.From64(testStartPrice))
	_, err := env.engine.Purchase(context.Background(), testProject, "alice", uint128.From64(testStartPrice-1))
	require.ErrorIs(t, err, ErrNeedMoreValue)
}

func TestPurchaseInsufficientBalanceRollsBack(t *testing.T) {
	env := newTestEnv(t)
	env.configureAndStart(t)

	// no deposit, the payment collection fails
	_, err := env.engine.Purchase(context.Background(), testProject, "alice", uint128.From64(testStartPrice))
	require.Error(t, err)

	settlement, err := env.engine.GetProjectSettlement(context.Background(), testProject)
	require.NoError(t, err)
	assert.Zero(t, settlement.NumSettleableInvocations)
	_, err = env.engine.GetExcessSettlementFunds(context.Background(), testProject, "alice")
	assert.ErrorIs(t, err, ErrNoPurchasesMade)
}

func TestPurchaseCapEnforced(t *testing.T) {
	env := newTestEnv(t)
	env.registry.SetMax(testProject, 3)
	env.configureAndStart(t)

	for i, buyer := range []string{"alice", "bob", "carol"} {
		result := env.buy(t, buyer, testStartPrice)
		assert.NotZero(t, result.TokenID, "purchase %d", i)
	}

	env.bank.Deposit("dave", uint128.From64(testStartPrice))
	_, err := env.engine.Purchase(context.Background(), testProject, "dave", uint128.From64(testStartPrice))
	require.ErrorIs(t, err, ErrMaximumInvocationsReached)

	// sold out latches the price at the latest purchase price
	env.advance(10 * testHalfLife)
	info, err := env.engine.GetPriceInfo(context.Background(), testProject)
	require.NoError(t, err)
	assert.Equal(t, uint128.From64(testStartPrice), info.Price)
}

func TestPurchaseToDifferentRecipient(t *testing.T) {
	env := newTestEnv(t)
	env.configureAndStart(t)

	env.bank.Deposit("alice", uint128.From64(testStartPrice))
	result, err := env.engine.PurchaseTo(context.Background(), testProject, "alice", "vault", uint128.From64(testStartPrice))
	require.NoError(t, err)

	events, err := env.engine.GetPurchaseEvents(context.Background(), testProject, 10, 0)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "alice", events[0].Buyer)
	assert.Equal(t, "vault", events[0].Recipient)
	assert.Equal(t, result.TokenID, events[0].TokenID)
}

func TestPurchaseAfterCollectionChargesClearingPrice(t *testing.T) {
	env := newTestEnv(t)
	env.configureAndStart(t)
	env.advance(10 * testHalfLife) // decayed to base price
	env.buy(t, "alice", testBasePrice)

	_, err := env.engine.WithdrawRevenues(context.Background(), testProject)
	require.NoError(t, err)
	artistBefore := env.bank.BalanceOf("artist")

	// the live decay no longer applies, sales are charged the locked clearing
	// price and forwarded immediately
	result := env.buy(t, "bob", testBasePrice)
	assert.Equal(t, uint128.From64(testBasePrice), result.PricePaid)

	settlement, err := env.engine.GetProjectSettlement(context.Background(), testProject)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), settlement.NumSettleableInvocations)

	artistShare := uint128.From64(testBasePrice * 90 / 100)
	assert.Equal(t, artistBefore.Add(artistShare), env.bank.BalanceOf("artist"))
}

func TestPurchaseEventsNewestFirst(t *testing.T) {
	env := newTestEnv(t)
	env.configureAndStart(t)

	env.buy(t, "alice", testStartPrice)
	env.advance(testHalfLife)
	env.buy(t, "bob", testStartPrice/2)

	events, err := env.engine.GetPurchaseEvents(context.Background(), testProject, 10, 0)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, "bob", events[0].Buyer)
	assert.Equal(t, "alice", events[1].Buyer)
}

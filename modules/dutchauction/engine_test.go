package dutchauction

import (
	"context"
	"testing"
	"time"

	"github.com/gaze-network/uint128"
	"github.com/mintfall/auction-engine/modules/dutchauction/internal/entity"
	"github.com/mintfall/auction-engine/modules/dutchauction/repository/memory"
	"github.com/mintfall/auction-engine/modules/dutchauction/sandbox"
	"github.com/mintfall/auction-engine/modules/dutchauction/splits"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testStartPrice = 5_000_000
	testBasePrice  = 1_000_000
	testHalfLife   = 60 * time.Second
)

var testProject = entity.NewProjectKey("", 7)

type testEnv struct {
	engine   *Engine
	repo     *memory.Repository
	registry *sandbox.Registry
	bank     *sandbox.Bank
	now      time.Time
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	env := &testEnv{
		now:      time.Unix(1_700_000_000, 0).UTC(),
		repo:     memory.NewRepository(),
		registry: sandbox.NewRegistry(sandbox.Config{DefaultMaxInvocations: 100}),
		bank:     sandbox.NewBank(),
	}
	splitProvider, err := splits.NewStaticProvider(splits.Config{
		Default: []splits.RecipientConfig{
			{Address: "artist", Percentage: "90"},
			{Address: "platform", Percentage: "10"},
		},
	})
	require.NoError(t, err)
	env.engine = NewEngine(
		Flavor{Currency: CurrencyToken},
		env.repo,
		env.registry,
		env.bank,
		splitProvider,
		WithClock(func() time.Time { return env.now }),
	)
	return env
}

func (env *testEnv) advance(d time.Duration) {
	env.now = env.now.Add(d)
}

// configureAndStart configures the default auction and advances the clock to
// its start time.
func (env *testEnv) configureAndStart(t *testing.T) {
	t.Helper()
	err := env.engine.SetAuctionDetails(
		context.Background(),
		testProject,
		env.now.Add(time.Minute),
		testHalfLife,
		uint128.From64(testStartPrice),
		uint128.From64(testBasePrice),
	)
	require.NoError(t, err)
	env.advance(time.Minute)
}

// buy funds the buyer and purchases one item at the given payment.
func (env *testEnv) buy(t *testing.T, buyer string, payment uint64) *PurchaseResult {
	t.Helper()
	env.bank.Deposit(buyer, uint128.From64(payment))
	result, err := env.engine.Purchase(context.Background(), testProject, buyer, uint128.From64(payment))
	require.NoError(t, err)
	return result
}

func TestGetPriceInfoUnconfigured(t *testing.T) {
	env := newTestEnv(t)
	info, err := env.engine.GetPriceInfo(context.Background(), testProject)
	require.NoError(t, err)
	assert.False(t, info.Configured)
	assert.True(t, info.Price.IsZero())
}

func TestGetPriceInfoBeforeStart(t *testing.T) {
	env := newTestEnv(t)
	err := env.engine.SetAuctionDetails(context.Background(), testProject, env.now.Add(time.Minute), testHalfLife, uint128.From64(testStartPrice), uint128.From64(testBasePrice))
	require.NoError(t, err)

	info, err := env.engine.GetPriceInfo(context.Background(), testProject)
	require.NoError(t, err)
	assert.True(t, info.Configured)
	assert.Equal(t, uint128.From64(testStartPrice), info.Price)
}

func TestGetPriceInfoLiveDecay(t *testing.T) {
	env := newTestEnv(t)
	env.configureAndStart(t)
	env.advance(testHalfLife)

	info, err := env.engine.GetPriceInfo(context.Background(), testProject)
	require.NoError(t, err)
	assert.Equal(t, uint128.From64(testStartPrice/2), info.Price)
}

func TestGetPriceInfoSoldOut(t *testing.T) {
	env := newTestEnv(t)
	env.registry.SetMax(testProject, 1)
	env.configureAndStart(t)
	env.buy(t, "alice", testStartPrice)
	env.advance(testHalfLife)

	// decay stops at the latest purchase price once sold out
	info, err := env.engine.GetPriceInfo(context.Background(), testProject)
	require.NoError(t, err)
	assert.Equal(t, uint128.From64(testStartPrice), info.Price)
}

func TestGetPriceInfoAfterCollection(t *testing.T) {
	env := newTestEnv(t)
	env.registry.SetMax(testProject, 1)
	env.configureAndStart(t)
	env.advance(testHalfLife)
	env.buy(t, "alice", testStartPrice/2)

	_, err := env.engine.WithdrawRevenues(context.Background(), testProject)
	require.NoError(t, err)

	info, err := env.engine.GetPriceInfo(context.Background(), testProject)
	require.NoError(t, err)
	assert.Equal(t, uint128.From64(testStartPrice/2), info.Price)
}

func TestReentrancyGuard(t *testing.T) {
	env := newTestEnv(t)
	env.configureAndStart(t)

	require.NoError(t, env.engine.enter(guardProject, testProject.String()))
	defer env.engine.exit(guardProject, testProject.String())

	_, err := env.engine.Purchase(context.Background(), testProject, "alice", uint128.From64(testStartPrice))
	require.ErrorIs(t, err, ErrReentrantCall)

	// other projects are unaffected
	other := entity.NewProjectKey("", 8)
	_, err = env.engine.Purchase(context.Background(), other, "alice", uint128.From64(testStartPrice))
	require.ErrorIs(t, err, ErrOnlyConfiguredAuctions)
}

package memory

import (
	"context"
	"testing"
	"time"

	"github.com/gaze-network/uint128"
	"github.com/mintfall/auction-engine/common/errs"
	"github.com/mintfall/auction-engine/modules/dutchauction/internal/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var project = entity.NewProjectKey("", 1)

func params() *entity.AuctionParams {
	return &entity.AuctionParams{
		Project:            project,
		StartTime:          time.Unix(1_700_000_000, 0).UTC(),
		PriceDecayHalfLife: time.Minute,
		StartPrice:         uint128.From64(100),
		BasePrice:          uint128.From64(10),
	}
}

func TestNotFound(t *testing.T) {
	repo := NewRepository()
	ctx := context.Background()

	_, err := repo.GetAuctionParams(ctx, project)
	assert.ErrorIs(t, err, errs.NotFound)
	_, err = repo.GetProjectSettlement(ctx, project)
	assert.ErrorIs(t, err, errs.NotFound)
	_, err = repo.GetPurchaseReceipt(ctx, project, "alice")
	assert.ErrorIs(t, err, errs.NotFound)
	_, err = repo.GetInvocationCache(ctx, project)
	assert.ErrorIs(t, err, errs.NotFound)
}

func TestTxCommit(t *testing.T) {
	repo := NewRepository()
	ctx := context.Background()

	tx, err := repo.BeginDutchAuctionTx(ctx)
	require.NoError(t, err)
	require.NoError(t, tx.SetAuctionParams(ctx, params()))

	// not visible before commit
	_, err = repo.GetAuctionParams(ctx, project)
	assert.ErrorIs(t, err, errs.NotFound)

	require.NoError(t, tx.Commit(ctx))

	got, err := repo.GetAuctionParams(ctx, project)
	require.NoError(t, err)
	assert.Equal(t, params(), got)
}

func TestTxRollback(t *testing.T) {
	repo := NewRepository()
	ctx := context.Background()

	tx, err := repo.BeginDutchAuctionTx(ctx)
	require.NoError(t, err)
	require.NoError(t, tx.SetAuctionParams(ctx, params()))
	require.NoError(t, tx.Rollback(ctx))

	_, err = repo.GetAuctionParams(ctx, project)
	assert.ErrorIs(t, err, errs.NotFound)
}

func TestInterleavedTxCommitsKeepBothWrites(t *testing.T) {
	repo := NewRepository()
	ctx := context.Background()
	other := entity.NewProjectKey("", 2)

	tx1, err := repo.BeginDutchAuctionTx(ctx)
	require.NoError(t, err)
	tx2, err := repo.BeginDutchAuctionTx(ctx)
	require.NoError(t, err)

	require.NoError(t, tx1.SetAuctionParams(ctx, params()))
	require.NoError(t, tx1.AddPurchaseEvent(ctx, &entity.PurchaseEvent{Project: project, TokenID: 1}))
	require.NoError(t, tx2.SetProjectSettlement(ctx, &entity.ProjectSettlement{
		Project:                  other,
		NumSettleableInvocations: 3,
	}))
	require.NoError(t, tx2.AddPurchaseEvent(ctx, &entity.PurchaseEvent{Project: other, TokenID: 2}))

	require.NoError(t, tx1.Commit(ctx))
	require.NoError(t, tx2.Commit(ctx))

	// the later commit must not erase the earlier one
	got, err := repo.GetAuctionParams(ctx, project)
	require.NoError(t, err)
	assert.Equal(t, params(), got)
	settlement, err := repo.GetProjectSettlement(ctx, other)
	require.NoError(t, err)
	assert.Equal(t, uint64(3), settlement.NumSettleableInvocations)

	events, err := repo.GetPurchaseEvents(ctx, project, 10, 0)
	require.NoError(t, err)
	require.Len(t, events, 1)
	events, err = repo.GetPurchaseEvents(ctx, other, 10, 0)
	require.NoError(t, err)
	require.Len(t, events, 1)
}

func TestTxRollbackAfterCommitIsNoop(t *testing.T) {
	repo := NewRepository()
	ctx := context.Background()

	tx, err := repo.BeginDutchAuctionTx(ctx)
	require.NoError(t, err)
	require.NoError(t, tx.SetAuctionParams(ctx, params()))
	require.NoError(t, tx.Commit(ctx))
	require.NoError(t, tx.Rollback(ctx))

	_, err = repo.GetAuctionParams(ctx, project)
	require.NoError(t, err)
}

func TestEventPagination(t *testing.T) {
	repo := NewRepository()
	ctx := context.Background()

	for i := 1; i <= 5; i++ {
		require.NoError(t, repo.AddPurchaseEvent(ctx, &entity.PurchaseEvent{
			Project: project,
			TokenID: uint64(i),
		}))
	}

	events, err := repo.GetPurchaseEvents(ctx, project, 2, 0)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, uint64(5), events[0].TokenID)
	assert.Equal(t, uint64(4), events[1].TokenID)

	events, err = repo.GetPurchaseEvents(ctx, project, 2, 4)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, uint64(1), events[0].TokenID)

	events, err = repo.GetPurchaseEvents(ctx, project, 2, 10)
	require.NoError(t, err)
	assert.Empty(t, events)
}

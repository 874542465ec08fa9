package dutchauction

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/gaze-network/uint128"
	"github.com/mintfall/auction-engine/common/errs"
	"github.com/mintfall/auction-engine/modules/dutchauction/internal/entity"
	"github.com/mintfall/auction-engine/pkg/logger"
	"github.com/mintfall/auction-engine/pkg/logger/slogx"
)

// SetAuctionDetails configures (or re-configures) the auction of a project.
// Re-configuration is only allowed before the configured start time; once the
// auction is live the parameters are frozen until reset.
func (e *Engine) SetAuctionDetails(ctx context.Context, project entity.ProjectKey, startTime time.Time, halfLife time.Duration, startPrice, basePrice uint128.Uint128) error {
	now := e.now()

	// all configuration errors are rejected before any state mutation
	if halfLife < e.flavor.MinHalfLife || halfLife > e.flavor.MaxHalfLife {
		return errors.Wrapf(ErrInvalidHalfLife, "half life %s outside [%s, %s]", halfLife, e.flavor.MinHalfLife, e.flavor.MaxHalfLife)
	}
	if basePrice.IsZero() || startPrice.Cmp(basePrice) <= 0 {
		return errors.WithStack(ErrInvalidPriceRange)
	}
	if !startTime.After(now) {
		return errors.WithStack(ErrOnlyFutureStartTimes)
	}

	qtx, err := e.dg.BeginDutchAuctionTx(ctx)
	if err != nil {
		return errors.Wrap(err, "failed to begin transaction")
	}
	defer func() { _ = qtx.Rollback(ctx) }()

	existing, err := qtx.GetAuctionParams(ctx, project)
	if err != nil && !errors.Is(err, errs.NotFound) {
		return errors.Wrap(err, "failed to get auction params")
	}
	if existing != nil && existing.Configured() && !now.Before(existing.StartTime) {
		return errors.WithStack(ErrAuctionAlreadyStarted)
	}

	settlement, err := settlementOrDefault(ctx, qtx, project)
	if err != nil {
		return err
	}
	// while a prior epoch is still settling, the artist must not re-inflate
	// the price above what buyers already paid
	if !settlement.RevenuesCollected && settlement.NumSettleableInvocations > 0 && startPrice.Cmp(settlement.LatestPurchasePrice) > 0 {
		return errors.Wrapf(ErrPriceAboveUnsettledLatest, "start price %s, latest purchase price %s", startPrice, settlement.LatestPurchasePrice)
	}

	if err := qtx.SetAuctionParams(ctx, &entity.AuctionParams{
		Project:            project,
		StartTime:          startTime,
		PriceDecayHalfLife: halfLife,
		StartPrice:         startPrice,
		BasePrice:          basePrice,
	}); err != nil {
		return errors.Wrap(err, "failed to set auction params")
	}

	// opportunistic cache refresh while we are here
	if _, _, _, err := e.reconcileInvocations(ctx, qtx, project); err != nil {
		return err
	}

	if err := qtx.Commit(ctx); err != nil {
		return errors.Wrap(err, "failed to commit transaction")
	}

	logger.InfoContext(ctx, "Configured auction",
		slogx.Stringer("project", project),
		slogx.Time("startTime", startTime),
		slogx.Duration("halfLife", halfLife),
		slogx.Stringer("startPrice", startPrice),
		slogx.Stringer("basePrice", basePrice),
	)
	return nil
}

// ResetAuctionDetails zeroes the auction parameters of a project. Settlement
// state survives so reclaim math stays anchored; resetting is forbidden once
// revenues have been collected.
func (e *Engine) ResetAuctionDetails(ctx context.Context, project entity.ProjectKey) error {
	qtx, err := e.dg.BeginDutchAuctionTx(ctx)
	if err != nil {
		return errors.Wrap(err, "failed to begin transaction")
	}
	defer func() { _ = qtx.Rollback(ctx) }()

	if _, err := qtx.GetAuctionParams(ctx, project); err != nil {
		if errors.Is(err, errs.NotFound) {
			return errors.WithStack(ErrAuctionNotConfigured)
		}
		return errors.Wrap(err, "failed to get auction params")
	}

	settlement, err := settlementOrDefault(ctx, qtx, project)
	if err != nil {
		return err
	}
	if settlement.RevenuesCollected {
		return errors.WithStack(ErrAlreadyCollected)
	}

	if err := qtx.DeleteAuctionParams(ctx, project); err != nil {
		return errors.Wrap(err, "failed to delete auction params")
	}
	if err := qtx.Commit(ctx); err != nil {
		return errors.Wrap(err, "failed to commit transaction")
	}

	logger.InfoContext(ctx, "Reset auction details", slogx.Stringer("project", project))
	return nil
}

package dutchauction

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/gaze-network/uint128"
	"github.com/mintfall/auction-engine/common/errs"
	"github.com/mintfall/auction-engine/modules/dutchauction/datagateway"
	"github.com/mintfall/auction-engine/modules/dutchauction/internal/entity"
	"github.com/mintfall/auction-engine/modules/dutchauction/pricing"
	"github.com/mintfall/auction-engine/pkg/logger"
	"github.com/mintfall/auction-engine/pkg/logger/slogx"
)

// WithdrawResult describes a completed revenue withdrawal.
type WithdrawResult struct {
	ClearingPrice uint128.Uint128
	Proceeds      uint128.Uint128
}

// WithdrawRevenues settles the project's epoch: it locks the clearing price,
// marks revenues collected and pays the net proceeds out through the
// configured split plan. Callable once per epoch.
//
// The clearing price is the latest purchase price when the project is sold
// out, or the base price once the decay has bottomed out on a still-active
// auction. Anything buyers posted above the clearing price stays reclaimable.
func (e *Engine) WithdrawRevenues(ctx context.Context, project entity.ProjectKey) (*WithdrawResult, error) {
	if err := e.enter(guardProject, project.String()); err != nil {
		return nil, err
	}
	defer e.exit(guardProject, project.String())

	now := e.now()
	qtx, err := e.dg.BeginDutchAuctionTx(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to begin transaction")
	}
	defer func() { _ = qtx.Rollback(ctx) }()

	settlement, err := settlementOrDefault(ctx, qtx, project)
	if err != nil {
		return nil, err
	}
	if settlement.RevenuesCollected {
		return nil, errors.WithStack(ErrAlreadyCollected)
	}

	cache, current, _, err := e.reconcileInvocations(ctx, qtx, project)
	if err != nil {
		return nil, err
	}
	soldOut := cache.HasMaxBeenInvoked || (cache.Set() && current >= cache.MaxInvocations)

	var clearingPrice uint128.Uint128
	switch {
	case soldOut && !settlement.LatestPurchasePrice.IsZero():
		clearingPrice = settlement.LatestPurchasePrice
	default:
		params, err := qtx.GetAuctionParams(ctx, project)
		if err != nil {
			// no configured auction and not sold out: nothing to settle against
			if errors.Is(err, errs.NotFound) {
				return nil, errors.WithStack(ErrActiveAuctionNotSoldOut)
			}
			return nil, errors.Wrap(err, "failed to get auction params")
		}
		price, err := currentPriceOrNotSoldOut(params, now)
		if err != nil {
			return nil, err
		}
		if price.Cmp(params.BasePrice) > 0 {
			return nil, errors.Wrapf(ErrActiveAuctionNotSoldOut, "price %s still above base price %s", price, params.BasePrice)
		}
		clearingPrice = params.BasePrice
	}

	proceeds := clearingPrice.Mul64(settlement.NumSettleableInvocations)

	// mutate before paying out: the collected flag and clearing price are
	// staged ahead of any transfer so a distribution failure rolls everything
	// back together
	settlement.RevenuesCollected = true
	settlement.ClearingPrice = clearingPrice
	if err := qtx.SetProjectSettlement(ctx, &settlement); err != nil {
		return nil, errors.Wrap(err, "failed to set project settlement")
	}

	if !proceeds.IsZero() {
		if err := e.distribute(ctx, qtx, project, proceeds, now); err != nil {
			return nil, err
		}
	}

	if err := qtx.Commit(ctx); err != nil {
		return nil, errors.Wrap(err, "failed to commit transaction")
	}

	logger.InfoContext(ctx, "Withdrew revenues",
		slogx.Stringer("project", project),
		slogx.Stringer("clearingPrice", clearingPrice),
		slogx.Stringer("proceeds", proceeds),
		slogx.Uint64("numSettleableInvocations", settlement.NumSettleableInvocations),
	)
	return &WithdrawResult{ClearingPrice: clearingPrice, Proceeds: proceeds}, nil
}

// distribute pays an amount out through the project's split plan and records
// one settlement event per recipient. The payout goes through a single batch
// transfer so a rejecting recipient cannot leave earlier sends behind while
// the transaction rolls back.
func (e *Engine) distribute(ctx context.Context, qtx datagateway.DutchAuctionDataGatewayWithTx, project entity.ProjectKey, total uint128.Uint128, now time.Time) error {
	plan, err := e.splits.SplitsFor(ctx, project)
	if err != nil {
		return errors.Join(errors.Wrap(err, "failed to resolve split plan"), ErrDistributionFailed)
	}
	amounts, err := plan.Amounts(total)
	if err != nil {
		return errors.Join(errors.Wrap(err, "failed to split proceeds"), ErrDistributionFailed)
	}
	payments := make([]entity.Payment, 0, len(plan.Recipients))
	for i, recipient := range plan.Recipients {
		if amounts[i].IsZero() {
			continue
		}
		payments = append(payments, entity.Payment{To: recipient.Address, Amount: amounts[i]})
	}
	if len(payments) == 0 {
		return nil
	}
	if err := e.transfer.SendBatch(ctx, payments); err != nil {
		return errors.Join(errors.Wrap(err, "failed to send proceeds"), ErrDistributionFailed)
	}
	for _, payment := range payments {
		if err := qtx.AddSettlementEvent(ctx, &entity.SettlementEvent{
			Project:   project,
			Kind:      entity.SettlementEventRevenueWithdrawal,
			Recipient: payment.To,
			Amount:    payment.Amount,
			Timestamp: now,
		}); err != nil {
			return errors.Wrap(err, "failed to add settlement event")
		}
	}
	return nil
}

// currentPriceOrNotSoldOut maps a pre-start auction onto the not-sold-out
// rejection instead of surfacing the pricing error.
func currentPriceOrNotSoldOut(params *entity.AuctionParams, now time.Time) (uint128.Uint128, error) {
	price, err := pricing.CurrentPrice(pricingParams(params), now)
	if err != nil {
		return uint128.Zero, errors.WithStack(ErrActiveAuctionNotSoldOut)
	}
	return price, nil
}

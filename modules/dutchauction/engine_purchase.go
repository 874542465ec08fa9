package dutchauction

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/gaze-network/uint128"
	"github.com/mintfall/auction-engine/common/errs"
	"github.com/mintfall/auction-engine/modules/dutchauction/internal/entity"
	"github.com/mintfall/auction-engine/modules/dutchauction/pricing"
	"github.com/mintfall/auction-engine/pkg/logger"
	"github.com/mintfall/auction-engine/pkg/logger/slogx"
)

// PurchaseResult describes one successful purchase.
type PurchaseResult struct {
	TokenID      uint64
	PricePaid    uint128.Uint128
	AmountPosted uint128.Uint128
}

// Purchase buys one item of the project for the buyer.
func (e *Engine) Purchase(ctx context.Context, project entity.ProjectKey, buyer string, payment uint128.Uint128) (*PurchaseResult, error) {
	return e.PurchaseTo(ctx, project, buyer, buyer, payment)
}

// PurchaseTo buys one item of the project, paid by buyer and delivered to the
// recipient address. Any payment surplus above the current price is accepted
// and tracked as reclaimable; it is never refunded inside the purchase, which
// would open the deferred-settlement model to double refunds.
func (e *Engine) PurchaseTo(ctx context.Context, project entity.ProjectKey, buyer, recipient string, payment uint128.Uint128) (*PurchaseResult, error) {
	if buyer == "" || recipient == "" {
		return nil, errors.Wrap(errs.InvalidArgument, "buyer and recipient must not be empty")
	}
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

	params, err := qtx.GetAuctionParams(ctx, project)
	if err != nil {
		if errors.Is(err, errs.NotFound) {
			return nil, errors.WithStack(ErrOnlyConfiguredAuctions)
		}
		return nil, errors.Wrap(err, "failed to get auction params")
	}

	settlement, err := settlementOrDefault(ctx, qtx, project)
	if err != nil {
		return nil, err
	}

	var price uint128.Uint128
	if settlement.RevenuesCollected {
		// the epoch already settled; every further sale is charged the locked
		// clearing price and its proceeds are forwarded immediately
		price = settlement.ClearingPrice
		if _, err := pricing.CurrentPrice(pricingParams(params), now); err != nil {
			if errors.Is(err, pricing.ErrNotStarted) {
				return nil, errors.WithStack(ErrOnlyConfiguredAuctions)
			}
			return nil, err
		}
	} else {
		price, err = pricing.CurrentPrice(pricingParams(params), now)
		if err != nil {
			if errors.Is(err, pricing.ErrNotStarted) {
				return nil, errors.WithStack(ErrOnlyConfiguredAuctions)
			}
			return nil, err
		}
	}

	if payment.Cmp(price) < 0 {
		return nil, errors.Wrapf(ErrNeedMoreValue, "payment %s below price %s", payment, price)
	}

	cache, current, _, err := e.reconcileInvocations(ctx, qtx, project)
	if err != nil {
		return nil, err
	}
	if cache.HasMaxBeenInvoked || current >= cache.MaxInvocations {
		// keep the opportunistic cache refresh even though the sale fails
		if err := qtx.Commit(ctx); err != nil {
			return nil, errors.Wrap(err, "failed to commit transaction")
		}
		return nil, errors.WithStack(ErrMaximumInvocationsReached)
	}

	tokenID, err := e.registry.RecordMint(ctx, project, recipient)
	if err != nil {
		return nil, errors.Wrap(err, "failed to record mint on registry")
	}
	if current+1 >= cache.MaxInvocations {
		cache.HasMaxBeenInvoked = true
		if err := qtx.SetInvocationCache(ctx, &cache); err != nil {
			return nil, errors.Wrap(err, "failed to set invocation cache")
		}
	}

	if !settlement.RevenuesCollected {
		settlement.NumSettleableInvocations++
	}
	settlement.LatestPurchasePrice = price
	if err := qtx.SetProjectSettlement(ctx, &settlement); err != nil {
		return nil, errors.Wrap(err, "failed to set project settlement")
	}

	receipt := entity.PurchaseReceipt{Project: project, Buyer: buyer}
	if existing, err := qtx.GetPurchaseReceipt(ctx, project, buyer); err == nil {
		receipt = *existing
	} else if !errors.Is(err, errs.NotFound) {
		return nil, errors.Wrap(err, "failed to get purchase receipt")
	}
	receipt.TotalPosted = receipt.TotalPosted.Add(payment)
	receipt.NumPurchases++
	if err := qtx.SetPurchaseReceipt(ctx, &receipt); err != nil {
		return nil, errors.Wrap(err, "failed to set purchase receipt")
	}

	if e.flavor.Currency == CurrencyToken {
		if err := e.transfer.Collect(ctx, buyer, payment); err != nil {
			return nil, errors.Wrap(err, "failed to collect payment")
		}
	}

	if settlement.RevenuesCollected {
		if err := e.distribute(ctx, qtx, project, price, now); err != nil {
			return nil, err
		}
	}

	if err := qtx.AddPurchaseEvent(ctx, &entity.PurchaseEvent{
		Project:      project,
		Buyer:        buyer,
		Recipient:    recipient,
		TokenID:      tokenID,
		PricePaid:    price,
		AmountPosted: payment,
		Timestamp:    now,
	}); err != nil {
		return nil, errors.Wrap(err, "failed to add purchase event")
	}

	if err := qtx.Commit(ctx); err != nil {
		return nil, errors.Wrap(err, "failed to commit transaction")
	}

	logger.InfoContext(ctx, "Recorded purchase",
		slogx.Stringer("project", project),
		slogx.String("buyer", buyer),
		slogx.Uint64("tokenId", tokenID),
		slogx.Stringer("pricePaid", price),
		slogx.Stringer("amountPosted", payment),
	)
	return &PurchaseResult{TokenID: tokenID, PricePaid: price, AmountPosted: payment}, nil
}

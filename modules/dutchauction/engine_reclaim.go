package dutchauction

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/gaze-network/uint128"
	"github.com/mintfall/auction-engine/common/errs"
	"github.com/mintfall/auction-engine/modules/dutchauction/internal/entity"
	"github.com/mintfall/auction-engine/pkg/logger"
	"github.com/mintfall/auction-engine/pkg/logger/slogx"
)

// ReclaimExcess pays the buyer back everything they posted above the
// settlement price, aggregated across the given projects.
func (e *Engine) ReclaimExcess(ctx context.Context, buyer string, projects ...entity.ProjectKey) (uint128.Uint128, error) {
	return e.ReclaimExcessTo(ctx, buyer, buyer, projects...)
}

// ReclaimExcessTo reclaims a buyer's excess settlement funds across the given
// projects and pays the aggregate out to the recipient address in a single
// transfer. Each project's receipt is reduced to exactly what the buyer owes
// at the current settlement price, so a repeated reclaim yields zero.
//
// Before the clearing price is locked the payout is a conservative estimate
// against the latest purchase price; buyers can reclaim again after revenues
// are collected if the clearing price ends up lower.
func (e *Engine) ReclaimExcessTo(ctx context.Context, buyer, recipient string, projects ...entity.ProjectKey) (uint128.Uint128, error) {
	if isZeroAddress(recipient) {
		return uint128.Zero, errors.WithStack(ErrNoClaimToZeroAddress)
	}
	if len(projects) == 0 {
		return uint128.Zero, errors.Wrap(errs.InvalidArgument, "at least one project is required")
	}
	if err := e.enter(guardBuyer, buyer); err != nil {
		return uint128.Zero, err
	}
	defer e.exit(guardBuyer, buyer)

	now := e.now()
	qtx, err := e.dg.BeginDutchAuctionTx(ctx)
	if err != nil {
		return uint128.Zero, errors.Wrap(err, "failed to begin transaction")
	}
	defer func() { _ = qtx.Rollback(ctx) }()

	total := uint128.Zero
	for _, project := range projects {
		receipt, err := qtx.GetPurchaseReceipt(ctx, project, buyer)
		if err != nil {
			if errors.Is(err, errs.NotFound) {
				return uint128.Zero, errors.Wrapf(ErrNoPurchasesMade, "project %s", project)
			}
			return uint128.Zero, errors.Wrap(err, "failed to get purchase receipt")
		}
		if receipt.NumPurchases == 0 {
			return uint128.Zero, errors.Wrapf(ErrNoPurchasesMade, "project %s", project)
		}

		settlement, err := settlementOrDefault(ctx, qtx, project)
		if err != nil {
			return uint128.Zero, err
		}
		owed := settlement.SettlementPrice().Mul64(receipt.NumPurchases)
		if receipt.TotalPosted.Cmp(owed) <= 0 {
			continue
		}
		excess := receipt.TotalPosted.Sub(owed)

		// mutate before paying: the receipt drops to exactly the owed amount
		// so the same excess can never be claimed twice
		receipt.TotalPosted = owed
		if err := qtx.SetPurchaseReceipt(ctx, receipt); err != nil {
			return uint128.Zero, errors.Wrap(err, "failed to set purchase receipt")
		}
		if err := qtx.AddSettlementEvent(ctx, &entity.SettlementEvent{
			Project:   project,
			Kind:      entity.SettlementEventReclaim,
			Recipient: recipient,
			Amount:    excess,
			Timestamp: now,
		}); err != nil {
			return uint128.Zero, errors.Wrap(err, "failed to add settlement event")
		}
		total = total.Add(excess)
	}

	if !total.IsZero() {
		if err := e.transfer.Send(ctx, recipient, total); err != nil {
			return uint128.Zero, errors.Join(errors.Wrapf(err, "failed to send %s to %s", total, recipient), ErrReclaimingFailed)
		}
	}

	if err := qtx.Commit(ctx); err != nil {
		return uint128.Zero, errors.Wrap(err, "failed to commit transaction")
	}

	logger.InfoContext(ctx, "Reclaimed excess settlement funds",
		slogx.String("buyer", buyer),
		slogx.String("recipient", recipient),
		slogx.Int("numProjects", len(projects)),
		slogx.Stringer("total", total),
	)
	return total, nil
}

// ReclaimExcessAcrossRegistries is the positional-argument form of
// ReclaimExcessTo: registries[i] pairs with projectIDs[i].
func (e *Engine) ReclaimExcessAcrossRegistries(ctx context.Context, buyer, recipient string, registries []string, projectIDs []uint64) (uint128.Uint128, error) {
	if len(registries) != len(projectIDs) {
		return uint128.Zero, errors.Wrapf(ErrArrayLengthMismatch, "%d registries, %d project ids", len(registries), len(projectIDs))
	}
	projects := make([]entity.ProjectKey, len(registries))
	for i := range registries {
		projects[i] = entity.NewProjectKey(registries[i], projectIDs[i])
	}
	return e.ReclaimExcessTo(ctx, buyer, recipient, projects...)
}

package dutchauction

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/mintfall/auction-engine/common/errs"
	"github.com/mintfall/auction-engine/modules/dutchauction/datagateway"
	"github.com/mintfall/auction-engine/modules/dutchauction/internal/entity"
	"github.com/mintfall/auction-engine/pkg/logger"
	"github.com/mintfall/auction-engine/pkg/logger/slogx"
)

// reconcileInvocations refreshes the minter-local invocation cache against
// the authoritative registry and persists any correction through qtx.
//
// The effective cap for every accept/reject decision is the minimum of the
// local cap (when set) and the authoritative cap: a stale-low local flag must
// never permit a sale the registry would reject, and a stale-high local cap
// must never exceed the registry's.
func (e *Engine) reconcileInvocations(ctx context.Context, qtx datagateway.DutchAuctionDataGatewayWithTx, project entity.ProjectKey) (cache entity.InvocationCache, current uint64, authoritativeMax uint64, err error) {
	current, authoritativeMax, err = e.registry.Invocations(ctx, project)
	if err != nil {
		return entity.InvocationCache{}, 0, 0, errors.Wrap(err, "failed to query registry invocations")
	}

	existing, err := qtx.GetInvocationCache(ctx, project)
	if err != nil {
		if !errors.Is(err, errs.NotFound) {
			return entity.InvocationCache{}, 0, 0, errors.Wrap(err, "failed to get invocation cache")
		}
		cache = entity.InvocationCache{Project: project}
	} else {
		cache = *existing
	}

	refreshed := cache
	if !refreshed.Set() || refreshed.MaxInvocations > authoritativeMax {
		refreshed.MaxInvocations = authoritativeMax
	}
	if current >= refreshed.MaxInvocations {
		// one-way latch: the effective cap has been reached
		refreshed.HasMaxBeenInvoked = true
	}

	if refreshed != cache {
		if err := qtx.SetInvocationCache(ctx, &refreshed); err != nil {
			return entity.InvocationCache{}, 0, 0, errors.Wrap(err, "failed to refresh invocation cache")
		}
		logger.DebugContext(ctx, "Refreshed invocation cache",
			slogx.Stringer("project", project),
			slogx.Uint64("maxInvocations", refreshed.MaxInvocations),
			slogx.Bool("hasMaxBeenInvoked", refreshed.HasMaxBeenInvoked),
		)
	}
	return refreshed, current, authoritativeMax, nil
}

// SetMaxInvocationsLimit manually tightens the minter-local cap. The new
// value must lie between the current invocation count and the authoritative
// cap, and the cap becomes immutable once it has been reached.
func (e *Engine) SetMaxInvocationsLimit(ctx context.Context, project entity.ProjectKey, maxInvocations uint64) error {
	qtx, err := e.dg.BeginDutchAuctionTx(ctx)
	if err != nil {
		return errors.Wrap(err, "failed to begin transaction")
	}
	defer func() { _ = qtx.Rollback(ctx) }()

	cache, current, authoritativeMax, err := e.reconcileInvocations(ctx, qtx, project)
	if err != nil {
		return err
	}
	if cache.HasMaxBeenInvoked {
		return errors.Wrap(ErrMaximumInvocationsReached, "cap is terminal once reached")
	}
	if maxInvocations < current || maxInvocations > authoritativeMax {
		return errors.Wrapf(ErrInvalidMaxInvocations, "%d not in [%d, %d]", maxInvocations, current, authoritativeMax)
	}

	cache.MaxInvocations = maxInvocations
	if current >= maxInvocations {
		cache.HasMaxBeenInvoked = true
	}
	if err := qtx.SetInvocationCache(ctx, &cache); err != nil {
		return errors.Wrap(err, "failed to set invocation cache")
	}
	if err := qtx.Commit(ctx); err != nil {
		return errors.Wrap(err, "failed to commit transaction")
	}

	logger.InfoContext(ctx, "Tightened local max invocations",
		slogx.Stringer("project", project),
		slogx.Uint64("maxInvocations", maxInvocations),
	)
	return nil
}

package dutchauction

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/gaze-network/uint128"
	"github.com/mintfall/auction-engine/common/errs"
	"github.com/mintfall/auction-engine/modules/dutchauction/datagateway"
	"github.com/mintfall/auction-engine/modules/dutchauction/internal/entity"
	"github.com/mintfall/auction-engine/modules/dutchauction/pricing"
	"github.com/mintfall/auction-engine/modules/dutchauction/splits"
)

const Version = "v0.2.0"

// Currency selects how a purchase payment reaches the engine.
type Currency string

const (
	// CurrencyNative treats the payment as already attached to the call.
	CurrencyNative = Currency("native")
	// CurrencyToken pulls the payment from the buyer via ValueTransfer.Collect.
	CurrencyToken = Currency("token")
)

const (
	DefaultMinHalfLife = 45 * time.Second
	DefaultMaxHalfLife = time.Hour
)

// Flavor parameterizes one engine instance. One engine with a flavor replaces
// the versioned minter-variant tree of older deployments.
type Flavor struct {
	Currency    Currency
	MinHalfLife time.Duration
	MaxHalfLife time.Duration
}

func (f Flavor) withDefaults() Flavor {
	if f.Currency == "" {
		f.Currency = CurrencyNative
	}
	if f.MinHalfLife <= 0 {
		f.MinHalfLife = DefaultMinHalfLife
	}
	if f.MaxHalfLife <= 0 {
		f.MaxHalfLife = DefaultMaxHalfLife
	}
	return f
}

// Engine owns the auction lifecycle, the settlement ledger and the
// reconciliation against the authoritative mint registry. Every operation is
// atomic: it either fully commits through the datagateway transaction or
// rolls back together with any failed external payment.
type Engine struct {
	flavor   Flavor
	dg       datagateway.DutchAuctionDataGateway
	registry MintRegistry
	transfer ValueTransfer
	splits   splits.Provider
	now      func() time.Time

	mu   sync.Mutex
	busy map[guardKey]struct{}
}

type guardScope string

const (
	guardProject = guardScope("project")
	guardBuyer   = guardScope("buyer")
)

type guardKey struct {
	scope guardScope
	key   string
}

type Option func(*Engine)

// WithClock overrides the engine clock.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		e.now = now
	}
}

func NewEngine(flavor Flavor, dg datagateway.DutchAuctionDataGateway, registry MintRegistry, transfer ValueTransfer, splitProvider splits.Provider, opts ...Option) *Engine {
	e := &Engine{
		flavor:   flavor.withDefaults(),
		dg:       dg,
		registry: registry,
		transfer: transfer,
		splits:   splitProvider,
		now:      time.Now,
		busy:     make(map[guardKey]struct{}),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// enter takes the busy guard for the given scope. A nested call into the same
// guarded region fails immediately instead of observing half-updated state.
func (e *Engine) enter(scope guardScope, key string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	k := guardKey{scope: scope, key: key}
	if _, ok := e.busy[k]; ok {
		return errors.WithStack(ErrReentrantCall)
	}
	e.busy[k] = struct{}{}
	return nil
}

func (e *Engine) exit(scope guardScope, key string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.busy, guardKey{scope: scope, key: key})
}

// settlementOrDefault loads the settlement ledger head, falling back to a
// zero-value record before the project's first purchase.
func settlementOrDefault(ctx context.Context, dg datagateway.DutchAuctionReaderDataGateway, project entity.ProjectKey) (entity.ProjectSettlement, error) {
	settlement, err := dg.GetProjectSettlement(ctx, project)
	if err != nil {
		if errors.Is(err, errs.NotFound) {
			return entity.ProjectSettlement{Project: project}, nil
		}
		return entity.ProjectSettlement{}, errors.Wrap(err, "failed to get project settlement")
	}
	return *settlement, nil
}

func pricingParams(params *entity.AuctionParams) pricing.Params {
	return pricing.Params{
		StartTime:  params.StartTime,
		HalfLife:   params.PriceDecayHalfLife,
		StartPrice: params.StartPrice,
		BasePrice:  params.BasePrice,
	}
}

func isZeroAddress(address string) bool {
	if address == "" {
		return true
	}
	hex := strings.TrimPrefix(strings.ToLower(address), "0x")
	if hex == "" {
		return true
	}
	return strings.Trim(hex, "0") == ""
}

// PriceInfo is the caller-facing price view of a project.
type PriceInfo struct {
	Configured bool
	Price      uint128.Uint128
}

// GetPriceInfo reports the price a purchase would currently be charged: the
// locked clearing price once revenues are collected, the latest purchase
// price once sold out, the start price before the auction starts, otherwise
// the live decay price.
func (e *Engine) GetPriceInfo(ctx context.Context, project entity.ProjectKey) (PriceInfo, error) {
	params, err := e.dg.GetAuctionParams(ctx, project)
	if err != nil {
		if errors.Is(err, errs.NotFound) {
			return PriceInfo{}, nil
		}
		return PriceInfo{}, errors.Wrap(err, "failed to get auction params")
	}

	settlement, err := settlementOrDefault(ctx, e.dg, project)
	if err != nil {
		return PriceInfo{}, err
	}
	if settlement.RevenuesCollected {
		return PriceInfo{Configured: true, Price: settlement.ClearingPrice}, nil
	}

	cache, err := e.dg.GetInvocationCache(ctx, project)
	if err == nil && cache.HasMaxBeenInvoked {
		return PriceInfo{Configured: true, Price: settlement.LatestPurchasePrice}, nil
	}
	if err != nil && !errors.Is(err, errs.NotFound) {
		return PriceInfo{}, errors.Wrap(err, "failed to get invocation cache")
	}

	now := e.now()
	if now.Before(params.StartTime) {
		return PriceInfo{Configured: true, Price: params.StartPrice}, nil
	}
	price, err := pricing.CurrentPrice(pricingParams(params), now)
	if err != nil {
		return PriceInfo{}, errors.Wrap(err, "failed to compute current price")
	}
	return PriceInfo{Configured: true, Price: price}, nil
}

// GetAuctionParams returns the configured auction parameters of a project.
// Returns errs.NotFound for unconfigured projects.
func (e *Engine) GetAuctionParams(ctx context.Context, project entity.ProjectKey) (*entity.AuctionParams, error) {
	params, err := e.dg.GetAuctionParams(ctx, project)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get auction params")
	}
	return params, nil
}

// GetProjectSettlement returns the settlement ledger head of a project.
func (e *Engine) GetProjectSettlement(ctx context.Context, project entity.ProjectKey) (entity.ProjectSettlement, error) {
	return settlementOrDefault(ctx, e.dg, project)
}

// GetExcessSettlementFunds computes the excess a buyer could currently
// reclaim from a project, without mutating the ledger.
func (e *Engine) GetExcessSettlementFunds(ctx context.Context, project entity.ProjectKey, buyer string) (uint128.Uint128, error) {
	receipt, err := e.dg.GetPurchaseReceipt(ctx, project, buyer)
	if err != nil {
		if errors.Is(err, errs.NotFound) {
			return uint128.Zero, errors.WithStack(ErrNoPurchasesMade)
		}
		return uint128.Zero, errors.Wrap(err, "failed to get purchase receipt")
	}
	if receipt.NumPurchases == 0 {
		return uint128.Zero, errors.WithStack(ErrNoPurchasesMade)
	}

	settlement, err := settlementOrDefault(ctx, e.dg, project)
	if err != nil {
		return uint128.Zero, err
	}
	owed := settlement.SettlementPrice().Mul64(receipt.NumPurchases)
	if receipt.TotalPosted.Cmp(owed) <= 0 {
		return uint128.Zero, nil
	}
	return receipt.TotalPosted.Sub(owed), nil
}

// GetPurchaseEvents returns purchase audit rows for a project, newest first.
func (e *Engine) GetPurchaseEvents(ctx context.Context, project entity.ProjectKey, limit int32, offset int32) ([]*entity.PurchaseEvent, error) {
	events, err := e.dg.GetPurchaseEvents(ctx, project, limit, offset)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get purchase events")
	}
	return events, nil
}

// GetSettlementEvents returns settlement audit rows for a project, newest first.
func (e *Engine) GetSettlementEvents(ctx context.Context, project entity.ProjectKey, limit int32, offset int32) ([]*entity.SettlementEvent, error) {
	events, err := e.dg.GetSettlementEvents(ctx, project, limit, offset)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get settlement events")
	}
	return events, nil
}

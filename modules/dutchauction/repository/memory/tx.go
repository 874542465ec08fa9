package memory

import (
	"context"

	"github.com/mintfall/auction-engine/modules/dutchauction/datagateway"
	"github.com/mintfall/auction-engine/modules/dutchauction/internal/entity"
)

// txRepository stages writes on a cloned snapshot and tracks which keys it
// touched. Commit merges only the touched keys onto the live state, so two
// transactions on disjoint keys can both land; Rollback leaves the parent
// untouched.
type txRepository struct {
	parent    *Repository
	staged    *state
	committed bool

	dirtyParams      map[entity.ProjectKey]struct{}
	dirtySettlements map[entity.ProjectKey]struct{}
	dirtyReceipts    map[receiptKey]struct{}
	dirtyCaches      map[entity.ProjectKey]struct{}

	// event slice lengths at Begin; everything appended after is new
	basePurchaseEvents   int
	baseSettlementEvents int
}

var _ datagateway.DutchAuctionDataGatewayWithTx = (*txRepository)(nil)

func (t *txRepository) Commit(ctx context.Context) error {
	if t.committed {
		return nil
	}
	t.parent.mu.Lock()
	defer t.parent.mu.Unlock()

	live := t.parent.state
	for k := range t.dirtyParams {
		if v, ok := t.staged.params[k]; ok {
			live.params[k] = v
		} else {
			delete(live.params, k)
		}
	}
	for k := range t.dirtySettlements {
		live.settlements[k] = t.staged.settlements[k]
	}
	for k := range t.dirtyReceipts {
		live.receipts[k] = t.staged.receipts[k]
	}
	for k := range t.dirtyCaches {
		live.caches[k] = t.staged.caches[k]
	}
	live.purchaseEvents = append(live.purchaseEvents, t.staged.purchaseEvents[t.basePurchaseEvents:]...)
	live.settlementEvents = append(live.settlementEvents, t.staged.settlementEvents[t.baseSettlementEvents:]...)

	t.committed = true
	return nil
}

func (t *txRepository) Rollback(ctx context.Context) error {
	// no-op after Commit; otherwise the staged snapshot is simply dropped
	return nil
}

func (t *txRepository) BeginDutchAuctionTx(ctx context.Context) (datagateway.DutchAuctionDataGatewayWithTx, error) {
	return t, nil
}

func (t *txRepository) GetAuctionParams(ctx context.Context, project entity.ProjectKey) (*entity.AuctionParams, error) {
	return t.staged.getAuctionParams(project)
}

func (t *txRepository) GetProjectSettlement(ctx context.Context, project entity.ProjectKey) (*entity.ProjectSettlement, error) {
	return t.staged.getProjectSettlement(project)
}

func (t *txRepository) GetPurchaseReceipt(ctx context.Context, project entity.ProjectKey, buyer string) (*entity.PurchaseReceipt, error) {
	return t.staged.getPurchaseReceipt(project, buyer)
}

func (t *txRepository) GetInvocationCache(ctx context.Context, project entity.ProjectKey) (*entity.InvocationCache, error) {
	return t.staged.getInvocationCache(project)
}

func (t *txRepository) GetPurchaseEvents(ctx context.Context, project entity.ProjectKey, limit int32, offset int32) ([]*entity.PurchaseEvent, error) {
	return t.staged.getPurchaseEvents(project, limit, offset)
}

func (t *txRepository) GetSettlementEvents(ctx context.Context, project entity.ProjectKey, limit int32, offset int32) ([]*entity.SettlementEvent, error) {
	return t.staged.getSettlementEvents(project, limit, offset)
}

func (t *txRepository) SetAuctionParams(ctx context.Context, params *entity.AuctionParams) error {
	t.dirtyParams[params.Project] = struct{}{}
	return t.staged.setAuctionParams(params)
}

func (t *txRepository) DeleteAuctionParams(ctx context.Context, project entity.ProjectKey) error {
	t.dirtyParams[project] = struct{}{}
	return t.staged.deleteAuctionParams(project)
}

func (t *txRepository) SetProjectSettlement(ctx context.Context, settlement *entity.ProjectSettlement) error {
	t.dirtySettlements[settlement.Project] = struct{}{}
	return t.staged.setProjectSettlement(settlement)
}

func (t *txRepository) SetPurchaseReceipt(ctx context.Context, receipt *entity.PurchaseReceipt) error {
	t.dirtyReceipts[receiptKey{project: receipt.Project, buyer: receipt.Buyer}] = struct{}{}
	return t.staged.setPurchaseReceipt(receipt)
}

func (t *txRepository) SetInvocationCache(ctx context.Context, cache *entity.InvocationCache) error {
	t.dirtyCaches[cache.Project] = struct{}{}
	return t.staged.setInvocationCache(cache)
}

func (t *txRepository) AddPurchaseEvent(ctx context.Context, event *entity.PurchaseEvent) error {
	return t.staged.addPurchaseEvent(event)
}

func (t *txRepository) AddSettlementEvent(ctx context.Context, event *entity.SettlementEvent) error {
	return t.staged.addSettlementEvent(event)
}

package memory

import (
	"context"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/mintfall/auction-engine/common/errs"
	"github.com/mintfall/auction-engine/modules/dutchauction/datagateway"
	"github.com/mintfall/auction-engine/modules/dutchauction/internal/entity"
)

// Repository is an in-memory DutchAuctionDataGateway. It backs unit tests and
// the standalone run mode when no postgres connection is configured.
type Repository struct {
	mu    sync.RWMutex
	state *state
}

var _ datagateway.DutchAuctionDataGateway = (*Repository)(nil)

type receiptKey struct {
	project entity.ProjectKey
	buyer   string
}

type state struct {
	params           map[entity.ProjectKey]entity.AuctionParams
	settlements      map[entity.ProjectKey]entity.ProjectSettlement
	receipts         map[receiptKey]entity.PurchaseReceipt
	caches           map[entity.ProjectKey]entity.InvocationCache
	purchaseEvents   []entity.PurchaseEvent
	settlementEvents []entity.SettlementEvent
}

func newState() *state {
	return &state{
		params:      make(map[entity.ProjectKey]entity.AuctionParams),
		settlements: make(map[entity.ProjectKey]entity.ProjectSettlement),
		receipts:    make(map[receiptKey]entity.PurchaseReceipt),
		caches:      make(map[entity.ProjectKey]entity.InvocationCache),
	}
}

func (s *state) clone() *state {
	clone := &state{
		params:           make(map[entity.ProjectKey]entity.AuctionParams, len(s.params)),
		settlements:      make(map[entity.ProjectKey]entity.ProjectSettlement, len(s.settlements)),
		receipts:         make(map[receiptKey]entity.PurchaseReceipt, len(s.receipts)),
		caches:           make(map[entity.ProjectKey]entity.InvocationCache, len(s.caches)),
		purchaseEvents:   append([]entity.PurchaseEvent(nil), s.purchaseEvents...),
		settlementEvents: append([]entity.SettlementEvent(nil), s.settlementEvents...),
	}
	for k, v := range s.params {
		clone.params[k] = v
	}
	for k, v := range s.settlements {
		clone.settlements[k] = v
	}
	for k, v := range s.receipts {
		clone.receipts[k] = v
	}
	for k, v := range s.caches {
		clone.caches[k] = v
	}
	return clone
}

func NewRepository() *Repository {
	return &Repository{state: newState()}
}

// BeginDutchAuctionTx stages all writes on a snapshot; Commit merges the
// touched keys onto the live state atomically, Rollback discards them.
func (r *Repository) BeginDutchAuctionTx(ctx context.Context) (datagateway.DutchAuctionDataGatewayWithTx, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return &txRepository{
		parent:               r,
		staged:               r.state.clone(),
		dirtyParams:          make(map[entity.ProjectKey]struct{}),
		dirtySettlements:     make(map[entity.ProjectKey]struct{}),
		dirtyReceipts:        make(map[receiptKey]struct{}),
		dirtyCaches:          make(map[entity.ProjectKey]struct{}),
		basePurchaseEvents:   len(r.state.purchaseEvents),
		baseSettlementEvents: len(r.state.settlementEvents),
	}, nil
}

func (r *Repository) GetAuctionParams(ctx context.Context, project entity.ProjectKey) (*entity.AuctionParams, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.state.getAuctionParams(project)
}

func (r *Repository) GetProjectSettlement(ctx context.Context, project entity.ProjectKey) (*entity.ProjectSettlement, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.state.getProjectSettlement(project)
}

func (r *Repository) GetPurchaseReceipt(ctx context.Context, project entity.ProjectKey, buyer string) (*entity.PurchaseReceipt, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.state.getPurchaseReceipt(project, buyer)
}

func (r *Repository) GetInvocationCache(ctx context.Context, project entity.ProjectKey) (*entity.InvocationCache, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.state.getInvocationCache(project)
}

func (r *Repository) GetPurchaseEvents(ctx context.Context, project entity.ProjectKey, limit int32, offset int32) ([]*entity.PurchaseEvent, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.state.getPurchaseEvents(project, limit, offset)
}

func (r *Repository) GetSettlementEvents(ctx context.Context, project entity.ProjectKey, limit int32, offset int32) ([]*entity.SettlementEvent, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.state.getSettlementEvents(project, limit, offset)
}

func (r *Repository) SetAuctionParams(ctx context.Context, params *entity.AuctionParams) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state.setAuctionParams(params)
}

func (r *Repository) DeleteAuctionParams(ctx context.Context, project entity.ProjectKey) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state.deleteAuctionParams(project)
}

func (r *Repository) SetProjectSettlement(ctx context.Context, settlement *entity.ProjectSettlement) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state.setProjectSettlement(settlement)
}

func (r *Repository) SetPurchaseReceipt(ctx context.Context, receipt *entity.PurchaseReceipt) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state.setPurchaseReceipt(receipt)
}

func (r *Repository) SetInvocationCache(ctx context.Context, cache *entity.InvocationCache) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state.setInvocationCache(cache)
}

func (r *Repository) AddPurchaseEvent(ctx context.Context, event *entity.PurchaseEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state.addPurchaseEvent(event)
}

func (r *Repository) AddSettlementEvent(ctx context.Context, event *entity.SettlementEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state.addSettlementEvent(event)
}

func (s *state) getAuctionParams(project entity.ProjectKey) (*entity.AuctionParams, error) {
	params, ok := s.params[project]
	if !ok {
		return nil, errors.WithStack(errs.NotFound)
	}
	return &params, nil
}

func (s *state) getProjectSettlement(project entity.ProjectKey) (*entity.ProjectSettlement, error) {
	settlement, ok := s.settlements[project]
	if !ok {
		return nil, errors.WithStack(errs.NotFound)
	}
	return &settlement, nil
}

func (s *state) getPurchaseReceipt(project entity.ProjectKey, buyer string) (*entity.PurchaseReceipt, error) {
	receipt, ok := s.receipts[receiptKey{project: project, buyer: buyer}]
	if !ok {
		return nil, errors.WithStack(errs.NotFound)
	}
	return &receipt, nil
}

func (s *state) getInvocationCache(project entity.ProjectKey) (*entity.InvocationCache, error) {
	cache, ok := s.caches[project]
	if !ok {
		return nil, errors.WithStack(errs.NotFound)
	}
	return &cache, nil
}

func (s *state) getPurchaseEvents(project entity.ProjectKey, limit int32, offset int32) ([]*entity.PurchaseEvent, error) {
	matched := make([]*entity.PurchaseEvent, 0)
	for i := len(s.purchaseEvents) - 1; i >= 0; i-- {
		if s.purchaseEvents[i].Project == project {
			event := s.purchaseEvents[i]
			matched = append(matched, &event)
		}
	}
	return paginate(matched, limit, offset), nil
}

func (s *state) getSettlementEvents(project entity.ProjectKey, limit int32, offset int32) ([]*entity.SettlementEvent, error) {
	matched := make([]*entity.SettlementEvent, 0)
	for i := len(s.settlementEvents) - 1; i >= 0; i-- {
		if s.settlementEvents[i].Project == project {
			event := s.settlementEvents[i]
			matched = append(matched, &event)
		}
	}
	return paginate(matched, limit, offset), nil
}

func (s *state) setAuctionParams(params *entity.AuctionParams) error {
	s.params[params.Project] = *params
	return nil
}

func (s *state) deleteAuctionParams(project entity.ProjectKey) error {
	delete(s.params, project)
	return nil
}

func (s *state) setProjectSettlement(settlement *entity.ProjectSettlement) error {
	s.settlements[settlement.Project] = *settlement
	return nil
}

func (s *state) setPurchaseReceipt(receipt *entity.PurchaseReceipt) error {
	s.receipts[receiptKey{project: receipt.Project, buyer: receipt.Buyer}] = *receipt
	return nil
}

func (s *state) setInvocationCache(cache *entity.InvocationCache) error {
	s.caches[cache.Project] = *cache
	return nil
}

func (s *state) addPurchaseEvent(event *entity.PurchaseEvent) error {
	s.purchaseEvents = append(s.purchaseEvents, *event)
	return nil
}

func (s *state) addSettlementEvent(event *entity.SettlementEvent) error {
	s.settlementEvents = append(s.settlementEvents, *event)
	return nil
}

func paginate[T any](items []T, limit int32, offset int32) []T {
	if offset < 0 {
		offset = 0
	}
	if int(offset) >= len(items) {
		return nil
	}
	items = items[offset:]
	if limit >= 0 && int(limit) < len(items) {
		items = items[:limit]
	}
	return items
}

package datagateway

import (
	"context"

	"github.com/mintfall/auction-engine/modules/dutchauction/internal/entity"
)

type DutchAuctionDataGateway interface {
	DutchAuctionReaderDataGateway
	DutchAuctionWriterDataGateway

	// BeginDutchAuctionTx returns a new DutchAuctionDataGateway with transaction enabled. All write operations performed in this datagateway must be committed to persist changes.
	BeginDutchAuctionTx(ctx context.Context) (DutchAuctionDataGatewayWithTx, error)
}

type DutchAuctionDataGatewayWithTx interface {
	DutchAuctionDataGateway
	Tx
}

type DutchAuctionReaderDataGateway interface {
	// GetAuctionParams returns the auction parameters of a project. Returns errs.NotFound if the project has no configured auction.
	GetAuctionParams(ctx context.Context, project entity.ProjectKey) (*entity.AuctionParams, error)
	// GetProjectSettlement returns the settlement ledger head of a project. Returns errs.NotFound before the first purchase.
	GetProjectSettlement(ctx context.Context, project entity.ProjectKey) (*entity.ProjectSettlement, error)
	// GetPurchaseReceipt returns a buyer's receipt for a project. Returns errs.NotFound if the buyer never purchased in the current epoch.
	GetPurchaseReceipt(ctx context.Context, project entity.ProjectKey, buyer string) (*entity.PurchaseReceipt, error)
	// GetInvocationCache returns the minter-local invocation cache of a project. Returns errs.NotFound if the cache was never written.
	GetInvocationCache(ctx context.Context, project entity.ProjectKey) (*entity.InvocationCache, error)
	// GetPurchaseEvents returns purchase audit rows for a project, newest first.
	GetPurchaseEvents(ctx context.Context, project entity.ProjectKey, limit int32, offset int32) ([]*entity.PurchaseEvent, error)
	// GetSettlementEvents returns settlement audit rows for a project, newest first.
	GetSettlementEvents(ctx context.Context, project entity.ProjectKey, limit int32, offset int32) ([]*entity.SettlementEvent, error)
}

type DutchAuctionWriterDataGateway interface {
	SetAuctionParams(ctx context.Context, params *entity.AuctionParams) error
	DeleteAuctionParams(ctx context.Context, project entity.ProjectKey) error
	SetProjectSettlement(ctx context.Context, settlement *entity.ProjectSettlement) error
	SetPurchaseReceipt(ctx context.Context, receipt *entity.PurchaseReceipt) error
	SetInvocationCache(ctx context.Context, cache *entity.InvocationCache) error
	AddPurchaseEvent(ctx context.Context, event *entity.PurchaseEvent) error
	AddSettlementEvent(ctx context.Context, event *entity.SettlementEvent) error
}

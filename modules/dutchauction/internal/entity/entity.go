package entity

import (
	"fmt"
	"time"

	"github.com/gaze-network/uint128"
)

// DefaultRegistry is the registry name used when callers do not specify one.
const DefaultRegistry = "core"

// ProjectKey identifies a project on a specific external mint registry.
type ProjectKey struct {
	Registry  string
	ProjectID uint64
}

func NewProjectKey(registry string, projectID uint64) ProjectKey {
	if registry == "" {
		registry = DefaultRegistry
	}
	return ProjectKey{Registry: registry, ProjectID: projectID}
}

func (k ProjectKey) String() string {
	return fmt.Sprintf("%s/%d", k.Registry, k.ProjectID)
}

// AuctionParams holds the decay parameters of one auction epoch.
// A zero PriceDecayHalfLife means the auction is not configured.
type AuctionParams struct {
	Project            ProjectKey
	StartTime          time.Time
	PriceDecayHalfLife time.Duration
	StartPrice         uint128.Uint128
	BasePrice          uint128.Uint128
}

func (p AuctionParams) Configured() bool {
	return p.PriceDecayHalfLife > 0
}

// ProjectSettlement is the per-project settlement ledger head. It survives
// auction resets so reclaim math stays anchored across epochs.
type ProjectSettlement struct {
	Project                  ProjectKey
	LatestPurchasePrice      uint128.Uint128
	NumSettleableInvocations uint64
	RevenuesCollected        bool
	// ClearingPrice is locked in when revenues are collected.
	ClearingPrice uint128.Uint128
}

// SettlementPrice returns the price reclaim math should charge per purchase:
// the locked clearing price once revenues are collected, otherwise the most
// recent purchase price as a conservative stand-in.
func (s ProjectSettlement) SettlementPrice() uint128.Uint128 {
	if s.RevenuesCollected {
		return s.ClearingPrice
	}
	return s.LatestPurchasePrice
}

// PurchaseReceipt accumulates a buyer's posted value within one settlement
// epoch.
type PurchaseReceipt struct {
	Project      ProjectKey
	Buyer        string
	TotalPosted  uint128.Uint128
	NumPurchases uint64
}

// InvocationCache is a minter-local cache of the externally authoritative
// invocation ceiling. MaxInvocations == 0 means the cache is unset.
type InvocationCache struct {
	Project           ProjectKey
	MaxInvocations    uint64
	HasMaxBeenInvoked bool
}

func (c InvocationCache) Set() bool {
	return c.MaxInvocations > 0
}

// PurchaseEvent is an append-only audit row for a successful purchase.
type PurchaseEvent struct {
	Project      ProjectKey
	Buyer        string
	Recipient    string
	TokenID      uint64
	PricePaid    uint128.Uint128
	AmountPosted uint128.Uint128
	Timestamp    time.Time
}

// Payment is one outbound transfer of a multi-recipient payout.
type Payment struct {
	To     string
	Amount uint128.Uint128
}

// SettlementEventKind labels settlement audit rows.
type SettlementEventKind string

const (
	SettlementEventRevenueWithdrawal = SettlementEventKind("revenue_withdrawal")
	SettlementEventReclaim           = SettlementEventKind("reclaim")
)

// SettlementEvent is an append-only audit row for a revenue withdrawal or an
// excess reclaim payout.
type SettlementEvent struct {
	Project   ProjectKey
	Kind      SettlementEventKind
	Recipient string
	Amount    uint128.Uint128
	Timestamp time.Time
}

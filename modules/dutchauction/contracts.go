package dutchauction

import (
	"context"

	"github.com/gaze-network/uint128"
	"github.com/mintfall/auction-engine/modules/dutchauction/internal/entity"
)

// MintRegistry is the authoritative item registry. It owns the real
// invocation count and the hard cap per project; the engine's local cache is
// only ever a performance shortcut over these answers.
type MintRegistry interface {
	// Invocations returns the current invocation count and the authoritative maximum for a project.
	Invocations(ctx context.Context, project entity.ProjectKey) (current uint64, max uint64, err error)
	// RecordMint issues one item of the project to the recipient and returns its token id.
	RecordMint(ctx context.Context, project entity.ProjectKey, to string) (tokenID uint64, err error)
}

// ValueTransfer is the synchronous payment primitive. Both directions report
// failure through the returned error; there is no asynchronous retry.
type ValueTransfer interface {
	// Send pays out the given amount to the destination address.
	Send(ctx context.Context, to string, amount uint128.Uint128) error
	// SendBatch pays out every payment as one atomic unit: either all land or
	// none do. Revenue distribution relies on this so a rejecting recipient
	// cannot leave a partial payout behind.
	SendBatch(ctx context.Context, payments []entity.Payment) error
	// Collect pulls the given amount from the payer. Only used by the token
	// currency flavor; the native flavor treats payment as already attached.
	Collect(ctx context.Context, from string, amount uint128.Uint128) error
}

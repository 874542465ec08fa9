package httphandler

import (
	"math/big"

	"github.com/cockroachdb/errors"
	"github.com/gaze-network/uint128"
	"github.com/mintfall/auction-engine/common/errs"
	"github.com/mintfall/auction-engine/modules/dutchauction"
	"github.com/mintfall/auction-engine/modules/dutchauction/internal/entity"
)

type HttpHandler struct {
	engine *dutchauction.Engine
}

func New(engine *dutchauction.Engine) *HttpHandler {
	return &HttpHandler{engine: engine}
}

type HttpResponse[T any] struct {
	Error  *string `json:"error"`
	Result *T      `json:"result,omitempty"`
}

// publicKinds are engine failures callers can act on; they surface as 400s
// with the sentinel text instead of an opaque internal error.
var publicKinds = []errs.ErrorKind{
	dutchauction.ErrOnlyConfiguredAuctions,
	dutchauction.ErrAuctionNotConfigured,
	dutchauction.ErrAuctionAlreadyStarted,
	dutchauction.ErrOnlyFutureStartTimes,
	dutchauction.ErrInvalidHalfLife,
	dutchauction.ErrInvalidPriceRange,
	dutchauction.ErrPriceAboveUnsettledLatest,
	dutchauction.ErrNeedMoreValue,
	dutchauction.ErrMaximumInvocationsReached,
	dutchauction.ErrInvalidMaxInvocations,
	dutchauction.ErrAlreadyCollected,
	dutchauction.ErrActiveAuctionNotSoldOut,
	dutchauction.ErrNoPurchasesMade,
	dutchauction.ErrNoClaimToZeroAddress,
	dutchauction.ErrArrayLengthMismatch,
	dutchauction.ErrReentrantCall,
	errs.InvalidArgument,
}

func publicIfKnown(err error) error {
	if err == nil {
		return nil
	}
	for _, kind := range publicKinds {
		if errors.Is(err, kind) {
			return errs.WithPublicMessage(err, "")
		}
	}
	return err
}

func parseAmount(s string) (uint128.Uint128, error) {
	v, ok := new(big.Int).SetString(s, 10)
	if !ok || v.Sign() < 0 || v.BitLen() > 128 {
		return uint128.Zero, errors.Errorf("amount %q is not a valid non-negative 128-bit integer", s)
	}
	amount, err := uint128.FromBig(v)
	if err != nil {
		return uint128.Zero, errors.Errorf("amount %q is not a valid non-negative 128-bit integer", s)
	}
	return amount, nil
}

func projectKey(registry string, projectID uint64) entity.ProjectKey {
	return entity.NewProjectKey(registry, projectID)
}

package dutchauction

import "github.com/mintfall/auction-engine/common/errs"

// Sentinel errors surfaced by engine operations. All support errors.Is.
const (
	ErrOnlyConfiguredAuctions    = errs.ErrorKind("only configured auctions")
	ErrAuctionNotConfigured      = errs.ErrorKind("auction is not configured")
	ErrAuctionAlreadyStarted     = errs.ErrorKind("auction already started")
	ErrOnlyFutureStartTimes      = errs.ErrorKind("only future start times")
	ErrInvalidHalfLife           = errs.ErrorKind("price decay half life out of range")
	ErrInvalidPriceRange         = errs.ErrorKind("auction start price must be greater than base price, and base price must be non-zero")
	ErrPriceAboveUnsettledLatest = errs.ErrorKind("start price above latest purchase price of unsettled epoch")
	ErrNeedMoreValue             = errs.ErrorKind("need more value to purchase")
	ErrMaximumInvocationsReached = errs.ErrorKind("maximum invocations reached")
	ErrInvalidMaxInvocations     = errs.ErrorKind("max invocations outside allowed range")
	ErrAlreadyCollected          = errs.ErrorKind("revenues already collected")
	ErrActiveAuctionNotSoldOut   = errs.ErrorKind("active auction not sold out")
	ErrNoPurchasesMade           = errs.ErrorKind("no purchases made by buyer")
	ErrNoClaimToZeroAddress      = errs.ErrorKind("cannot claim to zero address")
	ErrArrayLengthMismatch       = errs.ErrorKind("array lengths do not match")
	ErrReclaimingFailed          = errs.ErrorKind("reclaiming excess settlement funds failed")
	ErrDistributionFailed        = errs.ErrorKind("revenue distribution failed")
	ErrReentrantCall             = errs.ErrorKind("reentrant call rejected")
)

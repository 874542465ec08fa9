package pricing

import (
	"math/big"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/gaze-network/uint128"
	"github.com/mintfall/auction-engine/common/errs"
)

// ErrNotStarted is returned when the price is requested before the auction
// start time.
const ErrNotStarted = errs.ErrorKind("auction has not started yet")

// Params are the inputs of the decay curve. All prices are integer base-unit
// amounts.
type Params struct {
	StartTime  time.Time
	HalfLife   time.Duration
	StartPrice uint128.Uint128
	BasePrice  uint128.Uint128
}

// CurrentPrice computes the auction price at the given instant.
//
// The curve is a pseudo-exponential decay: the price halves exactly every
// HalfLife and decays linearly between consecutive halvings. This is not a
// continuous exponential; the two-step shape is kept for exact, deterministic
// integer arithmetic and must not be replaced with a float approximation.
func CurrentPrice(p Params, now time.Time) (uint128.Uint128, error) {
	if now.Before(p.StartTime) {
		return uint128.Zero, errors.WithStack(ErrNotStarted)
	}
	halfLife := uint64(p.HalfLife / time.Second)
	if halfLife == 0 {
		return uint128.Zero, errors.Wrap(errs.InvalidArgument, "half life must be at least one second")
	}

	elapsed := uint64(now.Sub(p.StartTime) / time.Second)
	fullHalfLives := elapsed / halfLife
	if fullHalfLives >= 128 {
		// shifted past every bit of the start price
		return p.BasePrice, nil
	}

	price := p.StartPrice.Rsh(uint(fullHalfLives))
	remainder := elapsed % halfLife
	if remainder > 0 {
		// linear interpolation towards the next halving
		nextLevel := price.Rsh(1)
		decayBig := new(big.Int).Mul(nextLevel.Big(), new(big.Int).SetUint64(remainder))
		decayBig.Div(decayBig, new(big.Int).SetUint64(halfLife))
		decay, err := uint128.FromBig(decayBig)
		if err != nil {
			return uint128.Zero, errors.WithStack(err)
		}
		price = price.Sub(decay)
	}

	if price.Cmp(p.BasePrice) < 0 {
		return p.BasePrice, nil
	}
	return price, nil
}

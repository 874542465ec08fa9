package splits

import (
	"context"
	"math/big"

	"github.com/cockroachdb/errors"
	"github.com/gaze-network/uint128"
	"github.com/mintfall/auction-engine/common/errs"
	"github.com/mintfall/auction-engine/modules/dutchauction/internal/entity"
	"github.com/shopspring/decimal"
)

// SupportedVersion is the only split plan shape this engine understands.
// Providers answering with another version are rejected outright instead of
// being probed for a compatible layout.
const SupportedVersion = 1

var hundred = decimal.NewFromInt(100)

// Recipient is one ordered payout target.
type Recipient struct {
	Address    string
	Percentage decimal.Decimal // percent of total proceeds, e.g. 10 or 2.5
}

// Plan is a structured, versioned revenue split. Payout order is significant:
// transfers are issued in slice order and any single failure aborts the whole
// distribution.
type Plan struct {
	Version    int
	Recipients []Recipient
}

// Provider supplies the split plan configured for a project.
type Provider interface {
	SplitsFor(ctx context.Context, project entity.ProjectKey) (Plan, error)
}

// Validate checks the plan shape: supported version, non-empty addresses and
// percentages summing to exactly 100.
func (p Plan) Validate() error {
	if p.Version != SupportedVersion {
		return errors.Wrapf(errs.Unsupported, "split plan version %d", p.Version)
	}
	if len(p.Recipients) == 0 {
		return errors.Wrap(errs.InvalidArgument, "split plan has no recipients")
	}
	total := decimal.Zero
	for _, r := range p.Recipients {
		if r.Address == "" {
			return errors.Wrap(errs.InvalidArgument, "split recipient has empty address")
		}
		if r.Percentage.IsNegative() {
			return errors.Wrapf(errs.InvalidArgument, "split recipient %s has negative percentage", r.Address)
		}
		total = total.Add(r.Percentage)
	}
	if !total.Equal(hundred) {
		return errors.Wrapf(errs.InvalidArgument, "split percentages sum to %s, want 100", total)
	}
	return nil
}

// Amounts partitions total proceeds between the recipients. Every share but
// the last is floored; the final recipient absorbs the rounding remainder so
// the shares always sum to the exact total.
func (p Plan) Amounts(total uint128.Uint128) ([]uint128.Uint128, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	amounts := make([]uint128.Uint128, len(p.Recipients))
	totalDec := decimal.NewFromBigInt(total.Big(), 0)
	paid := uint128.Zero
	for i, r := range p.Recipients {
		if i == len(p.Recipients)-1 {
			amounts[i] = total.Sub(paid)
			break
		}
		share := totalDec.Mul(r.Percentage).Div(hundred).Floor()
		amount, err := fromBig(share.BigInt())
		if err != nil {
			return nil, err
		}
		if paid.Add(amount).Cmp(total) > 0 {
			return nil, errors.Wrap(errs.InternalError, "split shares exceed total proceeds")
		}
		amounts[i] = amount
		paid = paid.Add(amount)
	}
	return amounts, nil
}

func fromBig(v *big.Int) (uint128.Uint128, error) {
	if v.Sign() < 0 || v.BitLen() > 128 {
		return uint128.Zero, errors.Wrapf(errs.OverflowUint128, "value %s", v)
	}
	result, err := uint128.FromBig(v)
	if err != nil {
		return uint128.Zero, errors.Wrapf(errs.OverflowUint128, "value %s", v)
	}
	return result, nil
}

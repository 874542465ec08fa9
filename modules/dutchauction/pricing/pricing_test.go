package pricing

import (
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/gaze-network/uint128"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testStart = time.Unix(1_700_000_000, 0).UTC()

func testParams() Params {
	return Params{
		StartTime:  testStart,
		HalfLife:   60 * time.Second,
		StartPrice: uint128.From64(5_000_000),
		BasePrice:  uint128.From64(1_000_000),
	}
}

func TestCurrentPriceSchedule(t *testing.T) {
	tests := []struct {
		elapsed time.Duration
		want    uint64
	}{
		{0, 5_000_000},
		{30 * time.Second, 3_750_000},
		{60 * time.Second, 2_500_000},
		{90 * time.Second, 1_875_000},
		{120 * time.Second, 1_250_000},
		{150 * time.Second, 1_000_000}, // interpolated 937_500 clamps to base
		{180 * time.Second, 1_000_000},
		{10 * time.Minute, 1_000_000},
	}
	for _, tt := range tests {
		got, err := CurrentPrice(testParams(), testStart.Add(tt.elapsed))
		require.NoError(t, err)
		assert.Equal(t, uint128.From64(tt.want), got, "elapsed %s", tt.elapsed)
	}
}

func TestCurrentPriceBeforeStart(t *testing.T) {
	_, err := CurrentPrice(testParams(), testStart.Add(-time.Second))
	require.ErrorIs(t, err, ErrNotStarted)
}

func TestCurrentPriceAtExactHalvingsIsExact(t *testing.T) {
	p := testParams()
	p.StartPrice = uint128.From64(1 << 40)
	p.BasePrice = uint128.From64(1)
	for n := 0; n < 10; n++ {
		got, err := CurrentPrice(p, testStart.Add(time.Duration(n)*p.HalfLife))
		require.NoError(t, err)
		assert.Equal(t, uint128.From64((1<<40)>>uint(n)), got, "halving %d", n)
	}
}

func TestCurrentPriceMonotonicNonIncreasing(t *testing.T) {
	p := testParams()
	prev, err := CurrentPrice(p, testStart)
	require.NoError(t, err)
	for s := 1; s <= 400; s++ {
		price, err := CurrentPrice(p, testStart.Add(time.Duration(s)*time.Second))
		require.NoError(t, err)
		assert.LessOrEqual(t, price.Cmp(prev), 0, "price increased at %ds", s)
		prev = price
	}
}

func TestCurrentPriceNeverBelowBase(t *testing.T) {
	p := testParams()
	for _, elapsed := range []time.Duration{0, time.Hour, 24 * time.Hour, 365 * 24 * time.Hour} {
		price, err := CurrentPrice(p, testStart.Add(elapsed))
		require.NoError(t, err)
		assert.GreaterOrEqual(t, price.Cmp(p.BasePrice), 0)
	}
}

func TestCurrentPriceLargeStartPrice(t *testing.T) {
	p := testParams()
	p.StartPrice = uint128.Max
	p.BasePrice = uint128.From64(1)

	price, err := CurrentPrice(p, testStart.Add(p.HalfLife))
	require.NoError(t, err)
	assert.Equal(t, uint128.Max.Rsh(1), price)

	// shifted past every bit of the start price
	price, err = CurrentPrice(p, testStart.Add(200*p.HalfLife))
	require.NoError(t, err)
	assert.Equal(t, p.BasePrice, price)
}

func TestCurrentPriceZeroHalfLife(t *testing.T) {
	p := testParams()
	p.HalfLife = 0
	_, err := CurrentPrice(p, testStart)
	require.Error(t, err)
	require.False(t, errors.Is(err, ErrNotStarted))
}

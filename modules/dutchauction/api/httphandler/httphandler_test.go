package httphandler

import (
	"testing"

	"github.com/gaze-network/uint128"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAmount(t *testing.T) {
	amount, err := parseAmount("5000000")
	require.NoError(t, err)
	assert.Equal(t, uint128.From64(5_000_000), amount)

	amount, err = parseAmount("340282366920938463463374607431768211455") // 2^128 - 1
	require.NoError(t, err)
	assert.Equal(t, uint128.Max, amount)

	for _, input := range []string{
		"",
		"abc",
		"-1",
		"1.5",
		"340282366920938463463374607431768211456", // 2^128
	} {
		_, err := parseAmount(input)
		require.Error(t, err, "input %q", input)
	}
}

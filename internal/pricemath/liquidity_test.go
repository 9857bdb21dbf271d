package pricemath

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustSqrtAtTick(t *testing.T, tick int32) *big.Int {
	t.Helper()
	v, err := SqrtRatioAtTick(tick)
	require.NoError(t, err)
	return v
}

func TestLiquidityForAmounts(t *testing.T) {
	lower := mustSqrtAtTick(t, -600)
	upper := mustSqrtAtTick(t, 600)
	one := pow10(18)

	t.Run("in range", func(t *testing.T) {
		liquidity, err := LiquidityForAmounts(mustSqrtAtTick(t, 0), lower, upper, one, one)
		require.NoError(t, err)
		assert.Equal(t, "33837499809738371427", liquidity.String())

		amount0, amount1, err := AmountsForLiquidity(mustSqrtAtTick(t, 0), lower, upper, liquidity)
		require.NoError(t, err)
		assert.Equal(t, "999999999999999999", amount0.String())
		assert.Equal(t, "999999999999999999", amount1.String())
	})

	t.Run("below range uses token0 only", func(t *testing.T) {
		liquidity, err := LiquidityForAmounts(mustSqrtAtTick(t, -1200), lower, upper, one, big.NewInt(0))
		require.NoError(t, err)
		assert.Equal(t, "16665000373539200203", liquidity.String())
	})

	t.Run("above range uses token1 only", func(t *testing.T) {
		liquidity, err := LiquidityForAmounts(mustSqrtAtTick(t, 1200), upper, lower, big.NewInt(0), one)
		require.NoError(t, err)
		assert.Equal(t, "16665000373539200203", liquidity.String())
	})

	t.Run("straddling range with one side unfunded", func(t *testing.T) {
		_, err := LiquidityForAmounts(mustSqrtAtTick(t, 0), lower, upper, one, big.NewInt(0))
		require.ErrorIs(t, err, ErrZeroLiquidity)
	})
}

func TestLiquidityForAmountsErrors(t *testing.T) {
	price := mustSqrtAtTick(t, 0)

	_, err := LiquidityForAmounts(price, price, price, big.NewInt(1), big.NewInt(1))
	require.ErrorIs(t, err, ErrEmptyTickRange)

	_, err = LiquidityForAmounts(price, mustSqrtAtTick(t, -10), mustSqrtAtTick(t, 10), big.NewInt(-1), big.NewInt(1))
	require.ErrorIs(t, err, ErrNonPositiveAmount)

	_, err = LiquidityForAmounts(nil, mustSqrtAtTick(t, -10), mustSqrtAtTick(t, 10), big.NewInt(1), big.NewInt(1))
	require.ErrorIs(t, err, ErrNonPositiveAmount)
}

package simulate

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"liquiditySim/internal/model"
	"liquiditySim/internal/pricemath"
)

var (
	growToken = common.HexToAddress("0x761a3557184cbc07b7493da0661c41177b2f97fa")
	wethToken = common.HexToAddress("0xC02aaA39b223FE8D0A0e5C4F27eAD9083C756Cc2")
	lowToken  = common.HexToAddress("0x0000000000000000000000000000000000000001")
	highToken = common.HexToAddress("0xffffffffffffffffffffffffffffffffffffffff")
)

func growPair() Pair {
	return SortedPair(growToken, wethToken, 18, 18, 200)
}

// base sorts after quote and the decimals differ
func invertedPair() Pair {
	return SortedPair(highToken, lowToken, 18, 6, 60)
}

func dec(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	require.NoError(t, err)
	return d
}

func TestSortedPairOrdersByAddress(t *testing.T) {
	pair := growPair()
	assert.True(t, pair.BaseIsToken0)
	assert.Equal(t, growToken, pair.Token0())
	assert.Equal(t, wethToken, pair.Token1())

	inv := invertedPair()
	assert.False(t, inv.BaseIsToken0)
	assert.Equal(t, lowToken, inv.Token0())
	assert.Equal(t, highToken, inv.Token1())
}

func TestNewPair(t *testing.T) {
	pool := model.PoolMeta{
		Address:     "0x0000000000000000000000000000000000000abc",
		Token0:      growToken.Hex(),
		Token1:      wethToken.Hex(),
		Fee:         10000,
		TickSpacing: 200,
	}
	grow := model.TokenMeta{Address: growToken.Hex(), Decimals: 18, Symbol: "GROW"}
	weth := model.TokenMeta{Address: wethToken.Hex(), Decimals: 18, Symbol: "WETH"}

	pair, err := NewPair(pool, grow, weth)
	require.NoError(t, err)
	assert.True(t, pair.BaseIsToken0)
	assert.Equal(t, uint32(10000), pair.Fee)
	assert.Equal(t, int32(200), pair.TickSpacing)

	pair, err = NewPair(pool, weth, grow)
	require.NoError(t, err)
	assert.False(t, pair.BaseIsToken0)

	_, err = NewPair(pool, grow, model.TokenMeta{Address: lowToken.Hex()})
	require.Error(t, err)

	pool.TickSpacing = 0
	_, err = NewPair(pool, grow, weth)
	require.Error(t, err)
}

func TestPoolRatio(t *testing.T) {
	num, den := growPair().PoolRatio(dec(t, "0.09"), dec(t, "3700"))
	assert.Equal(t, "90000000000000000", num.String())
	assert.Equal(t, "3700000000000000000000", den.String())

	num, den = invertedPair().PoolRatio(dec(t, "1.5"), dec(t, "3700"))
	assert.Equal(t, "3700000000000000000000", num.String())
	assert.Equal(t, "1500000", den.String())

	// fractional inputs scale to a common exponent
	num, den = SortedPair(growToken, wethToken, 0, 0, 1).PoolRatio(dec(t, "0.125"), dec(t, "2.5"))
	assert.Equal(t, "125", num.String())
	assert.Equal(t, "2500", den.String())
}

func TestQuotePerBase(t *testing.T) {
	price, err := growPair().QuotePerBase(pricemath.Q96)
	require.NoError(t, err)
	assert.True(t, price.Equal(decimal.NewFromInt(1)), "price %s", price)

	price, err = invertedPair().QuotePerBase(pricemath.Q96)
	require.NoError(t, err)
	assert.True(t, price.Equal(decimal.New(1, 12)), "price %s", price)

	sqrt, ok := new(big.Int).SetString("390750890502279811795378267", 10)
	require.True(t, ok)
	price, err = growPair().QuotePerBase(sqrt)
	require.NoError(t, err)
	assert.InDelta(t, 0.09/3700, price.InexactFloat64(), 1e-12)

	_, err = growPair().QuotePerBase(big.NewInt(0))
	require.ErrorIs(t, err, pricemath.ErrNonPositiveAmount)
}

func TestBaseUnits(t *testing.T) {
	assert.Equal(t, "183180000000000000000", ToBaseUnits(dec(t, "183.18"), 18).String())
	assert.Equal(t, "1", ToBaseUnits(dec(t, "0.0000019"), 6).String())
	assert.Equal(t, "1.5", FromBaseUnits(big.NewInt(1_500_000), 6).String())
}

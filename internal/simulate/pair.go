package simulate

import (
	"bytes"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"

	"liquiditySim/internal/model"
	"liquiditySim/internal/pricemath"
)

// Pair orients a base/quote token pair against a pool's token0/token1 order.
type Pair struct {
	Base          common.Address
	Quote         common.Address
	BaseDecimals  uint8
	QuoteDecimals uint8
	BaseIsToken0  bool
	Fee           uint32
	TickSpacing   int32
}

// NewPair builds a Pair from on-chain pool and token metadata.
func NewPair(pool model.PoolMeta, base, quote model.TokenMeta) (Pair, error) {
	baseAddr := common.HexToAddress(base.Address)
	quoteAddr := common.HexToAddress(quote.Address)
	token0 := common.HexToAddress(pool.Token0)
	token1 := common.HexToAddress(pool.Token1)

	var baseIsToken0 bool
	switch {
	case baseAddr == token0 && quoteAddr == token1:
		baseIsToken0 = true
	case baseAddr == token1 && quoteAddr == token0:
		baseIsToken0 = false
	default:
		return Pair{}, fmt.Errorf("pool %s trades %s/%s, not %s/%s",
			pool.Address, pool.Token0, pool.Token1, base.Address, quote.Address)
	}
	if pool.TickSpacing <= 0 {
		return Pair{}, fmt.Errorf("pool %s has invalid tick spacing %d", pool.Address, pool.TickSpacing)
	}

	return Pair{
		Base:          baseAddr,
		Quote:         quoteAddr,
		BaseDecimals:  base.Decimals,
		QuoteDecimals: quote.Decimals,
		BaseIsToken0:  baseIsToken0,
		Fee:           pool.Fee,
		TickSpacing:   pool.TickSpacing,
	}, nil
}

// SortedPair builds a Pair without a pool, ordering tokens by address the way the factory does.
func SortedPair(base, quote common.Address, baseDecimals, quoteDecimals uint8, tickSpacing int32) Pair {
	return Pair{
		Base:          base,
		Quote:         quote,
		BaseDecimals:  baseDecimals,
		QuoteDecimals: quoteDecimals,
		BaseIsToken0:  bytes.Compare(base.Bytes(), quote.Bytes()) < 0,
		TickSpacing:   tickSpacing,
	}
}

// Token0 returns the lower-sorted token.
func (p Pair) Token0() common.Address {
	if p.BaseIsToken0 {
		return p.Base
	}
	return p.Quote
}

// Token1 returns the higher-sorted token.
func (p Pair) Token1() common.Address {
	if p.BaseIsToken0 {
		return p.Quote
	}
	return p.Base
}

// PoolRatio converts a base token price, given as baseUSD against a quote
// token worth quoteUSD, into the integer token1/token0 ratio in base units
// that the pool prices in.
func (p Pair) PoolRatio(baseUSD, quoteUSD decimal.Decimal) (*big.Int, *big.Int) {
	// quote per base in whole tokens is baseUSD/quoteUSD; scale each side to base units
	num := baseUSD.Shift(int32(p.QuoteDecimals))
	den := quoteUSD.Shift(int32(p.BaseDecimals))
	if !p.BaseIsToken0 {
		num, den = den, num
	}
	return integerRatio(num, den)
}

// QuotePerBase converts a pool sqrt price into the quote-per-base price in whole tokens.
func (p Pair) QuotePerBase(sqrtPriceX96 *big.Int) (decimal.Decimal, error) {
	price, err := pricemath.DecodeSqrtRatioX96(sqrtPriceX96)
	if err != nil {
		return decimal.Decimal{}, err
	}
	if p.BaseIsToken0 {
		return price.Shift(int32(p.BaseDecimals) - int32(p.QuoteDecimals)), nil
	}
	basePerQuote := price.Shift(int32(p.QuoteDecimals) - int32(p.BaseDecimals))
	if basePerQuote.IsZero() {
		return decimal.Decimal{}, fmt.Errorf("price below display precision: %s", sqrtPriceX96)
	}
	return decimal.NewFromInt(1).DivRound(basePerQuote, 36), nil
}

// TokenAmounts maps base and quote amounts onto token0 and token1.
func (p Pair) TokenAmounts(base, quote *big.Int) (*big.Int, *big.Int) {
	if p.BaseIsToken0 {
		return base, quote
	}
	return quote, base
}

// integerRatio scales two decimals by the same power of ten until both are integers.
func integerRatio(num, den decimal.Decimal) (*big.Int, *big.Int) {
	scale := int32(0)
	for _, d := range []decimal.Decimal{num, den} {
		if exp := d.Exponent(); -exp > scale {
			scale = -exp
		}
	}
	return num.Shift(scale).BigInt(), den.Shift(scale).BigInt()
}

func symbolFor(meta model.TokenMeta) string {
	if s := strings.TrimSpace(meta.Symbol); s != "" {
		return s
	}
	return meta.Address
}

// ToBaseUnits converts a whole-token amount to base units, truncating sub-unit dust.
func ToBaseUnits(amount decimal.Decimal, decimals uint8) *big.Int {
	return amount.Shift(int32(decimals)).BigInt()
}

// FromBaseUnits converts base units back to whole tokens.
func FromBaseUnits(amount *big.Int, decimals uint8) decimal.Decimal {
	return decimal.NewFromBigInt(amount, -int32(decimals))
}

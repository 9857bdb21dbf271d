package pricemath

import "math/big"

var maxUint128 = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 128), big.NewInt(1))

// LiquidityForAmounts returns the largest liquidity that amount0 and amount1 can
// fund between sqrtRatioAX96 and sqrtRatioBX96 at the current sqrtPriceX96.
// Below the range only token0 counts, above it only token1, inside it the
// smaller of the two.
func LiquidityForAmounts(sqrtPriceX96, sqrtRatioAX96, sqrtRatioBX96, amount0, amount1 *big.Int) (*big.Int, error) {
	const op = "liquidity for amounts"
	for _, v := range []*big.Int{sqrtPriceX96, sqrtRatioAX96, sqrtRatioBX96} {
		if v == nil || v.Sign() <= 0 {
			return nil, domainErr(op, bigString(v), ErrNonPositiveAmount)
		}
	}
	for _, v := range []*big.Int{amount0, amount1} {
		if v == nil || v.Sign() < 0 {
			return nil, domainErr(op, bigString(v), ErrNonPositiveAmount)
		}
	}

	sqrtA, sqrtB := sortRatios(sqrtRatioAX96, sqrtRatioBX96)
	if sqrtA.Cmp(sqrtB) == 0 {
		return nil, domainErr(op, sqrtA.String(), ErrEmptyTickRange)
	}

	var liquidity *big.Int
	switch {
	case sqrtPriceX96.Cmp(sqrtA) <= 0:
		liquidity = liquidityForAmount0(sqrtA, sqrtB, amount0)
	case sqrtPriceX96.Cmp(sqrtB) < 0:
		liquidity0 := liquidityForAmount0(sqrtPriceX96, sqrtB, amount0)
		liquidity1 := liquidityForAmount1(sqrtA, sqrtPriceX96, amount1)
		liquidity = liquidity0
		if liquidity1.Cmp(liquidity0) < 0 {
			liquidity = liquidity1
		}
	default:
		liquidity = liquidityForAmount1(sqrtA, sqrtB, amount1)
	}

	if liquidity.Cmp(maxUint128) > 0 {
		return nil, domainErr(op, liquidity.String(), ErrLiquidityOverflow)
	}
	if liquidity.Sign() == 0 {
		return nil, domainErr(op, "", ErrZeroLiquidity)
	}
	return liquidity, nil
}

// AmountsForLiquidity returns the token amounts represented by liquidity at the current price.
func AmountsForLiquidity(sqrtPriceX96, sqrtRatioAX96, sqrtRatioBX96, liquidity *big.Int) (*big.Int, *big.Int, error) {
	const op = "amounts for liquidity"
	for _, v := range []*big.Int{sqrtPriceX96, sqrtRatioAX96, sqrtRatioBX96} {
		if v == nil || v.Sign() <= 0 {
			return nil, nil, domainErr(op, bigString(v), ErrNonPositiveAmount)
		}
	}
	if liquidity == nil || liquidity.Sign() < 0 {
		return nil, nil, domainErr(op, bigString(liquidity), ErrNonPositiveAmount)
	}

	sqrtA, sqrtB := sortRatios(sqrtRatioAX96, sqrtRatioBX96)
	amount0 := new(big.Int)
	amount1 := new(big.Int)
	switch {
	case sqrtPriceX96.Cmp(sqrtA) <= 0:
		amount0 = amount0ForLiquidity(sqrtA, sqrtB, liquidity)
	case sqrtPriceX96.Cmp(sqrtB) < 0:
		amount0 = amount0ForLiquidity(sqrtPriceX96, sqrtB, liquidity)
		amount1 = amount1ForLiquidity(sqrtA, sqrtPriceX96, liquidity)
	default:
		amount1 = amount1ForLiquidity(sqrtA, sqrtB, liquidity)
	}
	return amount0, amount1, nil
}

func sortRatios(a, b *big.Int) (*big.Int, *big.Int) {
	if a.Cmp(b) > 0 {
		return b, a
	}
	return a, b
}

// amount0 * (sqrtA * sqrtB / Q96) / (sqrtB - sqrtA)
func liquidityForAmount0(sqrtA, sqrtB, amount0 *big.Int) *big.Int {
	intermediate := mulDiv(sqrtA, sqrtB, Q96)
	return mulDiv(amount0, intermediate, new(big.Int).Sub(sqrtB, sqrtA))
}

// amount1 * Q96 / (sqrtB - sqrtA)
func liquidityForAmount1(sqrtA, sqrtB, amount1 *big.Int) *big.Int {
	return mulDiv(amount1, Q96, new(big.Int).Sub(sqrtB, sqrtA))
}

func amount0ForLiquidity(sqrtA, sqrtB, liquidity *big.Int) *big.Int {
	numerator := new(big.Int).Lsh(liquidity, 96)
	numerator.Mul(numerator, new(big.Int).Sub(sqrtB, sqrtA))
	numerator.Quo(numerator, sqrtB)
	return numerator.Quo(numerator, sqrtA)
}

func amount1ForLiquidity(sqrtA, sqrtB, liquidity *big.Int) *big.Int {
	return mulDiv(liquidity, new(big.Int).Sub(sqrtB, sqrtA), Q96)
}

func mulDiv(a, b, denominator *big.Int) *big.Int {
	product := new(big.Int).Mul(a, b)
	return product.Quo(product, denominator)
}

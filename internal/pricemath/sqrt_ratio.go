package pricemath

import (
	"math/big"

	"github.com/shopspring/decimal"
)

// decodePrecision is the number of significant digits kept when decoding a
// Q64.96 price below 1, and the number of decimal places kept otherwise.
const decodePrecision = 36

var (
	// Q96 is 2^96, the Q64.96 representation of 1.
	Q96  = new(big.Int).Lsh(big.NewInt(1), 96)
	q192 = new(big.Int).Lsh(big.NewInt(1), 192)

	maxUint160 = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 160), big.NewInt(1))

	q192Digits = len(q192.String())
)

// EncodeSqrtRatioX96 returns floor(sqrt(amountA * 2^192 / amountB)), the Q64.96
// square root of amountA/amountB. The square root is exact integer arithmetic.
func EncodeSqrtRatioX96(amountA, amountB *big.Int) (*big.Int, error) {
	const op = "encode sqrt ratio"
	if amountA == nil || amountA.Sign() <= 0 {
		return nil, domainErr(op, bigString(amountA), ErrNonPositiveAmount)
	}
	if amountB == nil || amountB.Sign() == 0 {
		return nil, domainErr(op, bigString(amountB), ErrZeroDenominator)
	}
	if amountB.Sign() < 0 {
		return nil, domainErr(op, amountB.String(), ErrNonPositiveAmount)
	}

	ratioX192 := new(big.Int).Lsh(amountA, 192)
	ratioX192.Quo(ratioX192, amountB)
	sqrt := ratioX192.Sqrt(ratioX192)
	if sqrt.Cmp(maxUint160) > 0 {
		return nil, domainErr(op, amountA.String()+"/"+amountB.String(), ErrSqrtRatioOverflow)
	}
	return sqrt, nil
}

// DecodeSqrtRatioX96 returns (sqrtPriceX96 / 2^96)^2. Prices below 1 keep 36
// significant digits so the smallest pool prices never round to zero.
func DecodeSqrtRatioX96(sqrtPriceX96 *big.Int) (decimal.Decimal, error) {
	if sqrtPriceX96 == nil || sqrtPriceX96.Sign() <= 0 {
		return decimal.Zero, domainErr("decode sqrt ratio", bigString(sqrtPriceX96), ErrNonPositiveAmount)
	}
	squared := new(big.Int).Mul(sqrtPriceX96, sqrtPriceX96)
	places := int32(decodePrecision)
	if shift := q192Digits - len(squared.String()); shift > 0 {
		places += int32(shift)
	}
	return decimal.NewFromBigInt(squared, 0).DivRound(decimal.NewFromBigInt(q192, 0), places), nil
}

func bigString(v *big.Int) string {
	if v == nil {
		return "nil"
	}
	return v.String()
}

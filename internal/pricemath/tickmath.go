package pricemath

import (
	"math/big"
	"strconv"

	"github.com/holiman/uint256"
)

const (
	// MinTick is the lowest tick a V3 pool accepts.
	MinTick int32 = -887272
	// MaxTick is the highest tick a V3 pool accepts.
	MaxTick int32 = 887272
)

var (
	// MinSqrtRatio is SqrtRatioAtTick(MinTick).
	MinSqrtRatio = big.NewInt(4295128739)
	// MaxSqrtRatio is SqrtRatioAtTick(MaxTick).
	MaxSqrtRatio = mustBig("1461446703485210103287273052203988822378723970342")

	// log_sqrt(1.0001)(2) as a 64.64 multiplier, giving a 128.128 result.
	logSqrt10001Factor = mustBig("255738958999603826347141")
	tickLowOffset      = mustBig("3402992956809132418596140100660247210")
	tickHighOffset     = mustBig("291339464771989622907027621153398088495")

	maxUint256 = new(uint256.Int).SetAllOne()

	// sqrt(1.0001^-1) in UQ128.128, used when bit 0 of |tick| is set.
	tickRatioBit0 = uint256.MustFromHex("0xfffcb933bd6fad37aa2d162d1a594001")

	// sqrt(1.0001^-(2^i)) in UQ128.128 for i = 1..19.
	tickMultipliers = [...]*uint256.Int{
		uint256.MustFromHex("0xfff97272373d413259a46990580e213a"),
		uint256.MustFromHex("0xfff2e50f5f656932ef12357cf3c7fdcc"),
		uint256.MustFromHex("0xffe5caca7e10e4e61c3624eaa0941cd0"),
		uint256.MustFromHex("0xffcb9843d60f6159c9db58835c926644"),
		uint256.MustFromHex("0xff973b41fa98c081472e6896dfb254c0"),
		uint256.MustFromHex("0xff2ea16466c96a3843ec78b326b52861"),
		uint256.MustFromHex("0xfe5dee046a99a2a811c461f1969c3053"),
		uint256.MustFromHex("0xfcbe86c7900a88aedcffc83b479aa3a4"),
		uint256.MustFromHex("0xf987a7253ac413176f2b074cf7815e54"),
		uint256.MustFromHex("0xf3392b0822b70005940c7a398e4b70f3"),
		uint256.MustFromHex("0xe7159475a2c29b7443b29c7fa6e889d9"),
		uint256.MustFromHex("0xd097f3bdfd2022b8845ad8f792aa5825"),
		uint256.MustFromHex("0xa9f746462d870fdf8a65dc1f90e061e5"),
		uint256.MustFromHex("0x70d869a156d2a1b890bb3df62baf32f7"),
		uint256.MustFromHex("0x31be135f97d08fd981231505542fcfa6"),
		uint256.MustFromHex("0x9aa508b5b7a84e1c677de54f3e99bc9"),
		uint256.MustFromHex("0x5d6af8dedb81196699c329225ee604"),
		uint256.MustFromHex("0x2216e584f5fa1ea926041bedfe98"),
		uint256.MustFromHex("0x48a170391f7dc42444e8fa2"),
	}
)

// SqrtRatioAtTick returns sqrt(1.0001^tick) * 2^96, rounded up, as the pool contract computes it.
func SqrtRatioAtTick(tick int32) (*big.Int, error) {
	if tick < MinTick || tick > MaxTick {
		return nil, domainErr("sqrt ratio at tick", strconv.Itoa(int(tick)), ErrTickOutOfRange)
	}

	absTick := uint32(tick)
	if tick < 0 {
		absTick = uint32(-tick)
	}

	ratio := new(uint256.Int)
	if absTick&0x1 != 0 {
		ratio.Set(tickRatioBit0)
	} else {
		ratio.Lsh(uint256.NewInt(1), 128)
	}
	for i, multiplier := range tickMultipliers {
		if absTick&(1<<(i+1)) != 0 {
			ratio.Mul(ratio, multiplier)
			ratio.Rsh(ratio, 128)
		}
	}

	if tick > 0 {
		ratio.Div(maxUint256, ratio)
	}

	// UQ128.128 -> UQ64.96, rounding up so that TickAtSqrtRatio(SqrtRatioAtTick(t)) == t.
	roundUp := ratio.Uint64()&0xffffffff != 0
	ratio.Rsh(ratio, 32)
	if roundUp {
		ratio.AddUint64(ratio, 1)
	}
	return ratio.ToBig(), nil
}

// TickAtSqrtRatio returns the greatest tick t such that SqrtRatioAtTick(t) <= sqrtPriceX96.
//
// The computation mirrors the pool contract: log2 of the Q128.128 ratio from the
// bit length plus 14 squaring steps, scaled into log base sqrt(1.0001), with the
// error bound resolved by one SqrtRatioAtTick comparison.
func TickAtSqrtRatio(sqrtPriceX96 *big.Int) (int32, error) {
	const op = "tick at sqrt ratio"
	if sqrtPriceX96 == nil || sqrtPriceX96.Sign() <= 0 {
		return 0, domainErr(op, bigString(sqrtPriceX96), ErrNonPositiveAmount)
	}
	if sqrtPriceX96.Cmp(MinSqrtRatio) < 0 || sqrtPriceX96.Cmp(MaxSqrtRatio) >= 0 {
		return 0, domainErr(op, sqrtPriceX96.String(), ErrSqrtRatioOutOfRange)
	}

	ratio := uint256.MustFromBig(sqrtPriceX96)
	ratio.Lsh(ratio, 32)

	msb := uint(ratio.BitLen() - 1)
	r := new(uint256.Int)
	if msb >= 128 {
		r.Rsh(ratio, msb-127)
	} else {
		r.Lsh(ratio, 127-msb)
	}

	log2 := big.NewInt(int64(msb) - 128)
	log2.Lsh(log2, 64)

	// low 64 bits of log2 start clear, so setting a bit is an add.
	overflow := new(uint256.Int)
	for bit := uint(63); bit >= 50; bit-- {
		r.Mul(r, r)
		r.Rsh(r, 127)
		if !overflow.Rsh(r, 128).IsZero() {
			log2.Add(log2, new(big.Int).Lsh(big.NewInt(1), bit))
			r.Rsh(r, 1)
		}
	}

	logSqrt10001 := new(big.Int).Mul(log2, logSqrt10001Factor)

	low := new(big.Int).Sub(logSqrt10001, tickLowOffset)
	low.Rsh(low, 128)
	high := new(big.Int).Add(logSqrt10001, tickHighOffset)
	high.Rsh(high, 128)

	tickLow := int32(low.Int64())
	tickHigh := int32(high.Int64())

	tick := tickLow
	if tickLow != tickHigh {
		sqrtHigh, err := SqrtRatioAtTick(tickHigh)
		if err != nil {
			return 0, err
		}
		if sqrtHigh.Cmp(sqrtPriceX96) <= 0 {
			tick = tickHigh
		}
	}

	if tick < MinTick || tick > MaxTick {
		return 0, domainErr(op, sqrtPriceX96.String(), ErrTickOutOfRange)
	}
	return tick, nil
}

func mustBig(s string) *big.Int {
	v, ok := new(big.Int).SetString(s, 10)
	if !ok {
		panic("pricemath: invalid constant " + s)
	}
	return v
}

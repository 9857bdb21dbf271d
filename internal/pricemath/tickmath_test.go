package pricemath

import (
	"math"
	"math/big"
	"math/rand"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pow10(n int64) *big.Int {
	return new(big.Int).Exp(big.NewInt(10), big.NewInt(n), nil)
}

func TestSqrtRatioAtTick(t *testing.T) {
	cases := []struct {
		tick int32
		want string
	}{
		{MinTick, "4295128739"},
		{MaxTick, "1461446703485210103287273052203988822378723970342"},
		{0, "79228162514264337593543950336"},
		{1, "79232123823359799118286999568"},
		{-1, "79224201403219477170569942574"},
		{50, "79426470787362580746886972461"},
		{-50, "79030349367926598376800521322"},
		{74959, "3361338167835132711715500004363"},
		{-74959, "1867441305207754017285135933"},
		{200000, "1744244129640337381386292603617838"},
	}
	for _, tc := range cases {
		got, err := SqrtRatioAtTick(tc.tick)
		require.NoError(t, err, "tick %d", tc.tick)
		assert.Equal(t, tc.want, got.String(), "tick %d", tc.tick)
	}
}

func TestSqrtRatioAtTickOutOfRange(t *testing.T) {
	_, err := SqrtRatioAtTick(MinTick - 1)
	require.ErrorIs(t, err, ErrTickOutOfRange)

	_, err = SqrtRatioAtTick(MaxTick + 1)
	require.ErrorIs(t, err, ErrTickOutOfRange)
}

func TestTickAtSqrtRatioBounds(t *testing.T) {
	tick, err := TickAtSqrtRatio(MinSqrtRatio)
	require.NoError(t, err)
	assert.Equal(t, MinTick, tick)

	tick, err = TickAtSqrtRatio(new(big.Int).Sub(MaxSqrtRatio, big.NewInt(1)))
	require.NoError(t, err)
	assert.Equal(t, MaxTick-1, tick)

	_, err = TickAtSqrtRatio(new(big.Int).Sub(MinSqrtRatio, big.NewInt(1)))
	require.ErrorIs(t, err, ErrSqrtRatioOutOfRange)

	_, err = TickAtSqrtRatio(MaxSqrtRatio)
	require.ErrorIs(t, err, ErrSqrtRatioOutOfRange)
}

func TestTickAtSqrtRatioRejectsNonPositive(t *testing.T) {
	for _, v := range []*big.Int{nil, big.NewInt(0), big.NewInt(-5)} {
		_, err := TickAtSqrtRatio(v)
		require.ErrorIs(t, err, ErrNonPositiveAmount)

		var domain *DomainError
		require.ErrorAs(t, err, &domain)
		assert.Equal(t, "tick at sqrt ratio", domain.Op)
	}
}

func TestTickAtSqrtRatioInvertsSqrtRatioAtTick(t *testing.T) {
	for _, tick := range []int32{MinTick, -200000, -74959, -50, -1, 0, 1, 50, 74959, 74960, 200000, MaxTick - 1} {
		sqrt, err := SqrtRatioAtTick(tick)
		require.NoError(t, err)

		got, err := TickAtSqrtRatio(sqrt)
		require.NoError(t, err)
		assert.Equal(t, tick, got)

		below, err := TickAtSqrtRatio(new(big.Int).Sub(sqrt, big.NewInt(1)))
		if tick == MinTick {
			require.ErrorIs(t, err, ErrSqrtRatioOutOfRange)
			continue
		}
		require.NoError(t, err)
		assert.Equal(t, tick-1, below)
	}
}

func TestTickAtSqrtRatioGreatestTickProperty(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	span := new(big.Int).Sub(MaxSqrtRatio, MinSqrtRatio)
	for i := 0; i < 200; i++ {
		// spread samples across magnitudes rather than only near the top of the range
		shift := uint(rng.Intn(span.BitLen()))
		sample := new(big.Int).Rand(rng, new(big.Int).Lsh(big.NewInt(1), shift+1))
		sample.Add(sample, MinSqrtRatio)
		if sample.Cmp(MaxSqrtRatio) >= 0 {
			continue
		}

		tick, err := TickAtSqrtRatio(sample)
		require.NoError(t, err)

		atTick, err := SqrtRatioAtTick(tick)
		require.NoError(t, err)
		assert.LessOrEqual(t, atTick.Cmp(sample), 0, "sqrt(%d) > %s", tick, sample)

		if tick < MaxTick {
			next, err := SqrtRatioAtTick(tick + 1)
			require.NoError(t, err)
			assert.Equal(t, 1, next.Cmp(sample), "sqrt(%d) <= %s", tick+1, sample)
		}
	}
}

func TestEncodeSqrtRatioX96Examples(t *testing.T) {
	one := pow10(18)

	parity, err := EncodeSqrtRatioX96(one, one)
	require.NoError(t, err)
	assert.Equal(t, Q96.String(), parity.String())

	price, err := DecodeSqrtRatioX96(parity)
	require.NoError(t, err)
	assert.True(t, price.Equal(decimal.NewFromInt(1)), "price %s", price)

	tick, err := TickAtSqrtRatio(parity)
	require.NoError(t, err)
	assert.Equal(t, int32(0), tick)

	sqrt1800, err := EncodeSqrtRatioX96(one, big.NewInt(555555555555555))
	require.NoError(t, err)
	assert.Equal(t, "3361366258487170075807045537232", sqrt1800.String())

	tick, err = TickAtSqrtRatio(sqrt1800)
	require.NoError(t, err)
	assert.Equal(t, int32(74959), tick)

	price, err = DecodeSqrtRatioX96(sqrt1800)
	require.NoError(t, err)
	assert.InDelta(t, 1800.0, price.InexactFloat64(), 1e-6)
}

func TestEncodeSqrtRatioX96DomainErrors(t *testing.T) {
	_, err := EncodeSqrtRatioX96(pow10(18), big.NewInt(0))
	require.ErrorIs(t, err, ErrZeroDenominator)

	_, err = EncodeSqrtRatioX96(pow10(18), nil)
	require.ErrorIs(t, err, ErrZeroDenominator)

	_, err = EncodeSqrtRatioX96(big.NewInt(0), pow10(18))
	require.ErrorIs(t, err, ErrNonPositiveAmount)

	_, err = EncodeSqrtRatioX96(big.NewInt(-1), pow10(18))
	require.ErrorIs(t, err, ErrNonPositiveAmount)

	_, err = EncodeSqrtRatioX96(pow10(18), big.NewInt(-1))
	require.ErrorIs(t, err, ErrNonPositiveAmount)

	// sqrt(2^200) * 2^96 = 2^196 does not fit in 160 bits
	_, err = EncodeSqrtRatioX96(new(big.Int).Lsh(big.NewInt(1), 200), big.NewInt(1))
	require.ErrorIs(t, err, ErrSqrtRatioOverflow)
}

func TestDecodeSqrtRatioX96RejectsNonPositive(t *testing.T) {
	_, err := DecodeSqrtRatioX96(big.NewInt(0))
	require.ErrorIs(t, err, ErrNonPositiveAmount)
}

func randomAmount(rng *rand.Rand) *big.Int {
	// 1e6 .. ~1e24
	digits := 6 + rng.Int63n(18)
	base := pow10(digits)
	return base.Add(base, new(big.Int).Rand(rng, base))
}

func TestTickMatchesLogarithm(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	for i := 0; i < 500; i++ {
		a := randomAmount(rng)
		b := randomAmount(rng)

		sqrt, err := EncodeSqrtRatioX96(a, b)
		require.NoError(t, err)
		tick, err := TickAtSqrtRatio(sqrt)
		require.NoError(t, err)

		af, _ := new(big.Float).SetInt(a).Float64()
		bf, _ := new(big.Float).SetInt(b).Float64()
		want := math.Floor(math.Log(af/bf) / math.Log(1.0001))
		assert.InDelta(t, want, float64(tick), 1, "a=%s b=%s", a, b)
	}
}

func TestTickMonotonicInRatio(t *testing.T) {
	b := pow10(18)
	a := big.NewInt(1_000_000)
	step := big.NewRat(1003, 1000)

	prev := MinTick
	for i := 0; i < 2000; i++ {
		sqrt, err := EncodeSqrtRatioX96(a, b)
		require.NoError(t, err)
		tick, err := TickAtSqrtRatio(sqrt)
		require.NoError(t, err)
		require.GreaterOrEqual(t, tick, prev, "a=%s", a)
		prev = tick

		next := new(big.Rat).Mul(new(big.Rat).SetInt(a), step)
		a = new(big.Int).Quo(next.Num(), next.Denom())
		a.Add(a, big.NewInt(1))
	}
}

func TestDecodeRoundTripSmallRatios(t *testing.T) {
	tolerance := decimal.New(1, -9)
	a := big.NewInt(1234567)
	for exp := int64(18); exp <= 38; exp++ {
		b := pow10(exp + 6)

		sqrt, err := EncodeSqrtRatioX96(a, b)
		require.NoError(t, err)
		price, err := DecodeSqrtRatioX96(sqrt)
		require.NoError(t, err)
		require.True(t, price.IsPositive(), "exp=%d decoded to %s", exp, price)

		want := decimal.NewFromBigInt(a, 0).DivRound(decimal.NewFromBigInt(b, 0), 80)
		relErr := price.Sub(want).Abs().Div(want)
		assert.True(t, relErr.LessThan(tolerance), "exp=%d got=%s want=%s", exp, price, want)
	}

	price, err := DecodeSqrtRatioX96(MinSqrtRatio)
	require.NoError(t, err)
	assert.True(t, price.IsPositive())
	assert.InDelta(t, 2.939e-39, price.InexactFloat64(), 1e-41)
}

func TestDecodeRoundTrip(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	tolerance := decimal.New(1, -9)
	for i := 0; i < 300; i++ {
		a := randomAmount(rng)
		b := randomAmount(rng)

		sqrt, err := EncodeSqrtRatioX96(a, b)
		require.NoError(t, err)
		price, err := DecodeSqrtRatioX96(sqrt)
		require.NoError(t, err)

		want := decimal.NewFromBigInt(a, 0).DivRound(decimal.NewFromBigInt(b, 0), 40)
		relErr := price.Sub(want).Abs().Div(want)
		assert.True(t, relErr.LessThan(tolerance), "a=%s b=%s got=%s want=%s", a, b, price, want)
	}
}

package simulate

import (
	"fmt"
	"math/big"

	"github.com/shopspring/decimal"

	"liquiditySim/internal/config"
	"liquiditySim/internal/model"
	"liquiditySim/internal/pricemath"
)

// PlannedPosition is a configured position converted into pool terms.
type PlannedPosition struct {
	Index int
	Spec  model.PositionSpec
	Range model.TickRange
	// sqrt prices at the aligned ticks
	SqrtLower *big.Int
	SqrtUpper *big.Int
	Amount0   *big.Int
	Amount1   *big.Int
}

// PlanPosition converts a USD price range of the base token into an aligned tick
// range and token0/token1 amounts.
func PlanPosition(index int, pos config.Position, pair Pair, quoteUSD decimal.Decimal) (PlannedPosition, error) {
	spec := model.PositionSpec{
		LowUSD:      pos.Low.String(),
		HighUSD:     pos.High.String(),
		BaseAmount:  pos.Base.String(),
		QuoteAmount: pos.Quote.String(),
	}

	sqrtLow, tickLow, err := sqrtAndTick(pair, pos.Low, quoteUSD)
	if err != nil {
		return PlannedPosition{}, fmt.Errorf("low %s: %w", spec.LowUSD, err)
	}
	sqrtHigh, tickHigh, err := sqrtAndTick(pair, pos.High, quoteUSD)
	if err != nil {
		return PlannedPosition{}, fmt.Errorf("high %s: %w", spec.HighUSD, err)
	}
	// with the base token as token1 a higher USD price is a lower pool price
	if sqrtLow.Cmp(sqrtHigh) > 0 {
		sqrtLow, sqrtHigh = sqrtHigh, sqrtLow
		tickLow, tickHigh = tickHigh, tickLow
	}

	tickLower, tickUpper, err := pricemath.UsableTickRange(tickLow, tickHigh, pair.TickSpacing)
	if err != nil {
		return PlannedPosition{}, fmt.Errorf("range %s-%s: %w", spec.LowUSD, spec.HighUSD, err)
	}
	sqrtLower, err := pricemath.SqrtRatioAtTick(tickLower)
	if err != nil {
		return PlannedPosition{}, err
	}
	sqrtUpper, err := pricemath.SqrtRatioAtTick(tickUpper)
	if err != nil {
		return PlannedPosition{}, err
	}

	priceLow, err := pricemath.DecodeSqrtRatioX96(sqrtLow)
	if err != nil {
		return PlannedPosition{}, err
	}
	priceHigh, err := pricemath.DecodeSqrtRatioX96(sqrtHigh)
	if err != nil {
		return PlannedPosition{}, err
	}

	amount0, amount1 := pair.TokenAmounts(
		ToBaseUnits(pos.Base, pair.BaseDecimals),
		ToBaseUnits(pos.Quote, pair.QuoteDecimals),
	)

	return PlannedPosition{
		Index: index,
		Spec:  spec,
		Range: model.TickRange{
			SqrtPriceLowerX96: sqrtLow.String(),
			SqrtPriceUpperX96: sqrtHigh.String(),
			PriceLower:        priceLow.String(),
			PriceUpper:        priceHigh.String(),
			RawTickLower:      tickLow,
			RawTickUpper:      tickHigh,
			TickLower:         tickLower,
			TickUpper:         tickUpper,
		},
		SqrtLower: sqrtLower,
		SqrtUpper: sqrtUpper,
		Amount0:   amount0,
		Amount1:   amount1,
	}, nil
}

// PlanPositions converts every configured position, stopping at the first invalid one.
func PlanPositions(positions []config.Position, pair Pair, quoteUSD decimal.Decimal) ([]PlannedPosition, error) {
	planned := make([]PlannedPosition, 0, len(positions))
	for i, pos := range positions {
		p, err := PlanPosition(i, pos, pair, quoteUSD)
		if err != nil {
			return nil, fmt.Errorf("position %d: %w", i, err)
		}
		planned = append(planned, p)
	}
	return planned, nil
}

// Liquidity returns the liquidity the position's amounts fund at sqrtPriceX96.
func (p PlannedPosition) Liquidity(sqrtPriceX96 *big.Int) (*big.Int, error) {
	return pricemath.LiquidityForAmounts(sqrtPriceX96, p.SqrtLower, p.SqrtUpper, p.Amount0, p.Amount1)
}

func sqrtAndTick(pair Pair, baseUSD, quoteUSD decimal.Decimal) (*big.Int, int32, error) {
	amountA, amountB := pair.PoolRatio(baseUSD, quoteUSD)
	sqrt, err := pricemath.EncodeSqrtRatioX96(amountA, amountB)
	if err != nil {
		return nil, 0, err
	}
	tick, err := pricemath.TickAtSqrtRatio(sqrt)
	if err != nil {
		return nil, 0, err
	}
	return sqrt, tick, nil
}

package simulate

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"

	"liquiditySim/internal/model"
)

// feeDenominator is the unit of V3 fee tiers (hundredths of a basis point).
const feeDenominator = 1_000_000

// Quoter prices single-pool swaps without executing them.
type Quoter interface {
	QuoteExactInputSingle(ctx context.Context, tokenIn, tokenOut common.Address, fee uint32, amountIn *big.Int) (*big.Int, error)
	QuoteExactOutputSingle(ctx context.Context, tokenIn, tokenOut common.Address, fee uint32, amountOut *big.Int) (*big.Int, error)
}

// QuoteCost returns the quote token cost of buying baseAmount whole base tokens.
func QuoteCost(ctx context.Context, q Quoter, pair Pair, baseAmount decimal.Decimal) model.PriceQuote {
	out := model.PriceQuote{BaseAmount: baseAmount.String()}
	cost, err := q.QuoteExactOutputSingle(ctx, pair.Quote, pair.Base, pair.Fee, ToBaseUnits(baseAmount, pair.BaseDecimals))
	if err != nil {
		out.Error = err.Error()
		return out
	}
	out.Cost = FromBaseUnits(cost, pair.QuoteDecimals).String()
	return out
}

// EstimateImpact buys the base token with quoteAmount whole quote tokens and
// compares the fee-free execution price against the mid price. A positive
// impact means the buyer pays above mid.
func EstimateImpact(ctx context.Context, q Quoter, pair Pair, quoteAmount, midPrice decimal.Decimal) model.ImpactEstimate {
	out := model.ImpactEstimate{QuoteAmount: quoteAmount.String(), MidPrice: midPrice.String()}
	if !midPrice.IsPositive() {
		out.Error = "mid price unavailable"
		return out
	}

	baseOut, err := q.QuoteExactInputSingle(ctx, pair.Quote, pair.Base, pair.Fee, ToBaseUnits(quoteAmount, pair.QuoteDecimals))
	if err != nil {
		out.Error = err.Error()
		return out
	}
	if baseOut.Sign() <= 0 {
		out.Error = "quote returned no output"
		return out
	}

	received := FromBaseUnits(baseOut, pair.BaseDecimals)
	out.BaseOut = received.String()
	out.ExecutionPrice = quoteAmount.DivRound(received, 36).String()
	out.Impact = PriceImpact(quoteAmount, received, midPrice, pair.Fee)
	return out
}

// PriceImpact is the relative distance of the fee-free execution price from mid.
func PriceImpact(quoteIn, baseOut, midPrice decimal.Decimal, fee uint32) float64 {
	feeFree := decimal.New(1, 0).Sub(decimal.New(int64(fee), 0).Div(decimal.New(feeDenominator, 0)))
	effective := quoteIn.Mul(feeFree)
	execution := effective.DivRound(baseOut, 36)
	return execution.DivRound(midPrice, 36).Sub(decimal.New(1, 0)).InexactFloat64()
}

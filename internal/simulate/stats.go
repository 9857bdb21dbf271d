package simulate

import (
	"context"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"liquiditySim/internal/dex"
	"liquiditySim/internal/model"
)

const quoteConcurrency = 4

// CollectStats prices the configured buys against one pool snapshot. Failed
// quotes are recorded on their row rather than failing the snapshot.
func CollectStats(ctx context.Context, q Quoter, pair Pair, phase string, state dex.PoolState, costAmounts, impactAmounts []decimal.Decimal) (model.PoolStats, error) {
	mid, err := pair.QuotePerBase(state.SqrtPriceX96)
	if err != nil {
		return model.PoolStats{}, err
	}

	stats := model.PoolStats{
		Phase: phase,
		State: model.PoolState{
			BlockNumber:  state.BlockNumber,
			SqrtPriceX96: state.SqrtPriceX96.String(),
			Tick:         state.Tick,
			Liquidity:    state.Liquidity.String(),
			Price:        mid.String(),
		},
		Quotes:  make([]model.PriceQuote, len(costAmounts)),
		Impacts: make([]model.ImpactEstimate, len(impactAmounts)),
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(quoteConcurrency)
	for i, amount := range costAmounts {
		i, amount := i, amount
		g.Go(func() error {
			stats.Quotes[i] = QuoteCost(gctx, q, pair, amount)
			return nil
		})
	}
	for i, amount := range impactAmounts {
		i, amount := i, amount
		g.Go(func() error {
			stats.Impacts[i] = EstimateImpact(gctx, q, pair, amount, mid)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return model.PoolStats{}, err
	}
	if err := ctx.Err(); err != nil {
		return model.PoolStats{}, err
	}
	return stats, nil
}

package report

import (
	"bytes"
	"strings"
	"testing"

	"liquiditySim/internal/model"
)

func TestPrintReport(t *testing.T) {
	grow := model.TokenMeta{Symbol: "GROW", Decimals: 18}
	weth := model.TokenMeta{Symbol: "WETH", Decimals: 18}
	r := model.Report{
		ChainID: 1,
		Pool:    model.PoolMeta{Address: "0xpool", Fee: 10000, TickSpacing: 200},
		Base:    grow,
		Quote:   weth,
		Balances: []model.TokenBalance{
			{Symbol: "ETH", Formatted: "9000.123456789"},
		},
		Before: model.PoolStats{
			Phase:  "before",
			State:  model.PoolState{Tick: -79934, Liquidity: "1000", Price: "0.000337837837"},
			Quotes: []model.PriceQuote{{BaseAmount: "1000", Error: "execution reverted"}},
			Impacts: []model.ImpactEstimate{
				{QuoteAmount: "1", BaseOut: "2950.1", ExecutionPrice: "0.000338971", Impact: 0.0033},
			},
		},
		Mints: []model.MintResult{
			{Index: 3, Spec: model.PositionSpec{LowUSD: "1.70", HighUSD: "2.10"},
				Range: model.TickRange{TickLower: -84000, TickUpper: -81800}, Status: model.MintStatusSkipped,
				Error: "zero liquidity"},
		},
	}

	var buf bytes.Buffer
	if err := NewPrinter(&buf).PrintReport(r); err != nil {
		t.Fatalf("print: %v", err)
	}
	out := buf.String()

	for _, want := range []string{
		"== balances ==",
		"9000.123457",
		"== pool before ==",
		"error: execution reverted",
		"0.33%",
		"[-84000, -81800]",
		"zero liquidity",
		"== lp positions ==",
		"none",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "== pool after ==") {
		t.Fatalf("empty after phase should not print")
	}
}

func TestPrintTickRangesLengthMismatch(t *testing.T) {
	var buf bytes.Buffer
	err := NewPrinter(&buf).PrintTickRanges([]model.PositionSpec{{}}, nil)
	if err == nil {
		t.Fatalf("expected mismatch error")
	}
}

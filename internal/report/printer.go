package report

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"liquiditySim/internal/model"
)

const displayPlaces = 6

// Printer renders human-readable tables.
type Printer struct {
	w io.Writer
}

func NewPrinter(w io.Writer) *Printer {
	return &Printer{w: w}
}

func (p *Printer) table() *tabwriter.Writer {
	return tabwriter.NewWriter(p.w, 0, 0, 2, ' ', 0)
}

func (p *Printer) section(title string) {
	fmt.Fprintf(p.w, "\n== %s ==\n", title)
}

// PrintReport prints every section of a simulation run.
func (p *Printer) PrintReport(r model.Report) error {
	fmt.Fprintf(p.w, "pool %s (%s/%s, fee %d, spacing %d) chain %d account %s\n",
		r.Pool.Address, symbolOr(r.Base), symbolOr(r.Quote), r.Pool.Fee, r.Pool.TickSpacing, r.ChainID, r.Account)

	steps := []func() error{
		func() error { return p.PrintBalances(r.Balances) },
		func() error { return p.PrintStats(r.Before, r.Base, r.Quote) },
		func() error { return p.PrintMints(r.Mints) },
		func() error { return p.PrintPositions(r.Positions) },
		func() error { return p.PrintStats(r.After, r.Base, r.Quote) },
	}
	for _, step := range steps {
		if err := step(); err != nil {
			return err
		}
	}
	return nil
}

func (p *Printer) PrintBalances(balances []model.TokenBalance) error {
	p.section("balances")
	tw := p.table()
	fmt.Fprintln(tw, "TOKEN\tBALANCE")
	for _, b := range balances {
		fmt.Fprintf(tw, "%s\t%s\n", b.Symbol, Round(b.Formatted, displayPlaces))
	}
	return tw.Flush()
}

// PrintStats prints the quote costs and buy impacts of one pool snapshot.
func (p *Printer) PrintStats(stats model.PoolStats, base, quote model.TokenMeta) error {
	if stats.Phase == "" {
		return nil
	}
	p.section("pool " + stats.Phase)
	fmt.Fprintf(p.w, "block %d tick %d liquidity %s mid price %s %s per %s\n",
		stats.State.BlockNumber, stats.State.Tick, stats.State.Liquidity,
		Round(stats.State.Price, 12), symbolOr(quote), symbolOr(base))

	tw := p.table()
	fmt.Fprintf(tw, "BUY %s\tCOST %s\n", symbolOr(base), symbolOr(quote))
	for _, q := range stats.Quotes {
		cost := Round(q.Cost, displayPlaces)
		if q.Error != "" {
			cost = "error: " + q.Error
		}
		fmt.Fprintf(tw, "%s\t%s\n", q.BaseAmount, cost)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	tw = p.table()
	fmt.Fprintf(tw, "SPEND %s\tRECEIVE %s\tEXEC PRICE\tIMPACT\n", symbolOr(quote), symbolOr(base))
	for _, e := range stats.Impacts {
		if e.Error != "" {
			fmt.Fprintf(tw, "%s\terror: %s\t\t\n", e.QuoteAmount, e.Error)
			continue
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n",
			e.QuoteAmount, Round(e.BaseOut, 2), Round(e.ExecutionPrice, 12), Percent(e.Impact))
	}
	return tw.Flush()
}

func (p *Printer) PrintMints(mints []model.MintResult) error {
	if len(mints) == 0 {
		return nil
	}
	p.section("positions minted")
	tw := p.table()
	fmt.Fprintln(tw, "#\tUSD RANGE\tTICKS\tSTATUS\tTOKEN ID\tLIQUIDITY\tDETAIL")
	for _, m := range mints {
		detail := m.TxHash
		if m.Error != "" {
			detail = m.Error
		}
		fmt.Fprintf(tw, "%d\t%s-%s\t[%d, %d]\t%s\t%s\t%s\t%s\n",
			m.Index, m.Spec.LowUSD, m.Spec.HighUSD, m.Range.TickLower, m.Range.TickUpper,
			m.Status, dash(m.TokenID), dash(m.Liquidity), dash(detail))
	}
	return tw.Flush()
}

func (p *Printer) PrintPositions(positions []model.LPPosition) error {
	p.section("lp positions")
	if len(positions) == 0 {
		fmt.Fprintln(p.w, "none")
		return nil
	}
	tw := p.table()
	fmt.Fprintln(tw, "TOKEN ID\tFEE\tTICK LOWER\tTICK UPPER\tLIQUIDITY")
	for _, pos := range positions {
		fmt.Fprintf(tw, "%s\t%d\t%d\t%d\t%s\n", pos.TokenID, pos.Fee, pos.TickLower, pos.TickUpper, pos.Liquidity)
	}
	return tw.Flush()
}

// PrintTickRanges prints the pool representation of configured price ranges.
func (p *Printer) PrintTickRanges(specs []model.PositionSpec, ranges []model.TickRange) error {
	if len(specs) != len(ranges) {
		return fmt.Errorf("spec/range length mismatch: %d != %d", len(specs), len(ranges))
	}
	tw := p.table()
	fmt.Fprintln(tw, "#\tUSD RANGE\tSQRT LOWER X96\tSQRT UPPER X96\tRAW TICKS\tTICKS")
	for i := range specs {
		r := ranges[i]
		fmt.Fprintf(tw, "%d\t%s-%s\t%s\t%s\t[%d, %d]\t[%d, %d]\n",
			i, specs[i].LowUSD, specs[i].HighUSD, r.SqrtPriceLowerX96, r.SqrtPriceUpperX96,
			r.RawTickLower, r.RawTickUpper, r.TickLower, r.TickUpper)
	}
	return tw.Flush()
}

func symbolOr(meta model.TokenMeta) string {
	if strings.TrimSpace(meta.Symbol) != "" {
		return meta.Symbol
	}
	if meta.Address != "" {
		return meta.Address
	}
	return "?"
}

func dash(value string) string {
	if value == "" {
		return "-"
	}
	return value
}

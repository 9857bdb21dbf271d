package model

import "time"

// PriceQuote is the quote-token cost of buying a fixed amount of the base token.
type PriceQuote struct {
	BaseAmount string `json:"base_amount"`
	Cost       string `json:"cost"`
	Error      string `json:"error,omitempty"`
}

// ImpactEstimate compares the execution price of a buy with the pool mid price.
type ImpactEstimate struct {
	QuoteAmount    string  `json:"quote_amount"`
	BaseOut        string  `json:"base_out"`
	ExecutionPrice string  `json:"execution_price"`
	MidPrice       string  `json:"mid_price"`
	Impact         float64 `json:"impact"`
	Error          string  `json:"error,omitempty"`
}

// PoolStats is one snapshot of pool pricing.
type PoolStats struct {
	Phase   string           `json:"phase"`
	State   PoolState        `json:"state"`
	Quotes  []PriceQuote     `json:"quotes"`
	Impacts []ImpactEstimate `json:"impacts"`
}

// Report is the full outcome of a simulation run.
type Report struct {
	RunID     string         `json:"run_id"`
	ChainID   uint64         `json:"chain_id"`
	Account   string         `json:"account"`
	Pool      PoolMeta       `json:"pool"`
	Base      TokenMeta      `json:"base"`
	Quote     TokenMeta      `json:"quote"`
	QuoteUSD  string         `json:"quote_usd"`
	StartedAt time.Time      `json:"started_at"`
	Balances  []TokenBalance `json:"balances"`
	Before    PoolStats      `json:"before"`
	After     PoolStats      `json:"after"`
	Mints     []MintResult   `json:"mints"`
	Positions []LPPosition   `json:"positions"`
}

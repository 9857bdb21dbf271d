package model

// PositionSpec describes a liquidity position as a USD price range for the base token
// and the whole-token amounts supplied on each side.
type PositionSpec struct {
	LowUSD      string `json:"low_usd"`
	HighUSD     string `json:"high_usd"`
	BaseAmount  string `json:"base_amount"`
	QuoteAmount string `json:"quote_amount"`
}

// TickRange is a position's price range in pool representation.
type TickRange struct {
	SqrtPriceLowerX96 string `json:"sqrt_price_lower_x96"`
	SqrtPriceUpperX96 string `json:"sqrt_price_upper_x96"`
	PriceLower        string `json:"price_lower"`
	PriceUpper        string `json:"price_upper"`
	RawTickLower      int32  `json:"raw_tick_lower"`
	RawTickUpper      int32  `json:"raw_tick_upper"`
	TickLower         int32  `json:"tick_lower"`
	TickUpper         int32  `json:"tick_upper"`
}

// MintResult records what happened to one configured position.
type MintResult struct {
	Index     int          `json:"index"`
	Spec      PositionSpec `json:"spec"`
	Range     TickRange    `json:"range"`
	Status    string       `json:"status"`
	TxHash    string       `json:"tx_hash,omitempty"`
	TokenID   string       `json:"token_id,omitempty"`
	Liquidity string       `json:"liquidity,omitempty"`
	Amount0   string       `json:"amount0,omitempty"`
	Amount1   string       `json:"amount1,omitempty"`
	Error     string       `json:"error,omitempty"`
}

const (
	MintStatusMinted  = "minted"
	MintStatusSkipped = "skipped"
	MintStatusFailed  = "failed"
	MintStatusJournal = "already_minted"
)

// LPPosition is a position NFT read back from the position manager.
type LPPosition struct {
	TokenID   string `json:"token_id"`
	Token0    string `json:"token0"`
	Token1    string `json:"token1"`
	Fee       uint32 `json:"fee"`
	TickLower int32  `json:"tick_lower"`
	TickUpper int32  `json:"tick_upper"`
	Liquidity string `json:"liquidity"`
}

package model

// PoolMeta captures immutable pool metadata.
type PoolMeta struct {
	Address     string `json:"address"`
	Token0      string `json:"token0"`
	Token1      string `json:"token1"`
	Fee         uint32 `json:"fee"`
	TickSpacing int32  `json:"tick_spacing"`
}

// PoolState is a slot0 and active liquidity read at a block.
type PoolState struct {
	BlockNumber  uint64 `json:"block_number"`
	SqrtPriceX96 string `json:"sqrt_price_x96"`
	Tick         int32  `json:"tick"`
	Liquidity    string `json:"liquidity"`
	// Price is token1 per token0 adjusted for decimals.
	Price string `json:"price"`
}

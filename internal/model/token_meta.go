package model

// TokenMeta captures ERC20 metadata.
type TokenMeta struct {
	Address  string `json:"address"`
	Decimals uint8  `json:"decimals"`
	Symbol   string `json:"symbol"`
	Name     string `json:"name"`
}

// TokenBalance is an account balance of a token, or of native ETH when Token is empty.
type TokenBalance struct {
	Token     string `json:"token,omitempty"`
	Symbol    string `json:"symbol"`
	Raw       string `json:"raw"`
	Formatted string `json:"formatted"`
}

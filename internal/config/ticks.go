package config

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
	"github.com/spf13/pflag"

	"liquiditySim/internal/dex"
)

// TicksConfig holds configuration for the offline ticks command.
type TicksConfig struct {
	BaseToken     common.Address
	QuoteToken    common.Address
	BaseDecimals  uint8
	QuoteDecimals uint8
	TickSpacing   int32
	QuoteUSD      decimal.Decimal
	Positions     []Position
	LogLevel      string
}

// LoadTicks merges config file, environment variables, and flags into TicksConfig.
func LoadTicks(cfgFile string, flags *pflag.FlagSet) (TicksConfig, error) {
	v := newViper()
	v.SetDefault("base-token", DefaultBaseToken)
	v.SetDefault("quote-token", dex.MainnetWETH)
	v.SetDefault("base-decimals", 18)
	v.SetDefault("quote-decimals", 18)
	v.SetDefault("tick-spacing", 200)
	v.SetDefault("quote-usd", DefaultQuoteUSD)
	v.SetDefault("positions", DefaultPositions())

	if err := readConfig(v, cfgFile, flags); err != nil {
		return TicksConfig{}, err
	}

	cfg := TicksConfig{
		BaseDecimals:  uint8(v.GetUint("base-decimals")),
		QuoteDecimals: uint8(v.GetUint("quote-decimals")),
		TickSpacing:   v.GetInt32("tick-spacing"),
		LogLevel:      v.GetString("log-level"),
	}

	var err error
	if cfg.BaseToken, err = ParseAddress("base-token", v.GetString("base-token")); err != nil {
		return TicksConfig{}, err
	}
	if cfg.QuoteToken, err = ParseAddress("quote-token", v.GetString("quote-token")); err != nil {
		return TicksConfig{}, err
	}
	if cfg.BaseToken == cfg.QuoteToken {
		return TicksConfig{}, fmt.Errorf("base and quote token must differ")
	}
	if cfg.TickSpacing <= 0 {
		return TicksConfig{}, fmt.Errorf("tick spacing must be positive")
	}
	if cfg.QuoteUSD, err = parsePositiveDecimal("quote-usd", v.GetString("quote-usd")); err != nil {
		return TicksConfig{}, err
	}
	if cfg.Positions, err = getPositions(v); err != nil {
		return TicksConfig{}, err
	}

	return cfg, nil
}

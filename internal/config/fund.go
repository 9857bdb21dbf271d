package config

import (
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
	"github.com/spf13/pflag"

	"liquiditySim/internal/dex"
)

// FundConfig holds configuration for the fork funding command.
type FundConfig struct {
	RPCURL       string
	PrivateKey   string
	BaseToken    common.Address
	WETH         common.Address
	Holder       common.Address
	Amount       decimal.Decimal
	WrapETH      decimal.Decimal
	PollInterval time.Duration
	LogLevel     string
}

// LoadFund merges config file, environment variables, and flags into FundConfig.
func LoadFund(cfgFile string, flags *pflag.FlagSet) (FundConfig, error) {
	v := newViper()
	v.SetDefault("private-key", DefaultPrivateKey)
	v.SetDefault("base-token", DefaultBaseToken)
	v.SetDefault("weth", dex.MainnetWETH)
	v.SetDefault("holder", DefaultHolder)
	v.SetDefault("amount", "1000000")
	v.SetDefault("wrap-eth", "1000")
	v.SetDefault("poll-interval", 500*time.Millisecond)

	if err := readConfig(v, cfgFile, flags); err != nil {
		return FundConfig{}, err
	}

	cfg := FundConfig{
		RPCURL:       v.GetString("rpc"),
		PrivateKey:   v.GetString("private-key"),
		PollInterval: v.GetDuration("poll-interval"),
		LogLevel:     v.GetString("log-level"),
	}

	var err error
	if cfg.BaseToken, err = ParseAddress("base-token", v.GetString("base-token")); err != nil {
		return FundConfig{}, err
	}
	if cfg.WETH, err = ParseAddress("weth", v.GetString("weth")); err != nil {
		return FundConfig{}, err
	}
	if cfg.Holder, err = ParseAddress("holder", v.GetString("holder")); err != nil {
		return FundConfig{}, err
	}
	if cfg.Amount, err = parseAmount("amount", v.GetString("amount")); err != nil {
		return FundConfig{}, err
	}
	if cfg.WrapETH, err = parseAmount("wrap-eth", v.GetString("wrap-eth")); err != nil {
		return FundConfig{}, err
	}
	if cfg.Amount.IsZero() && cfg.WrapETH.IsZero() {
		return FundConfig{}, fmt.Errorf("nothing to fund: amount and wrap-eth are both zero")
	}

	return cfg, nil
}

package config

import (
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
	"github.com/spf13/pflag"

	"liquiditySim/internal/dex"
)

// SimulateConfig holds configuration for the simulate command.
type SimulateConfig struct {
	RPCURL          string
	PrivateKey      string
	BaseToken       common.Address
	QuoteToken      common.Address
	Fee             uint32
	Pool            common.Address
	Factory         common.Address
	Quoter          common.Address
	PositionManager common.Address
	QuoteUSD        decimal.Decimal
	Positions       []Position
	CostAmounts     []decimal.Decimal
	ImpactAmounts   []decimal.Decimal
	SkipMint        bool
	Deadline        time.Duration
	Journal         string
	JournalEnabled  bool
	Out             string
	PostgresDSN     string
	MetricsOut      string
	MaxRetries      int
	RetryBackoff    time.Duration
	LogLevel        string
}

// LoadSimulate merges config file, environment variables, and flags into SimulateConfig.
func LoadSimulate(cfgFile string, flags *pflag.FlagSet) (SimulateConfig, error) {
	v := newViper()
	v.SetDefault("private-key", DefaultPrivateKey)
	v.SetDefault("base-token", DefaultBaseToken)
	v.SetDefault("quote-token", dex.MainnetWETH)
	v.SetDefault("fee", DefaultFee)
	v.SetDefault("factory", dex.MainnetV3Factory)
	v.SetDefault("quoter", dex.MainnetQuoterV1)
	v.SetDefault("position-manager", dex.MainnetPositionManager)
	v.SetDefault("quote-usd", DefaultQuoteUSD)
	v.SetDefault("positions", DefaultPositions())
	v.SetDefault("cost-amounts", "1000,1000000")
	v.SetDefault("impact-amounts", "1,10,100,1000")
	v.SetDefault("deadline", 10*time.Minute)
	v.SetDefault("journal", "./data/mint_journal.json")
	v.SetDefault("journal-enabled", true)
	v.SetDefault("max-retries", 3)
	v.SetDefault("retry-backoff", 500*time.Millisecond)

	if err := readConfig(v, cfgFile, flags); err != nil {
		return SimulateConfig{}, err
	}

	cfg := SimulateConfig{
		RPCURL:         v.GetString("rpc"),
		PrivateKey:     v.GetString("private-key"),
		Fee:            v.GetUint32("fee"),
		SkipMint:       v.GetBool("skip-mint"),
		Deadline:       v.GetDuration("deadline"),
		Journal:        v.GetString("journal"),
		JournalEnabled: v.GetBool("journal-enabled"),
		Out:            v.GetString("out"),
		PostgresDSN:    v.GetString("postgres-dsn"),
		MetricsOut:     v.GetString("metrics-out"),
		MaxRetries:     v.GetInt("max-retries"),
		RetryBackoff:   v.GetDuration("retry-backoff"),
		LogLevel:       v.GetString("log-level"),
	}

	var err error
	addresses := []struct {
		key    string
		target *common.Address
	}{
		{"base-token", &cfg.BaseToken},
		{"quote-token", &cfg.QuoteToken},
		{"factory", &cfg.Factory},
		{"quoter", &cfg.Quoter},
		{"position-manager", &cfg.PositionManager},
	}
	for _, item := range addresses {
		if *item.target, err = ParseAddress(item.key, v.GetString(item.key)); err != nil {
			return SimulateConfig{}, err
		}
	}
	if pool := v.GetString("pool"); pool != "" {
		if cfg.Pool, err = ParseAddress("pool", pool); err != nil {
			return SimulateConfig{}, err
		}
	}
	if cfg.BaseToken == cfg.QuoteToken {
		return SimulateConfig{}, fmt.Errorf("base and quote token must differ")
	}

	if cfg.QuoteUSD, err = parsePositiveDecimal("quote-usd", v.GetString("quote-usd")); err != nil {
		return SimulateConfig{}, err
	}
	if cfg.Positions, err = getPositions(v); err != nil {
		return SimulateConfig{}, err
	}
	if cfg.CostAmounts, err = getDecimalSlice(v, "cost-amounts"); err != nil {
		return SimulateConfig{}, err
	}
	if cfg.ImpactAmounts, err = getDecimalSlice(v, "impact-amounts"); err != nil {
		return SimulateConfig{}, err
	}
	if cfg.Deadline <= 0 {
		return SimulateConfig{}, fmt.Errorf("deadline must be positive")
	}

	return cfg, nil
}

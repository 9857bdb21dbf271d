package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"liquiditySim/internal/chain"
)

func main() {
	root := &cobra.Command{
		Use:          "lpsim",
		Short:        "Uniswap V3 liquidity simulator for a forked mainnet node",
		SilenceUsage: true,
	}

	root.PersistentFlags().String("config", "", "config file path")

	root.AddCommand(newSimulateCmd(), newTicksCmd(), newFundCmd())

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func newLogger(level string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevel()
	if err := cfg.Level.UnmarshalText([]byte(level)); err != nil {
		return nil, err
	}

	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	return cfg.Build()
}

func loadAccount(privateKey string) (*chain.Account, error) {
	if privateKey == "" {
		return nil, fmt.Errorf("private key is empty (--private-key or LPSIM_PRIVATE_KEY)")
	}
	return chain.NewAccount(privateKey)
}

func redactDSN(dsn string) string {
	if dsn == "" {
		return dsn
	}
	return "***"
}

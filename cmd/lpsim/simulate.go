package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"liquiditySim/internal/chain"
	"liquiditySim/internal/config"
	"liquiditySim/internal/metrics"
	"liquiditySim/internal/report"
	"liquiditySim/internal/simulate"
	"liquiditySim/internal/storage"
	"liquiditySim/internal/storage/postgres"
)

func newSimulateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Measure a pool, mint the configured positions, and measure it again",
		RunE:  runSimulate,
	}

	cmd.Flags().String("rpc", config.DefaultRPC, "fork node RPC URL")
	cmd.Flags().String("private-key", "", "hex private key of the minting account (default: local dev account #0)")
	cmd.Flags().String("base-token", config.DefaultBaseToken, "token whose USD price ranges are configured")
	cmd.Flags().String("quote-token", "", "token paired with the base token (default WETH)")
	cmd.Flags().Uint32("fee", config.DefaultFee, "pool fee tier in hundredths of a bip")
	cmd.Flags().String("pool", "", "pool address (default: looked up from the factory)")
	cmd.Flags().String("factory", "", "Uniswap V3 factory address")
	cmd.Flags().String("quoter", "", "Uniswap V3 quoter address")
	cmd.Flags().String("position-manager", "", "NonfungiblePositionManager address")
	cmd.Flags().String("quote-usd", config.DefaultQuoteUSD, "USD price of the quote token")
	cmd.Flags().StringSlice("cost-amounts", nil, "base token amounts to price (comma-separated)")
	cmd.Flags().StringSlice("impact-amounts", nil, "quote token amounts to measure impact for (comma-separated)")
	cmd.Flags().Bool("skip-mint", false, "only report pool stats")
	cmd.Flags().Duration("deadline", 10*time.Minute, "mint deadline relative to the latest block")
	cmd.Flags().String("journal", "./data/mint_journal.json", "mint journal path")
	cmd.Flags().Bool("journal-enabled", true, "skip positions already minted on this fork")
	cmd.Flags().String("out", "", "append the run report to this JSONL file")
	cmd.Flags().String("postgres-dsn", "", "store the run report in Postgres")
	cmd.Flags().String("metrics-out", "", "write Prometheus metrics to this textfile")
	cmd.Flags().Int("max-retries", 3, "maximum retry attempts for RPC reads")
	cmd.Flags().Duration("retry-backoff", 500*time.Millisecond, "initial retry backoff")
	cmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")

	return cmd
}

func runSimulate(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.LoadSimulate(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	account, err := loadAccount(cfg.PrivateKey)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	chainClient, err := chain.NewClient(ctx, cfg.RPCURL)
	if err != nil {
		return fmt.Errorf("connect rpc: %w", err)
	}
	defer chainClient.Close()

	var sinks storage.MultiSink
	if cfg.Out != "" {
		sinks = append(sinks, storage.NewJsonlStorage(cfg.Out))
	}
	if cfg.PostgresDSN != "" {
		store, err := postgres.NewStore(ctx, cfg.PostgresDSN)
		if err != nil {
			return fmt.Errorf("connect postgres: %w", err)
		}
		defer store.Close()
		if err := store.EnsureSchema(ctx); err != nil {
			return err
		}
		sinks = append(sinks, store)
	}
	var sink storage.Sink
	if len(sinks) > 0 {
		sink = sinks
	}

	var recorder *metrics.Recorder
	if cfg.MetricsOut != "" {
		recorder = metrics.NewRecorder()
	}

	runner := simulate.NewRunner(simulate.RunConfig{
		BaseToken:       cfg.BaseToken,
		QuoteToken:      cfg.QuoteToken,
		Fee:             cfg.Fee,
		Pool:            cfg.Pool,
		Factory:         cfg.Factory,
		Quoter:          cfg.Quoter,
		PositionManager: cfg.PositionManager,
		QuoteUSD:        cfg.QuoteUSD,
		Positions:       cfg.Positions,
		CostAmounts:     cfg.CostAmounts,
		ImpactAmounts:   cfg.ImpactAmounts,
		SkipMint:        cfg.SkipMint,
		Deadline:        cfg.Deadline,
		JournalPath:     cfg.Journal,
		JournalEnabled:  cfg.JournalEnabled,
		MaxRetries:      cfg.MaxRetries,
		RetryBackoff:    cfg.RetryBackoff,
	}, chainClient, account, sink, recorder, logger)

	logger.Info("simulate start",
		zap.String("rpc", cfg.RPCURL),
		zap.String("account", account.Address().Hex()),
		zap.String("base_token", cfg.BaseToken.Hex()),
		zap.String("quote_token", cfg.QuoteToken.Hex()),
		zap.Uint32("fee", cfg.Fee),
		zap.Int("positions", len(cfg.Positions)),
		zap.Bool("skip_mint", cfg.SkipMint),
		zap.String("out", cfg.Out),
		zap.String("postgres_dsn", redactDSN(cfg.PostgresDSN)),
		zap.String("metrics_out", cfg.MetricsOut),
	)

	rep, runErr := runner.Run(ctx)
	if recorder != nil {
		if err := recorder.WriteTextfile(cfg.MetricsOut); err != nil {
			logger.Warn("write metrics failed", zap.Error(err))
		}
	}
	if runErr != nil {
		return runErr
	}

	return report.NewPrinter(cmd.OutOrStdout()).PrintReport(rep)
}

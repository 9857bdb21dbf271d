package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"liquiditySim/internal/config"
	"liquiditySim/internal/model"
	"liquiditySim/internal/report"
	"liquiditySim/internal/simulate"
)

func newTicksCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ticks",
		Short: "Convert the configured USD price ranges into pool ticks without a node",
		RunE:  runTicks,
	}

	cmd.Flags().String("base-token", config.DefaultBaseToken, "token whose USD price ranges are configured")
	cmd.Flags().String("quote-token", "", "token paired with the base token (default WETH)")
	cmd.Flags().Uint8("base-decimals", 18, "base token decimals")
	cmd.Flags().Uint8("quote-decimals", 18, "quote token decimals")
	cmd.Flags().Int32("tick-spacing", 200, "pool tick spacing")
	cmd.Flags().String("quote-usd", config.DefaultQuoteUSD, "USD price of the quote token")
	cmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")

	return cmd
}

func runTicks(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.LoadTicks(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	pair := simulate.SortedPair(cfg.BaseToken, cfg.QuoteToken, cfg.BaseDecimals, cfg.QuoteDecimals, cfg.TickSpacing)
	logger.Debug("pair ordered",
		zap.String("token0", pair.Token0().Hex()),
		zap.String("token1", pair.Token1().Hex()),
		zap.Bool("base_is_token0", pair.BaseIsToken0),
	)

	planned, err := simulate.PlanPositions(cfg.Positions, pair, cfg.QuoteUSD)
	if err != nil {
		return err
	}

	specs := make([]model.PositionSpec, 0, len(planned))
	ranges := make([]model.TickRange, 0, len(planned))
	for _, p := range planned {
		specs = append(specs, p.Spec)
		ranges = append(ranges, p.Range)
	}
	return report.NewPrinter(cmd.OutOrStdout()).PrintTickRanges(specs, ranges)
}

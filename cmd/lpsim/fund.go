package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"liquiditySim/internal/chain"
	"liquiditySim/internal/config"
	"liquiditySim/internal/dex"
	"liquiditySim/internal/fund"
	"liquiditySim/internal/model"
	"liquiditySim/internal/report"
	"liquiditySim/internal/simulate"
)

func newFundCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fund",
		Short: "Fund the local account on a hardhat fork with base tokens and WETH",
		RunE:  runFund,
	}

	cmd.Flags().String("rpc", config.DefaultRPC, "fork node RPC URL")
	cmd.Flags().String("private-key", "", "hex private key of the account to fund (default: local dev account #0)")
	cmd.Flags().String("base-token", config.DefaultBaseToken, "token to transfer from the holder")
	cmd.Flags().String("weth", "", "WETH contract address")
	cmd.Flags().String("holder", config.DefaultHolder, "account impersonated as the token source")
	cmd.Flags().String("amount", "1000000", "whole base tokens to transfer (0 to skip)")
	cmd.Flags().String("wrap-eth", "1000", "ETH to wrap into WETH (0 to skip)")
	cmd.Flags().Duration("poll-interval", 500*time.Millisecond, "receipt polling interval")
	cmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")

	return cmd
}

func runFund(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.LoadFund(cfgFile, cmd.Flags())
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

	chainID, err := chainClient.GetChainID(ctx)
	if err != nil {
		return fmt.Errorf("get chain id: %w", err)
	}
	opts, err := account.TransactOpts(chainID)
	if err != nil {
		return err
	}

	base, err := dex.FetchTokenMeta(ctx, chainClient, cfg.BaseToken, logger)
	if err != nil {
		return fmt.Errorf("base token metadata: %w", err)
	}

	funder := fund.NewFunder(chainClient, cfg.PollInterval, logger)
	res, err := funder.Fund(ctx, fund.Request{
		Token:     cfg.BaseToken,
		Holder:    cfg.Holder,
		Recipient: account.Address(),
		Amount:    simulate.ToBaseUnits(cfg.Amount, base.Decimals),
		WETH:      cfg.WETH,
		WrapWei:   simulate.ToBaseUnits(cfg.WrapETH, 18),
	}, opts)
	if err != nil {
		return err
	}
	logger.Info("fund done",
		zap.String("transfer_tx", res.TransferTx.Hex()),
		zap.String("wrap_tx", res.WrapTx.Hex()),
	)

	weth := model.TokenMeta{Address: cfg.WETH.Hex(), Decimals: 18, Symbol: "WETH"}
	balances := make([]model.TokenBalance, 0, 2)
	for _, token := range []model.TokenMeta{base, weth} {
		bal, err := dex.TokenBalance(ctx, chainClient, common.HexToAddress(token.Address), account.Address())
		if err != nil {
			return fmt.Errorf("%s balance: %w", token.Symbol, err)
		}
		balances = append(balances, model.TokenBalance{
			Token:     token.Address,
			Symbol:    token.Symbol,
			Raw:       bal.String(),
			Formatted: report.FormatTokenAmount(bal, token.Decimals),
		})
	}
	return report.NewPrinter(cmd.OutOrStdout()).PrintBalances(balances)
}

package simulate

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"liquiditySim/internal/chain"
	"liquiditySim/internal/config"
	"liquiditySim/internal/dex"
	"liquiditySim/internal/metrics"
	"liquiditySim/internal/model"
	"liquiditySim/internal/pricemath"
	"liquiditySim/internal/report"
	"liquiditySim/internal/storage"
)

const (
	PhaseBefore = "before"
	PhaseAfter  = "after"
)

// RunConfig holds runtime settings for a simulation.
type RunConfig struct {
	BaseToken       common.Address
	QuoteToken      common.Address
	Fee             uint32
	Pool            common.Address
	Factory         common.Address
	Quoter          common.Address
	PositionManager common.Address
	QuoteUSD        decimal.Decimal
	Positions       []config.Position
	CostAmounts     []decimal.Decimal
	ImpactAmounts   []decimal.Decimal
	SkipMint        bool
	Deadline        time.Duration
	JournalPath     string
	JournalEnabled  bool
	MaxRetries      int
	RetryBackoff    time.Duration
}

// Node is the chain access a Runner needs. *chain.Client implements it.
type Node interface {
	ethereum.ContractCaller
	GetChainID(ctx context.Context) (*big.Int, error)
	LatestBlockNumber(ctx context.Context) (uint64, error)
	BlockTimestamp(ctx context.Context, number uint64) (uint64, error)
	BalanceAt(ctx context.Context, account common.Address) (*big.Int, error)
	WaitMined(ctx context.Context, tx *types.Transaction) (*types.Receipt, error)
	Backend() bind.ContractBackend
}

// PositionMinter mints and enumerates position NFTs. *dex.PositionManager implements it.
type PositionMinter interface {
	Address() common.Address
	Mint(opts *bind.TransactOpts, backend bind.ContractBackend, params dex.MintParams) (*types.Transaction, error)
	ListPositions(ctx context.Context, owner common.Address) ([]model.LPPosition, error)
}

var (
	_ Node           = (*chain.Client)(nil)
	_ PositionMinter = (*dex.PositionManager)(nil)
)

// Runner connects to a forked node, measures a pool, mints the configured
// positions and measures the pool again.
type Runner struct {
	cfg     RunConfig
	chain   Node
	account *chain.Account
	sink    storage.Sink
	metrics *metrics.Recorder
	logger  *zap.Logger
	quoter  *dex.Quoter
	pm      PositionMinter
	journal *JournalStore
}

// NewRunner builds a Runner with its dependencies. sink and recorder may be nil.
func NewRunner(cfg RunConfig, chainClient Node, account *chain.Account, sink storage.Sink, recorder *metrics.Recorder, logger *zap.Logger) *Runner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runner{
		cfg:     cfg,
		chain:   chainClient,
		account: account,
		sink:    sink,
		metrics: recorder,
		logger:  logger,
		quoter:  dex.NewQuoter(cfg.Quoter, chainClient),
		pm:      dex.NewPositionManager(cfg.PositionManager, chainClient),
		journal: NewJournalStore(cfg.JournalPath, cfg.JournalEnabled),
	}
}

// Run executes the simulation and returns its report.
func (r *Runner) Run(ctx context.Context) (model.Report, error) {
	if r.chain == nil {
		return model.Report{}, fmt.Errorf("chain client is nil")
	}
	if r.account == nil {
		return model.Report{}, fmt.Errorf("account is nil")
	}

	started := time.Now()
	owner := r.account.Address()

	var chainID *big.Int
	if err := r.read(ctx, func(ctx context.Context) (err error) {
		chainID, err = r.chain.GetChainID(ctx)
		return err
	}); err != nil {
		return model.Report{}, fmt.Errorf("get chain id: %w", err)
	}
	if !chainID.IsUint64() {
		return model.Report{}, fmt.Errorf("chain id does not fit in uint64: %s", chainID)
	}

	poolAddr, err := r.resolvePool(ctx)
	if err != nil {
		return model.Report{}, err
	}

	tokenCache := dex.NewTokenMetaCache()
	var poolMeta model.PoolMeta
	if err := r.read(ctx, func(ctx context.Context) (err error) {
		poolMeta, err = dex.FetchPoolMeta(ctx, r.chain, poolAddr, tokenCache, r.logger)
		return err
	}); err != nil {
		return model.Report{}, fmt.Errorf("pool metadata: %w", err)
	}
	base, err := r.tokenMeta(ctx, tokenCache, r.cfg.BaseToken)
	if err != nil {
		return model.Report{}, err
	}
	quote, err := r.tokenMeta(ctx, tokenCache, r.cfg.QuoteToken)
	if err != nil {
		return model.Report{}, err
	}
	pair, err := NewPair(poolMeta, base, quote)
	if err != nil {
		return model.Report{}, err
	}

	rep := model.Report{
		RunID:     uuid.NewString(),
		ChainID:   chainID.Uint64(),
		Account:   owner.Hex(),
		Pool:      poolMeta,
		Base:      base,
		Quote:     quote,
		QuoteUSD:  r.cfg.QuoteUSD.String(),
		StartedAt: started.UTC(),
	}
	r.logger.Info("simulation start",
		zap.String("run_id", rep.RunID),
		zap.Uint64("chain_id", rep.ChainID),
		zap.String("pool", poolMeta.Address),
		zap.String("base", symbolFor(base)),
		zap.String("quote", symbolFor(quote)),
		zap.Bool("base_is_token0", pair.BaseIsToken0),
		zap.Int32("tick_spacing", pair.TickSpacing),
	)

	if rep.Balances, err = r.balances(ctx, owner, base, quote); err != nil {
		return rep, err
	}

	before, err := r.snapshot(ctx, PhaseBefore, poolAddr, pair)
	if err != nil {
		return rep, err
	}
	rep.Before = before

	if !r.cfg.SkipMint {
		sqrtPrice, ok := new(big.Int).SetString(before.State.SqrtPriceX96, 10)
		if !ok {
			return rep, fmt.Errorf("invalid sqrt price %q", before.State.SqrtPriceX96)
		}
		if rep.Mints, err = r.mintAll(ctx, chainID, poolAddr, pair, sqrtPrice); err != nil {
			return rep, err
		}
	}

	if err := r.read(ctx, func(ctx context.Context) (err error) {
		rep.Positions, err = r.pm.ListPositions(ctx, owner)
		return err
	}); err != nil {
		return rep, fmt.Errorf("list positions: %w", err)
	}

	after, err := r.snapshot(ctx, PhaseAfter, poolAddr, pair)
	if err != nil {
		return rep, err
	}
	rep.After = after

	if r.metrics != nil {
		r.metrics.ObserveDuration(time.Since(started))
	}
	if r.sink != nil {
		if err := r.sink.WriteReport(ctx, rep); err != nil {
			return rep, fmt.Errorf("write report: %w", err)
		}
	}

	r.logger.Info("simulation done",
		zap.String("run_id", rep.RunID),
		zap.Int("mints", len(rep.Mints)),
		zap.Int("positions", len(rep.Positions)),
		zap.Duration("elapsed", time.Since(started)),
	)
	return rep, nil
}

func (r *Runner) resolvePool(ctx context.Context) (common.Address, error) {
	if r.cfg.Pool != (common.Address{}) {
		return r.cfg.Pool, nil
	}
	var pool common.Address
	if err := r.read(ctx, func(ctx context.Context) (err error) {
		pool, err = dex.FindPool(ctx, r.chain, r.cfg.Factory, r.cfg.BaseToken, r.cfg.QuoteToken, r.cfg.Fee)
		if errors.Is(err, dex.ErrPoolNotFound) {
			return permanent(err)
		}
		return err
	}); err != nil {
		return common.Address{}, fmt.Errorf("resolve pool: %w", err)
	}
	r.logger.Info("pool resolved", zap.String("pool", pool.Hex()), zap.Uint32("fee", r.cfg.Fee))
	return pool, nil
}

func (r *Runner) tokenMeta(ctx context.Context, cache *dex.TokenMetaCache, token common.Address) (model.TokenMeta, error) {
	if meta, ok := cache.Get(token); ok {
		return meta, nil
	}
	var meta model.TokenMeta
	if err := r.read(ctx, func(ctx context.Context) (err error) {
		meta, err = dex.FetchTokenMeta(ctx, r.chain, token, r.logger)
		return err
	}); err != nil {
		return model.TokenMeta{}, fmt.Errorf("token %s metadata: %w", token.Hex(), err)
	}
	cache.Set(token, meta)
	return meta, nil
}

func (r *Runner) balances(ctx context.Context, owner common.Address, tokens ...model.TokenMeta) ([]model.TokenBalance, error) {
	var eth *big.Int
	if err := r.read(ctx, func(ctx context.Context) (err error) {
		eth, err = r.chain.BalanceAt(ctx, owner)
		return err
	}); err != nil {
		return nil, fmt.Errorf("eth balance: %w", err)
	}
	out := []model.TokenBalance{{Symbol: "ETH", Raw: eth.String(), Formatted: report.FormatTokenAmount(eth, 18)}}

	for _, token := range tokens {
		addr := common.HexToAddress(token.Address)
		var bal *big.Int
		if err := r.read(ctx, func(ctx context.Context) (err error) {
			bal, err = dex.TokenBalance(ctx, r.chain, addr, owner)
			return err
		}); err != nil {
			return nil, fmt.Errorf("%s balance: %w", symbolFor(token), err)
		}
		out = append(out, model.TokenBalance{
			Token:     token.Address,
			Symbol:    symbolFor(token),
			Raw:       bal.String(),
			Formatted: report.FormatTokenAmount(bal, token.Decimals),
		})
	}
	return out, nil
}

func (r *Runner) snapshot(ctx context.Context, phase string, pool common.Address, pair Pair) (model.PoolStats, error) {
	var latest uint64
	if err := r.read(ctx, func(ctx context.Context) (err error) {
		latest, err = r.chain.LatestBlockNumber(ctx)
		return err
	}); err != nil {
		return model.PoolStats{}, fmt.Errorf("latest block: %w", err)
	}

	var state dex.PoolState
	if err := r.read(ctx, func(ctx context.Context) (err error) {
		state, err = dex.FetchPoolState(ctx, r.chain, pool, new(big.Int).SetUint64(latest))
		return err
	}); err != nil {
		return model.PoolStats{}, fmt.Errorf("%s pool state: %w", phase, err)
	}

	stats, err := CollectStats(ctx, r.quoter, pair, phase, state, r.cfg.CostAmounts, r.cfg.ImpactAmounts)
	if err != nil {
		return model.PoolStats{}, fmt.Errorf("%s stats: %w", phase, err)
	}

	if r.metrics != nil {
		liquidity, _ := new(big.Float).SetInt(state.Liquidity).Float64()
		r.metrics.ObservePool(phase, state.Tick, liquidity)
		for _, q := range stats.Quotes {
			if q.Error != "" {
				r.metrics.ObserveQuoteError(phase, "cost")
			}
		}
		for _, e := range stats.Impacts {
			if e.Error != "" {
				r.metrics.ObserveQuoteError(phase, "impact")
				continue
			}
			r.metrics.ObserveImpact(phase, e.QuoteAmount, e.Impact)
		}
	}

	r.logger.Info("pool snapshot",
		zap.String("phase", phase),
		zap.Uint64("block", state.BlockNumber),
		zap.Int32("tick", state.Tick),
		zap.String("liquidity", state.Liquidity.String()),
		zap.String("mid_price", stats.State.Price),
	)
	return stats, nil
}

func (r *Runner) mintAll(ctx context.Context, chainID *big.Int, pool common.Address, pair Pair, sqrtPrice *big.Int) ([]model.MintResult, error) {
	planned, err := PlanPositions(r.cfg.Positions, pair, r.cfg.QuoteUSD)
	if err != nil {
		return nil, err
	}

	owner := r.account.Address()
	journal, err := r.journal.Load(pool.Hex(), owner.Hex())
	if err != nil {
		return nil, err
	}
	if err := r.pruneJournal(ctx, &journal); err != nil {
		return nil, err
	}
	r.forgetChangedRanges(&journal, planned)

	opts, err := r.account.TransactOpts(chainID)
	if err != nil {
		return nil, err
	}
	opts.Context = ctx

	total0, total1 := new(big.Int), new(big.Int)
	for _, p := range planned {
		if _, done := journal.Lookup(p.Index); done {
			continue
		}
		total0.Add(total0, p.Amount0)
		total1.Add(total1, p.Amount1)
	}
	if err := r.approve(ctx, opts, pair.Token0(), total0); err != nil {
		return nil, err
	}
	if err := r.approve(ctx, opts, pair.Token1(), total1); err != nil {
		return nil, err
	}

	deadline, err := r.deadline(ctx)
	if err != nil {
		return nil, err
	}

	results := make([]model.MintResult, 0, len(planned))
	for _, p := range planned {
		if err := ctx.Err(); err != nil {
			return results, err
		}
		result := r.mintOne(ctx, opts, pool, pair, p, sqrtPrice, deadline, &journal)
		if r.metrics != nil {
			r.metrics.ObserveMint(result.Status)
		}
		results = append(results, result)
	}
	return results, nil
}

func (r *Runner) mintOne(ctx context.Context, opts *bind.TransactOpts, pool common.Address, pair Pair, p PlannedPosition, sqrtPrice, deadline *big.Int, journal *Journal) model.MintResult {
	result := model.MintResult{Index: p.Index, Spec: p.Spec, Range: p.Range}
	log := r.logger.With(
		zap.Int("position", p.Index),
		zap.String("low_usd", p.Spec.LowUSD),
		zap.String("high_usd", p.Spec.HighUSD),
		zap.Int32("tick_lower", p.Range.TickLower),
		zap.Int32("tick_upper", p.Range.TickUpper),
	)

	if entry, ok := journal.Lookup(p.Index); ok {
		result.Status = model.MintStatusJournal
		result.TokenID = entry.TokenID
		result.TxHash = entry.TxHash
		log.Info("position already minted", zap.String("token_id", entry.TokenID))
		return result
	}

	liquidity, err := p.Liquidity(sqrtPrice)
	if err != nil {
		result.Error = err.Error()
		if errors.Is(err, pricemath.ErrZeroLiquidity) {
			result.Status = model.MintStatusSkipped
			log.Warn("position funds no liquidity at the current price, skipping", zap.Error(err))
		} else {
			result.Status = model.MintStatusFailed
			log.Error("liquidity check failed", zap.Error(err))
		}
		return result
	}
	used0, used1, err := pricemath.AmountsForLiquidity(sqrtPrice, p.SqrtLower, p.SqrtUpper, liquidity)
	if err != nil {
		return r.mintFailed(log, result, err)
	}
	log.Info("minting position",
		zap.String("sqrt_lower_x96", p.Range.SqrtPriceLowerX96),
		zap.String("sqrt_upper_x96", p.Range.SqrtPriceUpperX96),
		zap.String("expected_liquidity", liquidity.String()),
		zap.String("expected_amount0", used0.String()),
		zap.String("expected_amount1", used1.String()),
	)

	tx, err := r.pm.Mint(opts, r.chain.Backend(), dex.MintParams{
		Token0:         pair.Token0(),
		Token1:         pair.Token1(),
		Fee:            new(big.Int).SetUint64(uint64(pair.Fee)),
		TickLower:      big.NewInt(int64(p.Range.TickLower)),
		TickUpper:      big.NewInt(int64(p.Range.TickUpper)),
		Amount0Desired: p.Amount0,
		Amount1Desired: p.Amount1,
		Recipient:      r.account.Address(),
		Deadline:       deadline,
	})
	if err != nil {
		return r.mintFailed(log, result, err)
	}
	result.TxHash = tx.Hash().Hex()

	receipt, err := r.chain.WaitMined(ctx, tx)
	if err != nil {
		return r.mintFailed(log, result, err)
	}
	minted, err := dex.DecodeMintReceipt(receipt, pool, r.pm.Address())
	if err != nil {
		return r.mintFailed(log, result, err)
	}

	result.Status = model.MintStatusMinted
	if err := checkMintedRange(minted, r.pm.Address(), p.Range); err != nil {
		result.Error = err.Error()
		log.Warn("minted range differs from plan", zap.Error(err))
	}
	result.TokenID = minted.TokenID.String()
	result.Liquidity = minted.Liquidity.String()
	result.Amount0 = minted.Amount0.String()
	result.Amount1 = minted.Amount1.String()
	log.Info("position minted",
		zap.String("token_id", result.TokenID),
		zap.String("liquidity", result.Liquidity),
		zap.String("tx", result.TxHash),
	)

	if err := r.journal.Record(journal, p.Index, JournalEntry{
		TokenID:   result.TokenID,
		TxHash:    result.TxHash,
		TickLower: p.Range.TickLower,
		TickUpper: p.Range.TickUpper,
	}); err != nil {
		log.Warn("journal write failed", zap.Error(err))
	}
	return result
}

func (r *Runner) mintFailed(log *zap.Logger, result model.MintResult, err error) model.MintResult {
	result.Status = model.MintStatusFailed
	result.Error = err.Error()
	log.Error("mint failed", zap.Error(err))
	return result
}

// pruneJournal drops entries whose position NFT the owner no longer holds,
// which happens when the fork was restarted.
func (r *Runner) pruneJournal(ctx context.Context, journal *Journal) error {
	if len(journal.Minted) == 0 {
		return nil
	}
	var owned []model.LPPosition
	if err := r.read(ctx, func(ctx context.Context) (err error) {
		owned, err = r.pm.ListPositions(ctx, r.account.Address())
		return err
	}); err != nil {
		return fmt.Errorf("list positions: %w", err)
	}
	held := make(map[string]struct{}, len(owned))
	for _, pos := range owned {
		held[pos.TokenID] = struct{}{}
	}
	for key, entry := range journal.Minted {
		if _, ok := held[entry.TokenID]; !ok {
			r.logger.Info("dropping stale journal entry", zap.String("position", key), zap.String("token_id", entry.TokenID))
			delete(journal.Minted, key)
		}
	}
	return nil
}

// forgetChangedRanges drops entries whose recorded ticks no longer match the
// planned range at the same index, so an edited position is minted again.
func (r *Runner) forgetChangedRanges(journal *Journal, planned []PlannedPosition) {
	for _, p := range planned {
		entry, ok := journal.Lookup(p.Index)
		if !ok || entry.Matches(p.Range) {
			continue
		}
		r.logger.Info("journal entry is for another range, minting again",
			zap.Int("position", p.Index),
			zap.String("token_id", entry.TokenID),
			zap.Int32("journal_tick_lower", entry.TickLower),
			zap.Int32("journal_tick_upper", entry.TickUpper),
		)
		journal.Forget(p.Index)
	}
}

// checkMintedRange compares the pool's Mint event with the planned ticks. A
// receipt without the pool event carries no ticks and passes.
func checkMintedRange(minted dex.MintReceipt, positionManager common.Address, want model.TickRange) error {
	if minted.Owner == (common.Address{}) {
		return nil
	}
	if minted.Owner != positionManager {
		return fmt.Errorf("pool mint owner %s is not the position manager", minted.Owner.Hex())
	}
	if minted.TickLower != want.TickLower || minted.TickUpper != want.TickUpper {
		return fmt.Errorf("minted [%d, %d], planned [%d, %d]", minted.TickLower, minted.TickUpper, want.TickLower, want.TickUpper)
	}
	return nil
}

func (r *Runner) approve(ctx context.Context, opts *bind.TransactOpts, token common.Address, amount *big.Int) error {
	if amount.Sign() == 0 {
		return nil
	}
	tx, err := dex.EnsureAllowance(ctx, r.chain.Backend(), opts, token, r.pm.Address(), amount, r.logger)
	if err != nil {
		return err
	}
	if tx == nil {
		return nil
	}
	receipt, err := r.chain.WaitMined(ctx, tx)
	if err != nil {
		return err
	}
	if receipt.Status != types.ReceiptStatusSuccessful {
		return fmt.Errorf("approve %s: %w", token.Hex(), dex.ErrTxReverted)
	}
	return nil
}

// deadline is relative to the fork's clock, which may lag wall time.
func (r *Runner) deadline(ctx context.Context) (*big.Int, error) {
	var ts uint64
	if err := r.read(ctx, func(ctx context.Context) error {
		latest, err := r.chain.LatestBlockNumber(ctx)
		if err != nil {
			return err
		}
		ts, err = r.chain.BlockTimestamp(ctx, latest)
		return err
	}); err != nil {
		return nil, fmt.Errorf("block timestamp: %w", err)
	}
	return new(big.Int).SetUint64(ts + uint64(r.cfg.Deadline/time.Second)), nil
}

func (r *Runner) read(ctx context.Context, fn func(context.Context) error) error {
	return withRetry(ctx, r.cfg.MaxRetries, r.cfg.RetryBackoff, fn)
}

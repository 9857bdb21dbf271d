package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"liquiditySim/internal/model"
)

const schema = `
CREATE TABLE IF NOT EXISTS simulation_runs (
	run_id TEXT PRIMARY KEY,
	chain_id BIGINT NOT NULL,
	account TEXT NOT NULL,
	pool_address TEXT NOT NULL,
	token0 TEXT NOT NULL,
	token1 TEXT NOT NULL,
	fee INTEGER NOT NULL,
	tick_spacing INTEGER NOT NULL,
	base_symbol TEXT NOT NULL,
	quote_symbol TEXT NOT NULL,
	quote_usd NUMERIC NOT NULL,
	started_at TIMESTAMPTZ NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE TABLE IF NOT EXISTS pool_snapshots (
	run_id TEXT NOT NULL REFERENCES simulation_runs (run_id),
	phase TEXT NOT NULL,
	block_number BIGINT NOT NULL,
	sqrt_price_x96 NUMERIC NOT NULL,
	tick INTEGER NOT NULL,
	liquidity NUMERIC NOT NULL,
	price TEXT NOT NULL,
	quotes JSONB NOT NULL,
	impacts JSONB NOT NULL,
	PRIMARY KEY (run_id, phase)
);
CREATE TABLE IF NOT EXISTS minted_positions (
	run_id TEXT NOT NULL REFERENCES simulation_runs (run_id),
	position_index INTEGER NOT NULL,
	status TEXT NOT NULL,
	low_usd NUMERIC NOT NULL,
	high_usd NUMERIC NOT NULL,
	tick_lower INTEGER NOT NULL,
	tick_upper INTEGER NOT NULL,
	token_id TEXT,
	tx_hash TEXT,
	liquidity NUMERIC,
	amount0 NUMERIC,
	amount1 NUMERIC,
	error TEXT,
	PRIMARY KEY (run_id, position_index)
);
`

// Store persists simulation reports to Postgres.
type Store struct {
	pool *pgxpool.Pool
}

func NewStore(ctx context.Context, dsn string) (*Store, error) {
	if dsn == "" {
		return nil, fmt.Errorf("pg dsn is required")
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, err
	}
	return &Store{pool: pool}, nil
}

func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// EnsureSchema creates the report tables when missing.
func (s *Store) EnsureSchema(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}

type statement struct {
	sql  string
	args []any
}

// WriteReport stores a run, its pool snapshots and its mint outcomes in one transaction.
func (s *Store) WriteReport(ctx context.Context, report model.Report) error {
	stmts, err := reportStatements(report)
	if err != nil {
		return err
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	batch := &pgx.Batch{}
	for _, stmt := range stmts {
		batch.Queue(stmt.sql, stmt.args...)
	}
	br := tx.SendBatch(ctx, batch)
	for range stmts {
		if _, err := br.Exec(); err != nil {
			br.Close()
			return fmt.Errorf("write report %s: %w", report.RunID, err)
		}
	}
	if err := br.Close(); err != nil {
		return fmt.Errorf("close batch: %w", err)
	}

	return tx.Commit(ctx)
}

func reportStatements(report model.Report) ([]statement, error) {
	if report.RunID == "" {
		return nil, fmt.Errorf("run id required")
	}

	stmts := []statement{{
		sql: `
			INSERT INTO simulation_runs (
				run_id, chain_id, account, pool_address, token0, token1, fee, tick_spacing,
				base_symbol, quote_symbol, quote_usd, started_at
			) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
			ON CONFLICT (run_id) DO NOTHING
		`,
		args: []any{
			report.RunID,
			int64(report.ChainID),
			report.Account,
			report.Pool.Address,
			report.Pool.Token0,
			report.Pool.Token1,
			int32(report.Pool.Fee),
			report.Pool.TickSpacing,
			report.Base.Symbol,
			report.Quote.Symbol,
			report.QuoteUSD,
			report.StartedAt,
		},
	}}

	for _, stats := range []model.PoolStats{report.Before, report.After} {
		if stats.Phase == "" {
			continue
		}
		stmts = append(stmts, statement{
			sql: `
				INSERT INTO pool_snapshots (
					run_id, phase, block_number, sqrt_price_x96, tick, liquidity, price, quotes, impacts
				) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
				ON CONFLICT (run_id, phase) DO NOTHING
			`,
			args: []any{
				report.RunID,
				stats.Phase,
				int64(stats.State.BlockNumber),
				stats.State.SqrtPriceX96,
				stats.State.Tick,
				stats.State.Liquidity,
				stats.State.Price,
				stats.Quotes,
				stats.Impacts,
			},
		})
	}

	for _, mint := range report.Mints {
		stmts = append(stmts, statement{
			sql: `
				INSERT INTO minted_positions (
					run_id, position_index, status, low_usd, high_usd, tick_lower, tick_upper,
					token_id, tx_hash, liquidity, amount0, amount1, error
				) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)
				ON CONFLICT (run_id, position_index) DO NOTHING
			`,
			args: []any{
				report.RunID,
				mint.Index,
				mint.Status,
				mint.Spec.LowUSD,
				mint.Spec.HighUSD,
				mint.Range.TickLower,
				mint.Range.TickUpper,
				nullable(mint.TokenID),
				nullable(mint.TxHash),
				nullable(mint.Liquidity),
				nullable(mint.Amount0),
				nullable(mint.Amount1),
				nullable(mint.Error),
			},
		})
	}
	return stmts, nil
}

func nullable(value string) *string {
	if value == "" {
		return nil
	}
	return &value
}

package store

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rxtech-lab/argo-guard/internal/logger"
	"github.com/rxtech-lab/argo-guard/internal/types"
	"github.com/rxtech-lab/argo-guard/pkg/errors"
	"go.uber.org/zap"
)

const (
	pingTimeout  = 5 * time.Second
	writeTimeout = 10 * time.Second
)

const postgresSchema = `
CREATE TABLE IF NOT EXISTS backtest_results (
	id TEXT PRIMARY KEY,
	strategy_id TEXT NOT NULL,
	symbol TEXT NOT NULL,
	timeframe TEXT NOT NULL,
	start_time TIMESTAMPTZ NOT NULL,
	end_time TIMESTAMPTZ NOT NULL,
	initial_capital DOUBLE PRECISION NOT NULL,
	total_trades INTEGER NOT NULL,
	net_profit DOUBLE PRECISION NOT NULL,
	net_profit_pct DOUBLE PRECISION NOT NULL,
	max_drawdown DOUBLE PRECISION NOT NULL,
	sharpe_ratio DOUBLE PRECISION NOT NULL,
	profit_factor DOUBLE PRECISION,
	final_equity DOUBLE PRECISION NOT NULL,
	metrics JSONB NOT NULL,
	warnings JSONB NOT NULL,
	created_at TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS trades (
	id TEXT PRIMARY KEY,
	result_id TEXT NOT NULL REFERENCES backtest_results (id) ON DELETE CASCADE,
	symbol TEXT NOT NULL,
	action TEXT NOT NULL,
	entry_price DOUBLE PRECISION NOT NULL,
	exit_price DOUBLE PRECISION NOT NULL,
	quantity DOUBLE PRECISION NOT NULL,
	entry_time TIMESTAMPTZ NOT NULL,
	exit_time TIMESTAMPTZ NOT NULL,
	pnl DOUBLE PRECISION NOT NULL,
	pnl_pct DOUBLE PRECISION NOT NULL,
	duration_ns BIGINT NOT NULL,
	reason TEXT NOT NULL,
	pattern_id TEXT NOT NULL,
	patterns JSONB NOT NULL,
	fees DOUBLE PRECISION NOT NULL
);

CREATE INDEX IF NOT EXISTS trades_result_id_idx ON trades (result_id);

CREATE TABLE IF NOT EXISTS walk_forward_folds (
	id TEXT PRIMARY KEY,
	strategy_id TEXT NOT NULL,
	symbol TEXT NOT NULL,
	timeframe TEXT NOT NULL,
	fold_number INTEGER NOT NULL,
	train_start TIMESTAMPTZ NOT NULL,
	train_end TIMESTAMPTZ NOT NULL,
	test_start TIMESTAMPTZ NOT NULL,
	test_end TIMESTAMPTZ NOT NULL,
	train_metrics JSONB NOT NULL,
	test_metrics JSONB NOT NULL,
	test_sharpe_ratio DOUBLE PRECISION NOT NULL,
	test_net_profit_pct DOUBLE PRECISION NOT NULL,
	degraded BOOLEAN NOT NULL
);
`

// PostgresStore keeps results in PostgreSQL through a pgx connection pool.
type PostgresStore struct {
	pool *pgxpool.Pool
	sq   squirrel.StatementBuilderType
	log  *logger.Logger
}

// NewPostgresStore connects to dsn and creates the tables when missing.
func NewPostgresStore(ctx context.Context, dsn string, log *logger.Logger) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodePersistenceFailed, "failed to create postgres pool", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()

		return nil, errors.Wrap(errors.ErrCodePersistenceFailed, "failed to connect to postgres", err)
	}

	store := NewPostgresStoreFromPool(pool, log)
	if err := store.Migrate(ctx); err != nil {
		pool.Close()

		return nil, err
	}

	return store, nil
}

// NewPostgresStoreFromPool wraps an existing pool. The store closes the pool on Close.
func NewPostgresStoreFromPool(pool *pgxpool.Pool, log *logger.Logger) *PostgresStore {
	if log == nil {
		log = logger.NewNopLogger()
	}

	return &PostgresStore{
		pool: pool,
		sq:   squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
		log:  log,
	}
}

// Migrate creates the tables.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()

	if _, err := s.pool.Exec(ctx, postgresSchema); err != nil {
		return errors.Wrap(errors.ErrCodePersistenceFailed, "failed to create postgres tables", err)
	}

	return nil
}

// SaveBacktestRun upserts the result and replaces its trades in one transaction.
func (s *PostgresStore) SaveBacktestRun(ctx context.Context, result types.Result) error {
	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()

	statements, err := s.backtestStatements(result)
	if err != nil {
		return errors.Wrap(errors.ErrCodePersistenceFailed, "failed to encode result", err)
	}

	err = pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		for _, statement := range statements {
			query, args, err := statement.ToSql()
			if err != nil {
				return fmt.Errorf("failed to build query: %w", err)
			}

			if _, err := tx.Exec(ctx, query, args...); err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		return errors.Wrapf(errors.ErrCodePersistenceFailed, err, "failed to save backtest result %s", result.ID)
	}

	s.log.Debug("Saved backtest result",
		zap.String("id", result.ID),
		zap.Int("trades", len(result.Trades)),
	)

	return nil
}

// backtestStatements returns the upsert of the result row, the delete of its old trades
// and the insert of the new ones, in execution order.
func (s *PostgresStore) backtestStatements(result types.Result) ([]squirrel.Sqlizer, error) {
	values, err := resultValues(result)
	if err != nil {
		return nil, err
	}

	statements := []squirrel.Sqlizer{
		s.sq.Insert("backtest_results").
			Columns(resultColumns...).
			Values(values...).
			Suffix(upsertSuffix(resultColumns)),
		s.sq.Delete("trades").Where(squirrel.Eq{"result_id": result.ID}),
	}

	if len(result.Trades) == 0 {
		return statements, nil
	}

	trades := s.sq.Insert("trades").Columns(tradeColumns...)

	for _, trade := range result.Trades {
		row, err := tradeValues(result.ID, trade)
		if err != nil {
			return nil, err
		}

		trades = trades.Values(row...)
	}

	return append(statements, trades), nil
}

// SaveWalkForwardRun upserts one fold.
func (s *PostgresStore) SaveWalkForwardRun(ctx context.Context, fold types.Fold) error {
	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()

	query, args, err := s.foldStatement(fold)
	if err != nil {
		return errors.Wrap(errors.ErrCodePersistenceFailed, "failed to encode fold", err)
	}

	if _, err := s.pool.Exec(ctx, query, args...); err != nil {
		return errors.Wrapf(errors.ErrCodePersistenceFailed, err, "failed to save fold %s", fold.ID)
	}

	return nil
}

func (s *PostgresStore) foldStatement(fold types.Fold) (string, []any, error) {
	values, err := foldValues(fold)
	if err != nil {
		return "", nil, err
	}

	return s.sq.Insert("walk_forward_folds").
		Columns(foldColumns...).
		Values(values...).
		Suffix(upsertSuffix(foldColumns)).
		ToSql()
}

// Close closes the pool.
func (s *PostgresStore) Close() error {
	s.pool.Close()

	return nil
}

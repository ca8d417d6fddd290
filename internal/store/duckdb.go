package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/Masterminds/squirrel"
	_ "github.com/marcboeker/go-duckdb"
	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-guard/internal/logger"
	"github.com/rxtech-lab/argo-guard/internal/types"
	"github.com/rxtech-lab/argo-guard/internal/version"
	"github.com/rxtech-lab/argo-guard/pkg/errors"
	"go.uber.org/zap"
)

// DuckDBStore keeps results in a DuckDB database file and can export them to Parquet.
type DuckDBStore struct {
	db  *sql.DB
	mu  sync.Mutex
	sq  squirrel.StatementBuilderType
	log *logger.Logger
}

// NewDuckDBStore opens or creates the database at path. An empty path or ":memory:"
// keeps the database in memory.
func NewDuckDBStore(path string, log *logger.Logger) (*DuckDBStore, error) {
	if log == nil {
		log = logger.NewNopLogger()
	}

	if path == "" {
		path = ":memory:"
	}

	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, errors.Wrapf(errors.ErrCodePersistenceFailed, err, "failed to create directory for %s", path)
		}
	}

	db, err := sql.Open("duckdb", path)
	if err != nil {
		log.Error("Failed to open database", zap.String("path", path), zap.Error(err))

		return nil, errors.Wrap(errors.ErrCodePersistenceFailed, "failed to open database", err)
	}

	if err := db.Ping(); err != nil {
		log.Error("Failed to connect to database", zap.String("path", path), zap.Error(err))
		db.Close()

		return nil, errors.Wrap(errors.ErrCodePersistenceFailed, "failed to connect to database", err)
	}

	store := &DuckDBStore{
		db:  db,
		mu:  sync.Mutex{},
		sq:  squirrel.StatementBuilder.PlaceholderFormat(squirrel.Question),
		log: log,
	}

	if err := store.initialize(); err != nil {
		db.Close()

		return nil, err
	}

	return store, nil
}

func (s *DuckDBStore) initialize() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_meta (
			version TEXT NOT NULL
		);

		CREATE TABLE IF NOT EXISTS backtest_results (
			id TEXT PRIMARY KEY,
			strategy_id TEXT NOT NULL,
			symbol TEXT NOT NULL,
			timeframe TEXT NOT NULL,
			start_time TIMESTAMP NOT NULL,
			end_time TIMESTAMP NOT NULL,
			initial_capital DOUBLE NOT NULL,
			total_trades INTEGER NOT NULL,
			net_profit DOUBLE NOT NULL,
			net_profit_pct DOUBLE NOT NULL,
			max_drawdown DOUBLE NOT NULL,
			sharpe_ratio DOUBLE NOT NULL,
			profit_factor DOUBLE,
			final_equity DOUBLE NOT NULL,
			metrics TEXT NOT NULL,
			warnings TEXT NOT NULL,
			created_at TIMESTAMP NOT NULL
		);

		CREATE TABLE IF NOT EXISTS trades (
			id TEXT PRIMARY KEY,
			result_id TEXT NOT NULL,
			symbol TEXT NOT NULL,
			action TEXT NOT NULL,
			entry_price DOUBLE NOT NULL,
			exit_price DOUBLE NOT NULL,
			quantity DOUBLE NOT NULL,
			entry_time TIMESTAMP NOT NULL,
			exit_time TIMESTAMP NOT NULL,
			pnl DOUBLE NOT NULL,
			pnl_pct DOUBLE NOT NULL,
			duration_ns BIGINT NOT NULL,
			reason TEXT NOT NULL,
			pattern_id TEXT NOT NULL,
			patterns TEXT NOT NULL,
			fees DOUBLE NOT NULL
		);

		CREATE TABLE IF NOT EXISTS walk_forward_folds (
			id TEXT PRIMARY KEY,
			strategy_id TEXT NOT NULL,
			symbol TEXT NOT NULL,
			timeframe TEXT NOT NULL,
			fold_number INTEGER NOT NULL,
			train_start TIMESTAMP NOT NULL,
			train_end TIMESTAMP NOT NULL,
			test_start TIMESTAMP NOT NULL,
			test_end TIMESTAMP NOT NULL,
			train_metrics TEXT NOT NULL,
			test_metrics TEXT NOT NULL,
			test_sharpe_ratio DOUBLE NOT NULL,
			test_net_profit_pct DOUBLE NOT NULL,
			degraded BOOLEAN NOT NULL
		);
	`)
	if err != nil {
		return errors.Wrap(errors.ErrCodePersistenceFailed, "failed to create tables", err)
	}

	var stored string

	err = s.db.QueryRow(`SELECT version FROM schema_meta LIMIT 1`).Scan(&stored)

	switch {
	case err == sql.ErrNoRows:
		if _, err := s.db.Exec(`INSERT INTO schema_meta (version) VALUES (?)`, version.SchemaVersion); err != nil {
			return errors.Wrap(errors.ErrCodePersistenceFailed, "failed to record schema version", err)
		}
	case err != nil:
		return errors.Wrap(errors.ErrCodePersistenceFailed, "failed to read schema version", err)
	default:
		if err := version.CheckSchemaCompatibility(version.SchemaVersion, stored); err != nil {
			return errors.Wrap(errors.ErrCodePersistenceFailed, "incompatible results database", err)
		}
	}

	return nil
}

// SaveBacktestRun upserts the result and its trades in one transaction.
func (s *DuckDBStore) SaveBacktestRun(ctx context.Context, result types.Result) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	values, err := resultValues(result)
	if err != nil {
		return errors.Wrap(errors.ErrCodePersistenceFailed, "failed to encode result", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(errors.ErrCodePersistenceFailed, "failed to begin transaction", err)
	}
	defer tx.Rollback() //nolint:errcheck

	insert := s.sq.Insert("backtest_results").Columns(resultColumns...).Values(values...).Suffix(upsertSuffix(resultColumns))
	if err := execBuilder(ctx, tx, insert); err != nil {
		return errors.Wrapf(errors.ErrCodePersistenceFailed, err, "failed to save backtest result %s", result.ID)
	}

	ids := make([]string, 0, len(result.Trades))

	if len(result.Trades) > 0 {
		trades := s.sq.Insert("trades").Columns(tradeColumns...)

		for _, trade := range result.Trades {
			row, err := tradeValues(result.ID, trade)
			if err != nil {
				return errors.Wrap(errors.ErrCodePersistenceFailed, "failed to encode trade", err)
			}

			trades = trades.Values(row...)
			ids = append(ids, trade.ID)
		}

		if err := execBuilder(ctx, tx, trades.Suffix(upsertSuffix(tradeColumns))); err != nil {
			return errors.Wrapf(errors.ErrCodePersistenceFailed, err, "failed to save trades of %s", result.ID)
		}
	}

	// Trades of an earlier save that this run no longer produced.
	stale := s.sq.Delete("trades").Where(squirrel.And{
		squirrel.Eq{"result_id": result.ID},
		squirrel.NotEq{"id": ids},
	})
	if err := execBuilder(ctx, tx, stale); err != nil {
		return errors.Wrapf(errors.ErrCodePersistenceFailed, err, "failed to remove stale trades of %s", result.ID)
	}

	if err := tx.Commit(); err != nil {
		return errors.Wrap(errors.ErrCodePersistenceFailed, "failed to commit backtest result", err)
	}

	s.log.Debug("Saved backtest result",
		zap.String("id", result.ID),
		zap.Int("trades", len(result.Trades)),
	)

	return nil
}

// SaveWalkForwardRun upserts one fold.
func (s *DuckDBStore) SaveWalkForwardRun(ctx context.Context, fold types.Fold) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	values, err := foldValues(fold)
	if err != nil {
		return errors.Wrap(errors.ErrCodePersistenceFailed, "failed to encode fold", err)
	}

	insert := s.sq.Insert("walk_forward_folds").Columns(foldColumns...).Values(values...).Suffix(upsertSuffix(foldColumns))
	if err := execBuilder(ctx, s.db, insert); err != nil {
		return errors.Wrapf(errors.ErrCodePersistenceFailed, err, "failed to save fold %s", fold.ID)
	}

	return nil
}

// GetBacktestRun loads a saved result with its trades. The equity curve is not stored.
func (s *DuckDBStore) GetBacktestRun(ctx context.Context, id string) (optional.Option[types.Result], error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	query, args, err := s.sq.
		Select("id", "strategy_id", "symbol", "timeframe", "start_time", "end_time", "initial_capital", "metrics", "warnings", "created_at").
		From("backtest_results").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return optional.None[types.Result](), fmt.Errorf("failed to build query: %w", err)
	}

	var (
		result    types.Result
		timeframe string
		metrics   string
		warnings  string
	)

	err = s.db.QueryRowContext(ctx, query, args...).Scan(
		&result.ID,
		&result.StrategyID,
		&result.Symbol,
		&timeframe,
		&result.StartTime,
		&result.EndTime,
		&result.InitialCapital,
		&metrics,
		&warnings,
		&result.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return optional.None[types.Result](), nil
	}

	if err != nil {
		return optional.None[types.Result](), errors.Wrapf(errors.ErrCodeQueryFailed, err, "failed to load backtest result %s", id)
	}

	result.Timeframe = types.Timeframe(timeframe)

	if err := json.Unmarshal([]byte(metrics), &result.Metrics); err != nil {
		return optional.None[types.Result](), fmt.Errorf("failed to unmarshal metrics: %w", err)
	}

	if err := json.Unmarshal([]byte(warnings), &result.Warnings); err != nil {
		return optional.None[types.Result](), fmt.Errorf("failed to unmarshal warnings: %w", err)
	}

	trades, err := s.trades(ctx, id)
	if err != nil {
		return optional.None[types.Result](), err
	}

	result.Trades = trades

	return optional.Some(result), nil
}

func (s *DuckDBStore) trades(ctx context.Context, resultID string) ([]types.Trade, error) {
	rows, err := s.sq.
		Select("id", "symbol", "action", "entry_price", "exit_price", "quantity", "entry_time", "exit_time",
			"pnl", "pnl_pct", "duration_ns", "reason", "pattern_id", "patterns", "fees").
		From("trades").
		Where(squirrel.Eq{"result_id": resultID}).
		OrderBy("exit_time ASC", "id ASC").
		RunWith(s.db).
		QueryContext(ctx)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrCodeQueryFailed, err, "failed to query trades of %s", resultID)
	}
	defer rows.Close()

	trades := []types.Trade{}

	for rows.Next() {
		var (
			trade    types.Trade
			action   string
			duration int64
			patterns string
		)

		if err := rows.Scan(
			&trade.ID,
			&trade.Symbol,
			&action,
			&trade.EntryPrice,
			&trade.ExitPrice,
			&trade.Quantity,
			&trade.EntryTime,
			&trade.ExitTime,
			&trade.PnL,
			&trade.PnLPct,
			&duration,
			&trade.Reason,
			&trade.PatternID,
			&patterns,
			&trade.Fees,
		); err != nil {
			return nil, fmt.Errorf("failed to scan trade: %w", err)
		}

		trade.Action = types.Action(action)
		trade.Duration = time.Duration(duration)

		if err := json.Unmarshal([]byte(patterns), &trade.Patterns); err != nil {
			return nil, fmt.Errorf("failed to unmarshal trade patterns: %w", err)
		}

		if len(trade.Patterns) == 0 {
			trade.Patterns = nil
		}

		trades = append(trades, trade)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating trades: %w", err)
	}

	return trades, nil
}

// ListFolds returns the saved folds of a strategy on a symbol ordered by fold number.
func (s *DuckDBStore) ListFolds(ctx context.Context, strategyID string, symbol string) ([]types.Fold, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.sq.
		Select("id", "strategy_id", "symbol", "timeframe", "fold_number", "train_start", "train_end",
			"test_start", "test_end", "train_metrics", "test_metrics", "degraded").
		From("walk_forward_folds").
		Where(squirrel.Eq{"strategy_id": strategyID, "symbol": symbol}).
		OrderBy("fold_number ASC").
		RunWith(s.db).
		QueryContext(ctx)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeQueryFailed, "failed to query folds", err)
	}
	defer rows.Close()

	folds := []types.Fold{}

	for rows.Next() {
		var (
			fold      types.Fold
			timeframe string
			train     string
			test      string
		)

		if err := rows.Scan(
			&fold.ID,
			&fold.StrategyID,
			&fold.Symbol,
			&timeframe,
			&fold.FoldNumber,
			&fold.TrainStart,
			&fold.TrainEnd,
			&fold.TestStart,
			&fold.TestEnd,
			&train,
			&test,
			&fold.Degraded,
		); err != nil {
			return nil, fmt.Errorf("failed to scan fold: %w", err)
		}

		fold.Timeframe = types.Timeframe(timeframe)

		if err := json.Unmarshal([]byte(train), &fold.TrainPerformance); err != nil {
			return nil, fmt.Errorf("failed to unmarshal train metrics: %w", err)
		}

		if err := json.Unmarshal([]byte(test), &fold.TestPerformance); err != nil {
			return nil, fmt.Errorf("failed to unmarshal test metrics: %w", err)
		}

		folds = append(folds, fold)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating folds: %w", err)
	}

	return folds, nil
}

// Write exports every table to a Parquet file in dir.
func (s *DuckDBStore) Write(dir string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	for _, table := range []string{"backtest_results", "trades", "walk_forward_folds"} {
		path := filepath.Join(dir, table+".parquet")

		// squirrel has no COPY support
		if _, err := s.db.Exec(fmt.Sprintf(`COPY %s TO '%s' (FORMAT PARQUET)`, table, path)); err != nil {
			return errors.Wrapf(errors.ErrCodePersistenceFailed, err, "failed to export %s to Parquet", table)
		}
	}

	s.log.Info("Successfully exported results to Parquet files", zap.String("dir", dir))

	return nil
}

// Close closes the database connection.
func (s *DuckDBStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}

	return s.db.Close()
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func execBuilder(ctx context.Context, db execer, builder squirrel.Sqlizer) error {
	query, args, err := builder.ToSql()
	if err != nil {
		return fmt.Errorf("failed to build query: %w", err)
	}

	if _, err := db.ExecContext(ctx, query, args...); err != nil {
		return err
	}

	return nil
}

package datasource

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	_ "github.com/marcboeker/go-duckdb"
	"github.com/rxtech-lab/argo-guard/internal/logger"
	"github.com/rxtech-lab/argo-guard/internal/types"
	"github.com/rxtech-lab/argo-guard/pkg/errors"
	"go.uber.org/zap"
)

// DuckDBDataSource reads candles from parquet files through an in-process DuckDB view.
// Files hold candles at the base timeframe; coarser timeframes are aggregated with time_bucket.
type DuckDBDataSource struct {
	db            *sql.DB
	logger        *logger.Logger
	sq            squirrel.StatementBuilderType
	baseTimeframe types.Timeframe
}

// NewDataSource creates a new DuckDB data source with the database stored at path.
// Use ":memory:" for an in-process database. Call Initialize to load market data.
func NewDataSource(path string, baseTimeframe types.Timeframe, logger *logger.Logger) (*DuckDBDataSource, error) {
	if _, err := baseTimeframe.Duration(); err != nil {
		return nil, err
	}

	db, err := sql.Open("duckdb", path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeDataSourceUnavailable, "failed to open duckdb", err)
	}

	return &DuckDBDataSource{
		db:            db,
		logger:        logger,
		sq:            squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
		baseTimeframe: baseTimeframe,
	}, nil
}

// Initialize creates the market_data view over the parquet file(s) at path. Glob patterns are accepted.
func (d *DuckDBDataSource) Initialize(path string) error {
	d.logger.Debug("Initializing DuckDB data source", zap.String("path", path))

	_, err := d.db.Exec(`DROP VIEW IF EXISTS market_data;`)
	if err != nil {
		return errors.Wrap(errors.ErrCodeDataSourceUnavailable, "failed to drop existing view", err)
	}

	// squirrel does not support CREATE VIEW
	query := fmt.Sprintf(`
		CREATE VIEW market_data AS
		SELECT * FROM read_parquet('%s');
	`, path)

	if _, err := d.db.Exec(query); err != nil {
		return errors.Wrapf(errors.ErrCodeDataSourceUnavailable, err, "failed to load parquet data from %s", path)
	}

	return nil
}

// ReadCandles implements CandleSource.
func (d *DuckDBDataSource) ReadCandles(ctx context.Context, symbol string, timeframe types.Timeframe, start time.Time, end time.Time) ([]types.Candle, error) {
	query, args, err := d.buildReadQuery(symbol, timeframe, start, end)
	if err != nil {
		return nil, err
	}

	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeQueryFailed, "failed to query market data", err)
	}
	defer rows.Close()

	result := make([]types.Candle, 0, 1000)

	for rows.Next() {
		var candle types.Candle

		err := rows.Scan(&candle.Time, &candle.Symbol, &candle.Open, &candle.High, &candle.Low, &candle.Close, &candle.Volume)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeQueryFailed, "failed to scan row", err)
		}

		result = append(result, candle)
	}

	if err = rows.Err(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeQueryFailed, "error iterating rows", err)
	}

	d.logger.Debug("Read candles",
		zap.String("symbol", symbol),
		zap.String("timeframe", string(timeframe)),
		zap.Int("count", len(result)),
	)

	return result, nil
}

// Close implements CandleSource.
func (d *DuckDBDataSource) Close() error {
	return d.db.Close()
}

func (d *DuckDBDataSource) buildReadQuery(symbol string, timeframe types.Timeframe, start time.Time, end time.Time) (string, []any, error) {
	interval, err := timeframe.Duration()
	if err != nil {
		return "", nil, err
	}

	base, _ := d.baseTimeframe.Duration()
	if interval < base {
		return "", nil, errors.Newf(errors.ErrCodeInvalidTimeframe,
			"timeframe %s is finer than the source timeframe %s", timeframe, d.baseTimeframe)
	}

	if interval == base {
		query, args, err := d.sq.
			Select("time", "symbol", "open", "high", "low", "close", "volume").
			From("market_data").
			Where(squirrel.And{
				squirrel.Eq{"symbol": symbol},
				squirrel.GtOrEq{"time": start},
				squirrel.LtOrEq{"time": end},
			}).
			OrderBy("time ASC").
			ToSql()
		if err != nil {
			return "", nil, fmt.Errorf("failed to build query: %w", err)
		}

		return query, args, nil
	}

	minutes := int(interval / time.Minute)
	bucket := fmt.Sprintf("time_bucket(INTERVAL '%d minutes', time)", minutes)

	query, args, err := d.sq.
		Select(
			bucket+" AS bucket_time",
			"symbol",
			"arg_min(open, time) AS open",
			"MAX(high) AS high",
			"MIN(low) AS low",
			"arg_max(close, time) AS close",
			"SUM(volume) AS volume",
		).
		From("market_data").
		Where(squirrel.And{
			squirrel.Eq{"symbol": symbol},
			squirrel.GtOrEq{"time": start},
			squirrel.LtOrEq{"time": end},
		}).
		GroupBy("bucket_time", "symbol").
		OrderBy("bucket_time ASC").
		ToSql()
	if err != nil {
		return "", nil, fmt.Errorf("failed to build query: %w", err)
	}

	return query, args, nil
}

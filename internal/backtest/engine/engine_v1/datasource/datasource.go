package datasource

import (
	"context"
	"time"

	"github.com/rxtech-lab/argo-guard/internal/types"
)

// CandleSource provides historical candles to the backtest engine.
// Implementations are not required to return candles in order; the engine
// sorts and filters defensively.
type CandleSource interface {
	// ReadCandles reads the candles of symbol at the given timeframe within [start, end].
	ReadCandles(ctx context.Context, symbol string, timeframe types.Timeframe, start time.Time, end time.Time) ([]types.Candle, error)
	// Close releases any resources held by the source
	Close() error
}

type SourceType string

const (
	SourceTypeParquet SourceType = "parquet"
	SourceTypeCSV     SourceType = "csv"
)

package engine

import (
	"context"
	"time"

	"github.com/rxtech-lab/argo-guard/internal/backtest/engine/engine_v1/datasource"
	"github.com/rxtech-lab/argo-guard/internal/strategy"
	"github.com/rxtech-lab/argo-guard/internal/types"
)

// Lifecycle callback types for backtest phases
// All callbacks with error return can abort execution if they return an error

// OnBacktestStartCallback is called when a batch of runs begins.
type OnBacktestStartCallback func(totalRuns int) error

// OnBacktestEndCallback is called when a batch of runs completes (always called via defer).
type OnBacktestEndCallback func(err error)

// OnRunStartCallback is called when a single run begins, after candles are loaded.
// runID is the deterministic result id of the run.
type OnRunStartCallback func(runID string, symbol string, totalCandles int) error

// OnRunEndCallback is called when a single run ends successfully.
type OnRunEndCallback func(result types.Result)

// OnProcessDataCallback is called for each candle processed.
type OnProcessDataCallback func(current int, total int) error

// LifecycleCallbacks holds all lifecycle callback functions for the backtest engine.
// All fields are pointers - nil means no callback will be invoked.
type LifecycleCallbacks struct {
	OnBacktestStart *OnBacktestStartCallback
	OnBacktestEnd   *OnBacktestEndCallback
	OnRunStart      *OnRunStartCallback
	OnRunEnd        *OnRunEndCallback
	OnProcessData   *OnProcessDataCallback
}

// BacktestParams are the inputs of a single backtest run. The range is inclusive on both ends.
type BacktestParams struct {
	Symbol         string          `validate:"required"`
	Timeframe      types.Timeframe `validate:"required"`
	StartDate      time.Time       `validate:"required"`
	EndDate        time.Time       `validate:"required"`
	InitialCapital float64         `validate:"gt=0"`
}

// ResultStore persists results. Saves are idempotent upserts keyed by the deterministic id.
type ResultStore interface {
	SaveBacktestRun(ctx context.Context, result types.Result) error
	SaveWalkForwardRun(ctx context.Context, fold types.Fold) error
}

// TradeAttributor receives the outcome of every closed trade that carries pattern metadata.
type TradeAttributor interface {
	AttributeTrade(ctx context.Context, tradeID string, patterns []string, outcome types.TradeOutcome) error
}

// Engine runs deterministic historical replays.
type Engine interface {
	// Initialize the engine with the given YAML configuration.
	Initialize(config string) error
	// SetDataSource sets the candle source for the engine.
	SetDataSource(dataSource datasource.CandleSource) error
	// SetResultStore sets where results are persisted. Optional.
	SetResultStore(store ResultStore) error
	// SetTradeAttributor sets the attribution collaborator. Optional.
	SetTradeAttributor(attributor TradeAttributor) error
	// RunBacktest replays the candles of params through the strategy and returns the result.
	// The engine holds no per-run state, so concurrent runs are safe once it is initialized.
	RunBacktest(ctx context.Context, strategy strategy.Strategy, params BacktestParams, callbacks LifecycleCallbacks) (types.Result, error)
	// GetConfigSchema returns the schema of the engine configuration
	GetConfigSchema() (string, error)
}

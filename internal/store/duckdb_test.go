package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/rxtech-lab/argo-guard/internal/backtest/engine"
	engine_v1 "github.com/rxtech-lab/argo-guard/internal/backtest/engine/engine_v1"
	"github.com/rxtech-lab/argo-guard/internal/backtest/engine/engine_v1/datasource"
	"github.com/rxtech-lab/argo-guard/internal/backtest/walkforward"
	"github.com/rxtech-lab/argo-guard/internal/logger"
	"github.com/rxtech-lab/argo-guard/internal/strategy"
	"github.com/rxtech-lab/argo-guard/internal/types"
	"github.com/rxtech-lab/argo-guard/mocks"
	"github.com/rxtech-lab/argo-guard/pkg/errors"
	"github.com/stretchr/testify/suite"
)

var start = time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)

type DuckDBStoreTestSuite struct {
	suite.Suite
	store *DuckDBStore
}

func TestDuckDBStoreSuite(t *testing.T) {
	suite.Run(t, new(DuckDBStoreTestSuite))
}

func (suite *DuckDBStoreTestSuite) SetupTest() {
	store, err := NewDuckDBStore(":memory:", logger.NewNopLogger())
	suite.Require().NoError(err)

	suite.store = store
}

func (suite *DuckDBStoreTestSuite) TearDownTest() {
	suite.NoError(suite.store.Close())
}

func sampleResult() types.Result {
	profitFactor := 1.5

	return types.Result{
		ID:             "result-1",
		StrategyID:     "sma_crossover_5_20",
		Symbol:         "AAPL",
		Timeframe:      types.Timeframe1d,
		StartTime:      start,
		EndTime:        start.AddDate(0, 0, 30),
		InitialCapital: 10000,
		Metrics: types.Metrics{
			TotalTrades:   2,
			WinningTrades: 1,
			LosingTrades:  1,
			WinRate:       0.5,
			NetProfit:     25,
			NetProfitPct:  0.25,
			MaxDrawdown:   40,
			SharpeRatio:   0.8,
			ProfitFactor:  &profitFactor,
			TotalFees:     4,
			FinalEquity:   10025,
		},
		Trades: []types.Trade{
			{
				ID:         "result-1-1",
				Symbol:     "AAPL",
				Action:     types.ActionBuy,
				EntryPrice: 100,
				ExitPrice:  110,
				Quantity:   10,
				EntryTime:  start.AddDate(0, 0, 1),
				ExitTime:   start.AddDate(0, 0, 5),
				PnL:        98,
				PnLPct:     9.8,
				Duration:   4 * 24 * time.Hour,
				Reason:     types.ExitReasonTakeProfit,
				PatternID:  "double_bottom",
				Patterns:   []string{"double_bottom", "volume_spike"},
				Fees:       2,
			},
			{
				ID:         "result-1-2",
				Symbol:     "AAPL",
				Action:     types.ActionBuy,
				EntryPrice: 110,
				ExitPrice:  103,
				Quantity:   10,
				EntryTime:  start.AddDate(0, 0, 10),
				ExitTime:   start.AddDate(0, 0, 12),
				PnL:        -73,
				PnLPct:     -6.6,
				Duration:   2 * 24 * time.Hour,
				Reason:     types.ExitReasonStopLoss,
				Fees:       2,
			},
		},
		Warnings:  []string{"data gap of 72h0m0s"},
		CreatedAt: start.AddDate(1, 0, 0),
	}
}

func (suite *DuckDBStoreTestSuite) TestSaveAndLoadBacktestRun() {
	ctx := context.Background()
	result := sampleResult()

	suite.Require().NoError(suite.store.SaveBacktestRun(ctx, result))

	loaded, err := suite.store.GetBacktestRun(ctx, result.ID)
	suite.Require().NoError(err)
	suite.Require().True(loaded.IsSome())

	got := loaded.Unwrap()
	suite.Equal(result.ID, got.ID)
	suite.Equal(result.StrategyID, got.StrategyID)
	suite.Equal(result.Timeframe, got.Timeframe)
	suite.True(result.StartTime.Equal(got.StartTime))
	suite.True(result.EndTime.Equal(got.EndTime))
	suite.True(result.CreatedAt.Equal(got.CreatedAt))
	suite.Equal(result.Metrics, got.Metrics)
	suite.Equal(result.Warnings, got.Warnings)
	suite.Require().Len(got.Trades, 2)

	for i, trade := range got.Trades {
		want := result.Trades[i]
		suite.Equal(want.ID, trade.ID)
		suite.Equal(want.Action, trade.Action)
		suite.Equal(want.PnL, trade.PnL)
		suite.Equal(want.Duration, trade.Duration)
		suite.Equal(want.Reason, trade.Reason)
		suite.Equal(want.PatternID, trade.PatternID)
		suite.Equal(want.Patterns, trade.Patterns)
		suite.True(want.ExitTime.Equal(trade.ExitTime))
	}
}

func (suite *DuckDBStoreTestSuite) TestMissingRunLoadsAsNone() {
	loaded, err := suite.store.GetBacktestRun(context.Background(), "nope")
	suite.Require().NoError(err)
	suite.True(loaded.IsNone())
}

func (suite *DuckDBStoreTestSuite) TestSaveIsIdempotent() {
	ctx := context.Background()
	result := sampleResult()

	suite.Require().NoError(suite.store.SaveBacktestRun(ctx, result))
	suite.Require().NoError(suite.store.SaveBacktestRun(ctx, result))

	var results, trades int
	suite.Require().NoError(suite.store.db.QueryRow(`SELECT COUNT(*) FROM backtest_results`).Scan(&results))
	suite.Require().NoError(suite.store.db.QueryRow(`SELECT COUNT(*) FROM trades`).Scan(&trades))
	suite.Equal(1, results)
	suite.Equal(2, trades)
}

func (suite *DuckDBStoreTestSuite) TestResaveDropsStaleTrades() {
	ctx := context.Background()
	result := sampleResult()
	suite.Require().NoError(suite.store.SaveBacktestRun(ctx, result))

	result.Trades = result.Trades[:1]
	result.Metrics.TotalTrades = 1
	result.Metrics.ProfitFactor = nil
	suite.Require().NoError(suite.store.SaveBacktestRun(ctx, result))

	loaded, err := suite.store.GetBacktestRun(ctx, result.ID)
	suite.Require().NoError(err)
	suite.Len(loaded.Unwrap().Trades, 1)
	suite.Equal(1, loaded.Unwrap().Metrics.TotalTrades)
	suite.Nil(loaded.Unwrap().Metrics.ProfitFactor)

	result.Trades = nil
	suite.Require().NoError(suite.store.SaveBacktestRun(ctx, result))

	loaded, err = suite.store.GetBacktestRun(ctx, result.ID)
	suite.Require().NoError(err)
	suite.Empty(loaded.Unwrap().Trades)
}

func (suite *DuckDBStoreTestSuite) TestFolds() {
	ctx := context.Background()

	for i := 2; i >= 0; i-- {
		fold := types.Fold{
			ID:              walkforward.FoldID("strat", "AAPL", types.Timeframe1d, i),
			StrategyID:      "strat",
			Symbol:          "AAPL",
			Timeframe:       types.Timeframe1d,
			FoldNumber:      i,
			TrainStart:      start.AddDate(0, 0, i*10),
			TrainEnd:        start.AddDate(0, 0, i*10+30),
			TestStart:       start.AddDate(0, 0, i*10+30),
			TestEnd:         start.AddDate(0, 0, i*10+40),
			TestPerformance: types.Metrics{SharpeRatio: float64(i) - 1, NetProfitPct: float64(i) - 1},
			Degraded:        i == 0,
		}
		suite.Require().NoError(suite.store.SaveWalkForwardRun(ctx, fold))
		suite.Require().NoError(suite.store.SaveWalkForwardRun(ctx, fold))
	}

	folds, err := suite.store.ListFolds(ctx, "strat", "AAPL")
	suite.Require().NoError(err)
	suite.Require().Len(folds, 3)

	for i, fold := range folds {
		suite.Equal(i, fold.FoldNumber)
		suite.Equal(float64(i)-1, fold.TestPerformance.SharpeRatio)
		suite.Equal(i == 0, fold.Degraded)
		suite.True(start.AddDate(0, 0, i*10+30).Equal(fold.TestStart))
	}

	other, err := suite.store.ListFolds(ctx, "strat", "MSFT")
	suite.Require().NoError(err)
	suite.Empty(other)
}

func (suite *DuckDBStoreTestSuite) TestWriteParquet() {
	suite.Require().NoError(suite.store.SaveBacktestRun(context.Background(), sampleResult()))

	dir := filepath.Join(suite.T().TempDir(), "export")
	suite.Require().NoError(suite.store.Write(dir))

	for _, name := range []string{"backtest_results", "trades", "walk_forward_folds"} {
		suite.FileExists(filepath.Join(dir, name+".parquet"))
	}

	var count int
	suite.Require().NoError(suite.store.db.QueryRow(
		`SELECT COUNT(*) FROM read_parquet('` + filepath.Join(dir, "trades.parquet") + `')`,
	).Scan(&count))
	suite.Equal(2, count)
}

func (suite *DuckDBStoreTestSuite) TestReopenFileDatabase() {
	ctx := context.Background()
	path := filepath.Join(suite.T().TempDir(), "db", "results.duckdb")

	first, err := NewDuckDBStore(path, logger.NewNopLogger())
	suite.Require().NoError(err)
	suite.Require().NoError(first.SaveBacktestRun(ctx, sampleResult()))
	suite.Require().NoError(first.Close())

	second, err := NewDuckDBStore(path, logger.NewNopLogger())
	suite.Require().NoError(err)

	defer second.Close()

	loaded, err := second.GetBacktestRun(ctx, "result-1")
	suite.Require().NoError(err)
	suite.True(loaded.IsSome())
}

func (suite *DuckDBStoreTestSuite) TestRejectsNewerSchema() {
	path := filepath.Join(suite.T().TempDir(), "results.duckdb")

	first, err := NewDuckDBStore(path, logger.NewNopLogger())
	suite.Require().NoError(err)
	_, err = first.db.Exec(`UPDATE schema_meta SET version = '99.0.0'`)
	suite.Require().NoError(err)
	suite.Require().NoError(first.Close())

	_, err = NewDuckDBStore(path, logger.NewNopLogger())
	suite.Require().Error(err)
	suite.True(errors.HasCode(err, errors.ErrCodePersistenceFailed))
	suite.Contains(err.Error(), "major version mismatch")
}

func (suite *DuckDBStoreTestSuite) TestAsEngineResultStore() {
	source := datasource.NewInMemoryDataSource()
	source.Add("AAPL", types.Timeframe1d, mocks.GenerateDaily("AAPL", start, 120)...)

	backtester := engine_v1.NewBacktestEngineV1(logger.NewNopLogger())
	suite.Require().NoError(backtester.SetDataSource(source))
	suite.Require().NoError(backtester.SetResultStore(suite.store))

	params := engine.BacktestParams{
		Symbol:         "AAPL",
		Timeframe:      types.Timeframe1d,
		StartDate:      start,
		EndDate:        start.AddDate(0, 0, 119),
		InitialCapital: 10000,
	}

	sma := strategy.NewSMACrossover(strategy.SMACrossoverConfig{FastPeriod: 5, SlowPeriod: 20})

	first, err := backtester.RunBacktest(context.Background(), sma, params, engine.LifecycleCallbacks{})
	suite.Require().NoError(err)

	for _, warning := range first.Warnings {
		suite.NotContains(warning, "persistence failed")
	}

	second, err := backtester.RunBacktest(context.Background(), sma, params, engine.LifecycleCallbacks{})
	suite.Require().NoError(err)
	suite.Equal(first.ID, second.ID)

	loaded, err := suite.store.GetBacktestRun(context.Background(), first.ID)
	suite.Require().NoError(err)
	suite.Require().True(loaded.IsSome())
	suite.Equal(first.Metrics, loaded.Unwrap().Metrics)
	suite.Len(loaded.Unwrap().Trades, len(first.Trades))
}

func (suite *DuckDBStoreTestSuite) TestOpen() {
	ctx := context.Background()

	noop, err := Open(ctx, "", logger.NewNopLogger())
	suite.Require().NoError(err)
	suite.IsType(&NoopStore{}, noop)
	suite.NoError(noop.SaveBacktestRun(ctx, sampleResult()))
	suite.NoError(noop.SaveWalkForwardRun(ctx, types.Fold{}))
	suite.NoError(noop.Close())

	duck, err := Open(ctx, "duckdb://:memory:", logger.NewNopLogger())
	suite.Require().NoError(err)
	suite.IsType(&DuckDBStore{}, duck)
	suite.NoError(duck.Close())

	_, err = Open(ctx, "mysql://localhost", logger.NewNopLogger())
	suite.True(errors.HasCode(err, errors.ErrCodeInvalidConfiguration))
}


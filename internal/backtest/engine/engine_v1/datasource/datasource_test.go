package datasource

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	_ "github.com/marcboeker/go-duckdb"
	"github.com/rxtech-lab/argo-guard/internal/logger"
	"github.com/rxtech-lab/argo-guard/internal/types"
	"github.com/rxtech-lab/argo-guard/pkg/errors"
	"github.com/stretchr/testify/suite"
)

type DataSourceTestSuite struct {
	suite.Suite
	logger  *logger.Logger
	tmpDir  string
	baseDay time.Time
}

func TestDataSourceSuite(t *testing.T) {
	suite.Run(t, new(DataSourceTestSuite))
}

func (suite *DataSourceTestSuite) SetupSuite() {
	suite.logger = logger.NewNopLogger()
	suite.baseDay = time.Date(2024, 1, 2, 9, 0, 0, 0, time.UTC)
}

func (suite *DataSourceTestSuite) SetupTest() {
	suite.tmpDir = suite.T().TempDir()
}

func (suite *DataSourceTestSuite) minuteCandles(symbol string, n int) []types.Candle {
	candles := make([]types.Candle, 0, n)
	for i := 0; i < n; i++ {
		candles = append(candles, types.Candle{
			Time:   suite.baseDay.Add(time.Duration(i) * time.Minute),
			Symbol: symbol,
			Open:   100.0 + float64(i),
			High:   101.0 + float64(i),
			Low:    99.0 + float64(i),
			Close:  100.5 + float64(i),
			Volume: 1000.0,
		})
	}

	return candles
}

func writeCandlesToParquet(candles []types.Candle, filePath string) error {
	db, err := sql.Open("duckdb", ":memory:")
	if err != nil {
		return err
	}
	defer db.Close()

	_, err = db.Exec(`
		CREATE TABLE market_data (
			time TIMESTAMP,
			symbol TEXT,
			open DOUBLE,
			high DOUBLE,
			low DOUBLE,
			close DOUBLE,
			volume DOUBLE
		)
	`)
	if err != nil {
		return err
	}

	for _, c := range candles {
		_, err = db.Exec(`INSERT INTO market_data VALUES (?, ?, ?, ?, ?, ?, ?)`,
			c.Time, c.Symbol, c.Open, c.High, c.Low, c.Close, c.Volume)
		if err != nil {
			return err
		}
	}

	_, err = db.Exec(fmt.Sprintf(`COPY market_data TO '%s' (FORMAT PARQUET)`, filePath))

	return err
}

func (suite *DataSourceTestSuite) newDuckDBSource() *DuckDBDataSource {
	candles := append(suite.minuteCandles("AAPL", 30), suite.minuteCandles("MSFT", 10)...)
	path := filepath.Join(suite.tmpDir, "candles.parquet")
	suite.Require().NoError(writeCandlesToParquet(candles, path))

	ds, err := NewDataSource(":memory:", types.Timeframe1m, suite.logger)
	suite.Require().NoError(err)
	suite.Require().NoError(ds.Initialize(path))
	suite.T().Cleanup(func() { ds.Close() })

	return ds
}

func (suite *DataSourceTestSuite) TestDuckDBReadCandlesBaseTimeframe() {
	ds := suite.newDuckDBSource()

	candles, err := ds.ReadCandles(context.Background(), "AAPL", types.Timeframe1m,
		suite.baseDay.Add(5*time.Minute), suite.baseDay.Add(14*time.Minute))
	suite.Require().NoError(err)
	suite.Len(candles, 10)
	suite.Equal("AAPL", candles[0].Symbol)
	suite.True(candles[0].Time.Equal(suite.baseDay.Add(5 * time.Minute)))
	suite.Equal(105.0, candles[0].Open)
}

func (suite *DataSourceTestSuite) TestDuckDBReadCandlesAggregated() {
	ds := suite.newDuckDBSource()

	candles, err := ds.ReadCandles(context.Background(), "AAPL", types.Timeframe15m,
		suite.baseDay, suite.baseDay.Add(29*time.Minute))
	suite.Require().NoError(err)
	suite.Require().Len(candles, 2)

	first := candles[0]
	suite.Equal(100.0, first.Open)
	suite.Equal(115.0, first.High)
	suite.Equal(99.0, first.Low)
	suite.Equal(114.5, first.Close)
	suite.Equal(15000.0, first.Volume)
}

func (suite *DataSourceTestSuite) TestDuckDBFinerTimeframeRejected() {
	ds, err := NewDataSource(":memory:", types.Timeframe1h, suite.logger)
	suite.Require().NoError(err)
	defer ds.Close()

	_, err = ds.ReadCandles(context.Background(), "AAPL", types.Timeframe1m, suite.baseDay, suite.baseDay.Add(time.Hour))
	suite.Error(err)
	suite.True(errors.HasCode(err, errors.ErrCodeInvalidTimeframe))
}

func (suite *DataSourceTestSuite) TestDuckDBMissingFile() {
	ds, err := NewDataSource(":memory:", types.Timeframe1m, suite.logger)
	suite.Require().NoError(err)
	defer ds.Close()

	err = ds.Initialize(filepath.Join(suite.tmpDir, "missing.parquet"))
	suite.Error(err)
	suite.True(errors.IsDataError(err))
}

func (suite *DataSourceTestSuite) TestCSVReadCandles() {
	path := filepath.Join(suite.tmpDir, "candles.csv")
	content := "time,symbol,open,high,low,close,volume\n" +
		"2024-01-02T09:00:00Z,AAPL,100,101,99,100.5,1000\n" +
		"2024-01-02T09:01:00Z,AAPL,101,102,100,101.5,1000\n" +
		"2024-01-02T09:01:00Z,MSFT,300,301,299,300.5,500\n" +
		"2024-01-02T09:02:00Z,AAPL,102,103,101,102.5,1000\n"
	suite.Require().NoError(os.WriteFile(path, []byte(content), 0644))

	ds := NewCSVDataSource(path, suite.logger)

	candles, err := ds.ReadCandles(context.Background(), "AAPL", types.Timeframe1m,
		suite.baseDay, suite.baseDay.Add(time.Minute))
	suite.Require().NoError(err)
	suite.Len(candles, 2)
	suite.Equal(101.5, candles[1].Close)
	suite.NoError(ds.Close())
}

func (suite *DataSourceTestSuite) TestCSVMissingFile() {
	ds := NewCSVDataSource(filepath.Join(suite.tmpDir, "missing.csv"), suite.logger)

	_, err := ds.ReadCandles(context.Background(), "AAPL", types.Timeframe1m, suite.baseDay, suite.baseDay)
	suite.Error(err)
	suite.True(errors.HasCode(err, errors.ErrCodeDataSourceUnavailable))
}

func (suite *DataSourceTestSuite) TestInMemoryReadCandles() {
	ds := NewInMemoryDataSource()
	ds.Add("AAPL", types.Timeframe1m, suite.minuteCandles("AAPL", 5)...)
	ds.Add("AAPL", types.Timeframe1h, suite.minuteCandles("AAPL", 2)...)

	candles, err := ds.ReadCandles(context.Background(), "AAPL", types.Timeframe1m, suite.baseDay, suite.baseDay.Add(time.Hour))
	suite.Require().NoError(err)
	suite.Len(candles, 5)

	candles, err = ds.ReadCandles(context.Background(), "MSFT", types.Timeframe1m, suite.baseDay, suite.baseDay.Add(time.Hour))
	suite.Require().NoError(err)
	suite.Empty(candles)

	_, err = ds.ReadCandles(context.Background(), "AAPL", types.Timeframe("2m"), suite.baseDay, suite.baseDay)
	suite.True(errors.IsValidationError(err))
}

type countingSource struct {
	calls   int
	candles []types.Candle
	err     error
}

func (c *countingSource) ReadCandles(_ context.Context, _ string, _ types.Timeframe, _ time.Time, _ time.Time) ([]types.Candle, error) {
	c.calls++

	return c.candles, c.err
}

func (c *countingSource) Close() error {
	return nil
}

func (suite *DataSourceTestSuite) TestCachedDataSourceCachesRanges() {
	underlying := &countingSource{candles: suite.minuteCandles("AAPL", 3)}
	cached := NewCachedDataSource(underlying)
	ctx := context.Background()

	first, err := cached.ReadCandles(ctx, "AAPL", types.Timeframe1m, suite.baseDay, suite.baseDay.Add(time.Hour))
	suite.Require().NoError(err)
	first[0].Close = -1

	second, err := cached.ReadCandles(ctx, "AAPL", types.Timeframe1m, suite.baseDay, suite.baseDay.Add(time.Hour))
	suite.Require().NoError(err)
	suite.Equal(1, underlying.calls)
	suite.Equal(100.5, second[0].Close)

	_, err = cached.ReadCandles(ctx, "AAPL", types.Timeframe1m, suite.baseDay, suite.baseDay.Add(2*time.Hour))
	suite.Require().NoError(err)
	suite.Equal(2, underlying.calls)

	cached.ClearCache()
	_, err = cached.ReadCandles(ctx, "AAPL", types.Timeframe1m, suite.baseDay, suite.baseDay.Add(time.Hour))
	suite.Require().NoError(err)
	suite.Equal(3, underlying.calls)
}

func (suite *DataSourceTestSuite) TestCachedDataSourceSkipsCancelledContext() {
	underlying := &countingSource{err: context.Canceled}
	cached := NewCachedDataSource(underlying)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := cached.ReadCandles(ctx, "AAPL", types.Timeframe1m, suite.baseDay, suite.baseDay)
	suite.Error(err)

	underlying.err = nil
	_, err = cached.ReadCandles(context.Background(), "AAPL", types.Timeframe1m, suite.baseDay, suite.baseDay)
	suite.NoError(err)
	suite.Equal(2, underlying.calls)
}

// gatedSource blocks reads of the gated symbol until release is closed.
type gatedSource struct {
	gated   string
	started chan struct{}
	release chan struct{}
	candles []types.Candle
	mu      sync.Mutex
	calls   map[string]int
}

func (g *gatedSource) ReadCandles(_ context.Context, symbol string, _ types.Timeframe, _ time.Time, _ time.Time) ([]types.Candle, error) {
	g.mu.Lock()
	g.calls[symbol]++
	g.mu.Unlock()

	if symbol == g.gated {
		close(g.started)
		<-g.release
	}

	return g.candles, nil
}

func (g *gatedSource) Close() error {
	return nil
}

func (suite *DataSourceTestSuite) TestCachedDataSourceMissesDoNotBlockEachOther() {
	underlying := &gatedSource{
		gated:   "AAPL",
		started: make(chan struct{}),
		release: make(chan struct{}),
		candles: suite.minuteCandles("AAPL", 3),
		calls:   map[string]int{},
	}
	cached := NewCachedDataSource(underlying)
	ctx := context.Background()
	end := suite.baseDay.Add(time.Hour)

	var wg sync.WaitGroup

	read := func() {
		defer wg.Done()

		candles, err := cached.ReadCandles(ctx, "AAPL", types.Timeframe1m, suite.baseDay, end)
		suite.NoError(err)
		suite.Len(candles, 3)
	}

	wg.Add(1)
	go read()
	<-underlying.started

	done := make(chan struct{})
	go func() {
		defer close(done)

		_, err := cached.ReadCandles(ctx, "MSFT", types.Timeframe1m, suite.baseDay, end)
		suite.NoError(err)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		suite.FailNow("read of another symbol waited for the pending read")
	}

	for i := 0; i < 5; i++ {
		wg.Add(1)
		go read()
	}

	close(underlying.release)
	wg.Wait()

	underlying.mu.Lock()
	defer underlying.mu.Unlock()
	suite.Equal(1, underlying.calls["AAPL"])
	suite.Equal(1, underlying.calls["MSFT"])
}

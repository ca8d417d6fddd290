package datasource

import (
	"context"
	"os"
	"sync"
	"time"

	"github.com/gocarina/gocsv"
	"github.com/rxtech-lab/argo-guard/internal/logger"
	"github.com/rxtech-lab/argo-guard/internal/types"
	"github.com/rxtech-lab/argo-guard/pkg/errors"
	"go.uber.org/zap"
)

// CSVDataSource reads candles from a CSV file with a header row of
// time,symbol,open,high,low,close,volume. Times are RFC 3339.
// The file is loaded once and served from memory.
type CSVDataSource struct {
	filePath string
	logger   *logger.Logger
	once     sync.Once
	cache    []types.Candle
	loadErr  error
}

// NewCSVDataSource creates a CSV data source for the file at filePath.
func NewCSVDataSource(filePath string, logger *logger.Logger) *CSVDataSource {
	return &CSVDataSource{
		filePath: filePath,
		logger:   logger,
	}
}

func (c *CSVDataSource) load() {
	file, err := os.Open(c.filePath)
	if err != nil {
		c.loadErr = errors.Wrapf(errors.ErrCodeDataSourceUnavailable, err, "failed to open CSV file %s", c.filePath)

		return
	}
	defer file.Close()

	var candles []types.Candle
	if err := gocsv.UnmarshalFile(file, &candles); err != nil {
		c.loadErr = errors.Wrapf(errors.ErrCodeDataSourceUnavailable, err, "failed to unmarshal CSV file %s", c.filePath)

		return
	}

	c.cache = candles
	c.logger.Debug("Loaded candles from CSV", zap.String("path", c.filePath), zap.Int("count", len(candles)))
}

// ReadCandles implements CandleSource. The CSV is assumed to hold candles at
// the requested timeframe; no aggregation is performed.
func (c *CSVDataSource) ReadCandles(_ context.Context, symbol string, timeframe types.Timeframe, start time.Time, end time.Time) ([]types.Candle, error) {
	if _, err := timeframe.Duration(); err != nil {
		return nil, err
	}

	c.once.Do(c.load)

	if c.loadErr != nil {
		return nil, c.loadErr
	}

	return filterCandles(c.cache, symbol, start, end), nil
}

// Close implements CandleSource.
func (c *CSVDataSource) Close() error {
	return nil
}

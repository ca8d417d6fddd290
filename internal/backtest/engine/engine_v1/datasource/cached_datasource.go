package datasource

import (
	"context"
	stderrors "errors"
	"fmt"
	"sync"
	"time"

	"github.com/rxtech-lab/argo-guard/internal/types"
	"golang.org/x/sync/singleflight"
)

// CachedDataSource wraps a CandleSource and caches repeated range reads.
// Walk-forward folds and batch runs read overlapping ranges of the same symbol,
// so the same query is often issued many times.
type CachedDataSource struct {
	underlying CandleSource
	cache      map[string][]types.Candle
	errCache   map[string]error
	inflight   singleflight.Group
	mu         sync.RWMutex
}

// NewCachedDataSource creates a new CachedDataSource wrapping the given CandleSource.
func NewCachedDataSource(underlying CandleSource) *CachedDataSource {
	return &CachedDataSource{
		underlying: underlying,
		cache:      make(map[string][]types.Candle),
		errCache:   make(map[string]error),
	}
}

// ClearCache clears all cached data.
func (c *CachedDataSource) ClearCache() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cache = make(map[string][]types.Candle)
	c.errCache = make(map[string]error)
}

// ReadCandles implements CandleSource with caching. Callers receive a copy
// so the cached slice is never mutated. Concurrent misses on the same range share
// one underlying read; misses on different ranges run in parallel.
func (c *CachedDataSource) ReadCandles(ctx context.Context, symbol string, timeframe types.Timeframe, start time.Time, end time.Time) ([]types.Candle, error) {
	key := c.buildRangeKey(symbol, timeframe, start, end)

	if data, ok, err := c.lookup(key); ok {
		return copyCandles(data), err
	}

	value, err, _ := c.inflight.Do(key, func() (any, error) {
		if data, ok, err := c.lookup(key); ok {
			return data, err
		}

		data, err := c.underlying.ReadCandles(ctx, symbol, timeframe, start, end)
		// context errors are transient and must not be cached
		if err != nil && ctx.Err() != nil {
			return nil, err
		}

		c.mu.Lock()
		c.cache[key] = data
		c.errCache[key] = err
		c.mu.Unlock()

		return data, err
	})

	// the shared read belonged to a caller whose context ended
	if err != nil && ctx.Err() == nil && (stderrors.Is(err, context.Canceled) || stderrors.Is(err, context.DeadlineExceeded)) {
		return c.ReadCandles(ctx, symbol, timeframe, start, end)
	}

	data, _ := value.([]types.Candle)

	return copyCandles(data), err
}

func (c *CachedDataSource) lookup(key string) ([]types.Candle, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	data, ok := c.cache[key]
	if !ok {
		return nil, false, nil
	}

	return data, true, c.errCache[key]
}

// Close implements CandleSource.
func (c *CachedDataSource) Close() error {
	return c.underlying.Close()
}

func (c *CachedDataSource) buildRangeKey(symbol string, timeframe types.Timeframe, start time.Time, end time.Time) string {
	return fmt.Sprintf("range:%s:%s:%d:%d", symbol, timeframe, start.UnixNano(), end.UnixNano())
}

func copyCandles(candles []types.Candle) []types.Candle {
	if candles == nil {
		return nil
	}

	out := make([]types.Candle, len(candles))
	copy(out, candles)

	return out
}

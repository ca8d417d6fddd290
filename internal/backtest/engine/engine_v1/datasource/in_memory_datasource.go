package datasource

import (
	"context"
	"sync"
	"time"

	"github.com/rxtech-lab/argo-guard/internal/types"
)

// InMemoryDataSource serves candles held in memory, keyed by symbol and timeframe.
type InMemoryDataSource struct {
	mu      sync.RWMutex
	candles map[string][]types.Candle
}

func NewInMemoryDataSource() *InMemoryDataSource {
	return &InMemoryDataSource{
		candles: make(map[string][]types.Candle),
	}
}

// Add appends candles for the symbol and timeframe.
func (m *InMemoryDataSource) Add(symbol string, timeframe types.Timeframe, candles ...types.Candle) {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := memoryKey(symbol, timeframe)
	for _, c := range candles {
		c.Symbol = symbol
		m.candles[key] = append(m.candles[key], c)
	}
}

// ReadCandles implements CandleSource.
func (m *InMemoryDataSource) ReadCandles(_ context.Context, symbol string, timeframe types.Timeframe, start time.Time, end time.Time) ([]types.Candle, error) {
	if _, err := timeframe.Duration(); err != nil {
		return nil, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	return filterCandles(m.candles[memoryKey(symbol, timeframe)], symbol, start, end), nil
}

// Close implements CandleSource.
func (m *InMemoryDataSource) Close() error {
	return nil
}

func memoryKey(symbol string, timeframe types.Timeframe) string {
	return symbol + "|" + string(timeframe)
}

package datasource

import (
	"time"

	"github.com/rxtech-lab/argo-guard/internal/types"
)

// filterCandles returns the candles of symbol within [start, end]. Candles
// without a symbol are treated as belonging to the requested one.
func filterCandles(candles []types.Candle, symbol string, start time.Time, end time.Time) []types.Candle {
	var result []types.Candle

	for _, c := range candles {
		if c.Symbol != "" && c.Symbol != symbol {
			continue
		}

		if c.Time.Before(start) || c.Time.After(end) {
			continue
		}

		result = append(result, c)
	}

	return result
}

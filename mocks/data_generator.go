package mocks

import (
	"math"
	"math/rand"
	"time"

	"github.com/rxtech-lab/argo-guard/internal/types"
)

// CandleWalk describes a geometric random walk of candles for tests.
type CandleWalk struct {
	Symbol string
	Start  time.Time
	Step   time.Duration
	Price  float64
	// Volatility is the standard deviation of one bar's return.
	Volatility float64
	// Drift is the total return spread evenly over the walk.
	Drift  float64
	Volume float64
	Seed   int64
}

// DailyWalk is a daily walk starting at 100 with 2% volatility.
func DailyWalk(symbol string, start time.Time) CandleWalk {
	return CandleWalk{
		Symbol:     symbol,
		Start:      start,
		Step:       24 * time.Hour,
		Price:      100,
		Volatility: 0.02,
		Volume:     10000,
		Seed:       42,
	}
}

// Candles walks count bars. The same walk always yields the same candles.
func (w CandleWalk) Candles(count int) []types.Candle {
	rng := rand.New(rand.NewSource(w.Seed))
	candles := make([]types.Candle, 0, count)
	price := w.Price

	for i := 0; i < count; i++ {
		open := price

		close := open * (1 + w.Volatility*rng.NormFloat64() + w.Drift/float64(count))
		if close <= 0 {
			close = open * 0.99
		}

		wick := w.Volatility * open / 2
		high := math.Max(open, close) + rng.Float64()*wick
		low := math.Min(open, close) - rng.Float64()*wick

		if low <= 0 {
			low = math.Min(open, close) * 0.99
		}

		candles = append(candles, types.Candle{
			Symbol: w.Symbol,
			Time:   w.Start.Add(time.Duration(i) * w.Step),
			Open:   round(open, 4),
			High:   round(high, 4),
			Low:    round(low, 4),
			Close:  round(close, 4),
			Volume: round(w.Volume*(0.7+0.6*rng.Float64()), 2),
		})

		price = close
	}

	return candles
}

// GenerateDaily returns count daily candles for symbol starting at start.
func GenerateDaily(symbol string, start time.Time, count int) []types.Candle {
	return DailyWalk(symbol, start).Candles(count)
}

// GenerateTrending is GenerateDaily with drift, so trend 0.5 ends roughly 50% above the start.
func GenerateTrending(symbol string, start time.Time, count int, trend float64) []types.Candle {
	walk := DailyWalk(symbol, start)
	walk.Drift = trend
	walk.Seed = 7

	return walk.Candles(count)
}

func round(val float64, decimals int) float64 {
	pow := math.Pow(10, float64(decimals))

	return math.Round(val*pow) / pow
}

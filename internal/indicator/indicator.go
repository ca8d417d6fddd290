// Package indicator computes technical indicators over a candle history.
// Every function only looks at the candles it is given, so a strategy that
// passes State.History can never see the future.
package indicator

import (
	"math"

	"github.com/rxtech-lab/argo-guard/internal/types"
	"github.com/rxtech-lab/argo-guard/pkg/errors"
)

func requirePeriod(candles []types.Candle, period int, name string) error {
	if period <= 0 {
		return errors.Newf(errors.ErrCodeInvalidParameter, "%s period must be positive, got %d", name, period)
	}

	if len(candles) < period {
		return errors.NewInsufficientDataErrorf(period, len(candles), symbolOf(candles),
			"insufficient data for %s(%d)", name, period)
	}

	return nil
}

func symbolOf(candles []types.Candle) string {
	if len(candles) == 0 {
		return ""
	}

	return candles[len(candles)-1].Symbol
}

// SMA returns the simple moving average of the closes of the last period candles.
func SMA(candles []types.Candle, period int) (float64, error) {
	if err := requirePeriod(candles, period, "SMA"); err != nil {
		return 0, err
	}

	sum := 0.0
	for _, c := range candles[len(candles)-period:] {
		sum += c.Close
	}

	return sum / float64(period), nil
}

// EMA returns the exponential moving average of the closes, seeded with the SMA
// of the first period candles. Alpha is 2/(period+1), matching pandas ewm(adjust=False).
func EMA(candles []types.Candle, period int) (float64, error) {
	if err := requirePeriod(candles, period, "EMA"); err != nil {
		return 0, err
	}

	ema := 0.0
	for i := 0; i < period; i++ {
		ema += candles[i].Close
	}

	ema /= float64(period)

	alpha := 2.0 / float64(period+1)
	for i := period; i < len(candles); i++ {
		ema = (candles[i].Close * alpha) + (ema * (1 - alpha))
	}

	return ema, nil
}

// RSI returns the relative strength index using Wilder's smoothing. It needs period+1 candles.
func RSI(candles []types.Candle, period int) (float64, error) {
	if err := requirePeriod(candles, period+1, "RSI"); err != nil {
		return 0, err
	}

	gains := make([]float64, 0, len(candles)-1)
	losses := make([]float64, 0, len(candles)-1)

	for i := 1; i < len(candles); i++ {
		change := candles[i].Close - candles[i-1].Close
		if change > 0 {
			gains = append(gains, change)
			losses = append(losses, 0)
		} else {
			gains = append(gains, 0)
			losses = append(losses, -change)
		}
	}

	avgGain := 0.0
	avgLoss := 0.0

	for i := 0; i < period; i++ {
		avgGain += gains[i]
		avgLoss += losses[i]
	}

	avgGain /= float64(period)
	avgLoss /= float64(period)

	for i := period; i < len(gains); i++ {
		avgGain = (avgGain*float64(period-1) + gains[i]) / float64(period)
		avgLoss = (avgLoss*float64(period-1) + losses[i]) / float64(period)
	}

	if avgLoss == 0 {
		return 100, nil
	}

	rs := avgGain / avgLoss

	return 100 - (100 / (1 + rs)), nil
}

// ATR returns the average true range over the last period bars. It needs period+1 candles.
func ATR(candles []types.Candle, period int) (float64, error) {
	if err := requirePeriod(candles, period+1, "ATR"); err != nil {
		return 0, err
	}

	sum := 0.0
	for i := len(candles) - period; i < len(candles); i++ {
		prevClose := candles[i-1].Close
		tr := math.Max(candles[i].High-candles[i].Low,
			math.Max(math.Abs(candles[i].High-prevClose), math.Abs(candles[i].Low-prevClose)))
		sum += tr
	}

	return sum / float64(period), nil
}

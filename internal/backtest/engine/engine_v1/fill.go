package engine

import "github.com/rxtech-lab/argo-guard/internal/types"

// entryFillPrice widens a buy against the trader: spread first, then slippage.
func entryFillPrice(price float64, spread float64, slippage float64) float64 {
	return price * (1 + spread) * (1 + slippage)
}

// exitFillPrice widens a sell or exit against the trader: spread first, then slippage.
func exitFillPrice(price float64, spread float64, slippage float64) float64 {
	return price * (1 - spread) * (1 - slippage)
}

// protectiveExit checks a long position's stop-loss and take-profit against the
// full range of candle. When both trigger inside the same bar the stop wins.
// A bar that opens beyond a level fills at the open.
// It returns the unadjusted exit level and the exit reason.
func protectiveExit(position types.Position, candle types.Candle) (float64, string, bool) {
	if position.StopLoss.IsSome() {
		stop := position.StopLoss.Unwrap()
		if candle.Low <= stop {
			if candle.Open < stop {
				return candle.Open, types.ExitReasonStopLoss, true
			}

			return stop, types.ExitReasonStopLoss, true
		}
	}

	if position.TakeProfit.IsSome() {
		target := position.TakeProfit.Unwrap()
		if candle.High >= target {
			if candle.Open > target {
				return candle.Open, types.ExitReasonTakeProfit, true
			}

			return target, types.ExitReasonTakeProfit, true
		}
	}

	return 0, "", false
}

package engine

import (
	"math"

	"github.com/rxtech-lab/argo-guard/internal/types"
	"github.com/rxtech-lab/argo-guard/internal/utils"
)

// tradingDaysPerYear annualizes the per-candle Sharpe ratio.
const tradingDaysPerYear = 252

// applyDrawdown fills EquityPoint.Drawdown against a running peak that starts at
// the initial capital, and returns the largest absolute and percentage drawdown.
func applyDrawdown(curve []types.EquityPoint, initialCapital float64) (float64, float64) {
	peak := initialCapital
	maxDrawdown := 0.0
	maxDrawdownPct := 0.0

	for i := range curve {
		if curve[i].Equity > peak {
			peak = curve[i].Equity
		}

		drawdown := peak - curve[i].Equity
		curve[i].Drawdown = drawdown

		if drawdown > maxDrawdown {
			maxDrawdown = drawdown
		}

		if peak > 0 {
			if pct := drawdown / peak * 100; pct > maxDrawdownPct {
				maxDrawdownPct = pct
			}
		}
	}

	return maxDrawdown, maxDrawdownPct
}

// sharpeRatio is the annualized mean over sample stddev of per-candle equity returns.
// The first return is measured against the initial capital.
func sharpeRatio(curve []types.EquityPoint, initialCapital float64) float64 {
	returns := make([]float64, 0, len(curve))
	previous := initialCapital

	for _, p := range curve {
		if previous != 0 {
			returns = append(returns, p.Equity/previous-1)
		}

		previous = p.Equity
	}

	if len(returns) < 2 {
		return 0
	}

	std := utils.SampleStdDev(returns)
	if std == 0 {
		return 0
	}

	mean, _ := utils.FiniteMean(returns)

	return mean / std * math.Sqrt(tradingDaysPerYear)
}

// calculateMetrics derives the run metrics from the closed trades and equity curve.
func calculateMetrics(trades []types.Trade, curve []types.EquityPoint, initialCapital float64, finalEquity float64, candles []types.Candle) types.Metrics {
	metrics := types.Metrics{
		TotalTrades: len(trades),
		FinalEquity: finalEquity,
		NetProfit:   finalEquity - initialCapital,
	}

	if initialCapital > 0 {
		metrics.NetProfitPct = metrics.NetProfit / initialCapital * 100
	}

	grossProfit := 0.0
	grossLoss := 0.0
	totalDuration := 0.0

	for _, t := range trades {
		switch {
		case t.PnL > 0:
			metrics.WinningTrades++
			grossProfit += t.PnL
		case t.PnL < 0:
			metrics.LosingTrades++
			grossLoss += -t.PnL
		}

		totalDuration += t.Duration.Seconds()
		metrics.TotalFees += t.Fees
	}

	if len(trades) > 0 {
		metrics.WinRate = float64(metrics.WinningTrades) / float64(len(trades))
		metrics.AvgTradeDurationSeconds = totalDuration / float64(len(trades))
	}

	if grossLoss > 0 {
		profitFactor := grossProfit / grossLoss
		metrics.ProfitFactor = &profitFactor
	}

	metrics.MaxDrawdown, metrics.MaxDrawdownPct = applyDrawdown(curve, initialCapital)
	metrics.SharpeRatio = sharpeRatio(curve, initialCapital)

	if len(candles) > 0 && candles[0].Open > 0 {
		metrics.BuyAndHoldPnL = initialCapital * (candles[len(candles)-1].Close/candles[0].Open - 1)
	}

	return metrics
}

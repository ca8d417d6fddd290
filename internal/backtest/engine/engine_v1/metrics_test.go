package engine

import (
	"math"
	"testing"
	"time"

	"github.com/rxtech-lab/argo-guard/internal/types"
	"github.com/stretchr/testify/suite"
)

type MetricsTestSuite struct {
	suite.Suite
}

func TestMetricsSuite(t *testing.T) {
	suite.Run(t, new(MetricsTestSuite))
}

func curveOf(equities ...float64) []types.EquityPoint {
	curve := make([]types.EquityPoint, len(equities))
	for i, e := range equities {
		curve[i] = types.EquityPoint{Time: day(i), Equity: e}
	}

	return curve
}

func (suite *MetricsTestSuite) TestDrawdownPeakStartsAtInitialCapital() {
	curve := curveOf(900, 1100, 990, 1050)

	maxDrawdown, maxDrawdownPct := applyDrawdown(curve, 1000)

	suite.InDelta(110.0, maxDrawdown, 1e-9)
	suite.InDelta(10.0, maxDrawdownPct, 1e-9)
	suite.InDelta(100.0, curve[0].Drawdown, 1e-9)
	suite.Zero(curve[1].Drawdown)
	suite.InDelta(50.0, curve[3].Drawdown, 1e-9)
}

func (suite *MetricsTestSuite) TestSharpeRatio() {
	suite.Zero(sharpeRatio(curveOf(1000), 1000), "single return")
	suite.Zero(sharpeRatio(curveOf(1000, 1000, 1000), 1000), "zero stddev")

	curve := curveOf(1010, 1000, 1030)
	returns := []float64{0.01, 1000.0/1010 - 1, 1030.0/1000 - 1}

	mean := (returns[0] + returns[1] + returns[2]) / 3
	variance := 0.0
	for _, r := range returns {
		variance += (r - mean) * (r - mean)
	}

	std := math.Sqrt(variance / 2)

	suite.InDelta(mean/std*math.Sqrt(252), sharpeRatio(curve, 1000), 1e-9)
}

func (suite *MetricsTestSuite) TestCalculateMetrics() {
	trades := []types.Trade{
		{PnL: 100, Duration: 2 * time.Hour, Fees: 1},
		{PnL: -40, Duration: 4 * time.Hour, Fees: 1},
		{PnL: 60, Duration: 6 * time.Hour, Fees: 2},
	}
	candles := []types.Candle{
		{Time: day(0), Open: 50, Close: 51},
		{Time: day(1), Open: 51, Close: 55},
	}

	metrics := calculateMetrics(trades, curveOf(10050, 10120), 10000, 10120, candles)

	suite.Equal(3, metrics.TotalTrades)
	suite.Equal(2, metrics.WinningTrades)
	suite.Equal(1, metrics.LosingTrades)
	suite.InDelta(2.0/3, metrics.WinRate, 1e-9)
	suite.InDelta(120.0, metrics.NetProfit, 1e-9)
	suite.InDelta(1.2, metrics.NetProfitPct, 1e-9)
	suite.Require().NotNil(metrics.ProfitFactor)
	suite.InDelta(4.0, *metrics.ProfitFactor, 1e-9)
	suite.InDelta(4*3600.0, metrics.AvgTradeDurationSeconds, 1e-9)
	suite.InDelta(4.0, metrics.TotalFees, 1e-9)
	suite.InDelta(1000.0, metrics.BuyAndHoldPnL, 1e-9)
}

func (suite *MetricsTestSuite) TestNoTrades() {
	metrics := calculateMetrics(nil, curveOf(1000, 1000), 1000, 1000, nil)

	suite.Zero(metrics.TotalTrades)
	suite.Zero(metrics.WinRate)
	suite.Nil(metrics.ProfitFactor)
	suite.Zero(metrics.SharpeRatio)
	suite.Zero(metrics.BuyAndHoldPnL)
}

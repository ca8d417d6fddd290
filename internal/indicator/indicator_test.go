package indicator

import (
	"testing"
	"time"

	"github.com/rxtech-lab/argo-guard/internal/types"
	"github.com/rxtech-lab/argo-guard/pkg/errors"
	"github.com/stretchr/testify/suite"
)

type IndicatorTestSuite struct {
	suite.Suite
}

func TestIndicatorSuite(t *testing.T) {
	suite.Run(t, new(IndicatorTestSuite))
}

func candlesFromCloses(closes ...float64) []types.Candle {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	candles := make([]types.Candle, len(closes))

	for i, c := range closes {
		candles[i] = types.Candle{
			Time:   base.Add(time.Duration(i) * time.Hour),
			Symbol: "AAPL",
			Open:   c,
			High:   c + 1,
			Low:    c - 1,
			Close:  c,
		}
	}

	return candles
}

func (suite *IndicatorTestSuite) TestSMA() {
	value, err := SMA(candlesFromCloses(1, 2, 3, 4, 5), 3)
	suite.Require().NoError(err)
	suite.Equal(4.0, value)
}

func (suite *IndicatorTestSuite) TestSMAInsufficientData() {
	_, err := SMA(candlesFromCloses(1, 2), 3)
	suite.Error(err)
	suite.True(errors.IsInsufficientDataError(err))
}

func (suite *IndicatorTestSuite) TestSMAInvalidPeriod() {
	_, err := SMA(candlesFromCloses(1, 2), 0)
	suite.True(errors.HasCode(err, errors.ErrCodeInvalidParameter))
}

func (suite *IndicatorTestSuite) TestEMA() {
	// seed = (1+2+3)/3 = 2, alpha = 0.5 -> 4*0.5 + 2*0.5 = 3
	value, err := EMA(candlesFromCloses(1, 2, 3, 4), 3)
	suite.Require().NoError(err)
	suite.InDelta(3.0, value, 1e-12)
}

func (suite *IndicatorTestSuite) TestRSI() {
	tests := []struct {
		name     string
		closes   []float64
		expected float64
	}{
		{"only gains", []float64{1, 2, 3, 4}, 100},
		{"only losses", []float64{4, 3, 2, 1}, 0},
		{"balanced", []float64{1, 2, 1, 2, 1}, 50},
	}

	for _, tc := range tests {
		suite.Run(tc.name, func() {
			value, err := RSI(candlesFromCloses(tc.closes...), len(tc.closes)-1)
			suite.Require().NoError(err)
			suite.InDelta(tc.expected, value, 1e-9)
		})
	}
}

func (suite *IndicatorTestSuite) TestATR() {
	// each bar has a 2 point range and closes move by 1, so true range is 2
	value, err := ATR(candlesFromCloses(10, 11, 12, 13), 3)
	suite.Require().NoError(err)
	suite.InDelta(2.0, value, 1e-12)
}

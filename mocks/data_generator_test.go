package mocks

import (
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
)

type DataGeneratorTestSuite struct {
	suite.Suite
	start time.Time
}

func TestDataGeneratorSuite(t *testing.T) {
	suite.Run(t, new(DataGeneratorTestSuite))
}

func (suite *DataGeneratorTestSuite) SetupTest() {
	suite.start = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
}

func (suite *DataGeneratorTestSuite) TestCandlesAreWellFormed() {
	candles := GenerateDaily("AAPL", suite.start, 300)
	suite.Require().Len(candles, 300)

	for i, c := range candles {
		suite.Equal("AAPL", c.Symbol)
		suite.Equal(suite.start.AddDate(0, 0, i), c.Time)
		suite.Greater(c.Low, 0.0)
		suite.GreaterOrEqual(c.High, c.Open)
		suite.GreaterOrEqual(c.High, c.Close)
		suite.LessOrEqual(c.Low, c.Open)
		suite.LessOrEqual(c.Low, c.Close)
		suite.Greater(c.Volume, 0.0)
	}

	suite.Equal(100.0, candles[0].Open)
}

func (suite *DataGeneratorTestSuite) TestDeterministic() {
	suite.Equal(GenerateDaily("AAPL", suite.start, 50), GenerateDaily("AAPL", suite.start, 50))

	walk := DailyWalk("AAPL", suite.start)
	other := walk
	other.Seed = 123

	suite.NotEqual(walk.Candles(50), other.Candles(50))
}

func (suite *DataGeneratorTestSuite) TestStep() {
	walk := DailyWalk("BTCUSDT", suite.start)
	walk.Step = time.Minute

	candles := walk.Candles(10)
	suite.Equal(suite.start.Add(9*time.Minute), candles[9].Time)
}

func (suite *DataGeneratorTestSuite) TestTrending() {
	flat := DailyWalk("TEST", suite.start)
	flat.Seed = 7
	up := GenerateTrending("TEST", suite.start, 100, 0.5)

	suite.Greater(up[99].Close, flat.Candles(100)[99].Close)
}

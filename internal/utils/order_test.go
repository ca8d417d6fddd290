package utils

import (
	"testing"

	"github.com/rxtech-lab/argo-guard/internal/backtest/engine/engine_v1/commission_fee"
	"github.com/stretchr/testify/suite"
)

type UtilsTestSuite struct {
	suite.Suite
}

func TestUtilsTestSuite(t *testing.T) {
	suite.Run(t, new(UtilsTestSuite))
}

func (suite *UtilsTestSuite) TestCalculateMaxQuantity() {
	tests := []struct {
		name          string
		balance       float64
		price         float64
		commissionFee commission_fee.CommissionFee
		expectedQty   float64
	}{
		{
			name:          "Simple case with no commission",
			balance:       1000.0,
			price:         100.0,
			commissionFee: commission_fee.NewZeroCommissionFee(),
			expectedQty:   10,
		},
		{
			name:          "Case with commission",
			balance:       1000.0,
			price:         100.0,
			commissionFee: commission_fee.NewInteractiveBrokerCommissionFee(),
			expectedQty:   9,
		},
		{
			name:          "Zero balance",
			balance:       0.0,
			price:         100.0,
			commissionFee: commission_fee.NewInteractiveBrokerCommissionFee(),
			expectedQty:   0,
		},
		{
			name:          "Zero price",
			balance:       1000.0,
			price:         0.0,
			commissionFee: commission_fee.NewInteractiveBrokerCommissionFee(),
			expectedQty:   0,
		},
	}

	for _, tc := range tests {
		suite.Run(tc.name, func() {
			qty := CalculateMaxQuantity(tc.balance, tc.price, tc.commissionFee)
			suite.Equal(tc.expectedQty, RoundToDecimalPrecision(qty, 0), "Quantity mismatch")
		})
	}
}

func (suite *UtilsTestSuite) TestRoundToDecimalPrecision() {
	tests := []struct {
		name      string
		quantity  float64
		precision int
		expected  float64
	}{
		{"whole units", 10.97, 0, 10},
		{"one decimal", 10.97, 1, 10.9},
		{"exact", 10, 1, 10},
		{"four decimals", 0.123456, 4, 0.1234},
	}

	for _, tc := range tests {
		suite.Run(tc.name, func() {
			suite.Equal(tc.expected, RoundToDecimalPrecision(tc.quantity, tc.precision))
		})
	}
}

func (suite *UtilsTestSuite) TestCalculatePositionSize() {
	tests := []struct {
		name      string
		equity    float64
		fraction  float64
		price     float64
		precision int
		expected  float64
	}{
		{"ten percent of ten thousand at 100", 10000, 0.1, 100, 1, 10},
		{"rounded down", 10000, 0.1, 300, 2, 3.33},
		{"zero equity", 0, 0.1, 100, 1, 0},
		{"zero price", 10000, 0.1, 0, 1, 0},
	}

	for _, tc := range tests {
		suite.Run(tc.name, func() {
			suite.Equal(tc.expected, CalculatePositionSize(tc.equity, tc.fraction, tc.price, tc.precision))
		})
	}
}

package utils

import (
	"github.com/rxtech-lab/argo-guard/internal/backtest/engine/engine_v1/commission_fee"
	"github.com/shopspring/decimal"
)

// CalculateMaxQuantity calculates the maximum quantity that can be bought with the given balance, fees included.
func CalculateMaxQuantity(balance float64, price float64, commissionFee commission_fee.CommissionFee) float64 {
	if price <= 0 || balance <= 0 {
		return 0
	}

	maxQty := balance / price

	// Usually converges quickly
	for i := 0; i < 10; i++ {
		totalCost := maxQty*price + commissionFee.Calculate(maxQty, price)
		if totalCost <= balance {
			break
		}

		adjustment := balance / totalCost
		maxQty = maxQty * adjustment
	}

	return maxQty
}

// RoundToDecimalPrecision rounds the quantity down to the specified decimal precision.
func RoundToDecimalPrecision(quantity float64, decimalPrecision int) float64 {
	return decimal.NewFromFloat(quantity).RoundFloor(int32(decimalPrecision)).InexactFloat64()
}

// CalculatePositionSize sizes an entry as a fraction of equity at the given fill price,
// rounded down to decimalPrecision. Commission is not deducted here; callers check
// affordability against the cash balance separately.
func CalculatePositionSize(equity float64, fraction float64, price float64, decimalPrecision int) float64 {
	if equity <= 0 || fraction <= 0 || price <= 0 {
		return 0
	}

	notional := decimal.NewFromFloat(equity).Mul(decimal.NewFromFloat(fraction))
	quantity := notional.Div(decimal.NewFromFloat(price))

	return quantity.RoundFloor(int32(decimalPrecision)).InexactFloat64()
}

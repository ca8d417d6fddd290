package commission_fee

import "math"

type InteractiveBrokerCommissionFee struct {
}

func NewInteractiveBrokerCommissionFee() CommissionFee {
	return &InteractiveBrokerCommissionFee{}
}

// Calculate charges 0.005 per share with a 1.0 minimum per fill.
func (c *InteractiveBrokerCommissionFee) Calculate(quantity float64, _ float64) float64 {
	fee := 0.005 * math.Abs(quantity)
	if fee < 1.0 {
		return 1.0
	}

	return fee
}

package commission_fee

import "math"

// PercentageCommissionFee charges a fraction of the fill notional, symmetric on entries and exits.
type PercentageCommissionFee struct {
	rate float64
}

// NewPercentageCommissionFee creates a commission model charging rate × notional (0.001 = 0.1%).
func NewPercentageCommissionFee(rate float64) CommissionFee {
	return &PercentageCommissionFee{rate: rate}
}

func (c *PercentageCommissionFee) Calculate(quantity float64, price float64) float64 {
	if c.rate <= 0 {
		return 0
	}

	return math.Abs(quantity) * price * c.rate
}

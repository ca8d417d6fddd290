package commission_fee

type CommissionFee interface {
	// Calculate the commission fee for a fill of quantity at price and returns the fee in quote currency
	Calculate(quantity float64, price float64) float64
}

type Broker string

const (
	// BrokerPercentage charges a fixed fraction of the fill notional on every fill.
	BrokerPercentage        Broker = "percentage"
	BrokerInteractiveBroker Broker = "interactive_broker"
	BrokerZero              Broker = "zero_commission"
)

var AllBrokers = []any{
	BrokerPercentage,
	BrokerInteractiveBroker,
	BrokerZero,
}

// GetCommissionFeeHandler returns the commission model of the broker.
// rate is only used by BrokerPercentage.
func GetCommissionFeeHandler(broker Broker, rate float64) CommissionFee {
	switch broker {
	case BrokerPercentage:
		return NewPercentageCommissionFee(rate)
	case BrokerInteractiveBroker:
		return NewInteractiveBrokerCommissionFee()
	case BrokerZero:
		return NewZeroCommissionFee()
	default:
		return NewZeroCommissionFee()
	}
}

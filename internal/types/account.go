package types

// AccountInfo is a read-only snapshot of a backtest account handed to strategies.
type AccountInfo struct {
	// Balance is the current cash balance
	Balance float64 `json:"balance" yaml:"balance"`
	// Equity is balance plus the marked value of open positions
	Equity float64 `json:"equity" yaml:"equity"`
	// InitialBalance is the capital the run started with
	InitialBalance float64 `json:"initial_balance" yaml:"initial_balance"`
	// RealizedPnL is the total realized profit/loss from closed positions
	RealizedPnL float64 `json:"realized_pnl" yaml:"realized_pnl"`
	// TotalFees is the total fees paid
	TotalFees float64 `json:"total_fees" yaml:"total_fees"`
	// TradeCount is the number of closed trades so far
	TradeCount int `json:"trade_count" yaml:"trade_count"`
}

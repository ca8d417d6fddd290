package types

import (
	"time"

	"github.com/moznion/go-optional"
	"github.com/shopspring/decimal"
)

// Exit reasons recorded on closed trades.
const (
	ExitReasonSignal        = "signal"
	ExitReasonStopLoss      = "stop_loss"
	ExitReasonTakeProfit    = "take_profit"
	ExitReasonEndOfBacktest = "end_of_backtest"
)

// Position is an open holding on one symbol inside a single backtest account.
type Position struct {
	Symbol     string
	Action     Action
	Quantity   float64
	EntryPrice float64
	EntryTime  time.Time
	// EntryFee is the commission paid when the position was opened.
	EntryFee   float64
	StopLoss   optional.Option[float64]
	TakeProfit optional.Option[float64]
	PatternID  optional.Option[string]
	Patterns   []string
}

// CostBasis is the cash spent to open the position, entry fee included.
func (p Position) CostBasis() decimal.Decimal {
	return decimal.NewFromFloat(p.Quantity).
		Mul(decimal.NewFromFloat(p.EntryPrice)).
		Add(decimal.NewFromFloat(p.EntryFee))
}

// MarketValue is the value of the position marked at the given price.
func (p Position) MarketValue(price float64) decimal.Decimal {
	return decimal.NewFromFloat(p.Quantity).Mul(decimal.NewFromFloat(price))
}

// Trade is a closed position. Trades are append-only.
type Trade struct {
	ID         string    `json:"id" yaml:"id"`
	Symbol     string    `json:"symbol" yaml:"symbol"`
	Action     Action    `json:"action" yaml:"action"`
	EntryPrice float64   `json:"entry_price" yaml:"entry_price"`
	ExitPrice  float64   `json:"exit_price" yaml:"exit_price"`
	Quantity   float64   `json:"quantity" yaml:"quantity"`
	EntryTime  time.Time `json:"entry_time" yaml:"entry_time"`
	ExitTime   time.Time `json:"exit_time" yaml:"exit_time"`
	// PnL is net of entry and exit fees.
	PnL float64 `json:"pnl" yaml:"pnl"`
	// PnLPct is PnL relative to the cost basis, in percent.
	PnLPct   float64       `json:"pnl_pct" yaml:"pnl_pct"`
	Duration time.Duration `json:"duration" yaml:"duration"`
	Reason   string        `json:"reason" yaml:"reason"`
	// PatternID is empty when the trade was not attributed to a pattern.
	PatternID string   `json:"pattern_id,omitempty" yaml:"pattern_id,omitempty"`
	Patterns  []string `json:"patterns,omitempty" yaml:"patterns,omitempty"`
	Fees      float64  `json:"fees" yaml:"fees"`
}

// HasPattern reports whether the trade carries pattern metadata.
func (t Trade) HasPattern() bool {
	return t.PatternID != "" || len(t.Patterns) > 0
}

// TradeOutcome is what a closed trade reports to attribution.
type TradeOutcome struct {
	PnL    float64 `json:"pnl" yaml:"pnl"`
	PnLPct float64 `json:"pnl_pct" yaml:"pnl_pct"`
}

package types

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Metrics summarizes a single backtest run.
type Metrics struct {
	TotalTrades   int     `json:"total_trades" yaml:"total_trades"`
	WinningTrades int     `json:"winning_trades" yaml:"winning_trades"`
	LosingTrades  int     `json:"losing_trades" yaml:"losing_trades"`
	WinRate       float64 `json:"win_rate" yaml:"win_rate"`
	NetProfit     float64 `json:"net_profit" yaml:"net_profit"`
	// NetProfitPct is NetProfit relative to the initial capital, in percent.
	NetProfitPct float64 `json:"net_profit_pct" yaml:"net_profit_pct"`
	MaxDrawdown  float64 `json:"max_drawdown" yaml:"max_drawdown"`
	// MaxDrawdownPct is the largest peak-to-trough ratio observed, in percent.
	MaxDrawdownPct float64 `json:"max_drawdown_pct" yaml:"max_drawdown_pct"`
	SharpeRatio    float64 `json:"sharpe_ratio" yaml:"sharpe_ratio"`
	// ProfitFactor is nil when the run has no losing trades.
	ProfitFactor            *float64 `json:"profit_factor" yaml:"profit_factor"`
	AvgTradeDurationSeconds float64  `json:"avg_trade_duration_seconds" yaml:"avg_trade_duration_seconds"`
	TotalFees               float64  `json:"total_fees" yaml:"total_fees"`
	FinalEquity             float64  `json:"final_equity" yaml:"final_equity"`
	// BuyAndHoldPnL is the pnl of holding the initial capital from the first open to the last close.
	BuyAndHoldPnL float64 `json:"buy_and_hold_pnl" yaml:"buy_and_hold_pnl"`
}

// EquityPoint is the marked equity after a candle was processed.
type EquityPoint struct {
	Time     time.Time `json:"time" yaml:"time"`
	Equity   float64   `json:"equity" yaml:"equity"`
	Drawdown float64   `json:"drawdown" yaml:"drawdown"`
}

// Result is the read-only outcome of a backtest run.
type Result struct {
	// ID is a content hash of the run inputs. Identical inputs yield identical ids.
	ID             string        `json:"id" yaml:"id"`
	StrategyID     string        `json:"strategy_id" yaml:"strategy_id"`
	Symbol         string        `json:"symbol" yaml:"symbol"`
	Timeframe      Timeframe     `json:"timeframe" yaml:"timeframe"`
	StartTime      time.Time     `json:"start_time" yaml:"start_time"`
	EndTime        time.Time     `json:"end_time" yaml:"end_time"`
	InitialCapital float64       `json:"initial_capital" yaml:"initial_capital"`
	Metrics        Metrics       `json:"metrics" yaml:"metrics"`
	Trades         []Trade       `json:"trades" yaml:"trades"`
	EquityCurve    []EquityPoint `json:"-" yaml:"-"`
	Warnings       []string      `json:"warnings,omitempty" yaml:"warnings,omitempty"`
	CreatedAt      time.Time     `json:"created_at" yaml:"created_at"`
}

// WriteResults writes the results as a YAML document to path.
func WriteResults(path string, results []Result) error {
	data, err := yaml.Marshal(results)
	if err != nil {
		return fmt.Errorf("failed to marshal results to YAML: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write results to file: %w", err)
	}

	return nil
}

package types

import (
	"fmt"
	"os"
	"time"

	"github.com/moznion/go-optional"
	"gopkg.in/yaml.v3"
)

// DateLayout is the layout of DailyRiskStats.Date.
const DateLayout = "2006-01-02"

// OpenPositionStats is the running-average ledger entry of one live symbol.
type OpenPositionStats struct {
	Quantity float64 `yaml:"quantity" json:"quantity"`
	AvgPrice float64 `yaml:"avg_price" json:"avg_price"`
}

// DailyRiskStats is the day-scoped state the risk engine gates orders with.
type DailyRiskStats struct {
	Date          string                       `yaml:"date" json:"date"`
	TotalPnL      float64                      `yaml:"total_pnl" json:"total_pnl"`
	TradeCount    int                          `yaml:"trade_count" json:"trade_count"`
	OpenPositions map[string]OpenPositionStats `yaml:"open_positions" json:"open_positions"`
	LastUpdated   time.Time                    `yaml:"last_updated" json:"last_updated"`
}

// NewDailyRiskStats returns zeroed stats for the given date.
func NewDailyRiskStats(date string) DailyRiskStats {
	return DailyRiskStats{
		Date:          date,
		TotalPnL:      0,
		TradeCount:    0,
		OpenPositions: make(map[string]OpenPositionStats),
		LastUpdated:   time.Time{},
	}
}

// Clone returns a deep copy so callers never share the open-positions map.
func (s DailyRiskStats) Clone() DailyRiskStats {
	positions := make(map[string]OpenPositionStats, len(s.OpenPositions))
	for symbol, p := range s.OpenPositions {
		positions[symbol] = p
	}

	s.OpenPositions = positions

	return s
}

// RiskLimits configures the checks of the risk engine.
type RiskLimits struct {
	// Disabled turns the whole engine off. A disabled engine allows every order.
	Disabled bool `yaml:"disabled" json:"disabled" jsonschema:"title=Disabled,default=false"`
	// TradingEnabled is the kill switch.
	TradingEnabled         bool    `yaml:"trading_enabled" json:"trading_enabled" jsonschema:"title=Trading Enabled,default=true"`
	MaxDailyLossPercent    float64 `yaml:"max_daily_loss_percent" json:"max_daily_loss_percent" validate:"gt=0,lte=100" jsonschema:"title=Max Daily Loss Percent,minimum=0,maximum=100"`
	MaxPositionSizePercent float64 `yaml:"max_position_size_percent" json:"max_position_size_percent" validate:"gt=0,lte=100" jsonschema:"title=Max Position Size Percent,minimum=0,maximum=100"`
	MaxOpenPositions       int     `yaml:"max_open_positions" json:"max_open_positions" validate:"gt=0" jsonschema:"title=Max Open Positions,minimum=1"`
	RequireStopLoss        bool    `yaml:"require_stop_loss" json:"require_stop_loss" jsonschema:"title=Require Stop Loss"`
	RequireTakeProfit      bool    `yaml:"require_take_profit" json:"require_take_profit" jsonschema:"title=Require Take Profit"`
	// MaxStopLossDistancePercent caps the stop-loss width relative to the order price. Zero means 10.
	MaxStopLossDistancePercent float64 `yaml:"max_stop_loss_distance_percent" json:"max_stop_loss_distance_percent" validate:"gt=0,lte=100" jsonschema:"title=Max Stop Loss Distance Percent,default=10"`
}

// DefaultMaxStopLossDistancePercent is the stop-loss width cap used when none is set.
const DefaultMaxStopLossDistancePercent = 10.0

// WithDefaults fills unset optional limits.
func (l RiskLimits) WithDefaults() RiskLimits {
	if l.MaxStopLossDistancePercent == 0 {
		l.MaxStopLossDistancePercent = DefaultMaxStopLossDistancePercent
	}

	return l
}

// OrderIntent is a live order awaiting a risk decision.
type OrderIntent struct {
	Symbol     string                   `validate:"required"`
	Action     Action                   `validate:"required,oneof=BUY SELL CLOSE"`
	Quantity   float64                  `validate:"ne=0"`
	Price      float64                  `validate:"gt=0"`
	StopLoss   optional.Option[float64] `validate:"-"`
	TakeProfit optional.Option[float64] `validate:"-"`
}

// RiskDecision is the outcome of a risk check. A rejection is a value, not an error.
type RiskDecision struct {
	Allowed bool   `yaml:"allowed" json:"allowed"`
	Reason  string `yaml:"reason" json:"reason"`
}

// Allow returns an allowing decision.
func Allow(reason string) RiskDecision {
	return RiskDecision{Allowed: true, Reason: reason}
}

// Reject returns a rejecting decision.
func Reject(format string, args ...any) RiskDecision {
	return RiskDecision{Allowed: false, Reason: fmt.Sprintf(format, args...)}
}

// RealizedTrade is a live fill reported back to the risk engine.
type RealizedTrade struct {
	Symbol   string    `yaml:"symbol" json:"symbol"`
	Action   Action    `yaml:"action" json:"action"`
	Quantity float64   `yaml:"quantity" json:"quantity"`
	Price    float64   `yaml:"price" json:"price"`
	PnL      float64   `yaml:"pnl" json:"pnl"`
	Time     time.Time `yaml:"time" json:"time"`
}

// WriteDailyRiskStats writes the stats as a YAML document to path.
func WriteDailyRiskStats(path string, stats DailyRiskStats) error {
	data, err := yaml.Marshal(stats)
	if err != nil {
		return fmt.Errorf("failed to marshal daily risk stats to YAML: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write daily risk stats to file: %w", err)
	}

	return nil
}

// ReadDailyRiskStats reads stats written by WriteDailyRiskStats.
func ReadDailyRiskStats(path string) (DailyRiskStats, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return DailyRiskStats{}, err
	}

	var stats DailyRiskStats
	if err := yaml.Unmarshal(data, &stats); err != nil {
		return DailyRiskStats{}, fmt.Errorf("failed to unmarshal daily risk stats: %w", err)
	}

	if stats.OpenPositions == nil {
		stats.OpenPositions = make(map[string]OpenPositionStats)
	}

	return stats, nil
}

package strategy

import (
	"fmt"

	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-guard/internal/indicator"
	"github.com/rxtech-lab/argo-guard/internal/types"
)

var SMACrossoverInfo = Info{
	Name:        "sma_crossover",
	Version:     "1.0.0",
	Description: "Buys when the fast SMA crosses above the slow SMA and sells on the opposite cross",
	Config:      SMACrossoverConfig{},
}

type SMACrossoverConfig struct {
	FastPeriod int `yaml:"fast_period" json:"fast_period" validate:"gt=0" jsonschema:"title=Fast Period,default=10"`
	SlowPeriod int `yaml:"slow_period" json:"slow_period" validate:"gtfield=FastPeriod" jsonschema:"title=Slow Period,default=30"`
	// StopLossPct places the stop this fraction below the signal close. 0 disables it.
	StopLossPct float64 `yaml:"stop_loss_pct" json:"stop_loss_pct" validate:"gte=0,lt=1" jsonschema:"title=Stop Loss Pct"`
	// TakeProfitPct places the target this fraction above the signal close. 0 disables it.
	TakeProfitPct float64 `yaml:"take_profit_pct" json:"take_profit_pct" validate:"gte=0" jsonschema:"title=Take Profit Pct"`
	PatternID     string  `yaml:"pattern_id" json:"pattern_id" jsonschema:"title=Pattern ID"`
}

// SMACrossover is a stateless moving-average crossover strategy.
type SMACrossover struct {
	config SMACrossoverConfig
}

func NewSMACrossover(config SMACrossoverConfig) *SMACrossover {
	return &SMACrossover{config: config}
}

// NewSMACrossoverFromConfig implements Factory.
func NewSMACrossoverFromConfig(config string) (Strategy, error) {
	cfg := SMACrossoverConfig{
		FastPeriod: 10,
		SlowPeriod: 30,
	}

	if err := decodeConfig(config, &cfg); err != nil {
		return nil, err
	}

	return NewSMACrossover(cfg), nil
}

func (s *SMACrossover) ID() string {
	return fmt.Sprintf("%s_%d_%d_%s", SMACrossoverInfo.Name, s.config.FastPeriod, s.config.SlowPeriod, configHash(s.config))
}

func (s *SMACrossover) GenerateSignal(candle types.Candle, state State) (optional.Option[types.Signal], error) {
	history := state.History
	if len(history) < s.config.SlowPeriod+1 {
		return optional.None[types.Signal](), nil
	}

	previous := history[:len(history)-1]

	fastNow, err := indicator.SMA(history, s.config.FastPeriod)
	if err != nil {
		return optional.None[types.Signal](), err
	}

	slowNow, err := indicator.SMA(history, s.config.SlowPeriod)
	if err != nil {
		return optional.None[types.Signal](), err
	}

	fastPrev, err := indicator.SMA(previous, s.config.FastPeriod)
	if err != nil {
		return optional.None[types.Signal](), err
	}

	slowPrev, err := indicator.SMA(previous, s.config.SlowPeriod)
	if err != nil {
		return optional.None[types.Signal](), err
	}

	crossedUp := fastPrev <= slowPrev && fastNow > slowNow
	crossedDown := fastPrev >= slowPrev && fastNow < slowNow

	switch {
	case crossedUp && state.Position.IsNone():
		signal := types.NewBuySignal(1, s.protectiveLevel(candle.Close, -s.config.StopLossPct), s.protectiveLevel(candle.Close, s.config.TakeProfitPct))
		signal.Reason = "fast SMA crossed above slow SMA"

		if s.config.PatternID != "" {
			signal = signal.WithPattern(s.config.PatternID)
		}

		return optional.Some(signal), nil
	case crossedDown && state.Position.IsSome():
		signal := types.NewSellSignal(1)
		signal.Reason = "fast SMA crossed below slow SMA"

		return optional.Some(signal), nil
	default:
		return optional.None[types.Signal](), nil
	}
}

func (s *SMACrossover) protectiveLevel(price float64, pct float64) optional.Option[float64] {
	if pct == 0 {
		return optional.None[float64]()
	}

	return optional.Some(price * (1 + pct))
}

func (s *SMACrossover) ValidateSignal(signal types.Signal) bool {
	return signal.Validate() == nil
}

func (s *SMACrossover) Reset() {}

func (s *SMACrossover) GetConfig() map[string]any {
	return toMap(s.config)
}

func (s *SMACrossover) Clone() Strategy {
	return NewSMACrossover(s.config)
}

package strategy

import (
	"fmt"

	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-guard/internal/indicator"
	"github.com/rxtech-lab/argo-guard/internal/types"
)

var RSIReversionInfo = Info{
	Name:        "rsi_reversion",
	Version:     "1.0.0",
	Description: "Buys oversold RSI readings and closes on overbought readings",
	Config:      RSIReversionConfig{},
}

type RSIReversionConfig struct {
	Period     int     `yaml:"period" json:"period" validate:"gt=1" jsonschema:"title=Period,default=14"`
	Oversold   float64 `yaml:"oversold" json:"oversold" validate:"gt=0,lt=100" jsonschema:"title=Oversold,default=30"`
	Overbought float64 `yaml:"overbought" json:"overbought" validate:"gtfield=Oversold,lt=100" jsonschema:"title=Overbought,default=70"`
	// ATRStopMultiple places the stop this many ATRs below the signal close. 0 disables it.
	ATRStopMultiple float64 `yaml:"atr_stop_multiple" json:"atr_stop_multiple" validate:"gte=0" jsonschema:"title=ATR Stop Multiple"`
	PatternID       string  `yaml:"pattern_id" json:"pattern_id" jsonschema:"title=Pattern ID"`
}

// RSIReversion is a mean-reversion strategy on Wilder's RSI.
type RSIReversion struct {
	config RSIReversionConfig
}

func NewRSIReversion(config RSIReversionConfig) *RSIReversion {
	return &RSIReversion{config: config}
}

// NewRSIReversionFromConfig implements Factory.
func NewRSIReversionFromConfig(config string) (Strategy, error) {
	cfg := RSIReversionConfig{
		Period:     14,
		Oversold:   30,
		Overbought: 70,
	}

	if err := decodeConfig(config, &cfg); err != nil {
		return nil, err
	}

	return NewRSIReversion(cfg), nil
}

func (s *RSIReversion) ID() string {
	return fmt.Sprintf("%s_%d_%g_%g_%s", RSIReversionInfo.Name, s.config.Period, s.config.Oversold, s.config.Overbought, configHash(s.config))
}

func (s *RSIReversion) GenerateSignal(candle types.Candle, state State) (optional.Option[types.Signal], error) {
	if len(state.History) < s.config.Period+1 {
		return optional.None[types.Signal](), nil
	}

	rsi, err := indicator.RSI(state.History, s.config.Period)
	if err != nil {
		return optional.None[types.Signal](), err
	}

	if rsi < s.config.Oversold && state.Position.IsNone() {
		stopLoss := optional.None[float64]()

		if s.config.ATRStopMultiple > 0 {
			atr, err := indicator.ATR(state.History, s.config.Period)
			if err != nil {
				return optional.None[types.Signal](), err
			}

			if level := candle.Close - atr*s.config.ATRStopMultiple; level > 0 {
				stopLoss = optional.Some(level)
			}
		}

		signal := types.NewBuySignal((s.config.Oversold-rsi)/s.config.Oversold, stopLoss, optional.None[float64]())
		signal.Reason = fmt.Sprintf("RSI %.2f below %.2f", rsi, s.config.Oversold)

		if s.config.PatternID != "" {
			signal = signal.WithPattern(s.config.PatternID)
		}

		return optional.Some(signal), nil
	}

	if rsi > s.config.Overbought && state.Position.IsSome() {
		return optional.Some(types.NewCloseSignal(fmt.Sprintf("RSI %.2f above %.2f", rsi, s.config.Overbought))), nil
	}

	return optional.None[types.Signal](), nil
}

func (s *RSIReversion) ValidateSignal(signal types.Signal) bool {
	return signal.Validate() == nil
}

func (s *RSIReversion) Reset() {}

func (s *RSIReversion) GetConfig() map[string]any {
	return toMap(s.config)
}

func (s *RSIReversion) Clone() Strategy {
	return NewRSIReversion(s.config)
}

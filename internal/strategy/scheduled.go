package strategy

import (
	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-guard/internal/types"
)

var ScheduledInfo = Info{
	Name:        "scheduled",
	Version:     "1.0.0",
	Description: "Emits a fixed list of signals at given candle indices, for replays and tests",
	Config:      ScheduledConfig{},
}

type ScheduledSignal struct {
	Index      int          `yaml:"index" json:"index" validate:"gte=0"`
	Action     types.Action `yaml:"action" json:"action" validate:"oneof=BUY SELL CLOSE"`
	Confidence float64      `yaml:"confidence" json:"confidence" validate:"gte=0,lte=1"`
	StopLoss   *float64     `yaml:"stop_loss" json:"stop_loss"`
	TakeProfit *float64     `yaml:"take_profit" json:"take_profit"`
	Reason     string       `yaml:"reason" json:"reason"`
	PatternID  string       `yaml:"pattern_id" json:"pattern_id"`
}

type ScheduledConfig struct {
	Name    string            `yaml:"name" json:"name" validate:"required"`
	Signals []ScheduledSignal `yaml:"signals" json:"signals" validate:"dive"`
}

// Scheduled replays a predetermined list of signals keyed by candle index.
type Scheduled struct {
	config  ScheduledConfig
	byIndex map[int]types.Signal
}

func NewScheduled(config ScheduledConfig) *Scheduled {
	byIndex := make(map[int]types.Signal, len(config.Signals))

	for _, s := range config.Signals {
		signal := types.Signal{
			Action:     s.Action,
			Confidence: s.Confidence,
			StopLoss:   optional.FromNillable(s.StopLoss),
			TakeProfit: optional.FromNillable(s.TakeProfit),
			Reason:     s.Reason,
			Metadata:   nil,
		}

		if s.PatternID != "" {
			signal = signal.WithPattern(s.PatternID)
		}

		byIndex[s.Index] = signal
	}

	return &Scheduled{config: config, byIndex: byIndex}
}

// NewScheduledFromConfig implements Factory.
func NewScheduledFromConfig(config string) (Strategy, error) {
	cfg := ScheduledConfig{Name: ScheduledInfo.Name}

	if err := decodeConfig(config, &cfg); err != nil {
		return nil, err
	}

	return NewScheduled(cfg), nil
}

func (s *Scheduled) ID() string {
	return s.config.Name + "_" + configHash(s.config.Signals)
}

func (s *Scheduled) GenerateSignal(_ types.Candle, state State) (optional.Option[types.Signal], error) {
	if signal, ok := s.byIndex[state.Index]; ok {
		return optional.Some(signal), nil
	}

	return optional.None[types.Signal](), nil
}

func (s *Scheduled) ValidateSignal(signal types.Signal) bool {
	return signal.Validate() == nil
}

func (s *Scheduled) Reset() {}

func (s *Scheduled) GetConfig() map[string]any {
	return toMap(s.config)
}

func (s *Scheduled) Clone() Strategy {
	return NewScheduled(s.config)
}

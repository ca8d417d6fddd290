package types

import (
	"strings"

	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-guard/pkg/errors"
)

// Action is the side of a signal, a position, an order intent or a realized trade.
type Action string

const (
	ActionBuy   Action = "BUY"
	ActionSell  Action = "SELL"
	ActionClose Action = "CLOSE"
)

const (
	// MetadataPatternID carries the id of the pattern that produced a signal.
	MetadataPatternID = "pattern_id"
	// MetadataPatterns carries a comma separated list of contributing pattern ids.
	MetadataPatterns = "patterns"
)

// Signal is what a strategy emits for one candle. The absence of a signal
// (optional.None) means no action for that candle.
type Signal struct {
	Action     Action
	Confidence float64
	// StopLoss is the protective exit level. Only meaningful for entries.
	StopLoss optional.Option[float64]
	// TakeProfit is the profit target level. Only meaningful for entries.
	TakeProfit optional.Option[float64]
	// Reason is a free-form explanation, used as the trade reason on CLOSE.
	Reason   string
	Metadata map[string]string
}

// NewBuySignal builds a BUY signal with optional protective levels.
func NewBuySignal(confidence float64, stopLoss, takeProfit optional.Option[float64]) Signal {
	return Signal{
		Action:     ActionBuy,
		Confidence: confidence,
		StopLoss:   stopLoss,
		TakeProfit: takeProfit,
		Reason:     "",
		Metadata:   nil,
	}
}

// NewSellSignal builds a SELL signal.
func NewSellSignal(confidence float64) Signal {
	return Signal{
		Action:     ActionSell,
		Confidence: confidence,
		StopLoss:   optional.None[float64](),
		TakeProfit: optional.None[float64](),
		Reason:     "",
		Metadata:   nil,
	}
}

// NewCloseSignal builds a CLOSE signal with the given reason.
func NewCloseSignal(reason string) Signal {
	return Signal{
		Action:     ActionClose,
		Confidence: 1,
		StopLoss:   optional.None[float64](),
		TakeProfit: optional.None[float64](),
		Reason:     reason,
		Metadata:   nil,
	}
}

// WithPattern returns a copy of the signal tagged with the given pattern id.
func (s Signal) WithPattern(patternID string) Signal {
	metadata := make(map[string]string, len(s.Metadata)+1)
	for k, v := range s.Metadata {
		metadata[k] = v
	}

	metadata[MetadataPatternID] = patternID
	s.Metadata = metadata

	return s
}

// PatternID returns the pattern id carried in the metadata, if any.
func (s Signal) PatternID() optional.Option[string] {
	if id, ok := s.Metadata[MetadataPatternID]; ok && id != "" {
		return optional.Some(id)
	}

	return optional.None[string]()
}

// Patterns returns every pattern id referenced by the signal, primary id first.
func (s Signal) Patterns() []string {
	var patterns []string

	if id := s.PatternID(); id.IsSome() {
		patterns = append(patterns, id.Unwrap())
	}

	for _, p := range strings.Split(s.Metadata[MetadataPatterns], ",") {
		p = strings.TrimSpace(p)
		if p == "" || (len(patterns) > 0 && p == patterns[0]) {
			continue
		}

		patterns = append(patterns, p)
	}

	return patterns
}

// Validate checks the structural soundness of the signal.
func (s Signal) Validate() error {
	switch s.Action {
	case ActionBuy, ActionSell, ActionClose:
	default:
		return errors.Newf(errors.ErrCodeInvalidSignal, "unknown signal action: %q", string(s.Action))
	}

	if s.Confidence < 0 || s.Confidence > 1 {
		return errors.Newf(errors.ErrCodeInvalidSignal, "confidence must be within [0, 1], got %f", s.Confidence)
	}

	if s.StopLoss.IsSome() && s.StopLoss.Unwrap() <= 0 {
		return errors.New(errors.ErrCodeInvalidSignal, "stop loss must be positive")
	}

	if s.TakeProfit.IsSome() && s.TakeProfit.Unwrap() <= 0 {
		return errors.New(errors.ErrCodeInvalidSignal, "take profit must be positive")
	}

	return nil
}

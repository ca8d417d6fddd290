package strategy

import (
	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-guard/internal/types"
)

// State is the read-only view a strategy gets for the candle being processed.
type State struct {
	Symbol    string
	Timeframe types.Timeframe
	// Index is the position of the current candle in the replayed sequence.
	Index int
	// History holds candles 0..Index inclusive. It is capacity-clipped, so
	// appending to it can never reveal later candles.
	History []types.Candle
	// Position is the open position on Symbol, if any.
	Position optional.Option[types.Position]
	Account  types.AccountInfo
}

// Strategy generates signals one candle at a time.
type Strategy interface {
	// ID identifies the strategy and its configuration. It feeds the deterministic result id.
	ID() string
	// GenerateSignal returns the signal for the current candle, or None for no action.
	// Returning an error aborts the run.
	GenerateSignal(candle types.Candle, state State) (optional.Option[types.Signal], error)
	// ValidateSignal reports whether a generated signal may be acted upon.
	ValidateSignal(signal types.Signal) bool
	// Reset clears any state accumulated during a run.
	Reset()
	// GetConfig returns the strategy configuration.
	GetConfig() map[string]any
	// Clone returns a fresh instance of the same type and configuration that shares no mutable state.
	Clone() Strategy
}

// Package attribution reports the outcome of pattern-tagged trades to the pattern-learning side.
package attribution

import (
	"context"
	"strings"
	"time"

	"github.com/rxtech-lab/argo-guard/internal/logger"
	"github.com/rxtech-lab/argo-guard/internal/types"
	"github.com/rxtech-lab/argo-guard/pkg/errors"
	"go.uber.org/zap"
)

// Event is the record published for one attributed trade.
type Event struct {
	EventID    string    `json:"event_id"`
	TradeID    string    `json:"trade_id"`
	Patterns   []string  `json:"patterns"`
	PnL        float64   `json:"pnl"`
	PnLPct     float64   `json:"pnl_pct"`
	Win        bool      `json:"win"`
	OccurredAt time.Time `json:"occurred_at"`
}

func newEvent(eventID string, tradeID string, patterns []string, outcome types.TradeOutcome, now time.Time) (Event, error) {
	if strings.TrimSpace(tradeID) == "" {
		return Event{}, errors.New(errors.ErrCodeMissingParameter, "trade id is required")
	}

	cleaned := make([]string, 0, len(patterns))
	for _, p := range patterns {
		if p = strings.TrimSpace(p); p != "" {
			cleaned = append(cleaned, p)
		}
	}

	if len(cleaned) == 0 {
		return Event{}, errors.Newf(errors.ErrCodeMissingParameter, "trade %s has no patterns to attribute", tradeID)
	}

	return Event{
		EventID:    eventID,
		TradeID:    tradeID,
		Patterns:   cleaned,
		PnL:        outcome.PnL,
		PnLPct:     outcome.PnLPct,
		Win:        outcome.PnL > 0,
		OccurredAt: now.UTC(),
	}, nil
}

// LogAttributor writes attributions to the log. It never fails on valid input.
type LogAttributor struct {
	log *logger.Logger
}

func NewLogAttributor(log *logger.Logger) *LogAttributor {
	if log == nil {
		log = logger.NewNopLogger()
	}

	return &LogAttributor{log: log}
}

// AttributeTrade implements engine.TradeAttributor.
func (a *LogAttributor) AttributeTrade(_ context.Context, tradeID string, patterns []string, outcome types.TradeOutcome) error {
	event, err := newEvent("", tradeID, patterns, outcome, time.Now())
	if err != nil {
		return err
	}

	a.log.Info("Trade attributed",
		zap.String("trade_id", event.TradeID),
		zap.Strings("patterns", event.Patterns),
		zap.Float64("pnl", event.PnL),
		zap.Float64("pnl_pct", event.PnLPct),
		zap.Bool("win", event.Win),
	)

	return nil
}

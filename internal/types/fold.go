package types

import (
	"time"

	"github.com/moznion/go-optional"
)

// Fold is one train/test window pair of a walk-forward run. Folds are immutable once produced.
type Fold struct {
	ID               string    `json:"id" yaml:"id"`
	StrategyID       string    `json:"strategy_id" yaml:"strategy_id"`
	Symbol           string    `json:"symbol" yaml:"symbol"`
	Timeframe        Timeframe `json:"timeframe" yaml:"timeframe"`
	FoldNumber       int       `json:"fold_number" yaml:"fold_number"`
	TrainStart       time.Time `json:"train_start" yaml:"train_start"`
	TrainEnd         time.Time `json:"train_end" yaml:"train_end"`
	TestStart        time.Time `json:"test_start" yaml:"test_start"`
	TestEnd          time.Time `json:"test_end" yaml:"test_end"`
	TrainPerformance Metrics   `json:"train_performance" yaml:"train_performance"`
	TestPerformance  Metrics   `json:"test_performance" yaml:"test_performance"`
	Degraded         bool      `json:"degraded" yaml:"degraded"`
}

// WalkForwardAggregate summarizes the out-of-sample performance across folds.
type WalkForwardAggregate struct {
	FoldCount       int                      `json:"fold_count" yaml:"fold_count"`
	MeanTestSharpe  optional.Option[float64] `json:"mean_test_sharpe" yaml:"mean_test_sharpe"`
	MeanTestWinRate optional.Option[float64] `json:"mean_test_win_rate" yaml:"mean_test_win_rate"`
	// MeanTestReturnPct is None when no fold produced a finite return.
	MeanTestReturnPct      optional.Option[float64] `json:"mean_test_return_pct" yaml:"mean_test_return_pct"`
	DegradationCount       int                      `json:"degradation_count" yaml:"degradation_count"`
	DegradationRate        float64                  `json:"degradation_rate" yaml:"degradation_rate"`
	DegradationDetected    bool                     `json:"degradation_detected" yaml:"degradation_detected"`
	MaxConsecutiveDegraded int                      `json:"max_consecutive_degraded" yaml:"max_consecutive_degraded"`
}

// WalkForwardResult is the outcome of a walk-forward validation.
type WalkForwardResult struct {
	StrategyID string               `json:"strategy_id" yaml:"strategy_id"`
	Symbol     string               `json:"symbol" yaml:"symbol"`
	Timeframe  Timeframe            `json:"timeframe" yaml:"timeframe"`
	Folds      []Fold               `json:"folds" yaml:"folds"`
	Aggregate  WalkForwardAggregate `json:"aggregate" yaml:"aggregate"`
	Warnings   []string             `json:"warnings,omitempty" yaml:"warnings,omitempty"`
}

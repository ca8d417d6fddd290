package walkforward

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-guard/internal/backtest/engine"
	"github.com/rxtech-lab/argo-guard/internal/logger"
	"github.com/rxtech-lab/argo-guard/internal/strategy"
	"github.com/rxtech-lab/argo-guard/internal/types"
	"github.com/rxtech-lab/argo-guard/internal/utils"
	"github.com/rxtech-lab/argo-guard/pkg/errors"
	"go.uber.org/zap"
)

// consecutiveDegradedThreshold is the run of degraded folds that flags the strategy.
const consecutiveDegradedThreshold = 2

// WalkForwardParams describe a rolling train/test validation. Window sizes are calendar days.
type WalkForwardParams struct {
	Symbol         string          `validate:"required" yaml:"symbol"`
	Timeframe      types.Timeframe `validate:"required" yaml:"timeframe"`
	TrainDays      int             `validate:"gt=0" yaml:"train_days"`
	TestDays       int             `validate:"gt=0" yaml:"test_days"`
	StepDays       int             `validate:"gt=0" yaml:"step_days"`
	StartDate      time.Time       `validate:"required" yaml:"start_date"`
	EndDate        time.Time       `validate:"required" yaml:"end_date"`
	InitialCapital float64         `validate:"gt=0" yaml:"initial_capital"`
}

// Window is one train/test pair. Both ranges are half-open: [Start, End).
type Window struct {
	Number     int
	TrainStart time.Time
	TrainEnd   time.Time
	TestStart  time.Time
	TestEnd    time.Time
}

// Validator runs walk-forward validations on top of a backtest engine.
type Validator struct {
	engine   engine.Engine
	store    engine.ResultStore
	log      *logger.Logger
	validate *validator.Validate
}

func NewValidator(backtester engine.Engine, log *logger.Logger) *Validator {
	if log == nil {
		log = logger.NewNopLogger()
	}

	return &Validator{
		engine:   backtester,
		store:    nil,
		log:      log,
		validate: validator.New(),
	}
}

// SetResultStore sets where folds are saved. Saving is best effort.
func (v *Validator) SetResultStore(store engine.ResultStore) {
	v.store = store
}

// Windows returns the train/test windows that fit inside [StartDate, EndDate].
func Windows(params WalkForwardParams) []Window {
	var windows []Window

	if params.TrainDays <= 0 || params.TestDays <= 0 || params.StepDays <= 0 {
		return windows
	}

	for cur := params.StartDate; !cur.AddDate(0, 0, params.TrainDays+params.TestDays).After(params.EndDate); cur = cur.AddDate(0, 0, params.StepDays) {
		trainEnd := cur.AddDate(0, 0, params.TrainDays)

		windows = append(windows, Window{
			Number:     len(windows) + 1,
			TrainStart: cur,
			TrainEnd:   trainEnd,
			TestStart:  trainEnd,
			TestEnd:    trainEnd.AddDate(0, 0, params.TestDays),
		})
	}

	return windows
}

// FoldID is the deterministic id of a fold.
func FoldID(strategyID string, symbol string, timeframe types.Timeframe, foldNumber int) string {
	return utils.ContentHash(strategyID, symbol, string(timeframe), strconv.Itoa(foldNumber))
}

// RunWalkForward backtests every window twice, once on the train range and once on the
// test range, each with a fresh clone of strat. Windows whose data is missing are skipped.
func (v *Validator) RunWalkForward(ctx context.Context, strat strategy.Strategy, params WalkForwardParams, callbacks engine.LifecycleCallbacks) (types.WalkForwardResult, error) {
	if err := v.validateParams(strat, params); err != nil {
		return types.WalkForwardResult{}, err
	}

	windows := Windows(params)
	strategyID := strat.ID()

	result := types.WalkForwardResult{
		StrategyID: strategyID,
		Symbol:     params.Symbol,
		Timeframe:  params.Timeframe,
		Folds:      []types.Fold{},
		Aggregate:  types.WalkForwardAggregate{},
		Warnings:   nil,
	}

	v.log.Info("Starting walk-forward validation",
		zap.String("strategy", strategyID),
		zap.String("symbol", params.Symbol),
		zap.Int("windows", len(windows)),
	)

	for i, window := range windows {
		if err := ctx.Err(); err != nil {
			return types.WalkForwardResult{}, err
		}

		fold, warning, err := v.evaluate(ctx, strat, params, strategyID, window)
		if err != nil {
			return types.WalkForwardResult{}, err
		}

		if fold.IsSome() {
			result.Folds = append(result.Folds, fold.Unwrap())
			v.save(ctx, fold.Unwrap(), &result)
		} else {
			result.Warnings = append(result.Warnings, warning)
		}

		// skipped windows count toward progress
		if err := callbacks.ProcessData(i+1, len(windows)); err != nil {
			return types.WalkForwardResult{}, err
		}
	}

	if len(result.Folds) == 0 {
		cause := errors.NewInsufficientDataErrorf(params.TrainDays+params.TestDays, 0, params.Symbol,
			"no walk-forward fold could be evaluated between %s and %s",
			params.StartDate.Format(time.RFC3339), params.EndDate.Format(time.RFC3339))

		return types.WalkForwardResult{}, errors.Wrap(errors.ErrCodeInsufficientData, "walk-forward produced zero folds", cause)
	}

	result.Aggregate = Aggregate(result.Folds)

	v.log.Info("Walk-forward validation finished",
		zap.String("strategy", strategyID),
		zap.Int("folds", result.Aggregate.FoldCount),
		zap.Int("degraded", result.Aggregate.DegradationCount),
		zap.Bool("degradation_detected", result.Aggregate.DegradationDetected),
	)

	return result, nil
}

// IsDegraded reports whether out-of-sample metrics lost money or had a negative Sharpe ratio.
func IsDegraded(test types.Metrics) bool {
	return test.SharpeRatio < 0 || test.NetProfitPct < 0
}

// Aggregate summarizes folds in order. Non-finite samples are left out of the means.
func Aggregate(folds []types.Fold) types.WalkForwardAggregate {
	sharpes := make([]float64, 0, len(folds))
	winRates := make([]float64, 0, len(folds))
	returns := make([]float64, 0, len(folds))

	aggregate := types.WalkForwardAggregate{FoldCount: len(folds)}
	consecutive := 0

	for _, fold := range folds {
		sharpes = append(sharpes, fold.TestPerformance.SharpeRatio)
		winRates = append(winRates, fold.TestPerformance.WinRate)
		returns = append(returns, fold.TestPerformance.NetProfitPct)

		if !fold.Degraded {
			consecutive = 0

			continue
		}

		aggregate.DegradationCount++
		consecutive++

		if consecutive > aggregate.MaxConsecutiveDegraded {
			aggregate.MaxConsecutiveDegraded = consecutive
		}
	}

	aggregate.DegradationDetected = aggregate.MaxConsecutiveDegraded >= consecutiveDegradedThreshold
	aggregate.MeanTestSharpe = finiteMean(sharpes)
	aggregate.MeanTestWinRate = finiteMean(winRates)
	aggregate.MeanTestReturnPct = finiteMean(returns)

	if len(folds) > 0 {
		aggregate.DegradationRate = float64(aggregate.DegradationCount) / float64(len(folds))
	}

	return aggregate
}

func finiteMean(values []float64) optional.Option[float64] {
	mean, ok := utils.FiniteMean(values)
	if !ok {
		return optional.None[float64]()
	}

	return optional.Some(mean)
}

func (v *Validator) validateParams(strat strategy.Strategy, params WalkForwardParams) error {
	if strat == nil {
		return errors.New(errors.ErrCodeMissingParameter, "strategy is required")
	}

	if v.engine == nil {
		return errors.New(errors.ErrCodeBacktestInitFailed, "no backtest engine set")
	}

	if err := v.validate.Struct(params); err != nil {
		var fieldErrors validator.ValidationErrors
		if errors.As(err, &fieldErrors) {
			for _, fieldError := range fieldErrors {
				switch fieldError.Field() {
				case "TrainDays", "TestDays", "StepDays":
					return errors.Wrap(errors.ErrCodeInvalidWindow, "train, test and step days must be positive", err)
				}
			}
		}

		return errors.Wrap(errors.ErrCodeMissingParameter, "invalid walk-forward parameters", err)
	}

	if _, err := params.Timeframe.Duration(); err != nil {
		return err
	}

	if !params.EndDate.After(params.StartDate) {
		return errors.Newf(errors.ErrCodeInvalidDateRange, "end date %s must be after start date %s",
			params.EndDate.Format(time.RFC3339), params.StartDate.Format(time.RFC3339))
	}

	return nil
}

// run backtests [start, end) on a fresh clone of strat.
func (v *Validator) run(ctx context.Context, strat strategy.Strategy, params WalkForwardParams, start time.Time, end time.Time) (types.Result, error) {
	return v.engine.RunBacktest(ctx, strat.Clone(), engine.BacktestParams{
		Symbol:         params.Symbol,
		Timeframe:      params.Timeframe,
		StartDate:      start,
		EndDate:        end.Add(-time.Nanosecond),
		InitialCapital: params.InitialCapital,
	}, engine.LifecycleCallbacks{})
}

// evaluate backtests one window. A data error on either range skips the window and
// returns the warning instead of a fold.
func (v *Validator) evaluate(ctx context.Context, strat strategy.Strategy, params WalkForwardParams, strategyID string, window Window) (optional.Option[types.Fold], string, error) {
	train, err := v.run(ctx, strat, params, window.TrainStart, window.TrainEnd)
	if err != nil {
		if !errors.IsDataError(err) {
			return optional.None[types.Fold](), "", err
		}

		return optional.None[types.Fold](), v.skip(window, "train", err), nil
	}

	test, err := v.run(ctx, strat, params, window.TestStart, window.TestEnd)
	if err != nil {
		if !errors.IsDataError(err) {
			return optional.None[types.Fold](), "", err
		}

		return optional.None[types.Fold](), v.skip(window, "test", err), nil
	}

	return optional.Some(types.Fold{
		ID:               FoldID(strategyID, params.Symbol, params.Timeframe, window.Number),
		StrategyID:       strategyID,
		Symbol:           params.Symbol,
		Timeframe:        params.Timeframe,
		FoldNumber:       window.Number,
		TrainStart:       window.TrainStart,
		TrainEnd:         window.TrainEnd,
		TestStart:        window.TestStart,
		TestEnd:          window.TestEnd,
		TrainPerformance: train.Metrics,
		TestPerformance:  test.Metrics,
		Degraded:         IsDegraded(test.Metrics),
	}), "", nil
}

func (v *Validator) skip(window Window, phase string, err error) string {
	v.log.Warn("Skipping walk-forward window",
		zap.Int("window", window.Number),
		zap.String("phase", phase),
		zap.Time("train_start", window.TrainStart),
		zap.Error(err),
	)

	return fmt.Sprintf("window %d skipped (%s): %v", window.Number, phase, err)
}

func (v *Validator) save(ctx context.Context, fold types.Fold, result *types.WalkForwardResult) {
	if v.store == nil {
		return
	}

	if err := v.store.SaveWalkForwardRun(ctx, fold); err != nil {
		v.log.Warn("Failed to persist walk-forward fold",
			zap.String("fold_id", fold.ID),
			zap.Int("fold_number", fold.FoldNumber),
			zap.Error(err),
		)

		result.Warnings = append(result.Warnings, fmt.Sprintf("persistence failed for fold %d: %v", fold.FoldNumber, err))
	}
}

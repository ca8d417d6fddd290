package engine

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-guard/internal/backtest/engine"
	"github.com/rxtech-lab/argo-guard/internal/backtest/engine/engine_v1/commission_fee"
	"github.com/rxtech-lab/argo-guard/internal/backtest/engine/engine_v1/datasource"
	"github.com/rxtech-lab/argo-guard/internal/logger"
	"github.com/rxtech-lab/argo-guard/internal/strategy"
	"github.com/rxtech-lab/argo-guard/internal/types"
	"github.com/rxtech-lab/argo-guard/internal/utils"
	"github.com/rxtech-lab/argo-guard/pkg/errors"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// BacktestEngineV1 replays candles through a strategy one bar at a time.
// It keeps no per-run state: every run builds its own account, so one engine
// may serve many concurrent runs once configured.
type BacktestEngineV1 struct {
	config        BacktestEngineV1Config
	log           *logger.Logger
	commissionFee commission_fee.CommissionFee
	dataSource    datasource.CandleSource
	resultStore   engine.ResultStore
	attributor    engine.TradeAttributor
	validate      *validator.Validate
	now           func() time.Time
}

func NewBacktestEngineV1(log *logger.Logger) engine.Engine {
	if log == nil {
		log = logger.NewNopLogger()
	}

	config := EmptyConfig()

	return &BacktestEngineV1{
		config:        config,
		log:           log,
		commissionFee: commission_fee.GetCommissionFeeHandler(config.Broker, config.CommissionPct),
		dataSource:    nil,
		resultStore:   nil,
		attributor:    nil,
		validate:      validator.New(),
		now:           time.Now,
	}
}

// Initialize implements engine.Engine.
func (b *BacktestEngineV1) Initialize(config string) error {
	parsed := EmptyConfig()

	if err := yaml.Unmarshal([]byte(config), &parsed); err != nil {
		return errors.Wrap(errors.ErrCodeBacktestConfigError, "failed to parse backtest engine config", err)
	}

	if err := parsed.Validate(); err != nil {
		return err
	}

	b.config = parsed
	b.commissionFee = commission_fee.GetCommissionFeeHandler(parsed.Broker, parsed.CommissionPct)

	b.log.Debug("Backtest engine initialized",
		zap.String("broker", string(parsed.Broker)),
		zap.Float64("commission_pct", parsed.CommissionPct),
		zap.Float64("slippage_pct", parsed.SlippagePct),
		zap.Float64("position_size_pct", parsed.PositionSizePct),
	)

	return nil
}

// SetDataSource implements engine.Engine.
func (b *BacktestEngineV1) SetDataSource(dataSource datasource.CandleSource) error {
	if dataSource == nil {
		return errors.New(errors.ErrCodeBacktestNoDatasource, "data source is nil")
	}

	b.dataSource = dataSource

	return nil
}

// SetResultStore implements engine.Engine.
func (b *BacktestEngineV1) SetResultStore(store engine.ResultStore) error {
	b.resultStore = store

	return nil
}

// SetTradeAttributor implements engine.Engine.
func (b *BacktestEngineV1) SetTradeAttributor(attributor engine.TradeAttributor) error {
	b.attributor = attributor

	return nil
}

// GetConfigSchema implements engine.Engine.
func (b *BacktestEngineV1) GetConfigSchema() (string, error) {
	config := b.config

	schema, err := config.GenerateSchemaJSON()
	if err != nil {
		return "", err
	}

	return schema, nil
}

// ResultID is the deterministic id of a run with the given inputs.
func ResultID(strategyID string, params engine.BacktestParams) string {
	return utils.ContentHash(
		strategyID,
		params.Symbol,
		string(params.Timeframe),
		strconv.FormatInt(params.StartDate.Unix(), 10),
		strconv.FormatInt(params.EndDate.Unix(), 10),
		strconv.FormatFloat(params.InitialCapital, 'f', -1, 64),
	)
}

// RunBacktest implements engine.Engine.
func (b *BacktestEngineV1) RunBacktest(ctx context.Context, strat strategy.Strategy, params engine.BacktestParams, callbacks engine.LifecycleCallbacks) (types.Result, error) {
	params = b.withDefaultRange(params)

	interval, err := b.validateParams(strat, params)
	if err != nil {
		return types.Result{}, err
	}

	if b.dataSource == nil {
		return types.Result{}, errors.New(errors.ErrCodeBacktestNoDatasource, "no data source set")
	}

	if err := ctx.Err(); err != nil {
		return types.Result{}, err
	}

	raw, err := b.dataSource.ReadCandles(ctx, params.Symbol, params.Timeframe, params.StartDate, params.EndDate)
	if err != nil {
		if errors.IsDataError(err) || errors.IsValidationError(err) {
			return types.Result{}, err
		}

		return types.Result{}, errors.Wrapf(errors.ErrCodeDataSourceUnavailable, err, "failed to read candles for %s", params.Symbol)
	}

	candles, warnings := b.prepareCandles(raw, params, interval)
	if len(candles) == 0 {
		return types.Result{}, errors.Newf(errors.ErrCodeNoDataFound,
			"no candles for %s %s between %s and %s", params.Symbol, params.Timeframe,
			params.StartDate.Format(time.RFC3339), params.EndDate.Format(time.RFC3339))
	}

	runID := ResultID(strat.ID(), params)

	if err := callbacks.RunStart(runID, params.Symbol, len(candles)); err != nil {
		return types.Result{}, err
	}

	b.log.Debug("Running backtest",
		zap.String("run_id", runID),
		zap.String("strategy", strat.ID()),
		zap.String("symbol", params.Symbol),
		zap.String("timeframe", string(params.Timeframe)),
		zap.Int("candles", len(candles)),
	)

	run := &backtestRun{
		engine:   b,
		strategy: strat,
		params:   params,
		account:  newBacktestAccount(runID, params.InitialCapital),
		spread:   b.config.SpreadFor(params.Symbol),
		warnings: warnings,
		curve:    make([]types.EquityPoint, 0, len(candles)),
		pending:  optional.None[types.Signal](),
	}

	if err := run.replay(candles, callbacks); err != nil {
		return types.Result{}, err
	}

	result := run.result(candles, b.now())

	b.persist(ctx, &result)
	b.attribute(ctx, result.Trades)

	callbacks.RunEnd(result)

	return result, nil
}

// withDefaultRange fills a zero start or end date from the configured start_time and end_time.
func (b *BacktestEngineV1) withDefaultRange(params engine.BacktestParams) engine.BacktestParams {
	if params.StartDate.IsZero() && b.config.StartTime.IsSome() {
		params.StartDate = b.config.StartTime.Unwrap()
	}

	if params.EndDate.IsZero() && b.config.EndTime.IsSome() {
		params.EndDate = b.config.EndTime.Unwrap()
	}

	return params
}

func (b *BacktestEngineV1) validateParams(strat strategy.Strategy, params engine.BacktestParams) (time.Duration, error) {
	if strat == nil {
		return 0, errors.New(errors.ErrCodeMissingParameter, "strategy is required")
	}

	if err := b.validate.Struct(params); err != nil {
		return 0, errors.Wrap(errors.ErrCodeMissingParameter, "invalid backtest parameters", err)
	}

	interval, err := params.Timeframe.Duration()
	if err != nil {
		return 0, err
	}

	if !params.EndDate.After(params.StartDate) {
		return 0, errors.Newf(errors.ErrCodeInvalidDateRange, "end date %s must be after start date %s",
			params.EndDate.Format(time.RFC3339), params.StartDate.Format(time.RFC3339))
	}

	return interval, nil
}

// prepareCandles filters candles to the inclusive range, sorts them ascending,
// drops duplicate timestamps keeping the first, and reports large gaps.
func (b *BacktestEngineV1) prepareCandles(raw []types.Candle, params engine.BacktestParams, interval time.Duration) ([]types.Candle, []string) {
	candles := make([]types.Candle, 0, len(raw))

	for _, c := range raw {
		if c.Time.Before(params.StartDate) || c.Time.After(params.EndDate) {
			continue
		}

		candles = append(candles, c)
	}

	sort.SliceStable(candles, func(i, j int) bool { return candles[i].Time.Before(candles[j].Time) })

	deduped := candles[:0]
	for i, c := range candles {
		if i > 0 && c.Time.Equal(deduped[len(deduped)-1].Time) {
			b.log.Debug("Dropping duplicate candle", zap.Time("time", c.Time))

			continue
		}

		deduped = append(deduped, c)
	}

	var warnings []string

	maxGap := time.Duration(float64(interval) * b.config.GapMultiplier)

	for i := 1; i < len(deduped); i++ {
		gap := deduped[i].Time.Sub(deduped[i-1].Time)
		if gap > maxGap {
			warning := fmt.Sprintf("data gap of %s between %s and %s", gap,
				deduped[i-1].Time.Format(time.RFC3339), deduped[i].Time.Format(time.RFC3339))
			warnings = append(warnings, warning)

			b.log.Warn("Large gap in candle data",
				zap.String("symbol", params.Symbol),
				zap.Duration("gap", gap),
				zap.Time("from", deduped[i-1].Time),
				zap.Time("to", deduped[i].Time),
			)
		}
	}

	return deduped, warnings
}

func (b *BacktestEngineV1) persist(ctx context.Context, result *types.Result) {
	if b.resultStore == nil {
		return
	}

	if err := b.resultStore.SaveBacktestRun(ctx, *result); err != nil {
		b.log.Warn("Failed to persist backtest result",
			zap.String("result_id", result.ID),
			zap.Error(err),
		)

		result.Warnings = append(result.Warnings, fmt.Sprintf("persistence failed: %v", err))
	}
}

func (b *BacktestEngineV1) attribute(ctx context.Context, trades []types.Trade) {
	if b.attributor == nil {
		return
	}

	for _, trade := range trades {
		if !trade.HasPattern() {
			continue
		}

		patterns := trade.Patterns
		if len(patterns) == 0 {
			patterns = []string{trade.PatternID}
		}

		outcome := types.TradeOutcome{PnL: trade.PnL, PnLPct: trade.PnLPct}
		if err := b.attributor.AttributeTrade(ctx, trade.ID, patterns, outcome); err != nil {
			b.log.Warn("Failed to attribute trade",
				zap.String("trade_id", trade.ID),
				zap.Strings("patterns", patterns),
				zap.Error(err),
			)
		}
	}
}

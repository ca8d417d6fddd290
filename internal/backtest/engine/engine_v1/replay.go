package engine

import (
	"fmt"
	"time"

	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-guard/internal/backtest/engine"
	"github.com/rxtech-lab/argo-guard/internal/strategy"
	"github.com/rxtech-lab/argo-guard/internal/types"
	"github.com/rxtech-lab/argo-guard/internal/utils"
	"github.com/rxtech-lab/argo-guard/pkg/errors"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// backtestRun holds the state of one replay. It is never shared between runs.
type backtestRun struct {
	engine   *BacktestEngineV1
	strategy strategy.Strategy
	params   engine.BacktestParams
	account  *backtestAccount
	spread   float64
	warnings []string
	curve    []types.EquityPoint
	pending  optional.Option[types.Signal]

	shortAttempts int
	skippedBuys   int
}

func (r *backtestRun) replay(candles []types.Candle, callbacks engine.LifecycleCallbacks) error {
	r.strategy.Reset()

	total := len(candles)
	symbol := r.params.Symbol

	for i, candle := range candles {
		if r.pending.IsSome() {
			signal := r.pending.Unwrap()
			r.pending = optional.None[types.Signal]()
			r.fill(signal, candle)
		}

		r.checkProtectiveLevels(candle)

		equity := r.account.equity(map[string]float64{symbol: candle.Close})
		r.curve = append(r.curve, types.EquityPoint{
			Time:     candle.Time,
			Equity:   equity.InexactFloat64(),
			Drawdown: 0,
		})

		state := strategy.State{
			Symbol:    symbol,
			Timeframe: r.params.Timeframe,
			Index:     i,
			History:   candles[:i+1 : i+1],
			Position:  r.account.position(symbol),
			Account:   r.account.info(equity),
		}

		signal, err := r.strategy.GenerateSignal(candle, state)
		if err != nil {
			return errors.Wrapf(errors.ErrCodeStrategyRuntimeError, err,
				"strategy %s failed on candle %d (%s)", r.strategy.ID(), i, candle.Time.Format(time.RFC3339))
		}

		if signal.IsSome() && i < total-1 {
			r.pending = r.accept(signal.Unwrap())
		}

		if err := callbacks.ProcessData(i+1, total); err != nil {
			return err
		}
	}

	r.forceClose(candles[total-1])

	if r.shortAttempts > 0 {
		r.warnings = append(r.warnings, fmt.Sprintf("short selling not supported: %d SELL signals while flat ignored", r.shortAttempts))
	}

	if r.skippedBuys > 0 {
		r.warnings = append(r.warnings, fmt.Sprintf("%d BUY signals skipped for insufficient balance", r.skippedBuys))
	}

	return nil
}

// accept runs both signal validations and returns the signal as the next pending fill.
func (r *backtestRun) accept(signal types.Signal) optional.Option[types.Signal] {
	if err := signal.Validate(); err != nil {
		r.engine.log.Debug("Dropping invalid signal", zap.Error(err))

		return optional.None[types.Signal]()
	}

	if !r.strategy.ValidateSignal(signal) {
		r.engine.log.Debug("Strategy rejected signal",
			zap.String("strategy", r.strategy.ID()),
			zap.String("action", string(signal.Action)),
		)

		return optional.None[types.Signal]()
	}

	return optional.Some(signal)
}

func (r *backtestRun) fill(signal types.Signal, candle types.Candle) {
	symbol := r.params.Symbol
	holding := r.account.position(symbol).IsSome()

	switch signal.Action {
	case types.ActionBuy:
		if holding {
			r.engine.log.Debug("Ignoring BUY while already long", zap.String("symbol", symbol), zap.Time("time", candle.Time))

			return
		}

		r.openLong(signal, candle)
	case types.ActionSell, types.ActionClose:
		if !holding {
			if signal.Action == types.ActionSell {
				r.shortAttempts++
				r.engine.log.Warn("short selling not supported, ignoring SELL while flat",
					zap.String("symbol", symbol),
					zap.Time("time", candle.Time),
				)
			}

			return
		}

		price := exitFillPrice(candle.Open, r.spread, r.engine.config.SlippagePct)
		r.closePosition(price, candle.Time, types.ExitReasonSignal)
	}
}

func (r *backtestRun) openLong(signal types.Signal, candle types.Candle) {
	config := r.engine.config
	symbol := r.params.Symbol

	price := entryFillPrice(candle.Open, r.spread, config.SlippagePct)
	equity := r.account.equity(map[string]float64{symbol: candle.Open}).InexactFloat64()
	quantity := utils.CalculatePositionSize(equity, config.PositionSizePct, price, config.DecimalPrecision)

	if quantity <= 0 {
		r.skippedBuys++
		r.engine.log.Debug("Skipping BUY with zero quantity",
			zap.String("symbol", symbol),
			zap.Float64("equity", equity),
			zap.Float64("price", price),
		)

		return
	}

	fee := r.engine.commissionFee.Calculate(quantity, price)
	if !r.account.canAfford(quantity, price, fee) {
		r.skippedBuys++
		r.engine.log.Debug("Skipping BUY, insufficient balance",
			zap.String("symbol", symbol),
			zap.Float64("quantity", quantity),
			zap.Float64("price", price),
			zap.Float64("fee", fee),
		)

		return
	}

	r.account.open(types.Position{
		Symbol:     symbol,
		Action:     types.ActionBuy,
		Quantity:   quantity,
		EntryPrice: price,
		EntryTime:  candle.Time,
		EntryFee:   fee,
		StopLoss:   signal.StopLoss,
		TakeProfit: signal.TakeProfit,
		PatternID:  signal.PatternID(),
		Patterns:   signal.Patterns(),
	})
}

func (r *backtestRun) checkProtectiveLevels(candle types.Candle) {
	position := r.account.position(r.params.Symbol)
	if position.IsNone() {
		return
	}

	level, reason, triggered := protectiveExit(position.Unwrap(), candle)
	if !triggered {
		return
	}

	price := exitFillPrice(level, r.spread, r.engine.config.SlippagePct)
	r.closePosition(price, candle.Time, reason)
}

// forceClose exits everything at the final close. Only commission applies.
func (r *backtestRun) forceClose(last types.Candle) {
	if r.account.position(r.params.Symbol).IsNone() {
		return
	}

	r.closePosition(last.Close, last.Time, types.ExitReasonEndOfBacktest)

	if n := len(r.curve); n > 0 {
		r.curve[n-1].Equity = r.account.equity(nil).InexactFloat64()
	}
}

func (r *backtestRun) closePosition(price float64, at time.Time, reason string) {
	position := r.account.position(r.params.Symbol)
	if position.IsNone() {
		return
	}

	fee := r.engine.commissionFee.Calculate(position.Unwrap().Quantity, price)

	trade, ok := r.account.close(r.params.Symbol, price, fee, at, reason)
	if !ok {
		return
	}

	r.engine.log.Debug("Closed position",
		zap.String("trade_id", trade.ID),
		zap.String("reason", reason),
		zap.Float64("exit_price", price),
		zap.Float64("pnl", trade.PnL),
	)
}

func (r *backtestRun) result(candles []types.Candle, createdAt time.Time) types.Result {
	initial := r.params.InitialCapital
	finalEquity := r.account.equity(nil)

	if len(r.curve) > 0 {
		finalEquity = decimal.NewFromFloat(r.curve[len(r.curve)-1].Equity)
	}

	trades := r.account.trades
	if trades == nil {
		trades = []types.Trade{}
	}

	return types.Result{
		ID:             r.account.runID,
		StrategyID:     r.strategy.ID(),
		Symbol:         r.params.Symbol,
		Timeframe:      r.params.Timeframe,
		StartTime:      r.params.StartDate,
		EndTime:        r.params.EndDate,
		InitialCapital: initial,
		Metrics:        calculateMetrics(trades, r.curve, initial, finalEquity.InexactFloat64(), candles),
		Trades:         trades,
		EquityCurve:    r.curve,
		Warnings:       r.warnings,
		CreatedAt:      createdAt,
	}
}

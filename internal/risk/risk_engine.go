package risk

import (
	"context"
	"math"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rxtech-lab/argo-guard/internal/logger"
	"github.com/rxtech-lab/argo-guard/internal/types"
	"github.com/rxtech-lab/argo-guard/pkg/errors"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

var hundred = decimal.NewFromInt(100)

// RiskEngine gates live order intents against day-scoped limits.
// It is owned by the order-gating service and safe for concurrent use;
// every public method holds the lock for its whole duration, day rollover included.
type RiskEngine struct {
	mu       sync.Mutex
	limits   types.RiskLimits
	stats    types.DailyRiskStats
	store    StatsStore
	log      *logger.Logger
	now      func() time.Time
	location *time.Location
	validate *validator.Validate
}

// Option configures a RiskEngine.
type Option func(*RiskEngine)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(r *RiskEngine) {
		r.now = now
	}
}

// WithLocation sets the location whose midnight starts a new trading day.
func WithLocation(location *time.Location) Option {
	return func(r *RiskEngine) {
		r.location = location
	}
}

// WithStatsStore sets where daily stats are persisted.
func WithStatsStore(store StatsStore) Option {
	return func(r *RiskEngine) {
		r.store = store
	}
}

// NewRiskEngine creates an engine and restores today's stats from the store, if any.
// Limits are validated after unset optional limits take their defaults.
func NewRiskEngine(ctx context.Context, limits types.RiskLimits, log *logger.Logger, opts ...Option) (*RiskEngine, error) {
	if log == nil {
		log = logger.NewNopLogger()
	}

	limits = limits.WithDefaults()
	validate := validator.New()

	if err := validate.Struct(limits); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfiguration, "invalid risk limits", err)
	}

	r := &RiskEngine{
		limits:   limits,
		store:    NewMemoryStatsStore(),
		log:      log,
		now:      time.Now,
		location: time.Local,
		validate: validate,
	}

	for _, opt := range opts {
		opt(r)
	}

	today := r.today()
	r.stats = types.NewDailyRiskStats(today)

	loaded, err := r.store.Load(ctx, today)
	if err != nil {
		r.log.Warn("Failed to load daily risk stats, starting fresh",
			zap.String("date", today),
			zap.Error(err),
		)
	} else if loaded.IsSome() {
		r.stats = loaded.Unwrap()
		r.log.Info("Restored daily risk stats",
			zap.String("date", today),
			zap.Float64("total_pnl", r.stats.TotalPnL),
			zap.Int("trade_count", r.stats.TradeCount),
			zap.Int("open_positions", len(r.stats.OpenPositions)),
		)
	}

	return r, nil
}

// NewRiskEngineFromConfig wires a RiskEngine from a Config. A StatsDir selects the file store.
func NewRiskEngineFromConfig(ctx context.Context, config Config, log *logger.Logger, opts ...Option) (*RiskEngine, error) {
	location, err := config.Location()
	if err != nil {
		return nil, err
	}

	base := []Option{WithLocation(location)}

	if config.StatsDir != "" {
		store, err := NewFileStatsStore(config.StatsDir)
		if err != nil {
			return nil, err
		}

		base = append(base, WithStatsStore(store))
	}

	return NewRiskEngine(ctx, config.Limits, log, append(base, opts...)...)
}

// ValidateOrder decides whether the intent may be sent. Checks run in a fixed order and
// the first failing one decides.
func (r *RiskEngine) ValidateOrder(ctx context.Context, intent types.OrderIntent, accountBalance float64) types.RiskDecision {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.rollover(ctx)

	decision := r.check(intent, accountBalance)
	if !decision.Allowed {
		r.log.Info("Order rejected by risk engine",
			zap.String("symbol", intent.Symbol),
			zap.String("action", string(intent.Action)),
			zap.Float64("quantity", intent.Quantity),
			zap.Float64("price", intent.Price),
			zap.String("reason", decision.Reason),
		)
	}

	return decision
}

func (r *RiskEngine) check(intent types.OrderIntent, accountBalance float64) types.RiskDecision {
	limits := r.limits

	if limits.Disabled {
		return types.Allow("risk engine disabled")
	}

	if !limits.TradingEnabled {
		return types.Reject("Trading is disabled (kill switch active)")
	}

	if accountBalance <= 0 || math.IsNaN(accountBalance) || math.IsInf(accountBalance, 0) {
		return types.Reject("Invalid account balance: %v", accountBalance)
	}

	if err := r.validate.Struct(intent); err != nil {
		return types.Reject("Invalid order intent: %v", err)
	}

	balance := decimal.NewFromFloat(accountBalance)

	if r.stats.TotalPnL < 0 {
		lossPct := decimal.NewFromFloat(-r.stats.TotalPnL).Div(balance).Mul(hundred)
		if lossPct.GreaterThanOrEqual(decimal.NewFromFloat(limits.MaxDailyLossPercent)) {
			return types.Reject("Daily loss limit exceeded: %s%% of balance lost today (limit %v%%)",
				lossPct.StringFixed(2), limits.MaxDailyLossPercent)
		}
	}

	notional := decimal.NewFromFloat(math.Abs(intent.Quantity)).Mul(decimal.NewFromFloat(intent.Price))
	sizePct := notional.Div(balance).Mul(hundred)

	if sizePct.GreaterThan(decimal.NewFromFloat(limits.MaxPositionSizePercent)) {
		return types.Reject("Position size %s%% of balance exceeds limit of %v%%",
			sizePct.StringFixed(2), limits.MaxPositionSizePercent)
	}

	if intent.Action == types.ActionBuy {
		if _, existing := r.stats.OpenPositions[intent.Symbol]; !existing && len(r.stats.OpenPositions) >= limits.MaxOpenPositions {
			return types.Reject("Max open positions reached: %d/%d", len(r.stats.OpenPositions), limits.MaxOpenPositions)
		}
	}

	if limits.RequireStopLoss && intent.StopLoss.IsNone() {
		return types.Reject("Stop-loss is required")
	}

	if limits.RequireTakeProfit && intent.TakeProfit.IsNone() {
		return types.Reject("Take-profit is required")
	}

	if intent.StopLoss.IsSome() {
		price := decimal.NewFromFloat(intent.Price)
		distancePct := decimal.NewFromFloat(intent.StopLoss.Unwrap()).Sub(price).Abs().Div(price).Mul(hundred)

		if distancePct.GreaterThan(decimal.NewFromFloat(limits.MaxStopLossDistancePercent)) {
			return types.Reject("Stop-loss distance %s%% exceeds maximum of %v%%",
				distancePct.StringFixed(2), limits.MaxStopLossDistancePercent)
		}
	}

	return types.Allow("Order passed all risk checks")
}

// RecordTrade applies a realized fill to today's stats. It does not require a prior ValidateOrder.
func (r *RiskEngine) RecordTrade(ctx context.Context, trade types.RealizedTrade) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.rollover(ctx)

	r.stats.TradeCount++
	r.stats.TotalPnL = decimal.NewFromFloat(r.stats.TotalPnL).Add(decimal.NewFromFloat(trade.PnL)).InexactFloat64()

	quantity := decimal.NewFromFloat(math.Abs(trade.Quantity))
	position, open := r.stats.OpenPositions[trade.Symbol]

	switch trade.Action {
	case types.ActionBuy:
		held := decimal.NewFromFloat(position.Quantity)
		total := held.Add(quantity)

		if total.IsPositive() {
			cost := held.Mul(decimal.NewFromFloat(position.AvgPrice)).Add(quantity.Mul(decimal.NewFromFloat(trade.Price)))
			r.stats.OpenPositions[trade.Symbol] = types.OpenPositionStats{
				Quantity: total.InexactFloat64(),
				AvgPrice: cost.Div(total).InexactFloat64(),
			}
		}
	case types.ActionSell, types.ActionClose:
		if !open {
			break
		}

		remaining := decimal.NewFromFloat(position.Quantity).Sub(quantity)
		if !remaining.IsPositive() {
			delete(r.stats.OpenPositions, trade.Symbol)

			break
		}

		position.Quantity = remaining.InexactFloat64()
		r.stats.OpenPositions[trade.Symbol] = position
	}

	r.stats.LastUpdated = r.now()
	r.persist(ctx, r.stats)
}

// GetStats returns a copy of today's stats.
func (r *RiskEngine) GetStats(ctx context.Context) types.DailyRiskStats {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.rollover(ctx)

	return r.stats.Clone()
}

// SetTradingEnabled flips the kill switch.
func (r *RiskEngine) SetTradingEnabled(enabled bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.limits.TradingEnabled == enabled {
		return
	}

	r.limits.TradingEnabled = enabled

	if enabled {
		r.log.Info("Trading re-enabled")
	} else {
		r.log.Warn("Kill switch activated, all orders will be rejected")
	}
}

// Limits returns the current limits.
func (r *RiskEngine) Limits() types.RiskLimits {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.limits
}

// Reset clears today's stats.
func (r *RiskEngine) Reset(ctx context.Context) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.stats = types.NewDailyRiskStats(r.today())
	r.stats.LastUpdated = r.now()
	r.persist(ctx, r.stats)

	r.log.Info("Daily risk stats reset", zap.String("date", r.stats.Date))
}

func (r *RiskEngine) today() string {
	return r.now().In(r.location).Format(types.DateLayout)
}

// rollover starts a new day when the date changed. Callers must hold the lock.
func (r *RiskEngine) rollover(ctx context.Context) {
	today := r.today()
	if r.stats.Date == today {
		return
	}

	previous := r.stats
	r.persist(ctx, previous)

	r.stats = types.NewDailyRiskStats(today)

	r.log.Info("Rolled daily risk stats over",
		zap.String("previous_date", previous.Date),
		zap.String("date", today),
		zap.Float64("previous_total_pnl", previous.TotalPnL),
		zap.Int("previous_trade_count", previous.TradeCount),
	)
}

// persist saves stats best effort. Callers must hold the lock.
func (r *RiskEngine) persist(ctx context.Context, stats types.DailyRiskStats) {
	if r.store == nil || stats.Date == "" {
		return
	}

	if err := r.store.Save(ctx, stats.Clone()); err != nil {
		r.log.Warn("Failed to persist daily risk stats",
			zap.String("date", stats.Date),
			zap.Error(err),
		)
	}
}

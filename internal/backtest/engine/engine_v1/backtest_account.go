package engine

import (
	"fmt"
	"time"

	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-guard/internal/types"
	"github.com/shopspring/decimal"
)

// backtestAccount is the run-scoped account. It is created fresh for every run
// and never shared, so it needs no locking.
//
// Accounting identity after every close:
//
//	balance + Σ open cost basis == initialBalance + Σ realized pnl
type backtestAccount struct {
	runID          string
	initialBalance decimal.Decimal
	balance        decimal.Decimal
	realizedPnL    decimal.Decimal
	totalFees      decimal.Decimal
	positions      map[string]*types.Position
	trades         []types.Trade
	tradeCounter   int
}

func newBacktestAccount(runID string, initialBalance float64) *backtestAccount {
	initial := decimal.NewFromFloat(initialBalance)

	return &backtestAccount{
		runID:          runID,
		initialBalance: initial,
		balance:        initial,
		realizedPnL:    decimal.Zero,
		totalFees:      decimal.Zero,
		positions:      make(map[string]*types.Position),
		trades:         nil,
		tradeCounter:   0,
	}
}

func (a *backtestAccount) position(symbol string) optional.Option[types.Position] {
	if p, ok := a.positions[symbol]; ok {
		return optional.Some(*p)
	}

	return optional.None[types.Position]()
}

// canAfford reports whether the cash balance covers qty at price plus fee.
func (a *backtestAccount) canAfford(quantity float64, price float64, fee float64) bool {
	cost := decimal.NewFromFloat(quantity).Mul(decimal.NewFromFloat(price)).Add(decimal.NewFromFloat(fee))

	return cost.LessThanOrEqual(a.balance)
}

// open records a new long position. Callers must ensure the symbol is flat and the cost is affordable.
func (a *backtestAccount) open(position types.Position) {
	a.balance = a.balance.Sub(position.CostBasis())
	a.totalFees = a.totalFees.Add(decimal.NewFromFloat(position.EntryFee))
	p := position
	a.positions[position.Symbol] = &p
}

// close closes the position on symbol at exitPrice and appends the resulting trade.
func (a *backtestAccount) close(symbol string, exitPrice float64, exitFee float64, exitTime time.Time, reason string) (types.Trade, bool) {
	position, ok := a.positions[symbol]
	if !ok {
		return types.Trade{}, false
	}

	costBasis := position.CostBasis()
	fee := decimal.NewFromFloat(exitFee)
	proceeds := position.MarketValue(exitPrice).Sub(fee)
	pnl := proceeds.Sub(costBasis)

	pnlPct := decimal.Zero
	if costBasis.IsPositive() {
		pnlPct = pnl.Div(costBasis).Mul(decimal.NewFromInt(100))
	}

	a.balance = a.balance.Add(proceeds)
	a.realizedPnL = a.realizedPnL.Add(pnl)
	a.totalFees = a.totalFees.Add(fee)
	a.tradeCounter++
	delete(a.positions, symbol)

	patternID := ""
	if position.PatternID.IsSome() {
		patternID = position.PatternID.Unwrap()
	}

	trade := types.Trade{
		ID:         fmt.Sprintf("%s-%d", a.runID, a.tradeCounter),
		Symbol:     symbol,
		Action:     position.Action,
		EntryPrice: position.EntryPrice,
		ExitPrice:  exitPrice,
		Quantity:   position.Quantity,
		EntryTime:  position.EntryTime,
		ExitTime:   exitTime,
		PnL:        pnl.InexactFloat64(),
		PnLPct:     pnlPct.InexactFloat64(),
		Duration:   exitTime.Sub(position.EntryTime),
		Reason:     reason,
		PatternID:  patternID,
		Patterns:   position.Patterns,
		Fees:       position.EntryFee + exitFee,
	}

	a.trades = append(a.trades, trade)

	return trade, true
}

// equity marks every open position at its price in marks.
func (a *backtestAccount) equity(marks map[string]float64) decimal.Decimal {
	equity := a.balance

	for symbol, p := range a.positions {
		price, ok := marks[symbol]
		if !ok {
			price = p.EntryPrice
		}

		equity = equity.Add(p.MarketValue(price))
	}

	return equity
}

// openCostBasis sums the cost basis of all open positions.
func (a *backtestAccount) openCostBasis() decimal.Decimal {
	total := decimal.Zero
	for _, p := range a.positions {
		total = total.Add(p.CostBasis())
	}

	return total
}

func (a *backtestAccount) info(equity decimal.Decimal) types.AccountInfo {
	return types.AccountInfo{
		Balance:        a.balance.InexactFloat64(),
		Equity:         equity.InexactFloat64(),
		InitialBalance: a.initialBalance.InexactFloat64(),
		RealizedPnL:    a.realizedPnL.InexactFloat64(),
		TotalFees:      a.totalFees.InexactFloat64(),
		TradeCount:     len(a.trades),
	}
}

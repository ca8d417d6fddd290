package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/rxtech-lab/argo-guard/internal/types"
)

var resultColumns = []string{
	"id", "strategy_id", "symbol", "timeframe", "start_time", "end_time", "initial_capital",
	"total_trades", "net_profit", "net_profit_pct", "max_drawdown", "sharpe_ratio", "profit_factor",
	"final_equity", "metrics", "warnings", "created_at",
}

var tradeColumns = []string{
	"id", "result_id", "symbol", "action", "entry_price", "exit_price", "quantity",
	"entry_time", "exit_time", "pnl", "pnl_pct", "duration_ns", "reason", "pattern_id", "patterns", "fees",
}

var foldColumns = []string{
	"id", "strategy_id", "symbol", "timeframe", "fold_number",
	"train_start", "train_end", "test_start", "test_end",
	"train_metrics", "test_metrics", "test_sharpe_ratio", "test_net_profit_pct", "degraded",
}

func resultValues(result types.Result) ([]any, error) {
	metrics, err := json.Marshal(result.Metrics)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal metrics: %w", err)
	}

	warnings, err := json.Marshal(nonNil(result.Warnings))
	if err != nil {
		return nil, fmt.Errorf("failed to marshal warnings: %w", err)
	}

	profitFactor := sql.NullFloat64{}
	if result.Metrics.ProfitFactor != nil {
		profitFactor = sql.NullFloat64{Float64: *result.Metrics.ProfitFactor, Valid: true}
	}

	return []any{
		result.ID,
		result.StrategyID,
		result.Symbol,
		string(result.Timeframe),
		result.StartTime.UTC(),
		result.EndTime.UTC(),
		result.InitialCapital,
		result.Metrics.TotalTrades,
		result.Metrics.NetProfit,
		result.Metrics.NetProfitPct,
		result.Metrics.MaxDrawdown,
		result.Metrics.SharpeRatio,
		profitFactor,
		result.Metrics.FinalEquity,
		string(metrics),
		string(warnings),
		result.CreatedAt.UTC(),
	}, nil
}

func tradeValues(resultID string, trade types.Trade) ([]any, error) {
	patterns, err := json.Marshal(nonNil(trade.Patterns))
	if err != nil {
		return nil, fmt.Errorf("failed to marshal trade patterns: %w", err)
	}

	return []any{
		trade.ID,
		resultID,
		trade.Symbol,
		string(trade.Action),
		trade.EntryPrice,
		trade.ExitPrice,
		trade.Quantity,
		trade.EntryTime.UTC(),
		trade.ExitTime.UTC(),
		trade.PnL,
		trade.PnLPct,
		int64(trade.Duration),
		trade.Reason,
		trade.PatternID,
		string(patterns),
		trade.Fees,
	}, nil
}

func foldValues(fold types.Fold) ([]any, error) {
	train, err := json.Marshal(fold.TrainPerformance)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal train metrics: %w", err)
	}

	test, err := json.Marshal(fold.TestPerformance)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal test metrics: %w", err)
	}

	return []any{
		fold.ID,
		fold.StrategyID,
		fold.Symbol,
		string(fold.Timeframe),
		fold.FoldNumber,
		fold.TrainStart.UTC(),
		fold.TrainEnd.UTC(),
		fold.TestStart.UTC(),
		fold.TestEnd.UTC(),
		string(train),
		string(test),
		fold.TestPerformance.SharpeRatio,
		fold.TestPerformance.NetProfitPct,
		fold.Degraded,
	}, nil
}

func nonNil(values []string) []string {
	if values == nil {
		return []string{}
	}

	return values
}

// upsertSuffix builds ON CONFLICT (id) DO UPDATE SET for every column but the first, the key.
func upsertSuffix(columns []string) string {
	sets := make([]string, 0, len(columns)-1)
	for _, column := range columns[1:] {
		sets = append(sets, fmt.Sprintf("%s = EXCLUDED.%s", column, column))
	}

	return fmt.Sprintf("ON CONFLICT (%s) DO UPDATE SET %s", columns[0], strings.Join(sets, ", "))
}

package mocks

//go:generate mockgen -destination=./mock_result_store.go -package=mocks github.com/rxtech-lab/argo-guard/internal/backtest/engine ResultStore,TradeAttributor
//go:generate mockgen -destination=./mock_datasource.go -package=mocks github.com/rxtech-lab/argo-guard/internal/backtest/engine/engine_v1/datasource CandleSource
//go:generate mockgen -destination=./mock_strategy.go -package=mocks github.com/rxtech-lab/argo-guard/internal/strategy Strategy
//go:generate mockgen -destination=./mock_stats_store.go -package=mocks github.com/rxtech-lab/argo-guard/internal/risk StatsStore
//go:generate mockgen -destination=./mock_engine.go -package=mocks github.com/rxtech-lab/argo-guard/internal/backtest/engine Engine

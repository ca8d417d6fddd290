package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rxtech-lab/argo-guard/internal/attribution"
	"github.com/rxtech-lab/argo-guard/internal/backtest/engine"
	engine_v1 "github.com/rxtech-lab/argo-guard/internal/backtest/engine/engine_v1"
	"github.com/rxtech-lab/argo-guard/internal/backtest/engine/engine_v1/datasource"
	"github.com/rxtech-lab/argo-guard/internal/logger"
	"github.com/rxtech-lab/argo-guard/internal/store"
	"github.com/rxtech-lab/argo-guard/internal/strategy"
	"github.com/rxtech-lab/argo-guard/internal/types"
	"github.com/urfave/cli/v3"
	"gopkg.in/yaml.v3"
)

// environment is everything a backtest command needs, built from the global flags.
type environment struct {
	log        *logger.Logger
	engine     engine.Engine
	source     datasource.CandleSource
	store      store.Store
	attributor engine.TradeAttributor
	closers    []func() error
}

func (e *environment) Close() {
	for i := len(e.closers) - 1; i >= 0; i-- {
		if err := e.closers[i](); err != nil {
			e.log.Sugar().Warnf("close failed: %v", err)
		}
	}

	_ = e.log.Sync()
}

func newLogger(cmd *cli.Command) (*logger.Logger, error) {
	return logger.NewLoggerWithLevel(cmd.String("log-level"))
}

// newDataSource picks the candle source by file extension: .csv is read with gocsv,
// anything else is treated as parquet file(s) and queried through DuckDB. Globs are accepted.
func newDataSource(path string, baseTimeframe types.Timeframe, log *logger.Logger) (datasource.CandleSource, error) {
	if path == "" {
		return nil, fmt.Errorf("--data is required")
	}

	if strings.EqualFold(filepath.Ext(path), ".csv") {
		return datasource.NewCSVDataSource(path, log), nil
	}

	source, err := datasource.NewDataSource(":memory:", baseTimeframe, log)
	if err != nil {
		return nil, err
	}

	if err := source.Initialize(path); err != nil {
		source.Close()

		return nil, err
	}

	return source, nil
}

func newAttributor(cmd *cli.Command, log *logger.Logger) (engine.TradeAttributor, func() error, error) {
	brokers := cmd.StringSlice("kafka-brokers")
	if len(brokers) == 0 {
		return attribution.NewLogAttributor(log), nil, nil
	}

	attributor, err := attribution.NewKafkaAttributor(attribution.KafkaConfig{
		Brokers: brokers,
		Topic:   cmd.String("kafka-topic"),
	}, log)
	if err != nil {
		return nil, nil, err
	}

	return attributor, attributor.Close, nil
}

// newEnvironment wires engine, data source, results store and attributor from the global flags.
func newEnvironment(ctx context.Context, cmd *cli.Command) (*environment, error) {
	log, err := newLogger(cmd)
	if err != nil {
		return nil, err
	}

	env := &environment{log: log}

	fail := func(err error) (*environment, error) {
		env.Close()

		return nil, err
	}

	backtester := engine_v1.NewBacktestEngineV1(log)

	if path := cmd.String("config"); path != "" {
		config, err := os.ReadFile(path)
		if err != nil {
			return fail(fmt.Errorf("failed to read engine config: %w", err))
		}

		if err := backtester.Initialize(string(config)); err != nil {
			return fail(err)
		}
	}

	source, err := newDataSource(cmd.String("data"), types.Timeframe(cmd.String("base-timeframe")), log)
	if err != nil {
		return fail(err)
	}

	env.closers = append(env.closers, source.Close)
	env.source = datasource.NewCachedDataSource(source)

	if err := backtester.SetDataSource(env.source); err != nil {
		return fail(err)
	}

	results, err := store.Open(ctx, cmd.String("store"), log)
	if err != nil {
		return fail(err)
	}

	env.closers = append(env.closers, results.Close)
	env.store = results

	if err := backtester.SetResultStore(results); err != nil {
		return fail(err)
	}

	attributor, closeAttributor, err := newAttributor(cmd, log)
	if err != nil {
		return fail(err)
	}

	if closeAttributor != nil {
		env.closers = append(env.closers, closeAttributor)
	}

	env.attributor = attributor

	if err := backtester.SetTradeAttributor(attributor); err != nil {
		return fail(err)
	}

	env.engine = backtester

	return env, nil
}

// newStrategy builds the strategy named by --strategy with the YAML file of --strategy-config.
func newStrategy(cmd *cli.Command) (strategy.Strategy, error) {
	config := ""

	if path := cmd.String("strategy-config"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read strategy config: %w", err)
		}

		config = string(data)
	}

	return strategy.NewDefaultRegistry().Create(cmd.String("strategy"), config)
}

// writeOutput writes v as YAML to path, or to stdout when path is empty.
func writeOutput(path string, v any) error {
	data, err := yaml.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}

	if path == "" {
		_, err := os.Stdout.Write(data)

		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	return os.WriteFile(path, data, 0644)
}

package main

import (
	"context"
	"fmt"
	"os"

	"github.com/rxtech-lab/argo-guard/internal/backtest/engine"
	"github.com/rxtech-lab/argo-guard/internal/backtest/runner"
	"github.com/rxtech-lab/argo-guard/internal/backtest/walkforward"
	"github.com/rxtech-lab/argo-guard/internal/strategy"
	"github.com/rxtech-lab/argo-guard/internal/types"
	"github.com/schollz/progressbar/v3"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"
)

func backtestParams(cmd *cli.Command, symbol string) engine.BacktestParams {
	return engine.BacktestParams{
		Symbol:         symbol,
		Timeframe:      types.Timeframe(cmd.String("timeframe")),
		StartDate:      cmd.Timestamp("start"),
		EndDate:        cmd.Timestamp("end"),
		InitialCapital: cmd.Float("capital"),
	}
}

func walkForwardParams(cmd *cli.Command, symbol string) walkforward.WalkForwardParams {
	return walkforward.WalkForwardParams{
		Symbol:         symbol,
		Timeframe:      types.Timeframe(cmd.String("timeframe")),
		TrainDays:      int(cmd.Int("train-days")),
		TestDays:       int(cmd.Int("test-days")),
		StepDays:       int(cmd.Int("step-days")),
		StartDate:      cmd.Timestamp("start"),
		EndDate:        cmd.Timestamp("end"),
		InitialCapital: cmd.Float("capital"),
	}
}

// progressCallbacks drives a progress bar from the lifecycle callbacks. A run start
// resets the bar to the run's candle count.
func progressCallbacks(description string, quiet bool) (engine.LifecycleCallbacks, func()) {
	if quiet {
		return engine.LifecycleCallbacks{}, func() {}
	}

	bar := progressbar.NewOptions(-1,
		progressbar.OptionSetDescription(description),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionShowCount(),
	)

	onRunStart := engine.OnRunStartCallback(func(_ string, symbol string, totalCandles int) error {
		bar.Reset()
		bar.ChangeMax(totalCandles)
		bar.Describe(fmt.Sprintf("%s %s", description, symbol))

		return nil
	})

	onProcessData := engine.OnProcessDataCallback(func(current int, total int) error {
		bar.ChangeMax(total)

		return bar.Set(current)
	})

	return engine.LifecycleCallbacks{
		OnRunStart:    &onRunStart,
		OnProcessData: &onProcessData,
	}, func() { _ = bar.Finish() }
}

func backtestAction(ctx context.Context, cmd *cli.Command) error {
	env, err := newEnvironment(ctx, cmd)
	if err != nil {
		return err
	}
	defer env.Close()

	strat, err := newStrategy(cmd)
	if err != nil {
		return err
	}

	callbacks, finish := progressCallbacks("Backtesting", cmd.Bool("quiet"))

	result, err := env.engine.RunBacktest(ctx, strat, backtestParams(cmd, cmd.String("symbol")), callbacks)

	finish()

	if err != nil {
		return err
	}

	env.log.Info("Backtest finished",
		zap.String("id", result.ID),
		zap.Int("trades", result.Metrics.TotalTrades),
		zap.Float64("net_profit", result.Metrics.NetProfit),
		zap.Float64("sharpe_ratio", result.Metrics.SharpeRatio),
		zap.Strings("warnings", result.Warnings),
	)

	return writeOutput(cmd.String("output"), result)
}

func walkForwardAction(ctx context.Context, cmd *cli.Command) error {
	env, err := newEnvironment(ctx, cmd)
	if err != nil {
		return err
	}
	defer env.Close()

	strat, err := newStrategy(cmd)
	if err != nil {
		return err
	}

	validator := walkforward.NewValidator(env.engine, env.log)
	validator.SetResultStore(env.store)

	callbacks, finish := progressCallbacks("Walk-forward windows", cmd.Bool("quiet"))
	callbacks.OnRunStart = nil

	result, err := validator.RunWalkForward(ctx, strat, walkForwardParams(cmd, cmd.String("symbol")), callbacks)

	finish()

	if err != nil {
		return err
	}

	if result.Aggregate.DegradationDetected {
		env.log.Warn("Strategy degrades out of sample",
			zap.String("strategy", result.StrategyID),
			zap.Int("max_consecutive_degraded", result.Aggregate.MaxConsecutiveDegraded),
		)
	}

	return writeOutput(cmd.String("output"), result)
}

// batchJobs builds one job per symbol, a walk-forward job when walkForward is set.
func batchJobs(cmd *cli.Command, symbols []string, walkForward bool, strat strategy.Strategy) []runner.Job {
	jobs := make([]runner.Job, 0, len(symbols))

	for _, symbol := range symbols {
		job := runner.Job{
			Name:     fmt.Sprintf("%s %s", strat.ID(), symbol),
			Kind:     runner.JobKindBacktest,
			Strategy: strat,
		}

		if walkForward {
			job.Kind = runner.JobKindWalkForward
			job.WalkForward = walkForwardParams(cmd, symbol)
		} else {
			job.Backtest = backtestParams(cmd, symbol)
		}

		jobs = append(jobs, job)
	}

	return jobs
}

type batchSummary struct {
	BatchID string            `yaml:"batch_id"`
	Jobs    []batchJobSummary `yaml:"jobs"`
}

type batchJobSummary struct {
	RunID       string                   `yaml:"run_id"`
	Name        string                   `yaml:"name"`
	Kind        runner.JobKind           `yaml:"kind"`
	Error       string                   `yaml:"error,omitempty"`
	Result      *types.Result            `yaml:"result,omitempty"`
	WalkForward *types.WalkForwardResult `yaml:"walk_forward,omitempty"`
}

func summarize(batch runner.Batch) batchSummary {
	summary := batchSummary{BatchID: batch.ID, Jobs: make([]batchJobSummary, 0, len(batch.Results))}

	for _, r := range batch.Results {
		job := batchJobSummary{
			RunID:       r.RunID,
			Name:        r.Name,
			Kind:        r.Kind,
			Result:      r.Result,
			WalkForward: r.WalkForward,
		}

		if r.Err != nil {
			job.Error = r.Err.Error()
		}

		summary.Jobs = append(summary.Jobs, job)
	}

	return summary
}

func batchAction(ctx context.Context, cmd *cli.Command) error {
	env, err := newEnvironment(ctx, cmd)
	if err != nil {
		return err
	}
	defer env.Close()

	strat, err := newStrategy(cmd)
	if err != nil {
		return err
	}

	jobs := batchJobs(cmd, cmd.StringSlice("symbols"), cmd.Bool("walk-forward"), strat)

	validator := walkforward.NewValidator(env.engine, env.log)
	validator.SetResultStore(env.store)

	pool := runner.NewPool(env.engine, validator, int(cmd.Int("workers")), env.log)

	var callbacks engine.LifecycleCallbacks

	finish := func() {}

	if !cmd.Bool("quiet") {
		bar := progressbar.NewOptions(len(jobs),
			progressbar.OptionSetDescription("Running batch"),
			progressbar.OptionSetWriter(os.Stderr),
			progressbar.OptionShowCount(),
		)
		onProcessData := engine.OnProcessDataCallback(func(current int, _ int) error {
			return bar.Set(current)
		})
		callbacks.OnProcessData = &onProcessData
		finish = func() { _ = bar.Finish() }
	}

	batch, err := pool.Run(ctx, jobs, callbacks)

	finish()

	if err != nil {
		return err
	}

	if failed := batch.Failed(); len(failed) > 0 {
		env.log.Warn("Some batch jobs failed", zap.Int("failed", len(failed)), zap.Int("jobs", len(jobs)))
	}

	if dir := cmd.String("export-dir"); dir != "" {
		if err := exportResults(env, dir); err != nil {
			return err
		}
	}

	return writeOutput(cmd.String("output"), summarize(batch))
}

// exportResults writes the results store to Parquet files when it supports it.
func exportResults(env *environment, dir string) error {
	exporter, ok := env.store.(interface{ Write(dir string) error })
	if !ok {
		return fmt.Errorf("--export-dir requires a duckdb:// store")
	}

	return exporter.Write(dir)
}

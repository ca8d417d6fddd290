// Package runner executes many backtests and walk-forward validations concurrently.
package runner

import (
	"context"
	"runtime"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rxtech-lab/argo-guard/internal/backtest/engine"
	"github.com/rxtech-lab/argo-guard/internal/backtest/walkforward"
	"github.com/rxtech-lab/argo-guard/internal/logger"
	"github.com/rxtech-lab/argo-guard/internal/strategy"
	"github.com/rxtech-lab/argo-guard/internal/types"
	"github.com/rxtech-lab/argo-guard/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// JobKind selects what a Job runs.
type JobKind string

const (
	JobKindBacktest    JobKind = "backtest"
	JobKindWalkForward JobKind = "walkforward"
)

// Job is one unit of work of a batch. Only the params matching Kind are read.
type Job struct {
	Name        string
	Kind        JobKind
	Strategy    strategy.Strategy
	Backtest    engine.BacktestParams
	WalkForward walkforward.WalkForwardParams
}

// JobResult is the outcome of one Job. Exactly one of Result, WalkForward and Err is set.
type JobResult struct {
	RunID       string
	Index       int
	Name        string
	Kind        JobKind
	Result      *types.Result
	WalkForward *types.WalkForwardResult
	Err         error
	Duration    time.Duration
}

// Batch is the outcome of Pool.Run. Results keep the order of the submitted jobs.
type Batch struct {
	ID      string
	Results []JobResult
}

// Failed returns the results whose job returned an error.
func (b Batch) Failed() []JobResult {
	var failed []JobResult

	for _, r := range b.Results {
		if r.Err != nil {
			failed = append(failed, r)
		}
	}

	return failed
}

// Pool runs jobs on a bounded number of goroutines. The engine must be initialized and
// must have its data source set before Run is called.
type Pool struct {
	engine    engine.Engine
	validator *walkforward.Validator
	workers   int
	log       *logger.Logger
	newID     func() string
}

// NewPool creates a pool. workers <= 0 uses one worker per CPU.
func NewPool(backtester engine.Engine, validator *walkforward.Validator, workers int, log *logger.Logger) *Pool {
	if log == nil {
		log = logger.NewNopLogger()
	}

	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	if validator == nil {
		validator = walkforward.NewValidator(backtester, log)
	}

	return &Pool{
		engine:    backtester,
		validator: validator,
		workers:   workers,
		log:       log,
		newID:     func() string { return uuid.New().String() },
	}
}

// Workers returns the concurrency limit.
func (p *Pool) Workers() int {
	return p.workers
}

// Run executes jobs and waits for all of them. A failing job does not stop the others;
// its error is kept in its JobResult. OnBacktestStart receives the job count,
// OnProcessData reports finished jobs and may abort the batch, and OnRunStart and
// OnRunEnd are forwarded to every backtest. Callbacks must be safe for concurrent use.
func (p *Pool) Run(ctx context.Context, jobs []Job, callbacks engine.LifecycleCallbacks) (batch Batch, err error) {
	batch = Batch{
		ID:      p.newID(),
		Results: make([]JobResult, len(jobs)),
	}

	defer func() {
		callbacks.BacktestEnd(err)
	}()

	if err := callbacks.BacktestStart(len(jobs)); err != nil {
		return batch, err
	}

	p.log.Info("Starting batch",
		zap.String("batch_id", batch.ID),
		zap.Int("jobs", len(jobs)),
		zap.Int("workers", p.workers),
	)

	perRun := engine.LifecycleCallbacks{
		OnRunStart: callbacks.OnRunStart,
		OnRunEnd:   callbacks.OnRunEnd,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.workers)

	var (
		mu       sync.Mutex
		finished int
	)

	for i, job := range jobs {
		g.Go(func() error {
			result := p.runJob(gctx, i, job, perRun)

			mu.Lock()
			defer mu.Unlock()

			batch.Results[i] = result
			finished++

			return callbacks.ProcessData(finished, len(jobs))
		})
	}

	if err := g.Wait(); err != nil {
		return batch, err
	}

	if err := ctx.Err(); err != nil {
		return batch, err
	}

	p.log.Info("Batch finished",
		zap.String("batch_id", batch.ID),
		zap.Int("jobs", len(jobs)),
		zap.Int("failed", len(batch.Failed())),
	)

	return batch, nil
}

func (p *Pool) runJob(ctx context.Context, index int, job Job, callbacks engine.LifecycleCallbacks) JobResult {
	result := JobResult{
		RunID: p.newID(),
		Index: index,
		Name:  job.Name,
		Kind:  job.Kind,
	}

	if job.Strategy == nil {
		result.Err = errors.New(errors.ErrCodeMissingParameter, "job strategy is required")

		return result
	}

	if err := ctx.Err(); err != nil {
		result.Err = err

		return result
	}

	started := time.Now()
	strat := job.Strategy.Clone()

	switch job.Kind {
	case JobKindBacktest:
		r, err := p.engine.RunBacktest(ctx, strat, job.Backtest, callbacks)
		if err != nil {
			result.Err = err
		} else {
			result.Result = &r
		}
	case JobKindWalkForward:
		r, err := p.validator.RunWalkForward(ctx, strat, job.WalkForward, engine.LifecycleCallbacks{})
		if err != nil {
			result.Err = err
		} else {
			result.WalkForward = &r
		}
	default:
		result.Err = errors.Newf(errors.ErrCodeInvalidParameter, "unknown job kind %q", job.Kind)
	}

	result.Duration = time.Since(started)

	if result.Err != nil {
		p.log.Warn("Job failed",
			zap.String("run_id", result.RunID),
			zap.String("job", job.Name),
			zap.String("kind", string(job.Kind)),
			zap.Error(result.Err),
		)
	}

	return result
}

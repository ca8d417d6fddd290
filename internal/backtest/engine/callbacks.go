package engine

import "github.com/rxtech-lab/argo-guard/internal/types"

// BacktestStart invokes OnBacktestStart if set.
func (c LifecycleCallbacks) BacktestStart(totalRuns int) error {
	if c.OnBacktestStart == nil {
		return nil
	}

	return (*c.OnBacktestStart)(totalRuns)
}

// BacktestEnd invokes OnBacktestEnd if set.
func (c LifecycleCallbacks) BacktestEnd(err error) {
	if c.OnBacktestEnd != nil {
		(*c.OnBacktestEnd)(err)
	}
}

// RunStart invokes OnRunStart if set.
func (c LifecycleCallbacks) RunStart(runID string, symbol string, totalCandles int) error {
	if c.OnRunStart == nil {
		return nil
	}

	return (*c.OnRunStart)(runID, symbol, totalCandles)
}

// RunEnd invokes OnRunEnd if set.
func (c LifecycleCallbacks) RunEnd(result types.Result) {
	if c.OnRunEnd != nil {
		(*c.OnRunEnd)(result)
	}
}

// ProcessData invokes OnProcessData if set.
func (c LifecycleCallbacks) ProcessData(current int, total int) error {
	if c.OnProcessData == nil {
		return nil
	}

	return (*c.OnProcessData)(current, total)
}

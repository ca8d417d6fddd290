package store

import (
	"context"

	"github.com/rxtech-lab/argo-guard/internal/types"
)

// NoopStore discards everything.
type NoopStore struct{}

func NewNoopStore() *NoopStore {
	return &NoopStore{}
}

func (NoopStore) SaveBacktestRun(context.Context, types.Result) error {
	return nil
}

func (NoopStore) SaveWalkForwardRun(context.Context, types.Fold) error {
	return nil
}

func (NoopStore) Close() error {
	return nil
}

// Package store persists backtest results and walk-forward folds.
package store

import (
	"context"
	"io"
	"strings"

	"github.com/rxtech-lab/argo-guard/internal/backtest/engine"
	"github.com/rxtech-lab/argo-guard/internal/logger"
	"github.com/rxtech-lab/argo-guard/pkg/errors"
)

// Store is a closable engine.ResultStore.
type Store interface {
	engine.ResultStore
	io.Closer
}

// Open selects a store by URI:
//
//	""                          no-op store
//	duckdb://<path>             DuckDB file, duckdb://:memory: for an in-memory database
//	postgres://... postgresql://...  PostgreSQL
func Open(ctx context.Context, uri string, log *logger.Logger) (Store, error) {
	switch {
	case uri == "":
		return NewNoopStore(), nil
	case strings.HasPrefix(uri, "duckdb://"):
		return NewDuckDBStore(strings.TrimPrefix(uri, "duckdb://"), log)
	case strings.HasPrefix(uri, "postgres://"), strings.HasPrefix(uri, "postgresql://"):
		return NewPostgresStore(ctx, uri, log)
	default:
		return nil, errors.Newf(errors.ErrCodeInvalidConfiguration, "unsupported store uri %q", uri)
	}
}

package risk

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-guard/internal/types"
	"github.com/rxtech-lab/argo-guard/pkg/errors"
)

// StatsStore persists daily risk stats by date for crash recovery.
type StatsStore interface {
	// Load returns the stats saved for date, or None when nothing was saved.
	Load(ctx context.Context, date string) (optional.Option[types.DailyRiskStats], error)
	Save(ctx context.Context, stats types.DailyRiskStats) error
}

// FileStatsStore keeps one YAML file per day under a directory.
type FileStatsStore struct {
	dir string
}

func NewFileStatsStore(dir string) (*FileStatsStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, errors.Wrapf(errors.ErrCodeRiskStatsFailed, err, "failed to create risk stats directory %s", dir)
	}

	return &FileStatsStore{dir: dir}, nil
}

func (s *FileStatsStore) path(date string) (string, error) {
	if _, err := time.Parse(types.DateLayout, date); err != nil {
		return "", errors.Wrapf(errors.ErrCodeInvalidParameter, err, "invalid stats date %q", date)
	}

	return filepath.Join(s.dir, date+".yaml"), nil
}

// Load implements StatsStore.
func (s *FileStatsStore) Load(_ context.Context, date string) (optional.Option[types.DailyRiskStats], error) {
	path, err := s.path(date)
	if err != nil {
		return optional.None[types.DailyRiskStats](), err
	}

	stats, err := types.ReadDailyRiskStats(path)
	if err != nil {
		if os.IsNotExist(err) {
			return optional.None[types.DailyRiskStats](), nil
		}

		return optional.None[types.DailyRiskStats](), errors.Wrap(errors.ErrCodeRiskStatsFailed, "failed to load risk stats", err)
	}

	return optional.Some(stats), nil
}

// Save implements StatsStore. The file is replaced atomically.
func (s *FileStatsStore) Save(_ context.Context, stats types.DailyRiskStats) error {
	path, err := s.path(stats.Date)
	if err != nil {
		return err
	}

	tmp := fmt.Sprintf("%s.tmp", path)
	if err := types.WriteDailyRiskStats(tmp, stats); err != nil {
		return errors.Wrap(errors.ErrCodeRiskStatsFailed, "failed to save risk stats", err)
	}

	if err := os.Rename(tmp, path); err != nil {
		return errors.Wrap(errors.ErrCodeRiskStatsFailed, "failed to save risk stats", err)
	}

	return nil
}

// MemoryStatsStore keeps stats in process memory.
type MemoryStatsStore struct {
	mu    sync.RWMutex
	stats map[string]types.DailyRiskStats
}

func NewMemoryStatsStore() *MemoryStatsStore {
	return &MemoryStatsStore{stats: make(map[string]types.DailyRiskStats)}
}

// Load implements StatsStore.
func (s *MemoryStatsStore) Load(_ context.Context, date string) (optional.Option[types.DailyRiskStats], error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats, ok := s.stats[date]
	if !ok {
		return optional.None[types.DailyRiskStats](), nil
	}

	return optional.Some(stats.Clone()), nil
}

// Save implements StatsStore.
func (s *MemoryStatsStore) Save(_ context.Context, stats types.DailyRiskStats) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.stats[stats.Date] = stats.Clone()

	return nil
}

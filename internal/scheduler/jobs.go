package scheduler

import (
	"context"
	"log/slog"
	"time"
)

const (
	JobReloadEmbeddings   = "reload-embeddings"
	JobReloadRequirements = "reload-ppe-requirements"
	JobSweepOrphans       = "sweep-orphan-snapshots"
)

// Loader refreshes an in-memory view from the database. On failure the
// previous view stays in place.
type Loader interface {
	Load(ctx context.Context) error
}

// Sweeper deletes orphaned evidence and reports how many were removed
type Sweeper interface {
	Sweep(ctx context.Context) (int, error)
}

// ReloadJob wraps a Loader as a scheduled job
func ReloadJob(name string, interval time.Duration, loader Loader) Job {
	return Job{
		Name:     name,
		Interval: interval,
		Run:      loader.Load,
	}
}

// SweepJob wraps a Sweeper, logging how many orphans each pass removed
func SweepJob(interval time.Duration, sweeper Sweeper, logger *slog.Logger) Job {
	return Job{
		Name:     JobSweepOrphans,
		Interval: interval,
		Run: func(ctx context.Context) error {
			n, err := sweeper.Sweep(ctx)
			if n > 0 {
				logger.Info("orphan snapshots removed", "count", n)
			}
			return err
		},
	}
}

package alert

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/saturnino-fabrica-de-software/vigia/internal/domain"
	"github.com/saturnino-fabrica-de-software/vigia/internal/snapshot"
)

type OrphanStore interface {
	ListOrphans(ctx context.Context, limit int) ([]domain.OrphanSnapshot, error)
	DeleteOrphan(ctx context.Context, id uuid.UUID) error
}

// Janitor removes snapshots whose alert row was never written
type Janitor struct {
	orphans   OrphanStore
	snapshots snapshot.Store
	batchSize int
	timeout   time.Duration
	logger    *slog.Logger
}

func NewJanitor(orphans OrphanStore, snapshots snapshot.Store, timeout time.Duration, logger *slog.Logger) *Janitor {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Janitor{
		orphans:   orphans,
		snapshots: snapshots,
		batchSize: 200,
		timeout:   timeout,
		logger:    logger,
	}
}

// Sweep processes one batch. Snapshots that a retried alert ended up
// referencing are kept; only the orphan record is dropped.
func (j *Janitor) Sweep(ctx context.Context) (int, error) {
	listCtx, cancel := context.WithTimeout(ctx, j.timeout)
	orphans, err := j.orphans.ListOrphans(listCtx, j.batchSize)
	cancel()
	if err != nil {
		return 0, err
	}

	removed := 0
	for _, o := range orphans {
		if err := ctx.Err(); err != nil {
			return removed, err
		}

		if !o.Referenced {
			delCtx, cancel := context.WithTimeout(ctx, j.timeout)
			err := j.snapshots.Delete(delCtx, o.Path)
			cancel()
			if err != nil {
				j.logger.Error("failed to delete orphaned snapshot",
					"path", o.Path,
					"error", err,
				)
				continue
			}
			removed++
		}

		delCtx, cancel := context.WithTimeout(ctx, j.timeout)
		err := j.orphans.DeleteOrphan(delCtx, o.ID)
		cancel()
		if err != nil {
			j.logger.Error("failed to delete orphan record",
				"orphan_id", o.ID,
				"error", err,
			)
		}
	}

	if len(orphans) > 0 {
		j.logger.Info("orphan sweep finished",
			"checked", len(orphans),
			"removed", removed,
		)
	}
	return removed, nil
}

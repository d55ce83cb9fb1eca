package alert

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/saturnino-fabrica-de-software/vigia/internal/domain"
	"github.com/saturnino-fabrica-de-software/vigia/internal/incident"
	"github.com/saturnino-fabrica-de-software/vigia/internal/snapshot"
)

// Store is the row side of the recorder
type Store interface {
	InsertPPE(ctx context.Context, a *domain.PPEAlert) (bool, error)
	InsertUnauthorized(ctx context.Context, a *domain.UnauthorizedAlert) (bool, error)
	ReportOrphan(ctx context.Context, o domain.OrphanSnapshot) error
}

// Publisher receives alerts once they are durable
type Publisher interface {
	Publish(ctx context.Context, event Event)
}

// Recorder writes the evidence snapshot and then the alert row. No row is
// written without a snapshot; a snapshot whose row failed is reported as an
// orphan for the janitor.
type Recorder struct {
	snapshots snapshot.Store
	store     Store
	publisher Publisher
	timeout   time.Duration
	logger    *slog.Logger
	now       func() time.Time
}

func NewRecorder(snapshots snapshot.Store, store Store, publisher Publisher, timeout time.Duration, logger *slog.Logger) *Recorder {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Recorder{
		snapshots: snapshots,
		store:     store,
		publisher: publisher,
		timeout:   timeout,
		logger:    logger,
		now:       time.Now,
	}
}

func (r *Recorder) RecordPPE(ctx context.Context, cameraID uuid.UUID, inc incident.Incident, ev Evidence) (uuid.UUID, error) {
	path, err := r.saveSnapshot(ctx, domain.AlertKindPPE, inc, ev)
	if err != nil {
		return uuid.Nil, err
	}

	row := &domain.PPEAlert{
		ID:           inc.ID,
		CameraID:     cameraID,
		TrackID:      inc.TrackID,
		EmployeeID:   inc.Identity.EmployeeID,
		Violation:    inc.Violation,
		Timestamp:    inc.CapturedAt,
		SnapshotPath: path,
	}

	insertCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	inserted, err := r.store.InsertPPE(insertCtx, row)
	if err != nil {
		r.reportOrphan(ctx, domain.AlertKindPPE, path, err.Error())
		return uuid.Nil, domain.ErrStoreUnavailable.WithError(err)
	}
	if !inserted {
		r.reportOrphan(ctx, domain.AlertKindPPE, path, "alert already recorded")
		return inc.ID, nil
	}

	r.logger.Info("ppe alert recorded",
		"alert_id", row.ID,
		"camera_id", cameraID,
		"track_id", row.TrackID,
		"employee_id", row.EmployeeID,
		"violation", row.Violation.String(),
		"attempt", inc.Attempt,
	)

	r.publish(ctx, Event{
		Type:      EventPPEAlertCreated,
		CameraID:  cameraID,
		PPE:       row,
		Timestamp: row.Timestamp,
	})

	return row.ID, nil
}

func (r *Recorder) RecordUnauthorized(ctx context.Context, cameraID uuid.UUID, inc incident.Incident, ev Evidence) (uuid.UUID, error) {
	path, err := r.saveSnapshot(ctx, domain.AlertKindUnauthorized, inc, ev)
	if err != nil {
		return uuid.Nil, err
	}

	row := &domain.UnauthorizedAlert{
		ID:           inc.ID,
		CameraID:     cameraID,
		TrackID:      inc.TrackID,
		Timestamp:    inc.CapturedAt,
		SnapshotPath: path,
	}
	if inc.Identity.Known {
		employeeID := inc.Identity.EmployeeID
		row.EmployeeID = &employeeID
	}

	insertCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	inserted, err := r.store.InsertUnauthorized(insertCtx, row)
	if err != nil {
		r.reportOrphan(ctx, domain.AlertKindUnauthorized, path, err.Error())
		return uuid.Nil, domain.ErrStoreUnavailable.WithError(err)
	}
	if !inserted {
		r.reportOrphan(ctx, domain.AlertKindUnauthorized, path, "alert already recorded")
		return inc.ID, nil
	}

	r.logger.Info("unauthorized alert recorded",
		"alert_id", row.ID,
		"camera_id", cameraID,
		"track_id", row.TrackID,
		"known", inc.Identity.Known,
		"attempt", inc.Attempt,
	)

	r.publish(ctx, Event{
		Type:         EventUnauthorizedAlertCreated,
		CameraID:     cameraID,
		Unauthorized: row,
		Timestamp:    row.Timestamp,
	})

	return row.ID, nil
}

func (r *Recorder) saveSnapshot(ctx context.Context, kind domain.AlertKind, inc incident.Incident, ev Evidence) (string, error) {
	if len(ev.Frame) == 0 {
		return "", domain.ErrSnapshotWrite.WithError(errors.New("frame is empty"))
	}

	at := ev.CapturedAt
	if at.IsZero() {
		at = r.now()
	}
	key := snapshot.Key(string(kind), at, inc.ID, ev.ContentType)

	saveCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	path, err := r.snapshots.Save(saveCtx, key, ev.Frame, ev.ContentType)
	if err != nil {
		r.logger.Error("snapshot write failed, alert aborted",
			"kind", kind,
			"incident_id", inc.ID,
			"track_id", inc.TrackID,
			"error", err,
		)
		return "", domain.ErrSnapshotWrite.WithError(err)
	}
	return path, nil
}

// reportOrphan runs on its own deadline, detached from ctx cancellation.
func (r *Recorder) reportOrphan(ctx context.Context, kind domain.AlertKind, path, reason string) {
	reportCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), r.timeout)
	defer cancel()

	r.logger.Warn("orphaned snapshot",
		"kind", kind,
		"path", path,
		"reason", reason,
	)

	err := r.store.ReportOrphan(reportCtx, domain.OrphanSnapshot{Path: path, Kind: kind, Reason: reason})
	if err != nil {
		r.logger.Error("failed to report orphaned snapshot",
			"path", path,
			"error", err,
		)
	}
}

func (r *Recorder) publish(ctx context.Context, event Event) {
	if r.publisher == nil {
		return
	}
	r.publisher.Publish(ctx, event)
}

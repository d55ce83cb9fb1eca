package alert

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/saturnino-fabrica-de-software/vigia/internal/domain"
	"github.com/saturnino-fabrica-de-software/vigia/internal/repository"
)

const (
	DefaultListLimit = 100
	MaxListLimit     = 1000
)

type Repository struct {
	db repository.PgxPool
}

func NewRepository(db repository.PgxPool) *Repository {
	return &Repository{db: db}
}

// InsertPPE writes the alert unless a row with the same id exists.
// inserted=false means an earlier attempt already stored it.
func (r *Repository) InsertPPE(ctx context.Context, a *domain.PPEAlert) (bool, error) {
	query := `
		INSERT INTO ppe_alerts (id, camera_id, track_id, employee_id, violation, timestamp, snapshot_path)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO NOTHING
		RETURNING created_at
	`

	err := r.db.QueryRow(ctx, query,
		a.ID, a.CameraID, a.TrackID, a.EmployeeID, a.Violation.String(), a.Timestamp, a.SnapshotPath,
	).Scan(&a.CreatedAt)

	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("insert ppe alert: %w", err)
	}

	return true, nil
}

func (r *Repository) InsertUnauthorized(ctx context.Context, a *domain.UnauthorizedAlert) (bool, error) {
	query := `
		INSERT INTO unauthorized_alerts (id, camera_id, track_id, employee_id, timestamp, snapshot_path)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO NOTHING
		RETURNING created_at
	`

	err := r.db.QueryRow(ctx, query,
		a.ID, a.CameraID, a.TrackID, a.EmployeeID, a.Timestamp, a.SnapshotPath,
	).Scan(&a.CreatedAt)

	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("insert unauthorized alert: %w", err)
	}

	return true, nil
}

// ListPPE returns the newest alerts first
func (r *Repository) ListPPE(ctx context.Context, limit int) ([]domain.PPEAlert, error) {
	query := `
		SELECT id, camera_id, track_id, employee_id, violation, timestamp, snapshot_path, created_at
		FROM ppe_alerts
		ORDER BY timestamp DESC, created_at DESC
		LIMIT $1
	`

	rows, err := r.db.Query(ctx, query, clampLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("list ppe alerts: %w", err)
	}
	defer rows.Close()

	alerts := []domain.PPEAlert{}
	for rows.Next() {
		var a domain.PPEAlert
		var violation string

		err := rows.Scan(
			&a.ID, &a.CameraID, &a.TrackID, &a.EmployeeID,
			&violation, &a.Timestamp, &a.SnapshotPath, &a.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan ppe alert: %w", err)
		}

		a.Violation = domain.ParseViolationSet(violation)
		alerts = append(alerts, a)
	}

	return alerts, rows.Err()
}

// ListUnauthorized returns the newest alerts first
func (r *Repository) ListUnauthorized(ctx context.Context, limit int) ([]domain.UnauthorizedAlert, error) {
	query := `
		SELECT id, camera_id, track_id, employee_id, timestamp, snapshot_path, created_at
		FROM unauthorized_alerts
		ORDER BY timestamp DESC, created_at DESC
		LIMIT $1
	`

	rows, err := r.db.Query(ctx, query, clampLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("list unauthorized alerts: %w", err)
	}
	defer rows.Close()

	alerts := []domain.UnauthorizedAlert{}
	for rows.Next() {
		var a domain.UnauthorizedAlert

		err := rows.Scan(
			&a.ID, &a.CameraID, &a.TrackID, &a.EmployeeID,
			&a.Timestamp, &a.SnapshotPath, &a.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan unauthorized alert: %w", err)
		}

		alerts = append(alerts, a)
	}

	return alerts, rows.Err()
}

func (r *Repository) ReportOrphan(ctx context.Context, o domain.OrphanSnapshot) error {
	query := `
		INSERT INTO snapshot_orphans (path, kind, reason)
		VALUES ($1, $2, $3)
		ON CONFLICT (path) DO UPDATE SET reason = EXCLUDED.reason
	`

	if _, err := r.db.Exec(ctx, query, o.Path, o.Kind, o.Reason); err != nil {
		return fmt.Errorf("report orphan snapshot: %w", err)
	}

	return nil
}

func (r *Repository) ListOrphans(ctx context.Context, limit int) ([]domain.OrphanSnapshot, error) {
	query := `
		SELECT o.id, o.path, o.kind, o.reason,
		       EXISTS (SELECT 1 FROM ppe_alerts p WHERE p.snapshot_path = o.path)
		       OR EXISTS (SELECT 1 FROM unauthorized_alerts u WHERE u.snapshot_path = o.path),
		       o.created_at
		FROM snapshot_orphans o
		ORDER BY o.created_at
		LIMIT $1
	`

	rows, err := r.db.Query(ctx, query, clampLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("list orphan snapshots: %w", err)
	}
	defer rows.Close()

	var orphans []domain.OrphanSnapshot
	for rows.Next() {
		var o domain.OrphanSnapshot
		if err := rows.Scan(&o.ID, &o.Path, &o.Kind, &o.Reason, &o.Referenced, &o.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan orphan snapshot: %w", err)
		}
		orphans = append(orphans, o)
	}

	return orphans, rows.Err()
}

func (r *Repository) DeleteOrphan(ctx context.Context, id uuid.UUID) error {
	if _, err := r.db.Exec(ctx, `DELETE FROM snapshot_orphans WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete orphan snapshot: %w", err)
	}
	return nil
}

func clampLimit(limit int) int {
	if limit <= 0 {
		return DefaultListLimit
	}
	return min(limit, MaxListLimit)
}

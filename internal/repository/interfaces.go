package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/saturnino-fabrica-de-software/vigia/internal/domain"
)

// PgxPool is the subset of *pgxpool.Pool used by repositories.
// pgxmock.PgxPoolIface satisfies it in tests.
type PgxPool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
}

// EmployeeRepositoryInterface defines operations for employee embedding data access
type EmployeeRepositoryInterface interface {
	Upsert(ctx context.Context, employeeID string, embedding []float64) error
	List(ctx context.Context) ([]domain.Employee, error)
}

// PPEConfigRepositoryInterface defines operations for the singleton PPE requirement
type PPEConfigRepositoryInterface interface {
	Replace(ctx context.Context, req domain.PPERequirement) error
	Get(ctx context.Context) (domain.PPERequirement, error)
}

// CameraRepositoryInterface defines operations for camera data access
type CameraRepositoryInterface interface {
	Create(ctx context.Context, camera *domain.Camera) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Camera, error)
	List(ctx context.Context) ([]domain.Camera, error)
}

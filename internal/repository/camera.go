package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/saturnino-fabrica-de-software/vigia/internal/domain"
)

type CameraRepository struct {
	pool PgxPool
}

func NewCameraRepository(pool PgxPool) *CameraRepository {
	return &CameraRepository{pool: pool}
}

const cameraColumns = `id, name, username, password, ip_address, restricted,
		       allowed_employees, window_start_minute, window_end_minute, created_at`

func (r *CameraRepository) Create(ctx context.Context, camera *domain.Camera) error {
	query := `
		INSERT INTO cameras (id, name, username, password, ip_address, restricted,
		                     allowed_employees, window_start_minute, window_end_minute, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NOW())
		RETURNING created_at
	`

	if camera.ID == uuid.Nil {
		camera.ID = uuid.New()
	}

	allowed := camera.Policy.AllowedEmployees
	if allowed == nil {
		allowed = []string{}
	}

	err := r.pool.QueryRow(ctx, query,
		camera.ID,
		camera.Name,
		camera.Username,
		camera.Password,
		camera.IPAddress,
		camera.Policy.Restricted,
		allowed,
		camera.Policy.WindowStart,
		camera.Policy.WindowEnd,
	).Scan(&camera.CreatedAt)

	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrCameraExists
		}
		return fmt.Errorf("create camera: %w", err)
	}

	return nil
}

func (r *CameraRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Camera, error) {
	query := `SELECT ` + cameraColumns + ` FROM cameras WHERE id = $1`

	camera, err := scanCamera(r.pool.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrCameraNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get camera: %w", err)
	}

	return camera, nil
}

func (r *CameraRepository) List(ctx context.Context) ([]domain.Camera, error) {
	query := `SELECT ` + cameraColumns + ` FROM cameras ORDER BY created_at, name`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list cameras: %w", err)
	}
	defer rows.Close()

	var cameras []domain.Camera
	for rows.Next() {
		camera, err := scanCamera(rows)
		if err != nil {
			return nil, fmt.Errorf("scan camera: %w", err)
		}
		cameras = append(cameras, *camera)
	}

	return cameras, rows.Err()
}

func scanCamera(row pgx.Row) (*domain.Camera, error) {
	var c domain.Camera
	err := row.Scan(
		&c.ID,
		&c.Name,
		&c.Username,
		&c.Password,
		&c.IPAddress,
		&c.Policy.Restricted,
		&c.Policy.AllowedEmployees,
		&c.Policy.WindowStart,
		&c.Policy.WindowEnd,
		&c.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/saturnino-fabrica-de-software/vigia/internal/domain"
)

type PPEConfigRepository struct {
	pool PgxPool
}

func NewPPEConfigRepository(pool PgxPool) *PPEConfigRepository {
	return &PPEConfigRepository{pool: pool}
}

// Replace discards the stored configuration and writes req in one transaction
func (r *PPEConfigRepository) Replace(ctx context.Context, req domain.PPERequirement) (err error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin ppe config tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	if _, err = tx.Exec(ctx, `DELETE FROM ppe_config`); err != nil {
		return fmt.Errorf("clear ppe config: %w", err)
	}

	query := `
		INSERT INTO ppe_config (id, helmet, vest, gloves, mask, glasses, updated_at)
		VALUES (1, $1, $2, $3, $4, $5, NOW())
	`
	if _, err = tx.Exec(ctx, query, req.Helmet, req.Vest, req.Gloves, req.Mask, req.Glasses); err != nil {
		return fmt.Errorf("insert ppe config: %w", err)
	}

	if err = tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit ppe config: %w", err)
	}

	return nil
}

// Get returns the stored configuration, or the zero value when none was set
func (r *PPEConfigRepository) Get(ctx context.Context) (domain.PPERequirement, error) {
	query := `SELECT helmet, vest, gloves, mask, glasses FROM ppe_config WHERE id = 1`

	var req domain.PPERequirement
	err := r.pool.QueryRow(ctx, query).Scan(&req.Helmet, &req.Vest, &req.Gloves, &req.Mask, &req.Glasses)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.PPERequirement{}, nil
	}
	if err != nil {
		return domain.PPERequirement{}, fmt.Errorf("get ppe config: %w", err)
	}

	return req, nil
}

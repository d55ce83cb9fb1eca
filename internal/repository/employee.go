package repository

import (
	"context"
	"fmt"

	"github.com/pgvector/pgvector-go"

	"github.com/saturnino-fabrica-de-software/vigia/internal/domain"
)

type EmployeeRepository struct {
	pool PgxPool
}

func NewEmployeeRepository(pool PgxPool) *EmployeeRepository {
	return &EmployeeRepository{pool: pool}
}

// Upsert stores the embedding, replacing any previous one for the same employee
func (r *EmployeeRepository) Upsert(ctx context.Context, employeeID string, embedding []float64) error {
	query := `
		INSERT INTO employees (employee_id, embedding, created_at, updated_at)
		VALUES ($1, $2, NOW(), NOW())
		ON CONFLICT (employee_id) DO UPDATE
		SET embedding = EXCLUDED.embedding, updated_at = NOW()
	`

	if _, err := r.pool.Exec(ctx, query, employeeID, toVector(embedding)); err != nil {
		return fmt.Errorf("upsert employee: %w", err)
	}

	return nil
}

func (r *EmployeeRepository) List(ctx context.Context) ([]domain.Employee, error) {
	query := `
		SELECT employee_id, embedding, updated_at
		FROM employees
		ORDER BY employee_id
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list employees: %w", err)
	}
	defer rows.Close()

	var employees []domain.Employee
	for rows.Next() {
		var e domain.Employee
		var embedding *pgvector.Vector

		if err := rows.Scan(&e.EmployeeID, &embedding, &e.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan employee: %w", err)
		}

		if embedding != nil {
			e.Embedding = fromVector(*embedding)
		}
		employees = append(employees, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list employees: %w", err)
	}

	return employees, nil
}

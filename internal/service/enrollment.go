package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/saturnino-fabrica-de-software/vigia/internal/audit"
	"github.com/saturnino-fabrica-de-software/vigia/internal/domain"
	"github.com/saturnino-fabrica-de-software/vigia/internal/provider"
)

const maxEmployeeIDLength = 128

// EmbeddingStore is the write side of the shared embedding store
type EmbeddingStore interface {
	Put(ctx context.Context, employeeID string, embedding []float64) error
	Dimension() int
}

type EmployeeLister interface {
	List(ctx context.Context) ([]domain.Employee, error)
}

type EnrollmentService struct {
	embedder  provider.Embedder
	store     EmbeddingStore
	employees EmployeeLister
	audit     audit.Logger
}

func NewEnrollmentService(
	embedder provider.Embedder,
	store EmbeddingStore,
	employees EmployeeLister,
	auditLogger audit.Logger,
) *EnrollmentService {
	if auditLogger == nil {
		auditLogger = &audit.NoOpLogger{}
	}
	return &EnrollmentService{
		embedder:  embedder,
		store:     store,
		employees: employees,
		audit:     auditLogger,
	}
}

// Enroll extracts the face embedding from an employee photo and stores it,
// replacing any previous enrollment of the same employee
func (s *EnrollmentService) Enroll(ctx context.Context, employeeID string, image []byte) (*domain.EmployeeSummary, error) {
	employeeID, err := normalizeEmployeeID(employeeID)
	if err != nil {
		return nil, err
	}
	if len(image) == 0 {
		return nil, domain.ErrInvalidImage
	}

	embedding, err := s.embedder.Embed(ctx, image)
	if err != nil {
		s.logRejected(ctx, employeeID, "upload", err)
		var appErr *domain.AppError
		if errors.As(err, &appErr) {
			return nil, err
		}
		return nil, fmt.Errorf("employee %s: embed face: %w", employeeID, err)
	}

	return s.put(ctx, employeeID, embedding, "upload")
}

// EnrollEmbedding stores an embedding computed elsewhere
func (s *EnrollmentService) EnrollEmbedding(ctx context.Context, employeeID string, embedding []float64) (*domain.EmployeeSummary, error) {
	employeeID, err := normalizeEmployeeID(employeeID)
	if err != nil {
		return nil, err
	}

	return s.put(ctx, employeeID, embedding, "embedding")
}

func (s *EnrollmentService) put(ctx context.Context, employeeID string, embedding []float64, source string) (*domain.EmployeeSummary, error) {
	if err := s.store.Put(ctx, employeeID, embedding); err != nil {
		s.logRejected(ctx, employeeID, source, err)
		return nil, err
	}

	_ = s.audit.Log(ctx, audit.Event{
		EventType: audit.EventEmployeeEnrolled,
		Subject:   employeeID,
		Source:    source,
		Success:   true,
		Metadata:  map[string]string{"dimension": fmt.Sprint(len(embedding))},
	})

	return &domain.EmployeeSummary{
		EmployeeID: employeeID,
		Dimension:  len(embedding),
	}, nil
}

func (s *EnrollmentService) logRejected(ctx context.Context, employeeID, source string, err error) {
	_ = s.audit.Log(ctx, audit.Event{
		EventType: audit.EventEnrollmentRejected,
		Subject:   employeeID,
		Source:    source,
		Success:   false,
		Error:     err.Error(),
	})
}

func (s *EnrollmentService) List(ctx context.Context) ([]domain.EmployeeSummary, error) {
	employees, err := s.employees.List(ctx)
	if err != nil {
		return nil, domain.ErrStoreUnavailable.WithError(err)
	}

	out := make([]domain.EmployeeSummary, 0, len(employees))
	for _, e := range employees {
		out = append(out, domain.EmployeeSummary{
			EmployeeID: e.EmployeeID,
			Dimension:  len(e.Embedding),
			UpdatedAt:  e.UpdatedAt,
		})
	}
	return out, nil
}

func normalizeEmployeeID(id string) (string, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return "", domain.ErrValidationFailed.WithError(fmt.Errorf("employee_id is required"))
	}
	if len(id) > maxEmployeeIDLength {
		return "", domain.ErrValidationFailed.WithError(
			fmt.Errorf("employee_id longer than %d characters", maxEmployeeIDLength))
	}
	return id, nil
}

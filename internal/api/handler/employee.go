package handler

import (
	"context"
	"io"

	"github.com/gofiber/fiber/v2"

	"github.com/saturnino-fabrica-de-software/vigia/internal/domain"
)

const (
	maxImageSize = 10 * 1024 * 1024 // 10MB
)

var validImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/webp": true,
}

// EmployeeService enrolls employees and lists enrolled ones
type EmployeeService interface {
	Enroll(ctx context.Context, employeeID string, image []byte) (*domain.EmployeeSummary, error)
	EnrollEmbedding(ctx context.Context, employeeID string, embedding []float64) (*domain.EmployeeSummary, error)
	List(ctx context.Context) ([]domain.EmployeeSummary, error)
}

type EmployeeHandler struct {
	service EmployeeService
}

func NewEmployeeHandler(service EmployeeService) *EmployeeHandler {
	return &EmployeeHandler{service: service}
}

// EmbeddingRequest carries a precomputed face embedding
type EmbeddingRequest struct {
	Embedding []float64 `json:"embedding"`
}

type EmployeeListResponse struct {
	Employees []domain.EmployeeSummary `json:"employees"`
	Count     int                      `json:"count"`
}

// Enroll handles POST /api/employees
// multipart/form-data: employee_id (string), file (image)
func (h *EmployeeHandler) Enroll(c *fiber.Ctx) error {
	employeeID := c.FormValue("employee_id")
	if employeeID == "" {
		return domain.ErrValidationFailed.WithError(nil)
	}

	image, err := extractAndValidateImage(c)
	if err != nil {
		return err
	}

	summary, err := h.service.Enroll(c.UserContext(), employeeID, image)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(summary)
}

// EnrollEmbedding handles POST /api/employees/:id/embedding
func (h *EmployeeHandler) EnrollEmbedding(c *fiber.Ctx) error {
	var req EmbeddingRequest
	if err := c.BodyParser(&req); err != nil {
		return domain.ErrBadRequest.WithError(err)
	}
	if len(req.Embedding) == 0 {
		return domain.ErrInvalidEmbedding.WithError(nil)
	}

	summary, err := h.service.EnrollEmbedding(c.UserContext(), c.Params("id"), req.Embedding)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(summary)
}

// List handles GET /api/employees
func (h *EmployeeHandler) List(c *fiber.Ctx) error {
	employees, err := h.service.List(c.UserContext())
	if err != nil {
		return err
	}
	if employees == nil {
		employees = []domain.EmployeeSummary{}
	}

	return c.JSON(EmployeeListResponse{
		Employees: employees,
		Count:     len(employees),
	})
}

func extractAndValidateImage(c *fiber.Ctx) ([]byte, error) {
	file, err := c.FormFile("file")
	if err != nil {
		return nil, domain.ErrValidationFailed.WithError(err)
	}

	if file.Size == 0 || file.Size > maxImageSize {
		return nil, domain.ErrInvalidImage.WithError(nil)
	}

	if !validImageTypes[file.Header.Get("Content-Type")] {
		return nil, domain.ErrInvalidImage.WithError(nil)
	}

	f, err := file.Open()
	if err != nil {
		return nil, domain.ErrInvalidImage.WithError(err)
	}
	defer func() {
		_ = f.Close()
	}()

	image, err := io.ReadAll(f)
	if err != nil {
		return nil, domain.ErrInvalidImage.WithError(err)
	}

	return image, nil
}

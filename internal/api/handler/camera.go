package handler

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"github.com/saturnino-fabrica-de-software/vigia/internal/domain"
)

type CameraService interface {
	Register(ctx context.Context, camera *domain.Camera) error
	List(ctx context.Context) ([]domain.Camera, error)
}

type CameraHandler struct {
	service CameraService
}

func NewCameraHandler(service CameraService) *CameraHandler {
	return &CameraHandler{service: service}
}

// RegisterCameraRequest is the body of POST /api/camera. Password is
// accepted here but never echoed back.
type RegisterCameraRequest struct {
	Name         string              `json:"name"`
	Username     string              `json:"username"`
	Password     string              `json:"password"`
	IPAddress    string              `json:"ip_address"`
	AccessPolicy domain.AccessPolicy `json:"access_policy"`
}

type CameraListResponse struct {
	Cameras []domain.Camera `json:"cameras"`
	Count   int             `json:"count"`
}

// Register handles POST /api/camera
func (h *CameraHandler) Register(c *fiber.Ctx) error {
	var req RegisterCameraRequest
	if err := c.BodyParser(&req); err != nil {
		return domain.ErrBadRequest.WithError(err)
	}

	camera := &domain.Camera{
		Name:      req.Name,
		Username:  req.Username,
		Password:  req.Password,
		IPAddress: req.IPAddress,
		Policy:    req.AccessPolicy,
	}

	if err := h.service.Register(c.UserContext(), camera); err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(camera)
}

// List handles GET /api/cameras
func (h *CameraHandler) List(c *fiber.Ctx) error {
	cameras, err := h.service.List(c.UserContext())
	if err != nil {
		return err
	}
	if cameras == nil {
		cameras = []domain.Camera{}
	}

	return c.JSON(CameraListResponse{
		Cameras: cameras,
		Count:   len(cameras),
	})
}

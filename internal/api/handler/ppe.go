package handler

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"github.com/saturnino-fabrica-de-software/vigia/internal/domain"
)

type PPEService interface {
	Replace(ctx context.Context, req domain.PPERequirement) error
	Current() domain.PPERequirement
}

type PPEHandler struct {
	service PPEService
}

func NewPPEHandler(service PPEService) *PPEHandler {
	return &PPEHandler{service: service}
}

type PPEResponse struct {
	domain.PPERequirement
	Required []domain.Equipment `json:"required"`
}

// Set handles POST /api/setPPE. The body replaces the whole requirement;
// omitted items become not required.
func (h *PPEHandler) Set(c *fiber.Ctx) error {
	var req domain.PPERequirement
	if err := c.BodyParser(&req); err != nil {
		return domain.ErrBadRequest.WithError(err)
	}

	if err := h.service.Replace(c.UserContext(), req); err != nil {
		return err
	}

	return c.JSON(newPPEResponse(req))
}

// Get handles GET /api/ppe
func (h *PPEHandler) Get(c *fiber.Ctx) error {
	return c.JSON(newPPEResponse(h.service.Current()))
}

func newPPEResponse(req domain.PPERequirement) PPEResponse {
	return PPEResponse{
		PPERequirement: req,
		Required:       req.Required(),
	}
}

package handler

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/saturnino-fabrica-de-software/vigia/internal/domain"
	"github.com/saturnino-fabrica-de-software/vigia/internal/ingest"
)

// FrameDispatcher hands decoded frames to the per-camera workers
type FrameDispatcher interface {
	Dispatch(ctx context.Context, frame domain.FrameEvent) error
}

type FrameHandler struct {
	dispatcher FrameDispatcher
}

func NewFrameHandler(dispatcher FrameDispatcher) *FrameHandler {
	return &FrameHandler{dispatcher: dispatcher}
}

type FrameAcceptedResponse struct {
	Status   string    `json:"status"`
	CameraID uuid.UUID `json:"camera_id"`
	FrameID  string    `json:"frame_id,omitempty"`
}

// Ingest handles POST /api/cameras/:id/frames. The frame is queued, not
// processed, before the response is written.
func (h *FrameHandler) Ingest(c *fiber.Ctx) error {
	cameraID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return domain.ErrBadRequest.WithError(err)
	}

	frame, err := ingest.Decode(cameraID, c.Body())
	if err != nil {
		return err
	}

	if err := h.dispatcher.Dispatch(c.UserContext(), frame); err != nil {
		return err
	}

	return c.Status(fiber.StatusAccepted).JSON(FrameAcceptedResponse{
		Status:   "accepted",
		CameraID: cameraID,
		FrameID:  frame.FrameID,
	})
}

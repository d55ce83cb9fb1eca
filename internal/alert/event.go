package alert

import (
	"time"

	"github.com/google/uuid"

	"github.com/saturnino-fabrica-de-software/vigia/internal/domain"
)

const (
	EventPPEAlertCreated          = "ppe_alert.created"
	EventUnauthorizedAlertCreated = "unauthorized_alert.created"
)

// Event is published after an alert row has been written
type Event struct {
	Type         string                    `json:"type"`
	CameraID     uuid.UUID                 `json:"camera_id"`
	PPE          *domain.PPEAlert          `json:"ppe_alert,omitempty"`
	Unauthorized *domain.UnauthorizedAlert `json:"unauthorized_alert,omitempty"`
	Timestamp    time.Time                 `json:"timestamp"`
}

// Evidence is the frame an alert is recorded with
type Evidence struct {
	Frame       []byte
	ContentType string
	CapturedAt  time.Time
}

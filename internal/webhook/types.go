package webhook

import (
	"time"

	"github.com/google/uuid"
)

// Payload is the JSON body posted to the webhook endpoint
type Payload struct {
	Type      string      `json:"type"`
	CameraID  uuid.UUID   `json:"camera_id"`
	Data      interface{} `json:"data"`
	Timestamp time.Time   `json:"timestamp"`
}

type job struct {
	eventType   string
	body        []byte
	attempts    int
	nextRetryAt time.Time
}

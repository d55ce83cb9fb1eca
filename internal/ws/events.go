package ws

import (
	"time"

	"github.com/google/uuid"

	"github.com/saturnino-fabrica-de-software/vigia/internal/alert"
)

type EventType string

const (
	EventPPEAlert          EventType = alert.EventPPEAlertCreated
	EventUnauthorizedAlert EventType = alert.EventUnauthorizedAlertCreated
)

// Event is the JSON frame written to subscribers
type Event struct {
	CameraID  uuid.UUID   `json:"camera_id"`
	Type      EventType   `json:"type"`
	Data      interface{} `json:"data"`
	Timestamp time.Time   `json:"timestamp"`
}

// eventFromAlert keeps the alert's own timestamp, the start of the
// incident, instead of the delivery time.
func eventFromAlert(ev alert.Event) Event {
	out := Event{
		CameraID:  ev.CameraID,
		Type:      EventType(ev.Type),
		Timestamp: ev.Timestamp,
	}
	switch {
	case ev.PPE != nil:
		out.Data = ev.PPE
	case ev.Unauthorized != nil:
		out.Data = ev.Unauthorized
	}
	if out.Timestamp.IsZero() {
		out.Timestamp = time.Now()
	}
	return out
}

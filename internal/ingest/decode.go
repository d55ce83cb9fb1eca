package ingest

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/saturnino-fabrica-de-software/vigia/internal/domain"
)

// CameraFromTopic extracts the camera id from topics shaped like
// <prefix>/cameras/<id>/<suffix>
func CameraFromTopic(topic string) (uuid.UUID, error) {
	parts := strings.Split(topic, "/")
	for i := 0; i < len(parts)-1; i++ {
		if parts[i] == "cameras" {
			id, err := uuid.Parse(parts[i+1])
			if err != nil {
				return uuid.Nil, fmt.Errorf("topic %q: invalid camera id: %w", topic, err)
			}
			return id, nil
		}
	}
	return uuid.Nil, fmt.Errorf("topic %q: no camera segment", topic)
}

// Decode parses a JSON frame event addressed to cameraID. The frame image
// travels base64 encoded. A camera_id inside the payload must agree.
func Decode(cameraID uuid.UUID, payload []byte) (domain.FrameEvent, error) {
	var ev domain.FrameEvent
	if err := json.Unmarshal(payload, &ev); err != nil {
		return domain.FrameEvent{}, domain.ErrInvalidFrame.WithError(err)
	}

	if ev.CameraID != uuid.Nil && ev.CameraID != cameraID {
		return domain.FrameEvent{}, domain.ErrInvalidFrame.WithError(
			fmt.Errorf("payload camera %s does not match %s", ev.CameraID, cameraID))
	}
	ev.CameraID = cameraID

	for i, det := range ev.Detections {
		if det.TrackID == "" {
			return domain.FrameEvent{}, domain.ErrInvalidFrame.WithError(
				fmt.Errorf("detection %d has no track_id", i))
		}
		for item := range det.Equipment {
			if !item.Valid() {
				return domain.FrameEvent{}, domain.ErrInvalidFrame.WithError(
					fmt.Errorf("detection %d: unknown equipment %q", i, item))
			}
		}
	}

	return ev, nil
}

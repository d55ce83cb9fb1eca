package domain

import (
	"time"

	"github.com/google/uuid"
)

// BoundingBox is a relative (0-1) box in frame coordinates
type BoundingBox struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"w"`
	Height float64 `json:"h"`
}

// Corners returns the box as [x1, y1, x2, y2]
func (b BoundingBox) Corners() []float64 {
	return []float64{b.X, b.Y, b.X + b.Width, b.Y + b.Height}
}

// Detection is one tracked subject in a frame as reported by the external
// detector. Embedding is empty when no face was visible; Equipment is nil
// when PPE was not evaluated for this track.
type Detection struct {
	TrackID     string          `json:"track_id"`
	Embedding   []float64       `json:"embedding,omitempty"`
	BoundingBox *BoundingBox    `json:"bbox,omitempty"`
	Equipment   EquipmentVector `json:"equipment,omitempty"`
}

// FrameEvent carries one processed frame of a camera stream
type FrameEvent struct {
	CameraID    uuid.UUID   `json:"camera_id"`
	FrameID     string      `json:"frame_id,omitempty"`
	CapturedAt  time.Time   `json:"captured_at"`
	Frame       []byte      `json:"frame"`
	ContentType string      `json:"content_type,omitempty"`
	Detections  []Detection `json:"detections"`
}

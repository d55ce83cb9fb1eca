package domain

import (
	"time"

	"github.com/google/uuid"
)

type AlertKind string

const (
	AlertKindPPE          AlertKind = "ppe"
	AlertKindUnauthorized AlertKind = "unauthorized"
)

// PPEAlert is the evidentiary record of one PPE violation incident.
// Timestamp is the incident start; the row is never rewritten.
type PPEAlert struct {
	ID           uuid.UUID    `json:"id"`
	CameraID     uuid.UUID    `json:"camera_id"`
	TrackID      string       `json:"track_id"`
	EmployeeID   string       `json:"employee_id"`
	Violation    ViolationSet `json:"violation"`
	Timestamp    time.Time    `json:"timestamp"`
	SnapshotPath string       `json:"snapshot_path"`
	CreatedAt    time.Time    `json:"created_at"`
}

// UnauthorizedAlert is the record of one unauthorized presence incident.
// EmployeeID is set only when a known employee entered a zone they are not
// allowed in; unmatched faces leave it nil.
type UnauthorizedAlert struct {
	ID           uuid.UUID `json:"id"`
	CameraID     uuid.UUID `json:"camera_id"`
	TrackID      string    `json:"track_id"`
	EmployeeID   *string   `json:"employee_id,omitempty"`
	Timestamp    time.Time `json:"timestamp"`
	SnapshotPath string    `json:"snapshot_path"`
	CreatedAt    time.Time `json:"created_at"`
}

// OrphanSnapshot is evidence written to storage whose alert row never landed.
// Referenced is set when a later retry stored a row pointing at the same path.
type OrphanSnapshot struct {
	ID         uuid.UUID `json:"id"`
	Path       string    `json:"path"`
	Kind       AlertKind `json:"kind"`
	Reason     string    `json:"reason"`
	Referenced bool      `json:"referenced"`
	CreatedAt  time.Time `json:"created_at"`
}

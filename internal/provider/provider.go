package provider

import (
	"context"

	"github.com/saturnino-fabrica-de-software/vigia/internal/domain"
)

// Embedder turns an enrollment photo into a face embedding
type Embedder interface {
	// Embed returns the embedding of the single face in the image.
	// Fails with domain.ErrNoFaceDetected or domain.ErrMultipleFaces otherwise.
	Embed(ctx context.Context, image []byte) ([]float64, error)
}

// PPEDetector reports the protective equipment worn by each person in a frame
type PPEDetector interface {
	DetectPPE(ctx context.Context, image []byte) ([]Person, error)
}

// Person is one body found by a PPEDetector. Equipment only holds items the
// detector confirmed; anything absent counts as missing.
type Person struct {
	BoundingBox domain.BoundingBox     `json:"bbox"`
	Confidence  float64                `json:"confidence"`
	Equipment   domain.EquipmentVector `json:"equipment"`
}

package rekognition

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/rekognition"
	"github.com/aws/aws-sdk-go-v2/service/rekognition/types"

	"github.com/saturnino-fabrica-de-software/vigia/internal/domain"
	"github.com/saturnino-fabrica-de-software/vigia/internal/provider"
)

// maxImageSize is the largest inline image Rekognition accepts (5MB)
const maxImageSize = 5 * 1024 * 1024

// Detector implements provider.PPEDetector with DetectProtectiveEquipment.
// Rekognition reports head, face and hand covers only, so vests and
// glasses never appear as worn.
type Detector struct {
	api           API
	minConfidence float32
}

func NewDetector(api API, cfg Config) *Detector {
	if cfg.MinConfidence <= 0 {
		cfg.MinConfidence = DefaultConfig().MinConfidence
	}
	return &Detector{api: api, minConfidence: cfg.MinConfidence}
}

// NewDetectorFromConfig dials Rekognition with the default credential chain
func NewDetectorFromConfig(ctx context.Context, cfg Config) (*Detector, error) {
	api, err := NewAPI(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create rekognition client: %w", err)
	}
	return NewDetector(api, cfg), nil
}

func validateImage(image []byte) error {
	if len(image) == 0 {
		return domain.ErrInvalidFrame
	}
	if len(image) > maxImageSize {
		return domain.ErrInvalidFrame.WithError(
			fmt.Errorf("image too large (%d bytes, maximum %d)", len(image), maxImageSize))
	}
	return nil
}

func (d *Detector) DetectPPE(ctx context.Context, image []byte) ([]provider.Person, error) {
	if err := validateImage(image); err != nil {
		return nil, err
	}

	out, err := d.api.DetectProtectiveEquipment(ctx, &rekognition.DetectProtectiveEquipmentInput{
		Image: &types.Image{Bytes: image},
	})
	if err != nil {
		return nil, parseError(err)
	}

	persons := make([]provider.Person, 0, len(out.Persons))
	for _, p := range out.Persons {
		if p.BoundingBox == nil {
			continue
		}
		persons = append(persons, provider.Person{
			BoundingBox: toBoundingBox(p.BoundingBox),
			Confidence:  float64(aws.ToFloat32(p.Confidence)),
			Equipment:   d.equipment(p.BodyParts),
		})
	}

	return persons, nil
}

// equipment reads the worn items from the reported body parts. Gloves need
// every visible hand covered.
func (d *Detector) equipment(parts []types.ProtectiveEquipmentBodyPart) domain.EquipmentVector {
	vec := domain.EquipmentVector{}
	hands, coveredHands := 0, 0

	for _, part := range parts {
		switch part.Name {
		case types.BodyPartHead:
			if d.covered(part, types.ProtectiveEquipmentTypeHeadCover) {
				vec[domain.EquipmentHelmet] = true
			}
		case types.BodyPartFace:
			if d.covered(part, types.ProtectiveEquipmentTypeFaceCover) {
				vec[domain.EquipmentMask] = true
			}
		case types.BodyPartLeftHand, types.BodyPartRightHand:
			hands++
			if d.covered(part, types.ProtectiveEquipmentTypeHandCover) {
				coveredHands++
			}
		}
	}

	if hands > 0 && coveredHands == hands {
		vec[domain.EquipmentGloves] = true
	}

	return vec
}

func (d *Detector) covered(part types.ProtectiveEquipmentBodyPart, kind types.ProtectiveEquipmentType) bool {
	for _, det := range part.EquipmentDetections {
		if det.Type != kind || det.CoversBodyPart == nil || !det.CoversBodyPart.Value {
			continue
		}
		if aws.ToFloat32(det.Confidence) >= d.minConfidence {
			return true
		}
	}
	return false
}

func toBoundingBox(b *types.BoundingBox) domain.BoundingBox {
	return domain.BoundingBox{
		X:      float64(aws.ToFloat32(b.Left)),
		Y:      float64(aws.ToFloat32(b.Top)),
		Width:  float64(aws.ToFloat32(b.Width)),
		Height: float64(aws.ToFloat32(b.Height)),
	}
}

var _ provider.PPEDetector = (*Detector)(nil)

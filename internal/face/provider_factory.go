package face

import (
	"context"
	"fmt"

	"github.com/saturnino-fabrica-de-software/vigia/internal/config"
	"github.com/saturnino-fabrica-de-software/vigia/internal/provider"
	"github.com/saturnino-fabrica-de-software/vigia/internal/provider/deepface"
	"github.com/saturnino-fabrica-de-software/vigia/internal/provider/mock"
	"github.com/saturnino-fabrica-de-software/vigia/internal/provider/rekognition"
)

const (
	EmbedderDeepFace = "deepface"
	EmbedderMock     = "mock"

	DetectorNone        = "none"
	DetectorRekognition = "rekognition"
)

// NewEmbedder creates the enrollment embedder selected by EMBEDDER
func NewEmbedder(cfg *config.Config) (provider.Embedder, error) {
	switch cfg.EmbedderType {
	case EmbedderDeepFace, "":
		dfCfg := deepface.DefaultConfig()
		if cfg.DeepFaceURL != "" {
			dfCfg.BaseURL = cfg.DeepFaceURL
		}
		if cfg.DeepFaceModel != "" {
			dfCfg.Model = cfg.DeepFaceModel
		}
		return deepface.NewEmbedder(dfCfg), nil

	case EmbedderMock:
		return mock.NewEmbedder(cfg.EmbeddingDim), nil

	default:
		return nil, fmt.Errorf("unknown embedder: %s (supported: %s, %s)",
			cfg.EmbedderType, EmbedderDeepFace, EmbedderMock)
	}
}

// NewPPEDetector creates the detector selected by PPE_DETECTOR. It returns
// nil when detection is disabled and frames must carry equipment vectors.
func NewPPEDetector(ctx context.Context, cfg *config.Config) (provider.PPEDetector, error) {
	switch cfg.PPEDetector {
	case DetectorNone, "":
		return nil, nil

	case DetectorRekognition:
		rekogCfg := rekognition.DefaultConfig()
		if cfg.AWSRegion != "" {
			rekogCfg.Region = cfg.AWSRegion
		}
		det, err := rekognition.NewDetectorFromConfig(ctx, rekogCfg)
		if err != nil {
			return nil, fmt.Errorf("create rekognition detector: %w", err)
		}
		return det, nil

	default:
		return nil, fmt.Errorf("unknown ppe detector: %s (supported: %s, %s)",
			cfg.PPEDetector, DetectorNone, DetectorRekognition)
	}
}

package deepface

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"

	"github.com/saturnino-fabrica-de-software/vigia/internal/domain"
	"github.com/saturnino-fabrica-de-software/vigia/internal/provider"
)

// Embedder implements provider.Embedder using the DeepFace represent endpoint
type Embedder struct {
	client *Client
}

func NewEmbedder(config Config) *Embedder {
	return &Embedder{
		client: NewClient(config),
	}
}

func (e *Embedder) Embed(ctx context.Context, image []byte) ([]float64, error) {
	if len(image) == 0 {
		return nil, domain.ErrInvalidImage
	}

	mime := http.DetectContentType(image)
	payload := "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(image)

	resp, err := e.client.Represent(ctx, payload)
	if err != nil {
		// enforce_detection makes DeepFace answer 400 when it finds no face
		var statusErr *StatusError
		if errors.As(err, &statusErr) && statusErr.StatusCode == http.StatusBadRequest {
			return nil, domain.ErrNoFaceDetected.WithError(err)
		}
		return nil, fmt.Errorf("represent: %w", err)
	}

	switch len(resp.Results) {
	case 0:
		return nil, domain.ErrNoFaceDetected
	case 1:
	default:
		return nil, domain.ErrMultipleFaces
	}

	if len(resp.Results[0].Embedding) == 0 {
		return nil, fmt.Errorf("represent: %w: empty embedding", ErrInvalidResponse)
	}

	return resp.Results[0].Embedding, nil
}

var _ provider.Embedder = (*Embedder)(nil)

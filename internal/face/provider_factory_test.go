package face

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/saturnino-fabrica-de-software/vigia/internal/config"
	"github.com/saturnino-fabrica-de-software/vigia/internal/provider/deepface"
	"github.com/saturnino-fabrica-de-software/vigia/internal/provider/mock"
)

func TestNewEmbedder(t *testing.T) {
	tests := []struct {
		name     string
		embedder string
		check    func(t *testing.T, v interface{})
	}{
		{
			name:     "explicit deepface",
			embedder: "deepface",
			check: func(t *testing.T, v interface{}) {
				assert.IsType(t, &deepface.Embedder{}, v)
			},
		},
		{
			name:     "empty defaults to deepface",
			embedder: "",
			check: func(t *testing.T, v interface{}) {
				assert.IsType(t, &deepface.Embedder{}, v)
			},
		},
		{
			name:     "mock",
			embedder: "mock",
			check: func(t *testing.T, v interface{}) {
				assert.IsType(t, &mock.Embedder{}, v)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &config.Config{
				EmbedderType: tt.embedder,
				DeepFaceURL:  "http://localhost:5000",
				EmbeddingDim: 128,
			}

			emb, err := NewEmbedder(cfg)
			require.NoError(t, err)
			tt.check(t, emb)
		})
	}
}

func TestNewEmbedder_Unknown(t *testing.T) {
	_, err := NewEmbedder(&config.Config{EmbedderType: "facenet-local"})
	assert.ErrorContains(t, err, "unknown embedder")
}

func TestNewPPEDetector_Disabled(t *testing.T) {
	for _, name := range []string{"", "none"} {
		det, err := NewPPEDetector(context.Background(), &config.Config{PPEDetector: name})
		require.NoError(t, err)
		assert.Nil(t, det)
	}
}

func TestNewPPEDetector_Unknown(t *testing.T) {
	_, err := NewPPEDetector(context.Background(), &config.Config{PPEDetector: "yolo"})
	assert.ErrorContains(t, err, "unknown ppe detector")
}

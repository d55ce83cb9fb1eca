package deepface

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/saturnino-fabrica-de-software/vigia/internal/domain"
)

func newTestEmbedder(t *testing.T, handler http.HandlerFunc) *Embedder {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	return NewEmbedder(Config{
		BaseURL:    server.URL,
		Timeout:    time.Second,
		RetryCount: 2,
		RetryDelay: time.Millisecond,
	})
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func TestEmbed_SingleFace(t *testing.T) {
	var got RepresentRequest
	e := newTestEmbedder(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/represent", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		writeJSON(w, RepresentResponse{Results: []RepresentResult{
			{Embedding: []float64{0.1, 0.2, 0.3}},
		}})
	})

	emb, err := e.Embed(context.Background(), []byte("\xff\xd8\xff\xe0 fake jpeg"))

	require.NoError(t, err)
	assert.Equal(t, []float64{0.1, 0.2, 0.3}, emb)
	assert.Equal(t, "Facenet", got.Model)
	assert.True(t, got.EnforceDetection)
	assert.True(t, strings.HasPrefix(got.Img, "data:image/jpeg;base64,"))
}

func TestEmbed_FaceCount(t *testing.T) {
	tests := []struct {
		name    string
		results []RepresentResult
		wantErr error
	}{
		{name: "no face", results: nil, wantErr: domain.ErrNoFaceDetected},
		{
			name: "two faces",
			results: []RepresentResult{
				{Embedding: []float64{1}},
				{Embedding: []float64{2}},
			},
			wantErr: domain.ErrMultipleFaces,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newTestEmbedder(t, func(w http.ResponseWriter, r *http.Request) {
				writeJSON(w, RepresentResponse{Results: tt.results})
			})

			_, err := e.Embed(context.Background(), []byte("image"))
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestEmbed_BadRequestMeansNoFace(t *testing.T) {
	var calls atomic.Int32
	e := newTestEmbedder(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, `{"error":"Face could not be detected"}`, http.StatusBadRequest)
	})

	_, err := e.Embed(context.Background(), []byte("image"))

	assert.ErrorIs(t, err, domain.ErrNoFaceDetected)
	assert.Equal(t, int32(1), calls.Load(), "4xx must not be retried")
}

func TestEmbed_RetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	e := newTestEmbedder(t, func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		writeJSON(w, RepresentResponse{Results: []RepresentResult{{Embedding: []float64{1, 2}}}})
	})

	emb, err := e.Embed(context.Background(), []byte("image"))

	require.NoError(t, err)
	assert.Len(t, emb, 2)
	assert.Equal(t, int32(3), calls.Load())
}

func TestEmbed_Unavailable(t *testing.T) {
	var calls atomic.Int32
	e := newTestEmbedder(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	})

	_, err := e.Embed(context.Background(), []byte("image"))

	assert.ErrorIs(t, err, ErrDeepFaceUnavailable)
	assert.Equal(t, int32(3), calls.Load())
}

func TestEmbed_InvalidJSON(t *testing.T) {
	e := newTestEmbedder(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("not json"))
	})

	_, err := e.Embed(context.Background(), []byte("image"))
	assert.ErrorIs(t, err, ErrInvalidResponse)
}

func TestEmbed_EmptyImage(t *testing.T) {
	e := NewEmbedder(DefaultConfig())

	_, err := e.Embed(context.Background(), nil)
	assert.ErrorIs(t, err, domain.ErrInvalidImage)
}

func TestClient_Backoff(t *testing.T) {
	c := NewClient(Config{RetryDelay: time.Second})

	assert.Equal(t, time.Second, c.backoff(1))
	assert.Equal(t, 2*time.Second, c.backoff(2))
	assert.Equal(t, 4*time.Second, c.backoff(3))
	assert.Equal(t, maxBackoff, c.backoff(10))
}

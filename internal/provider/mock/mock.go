package mock

import (
	"context"
	"crypto/sha256"
	"math"
	"sync"

	"github.com/saturnino-fabrica-de-software/vigia/internal/domain"
	"github.com/saturnino-fabrica-de-software/vigia/internal/provider"
)

const minImageSize = 16

// Embedder derives a deterministic unit vector from the image bytes. The
// same image always yields the same embedding.
type Embedder struct {
	dim int
}

func NewEmbedder(dim int) *Embedder {
	return &Embedder{dim: dim}
}

func (e *Embedder) Embed(ctx context.Context, image []byte) ([]float64, error) {
	if len(image) < minImageSize {
		return nil, domain.ErrInvalidImage
	}
	return generateEmbedding(image, e.dim), nil
}

func generateEmbedding(image []byte, dim int) []float64 {
	hash := sha256.Sum256(image)
	embedding := make([]float64, dim)
	hashLen := len(hash)

	for i := 0; i < dim; i++ {
		//nolint:gosec // idx is always < hashLen due to modulo operation
		embedding[i] = (float64(hash[i%hashLen])/255.0)*2 - 1
	}

	norm := 0.0
	for _, v := range embedding {
		norm += v * v
	}
	norm = math.Sqrt(norm)
	if norm == 0 {
		embedding[0] = 1
		return embedding
	}

	for i := range embedding {
		embedding[i] /= norm
	}

	return embedding
}

// Detector returns a fixed set of persons for every frame
type Detector struct {
	mu      sync.Mutex
	persons []provider.Person
	err     error
	calls   int
}

func NewDetector(persons ...provider.Person) *Detector {
	return &Detector{persons: persons}
}

func (d *Detector) SetError(err error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.err = err
}

func (d *Detector) Calls() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.calls
}

func (d *Detector) DetectPPE(ctx context.Context, image []byte) ([]provider.Person, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.calls++
	if d.err != nil {
		return nil, d.err
	}

	out := make([]provider.Person, len(d.persons))
	copy(out, d.persons)
	return out, nil
}

var (
	_ provider.Embedder    = (*Embedder)(nil)
	_ provider.PPEDetector = (*Detector)(nil)
)

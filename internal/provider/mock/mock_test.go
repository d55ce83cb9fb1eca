package mock

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/saturnino-fabrica-de-software/vigia/internal/domain"
	"github.com/saturnino-fabrica-de-software/vigia/internal/provider"
)

func TestEmbedder_Deterministic(t *testing.T) {
	e := NewEmbedder(128)
	image := []byte("a reasonably sized fake image payload")

	first, err := e.Embed(context.Background(), image)
	require.NoError(t, err)
	second, err := e.Embed(context.Background(), image)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Len(t, first, 128)

	other, err := e.Embed(context.Background(), []byte("another reasonably sized payload"))
	require.NoError(t, err)
	assert.NotEqual(t, first, other)
}

func TestEmbedder_UnitNorm(t *testing.T) {
	emb, err := NewEmbedder(64).Embed(context.Background(), []byte("normalize this image please"))
	require.NoError(t, err)

	var sum float64
	for _, v := range emb {
		sum += v * v
	}
	assert.InDelta(t, 1.0, math.Sqrt(sum), 1e-9)
}

func TestEmbedder_RejectsTinyImage(t *testing.T) {
	_, err := NewEmbedder(128).Embed(context.Background(), []byte("tiny"))
	assert.ErrorIs(t, err, domain.ErrInvalidImage)
}

func TestDetector(t *testing.T) {
	person := provider.Person{
		BoundingBox: domain.BoundingBox{X: 0.1, Y: 0.1, Width: 0.3, Height: 0.6},
		Equipment:   domain.EquipmentVector{domain.EquipmentHelmet: true},
	}
	d := NewDetector(person)

	persons, err := d.DetectPPE(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, []provider.Person{person}, persons)

	d.SetError(errors.New("boom"))
	_, err = d.DetectPPE(context.Background(), nil)
	assert.Error(t, err)
	assert.Equal(t, 2, d.Calls())
}

package matcher

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/saturnino-fabrica-de-software/vigia/internal/domain"
	"github.com/saturnino-fabrica-de-software/vigia/internal/embedding"
)

type nopPersister struct{}

func (nopPersister) Upsert(context.Context, string, []float64) error { return nil }
func (nopPersister) List(context.Context) ([]domain.Employee, error) { return nil, nil }

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newStore(t *testing.T, dim int, entries map[string][]float64) *embedding.Store {
	t.Helper()
	s := embedding.NewStore(dim, nopPersister{}, time.Second, discardLogger())
	for id, v := range entries {
		require.NoError(t, s.Put(context.Background(), id, v))
	}
	return s
}

func matchers(t *testing.T, src Source, metric Metric, threshold float64) map[string]Matcher {
	t.Helper()
	out := map[string]Matcher{}
	for _, index := range []string{"linear", "hnsw"} {
		m, err := New(src, Config{Metric: metric, Threshold: threshold, Index: index}, discardLogger())
		require.NoError(t, err)
		out[index] = m
	}
	return out
}

func TestMatch_EmptyStoreIsUnknown(t *testing.T) {
	s := newStore(t, 3, nil)

	for name, m := range matchers(t, s, MetricCosine, 0.4) {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, Unknown, m.Match([]float64{1, 0, 0}))
		})
	}
}

func TestMatch_ThresholdBoundary(t *testing.T) {
	s := newStore(t, 2, map[string][]float64{
		"E1": {0, 0.001},
		"E2": {10, 10},
	})

	tests := []struct {
		name   string
		probe  []float64
		wantID string
		known  bool
	}{
		{"exact match", []float64{0, 0.001}, "E1", true},
		{"inside threshold", []float64{0.9, 0.001}, "E1", true},
		{"on the threshold", []float64{1.0, 0.001}, "E1", true},
		{"just beyond threshold", []float64{1.0001, 0.001}, "", false},
		{"far from everyone", []float64{5, -5}, "", false},
	}

	for name, m := range matchers(t, s, MetricEuclidean, 1.0) {
		for _, tt := range tests {
			t.Run(name+"/"+tt.name, func(t *testing.T) {
				got := m.Match(tt.probe)
				assert.Equal(t, tt.known, got.Known)
				assert.Equal(t, tt.wantID, got.EmployeeID)
				if tt.known {
					assert.LessOrEqual(t, got.Distance, m.Threshold())
				}
			})
		}
	}
}

func TestMatch_TieBreaksOnSmallerID(t *testing.T) {
	s := newStore(t, 2, map[string][]float64{
		"bravo": {1, 1},
		"alpha": {-1, 1},
	})

	for name, m := range matchers(t, s, MetricEuclidean, 5) {
		t.Run(name, func(t *testing.T) {
			got := m.Match([]float64{0, 1})
			require.True(t, got.Known)
			assert.Equal(t, "alpha", got.EmployeeID)
			assert.InDelta(t, 1.0, got.Distance, 1e-12)
		})
	}
}

func TestNearest_ThresholdUsesTrueMinimum(t *testing.T) {
	var n nearest
	n.offer("E2", 1.0)
	n.offer("E1", 1.0+TieEpsilon/2)

	got := n.result(1.0)

	assert.True(t, got.Known)
	assert.Equal(t, "E1", got.EmployeeID)
}

func TestNearest_BeyondThreshold(t *testing.T) {
	var n nearest
	n.offer("E1", 1.5)
	n.offer("E2", 1.2)

	assert.Equal(t, Unknown, n.result(1.0))
	assert.Equal(t, Unknown, (&nearest{}).result(1.0))
}

func TestMatch_CosineUsesDirection(t *testing.T) {
	s := newStore(t, 3, map[string][]float64{
		"E1": {1, 0, 0},
		"E2": {0, 1, 0},
	})

	for name, m := range matchers(t, s, MetricCosine, 0.4) {
		t.Run(name, func(t *testing.T) {
			got := m.Match([]float64{10, 1, 0})
			require.True(t, got.Known)
			assert.Equal(t, "E1", got.EmployeeID)

			tie := m.Match([]float64{1, 1, 0})
			require.True(t, tie.Known)
			assert.Equal(t, "E1", tie.EmployeeID)

			assert.False(t, m.Match([]float64{0, 0, 1}).Known)
		})
	}
}

func TestMatch_RejectsUnusableProbes(t *testing.T) {
	s := newStore(t, 3, map[string][]float64{"E1": {1, 0, 0}})

	probes := map[string][]float64{
		"wrong dimension": {1, 0},
		"zero":            {0, 0, 0},
		"nan":             {math.NaN(), 0, 0},
		"empty":           nil,
	}

	for name, m := range matchers(t, s, MetricCosine, 2) {
		for probeName, probe := range probes {
			t.Run(name+"/"+probeName, func(t *testing.T) {
				assert.Equal(t, Unknown, m.Match(probe))
			})
		}
	}
}

func TestMatch_SeesNewEnrollments(t *testing.T) {
	s := newStore(t, 2, map[string][]float64{"E1": {1, 0}})
	ms := matchers(t, s, MetricCosine, 0.1)

	for name, m := range ms {
		assert.False(t, m.Match([]float64{0, 1}).Known, name)
	}

	require.NoError(t, s.Put(context.Background(), "E2", []float64{0, 1}))

	for name, m := range ms {
		got := m.Match([]float64{0, 1})
		assert.True(t, got.Known, name)
		assert.Equal(t, "E2", got.EmployeeID, name)
	}
}

func TestMatch_HNSWAgreesWithLinear(t *testing.T) {
	entries := map[string][]float64{}
	for i := range 50 {
		angle := float64(i) * 0.05
		entries[fmt.Sprintf("E%02d", i)] = []float64{math.Cos(angle), math.Sin(angle), 0.1}
	}
	s := newStore(t, 3, entries)

	ms := matchers(t, s, MetricCosine, 0.01)
	for i := range 50 {
		angle := float64(i)*0.05 + 0.001
		probe := []float64{math.Cos(angle), math.Sin(angle), 0.1}
		assert.Equal(t, ms["linear"].Match(probe), ms["hnsw"].Match(probe), "probe %d", i)
	}
}

func TestNew_RejectsBadConfig(t *testing.T) {
	s := newStore(t, 2, nil)

	_, err := New(s, Config{Metric: "manhattan", Threshold: 1}, discardLogger())
	assert.Error(t, err)

	_, err = New(s, Config{Metric: MetricCosine, Threshold: 1, Index: "faiss"}, discardLogger())
	assert.Error(t, err)

	_, err = New(s, Config{Metric: MetricCosine, Threshold: -1}, discardLogger())
	assert.Error(t, err)
}

func TestMetric_Distance(t *testing.T) {
	assert.InDelta(t, 0.0, MetricCosine.Distance([]float64{1, 0}, []float64{2, 0}), 1e-12)
	assert.InDelta(t, 1.0, MetricCosine.Distance([]float64{1, 0}, []float64{0, 3}), 1e-12)
	assert.InDelta(t, 5.0, MetricEuclidean.Distance([]float64{0, 0}, []float64{3, 4}), 1e-12)
}

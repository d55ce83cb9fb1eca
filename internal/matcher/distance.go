package matcher

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
)

type Metric string

const (
	MetricCosine    Metric = "cosine"
	MetricEuclidean Metric = "euclidean"
)

type distanceFunc func(a, b []float64, normA, normB float64) float64

func (m Metric) distanceFunc() (distanceFunc, error) {
	switch m {
	case MetricCosine, "":
		return cosineDistance, nil
	case MetricEuclidean:
		return euclideanDistance, nil
	default:
		return nil, fmt.Errorf("unsupported match metric %q", m)
	}
}

// Distance computes the metric between two vectors of equal length
func (m Metric) Distance(a, b []float64) float64 {
	fn, err := m.distanceFunc()
	if err != nil {
		return math.Inf(1)
	}
	return fn(a, b, floats.Norm(a, 2), floats.Norm(b, 2))
}

// cosineDistance is 1 - cos(a, b); callers pass precomputed L2 norms
func cosineDistance(a, b []float64, normA, normB float64) float64 {
	if normA == 0 || normB == 0 {
		return math.Inf(1)
	}
	d := 1 - floats.Dot(a, b)/(normA*normB)
	if d < 0 {
		return 0
	}
	return d
}

func euclideanDistance(a, b []float64, _, _ float64) float64 {
	return floats.Distance(a, b, 2)
}

// usable rejects probes that can never be compared
func usable(probe []float64, dim int) bool {
	if len(probe) == 0 || len(probe) != dim {
		return false
	}
	nonZero := false
	for _, v := range probe {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
		if v != 0 {
			nonZero = true
		}
	}
	return nonZero
}

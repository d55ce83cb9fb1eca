package matcher

import (
	"log/slog"
	"sync"
	"time"

	"github.com/coder/hnsw"
	"gonum.org/v1/gonum/floats"

	"github.com/saturnino-fabrica-de-software/vigia/internal/embedding"
)

const (
	hnswMaxNeighbors = 16
	hnswCandidates   = 8
)

// HNSW narrows the search to approximate neighbours and re-ranks them
// exactly, so distances and tie-breaks match the linear matcher.
type HNSW struct {
	src       Source
	metric    Metric
	distance  distanceFunc
	threshold float64
	logger    *slog.Logger

	mu    sync.Mutex
	built *hnswIndex
}

type hnswIndex struct {
	snap  *embedding.Snapshot
	graph *hnsw.Graph[int]
	norms []float64
}

func NewHNSW(src Source, metric Metric, threshold float64, logger *slog.Logger) *HNSW {
	fn, err := metric.distanceFunc()
	if err != nil {
		fn = cosineDistance
	}
	return &HNSW{src: src, metric: metric, distance: fn, threshold: threshold, logger: logger}
}

func (h *HNSW) Threshold() float64 {
	return h.threshold
}

func (h *HNSW) Match(probe []float64) Result {
	idx := h.index()
	if idx.snap.Len() == 0 || !usable(probe, idx.snap.Dimension()) {
		return Unknown
	}

	k := min(hnswCandidates, idx.snap.Len())
	neighbors := idx.graph.Search(toFloat32(probe), k)

	probeNorm := floats.Norm(probe, 2)

	var best nearest
	for _, n := range neighbors {
		id, vec := idx.snap.At(n.Key)
		d := h.distance(probe, vec, probeNorm, idx.norms[n.Key])
		best.offer(id, d)
	}

	return best.result(h.threshold)
}

// index rebuilds the graph once per snapshot version. Built graphs are never
// mutated, so concurrent searches need no lock.
func (h *HNSW) index() *hnswIndex {
	snap := h.src.Snapshot()

	h.mu.Lock()
	defer h.mu.Unlock()

	if h.built != nil && h.built.snap == snap {
		return h.built
	}

	start := time.Now()
	g := hnsw.NewGraph[int]()
	g.M = hnswMaxNeighbors
	g.Ml = 1.0 / float64(hnswMaxNeighbors)
	if h.metric == MetricEuclidean {
		g.Distance = hnsw.EuclideanDistance
	} else {
		g.Distance = hnsw.CosineDistance
	}

	norms := make([]float64, snap.Len())
	for i := range snap.Len() {
		_, vec := snap.At(i)
		norms[i] = floats.Norm(vec, 2)
		g.Add(hnsw.MakeNode(i, toFloat32(vec)))
	}

	h.built = &hnswIndex{snap: snap, graph: g, norms: norms}
	if h.logger != nil {
		h.logger.Debug("hnsw index rebuilt",
			"version", snap.Version(),
			"size", snap.Len(),
			"duration_ms", time.Since(start).Milliseconds(),
		)
	}
	return h.built
}

func toFloat32(v []float64) []float32 {
	out := make([]float32, len(v))
	for i, x := range v {
		out[i] = float32(x)
	}
	return out
}

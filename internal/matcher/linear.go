package matcher

import (
	"sync/atomic"

	"gonum.org/v1/gonum/floats"

	"github.com/saturnino-fabrica-de-software/vigia/internal/embedding"
)

// Linear compares the probe against every enrolled embedding
type Linear struct {
	src       Source
	metric    Metric
	distance  distanceFunc
	threshold float64

	prepared atomic.Pointer[linearIndex]
}

type linearIndex struct {
	snap  *embedding.Snapshot
	norms []float64
}

func NewLinear(src Source, metric Metric, threshold float64) *Linear {
	fn, err := metric.distanceFunc()
	if err != nil {
		fn = cosineDistance
	}
	return &Linear{src: src, metric: metric, distance: fn, threshold: threshold}
}

func (l *Linear) Threshold() float64 {
	return l.threshold
}

func (l *Linear) Match(probe []float64) Result {
	idx := l.index()
	if idx.snap.Len() == 0 || !usable(probe, idx.snap.Dimension()) {
		return Unknown
	}

	probeNorm := floats.Norm(probe, 2)

	var best nearest
	for i := range idx.snap.Len() {
		id, vec := idx.snap.At(i)
		d := l.distance(probe, vec, probeNorm, idx.norms[i])
		best.offer(id, d)
	}

	return best.result(l.threshold)
}

// index returns norms for the current snapshot, rebuilding when it changed
func (l *Linear) index() *linearIndex {
	snap := l.src.Snapshot()
	if cur := l.prepared.Load(); cur != nil && cur.snap == snap {
		return cur
	}

	norms := make([]float64, snap.Len())
	for i := range snap.Len() {
		_, vec := snap.At(i)
		norms[i] = floats.Norm(vec, 2)
	}

	idx := &linearIndex{snap: snap, norms: norms}
	l.prepared.Store(idx)
	return idx
}

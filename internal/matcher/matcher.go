// Package matcher resolves a probe face embedding to an enrolled employee.
package matcher

import (
	"fmt"
	"log/slog"

	"github.com/saturnino-fabrica-de-software/vigia/internal/embedding"
)

// TieEpsilon is the distance window inside which two candidates are
// considered equally close; the lexicographically smaller id wins.
const TieEpsilon = 1e-9

// Result is the outcome of a match. Known=false means Unknown.
type Result struct {
	EmployeeID string  `json:"employee_id,omitempty"`
	Distance   float64 `json:"distance"`
	Known      bool    `json:"known"`
}

// Unknown is the result for probes that match nobody
var Unknown = Result{}

// Matcher is safe for concurrent use by every camera worker
type Matcher interface {
	Match(probe []float64) Result
	Threshold() float64
}

// Source provides the current embedding snapshot
type Source interface {
	Snapshot() *embedding.Snapshot
}

type Config struct {
	Metric    Metric
	Threshold float64
	Index     string // linear | hnsw
}

func New(src Source, cfg Config, logger *slog.Logger) (Matcher, error) {
	if _, err := cfg.Metric.distanceFunc(); err != nil {
		return nil, err
	}
	if cfg.Threshold < 0 {
		return nil, fmt.Errorf("match threshold must not be negative")
	}

	switch cfg.Index {
	case "", "linear":
		return NewLinear(src, cfg.Metric, cfg.Threshold), nil
	case "hnsw":
		return NewHNSW(src, cfg.Metric, cfg.Threshold, logger), nil
	default:
		return nil, fmt.Errorf("unsupported matcher index %q", cfg.Index)
	}
}

// nearest accumulates candidates. The winner follows the tie-break, while
// min keeps the true minimum distance so the threshold is applied to it.
type nearest struct {
	id   string
	d    float64
	min  float64
	seen bool
}

func (n *nearest) offer(id string, d float64) {
	if !n.seen {
		n.id, n.d, n.min, n.seen = id, d, d, true
		return
	}
	if d < n.min {
		n.min = d
	}
	if d < n.d-TieEpsilon || (d <= n.d+TieEpsilon && id < n.id) {
		n.id, n.d = id, d
	}
}

func (n *nearest) result(threshold float64) Result {
	if !n.seen || n.min > threshold {
		return Unknown
	}
	return Result{EmployeeID: n.id, Distance: n.d, Known: true}
}

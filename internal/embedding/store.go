// Package embedding keeps the enrolled face embeddings in memory as an
// immutable snapshot that is replaced atomically on every write.
package embedding

import (
	"context"
	"fmt"
	"iter"
	"log/slog"
	"maps"
	"math"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/saturnino-fabrica-de-software/vigia/internal/domain"
)

// Persister is the durable side of the store
type Persister interface {
	Upsert(ctx context.Context, employeeID string, embedding []float64) error
	List(ctx context.Context) ([]domain.Employee, error)
}

// Snapshot is an immutable view of every enrolled embedding.
// Vectors returned by At must not be modified.
type Snapshot struct {
	version uint64
	dim     int
	ids     []string
	vectors map[string][]float64
}

func (s *Snapshot) Version() uint64 { return s.version }
func (s *Snapshot) Len() int        { return len(s.ids) }
func (s *Snapshot) Dimension() int  { return s.dim }

// At returns the i-th entry in employee id order
func (s *Snapshot) At(i int) (string, []float64) {
	id := s.ids[i]
	return id, s.vectors[id]
}

func (s *Snapshot) Get(employeeID string) ([]float64, bool) {
	v, ok := s.vectors[employeeID]
	if !ok {
		return nil, false
	}
	return slices.Clone(v), true
}

// All yields copies of the entries ordered by employee id. The sequence can
// be ranged over any number of times and always reflects this snapshot.
func (s *Snapshot) All() iter.Seq2[string, []float64] {
	return func(yield func(string, []float64) bool) {
		for _, id := range s.ids {
			if !yield(id, slices.Clone(s.vectors[id])) {
				return
			}
		}
	}
}

type Store struct {
	dim       int
	persister Persister
	timeout   time.Duration
	logger    *slog.Logger

	mu      sync.Mutex
	current atomic.Pointer[Snapshot]
}

func NewStore(dim int, persister Persister, timeout time.Duration, logger *slog.Logger) *Store {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}

	s := &Store{
		dim:       dim,
		persister: persister,
		timeout:   timeout,
		logger:    logger,
	}
	s.current.Store(&Snapshot{dim: dim, vectors: map[string][]float64{}})
	return s
}

func (s *Store) Dimension() int {
	return s.dim
}

// Snapshot returns the snapshot current at call time
func (s *Store) Snapshot() *Snapshot {
	return s.current.Load()
}

// All iterates the snapshot current at call time
func (s *Store) All() iter.Seq2[string, []float64] {
	return s.Snapshot().All()
}

// Put persists the embedding and then publishes a new snapshot containing it.
// A persistence failure leaves the published snapshot untouched.
func (s *Store) Put(ctx context.Context, employeeID string, embedding []float64) error {
	if employeeID == "" {
		return domain.ErrInvalidEmbedding.WithError(fmt.Errorf("employee id is empty"))
	}
	if err := Validate(embedding, s.dim); err != nil {
		return err
	}

	vec := slices.Clone(embedding)

	s.mu.Lock()
	defer s.mu.Unlock()

	ioCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	if err := s.persister.Upsert(ioCtx, employeeID, vec); err != nil {
		return domain.ErrStoreUnavailable.WithError(err)
	}

	prev := s.current.Load()
	vectors := maps.Clone(prev.vectors)
	vectors[employeeID] = vec

	ids := prev.ids
	if _, found := slices.BinarySearch(ids, employeeID); !found {
		ids = slices.Clone(ids)
		pos, _ := slices.BinarySearch(ids, employeeID)
		ids = slices.Insert(ids, pos, employeeID)
	}

	s.current.Store(&Snapshot{
		version: prev.version + 1,
		dim:     s.dim,
		ids:     ids,
		vectors: vectors,
	})

	s.logger.Debug("embedding stored",
		"employee_id", employeeID,
		"version", prev.version+1,
	)
	return nil
}

// Load rebuilds the snapshot from the persister. Rows with an unexpected
// dimension are skipped and logged. On failure the last good snapshot stays.
func (s *Store) Load(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	ioCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	employees, err := s.persister.List(ioCtx)
	if err != nil {
		s.logger.Error("embedding reload failed, keeping last snapshot",
			"error", err,
			"version", s.current.Load().version,
		)
		return domain.ErrStoreUnavailable.WithError(err)
	}

	vectors := make(map[string][]float64, len(employees))
	for _, e := range employees {
		if err := Validate(e.Embedding, s.dim); err != nil || e.EmployeeID == "" {
			s.logger.Warn("skipping stored embedding",
				"employee_id", e.EmployeeID,
				"dimension", len(e.Embedding),
				"expected", s.dim,
			)
			continue
		}
		vectors[e.EmployeeID] = slices.Clone(e.Embedding)
	}

	ids := slices.Sorted(maps.Keys(vectors))
	prev := s.current.Load()
	s.current.Store(&Snapshot{
		version: prev.version + 1,
		dim:     s.dim,
		ids:     ids,
		vectors: vectors,
	})

	s.logger.Info("embeddings loaded", "count", len(ids), "version", prev.version+1)
	return nil
}

// Validate rejects vectors that cannot take part in matching
func Validate(embedding []float64, dim int) error {
	if len(embedding) != dim {
		return domain.ErrInvalidEmbedding.WithError(
			fmt.Errorf("dimension %d, expected %d", len(embedding), dim))
	}

	zero := true
	for _, v := range embedding {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return domain.ErrInvalidEmbedding.WithError(fmt.Errorf("non-finite component"))
		}
		if v != 0 {
			zero = false
		}
	}
	if zero {
		return domain.ErrInvalidEmbedding.WithError(fmt.Errorf("zero vector"))
	}

	return nil
}

package ppe

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/saturnino-fabrica-de-software/vigia/internal/domain"
)

// Persister stores the singleton requirement
type Persister interface {
	Replace(ctx context.Context, req domain.PPERequirement) error
	Get(ctx context.Context) (domain.PPERequirement, error)
}

// RequirementStore holds the active requirement. Readers never block; Set
// replaces the whole configuration after it has been persisted.
type RequirementStore struct {
	persister Persister
	timeout   time.Duration
	logger    *slog.Logger

	mu      sync.Mutex
	current atomic.Pointer[domain.PPERequirement]
}

func NewRequirementStore(persister Persister, timeout time.Duration, logger *slog.Logger) *RequirementStore {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	s := &RequirementStore{persister: persister, timeout: timeout, logger: logger}
	s.current.Store(&domain.PPERequirement{})
	return s
}

func (s *RequirementStore) Current() domain.PPERequirement {
	return *s.current.Load()
}

func (s *RequirementStore) Set(ctx context.Context, req domain.PPERequirement) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	ioCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	if err := s.persister.Replace(ioCtx, req); err != nil {
		return domain.ErrStoreUnavailable.WithError(err)
	}

	s.current.Store(&req)
	s.logger.Info("ppe requirement replaced", "required", domain.NewViolationSet(req.Required()...).String())
	return nil
}

// Load refreshes from the persister, keeping the last good value on failure
func (s *RequirementStore) Load(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	ioCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	req, err := s.persister.Get(ioCtx)
	if err != nil {
		s.logger.Error("ppe requirement reload failed, keeping last value", "error", err)
		return domain.ErrStoreUnavailable.WithError(err)
	}

	s.current.Store(&req)
	return nil
}

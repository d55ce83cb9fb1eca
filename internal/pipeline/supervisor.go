package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/saturnino-fabrica-de-software/vigia/internal/domain"
)

var ErrNotStarted = errors.New("pipeline supervisor not started")

// Supervisor runs one Worker per camera and routes frames to them
type Supervisor struct {
	deps   Deps
	cfg    Config
	logger *slog.Logger

	mu      sync.RWMutex
	workers map[uuid.UUID]*Worker
	group   *errgroup.Group
	ctx     context.Context
}

func NewSupervisor(deps Deps, cfg Config, logger *slog.Logger) *Supervisor {
	return &Supervisor{
		deps:    deps,
		cfg:     cfg.withDefaults(),
		logger:  logger,
		workers: make(map[uuid.UUID]*Worker),
	}
}

// Start binds the supervisor to ctx and launches workers for the given
// cameras. Cancelling ctx stops every worker.
func (s *Supervisor) Start(ctx context.Context, cameras ...domain.Camera) error {
	s.mu.Lock()
	s.group, s.ctx = errgroup.WithContext(ctx)
	s.mu.Unlock()

	for _, cam := range cameras {
		if err := s.AddCamera(cam); err != nil {
			return err
		}
	}
	return nil
}

// AddCamera starts a worker for a camera registered at runtime
func (s *Supervisor) AddCamera(camera domain.Camera) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.group == nil {
		return ErrNotStarted
	}
	if _, ok := s.workers[camera.ID]; ok {
		return domain.ErrCameraExists
	}

	w := NewWorker(camera, s.deps, s.cfg, s.logger)
	s.workers[camera.ID] = w

	ctx := s.ctx
	s.group.Go(func() error {
		return w.Run(ctx)
	})

	return nil
}

// Dispatch queues a frame on its camera's worker, waiting at most the
// dispatch timeout for space. Frames that cannot be queued are dropped.
func (s *Supervisor) Dispatch(ctx context.Context, frame domain.FrameEvent) error {
	s.mu.RLock()
	w, ok := s.workers[frame.CameraID]
	s.mu.RUnlock()

	if !ok {
		return domain.ErrCameraNotFound
	}

	if err := w.enqueue(ctx, frame, s.cfg.DispatchTimeout); err != nil {
		s.logger.Warn("frame dropped",
			"camera_id", frame.CameraID,
			"frame_id", frame.FrameID,
			"error", err,
		)
		return err
	}
	return nil
}

func (s *Supervisor) Cameras() []uuid.UUID {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]uuid.UUID, 0, len(s.workers))
	for id := range s.workers {
		ids = append(ids, id)
	}
	return ids
}

// Wait blocks until every worker has returned
func (s *Supervisor) Wait() error {
	s.mu.RLock()
	g := s.group
	s.mu.RUnlock()

	if g == nil {
		return nil
	}
	return g.Wait()
}

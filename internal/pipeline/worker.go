package pipeline

import (
	"context"
	"log/slog"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/saturnino-fabrica-de-software/vigia/internal/alert"
	"github.com/saturnino-fabrica-de-software/vigia/internal/domain"
	"github.com/saturnino-fabrica-de-software/vigia/internal/embedding"
	"github.com/saturnino-fabrica-de-software/vigia/internal/incident"
	"github.com/saturnino-fabrica-de-software/vigia/internal/matcher"
	"github.com/saturnino-fabrica-de-software/vigia/internal/ppe"
	"github.com/saturnino-fabrica-de-software/vigia/internal/provider"
)

// Recorder persists incidents as alerts
type Recorder interface {
	RecordPPE(ctx context.Context, cameraID uuid.UUID, inc incident.Incident, ev alert.Evidence) (uuid.UUID, error)
	RecordUnauthorized(ctx context.Context, cameraID uuid.UUID, inc incident.Incident, ev alert.Evidence) (uuid.UUID, error)
}

// Requirements exposes the active PPE requirement set
type Requirements interface {
	Current() domain.PPERequirement
}

// Deps are the collaborators shared by every camera worker
type Deps struct {
	Matcher      matcher.Matcher
	Requirements Requirements
	Recorder     Recorder
	// Detector is optional; without it frames must carry equipment vectors
	Detector provider.PPEDetector
}

type Config struct {
	// EmbeddingDim is the enrolled embedding dimension; probes of any other
	// length are treated as if no face was seen. Zero skips the length check.
	EmbeddingDim    int
	GracePeriod     time.Duration
	QueueSize       int
	DispatchTimeout time.Duration
	IOTimeout       time.Duration
	SweepInterval   time.Duration
	RetryInterval   time.Duration
}

func (c Config) withDefaults() Config {
	if c.GracePeriod <= 0 {
		c.GracePeriod = 5 * time.Second
	}
	if c.QueueSize <= 0 {
		c.QueueSize = 64
	}
	if c.DispatchTimeout <= 0 {
		c.DispatchTimeout = 500 * time.Millisecond
	}
	if c.IOTimeout <= 0 {
		c.IOTimeout = 5 * time.Second
	}
	if c.SweepInterval <= 0 {
		c.SweepInterval = c.GracePeriod
	}
	if c.RetryInterval <= 0 {
		c.RetryInterval = time.Second
	}
	return c
}

// Worker evaluates the frames of one camera strictly in arrival order. Its
// tracker is owned by the Run goroutine and never shared.
type Worker struct {
	camera  domain.Camera
	deps    Deps
	cfg     Config
	queue   chan domain.FrameEvent
	tracker *incident.Tracker
	logger  *slog.Logger
	now     func() time.Time
}

func NewWorker(camera domain.Camera, deps Deps, cfg Config, logger *slog.Logger) *Worker {
	cfg = cfg.withDefaults()
	logger = logger.With("camera_id", camera.ID)

	return &Worker{
		camera:  camera,
		deps:    deps,
		cfg:     cfg,
		queue:   make(chan domain.FrameEvent, cfg.QueueSize),
		tracker: incident.NewTracker(cfg.GracePeriod, logger, incident.WithRetryInterval(cfg.RetryInterval)),
		logger:  logger,
		now:     time.Now,
	}
}

func (w *Worker) Camera() domain.Camera {
	return w.camera
}

// Run consumes the queue until ctx is cancelled. Open sessions are then
// discarded without emitting alerts.
func (w *Worker) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.cfg.SweepInterval)
	defer ticker.Stop()

	w.logger.Info("camera worker started", "camera", w.camera.Name)

	for {
		select {
		case <-ctx.Done():
			discarded := w.tracker.Reset()
			w.logger.Info("camera worker stopped",
				"discarded_sessions", discarded,
				"dropped_frames", len(w.queue),
			)
			return nil
		case frame := <-w.queue:
			w.process(ctx, frame)
		case <-ticker.C:
			if n := w.tracker.Sweep(w.now()); n > 0 {
				w.logger.Debug("expired track sessions", "count", n)
			}
		}
	}
}

// enqueue waits at most timeout for queue space
func (w *Worker) enqueue(ctx context.Context, frame domain.FrameEvent, timeout time.Duration) error {
	select {
	case w.queue <- frame:
		return nil
	default:
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case w.queue <- frame:
		return nil
	case <-timer.C:
		return domain.ErrFrameQueueFull
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (w *Worker) process(ctx context.Context, frame domain.FrameEvent) {
	at := w.now()
	capturedAt := frame.CapturedAt
	if capturedAt.IsZero() {
		capturedAt = at
	}

	dets := slices.Clone(frame.Detections)
	w.detectEquipment(ctx, frame, dets)

	evidence := alert.Evidence{
		Frame:       frame.Frame,
		ContentType: frame.ContentType,
		CapturedAt:  capturedAt,
	}

	for _, det := range dets {
		if det.TrackID == "" {
			w.logger.Warn("detection without track id ignored", "frame_id", frame.FrameID)
			continue
		}
		w.evaluate(ctx, det, at, capturedAt, evidence)
	}
}

func (w *Worker) detectEquipment(ctx context.Context, frame domain.FrameEvent, dets []domain.Detection) {
	if w.deps.Detector == nil || len(frame.Frame) == 0 || !needsDetection(dets) {
		return
	}

	detectCtx, cancel := context.WithTimeout(ctx, w.cfg.IOTimeout)
	defer cancel()

	persons, err := w.deps.Detector.DetectPPE(detectCtx, frame.Frame)
	if err != nil {
		w.logger.Warn("ppe detection failed, equipment not evaluated for frame",
			"frame_id", frame.FrameID,
			"error", err,
		)
		return
	}

	assigned := assignEquipment(dets, persons)
	w.logger.Debug("ppe detection", "frame_id", frame.FrameID, "persons", len(persons), "assigned", assigned)
}

func (w *Worker) evaluate(ctx context.Context, det domain.Detection, at, capturedAt time.Time, ev alert.Evidence) {
	var observed incident.Identity
	faceSeen := len(det.Embedding) > 0
	if faceSeen {
		if err := w.validProbe(det.Embedding); err != nil {
			w.logger.Warn("unusable face embedding ignored",
				"track_id", det.TrackID,
				"dimension", len(det.Embedding),
				"error", err,
			)
			faceSeen = false
		}
	}
	if faceSeen {
		res := w.deps.Matcher.Match(det.Embedding)
		observed = incident.Identity{EmployeeID: res.EmployeeID, Known: res.Known}
	}

	identity := w.tracker.Seen(det.TrackID, observed, at)

	// Access needs a face this frame or an identity carried by the track
	if faceSeen || identity.Known {
		unauthorized := w.camera.Policy.Unauthorized(identity.EmployeeID, identity.Known, capturedAt)
		if inc := w.tracker.ObserveAccess(det.TrackID, unauthorized, at, capturedAt); inc != nil {
			w.record(ctx, *inc, ev)
		}
	}

	if identity.Known && det.Equipment != nil {
		violation := ppe.Evaluate(w.deps.Requirements.Current(), det.Equipment)
		if inc := w.tracker.ObservePPE(det.TrackID, violation, at, capturedAt); inc != nil {
			w.record(ctx, *inc, ev)
		}
	}
}

func (w *Worker) validProbe(probe []float64) error {
	dim := w.cfg.EmbeddingDim
	if dim <= 0 {
		dim = len(probe)
	}
	return embedding.Validate(probe, dim)
}

func (w *Worker) record(ctx context.Context, inc incident.Incident, ev alert.Evidence) {
	var err error
	switch inc.Kind {
	case domain.AlertKindPPE:
		_, err = w.deps.Recorder.RecordPPE(ctx, w.camera.ID, inc, ev)
	case domain.AlertKindUnauthorized:
		_, err = w.deps.Recorder.RecordUnauthorized(ctx, w.camera.ID, inc, ev)
	default:
		w.logger.Error("unknown incident kind", "kind", inc.Kind)
		return
	}

	if err != nil {
		w.logger.Error("failed to record alert, will retry on next observation",
			"incident_id", inc.ID,
			"kind", inc.Kind,
			"track_id", inc.TrackID,
			"attempt", inc.Attempt,
			"error", err,
		)
		return
	}

	w.tracker.Confirm(inc.TrackID, inc.ID)
}

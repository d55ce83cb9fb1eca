package webhook

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/saturnino-fabrica-de-software/vigia/internal/alert"
)

var ErrQueueFull = errors.New("webhook queue full")

type Option func(*Worker)

func WithMaxAttempts(n int) Option {
	return func(w *Worker) {
		if n > 0 {
			w.maxAttempts = n
		}
	}
}

func WithBaseDelay(d time.Duration) Option {
	return func(w *Worker) {
		if d > 0 {
			w.baseDelay = d
		}
	}
}

func WithQueueSize(n int) Option {
	return func(w *Worker) {
		if n > 0 {
			w.queue = make(chan job, n)
		}
	}
}

// Worker delivers alert events to the webhook in the background. Failed
// deliveries are retried with exponential backoff until maxAttempts.
type Worker struct {
	service     *Service
	logger      *slog.Logger
	queue       chan job
	pending     []job
	maxAttempts int
	baseDelay   time.Duration
	tick        time.Duration
}

func NewWorker(service *Service, logger *slog.Logger, opts ...Option) *Worker {
	w := &Worker{
		service:     service,
		logger:      logger,
		queue:       make(chan job, 256),
		maxAttempts: 5,
		baseDelay:   time.Second,
		tick:        100 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

func (w *Worker) Name() string {
	return "webhook"
}

// Publish enqueues the event and never waits on the network
func (w *Worker) Publish(_ context.Context, event alert.Event) error {
	payload := Payload{
		Type:      event.Type,
		CameraID:  event.CameraID,
		Timestamp: event.Timestamp,
	}
	switch {
	case event.PPE != nil:
		payload.Data = event.PPE
	case event.Unauthorized != nil:
		payload.Data = event.Unauthorized
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	select {
	case w.queue <- job{eventType: event.Type, body: body}:
		return nil
	default:
		return ErrQueueFull
	}
}

func (w *Worker) Run(ctx context.Context) {
	ticker := time.NewTicker(w.tick)
	defer ticker.Stop()

	w.logger.Info("webhook worker started")

	for {
		select {
		case <-ctx.Done():
			if n := len(w.pending) + len(w.queue); n > 0 {
				w.logger.Warn("webhook worker stopped with undelivered events", "count", n)
			} else {
				w.logger.Info("webhook worker stopped")
			}
			return
		case j := <-w.queue:
			w.process(ctx, j)
		case now := <-ticker.C:
			w.retryDue(ctx, now)
		}
	}
}

func (w *Worker) retryDue(ctx context.Context, now time.Time) {
	if len(w.pending) == 0 {
		return
	}

	due := w.pending[:0:0]
	waiting := w.pending[:0]
	for _, j := range w.pending {
		if now.Before(j.nextRetryAt) {
			waiting = append(waiting, j)
		} else {
			due = append(due, j)
		}
	}
	w.pending = waiting

	for _, j := range due {
		w.process(ctx, j)
	}
}

func (w *Worker) process(ctx context.Context, j job) {
	err := w.service.Send(ctx, j.eventType, j.body)
	if err == nil {
		w.logger.Debug("webhook delivered", "event", j.eventType, "attempts", j.attempts+1)
		return
	}

	j.attempts++
	if j.attempts >= w.maxAttempts {
		w.logger.Warn("webhook delivery failed",
			"event", j.eventType,
			"attempts", j.attempts,
			"error", err,
		)
		return
	}

	delay := time.Duration(1<<(j.attempts-1)) * w.baseDelay
	j.nextRetryAt = time.Now().Add(delay)
	w.pending = append(w.pending, j)

	w.logger.Info("webhook delivery scheduled for retry",
		"event", j.eventType,
		"attempts", j.attempts,
		"next_retry", j.nextRetryAt,
		"error", err,
	)
}

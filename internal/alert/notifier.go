package alert

import (
	"context"
	"log/slog"
)

// Sink is one delivery channel for alert events. Publish must not block
// the caller for long; slow channels queue internally.
type Sink interface {
	Name() string
	Publish(ctx context.Context, event Event) error
}

// Notifier fans an event out to every configured sink. Delivery is best
// effort: failures are logged and never reach the recorder.
type Notifier struct {
	sinks  []Sink
	logger *slog.Logger
}

func NewNotifier(logger *slog.Logger, sinks ...Sink) *Notifier {
	return &Notifier{
		sinks:  sinks,
		logger: logger,
	}
}

func (n *Notifier) Publish(ctx context.Context, event Event) {
	for _, sink := range n.sinks {
		if err := sink.Publish(ctx, event); err != nil {
			n.logger.Error("failed to publish alert event",
				"sink", sink.Name(),
				"event_type", event.Type,
				"camera_id", event.CameraID,
				"error", err,
			)
		}
	}
}

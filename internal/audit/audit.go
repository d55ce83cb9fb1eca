package audit

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// EventType defines the type of auditable event
type EventType string

const (
	EventEmployeeEnrolled   EventType = "EMPLOYEE_ENROLLED"
	EventPPEConfigReplaced  EventType = "PPE_CONFIG_REPLACED"
	EventCameraRegistered   EventType = "CAMERA_REGISTERED"
	EventEnrollmentRejected EventType = "ENROLLMENT_REJECTED"
)

// Event represents an administrative change worth keeping a trail of.
// Biometric data never goes into an event.
type Event struct {
	ID        uuid.UUID         `json:"id"`
	Timestamp time.Time         `json:"timestamp"`
	EventType EventType         `json:"event_type"`
	Subject   string            `json:"subject,omitempty"`
	Source    string            `json:"source,omitempty"`
	Success   bool              `json:"success"`
	Error     string            `json:"error,omitempty"`
	Metadata  map[string]string `json:"metadata,omitempty"`
	IPAddress string            `json:"ip_address,omitempty"`
	UserAgent string            `json:"user_agent,omitempty"`
}

type originKey struct{}

type origin struct {
	ip, userAgent string
}

// WithOrigin attaches the caller's address and user agent to ctx so events
// logged under it record where the change came from
func WithOrigin(ctx context.Context, ip, userAgent string) context.Context {
	return context.WithValue(ctx, originKey{}, origin{ip: ip, userAgent: userAgent})
}

// Logger defines the interface for audit logging
type Logger interface {
	Log(ctx context.Context, event Event) error
}

// SlogLogger implements Logger using slog
type SlogLogger struct {
	logger *slog.Logger
}

func NewSlogLogger(logger *slog.Logger) *SlogLogger {
	return &SlogLogger{
		logger: logger.With("component", "audit"),
	}
}

// Log records an audit event
func (l *SlogLogger) Log(ctx context.Context, event Event) error {
	if event.ID == uuid.Nil {
		event.ID = uuid.New()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}
	if o, ok := ctx.Value(originKey{}).(origin); ok {
		if event.IPAddress == "" {
			event.IPAddress = o.ip
		}
		if event.UserAgent == "" {
			event.UserAgent = o.userAgent
		}
	}

	eventJSON, err := json.Marshal(event)
	if err != nil {
		l.logger.ErrorContext(ctx, "failed to marshal audit event",
			slog.String("error", err.Error()),
			slog.String("event_type", string(event.EventType)),
		)
		return err
	}

	l.logger.InfoContext(ctx, "audit_event",
		slog.String("event_id", event.ID.String()),
		slog.String("event_type", string(event.EventType)),
		slog.String("subject", event.Subject),
		slog.Bool("success", event.Success),
		slog.String("event_data", string(eventJSON)),
	)

	return nil
}

// NoOpLogger is a logger that does nothing (for testing or when audit is disabled)
type NoOpLogger struct{}

func (l *NoOpLogger) Log(_ context.Context, _ Event) error {
	return nil
}

package audit

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSlogLogger_Log(t *testing.T) {
	tests := []struct {
		name          string
		event         Event
		wantEventType string
		wantSubject   string
		wantHasError  bool
	}{
		{
			name: "employee enrolled",
			event: Event{
				EventType: EventEmployeeEnrolled,
				Subject:   "E-1001",
				Source:    "upload",
				Success:   true,
			},
			wantEventType: string(EventEmployeeEnrolled),
			wantSubject:   "E-1001",
		},
		{
			name: "rejected enrollment keeps the error",
			event: Event{
				EventType: EventEnrollmentRejected,
				Subject:   "E-1002",
				Success:   false,
				Error:     "no face detected",
			},
			wantEventType: string(EventEnrollmentRejected),
			wantSubject:   "E-1002",
			wantHasError:  true,
		},
		{
			name: "camera registered with request origin",
			event: Event{
				EventType: EventCameraRegistered,
				Subject:   "9b2e6c0a-0000-4000-8000-000000000001",
				Success:   true,
				IPAddress: "10.0.0.8",
				UserAgent: "curl/8.0",
				Metadata:  map[string]string{"name": "north gate"},
			},
			wantEventType: string(EventCameraRegistered),
			wantSubject:   "9b2e6c0a-0000-4000-8000-000000000001",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			auditLogger := NewSlogLogger(slog.New(slog.NewJSONHandler(&buf, nil)))

			require.NoError(t, auditLogger.Log(context.Background(), tt.event))

			output := buf.String()
			assert.Contains(t, output, tt.wantEventType)
			assert.Contains(t, output, tt.wantSubject)
			assert.Contains(t, output, "audit_event")
			assert.Contains(t, output, `"component":"audit"`)

			if tt.wantHasError {
				assert.Contains(t, output, tt.event.Error)
			}
		})
	}
}

func TestSlogLogger_Log_GeneratesIDAndTimestamp(t *testing.T) {
	var buf bytes.Buffer
	auditLogger := NewSlogLogger(slog.New(slog.NewJSONHandler(&buf, nil)))

	err := auditLogger.Log(context.Background(), Event{
		EventType: EventPPEConfigReplaced,
		Success:   true,
	})
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.NotEmpty(t, lines)

	var logEntry map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &logEntry))

	eventID, ok := logEntry["event_id"].(string)
	require.True(t, ok)
	_, err = uuid.Parse(eventID)
	assert.NoError(t, err)

	var event Event
	require.NoError(t, json.Unmarshal([]byte(logEntry["event_data"].(string)), &event))
	assert.False(t, event.Timestamp.IsZero())
}

func TestSlogLogger_Log_UsesProvidedID(t *testing.T) {
	var buf bytes.Buffer
	auditLogger := NewSlogLogger(slog.New(slog.NewJSONHandler(&buf, nil)))
	expectedID := uuid.New()

	err := auditLogger.Log(context.Background(), Event{
		ID:        expectedID,
		Timestamp: time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC),
		EventType: EventEmployeeEnrolled,
		Success:   true,
	})
	require.NoError(t, err)

	assert.Contains(t, buf.String(), expectedID.String())
	assert.Contains(t, buf.String(), "2024-01-15T10:30:00Z")
}

func TestSlogLogger_Log_OriginFromContext(t *testing.T) {
	var buf bytes.Buffer
	auditLogger := NewSlogLogger(slog.New(slog.NewJSONHandler(&buf, nil)))
	ctx := WithOrigin(context.Background(), "172.16.0.4", "vigia-console/2.1")

	require.NoError(t, auditLogger.Log(ctx, Event{EventType: EventPPEConfigReplaced, Success: true}))

	assert.Contains(t, buf.String(), "172.16.0.4")
	assert.Contains(t, buf.String(), "vigia-console/2.1")
}

func TestNoOpLogger_Log(t *testing.T) {
	logger := &NoOpLogger{}

	err := logger.Log(context.Background(), Event{EventType: EventCameraRegistered})
	assert.NoError(t, err)
}

func TestEvent_JSONOmitsEmptyFields(t *testing.T) {
	data, err := json.Marshal(Event{EventType: EventPPEConfigReplaced, Success: true})
	require.NoError(t, err)

	jsonStr := string(data)
	assert.NotContains(t, jsonStr, "subject")
	assert.NotContains(t, jsonStr, "error")
	assert.NotContains(t, jsonStr, "ip_address")
	assert.NotContains(t, jsonStr, "user_agent")
}

func TestLoggerInterface_Compliance(t *testing.T) {
	var _ Logger = (*SlogLogger)(nil)
	var _ Logger = (*NoOpLogger)(nil)
}

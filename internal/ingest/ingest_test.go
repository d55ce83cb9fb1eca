package ingest

import (
	"context"
	"encoding/base64"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/saturnino-fabrica-de-software/vigia/internal/domain"
)

type MockDispatcher struct {
	mock.Mock
}

func (m *MockDispatcher) Dispatch(ctx context.Context, frame domain.FrameEvent) error {
	args := m.Called(ctx, frame)
	return args.Error(0)
}

type fakeMessage struct {
	topic   string
	payload []byte
}

func (m fakeMessage) Duplicate() bool   { return false }
func (m fakeMessage) Qos() byte         { return 0 }
func (m fakeMessage) Retained() bool    { return false }
func (m fakeMessage) Topic() string     { return m.topic }
func (m fakeMessage) MessageID() uint16 { return 1 }
func (m fakeMessage) Payload() []byte   { return m.payload }
func (m fakeMessage) Ack()              {}

func TestCameraFromTopic(t *testing.T) {
	id := uuid.New()

	got, err := CameraFromTopic("vigia/cameras/" + id.String() + "/detections")
	require.NoError(t, err)
	assert.Equal(t, id, got)

	_, err = CameraFromTopic("vigia/cameras/not-a-uuid/detections")
	assert.Error(t, err)

	_, err = CameraFromTopic("vigia/detections")
	assert.Error(t, err)
}

func TestDecode(t *testing.T) {
	cameraID := uuid.New()
	frame := []byte{0xff, 0xd8, 0xff, 0xe0}
	payload := `{
		"frame_id": "f-1",
		"captured_at": "2024-05-01T10:00:00Z",
		"frame": "` + base64.StdEncoding.EncodeToString(frame) + `",
		"content_type": "image/jpeg",
		"detections": [
			{"track_id": "T1", "embedding": [0.1, 0.2], "bbox": {"x": 0.1, "y": 0.2, "w": 0.3, "h": 0.4},
			 "equipment": {"helmet": true, "vest": false}}
		]
	}`

	ev, err := Decode(cameraID, []byte(payload))
	require.NoError(t, err)

	assert.Equal(t, cameraID, ev.CameraID)
	assert.Equal(t, frame, ev.Frame)
	assert.Equal(t, time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC), ev.CapturedAt)
	require.Len(t, ev.Detections, 1)
	assert.Equal(t, []float64{0.1, 0.2}, ev.Detections[0].Embedding)
	assert.InDelta(t, 0.3, ev.Detections[0].BoundingBox.Width, 1e-9)
	assert.True(t, ev.Detections[0].Equipment[domain.EquipmentHelmet])
	assert.False(t, ev.Detections[0].Equipment[domain.EquipmentVest])
}

func TestDecode_Invalid(t *testing.T) {
	cameraID := uuid.New()

	tests := []struct {
		name    string
		payload string
	}{
		{name: "not json", payload: `frame`},
		{name: "camera mismatch", payload: `{"camera_id":"` + uuid.New().String() + `","detections":[]}`},
		{name: "missing track", payload: `{"detections":[{"embedding":[1]}]}`},
		{name: "unknown equipment", payload: `{"detections":[{"track_id":"T1","equipment":{"boots":true}}]}`},
		{name: "bad base64", payload: `{"frame":"***"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(cameraID, []byte(tt.payload))
			assert.ErrorIs(t, err, domain.ErrInvalidFrame)
		})
	}
}

func TestSubscriber_HandleDispatchesDecodedFrame(t *testing.T) {
	cameraID := uuid.New()
	dispatcher := new(MockDispatcher)
	dispatcher.On("Dispatch", mock.Anything, mock.MatchedBy(func(f domain.FrameEvent) bool {
		return f.CameraID == cameraID && f.FrameID == "f-9"
	})).Return(nil).Once()

	s := NewSubscriber(Config{}, dispatcher, slog.New(slog.NewTextHandler(io.Discard, nil)))
	s.handle(context.Background(), fakeMessage{
		topic:   "vigia/cameras/" + cameraID.String() + "/detections",
		payload: []byte(`{"frame_id":"f-9","detections":[]}`),
	})

	dispatcher.AssertExpectations(t)
}

func TestSubscriber_HandleDropsBadMessages(t *testing.T) {
	dispatcher := new(MockDispatcher)
	s := NewSubscriber(Config{}, dispatcher, slog.New(slog.NewTextHandler(io.Discard, nil)))

	s.handle(context.Background(), fakeMessage{topic: "vigia/other", payload: []byte(`{}`)})
	s.handle(context.Background(), fakeMessage{
		topic:   "vigia/cameras/" + uuid.New().String() + "/detections",
		payload: []byte(`not json`),
	})

	dispatcher.AssertNotCalled(t, "Dispatch", mock.Anything, mock.Anything)
}

func TestSubscriber_HandleUnknownCamera(t *testing.T) {
	dispatcher := new(MockDispatcher)
	dispatcher.On("Dispatch", mock.Anything, mock.Anything).Return(domain.ErrCameraNotFound).Once()
	s := NewSubscriber(Config{}, dispatcher, slog.New(slog.NewTextHandler(io.Discard, nil)))

	s.handle(context.Background(), fakeMessage{
		topic:   "vigia/cameras/" + uuid.New().String() + "/detections",
		payload: []byte(`{"detections":[]}`),
	})

	dispatcher.AssertExpectations(t)
}

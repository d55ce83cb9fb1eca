package ws

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/saturnino-fabrica-de-software/vigia/internal/alert"
	"github.com/saturnino-fabrica-de-software/vigia/internal/domain"
)

func startHub(t *testing.T) *Hub {
	t.Helper()
	hub := NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go hub.Run(ctx)
	return hub
}

func newClient(hub *Hub, cameraID uuid.UUID, buffer int) *Client {
	return &Client{hub: hub, cameraID: cameraID, send: make(chan []byte, buffer)}
}

func receive(t *testing.T, c *Client) Event {
	t.Helper()
	select {
	case msg, ok := <-c.send:
		require.True(t, ok, "client channel closed")
		var event Event
		require.NoError(t, json.Unmarshal(msg, &event))
		return event
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for message")
		return Event{}
	}
}

func TestHub_AddAndRemoveClient(t *testing.T) {
	hub := startHub(t)
	cameraID := uuid.New()
	client := newClient(hub, cameraID, 1)

	hub.register <- client
	assert.Eventually(t, func() bool { return hub.ConnectedClients(cameraID) == 1 }, time.Second, 10*time.Millisecond)

	hub.unregister <- client
	assert.Eventually(t, func() bool { return hub.ConnectedClients(cameraID) == 0 }, time.Second, 10*time.Millisecond)
}

func TestHub_CameraScoping(t *testing.T) {
	hub := startHub(t)
	cam1, cam2 := uuid.New(), uuid.New()

	onCam1 := newClient(hub, cam1, 10)
	onCam2 := newClient(hub, cam2, 10)
	everything := newClient(hub, uuid.Nil, 10)
	for _, c := range []*Client{onCam1, onCam2, everything} {
		hub.register <- c
	}

	require.NoError(t, hub.Broadcast(cam1, EventPPEAlert, map[string]string{"employee_id": "E1"}))

	assert.Equal(t, EventPPEAlert, receive(t, onCam1).Type)
	assert.Equal(t, cam1, receive(t, everything).CameraID)

	select {
	case <-onCam2.send:
		t.Fatal("camera 2 client must not receive camera 1 events")
	case <-time.After(100 * time.Millisecond):
	}
}

func TestHub_PublishAlertEvent(t *testing.T) {
	hub := startHub(t)
	cameraID := uuid.New()
	client := newClient(hub, cameraID, 10)
	hub.register <- client

	openedAt := time.Date(2026, 2, 3, 22, 15, 0, 0, time.UTC)
	err := hub.Publish(context.Background(), alert.Event{
		Type:      alert.EventUnauthorizedAlertCreated,
		CameraID:  cameraID,
		Timestamp: openedAt,
		Unauthorized: &domain.UnauthorizedAlert{
			ID:       uuid.New(),
			CameraID: cameraID,
			TrackID:  "T9",
		},
	})
	require.NoError(t, err)

	event := receive(t, client)
	assert.Equal(t, EventUnauthorizedAlert, event.Type)
	assert.True(t, openedAt.Equal(event.Timestamp), "event keeps the incident time")
	assert.Equal(t, "websocket", hub.Name())
}

func TestHub_DropsSlowClients(t *testing.T) {
	hub := startHub(t)
	cameraID := uuid.New()
	slow := newClient(hub, cameraID, 0)
	hub.register <- slow

	require.NoError(t, hub.Broadcast(cameraID, EventPPEAlert, nil))

	assert.Eventually(t, func() bool { return hub.ConnectedClients(cameraID) == 0 }, time.Second, 10*time.Millisecond)
}

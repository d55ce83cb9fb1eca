package ingest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/saturnino-fabrica-de-software/vigia/internal/domain"
)

// Dispatcher hands decoded frames to the camera pipeline
type Dispatcher interface {
	Dispatch(ctx context.Context, frame domain.FrameEvent) error
}

type Config struct {
	Broker   string
	ClientID string
	Topic    string
	QoS      byte
}

// Subscriber receives frame events over MQTT. Paho delivers messages of a
// subscription one at a time in arrival order, which keeps per-camera order.
type Subscriber struct {
	cfg        Config
	dispatcher Dispatcher
	logger     *slog.Logger
	client     mqtt.Client
}

func NewSubscriber(cfg Config, dispatcher Dispatcher, logger *slog.Logger) *Subscriber {
	return &Subscriber{
		cfg:        cfg,
		dispatcher: dispatcher,
		logger:     logger.With("component", "mqtt_ingest"),
	}
}

// Run connects, subscribes on every (re)connect and blocks until ctx ends
func (s *Subscriber) Run(ctx context.Context) error {
	opts := mqtt.NewClientOptions().
		AddBroker(s.cfg.Broker).
		SetClientID(s.cfg.ClientID).
		SetAutoReconnect(true).
		SetOrderMatters(true).
		SetConnectTimeout(10 * time.Second)

	opts.OnConnect = func(c mqtt.Client) {
		s.logger.Info("connected to broker", "broker", s.cfg.Broker, "topic", s.cfg.Topic)
		token := c.Subscribe(s.cfg.Topic, s.cfg.QoS, func(_ mqtt.Client, m mqtt.Message) {
			s.handle(ctx, m)
		})
		if token.Wait() && token.Error() != nil {
			s.logger.Error("subscribe failed", "topic", s.cfg.Topic, "error", token.Error())
		}
	}
	opts.OnConnectionLost = func(_ mqtt.Client, err error) {
		s.logger.Warn("broker connection lost", "error", err)
	}

	s.client = mqtt.NewClient(opts)
	if token := s.client.Connect(); token.Wait() && token.Error() != nil {
		return fmt.Errorf("connect to mqtt broker: %w", token.Error())
	}

	<-ctx.Done()

	s.client.Unsubscribe(s.cfg.Topic).WaitTimeout(time.Second)
	s.client.Disconnect(250)
	s.logger.Info("mqtt ingest stopped")
	return nil
}

func (s *Subscriber) handle(ctx context.Context, m mqtt.Message) {
	cameraID, err := CameraFromTopic(m.Topic())
	if err != nil {
		s.logger.Warn("message on unexpected topic", "topic", m.Topic(), "error", err)
		return
	}

	frame, err := Decode(cameraID, m.Payload())
	if err != nil {
		s.logger.Warn("invalid frame event", "camera_id", cameraID, "error", err)
		return
	}

	if err := s.dispatcher.Dispatch(ctx, frame); err != nil {
		if errors.Is(err, domain.ErrCameraNotFound) {
			s.logger.Warn("frame for unregistered camera", "camera_id", cameraID)
			return
		}
		s.logger.Error("dispatch frame", "camera_id", cameraID, "frame_id", frame.FrameID, "error", err)
	}
}

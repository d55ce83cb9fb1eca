package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/saturnino-fabrica-de-software/vigia/internal/alert"
	"github.com/saturnino-fabrica-de-software/vigia/internal/api"
	"github.com/saturnino-fabrica-de-software/vigia/internal/audit"
	"github.com/saturnino-fabrica-de-software/vigia/internal/config"
	"github.com/saturnino-fabrica-de-software/vigia/internal/database"
	"github.com/saturnino-fabrica-de-software/vigia/internal/embedding"
	"github.com/saturnino-fabrica-de-software/vigia/internal/face"
	"github.com/saturnino-fabrica-de-software/vigia/internal/ingest"
	"github.com/saturnino-fabrica-de-software/vigia/internal/matcher"
	"github.com/saturnino-fabrica-de-software/vigia/internal/pipeline"
	"github.com/saturnino-fabrica-de-software/vigia/internal/ppe"
	"github.com/saturnino-fabrica-de-software/vigia/internal/repository"
	"github.com/saturnino-fabrica-de-software/vigia/internal/scheduler"
	"github.com/saturnino-fabrica-de-software/vigia/internal/service"
	"github.com/saturnino-fabrica-de-software/vigia/internal/snapshot"
	"github.com/saturnino-fabrica-de-software/vigia/internal/webhook"
	"github.com/saturnino-fabrica-de-software/vigia/internal/ws"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger := config.NewLogger(cfg.Environment, cfg.LogLevel)
	slog.SetDefault(logger)

	logger.Info("starting Vigia",
		slog.String("environment", cfg.Environment),
		slog.Int("port", cfg.Port),
		slog.String("snapshot_backend", cfg.SnapshotBackend),
		slog.String("ppe_detector", cfg.PPEDetector),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := database.MigrateUp(cfg.DatabaseURL); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}

	pool, err := database.NewPool(ctx, database.DefaultPoolConfig(cfg.DatabaseURL))
	if err != nil {
		return fmt.Errorf("failed to connect database: %w", err)
	}
	defer pool.Close()

	employeeRepo := repository.NewEmployeeRepository(pool)
	ppeRepo := repository.NewPPEConfigRepository(pool)
	cameraRepo := repository.NewCameraRepository(pool)
	alertRepo := alert.NewRepository(pool)

	// In-memory views; boot fails if they cannot be loaded once
	embeddings := embedding.NewStore(cfg.EmbeddingDim, employeeRepo, cfg.IOTimeout, logger)
	if err := embeddings.Load(ctx); err != nil {
		return fmt.Errorf("failed to load embeddings: %w", err)
	}
	requirements := ppe.NewRequirementStore(ppeRepo, cfg.IOTimeout, logger)
	if err := requirements.Load(ctx); err != nil {
		return fmt.Errorf("failed to load ppe requirements: %w", err)
	}

	match, err := matcher.New(embeddings, matcher.Config{
		Metric:    matcher.Metric(cfg.MatchMetric),
		Threshold: cfg.MatchThreshold,
		Index:     cfg.MatcherIndex,
	}, logger)
	if err != nil {
		return fmt.Errorf("failed to create matcher: %w", err)
	}

	snapshots, closeSnapshots, err := newSnapshotStore(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to create snapshot store: %w", err)
	}
	defer closeSnapshots()

	embedder, err := face.NewEmbedder(cfg)
	if err != nil {
		return fmt.Errorf("failed to create embedder: %w", err)
	}
	detector, err := face.NewPPEDetector(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to create ppe detector: %w", err)
	}

	// Alert fan-out: websocket clients always, webhook when configured
	hub := ws.NewHub()
	go hub.Run(ctx)

	sinks := []alert.Sink{hub}
	if cfg.WebhookURL != "" {
		webhookWorker := webhook.NewWorker(
			webhook.NewService(cfg.WebhookURL, cfg.WebhookSecret, cfg.IOTimeout),
			logger,
		)
		go webhookWorker.Run(ctx)
		sinks = append(sinks, webhookWorker)
	}
	notifier := alert.NewNotifier(logger, sinks...)
	recorder := alert.NewRecorder(snapshots, alertRepo, notifier, cfg.IOTimeout, logger)

	supervisor := pipeline.NewSupervisor(pipeline.Deps{
		Matcher:      match,
		Requirements: requirements,
		Recorder:     recorder,
		Detector:     detector,
	}, pipeline.Config{
		EmbeddingDim:    cfg.EmbeddingDim,
		GracePeriod:     cfg.TrackGracePeriod,
		QueueSize:       cfg.CameraQueueSize,
		DispatchTimeout: cfg.DispatchTimeout,
		IOTimeout:       cfg.IOTimeout,
	}, logger)

	cameras, err := cameraRepo.List(ctx)
	if err != nil {
		return fmt.Errorf("failed to list cameras: %w", err)
	}
	if err := supervisor.Start(ctx, cameras...); err != nil {
		return fmt.Errorf("failed to start camera workers: %w", err)
	}
	logger.Info("camera workers started", slog.Int("cameras", len(cameras)))

	if cfg.MQTTBroker != "" {
		subscriber := ingest.NewSubscriber(ingest.Config{
			Broker:   cfg.MQTTBroker,
			ClientID: cfg.MQTTClientID,
			Topic:    cfg.MQTTTopic,
			QoS:      1,
		}, supervisor, logger)
		go func() {
			if err := subscriber.Run(ctx); err != nil {
				logger.Error("mqtt ingest stopped", slog.Any("error", err))
			}
		}()
	}

	jobs := scheduler.New(logger, cfg.IOTimeout*6)
	for _, job := range []scheduler.Job{
		scheduler.ReloadJob(scheduler.JobReloadEmbeddings, cfg.StoreReloadInterval, embeddings),
		scheduler.ReloadJob(scheduler.JobReloadRequirements, cfg.StoreReloadInterval, requirements),
		scheduler.SweepJob(cfg.OrphanSweepInterval, alert.NewJanitor(alertRepo, snapshots, cfg.IOTimeout, logger), logger),
	} {
		if err := jobs.Add(job); err != nil {
			return fmt.Errorf("failed to schedule job: %w", err)
		}
	}
	jobs.Start(ctx)

	auditLogger := audit.NewSlogLogger(logger)
	router := api.NewRouter(logger, &api.Dependencies{
		Employees:       service.NewEnrollmentService(embedder, embeddings, employeeRepo, auditLogger),
		Cameras:         service.NewCameraService(cameraRepo, supervisor, auditLogger),
		PPE:             service.NewPPEService(requirements, auditLogger),
		Alerts:          alertRepo,
		Dispatcher:      supervisor,
		Hub:             hub,
		DB:              pool,
		IngestRateLimit: cfg.IngestRateLimit,
	})
	router.Setup()

	errChan := make(chan error, 1)
	go func() {
		addr := fmt.Sprintf(":%d", cfg.Port)
		logger.Info("server listening", slog.String("addr", addr))
		if err := router.Listen(addr); err != nil {
			errChan <- err
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case err := <-errChan:
		stop()
		return fmt.Errorf("server error: %w", err)
	}

	logger.Info("shutting down server...")
	if err := router.Shutdown(); err != nil {
		logger.Error("shutdown error", slog.Any("error", err))
	}
	jobs.Stop()

	// Workers drop their open incidents on cancel; wait for them to return
	done := make(chan error, 1)
	go func() { done <- supervisor.Wait() }()
	select {
	case err := <-done:
		if err != nil {
			logger.Error("camera workers stopped with error", slog.Any("error", err))
		}
	case <-time.After(10 * time.Second):
		logger.Warn("camera workers did not stop in time")
	}

	logger.Info("server stopped")
	return nil
}

// newSnapshotStore selects the evidence backend from SNAPSHOT_BACKEND
func newSnapshotStore(ctx context.Context, cfg *config.Config) (snapshot.Store, func(), error) {
	switch cfg.SnapshotBackend {
	case "gcs":
		store, err := snapshot.NewGCSStore(ctx, cfg.GCSBucket)
		if err != nil {
			return nil, nil, err
		}
		return store, func() { _ = store.Close() }, nil
	default:
		store, err := snapshot.NewFSStore(cfg.SnapshotDir)
		if err != nil {
			return nil, nil, err
		}
		return store, func() {}, nil
	}
}

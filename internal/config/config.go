package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	// Server
	Port        int    `envconfig:"PORT" default:"3000"`
	Environment string `envconfig:"ENV" default:"development"`
	LogLevel    string `envconfig:"LOG_LEVEL"`

	// Database
	DatabaseURL string `envconfig:"DATABASE_URL" required:"true"`

	// Matching
	EmbeddingDim   int     `envconfig:"EMBEDDING_DIM" default:"128"`
	MatchMetric    string  `envconfig:"MATCH_METRIC" default:"cosine"`
	MatchThreshold float64 `envconfig:"MATCH_THRESHOLD" default:"0.40"`
	MatcherIndex   string  `envconfig:"MATCHER_INDEX" default:"linear"`

	// Pipeline
	TrackGracePeriod time.Duration `envconfig:"TRACK_GRACE_PERIOD" default:"5s"`
	IOTimeout        time.Duration `envconfig:"IO_TIMEOUT" default:"5s"`
	CameraQueueSize  int           `envconfig:"CAMERA_QUEUE_SIZE" default:"64"`
	DispatchTimeout  time.Duration `envconfig:"DISPATCH_TIMEOUT" default:"500ms"`
	IngestRateLimit  int           `envconfig:"INGEST_RATE_LIMIT" default:"1200"` // HTTP frames per camera per minute

	// Snapshots
	SnapshotBackend string `envconfig:"SNAPSHOT_BACKEND" default:"fs"`
	SnapshotDir     string `envconfig:"SNAPSHOT_DIR" default:"./snapshots"`
	GCSBucket       string `envconfig:"GCS_BUCKET"`

	// Provider
	EmbedderType  string `envconfig:"EMBEDDER" default:"deepface"`
	DeepFaceURL   string `envconfig:"DEEPFACE_URL" default:"http://localhost:5000"`
	DeepFaceModel string `envconfig:"DEEPFACE_MODEL" default:"Facenet"`
	PPEDetector   string `envconfig:"PPE_DETECTOR" default:"none"`
	AWSRegion     string `envconfig:"AWS_REGION" default:"us-east-1"`

	// Ingest
	MQTTBroker   string `envconfig:"MQTT_BROKER"`
	MQTTClientID string `envconfig:"MQTT_CLIENT_ID" default:"vigia"`
	MQTTTopic    string `envconfig:"MQTT_TOPIC" default:"vigia/cameras/+/detections"`

	// Notifications
	WebhookURL    string `envconfig:"WEBHOOK_URL"`
	WebhookSecret string `envconfig:"WEBHOOK_SECRET"`

	// Jobs
	StoreReloadInterval time.Duration `envconfig:"STORE_RELOAD_INTERVAL" default:"1m"`
	OrphanSweepInterval time.Duration `envconfig:"ORPHAN_SWEEP_INTERVAL" default:"10m"`
}

// Load reads a .env file when present and then the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	if c.EmbeddingDim <= 0 {
		return fmt.Errorf("EMBEDDING_DIM must be positive, got %d", c.EmbeddingDim)
	}
	switch c.MatchMetric {
	case "cosine", "euclidean":
	default:
		return fmt.Errorf("unsupported MATCH_METRIC %q", c.MatchMetric)
	}
	if c.MatchThreshold < 0 {
		return fmt.Errorf("MATCH_THRESHOLD must not be negative")
	}
	switch c.MatcherIndex {
	case "linear", "hnsw":
	default:
		return fmt.Errorf("unsupported MATCHER_INDEX %q", c.MatcherIndex)
	}
	if c.TrackGracePeriod <= 0 || c.IOTimeout <= 0 {
		return fmt.Errorf("TRACK_GRACE_PERIOD and IO_TIMEOUT must be positive")
	}
	if c.CameraQueueSize <= 0 {
		return fmt.Errorf("CAMERA_QUEUE_SIZE must be positive")
	}
	switch c.SnapshotBackend {
	case "fs":
	case "gcs":
		if c.GCSBucket == "" {
			return fmt.Errorf("GCS_BUCKET is required for the gcs snapshot backend")
		}
	default:
		return fmt.Errorf("unsupported SNAPSHOT_BACKEND %q", c.SnapshotBackend)
	}
	switch c.PPEDetector {
	case "none", "rekognition":
	default:
		return fmt.Errorf("unsupported PPE_DETECTOR %q", c.PPEDetector)
	}
	return nil
}

func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

func (c *Config) IngestEnabled() bool {
	return c.MQTTBroker != ""
}

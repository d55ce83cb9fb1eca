package service

import (
	"context"
	"fmt"
	"net"
	"strings"

	"github.com/google/uuid"

	"github.com/saturnino-fabrica-de-software/vigia/internal/audit"
	"github.com/saturnino-fabrica-de-software/vigia/internal/domain"
	"github.com/saturnino-fabrica-de-software/vigia/internal/repository"
)

const minutesPerDay = 24 * 60

// CameraRunner starts the evaluation pipeline of a camera
type CameraRunner interface {
	AddCamera(camera domain.Camera) error
}

type CameraService struct {
	repo   repository.CameraRepositoryInterface
	runner CameraRunner
	audit  audit.Logger
}

func NewCameraService(repo repository.CameraRepositoryInterface, runner CameraRunner, auditLogger audit.Logger) *CameraService {
	if auditLogger == nil {
		auditLogger = &audit.NoOpLogger{}
	}
	return &CameraService{
		repo:   repo,
		runner: runner,
		audit:  auditLogger,
	}
}

// Register persists the camera and starts its worker
func (s *CameraService) Register(ctx context.Context, camera *domain.Camera) error {
	if err := validateCamera(camera); err != nil {
		return err
	}
	if camera.ID == uuid.Nil {
		camera.ID = uuid.New()
	}

	if err := s.repo.Create(ctx, camera); err != nil {
		return err
	}

	if err := s.runner.AddCamera(*camera); err != nil {
		return domain.ErrInternal.WithError(fmt.Errorf("start camera %s: %w", camera.ID, err))
	}

	_ = s.audit.Log(ctx, audit.Event{
		EventType: audit.EventCameraRegistered,
		Subject:   camera.ID.String(),
		Success:   true,
		Metadata: map[string]string{
			"name":       camera.Name,
			"restricted": fmt.Sprint(camera.Policy.Restricted),
		},
	})

	return nil
}

func (s *CameraService) List(ctx context.Context) ([]domain.Camera, error) {
	return s.repo.List(ctx)
}

func validateCamera(camera *domain.Camera) error {
	camera.Name = strings.TrimSpace(camera.Name)
	camera.IPAddress = strings.TrimSpace(camera.IPAddress)

	if camera.Name == "" {
		return domain.ErrValidationFailed.WithError(fmt.Errorf("name is required"))
	}
	if camera.IPAddress == "" {
		return domain.ErrValidationFailed.WithError(fmt.Errorf("ip_address is required"))
	}
	host := camera.IPAddress
	if h, _, err := net.SplitHostPort(host); err == nil {
		host = h
	}
	if net.ParseIP(host) == nil {
		return domain.ErrValidationFailed.WithError(fmt.Errorf("ip_address %q is not an IP", camera.IPAddress))
	}

	p := camera.Policy
	if p.WindowStart < 0 || p.WindowStart >= minutesPerDay || p.WindowEnd < 0 || p.WindowEnd >= minutesPerDay {
		return domain.ErrValidationFailed.WithError(fmt.Errorf("access window minutes must be within [0, %d)", minutesPerDay))
	}

	allowed := make([]string, 0, len(p.AllowedEmployees))
	for _, id := range p.AllowedEmployees {
		if id = strings.TrimSpace(id); id != "" {
			allowed = append(allowed, id)
		}
	}
	camera.Policy.AllowedEmployees = allowed

	return nil
}

package service

import (
	"context"

	"github.com/saturnino-fabrica-de-software/vigia/internal/audit"
	"github.com/saturnino-fabrica-de-software/vigia/internal/domain"
)

// RequirementStore holds the active PPE requirement set
type RequirementStore interface {
	Current() domain.PPERequirement
	Set(ctx context.Context, req domain.PPERequirement) error
}

type PPEService struct {
	store RequirementStore
	audit audit.Logger
}

func NewPPEService(store RequirementStore, auditLogger audit.Logger) *PPEService {
	if auditLogger == nil {
		auditLogger = &audit.NoOpLogger{}
	}
	return &PPEService{store: store, audit: auditLogger}
}

// Replace swaps the whole requirement set. Frames evaluated afterwards use
// the new set; frames already in flight may still see the old one.
func (s *PPEService) Replace(ctx context.Context, req domain.PPERequirement) error {
	if err := s.store.Set(ctx, req); err != nil {
		return err
	}

	_ = s.audit.Log(ctx, audit.Event{
		EventType: audit.EventPPEConfigReplaced,
		Success:   true,
		Metadata:  map[string]string{"required": domain.ViolationSet(req.Required()).String()},
	})
	return nil
}

func (s *PPEService) Current() domain.PPERequirement {
	return s.store.Current()
}

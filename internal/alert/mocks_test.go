package alert

import (
	"context"
	"io"
	"log/slog"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/saturnino-fabrica-de-software/vigia/internal/domain"
)

type MockStore struct {
	mock.Mock
}

func (m *MockStore) InsertPPE(ctx context.Context, a *domain.PPEAlert) (bool, error) {
	args := m.Called(ctx, a)
	return args.Bool(0), args.Error(1)
}

func (m *MockStore) InsertUnauthorized(ctx context.Context, a *domain.UnauthorizedAlert) (bool, error) {
	args := m.Called(ctx, a)
	return args.Bool(0), args.Error(1)
}

func (m *MockStore) ReportOrphan(ctx context.Context, o domain.OrphanSnapshot) error {
	return m.Called(ctx, o).Error(0)
}

func (m *MockStore) ListOrphans(ctx context.Context, limit int) ([]domain.OrphanSnapshot, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.OrphanSnapshot), args.Error(1)
}

func (m *MockStore) DeleteOrphan(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

type MockSnapshots struct {
	mock.Mock
}

func (m *MockSnapshots) Save(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	args := m.Called(ctx, key, data, contentType)
	return args.String(0), args.Error(1)
}

func (m *MockSnapshots) Delete(ctx context.Context, path string) error {
	return m.Called(ctx, path).Error(0)
}

type recordingPublisher struct {
	events []Event
}

func (p *recordingPublisher) Publish(_ context.Context, event Event) {
	p.events = append(p.events, event)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

package alert

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/saturnino-fabrica-de-software/vigia/internal/domain"
)

func TestRepository_InsertPPE(t *testing.T) {
	now := time.Now()
	a := &domain.PPEAlert{
		ID:           uuid.New(),
		CameraID:     cameraID,
		TrackID:      "T1",
		EmployeeID:   "E1",
		Violation:    domain.NewViolationSet(domain.EquipmentVest, domain.EquipmentHelmet),
		Timestamp:    capturedAt,
		SnapshotPath: "/s/a.jpg",
	}

	tests := []struct {
		name         string
		mockSetup    func(mock pgxmock.PgxPoolIface)
		wantInserted bool
		wantErr      bool
	}{
		{
			name: "inserted",
			mockSetup: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectQuery(`INSERT INTO ppe_alerts .* ON CONFLICT \(id\) DO NOTHING RETURNING created_at`).
					WithArgs(a.ID, a.CameraID, "T1", "E1", "helmet,vest", capturedAt, "/s/a.jpg").
					WillReturnRows(pgxmock.NewRows([]string{"created_at"}).AddRow(now))
			},
			wantInserted: true,
		},
		{
			name: "already recorded",
			mockSetup: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectQuery(`INSERT INTO ppe_alerts`).
					WithArgs(a.ID, a.CameraID, "T1", "E1", "helmet,vest", capturedAt, "/s/a.jpg").
					WillReturnError(pgx.ErrNoRows)
			},
			wantInserted: false,
		},
		{
			name: "database error",
			mockSetup: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectQuery(`INSERT INTO ppe_alerts`).
					WithArgs(a.ID, a.CameraID, "T1", "E1", "helmet,vest", capturedAt, "/s/a.jpg").
					WillReturnError(errors.New("connection refused"))
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock, err := pgxmock.NewPool()
			require.NoError(t, err)
			defer mock.Close()

			tt.mockSetup(mock)

			repo := NewRepository(mock)
			inserted, err := repo.InsertPPE(context.Background(), a)

			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), "insert ppe alert")
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.wantInserted, inserted)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestRepository_ListPPE(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	newer := capturedAt.Add(time.Minute)
	rows := pgxmock.NewRows([]string{
		"id", "camera_id", "track_id", "employee_id", "violation", "timestamp", "snapshot_path", "created_at",
	}).
		AddRow(uuid.New(), cameraID, "T2", "E2", "vest", newer, "/s/2.jpg", newer).
		AddRow(uuid.New(), cameraID, "T1", "E1", "helmet,mask", capturedAt, "/s/1.jpg", capturedAt)

	mock.ExpectQuery(`SELECT id, camera_id, track_id, employee_id, violation, timestamp, snapshot_path, created_at FROM ppe_alerts ORDER BY timestamp DESC`).
		WithArgs(DefaultListLimit).
		WillReturnRows(rows)

	repo := NewRepository(mock)
	got, err := repo.ListPPE(context.Background(), 0)

	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "E2", got[0].EmployeeID)
	assert.True(t, got[1].Violation.Equal(domain.NewViolationSet(domain.EquipmentHelmet, domain.EquipmentMask)))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_ListUnauthorized(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	employee := "E4"
	rows := pgxmock.NewRows([]string{
		"id", "camera_id", "track_id", "employee_id", "timestamp", "snapshot_path", "created_at",
	}).
		AddRow(uuid.New(), cameraID, "T8", &employee, capturedAt, "/s/8.jpg", capturedAt).
		AddRow(uuid.New(), cameraID, "T9", nil, capturedAt, "/s/9.jpg", capturedAt)

	mock.ExpectQuery(`SELECT id, camera_id, track_id, employee_id, timestamp, snapshot_path, created_at FROM unauthorized_alerts`).
		WithArgs(MaxListLimit).
		WillReturnRows(rows)

	repo := NewRepository(mock)
	got, err := repo.ListUnauthorized(context.Background(), 5000)

	require.NoError(t, err)
	require.Len(t, got, 2)
	require.NotNil(t, got[0].EmployeeID)
	assert.Equal(t, "E4", *got[0].EmployeeID)
	assert.Nil(t, got[1].EmployeeID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_ReportOrphan(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectExec(`INSERT INTO snapshot_orphans`).
		WithArgs("/s/o.jpg", domain.AlertKindPPE, "timeout").
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	repo := NewRepository(mock)
	err = repo.ReportOrphan(context.Background(), domain.OrphanSnapshot{Path: "/s/o.jpg", Kind: domain.AlertKindPPE, Reason: "timeout"})

	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

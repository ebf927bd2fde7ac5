package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/studyflow/studyflow-api/internal/dto"
	"github.com/studyflow/studyflow-api/internal/optimizer"
	"github.com/studyflow/studyflow-api/pkg/export"
	"github.com/studyflow/studyflow-api/pkg/storage"
)

type runnerStub struct{}

func (runnerStub) Optimize(ctx context.Context, userID string, req dto.OptimizeScheduleRequest) (*dto.OptimizeScheduleResponse, error) {
	return &dto.OptimizeScheduleResponse{
		Preset: "default",
		Changes: []optimizer.Change{
			{
				Action:      optimizer.ActionMove,
				EventID:     "evt-1",
				Title:       "Math study",
				NewStart:    time.Date(2024, 5, 6, 11, 15, 0, 0, time.UTC),
				DurationMin: 60,
				Reason:      "Moved to resolve conflict",
			},
		},
		Metrics:        optimizer.Metrics{ConflictsResolved: 1, EventsMoved: 1},
		ScheduleHealth: optimizer.ScheduleHealth{BalanceScore: 90},
	}, nil
}

func newReportServiceForTest(t *testing.T) *ReportService {
	t.Helper()
	store, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	signer := storage.NewSignedURLSigner("secret", time.Hour)
	return NewReportService(runnerStub{}, export.NewCSVExporter(), export.NewPDFExporter(), store, signer, zap.NewNop(), true)
}

func TestReportServiceGenerateCSV(t *testing.T) {
	svc := newReportServiceForTest(t)

	payload, contentType, err := svc.Generate(context.Background(), "user-1", "", ReportFormatCSV)
	require.NoError(t, err)
	require.Equal(t, "text/csv", contentType)

	body := string(payload)
	require.Contains(t, body, "Action,Event,New Start,Duration (min),Reason")
	require.Contains(t, body, "Math study")
	require.Contains(t, body, "Conflicts resolved,1")
}

func TestReportServiceGeneratePDF(t *testing.T) {
	svc := newReportServiceForTest(t)

	payload, contentType, err := svc.Generate(context.Background(), "user-1", "", ReportFormatPDF)
	require.NoError(t, err)
	require.Equal(t, "application/pdf", contentType)
	require.True(t, len(payload) > 4)
	require.Equal(t, "%PDF", string(payload[:4]))
}

func TestReportServiceGenerateUnsupportedFormat(t *testing.T) {
	svc := newReportServiceForTest(t)

	_, _, err := svc.Generate(context.Background(), "user-1", "", "xlsx")
	require.Error(t, err)
}

func TestReportServiceLinkRoundTrip(t *testing.T) {
	svc := newReportServiceForTest(t)

	token, expiresAt, err := svc.GenerateLink(context.Background(), "user-1", "", ReportFormatCSV)
	require.NoError(t, err)
	require.NotEmpty(t, token)
	require.True(t, expiresAt.After(time.Now()))

	payload, contentType, err := svc.OpenArchived(token)
	require.NoError(t, err)
	require.Equal(t, "text/csv", contentType)
	require.Contains(t, string(payload), "Math study")
}

func TestReportServiceDisabled(t *testing.T) {
	svc := NewReportService(runnerStub{}, export.NewCSVExporter(), export.NewPDFExporter(), nil, nil, zap.NewNop(), false)

	_, _, err := svc.Generate(context.Background(), "user-1", "", ReportFormatCSV)
	require.Error(t, err)

	_, _, err = svc.OpenArchived("token")
	require.Error(t, err)
}

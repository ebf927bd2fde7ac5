package service

import (
	"context"
	"fmt"
	"io"
	"path"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/studyflow/studyflow-api/internal/dto"
	appErrors "github.com/studyflow/studyflow-api/pkg/errors"
	"github.com/studyflow/studyflow-api/pkg/export"
	"github.com/studyflow/studyflow-api/pkg/storage"
)

// Report output formats.
const (
	ReportFormatCSV = "csv"
	ReportFormatPDF = "pdf"
)

type optimizationRunner interface {
	Optimize(ctx context.Context, userID string, req dto.OptimizeScheduleRequest) (*dto.OptimizeScheduleResponse, error)
}

// ReportService renders optimization proposals as downloadable documents and
// optionally archives them for signed-link downloads.
type ReportService struct {
	optimizer optimizationRunner
	csv       *export.CSVExporter
	pdf       *export.PDFExporter
	store     *storage.LocalStorage
	signer    *storage.SignedURLSigner
	logger    *zap.Logger
	enabled   bool
}

// NewReportService constructs a report service. Storage and signer may be nil,
// which disables signed download links.
func NewReportService(optimizer optimizationRunner, csv *export.CSVExporter, pdf *export.PDFExporter, store *storage.LocalStorage, signer *storage.SignedURLSigner, logger *zap.Logger, enabled bool) *ReportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReportService{optimizer: optimizer, csv: csv, pdf: pdf, store: store, signer: signer, logger: logger, enabled: enabled}
}

// Generate runs the optimizer and renders the proposal in the requested format.
// It returns the file bytes together with the response content type.
func (s *ReportService) Generate(ctx context.Context, userID, preset, format string) ([]byte, string, error) {
	if !s.enabled {
		return nil, "", appErrors.Clone(appErrors.ErrForbidden, "report downloads are disabled")
	}

	result, err := s.optimizer.Optimize(ctx, userID, dto.OptimizeScheduleRequest{Preset: preset})
	if err != nil {
		return nil, "", err
	}

	return s.render(result, format)
}

// GenerateLink renders and archives a report, returning a signed token that
// allows downloading it without credentials until the token expires.
func (s *ReportService) GenerateLink(ctx context.Context, userID, preset, format string) (string, time.Time, error) {
	if s.store == nil || s.signer == nil {
		return "", time.Time{}, appErrors.Clone(appErrors.ErrForbidden, "report links are disabled")
	}

	payload, _, err := s.Generate(ctx, userID, preset, format)
	if err != nil {
		return "", time.Time{}, err
	}

	if format == "" {
		format = ReportFormatCSV
	}
	relPath := fmt.Sprintf("%s/schedule-optimization-%s.%s", userID, time.Now().UTC().Format("20060102-150405"), strings.ToLower(format))
	if _, err := s.store.Save(relPath, payload); err != nil {
		return "", time.Time{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to archive report")
	}

	token, expiresAt, err := s.signer.Generate(userID, relPath)
	if err != nil {
		return "", time.Time{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to sign report link")
	}
	return token, expiresAt, nil
}

// OpenArchived validates a signed token and streams the archived report back.
func (s *ReportService) OpenArchived(token string) ([]byte, string, error) {
	if s.store == nil || s.signer == nil {
		return nil, "", appErrors.Clone(appErrors.ErrForbidden, "report links are disabled")
	}

	_, relPath, _, err := s.signer.Parse(token, false)
	if err != nil {
		return nil, "", appErrors.Wrap(err, appErrors.ErrUnauthorized.Code, appErrors.ErrUnauthorized.Status, "invalid download token")
	}

	file, err := s.store.Open(relPath)
	if err != nil {
		return nil, "", appErrors.Clone(appErrors.ErrNotFound, "report no longer available")
	}
	defer file.Close() //nolint:errcheck

	payload, err := io.ReadAll(file)
	if err != nil {
		return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to read report")
	}
	return payload, contentTypeForPath(relPath), nil
}

// CleanupArchived removes archived reports older than the TTL.
func (s *ReportService) CleanupArchived(ttl time.Duration) {
	if s.store == nil {
		return
	}
	deleted, err := s.store.CleanupOlderThan(ttl)
	if err != nil {
		s.logger.Warn("report cleanup failed", zap.Error(err))
		return
	}
	if len(deleted) > 0 {
		s.logger.Info("report cleanup complete", zap.Int("deleted", len(deleted)))
	}
}

func (s *ReportService) render(result *dto.OptimizeScheduleResponse, format string) ([]byte, string, error) {
	dataset := buildReportDataset(result)

	switch strings.ToLower(format) {
	case ReportFormatCSV, "":
		payload, err := s.csv.Render(dataset)
		if err != nil {
			return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render csv report")
		}
		return payload, "text/csv", nil
	case ReportFormatPDF:
		payload, err := s.pdf.Render(dataset)
		if err != nil {
			return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render pdf report")
		}
		return payload, "application/pdf", nil
	default:
		return nil, "", appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported report format %q", format))
	}
}

func contentTypeForPath(relPath string) string {
	switch path.Ext(relPath) {
	case ".pdf":
		return "application/pdf"
	default:
		return "text/csv"
	}
}

func buildReportDataset(result *dto.OptimizeScheduleResponse) export.Dataset {
	rows := make([][]string, 0, len(result.Changes))
	for _, change := range result.Changes {
		label := change.EventID
		if change.Title != "" {
			label = change.Title
		}
		rows = append(rows, []string{
			change.Action,
			label,
			change.NewStart.Format(time.RFC3339),
			strconv.Itoa(change.DurationMin),
			change.Reason,
		})
	}
	return export.Dataset{
		Title:   fmt.Sprintf("Schedule Optimization Report (%s)", result.Preset),
		Headers: []string{"Action", "Event", "New Start", "Duration (min)", "Reason"},
		Rows:    rows,
		Summary: [][2]string{
			{"Conflicts resolved", strconv.Itoa(result.Metrics.ConflictsResolved)},
			{"Breaks added", strconv.Itoa(result.Metrics.BreaksAdded)},
			{"Events moved", strconv.Itoa(result.Metrics.EventsMoved)},
			{"Balance score", fmt.Sprintf("%.0f", result.ScheduleHealth.BalanceScore)},
		},
	}
}

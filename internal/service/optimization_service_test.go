package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/studyflow/studyflow-api/internal/dto"
	"github.com/studyflow/studyflow-api/internal/models"
)

type stubEventRepo struct {
	events     []models.CalendarEvent
	listCalled bool
	updated    []models.CalendarEvent
	created    []models.CalendarEvent
}

func (s *stubEventRepo) ListRange(_ context.Context, _ string, _, _ time.Time) ([]models.CalendarEvent, error) {
	s.listCalled = true
	return s.events, nil
}

func (s *stubEventRepo) GetByID(_ context.Context, id string) (*models.CalendarEvent, error) {
	for i := range s.events {
		if s.events[i].ID == id {
			event := s.events[i]
			return &event, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (s *stubEventRepo) Create(_ context.Context, event *models.CalendarEvent) error {
	s.created = append(s.created, *event)
	return nil
}

func (s *stubEventRepo) Update(_ context.Context, event *models.CalendarEvent) error {
	s.updated = append(s.updated, *event)
	return nil
}

type stubPreferenceReader struct {
	pref *models.StudyPreference
}

func (s *stubPreferenceReader) GetByUser(_ context.Context, _ string) (*models.StudyPreference, error) {
	if s.pref == nil {
		return nil, sql.ErrNoRows
	}
	return s.pref, nil
}

func newOptimizationServiceForTest(repo *stubEventRepo, prefs *stubPreferenceReader) *OptimizationService {
	cache := NewCacheService(nil, nil, time.Minute, nil, false)
	return NewOptimizationService(repo, prefs, cache, nil, nil, nil, nil, OptimizationConfig{})
}

func conflictingCalendar() []models.CalendarEvent {
	day := time.Date(2024, 5, 6, 0, 0, 0, 0, time.UTC)
	return []models.CalendarEvent{
		{
			ID:        "a",
			UserID:    "u1",
			Title:     "Math study",
			Category:  "study",
			StartTime: day.Add(9 * time.Hour),
			EndTime:   day.Add(11 * time.Hour),
		},
		{
			ID:        "b",
			UserID:    "u1",
			Title:     "Gym",
			Category:  "fitness",
			StartTime: day.Add(10 * time.Hour),
			EndTime:   day.Add(11 * time.Hour),
		},
	}
}

func TestOptimizationServiceOptimizeStoredCalendar(t *testing.T) {
	repo := &stubEventRepo{events: conflictingCalendar()}
	svc := newOptimizationServiceForTest(repo, &stubPreferenceReader{})

	resp, err := svc.Optimize(context.Background(), "u1", dto.OptimizeScheduleRequest{})
	require.NoError(t, err)

	assert.True(t, repo.listCalled)
	assert.Equal(t, "default", resp.Preset)
	assert.NotEmpty(t, resp.Changes)
	assert.Equal(t, 1, resp.Metrics.ConflictsResolved)
	assert.False(t, resp.Cached)
}

func TestOptimizationServiceInlinePreviewSkipsRepository(t *testing.T) {
	repo := &stubEventRepo{}
	svc := newOptimizationServiceForTest(repo, &stubPreferenceReader{})

	req := dto.OptimizeScheduleRequest{
		Preset: "busy_week",
		Events: []dto.OptimizeEventInput{
			{ID: "x", Title: "History study", Category: "study", StartTime: "2024-05-06T09:00:00Z", EndTime: "2024-05-06T10:00:00Z"},
		},
	}
	resp, err := svc.Optimize(context.Background(), "u1", req)
	require.NoError(t, err)

	assert.False(t, repo.listCalled)
	assert.Equal(t, "busy_week", resp.Preset)
}

func TestOptimizationServiceStoredPreferencesFlowThrough(t *testing.T) {
	repo := &stubEventRepo{events: conflictingCalendar()}
	mode := "wellbeing"
	svc := newOptimizationServiceForTest(repo, &stubPreferenceReader{pref: &models.StudyPreference{
		UserID:       "u1",
		PriorityMode: &mode,
	}})

	resp, err := svc.Optimize(context.Background(), "u1", dto.OptimizeScheduleRequest{})
	require.NoError(t, err)
	assert.Equal(t, 1, resp.Metrics.ConflictsResolved)
}

func TestOptimizationServiceApplyChanges(t *testing.T) {
	repo := &stubEventRepo{events: conflictingCalendar()}
	svc := newOptimizationServiceForTest(repo, &stubPreferenceReader{})

	resp, applied, err := svc.ApplyChanges(context.Background(), "u1", dto.ApplyChangesRequest{})
	require.NoError(t, err)

	assert.NotEmpty(t, resp.Changes)
	assert.Equal(t, len(resp.Changes), applied)
	assert.NotEmpty(t, repo.updated)
}

func TestOptimizationServiceApplyChangesFiltersByID(t *testing.T) {
	repo := &stubEventRepo{events: conflictingCalendar()}
	svc := newOptimizationServiceForTest(repo, &stubPreferenceReader{})

	_, applied, err := svc.ApplyChanges(context.Background(), "u1", dto.ApplyChangesRequest{EventIDs: []string{"b"}})
	require.NoError(t, err)

	assert.Equal(t, 1, applied)
	require.Len(t, repo.updated, 1)
	assert.Equal(t, "b", repo.updated[0].ID)
}

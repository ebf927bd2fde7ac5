package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/studyflow/studyflow-api/internal/dto"
	"github.com/studyflow/studyflow-api/internal/models"
	"github.com/studyflow/studyflow-api/internal/optimizer"
	appErrors "github.com/studyflow/studyflow-api/pkg/errors"
)

type optimizerEventRepository interface {
	ListRange(ctx context.Context, userID string, from, to time.Time) ([]models.CalendarEvent, error)
	GetByID(ctx context.Context, id string) (*models.CalendarEvent, error)
	Create(ctx context.Context, event *models.CalendarEvent) error
	Update(ctx context.Context, event *models.CalendarEvent) error
}

type optimizerPreferenceReader interface {
	GetByUser(ctx context.Context, userID string) (*models.StudyPreference, error)
}

// OptimizationConfig tunes how the service drives the engine.
type OptimizationConfig struct {
	DefaultPreset  string
	Horizon        time.Duration
	ResultCacheTTL time.Duration
}

// OptimizationService runs the schedule optimization engine over a user's
// calendar and caches the resulting proposals.
type OptimizationService struct {
	events    optimizerEventRepository
	prefs     optimizerPreferenceReader
	cache     *CacheService
	metrics   *MetricsService
	engine    *optimizer.Engine
	validator *validator.Validate
	logger    *zap.Logger
	config    OptimizationConfig
}

// NewOptimizationService constructs the optimization service.
func NewOptimizationService(events optimizerEventRepository, prefs optimizerPreferenceReader, cache *CacheService, metrics *MetricsService, engine *optimizer.Engine, validate *validator.Validate, logger *zap.Logger, config OptimizationConfig) *OptimizationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	if engine == nil {
		engine = optimizer.New(logger)
	}
	if config.DefaultPreset == "" {
		config.DefaultPreset = optimizer.PresetDefault
	}
	if config.Horizon <= 0 {
		config.Horizon = 14 * 24 * time.Hour
	}
	return &OptimizationService{
		events:    events,
		prefs:     prefs,
		cache:     cache,
		metrics:   metrics,
		engine:    engine,
		validator: validate,
		logger:    logger,
		config:    config,
	}
}

// Optimize produces a change proposal for the user's calendar. Inline events
// bypass persistence and the cache, which lets clients preview alternatives.
func (s *OptimizationService) Optimize(ctx context.Context, userID string, req dto.OptimizeScheduleRequest) (*dto.OptimizeScheduleResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid optimize payload")
	}

	preset := req.Preset
	if preset == "" {
		preset = s.config.DefaultPreset
	}

	preview := len(req.Events) > 0
	cacheKey := s.cache.ResultKey(userID, preset)
	if !preview && req.Preferences == nil {
		var cached dto.OptimizeScheduleResponse
		if hit, _ := s.cache.Get(ctx, cacheKey, &cached); hit {
			cached.Cached = true
			return &cached, nil
		}
	}

	rawEvents, err := s.collectEvents(ctx, userID, req.Events)
	if err != nil {
		return nil, err
	}

	prefs, err := s.resolvePreferences(ctx, userID, req.Preferences)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	result := s.engine.Optimize(rawEvents, prefs, preset)
	elapsed := time.Since(start)
	if s.metrics != nil {
		s.metrics.ObserveOptimizationRun(preset, len(result.Changes), elapsed)
	}

	s.logger.Info("optimization run complete",
		zap.String("user_id", userID),
		zap.String("preset", preset),
		zap.Int("events", len(rawEvents)),
		zap.Int("changes", len(result.Changes)),
		zap.Duration("elapsed", elapsed),
	)

	resp := &dto.OptimizeScheduleResponse{
		Preset:         preset,
		Changes:        result.Changes,
		Metrics:        result.Metrics,
		ScheduleHealth: result.Health,
		Insights:       result.Insights,
	}

	if !preview && req.Preferences == nil {
		if err := s.cache.Set(ctx, cacheKey, resp, s.config.ResultCacheTTL); err != nil {
			s.logger.Warn("failed to cache optimization result", zap.Error(err))
		}
	}

	return resp, nil
}

// ApplyChanges runs the engine over the stored calendar and persists the
// proposed changes. An explicit id list restricts which proposals are applied.
func (s *OptimizationService) ApplyChanges(ctx context.Context, userID string, req dto.ApplyChangesRequest) (*dto.OptimizeScheduleResponse, int, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, 0, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid apply payload")
	}

	resp, err := s.Optimize(ctx, userID, dto.OptimizeScheduleRequest{Preset: req.Preset})
	if err != nil {
		return nil, 0, err
	}

	wanted := make(map[string]bool, len(req.EventIDs))
	for _, id := range req.EventIDs {
		wanted[id] = true
	}

	applied := 0
	for _, change := range resp.Changes {
		if len(wanted) > 0 && !wanted[change.EventID] && !wanted[change.ParentID] {
			continue
		}
		if err := s.applyChange(ctx, userID, change); err != nil {
			s.logger.Warn("failed to apply change",
				zap.String("event_id", change.EventID),
				zap.String("action", change.Action),
				zap.Error(err),
			)
			continue
		}
		applied++
	}

	if applied > 0 {
		if err := s.cache.InvalidateUser(ctx, userID); err != nil {
			s.logger.Warn("failed to invalidate optimization cache", zap.Error(err))
		}
	}

	return resp, applied, nil
}

func (s *OptimizationService) applyChange(ctx context.Context, userID string, change optimizer.Change) error {
	duration := time.Duration(change.DurationMin) * time.Minute

	switch change.Action {
	case optimizer.ActionMove:
		event, err := s.events.GetByID(ctx, change.EventID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return appErrors.Clone(appErrors.ErrNotFound, "event no longer exists")
			}
			return err
		}
		if event.UserID != userID {
			return appErrors.Clone(appErrors.ErrForbidden, "event belongs to another user")
		}
		event.StartTime = change.NewStart
		event.EndTime = change.NewStart.Add(duration)
		return s.events.Update(ctx, event)
	case optimizer.ActionCreate:
		event := &models.CalendarEvent{
			UserID:    userID,
			Title:     change.Title,
			Category:  categoryForChange(change),
			StartTime: change.NewStart,
			EndTime:   change.NewStart.Add(duration),
		}
		return s.events.Create(ctx, event)
	default:
		return fmt.Errorf("unknown change action %q", change.Action)
	}
}

func categoryForChange(change optimizer.Change) string {
	if change.ParentID != "" {
		return "study"
	}
	return "break"
}

func (s *OptimizationService) collectEvents(ctx context.Context, userID string, inline []dto.OptimizeEventInput) ([]optimizer.RawEvent, error) {
	if len(inline) > 0 {
		raw := make([]optimizer.RawEvent, 0, len(inline))
		for _, in := range inline {
			raw = append(raw, optimizer.RawEvent{
				ID:          in.ID,
				Title:       in.Title,
				Description: in.Description,
				Category:    in.Category,
				Start:       in.StartTime,
				End:         in.EndTime,
				IsImmovable: in.IsImmovable,
			})
		}
		return raw, nil
	}

	from := time.Now().UTC().Truncate(24 * time.Hour)
	to := from.Add(s.config.Horizon)
	events, err := s.events.ListRange(ctx, userID, from, to)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load calendar events")
	}

	raw := make([]optimizer.RawEvent, 0, len(events))
	for _, event := range events {
		raw = append(raw, optimizer.RawEvent{
			ID:          event.ID,
			Title:       event.Title,
			Description: event.Description,
			Category:    event.Category,
			Start:       event.StartTime.Format(time.RFC3339),
			End:         event.EndTime.Format(time.RFC3339),
			IsImmovable: event.IsImmovable,
		})
	}
	return raw, nil
}

func (s *OptimizationService) resolvePreferences(ctx context.Context, userID string, override *dto.OptimizePreferences) (*optimizer.Preferences, error) {
	if override != nil {
		return &optimizer.Preferences{
			BreakDuration:  override.BreakDuration,
			SessionLength:  override.SessionLength,
			FocusStartTime: override.FocusStartTime,
			FocusEndTime:   override.FocusEndTime,
			PriorityMode:   override.PriorityMode,
		}, nil
	}

	if s.prefs == nil {
		return nil, nil
	}

	stored, err := s.prefs.GetByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load study preferences")
	}

	prefs := &optimizer.Preferences{}
	if stored.BreakDuration != nil {
		prefs.BreakDuration = *stored.BreakDuration
	}
	if stored.SessionLength != nil {
		prefs.SessionLength = *stored.SessionLength
	}
	if stored.FocusStartTime != nil {
		prefs.FocusStartTime = *stored.FocusStartTime
	}
	if stored.FocusEndTime != nil {
		prefs.FocusEndTime = *stored.FocusEndTime
	}
	if stored.PriorityMode != nil {
		prefs.PriorityMode = *stored.PriorityMode
	}
	return prefs, nil
}


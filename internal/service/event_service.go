package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/studyflow/studyflow-api/internal/dto"
	"github.com/studyflow/studyflow-api/internal/models"
	appErrors "github.com/studyflow/studyflow-api/pkg/errors"
	"github.com/studyflow/studyflow-api/pkg/jobs"
)

// JobTypeCacheWarmup re-runs the optimizer after a calendar mutation so the
// next optimize request hits a fresh cache entry.
const JobTypeCacheWarmup = "optimizer_cache_warmup"

// WarmupPayload identifies the calendar to warm.
type WarmupPayload struct {
	UserID string
	Preset string
}

type eventRepository interface {
	List(ctx context.Context, filter models.EventFilter) ([]models.CalendarEvent, int, error)
	GetByID(ctx context.Context, id string) (*models.CalendarEvent, error)
	Create(ctx context.Context, event *models.CalendarEvent) error
	Update(ctx context.Context, event *models.CalendarEvent) error
	Delete(ctx context.Context, userID, id string) error
}

// EventService manages a user's calendar events.
type EventService struct {
	repo      eventRepository
	cache     *CacheService
	warmup    *jobs.Queue
	validator *validator.Validate
	logger    *zap.Logger
}

// NewEventService constructs an EventService.
func NewEventService(repo eventRepository, cache *CacheService, warmup *jobs.Queue, validate *validator.Validate, logger *zap.Logger) *EventService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &EventService{repo: repo, cache: cache, warmup: warmup, validator: validate, logger: logger}
}

// List returns the user's events with pagination metadata.
func (s *EventService) List(ctx context.Context, userID string, query dto.EventListQuery) ([]models.CalendarEvent, *models.Pagination, error) {
	filter := models.EventFilter{
		UserID:   userID,
		From:     query.From,
		To:       query.To,
		Category: query.Category,
		Page:     query.Page,
		PageSize: query.PageSize,
	}
	events, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list events")
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 200 {
		size = 50
	}
	return events, &models.Pagination{Page: page, PageSize: size, TotalCount: total}, nil
}

// Get returns a single event owned by the user.
func (s *EventService) Get(ctx context.Context, userID, id string) (*models.CalendarEvent, error) {
	event, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "event not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load event")
	}
	if event.UserID != userID {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "event not found")
	}
	return event, nil
}

// Create adds an event to the user's calendar.
func (s *EventService) Create(ctx context.Context, userID string, req dto.CreateEventRequest) (*models.CalendarEvent, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid event payload")
	}

	event := &models.CalendarEvent{
		UserID:      userID,
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
		StartTime:   req.StartTime,
		EndTime:     req.EndTime,
		IsImmovable: req.IsImmovable,
	}
	if err := s.repo.Create(ctx, event); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create event")
	}

	s.afterMutation(ctx, userID)
	return event, nil
}

// Update applies partial changes to an event.
func (s *EventService) Update(ctx context.Context, userID, id string, req dto.UpdateEventRequest) (*models.CalendarEvent, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid event payload")
	}

	event, err := s.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		event.Title = *req.Title
	}
	if req.Description != nil {
		event.Description = *req.Description
	}
	if req.Category != nil {
		event.Category = *req.Category
	}
	if req.StartTime != nil {
		event.StartTime = *req.StartTime
	}
	if req.EndTime != nil {
		event.EndTime = *req.EndTime
	}
	if req.IsImmovable != nil {
		event.IsImmovable = *req.IsImmovable
	}
	if !event.EndTime.After(event.StartTime) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "event must end after it starts")
	}

	if err := s.repo.Update(ctx, event); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update event")
	}

	s.afterMutation(ctx, userID)
	return event, nil
}

// Delete removes an event from the user's calendar.
func (s *EventService) Delete(ctx context.Context, userID, id string) error {
	if _, err := s.Get(ctx, userID, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, userID, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete event")
	}

	s.afterMutation(ctx, userID)
	return nil
}

// afterMutation drops stale optimization results and queues a cache warmup.
func (s *EventService) afterMutation(ctx context.Context, userID string) {
	if err := s.cache.InvalidateUser(ctx, userID); err != nil {
		s.logger.Warn("failed to invalidate optimization cache", zap.String("user_id", userID), zap.Error(err))
	}
	if s.warmup == nil {
		return
	}
	job := jobs.Job{
		ID:      uuid.NewString(),
		Type:    JobTypeCacheWarmup,
		Payload: WarmupPayload{UserID: userID},
	}
	if err := s.warmup.Enqueue(job); err != nil {
		s.logger.Warn("failed to enqueue cache warmup", zap.String("user_id", userID), zap.Error(err))
	}
}

package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/studyflow/studyflow-api/internal/dto"
	"github.com/studyflow/studyflow-api/internal/models"
	appErrors "github.com/studyflow/studyflow-api/pkg/errors"
)

type preferenceRepository interface {
	GetByUser(ctx context.Context, userID string) (*models.StudyPreference, error)
	Upsert(ctx context.Context, pref *models.StudyPreference) error
	Delete(ctx context.Context, userID string) error
}

// PreferenceService manages study preferences.
type PreferenceService struct {
	repo      preferenceRepository
	cache     *CacheService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewPreferenceService constructs a PreferenceService.
func NewPreferenceService(repo preferenceRepository, cache *CacheService, validate *validator.Validate, logger *zap.Logger) *PreferenceService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &PreferenceService{repo: repo, cache: cache, validator: validate, logger: logger}
}

// Get returns the caller's study preferences. Missing preferences are not an
// error; an empty record is returned instead.
func (s *PreferenceService) Get(ctx context.Context, userID string) (*models.StudyPreference, error) {
	pref, err := s.repo.GetByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return &models.StudyPreference{UserID: userID}, nil
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load preferences")
	}
	return pref, nil
}

// Update upserts the caller's study preferences.
func (s *PreferenceService) Update(ctx context.Context, userID string, req dto.UpdatePreferencesRequest) (*models.StudyPreference, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid preferences payload")
	}

	pref, err := s.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	if req.BreakDuration != nil {
		pref.BreakDuration = req.BreakDuration
	}
	if req.SessionLength != nil {
		pref.SessionLength = req.SessionLength
	}
	if req.FocusStartTime != nil {
		pref.FocusStartTime = req.FocusStartTime
	}
	if req.FocusEndTime != nil {
		pref.FocusEndTime = req.FocusEndTime
	}
	if req.PriorityMode != nil {
		pref.PriorityMode = req.PriorityMode
	}
	pref.UserID = userID

	if err := s.repo.Upsert(ctx, pref); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save preferences")
	}

	if err := s.cache.InvalidateUser(ctx, userID); err != nil {
		s.logger.Warn("failed to invalidate optimization cache", zap.String("user_id", userID), zap.Error(err))
	}

	return pref, nil
}

// Reset removes the caller's study preferences.
func (s *PreferenceService) Reset(ctx context.Context, userID string) error {
	if err := s.repo.Delete(ctx, userID); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to reset preferences")
	}
	if err := s.cache.InvalidateUser(ctx, userID); err != nil {
		s.logger.Warn("failed to invalidate optimization cache", zap.String("user_id", userID), zap.Error(err))
	}
	return nil
}

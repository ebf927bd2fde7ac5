package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/studyflow/studyflow-api/internal/models"
)

// PreferenceRepository persists study preferences.
type PreferenceRepository struct {
	db *sqlx.DB
}

// NewPreferenceRepository constructs a preference repository.
func NewPreferenceRepository(db *sqlx.DB) *PreferenceRepository {
	return &PreferenceRepository{db: db}
}

// GetByUser fetches the user's preferences, if any.
func (r *PreferenceRepository) GetByUser(ctx context.Context, userID string) (*models.StudyPreference, error) {
	const query = `SELECT id, user_id, break_duration, session_length, focus_start_time, focus_end_time, priority_mode, created_at, updated_at
FROM study_preferences WHERE user_id = $1`
	var pref models.StudyPreference
	if err := r.db.GetContext(ctx, &pref, query, userID); err != nil {
		return nil, err
	}
	return &pref, nil
}

// Upsert writes the preference row keyed by user.
func (r *PreferenceRepository) Upsert(ctx context.Context, pref *models.StudyPreference) error {
	if pref.ID == "" {
		pref.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if pref.CreatedAt.IsZero() {
		pref.CreatedAt = now
	}
	pref.UpdatedAt = now
	query := `INSERT INTO study_preferences (id, user_id, break_duration, session_length, focus_start_time, focus_end_time, priority_mode, created_at, updated_at)
VALUES (:id, :user_id, :break_duration, :session_length, :focus_start_time, :focus_end_time, :priority_mode, :created_at, :updated_at)
ON CONFLICT (user_id) DO UPDATE SET break_duration = EXCLUDED.break_duration, session_length = EXCLUDED.session_length,
focus_start_time = EXCLUDED.focus_start_time, focus_end_time = EXCLUDED.focus_end_time,
priority_mode = EXCLUDED.priority_mode, updated_at = EXCLUDED.updated_at`
	if _, err := r.db.NamedExecContext(ctx, query, pref); err != nil {
		return fmt.Errorf("upsert study preference: %w", err)
	}
	return nil
}

// Delete removes the user's preferences.
func (r *PreferenceRepository) Delete(ctx context.Context, userID string) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM study_preferences WHERE user_id = $1", userID); err != nil {
		return fmt.Errorf("delete study preference: %w", err)
	}
	return nil
}

package models

import "time"

// StudyPreference stores a user's scheduling preferences applied on top of
// the optimization presets.
type StudyPreference struct {
	ID             string    `db:"id" json:"id"`
	UserID         string    `db:"user_id" json:"user_id"`
	BreakDuration  *int      `db:"break_duration" json:"break_duration,omitempty"`
	SessionLength  *int      `db:"session_length" json:"session_length,omitempty"`
	FocusStartTime *string   `db:"focus_start_time" json:"focus_start_time,omitempty"`
	FocusEndTime   *string   `db:"focus_end_time" json:"focus_end_time,omitempty"`
	PriorityMode   *string   `db:"priority_mode" json:"priority_mode,omitempty"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time `db:"updated_at" json:"updated_at"`
}

package dto

import "github.com/studyflow/studyflow-api/internal/optimizer"

// OptimizePreferences carries the per-request overrides applied on top of a preset.
type OptimizePreferences struct {
	BreakDuration  int    `json:"breakDuration" validate:"omitempty,min=5,max=120"`
	SessionLength  int    `json:"sessionLength" validate:"omitempty,min=15,max=240"`
	FocusStartTime string `json:"focusStartTime" validate:"omitempty,len=5"`
	FocusEndTime   string `json:"focusEndTime" validate:"omitempty,len=5"`
	PriorityMode   string `json:"priorityMode" validate:"omitempty,oneof=focus balance wellbeing"`
}

// OptimizeEventInput is an inline event supplied for preview optimizations.
type OptimizeEventInput struct {
	ID          string `json:"id" validate:"required"`
	Title       string `json:"title" validate:"required"`
	Description string `json:"description"`
	Category    string `json:"category"`
	StartTime   string `json:"startTime" validate:"required"`
	EndTime     string `json:"endTime"`
	IsImmovable bool   `json:"isImmovable"`
}

// OptimizeScheduleRequest asks the engine to produce a change proposal.
// When Events is empty the caller's stored calendar is optimized instead.
type OptimizeScheduleRequest struct {
	Preset      string               `json:"preset" validate:"omitempty,oneof=default busy_week conflicts optimized"`
	Events      []OptimizeEventInput `json:"events" validate:"omitempty,dive"`
	Preferences *OptimizePreferences `json:"preferences" validate:"omitempty"`
}

// OptimizeScheduleResponse returns the proposed changes with run diagnostics.
type OptimizeScheduleResponse struct {
	Preset         string                   `json:"preset"`
	Changes        []optimizer.Change       `json:"changes"`
	Metrics        optimizer.Metrics        `json:"metrics"`
	ScheduleHealth optimizer.ScheduleHealth `json:"scheduleHealth"`
	Insights       []string                 `json:"insights"`
	Cached         bool                     `json:"cached"`
}

package dto

import "time"

// CreateEventRequest adds a calendar event for the authenticated user.
type CreateEventRequest struct {
	Title       string    `json:"title" validate:"required,max=200"`
	Description string    `json:"description" validate:"max=2000"`
	Category    string    `json:"category" validate:"max=50"`
	StartTime   time.Time `json:"startTime" validate:"required"`
	EndTime     time.Time `json:"endTime" validate:"required,gtfield=StartTime"`
	IsImmovable bool      `json:"isImmovable"`
}

// UpdateEventRequest mutates an existing event. Nil fields are left unchanged.
type UpdateEventRequest struct {
	Title       *string    `json:"title" validate:"omitempty,max=200"`
	Description *string    `json:"description" validate:"omitempty,max=2000"`
	Category    *string    `json:"category" validate:"omitempty,max=50"`
	StartTime   *time.Time `json:"startTime"`
	EndTime     *time.Time `json:"endTime"`
	IsImmovable *bool      `json:"isImmovable"`
}

// EventListQuery filters the calendar listing.
type EventListQuery struct {
	From     *time.Time `form:"from" time_format:"2006-01-02"`
	To       *time.Time `form:"to" time_format:"2006-01-02"`
	Category string     `form:"category"`
	Page     int        `form:"page"`
	PageSize int        `form:"pageSize"`
}

// ApplyChangesRequest persists a subset of proposed optimization changes.
type ApplyChangesRequest struct {
	Preset   string   `json:"preset" validate:"omitempty,oneof=default busy_week conflicts optimized"`
	EventIDs []string `json:"eventIds" validate:"omitempty,dive,required"`
}

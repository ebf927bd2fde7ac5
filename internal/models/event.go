package models

import "time"

// CalendarEvent represents a scheduled entry on a user's calendar.
type CalendarEvent struct {
	ID          string    `db:"id" json:"id"`
	UserID      string    `db:"user_id" json:"user_id"`
	Title       string    `db:"title" json:"title"`
	Description string    `db:"description" json:"description"`
	Category    string    `db:"category" json:"category"`
	StartTime   time.Time `db:"start_time" json:"start_time"`
	EndTime     time.Time `db:"end_time" json:"end_time"`
	IsImmovable bool      `db:"is_immovable" json:"is_immovable"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// EventFilter narrows down calendar events.
type EventFilter struct {
	UserID    string
	From      *time.Time
	To        *time.Time
	Category  string
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}

package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/studyflow/studyflow-api/internal/models"
)

// EventRepository persists calendar events.
type EventRepository struct {
	db *sqlx.DB
}

// NewEventRepository constructs an event repository.
func NewEventRepository(db *sqlx.DB) *EventRepository {
	return &EventRepository{db: db}
}

// List returns calendar events matching filters.
func (r *EventRepository) List(ctx context.Context, filter models.EventFilter) ([]models.CalendarEvent, int, error) {
	base := "FROM calendar_events"
	where := []string{"user_id = $1"}
	args := []interface{}{filter.UserID}
	if filter.From != nil {
		where = append(where, fmt.Sprintf("end_time >= $%d", len(args)+1))
		args = append(args, *filter.From)
	}
	if filter.To != nil {
		where = append(where, fmt.Sprintf("start_time <= $%d", len(args)+1))
		args = append(args, *filter.To)
	}
	if filter.Category != "" {
		where = append(where, fmt.Sprintf("category = $%d", len(args)+1))
		args = append(args, filter.Category)
	}
	whereClause := strings.Join(where, " AND ")

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 200 {
		size = 50
	}
	offset := (page - 1) * size

	query := fmt.Sprintf(`SELECT id, user_id, title, description, category, start_time, end_time, is_immovable, created_at, updated_at
%s WHERE %s ORDER BY start_time ASC LIMIT %d OFFSET %d`, base, whereClause, size, offset)
	var events []models.CalendarEvent
	if err := r.db.SelectContext(ctx, &events, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list events: %w", err)
	}
	countQuery := fmt.Sprintf("SELECT COUNT(*) %s WHERE %s", base, whereClause)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count events: %w", err)
	}
	return events, total, nil
}

// ListRange returns every event for the user whose span intersects [from, to).
// Used by the optimizer to load the working set without pagination.
func (r *EventRepository) ListRange(ctx context.Context, userID string, from, to time.Time) ([]models.CalendarEvent, error) {
	const query = `SELECT id, user_id, title, description, category, start_time, end_time, is_immovable, created_at, updated_at
FROM calendar_events WHERE user_id = $1 AND end_time >= $2 AND start_time < $3 ORDER BY start_time ASC`
	var events []models.CalendarEvent
	if err := r.db.SelectContext(ctx, &events, query, userID, from, to); err != nil {
		return nil, fmt.Errorf("list events in range: %w", err)
	}
	return events, nil
}

// GetByID fetches a single event.
func (r *EventRepository) GetByID(ctx context.Context, id string) (*models.CalendarEvent, error) {
	const query = `SELECT id, user_id, title, description, category, start_time, end_time, is_immovable, created_at, updated_at
FROM calendar_events WHERE id = $1`
	var event models.CalendarEvent
	if err := r.db.GetContext(ctx, &event, query, id); err != nil {
		return nil, err
	}
	return &event, nil
}

// Create inserts a calendar event.
func (r *EventRepository) Create(ctx context.Context, event *models.CalendarEvent) error {
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if event.CreatedAt.IsZero() {
		event.CreatedAt = now
	}
	event.UpdatedAt = now
	query := `INSERT INTO calendar_events (id, user_id, title, description, category, start_time, end_time, is_immovable, created_at, updated_at)
VALUES (:id, :user_id, :title, :description, :category, :start_time, :end_time, :is_immovable, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, event); err != nil {
		return fmt.Errorf("create event: %w", err)
	}
	return nil
}

// Update modifies an event.
func (r *EventRepository) Update(ctx context.Context, event *models.CalendarEvent) error {
	event.UpdatedAt = time.Now().UTC()
	query := `UPDATE calendar_events SET title = :title, description = :description, category = :category,
start_time = :start_time, end_time = :end_time, is_immovable = :is_immovable, updated_at = :updated_at
WHERE id = :id AND user_id = :user_id`
	if _, err := r.db.NamedExecContext(ctx, query, event); err != nil {
		return fmt.Errorf("update event: %w", err)
	}
	return nil
}

// Delete removes an event owned by the user.
func (r *EventRepository) Delete(ctx context.Context, userID, id string) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM calendar_events WHERE id = $1 AND user_id = $2", id, userID); err != nil {
		return fmt.Errorf("delete event: %w", err)
	}
	return nil
}

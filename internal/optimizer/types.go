package optimizer

import "time"

// Change actions.
const (
	ActionMove   = "move"
	ActionCreate = "create"
)

// NewEventID is the sentinel event id used by create changes.
const NewEventID = "new"

// RawEvent is a calendar entry as supplied by the caller. Timestamps are
// kept as strings so the engine can tolerate and skip unparsable input.
type RawEvent struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Category    string `json:"category,omitempty"`
	Start       string `json:"start"`
	End         string `json:"end,omitempty"`
	IsImmovable bool   `json:"is_immovable,omitempty"`
}

// Preferences carries user overrides for the resolved parameter set.
// Zero values mean "not set" and fall back to preset/default values.
type Preferences struct {
	BreakDuration  int    `json:"break_duration,omitempty"`
	SessionLength  int    `json:"session_length,omitempty"`
	FocusStartTime string `json:"focus_start_time,omitempty"`
	FocusEndTime   string `json:"focus_end_time,omitempty"`
	PriorityMode   string `json:"priority_mode,omitempty"`
}

// Animation is cosmetic pairing metadata attached to cross-day moves.
// The engine never interprets it; it rides along for UI feedback.
type Animation struct {
	PairID     string `json:"pair_id"`
	FromDate   string `json:"from_date"`
	ToDate     string `json:"to_date"`
	Style      string `json:"style"`
	DurationMS int    `json:"duration_ms"`
	Color      string `json:"color"`
}

// Change is one proposed schedule edit. Applying it is the caller's job.
type Change struct {
	Action      string     `json:"action"`
	EventID     string     `json:"event_id"`
	ParentID    string     `json:"parent_id,omitempty"`
	Title       string     `json:"title,omitempty"`
	NewStart    time.Time  `json:"new_start"`
	DurationMin int        `json:"duration_minutes"`
	Reason      string     `json:"reason"`
	Animation   *Animation `json:"animation,omitempty"`
}

// Metrics accumulates counters across every pass of one run.
type Metrics struct {
	ConflictsResolved int `json:"conflicts_resolved"`
	BreaksAdded       int `json:"breaks_added"`
	EventsMoved       int `json:"events_moved"`
	EventsSplit       int `json:"events_split"`
	EventsShortened   int `json:"events_shortened"`
	PairedMoves       int `json:"paired_moves"`
}

// ScheduleHealth summarises how well-optimized the schedule ended up.
// Every field stays within [0,100].
type ScheduleHealth struct {
	FocusUtilization float64 `json:"focus_utilization"`
	BreakCompliance  float64 `json:"break_compliance"`
	ConflictScore    float64 `json:"conflict_score"`
	BalanceScore     float64 `json:"balance_score"`
}

// Result is the complete output of one optimization run.
type Result struct {
	Changes  []Change       `json:"changes"`
	Metrics  Metrics        `json:"metrics"`
	Health   ScheduleHealth `json:"schedule_health"`
	Insights []string       `json:"insights"`
}

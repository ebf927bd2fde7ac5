package optimizer

import (
	"go.uber.org/zap"
)

// Engine runs the heuristic optimization pipeline. It is stateless across
// invocations; every run builds its working set from scratch and discards
// it once the result is returned.
type Engine struct {
	logger *zap.Logger
}

// New constructs an engine.
func New(logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{logger: logger}
}

// run holds the in-memory state of one optimization pass.
type run struct {
	params   Params
	preset   string
	buckets  map[string][]*processedEvent
	analysis map[string]*dayAnalysis
	load     map[string]float64 // date -> scheduled hours
	total    int
	changes  []Change
	metrics  Metrics
	moved    map[string]bool // event ids already relocated cross-day
	pairSeq  int
}

// Optimize executes the full pipeline for one batch of events and returns
// the accumulated change list plus derived metrics, health and insights.
func (e *Engine) Optimize(events []RawEvent, prefs *Preferences, preset string) *Result {
	switch preset {
	case PresetBusyWeek, PresetConflicts, PresetOptimized, PresetDefault:
	default:
		preset = PresetDefault
	}

	r := &run{
		params:   ResolveParams(preset, prefs),
		preset:   preset,
		buckets:  make(map[string][]*processedEvent),
		analysis: make(map[string]*dayAnalysis),
		load:     make(map[string]float64),
		changes:  make([]Change, 0),
		moved:    make(map[string]bool),
	}

	r.ingest(events)
	dates := r.sortedDates()
	for _, date := range dates {
		r.analysis[date] = r.analyze(date)
	}

	for _, date := range dates {
		r.dispatch(date)
		r.insertBreaks(date)
	}
	r.balanceWorkload()

	health := computeHealth(r.metrics, r.load, r.total, r.params)
	result := &Result{
		Changes:  r.changes,
		Metrics:  r.metrics,
		Health:   health,
		Insights: buildInsights(r.preset, r.metrics, health, r.outsideHoursCount()),
	}

	e.logger.Debug("optimization run complete",
		zap.String("preset", preset),
		zap.Int("events", r.total),
		zap.Int("changes", len(result.Changes)),
	)
	return result
}

// dispatch applies the preset's strategy combination to one date.
func (r *run) dispatch(date string) {
	switch r.preset {
	case PresetBusyWeek:
		r.resolveConflicts(date)
		r.compactGaps(date)
		if r.load[date] > busyDayTriggerHours {
			r.balanceDate(date)
		}
	case PresetConflicts:
		r.resolveConflicts(date)
	case PresetOptimized:
		r.resolveConflicts(date)
		r.optimizeSpacing(date)
	default:
		r.resolveConflicts(date)
		r.splitOversized(date)
	}
}

func (r *run) outsideHoursCount() int {
	count := 0
	for _, analysis := range r.analysis {
		count += len(analysis.outsideHours)
	}
	return count
}

func (r *run) addChange(c Change) {
	r.changes = append(r.changes, c)
}

// findEvent locates an ingested event by id regardless of which date bucket
// holds it.
func (r *run) findEvent(id string) *processedEvent {
	for _, bucket := range r.buckets {
		for _, ev := range bucket {
			if ev.id == id {
				return ev
			}
		}
	}
	return nil
}

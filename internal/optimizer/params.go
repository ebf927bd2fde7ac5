package optimizer

// Presets select an optimization mood; unknown names fall back to default.
const (
	PresetDefault   = "default"
	PresetBusyWeek  = "busy_week"
	PresetConflicts = "conflicts"
	PresetOptimized = "optimized"
)

// Priority modes further tune break frequency and block length.
const (
	ModeFocus     = "focus"
	ModeBalance   = "balance"
	ModeWellbeing = "wellbeing"
)

// Params is the effective parameter set for one run. It is built fresh by
// ResolveParams per invocation and never mutated afterwards.
type Params struct {
	MinBreakMin      int
	MaxConsecutive   int
	IdealFocusMin    int
	SpacingBufferMin int
	DayStart         string
	DayEnd           string
	PriorityMode     string

	// Second-valued mirrors of the minute parameters, used by all time
	// arithmetic inside the passes.
	MinBreakSec      int
	IdealFocusSec    int
	SpacingBufferSec int
}

func defaultParams() Params {
	return Params{
		MinBreakMin:      15,
		MaxConsecutive:   4,
		IdealFocusMin:    60,
		SpacingBufferMin: 15,
		DayStart:         "08:00",
		DayEnd:           "20:00",
		PriorityMode:     ModeBalance,
	}
}

func applyPreset(p *Params, preset string) {
	switch preset {
	case PresetBusyWeek:
		p.SpacingBufferMin = 10
		p.MaxConsecutive = 5
		p.IdealFocusMin = 45
	case PresetConflicts:
		p.SpacingBufferMin = 20
	case PresetOptimized:
		p.SpacingBufferMin = 20
		p.MinBreakMin = 20
	}
}

func applyPreferences(p *Params, prefs *Preferences) {
	if prefs == nil {
		return
	}
	if prefs.BreakDuration > 0 {
		p.MinBreakMin = prefs.BreakDuration
	}
	if prefs.SessionLength > 0 {
		p.IdealFocusMin = prefs.SessionLength
	}
	if prefs.FocusStartTime != "" {
		p.DayStart = prefs.FocusStartTime
	}
	if prefs.FocusEndTime != "" {
		p.DayEnd = prefs.FocusEndTime
	}
	switch prefs.PriorityMode {
	case ModeFocus, ModeBalance, ModeWellbeing:
		p.PriorityMode = prefs.PriorityMode
	}
}

func applyPriorityMode(p *Params) {
	switch p.PriorityMode {
	case ModeFocus:
		if p.IdealFocusMin < 90 {
			p.IdealFocusMin = 90
		}
		p.MaxConsecutive++
	case ModeWellbeing:
		if p.MinBreakMin < 20 {
			p.MinBreakMin = 20
		}
		if p.MaxConsecutive > 2 {
			p.MaxConsecutive = 2
		}
	}
}

// ResolveParams merges built-in defaults, preset overrides and user
// preference overrides, in that order of precedence. Minute parameters are
// additionally materialized in seconds.
func ResolveParams(preset string, prefs *Preferences) Params {
	p := defaultParams()
	applyPreset(&p, preset)
	applyPreferences(&p, prefs)
	applyPriorityMode(&p)

	p.MinBreakSec = p.MinBreakMin * 60
	p.IdealFocusSec = p.IdealFocusMin * 60
	p.SpacingBufferSec = p.SpacingBufferMin * 60
	return p
}

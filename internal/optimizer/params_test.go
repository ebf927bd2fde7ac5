package optimizer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolveParamsDefaults(t *testing.T) {
	p := ResolveParams(PresetDefault, nil)

	assert.Equal(t, 15, p.MinBreakMin)
	assert.Equal(t, 60, p.IdealFocusMin)
	assert.Equal(t, 15, p.SpacingBufferMin)
	assert.Equal(t, 4, p.MaxConsecutive)
	assert.Equal(t, ModeBalance, p.PriorityMode)
	assert.Equal(t, 900, p.MinBreakSec)
	assert.Equal(t, 3600, p.IdealFocusSec)
	assert.Equal(t, 900, p.SpacingBufferSec)
}

func TestResolveParamsUnknownPresetFallsBack(t *testing.T) {
	assert.Equal(t, ResolveParams(PresetDefault, nil), ResolveParams("zen_garden", nil))
}

func TestResolveParamsPreferenceOverridesPreset(t *testing.T) {
	p := ResolveParams(PresetOptimized, &Preferences{
		BreakDuration:  10,
		SessionLength:  50,
		FocusStartTime: "09:30",
		FocusEndTime:   "18:00",
	})

	// Preset sets MinBreak to 20; the user override wins.
	assert.Equal(t, 10, p.MinBreakMin)
	assert.Equal(t, 50, p.IdealFocusMin)
	assert.Equal(t, "09:30", p.DayStart)
	assert.Equal(t, "18:00", p.DayEnd)
	assert.Equal(t, 20, p.SpacingBufferMin)
	assert.Equal(t, 600, p.MinBreakSec)
}

func TestResolveParamsPriorityModes(t *testing.T) {
	focus := ResolveParams(PresetDefault, &Preferences{PriorityMode: ModeFocus})
	assert.Equal(t, 90, focus.IdealFocusMin)
	assert.Equal(t, 5, focus.MaxConsecutive)

	wellbeing := ResolveParams(PresetDefault, &Preferences{PriorityMode: ModeWellbeing})
	assert.Equal(t, 20, wellbeing.MinBreakMin)
	assert.Equal(t, 2, wellbeing.MaxConsecutive)

	unknown := ResolveParams(PresetDefault, &Preferences{PriorityMode: "turbo"})
	assert.Equal(t, ModeBalance, unknown.PriorityMode)
}

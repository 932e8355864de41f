package domain

// Step is the wizard position of a session.
type Step string

const (
	StepQuickContext    Step = "QUICK_CONTEXT"
	StepGoalInput       Step = "GOAL_INPUT"
	StepDiscovery       Step = "DISCOVERY"
	StepArchetypeResult Step = "ARCHETYPE_RESULT"
	StepInterview       Step = "INTERVIEW"
	StepPillarSelection Step = "PILLAR_SELECTION"
	StepActionSelection Step = "ACTION_SELECTION"
	StepGenerating      Step = "GENERATING"
	StepResult          Step = "RESULT"
)

// Steps lists every step in wizard order.
var Steps = []Step{
	StepQuickContext,
	StepGoalInput,
	StepDiscovery,
	StepArchetypeResult,
	StepInterview,
	StepPillarSelection,
	StepActionSelection,
	StepGenerating,
	StepResult,
}

// ValidStep reports whether s is a known step.
func ValidStep(s Step) bool {
	for _, known := range Steps {
		if s == known {
			return true
		}
	}
	return false
}

// Archetype is the high-level classification of a goal.
type Archetype string

const (
	ArchetypeBusiness Archetype = "BUSINESS"
	ArchetypeGrowth   Archetype = "GROWTH"
	ArchetypeRelation Archetype = "RELATION"
	ArchetypeRoutine  Archetype = "ROUTINE"
)

// ValidArchetypes is the canonical set of accepted archetypes.
var ValidArchetypes = map[Archetype]bool{
	ArchetypeBusiness: true,
	ArchetypeGrowth:   true,
	ArchetypeRelation: true,
	ArchetypeRoutine:  true,
}

// Locale selects the language of prompts and rendered labels.
type Locale string

const (
	LocaleKorean  Locale = "ko"
	LocaleEnglish Locale = "en"
)

// ParseLocale maps s to a supported locale, defaulting to Korean.
func ParseLocale(s string) Locale {
	if Locale(s) == LocaleEnglish {
		return LocaleEnglish
	}
	return LocaleKorean
}

// Grid dimensions.
const (
	// PillarCount is the number of pillars (outer blocks) in a mandalart.
	PillarCount = 8
	// ActionsPerPillar is the number of action cells around each pillar title.
	ActionsPerPillar = 8
)

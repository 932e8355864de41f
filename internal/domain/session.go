package domain

import "time"

// SchemaVersion is the persisted layout version of Session.
const SchemaVersion = 1

// ProjectInfo is recorded once the goal archetype is known.
type ProjectInfo struct {
	Name      string    `json:"name"`
	Archetype Archetype `json:"archetype"`
	CreatedAt time.Time `json:"createdAt"`
}

// InterviewAnswer pairs an asked question with the user's answer.
type InterviewAnswer struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// Persona is what the interview learns about the user.
type Persona struct {
	IdentityAnswers []InterviewAnswer `json:"identityAnswers"`
	VibeSummary     string            `json:"vibeSummary"`
}

// UserContext holds the goal and the persona built around it.
type UserContext struct {
	Goal    string  `json:"goal"`
	Persona Persona `json:"persona"`
}

// Session is the aggregate root of one wizard run.
type Session struct {
	SchemaVersion    int               `json:"schemaVersion"`
	ProjectInfo      *ProjectInfo      `json:"projectInfo"`
	QuickContext     *QuickContext     `json:"quickContext"`
	UserContext      *UserContext      `json:"userContext"`
	SuggestedPillars []Pillar          `json:"suggestedPillars"`
	SelectedPillars  []Pillar          `json:"selectedPillars"`
	ActionSelection  *ActionSelection  `json:"actionSelection,omitempty"`
	Mandalart        *MandalartData    `json:"mandalart"`
	CurrentStep      Step              `json:"currentStep"`
	IsDiscoveryMode  bool              `json:"isDiscoveryMode"`
	DiscoveryAnswers []InterviewAnswer `json:"discoveryAnswers"`
	SuggestedGoals   []string          `json:"suggestedGoals"`
}

// NewSession returns the initial, empty session.
func NewSession() Session {
	return Session{
		SchemaVersion:    SchemaVersion,
		SuggestedPillars: []Pillar{},
		SelectedPillars:  []Pillar{},
		CurrentStep:      StepQuickContext,
		DiscoveryAnswers: []InterviewAnswer{},
		SuggestedGoals:   []string{},
	}
}

// Goal returns the goal text, or "" when none has been set.
func (s Session) Goal() string {
	if s.UserContext == nil {
		return ""
	}
	return s.UserContext.Goal
}

// VibeSummary returns the persona summary, or "" when none exists.
func (s Session) VibeSummary() string {
	if s.UserContext == nil {
		return ""
	}
	return s.UserContext.Persona.VibeSummary
}

// Archetype returns the detected archetype, or "" before detection.
func (s Session) Archetype() Archetype {
	if s.ProjectInfo == nil {
		return ""
	}
	return s.ProjectInfo.Archetype
}

// IsPillarSelected reports whether id is in the selection.
func (s Session) IsPillarSelected(id string) bool {
	return indexOfPillar(s.SelectedPillars, id) >= 0
}

// FindSuggestedPillar looks id up in the suggestion pool.
func (s Session) FindSuggestedPillar(id string) (Pillar, bool) {
	i := indexOfPillar(s.SuggestedPillars, id)
	if i < 0 {
		return Pillar{}, false
	}
	return s.SuggestedPillars[i], true
}

// Clone returns a deep copy so callers can never alias another snapshot.
func (s Session) Clone() Session {
	out := s
	if s.ProjectInfo != nil {
		pi := *s.ProjectInfo
		out.ProjectInfo = &pi
	}
	if s.QuickContext != nil {
		qc := *s.QuickContext
		out.QuickContext = &qc
	}
	if s.UserContext != nil {
		uc := *s.UserContext
		uc.Persona.IdentityAnswers = append([]InterviewAnswer{}, s.UserContext.Persona.IdentityAnswers...)
		out.UserContext = &uc
	}
	out.SuggestedPillars = append([]Pillar{}, s.SuggestedPillars...)
	out.SelectedPillars = append([]Pillar{}, s.SelectedPillars...)
	if s.ActionSelection != nil {
		as := s.ActionSelection.clone()
		out.ActionSelection = &as
	}
	if s.Mandalart != nil {
		m := s.Mandalart.clone()
		out.Mandalart = &m
	}
	out.DiscoveryAnswers = append([]InterviewAnswer{}, s.DiscoveryAnswers...)
	out.SuggestedGoals = append([]string{}, s.SuggestedGoals...)
	return out
}

// Normalize replaces nil collections with empty ones so that a decoded
// session compares equal to the one that was encoded.
func (s *Session) Normalize() {
	if s.SuggestedPillars == nil {
		s.SuggestedPillars = []Pillar{}
	}
	if s.SelectedPillars == nil {
		s.SelectedPillars = []Pillar{}
	}
	if s.DiscoveryAnswers == nil {
		s.DiscoveryAnswers = []InterviewAnswer{}
	}
	if s.SuggestedGoals == nil {
		s.SuggestedGoals = []string{}
	}
	if s.UserContext != nil && s.UserContext.Persona.IdentityAnswers == nil {
		s.UserContext.Persona.IdentityAnswers = []InterviewAnswer{}
	}
	if s.ActionSelection != nil {
		s.ActionSelection.normalize()
	}
	if s.Mandalart != nil && s.Mandalart.SubGrids == nil {
		s.Mandalart.SubGrids = []SubGrid{}
	}
}

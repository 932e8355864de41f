package domain

// Pillar is a candidate strategy category. ColorIndex is only set on
// selected pillars and equals the 1-based selection position.
type Pillar struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	ColorIndex  int    `json:"colorIndex,omitempty"`
}

// Unselected returns p without selection metadata.
func (p Pillar) Unselected() Pillar {
	p.ColorIndex = 0
	return p
}

// ActionItem is one suggested action. IDs are synthesized per batch so
// identical text from different regeneration rounds stays distinct.
type ActionItem struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

// ActionSelection tracks the per-pillar action phase. PillarIndex points
// into Session.SelectedPillars.
type ActionSelection struct {
	PillarIndex int          `json:"pillarIndex"`
	Batch       int          `json:"batch"`
	Suggested   []ActionItem `json:"suggested"`
	Selected    []ActionItem `json:"selected"`
	Rejected    []string     `json:"rejected"`
	Completed   []SubGrid    `json:"completed"`
}

// NewActionSelection starts the phase at the first pillar.
func NewActionSelection() ActionSelection {
	return ActionSelection{
		Suggested: []ActionItem{},
		Selected:  []ActionItem{},
		Rejected:  []string{},
		Completed: []SubGrid{},
	}
}

// IsActionSelected reports whether the action with id is selected.
func (a ActionSelection) IsActionSelected(id string) bool {
	return indexOfAction(a.Selected, id) >= 0
}

// FindSuggested looks up a suggested action by id.
func (a ActionSelection) FindSuggested(id string) (ActionItem, bool) {
	i := indexOfAction(a.Suggested, id)
	if i < 0 {
		return ActionItem{}, false
	}
	return a.Suggested[i], true
}

// SelectedTexts returns the selected action texts in selection order.
func (a ActionSelection) SelectedTexts() []string {
	out := make([]string, len(a.Selected))
	for i, item := range a.Selected {
		out[i] = item.Text
	}
	return out
}

// UnselectedTexts returns the suggested texts that are not selected.
func (a ActionSelection) UnselectedTexts() []string {
	var out []string
	for _, item := range a.Suggested {
		if !a.IsActionSelected(item.ID) {
			out = append(out, item.Text)
		}
	}
	return out
}

func (a ActionSelection) clone() ActionSelection {
	out := a
	out.Suggested = append([]ActionItem{}, a.Suggested...)
	out.Selected = append([]ActionItem{}, a.Selected...)
	out.Rejected = append([]string{}, a.Rejected...)
	out.Completed = make([]SubGrid, len(a.Completed))
	for i, g := range a.Completed {
		out.Completed[i] = g.clone()
	}
	return out
}

func (a *ActionSelection) normalize() {
	if a.Suggested == nil {
		a.Suggested = []ActionItem{}
	}
	if a.Selected == nil {
		a.Selected = []ActionItem{}
	}
	if a.Rejected == nil {
		a.Rejected = []string{}
	}
	if a.Completed == nil {
		a.Completed = []SubGrid{}
	}
}

func indexOfPillar(pillars []Pillar, id string) int {
	for i, p := range pillars {
		if p.ID == id {
			return i
		}
	}
	return -1
}

func indexOfAction(items []ActionItem, id string) int {
	for i, a := range items {
		if a.ID == id {
			return i
		}
	}
	return -1
}

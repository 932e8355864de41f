package domain

import (
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleMandalart() MandalartData {
	m := MandalartData{Core: "Run a marathon"}
	for i := 0; i < PillarCount; i++ {
		g := SubGrid{
			ID:           fmt.Sprintf("grid_%d", i+1),
			Title:        fmt.Sprintf("P%d", i+1),
			OpacityLevel: i + 1,
			ColorIndex:   i + 1,
		}
		for j := 0; j < ActionsPerPillar; j++ {
			g.Actions = append(g.Actions, fmt.Sprintf("P%d-A%d", i+1, j+1))
		}
		m.SubGrids = append(m.SubGrids, g)
	}
	return m
}

func TestValidate_Complete(t *testing.T) {
	require.NoError(t, sampleMandalart().Validate())
}

func TestValidate_Rejects(t *testing.T) {
	cases := map[string]func(*MandalartData){
		"empty core":      func(m *MandalartData) { m.Core = "  " },
		"seven subgrids":  func(m *MandalartData) { m.SubGrids = m.SubGrids[:7] },
		"missing title":   func(m *MandalartData) { m.SubGrids[2].Title = "" },
		"seven actions":   func(m *MandalartData) { m.SubGrids[0].Actions = m.SubGrids[0].Actions[:7] },
		"blank action":    func(m *MandalartData) { m.SubGrids[5].Actions[3] = " " },
		"nine action cap": func(m *MandalartData) { m.SubGrids[1].Actions = append(m.SubGrids[1].Actions, "extra") },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			m := sampleMandalart()
			mutate(&m)
			err := m.Validate()
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidMandalart)
		})
	}
}

func TestOuterIndex(t *testing.T) {
	cases := []struct {
		pos  int
		want int
		ok   bool
	}{
		{0, 0, true}, {3, 3, true}, {4, 0, false}, {5, 4, true}, {8, 7, true}, {9, 0, false}, {-1, 0, false},
	}
	for _, tc := range cases {
		got, ok := OuterIndex(tc.pos)
		assert.Equal(t, tc.ok, ok, "pos=%d", tc.pos)
		assert.Equal(t, tc.want, got, "pos=%d", tc.pos)
	}
}

func TestCells_Layout(t *testing.T) {
	grid := sampleMandalart().Cells()

	// Centre of the whole grid is the core goal.
	assert.Equal(t, "Run a marathon", grid[4][4].Text)
	assert.True(t, grid[4][4].Core)

	// Core block surrounds the goal with pillar titles; top-left is pillar 1.
	assert.Equal(t, "P1", grid[3][3].Text)
	assert.Equal(t, "P4", grid[4][3].Text)
	assert.Equal(t, "P5", grid[4][5].Text)
	assert.Equal(t, "P8", grid[5][5].Text)

	// Top-left block is pillar 1 with its title in the centre.
	assert.Equal(t, "P1", grid[1][1].Text)
	assert.True(t, grid[1][1].Title)
	assert.Equal(t, "P1-A1", grid[0][0].Text)
	assert.Equal(t, "P1-A5", grid[1][2].Text)
	assert.Equal(t, "P1-A8", grid[2][2].Text)

	// Bottom-right block is pillar 8.
	assert.Equal(t, "P8", grid[7][7].Text)
	assert.Equal(t, "P8-A1", grid[6][6].Text)
	assert.Equal(t, 8, grid[8][8].ColorIndex)

	// Block 5 (middle-right) is pillar 5.
	assert.Equal(t, "P5", grid[4][7].Text)
}

func TestCells_PartialMandalartLeavesBlanks(t *testing.T) {
	m := MandalartData{Core: "goal", SubGrids: []SubGrid{{Title: "only", Actions: []string{"a"}}}}
	grid := m.Cells()
	assert.Equal(t, "only", grid[3][3].Text)
	assert.Equal(t, "", grid[5][5].Text)
	assert.Equal(t, "a", grid[0][0].Text)
	assert.Equal(t, "", grid[0][1].Text)
}

func TestSessionClone_NoAliasing(t *testing.T) {
	s := NewSession()
	s.UserContext = &UserContext{Goal: "g", Persona: Persona{IdentityAnswers: []InterviewAnswer{{Question: "q", Answer: "a"}}}}
	s.SelectedPillars = []Pillar{{ID: "p1", ColorIndex: 1}}
	m := sampleMandalart()
	s.Mandalart = &m
	as := NewActionSelection()
	as.Selected = []ActionItem{{ID: "x", Text: "y"}}
	s.ActionSelection = &as

	c := s.Clone()
	c.UserContext.Persona.IdentityAnswers[0].Answer = "changed"
	c.SelectedPillars[0].ColorIndex = 9
	c.Mandalart.SubGrids[0].Actions[0] = "changed"
	c.ActionSelection.Selected[0].Text = "changed"

	assert.Equal(t, "a", s.UserContext.Persona.IdentityAnswers[0].Answer)
	assert.Equal(t, 1, s.SelectedPillars[0].ColorIndex)
	assert.Equal(t, "P1-A1", s.Mandalart.SubGrids[0].Actions[0])
	assert.Equal(t, "y", s.ActionSelection.Selected[0].Text)
}

func TestSession_JSONRoundTrip(t *testing.T) {
	s := NewSession()
	s.ProjectInfo = &ProjectInfo{Name: "g", Archetype: ArchetypeGrowth, CreatedAt: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)}
	s.QuickContext = &QuickContext{Nickname: "kim", LifeArea: "건강", CurrentStatus: "학생", GoalStyle: "도전적", YearKeyword: "성장"}
	s.UserContext = &UserContext{Goal: "g", Persona: Persona{IdentityAnswers: []InterviewAnswer{}}}
	m := sampleMandalart()
	s.Mandalart = &m
	s.CurrentStep = StepResult

	raw, err := json.Marshal(s)
	require.NoError(t, err)

	var got Session
	require.NoError(t, json.Unmarshal(raw, &got))
	got.Normalize()
	assert.Equal(t, s, got)
}

func TestSession_JSONFieldNames(t *testing.T) {
	raw, err := json.Marshal(NewSession())
	require.NoError(t, err)
	var fields map[string]any
	require.NoError(t, json.Unmarshal(raw, &fields))
	for _, k := range []string{"projectInfo", "quickContext", "userContext", "suggestedPillars",
		"selectedPillars", "mandalart", "currentStep", "isDiscoveryMode", "discoveryAnswers", "suggestedGoals", "schemaVersion"} {
		assert.Contains(t, fields, k)
	}
	assert.Equal(t, "QUICK_CONTEXT", fields["currentStep"])
	assert.Nil(t, fields["projectInfo"])
}

func TestQuickContext_Canonicalize(t *testing.T) {
	q := QuickContext{Nickname: " lee ", LifeArea: "career", CurrentStatus: "Student", GoalStyle: "Recovery", YearKeyword: "균형"}.Canonicalize()
	assert.Equal(t, "lee", q.Nickname)
	assert.Equal(t, "커리어", q.LifeArea)
	assert.Equal(t, "학생", q.CurrentStatus)
	assert.Equal(t, "회복/재충전", q.GoalStyle)
	assert.Equal(t, "균형", q.YearKeyword)
	assert.True(t, q.Valid())
}

func TestQuickContext_Invalid(t *testing.T) {
	q := QuickContext{Nickname: "lee", LifeArea: "space travel", CurrentStatus: "학생", GoalStyle: "도전적", YearKeyword: "성장"}
	assert.False(t, q.Canonicalize().Valid())
	q.LifeArea = "건강"
	q.Nickname = " "
	assert.False(t, q.Valid())
}

func TestParseLocale(t *testing.T) {
	assert.Equal(t, LocaleEnglish, ParseLocale("en"))
	assert.Equal(t, LocaleKorean, ParseLocale("ko"))
	assert.Equal(t, LocaleKorean, ParseLocale("fr"))
}

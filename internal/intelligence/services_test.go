package intelligence

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"testing"

	"github.com/alexanderramin/mandalart/internal/domain"
	"github.com/alexanderramin/mandalart/internal/llm"
	"github.com/alexanderramin/mandalart/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scriptedClient replies with a fixed response or error and records requests.
type scriptedClient struct {
	response string
	err      error
	requests []llm.GenerateRequest
}

func (m *scriptedClient) Generate(_ context.Context, req llm.GenerateRequest) (*llm.GenerateResponse, error) {
	m.requests = append(m.requests, req)
	if m.err != nil {
		return nil, m.err
	}
	return &llm.GenerateResponse{Text: m.response, Model: "test-model"}, nil
}

func (m *scriptedClient) Available(context.Context) bool { return m.err == nil }

func replyJSON(t *testing.T, v any) *scriptedClient {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	return &scriptedClient{response: string(data)}
}

func TestArchetypeService_Detect(t *testing.T) {
	client := &scriptedClient{response: "```json\n{\"archetype\":\" growth \",\"confidence\":0.8,\"reasoning\":\" learning \"}\n```"}
	svc := NewArchetypeService(client, domain.LocaleEnglish)

	det, err := svc.Detect(context.Background(), "Learn Go", nil)
	require.NoError(t, err)
	assert.Equal(t, domain.ArchetypeGrowth, det.Archetype)
	assert.Equal(t, "learning", det.Reasoning)

	require.Len(t, client.requests, 1)
	assert.Equal(t, llm.TaskArchetype, client.requests[0].Task)
	assert.Contains(t, client.requests[0].UserPrompt, `"Learn Go"`)
	assert.Contains(t, client.requests[0].SystemPrompt, "in English")
}

func TestArchetypeService_RejectsUnknownArchetype(t *testing.T) {
	svc := NewArchetypeService(&scriptedClient{response: `{"archetype":"MYSTERY","confidence":0.5}`}, domain.LocaleKorean)
	_, err := svc.Detect(context.Background(), "goal", nil)
	assert.ErrorIs(t, err, llm.ErrInvalidOutput)

	_, err = svc.Detect(context.Background(), "  ", nil)
	assert.Error(t, err)
}

func TestArchetypeService_PropagatesClientError(t *testing.T) {
	svc := NewArchetypeService(&scriptedClient{err: llm.ErrTimeout}, domain.LocaleKorean)
	_, err := svc.Detect(context.Background(), "goal", nil)
	assert.ErrorIs(t, err, llm.ErrTimeout)
}

func TestInterviewService_QuestionsFromLLM(t *testing.T) {
	qc := testutil.NewTestQuickContext()
	client := replyJSON(t, map[string][]string{"questions": {"A?", " ", "B?", "A?", "C?", "D?"}})
	svc := NewInterviewService(client, domain.LocaleKorean)

	set, err := svc.Questions(context.Background(), domain.ArchetypeRoutine, "Sleep by 11", &qc)
	require.NoError(t, err)
	assert.False(t, set.Fallback)
	assert.Equal(t, []string{"A?", "B?", "C?"}, set.Questions)
	assert.Contains(t, client.requests[0].UserPrompt, "건강")
	assert.Contains(t, client.requests[0].SystemPrompt, "Korean")
}

func TestInterviewService_FallsBackToStaticQuestions(t *testing.T) {
	for name, client := range map[string]*scriptedClient{
		"error":     {err: llm.ErrUnavailable},
		"too few":   {response: `{"questions":["only one?"]}`},
		"malformed": {response: "no json here"},
	} {
		t.Run(name, func(t *testing.T) {
			svc := NewInterviewService(client, domain.LocaleEnglish)
			set, err := svc.Questions(context.Background(), domain.ArchetypeBusiness, "Launch a shop", nil)
			require.NoError(t, err)
			assert.True(t, set.Fallback)
			want, _ := StaticInterviewQuestions(domain.LocaleEnglish, domain.ArchetypeBusiness)
			assert.Equal(t, want, set.Questions)
		})
	}
}

func TestInterviewService_QuestionsNeedKnownArchetype(t *testing.T) {
	svc := NewInterviewService(&scriptedClient{}, domain.LocaleKorean)
	_, err := svc.Questions(context.Background(), "NOPE", "goal", nil)
	assert.ErrorIs(t, err, ErrUnknownArchetype)
}

func TestInterviewService_StaticQuestionIndex(t *testing.T) {
	svc := NewInterviewService(&scriptedClient{}, domain.LocaleKorean)

	q, err := svc.Question(domain.ArchetypeRelation, 1)
	require.NoError(t, err)
	assert.False(t, q.IsComplete)
	assert.Equal(t, "관계에서 당신이 가장 소중히 여기는 가치는 무엇인가요?", q.Question)

	q, err = svc.Question(domain.ArchetypeRelation, 3)
	require.NoError(t, err)
	assert.True(t, q.IsComplete)
	assert.Empty(t, q.Question)

	_, err = svc.Question(domain.ArchetypeRelation, -1)
	assert.Error(t, err)
}

func TestInterviewService_Summary(t *testing.T) {
	client := &scriptedClient{response: `{"vibeSummary":"  Quietly determined.  "}`}
	svc := NewInterviewService(client, domain.LocaleEnglish)
	answers := []domain.InterviewAnswer{{Question: "Why?", Answer: "Because."}}

	summary, err := svc.Summary(context.Background(), domain.ArchetypeGrowth, "Learn piano", answers)
	require.NoError(t, err)
	assert.Equal(t, "Quietly determined.", summary)
	assert.Equal(t, llm.TaskSummary, client.requests[0].Task)
	assert.Contains(t, client.requests[0].UserPrompt, "Q1: Why?\nA1: Because.")

	_, err = svc.Summary(context.Background(), domain.ArchetypeGrowth, "Learn piano", nil)
	assert.Error(t, err)

	svc = NewInterviewService(&scriptedClient{response: `{"vibeSummary":""}`}, domain.LocaleEnglish)
	_, err = svc.Summary(context.Background(), domain.ArchetypeGrowth, "Learn piano", answers)
	assert.ErrorIs(t, err, llm.ErrInvalidOutput)
}

func TestDiscoveryService_Questions(t *testing.T) {
	svc := NewDiscoveryService(&scriptedClient{}, domain.LocaleEnglish)

	q, err := svc.Question(0)
	require.NoError(t, err)
	assert.Equal(t, 5, q.TotalQuestions)
	assert.Equal(t, "What have you done lately that made you lose track of time?", q.Question)

	_, err = svc.Question(5)
	assert.ErrorIs(t, err, ErrNoMoreQuestions)
}

func TestDiscoveryService_Goals(t *testing.T) {
	client := replyJSON(t, map[string]any{
		"suggestedGoals": []string{"Run a half marathon", "Read 24 books", " "},
		"summary":        "Curious and energetic.",
	})
	svc := NewDiscoveryService(client, domain.LocaleEnglish)
	answers := []domain.InterviewAnswer{{Question: "q", Answer: "a"}}

	goals, err := svc.Goals(context.Background(), answers)
	require.NoError(t, err)
	assert.Equal(t, StatusPartial, goals.Goals.Status)
	assert.Equal(t, []string{"Run a half marathon", "Read 24 books"}, goals.Goals.Items)
	assert.Equal(t, "Curious and energetic.", goals.Summary)

	svc = NewDiscoveryService(&scriptedClient{response: `{"suggestedGoals":[]}`}, domain.LocaleEnglish)
	_, err = svc.Goals(context.Background(), answers)
	assert.ErrorIs(t, err, ErrShortResult)

	_, err = svc.Goals(context.Background(), nil)
	assert.Error(t, err)
}

func pillarReply(t *testing.T, titles ...string) *scriptedClient {
	t.Helper()
	pillars := make([]domain.Pillar, len(titles))
	for i, title := range titles {
		pillars[i] = domain.Pillar{ID: "llm_id", Title: title, Description: title + " desc", ColorIndex: 9}
	}
	return replyJSON(t, map[string]any{"pillars": pillars})
}

func TestPillarService_Suggest(t *testing.T) {
	titles := make([]string, 14)
	for i := range titles {
		titles[i] = fmt.Sprintf("Area %d", i+1)
	}
	titles[3] = "area 1"
	svc := NewPillarService(pillarReply(t, titles...), domain.LocaleKorean)

	res, err := svc.Suggest(context.Background(), domain.ArchetypeGrowth, "goal", "vibe")
	require.NoError(t, err)
	assert.Equal(t, StatusFull, res.Status)
	require.Len(t, res.Items, SuggestedPillarCount)
	for i, p := range res.Items {
		assert.Equal(t, fmt.Sprintf("pillar_%d", i+1), p.ID)
		assert.Zero(t, p.ColorIndex)
	}
	assert.Equal(t, "Area 5", res.Items[3].Title, "case-insensitive duplicate dropped")
}

func TestPillarService_SuggestPartialAndFailed(t *testing.T) {
	svc := NewPillarService(pillarReply(t, "A", "B"), domain.LocaleKorean)
	res, err := svc.Suggest(context.Background(), domain.ArchetypeGrowth, "goal", "vibe")
	require.NoError(t, err)
	assert.Equal(t, StatusPartial, res.Status)
	assert.Equal(t, SuggestedPillarCount, res.Requested)

	svc = NewPillarService(pillarReply(t, " "), domain.LocaleKorean)
	res, err = svc.Suggest(context.Background(), domain.ArchetypeGrowth, "goal", "vibe")
	assert.ErrorIs(t, err, ErrShortResult)
	assert.Equal(t, StatusFailed, res.Status)

	svc = NewPillarService(&scriptedClient{err: llm.ErrRetryExhausted}, domain.LocaleKorean)
	res, err = svc.Suggest(context.Background(), domain.ArchetypeGrowth, "goal", "vibe")
	assert.ErrorIs(t, err, llm.ErrRetryExhausted)
	assert.Equal(t, StatusFailed, res.Status)
}

func TestPillarService_RegenerateExcludesKnownAndMintsFreshIDs(t *testing.T) {
	client := pillarReply(t, "Health", "Sleep", "Money", "Focus")
	svc := NewPillarService(client, domain.LocaleEnglish).(*pillarService)
	ids := []string{"pillar_1", "pillar_1", "pillar_x", "pillar_2", "pillar_y"}
	svc.newID = func() string {
		id := ids[0]
		ids = ids[1:]
		return id
	}

	selected := []domain.Pillar{{ID: "pillar_1", Title: "Health", ColorIndex: 1}}
	rejected := []domain.Pillar{{ID: "pillar_2", Title: "money"}}
	res, err := svc.Regenerate(context.Background(), domain.ArchetypeRoutine, "goal", "vibe", selected, rejected, 3)
	require.NoError(t, err)

	assert.Equal(t, StatusPartial, res.Status)
	require.Len(t, res.Items, 2)
	assert.Equal(t, "Sleep", res.Items[0].Title)
	assert.Equal(t, "Focus", res.Items[1].Title)
	assert.Equal(t, "pillar_x", res.Items[0].ID, "colliding ids are skipped")
	assert.Equal(t, "pillar_y", res.Items[1].ID)

	prompt := client.requests[0].UserPrompt
	assert.Contains(t, prompt, "- Health: ")
	assert.Contains(t, prompt, "- money: ")
	assert.Contains(t, prompt, "Return exactly 3 pillars.")
}

func TestPillarService_RegenerateNothingRequested(t *testing.T) {
	client := &scriptedClient{}
	res, err := NewPillarService(client, domain.LocaleEnglish).Regenerate(context.Background(), domain.ArchetypeRoutine, "g", "v", nil, nil, 0)
	require.NoError(t, err)
	assert.Empty(t, res.Items)
	assert.Empty(t, client.requests)
}

func TestActionService_Suggest(t *testing.T) {
	client := replyJSON(t, map[string][]string{"actions": testutil.NewTestActions("Run", 15)})
	svc := NewActionService(client, domain.LocaleEnglish)
	pillar := domain.Pillar{ID: "pillar_1", Title: "Fitness", Description: "Move more"}

	res, err := svc.Suggest(context.Background(), "Marathon", "steady", pillar)
	require.NoError(t, err)
	assert.Equal(t, StatusFull, res.Status)
	assert.Len(t, res.Items, SuggestedActionCount)
	assert.Equal(t, llm.TaskActions, client.requests[0].Task)
	assert.Contains(t, client.requests[0].UserPrompt, "Fitness - Move more")
}

func TestActionService_RegenerateExcludesSelectedAndRejected(t *testing.T) {
	client := replyJSON(t, map[string][]string{"actions": {"a", "B", "c", "d", "e"}})
	svc := NewActionService(client, domain.LocaleEnglish)

	res, err := svc.Regenerate(context.Background(), "g", "v", domain.Pillar{Title: "P"}, []string{"a"}, []string{"b"}, 4)
	require.NoError(t, err)
	assert.Equal(t, []string{"c", "d", "e"}, res.Items)
	assert.Equal(t, StatusPartial, res.Status)
	prompt := client.requests[0].UserPrompt
	assert.Contains(t, prompt, "Already chosen (do not repeat):\n- a\n")
	assert.Contains(t, prompt, "passed over (do not repeat):\n- b\n")
}

func bulkReply(t *testing.T, perGrid ...int) *scriptedClient {
	t.Helper()
	type grid struct {
		ID      string   `json:"id"`
		Title   string   `json:"title"`
		Actions []string `json:"actions"`
	}
	grids := make([]grid, len(perGrid))
	for i, n := range perGrid {
		grids[i] = grid{ID: fmt.Sprintf("grid_%d", i+1), Title: "llm title", Actions: testutil.NewTestActions(fmt.Sprintf("G%d", i+1), n)}
	}
	return replyJSON(t, map[string]any{"subGrids": grids})
}

func selectedPillars() []domain.Pillar {
	session := testutil.NewTestSession(testutil.WithSelectedPillars(testutil.NewTestPillars(domain.PillarCount)...))
	return session.SelectedPillars
}

func TestActionService_GenerateAll(t *testing.T) {
	client := bulkReply(t, 8, 9, 8, 8, 8, 8, 8, 10)
	svc := NewActionService(client, domain.LocaleKorean)

	m, err := svc.GenerateAll(context.Background(), " Run a marathon ", "vibe", selectedPillars())
	require.NoError(t, err)
	require.NoError(t, m.Validate())
	assert.Equal(t, "Run a marathon", m.Core)
	assert.Equal(t, llm.TaskBulkActions, client.requests[0].Task)

	g := m.SubGrids[1]
	assert.Equal(t, "grid_2", g.ID)
	assert.Equal(t, "Pillar 2", g.Title, "titles come from the selected pillars")
	assert.Equal(t, 2, g.OpacityLevel)
	assert.Equal(t, 2, g.ColorIndex)
	assert.Len(t, g.Actions, domain.ActionsPerPillar)
}

func TestActionService_GenerateAllRejectsShortBlocks(t *testing.T) {
	for name, client := range map[string]*scriptedClient{
		"seven blocks": bulkReply(t, 8, 8, 8, 8, 8, 8, 8),
		"short block":  bulkReply(t, 8, 8, 8, 7, 8, 8, 8, 8),
	} {
		t.Run(name, func(t *testing.T) {
			_, err := NewActionService(client, domain.LocaleKorean).GenerateAll(context.Background(), "goal", "vibe", selectedPillars())
			assert.ErrorIs(t, err, ErrShortResult)
		})
	}

	_, err := NewActionService(&scriptedClient{}, domain.LocaleKorean).GenerateAll(context.Background(), "goal", "vibe", selectedPillars()[:7])
	assert.Error(t, err)
}

func TestBlessingService_Bless(t *testing.T) {
	client := &scriptedClient{response: `{"blessing":" Coffee is on me if you burn out ☕ "}`}
	svc := NewBlessingService(client, domain.LocaleEnglish)

	line, err := svc.Bless(context.Background(), "Marathon", []string{"Fitness", "Sleep"})
	require.NoError(t, err)
	assert.Equal(t, "Coffee is on me if you burn out ☕", line)
	assert.True(t, strings.Contains(client.requests[0].UserPrompt, "Fitness, Sleep"))

	_, err = svc.Bless(context.Background(), "Marathon", nil)
	assert.Error(t, err)
}

func TestNewServices_SharesClient(t *testing.T) {
	client := &scriptedClient{err: llm.ErrDisabled}
	svcs := NewServices(client, domain.LocaleKorean)
	_, err := svcs.Blessing.Bless(context.Background(), "g", []string{"p"})
	assert.ErrorIs(t, err, llm.ErrDisabled)
	_, err = svcs.Pillars.Suggest(context.Background(), domain.ArchetypeGrowth, "g", "v")
	assert.ErrorIs(t, err, llm.ErrDisabled)
	assert.Len(t, client.requests, 2)
}

func TestResult_Status(t *testing.T) {
	assert.Equal(t, StatusFull, newResult([]int{1, 2, 3}, 2).Status)
	assert.Len(t, newResult([]int{1, 2, 3}, 2).Items, 2)
	assert.Equal(t, StatusPartial, newResult([]int{1}, 2).Status)
	assert.Equal(t, StatusFailed, newResult[int](nil, 2).Status)
	assert.ErrorIs(t, newResult[int](nil, 2).Err(), ErrShortResult)
	assert.NoError(t, newResult([]int{1}, 2).Err())
	assert.ErrorIs(t, newResult([]int{1}, 2).Require(2), ErrShortResult)
}

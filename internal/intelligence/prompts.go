package intelligence

import (
	"fmt"
	"strings"

	"github.com/alexanderramin/mandalart/internal/domain"
)

// coachPersona frames every suggestion call.
const coachPersona = `You are a warm, personal life-design coach helping someone build a Mandalart plan for the coming year.
- Encourage, never lecture; you are a coach, not a cold assistant.
- Prefer open questions that let the user find their own inspiration.
- Suggest concrete, realistic practices.
- Respect the texture of the user's life.`

const jsonOnly = `Output ONLY a JSON object with exactly the fields requested. No markdown, no commentary.
Use strict JSON numeric literals (e.g., 0.85, never .85).`

func languageRule(locale domain.Locale) string {
	if locale == domain.LocaleEnglish {
		return "Write every string value in English."
	}
	return "Write every string value in Korean, using polite speech (존댓말)."
}

// systemPrompt joins the persona, the output language and the JSON rule.
func systemPrompt(locale domain.Locale) string {
	return coachPersona + "\n\n" + languageRule(locale) + "\n" + jsonOnly
}

func quickContextLines(qc *domain.QuickContext) string {
	if qc == nil {
		return ""
	}
	var b strings.Builder
	b.WriteString("User profile:\n")
	if qc.Nickname != "" {
		fmt.Fprintf(&b, "- nickname: %s\n", qc.Nickname)
	}
	fmt.Fprintf(&b, "- life area: %s\n- current status: %s\n- goal style: %s\n- keyword of the year: %s\n",
		qc.LifeArea, qc.CurrentStatus, qc.GoalStyle, qc.YearKeyword)
	return b.String()
}

func answerLines(answers []domain.InterviewAnswer) string {
	var b strings.Builder
	for i, a := range answers {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "Q%d: %s\nA%d: %s\n", i+1, a.Question, i+1, a.Answer)
	}
	return b.String()
}

func bulletLines(items []string) string {
	if len(items) == 0 {
		return "- (none)\n"
	}
	var b strings.Builder
	for _, it := range items {
		fmt.Fprintf(&b, "- %s\n", it)
	}
	return b.String()
}

func pillarLines(pillars []domain.Pillar, numbered bool) string {
	if len(pillars) == 0 {
		return "- (none)\n"
	}
	var b strings.Builder
	for i, p := range pillars {
		if numbered {
			fmt.Fprintf(&b, "%d. %s: %s\n", i+1, p.Title, p.Description)
		} else {
			fmt.Fprintf(&b, "- %s: %s\n", p.Title, p.Description)
		}
	}
	return b.String()
}

const actionRules = `Rules:
- Never use abstract phrases such as "do my best" or "keep trying".
- Use concrete practices like "talk with my child for 10 minutes at 8pm every day".
- Make time, place, frequency or method explicit.
- Keep each action short: 20 characters or fewer in Korean, 6 words or fewer in English.`

func archetypePrompt(goal string, qc *domain.QuickContext) string {
	return fmt.Sprintf(`Classify the user's goal into exactly one of four types.

Types:
- BUSINESS: business, career, revenue, performance, promotion, income
- GROWTH: self-development, learning, skills, acquiring new abilities
- RELATION: relationships, family, communication, networking, love
- ROUTINE: habits, health, daily routine, lifestyle patterns

Goal: %q
%s
JSON fields:
{
  "archetype": "BUSINESS | GROWTH | RELATION | ROUTINE",
  "confidence": number between 0.0 and 1.0,
  "reasoning": "one sentence"
}`, goal, quickContextLines(qc))
}

func interviewQuestionsPrompt(archetype domain.Archetype, goal string, qc *domain.QuickContext) string {
	return fmt.Sprintf(`Write %d open interview questions that help the user discover what this goal really means to them.

Goal type: %s
Goal: %q
%s
Rules:
- One question per aspect: the picture of success, what they will protect, how they see themselves.
- Each question is a single sentence.
- Tailor the wording to the goal and profile; avoid generic questions.

JSON fields:
{
  "questions": ["question 1", "question 2", "question 3"]
}`, InterviewQuestionCount, archetype, goal, quickContextLines(qc))
}

func interviewSummaryPrompt(archetype domain.Archetype, goal string, answers []domain.InterviewAnswer) string {
	return fmt.Sprintf(`Summarise the texture of the user's life from their interview answers.

Goal type: %s
Goal: %q
Interview answers:
%s
Rules:
- 2-3 concise sentences.
- Capture values, motivation and temperament.
- Warm but insightful.

JSON fields:
{
  "vibeSummary": "summary"
}`, archetype, goal, answerLines(answers))
}

func discoveryGoalsPrompt(answers []domain.InterviewAnswer, count int) string {
	return fmt.Sprintf(`From the user's answers, suggest %d goals worth focusing on this year.

User answers:
%s
Rules:
- Each goal is specific and measurable.
- Reflect the user's interests and values.
- Not too abstract or vague.
- One clear sentence per goal.

JSON fields:
{
  "suggestedGoals": ["goal 1", "goal 2", "goal 3"],
  "summary": "2-3 sentence sketch of the user's temperament"
}`, count, answerLines(answers))
}

func pillarPrompt(archetype domain.Archetype, goal, vibe string, count int) string {
	return fmt.Sprintf(`Suggest %d strategy categories (pillars) for reaching the user's goal.

Goal type: %s
Goal: %q
User temperament: %q

Rules:
- Each category is a practical, concrete area.
- Fit the context of the user's life.
- Categories are independent and do not overlap.
- Titles are 2-4 words; descriptions are one sentence.

JSON fields:
{
  "pillars": [
    { "id": "pillar_1", "title": "category title", "description": "short description" }
  ]
}
Return exactly %d pillars.`, count, archetype, goal, vibe, count)
}

func pillarRegenerationPrompt(archetype domain.Archetype, goal, vibe string, selected, rejected []domain.Pillar, count int) string {
	return fmt.Sprintf(`Suggest %d NEW strategy categories (pillars) for reaching the user's goal.

Goal type: %s
Goal: %q
User temperament: %q

Already chosen (do not repeat or overlap):
%s
Already shown and passed over (do not repeat):
%s
Rules:
- Each category is a practical, concrete area.
- Categories are independent and do not overlap.
- Titles are 2-4 words; descriptions are one sentence.

JSON fields:
{
  "pillars": [
    { "id": "pillar_new_1", "title": "category title", "description": "short description" }
  ]
}
Return exactly %d pillars.`, count, archetype, goal, vibe,
		pillarLines(selected, false), pillarLines(rejected, false), count)
}

func actionPrompt(goal, vibe string, pillar domain.Pillar, count int) string {
	return fmt.Sprintf(`Suggest %d concrete actions for one strategy area of the user's goal.

Goal: %q
User temperament: %q
Strategy area: %s - %s

%s

JSON fields:
{
  "actions": ["action 1", "action 2"]
}
Return exactly %d actions.`, count, goal, vibe, pillar.Title, pillar.Description, actionRules, count)
}

func actionRegenerationPrompt(goal, vibe string, pillar domain.Pillar, selected, rejected []string, count int) string {
	return fmt.Sprintf(`Suggest %d NEW concrete actions for one strategy area of the user's goal.

Goal: %q
User temperament: %q
Strategy area: %s - %s

Already chosen (do not repeat):
%s
Already shown and passed over (do not repeat):
%s
%s

JSON fields:
{
  "actions": ["action 1", "action 2"]
}
Return exactly %d actions.`, count, goal, vibe, pillar.Title, pillar.Description,
		bulletLines(selected), bulletLines(rejected), actionRules, count)
}

func bulkActionPrompt(goal, vibe string, pillars []domain.Pillar) string {
	return fmt.Sprintf(`For each of the user's %d strategy areas, write %d concrete actions.

Goal: %q
User temperament: %q
Strategy areas:
%s
%s

JSON fields:
{
  "subGrids": [
    { "id": "grid_1", "title": "strategy area title", "actions": ["action 1", "...", "action 8"] }
  ]
}
Return one entry per strategy area, in the same order, each with exactly %d actions.`,
		len(pillars), domain.ActionsPerPillar, goal, vibe, pillarLines(pillars, true), actionRules, domain.ActionsPerPillar)
}

func blessingPrompt(goal string, pillarTitles []string) string {
	return fmt.Sprintf(`Write one witty, heartfelt line of encouragement for the user's plan for the year.

Goal: %q
Practice areas: %s

Rules:
- One sentence, at most 50 characters.
- Mentioning the goal or an area specifically is better.
- No clichés such as "You got this!" or "Fighting!".
- A touch of humour, but sincere.
- At most one emoji.

JSON fields:
{
  "blessing": "message"
}`, goal, strings.Join(pillarTitles, ", "))
}

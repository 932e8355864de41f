package intelligence

import "github.com/alexanderramin/mandalart/internal/domain"

// InterviewQuestionCount is the number of interview questions per archetype.
const InterviewQuestionCount = 3

var interviewQuestions = map[domain.Locale]map[domain.Archetype][]string{
	domain.LocaleKorean: {
		domain.ArchetypeBusiness: {
			"이 목표를 이루었을 때, 당신의 하루는 어떻게 달라져 있을까요?",
			"이 여정에서 절대 포기하지 않을 한 가지가 있다면 무엇인가요?",
			"이 목표를 향해 나아가는 당신을 가장 잘 표현하는 한 단어는 무엇인가요?",
		},
		domain.ArchetypeGrowth: {
			"이 배움의 끝에서 어떤 일을 하고 있는 자신을 상상하시나요?",
			"성장 과정에서 가장 두려운 것이 있다면 무엇인가요?",
			"이 여정을 통해 당신이 증명하고 싶은 것은 무엇인가요?",
		},
		domain.ArchetypeRelation: {
			"이 여정을 마쳤을 때 곁에 누가 웃고 있길 바라나요?",
			"관계에서 당신이 가장 소중히 여기는 가치는 무엇인가요?",
			"사랑하는 사람에게 어떤 사람으로 기억되고 싶으신가요?",
		},
		domain.ArchetypeRoutine: {
			"이 습관이 완전히 자리잡았을 때의 나는 어떤 사람인가요?",
			"하루 중 가장 소중한 시간대는 언제인가요?",
			"지금의 루틴에서 가장 먼저 바꾸고 싶은 것은 무엇인가요?",
		},
	},
	domain.LocaleEnglish: {
		domain.ArchetypeBusiness: {
			"When you reach this goal, how will your day look different?",
			"What is the one thing you will never give up on along the way?",
			"Which single word best describes you moving toward this goal?",
		},
		domain.ArchetypeGrowth: {
			"At the end of this learning, what do you picture yourself doing?",
			"What scares you most about growing this way?",
			"What do you want to prove through this journey?",
		},
		domain.ArchetypeRelation: {
			"When this journey is over, who do you hope is smiling beside you?",
			"What do you value most in your relationships?",
			"How do you want the people you love to remember you?",
		},
		domain.ArchetypeRoutine: {
			"Who are you once this habit is fully part of your life?",
			"Which time of day matters most to you?",
			"What would you change first in your current routine?",
		},
	},
}

var discoveryQuestions = map[domain.Locale][]string{
	domain.LocaleKorean: {
		"요즘 시간 가는 줄 모르고 했던 일이 있다면 무엇인가요?",
		"1년 후, 어떤 사람이 되어있고 싶으신가요?",
		"지금 삶에서 가장 바꾸고 싶은 한 가지가 있다면요?",
		"주변 사람들이 당신을 어떤 사람으로 기억했으면 하나요?",
		"돈과 시간이 무한하다면 가장 먼저 하고 싶은 일은 무엇인가요?",
	},
	domain.LocaleEnglish: {
		"What have you done lately that made you lose track of time?",
		"Who do you want to be a year from now?",
		"If you could change one thing in your life right now, what would it be?",
		"How would you like the people around you to remember you?",
		"With unlimited money and time, what would you do first?",
	},
}

// StaticInterviewQuestions returns the built-in questions for archetype.
func StaticInterviewQuestions(locale domain.Locale, archetype domain.Archetype) ([]string, bool) {
	qs, ok := interviewQuestions[domain.ParseLocale(string(locale))][archetype]
	if !ok {
		return nil, false
	}
	return append([]string{}, qs...), true
}

// DiscoveryQuestions returns the fixed discovery questionnaire.
func DiscoveryQuestions(locale domain.Locale) []string {
	return append([]string{}, discoveryQuestions[domain.ParseLocale(string(locale))]...)
}

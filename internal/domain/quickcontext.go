package domain

import "strings"

// QuickContext is the optional profile collected before the goal. Option
// values are stored as the canonical Korean labels regardless of the
// display locale so prompts see a stable vocabulary.
type QuickContext struct {
	Nickname      string `json:"nickname"`
	LifeArea      string `json:"lifeArea"`
	CurrentStatus string `json:"currentStatus"`
	GoalStyle     string `json:"goalStyle"`
	YearKeyword   string `json:"yearKeyword"`
}

// Option is one selectable answer with its canonical value and English label.
type Option struct {
	Value   string
	English string
}

// Label returns the option text for locale.
func (o Option) Label(locale Locale) string {
	if locale == LocaleEnglish {
		return o.English
	}
	return o.Value
}

var (
	LifeAreaOptions = []Option{
		{"커리어", "Career"},
		{"건강", "Health"},
		{"관계", "Relationship"},
		{"재정", "Finance"},
		{"자기계발", "Growth"},
		{"취미", "Hobby"},
	}
	CurrentStatusOptions = []Option{
		{"학생", "Student"},
		{"직장인", "Employee"},
		{"창업자", "Entrepreneur"},
		{"프리랜서", "Freelancer"},
		{"구직중", "Job Seeking"},
		{"기타", "Other"},
	}
	GoalStyleOptions = []Option{
		{"도전적", "Ambitious"},
		{"안정적", "Stable"},
		{"실험적", "Experimental"},
		{"회복/재충전", "Recovery"},
	}
	YearKeywordOptions = []Option{
		{"성장", "Growth"},
		{"변화", "Change"},
		{"안정", "Stability"},
		{"도전", "Challenge"},
		{"균형", "Balance"},
		{"회복", "Recovery"},
	}
)

// CanonicalOption resolves s (either the canonical value or the English
// label, case-insensitive) against options.
func CanonicalOption(options []Option, s string) (string, bool) {
	s = strings.TrimSpace(s)
	for _, o := range options {
		if s == o.Value || strings.EqualFold(s, o.English) {
			return o.Value, true
		}
	}
	return "", false
}

// Valid reports whether every field is filled and matches its catalogue.
func (q QuickContext) Valid() bool {
	if strings.TrimSpace(q.Nickname) == "" {
		return false
	}
	checks := []struct {
		options []Option
		value   string
	}{
		{LifeAreaOptions, q.LifeArea},
		{CurrentStatusOptions, q.CurrentStatus},
		{GoalStyleOptions, q.GoalStyle},
		{YearKeywordOptions, q.YearKeyword},
	}
	for _, c := range checks {
		if v, ok := CanonicalOption(c.options, c.value); !ok || v != c.value {
			return false
		}
	}
	return true
}

// Canonicalize trims the nickname and maps every option to its canonical
// value. Unknown options are left untouched so Valid can reject them.
func (q QuickContext) Canonicalize() QuickContext {
	q.Nickname = strings.TrimSpace(q.Nickname)
	if v, ok := CanonicalOption(LifeAreaOptions, q.LifeArea); ok {
		q.LifeArea = v
	}
	if v, ok := CanonicalOption(CurrentStatusOptions, q.CurrentStatus); ok {
		q.CurrentStatus = v
	}
	if v, ok := CanonicalOption(GoalStyleOptions, q.GoalStyle); ok {
		q.GoalStyle = v
	}
	if v, ok := CanonicalOption(YearKeywordOptions, q.YearKeyword); ok {
		q.YearKeyword = v
	}
	return q
}

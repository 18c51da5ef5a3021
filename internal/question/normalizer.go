// internal/question/normalizer.go
package question

import (
	"strings"

	"github.com/sshreyx1/hot-triage/internal/infermedica"
)

// Type classifies a follow-up question into one of a fixed set of archetypes
// with standardized answer choices.
type Type string

const (
	TypeDuration    Type = "duration"
	TypeLocation    Type = "location"
	TypeSeverity    Type = "severity"
	TypeFrequency   Type = "frequency"
	TypeSingle      Type = "single"
	TypeOnset       Type = "onset"
	TypeCharacter   Type = "character"
	TypeAggravating Type = "aggravating"
	TypeRelieving   Type = "relieving"
)

// textRule maps substring cues in the question text to a type. Rules are
// evaluated in order; the first match wins, so a text containing both
// "how long" and "how severe" classifies as duration.
type textRule struct {
	cues  []string
	qtype Type
}

var textRules = []textRule{
	{cues: []string{"how long", "duration"}, qtype: TypeDuration},
	{cues: []string{"where exactly", "location", "where is", "which part"}, qtype: TypeLocation},
	{cues: []string{"how severe", "intensity", "how bad"}, qtype: TypeSeverity},
	{cues: []string{"how often", "frequency", "how frequently"}, qtype: TypeFrequency},
	{cues: []string{"when did", "start", "begin"}, qtype: TypeOnset},
	{cues: []string{"what type", "describe", "what kind"}, qtype: TypeCharacter},
	{cues: []string{"worse", "aggravate", "triggers"}, qtype: TypeAggravating},
	{cues: []string{"better", "relieve", "improves"}, qtype: TypeRelieving},
}

// answerSets holds the canonical choice list per question type.
var answerSets = map[Type][]infermedica.Choice{
	TypeDuration: {
		{ID: "less_than_30m", Label: "Less than 30 minutes"},
		{ID: "30m_to_8h", Label: "30 minutes to 8 hours"},
		{ID: "8h_to_24h", Label: "8 to 24 hours"},
		{ID: "more_than_24h", Label: "More than 24 hours"},
	},
	TypeLocation: {
		{ID: "center", Label: "Center of chest/behind breastbone"},
		{ID: "left_side", Label: "Left side of chest"},
		{ID: "right_side", Label: "Right side of chest"},
		{ID: "widespread", Label: "Widespread across chest"},
	},
	TypeSeverity: {
		{ID: "mild", Label: "Mild - noticeable but not disturbing"},
		{ID: "moderate", Label: "Moderate - uncomfortable but manageable"},
		{ID: "severe", Label: "Severe - intense and very disturbing"},
	},
	TypeFrequency: {
		{ID: "constant", Label: "Constant"},
		{ID: "intermittent", Label: "Comes and goes"},
		{ID: "occasional", Label: "Occasional episodes"},
	},
	TypeOnset: {
		{ID: "sudden", Label: "Suddenly"},
		{ID: "gradual", Label: "Gradually"},
	},
	TypeCharacter: {
		{ID: "sharp", Label: "Sharp/Stabbing"},
		{ID: "dull", Label: "Dull/Aching"},
		{ID: "pressure", Label: "Pressure/Squeezing"},
		{ID: "burning", Label: "Burning"},
	},
	TypeAggravating: {
		{ID: "movement", Label: "Physical activity/Movement"},
		{ID: "breathing", Label: "Deep breathing"},
		{ID: "lying", Label: "Lying down"},
		{ID: "stress", Label: "Stress/Anxiety"},
	},
	TypeRelieving: {
		{ID: "rest", Label: "Rest"},
		{ID: "position", Label: "Changing position"},
		{ID: "medication", Label: "Medication"},
		{ID: "nothing", Label: "Nothing helps"},
	},
	TypeSingle: {
		{ID: "present", Label: "Yes"},
		{ID: "absent", Label: "No"},
		{ID: "unknown", Label: "I don't know"},
	},
}

// AnswerSet returns a copy of the canonical choice list for t.
func AnswerSet(t Type) ([]infermedica.Choice, bool) {
	set, ok := answerSets[t]
	if !ok {
		return nil, false
	}
	out := make([]infermedica.Choice, len(set))
	copy(out, set)
	return out, true
}

// isBinaryChoiceSet reports whether choices is exactly the set
// {present, absent, unknown}: any order, no extras, no omissions.
func isBinaryChoiceSet(choices []infermedica.Choice) bool {
	if len(choices) != 3 {
		return false
	}
	seen := map[string]bool{}
	for _, c := range choices {
		switch c.ID {
		case "present", "absent", "unknown":
			if seen[c.ID] {
				return false
			}
			seen[c.ID] = true
		default:
			return false
		}
	}
	return true
}

// Classify determines the question's archetype. The binary-choice check takes
// priority over text heuristics regardless of the question wording. The
// second return is false when no rule matched, meaning the engine's own
// choices should be kept.
func Classify(q *infermedica.Question) (Type, bool) {
	if q == nil || len(q.Items) == 0 {
		return "", false
	}

	if isBinaryChoiceSet(q.Items[0].Choices) {
		return TypeSingle, true
	}

	text := strings.ToLower(q.Text)
	for _, rule := range textRules {
		for _, cue := range rule.cues {
			if strings.Contains(text, cue) {
				return rule.qtype, true
			}
		}
	}

	return "", false
}

// Normalize maps the engine's free-form follow-up question onto a canonical
// answer set. Nil questions and questions without items are returned
// unchanged. The original question is never mutated.
func Normalize(q *infermedica.Question) *infermedica.Question {
	if q == nil || len(q.Items) == 0 {
		return q
	}

	qtype, classified := Classify(q)

	var choices []infermedica.Choice
	if isBinaryChoiceSet(q.Items[0].Choices) {
		choices, _ = AnswerSet(TypeSingle)
	} else if classified {
		choices, _ = AnswerSet(qtype)
	}
	if choices == nil {
		// No canonical mapping: keep the engine's own choices.
		choices = make([]infermedica.Choice, len(q.Items[0].Choices))
		copy(choices, q.Items[0].Choices)
	}

	out := *q
	out.Items = make([]infermedica.QuestionItem, len(q.Items))
	copy(out.Items, q.Items)
	out.Items[0].Choices = choices
	return &out
}

// internal/question/normalizer_test.go
package question

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sshreyx1/hot-triage/internal/infermedica"
)

// ==========================
// Test Helper Functions
// ==========================

func binaryChoices() []infermedica.Choice {
	return []infermedica.Choice{
		{ID: "present", Label: "Yes"},
		{ID: "absent", Label: "No"},
		{ID: "unknown", Label: "I don't know"},
	}
}

func makeQuestion(text string, choices []infermedica.Choice) *infermedica.Question {
	return &infermedica.Question{
		Type: "single",
		Text: text,
		Items: []infermedica.QuestionItem{
			{ID: "s_21", Name: "Headache", Choices: choices},
		},
	}
}

func engineChoices() []infermedica.Choice {
	return []infermedica.Choice{
		{ID: "a", Label: "Option A"},
		{ID: "b", Label: "Option B"},
	}
}

// ==========================
// Classification Tests
// ==========================

func TestClassify_TextCues(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		expected Type
	}{
		{"duration via how long", "How long have you had this pain?", TypeDuration},
		{"duration via duration", "What is the duration of the symptom?", TypeDuration},
		{"location via where exactly", "Where exactly does it hurt?", TypeLocation},
		{"location via which part", "Which part of your chest hurts?", TypeLocation},
		{"severity via how severe", "How severe is your pain?", TypeSeverity},
		{"severity via how bad", "How bad is the headache?", TypeSeverity},
		{"frequency via how often", "How often do you feel this?", TypeFrequency},
		{"onset via when did", "When did the pain appear?", TypeOnset},
		{"onset via start", "Did the pain start recently?", TypeOnset},
		{"character via what kind", "What kind of pain is it?", TypeCharacter},
		{"character via describe", "Can you describe the pain?", TypeCharacter},
		{"aggravating via worse", "Does anything make it worse?", TypeAggravating},
		{"relieving via better", "Does anything make it better?", TypeRelieving},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			qtype, ok := Classify(makeQuestion(tt.text, engineChoices()))
			assert.True(t, ok)
			assert.Equal(t, tt.expected, qtype)
		})
	}
}

func TestClassify_CaseInsensitive(t *testing.T) {
	qtype, ok := Classify(makeQuestion("HOW LONG has this been going on?", engineChoices()))
	assert.True(t, ok)
	assert.Equal(t, TypeDuration, qtype)
}

func TestClassify_FirstRuleWins(t *testing.T) {
	// Contains both a duration cue and a severity cue; duration is checked
	// first so it wins.
	qtype, ok := Classify(makeQuestion("How long and how severe is the pain?", engineChoices()))
	assert.True(t, ok)
	assert.Equal(t, TypeDuration, qtype)
}

func TestClassify_BinaryChoicesTakePrecedence(t *testing.T) {
	// Severity wording but a binary choice set: the choice check wins.
	qtype, ok := Classify(makeQuestion("How severe is your pain?", binaryChoices()))
	assert.True(t, ok)
	assert.Equal(t, TypeSingle, qtype)
}

func TestClassify_NoMatch(t *testing.T) {
	_, ok := Classify(makeQuestion("Please pick the closest answer.", engineChoices()))
	assert.False(t, ok)
}

func TestClassify_NilAndEmpty(t *testing.T) {
	_, ok := Classify(nil)
	assert.False(t, ok)

	_, ok = Classify(&infermedica.Question{Text: "How long?"})
	assert.False(t, ok)
}

// ==========================
// Binary Set Detection Tests
// ==========================

func TestIsBinaryChoiceSet(t *testing.T) {
	tests := []struct {
		name     string
		choices  []infermedica.Choice
		expected bool
	}{
		{"canonical order", binaryChoices(), true},
		{"shuffled order", []infermedica.Choice{
			{ID: "unknown"}, {ID: "present"}, {ID: "absent"},
		}, true},
		{"extra choice", []infermedica.Choice{
			{ID: "present"}, {ID: "absent"}, {ID: "unknown"}, {ID: "maybe"},
		}, false},
		{"missing choice", []infermedica.Choice{
			{ID: "present"}, {ID: "absent"},
		}, false},
		{"duplicate instead of third", []infermedica.Choice{
			{ID: "present"}, {ID: "present"}, {ID: "absent"},
		}, false},
		{"unrelated ids", engineChoices(), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, isBinaryChoiceSet(tt.choices))
		})
	}
}

// ==========================
// Normalization Tests
// ==========================

func TestNormalize_Identity(t *testing.T) {
	assert.Nil(t, Normalize(nil))

	noItems := &infermedica.Question{Text: "How long?"}
	assert.Equal(t, noItems, Normalize(noItems))
}

func TestNormalize_CanonicalSets(t *testing.T) {
	tests := []struct {
		name        string
		text        string
		expectedIDs []string
	}{
		{"frequency", "How often do you feel this?", []string{"constant", "intermittent", "occasional"}},
		{"duration", "How long does the pain last?", []string{"less_than_30m", "30m_to_8h", "8h_to_24h", "more_than_24h"}},
		{"onset", "When did it start?", []string{"sudden", "gradual"}},
		{"character", "What kind of pain is it?", []string{"sharp", "dull", "pressure", "burning"}},
		{"aggravating", "What makes it worse?", []string{"movement", "breathing", "lying", "stress"}},
		{"relieving", "What makes it better?", []string{"rest", "position", "medication", "nothing"}},
		{"severity", "How severe is it?", []string{"mild", "moderate", "severe"}},
		{"location", "Where exactly is the pain?", []string{"center", "left_side", "right_side", "widespread"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := makeQuestion(tt.text, engineChoices())
			out := Normalize(q)

			ids := make([]string, 0, len(out.Items[0].Choices))
			for _, c := range out.Items[0].Choices {
				ids = append(ids, c.ID)
			}
			assert.Equal(t, tt.expectedIDs, ids)

			// Text and item identity pass through unchanged.
			assert.Equal(t, q.Text, out.Text)
			assert.Equal(t, q.Items[0].ID, out.Items[0].ID)
			assert.Equal(t, q.Items[0].Name, out.Items[0].Name)
		})
	}
}

func TestNormalize_BinaryReplacedRegardlessOfText(t *testing.T) {
	q := makeQuestion("Do you have a fever?", []infermedica.Choice{
		{ID: "present"}, {ID: "absent"}, {ID: "unknown"},
	})
	out := Normalize(q)

	expected := []infermedica.Choice{
		{ID: "present", Label: "Yes"},
		{ID: "absent", Label: "No"},
		{ID: "unknown", Label: "I don't know"},
	}
	assert.Equal(t, expected, out.Items[0].Choices)
}

func TestNormalize_UnclassifiedKeepsOriginalChoices(t *testing.T) {
	q := makeQuestion("Please pick the closest answer.", engineChoices())
	out := Normalize(q)
	assert.Equal(t, engineChoices(), out.Items[0].Choices)
}

func TestNormalize_DoesNotMutateOriginal(t *testing.T) {
	original := makeQuestion("How often do you feel this?", engineChoices())
	_ = Normalize(original)
	assert.Equal(t, engineChoices(), original.Items[0].Choices)
}

func TestNormalize_Idempotent(t *testing.T) {
	q := makeQuestion("How often do you feel this?", engineChoices())
	once := Normalize(q)
	twice := Normalize(once)
	assert.Equal(t, once.Items[0].Choices, twice.Items[0].Choices)
}

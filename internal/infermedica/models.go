// internal/infermedica/models.go
package infermedica

import "encoding/json"

// Sex as expected by the diagnosis engine.
type Sex string

const (
	SexMale   Sex = "male"
	SexFemale Sex = "female"
)

// Age in the engine's object form.
type Age struct {
	Value int `json:"value"`
}

// EvidenceItem is one fact established during the interview: a symptom found
// by free-text parsing (source "initial") or an answer to a follow-up
// question (source "suggest").
type EvidenceItem struct {
	ID       string `json:"id"`
	ChoiceID string `json:"choice_id"`
	Source   string `json:"source,omitempty"`
}

// Condition is a candidate diagnosis ranked by the engine.
type Condition struct {
	ID          string  `json:"id"`
	Name        string  `json:"name,omitempty"`
	CommonName  string  `json:"common_name"`
	Probability float64 `json:"probability"`
}

// Choice is one selectable answer for a question item.
type Choice struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}

// QuestionItem carries the symptom a question asks about and its answer
// choices. The engine supports multiple items per question but this system
// only ever uses the first.
type QuestionItem struct {
	ID      string   `json:"id"`
	Name    string   `json:"name"`
	Choices []Choice `json:"choices"`
}

// Question is the follow-up question returned by the engine.
type Question struct {
	Type  string         `json:"type,omitempty"`
	Text  string         `json:"text"`
	Items []QuestionItem `json:"items"`
}

// Mention is one symptom detected in free text.
type Mention struct {
	ID         string `json:"id"`
	Name       string `json:"name,omitempty"`
	CommonName string `json:"common_name"`
	Orth       string `json:"orth,omitempty"`
	ChoiceID   string `json:"choice_id,omitempty"`
	Type       string `json:"type,omitempty"`
}

// ParseRequest is the body sent to the engine's /parse endpoint.
type ParseRequest struct {
	Text            string `json:"text"`
	Age             Age    `json:"age"`
	Sex             Sex    `json:"sex"`
	IncludeTokens   bool   `json:"include_tokens"`
	CorrectSpelling bool   `json:"correct_spelling"`
}

// ParseResponse is the decoded /parse response. Raw holds the exact upstream
// body so callers can pass it through unmodified.
type ParseResponse struct {
	Mentions []Mention       `json:"mentions"`
	Raw      json.RawMessage `json:"-"`
}

// DiagnosisRequest is the body sent to the engine's /diagnosis endpoint.
type DiagnosisRequest struct {
	Sex      Sex                    `json:"sex"`
	Age      Age                    `json:"age"`
	Evidence []EvidenceItem         `json:"evidence"`
	Extras   map[string]interface{} `json:"extras,omitempty"`
}

// DiagnosisResponse is the decoded /diagnosis response. Raw holds the exact
// upstream body so the enriched payload can be merged on top of it.
type DiagnosisResponse struct {
	Question   *Question       `json:"question"`
	Conditions []Condition     `json:"conditions"`
	ShouldStop bool            `json:"should_stop"`
	Raw        json.RawMessage `json:"-"`
}

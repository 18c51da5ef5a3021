// internal/diagnosis/service_test.go
package diagnosis

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sshreyx1/hot-triage/internal/common/config"
	stderrors "github.com/sshreyx1/hot-triage/internal/common/errors"
	"github.com/sshreyx1/hot-triage/internal/common/logger"
	"github.com/sshreyx1/hot-triage/internal/common/observability"
	"github.com/sshreyx1/hot-triage/internal/infermedica"
	"github.com/sshreyx1/hot-triage/internal/triage"
)

// ==========================
// Test Helper Functions
// ==========================

func newService(t *testing.T, handler http.HandlerFunc) *Service {
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client := infermedica.NewClient(config.EngineConfig{
		BaseURL: srv.URL,
		AppID:   "id",
		AppKey:  "key",
		Model:   "infermedica-en",
		Timeout: 5000,
	}, logger.NewTestLogger(t), observability.NewNoop())

	return NewService(client, triage.DefaultPolicy(), logger.NewTestLogger(t))
}

func evidenceOf(n int) []infermedica.EvidenceItem {
	out := make([]infermedica.EvidenceItem, n)
	for i := range out {
		out[i] = infermedica.EvidenceItem{ID: "s_1", ChoiceID: "present", Source: "suggest"}
	}
	return out
}

const engineResponse = `{
	"question": {
		"type": "single",
		"text": "How often do you feel this?",
		"items": [{"id": "s_50", "name": "Episodes", "choices": [{"id": "a", "label": "A"}, {"id": "b", "label": "B"}]}]
	},
	"conditions": [
		{"id": "c_49", "common_name": "Flu", "probability": 0.92},
		{"id": "c_50", "common_name": "Cold", "probability": 0.3}
	],
	"should_stop": false,
	"extras": {"model": "demo"}
}`

// ==========================
// Enrichment Tests
// ==========================

func TestService_Compute_EnrichesPayload(t *testing.T) {
	svc := newService(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(engineResponse))
	})

	payload, err := svc.Compute(context.Background(), Input{
		Sex:      infermedica.SexMale,
		Age:      infermedica.Age{Value: 30},
		Evidence: evidenceOf(12),
	})

	assert.NoError(t, err)

	// Triage: Cold dropped, Flu high enough to complete.
	conditions := payload["conditions"].([]infermedica.Condition)
	assert.Len(t, conditions, 1)
	assert.Equal(t, "Flu", conditions[0].CommonName)
	assert.Equal(t, true, payload["should_stop"])
	assert.Equal(t, 12, payload["evidence_count"])

	status := payload["diagnosis_status"].(triage.Status)
	assert.Equal(t, "complete", status.Status)
	assert.Equal(t, triage.ConfidenceHigh, status.ConfidenceLevel)
	assert.Equal(t, "Most likely condition: Flu (92.0%)", status.Message)

	// Question normalized: frequency text gets the canonical choice set.
	q := payload["question"].(*infermedica.Question)
	assert.Equal(t, "How often do you feel this?", q.Text)
	ids := []string{}
	for _, c := range q.Items[0].Choices {
		ids = append(ids, c.ID)
	}
	assert.Equal(t, []string{"constant", "intermittent", "occasional"}, ids)

	// Untouched engine fields survive the merge.
	assert.Equal(t, map[string]interface{}{"model": "demo"}, payload["extras"])
}

func TestService_Compute_BelowMinimumEvidenceKeepsGoing(t *testing.T) {
	svc := newService(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(engineResponse))
	})

	payload, err := svc.Compute(context.Background(), Input{
		Sex:      infermedica.SexMale,
		Age:      infermedica.Age{Value: 30},
		Evidence: evidenceOf(5),
	})

	assert.NoError(t, err)
	assert.Equal(t, false, payload["should_stop"])
	status := payload["diagnosis_status"].(triage.Status)
	assert.Equal(t, "in_progress", status.Status)
}

func TestService_Compute_NullQuestionStaysNull(t *testing.T) {
	svc := newService(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"question": null, "conditions": []}`))
	})

	payload, err := svc.Compute(context.Background(), Input{
		Sex: infermedica.SexFemale,
		Age: infermedica.Age{Value: 50},
	})

	assert.NoError(t, err)
	q := payload["question"].(*infermedica.Question)
	assert.Nil(t, q)

	status := payload["diagnosis_status"].(triage.Status)
	assert.Equal(t, triage.ConfidenceLow, status.ConfidenceLevel)
	assert.Equal(t, "Gathering more information to determine the most likely condition...", status.Message)
	assert.Nil(t, status.Probability)
}

// ==========================
// Request Forwarding Tests
// ==========================

func TestService_Compute_ForwardsEvidenceAndExtras(t *testing.T) {
	var got map[string]interface{}
	var gotToken string
	svc := newService(t, func(w http.ResponseWriter, r *http.Request) {
		gotToken = r.Header.Get("Interview-Id")
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Write([]byte(`{"question": null, "conditions": []}`))
	})

	_, err := svc.Compute(context.Background(), Input{
		Sex:            infermedica.SexFemale,
		Age:            infermedica.Age{Value: 42},
		Evidence:       []infermedica.EvidenceItem{{ID: "s_21", ChoiceID: "present", Source: "initial"}},
		InterviewToken: "tok-9",
	})

	assert.NoError(t, err)
	assert.Equal(t, "tok-9", gotToken)
	assert.Equal(t, map[string]interface{}{"disable_groups": true}, got["extras"])
	evidence := got["evidence"].([]interface{})
	assert.Len(t, evidence, 1)
}

func TestService_Compute_NilEvidenceSentAsEmptyList(t *testing.T) {
	var got map[string]interface{}
	svc := newService(t, func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Write([]byte(`{"question": null, "conditions": []}`))
	})

	payload, err := svc.Compute(context.Background(), Input{
		Sex: infermedica.SexMale,
		Age: infermedica.Age{Value: 30},
	})

	assert.NoError(t, err)
	assert.Equal(t, []interface{}{}, got["evidence"])
	assert.Equal(t, 0, payload["evidence_count"])
}

// ==========================
// Failure Tests
// ==========================

func TestService_Compute_UpstreamFailure(t *testing.T) {
	svc := newService(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte(`{"message":"down"}`))
	})

	_, err := svc.Compute(context.Background(), Input{
		Sex: infermedica.SexMale,
		Age: infermedica.Age{Value: 30},
	})

	assert.Error(t, err)
	std := stderrors.Normalize(err)
	assert.Equal(t, stderrors.ErrCodeDiagnosisFailed, std.Code)
	assert.Contains(t, std.Details, "down")
}

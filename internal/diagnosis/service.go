// internal/diagnosis/service.go
package diagnosis

import (
	"context"
	"encoding/json"
	"fmt"

	stderrors "github.com/sshreyx1/hot-triage/internal/common/errors"
	"github.com/sshreyx1/hot-triage/internal/common/logger"
	"github.com/sshreyx1/hot-triage/internal/infermedica"
	"github.com/sshreyx1/hot-triage/internal/question"
	"github.com/sshreyx1/hot-triage/internal/triage"
)

// Input is one diagnosis turn: demographics plus the full evidence list the
// caller has accumulated so far. The service is stateless per request.
type Input struct {
	Sex            infermedica.Sex            `json:"sex"`
	Age            infermedica.Age            `json:"age"`
	Evidence       []infermedica.EvidenceItem `json:"evidence"`
	InterviewToken string                     `json:"interview_token,omitempty"`
}

// Service orchestrates the diagnosis call: forwards evidence to the engine,
// applies the triage policy to the raw conditions, and normalizes the
// follow-up question.
type Service struct {
	client *infermedica.Client
	policy triage.Policy
	logger logger.Logger
}

func NewService(client *infermedica.Client, policy triage.Policy, log logger.Logger) *Service {
	return &Service{
		client: client,
		policy: policy,
		logger: log.With(map[string]interface{}{
			"component": "diagnosis",
		}),
	}
}

// Compute runs one diagnosis turn and returns the engine's payload enriched
// with the normalized question, should_stop, the filtered and sorted
// conditions, evidence_count, and diagnosis_status.
func (s *Service) Compute(ctx context.Context, in Input) (map[string]interface{}, error) {
	evidence := in.Evidence
	if evidence == nil {
		evidence = []infermedica.EvidenceItem{}
	}

	s.logger.Info("diagnosis request", map[string]interface{}{
		"sex":           in.Sex,
		"age":           in.Age.Value,
		"evidenceCount": len(evidence),
	})

	req := infermedica.DiagnosisRequest{
		Sex:      in.Sex,
		Age:      in.Age,
		Evidence: evidence,
		Extras:   map[string]interface{}{"disable_groups": true},
	}

	resp, err := s.client.Diagnose(ctx, req, in.InterviewToken)
	if err != nil {
		return nil, err
	}

	assessment := s.policy.Assess(resp.Conditions, len(evidence))
	normalized := question.Normalize(resp.Question)

	if normalized != nil {
		s.logger.Debug("question normalized", map[string]interface{}{
			"rawQuestion":        resp.Question,
			"normalizedQuestion": normalized,
		})
	}

	var payload map[string]interface{}
	if err := json.Unmarshal(resp.Raw, &payload); err != nil {
		return nil, stderrors.NewDiagnosisFailedError(fmt.Sprintf("decode error: %v", err))
	}

	payload["question"] = normalized
	payload["should_stop"] = assessment.ShouldStop
	payload["conditions"] = assessment.Conditions
	payload["evidence_count"] = assessment.EvidenceCount
	payload["diagnosis_status"] = assessment.Status

	s.logProgress(assessment, normalized)

	return payload, nil
}

// logProgress mirrors the interview state for audit and debugging; it does
// not affect behavior.
func (s *Service) logProgress(a triage.Assessment, q *infermedica.Question) {
	fields := map[string]interface{}{
		"evidenceCount":   a.EvidenceCount,
		"shouldStop":      a.ShouldStop,
		"confidenceLevel": a.Status.ConfidenceLevel,
	}

	ranked := make([]string, 0, len(a.Conditions))
	for _, c := range a.Conditions {
		ranked = append(ranked, fmt.Sprintf("%s (%.1f%%)", c.CommonName, c.Probability*100))
	}
	if len(ranked) > 0 {
		fields["conditions"] = ranked
	}

	if q != nil {
		fields["nextQuestion"] = q.Text
		if qtype, ok := question.Classify(q); ok {
			fields["questionType"] = string(qtype)
		}
		if len(q.Items) > 0 {
			options := make([]string, 0, len(q.Items[0].Choices))
			for _, c := range q.Items[0].Choices {
				options = append(options, c.Label)
			}
			fields["options"] = options
		}
	}

	s.logger.Info("diagnosis progress", fields)
}

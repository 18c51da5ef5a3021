// internal/triage/policy.go
package triage

import (
	"fmt"
	"sort"

	"github.com/sshreyx1/hot-triage/internal/common/config"
	"github.com/sshreyx1/hot-triage/internal/infermedica"
)

// ConfidenceLevel grades the top-ranked condition's probability.
type ConfidenceLevel string

const (
	ConfidenceLow    ConfidenceLevel = "low"
	ConfidenceMedium ConfidenceLevel = "medium"
	ConfidenceHigh   ConfidenceLevel = "high"
)

const gatheringMessage = "Gathering more information to determine the most likely condition..."

// Policy holds the thresholds deciding whether enough evidence and confidence
// exist to stop asking questions. Injected rather than global so tests can
// substitute thresholds.
type Policy struct {
	SignificantProbability float64
	HighProbability        float64
	MinEvidence            int
}

// DefaultPolicy returns the production thresholds.
func DefaultPolicy() Policy {
	return Policy{
		SignificantProbability: 0.5,
		HighProbability:        0.8,
		MinEvidence:            10,
	}
}

// FromConfig builds a Policy from the triage config section.
func FromConfig(cfg config.TriageConfig) Policy {
	return Policy{
		SignificantProbability: cfg.SignificantProbability,
		HighProbability:        cfg.HighProbability,
		MinEvidence:            cfg.MinEvidence,
	}
}

// Status is the diagnosis_status object reported to the caller.
type Status struct {
	Status          string          `json:"status"`
	ConfidenceLevel ConfidenceLevel `json:"confidence_level"`
	Message         string          `json:"message"`
	Probability     *float64        `json:"probability,omitempty"`
}

// Assessment is the triage policy's verdict over one engine response.
type Assessment struct {
	Conditions    []infermedica.Condition
	ShouldStop    bool
	EvidenceCount int
	Status        Status
}

// SignificantConditions filters to probability >= significant and sorts
// descending by probability. The input slice is not modified.
func (p Policy) SignificantConditions(conditions []infermedica.Condition) []infermedica.Condition {
	out := make([]infermedica.Condition, 0, len(conditions))
	for _, c := range conditions {
		if c.Probability >= p.SignificantProbability {
			out = append(out, c)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Probability > out[j].Probability
	})
	return out
}

// ShouldStop reports whether the interview is complete: at least MinEvidence
// facts gathered and some significant condition at or above the high
// threshold. conditions must already be filtered to significant ones.
func (p Policy) ShouldStop(conditions []infermedica.Condition, evidenceCount int) bool {
	if evidenceCount < p.MinEvidence {
		return false
	}
	for _, c := range conditions {
		if c.Probability >= p.HighProbability {
			return true
		}
	}
	return false
}

// Confidence grades the top condition of an already filtered, sorted list.
func (p Policy) Confidence(conditions []infermedica.Condition) ConfidenceLevel {
	if len(conditions) == 0 {
		return ConfidenceLow
	}
	top := conditions[0].Probability
	switch {
	case top >= p.HighProbability:
		return ConfidenceHigh
	case top >= p.SignificantProbability:
		return ConfidenceMedium
	default:
		return ConfidenceLow
	}
}

// Assess applies the full triage policy to the engine's raw condition list.
func (p Policy) Assess(conditions []infermedica.Condition, evidenceCount int) Assessment {
	significant := p.SignificantConditions(conditions)
	shouldStop := p.ShouldStop(significant, evidenceCount)

	status := Status{
		Status:          "in_progress",
		ConfidenceLevel: p.Confidence(significant),
		Message:         gatheringMessage,
	}
	if shouldStop {
		status.Status = "complete"
	}
	if len(significant) > 0 {
		top := significant[0]
		status.Message = fmt.Sprintf("Most likely condition: %s (%.1f%%)", top.CommonName, top.Probability*100)
		prob := top.Probability
		status.Probability = &prob
	}

	return Assessment{
		Conditions:    significant,
		ShouldStop:    shouldStop,
		EvidenceCount: evidenceCount,
		Status:        status,
	}
}
